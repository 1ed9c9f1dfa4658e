package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DefaultTimeout bounds a single document download.
const DefaultTimeout = 30 * time.Second

// HTTPResolver downloads documents from a document management API that
// serves originals at {base}/api/documents/{id}/download/.
type HTTPResolver struct {
	// BaseURL is the API root without a trailing slash.
	BaseURL string
	// Token is sent as "Authorization: Token <Token>" when set.
	Token string
	// Client performs the downloads; nil means http.DefaultClient.
	Client *http.Client
}

// NewHTTPResolver returns an HTTPResolver. An empty token sends no
// Authorization header; a zero timeout uses DefaultTimeout.
func NewHTTPResolver(baseURL, token string, timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPResolver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Open implements Resolver.
func (h *HTTPResolver) Open(ctx context.Context, id int) (*excelize.File, error) {
	u := fmt.Sprintf("%s/api/documents/%d/download/?original=true", strings.TrimRight(h.BaseURL, "/"), id)
	slog.Debug("Downloading document", "id", id, "url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if h.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Token %s", h.Token))
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		slog.Error("Download request error", "id", id, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %d", ErrDocumentNotFound, id)
	case resp.StatusCode != http.StatusOK:
		slog.Error("Failed to download document", "id", id, "status", resp.StatusCode)
		return nil, fmt.Errorf("download document %d: status %d", id, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read document %d: %w", id, err)
	}
	slog.Debug("Download complete", "id", id, "size_bytes", len(data))
	return OpenBytes(id, data)
}
