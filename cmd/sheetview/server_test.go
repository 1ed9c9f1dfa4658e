package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/sheetview-go/pkg/sheetview"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/config"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/models"
	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Item"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Cost"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Paper"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 4.5))

	dir := t.TempDir()
	require.NoError(t, f.SaveAs(filepath.Join(dir, "12.xlsx")))

	cfg := &config.Config{Dir: dir, Pattern: "%d.xlsx", Capacity: 2}
	r, store, err := newRenderer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return &server{renderer: r, defaults: sheetview.DefaultOptions()}
}

func get(t *testing.T, s *server, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path+"?"+params.Encode(), nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleRenderJSON(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/render", url.Values{"dsn": {"file:12|0!A1:B2"}, "by_ref": {"true"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res models.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "spreadsheet://12?index=0&range=A1%3AB2", res.Locator)
	require.Len(t, res.Body.Rows, 2)
	assert.Equal(t, "B", res.Body.Rows[1].Cells[1].Key)
	assert.Equal(t, "4.5", res.Body.Rows[1].Cells[1].Value)
}

func TestHandleRenderHTML(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/render", url.Values{"dsn": {"file:12|0"}, "format": {"html"}, "root_id": {"t1"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), `<table id="t1"`)
	assert.Contains(t, rec.Body.String(), "Paper")
}

func TestHandleRenderErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		params url.Values
		status int
	}{
		{"missing dsn", url.Values{}, http.StatusBadRequest},
		{"bad dsn", url.Values{"dsn": {"file:12"}}, http.StatusBadRequest},
		{"bad mode", url.Values{"dsn": {"file:12|0"}, "mode": {"sideways"}}, http.StatusBadRequest},
		{"bad format", url.Values{"dsn": {"file:12|0"}, "format": {"xml"}}, http.StatusBadRequest},
		{"unknown document", url.Values{"dsn": {"file:13|0"}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/render", tt.params)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleRenderStaleSheet(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/render", url.Values{"dsn": {"file:12|4"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res models.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 4, res.SheetIndex)
	require.NotNil(t, res.Body)
	assert.Empty(t, res.Body.Rows)
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{Port: "9090", ReadTimeout: 5 * time.Second, WriteTimeout: 2 * time.Minute}
	handler := http.NewServeMux()

	srv := newHTTPServer(cfg, handler)
	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Minute, srv.WriteTimeout)
	assert.Same(t, handler, srv.Handler)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/healthz", url.Values{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestNewLogger(t *testing.T) {
	assert.True(t, newLogger("debug").Enabled(t.Context(), -4))
	assert.False(t, newLogger("warn").Enabled(t.Context(), 0))
	assert.True(t, newLogger("").Enabled(t.Context(), 0))
}
