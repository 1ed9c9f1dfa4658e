package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetview-go/pkg/sheetview"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/config"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/output"
)

type server struct {
	renderer *sheetview.Renderer
	defaults sheetview.Options
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /render", s.handleRender)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return mux
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("dsn")
	if raw == "" {
		http.Error(w, "Missing dsn parameter", http.StatusBadRequest)
		return
	}

	opts := s.defaults
	if m := q.Get("mode"); m != "" {
		parsed, err := sheetview.ParseMode(m)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Mode = parsed
	}
	if v := q.Get("by_ref"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid by_ref parameter", http.StatusBadRequest)
			return
		}
		opts.ByRef = b
	}
	if v := q.Get("root_id"); v != "" {
		opts.RootID = v
	}

	format := q.Get("format")
	if format != "" && format != "json" && format != "html" {
		http.Error(w, "Invalid format parameter (must be json or html)", http.StatusBadRequest)
		return
	}

	result, err := s.renderer.Render(r.Context(), raw, opts)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to render region", "dsn", raw, "error", err)
		} else {
			slog.Info("Rejected render request", "dsn", raw, "status", status, "error", err)
		}
		http.Error(w, err.Error(), status)
		return
	}

	var data []byte
	if format == "html" {
		data, err = output.HTML(result, opts.RootID)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	} else {
		data, err = output.ToJSON(result, false)
		w.Header().Set("Content-Type", "application/json")
	}
	if err != nil {
		slog.Error("Failed to serialize result", "dsn", raw, "error", err)
		http.Error(w, "Serialization failed", http.StatusInternalServerError)
		return
	}
	w.Write(data)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sheetview.ErrDocumentNotFound), errors.Is(err, sheetview.ErrSheetNotFound):
		return http.StatusNotFound
	case errors.Is(err, sheetview.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, sheetview.ErrInvalidLocator):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	opts, err := renderOptions(cfg)
	if err != nil {
		return err
	}
	r, store, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &server{renderer: r, defaults: opts}
	httpServer := newHTTPServer(cfg, srv.routes())
	slog.Info("Starting server", "port", cfg.Port, "dir", cfg.Dir, "url", cfg.URL,
		"read_timeout", cfg.ReadTimeout, "write_timeout", cfg.WriteTimeout)
	return httpServer.ListenAndServe()
}

func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}
