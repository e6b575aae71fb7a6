package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/turyildiz/screenshot-archive/internal/api/handlers"
	"github.com/turyildiz/screenshot-archive/internal/api/middleware"
	"github.com/turyildiz/screenshot-archive/internal/config"
	"github.com/turyildiz/screenshot-archive/internal/domain/model"
	"github.com/turyildiz/screenshot-archive/internal/service"
)

type stubReader struct{}

func (stubReader) List(context.Context, service.ListParams) (*service.ListResult, error) {
	return &service.ListResult{Page: 1, Limit: 20}, nil
}

func (stubReader) Get(context.Context, string) (*model.Screenshot, error) {
	return nil, service.ErrNotFound
}

func (stubReader) DownloadURL(context.Context, string) (string, error) {
	return "", service.ErrNotFound
}

type stubUploader struct{}

func (stubUploader) Upload(context.Context, *service.FilePayload, string) (*model.Screenshot, error) {
	return nil, service.ErrMissingFile
}

type stubStats struct{}

func (stubStats) Stats(context.Context) (*model.Stats, error) { return &model.Stats{}, nil }
func (stubStats) Tags(context.Context) ([]string, error)       { return []string{}, nil }

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{Port: 0}
	health := handlers.NewHealthHandler(nil, nil)
	h := handlers.NewAPIHandler(health, stubReader{}, stubUploader{}, stubStats{}, 1<<20, logger)
	return New(cfg, logger, h, middleware.MetricsMiddleware(), middleware.RequestLogger(logger))
}

func TestServer_Routes(t *testing.T) {
	handler := newTestServer().Handler()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusServiceUnavailable},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/screenshots", http.StatusOK},
		{http.MethodPost, "/screenshots", http.StatusBadRequest},
		{http.MethodGet, "/screenshots/abc", http.StatusNotFound},
		{http.MethodGet, "/screenshots/abc/download", http.StatusNotFound},
		{http.MethodGet, "/stats", http.StatusOK},
		{http.MethodGet, "/tags", http.StatusOK},
		{http.MethodGet, "/openapi.yaml", http.StatusOK},
		{http.MethodDelete, "/screenshots", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, ожидался %d", rec.Code, tt.want)
			}
		})
	}
}

func TestServer_NotFoundJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, ожидался 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if body["code"] != "NOT_FOUND" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestServer_MethodNotAllowedJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/screenshots", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, ожидался 405", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if body["code"] != "METHOD_NOT_ALLOWED" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestServer_RequestIDHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tags", nil))

	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Errorf("ответ без %s", middleware.RequestIDHeader)
	}
}

func TestServer_OpenAPI(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	if !strings.HasPrefix(rec.Body.String(), "openapi: 3.0.3") {
		t.Errorf("тело не похоже на OpenAPI-контракт: %.40s", rec.Body.String())
	}
}
