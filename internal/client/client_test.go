package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUpload(t *testing.T) {
	content := []byte("\x89PNG fake image data")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/screenshots" {
			t.Errorf("запрос %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if got := r.FormValue("tags"); got != "ui,bug" {
			t.Errorf("tags = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if !bytes.Equal(data, content) {
			t.Errorf("содержимое файла не совпадает")
		}
		if header.Filename != "my shot.png" {
			t.Errorf("filename = %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("content-type части = %q", ct)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           "6f1c2a9e-1111-4222-8333-444455556666",
			"filename":     "1700000000000-my_shot.png",
			"originalName": "my shot.png",
			"mimeType":     "image/png",
			"size":         len(content),
			"tags":         []string{"ui", "bug"},
			"url":          "https://cdn.example.com/1700000000000-my_shot.png",
			"createdAt":    "2026-01-02T03:04:05.000Z",
		})
	}))
	defer srv.Close()

	var progress bytes.Buffer
	c := New(srv.URL+"/", nil)
	got, err := c.Upload(context.Background(), UploadRequest{
		Name:        "my shot.png",
		ContentType: "image/png",
		Body:        bytes.NewReader(content),
		Tags:        []string{"ui", "bug"},
		Progress:    &progress,
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if got.Id != "6f1c2a9e-1111-4222-8333-444455556666" {
		t.Errorf("id = %q", got.Id)
	}
	if got.Size != int64(len(content)) {
		t.Errorf("size = %d", got.Size)
	}
	if progress.Len() != len(content) {
		t.Errorf("прогресс = %d байт, ожидалось %d", progress.Len(), len(content))
	}
}

func TestUpload_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = w.Write([]byte(`{"error":"Файл слишком большой","code":"PAYLOAD_TOO_LARGE"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Upload(context.Background(), UploadRequest{
		Name: "big.png",
		Body: strings.NewReader("x"),
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ожидалась APIError, получено %v", err)
	}
	if apiErr.StatusCode != http.StatusRequestEntityTooLarge || apiErr.Code != "PAYLOAD_TOO_LARGE" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestUpload_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Upload(context.Background(), UploadRequest{
		Name: "a.png",
		Body: strings.NewReader("x"),
	})
	if err == nil || err.Error() != "HTTP 502" {
		t.Errorf("err = %v, ожидалось HTTP 502", err)
	}
}
