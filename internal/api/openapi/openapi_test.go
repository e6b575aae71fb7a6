package openapi

import (
	"context"
	"testing"
)

// TestLoad проверяет, что контракт валиден и описывает все маршруты.
func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() ошибка: %v", err)
	}

	operations := map[string]string{
		"/health/live":               "HealthLive",
		"/health/ready":              "HealthReady",
		"/metrics":                   "GetMetrics",
		"/screenshots":               "ListScreenshots",
		"/screenshots/{id}":          "GetScreenshot",
		"/screenshots/{id}/download": "DownloadScreenshot",
		"/stats":                     "GetStats",
		"/tags":                      "ListTags",
	}
	for path, opID := range operations {
		item := doc.Paths.Find(path)
		if item == nil {
			t.Errorf("путь %s отсутствует", path)
			continue
		}
		if item.Get == nil || item.Get.OperationID != opID {
			t.Errorf("GET %s: ожидалась операция %s", path, opID)
		}
	}

	post := doc.Paths.Find("/screenshots").Post
	if post == nil || post.OperationID != "UploadScreenshot" {
		t.Fatal("POST /screenshots: ожидалась операция UploadScreenshot")
	}
	if post.Responses.Status(201) == nil {
		t.Error("POST /screenshots: нет ответа 201")
	}
}

// TestLoad_ScreenshotSchema проверяет обязательные поля Screenshot.
func TestLoad_ScreenshotSchema(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() ошибка: %v", err)
	}

	ref, ok := doc.Components.Schemas["Screenshot"]
	if !ok {
		t.Fatal("схема Screenshot отсутствует")
	}
	required := map[string]bool{}
	for _, name := range ref.Value.Required {
		required[name] = true
	}
	for _, name := range []string{"id", "filename", "originalName", "url", "size", "mimeType", "tags", "createdAt"} {
		if !required[name] {
			t.Errorf("поле %s не обязательное", name)
		}
	}
}
