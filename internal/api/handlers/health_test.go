package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, ожидался 200", rec.Code)
	}
	var resp healthLiveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "screenshot-archive" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		pg, store  ReadinessChecker
		wantCode   int
		wantStatus string
	}{
		{"все ok", staticChecker{"ok"}, staticChecker{"ok"}, http.StatusOK, "ok"},
		{"бакет недоступен", staticChecker{"ok"}, staticChecker{"fail"}, http.StatusServiceUnavailable, "fail"},
		{"degraded", staticChecker{"degraded"}, staticChecker{"ok"}, http.StatusOK, "degraded"},
		{"не инициализирован", nil, staticChecker{"ok"}, http.StatusServiceUnavailable, "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.pg, tt.store)
			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, ожидался %d", rec.Code, tt.wantCode)
			}
			var resp healthReadyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("некорректный JSON: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, ожидался %q", resp.Status, tt.wantStatus)
			}
		})
	}
}
