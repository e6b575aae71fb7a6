// stats.go — обработчики GET /stats и GET /tags.
package handlers

import (
	"net/http"

	"github.com/turyildiz/screenshot-archive/internal/api/generated"
)

// GetStats — GET /stats.
func (h *APIHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "stats")
		return
	}

	resp := generated.Stats{
		Total:   stats.Total,
		ByTag:   make([]generated.TagCount, 0, len(stats.ByTag)),
		ByMonth: make([]generated.MonthCount, 0, len(stats.ByMonth)),
	}
	for _, tc := range stats.ByTag {
		resp.ByTag = append(resp.ByTag, generated.TagCount{Tag: tc.Tag, Count: tc.Count})
	}
	for _, mc := range stats.ByMonth {
		resp.ByMonth = append(resp.ByMonth, generated.MonthCount{Month: mc.Month.UTC(), Count: mc.Count})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListTags — GET /tags.
func (h *APIHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.stats.Tags(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "tags")
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, tags)
}
