// handler.go — основной обработчик API, реализующий generated.ServerInterface.
// Объединяет health и бизнес-обработчики, делегируя запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/turyildiz/screenshot-archive/internal/api/errors"
	"github.com/turyildiz/screenshot-archive/internal/api/generated"
	"github.com/turyildiz/screenshot-archive/internal/domain/model"
	"github.com/turyildiz/screenshot-archive/internal/service"
)

// ScreenshotReader — чтение скриншотов. Реализуется *service.ScreenshotService.
type ScreenshotReader interface {
	List(ctx context.Context, params service.ListParams) (*service.ListResult, error)
	Get(ctx context.Context, id string) (*model.Screenshot, error)
	DownloadURL(ctx context.Context, id string) (string, error)
}

// Uploader — загрузка скриншотов. Реализуется *service.UploadService.
type Uploader interface {
	Upload(ctx context.Context, file *service.FilePayload, rawTags string) (*model.Screenshot, error)
}

// StatsProvider — агрегаты и теги. Реализуется *service.StatsService.
type StatsProvider interface {
	Stats(ctx context.Context) (*model.Stats, error)
	Tags(ctx context.Context) ([]string, error)
}

// Проверка реализации интерфейса на этапе компиляции.
var _ generated.ServerInterface = (*APIHandler)(nil)

// APIHandler — основной обработчик API архива.
type APIHandler struct {
	health         *HealthHandler
	screenshots    ScreenshotReader
	uploader       Uploader
	stats          StatsProvider
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
// maxUploadBytes — лимит тела multipart-запроса загрузки.
func NewAPIHandler(
	health *HealthHandler,
	screenshots ScreenshotReader,
	uploader Uploader,
	stats StatsProvider,
	maxUploadBytes int64,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:         health,
		screenshots:    screenshots,
		uploader:       uploader,
		stats:          stats,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// ParamErrorHandler — обработчик ошибок привязки параметров для generated-роутера.
// Отвечает 400 в едином формате ошибок.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	apierrors.ValidationError(w, err.Error())
}

// writeServiceError отображает ошибку сервисного слоя на HTTP-ответ.
// Ошибки хранилищ логируются и отдаются клиенту без деталей.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "Скриншот не найден")
	case errors.Is(err, service.ErrMissingFile), errors.Is(err, service.ErrInvalidQuery):
		apierrors.ValidationError(w, err.Error())
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
