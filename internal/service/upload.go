// upload.go — pipeline загрузки скриншота:
// ключ → запись объекта в S3 → вставка метаданных.
// Два шага без транзакции: при ошибке вставки объект остаётся сиротой
// (его находит команда reconcile).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turyildiz/screenshot-archive/internal/domain/model"
	"github.com/turyildiz/screenshot-archive/internal/objectstore"
	"github.com/turyildiz/screenshot-archive/internal/repository"
)

// Prometheus-метрики загрузки.
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sa_uploads_total",
		Help: "Общее количество загрузок скриншотов (по статусу).",
	}, []string{"status"})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sa_upload_bytes_total",
		Help: "Общее количество байт, записанных в объектное хранилище.",
	})

	uploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sa_upload_duration_seconds",
		Help:    "Длительность загрузки (запись объекта + вставка метаданных).",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)

// ObjectStore — операции объектного хранилища, используемые сервисами.
// Реализуется *objectstore.Client.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignedGet(ctx context.Context, key string, ttl time.Duration, opts ...objectstore.PresignOption) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error)
}

// FilePayload — загружаемый файл в том виде, в каком его передал клиент.
type FilePayload struct {
	// Name — исходное имя файла (не доверенное)
	Name string
	// ContentType — заявленный MIME-тип, не проверяется
	ContentType string
	// Size — размер, сообщённый транспортом
	Size int64
	Data []byte
}

// UploadService — pipeline загрузки скриншотов.
type UploadService struct {
	repo   repository.ScreenshotRepository
	store  ObjectStore
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewUploadService создаёт сервис загрузки.
func NewUploadService(
	repo repository.ScreenshotRepository,
	store ObjectStore,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		repo:   repo,
		store:  store,
		logger: logger.With(slog.String("component", "upload_service")),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Upload сохраняет файл и создаёт запись метаданных.
// file == nil — ErrMissingFile до каких-либо побочных эффектов.
// Ошибки: ErrStoreUnavailable (запись не создана), ErrPersistence (объект остался сиротой).
func (s *UploadService) Upload(ctx context.Context, file *FilePayload, rawTags string) (*model.Screenshot, error) {
	if file == nil {
		uploadsTotal.WithLabelValues("missing_file").Inc()
		return nil, ErrMissingFile
	}

	start := time.Now()
	tags := ParseTags(rawTags)
	key := GenerateKey(file.Name, s.now())

	if _, err := s.store.Put(ctx, key, file.Data, file.ContentType); err != nil {
		uploadsTotal.WithLabelValues("store_error").Inc()
		s.logger.Error("Ошибка записи объекта",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	record := &model.Screenshot{
		ID:           s.newID(),
		Filename:     key,
		OriginalName: file.Name,
		URL:          s.store.PublicURL(key),
		Size:         file.Size,
		MimeType:     file.ContentType,
		Tags:         tags,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		uploadsTotal.WithLabelValues("persistence_error").Inc()
		s.logger.Error("Ошибка сохранения метаданных, объект остался без записи",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	duration := time.Since(start)
	uploadsTotal.WithLabelValues("ok").Inc()
	uploadBytesTotal.Add(float64(len(file.Data)))
	uploadDuration.Observe(duration.Seconds())

	s.logger.Info("Скриншот загружен",
		slog.String("id", record.ID),
		slog.String("key", key),
		slog.Int64("size", record.Size),
		slog.Int("tags", len(tags)),
		slog.Duration("duration", duration),
	)

	return record, nil
}
