// screenshots.go — выборка скриншотов с фильтрами и пагинацией,
// получение одной записи и presigned-ссылки на скачивание.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/turyildiz/screenshot-archive/internal/domain/model"
	"github.com/turyildiz/screenshot-archive/internal/objectstore"
	"github.com/turyildiz/screenshot-archive/internal/repository"
)

// Prometheus-метрики выборки.
var (
	listTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sa_list_total",
		Help: "Общее количество запросов списка скриншотов.",
	})
	listDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sa_list_duration_seconds",
		Help:    "Длительность выборки страницы скриншотов (list + count).",
		Buckets: prometheus.DefBuckets,
	})
)

// dateOnlyLayout — формат даты без времени (полночь UTC).
const dateOnlyLayout = "2006-01-02"

// ListParams — параметры выборки.
// nil в Page/Limit — значение по умолчанию.
type ListParams struct {
	Page   *int
	Limit  *int
	Filter model.ListFilter
}

// ListResult — страница скриншотов.
type ListResult struct {
	Items      []*model.Screenshot
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// ScreenshotService — чтение скриншотов.
type ScreenshotService struct {
	repo         repository.ScreenshotRepository
	cache        *ScreenshotCache
	store        ObjectStore
	presignTTL   time.Duration
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// NewScreenshotService создаёт сервис чтения.
// defaultLimit применяется, если limit не задан; больший limit урезается до maxLimit.
func NewScreenshotService(
	repo repository.ScreenshotRepository,
	cache *ScreenshotCache,
	store ObjectStore,
	presignTTL time.Duration,
	defaultLimit, maxLimit int,
	logger *slog.Logger,
) *ScreenshotService {
	return &ScreenshotService{
		repo:         repo,
		cache:        cache,
		store:        store,
		presignTTL:   presignTTL,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger.With(slog.String("component", "screenshot_service")),
	}
}

// List возвращает страницу скриншотов по created_at DESC и общее число совпадений.
// Выборка и подсчёт выполняются параллельно с одним и тем же фильтром.
func (s *ScreenshotService) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page, limit, err := s.normalizePaging(params.Page, params.Limit)
	if err != nil {
		return nil, err
	}
	filter := params.Filter
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, fmt.Errorf("%w: startDate позже endDate", ErrInvalidQuery)
	}

	start := time.Now()
	listTotal.Inc()

	var (
		items []*model.Screenshot
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, filter, limit, (page-1)*limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: выборка скриншотов: %w", ErrPersistence, err)
	}

	duration := time.Since(start)
	listDuration.Observe(duration.Seconds())

	s.logger.Debug("Выборка выполнена",
		slog.Int("page", page),
		slog.Int("limit", limit),
		slog.Int("total", total),
		slog.Int("returned", len(items)),
		slog.Duration("duration", duration),
	)

	return &ListResult{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: TotalPages(total, limit),
	}, nil
}

// normalizePaging применяет значения по умолчанию и проверяет page/limit.
func (s *ScreenshotService) normalizePaging(pagePtr, limitPtr *int) (page, limit int, err error) {
	page, limit = 1, s.defaultLimit
	if pagePtr != nil {
		page = *pagePtr
	}
	if limitPtr != nil {
		limit = *limitPtr
	}

	if page < 1 {
		return 0, 0, fmt.Errorf("%w: page должен быть >= 1", ErrInvalidQuery)
	}
	if limit < 1 {
		return 0, 0, fmt.Errorf("%w: limit должен быть >= 1", ErrInvalidQuery)
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	if page-1 > math.MaxInt/limit {
		return 0, 0, fmt.Errorf("%w: page слишком велик", ErrInvalidQuery)
	}
	return page, limit, nil
}

// TotalPages возвращает ceil(total/limit); 0 при total == 0.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Get возвращает скриншот по id. Некорректный UUID — ErrNotFound без обращения к БД.
func (s *ScreenshotService) Get(ctx context.Context, id string) (*model.Screenshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	if record, ok := s.cache.Get(id); ok {
		return record, nil
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: получение скриншота: %w", ErrPersistence, err)
	}

	s.cache.Set(record)
	return record, nil
}

// DownloadURL возвращает presigned URL для скачивания под исходным именем файла.
func (s *ScreenshotService) DownloadURL(ctx context.Context, id string) (string, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	u, err := s.store.PresignedGet(ctx, record.Filename, s.presignTTL,
		objectstore.WithDownloadName(record.OriginalName))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return u, nil
}

// ParseDate разбирает границу диапазона дат: RFC 3339 или YYYY-MM-DD (полночь UTC).
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnlyLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: некорректная дата %q", ErrInvalidQuery, value)
	}
	return t, nil
}
