// stats.go — агрегаты по архиву: общее количество, частота тегов,
// количество по месяцам и список тегов. Пересчитываются на каждый запрос.
package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/turyildiz/screenshot-archive/internal/domain/model"
	"github.com/turyildiz/screenshot-archive/internal/repository"
)

// StatsMonths — сколько последних непустых месяцев возвращается в byMonth.
const StatsMonths = 12

var statsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "sa_stats_duration_seconds",
	Help:    "Длительность расчёта статистики.",
	Buckets: prometheus.DefBuckets,
})

// StatsService — агрегаты и список тегов.
type StatsService struct {
	repo   repository.ScreenshotRepository
	logger *slog.Logger
}

// NewStatsService создаёт сервис статистики.
func NewStatsService(repo repository.ScreenshotRepository, logger *slog.Logger) *StatsService {
	return &StatsService{
		repo:   repo,
		logger: logger.With(slog.String("component", "stats_service")),
	}
}

// Stats считает total, byTag и byMonth. Три запроса выполняются параллельно.
//
// byTag отсортирован по убыванию count, при равенстве — по тегу.
// byMonth содержит до StatsMonths последних месяцев (UTC) с ненулевым
// количеством, по убыванию; пустые месяцы не добавляются.
func (s *StatsService) Stats(ctx context.Context) (*model.Stats, error) {
	start := time.Now()

	var (
		total   int
		byTag   []model.TagCount
		byMonth []model.MonthCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, model.ListFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		byTag, err = s.repo.TagCounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		byMonth, err = s.repo.CountByMonth(gctx, StatsMonths)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: расчёт статистики: %w", ErrPersistence, err)
	}

	SortTagCounts(byTag)
	slices.SortFunc(byMonth, func(a, b model.MonthCount) int {
		return b.Month.Compare(a.Month)
	})
	if len(byMonth) > StatsMonths {
		byMonth = byMonth[:StatsMonths]
	}
	if byTag == nil {
		byTag = []model.TagCount{}
	}
	if byMonth == nil {
		byMonth = []model.MonthCount{}
	}

	duration := time.Since(start)
	statsDuration.Observe(duration.Seconds())
	s.logger.Debug("Статистика рассчитана",
		slog.Int("total", total),
		slog.Int("tags", len(byTag)),
		slog.Int("months", len(byMonth)),
		slog.Duration("duration", duration),
	)

	return &model.Stats{Total: total, ByTag: byTag, ByMonth: byMonth}, nil
}

// SortTagCounts сортирует по убыванию count, при равенстве — по тегу (байтовый порядок).
func SortTagCounts(counts []model.TagCount) {
	slices.SortFunc(counts, func(a, b model.TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
}

// Tags возвращает все различные теги в лексикографическом (байтовом) порядке.
func (s *StatsService) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.repo.DistinctTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: получение тегов: %w", ErrPersistence, err)
	}
	if tags == nil {
		return []string{}, nil
	}
	slices.Sort(tags)
	return slices.Compact(tags), nil
}
