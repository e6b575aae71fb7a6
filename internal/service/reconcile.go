// reconcile.go — поиск объектов в бакете, для которых нет записи метаданных.
// Такие объекты появляются, когда запись объекта прошла, а вставка в БД — нет.
// Запускается отдельной командой, не из HTTP-сервера; записи БД не изменяет.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/turyildiz/screenshot-archive/internal/repository"
)

// reconcileBatchSize — сколько ключей проверяется в БД одним запросом.
const reconcileBatchSize = 500

// ReconcileOptions — параметры прохода.
type ReconcileOptions struct {
	// Prefix — ограничение по префиксу ключа (пусто — весь бакет)
	Prefix string
	// MinAge — объекты моложе этого возраста пропускаются (загрузка может быть в процессе)
	MinAge time.Duration
	// Delete — удалять найденные объекты; иначе только отчёт
	Delete bool
	// OnDelete вызывается после каждой попытки удаления (для индикации прогресса)
	OnDelete func(done, total int)
}

// Orphan — объект без записи метаданных.
type Orphan struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ReconcileReport — итог прохода.
type ReconcileReport struct {
	Scanned int
	Skipped int
	Orphans []Orphan
	Deleted int
	Failed  int
}

// ReconcileService — сверка бакета и таблицы screenshots.
type ReconcileService struct {
	repo   repository.ScreenshotRepository
	store  ObjectStore
	logger *slog.Logger
	now    func() time.Time
}

// NewReconcileService создаёт сервис сверки.
func NewReconcileService(repo repository.ScreenshotRepository, store ObjectStore, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		repo:   repo,
		store:  store,
		logger: logger.With(slog.String("component", "reconcile")),
		now:    time.Now,
	}
}

// Run выполняет проход. Ошибки удаления отдельных объектов не прерывают проход,
// а учитываются в Failed.
func (s *ReconcileService) Run(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error) {
	objects, err := s.store.List(ctx, opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	report := &ReconcileReport{Scanned: len(objects)}
	cutoff := s.now().Add(-opts.MinAge)

	for start := 0; start < len(objects); start += reconcileBatchSize {
		end := min(start+reconcileBatchSize, len(objects))
		batch := objects[start:end]

		keys := make([]string, len(batch))
		for i, obj := range batch {
			keys[i] = obj.Key
		}
		existing, err := s.repo.ExistingFilenames(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}

		for _, obj := range batch {
			if _, ok := existing[obj.Key]; ok {
				continue
			}
			if obj.LastModified.After(cutoff) {
				report.Skipped++
				continue
			}
			report.Orphans = append(report.Orphans, Orphan{
				Key:          obj.Key,
				Size:         obj.Size,
				LastModified: obj.LastModified,
			})
		}
	}

	s.logger.Info("Сверка бакета завершена",
		slog.Int("scanned", report.Scanned),
		slog.Int("orphans", len(report.Orphans)),
		slog.Int("skipped_recent", report.Skipped),
	)

	if !opts.Delete {
		return report, nil
	}

	for i, orphan := range report.Orphans {
		if err := s.store.Delete(ctx, orphan.Key); err != nil {
			report.Failed++
			s.logger.Warn("Не удалось удалить объект",
				slog.String("key", orphan.Key),
				slog.String("error", err.Error()),
			)
		} else {
			report.Deleted++
		}
		if opts.OnDelete != nil {
			opts.OnDelete(i+1, len(report.Orphans))
		}
	}

	s.logger.Info("Объекты-сироты удалены",
		slog.Int("deleted", report.Deleted),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}
