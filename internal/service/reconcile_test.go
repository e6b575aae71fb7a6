package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/turyildiz/screenshot-archive/internal/objectstore"
)

func newTestReconcileService(repo *mockScreenshotRepo, store *mockObjectStore, now time.Time) *ReconcileService {
	svc := NewReconcileService(repo, store, testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

// TestReconcileService_DryRun проверяет поиск сирот без удаления.
func TestReconcileService_DryRun(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour)

	store := &mockObjectStore{
		listFn: func(_ context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
			if prefix != "17" {
				t.Errorf("prefix = %q, ожидался 17", prefix)
			}
			return []objectstore.ObjectInfo{
				{Key: "17-known.png", LastModified: old},
				{Key: "17-orphan.png", Size: 42, LastModified: old},
				{Key: "17-fresh.png", LastModified: now.Add(-time.Minute)},
			}, nil
		},
		deleteFn: func(_ context.Context, _ string) error {
			t.Error("Delete не должен вызываться в dry-run")
			return nil
		},
	}
	repo := &mockScreenshotRepo{
		existingFilenamesFn: func(_ context.Context, names []string) (map[string]struct{}, error) {
			if len(names) != 3 {
				t.Errorf("проверено %d ключей, ожидалось 3", len(names))
			}
			return map[string]struct{}{"17-known.png": {}}, nil
		},
	}

	svc := newTestReconcileService(repo, store, now)
	report, err := svc.Run(context.Background(), ReconcileOptions{Prefix: "17", MinAge: time.Hour})
	if err != nil {
		t.Fatalf("Run() ошибка: %v", err)
	}

	if report.Scanned != 3 || report.Skipped != 1 {
		t.Errorf("Scanned = %d, Skipped = %d; ожидались 3, 1", report.Scanned, report.Skipped)
	}
	if len(report.Orphans) != 1 || report.Orphans[0].Key != "17-orphan.png" || report.Orphans[0].Size != 42 {
		t.Errorf("Orphans = %+v", report.Orphans)
	}
	if report.Deleted != 0 {
		t.Errorf("Deleted = %d, ожидался 0", report.Deleted)
	}
}

// TestReconcileService_Delete проверяет удаление и учёт ошибок.
func TestReconcileService_Delete(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-48 * time.Hour)

	var deleted []string
	store := &mockObjectStore{
		listFn: func(_ context.Context, _ string) ([]objectstore.ObjectInfo, error) {
			return []objectstore.ObjectInfo{
				{Key: "a", LastModified: old},
				{Key: "b", LastModified: old},
			}, nil
		},
		deleteFn: func(_ context.Context, key string) error {
			if key == "b" {
				return errors.New("access denied")
			}
			deleted = append(deleted, key)
			return nil
		},
	}

	progress := 0
	svc := newTestReconcileService(&mockScreenshotRepo{}, store, now)
	report, err := svc.Run(context.Background(), ReconcileOptions{
		MinAge:   time.Hour,
		Delete:   true,
		OnDelete: func(done, _ int) { progress = done },
	})
	if err != nil {
		t.Fatalf("Run() ошибка: %v", err)
	}

	if report.Deleted != 1 || report.Failed != 1 {
		t.Errorf("Deleted = %d, Failed = %d; ожидались 1, 1", report.Deleted, report.Failed)
	}
	if len(deleted) != 1 || deleted[0] != "a" {
		t.Errorf("удалены %v, ожидался [a]", deleted)
	}
	if progress != 2 {
		t.Errorf("progress = %d, ожидался 2", progress)
	}
}

// TestReconcileService_Batches проверяет разбиение ключей на пачки.
func TestReconcileService_Batches(t *testing.T) {
	objects := make([]objectstore.ObjectInfo, reconcileBatchSize+10)
	for i := range objects {
		objects[i] = objectstore.ObjectInfo{Key: fmt.Sprintf("k-%d", i)}
	}

	batches := 0
	repo := &mockScreenshotRepo{
		existingFilenamesFn: func(_ context.Context, names []string) (map[string]struct{}, error) {
			batches++
			if len(names) > reconcileBatchSize {
				t.Errorf("пачка из %d ключей", len(names))
			}
			existing := make(map[string]struct{}, len(names))
			for _, n := range names {
				existing[n] = struct{}{}
			}
			return existing, nil
		},
	}
	store := &mockObjectStore{
		listFn: func(_ context.Context, _ string) ([]objectstore.ObjectInfo, error) {
			return objects, nil
		},
	}

	svc := newTestReconcileService(repo, store, time.Now())
	report, err := svc.Run(context.Background(), ReconcileOptions{})
	if err != nil {
		t.Fatalf("Run() ошибка: %v", err)
	}
	if batches != 2 {
		t.Errorf("batches = %d, ожидалось 2", batches)
	}
	if len(report.Orphans) != 0 {
		t.Errorf("Orphans = %d, ожидалось 0", len(report.Orphans))
	}
}

// TestReconcileService_ListError проверяет ошибку листинга.
func TestReconcileService_ListError(t *testing.T) {
	store := &mockObjectStore{
		listFn: func(_ context.Context, _ string) ([]objectstore.ObjectInfo, error) {
			return nil, errors.New("no such bucket")
		},
	}
	svc := newTestReconcileService(&mockScreenshotRepo{}, store, time.Now())
	if _, err := svc.Run(context.Background(), ReconcileOptions{}); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Run() = %v, ожидался ErrStoreUnavailable", err)
	}
}
