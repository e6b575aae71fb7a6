package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/turyildiz/screenshot-archive/internal/domain/model"
	"github.com/turyildiz/screenshot-archive/internal/objectstore"
	"github.com/turyildiz/screenshot-archive/internal/repository"
)

// --- Mock repository ---

// mockScreenshotRepo — мок ScreenshotRepository для unit-тестов.
type mockScreenshotRepo struct {
	createFn            func(ctx context.Context, s *model.Screenshot) error
	getByIDFn           func(ctx context.Context, id string) (*model.Screenshot, error)
	listFn              func(ctx context.Context, filter model.ListFilter, limit, offset int) ([]*model.Screenshot, error)
	countFn             func(ctx context.Context, filter model.ListFilter) (int, error)
	tagCountsFn         func(ctx context.Context) ([]model.TagCount, error)
	countByMonthFn      func(ctx context.Context, months int) ([]model.MonthCount, error)
	distinctTagsFn      func(ctx context.Context) ([]string, error)
	existingFilenamesFn func(ctx context.Context, filenames []string) (map[string]struct{}, error)
}

func (m *mockScreenshotRepo) Create(ctx context.Context, s *model.Screenshot) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	s.CreatedAt = time.Now().UTC()
	return nil
}

func (m *mockScreenshotRepo) GetByID(ctx context.Context, id string) (*model.Screenshot, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockScreenshotRepo) List(ctx context.Context, filter model.ListFilter, limit, offset int) ([]*model.Screenshot, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter, limit, offset)
	}
	return nil, nil
}

func (m *mockScreenshotRepo) Count(ctx context.Context, filter model.ListFilter) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, filter)
	}
	return 0, nil
}

func (m *mockScreenshotRepo) TagCounts(ctx context.Context) ([]model.TagCount, error) {
	if m.tagCountsFn != nil {
		return m.tagCountsFn(ctx)
	}
	return nil, nil
}

func (m *mockScreenshotRepo) CountByMonth(ctx context.Context, months int) ([]model.MonthCount, error) {
	if m.countByMonthFn != nil {
		return m.countByMonthFn(ctx, months)
	}
	return nil, nil
}

func (m *mockScreenshotRepo) DistinctTags(ctx context.Context) ([]string, error) {
	if m.distinctTagsFn != nil {
		return m.distinctTagsFn(ctx)
	}
	return nil, nil
}

func (m *mockScreenshotRepo) ExistingFilenames(ctx context.Context, filenames []string) (map[string]struct{}, error) {
	if m.existingFilenamesFn != nil {
		return m.existingFilenamesFn(ctx, filenames)
	}
	return map[string]struct{}{}, nil
}

// --- Mock object store ---

// mockObjectStore — мок ObjectStore.
type mockObjectStore struct {
	putFn          func(ctx context.Context, key string, data []byte, contentType string) (string, error)
	presignedGetFn func(ctx context.Context, key string, ttl time.Duration) (string, error)
	deleteFn       func(ctx context.Context, key string) error
	listFn         func(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error)

	putCalls int
}

func (m *mockObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.putCalls++
	if m.putFn != nil {
		return m.putFn(ctx, key, data, contentType)
	}
	return key, nil
}

func (m *mockObjectStore) PresignedGet(ctx context.Context, key string, ttl time.Duration, _ ...objectstore.PresignOption) (string, error) {
	if m.presignedGetFn != nil {
		return m.presignedGetFn(ctx, key, ttl)
	}
	return "https://signed.example.com/" + key, nil
}

func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockObjectStore) PublicURL(key string) string {
	return "https://shots.example.com/" + key
}

func (m *mockObjectStore) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	if m.listFn != nil {
		return m.listFn(ctx, prefix)
	}
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int {
	return &v
}
