package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/turyildiz/screenshot-archive/internal/domain/model"
)

// TestStatsService_Stats проверяет сборку и сортировку агрегатов.
func TestStatsService_Stats(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	repo := &mockScreenshotRepo{
		countFn: func(_ context.Context, f model.ListFilter) (int, error) {
			if f.Tag != nil || f.StartDate != nil || f.EndDate != nil {
				t.Error("total должен считаться без фильтра")
			}
			return 3, nil
		},
		tagCountsFn: func(_ context.Context) ([]model.TagCount, error) {
			return []model.TagCount{{Tag: "c", Count: 1}, {Tag: "a", Count: 3}, {Tag: "b", Count: 1}}, nil
		},
		countByMonthFn: func(_ context.Context, months int) ([]model.MonthCount, error) {
			if months != 12 {
				t.Errorf("months = %d, ожидался 12", months)
			}
			return []model.MonthCount{{Month: jan, Count: 1}, {Month: feb, Count: 2}}, nil
		},
	}

	svc := NewStatsService(repo, testLogger())
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() ошибка: %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("Total = %d, ожидался 3", stats.Total)
	}
	wantTags := []model.TagCount{{Tag: "a", Count: 3}, {Tag: "b", Count: 1}, {Tag: "c", Count: 1}}
	if !slices.Equal(stats.ByTag, wantTags) {
		t.Errorf("ByTag = %v, ожидался %v", stats.ByTag, wantTags)
	}
	if len(stats.ByMonth) != 2 || !stats.ByMonth[0].Month.Equal(feb) {
		t.Errorf("ByMonth = %v, ожидался февраль первым", stats.ByMonth)
	}
}

// TestStatsService_Stats_Empty проверяет пустой архив.
func TestStatsService_Stats_Empty(t *testing.T) {
	svc := NewStatsService(&mockScreenshotRepo{}, testLogger())
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() ошибка: %v", err)
	}
	if stats.Total != 0 || stats.ByTag == nil || stats.ByMonth == nil {
		t.Errorf("Stats() = %+v, ожидались нули и пустые срезы", stats)
	}
}

// TestStatsService_Stats_Error проверяет обёртку ошибки любого из запросов.
func TestStatsService_Stats_Error(t *testing.T) {
	repo := &mockScreenshotRepo{
		tagCountsFn: func(_ context.Context) ([]model.TagCount, error) {
			return nil, errors.New("boom")
		},
	}
	svc := NewStatsService(repo, testLogger())
	if _, err := svc.Stats(context.Background()); !errors.Is(err, ErrPersistence) {
		t.Errorf("Stats() = %v, ожидался ErrPersistence", err)
	}
}

// TestStatsService_Tags проверяет сортировку и уникальность тегов.
func TestStatsService_Tags(t *testing.T) {
	repo := &mockScreenshotRepo{
		distinctTagsFn: func(_ context.Context) ([]string, error) {
			return []string{"c", "a", "b", "a"}, nil
		},
	}
	svc := NewStatsService(repo, testLogger())

	tags, err := svc.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags() ошибка: %v", err)
	}
	if !slices.Equal(tags, []string{"a", "b", "c"}) {
		t.Errorf("Tags() = %v, ожидался [a b c]", tags)
	}

	empty, err := NewStatsService(&mockScreenshotRepo{}, testLogger()).Tags(context.Background())
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("Tags() на пустом архиве = %v, %v", empty, err)
	}
}
