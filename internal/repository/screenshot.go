package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/turyildiz/screenshot-archive/internal/domain/model"
)

// screenshotColumns — список столбцов таблицы screenshots для SELECT-запросов.
const screenshotColumns = `id, filename, original_name, url, size, mime_type, tags, created_at`

// ScreenshotRepository — доступ к таблице screenshots.
// Записи только создаются и читаются; обновления и удаления нет.
type ScreenshotRepository interface {
	// Create вставляет запись; CreatedAt заполняется значением из БД.
	Create(ctx context.Context, s *model.Screenshot) error
	// GetByID возвращает запись по UUID или ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Screenshot, error)
	// List возвращает страницу записей, отсортированных по created_at DESC.
	List(ctx context.Context, filter model.ListFilter, limit, offset int) ([]*model.Screenshot, error)
	// Count возвращает количество записей, подходящих под фильтр.
	Count(ctx context.Context, filter model.ListFilter) (int, error)
	// TagCounts возвращает количество вхождений каждого тега во всех записях.
	TagCounts(ctx context.Context) ([]model.TagCount, error)
	// CountByMonth возвращает количество записей по месяцам (UTC), не более months последних месяцев.
	CountByMonth(ctx context.Context, months int) ([]model.MonthCount, error)
	// DistinctTags возвращает все различные теги (порядок не гарантируется).
	DistinctTags(ctx context.Context) ([]string, error)
	// ExistingFilenames возвращает подмножество filenames, для которых есть записи.
	ExistingFilenames(ctx context.Context, filenames []string) (map[string]struct{}, error)
}

// screenshotRepo — реализация ScreenshotRepository через pgx.
type screenshotRepo struct {
	db DBTX
}

// NewScreenshotRepository создаёт репозиторий скриншотов.
func NewScreenshotRepository(db DBTX) ScreenshotRepository {
	return &screenshotRepo{db: db}
}

func (r *screenshotRepo) Create(ctx context.Context, s *model.Screenshot) error {
	query := `
		INSERT INTO screenshots (id, filename, original_name, url, size, mime_type, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}

	err := r.db.QueryRow(ctx, query,
		s.ID, s.Filename, s.OriginalName, s.URL, s.Size, s.MimeType, tags,
	).Scan(&s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: скриншот с таким id или filename уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка создания записи скриншота: %w", err)
	}
	s.Tags = tags
	return nil
}

func (r *screenshotRepo) GetByID(ctx context.Context, id string) (*model.Screenshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM screenshots WHERE id = $1`, screenshotColumns)

	s, err := scanScreenshot(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения скриншота: %w", err)
	}
	return s, nil
}

func (r *screenshotRepo) List(ctx context.Context, filter model.ListFilter, limit, offset int) ([]*model.Screenshot, error) {
	where, args := buildListWhere(filter, 1)
	argNum := len(args) + 1

	// id DESC — стабильный порядок при одинаковом created_at, иначе страницы
	// могут пересекаться.
	query := fmt.Sprintf(
		`SELECT %s FROM screenshots %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		screenshotColumns, where, argNum, argNum+1,
	)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки скриншотов: %w", err)
	}
	defer rows.Close()

	result := make([]*model.Screenshot, 0, limit)
	for rows.Next() {
		s, err := scanScreenshot(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования скриншота: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}

	return result, nil
}

func (r *screenshotRepo) Count(ctx context.Context, filter model.ListFilter) (int, error) {
	where, args := buildListWhere(filter, 1)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM screenshots %s`, where)

	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта скриншотов: %w", err)
	}
	return total, nil
}

func (r *screenshotRepo) TagCounts(ctx context.Context) ([]model.TagCount, error) {
	// unnest разворачивает массив построчно: тег, повторённый в одной записи,
	// учитывается столько раз, сколько он встречается.
	query := `
		SELECT tag, COUNT(*)
		FROM screenshots, unnest(tags) AS tag
		GROUP BY tag`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта тегов: %w", err)
	}
	defer rows.Close()

	var result []model.TagCount
	for rows.Next() {
		var tc model.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования тега: %w", err)
		}
		result = append(result, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации тегов: %w", err)
	}
	return result, nil
}

func (r *screenshotRepo) CountByMonth(ctx context.Context, months int) ([]model.MonthCount, error) {
	query := `
		SELECT date_trunc('month', created_at AT TIME ZONE 'UTC') AS month, COUNT(*)
		FROM screenshots
		GROUP BY month
		ORDER BY month DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, months)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта по месяцам: %w", err)
	}
	defer rows.Close()

	var result []model.MonthCount
	for rows.Next() {
		var mc model.MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования месяца: %w", err)
		}
		mc.Month = mc.Month.UTC()
		result = append(result, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации месяцев: %w", err)
	}
	return result, nil
}

func (r *screenshotRepo) DistinctTags(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT unnest(tags) FROM screenshots`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения тегов: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("ошибка сканирования тега: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации тегов: %w", err)
	}
	return tags, nil
}

func (r *screenshotRepo) ExistingFilenames(ctx context.Context, filenames []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(filenames))
	if len(filenames) == 0 {
		return existing, nil
	}

	rows, err := r.db.Query(ctx, `SELECT filename FROM screenshots WHERE filename = ANY($1)`, filenames)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки filenames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("ошибка сканирования filename: %w", err)
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации filenames: %w", err)
	}
	return existing, nil
}

// scanScreenshot читает одну строку в порядке screenshotColumns.
func scanScreenshot(row pgx.Row) (*model.Screenshot, error) {
	s := &model.Screenshot{}
	if err := row.Scan(
		&s.ID, &s.Filename, &s.OriginalName, &s.URL, &s.Size, &s.MimeType, &s.Tags, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s, nil
}

// buildListWhere строит WHERE-условие и аргументы для выборки и подсчёта.
// Один и тот же builder используется в List и Count, поэтому total
// всегда соответствует выборке.
// startArg — номер первого $-параметра.
func buildListWhere(filter model.ListFilter, startArg int) (whereClause string, args []any) {
	var conditions []string
	argNum := startArg

	// Принадлежность тега массиву (оператор @> использует GIN-индекс)
	if filter.Tag != nil && *filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("tags @> $%d", argNum))
		args = append(args, []string{*filter.Tag})
		argNum++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argNum))
		args = append(args, *filter.StartDate)
		argNum++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argNum))
		args = append(args, *filter.EndDate)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}
