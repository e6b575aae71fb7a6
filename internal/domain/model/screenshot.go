// Пакет model — доменные модели Screenshot Archive.
// Screenshot — маппинг таблицы screenshots.
package model

import "time"

// Screenshot — запись о загруженном скриншоте.
// Создаётся только Upload Pipeline и после создания не изменяется.
type Screenshot struct {
	// ID — UUID записи, задаётся при загрузке
	ID string
	// Filename — ключ объекта в хранилище (генерируется, уникален)
	Filename string
	// OriginalName — имя файла от клиента, только для отображения
	OriginalName string
	// URL — публичный адрес объекта, вычисляется из Filename
	URL string
	// Size — размер в байтах по данным транспорта загрузки
	Size int64
	// MimeType — MIME-тип по данным транспорта загрузки
	MimeType string
	// Tags — теги в порядке ввода, дубликаты не удаляются
	Tags []string
	// CreatedAt — время вставки, назначается БД
	CreatedAt time.Time
}

// ListFilter — фильтр выборки скриншотов.
// nil-поля не участвуют в фильтрации; условия объединяются через AND.
type ListFilter struct {
	// Tag — запись должна содержать тег (точное совпадение)
	Tag *string
	// StartDate — created_at >= StartDate
	StartDate *time.Time
	// EndDate — created_at <= EndDate
	EndDate *time.Time
}

// TagCount — количество вхождений тега.
type TagCount struct {
	Tag   string
	Count int
}

// MonthCount — количество записей за календарный месяц (UTC).
type MonthCount struct {
	// Month — начало месяца, 00:00 UTC первого числа
	Month time.Time
	Count int
}

// Stats — агрегированная статистика архива.
type Stats struct {
	Total   int
	ByTag   []TagCount
	ByMonth []MonthCount
}
