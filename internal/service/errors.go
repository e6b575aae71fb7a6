// Пакет service — бизнес-логика архива скриншотов.
package service

import "errors"

// Ошибки сервисного слоя.
// Handlers классифицируют их через errors.Is и отображают на HTTP-статусы.
var (
	// ErrNotFound — скриншот не найден.
	ErrNotFound = errors.New("скриншот не найден")
	// ErrMissingFile — в запросе на загрузку нет файла.
	ErrMissingFile = errors.New("файл не передан")
	// ErrInvalidQuery — некорректные параметры выборки (page, limit, даты).
	ErrInvalidQuery = errors.New("некорректные параметры запроса")
	// ErrStoreUnavailable — объектное хранилище отклонило запрос или недоступно.
	ErrStoreUnavailable = errors.New("объектное хранилище недоступно")
	// ErrPersistence — ошибка записи или чтения метаданных.
	ErrPersistence = errors.New("ошибка хранилища метаданных")
)
