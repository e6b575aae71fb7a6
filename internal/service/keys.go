package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// unsafeKeyChars — символы, недопустимые в ключе объекта.
var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// SanitizeFilename заменяет каждый символ вне [A-Za-z0-9.-] на '_'.
func SanitizeFilename(name string) string {
	return unsafeKeyChars.ReplaceAllString(name, "_")
}

// GenerateKey формирует ключ объекта вида "{unix ms}-{sanitized name}".
// Две загрузки с одинаковым именем в одну миллисекунду получат один ключ.
func GenerateKey(originalName string, now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), SanitizeFilename(originalName))
}

// ParseTags разбирает строку тегов через запятую.
// Пробелы по краям обрезаются, пустые элементы отбрасываются,
// порядок и дубликаты сохраняются. Всегда возвращает не-nil срез.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
