package service

import (
	"regexp"
	"slices"
	"testing"
	"time"
)

// TestSanitizeFilename проверяет замену небезопасных символов.
func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"my photo!@#.png", "my_photo___.png"},
		{"Screen-Shot.2024.PNG", "Screen-Shot.2024.PNG"},
		{"../etc/passwd", ".._etc_passwd"},
		{"снимок.png", "______.png"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, ожидался %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestGenerateKey проверяет формат ключа.
func TestGenerateKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	key := GenerateKey("my photo!@#.png", now)
	if key != "1700000000123-my_photo___.png" {
		t.Errorf("GenerateKey() = %q", key)
	}

	safe := regexp.MustCompile(`^[0-9]+-[A-Za-z0-9._-]*$`)
	if !safe.MatchString(GenerateKey("a b/c?d", now)) {
		t.Errorf("ключ содержит небезопасные символы")
	}
}

// TestParseTags проверяет разбор строки тегов.
func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"пустая строка", "", []string{}},
		{"только запятые и пробелы", " , ,, ", []string{}},
		{"обрезка пробелов", " ui , bug ", []string{"ui", "bug"}},
		{"порядок и дубликаты сохраняются", "b,a,b", []string{"b", "a", "b"}},
		{"пробел внутри тега", "dark mode,ui", []string{"dark mode", "ui"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.in)
			if got == nil {
				t.Fatal("ParseTags() вернул nil")
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseTags(%q) = %v, ожидался %v", tt.in, got, tt.want)
			}
		})
	}
}
