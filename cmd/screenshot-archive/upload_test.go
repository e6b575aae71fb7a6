package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectContentType(t *testing.T) {
	dir := t.TempDir()
	pngHeader := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"по расширению", "shot.png", []byte("не важно"), "image/png"},
		{"по содержимому", "shot", pngHeader, "image/png"},
		{"короткий текст", "notes", []byte("hello"), "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, tt.data, 0o600); err != nil {
				t.Fatal(err)
			}
			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			got, err := detectContentType(f)
			if err != nil {
				t.Fatalf("detectContentType: %v", err)
			}
			if got != tt.want {
				t.Errorf("тип = %q, ожидался %q", got, tt.want)
			}

			// позиция чтения должна вернуться в начало
			rest, _ := io.ReadAll(f)
			if len(rest) != len(tt.data) {
				t.Errorf("прочитано %d байт после определения типа, ожидалось %d", len(rest), len(tt.data))
			}
		})
	}
}
