package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turyildiz/screenshot-archive/internal/client"
)

var uploadFlags struct {
	server  string
	tags    []string
	timeout time.Duration
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Загрузить файлы на сервер архива",
	Long:  `Отправляет локальные файлы на POST /screenshots работающего сервера и печатает id созданных записей.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFlags.server, "server", "http://localhost:8040", "адрес сервера архива")
	uploadCmd.Flags().StringSliceVar(&uploadFlags.tags, "tags", nil, "теги через запятую")
	uploadCmd.Flags().DurationVar(&uploadFlags.timeout, "timeout", 5*time.Minute, "таймаут загрузки одного файла")
}

func runUpload(cmd *cobra.Command, args []string) error {
	c := client.New(uploadFlags.server, &http.Client{Timeout: uploadFlags.timeout})

	var failed int
	for _, path := range args {
		id, err := uploadFile(cmd, c, path)
		if err != nil {
			failed++
			color.Red("✗ %s: %v", path, err)
			continue
		}
		color.Green("✓ %s → %s", path, id)
	}

	if failed > 0 {
		return fmt.Errorf("не загружено файлов: %d из %d", failed, len(args))
	}
	return nil
}

func uploadFile(cmd *cobra.Command, c *client.Client, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", errors.New("это каталог")
	}

	contentType, err := detectContentType(f)
	if err != nil {
		return "", err
	}

	bar := newBytesBar(filepath.Base(path), info.Size())
	created, err := c.Upload(cmd.Context(), client.UploadRequest{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Body:        f,
		Tags:        uploadFlags.tags,
		Progress:    bar,
	})
	_ = bar.Finish()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// detectContentType определяет MIME-тип по расширению,
// иначе по первым 512 байтам. Позиция чтения возвращается в начало.
func detectContentType(f *os.File) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(f.Name())); ct != "" {
		return ct, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
