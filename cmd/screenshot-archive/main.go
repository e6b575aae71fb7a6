// main.go — точка входа screenshot-archive.
// Команды: serve (HTTP API), migrate, reconcile (сверка бакета), upload (клиент).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turyildiz/screenshot-archive/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "screenshot-archive",
	Short:        "Архив скриншотов: S3-совместимое хранилище + PostgreSQL",
	Long:         `Сервис загрузки, поиска и статистики скриншотов. Файлы хранятся в S3-совместимом бакете, метаданные в PostgreSQL.`,
	Version:      config.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(uploadCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
