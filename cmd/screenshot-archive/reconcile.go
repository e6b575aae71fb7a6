package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/turyildiz/screenshot-archive/internal/config"
	"github.com/turyildiz/screenshot-archive/internal/database"
	"github.com/turyildiz/screenshot-archive/internal/objectstore"
	"github.com/turyildiz/screenshot-archive/internal/repository"
	"github.com/turyildiz/screenshot-archive/internal/service"
)

var reconcileFlags struct {
	delete bool
	prefix string
	minAge time.Duration
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Найти объекты в бакете без записи метаданных",
	Long: `Сравнивает ключи объектов в бакете с таблицей screenshots.
По умолчанию только печатает найденные объекты; с --delete удаляет их из бакета.
Объекты моложе --min-age пропускаются: их загрузка может быть ещё не завершена.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileFlags.delete, "delete", false, "удалить найденные объекты")
	reconcileCmd.Flags().StringVar(&reconcileFlags.prefix, "prefix", "", "проверять только ключи с префиксом")
	reconcileCmd.Flags().DurationVar(&reconcileFlags.minAge, "min-age", time.Hour, "минимальный возраст объекта")
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	logger := config.SetupLogger(cfg)

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := objectstore.New(objectstore.OptionsFromConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("ошибка создания клиента хранилища: %w", err)
	}

	var bar *progressbar.ProgressBar
	opts := service.ReconcileOptions{
		Prefix: reconcileFlags.prefix,
		MinAge: reconcileFlags.minAge,
		Delete: reconcileFlags.delete,
		OnDelete: func(done, total int) {
			if bar == nil {
				bar = newCountBar("удаление", total)
			}
			_ = bar.Set(done)
		},
	}

	svc := service.NewReconcileService(repository.NewScreenshotRepository(pool), store, logger)
	report, err := svc.Run(ctx, opts)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	printReconcileReport(report, reconcileFlags.delete)
	if report.Failed > 0 {
		return fmt.Errorf("не удалось удалить %d объектов", report.Failed)
	}
	return nil
}

func printReconcileReport(report *service.ReconcileReport, deleted bool) {
	fmt.Printf("Проверено объектов: %d, пропущено свежих: %d\n", report.Scanned, report.Skipped)

	if len(report.Orphans) == 0 {
		color.Green("✓ Объектов без метаданных нет")
		return
	}

	for _, o := range report.Orphans {
		color.Yellow("  %s  %d байт  %s", o.Key, o.Size, o.LastModified.UTC().Format(time.RFC3339))
	}

	if !deleted {
		color.Yellow("Найдено объектов без метаданных: %d (запустите с --delete для удаления)", len(report.Orphans))
		return
	}
	color.Green("✓ Удалено: %d", report.Deleted)
	if report.Failed > 0 {
		color.Red("✗ Ошибок удаления: %d", report.Failed)
	}
}
