package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turyildiz/screenshot-archive/internal/config"
	"github.com/turyildiz/screenshot-archive/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить миграции БД и выйти",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	logger := config.SetupLogger(cfg)

	if err := database.Migrate(cfg, logger); err != nil {
		return err
	}

	color.Green("✓ Миграции применены (%s)", cfg.DBName)
	return nil
}
