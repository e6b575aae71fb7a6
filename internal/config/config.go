// Пакет config — загрузка и валидация конфигурации Screenshot Archive
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Таймаут graceful shutdown
	ShutdownTimeout time.Duration

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// Размер пула pgxpool
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnLifetime time.Duration

	// --- S3-совместимое объектное хранилище ---

	// Endpoint S3 API (например, https://<account>.r2.cloudflarestorage.com)
	S3Endpoint string
	// Регион (для R2 — "auto")
	S3Region string
	// Имя бакета
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	// Path-style адресация (MinIO)
	S3ForcePathStyle bool
	// Базовый публичный URL; пусто — https://{bucket}.{endpoint host}
	S3PublicBaseURL string
	// Время жизни presigned URL для скачивания
	S3PresignTTL time.Duration
	// HTTP-путь проверки доступности хранилища для dephealth (пусто — не проверяется)
	S3HealthPath string

	// --- Загрузка и выборка ---

	// Максимальный размер тела multipart-запроса в байтах
	UploadMaxBytes int64
	// Лимит страницы по умолчанию
	PageDefaultLimit int
	// Максимальный лимит страницы
	PageMaxLimit int

	// --- Кэш записей ---

	CacheSize int
	CacheTTL  time.Duration

	// --- topologymetrics ---

	DephealthEnabled       bool
	DephealthGroup         string
	DephealthCheckInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
//
//nolint:gocyclo,funlen // линейная последовательность переменных
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	cfg.Port, err = getEnvInt("SA_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("SA_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SA_PORT: порт %d вне диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SA_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("SA_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SA_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.HTTPReadTimeout, err = getEnvDuration("SA_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SA_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("SA_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SA_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("SA_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SA_HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout, err = getEnvDuration("SA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SA_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	if cfg.DBHost, err = getEnvRequired("SA_DB_HOST"); err != nil {
		return nil, err
	}
	cfg.DBPort, err = getEnvInt("SA_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("SA_DB_PORT: %w", err)
	}
	if cfg.DBName, err = getEnvRequired("SA_DB_NAME"); err != nil {
		return nil, err
	}
	if cfg.DBUser, err = getEnvRequired("SA_DB_USER"); err != nil {
		return nil, err
	}
	if cfg.DBPassword, err = getEnvRequired("SA_DB_PASSWORD"); err != nil {
		return nil, err
	}
	cfg.DBSSLMode = getEnvDefault("SA_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("SA_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}
	maxConns, err := getEnvInt("SA_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("SA_DB_MAX_CONNS: %w", err)
	}
	if maxConns < 1 || maxConns > 1000 {
		return nil, fmt.Errorf("SA_DB_MAX_CONNS: значение %d вне диапазона 1-1000", maxConns)
	}
	minConns, err := getEnvInt("SA_DB_MIN_CONNS", 0)
	if err != nil {
		return nil, fmt.Errorf("SA_DB_MIN_CONNS: %w", err)
	}
	if minConns < 0 || minConns > maxConns {
		return nil, fmt.Errorf("SA_DB_MIN_CONNS: значение %d вне диапазона 0-%d", minConns, maxConns)
	}
	cfg.DBMaxConns = int32(maxConns)
	cfg.DBMinConns = int32(minConns)
	cfg.DBMaxConnLifetime, err = getEnvDurationPositive("SA_DB_MAX_CONN_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SA_DB_MAX_CONN_LIFETIME: %w", err)
	}

	// --- Объектное хранилище ---

	if cfg.S3Endpoint, err = getEnvRequired("SA_S3_ENDPOINT"); err != nil {
		return nil, err
	}
	if err := validateHTTPURL(cfg.S3Endpoint); err != nil {
		return nil, fmt.Errorf("SA_S3_ENDPOINT: %w", err)
	}
	cfg.S3Region = getEnvDefault("SA_S3_REGION", "auto")
	if cfg.S3Bucket, err = getEnvRequired("SA_S3_BUCKET"); err != nil {
		return nil, err
	}
	if cfg.S3AccessKeyID, err = getEnvRequired("SA_S3_ACCESS_KEY_ID"); err != nil {
		return nil, err
	}
	if cfg.S3SecretAccessKey, err = getEnvRequired("SA_S3_SECRET_ACCESS_KEY"); err != nil {
		return nil, err
	}
	cfg.S3ForcePathStyle, err = getEnvBool("SA_S3_FORCE_PATH_STYLE", false)
	if err != nil {
		return nil, fmt.Errorf("SA_S3_FORCE_PATH_STYLE: %w", err)
	}
	cfg.S3PublicBaseURL = strings.TrimRight(os.Getenv("SA_S3_PUBLIC_BASE_URL"), "/")
	if cfg.S3PublicBaseURL != "" {
		if err := validateHTTPURL(cfg.S3PublicBaseURL); err != nil {
			return nil, fmt.Errorf("SA_S3_PUBLIC_BASE_URL: %w", err)
		}
	}
	cfg.S3PresignTTL, err = getEnvDurationPositive("SA_S3_PRESIGN_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("SA_S3_PRESIGN_TTL: %w", err)
	}
	cfg.S3HealthPath = os.Getenv("SA_S3_HEALTH_PATH")

	// --- Загрузка и выборка ---

	maxBytes, err := getEnvInt("SA_UPLOAD_MAX_BYTES", 10<<20)
	if err != nil {
		return nil, fmt.Errorf("SA_UPLOAD_MAX_BYTES: %w", err)
	}
	if maxBytes < 1 {
		return nil, fmt.Errorf("SA_UPLOAD_MAX_BYTES: значение должно быть > 0")
	}
	cfg.UploadMaxBytes = int64(maxBytes)

	cfg.PageDefaultLimit, err = getEnvInt("SA_PAGE_DEFAULT_LIMIT", 20)
	if err != nil {
		return nil, fmt.Errorf("SA_PAGE_DEFAULT_LIMIT: %w", err)
	}
	cfg.PageMaxLimit, err = getEnvInt("SA_PAGE_MAX_LIMIT", 100)
	if err != nil {
		return nil, fmt.Errorf("SA_PAGE_MAX_LIMIT: %w", err)
	}
	if cfg.PageDefaultLimit < 1 || cfg.PageMaxLimit < 1 {
		return nil, fmt.Errorf("SA_PAGE_DEFAULT_LIMIT, SA_PAGE_MAX_LIMIT: значения должны быть > 0")
	}
	if cfg.PageDefaultLimit > cfg.PageMaxLimit {
		return nil, fmt.Errorf("SA_PAGE_DEFAULT_LIMIT (%d) не может быть больше SA_PAGE_MAX_LIMIT (%d)",
			cfg.PageDefaultLimit, cfg.PageMaxLimit)
	}

	// --- Кэш ---

	cfg.CacheSize, err = getEnvInt("SA_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("SA_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize < 1 {
		return nil, fmt.Errorf("SA_CACHE_SIZE: значение должно быть > 0")
	}
	cfg.CacheTTL, err = getEnvDurationPositive("SA_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SA_CACHE_TTL: %w", err)
	}

	// --- topologymetrics ---

	cfg.DephealthEnabled, err = getEnvBool("SA_DEPHEALTH_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("SA_DEPHEALTH_ENABLED: %w", err)
	}
	cfg.DephealthGroup = getEnvDefault("SA_DEPHEALTH_GROUP", "screenshot-archive")
	cfg.DephealthCheckInterval, err = getEnvDurationPositive("SA_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SA_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает URL подключения к PostgreSQL для pgxpool.
// Пользователь, пароль и имя БД экранируются, поэтому допустимы пробелы и кавычки.
func (c *Config) DatabaseDSN() string {
	return c.databaseURL("postgres")
}

// MigrateURL возвращает URL для golang-migrate (схема pgx5).
func (c *Config) MigrateURL() string {
	return c.databaseURL("pgx5")
}

func (c *Config) databaseURL(scheme string) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// PostgresURL возвращает URL PostgreSQL без пароля — для лейблов метрик dephealth.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvDurationPositive — как getEnvDuration, но значение должно быть > 0.
func getEnvDurationPositive(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// validateHTTPURL проверяет, что строка — абсолютный http(s) URL с хостом.
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("некорректный URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q должен начинаться с http:// или https://", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q не содержит хост", raw)
	}
	return nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
