// Пакет objectstore — клиент S3-совместимого объектного хранилища
// (Cloudflare R2, MinIO, AWS S3) на базе aws-sdk-go-v2.
//
// Клиент создаётся явно и передаётся в сервисы; глобального состояния нет.
// Повторов и multipart-загрузки нет: объект записывается одним PutObject.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/turyildiz/screenshot-archive/internal/config"
)

// Options — параметры подключения к хранилищу.
type Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
	// PublicBaseURL — базовый URL для публичных ссылок; пусто — https://{bucket}.{endpoint host}
	PublicBaseURL string
}

// OptionsFromConfig собирает Options из конфигурации сервиса.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		ForcePathStyle:  cfg.S3ForcePathStyle,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	}
}

// ObjectInfo — сведения об объекте из листинга бакета.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Client — клиент объектного хранилища для одного бакета.
type Client struct {
	s3      *s3.Client
	presign *s3.PresignClient
	bucket  string
	// publicBase — префикс публичных URL без завершающего слэша
	publicBase string
	logger     *slog.Logger
}

// New создаёт клиент. Сетевых обращений не выполняет.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.Bucket == "" {
		return nil, errors.New("не задано имя бакета")
	}

	endpoint, err := url.Parse(opts.Endpoint)
	if err != nil || endpoint.Host == "" {
		return nil, fmt.Errorf("некорректный endpoint %q", opts.Endpoint)
	}

	publicBase := strings.TrimRight(opts.PublicBaseURL, "/")
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.%s", opts.Bucket, endpoint.Host)
	}

	region := opts.Region
	if region == "" {
		region = "auto"
	}

	client := s3.New(s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		BaseEndpoint: aws.String(opts.Endpoint),
		UsePathStyle: opts.ForcePathStyle,
		// R2 и MinIO не поддерживают все алгоритмы контрольных сумм SDK
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	})

	return &Client{
		s3:         client,
		presign:    s3.NewPresignClient(client),
		bucket:     opts.Bucket,
		publicBase: publicBase,
		logger:     logger.With(slog.String("component", "object_store")),
	}, nil
}

// Bucket возвращает имя бакета.
func (c *Client) Bucket() string {
	return c.bucket
}

// Put сохраняет data под ключом key и возвращает key.
// Существующий объект с тем же ключом перезаписывается.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		c.logger.Warn("Ошибка записи объекта",
			slog.String("key", key),
			slog.String("code", errorCode(err)),
		)
		return "", fmt.Errorf("put %s/%s: %w", c.bucket, key, err)
	}
	return key, nil
}

// PresignOption — дополнительная настройка presigned URL.
type PresignOption func(*s3.GetObjectInput)

// WithDownloadName добавляет Content-Disposition: attachment с указанным именем файла.
func WithDownloadName(name string) PresignOption {
	return func(in *s3.GetObjectInput) {
		if name == "" {
			return
		}
		in.ResponseContentDisposition = aws.String(
			mime.FormatMediaType("attachment", map[string]string{"filename": name}),
		)
	}
}

// PresignedGet возвращает подписанный URL на чтение объекта, действительный ttl.
// Существование объекта не проверяется.
func (c *Client) PresignedGet(ctx context.Context, key string, ttl time.Duration, opts ...PresignOption) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	for _, opt := range opts {
		opt(input)
	}

	req, err := c.presign.PresignGetObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", c.bucket, key, err)
	}
	return req.URL, nil
}

// Delete удаляет объект. Отсутствие объекта ошибкой не считается (семантика S3).
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// PublicURL возвращает публичный адрес объекта.
// Чистая функция от key и конфигурации: существование объекта не проверяется.
func (c *Client) PublicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.publicBase + "/" + strings.Join(segments, "/")
}

// List возвращает все объекты бакета с префиксом prefix (пустой — все объекты).
// Пагинация ListObjectsV2 обрабатывается автоматически.
func (c *Client) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(c.s3, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", c.bucket, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

// CheckReady проверяет доступность бакета через HeadBucket.
// Реализует интерфейс handlers.ReadinessChecker.
func (c *Client) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return "fail", fmt.Sprintf("бакет %s недоступен: %s", c.bucket, errorCode(err))
	}
	return "ok", "бакет доступен"
}

// errorCode извлекает код ошибки S3 API; для сетевых ошибок — текст ошибки.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return err.Error()
}
