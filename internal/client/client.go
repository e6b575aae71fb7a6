// Пакет client — HTTP-клиент архива скриншотов для CLI.
// Загрузка идёт потоково через io.Pipe, прогресс отдаётся во внешний io.Writer.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/turyildiz/screenshot-archive/internal/api/generated"
)

// APIError — ошибка, возвращённая сервером в формате {"error","code"}.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client — клиент HTTP API архива.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создаёт клиент. httpClient == nil — используется http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// UploadRequest — параметры загрузки одного файла.
type UploadRequest struct {
	Name        string
	ContentType string
	Body        io.Reader
	Tags        []string
	// Progress получает копию отправленных байт файла (например, progressbar).
	Progress io.Writer
}

// Upload отправляет файл multipart-запросом POST /screenshots
// и возвращает созданную запись.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*generated.Screenshot, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadBody(mw, req))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/screenshots", pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("загрузка %s: %w", req.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeAPIError(resp)
	}

	var created generated.Screenshot
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("декодирование ответа: %w", err)
	}
	return &created, nil
}

func writeUploadBody(mw *multipart.Writer, req UploadRequest) error {
	if len(req.Tags) > 0 {
		if err := mw.WriteField("tags", strings.Join(req.Tags, ",")); err != nil {
			return err
		}
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": req.Name,
	}))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}

	src := req.Body
	if req.Progress != nil {
		src = io.TeeReader(src, req.Progress)
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return mw.Close()
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body generated.Error
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Code = string(body.Code)
		apiErr.Message = body.Error
	}
	return apiErr
}
