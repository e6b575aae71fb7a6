// screenshots.go — обработчики /screenshots: список, загрузка, получение, скачивание.
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	apierrors "github.com/turyildiz/screenshot-archive/internal/api/errors"
	"github.com/turyildiz/screenshot-archive/internal/api/generated"
	"github.com/turyildiz/screenshot-archive/internal/domain/model"
	"github.com/turyildiz/screenshot-archive/internal/service"
)

// ListScreenshots — GET /screenshots.
func (h *APIHandler) ListScreenshots(w http.ResponseWriter, r *http.Request, params generated.ListScreenshotsParams) {
	filter, err := listFilterFromParams(params)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	result, err := h.screenshots.List(r.Context(), service.ListParams{
		Page:   params.Page,
		Limit:  params.Limit,
		Filter: filter,
	})
	if err != nil {
		h.writeServiceError(w, err, "list")
		return
	}

	resp := generated.ScreenshotList{
		Screenshots: make([]generated.Screenshot, 0, len(result.Items)),
		Pagination: generated.Pagination{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		},
	}
	for _, s := range result.Items {
		resp.Screenshots = append(resp.Screenshots, screenshotToAPI(s))
	}

	writeJSON(w, http.StatusOK, resp)
}

// UploadScreenshot — POST /screenshots (multipart: file, tags).
func (h *APIHandler) UploadScreenshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.PayloadTooLarge(w, "Размер запроса превышает допустимый")
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			apierrors.ValidationError(w, "Некорректное multipart-тело запроса")
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	var payload *service.FilePayload
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			h.logger.Warn("Ошибка чтения загружаемого файла", slog.String("error", err.Error()))
			apierrors.ValidationError(w, "Не удалось прочитать файл")
			return
		}
		payload = &service.FilePayload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        data,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// payload остаётся nil: сервис вернёт ErrMissingFile
	default:
		apierrors.ValidationError(w, "Некорректное multipart-тело запроса")
		return
	}

	created, err := h.uploader.Upload(r.Context(), payload, r.FormValue("tags"))
	if err != nil {
		h.writeServiceError(w, err, "upload")
		return
	}

	writeJSON(w, http.StatusCreated, screenshotToAPI(created))
}

// GetScreenshot — GET /screenshots/{id}.
func (h *APIHandler) GetScreenshot(w http.ResponseWriter, r *http.Request, id generated.ScreenshotId) {
	s, err := h.screenshots.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "get")
		return
	}
	writeJSON(w, http.StatusOK, screenshotToAPI(s))
}

// DownloadScreenshot — GET /screenshots/{id}/download, 302 на presigned URL.
func (h *APIHandler) DownloadScreenshot(w http.ResponseWriter, r *http.Request, id generated.ScreenshotId) {
	u, err := h.screenshots.DownloadURL(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "download")
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}

// listFilterFromParams строит фильтр из query-параметров.
// Пустой tag фильтром не считается.
func listFilterFromParams(params generated.ListScreenshotsParams) (model.ListFilter, error) {
	var filter model.ListFilter

	if params.Tag != nil && *params.Tag != "" {
		filter.Tag = params.Tag
	}
	if params.StartDate != nil && *params.StartDate != "" {
		t, err := service.ParseDate(*params.StartDate)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if params.EndDate != nil && *params.EndDate != "" {
		t, err := service.ParseDate(*params.EndDate)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}
	return filter, nil
}

// screenshotToAPI конвертирует доменную модель в API-ответ.
// created_at хранится с точностью до миллисекунд и отдаётся без округления,
// поэтому показанное значение годится как граница startDate/endDate.
func screenshotToAPI(s *model.Screenshot) generated.Screenshot {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return generated.Screenshot{
		Id:           s.ID,
		Filename:     s.Filename,
		OriginalName: s.OriginalName,
		Url:          s.URL,
		Size:         s.Size,
		MimeType:     s.MimeType,
		Tags:         tags,
		CreatedAt:    s.CreatedAt.UTC(),
	}
}
