package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hrygo/creastudio/envelope"
)

// TemplateService manages uploaded image templates.
type TemplateService struct {
	c *Client
}

type templateList struct {
	Templates []ImageTemplate `json:"templates"`
}

// decodeTemplate accepts both the wrapped and the bare shape.
func decodeTemplate(body []byte) (ImageTemplate, bool) {
	if resp := decodeBackend[ImageTemplate](body); resp.ok() {
		return *resp.Data, true
	}
	var t ImageTemplate
	if err := json.Unmarshal(body, &t); err != nil || t.ID == 0 {
		return ImageTemplate{}, false
	}
	return t, true
}

func templateNotFound[T any]() statusRule[T] {
	return notFound[T]("Template", "The requested template does not exist")
}

func (s *TemplateService) List(ctx context.Context) *envelope.Response[[]ImageTemplate] {
	const op = "templates-list"
	body, err := s.c.do(ctx, &request{method: http.MethodGet, path: pathTemplates, endpoint: op})
	if err != nil {
		return record(s.c, op, translate[[]ImageTemplate](err))
	}
	resp := decodeBackend[templateList](body)
	if !resp.ok() {
		return record(s.c, op, envelope.InvalidResponse[[]ImageTemplate]("The server did not return valid templates"))
	}
	templates := resp.Data.Templates
	if templates == nil {
		templates = []ImageTemplate{}
	}
	return record(s.c, op, envelope.Success(templates, "Templates loaded successfully", nil))
}

func (s *TemplateService) Get(ctx context.Context, id int64) *envelope.Response[ImageTemplate] {
	const op = "templates-get"
	body, err := s.c.do(ctx, &request{method: http.MethodGet, path: templatePath(id), endpoint: op})
	if err != nil {
		return record(s.c, op, translate(err, templateNotFound[ImageTemplate]()))
	}
	t, ok := decodeTemplate(body)
	if !ok {
		return record(s.c, op, envelope.InvalidResponse[ImageTemplate]("The server did not return a valid template"))
	}
	return record(s.c, op, envelope.Success(t, "Template loaded successfully", nil))
}

func (s *TemplateService) Create(ctx context.Context, in *ImageTemplateInput) *envelope.Response[ImageTemplate] {
	return s.write(ctx, http.MethodPost, pathTemplates, "templates-create", in, "Template created successfully")
}

func (s *TemplateService) Update(ctx context.Context, id int64, in *ImageTemplateInput) *envelope.Response[ImageTemplate] {
	return s.write(ctx, http.MethodPut, templatePath(id), "templates-update", in, "Template updated successfully")
}

func (s *TemplateService) write(ctx context.Context, method, path, op string, in *ImageTemplateInput, okMessage string) *envelope.Response[ImageTemplate] {
	req, err := jsonRequest(method, path, op, in)
	if err != nil {
		return record(s.c, op, envelope.Error[ImageTemplate](envelope.CodeInternal, "Could not build request",
			envelope.WithDetails(err.Error())))
	}
	body, err := s.c.do(ctx, req)
	if err != nil {
		return record(s.c, op, translate(err,
			templateNotFound[ImageTemplate](),
			invalidFields[ImageTemplate]("Invalid template data", "Check that every field is correct"),
		))
	}
	t, ok := decodeTemplate(body)
	if !ok {
		return record(s.c, op, envelope.InvalidResponse[ImageTemplate]("The server did not return a valid template"))
	}
	return record(s.c, op, envelope.Success(t, okMessage, nil))
}

func (s *TemplateService) Delete(ctx context.Context, id int64) *envelope.Response[struct{}] {
	const op = "templates-delete"
	if _, err := s.c.do(ctx, &request{method: http.MethodDelete, path: templatePath(id), endpoint: op}); err != nil {
		return record(s.c, op, translate(err, templateNotFound[struct{}]()))
	}
	return record(s.c, op, envelope.Success(struct{}{}, "Template deleted successfully", nil))
}

// Upload sends a template image as multipart form data and returns where the
// backend stored it.
func (s *TemplateService) Upload(ctx context.Context, file *Upload) *envelope.Response[UploadResult] {
	const op = "templates-upload"
	if f := ValidateImage(file); f != nil {
		return record(s.c, op, envelope.FromFailure[UploadResult](f))
	}
	form := newForm()
	form.file("file", file)
	req, err := form.request(http.MethodPost, pathTemplateUpload, op)
	if err != nil {
		return record(s.c, op, envelope.Error[UploadResult](envelope.CodeInternal, "Could not build request",
			envelope.WithDetails(err.Error())))
	}
	body, err := s.c.do(ctx, req)
	if err != nil {
		return record(s.c, op, translate[UploadResult](err))
	}
	var out UploadResult
	if err := json.Unmarshal(body, &out); err != nil || out.StoragePath == "" {
		return record(s.c, op, envelope.InvalidResponse[UploadResult]("The server did not return a storage path"))
	}
	return record(s.c, op, envelope.Success(out, "Template uploaded successfully", nil))
}

// PreviewURL resolves a storage path to a URL the backend serves.
func (s *TemplateService) PreviewURL(storagePath string) string {
	if strings.HasPrefix(storagePath, "/static/") {
		return s.c.baseURL + storagePath
	}
	return s.c.baseURL + "/uploads/templates/" + strings.TrimPrefix(storagePath, "/")
}
