package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/hrygo/creastudio/envelope"
)

// ContentService generates post drafts and variations.
type ContentService struct {
	c *Client
}

// contentOp holds what differs between generate and regenerate.
type contentOp struct {
	name           string
	successMessage string
	failureCode    envelope.Code
	failureMessage string
	internalDetail string
}

var (
	generateOp = contentOp{
		name:           "generate",
		successMessage: "Content generated successfully",
		failureCode:    envelope.CodeGeneration,
		failureMessage: "Error generating content",
		internalDetail: "An error occurred while generating the content",
	}
	regenerateOp = contentOp{
		name:           "regenerate",
		successMessage: "New variation generated successfully",
		failureCode:    envelope.CodeRegeneration,
		failureMessage: "Error regenerating content",
		internalDetail: "An error occurred while regenerating the content",
	}
)

// Generate requests a first draft. With an image attached the body is
// multipart form data; otherwise it is JSON.
func (s *ContentService) Generate(ctx context.Context, in *GenerateRequest) *envelope.Response[ContentResult] {
	if in == nil || strings.TrimSpace(in.Message) == "" {
		return record(s.c, generateOp.name, envelope.Error[ContentResult](envelope.CodeValidation, "Validation error",
			envelope.WithDetails("A message is required"), envelope.WithField("message")))
	}

	var (
		req *request
		err error
	)
	if in.Image != nil {
		if f := ValidateImage(in.Image); f != nil {
			return record(s.c, generateOp.name, envelope.FromFailure[ContentResult](f))
		}
		req, err = generateForm(in)
	} else {
		req, err = jsonRequest(http.MethodPost, pathGenerate, "generate-content", in)
	}
	if err != nil {
		return record(s.c, generateOp.name, envelope.Error[ContentResult](envelope.CodeInternal, "Could not build request",
			envelope.WithDetails(err.Error())))
	}
	return s.call(ctx, req, generateOp)
}

func generateForm(in *GenerateRequest) (*request, error) {
	f := newForm()
	f.field("message", in.Message)
	f.field("objective_id", formatID(in.ObjectiveID))
	f.field("style_id", formatID(in.StyleID))
	f.field("template_id", formatID(in.TemplateID))
	f.field("post_objective", in.PostObjective)
	f.field("post_style", in.PostStyle)
	f.field("image_mode", string(in.ImageMode))
	f.field("color_palette", in.ColorPalette)
	f.file("image", in.Image)
	return f.request(http.MethodPost, pathGenerate, "generate-content")
}

// formatID renders an optional id; zero means absent.
func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// Regenerate requests a variation of a previous draft. It is always JSON.
func (s *ContentService) Regenerate(ctx context.Context, in *RegenerateRequest) *envelope.Response[ContentResult] {
	if in == nil || strings.TrimSpace(in.PreviousContent) == "" {
		return record(s.c, regenerateOp.name, envelope.Error[ContentResult](envelope.CodeValidation, "Validation error",
			envelope.WithDetails("There is no previous content to vary"), envelope.WithField("previous_content")))
	}
	req, err := jsonRequest(http.MethodPost, pathRegenerate, "regenerate-content", in)
	if err != nil {
		return record(s.c, regenerateOp.name, envelope.Error[ContentResult](envelope.CodeInternal, "Could not build request",
			envelope.WithDetails(err.Error())))
	}
	return s.call(ctx, req, regenerateOp)
}

func (s *ContentService) call(ctx context.Context, req *request, op contentOp) *envelope.Response[ContentResult] {
	body, err := s.c.do(ctx, req)
	if err != nil {
		return record(s.c, op.name, s.failure(err, op))
	}

	resp := decodeBackend[ContentResult](body)
	switch {
	case resp.ok():
		return record(s.c, op.name, envelope.Success(*resp.Data, op.successMessage, nil))
	case resp.failed():
		return record(s.c, op.name, envelope.Error[ContentResult](op.failureCode, op.failureMessage,
			envelope.WithDetails(resp.errorText())))
	default:
		return record(s.c, op.name, envelope.InvalidResponse[ContentResult]("The server did not return valid content"))
	}
}

// failure applies the generation-specific rules before falling back to the
// generic classification. Order matters: 401, 400, missing company
// profile, 500.
func (s *ContentService) failure(err error, op contentOp) *envelope.Response[ContentResult] {
	status, payload := statusOf(err)
	switch {
	case status == http.StatusUnauthorized:
		return envelope.SessionExpired[ContentResult]()
	case status == http.StatusBadRequest:
		details := payload.ErrorText()
		if details == "" {
			details = "The data provided is not valid"
		}
		return envelope.Error[ContentResult](envelope.CodeValidation, "Validation error",
			envelope.WithDetails(details), envelope.WithValidation(payload.Validation))
	case s.c.requiresCompanyInfo(payload):
		return envelope.Error[ContentResult](envelope.CodeCompanyInfoRequired, "Company information required",
			envelope.WithDetails("You must create your company information before generating content"))
	case status == http.StatusInternalServerError:
		details := payload.ErrorText()
		if details == "" {
			details = op.internalDetail
		}
		return envelope.Error[ContentResult](envelope.CodeInternal, "Server error", envelope.WithDetails(details))
	default:
		return envelope.FromFailure[ContentResult](envelope.Classify(err))
	}
}

// requiresCompanyInfo reports whether an error body says the account has no
// company profile yet.
func (c *Client) requiresCompanyInfo(p *envelope.ErrorPayload) bool {
	if p == nil {
		return false
	}
	if envelope.Code(p.ErrorCode) == envelope.CodeCompanyInfoRequired {
		return true
	}
	if c.marker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.ErrorText()), c.marker) ||
		strings.Contains(strings.ToLower(p.Message), c.marker)
}
