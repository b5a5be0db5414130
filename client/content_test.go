package client

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/creastudio/envelope"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestGenerate_JSON(t *testing.T) {
	var body map[string]any
	var contentType string
	c, _ := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate-content", r.URL.Path)
		contentType = r.Header.Get("Content-Type")
		body = decodeBody(t, r)
		writeJSON(w, 200, `{"success":true,"data":{"content":"Body\n\nCTA\n\n#a #b","image_url":"/img/1.png","post_id":41}}`)
	}))

	resp := c.Content.Generate(t.Context(), &GenerateRequest{
		Message:     "Summer sale",
		ObjectiveID: 2,
		ImageMode:   ImageModeAuto,
	})

	require.True(t, resp.IsSuccess())
	assert.Equal(t, "Content generated successfully", resp.Message)
	assert.Equal(t, ContentResult{Content: "Body\n\nCTA\n\n#a #b", ImageURL: "/img/1.png", PostID: 41}, resp.Data)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "Summer sale", body["message"])
	assert.Equal(t, float64(2), body["objective_id"])
	assert.Equal(t, "auto", body["image_mode"])
	_, hasStyle := body["style_id"]
	assert.False(t, hasStyle, "absent fields are dropped")
}

func TestGenerate_MultipartWithImage(t *testing.T) {
	c, _ := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "With photo", r.FormValue("message"))
		assert.Equal(t, "3", r.FormValue("style_id"))
		assert.Equal(t, "#ff0000", r.FormValue("color_palette"))
		_, hasObjective := r.MultipartForm.Value["objective_id"]
		assert.False(t, hasObjective, "undefined fields are not appended")
		_, hasTemplate := r.MultipartForm.Value["template_id"]
		assert.False(t, hasTemplate)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "shop.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		data, _ := io.ReadAll(file)
		assert.Equal(t, pngBytes, data)

		writeJSON(w, 200, `{"success":true,"data":{"content":"x","image_url":"","post_id":7}}`)
	}))

	resp := c.Content.Generate(t.Context(), &GenerateRequest{
		Message:      "With photo",
		StyleID:      3,
		ColorPalette: "#ff0000",
		Image:        &Upload{Filename: "shop.png", ContentType: "image/png", Data: pngBytes},
	})
	require.True(t, resp.IsSuccess(), resp.Message)
	assert.Equal(t, int64(7), resp.Data.PostID)
}

func TestGenerate_LocalValidation(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	testCases := []struct {
		name  string
		req   *GenerateRequest
		field string
	}{
		{"nil request", nil, "message"},
		{"blank message", &GenerateRequest{Message: "  \n "}, "message"},
		{"unsupported image", &GenerateRequest{Message: "hi", Image: &Upload{Filename: "a.bmp", ContentType: "image/bmp", Data: []byte("BM")}}, "image"},
		{"image too large", &GenerateRequest{Message: "hi", Image: &Upload{Filename: "a.png", ContentType: "image/png", Data: make([]byte, MaxImageSize+1)}}, "image"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := c.Content.Generate(t.Context(), tc.req)
			require.True(t, resp.IsError())
			assert.Equal(t, envelope.CodeValidation, resp.Code())
			assert.Equal(t, tc.field, resp.Error.Field)
		})
	}
	assert.Zero(t, calls.Load(), "validation failures never reach the network")
}

func TestGenerate_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		code    envelope.Code
		message string
		details string
	}{
		{"unauthorized", 401, `{"error":"token expired"}`, envelope.CodeTokenExpired, "Session expired", ""},
		{"bad request with error", 400, `{"error":"message too long"}`, envelope.CodeValidation, "Validation error", "message too long"},
		{"bad request without error", 400, `{}`, envelope.CodeValidation, "Validation error", "The data provided is not valid"},
		{"bad request wins over marker", 400, `{"error":"Falta información de empresa"}`, envelope.CodeValidation, "Validation error", "Falta información de empresa"},
		{"company marker on 404", 404, `{"error":"No se encontró información de la EMPRESA"}`, envelope.CodeCompanyInfoRequired, "Company information required", ""},
		{"company marker on 500", 500, `{"error":"empresa no configurada"}`, envelope.CodeCompanyInfoRequired, "Company information required", ""},
		{"structured company code", 412, `{"error_code":"COMPANY_INFO_REQUIRED","message":"setup first"}`, envelope.CodeCompanyInfoRequired, "Company information required", ""},
		{"internal with error text", 500, `{"error":"model overloaded"}`, envelope.CodeInternal, "Server error", "model overloaded"},
		{"internal without body", 500, ``, envelope.CodeInternal, "Server error", "An error occurred while generating the content"},
		{"unavailable falls through", 503, `{"message":"maintenance"}`, envelope.CodeServiceUnavailable, "maintenance", "HTTP error 503"},
		{"unmapped status", 418, `{}`, envelope.CodeInternal, "Server error", "HTTP error 418"},
		{"success false", 200, `{"success":false,"error":"no credits"}`, envelope.CodeGeneration, "Error generating content", "no credits"},
		{"unexpected shape", 200, `{"ok":true}`, envelope.CodeInvalidResponse, "Invalid response from server", ""},
		{"not json", 200, `<html>`, envelope.CodeInvalidResponse, "Invalid response from server", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			}))
			resp := c.Content.Generate(t.Context(), &GenerateRequest{Message: "hi", ObjectiveID: 1})
			require.True(t, resp.IsError())
			assert.Equal(t, tc.code, resp.Code())
			assert.Equal(t, tc.message, resp.Message)
			if tc.details != "" {
				assert.Equal(t, tc.details, resp.Error.Details)
			}
		})
	}
}

func TestGenerate_CustomMarker(t *testing.T) {
	srv := newStubServer(t, 500, `{"error":"company profile missing"}`)
	c := New(Config{BaseURL: srv.URL, CompanyInfoMarker: "Company Profile"}, nil, nil)

	resp := c.Content.Generate(t.Context(), &GenerateRequest{Message: "hi"})
	assert.Equal(t, envelope.CodeCompanyInfoRequired, resp.Code())
}

func TestRegenerate(t *testing.T) {
	var body map[string]any
	c, _ := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/regenerate-content", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body = decodeBody(t, r)
		writeJSON(w, 200, `{"success":true,"data":{"content":"v2","image_url":"/img/2.png","post_id":42}}`)
	}))

	resp := c.Content.Regenerate(t.Context(), &RegenerateRequest{
		PreviousContent:   "v1",
		OriginalMessage:   "Summer sale",
		ObjectiveID:       2,
		PostID:            41,
		PreviousImagePath: "/img/1.png",
	})
	require.True(t, resp.IsSuccess())
	assert.Equal(t, "New variation generated successfully", resp.Message)
	assert.Equal(t, int64(42), resp.Data.PostID)

	assert.Equal(t, "v1", body["previous_content"])
	assert.Equal(t, "Summer sale", body["original_message"])
	assert.Equal(t, float64(41), body["post_id"])
	assert.Equal(t, "/img/1.png", body["previous_image_path"])
}

func TestRegenerate_ErrorCodesDifferFromGenerate(t *testing.T) {
	srv := newStubServer(t, 200, `{"success":false,"error":"try later"}`)
	c := New(Config{BaseURL: srv.URL}, nil, nil)

	gen := c.Content.Generate(t.Context(), &GenerateRequest{Message: "hi"})
	regen := c.Content.Regenerate(t.Context(), &RegenerateRequest{PreviousContent: "v1", OriginalMessage: "hi"})

	assert.Equal(t, envelope.CodeGeneration, gen.Code())
	assert.Equal(t, envelope.CodeRegeneration, regen.Code())
	assert.Equal(t, "try later", regen.Error.Details)
}

func newStubServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
