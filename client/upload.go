package client

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/creastudio/envelope"
)

// MaxImageSize is the largest image the backend accepts.
const MaxImageSize = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Upload is a file attached to a request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// OpenUpload reads a file from disk. The content type comes from the
// extension, falling back to sniffing the bytes.
func OpenUpload(path string) (*Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return &Upload{Filename: filepath.Base(path), ContentType: ct, Data: data}, nil
}

// ValidateImage checks type and size before an upload.
func ValidateImage(u *Upload) *envelope.Failure {
	if u == nil || len(u.Data) == 0 {
		return &envelope.Failure{
			Code:    envelope.CodeRequiredField,
			Message: "Image required",
			Details: "No image file was provided",
			Field:   "image",
		}
	}
	if !allowedImageTypes[u.ContentType] {
		return &envelope.Failure{
			Code:    envelope.CodeValidation,
			Message: "Unsupported file type",
			Details: "Use JPG, PNG, GIF or WebP",
			Field:   "image",
		}
	}
	if len(u.Data) > MaxImageSize {
		return &envelope.Failure{
			Code:    envelope.CodeValidation,
			Message: "File too large",
			Details: fmt.Sprintf("The maximum size is %d MB", MaxImageSize>>20),
			Field:   "image",
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// form builds a multipart body. Fields are written in call order.
type form struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newForm() *form {
	f := &form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

// field appends a text field, skipping empty values.
func (f *form) field(name, value string) {
	if f.err != nil || value == "" {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *form) file(name string, u *Upload) {
	if f.err != nil {
		return
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(u.Filename)))
	ct := u.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(u.Data)
}

// request closes the writer and returns the call. The content type carries
// the boundary.
func (f *form) request(method, path, endpoint string) (*request, error) {
	if f.err != nil {
		return nil, errors.Wrapf(f.err, "failed to build %s form", endpoint)
	}
	if err := f.w.Close(); err != nil {
		return nil, errors.Wrapf(err, "failed to close %s form", endpoint)
	}
	return &request{
		method:      method,
		path:        path,
		body:        bytes.NewReader(f.buf.Bytes()),
		contentType: f.w.FormDataContentType(),
		endpoint:    endpoint,
	}, nil
}
