package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TransportError is what the HTTP layer returns when a call does not produce
// a 2xx response. Response is nil when no response reached the client.
type TransportError struct {
	Method   string
	URL      string
	Err      error
	Response *HTTPResponse
}

// HTTPResponse is the part of a failed response the translator looks at.
type HTTPResponse struct {
	StatusCode int
	Body       []byte
}

func (e *TransportError) Error() string {
	if e.Response != nil {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.Response.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: no response", e.Method, e.URL)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status, or 0 when no response was received.
func (e *TransportError) StatusCode() int {
	if e == nil || e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Payload decodes the response body as the backend's error shape. A body that
// is not JSON yields an empty payload.
func (e *TransportError) Payload() *ErrorPayload {
	p := &ErrorPayload{}
	if e == nil || e.Response == nil || len(e.Response.Body) == 0 {
		return p
	}
	_ = json.Unmarshal(e.Response.Body, p)
	return p
}

// ErrorPayload is the loose error body the backend sends along with a non-2xx
// status. The "error" member is a string on most endpoints but an object on
// some, so it is kept raw.
type ErrorPayload struct {
	Success    *bool           `json:"success,omitempty"`
	Message    string          `json:"message,omitempty"`
	Details    string          `json:"details,omitempty"`
	ErrorCode  string          `json:"error_code,omitempty"`
	RawError   json.RawMessage `json:"error,omitempty"`
	Validation []FieldError    `json:"validation,omitempty"`
}

// ErrorText returns the "error" member as text.
func (p *ErrorPayload) ErrorText() string {
	if p == nil || len(p.RawError) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.RawError, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(p.RawError, &obj); err == nil && (obj.Message != "" || obj.Details != "") {
		return strings.TrimSpace(obj.Message + " " + obj.Details)
	}
	return string(p.RawError)
}

var statusCodes = map[int]Code{
	http.StatusBadRequest:          CodeValidation,
	http.StatusUnauthorized:        CodeUnauthorized,
	http.StatusForbidden:           CodeForbidden,
	http.StatusNotFound:            CodeNotFound,
	http.StatusConflict:            CodeConflict,
	http.StatusUnprocessableEntity: CodeValidation,
	http.StatusInternalServerError: CodeInternal,
	http.StatusServiceUnavailable:  CodeServiceUnavailable,
}

// CodeForStatus maps an HTTP status to an error code; unmapped statuses are
// INTERNAL_ERROR.
func CodeForStatus(status int) Code {
	if c, ok := statusCodes[status]; ok {
		return c
	}
	return CodeInternal
}

// Classify turns any transport failure into a Failure. It never panics and
// is the terminal handler for errors that no caller-specific rule matched.
func Classify(err error) *Failure {
	var te *TransportError
	if !errors.As(err, &te) || te == nil || te.Response == nil {
		return &Failure{
			Code:    CodeNetwork,
			Message: "Connection error",
			Details: "Could not connect to the server",
		}
	}

	status := te.Response.StatusCode
	payload := te.Payload()

	message := payload.Message
	if message == "" {
		message = "Server error"
	}
	details := payload.Details
	if details == "" {
		details = fmt.Sprintf("HTTP error %d", status)
	}

	return &Failure{
		Code:       CodeForStatus(status),
		Message:    message,
		Details:    details,
		Validation: payload.Validation,
	}
}
