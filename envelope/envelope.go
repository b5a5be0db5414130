// Package envelope unifies every backend outcome into a single tagged result.
//
// A Response carries exactly one Status. Callers gate on IsSuccess, IsError,
// IsWarning or IsInfo before reading Data or Error; nothing else should branch
// on Status or on raw HTTP codes.
package envelope

import (
	"time"
)

// Status is the discriminator of a Response.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
)

const defaultSuccessMessage = "Operation completed successfully"

// Meta carries pagination hints attached to a success.
type Meta struct {
	Total   int  `json:"total,omitempty"`
	Page    int  `json:"page,omitempty"`
	Limit   int  `json:"limit,omitempty"`
	HasNext bool `json:"hasNext,omitempty"`
	HasPrev bool `json:"hasPrev,omitempty"`
}

// ErrorDetail is the machine-readable part of an error envelope.
type ErrorDetail struct {
	Code    Code   `json:"code"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}

// FieldError is one entry of a backend validation report.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Response is the envelope returned by every client call.
type Response[T any] struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path,omitempty"`

	// Data is set on success and optionally on warning and info.
	Data T     `json:"data"`
	Meta *Meta `json:"meta,omitempty"`

	Error      *ErrorDetail `json:"error,omitempty"`
	Validation []FieldError `json:"validation,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// now is swapped in tests.
var now = time.Now

// Success wraps data in a success envelope.
func Success[T any](data T, message string, meta *Meta) *Response[T] {
	if message == "" {
		message = defaultSuccessMessage
	}
	return &Response[T]{
		Status:    StatusSuccess,
		Message:   message,
		Timestamp: now(),
		Data:      data,
		Meta:      meta,
	}
}

// ErrorOption decorates an error envelope.
type ErrorOption func(*Failure)

// WithDetails sets the human-readable details of an error.
func WithDetails(details string) ErrorOption {
	return func(f *Failure) { f.Details = details }
}

// WithField points the error at a single input field.
func WithField(field string) ErrorOption {
	return func(f *Failure) { f.Field = field }
}

// WithValidation attaches a per-field validation report.
func WithValidation(v []FieldError) ErrorOption {
	return func(f *Failure) { f.Validation = v }
}

// Error builds an error envelope.
func Error[T any](code Code, message string, opts ...ErrorOption) *Response[T] {
	f := &Failure{Code: code, Message: message}
	for _, opt := range opts {
		opt(f)
	}
	return FromFailure[T](f)
}

// FromFailure lifts a Failure into an error envelope of any data type.
func FromFailure[T any](f *Failure) *Response[T] {
	if f == nil {
		f = &Failure{Code: CodeInternal, Message: "Unknown error"}
	}
	return &Response[T]{
		Status:    StatusError,
		Message:   f.Message,
		Timestamp: now(),
		Error: &ErrorDetail{
			Code:    f.Code,
			Details: f.Details,
			Field:   f.Field,
		},
		Validation: f.Validation,
	}
}

// Warning builds a warning envelope.
func Warning[T any](message string, warnings []string, data T) *Response[T] {
	if warnings == nil {
		warnings = []string{}
	}
	return &Response[T]{
		Status:    StatusWarning,
		Message:   message,
		Timestamp: now(),
		Warnings:  warnings,
		Data:      data,
	}
}

// Info builds an informational envelope.
func Info[T any](message string, data T) *Response[T] {
	return &Response[T]{
		Status:    StatusInfo,
		Message:   message,
		Timestamp: now(),
		Data:      data,
	}
}

func (r *Response[T]) IsSuccess() bool { return r != nil && r.Status == StatusSuccess }
func (r *Response[T]) IsError() bool   { return r == nil || r.Status == StatusError }
func (r *Response[T]) IsWarning() bool { return r != nil && r.Status == StatusWarning }
func (r *Response[T]) IsInfo() bool    { return r != nil && r.Status == StatusInfo }

// Code returns the error code, or "" when the envelope is not an error.
func (r *Response[T]) Code() Code {
	if !r.IsError() || r == nil || r.Error == nil {
		return ""
	}
	return r.Error.Code
}

// Err returns the error variant as a Go error, nil otherwise.
func (r *Response[T]) Err() error {
	if r == nil {
		return &Failure{Code: CodeInternal, Message: "Unknown error"}
	}
	if !r.IsError() {
		return nil
	}
	return r.Failure()
}

// Failure returns the error variant, nil otherwise.
func (r *Response[T]) Failure() *Failure {
	if !r.IsError() || r == nil {
		return nil
	}
	f := &Failure{Message: r.Message, Validation: r.Validation}
	if r.Error != nil {
		f.Code = r.Error.Code
		f.Details = r.Error.Details
		f.Field = r.Error.Field
	}
	return f
}

// Forward re-types a non-success envelope, dropping any data. A success
// cannot be forwarded since its payload would be lost; it yields an
// INTERNAL_ERROR envelope instead.
func Forward[U, T any](r *Response[T]) *Response[U] {
	if r == nil {
		return FromFailure[U](nil)
	}
	switch r.Status {
	case StatusError:
		out := FromFailure[U](r.Failure())
		out.Timestamp = r.Timestamp
		out.Path = r.Path
		return out
	case StatusWarning:
		return &Response[U]{Status: StatusWarning, Message: r.Message, Timestamp: r.Timestamp, Path: r.Path, Warnings: r.Warnings}
	case StatusInfo:
		return &Response[U]{Status: StatusInfo, Message: r.Message, Timestamp: r.Timestamp, Path: r.Path}
	default:
		return Error[U](CodeInternal, "Cannot forward a successful response")
	}
}
