package envelope

import "fmt"

// Code is a stable machine-readable error code. UI and caller logic branch on
// these values, so they never change once published.
type Code string

const (
	// Authentication.
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeTokenExpired        Code = "TOKEN_EXPIRED"
	CodeInvalidCredentials  Code = "INVALID_CREDENTIALS"
	CodeInvalidToken        Code = "INVALID_TOKEN"
	CodeInvalidRefreshToken Code = "INVALID_REFRESH_TOKEN"

	// Validation.
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeRequiredField Code = "REQUIRED_FIELD"
	CodeInvalidFormat Code = "INVALID_FORMAT"

	// Resources.
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeConflict      Code = "CONFLICT"

	// Server.
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeTimeout            Code = "TIMEOUT"
	CodeInvalidResponse    Code = "INVALID_RESPONSE"

	// Network.
	CodeNetwork    Code = "NETWORK_ERROR"
	CodeConnection Code = "CONNECTION_ERROR"

	// Content generation.
	CodeGeneration          Code = "GENERATION_ERROR"
	CodeRegeneration        Code = "REGENERATION_ERROR"
	CodeCompanyInfoRequired Code = "COMPANY_INFO_REQUIRED"
)

// Failure is the error variant of a Response detached from its data type.
// It implements error so it can travel through ordinary Go error returns.
type Failure struct {
	Code       Code
	Message    string
	Details    string
	Field      string
	Validation []FieldError
}

func (f *Failure) Error() string {
	if f.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", f.Code, f.Message, f.Details)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// Is matches another *Failure by code, so errors.Is(err, &Failure{Code: X})
// works regardless of message.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Code == f.Code
}
