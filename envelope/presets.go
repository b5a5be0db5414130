package envelope

// Canned envelopes shared by every service.

func SessionExpired[T any]() *Response[T] {
	return Error[T](CodeTokenExpired, "Session expired",
		WithDetails("Your session has expired, please sign in again"))
}

func LoginFailed[T any]() *Response[T] {
	return Error[T](CodeInvalidCredentials, "Invalid credentials",
		WithDetails("The email or password is not valid"))
}

// NotFound reports a missing resource; what is the capitalized resource name.
func NotFound[T any](what, details string) *Response[T] {
	return Error[T](CodeNotFound, what+" not found", WithDetails(details))
}

func AlreadyExists[T any](what, details string) *Response[T] {
	return Error[T](CodeAlreadyExists, what+" already exists", WithDetails(details))
}

func InvalidResponse[T any](details string) *Response[T] {
	return Error[T](CodeInvalidResponse, "Invalid response from server", WithDetails(details))
}

func ValidationFailed[T any](message, details string, validation []FieldError) *Response[T] {
	return Error[T](CodeValidation, message, WithDetails(details), WithValidation(validation))
}
