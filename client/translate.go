package client

import (
	"net/http"

	"github.com/hrygo/creastudio/envelope"
)

// statusRule overrides the generic classification for one HTTP status.
type statusRule[T any] struct {
	status int
	build  func(p *envelope.ErrorPayload) *envelope.Response[T]
}

func on[T any](status int, build func(p *envelope.ErrorPayload) *envelope.Response[T]) statusRule[T] {
	return statusRule[T]{status: status, build: build}
}

// translate turns a transport error into an error envelope. Caller rules are
// tried first; an unmatched 401 means the session expired; everything else
// goes through envelope.Classify.
func translate[T any](err error, rules ...statusRule[T]) *envelope.Response[T] {
	status, payload := statusOf(err)
	if status != 0 {
		for _, r := range rules {
			if r.status == status {
				return r.build(payload)
			}
		}
		if status == http.StatusUnauthorized {
			return envelope.SessionExpired[T]()
		}
	}
	return envelope.FromFailure[T](envelope.Classify(err))
}

func notFound[T any](what, details string) statusRule[T] {
	return on(http.StatusNotFound, func(*envelope.ErrorPayload) *envelope.Response[T] {
		return envelope.NotFound[T](what, details)
	})
}

func invalidFields[T any](message, details string) statusRule[T] {
	return on(http.StatusUnprocessableEntity, func(p *envelope.ErrorPayload) *envelope.Response[T] {
		return envelope.ValidationFailed[T](message, details, p.Validation)
	})
}
