package services

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	MsgMessageRequired  = "Message is required"
	MsgBaseURLMissing   = "LLM_API_BASE_URL missing"
	MsgTokenMissing     = "LLM_SERVICE_TOKEN missing"
	MsgRateLimited      = "Too many requests. Please try again later."
	MsgUnexpected       = "Unexpected error"
	MsgBodyTooLarge     = "Request body too large"
	MsgMethodNotAllowed = "Method not allowed"
)

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

type ConfigurationError struct{ Message string }

func (e *ConfigurationError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

type PayloadTooLargeError struct{ Limit int64 }

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// UpstreamError means the upstream call did not complete. Upstream responses
// with error statuses are relayed and never become an UpstreamError.
type UpstreamError struct {
	URL string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Classify maps an error returned by the proxy to the HTTP status and the
// message placed in the flat error body. Unknown errors collapse to a generic
// 500 so internal details never reach the client.
func Classify(err error) (int, string) {
	var (
		validationErr *ValidationError
		configErr     *ConfigurationError
		rateErr       *RateLimitError
		sizeErr       *PayloadTooLargeError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.As(err, &configErr):
		return http.StatusInternalServerError, configErr.Message
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests, rateErr.Message
	case errors.As(err, &sizeErr):
		return http.StatusRequestEntityTooLarge, MsgBodyTooLarge
	default:
		return http.StatusInternalServerError, MsgUnexpected
	}
}
