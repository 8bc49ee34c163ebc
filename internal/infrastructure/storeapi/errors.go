// internal/infrastructure/storeapi/errors.go
package storeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the store API answers with a non-2xx status
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func newStatusError(method, path string, statusCode int, body []byte) *StatusError {
	// FastAPI-style error payloads carry the message under "detail".
	var payload struct {
		Detail string `json:"detail"`
	}
	detail := string(body)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	}

	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Detail:     detail,
	}
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("store API %s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// IsNotFound reports whether err is a 404 from the store API
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the store API
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized
}
