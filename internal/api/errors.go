package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the response wrapper every backend endpoint returns. A Code
// other than 200 is a logical failure even when the HTTP status is 200.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError is the single failure type produced by the client. Every failed
// call, whatever the cause, carries exactly one user-facing message.
type APIError struct {
	// Status is the HTTP status code, or 0 when no response arrived.
	Status int
	// Code is the embedded business code, when a response body carried one.
	Code int
	// Message is the user-facing message per the normalization table.
	Message string
	// Timeout marks transport timeouts for retry eligibility.
	Timeout bool
	// Err is the underlying cause, if any.
	Err error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether a failure may be transparently retried:
// no response at all, a timeout, or a 5xx status.
func Retryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Timeout || apiErr.Status == 0 {
		return true
	}
	return apiErr.Status >= 500 && apiErr.Status < 600
}

// Notifier surfaces a transient user-facing message at the point a failure
// is detected. The TUI shows these as a status-line toast.
type Notifier interface {
	Notify(message string)
}

// NopNotifier discards notifications. Useful in tests and headless use.
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}

// statusMessage maps an HTTP status and optional server-supplied message to
// the user-facing message shown for that failure.
func statusMessage(status int, serverMessage string) string {
	switch status {
	case 400:
		return orDefault(serverMessage, "invalid request parameters")
	case 401:
		return "unauthorized, please log in again"
	case 403:
		return "access denied"
	case 404:
		return "resource not found"
	case 429:
		return "too many requests, retry later"
	case 500:
		return orDefault(serverMessage, "internal server error")
	default:
		return orDefault(serverMessage, fmt.Sprintf("request failed (%d)", status))
	}
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
