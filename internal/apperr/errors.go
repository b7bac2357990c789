// Package apperr defines the error classes every handler translates
// upstream failures into: provider errors, malformed payloads, bad caller
// input and timeouts. Handlers map them to HTTP statuses at the boundary.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"unicode/utf8"
)

// UpstreamError reports a non-success status from an external provider,
// carrying a truncated diagnostic body.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s request failed (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// DataError reports a malformed or insufficient upstream payload.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return e.Reason
}

// ValidationError reports malformed caller input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewData(format string, args ...any) *DataError {
	return &DataError{Reason: fmt.Sprintf(format, args...)}
}

func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsTimeout reports whether err stems from a slow upstream: an exceeded
// context deadline or a net-level timeout anywhere in the chain.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Truncate caps diagnostic text at n bytes without splitting a multi-byte
// rune at the cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
