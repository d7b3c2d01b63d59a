/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies a failure so callers can branch without string matching
type Kind string

const (
	KindInvalidReference   Kind = "InvalidReference"
	KindAmbiguousReference Kind = "AmbiguousReference"
	KindNotFound           Kind = "NotFound"
	KindUnauthorized       Kind = "Unauthorized"
	KindRemoteError        Kind = "RemoteError"
	KindTimeout            Kind = "Timeout"
)

// Sentinel errors matched by errors.Is against any *Error of the same kind
var (
	ErrInvalidReference   = &Error{Kind: KindInvalidReference, Message: "invalid task reference"}
	ErrAmbiguousReference = &Error{Kind: KindAmbiguousReference, Message: "ambiguous task reference"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrRemote             = &Error{Kind: KindRemoteError, Message: "remote error"}
	ErrTimeout            = &Error{Kind: KindTimeout, Message: "request timed out"}
)

// ClickUp error codes that mean the task does not exist, whatever the HTTP status
var notFoundCodes = map[string]bool{
	"ITEM_013": true,
	"ITEM_015": true,
}

// Error is returned by every client method that fails
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 when no response was received
	Code    string // ClickUp ECODE, when present
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError builds an *Error of the given kind
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind carried by err, or "" when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err means the remote object does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

type apiErrorBody struct {
	Err   string `json:"err"`
	ECode string `json:"ECODE"`
}

// errorFromResponse maps a non-2xx response to an *Error
func errorFromResponse(status int, body []byte) *Error {
	var parsed apiErrorBody
	detail := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Err != "" {
		detail = parsed.Err
	}

	e := &Error{
		Status:  status,
		Code:    parsed.ECode,
		Message: fmt.Sprintf("API error: %d", status),
	}
	if detail != "" {
		e.Message = fmt.Sprintf("API error: %d - %s", status, detail)
	}

	switch {
	case notFoundCodes[parsed.ECode]:
		e.Kind = KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindUnauthorized
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	default:
		e.Kind = KindRemoteError
	}
	return e
}

// errorFromTransport maps a failed round trip to an *Error
func errorFromTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindRemoteError, Message: "request cancelled", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindRemoteError, Message: "request failed", Err: err}
}

// ContextError maps the error of a done context the way a failed request is
// mapped: a deadline becomes Timeout, a cancellation RemoteError
func ContextError(err error) *Error {
	return errorFromTransport(err)
}
