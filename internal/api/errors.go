package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies every failure the client can return.
type Kind int

const (
	// KindInvalidRequest means the request could not be built (bad base URL
	// or path). It indicates a programming or configuration error.
	KindInvalidRequest Kind = iota + 1
	// KindNotAuthenticated means no credential was available; no request was sent.
	KindNotAuthenticated
	// KindServer covers transport failures and every non-200 response.
	KindServer
	// KindDecoding means the response body did not match the expected shape.
	KindDecoding
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindServer:
		return "server_error"
	case KindDecoding:
		return "decoding_error"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Client and IdentityClient.
type Error struct {
	Kind Kind
	// StatusCode is the HTTP status for KindServer errors that got a
	// response. It is zero for transport failures.
	StatusCode int
	// Detail is the server's error message, when it sent one.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the Kind sentinels below, so callers can write
// errors.Is(err, api.ErrNotAuthenticated).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.StatusCode == 0 && t.Detail == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrInvalidRequest   = &Error{Kind: KindInvalidRequest}
	ErrNotAuthenticated = &Error{Kind: KindNotAuthenticated}
	ErrServer           = &Error{Kind: KindServer}
	ErrDecoding         = &Error{Kind: KindDecoding}
)

func invalidRequest(err error) error {
	return &Error{Kind: KindInvalidRequest, Err: err}
}

func decodingError(err error) error {
	return &Error{Kind: KindDecoding, Err: err}
}

// transportError wraps a failure that produced no response.
func transportError(err error) error {
	return &Error{Kind: KindServer, Err: err}
}

// parseError builds a KindServer error from a non-200 response. The backend
// sends {"error": "..."}; {"detail": "..."} is accepted as well.
func parseError(statusCode int, body []byte) error {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		detail = payload.Error
		if detail == "" {
			detail = payload.Detail
		}
	}
	if detail == "" {
		detail = strings.TrimSpace(string(body))
		if len(detail) > 200 {
			detail = detail[:200]
		}
	}
	return &Error{Kind: KindServer, StatusCode: statusCode, Detail: detail}
}

// KindOf returns the Kind of err, or zero if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsAlreadySaved reports whether err is the backend's duplicate-save conflict.
func IsAlreadySaved(err error) bool {
	return KindOf(err) == KindServer && StatusCode(err) == http.StatusConflict
}

// IsUnauthorized reports whether the backend rejected the credential.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindServer && StatusCode(err) == http.StatusUnauthorized
}

// Describe renders err as a short message suitable for showing to a user.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "the request was cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the request timed out"
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	switch apiErr.Kind {
	case KindNotAuthenticated:
		return "you are not signed in"
	case KindInvalidRequest:
		return "the request could not be built"
	case KindDecoding:
		return "the server sent an unexpected response"
	case KindServer:
		switch {
		case apiErr.StatusCode == 0:
			return "could not reach the server"
		case apiErr.Detail != "":
			return apiErr.Detail
		default:
			return fmt.Sprintf("the server returned status %d", apiErr.StatusCode)
		}
	default:
		return err.Error()
	}
}

// OperationError names the user-level operation that failed, such as
// "generate recipe" or "save preferences".
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error { return e.Err }

// UserMessage is the text shown when the operation fails.
func (e *OperationError) UserMessage() string {
	return "Failed to " + e.Op + ": " + Describe(e.Err)
}
