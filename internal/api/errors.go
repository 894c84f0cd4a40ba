package api

import (
	"errors"
	"fmt"
)

// Localized messages placed in Response.Error when a request fails before
// the backend could produce its own message.
const (
	// MsgConnectionFailed is used for network errors and timeouts.
	MsgConnectionFailed = "서버 연결에 실패했습니다."

	// MsgInvalidResponse is used when the body is not a valid envelope.
	MsgInvalidResponse = "서버 응답을 해석할 수 없습니다."

	// MsgUnknownFailure is used when the backend reports failure without a message.
	MsgUnknownFailure = "알 수 없는 오류가 발생했습니다."

	// msgHTTPStatusFormat is used for non-2xx responses without a message.
	msgHTTPStatusFormat = "서버 오류가 발생했습니다. (HTTP %d)"
)

// Client construction errors.
var (
	// ErrEmptyBaseURL is returned when the backend base URL is empty.
	ErrEmptyBaseURL = errors.New("api base URL is empty")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid api base URL: expected http:// or https://")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// Error describes a failed backend call.
type Error struct {
	// Op is the operation that failed, e.g. "analyze" or "history".
	Op string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Message is the localized message shown to the user.
	Message string

	// Err is the underlying transport or decoding error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether the backend answered 404.
func (e *Error) IsNotFound() bool {
	return e.StatusCode == 404
}
