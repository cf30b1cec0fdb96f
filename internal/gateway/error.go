package gateway

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned before any network call when the key
// id/secret pair is not configured. It is never retried.
var ErrMissingCredentials = errors.New("gateway_credentials_missing")

type ErrorKind string

const (
	// ErrorKindHTTP means the gateway answered with a non-2xx status.
	ErrorKindHTTP ErrorKind = "http"
	// ErrorKindTransport means the request never completed (DNS, connect, timeout).
	ErrorKindTransport ErrorKind = "transport"
	// ErrorKindDecode means the response body was not valid JSON.
	ErrorKindDecode ErrorKind = "decode"
)

// Error is a structured gateway failure. StatusCode and Body are only set for
// ErrorKindHTTP; Body is kept verbatim for diagnostics.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrorKindHTTP:
		return fmt.Sprintf("gateway http %d: %s", e.StatusCode, e.Body)
	case ErrorKindTransport:
		return fmt.Sprintf("gateway transport: %v", e.Err)
	default:
		return fmt.Sprintf("gateway decode: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError unwraps err into a *Error when it is one.
func AsError(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}
