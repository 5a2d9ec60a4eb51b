package attio

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure a client operation can produce
type ErrorKind int

const (
	KindInternal          ErrorKind = iota // Anything unexpected while building the call or reading its result
	KindMissingCredential                  // No credential supplied, no call made
	KindMissingParameter                   // A required input is empty, no call made
	KindRemoteRejected                     // Attio answered with a non-2xx status
	KindTransport                          // No response was received (connect, DNS, timeout, cancellation)
)

const MESSAGE_MISSING_CREDENTIAL = "API key is required."

func (k ErrorKind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindMissingParameter:
		return "missing_parameter"
	case KindRemoteRejected:
		return "remote_rejected"
	case KindTransport:
		return "transport_error"
	default:
		return "internal_error"
	}
}

// Error is the only error type returned by Client operations
type Error struct {
	Kind       ErrorKind
	Message    string // Caller-facing description
	StatusCode int    // Remote status code, set for KindRemoteRejected
	Body       string // Raw remote response body, set for KindRemoteRejected
	Err        error  // Underlying cause, if any
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Message, e.StatusCode)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err. Errors that did not come from this package are internal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func missingCredential() *Error {
	return &Error{Kind: KindMissingCredential, Message: MESSAGE_MISSING_CREDENTIAL}
}

func missingParameter(name string) *Error {
	return &Error{Kind: KindMissingParameter, Message: fmt.Sprintf("%s is required.", name)}
}

func remoteRejected(message string, status int, body []byte) *Error {
	return &Error{Kind: KindRemoteRejected, Message: message, StatusCode: status, Body: string(body)}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "request exception", Err: err}
}

func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
