package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethanbaker/attio-relay/internal/attio"
	"github.com/ethanbaker/attio-relay/pkg/sdk"
)

const CONTENT_TYPE = "application/json; charset=utf-8"

// Result is a fully rendered gateway response
type Result struct {
	Status int    // HTTP status code
	Body   []byte // JSON body
}

// OK reports whether the result carries a success payload
func (r Result) OK() bool {
	return r.Status == http.StatusOK
}

// Success wraps a payload returned by Attio. A missing payload renders as null
func Success(data json.RawMessage) Result {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return Result{Status: http.StatusOK, Body: data}
}

// Failure renders an error envelope with the given status
func Failure(status int, body sdk.ErrorResponse) Result {
	b, err := json.Marshal(body)
	if err != nil {
		// ErrorResponse only holds strings and an int
		b = []byte(`{"error":"An unexpected error occurred"}`)
	}
	return Result{Status: status, Body: b}
}

// BadRequest renders a 400 error envelope
func BadRequest(message string) Result {
	return Failure(http.StatusBadRequest, sdk.ErrorResponse{Error: message})
}

// UnparsableBody renders the response for a request body that is not valid JSON
func UnparsableBody(err error) Result {
	return Failure(http.StatusBadRequest, sdk.ErrorResponse{
		Error:   "Could not parse request body",
		Details: err.Error(),
	})
}

// Unexpected renders the response for a failure outside the client taxonomy, such as a panic
func Unexpected(cause any) Result {
	return Failure(http.StatusInternalServerError, sdk.ErrorResponse{
		Error: fmt.Sprintf("An unexpected error occurred: %v", cause),
	})
}

// FromError translates a client error into its gateway response
func FromError(err error) Result {
	var e *attio.Error
	if !errors.As(err, &e) {
		return Unexpected(err)
	}

	switch e.Kind {
	case attio.KindMissingCredential, attio.KindMissingParameter:
		return BadRequest(e.Message)

	case attio.KindRemoteRejected:
		return Failure(e.StatusCode, sdk.ErrorResponse{
			Error:      e.Message,
			StatusCode: e.StatusCode,
			Details:    e.Body,
		})

	case attio.KindTransport:
		return Failure(http.StatusInternalServerError, sdk.ErrorResponse{
			Error: fmt.Sprintf("Request exception: %v", e.Err),
		})
	}

	return Unexpected(e)
}
