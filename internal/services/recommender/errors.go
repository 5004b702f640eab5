package recommender

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// MsgMissingFields is returned to the form when any required field is absent or zero.
const MsgMissingFields = "Missing required fields."

const msgUpstreamFailure = "Failed to fetch prediction inputs from upstream services."

// ValidationError rejects a request before any outbound call is made.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InputError is a complete request that cannot be resolved, such as an unknown month name.
// It is raised before any outbound call and answered with 500; its message is shown to the user.
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *InputError) Unwrap() error { return e.Err }

// UpstreamDataError means an upstream answered but had nothing usable for the
// requested location or period. Its message is safe to show to the user.
type UpstreamDataError struct {
	Upstream string
	Msg      string
	Err      error
}

func (e *UpstreamDataError) Error() string { return e.Msg }

func (e *UpstreamDataError) Unwrap() error { return e.Err }

// UpstreamCallError is a transport, status or decoding failure talking to an upstream.
// Body holds the start of the response body for the logs; it is never sent to the client.
type UpstreamCallError struct {
	Upstream string
	Status   int
	Body     string
	Err      error
}

func (e *UpstreamCallError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("%s upstream status %d: %s", e.Upstream, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("%s upstream status %d", e.Upstream, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Upstream, e.Err)
	default:
		return e.Upstream + ": upstream error"
	}
}

func (e *UpstreamCallError) Unwrap() error { return e.Err }

// StatusCode maps an error of the taxonomy to the HTTP status of POST /predict.
func StatusCode(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text placed in the {"error": ...} body.
func PublicMessage(err error) string {
	var (
		ve *ValidationError
		ie *InputError
		de *UpstreamDataError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ie):
		return ie.Msg
	case errors.As(err, &de):
		return de.Msg
	default:
		return msgUpstreamFailure
	}
}
