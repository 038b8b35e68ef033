// Package apierr turns the account service's failure responses into a single
// error shape with a user-facing message and a coarse kind.
package apierr

import (
	"encoding/json"
	"net/http"
	"strings"

	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
)

// Kind is the coarse classification shown to flow controllers.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	KindNetwork      Kind = "network"
)

// NetworkMessage is shown whenever no response was received.
const NetworkMessage = "Server not reachable. Please try again later."

// Error is the normalized failure of a call (or of a local pre-check).
type Error struct {
	Kind    Kind
	Message string // User-facing text
	Status  int    // HTTP status, 0 when no response was received or the check was local
	Local   bool   // True when the error was produced before any network call
	Cause   error  // Transport error or local sentinel
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets callers match an Error against the kind sentinels in internal/errors.
func (e *Error) Is(target error) bool {
	return kindSentinel(e.Kind) == target
}

func kindSentinel(k Kind) error {
	switch k {
	case KindValidation:
		return clienterrors.ErrValidation
	case KindUnauthorized:
		return clienterrors.ErrUnauthorized
	case KindConflict:
		return clienterrors.ErrConflict
	case KindNotFound:
		return clienterrors.ErrNotFound
	case KindNetwork:
		return clienterrors.ErrNetwork
	}
	return clienterrors.ErrServer
}

// Local builds a validation error that never reached the network. cause is
// usually one of the sentinels in internal/errors.
func Local(cause error, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Local: true, Cause: cause}
}

// FlowContextMissing builds the recoverable fault raised when a step is
// reached without the state its predecessor produces.
func FlowContextMissing(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Local: true, Cause: clienterrors.ErrFlowContextMissing}
}

// IsFlowContextMissing reports whether err is the flow-context fault.
func IsFlowContextMissing(err error) bool {
	return clienterrors.Is(err, clienterrors.ErrFlowContextMissing)
}

// From returns err as an *Error. Errors that were not produced by this
// package (encoding failures and the like) become server errors carrying
// fallback. From(nil) is nil.
func From(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if clienterrors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindServer, Message: fallback, Cause: err}
}

// KindForStatus maps an HTTP status code onto a Kind.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	case http.StatusConflict:
		return KindConflict
	case http.StatusNotFound:
		return KindNotFound
	}
	return KindServer
}

// Normalize maps a failed call onto an Error. transportErr is non-nil when
// no response was received; otherwise status and body describe the response.
// fallback is the operation specific text used when the body carries no
// usable message.
func Normalize(status int, body []byte, transportErr error, fallback string) *Error {
	if transportErr != nil {
		return &Error{Kind: KindNetwork, Message: NetworkMessage, Cause: transportErr}
	}
	msg := MessageFromBody(body)
	if msg == "" {
		msg = fallback
	}
	return &Error{Kind: KindForStatus(status), Message: msg, Status: status}
}

// MessageFromBody extracts the server's message preferring "error", then
// "message", then "detail". It returns "" when none is usable.
func MessageFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message", "detail"} {
		if msg := textField(fields[key]); msg != "" {
			return msg
		}
	}
	return ""
}

func textField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}
