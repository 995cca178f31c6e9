package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error categories the engine produces.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNotFound
	KindConflict
	KindStoreUnavailable
	KindConsistencyAnomaly
	KindPartialFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindConsistencyAnomaly:
		return "consistency_anomaly"
	case KindPartialFailure:
		return "partial_failure"
	default:
		return "unknown"
	}
}

// Error carries the structured fields reconciliation needs: which player,
// which store, which operation.
type Error struct {
	Kind     Kind
	Op       string
	PlayerID string
	Store    string
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.PlayerID != "" {
		s += fmt.Sprintf(" (player=%s)", e.PlayerID)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match any *Error of the same Kind, so callers can use
// kind sentinels without caring about the structured fields.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Kind sentinels for errors.Is checks.
var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrStoreUnavailable   = &Error{Kind: KindStoreUnavailable}
	ErrConsistencyAnomaly = &Error{Kind: KindConsistencyAnomaly}
	ErrPartialFailure     = &Error{Kind: KindPartialFailure}
)

func InvalidInput(op, msg string) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Msg: msg}
}

func NotFound(op, playerID string) *Error {
	return &Error{Kind: KindNotFound, Op: op, PlayerID: playerID}
}

func Conflict(op, msg string) *Error {
	return &Error{Kind: KindConflict, Op: op, Msg: msg}
}

func StoreUnavailable(op, store string, err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Op: op, Store: store, Err: err}
}

// KindOf extracts the Kind from any error in the chain, KindUnknown otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps a Kind to the status the transport layer should answer with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return 400
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	case KindStoreUnavailable:
		return 503
	default:
		return 500
	}
}
