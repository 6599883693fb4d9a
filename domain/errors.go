package domain

import "errors"

// Kind classifies a service failure so the transport layer can map it to a
// response class without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindUnauthorized
	KindScopeMismatch
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindScopeMismatch:
		return "scope_mismatch"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the failure type returned by every service operation. Raw storage
// errors never escape a service without being wrapped into one.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind carried by err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// ErrNotMatched is returned by stores when a conditional write matched no
// stored document.
var ErrNotMatched = errors.New("no matching document")

func invalidInput(msg string) error { return &Error{Kind: KindInvalidInput, Msg: msg} }
func notFound(msg string) error     { return &Error{Kind: KindNotFound, Msg: msg} }
func unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func scopeMismatch(msg string) error {
	return &Error{Kind: KindScopeMismatch, Msg: msg}
}

func internal(err error, msg string) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}
