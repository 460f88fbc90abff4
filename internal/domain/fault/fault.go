// Package fault classifies failures into the small set of kinds the HTTP
// layer knows how to report.
package fault

import (
	"errors"
	"fmt"
)

// Kind is the failure class of an error.
type Kind int

// Error kinds. KindUnknown is the zero value so unclassified errors map to it.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindConnection
)

// String returns the wire code for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// Error attaches an operation name and a kind to an underlying error.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with op and kind. A nil err yields nil.
func New(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Newf builds a kinded error from a format string.
func Newf(op string, kind Kind, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindUnknown when there is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
