package types

import "fmt"

// Kind is a stable error-kind identifier. Clients branch on Kind,
// never on message text.
type Kind string

const (
	KindValidation   Kind = "ValidationError"
	KindNotFound     Kind = "NotFoundError"
	KindConflict     Kind = "ConflictError"
	KindReference    Kind = "ReferenceError"
	KindIntegrity    Kind = "IntegrityError"
	KindToolNotFound Kind = "ToolNotFound"
)

// Error is the single error type every core component returns. It
// carries a Kind so callers can branch, and a human-readable message
// that propagates to the caller verbatim.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error { return newErr(KindValidation, format, args...) }
func Conflictf(format string, args ...any) *Error    { return newErr(KindConflict, format, args...) }
func Referencef(format string, args ...any) *Error   { return newErr(KindReference, format, args...) }
func Integrityf(format string, args ...any) *Error   { return newErr(KindIntegrity, format, args...) }
func ToolNotFoundf(format string, args ...any) *Error {
	return newErr(KindToolNotFound, format, args...)
}

// NotFoundItem builds the canonical not-found message shape.
func NotFoundItem(itemType, id string) *Error {
	return newErr(KindNotFound, "%s with ID %s not found", itemType, id)
}

// NotFoundTypef builds the canonical not-found message shape.
func NotFoundTypef(name string) *Error {
	return newErr(KindNotFound, "Type %q does not exist", name)
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	e := newErr(kind, format, args...)
	e.Wrapped = err
	return e
}

// IsKind reports whether err (or anything it wraps) is a *Error of
// the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ce, ok := err.(*Error); ok {
			e = ce
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
