package errkind

import (
	"errors"
	"fmt"
)

// The closed set of error kinds this program produces.
// Every error that crosses a package boundary wraps exactly one of these,
// so the run boundary can match them exhaustively with errors.Is.
var (
	Timeout    = errors.New("probe timed out")
	Connect    = errors.New("connection failed")
	HTTPStatus = errors.New("unexpected HTTP status")
	Transport  = errors.New("transport error")
	Parse      = errors.New("failed to parse")
	IO         = errors.New("I/O error")
)

// Error is an error that belongs to one of the kinds above.
//
// Use errors.Is to check which kind it is.
type Error struct {
	kind    error
	from    error
	message string
}

// New creates a new Error of the given kind.
func New(kind error, from error, format string, args ...interface{}) Error {
	msg := fmt.Sprintf(format, args...)
	if from != nil {
		if msg != "" {
			msg += ": "
		}
		msg += from.Error()
	}

	return Error{
		kind:    kind,
		from:    from,
		message: msg,
	}
}

// Error implements error interface.
func (e Error) Error() string {
	return e.message
}

// Unwrap implement for errors.Unwrap.
func (e Error) Unwrap() error {
	return e.from
}

// Is implement for errors.Is.
func (e Error) Is(err error) bool {
	return e.kind == err
}
