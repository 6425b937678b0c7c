package ports

import "errors"

// reportedError marks an error whose user-facing reply has already been sent
// by the handler. The dispatcher still logs and counts it, but must not send
// another reply.
type reportedError struct {
	err error
}

// Error implements the error interface.
func (e *reportedError) Error() string {
	return e.err.Error()
}

// Unwrap exposes the underlying error for errors.Is/As classification.
func (e *reportedError) Unwrap() error {
	return e.err
}

// Reported wraps err to signal that the user has already seen a reply for it.
// A nil err returns nil.
func Reported(err error) error {
	if err == nil {
		return nil
	}

	return &reportedError{err: err}
}

// IsReported checks whether a reply for err was already sent to the user.
func IsReported(err error) bool {
	var re *reportedError
	return errors.As(err, &re)
}
