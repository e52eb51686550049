package errs

import (
	cr "github.com/cockroachdb/errors"
)

func New(msg string) error {
	return cr.New(msg)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

// marked pairs a cause with a sentinel. Both sides stay reachable through
// Unwrap so plain errors.Is matches the sentinel while the cause keeps its
// message and stack for logging.
type marked struct {
	cause    error
	sentinel error
}

func (m *marked) Error() string { return m.cause.Error() }

func (m *marked) Unwrap() []error { return []error{m.sentinel, m.cause} }

// Mark attaches a sentinel so errors.Is(err, markErr) holds while the
// original cause is preserved for logging.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return &marked{cause: err, sentinel: markErr}
}
