package tailor

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrTransitioning is returned when a layer is asked to change while its
	// current transition has not finished.
	ErrTransitioning = errors.New("tailor: layer is transitioning")

	// ErrNotFound is returned when hiding a layer that is not registered.
	ErrNotFound = errors.New("tailor: layer not found")

	// ErrDestroyed is returned by operations on a destroyed Painter and by
	// Pending results that were outstanding when it was destroyed.
	ErrDestroyed = errors.New("tailor: painter destroyed")

	// ErrInvalidTransition is returned for a TransitionSpec with a missing
	// function or a speed outside (0, 1].
	ErrInvalidTransition = errors.New("tailor: invalid transition")
)

// KeyError attaches the layer key to a registry error.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string { return fmt.Sprintf("layer %q: %v", e.Key, e.Err) }

func (e *KeyError) Unwrap() error { return e.Err }

// OpError records the public operation that failed and its cause.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Op + ": failed"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// Fail wraps err with the operation tag op, logs every error in the
// resulting chain, and returns the wrapped error. It returns nil for a nil
// err. An err that already holds an OpError was logged by the Fail that
// made it, so it is wrapped without logging again.
func Fail(op string, err error) error {
	if err == nil {
		return nil
	}
	e := &OpError{Op: op, Err: err}
	var failed *OpError
	if !errors.As(err, &failed) {
		LogChain(e)
	}
	return e
}

// LogChain writes one error record per link of err's cause chain, outermost
// first.
func LogChain(err error) {
	l := Logger()
	depth := 0
	var walk func(error)
	walk = func(err error) {
		for err != nil {
			attrs := []any{slog.Int("depth", depth), slog.String("error", err.Error())}
			if op, ok := err.(*OpError); ok {
				attrs = append(attrs, slog.String("op", op.Op))
			}
			l.Error("tailor: failure", attrs...)
			depth++

			switch u := err.(type) {
			case interface{ Unwrap() []error }:
				for _, inner := range u.Unwrap() {
					walk(inner)
				}
				return
			case interface{ Unwrap() error }:
				err = u.Unwrap()
			default:
				return
			}
		}
	}
	walk(err)
}
