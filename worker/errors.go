package worker

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned by Send while a previous call on the same unit is
	// unresolved. Calls are rejected, never queued.
	ErrBusy = errors.New("worker: unit is busy")

	// ErrDestroyed is returned by Send after Destroy.
	ErrDestroyed = errors.New("worker: unit destroyed")

	// ErrFault matches every FaultError.
	ErrFault = errors.New("worker: unit fault")

	// ErrNoSession is reported by a GroupComposer asked to create an image
	// before its layers were transferred.
	ErrNoSession = errors.New("worker: no session, transfer the layers first")

	// ErrInvalidScale is returned for a non-positive effective tiling scale.
	ErrInvalidScale = errors.New("worker: tiling scale must be positive")
)

// FaultError reports a failure inside a unit: a handler error or a
// recovered panic. errors.Is(err, ErrFault) holds for every FaultError.
type FaultError struct {
	Unit string
	Err  error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("an error occurred in the worker %q: %v", e.Unit, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }

func (e *FaultError) Is(target error) bool { return target == ErrFault }
