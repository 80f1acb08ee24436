package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/phanxgames/tailor"
)

// Handler processes one request inside a unit. ctx is cancelled when the
// unit is destroyed.
type Handler[Req, Res any] func(ctx context.Context, req Req) (Res, error)

type envelope[Req, Res any] struct {
	req  Req
	call *Call[Res]
}

// Call is the pending result of one Send.
type Call[Res any] struct {
	done chan struct{}
	res  Res
	err  error
}

// Done returns a channel closed when the result is available.
func (c *Call[Res]) Done() <-chan struct{} { return c.done }

// Wait blocks until the unit responds or ctx is done. Abandoning a call
// does not free the unit; it stays busy until the handler returns.
func (c *Call[Res]) Wait(ctx context.Context) (Res, error) {
	select {
	case <-c.done:
		return c.res, c.err
	case <-ctx.Done():
		var zero Res
		return zero, ctx.Err()
	}
}

// Executor runs a Handler on its own goroutine and enforces at most one
// outstanding request. Requests and responses are handed over by channel;
// images in them belong to the receiving side afterwards and must not be
// touched by the sender.
type Executor[Req, Res any] struct {
	name    string
	handler Handler[Req, Res]

	reqs chan envelope[Req, Res]
	busy atomic.Bool

	mu        sync.Mutex // guards destroyed and the stop transition
	destroyed bool
	ctx       context.Context
	cancel    context.CancelFunc
	stopped   chan struct{}
}

// NewExecutor starts a unit named name that serves requests with h.
func NewExecutor[Req, Res any](name string, h Handler[Req, Res]) *Executor[Req, Res] {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor[Req, Res]{
		name:    name,
		handler: h,
		reqs:    make(chan envelope[Req, Res], 1),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go e.run()
	tailor.Logger().Info("worker: unit started", slog.String("unit", name))
	return e
}

// Name returns the unit name.
func (e *Executor[Req, Res]) Name() string { return e.name }

// Busy reports whether a request is outstanding or the unit is destroyed.
func (e *Executor[Req, Res]) Busy() bool { return e.busy.Load() }

// Stopped returns a channel closed once the unit's goroutine has exited
// after Destroy.
func (e *Executor[Req, Res]) Stopped() <-chan struct{} { return e.stopped }

// Send dispatches req to the unit. It fails with ErrBusy if a previous
// call has not resolved and with ErrDestroyed after Destroy.
func (e *Executor[Req, Res]) Send(req Req) (*Call[Res], error) {
	const op = "Executor.Send"
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return nil, tailor.Fail(op, fmt.Errorf("worker %q: %w", e.name, ErrDestroyed))
	}
	if !e.busy.CompareAndSwap(false, true) {
		return nil, tailor.Fail(op, fmt.Errorf("worker %q: %w", e.name, ErrBusy))
	}
	call := &Call[Res]{done: make(chan struct{})}
	e.reqs <- envelope[Req, Res]{req: req, call: call}
	return call, nil
}

// Do sends req and waits for the response.
func (e *Executor[Req, Res]) Do(ctx context.Context, req Req) (Res, error) {
	call, err := e.Send(req)
	if err != nil {
		var zero Res
		return zero, err
	}
	res, err := call.Wait(ctx)
	if err != nil {
		return res, tailor.Fail("Executor.Do", err)
	}
	return res, nil
}

// Destroy stops the unit without waiting for it; see Stopped. Later sends
// fail; a request already being handled sees its context cancelled and
// still resolves. Destroy is idempotent.
func (e *Executor[Req, Res]) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.busy.Store(true)
	e.cancel()
	e.mu.Unlock()
	tailor.Logger().Info("worker: unit destroyed", slog.String("unit", e.name))
}

func (e *Executor[Req, Res]) run() {
	defer close(e.stopped)
	for {
		select {
		case <-e.ctx.Done():
			select {
			case env := <-e.reqs:
				e.deliver(env.call, *new(Res), &FaultError{Unit: e.name, Err: ErrDestroyed})
			default:
			}
			return
		case env := <-e.reqs:
			res, err := e.handle(env.req)
			e.deliver(env.call, res, err)
		}
	}
}

// deliver clears the busy flag, then publishes the result.
func (e *Executor[Req, Res]) deliver(call *Call[Res], res Res, err error) {
	e.mu.Lock()
	if !e.destroyed {
		e.busy.Store(false)
	}
	e.mu.Unlock()
	call.res, call.err = res, err
	close(call.done)
}

func (e *Executor[Req, Res]) handle(req Req) (res Res, err error) {
	defer func() {
		if r := recover(); r != nil {
			tailor.Logger().Error("worker: unit panicked",
				slog.String("unit", e.name), slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			err = &FaultError{Unit: e.name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	res, err = e.handler(e.ctx, req)
	if err != nil {
		err = &FaultError{Unit: e.name, Err: err}
	}
	return res, err
}
