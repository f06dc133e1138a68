// Package runner coordinates executions started by interactive front-ends. Starting a
// new execution cancels the one in flight, and only the latest outcome is kept.
package runner

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/mwantia/dualcli/log"
)

var (
	// ErrCancelled may be returned by an operation to report that it stopped on request
	ErrCancelled = errors.New("runner: execution cancelled")

	// ErrSuperseded is the cancellation cause of a run replaced by a newer one
	ErrSuperseded = errors.New("runner: execution superseded")
)

type Status int

const (
	StatusSucceeded Status = iota
	StatusEmpty
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusEmpty:
		return "empty"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one run.
type Outcome[O any] struct {
	RunID  uuid.UUID
	Status Status
	Value  O
	Err    error
}

// Operation is the work a Coordinator runs. It must observe ctx for cancellation.
type Operation[I, O any] func(ctx context.Context, in I) (O, error)

type Coordinator[I, O any] struct {
	mu      sync.Mutex
	op      Operation[I, O]
	log     *log.Logger
	gen     uint64
	cancel  context.CancelCauseFunc
	running bool
	last    *Outcome[O]
}

type Option func(*options)

type options struct {
	logger *log.Logger
}

func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func New[I, O any](op Operation[I, O], opts ...Option) *Coordinator[I, O] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.Discard()
	}

	return &Coordinator[I, O]{
		op:  op,
		log: o.logger,
	}
}

// Execute cancels the run in flight, if any, and runs the operation with in.
// It blocks until the operation returns.
func (c *Coordinator[I, O]) Execute(ctx context.Context, in I) Outcome[O] {
	runCtx, cancel := context.WithCancelCause(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel(ErrSuperseded)
	}
	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.running = true
	c.mu.Unlock()

	outcome := Outcome[O]{RunID: newRunID()}
	c.log.Debug("run %s started", outcome.RunID)

	value, err := c.op(runCtx, in)
	outcome.Status, outcome.Value, outcome.Err = classify(runCtx, value, err)

	c.mu.Lock()
	if gen == c.gen {
		c.last = &outcome
		c.cancel = nil
		c.running = false
	}
	c.mu.Unlock()
	cancel(nil)

	c.log.Debug("run %s %s", outcome.RunID, outcome.Status)
	return outcome
}

func classify[O any](ctx context.Context, value O, err error) (Status, O, error) {
	var zero O
	switch {
	case ctx.Err() != nil, errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return StatusCancelled, zero, nil
	case err != nil:
		return StatusFailed, zero, err
	case isZero(value):
		return StatusEmpty, value, nil
	default:
		return StatusSucceeded, value, nil
	}
}

func isZero[O any](value O) bool {
	return reflect.ValueOf(&value).Elem().IsZero()
}

func newRunID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Cancel cancels the run in flight. It does nothing when no run is active.
func (c *Coordinator[I, O]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel(ErrCancelled)
		c.cancel = nil
	}
}

// Reset cancels the run in flight and forgets the last outcome. An outcome of the
// cancelled run is discarded.
func (c *Coordinator[I, O]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel(ErrCancelled)
		c.cancel = nil
	}
	c.gen++
	c.running = false
	c.last = nil
}

func (c *Coordinator[I, O]) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Last returns the outcome of the most recently started run that completed.
func (c *Coordinator[I, O]) Last() (Outcome[O], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		return Outcome[O]{}, false
	}
	return *c.last, true
}
