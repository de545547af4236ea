package persist

import (
	"context"
	"sync"
)

// Call is one handler invocation captured by a Recorder.
type Call[C any] struct {
	Class   Class
	Tag     string
	Context C
	Payload Payload
}

// Recorder produces handlers that record their invocations.
//
// Use this in application tests to check that a token reaches the intended
// handler with the intended payload, without running the real handler:
//
//	rec := &persist.Recorder[*Event]{}
//	reg.Component("buy", rec.Component("buy"))
//	result, err := persist.TestComponent(reg, ev, "buy", map[string]any{"item": 42})
//	if rec.Count() != 1 { ... }
//
// Reply and Err are returned from every recorded call.
type Recorder[C any] struct {
	Reply any
	Err   error

	mu    sync.Mutex
	calls []Call[C]
}

// Component returns a component handler that records under tag.
func (r *Recorder[C]) Component(tag string) ComponentHandler[C] {
	return func(ctx context.Context, c C, p Payload) (any, error) {
		r.record(ClassComponent, tag, c, p)
		return r.Reply, r.Err
	}
}

// Modal returns a modal handler that records under tag.
func (r *Recorder[C]) Modal(tag string) ModalHandler[C] {
	return func(ctx context.Context, c C, p Payload) error {
		r.record(ClassModal, tag, c, p)
		return r.Err
	}
}

func (r *Recorder[C]) record(class Class, tag string, c C, p Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call[C]{Class: class, Tag: tag, Context: c, Payload: p})
}

// Calls returns a copy of the recorded calls in invocation order.
func (r *Recorder[C]) Calls() []Call[C] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call[C], len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns the number of recorded calls.
func (r *Recorder[C]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Reset forgets recorded calls.
func (r *Recorder[C]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// TestComponent produces a token for tag and payload and dispatches it as a
// component activation, exercising the full encode, decode and dispatch
// path.
func TestComponent[C any](reg *Registry[C], c C, tag string, payload any) (Result, error) {
	return TestComponentWithContext(context.Background(), reg, c, tag, payload)
}

// TestComponentWithContext is TestComponent with a caller-supplied context.
func TestComponentWithContext[C any](ctx context.Context, reg *Registry[C], c C, tag string, payload any) (Result, error) {
	token, err := reg.Token(tag, payload)
	if err != nil {
		return Result{}, err
	}
	return reg.HandleComponent(ctx, c, token)
}

// TestModal produces a token for tag and payload and dispatches it as a
// modal submission.
func TestModal[C any](reg *Registry[C], c C, tag string, payload any) (Result, error) {
	return TestModalWithContext(context.Background(), reg, c, tag, payload)
}

// TestModalWithContext is TestModal with a caller-supplied context.
func TestModalWithContext[C any](ctx context.Context, reg *Registry[C], c C, tag string, payload any) (Result, error) {
	token, err := reg.Token(tag, payload)
	if err != nil {
		return Result{}, err
	}
	return reg.HandleModal(ctx, c, token)
}
