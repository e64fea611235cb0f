// Package fetch keeps the state of one asynchronous data load: the last
// value, whether a load is running and the last error. Pages hold one Query
// per resource they show.
package fetch

import (
	"context"
	"reflect"
	"sync"
)

// Func loads the data. It must honour ctx cancellation.
type Func[T any] func(ctx context.Context) (T, error)

// State is a snapshot of a Query.
type State[T any] struct {
	Data    T
	Loading bool
	Err     error
}

type Option[T any] func(*Query[T])

// WithInitial sets Data before the first load completes.
func WithInitial[T any](v T) Option[T] {
	return func(q *Query[T]) { q.state.Data = v }
}

// WithDeps sets the dependency list compared by SetDeps.
func WithDeps[T any](deps ...any) Option[T] {
	return func(q *Query[T]) { q.deps = deps }
}

// WithOnChange registers a callback invoked after every state change.
// It runs outside the internal lock.
func WithOnChange[T any](fn func(State[T])) Option[T] {
	return func(q *Query[T]) { q.onChange = fn }
}

// Query runs fn and records the outcome. Overlapping loads are not
// serialized: whichever resolves last sets the final state.
type Query[T any] struct {
	fn       Func[T]
	onChange func(State[T])

	mu      sync.Mutex
	state   State[T]
	deps    []any
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	closed  bool
	wg      sync.WaitGroup
}

func New[T any](fn Func[T], opts ...Option[T]) *Query[T] {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Query[T]{fn: fn, ctx: ctx, cancel: cancel}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Start launches the first load in the background. Further calls are no-ops.
func (q *Query[T]) Start() {
	q.mu.Lock()
	if q.started || q.closed {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()
	q.launch()
}

// SetDeps launches a new load when deps differ from the previous list.
// It returns whether a load was launched.
func (q *Query[T]) SetDeps(deps ...any) bool {
	q.mu.Lock()
	if q.closed || reflect.DeepEqual(q.deps, deps) {
		q.mu.Unlock()
		return false
	}
	q.deps = deps
	q.started = true
	q.mu.Unlock()
	q.launch()
	return true
}

// Refetch runs the load synchronously and returns its outcome. The call is
// cancelled when either ctx or the Query is done.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	var zero T
	runCtx, stop, ok := q.begin(ctx)
	if !ok {
		return zero, context.Canceled
	}
	defer q.wg.Done()
	defer stop()
	return q.run(runCtx)
}

// State returns a copy of the current state.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Close cancels running loads and waits for them. No state changes happen
// afterwards. It must not be called from the OnChange callback.
func (q *Query[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.cancel()
	q.wg.Wait()
}

func (q *Query[T]) launch() {
	runCtx, stop, ok := q.begin(context.Background())
	if !ok {
		return
	}
	go func() {
		defer q.wg.Done()
		defer stop()
		_, _ = q.run(runCtx)
	}()
}

// begin marks the query loading and registers the load with the wait group.
func (q *Query[T]) begin(parent context.Context) (context.Context, context.CancelFunc, bool) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, nil, false
	}
	q.wg.Add(1)
	q.state.Loading = true
	q.state.Err = nil
	snap := q.state
	q.mu.Unlock()

	q.notify(snap)
	ctx, stop := mergeCancel(parent, q.ctx)
	return ctx, stop, true
}

func (q *Query[T]) run(ctx context.Context) (T, error) {
	data, err := q.fn(ctx)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return data, err
	}
	if err != nil {
		q.state.Err = err
	} else {
		q.state.Data = data
		q.state.Err = nil
	}
	q.state.Loading = false
	snap := q.state
	q.mu.Unlock()

	q.notify(snap)
	return data, err
}

func (q *Query[T]) notify(s State[T]) {
	if q.onChange != nil {
		q.onChange(s)
	}
}

// mergeCancel returns a context derived from a that is also cancelled when b is.
func mergeCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(a)
	stop := context.AfterFunc(b, func() { cancel(context.Cause(b)) })
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}
