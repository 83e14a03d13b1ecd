package core

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/bizcache/schema"
	"golang.org/x/sync/errgroup"
)

// AggregatorState is the lifecycle of a startup Aggregator.
type AggregatorState string

// Aggregator states. There is no transition out of Ready.
const (
	Idle    AggregatorState = "idle"
	Loading AggregatorState = "loading"
	Ready   AggregatorState = "ready"
)

// Fetcher is what the aggregator needs from each cache.
type Fetcher interface {
	Name() string
	FetchAll(ctx context.Context) error
	Len() int
}

// Aggregator fans out the initial FetchAll of every cache and exposes a single
// readiness gate. Failed loads count as settled: they never hold back Ready.
type Aggregator struct {
	fetchers []Fetcher
	workers  int

	mu       sync.RWMutex
	state    AggregatorState
	statuses map[string]schema.ResourceStatus
	done     chan struct{}
}

// NewAggregator returns an idle aggregator over fetchers. At most workers
// loads run at once; a non-positive value issues every load together.
func NewAggregator(workers int, fetchers ...Fetcher) *Aggregator {
	if workers <= 0 {
		workers = max(len(fetchers), 1)
	}
	statuses := make(map[string]schema.ResourceStatus, len(fetchers))
	for _, f := range fetchers {
		statuses[f.Name()] = schema.ResourceStatus{Name: f.Name(), State: schema.PendingState}
	}
	return &Aggregator{
		fetchers: fetchers,
		workers:  workers,
		state:    Idle,
		statuses: statuses,
		done:     make(chan struct{}),
	}
}

// Start moves Idle to Loading and issues every load in the background.
// Calling Start again has no effect.
func (a *Aggregator) Start(ctx context.Context) {
	a.mu.Lock()
	if a.state != Idle {
		a.mu.Unlock()
		return
	}
	a.state = Loading
	a.mu.Unlock()

	go func() {
		g := new(errgroup.Group)
		g.SetLimit(a.workers)
		for _, f := range a.fetchers {
			g.Go(func() error {
				start := time.Now()
				err := f.FetchAll(ctx)
				a.settle(f, err, time.Since(start))
				return nil // settled either way
			})
		}
		_ = g.Wait()

		a.mu.Lock()
		a.state = Ready
		a.mu.Unlock()
		close(a.done)
	}()
}

// Wait blocks until every load has settled or ctx ends.
func (a *Aggregator) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the aggregator and waits for readiness.
func (a *Aggregator) Run(ctx context.Context) error {
	a.Start(ctx)
	return a.Wait(ctx)
}

// Done is closed when the aggregator becomes Ready.
func (a *Aggregator) Done() <-chan struct{} { return a.done }

// Ready reports whether every initial load has settled.
func (a *Aggregator) Ready() bool {
	return a.State() == Ready
}

// State returns the current lifecycle state.
func (a *Aggregator) State() AggregatorState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Statuses returns the per-resource outcome in registration order.
func (a *Aggregator) Statuses() []schema.ResourceStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]schema.ResourceStatus, 0, len(a.fetchers))
	for _, f := range a.fetchers {
		out = append(out, a.statuses[f.Name()])
	}
	return out
}

// settle records the outcome of a single load.
func (a *Aggregator) settle(f Fetcher, err error, elapsed time.Duration) {
	status := schema.ResourceStatus{Name: f.Name(), Duration: elapsed}
	if err != nil {
		status.State = schema.FailedState
		status.Error = err.Error()
	} else {
		status.State = schema.LoadedState
		status.Count = f.Len()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.statuses[f.Name()] = status
}
