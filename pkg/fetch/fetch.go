// Package fetch keeps the latest result of an asynchronous load per key.
//
// Every Load issues its own request: there is no de-duplication and
// superseded requests are not cancelled. Results are stored per key and the
// last completion for a key wins. Readers that only care about the selected
// key use Current, so late results for other keys never leak into it.
package fetch

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNoLoader is returned when a resource is built without a loader.
var ErrNoLoader = errors.New("fetch: loader is required")

// Status is the lifecycle of one key.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Entry is the stored state of one key.
type Entry[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Loader produces the value for key.
type Loader[K comparable, T any] func(ctx context.Context, key K) (T, error)

// Option configures a Resource.
type Option func(*config)

type config struct {
	logger zerolog.Logger
}

// WithLogger sets the logger used for load failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Resource caches load results by key.
type Resource[K comparable, T any] struct {
	mu       sync.Mutex
	load     Loader[K, T]
	entries  map[K]Entry[T]
	inflight map[K]int
	current  K
	selected bool
	logger   zerolog.Logger
}

// New builds a resource around load.
func New[K comparable, T any](load Loader[K, T], options ...Option) (*Resource[K, T], error) {
	if load == nil {
		return nil, ErrNoLoader
	}
	cfg := config{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Resource[K, T]{
		load:     load,
		entries:  make(map[K]Entry[T]),
		inflight: make(map[K]int),
		logger:   cfg.logger,
	}, nil
}

// Select marks key as the one readers are interested in.
func (r *Resource[K, T]) Select(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = key
	r.selected = true
}

// Load starts a request for key and returns a channel that receives the
// stored entry once this request completes.
func (r *Resource[K, T]) Load(ctx context.Context, key K) <-chan Entry[T] {
	out := make(chan Entry[T], 1)

	r.mu.Lock()
	entry := r.entries[key]
	entry.Status = StatusLoading
	r.entries[key] = entry
	r.inflight[key]++
	r.mu.Unlock()

	go func() {
		value, err := r.load(ctx, key)
		out <- r.store(key, value, err)
		close(out)
	}()
	return out
}

// Fetch loads key and waits for the result.
func (r *Resource[K, T]) Fetch(ctx context.Context, key K) (T, error) {
	select {
	case entry := <-r.Load(ctx, key):
		return entry.Value, entry.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (r *Resource[K, T]) store(key K, value T, err error) Entry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.inflight[key]--
	if r.inflight[key] <= 0 {
		delete(r.inflight, key)
	}

	entry := Entry[T]{Status: StatusReady, Value: value}
	if err != nil {
		entry = Entry[T]{Status: StatusFailed, Err: err}
		r.logger.Debug().Err(err).Interface("key", key).Msg("fetch failed")
	}
	if _, pending := r.inflight[key]; pending {
		// A newer request for this key is still running; keep reporting it.
		stored := entry
		stored.Status = StatusLoading
		r.entries[key] = stored
		return entry
	}
	r.entries[key] = entry
	return entry
}

// Entry returns the stored state for key; unknown keys are idle.
func (r *Resource[K, T]) Entry(key K) Entry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[key]
	if !ok {
		return Entry[T]{Status: StatusIdle}
	}
	return entry
}

// Current returns the selected key and its entry. ok is false until Select
// has been called.
func (r *Resource[K, T]) Current() (key K, entry Entry[T], ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.selected {
		return key, Entry[T]{Status: StatusIdle}, false
	}
	entry, found := r.entries[r.current]
	if !found {
		entry = Entry[T]{Status: StatusIdle}
	}
	return r.current, entry, true
}
