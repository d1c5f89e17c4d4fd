package retrieval

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/pkg/log"
)

type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type (
	EmbedderFactory func(ctx context.Context) (core.Embedder, error)
	IndexFactory    func(ctx context.Context) (core.VectorIndex, error)
)

// Initializer constructs the embedder and the vector index at most once per
// successful attempt. Concurrent callers share a single in-flight attempt.
// A failure is remembered for retryAfter; later callers start a new attempt.
type Initializer struct {
	newEmbedder EmbedderFactory
	newIndex    IndexFactory
	retryAfter  time.Duration
	now         func() time.Time

	mu       sync.Mutex
	state    State
	done     chan struct{}
	err      error
	failedAt time.Time
	embedder core.Embedder
	index    core.VectorIndex
}

func NewInitializer(newEmbedder EmbedderFactory, newIndex IndexFactory, retryAfter time.Duration) *Initializer {
	return &Initializer{
		newEmbedder: newEmbedder,
		newIndex:    newIndex,
		retryAfter:  retryAfter,
		now:         time.Now,
	}
}

// EnsureReady blocks until the retrieval clients exist or construction failed.
// Failures are *core.InitializationError.
func (i *Initializer) EnsureReady(ctx context.Context) error {
	i.mu.Lock()
	switch i.state {
	case StateReady:
		i.mu.Unlock()
		return nil
	case StateFailed:
		if i.now().Sub(i.failedAt) < i.retryAfter {
			err := i.err
			i.mu.Unlock()
			return err
		}
		i.start(ctx)
	case StateUninitialized:
		i.start(ctx)
	}
	done := i.done
	i.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateReady {
		return nil
	}
	return i.err
}

// start must be called with mu held.
func (i *Initializer) start(ctx context.Context) {
	i.state = StateInitializing
	i.done = make(chan struct{})
	// the attempt outlives the caller that triggered it
	go i.run(context.WithoutCancel(ctx), i.done)
}

func (i *Initializer) run(ctx context.Context, done chan struct{}) {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("initializing retrieval clients")

	embedder, index, err := i.construct(ctx)

	i.mu.Lock()
	if err != nil {
		i.state = StateFailed
		i.err = err
		i.failedAt = i.now()
		logger.Error().Err(err).Str("kind", "initialization").Dur("retry_after", i.retryAfter).Msg("retrieval initialization failed")
	} else {
		i.state = StateReady
		i.err = nil
		i.embedder = embedder
		i.index = index
		logger.Info().Msg("retrieval clients ready")
	}
	close(done)
	i.mu.Unlock()
}

func (i *Initializer) construct(ctx context.Context) (embedder core.Embedder, index core.VectorIndex, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.InitializationError{Component: "retrieval", Err: panicError{r}}
		}
	}()

	embedder, err = i.newEmbedder(ctx)
	if err != nil {
		return nil, nil, &core.InitializationError{Component: "embedder", Err: err}
	}
	index, err = i.newIndex(ctx)
	if err != nil {
		return nil, nil, &core.InitializationError{Component: "vector index", Err: err}
	}
	return embedder, index, nil
}

func (i *Initializer) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Clients returns the constructed clients. ok is false until the state is Ready.
func (i *Initializer) Clients() (embedder core.Embedder, index core.VectorIndex, ok bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state != StateReady {
		return nil, nil, false
	}
	return i.embedder, i.index, true
}
