package srv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, s)
}

type fakeService struct {
	name    string
	rec     *recorder
	started chan struct{}
	err     error
}

func (f *fakeService) Start(ctx context.Context) error {
	close(f.started)
	return nil
}

func (f *fakeService) Shutdown(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.rec.add(f.name)
	return f.err
}

func TestStartAndShutdownServices(t *testing.T) {
	rec := &recorder{}
	a := &fakeService{name: "store", rec: rec, started: make(chan struct{})}
	b := &fakeService{name: "transport", rec: rec, started: make(chan struct{}), err: errors.New("ignored")}

	ctx, cancel := context.WithCancel(context.Background())
	services := []Service{a, b}
	StartServices(ctx, services)

	for _, s := range []*fakeService{a, b} {
		select {
		case <-s.started:
		case <-time.After(time.Second):
			t.Fatal("service not started")
		}
	}

	cancel()
	ShutdownServices(ctx, services)

	assert.Equal(t, []string{"transport", "store"}, rec.order, "reverse order with a live shutdown context")
}

func TestNewCleanup(t *testing.T) {
	var order []int
	errDB := errors.New("db busy")
	s := NewCleanup(
		func() error { order = append(order, 1); return nil },
		nil,
		func() error { order = append(order, 3); return errDB },
	)

	require.NoError(t, s.Start(context.Background()))
	err := s.Shutdown(context.Background())
	assert.ErrorIs(t, err, errDB)
	assert.Equal(t, []int{3, 1}, order)

	assert.NoError(t, NewCleanup().Shutdown(context.Background()))
}
