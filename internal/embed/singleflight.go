package embed

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// SingleFlight wraps an Embedder with a weight-1 semaphore, modeling the
// spec's "Embedder is a single in-process resource guarded by a mutex"
// shared-resource rule: the EmbedWorker and any RPC handler that needs a
// synchronous query vector contend for the same slot.
type SingleFlight struct {
	inner Embedder
	sem   *semaphore.Weighted
}

var _ Embedder = (*SingleFlight)(nil)

// WithSingleFlight wraps inner so only one embed call runs at a time.
func WithSingleFlight(inner Embedder) *SingleFlight {
	return &SingleFlight{inner: inner, sem: semaphore.NewWeighted(1)}
}

func (s *SingleFlight) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)
	return s.inner.Embed(ctx, text)
}

func (s *SingleFlight) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)
	return s.inner.EmbedBatch(ctx, texts)
}

func (s *SingleFlight) Dimensions() int               { return s.inner.Dimensions() }
func (s *SingleFlight) ModelName() string              { return s.inner.ModelName() }
func (s *SingleFlight) Available(ctx context.Context) bool { return s.inner.Available(ctx) }
func (s *SingleFlight) Close() error                   { return s.inner.Close() }
