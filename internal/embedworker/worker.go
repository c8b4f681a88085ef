package embedworker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcp-memoria/mcp-memoria/internal/chunk"
	"github.com/mcp-memoria/mcp-memoria/internal/embed"
	"github.com/mcp-memoria/mcp-memoria/internal/embedcache"
	"github.com/mcp-memoria/mcp-memoria/internal/store"
)

// Worker consumes jobs from a Queue serially, one at a time, in FIFO order.
// Each job opens its target corpus store fresh (short-lived, matching the
// per-job connection the jobs' producer side also expects to be able to
// open concurrently for reads).
type Worker struct {
	queue          *Queue
	embedder       embed.Embedder
	chunkSize      int
	chunkOverlap   int
	cacheFrontSize int
	logger         *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New builds a Worker. chunkSize/chunkOverlap and cacheFrontSize come from
// memconfig; logger must not be nil.
func New(queue *Queue, embedder embed.Embedder, chunkSize, chunkOverlap, cacheFrontSize int, logger *slog.Logger) *Worker {
	return &Worker{
		queue:          queue,
		embedder:       embedder,
		chunkSize:      chunkSize,
		chunkOverlap:   chunkOverlap,
		cacheFrontSize: cacheFrontSize,
		logger:         logger,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start runs the drain loop in a background goroutine. Non-blocking.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop signals the worker to finish its current job and exit, then waits.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case job, ok := <-w.queue.Chan():
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Warn("embed job failed", "id", job.MemoryID, "db", job.DBPath, "err", err)
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, job Job) error {
	s, err := store.Open(job.DBPath)
	if err != nil {
		return fmt.Errorf("open corpus for embed job: %w", err)
	}
	defer s.Close()

	cache, err := embedcache.New(s, w.cacheFrontSize)
	if err != nil {
		return fmt.Errorf("build embedding cache: %w", err)
	}

	vec, err := w.embedCached(ctx, cache, job.Content)
	if err != nil {
		return fmt.Errorf("embed memory %s: %w", job.MemoryID, err)
	}
	if err := s.UpdateEmbedding(ctx, job.MemoryID, vec); err != nil {
		return fmt.Errorf("store embedding for %s: %w", job.MemoryID, err)
	}

	pieces := chunk.Split(job.Content, w.chunkSize, w.chunkOverlap)
	if len(pieces) <= 1 {
		return nil
	}

	chunks := make([]store.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		cv, err := w.embedCached(ctx, cache, piece)
		if err != nil {
			return fmt.Errorf("embed chunk %d of %s: %w", i, job.MemoryID, err)
		}
		chunks = append(chunks, store.Chunk{
			ID:         fmt.Sprintf("%s_c%d", job.MemoryID, i),
			MemoryID:   job.MemoryID,
			ChunkIndex: i,
			ChunkText:  piece,
			Embedding:  cv,
		})
	}
	if err := s.ReplaceChunks(ctx, job.MemoryID, chunks); err != nil {
		return fmt.Errorf("replace chunks for %s: %w", job.MemoryID, err)
	}
	return nil
}

func (w *Worker) embedCached(ctx context.Context, cache *embedcache.Cache, text string) ([]float32, error) {
	model := w.embedder.ModelName()
	if v, ok, err := cache.Lookup(ctx, text, model); err != nil {
		w.logger.Warn("embedding cache lookup failed", "err", err)
	} else if ok {
		return v, nil
	}

	vec, err := w.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := cache.Store(ctx, text, model, vec); err != nil {
		w.logger.Warn("embedding cache store failed", "err", err)
	}
	return vec, nil
}
