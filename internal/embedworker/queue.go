// Package embedworker drains a bounded queue of pending embed jobs in the
// background: one job per newly-saved or reindexed memory, cache-or-embed
// the content, embed any overlong chunks, and write the results back to the
// corpus the job names.
package embedworker

// Job is one unit of work: embed content for a memory in a specific corpus
// store and persist the result.
type Job struct {
	DBPath   string
	MemoryID string
	Content  string
}

// Queue is a bounded, non-blocking producer side of the embed pipeline. A
// full queue drops the job rather than blocking the caller — spec's stated
// choice to keep writes low-latency; reindex is the recovery path.
type Queue struct {
	ch chan Job
}

// NewQueue creates a queue with the given capacity (spec default: 256).
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan Job, capacity)}
}

// TrySend enqueues job without blocking. Returns false if the queue is full.
func (q *Queue) TrySend(job Job) bool {
	select {
	case q.ch <- job:
		return true
	default:
		return false
	}
}

// Chan exposes the receive side for the Worker.
func (q *Queue) Chan() <-chan Job {
	return q.ch
}

// Len reports the number of jobs currently buffered. Used by short-lived
// callers (the reindex CLI command) to poll a background Worker to
// quiescence before exiting, since there is no persistent server process
// to keep the worker alive for.
func (q *Queue) Len() int {
	return len(q.ch)
}
