// Package parallel implements the sharded worker pool spec.md §5 assigns to
// callers that parallelize across the catalog: "callers wishing to
// parallelize must shard by (w, n) and serialize commits." A Pool runs one
// task at a time per (w, n) shard — so two folds of the same dimension
// group never race — while distinct shards run concurrently.
package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ErrPoolClosed is returned when Submit is called after Close.
var ErrPoolClosed = errors.New("parallel: pool is closed")

// ShardKey identifies a catalog dimension group. Every task submitted under
// the same key runs strictly after the previous one finishes.
type ShardKey struct {
	W int
	N int
}

// Stats accumulates submission counters across every shard. Condensed from
// the teacher's ExecutionStats: this keeps only the counts an operator
// running catalog folds would actually look at.
type Stats struct {
	submitted int64
	completed int64
	failed    int64
	cancelled int64
}

// Submitted is the total number of tasks accepted by Submit.
func (s *Stats) Submitted() int64 { return atomic.LoadInt64(&s.submitted) }

// Completed is the number of tasks whose function returned nil.
func (s *Stats) Completed() int64 { return atomic.LoadInt64(&s.completed) }

// Failed is the number of tasks whose function returned a non-nil error.
func (s *Stats) Failed() int64 { return atomic.LoadInt64(&s.failed) }

// Cancelled is the number of tasks dropped because their context was done
// before a shard worker reached them.
func (s *Stats) Cancelled() int64 { return atomic.LoadInt64(&s.cancelled) }

type task struct {
	ctx context.Context
	fn  func(context.Context) error
	done chan error
}

type shard struct {
	tasks chan task
}

// Pool fans work out across per-(w,n) shards. Each shard processes its
// tasks one at a time, in submission order; different shards run
// concurrently up to the Go runtime's own scheduling limits, matching
// spec.md §5's "no internal locks are exposed; shard and serialize
// commits" contract.
type Pool struct {
	mu     sync.Mutex
	shards map[ShardKey]*shard
	group  *errgroup.Group
	gctx   context.Context
	closed bool
	stats  Stats
}

// New returns a Pool whose shard workers run under ctx; cancelling ctx
// stops every shard worker once its in-flight task returns.
func New(ctx context.Context) *Pool {
	g, gctx := errgroup.WithContext(ctx)
	return &Pool{
		shards: make(map[ShardKey]*shard),
		group:  g,
		gctx:   gctx,
	}
}

// Stats returns the pool's running submission counters.
func (p *Pool) Stats() *Stats { return &p.stats }

// Submit enqueues fn on the shard for key, starting that shard's worker
// goroutine on first use, and blocks until fn has run (or ctx is done
// first). It returns fn's error, ctx.Err() on cancellation, or
// ErrPoolClosed if Close has already been called.
func (p *Pool) Submit(ctx context.Context, key ShardKey, fn func(context.Context) error) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	sh, ok := p.shards[key]
	if !ok {
		sh = &shard{tasks: make(chan task, 16)}
		p.shards[key] = sh
		p.group.Go(func() error { return p.runShard(sh) })
	}
	p.mu.Unlock()

	atomic.AddInt64(&p.stats.submitted, 1)
	t := task{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case sh.tasks <- t:
	case <-ctx.Done():
		atomic.AddInt64(&p.stats.cancelled, 1)
		return ctx.Err()
	case <-p.gctx.Done():
		atomic.AddInt64(&p.stats.cancelled, 1)
		return p.gctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) runShard(sh *shard) error {
	for {
		select {
		case t := <-sh.tasks:
			if t.ctx.Err() != nil {
				atomic.AddInt64(&p.stats.cancelled, 1)
				t.done <- t.ctx.Err()
				continue
			}
			err := t.fn(t.ctx)
			if err != nil {
				atomic.AddInt64(&p.stats.failed, 1)
			} else {
				atomic.AddInt64(&p.stats.completed, 1)
			}
			t.done <- err
		case <-p.gctx.Done():
			return nil
		}
	}
}

// Close stops accepting new work. It neither stops shard workers nor waits
// for in-flight tasks: workers exit only once the pool's context is
// cancelled.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Wait blocks until every shard worker has exited, which happens when the
// context passed to New is cancelled. It returns the first non-nil error a
// shard worker returned, if any.
func (p *Pool) Wait() error {
	return p.group.Wait()
}
