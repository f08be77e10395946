// Package objpool pools reusable scratch buffers to cut garbage-collector
// pressure in hot loops that allocate heavily, such as the unroller's BFS
// relabel enumeration, which draws one permutation buffer per candidate
// move.
package objpool

import (
	"sync"
	"sync/atomic"
)

// Stats tracks pool performance metrics, generalized from the teacher's
// ConstraintStorePool accounting (Hits/Misses/Returns/Evictions/
// TotalAllocations) from pooling whole constraint stores to pooling scratch
// buffers.
type Stats struct {
	hits             int64
	misses           int64
	returns          int64
	evictions        int64
	totalAllocations int64
}

// Hits is the number of Get calls satisfied from the pool.
func (s *Stats) Hits() int64 { return atomic.LoadInt64(&s.hits) }

// Misses is the number of Get calls that found the pool empty.
func (s *Stats) Misses() int64 { return atomic.LoadInt64(&s.misses) }

// Returns is the number of Put calls that retained their buffer.
func (s *Stats) Returns() int64 { return atomic.LoadInt64(&s.returns) }

// Evictions is the number of Put calls that discarded an oversized buffer.
func (s *Stats) Evictions() int64 { return atomic.LoadInt64(&s.evictions) }

// TotalAllocations is the lifetime count of freshly allocated buffers.
func (s *Stats) TotalAllocations() int64 { return atomic.LoadInt64(&s.totalAllocations) }

// HitRate is Hits / (Hits + Misses), or 0 if neither has happened yet.
func (s *Stats) HitRate() float64 {
	hits := atomic.LoadInt64(&s.hits)
	misses := atomic.LoadInt64(&s.misses)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Pool hands out slices of T of a requested length, backed by reused
// arrays. A buffer
// whose capacity exceeds maxCap when returned is dropped rather than
// pooled, so one oversized call doesn't pin a large array in the pool
// forever.
type Pool[T any] struct {
	pool   sync.Pool
	maxCap int
	stats  Stats
}

// New returns a Pool whose retained buffers cap out at maxCap elements. A
// maxCap of 0 means no eviction by size.
func New[T any](maxCap int) *Pool[T] {
	p := &Pool[T]{maxCap: maxCap}
	initCap := 16
	if maxCap > 0 && maxCap < initCap {
		initCap = maxCap
	}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.misses, 1)
		atomic.AddInt64(&p.stats.totalAllocations, 1)
		buf := make([]T, 0, initCap)
		return &buf
	}
	return p
}

// Get returns a slice of length n, its contents zeroed, reusing a pooled
// backing array when one is available and large enough.
func (p *Pool[T]) Get(n int) []T {
	before := atomic.LoadInt64(&p.stats.misses)
	ptr := p.pool.Get().(*[]T)
	if atomic.LoadInt64(&p.stats.misses) == before {
		atomic.AddInt64(&p.stats.hits, 1)
	}

	buf := *ptr
	if cap(buf) < n {
		atomic.AddInt64(&p.stats.totalAllocations, 1)
		buf = make([]T, n)
	} else {
		buf = buf[:n]
		var zero T
		for i := range buf {
			buf[i] = zero
		}
	}
	return buf
}

// Put returns buf to the pool for reuse, unless its capacity exceeds
// maxCap, in which case it is discarded.
func (p *Pool[T]) Put(buf []T) {
	if p.maxCap > 0 && cap(buf) > p.maxCap {
		atomic.AddInt64(&p.stats.evictions, 1)
		return
	}
	atomic.AddInt64(&p.stats.returns, 1)
	buf = buf[:0]
	p.pool.Put(&buf)
}

// Stats returns the pool's running counters.
func (p *Pool[T]) Stats() *Stats { return &p.stats }
