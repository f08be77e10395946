package unroll

import "github.com/egementunca/ID-Circuit/internal/objpool"

// permuter streams the permutations of [0, w) in lexicographic order, one
// at a time, starting from the identity. It never materializes w! entries
// up front: the unroller's L bound is what actually cuts enumeration short
// for wide circuits, so the iterator only needs to produce the next
// permutation on demand (spec.md §7's "stream permutations lazily" choice).
type permuter struct {
	w       int
	current []int
	started bool
	done    bool
	scratch *objpool.Pool[int]
}

// newPermuter returns an iterator over S_w starting at the identity
// permutation (0, 1, ..., w-1). Buffers it hands out via next() are drawn
// from a reuse pool (the dominant allocation cost in a wide BFS frontier);
// callers that have finished with a returned permutation should hand it
// back through release.
func newPermuter(w int) *permuter {
	id := make([]int, w)
	for i := range id {
		id[i] = i
	}
	return &permuter{w: w, current: id, scratch: objpool.New[int](w)}
}

// release returns a permutation slice previously returned by next() to the
// pool for reuse. Callers must not read or write buf after calling this.
func (p *permuter) release(buf []int) {
	p.scratch.Put(buf)
}

// next returns the next permutation in lexicographic order, or (nil, false)
// once every permutation of [0, w) has been produced. The identity
// permutation is always the first one returned.
func (p *permuter) next() ([]int, bool) {
	if p.w == 0 {
		if p.started {
			return nil, false
		}
		p.started = true
		return nil, true
	}
	if p.done {
		return nil, false
	}
	if !p.started {
		p.started = true
		out := p.scratch.Get(p.w)
		copy(out, p.current)
		return out, true
	}

	// Standard next-permutation: find the rightmost ascent, the rightmost
	// element larger than it to its right, swap, then reverse the suffix.
	i := p.w - 2
	for i >= 0 && p.current[i] >= p.current[i+1] {
		i--
	}
	if i < 0 {
		p.done = true
		return nil, false
	}
	j := p.w - 1
	for p.current[j] <= p.current[i] {
		j--
	}
	p.current[i], p.current[j] = p.current[j], p.current[i]
	for l, r := i+1, p.w-1; l < r; l, r = l+1, r-1 {
		p.current[l], p.current[r] = p.current[r], p.current[l]
	}
	out := p.scratch.Get(p.w)
	copy(out, p.current)
	return out, true
}
