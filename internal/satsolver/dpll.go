// Package satsolver implements a small DPLL SAT solver: unit propagation
// plus chronological backtracking over an explicit decision stack. It backs
// pkg/synth's "internal" backend — the default, dependency-free solver used
// when no external binary (minisat/glucose/cadical) is configured.
//
// The search loop is the teacher's iterative stack-of-frames backtracking
// (gitrdm-gokando's search.go DFSSearch: trail snapshot, try a choice,
// undo on exhaustion) adapted from constraint-store domain assignment to
// boolean literal assignment, and from "try each domain value" to "try
// true, then false".
package satsolver

import (
	"context"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Model maps a 1-indexed variable to its assigned truth value.
type Model map[int]bool

// Solver holds a fixed CNF instance (clauses over variables 1..NumVars).
type Solver struct {
	numVars int
	clauses [][]int

	assigned *bitset.BitSet // bit v set iff variable v has a value
	value    *bitset.BitSet // bit v meaningful iff assigned[v]; 1 = true

	trail []int // literals in assignment order, for undo
}

// New builds a solver for the given CNF instance. clauses must only
// reference variables in [1, numVars].
func New(numVars int, clauses [][]int) *Solver {
	return &Solver{
		numVars:  numVars,
		clauses:  clauses,
		assigned: bitset.New(uint(numVars + 1)),
		value:    bitset.New(uint(numVars + 1)),
	}
}

// Solve runs DPLL to completion (bounded only by the instance itself) or
// until ctx is cancelled, in which case it returns ErrCancelled. It is not
// safe for concurrent use; spec.md §5 assigns the core no concurrency
// contract for the SAT driver.
func (s *Solver) Solve(ctx context.Context) (Model, bool, error) {
	type frame struct {
		v           int
		trailMark   int
		triedTrue   bool
		triedFalse  bool
	}

	if conflict := s.propagate(); conflict {
		return nil, false, nil
	}
	if s.allAssigned() {
		return s.extractModel(), true, nil
	}

	var stack []frame
	v := s.selectVariable()
	stack = append(stack, frame{v: v, trailMark: len(s.trail)})

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return nil, false, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		default:
		}

		f := &stack[len(stack)-1]

		var lit int
		switch {
		case !f.triedTrue:
			f.triedTrue = true
			lit = f.v
		case !f.triedFalse:
			f.triedFalse = true
			lit = -f.v
		default:
			// Both branches exhausted: backtrack.
			s.undoTo(f.trailMark)
			stack = stack[:len(stack)-1]
			continue
		}

		s.undoTo(f.trailMark)
		if !s.assign(lit) {
			continue // immediate conflict, try the other branch next iteration
		}
		if conflict := s.propagate(); conflict {
			continue
		}
		if s.allAssigned() {
			return s.extractModel(), true, nil
		}

		nv := s.selectVariable()
		stack = append(stack, frame{v: nv, trailMark: len(s.trail)})
	}

	return nil, false, nil
}

// assign sets the variable named by lit (positive = true, negative =
// false), pushing it to the trail. Returns false if the variable was
// already assigned to the opposite value.
func (s *Solver) assign(lit int) bool {
	v := uint(abs(lit))
	want := lit > 0
	if s.assigned.Test(v) {
		return s.value.Test(v) == want
	}
	s.assigned.Set(v)
	if want {
		s.value.Set(v)
	} else {
		s.value.Clear(v)
	}
	s.trail = append(s.trail, lit)
	return true
}

// undoTo truncates the trail back to mark, clearing assignment bits for
// every literal undone.
func (s *Solver) undoTo(mark int) {
	for len(s.trail) > mark {
		lit := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		s.assigned.Clear(uint(abs(lit)))
	}
}

// propagate performs unit propagation to a fixpoint. Returns true on
// conflict (some clause became false under the current assignment).
func (s *Solver) propagate() bool {
	for {
		progressed := false
		for _, clause := range s.clauses {
			satisfied := false
			unassignedCount := 0
			var unitLit int
			for _, lit := range clause {
				v := uint(abs(lit))
				if s.assigned.Test(v) {
					if s.value.Test(v) == (lit > 0) {
						satisfied = true
						break
					}
				} else {
					unassignedCount++
					unitLit = lit
				}
			}
			if satisfied {
				continue
			}
			if unassignedCount == 0 {
				return true // conflict: every literal false
			}
			if unassignedCount == 1 {
				if !s.assign(unitLit) {
					return true
				}
				progressed = true
			}
		}
		if !progressed {
			return false
		}
	}
}

// allAssigned reports whether every variable has a value.
func (s *Solver) allAssigned() bool {
	for v := 1; v <= s.numVars; v++ {
		if !s.assigned.Test(uint(v)) {
			return false
		}
	}
	return true
}

func (s *Solver) extractModel() Model {
	m := make(Model, s.numVars)
	for v := 1; v <= s.numVars; v++ {
		m[v] = s.assigned.Test(uint(v)) && s.value.Test(uint(v))
	}
	return m
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
