package satsolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func satisfies(clauses [][]int, m Model) bool {
	for _, clause := range clauses {
		ok := false
		for _, lit := range clause {
			v := lit
			neg := false
			if v < 0 {
				v, neg = -v, true
			}
			val := m[v]
			if neg {
				val = !val
			}
			if val {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func TestSolveSatisfiable(t *testing.T) {
	clauses := [][]int{{1, 2}, {-1, 2}, {-1, -2}}
	s := New(2, clauses)
	m, sat, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, sat)
	require.True(t, satisfies(clauses, m))
}

func TestSolveUnsatisfiable(t *testing.T) {
	clauses := [][]int{{1}, {-1}}
	s := New(1, clauses)
	_, sat, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.False(t, sat)
}

func TestSolveEmptyInstanceIsTriviallySat(t *testing.T) {
	s := New(0, nil)
	m, sat, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, sat)
	require.Empty(t, m)
}

func TestSolveRespectsCancellation(t *testing.T) {
	// No clause here is a unit clause, so the initial propagation pass
	// makes no progress and the solver must enter its decision loop,
	// where cancellation is checked before the first branch is tried.
	clauses := [][]int{{1, 2}, {-1, 2}, {-1, -2}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(2, clauses).Solve(ctx)
	require.ErrorIs(t, err, ErrCancelled)
}
