package unroll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/egementunca/ID-Circuit/pkg/circuit"
)

func mustGate(t *testing.T, kind circuit.Kind, target int, controls ...int) circuit.Gate {
	t.Helper()
	g, err := circuit.NewGate(kind, target, controls...)
	require.NoError(t, err)
	return g
}

// TestScenarioS1 matches spec.md §8 S1: w=2, [NOT 0, NOT 0] unrolls to
// itself plus its relabeling under sigma = (0 1), fully unrolled.
func TestScenarioS1(t *testing.T) {
	c := circuit.New(2)
	g := mustGate(t, circuit.NOT, 0)
	require.NoError(t, c.Push(g))
	require.NoError(t, c.Push(g))

	sim, err := c.Simulate()
	require.NoError(t, err)
	require.True(t, sim.IsIdentity())

	res, err := Unroll(context.Background(), c, 0)
	require.NoError(t, err)
	require.True(t, res.FullyUnrolled)
	require.Len(t, res.Equivalents, 2)

	for _, eq := range res.Equivalents {
		s, err := eq.Simulate()
		require.NoError(t, err)
		require.True(t, s.IsIdentity())
		not, cnot, ccnot := eq.Composition()
		require.Equal(t, 2, not)
		require.Equal(t, 0, cnot)
		require.Equal(t, 0, ccnot)
	}
}

// TestScenarioS2 matches spec.md §8 S2: w=2, [CNOT c=0 t=1, CNOT c=0 t=1]
// unrolls to 2 circuits (itself and the c=1,t=0 relabeling).
func TestScenarioS2(t *testing.T) {
	c := circuit.New(2)
	g := mustGate(t, circuit.CNOT, 1, 0)
	require.NoError(t, c.Push(g))
	require.NoError(t, c.Push(g))

	res, err := Unroll(context.Background(), c, 0)
	require.NoError(t, err)
	require.True(t, res.FullyUnrolled)
	require.Len(t, res.Equivalents, 2)
}

func TestUnrollStopsAtBound(t *testing.T) {
	c := circuit.New(2)
	g := mustGate(t, circuit.CNOT, 1, 0)
	require.NoError(t, c.Push(g))
	require.NoError(t, c.Push(g))

	res, err := Unroll(context.Background(), c, 1)
	require.NoError(t, err)
	require.False(t, res.FullyUnrolled)
	require.Len(t, res.Equivalents, 1)
}

func TestUnrollEmptyCircuitYieldsOnlyItself(t *testing.T) {
	c := circuit.New(3)
	res, err := Unroll(context.Background(), c, 0)
	require.NoError(t, err)
	require.True(t, res.FullyUnrolled)
	require.Len(t, res.Equivalents, 1)
	require.Equal(t, 0, res.Equivalents[0].Len())
}

func TestUnrollRejectsOutOfRangeGate(t *testing.T) {
	bad := &circuit.Circuit{W: 1, Gates: []circuit.Gate{{Kind: circuit.NOT, Target: 5}}}
	_, err := Unroll(context.Background(), bad, 0)
	require.ErrorIs(t, err, ErrInvalidCircuit)
}

func TestUnrollEveryEquivalentSharesCompositionAndWidth(t *testing.T) {
	c := circuit.New(3)
	require.NoError(t, c.Push(mustGate(t, circuit.CNOT, 1, 0)))
	require.NoError(t, c.Push(mustGate(t, circuit.CCNOT, 2, 0, 1)))
	require.NoError(t, c.Push(mustGate(t, circuit.CCNOT, 2, 0, 1)))
	require.NoError(t, c.Push(mustGate(t, circuit.CNOT, 1, 0)))

	sim, err := c.Simulate()
	require.NoError(t, err)
	require.True(t, sim.IsIdentity())

	wantNot, wantCnot, wantCcnot := c.Composition()

	res, err := Unroll(context.Background(), c, 50)
	require.NoError(t, err)
	require.NotEmpty(t, res.Equivalents)

	for _, eq := range res.Equivalents {
		require.Equal(t, c.W, eq.W)
		s, err := eq.Simulate()
		require.NoError(t, err)
		require.True(t, s.IsIdentity())
		not, cnot, ccnot := eq.Composition()
		require.Equal(t, wantNot, not)
		require.Equal(t, wantCnot, cnot)
		require.Equal(t, wantCcnot, ccnot)
	}
}

func TestUnrollRespectsCancellation(t *testing.T) {
	c := circuit.New(4)
	require.NoError(t, c.Push(mustGate(t, circuit.CNOT, 1, 0)))
	require.NoError(t, c.Push(mustGate(t, circuit.CNOT, 0, 1)))
	require.NoError(t, c.Push(mustGate(t, circuit.CNOT, 1, 0)))
	require.NoError(t, c.Push(mustGate(t, circuit.CNOT, 0, 1)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	res, err := Unroll(ctx, c, 0)
	require.NoError(t, err)
	require.False(t, res.FullyUnrolled)
}

func TestNewPermuterProducesAllPermutationsOfSmallWidth(t *testing.T) {
	p := newPermuter(3)
	count := 0
	seen := make(map[string]bool)
	for {
		sigma, ok := p.next()
		if !ok {
			break
		}
		seen[permKey(sigma)] = true
		count++
	}
	require.Equal(t, 6, count)
	require.Len(t, seen, 6)
}

func permKey(sigma []int) string {
	key := make([]byte, len(sigma))
	for i, v := range sigma {
		key[i] = byte('0' + v)
	}
	return string(key)
}
