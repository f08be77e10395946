package seedgen

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egementunca/ID-Circuit/pkg/synth"
)

func TestGenerateProducesIdentityOfRequestedLength(t *testing.T) {
	driver := synth.NewDriver(synth.NewDefaultRegistry())
	g := NewGenerator(driver, WithRand(rand.New(rand.NewSource(7))))

	c, err := g.Generate(context.Background(), 2, 4)
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())

	sim, err := c.Simulate()
	require.NoError(t, err)
	require.True(t, sim.IsIdentity())
}

func TestGenerateIsDeterministicForAFixedSeed(t *testing.T) {
	driver := synth.NewDriver(synth.NewDefaultRegistry())

	g1 := NewGenerator(driver, WithRand(rand.New(rand.NewSource(42))))
	c1, err := g1.Generate(context.Background(), 3, 4)
	require.NoError(t, err)

	g2 := NewGenerator(driver, WithRand(rand.New(rand.NewSource(42))))
	c2, err := g2.Generate(context.Background(), 3, 4)
	require.NoError(t, err)

	require.Equal(t, c1.Fingerprint(), c2.Fingerprint())
}

func TestRandomForwardHasNoConsecutiveEqualGatesOrTargets(t *testing.T) {
	g := NewGenerator(nil, WithRand(rand.New(rand.NewSource(99))))

	for trial := 0; trial < 20; trial++ {
		c := g.randomForward(3, 12)
		for i := 1; i < len(c.Gates); i++ {
			require.False(t, c.Gates[i].Equal(c.Gates[i-1]), "consecutive gates must differ")
			require.NotEqual(t, c.Gates[i-1].Target, c.Gates[i].Target, "consecutive gates must vary target")
		}
	}
}

func TestRandomForwardSingleWireOnlyEmitsNOT(t *testing.T) {
	g := NewGenerator(nil, WithRand(rand.New(rand.NewSource(3))))
	c := g.randomForward(1, 5)
	for _, gate := range c.Gates {
		require.Equal(t, 0, gate.Target)
		require.Len(t, gate.Controls, 0)
	}
}

func TestGenerateWrapsExhaustedWhenBudgetImpossible(t *testing.T) {
	driver := synth.NewDriver(synth.NewDefaultRegistry())
	g := NewGenerator(driver, WithRand(rand.New(rand.NewSource(1))), WithMaxRetries(1))

	// n=1 forces a 0-gate forward half (the identity permutation) against a
	// 1-gate inverse budget; no single NOT/CNOT/CCNOT gate realizes the
	// identity, so every retry hits Unsat and the budget exhausts.
	_, err := g.Generate(context.Background(), 2, 1)
	require.ErrorIs(t, err, ErrExhausted)
}
