package circuit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	tt := Identity(3)
	require.True(t, tt.IsIdentity())
	require.Equal(t, 8, len(tt.T))
}

func TestApplyGateNOT(t *testing.T) {
	tt := Identity(2)
	g, _ := NewGate(NOT, 0)
	require.NoError(t, tt.ApplyGate(g))
	require.False(t, tt.IsIdentity())

	require.NoError(t, tt.ApplyGate(g))
	require.True(t, tt.IsIdentity(), "applying a NOT twice must restore identity")
}

func TestApplyGateWidthMismatch(t *testing.T) {
	tt := Identity(2)
	g, _ := NewGate(NOT, 5)
	require.ErrorIs(t, tt.ApplyGate(g), ErrInvalidCircuit)
}

func TestApplyGateControlledBehavior(t *testing.T) {
	tt := Identity(2)
	g, _ := NewGate(CNOT, 1, 0)
	require.NoError(t, tt.ApplyGate(g))

	// row 0b01 (control set) should flip target bit 1 -> 0b11
	if tt.T[0b01] != 0b11 {
		t.Fatalf("expected control-satisfied row to flip target, got %b", tt.T[0b01])
	}
	// row 0b00 (control unset) should be unchanged
	if tt.T[0b00] != 0b00 {
		t.Fatalf("expected control-unsatisfied row unchanged, got %b", tt.T[0b00])
	}
}

func TestInverse(t *testing.T) {
	tt := Identity(2)
	g1, _ := NewGate(CNOT, 1, 0)
	g2, _ := NewGate(NOT, 0)
	require.NoError(t, tt.ApplyGate(g1))
	require.NoError(t, tt.ApplyGate(g2))

	inv := tt.Inverse()
	for i, v := range tt.T {
		if inv.T[v] != i {
			t.Fatalf("inverse[%d] = %d, want %d", v, inv.T[v], i)
		}
	}

	composed := Identity(2)
	for i := range composed.T {
		composed.T[i] = inv.Apply(tt.Apply(i))
	}
	require.True(t, composed.IsIdentity())
}

func TestEqualAndClone(t *testing.T) {
	a := Identity(2)
	b := a.Clone()
	require.True(t, a.Equal(b))

	g, _ := NewGate(NOT, 0)
	_ = b.ApplyGate(g)
	require.False(t, a.Equal(b))

	if diff := cmp.Diff([]int{0, 1, 2, 3}, a.T); diff != "" {
		t.Fatalf("identity table changed unexpectedly (-want +got):\n%s", diff)
	}
}
