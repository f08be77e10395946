package circuit

import "fmt"

// TruthTable is a bijection on {0,1}^w stored as a dense array of 2^w
// integers: T[i] is the image of input i. It is the exact-simulation model
// spec.md §3/§4.1 describes; no concurrency contract is offered — a
// TruthTable is owned by the operation that created it.
type TruthTable struct {
	W int
	T []int
}

// Identity builds the identity permutation on {0,1}^w.
func Identity(w int) *TruthTable {
	n := 1 << uint(w)
	t := make([]int, n)
	for i := range t {
		t[i] = i
	}
	return &TruthTable{W: w, T: t}
}

// ApplyGate mutates the table in place so that, for every input i, the new
// image is g applied to the old image: T[i] := g.Apply(T[i]). This is what
// lets Circuit.Simulate build a permutation by folding gates left to right,
// and is what invariant I2 of spec.md §8 ("simulate(C).apply_gate(g) =
// simulate(C ++ [g])") describes. Runs in O(2^w).
func (t *TruthTable) ApplyGate(g Gate) error {
	if err := g.checkWidth(t.W); err != nil {
		return err
	}
	for i, v := range t.T {
		t.T[i] = g.Apply(v)
	}
	return nil
}

// IsIdentity reports whether T[i] == i for every i.
func (t *TruthTable) IsIdentity() bool {
	for i, v := range t.T {
		if v != i {
			return false
		}
	}
	return true
}

// Equal is plain array equality over two tables of the same width.
func (t *TruthTable) Equal(other *TruthTable) bool {
	if other == nil || t.W != other.W || len(t.T) != len(other.T) {
		return false
	}
	for i, v := range t.T {
		if other.T[i] != v {
			return false
		}
	}
	return true
}

// Apply returns the image of a single input row.
func (t *TruthTable) Apply(i int) int {
	return t.T[i]
}

// Inverse returns the inverse permutation: Inverse()[T[i]] == i. Used to
// turn a simulated forward circuit into the target permutation the
// synthesizer must realize (spec.md §2's "SAT-derived inverse").
func (t *TruthTable) Inverse() *TruthTable {
	inv := make([]int, len(t.T))
	for i, v := range t.T {
		inv[v] = i
	}
	return &TruthTable{W: t.W, T: inv}
}

// Clone returns an independent copy.
func (t *TruthTable) Clone() *TruthTable {
	c := make([]int, len(t.T))
	copy(c, t.T)
	return &TruthTable{W: t.W, T: c}
}

func (t *TruthTable) String() string {
	return fmt.Sprintf("TruthTable{w=%d, identity=%v}", t.W, t.IsIdentity())
}
