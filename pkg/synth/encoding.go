// Package synth implements SAT-based exact synthesis (spec.md §4): given a
// width, a target permutation, and a gate budget k, build a CNF instance
// whose models correspond one-to-one with k-gate circuits realizing the
// target, then hand it to a pluggable Backend.
package synth

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/egementunca/ID-Circuit/pkg/circuit"
	"github.com/egementunca/ID-Circuit/pkg/cnf"
)

// maxWidth bounds w so that 1<<w and the per-step state-variable block stay
// comfortably inside an int and a sane memory budget; spec.md §7 leaves the
// exact ceiling to the encoder.
const maxWidth = 24

// maxEncodingVars is a resource guard: beyond this many state+selector
// variables the encoding is considered impractical for the reference
// backends, independent of whether w itself is in range.
const maxEncodingVars = 8_000_000

// candidateGate is one entry of the gate library available to every step.
type candidateGate struct {
	gate circuit.Gate
}

// candidateGates enumerates every NOT/CNOT/CCNOT gate on w wires, in a
// deterministic order: by kind, then by target, then by sorted controls.
// Every wire always has at least a NOT candidate targeting it, which the
// per-bit transition encoding in BuildEncoding relies on.
func candidateGates(w int) []candidateGate {
	var out []candidateGate
	for target := 0; target < w; target++ {
		g, err := circuit.NewGate(circuit.NOT, target)
		if err == nil {
			out = append(out, candidateGate{gate: g})
		}
	}
	for target := 0; target < w; target++ {
		for c := 0; c < w; c++ {
			if c == target {
				continue
			}
			g, err := circuit.NewGate(circuit.CNOT, target, c)
			if err == nil {
				out = append(out, candidateGate{gate: g})
			}
		}
	}
	for target := 0; target < w; target++ {
		for c1 := 0; c1 < w; c1++ {
			if c1 == target {
				continue
			}
			for c2 := c1 + 1; c2 < w; c2++ {
				if c2 == target {
					continue
				}
				g, err := circuit.NewGate(circuit.CCNOT, target, c1, c2)
				if err == nil {
					out = append(out, candidateGate{gate: g})
				}
			}
		}
	}
	slices.SortFunc(out, func(a, b candidateGate) int {
		if a.gate.Kind != b.gate.Kind {
			return int(a.gate.Kind) - int(b.gate.Kind)
		}
		if a.gate.Target != b.gate.Target {
			return a.gate.Target - b.gate.Target
		}
		for i := 0; i < len(a.gate.Controls) && i < len(b.gate.Controls); i++ {
			if a.gate.Controls[i] != b.gate.Controls[i] {
				return a.gate.Controls[i] - b.gate.Controls[i]
			}
		}
		return len(a.gate.Controls) - len(b.gate.Controls)
	})
	return out
}

// Encoding bundles the bookkeeping needed to decode a satisfying model back
// into a Circuit: the candidate library and the selector-variable grid
// (selectors[t][v] is the variable for candidate v firing at step t+1).
type Encoding struct {
	W          int
	K          int
	candidates []candidateGate
	selectors  [][]int // selectors[t-1][v], t in [1,K]
}

// BuildEncoding emits the CNF instance for "does a K-gate circuit over W
// wires realize target". It returns ErrEncodingLimit if W or the resulting
// variable count exceeds what this encoder supports.
func BuildEncoding(w int, target *circuit.TruthTable, k int) (*cnf.Builder, *Encoding, error) {
	if w <= 0 || w > maxWidth {
		return nil, nil, fmt.Errorf("%w: width %d", ErrEncodingLimit, w)
	}
	if target == nil || target.W != w {
		return nil, nil, fmt.Errorf("%w: target truth table width mismatch", ErrEncodingLimit)
	}
	if k < 0 {
		return nil, nil, fmt.Errorf("%w: negative gate budget %d", ErrEncodingLimit, k)
	}

	n := 1 << uint(w)
	candidates := candidateGates(w)

	estimate := (k+1)*n*w + k*len(candidates)
	if estimate > maxEncodingVars {
		return nil, nil, fmt.Errorf("%w: estimated %d variables exceeds limit", ErrEncodingLimit, estimate)
	}

	b := cnf.NewBuilder()

	// state[t][i][bit] for t in [0,K], i in [0,n), bit in [0,w).
	state := make([][][]int, k+1)
	for t := range state {
		state[t] = make([][]int, n)
		for i := range state[t] {
			state[t][i] = b.NewVars(w)
		}
	}

	// Fix the initial state to the identity input and the final state to
	// target's image of that input.
	for i := 0; i < n; i++ {
		for bit := 0; bit < w; bit++ {
			v := state[0][i][bit]
			if i&(1<<uint(bit)) != 0 {
				if err := b.AddClause(v); err != nil {
					return nil, nil, err
				}
			} else {
				if err := b.AddClause(-v); err != nil {
					return nil, nil, err
				}
			}
		}
	}
	for i := 0; i < n; i++ {
		img := target.Apply(i)
		for bit := 0; bit < w; bit++ {
			v := state[k][i][bit]
			if img&(1<<uint(bit)) != 0 {
				if err := b.AddClause(v); err != nil {
					return nil, nil, err
				}
			} else {
				if err := b.AddClause(-v); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	selectors := make([][]int, k)
	for t := 0; t < k; t++ {
		selectors[t] = b.NewVars(len(candidates))
		if err := b.ExactlyOne(selectors[t]); err != nil {
			return nil, nil, err
		}
	}

	// byTarget[bit] lists the indices of candidates targeting that bit; every
	// bit has at least its NOT candidate.
	byTarget := make([][]int, w)
	for v, cg := range candidates {
		byTarget[cg.gate.Target] = append(byTarget[cg.gate.Target], v)
	}

	for t := 1; t <= k; t++ {
		prev, cur := state[t-1], state[t]
		sel := selectors[t-1]

		// fire[i][v]: candidate v's target flips at row i, step t.
		fire := make([][]int, n)
		for i := range fire {
			fire[i] = make([]int, len(candidates))
		}
		for v, cg := range candidates {
			controls := cg.gate.Controls
			for i := 0; i < n; i++ {
				switch len(controls) {
				case 0:
					fire[i][v] = sel[v]
				case 1:
					f := b.NewVar()
					if err := b.And(f, sel[v], prev[i][controls[0]]); err != nil {
						return nil, nil, err
					}
					fire[i][v] = f
				case 2:
					ctrlAnd := b.NewVar()
					if err := b.And(ctrlAnd, prev[i][controls[0]], prev[i][controls[1]]); err != nil {
						return nil, nil, err
					}
					f := b.NewVar()
					if err := b.And(f, sel[v], ctrlAnd); err != nil {
						return nil, nil, err
					}
					fire[i][v] = f
				}
			}
		}

		for i := 0; i < n; i++ {
			for bit := 0; bit < w; bit++ {
				contributors := byTarget[bit]
				agg := fire[i][contributors[0]]
				for _, v := range contributors[1:] {
					next := b.NewVar()
					if err := b.Or(next, agg, fire[i][v]); err != nil {
						return nil, nil, err
					}
					agg = next
				}
				if err := b.Xor(cur[i][bit], prev[i][bit], agg); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	enc := &Encoding{W: w, K: k, candidates: candidates, selectors: selectors}
	return b, enc, nil
}

// Decode reads the chosen gate at each step out of model and assembles the
// resulting circuit. It returns ErrSolverFailure if some step has no (or
// more than one) selector set, which should not happen for a model the
// backend itself reports as satisfying.
func (e *Encoding) Decode(model cnf.Model) (*circuit.Circuit, error) {
	c := circuit.New(e.W)
	for t := 0; t < e.K; t++ {
		chosen := -1
		for v, sv := range e.selectors[t] {
			if cnf.Interpret(model, sv) {
				if chosen != -1 {
					return nil, fmt.Errorf("%w: step %d selects more than one gate", ErrSolverFailure, t)
				}
				chosen = v
			}
		}
		if chosen == -1 {
			return nil, fmt.Errorf("%w: step %d selects no gate", ErrSolverFailure, t)
		}
		if err := c.Push(e.candidates[chosen].gate); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSolverFailure, err)
		}
	}
	return c, nil
}
