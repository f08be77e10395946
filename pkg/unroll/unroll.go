// Package unroll implements the equivalence-class unroller (spec.md §4.6):
// a breadth-first exploration over commutation-swaps, rotations, reversal,
// and qubit relabelings that enumerates circuits equivalent to a given
// representative.
package unroll

import (
	"context"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/egementunca/ID-Circuit/pkg/circuit"
)

// Result is the unroller's report: every discovered circuit (the
// representative included, as the first entry) and whether the frontier
// drained naturally before the bound was hit.
type Result struct {
	Equivalents   []*circuit.Circuit
	FullyUnrolled bool
}

// Option configures Unroll, following the teacher's functional-option
// pattern used elsewhere in this module (pkg/synth.Option): an unexported
// config, funcs over it, zero value is sane defaults.
type Option func(*config)

type config struct {
	logger zerolog.Logger
}

// WithLogger overrides the unroller's logger. The default is the package
// logger (github.com/rs/zerolog/log).
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// Unroll explores the equivalence class of rep, stopping once the queue
// drains (FullyUnrolled = true) or once len(Equivalents) reaches
// maxEquivalents (FullyUnrolled = false). maxEquivalents <= 0 means
// unbounded. ctx is checked cooperatively between dequeues; on
// cancellation, Unroll returns the partial frontier with FullyUnrolled =
// false and no error.
func Unroll(ctx context.Context, rep *circuit.Circuit, maxEquivalents int, opts ...Option) (*Result, error) {
	if err := validate(rep); err != nil {
		return nil, err
	}

	cfg := &config{logger: log.Logger}
	for _, opt := range opts {
		opt(cfg)
	}

	bounded := maxEquivalents > 0

	seen := make(map[string]struct{})
	var output []*circuit.Circuit
	queue := []*circuit.Circuit{rep}

	fp := string(rep.Fingerprint())
	seen[fp] = struct{}{}
	output = append(output, rep)
	if bounded && len(output) >= maxEquivalents {
		return &Result{Equivalents: output, FullyUnrolled: false}, nil
	}

	var classCounts [4]int

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			cfg.logger.Debug().Int("discovered", len(output)).Msg("unroll cancelled, returning partial frontier")
			return &Result{Equivalents: output, FullyUnrolled: false}, nil
		default:
		}

		c := queue[0]
		queue = queue[1:]

		stop := false
		for _, cand := range moves(c, cfg, &classCounts) {
			candFP := string(cand.Fingerprint())
			if _, ok := seen[candFP]; ok {
				continue
			}
			seen[candFP] = struct{}{}
			output = append(output, cand)
			queue = append(queue, cand)
			if bounded && len(output) >= maxEquivalents {
				stop = true
				break
			}
		}
		if stop {
			cfg.logger.Debug().Int("discovered", len(output)).Msg("unroll hit maxEquivalents bound")
			return &Result{Equivalents: output, FullyUnrolled: false}, nil
		}
	}

	cfg.logger.Debug().
		Int("discovered", len(output)).
		Int("swaps", classCounts[0]).
		Int("rotations", classCounts[1]).
		Int("reversals", classCounts[2]).
		Int("relabelings", classCounts[3]).
		Msg("unroll drained, class totals")
	return &Result{Equivalents: output, FullyUnrolled: true}, nil
}

// validate rejects a circuit with any gate referencing a wire outside its
// own width, up front, before BFS begins.
func validate(c *circuit.Circuit) error {
	if c == nil {
		return fmt.Errorf("%w: nil circuit", ErrInvalidCircuit)
	}
	probe := circuit.New(c.W)
	for _, g := range c.Gates {
		if err := probe.Push(g); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCircuit, err)
		}
		if _, err := probe.Pop(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCircuit, err)
		}
	}
	return nil
}

// moves generates every direct neighbor of c under the four move classes,
// in the order spec.md §4.6 fixes: commutation swaps by ascending index,
// then rotations k = 1..n-1, then reversal, then relabelings in
// lexicographic order. This fixed order is what makes the BFS
// deterministic run to run. classCounts accumulates per-class totals
// (swaps, rotations, reversals, relabelings) across the whole BFS for the
// final progress log line.
func moves(c *circuit.Circuit, cfg *config, classCounts *[4]int) []*circuit.Circuit {
	var out []*circuit.Circuit
	var swaps, rotations, relabelings int

	n := c.Len()
	for i := 0; i < n-1; i++ {
		if swapped, err := c.Swap(i); err == nil {
			out = append(out, swapped)
			swaps++
		}
	}

	for k := 1; k < n; k++ {
		if rotated, err := c.Rotate(k); err == nil {
			out = append(out, rotated)
			rotations++
		}
	}

	out = append(out, c.Reverse())

	baseNot, baseCnot, baseCcnot := c.Composition()

	perm := newPermuter(c.W)
	for {
		sigma, ok := perm.next()
		if !ok {
			break
		}
		if sigma == nil {
			continue // w == 0: only the (trivial) identity relabeling exists
		}
		if isIdentityPermutation(sigma) {
			perm.release(sigma)
			continue
		}
		relabeled, err := c.Relabel(sigma)
		perm.release(sigma)
		if err != nil {
			continue
		}
		if diff := compositionDiff(baseNot, baseCnot, baseCcnot, relabeled); diff.Any() {
			cfg.logger.Warn().
				Bool("not_differs", diff.Test(0)).
				Bool("cnot_differs", diff.Test(1)).
				Bool("ccnot_differs", diff.Test(2)).
				Msg("relabel changed gate composition, dropping candidate")
			continue
		}
		out = append(out, relabeled)
		relabelings++
	}

	classCounts[0] += swaps
	classCounts[1] += rotations
	classCounts[2]++
	classCounts[3] += relabelings

	cfg.logger.Debug().
		Int("swaps", swaps).
		Int("rotations", rotations).
		Int("relabelings", relabelings).
		Msg("move classes generated for frontier node")

	return out
}

// compositionDiff flags which gate-kind counts (NOT, CNOT, CCNOT) differ
// between a pre-relabel circuit's composition and relabeled's. A relabeling
// is a pure wire permutation, so it must preserve composition exactly; the
// flags are scratch state for this one validation, not persisted, hence a
// plain bitset over 3 bits rather than a dedicated type.
func compositionDiff(baseNot, baseCnot, baseCcnot int, relabeled *circuit.Circuit) *bitset.BitSet {
	diff := bitset.New(3)
	not, cnot, ccnot := relabeled.Composition()
	if not != baseNot {
		diff.Set(0)
	}
	if cnot != baseCnot {
		diff.Set(1)
	}
	if ccnot != baseCcnot {
		diff.Set(2)
	}
	return diff
}

func isIdentityPermutation(sigma []int) bool {
	for i, v := range sigma {
		if v != i {
			return false
		}
	}
	return true
}
