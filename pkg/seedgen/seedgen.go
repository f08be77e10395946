// Package seedgen implements the seed generator (spec.md §2/§9): it draws a
// random forward circuit F of length n/2, asks pkg/synth for a circuit B
// realizing the inverse of F's simulated permutation within the remaining
// gate budget, and returns F ++ B — an identity circuit by construction.
package seedgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/egementunca/ID-Circuit/pkg/circuit"
	"github.com/egementunca/ID-Circuit/pkg/synth"
)

// Option configures a Generator.
type Option func(*Generator)

// WithRand overrides the generator's random source. The default is
// rand.New(rand.NewSource(1)), deterministic for reproducible tests;
// callers that want varied output across runs should supply a time-seeded
// source explicitly.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// WithMaxRetries caps how many times Generate redraws a forward circuit
// after an Unsat from the synthesis call. The default is 8.
func WithMaxRetries(n int) Option {
	return func(g *Generator) { g.maxRetries = n }
}

// WithLogger overrides the generator's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// Generator draws random forward circuits and completes them to identities
// via a synth.Driver.
type Generator struct {
	driver     *synth.Driver
	rng        *rand.Rand
	maxRetries int
	logger     zerolog.Logger
}

// NewGenerator returns a Generator that synthesizes inverses through
// driver.
func NewGenerator(driver *synth.Driver, opts ...Option) *Generator {
	g := &Generator{
		driver:     driver,
		rng:        rand.New(rand.NewSource(1)),
		maxRetries: 8,
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate draws a random forward circuit F of length n/2 over w wires,
// synthesizes B realizing simulate(F)^-1 within the remaining n - n/2 gate
// budget, and returns F ++ B. On Unsat it redraws F and retries, up to
// WithMaxRetries times, per spec.md §7's "orchestrator retries seed
// generation with a fresh random forward circuit on Unsat".
func (g *Generator) Generate(ctx context.Context, w, n int) (*circuit.Circuit, error) {
	half := n / 2
	budget := n - half

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		f := g.randomForward(w, half)
		sim, err := f.Simulate()
		if err != nil {
			return nil, err
		}
		target := sim.Inverse()

		b, err := g.driver.Synthesize(ctx, w, target, budget)
		if err != nil {
			if errors.Is(err, synth.ErrUnsat) {
				lastErr = err
				g.logger.Debug().Int("attempt", attempt).Msg("seed candidate unsat, retrying")
				continue
			}
			return nil, err
		}

		full := circuit.New(w)
		for _, gate := range f.Gates {
			if err := full.Push(gate); err != nil {
				return nil, err
			}
		}
		for _, gate := range b.Gates {
			if err := full.Push(gate); err != nil {
				return nil, err
			}
		}
		g.logger.Info().Int("width", w).Int("length", n).Int("attempt", attempt).
			Msg("seed accepted")
		return full, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}

// randomForward draws a length-gate circuit over w wires obeying the
// diversity rule spec.md §9 names: no two consecutive equal gates, and
// adjacent gates vary their target wire. This keeps the seed from handing
// the SAT phase a trivially self-cancelling prefix (e.g. g, g).
func (g *Generator) randomForward(w, length int) *circuit.Circuit {
	c := circuit.New(w)
	var prev circuit.Gate
	hasPrev := false

	for i := 0; i < length; i++ {
		var candidate circuit.Gate
		for attempt := 0; attempt < 32; attempt++ {
			candidate = g.randomGate(w)
			if !hasPrev {
				break
			}
			if candidate.Equal(prev) {
				continue
			}
			if candidate.Target == prev.Target {
				continue
			}
			break
		}
		_ = c.Push(candidate)
		prev, hasPrev = candidate, true
	}
	return c
}

// randomGate draws a uniformly random valid gate over w wires: NOT only
// for w == 1, NOT/CNOT for w == 2, and the full NOT/CNOT/CCNOT library for
// w >= 3.
func (g *Generator) randomGate(w int) circuit.Gate {
	target := g.rng.Intn(w)
	others := make([]int, 0, w-1)
	for i := 0; i < w; i++ {
		if i != target {
			others = append(others, i)
		}
	}

	maxKind := 0 // NOT only
	switch {
	case w >= 3:
		maxKind = 2
	case w == 2:
		maxKind = 1
	}
	kind := circuit.Kind(g.rng.Intn(maxKind + 1))

	switch kind {
	case circuit.NOT:
		g1, _ := circuit.NewGate(circuit.NOT, target)
		return g1
	case circuit.CNOT:
		c := others[g.rng.Intn(len(others))]
		g1, _ := circuit.NewGate(circuit.CNOT, target, c)
		return g1
	default:
		g.rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
		g1, _ := circuit.NewGate(circuit.CCNOT, target, others[0], others[1])
		return g1
	}
}
