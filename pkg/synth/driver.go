package synth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/egementunca/ID-Circuit/pkg/circuit"
)

// Option configures a Driver.
type Option func(*Driver)

// WithBackend selects the registry-resolved backend used for Synthesize
// calls. The default is "internal".
func WithBackend(name string) Option {
	return func(d *Driver) { d.backendName = name }
}

// WithLogger overrides the driver's logger. The default is the package
// logger (github.com/rs/zerolog/log), matching the rest of this module's
// ambient logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// Driver binds a Registry to a chosen backend name and drives the
// encode-solve-decode pipeline for one synthesis request at a time.
type Driver struct {
	registry    *Registry
	backendName string
	logger      zerolog.Logger
}

// NewDriver returns a Driver over registry using the "internal" backend
// unless overridden by WithBackend.
func NewDriver(registry *Registry, opts ...Option) *Driver {
	d := &Driver{registry: registry, backendName: "internal", logger: log.Logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Synthesize builds the k-gate encoding for target over w wires, solves it
// with the driver's backend, and decodes a satisfying model into a Circuit.
// It returns ErrUnsat (wrapped) if no such circuit exists, and propagates
// ErrEncodingLimit, ErrCancelled, or ErrSolverFailure as appropriate.
func (d *Driver) Synthesize(ctx context.Context, w int, target *circuit.TruthTable, k int) (*circuit.Circuit, error) {
	b, enc, err := BuildEncoding(w, target, k)
	if err != nil {
		return nil, err
	}

	backend, err := d.registry.Get(d.backendName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}

	d.logger.Debug().
		Str("backend", backend.Name()).
		Int("width", w).
		Int("gates", k).
		Int("vars", b.NumVars()).
		Int("clauses", b.NumClauses()).
		Msg("dispatching synthesis instance")

	start := time.Now()
	model, sat, err := backend.Solve(ctx, b)
	elapsed := time.Since(start)
	d.registry.record(backend.Name(), elapsed, sat, err != nil)

	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}
	if !sat {
		return nil, fmt.Errorf("%w: width=%d gates=%d", ErrUnsat, w, k)
	}

	return enc.Decode(model)
}

// SynthesizeMinimal calls Synthesize for k = 0, 1, 2, ... up to and
// including maxGates, returning the first circuit found. It returns
// ErrUnsat if no length in range realizes target.
func (d *Driver) SynthesizeMinimal(ctx context.Context, w int, target *circuit.TruthTable, maxGates int) (*circuit.Circuit, error) {
	for k := 0; k <= maxGates; k++ {
		c, err := d.Synthesize(ctx, w, target, k)
		switch {
		case err == nil:
			return c, nil
		case errors.Is(err, ErrUnsat):
			continue
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: no circuit up to %d gates", ErrUnsat, maxGates)
}

// Synthesize is a package-level convenience that builds a one-shot Driver
// over the default (internal-only) registry. Callers that synthesize
// repeatedly should build and reuse a Registry and Driver directly instead.
func Synthesize(ctx context.Context, w int, target *circuit.TruthTable, k int) (*circuit.Circuit, error) {
	return NewDriver(NewDefaultRegistry()).Synthesize(ctx, w, target, k)
}
