package synth

import (
	"context"
	"errors"
	"fmt"

	"github.com/egementunca/ID-Circuit/internal/satsolver"
	"github.com/egementunca/ID-Circuit/pkg/cnf"
)

// internalBackend wraps internal/satsolver as the dependency-free default
// Backend: no external binary required, always available.
type internalBackend struct{}

// NewInternalBackend returns the built-in DPLL-backed Backend.
func NewInternalBackend() Backend {
	return internalBackend{}
}

func (internalBackend) Name() string { return "internal" }

func (internalBackend) Solve(ctx context.Context, b *cnf.Builder) (cnf.Model, bool, error) {
	s := satsolver.New(b.NumVars(), b.Clauses())
	m, sat, err := s.Solve(ctx)
	if err != nil {
		if errors.Is(err, satsolver.ErrCancelled) {
			return nil, false, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		return nil, false, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}
	if !sat {
		return nil, false, nil
	}
	out := make(cnf.Model, len(m))
	for v, val := range m {
		out[v] = val
	}
	return out, true, nil
}
