package synth

import (
	"context"

	"github.com/egementunca/ID-Circuit/pkg/cnf"
)

// Backend solves a CNF instance built by BuildEncoding. Implementations
// must treat ctx cancellation cooperatively and return ErrCancelled when it
// fires before a verdict is reached.
type Backend interface {
	Name() string
	Solve(ctx context.Context, b *cnf.Builder) (cnf.Model, bool, error)
}
