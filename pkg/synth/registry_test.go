package synth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egementunca/ID-Circuit/pkg/cnf"
)

func TestRegistryRejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewInternalBackend()))
	require.Error(t, r.Register(NewInternalBackend()))
}

func TestRegistryGetUnknownBackend(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nope")
	require.Error(t, err)
}

func TestRegistryRecordsStats(t *testing.T) {
	r := NewDefaultRegistry()
	b, err := r.Get("internal")
	require.NoError(t, err)

	builder := cnf.NewBuilder()
	v := builder.NewVar()
	require.NoError(t, builder.AddClause(v))

	_, sat, err := b.Solve(context.Background(), builder)
	require.NoError(t, err)
	require.True(t, sat)

	r.record("internal", 0, sat, false)
	stats, ok := r.Stats("internal")
	require.True(t, ok)
	require.Equal(t, int64(1), stats.Invocations)
	require.Equal(t, int64(1), stats.SatCount)
}
