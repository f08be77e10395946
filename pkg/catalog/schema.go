package catalog

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CircuitRow is the circuits table's row shape (spec.md §6): fingerprint,
// dimensions, composition, and a pointer to the representatives-table entry
// whose equivalence class it belongs to (a representative's own row points
// at its own entry).
type CircuitRow struct {
	ID               string `cbor:"id"`
	Width            int    `cbor:"width"`
	Length           int    `cbor:"length"`
	CompositionNot   int    `cbor:"composition_not"`
	CompositionCnot  int    `cbor:"composition_cnot"`
	CompositionCcnot int    `cbor:"composition_ccnot"`
	GatesBlob        []byte `cbor:"gates_blob"`
	Fingerprint      []byte `cbor:"fingerprint"`
	RepresentativeID string `cbor:"representative_id,omitempty"`
}

// DimGroupRow is the dim_groups table's row shape: all cataloged circuits
// sharing (width, length).
type DimGroupRow struct {
	ID           string `cbor:"id"`
	Width        int    `cbor:"width"`
	Length       int    `cbor:"length"`
	CircuitCount int    `cbor:"circuit_count"`
}

// RepresentativeRow is the representatives table's row shape: one elected
// circuit per (dim_group, composition).
type RepresentativeRow struct {
	ID               string `cbor:"id"`
	DimGroupID       string `cbor:"dim_group_id"`
	CircuitID        string `cbor:"circuit_id"`
	CompositionNot   int    `cbor:"composition_not"`
	CompositionCnot  int    `cbor:"composition_cnot"`
	CompositionCcnot int    `cbor:"composition_ccnot"`
	FullyUnrolled    bool   `cbor:"fully_unrolled"`
}

// EquivalentRow is the equivalents table's row shape: a circuit reachable
// from a representative via the unroller's moves.
type EquivalentRow struct {
	RepresentativeID string `cbor:"representative_id"`
	CircuitID        string `cbor:"circuit_id"`
}

func encodeRow(v interface{}) ([]byte, error) {
	b, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode row: %w", err)
	}
	return b, nil
}

func decodeRow(b []byte, v interface{}) error {
	if err := cbor.Unmarshal(b, v); err != nil {
		return fmt.Errorf("catalog: decode row: %w", err)
	}
	return nil
}
