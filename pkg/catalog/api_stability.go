package catalog

import (
	"fmt"
	"reflect"
)

// expectedColumns is spec.md §6's logical schema: the column set every
// implementation must retain bit-for-bit. Adapted from the teacher's
// api_stability.go (APIVersion/CheckAPIVersion) into a schema-stability
// guard instead of a version-compatibility guard: where the teacher asks
// "is this API version still compatible", this package asks "do these row
// types still carry exactly the columns the spec names".
var expectedColumns = map[string][]string{
	"circuits": {
		"id", "width", "length", "composition_not", "composition_cnot",
		"composition_ccnot", "gates_blob", "fingerprint", "representative_id",
	},
	"dim_groups": {"id", "width", "length", "circuit_count"},
	"representatives": {
		"id", "dim_group_id", "circuit_id", "composition_not",
		"composition_cnot", "composition_ccnot", "fully_unrolled",
	},
	"equivalents": {"representative_id", "circuit_id"},
}

// CheckSchemaStability verifies that CircuitRow, DimGroupRow,
// RepresentativeRow, and EquivalentRow still carry exactly the columns
// spec.md §6 names, via their `cbor` struct tags. It is meant to be called
// from a test, catching an accidental column rename or drop before it ships.
func CheckSchemaStability() error {
	checks := []struct {
		table string
		row   interface{}
	}{
		{"circuits", CircuitRow{}},
		{"dim_groups", DimGroupRow{}},
		{"representatives", RepresentativeRow{}},
		{"equivalents", EquivalentRow{}},
	}
	for _, c := range checks {
		if err := checkColumns(c.table, c.row); err != nil {
			return err
		}
	}
	return nil
}

func checkColumns(table string, row interface{}) error {
	want := expectedColumns[table]
	t := reflect.TypeOf(row)
	got := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("cbor")
		name := tag
		for i, r := range tag {
			if r == ',' {
				name = tag[:i]
				break
			}
		}
		got[name] = true
	}
	wantSet := make(map[string]bool, len(want))
	for _, col := range want {
		wantSet[col] = true
		if !got[col] {
			return fmt.Errorf("catalog: table %q missing expected column %q", table, col)
		}
	}
	for col := range got {
		if !wantSet[col] {
			return fmt.Errorf("catalog: table %q has unexpected column %q", table, col)
		}
	}
	return nil
}
