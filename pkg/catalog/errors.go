package catalog

import "errors"

// ErrNotIdentity is returned by InsertIdentity when the given circuit does
// not simulate to the identity permutation.
var ErrNotIdentity = errors.New("circuit does not simulate to identity")

// ErrDuplicateFingerprint is returned when an operation rejects a circuit
// already present under the same fingerprint. Per spec.md §7 this is
// non-fatal: callers treat a duplicate insert as idempotent.
var ErrDuplicateFingerprint = errors.New("fingerprint already present in catalog")

// ErrNotFound is returned when a lookup by id finds no row.
var ErrNotFound = errors.New("catalog record not found")

// ErrSchemaVersion is returned when an opened store's stamped schema
// version is incompatible with this package's.
var ErrSchemaVersion = errors.New("catalog schema version mismatch")
