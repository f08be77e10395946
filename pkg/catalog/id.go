package catalog

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// fingerprintID derives a short, fixed-length, hex-encoded store key from a
// circuit's canonical fingerprint bytes (pkg/circuit's spec-mandated
// fixed-width encoding). blake2b-256 buckets the in-memory index; the raw
// fingerprint bytes, stored alongside, remain the authoritative equality
// check (see Catalog.InsertIdentity).
func fingerprintID(fingerprint []byte) string {
	sum := blake2b.Sum256(fingerprint)
	return hex.EncodeToString(sum[:16])
}

// dimGroupID names the (width, length) dimension group.
func dimGroupID(w, n int) string {
	return fmt.Sprintf("w%d-n%d", w, n)
}

// compositionKey names a composition tally for use in representative ids
// and lookups.
func compositionKey(not, cnot, ccnot int) string {
	return fmt.Sprintf("%d-%d-%d", not, cnot, ccnot)
}

// representativeID is the representatives-table key for the elected circuit
// of (dimGroup, composition): prefixing it with dimGroup+composition lets
// Catalog.representativeFor use Scan to find the (at most one) existing
// representative for that pair without a secondary index.
func representativeID(dimGroup, composition, circuitID string) string {
	return dimGroup + ":" + composition + ":" + circuitID
}

// equivalentKey is the equivalents-table key for one (representative,
// circuit) pair.
func equivalentKey(repID, circuitID string) string {
	return repID + ":" + circuitID
}
