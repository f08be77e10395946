package catalog

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/blang/semver/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/egementunca/ID-Circuit/pkg/circuit"
)

// SchemaVersion is the logical schema version stamped into a freshly opened
// store (spec.md §6's "columns retained bit-for-bit across
// implementations"); a store stamped with an incompatible major version is
// rejected by Open.
var SchemaVersion = semver.MustParse("1.0.0")

const metaTable = "meta"
const schemaVersionKey = "schema_version"

// FoldStats reports what FoldEquivalents actually did.
type FoldStats struct {
	Inserted int
	Demoted  int
}

// Option configures a Catalog at Open time, following the teacher's
// functional-option pattern: funcs over the Catalog being opened, zero
// value is sane defaults.
type Option func(*Catalog)

// WithLogger overrides the catalog's logger. The default is the package
// logger (github.com/rs/zerolog/log).
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// Catalog is the identity-circuit catalog (spec.md §4.7): InsertIdentity,
// ListRepresentatives, and FoldEquivalents over a KVStore.
type Catalog struct {
	store  KVStore
	logger zerolog.Logger

	mu         sync.Mutex
	groupLocks map[string]*sync.Mutex
	sf         singleflight.Group
}

// Open wraps an existing KVStore, stamping it with SchemaVersion on first
// use or verifying compatibility on subsequent opens.
func Open(store KVStore, opts ...Option) (*Catalog, error) {
	c := &Catalog{store: store, groupLocks: make(map[string]*sync.Mutex), logger: log.Logger}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.checkSchemaVersion(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) checkSchemaVersion() error {
	raw, ok, err := c.store.Get(metaTable, schemaVersionKey)
	if err != nil {
		return fmt.Errorf("catalog: read schema version: %w", err)
	}
	if !ok {
		return c.store.Put(metaTable, schemaVersionKey, []byte(SchemaVersion.String()))
	}
	stored, err := semver.Parse(string(raw))
	if err != nil {
		return fmt.Errorf("catalog: parse stored schema version: %w", err)
	}
	if stored.Major != SchemaVersion.Major {
		return fmt.Errorf("%w: store has %s, package expects %s", ErrSchemaVersion, stored, SchemaVersion)
	}
	return nil
}

// InsertIdentity verifies c simulates to the identity permutation, then
// inserts it: allocating a dimension-group entry if needed and marking it
// the representative of its composition if none exists yet. It returns the
// circuit's catalog id and whether this call actually added a new row.
//
// If the fingerprint is already present, InsertIdentity returns the
// existing id, isNew = false, and an error wrapping ErrDuplicateFingerprint
// — callers treat this as idempotent success (spec.md §7) rather than a
// failure.
func (c *Catalog) InsertIdentity(circ *circuit.Circuit) (id string, isNew bool, err error) {
	sim, err := circ.Simulate()
	if err != nil {
		return "", false, err
	}
	if !sim.IsIdentity() {
		return "", false, ErrNotIdentity
	}

	fp := circ.Fingerprint()
	circID, existing, err := c.resolveCircuitID(fp)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		return existing.ID, false, fmt.Errorf("%w: id %s", ErrDuplicateFingerprint, existing.ID)
	}

	not, cnot, ccnot := circ.Composition()
	dgID := dimGroupID(circ.W, circ.Len())
	compKey := compositionKey(not, cnot, ccnot)

	row := CircuitRow{
		ID:               circID,
		Width:            circ.W,
		Length:           circ.Len(),
		CompositionNot:   not,
		CompositionCnot:  cnot,
		CompositionCcnot: ccnot,
		GatesBlob:        fp,
		Fingerprint:      fp,
	}

	if err := c.bumpDimGroup(dgID, circ.W, circ.Len(), 1); err != nil {
		return "", false, err
	}

	rep, err := c.representativeFor(dgID, compKey)
	if err != nil {
		return "", false, err
	}
	if rep == nil {
		repID := representativeID(dgID, compKey, circID)
		repRow := RepresentativeRow{
			ID:               repID,
			DimGroupID:       dgID,
			CircuitID:        circID,
			CompositionNot:   not,
			CompositionCnot:  cnot,
			CompositionCcnot: ccnot,
		}
		if err := c.putRow(TableRepresentatives, repID, repRow); err != nil {
			return "", false, err
		}
		row.RepresentativeID = repID
		c.logger.Info().Str("id", circID).Str("dim_group", dgID).Str("composition", compKey).
			Msg("representative elected")
	} else {
		row.RepresentativeID = rep.ID
		eq := EquivalentRow{RepresentativeID: rep.ID, CircuitID: circID}
		if err := c.putRow(TableEquivalents, equivalentKey(rep.ID, circID), eq); err != nil {
			return "", false, err
		}
	}

	if err := c.putRow(TableCircuits, circID, row); err != nil {
		return "", false, err
	}
	return circID, true, nil
}

// resolveCircuitID maps a canonical fingerprint to its stored circuit id.
// fingerprintID truncates a blake2b hash to derive a compact key, so two
// structurally different fingerprints could in principle collide on that
// key; this walks forward to a disambiguated suffix in that case rather
// than trusting the hash alone, so InsertIdentity's duplicate check always
// compares the authoritative fingerprint bytes (bytes.Equal), per spec.md
// §7's invariant that no two stored circuits share a fingerprint.
//
// It returns the id to use for circ's row, and the existing row if fp is
// already present under that id (nil if this is a fresh insert).
func (c *Catalog) resolveCircuitID(fp []byte) (string, *CircuitRow, error) {
	base := fingerprintID(fp)
	id := base
	for attempt := 1; ; attempt++ {
		raw, ok, err := c.store.Get(TableCircuits, id)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return id, nil, nil
		}
		var row CircuitRow
		if err := decodeRow(raw, &row); err != nil {
			return "", nil, err
		}
		if bytes.Equal(row.Fingerprint, fp) {
			return id, &row, nil
		}
		c.logger.Debug().Str("id", id).Msg("fingerprint id collision, disambiguating")
		id = fmt.Sprintf("%s-c%d", base, attempt)
	}
}

// ListRepresentatives returns every currently-true representative for
// dimension group (w, n).
func (c *Catalog) ListRepresentatives(w, n int) ([]RepresentativeRow, error) {
	dgID := dimGroupID(w, n)
	rows, err := c.store.Scan(TableRepresentatives, dgID+":")
	if err != nil {
		return nil, err
	}
	out := make([]RepresentativeRow, 0, len(rows))
	for _, raw := range rows {
		var row RepresentativeRow
		if err := decodeRow(raw, &row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// FoldEquivalents folds the unroller's report for repID's equivalence
// class: every new equivalent circuit is inserted, any other representative
// whose fingerprint turns up among them is demoted to an equivalent of
// repID, and repID's fully_unrolled flag is set as reported. repID is either
// a representatives-table key or the representative's circuit id (the id
// InsertIdentity returns).
//
// Concurrent folds touching the same (dim_group, composition) are
// serialized by a per-group advisory lock; duplicate fold calls (same repID
// and same equivalent set) that overlap in time are additionally coalesced
// via singleflight so they share one run of the underlying work. A call made
// after an identical one has returned runs again.
func (c *Catalog) FoldEquivalents(repID string, equivalents []*circuit.Circuit, fullyUnrolled bool) (FoldStats, error) {
	repRow, ok, err := c.getRepresentativeRow(repID)
	if err != nil {
		return FoldStats{}, err
	}
	if !ok {
		// repID may be the representative's circuit id, as InsertIdentity returns it.
		if raw, found, gerr := c.store.Get(TableCircuits, repID); gerr == nil && found {
			var circRow CircuitRow
			if decodeRow(raw, &circRow) == nil && circRow.RepresentativeID != "" {
				if repRow, ok, err = c.getRepresentativeRow(circRow.RepresentativeID); err != nil {
					return FoldStats{}, err
				}
				ok = ok && repRow.CircuitID == repID
			}
		}
	}
	if !ok {
		return FoldStats{}, fmt.Errorf("%w: representative %s", ErrNotFound, repID)
	}
	repID = repRow.ID

	groupKey := repRow.DimGroupID + ":" + compositionKey(repRow.CompositionNot, repRow.CompositionCnot, repRow.CompositionCcnot)
	dedupeKey := groupKey + ":" + repID + ":" + equivalentsDigest(equivalents)

	result, err, _ := c.sf.Do(dedupeKey, func() (interface{}, error) {
		lock := c.lockFor(groupKey)
		lock.Lock()
		defer lock.Unlock()
		return c.foldLocked(repID, repRow, equivalents, fullyUnrolled)
	})
	if err != nil {
		return FoldStats{}, err
	}
	return result.(FoldStats), nil
}

func (c *Catalog) foldLocked(repID string, repRow RepresentativeRow, equivalents []*circuit.Circuit, fullyUnrolled bool) (FoldStats, error) {
	var stats FoldStats
	compKey := compositionKey(repRow.CompositionNot, repRow.CompositionCnot, repRow.CompositionCcnot)

	for _, eq := range equivalents {
		fp := eq.Fingerprint()
		circID, existing, err := c.resolveCircuitID(fp)
		if err != nil {
			return FoldStats{}, err
		}

		if existing == nil {
			not, cnot, ccnot := eq.Composition()
			row := CircuitRow{
				ID:               circID,
				Width:            eq.W,
				Length:           eq.Len(),
				CompositionNot:   not,
				CompositionCnot:  cnot,
				CompositionCcnot: ccnot,
				GatesBlob:        fp,
				Fingerprint:      fp,
				RepresentativeID: repID,
			}
			if err := c.putRow(TableCircuits, circID, row); err != nil {
				return FoldStats{}, err
			}
			if err := c.bumpDimGroup(repRow.DimGroupID, eq.W, eq.Len(), 1); err != nil {
				return FoldStats{}, err
			}
			if circID != repRow.CircuitID {
				eqRow := EquivalentRow{RepresentativeID: repID, CircuitID: circID}
				if err := c.putRow(TableEquivalents, equivalentKey(repID, circID), eqRow); err != nil {
					return FoldStats{}, err
				}
			}
			stats.Inserted++
			continue
		}

		if circID == repRow.CircuitID {
			continue
		}

		row := *existing

		if row.RepresentativeID != "" && row.RepresentativeID != repID {
			otherRepID := row.RepresentativeID
			otherRep, ok, err := c.getRepresentativeRow(otherRepID)
			if err == nil && ok && otherRep.DimGroupID == repRow.DimGroupID &&
				compositionKey(otherRep.CompositionNot, otherRep.CompositionCnot, otherRep.CompositionCcnot) == compKey {
				if err := c.store.Delete(TableRepresentatives, otherRepID); err != nil {
					return FoldStats{}, err
				}
				row.RepresentativeID = repID
				if err := c.putRow(TableCircuits, circID, row); err != nil {
					return FoldStats{}, err
				}
				eqRow := EquivalentRow{RepresentativeID: repID, CircuitID: circID}
				if err := c.putRow(TableEquivalents, equivalentKey(repID, circID), eqRow); err != nil {
					return FoldStats{}, err
				}
				stats.Demoted++
				c.logger.Info().Str("demoted_representative", otherRepID).Str("surviving_representative", repID).
					Msg("representative demoted during fold")
				continue
			}
		}

		if row.RepresentativeID != repID {
			eqRow := EquivalentRow{RepresentativeID: repID, CircuitID: circID}
			if err := c.putRow(TableEquivalents, equivalentKey(repID, circID), eqRow); err != nil {
				return FoldStats{}, err
			}
		}
	}

	repRow.FullyUnrolled = fullyUnrolled
	if err := c.putRow(TableRepresentatives, repID, repRow); err != nil {
		return FoldStats{}, err
	}
	c.logger.Info().Str("representative", repID).Int("inserted", stats.Inserted).
		Int("demoted", stats.Demoted).Bool("fully_unrolled", fullyUnrolled).
		Msg("equivalence class folded")
	return stats, nil
}

func (c *Catalog) getRepresentativeRow(id string) (RepresentativeRow, bool, error) {
	raw, ok, err := c.store.Get(TableRepresentatives, id)
	if err != nil || !ok {
		return RepresentativeRow{}, ok, err
	}
	var row RepresentativeRow
	if err := decodeRow(raw, &row); err != nil {
		return RepresentativeRow{}, false, err
	}
	return row, true, nil
}

func (c *Catalog) representativeFor(dgID, compKey string) (*RepresentativeRow, error) {
	rows, err := c.store.Scan(TableRepresentatives, dgID+":"+compKey+":")
	if err != nil {
		return nil, err
	}
	for _, raw := range rows {
		var row RepresentativeRow
		if err := decodeRow(raw, &row); err != nil {
			return nil, err
		}
		return &row, nil
	}
	return nil, nil
}

func (c *Catalog) bumpDimGroup(dgID string, w, n, delta int) error {
	raw, ok, err := c.store.Get(TableDimGroups, dgID)
	if err != nil {
		return err
	}
	var row DimGroupRow
	if ok {
		if err := decodeRow(raw, &row); err != nil {
			return err
		}
	} else {
		row = DimGroupRow{ID: dgID, Width: w, Length: n}
	}
	row.CircuitCount += delta
	return c.putRow(TableDimGroups, dgID, row)
}

func (c *Catalog) putRow(table, key string, v interface{}) error {
	b, err := encodeRow(v)
	if err != nil {
		return err
	}
	return c.store.Put(table, key, b)
}

func (c *Catalog) lockFor(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.groupLocks[key]
	if !ok {
		l = &sync.Mutex{}
		c.groupLocks[key] = l
	}
	return l
}

// equivalentsDigest hashes the fingerprints of a fold's equivalent set, in
// order, into a short key suitable for singleflight coalescing of exact
// duplicate fold calls.
func equivalentsDigest(equivalents []*circuit.Circuit) string {
	h, _ := blake2b.New256(nil)
	for _, eq := range equivalents {
		h.Write(eq.Fingerprint())
		h.Write([]byte{0})
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return fmt.Sprintf("%x", sum[:8])
}
