// Package resolver holds the run-scoped identifier cache that maps
// scrape-run-local transient identifiers to the durable identifiers storage
// assigns. Importers run in dependency order, each recording its mappings so
// the next stage can resolve foreign references; a miss means the referenced
// record's stage never ran or never included it, which is a hard failure for
// the referencing record.
//
// A Cache belongs to exactly one import run. It is owned by the run
// orchestrator and handed to each importer, never shared across runs.
package resolver

import (
	"fmt"

	"github.com/civimap/civimport/pkg/errors"
)

// Cache maps transient identifiers to durable identifiers for one run.
// The zero value is not usable; create one with New. Not safe for
// concurrent use: a run is single-threaded by contract.
type Cache struct {
	ids map[string]string
}

// New creates an empty identifier cache.
func New() *Cache {
	return &Cache{ids: make(map[string]string)}
}

// Record stores the mapping from transient to durable identifier. Each transient identifier
// is write-once within a run: recording the same mapping again is a no-op,
// while remapping to a different durable identifier is a programming error.
func (c *Cache) Record(transientID, durableID string) error {
	if transientID == "" || durableID == "" {
		return fmt.Errorf("%w: empty identifier (transient=%q durable=%q)",
			errors.ErrInvalidMapping, transientID, durableID)
	}
	if existing, ok := c.ids[transientID]; ok {
		if existing == durableID {
			return nil
		}
		return fmt.Errorf("%w: %s already mapped to %s, refusing remap to %s",
			errors.ErrDuplicateMapping, transientID, existing, durableID)
	}
	c.ids[transientID] = durableID
	return nil
}

// Resolve returns the durable identifier for a transient identifier.
func (c *Cache) Resolve(transientID string) (string, bool) {
	id, ok := c.ids[transientID]
	return id, ok
}

// Len returns the number of recorded mappings.
func (c *Cache) Len() int {
	return len(c.ids)
}
