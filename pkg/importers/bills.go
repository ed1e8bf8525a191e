package importers

import (
	"context"
	"reflect"

	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/resolver"
	"github.com/civimap/civimport/pkg/storage"
)

// BillImporter reconciles scraped bills, including each bill's timeline of
// actions. Actions are owned children: an update replaces them wholesale
// inside the bill's write.
type BillImporter struct {
	env *env
}

// NewBillImporter creates a bill importer for one run.
func NewBillImporter(jurisdiction string, store storage.Store, refs *resolver.Cache) *BillImporter {
	return &BillImporter{env: newEnv(jurisdiction, store, refs)}
}

// Import reconciles a batch of scraped bills in input order.
func (i *BillImporter) Import(ctx context.Context, records []*ocd.Bill) (*BatchResult, error) {
	return importBatch(ctx, i.env, ocd.EntityBill, records, billOps{env: i.env})
}

type billOps struct {
	env *env
}

// resolve rewrites the optional originating-chamber reference.
func (o billOps) resolve(_ context.Context, rec *ocd.Bill) error {
	if rec.FromOrganization == "" {
		return nil
	}
	id, err := o.env.resolveRef(ocd.EntityBill, rec.FromOrganization)
	if err != nil {
		return err
	}
	rec.FromOrganization = id
	return nil
}

// changed compares the non-key fields; jurisdiction, session, and
// identifier are the key. Action IDs are storage-assigned and excluded from
// the comparison.
func (o billOps) changed(existing, incoming *ocd.Bill) bool {
	return existing.Title != incoming.Title ||
		!reflect.DeepEqual(existing.Classification, incoming.Classification) ||
		existing.FromOrganization != incoming.FromOrganization ||
		!equalActions(existing.Actions, incoming.Actions)
}

// merge keeps the existing action identifiers when the timeline content is
// position-for-position unchanged, so links computed against them stay
// valid across cosmetic bill updates.
func (o billOps) merge(existing, incoming *ocd.Bill) {
	if equalActions(existing.Actions, incoming.Actions) {
		for idx := range incoming.Actions {
			incoming.Actions[idx].ID = existing.Actions[idx].ID
		}
	}
}

// equalActions compares two action timelines by content, ignoring
// storage-assigned identifiers.
func equalActions(a, b []ocd.Action) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Description != b[i].Description ||
			a[i].Date != b[i].Date ||
			a[i].Chamber != b[i].Chamber ||
			a[i].Order != b[i].Order ||
			!reflect.DeepEqual(a[i].Classification, b[i].Classification) {
			return false
		}
	}
	return true
}
