package importers

import (
	"context"

	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/resolver"
	"github.com/civimap/civimport/pkg/storage"
)

// OrganizationImporter reconciles scraped organizations. Organizations come
// first in the run order because nearly everything else references them.
type OrganizationImporter struct {
	env *env
}

// NewOrganizationImporter creates an organization importer for one run.
func NewOrganizationImporter(jurisdiction string, store storage.Store, refs *resolver.Cache) *OrganizationImporter {
	return &OrganizationImporter{env: newEnv(jurisdiction, store, refs)}
}

// Import reconciles a batch of scraped organizations in input order.
func (i *OrganizationImporter) Import(ctx context.Context, records []*ocd.Organization) (*BatchResult, error) {
	return importBatch(ctx, i.env, ocd.EntityOrganization, records, organizationOps{env: i.env})
}

type organizationOps struct {
	env *env
}

// resolve rewrites the optional parent reference.
func (o organizationOps) resolve(_ context.Context, rec *ocd.Organization) error {
	if rec.ParentID == "" {
		return nil
	}
	id, err := o.env.resolveRef(ocd.EntityOrganization, rec.ParentID)
	if err != nil {
		return err
	}
	rec.ParentID = id
	return nil
}

// changed compares the non-key fields; jurisdiction, classification, and
// name are the key and equal by construction.
func (o organizationOps) changed(existing, incoming *ocd.Organization) bool {
	return existing.ParentID != incoming.ParentID ||
		existing.FoundingDate != incoming.FoundingDate ||
		existing.DissolutionDate != incoming.DissolutionDate
}

func (o organizationOps) merge(_, _ *ocd.Organization) {}
