package importers

import (
	"context"

	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/resolver"
	"github.com/civimap/civimport/pkg/storage"
)

// MembershipImporter reconciles scraped memberships. It runs after both the
// organization and person stages so every reference it carries can resolve
// through the identifier cache.
type MembershipImporter struct {
	env *env
}

// NewMembershipImporter creates a membership importer for one run.
func NewMembershipImporter(jurisdiction string, store storage.Store, refs *resolver.Cache) *MembershipImporter {
	return &MembershipImporter{env: newEnv(jurisdiction, store, refs)}
}

// Import reconciles a batch of scraped memberships in input order.
func (i *MembershipImporter) Import(ctx context.Context, records []*ocd.Membership) (*BatchResult, error) {
	return importBatch(ctx, i.env, ocd.EntityMembership, records, membershipOps{env: i.env})
}

type membershipOps struct {
	env *env
}

// resolve rewrites both references from transient to durable identifiers.
func (o membershipOps) resolve(_ context.Context, rec *ocd.Membership) error {
	personID, err := o.env.resolveRef(ocd.EntityMembership, rec.PersonID)
	if err != nil {
		return err
	}
	orgID, err := o.env.resolveRef(ocd.EntityMembership, rec.OrganizationID)
	if err != nil {
		return err
	}
	rec.PersonID = personID
	rec.OrganizationID = orgID
	return nil
}

// changed compares the non-key fields; person, organization, and label are
// the key.
func (o membershipOps) changed(existing, incoming *ocd.Membership) bool {
	return existing.Role != incoming.Role ||
		existing.StartDate != incoming.StartDate ||
		existing.EndDate != incoming.EndDate
}

func (o membershipOps) merge(_, _ *ocd.Membership) {}
