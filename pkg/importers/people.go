package importers

import (
	"context"
	"reflect"
	"sort"

	"github.com/civimap/civimport/pkg/errors"
	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/resolver"
	"github.com/civimap/civimport/pkg/storage"
)

// PersonImporter reconciles scraped people. A person without any role is an
// unmodeled state in this domain, so the importer checks the accompanying
// membership batch up front and refuses the whole stage if anyone in it
// holds no membership.
type PersonImporter struct {
	env *env
}

// NewPersonImporter creates a person importer for one run.
func NewPersonImporter(jurisdiction string, store storage.Store, refs *resolver.Cache) *PersonImporter {
	return &PersonImporter{env: newEnv(jurisdiction, store, refs)}
}

// Import reconciles a batch of scraped people in input order. memberships is
// the membership batch submitted alongside in the same run; every person
// must appear in it at least once. When any person does not, the stage fails
// wholesale with a NoMembershipsError naming every offender, and nothing
// from the batch is persisted.
func (i *PersonImporter) Import(ctx context.Context, records []*ocd.Person, memberships []*ocd.Membership) (*BatchResult, error) {
	if err := checkMemberships(records, memberships); err != nil {
		return nil, err
	}
	return importBatch(ctx, i.env, ocd.EntityPerson, records, personOps{})
}

// checkMemberships collects every person with zero memberships in the
// submitted batch. All offenders are reported at once, not just the first.
func checkMemberships(records []*ocd.Person, memberships []*ocd.Membership) error {
	membered := make(map[string]bool, len(memberships))
	for _, m := range memberships {
		membered[m.PersonID] = true
	}

	var offenders []string
	for _, p := range records {
		if !membered[p.TransientID] {
			offenders = append(offenders, p.TransientID)
		}
	}
	if len(offenders) > 0 {
		sort.Strings(offenders)
		return errors.NewNoMembershipsError(offenders)
	}
	return nil
}

type personOps struct{}

// resolve is a no-op; people carry no foreign references.
func (personOps) resolve(_ context.Context, _ *ocd.Person) error {
	return nil
}

// changed compares the non-key fields; jurisdiction and name are the key.
func (personOps) changed(existing, incoming *ocd.Person) bool {
	return !reflect.DeepEqual(existing.OtherNames, incoming.OtherNames) ||
		existing.Gender != incoming.Gender ||
		existing.BirthDate != incoming.BirthDate ||
		existing.Image != incoming.Image ||
		existing.Biography != incoming.Biography ||
		existing.PrimaryOrg != incoming.PrimaryOrg
}

func (personOps) merge(_, _ *ocd.Person) {}
