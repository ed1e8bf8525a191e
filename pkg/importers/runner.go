package importers

import (
	"context"

	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/resolver"
	"github.com/civimap/civimport/pkg/storage"
)

// Batch is one scrape run's output for a jurisdiction: every record of
// every entity type, each carrying a transient identifier unique within the
// run and foreign references expressed as transient identifiers.
type Batch struct {
	Organizations []*ocd.Organization `json:"organizations,omitempty" yaml:"organizations,omitempty"`
	People        []*ocd.Person       `json:"people,omitempty" yaml:"people,omitempty"`
	Memberships   []*ocd.Membership   `json:"memberships,omitempty" yaml:"memberships,omitempty"`
	Bills         []*ocd.Bill         `json:"bills,omitempty" yaml:"bills,omitempty"`
	VoteEvents    []*ocd.VoteEvent    `json:"vote_events,omitempty" yaml:"vote_events,omitempty"`
}

// Runner sequences the per-type importers in dependency order for one
// jurisdiction and owns the run's identifier cache. Organizations and
// people go before memberships; organizations, people, and bills before
// vote events, so by the time a stage runs every reference it can carry has
// a mapping.
type Runner struct {
	jurisdiction string
	store        storage.Store
	refs         *resolver.Cache
}

// NewRunner creates a Runner for one import run. The identifier cache it
// creates lives exactly as long as the run; repeated runs need fresh
// Runners.
func NewRunner(jurisdiction string, store storage.Store) *Runner {
	return &Runner{
		jurisdiction: jurisdiction,
		store:        store,
		refs:         resolver.New(),
	}
}

// Refs exposes the run's identifier cache, chiefly for tests and callers
// that seed mappings for records persisted outside the engine.
func (r *Runner) Refs() *resolver.Cache {
	return r.refs
}

// Run reconciles the whole batch, stage by stage. A fatal stage error stops
// the run there: later stages are not attempted, and earlier stages stay
// committed (there is no cross-stage rollback). The report always covers
// every stage that ran.
func (r *Runner) Run(ctx context.Context, batch *Batch) (*RunReport, error) {
	report := &RunReport{Jurisdiction: r.jurisdiction}

	result, err := NewOrganizationImporter(r.jurisdiction, r.store, r.refs).Import(ctx, batch.Organizations)
	if report.add(result); err != nil {
		return report, err
	}

	result, err = NewPersonImporter(r.jurisdiction, r.store, r.refs).Import(ctx, batch.People, batch.Memberships)
	if report.add(result); err != nil {
		return report, err
	}

	result, err = NewMembershipImporter(r.jurisdiction, r.store, r.refs).Import(ctx, batch.Memberships)
	if report.add(result); err != nil {
		return report, err
	}

	result, err = NewBillImporter(r.jurisdiction, r.store, r.refs).Import(ctx, batch.Bills)
	if report.add(result); err != nil {
		return report, err
	}

	result, err = NewVoteEventImporter(r.jurisdiction, r.store, r.refs).Import(ctx, batch.VoteEvents)
	if report.add(result); err != nil {
		return report, err
	}

	return report, nil
}
