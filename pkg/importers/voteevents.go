package importers

import (
	"context"
	"reflect"
	"strings"

	"github.com/civimap/civimport/pkg/errors"
	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/resolver"
	"github.com/civimap/civimport/pkg/storage"
)

// VoteEventImporter reconciles scraped vote events and, once the batch is
// persisted, runs the action matcher over every bill the batch touched.
type VoteEventImporter struct {
	env *env
}

// NewVoteEventImporter creates a vote event importer for one run.
func NewVoteEventImporter(jurisdiction string, store storage.Store, refs *resolver.Cache) *VoteEventImporter {
	return &VoteEventImporter{env: newEnv(jurisdiction, store, refs)}
}

// Import reconciles a batch of scraped vote events in input order, then
// recomputes vote-to-action links for each touched bill.
func (i *VoteEventImporter) Import(ctx context.Context, records []*ocd.VoteEvent) (*BatchResult, error) {
	result, err := importBatch(ctx, i.env, ocd.EntityVoteEvent, records, voteEventOps{env: i.env})
	if err != nil {
		return result, err
	}
	if err := matchBillActions(ctx, i.env, records, result); err != nil {
		return result, err
	}
	return result, nil
}

type voteEventOps struct {
	env *env
}

// resolve rewrites the organization and bill references and attempts to
// resolve each individual voter to a known person. Both the organization and
// the bill may arrive as transient references to records imported this run,
// or resolve against storage for runs that scraped only votes. Voters that
// resolve to no one, or ambiguously, keep their name with no identifier;
// that is expected scrape output, not an error.
func (o voteEventOps) resolve(ctx context.Context, rec *ocd.VoteEvent) error {
	if rec.OrganizationID != "" {
		id, err := o.resolveOrganization(ctx, rec.OrganizationID)
		if err != nil {
			return err
		}
		rec.OrganizationID = id
	}

	switch {
	case rec.BillID != "":
		id, err := o.env.resolveRef(ocd.EntityVoteEvent, rec.BillID)
		if err != nil {
			return err
		}
		rec.BillID = id
	case rec.BillIdentifier != "":
		bill, err := o.env.store.BillByIdentifier(ctx, o.env.jurisdiction, rec.LegislativeSession, rec.BillIdentifier)
		if err != nil {
			if errors.IsNotFound(err) {
				return errors.NewUnresolvedReferenceError(string(ocd.EntityVoteEvent), rec.BillIdentifier)
			}
			return err
		}
		rec.BillID = bill.ID
	}

	for idx := range rec.Votes {
		o.resolveVoter(ctx, &rec.Votes[idx])
	}
	return nil
}

// resolveOrganization maps the vote's chamber reference. The scraper may
// cross-reference an organization imported this run, supply a durable
// identifier directly, or name the chamber by classification ("lower",
// "upper"), which resolves against storage so a run that scraped only votes
// still lands them in the right body.
func (o voteEventOps) resolveOrganization(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, "ocd-organization/") {
		return ref, nil
	}
	if id, ok := o.env.refs.Resolve(ref); ok {
		return id, nil
	}
	org, err := o.env.store.OrganizationByClassification(ctx, o.env.jurisdiction, ref)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.NewUnresolvedReferenceError(string(ocd.EntityVoteEvent), ref)
		}
		return "", err
	}
	return org.ID, nil
}

func (o voteEventOps) resolveVoter(ctx context.Context, vote *ocd.PersonVote) {
	if vote.VoterID != "" {
		if id, ok := o.env.refs.Resolve(vote.VoterID); ok {
			vote.VoterID = id
			return
		}
		vote.VoterID = ""
	}
	people, err := o.env.store.PeopleByName(ctx, o.env.jurisdiction, vote.VoterName)
	if err != nil || len(people) != 1 {
		return
	}
	vote.VoterID = people[0].ID
}

// changed compares every field the scraper controls. ActionID is excluded:
// the matcher owns it and recomputes it after every batch that touches the
// bill.
func (o voteEventOps) changed(existing, incoming *ocd.VoteEvent) bool {
	return existing.Identifier != incoming.Identifier ||
		existing.MotionText != incoming.MotionText ||
		!reflect.DeepEqual(existing.MotionClassification, incoming.MotionClassification) ||
		existing.StartDate != incoming.StartDate ||
		existing.Result != incoming.Result ||
		existing.OrganizationID != incoming.OrganizationID ||
		existing.BillID != incoming.BillID ||
		existing.BillAction != incoming.BillAction ||
		!reflect.DeepEqual(existing.Counts, incoming.Counts) ||
		!reflect.DeepEqual(existing.Votes, incoming.Votes)
}

// merge carries the computed action link across the update so a field edit
// alone does not drop it; the matcher will still recompute it afterwards.
func (o voteEventOps) merge(existing, incoming *ocd.VoteEvent) {
	incoming.ActionID = existing.ActionID
}
