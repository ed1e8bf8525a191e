package importers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civimap/civimport/pkg/errors"
	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/storage/memory"
)

func fullBatch() *Batch {
	return &Batch{
		Organizations: []*ocd.Organization{
			{Record: ocd.Record{TransientID: "org-lower"}, Name: "House", Classification: "lower"},
			{Record: ocd.Record{TransientID: "org-upper"}, Name: "Senate", Classification: "upper"},
		},
		People: []*ocd.Person{
			{Record: ocd.Record{TransientID: "person-1"}, Name: "Jane Smith"},
		},
		Memberships: []*ocd.Membership{
			{Record: ocd.Record{TransientID: "mem-1"}, PersonID: "person-1", OrganizationID: "org-lower"},
		},
		Bills: []*ocd.Bill{
			{
				Record:             ocd.Record{TransientID: "bill-1"},
				LegislativeSession: "1900",
				Identifier:         "HB 1",
				Title:              "An Act Concerning Roads",
				FromOrganization:   "org-lower",
				Actions: []ocd.Action{
					{Description: "introduced", Date: "1900-01-01", Chamber: "lower", Order: 0},
					{Description: "passage", Date: "1900-04-01", Chamber: "lower", Order: 1},
				},
			},
		},
		VoteEvents: []*ocd.VoteEvent{
			{
				Record:               ocd.Record{TransientID: "vote-1"},
				LegislativeSession:   "1900",
				Identifier:           "RC 1",
				MotionText:           "Passage of the bill",
				MotionClassification: []string{"passage:bill"},
				StartDate:            "1900-04-01",
				Result:               "pass",
				OrganizationID:       "org-lower",
				BillID:               "bill-1",
				Votes: []ocd.PersonVote{
					{Option: "yes", VoterName: "Jane Smith", VoterID: "person-1"},
				},
			},
		},
	}
}

// TestRunnerFullRun pushes a complete scrape through every stage and checks
// the cross-stage wiring: references resolved, votes linked, every record
// mapped in the run's cache.
func TestRunnerFullRun(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	runner := NewRunner(testJurisdiction, store)
	report, err := runner.Run(ctx, fullBatch())
	require.NoError(t, err)
	require.Len(t, report.Results, 5)
	assert.Equal(t, testJurisdiction, report.Jurisdiction)
	assert.Empty(t, report.Errors())

	for _, result := range report.Results {
		inserts, updates, noops, failed := result.Counts()
		assert.Equal(t, len(result.Records), inserts)
		assert.Equal(t, 0, updates+noops+failed)
	}

	// One mapping per scraped record.
	assert.Equal(t, 6, runner.Refs().Len())

	// The vote event came out fully wired.
	billID, ok := runner.Refs().Resolve("bill-1")
	require.True(t, ok)
	votes, err := store.VoteEventsForBill(ctx, billID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, testJurisdiction, votes[0].Jurisdiction)
	assert.Regexp(t, `^ocd-organization/`, votes[0].OrganizationID)
	assert.Regexp(t, `^ocd-person/`, votes[0].Votes[0].VoterID)

	bill, err := store.Get(ctx, ocd.EntityBill, billID)
	require.NoError(t, err)
	assert.Equal(t, bill.(*ocd.Bill).Actions[1].ID, votes[0].ActionID)
}

// TestRunnerIdempotent verifies running the same scrape twice leaves the
// store unchanged with every record a noop.
func TestRunnerIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	_, err := NewRunner(testJurisdiction, store).Run(ctx, fullBatch())
	require.NoError(t, err)

	report, err := NewRunner(testJurisdiction, store).Run(ctx, fullBatch())
	require.NoError(t, err)

	for _, result := range report.Results {
		_, updates, noops, failed := result.Counts()
		assert.Equal(t, len(result.Records), noops, "stage %s", result.Type)
		assert.Equal(t, 0, updates+failed)
	}

	for _, entityType := range []ocd.EntityType{
		ocd.EntityOrganization, ocd.EntityPerson, ocd.EntityMembership,
		ocd.EntityBill, ocd.EntityVoteEvent,
	} {
		n, err := store.Count(ctx, entityType)
		require.NoError(t, err)
		switch entityType {
		case ocd.EntityOrganization:
			assert.Equal(t, 2, n)
		default:
			assert.Equal(t, 1, n)
		}
	}
}

// TestRunnerStopsOnFatalStage verifies a stage-fatal error halts the run
// with earlier stages committed and later ones never attempted.
func TestRunnerStopsOnFatalStage(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	batch := fullBatch()
	batch.Memberships = nil // everyone in the person batch is now role-less

	report, err := NewRunner(testJurisdiction, store).Run(ctx, batch)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoMemberships))

	// Only the organization stage ran.
	require.Len(t, report.Results, 1)
	assert.Equal(t, ocd.EntityOrganization, report.Results[0].Type)

	n, err := store.Count(ctx, ocd.EntityOrganization)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, entityType := range []ocd.EntityType{ocd.EntityPerson, ocd.EntityBill, ocd.EntityVoteEvent} {
		n, err := store.Count(ctx, entityType)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	}
}

func TestRunReportString(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	report, err := NewRunner(testJurisdiction, store).Run(ctx, fullBatch())
	require.NoError(t, err)

	out := report.String()
	for _, entityType := range []string{"organization", "person", "membership", "bill", "vote_event"} {
		assert.True(t, strings.Contains(out, entityType), "report should mention %s", entityType)
	}
}
