package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civimap/civimport/pkg/errors"
	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/storage"
)

func openTestStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "civimport.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "civimport.db")

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.Insert(context.Background(), &ocd.Organization{
		Record:         ocd.Record{Jurisdiction: "jid"},
		Name:           "House",
		Classification: "lower",
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening runs the schema again and must keep existing rows.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(context.Background(), ocd.EntityOrganization, id)
	require.NoError(t, err)
	assert.Equal(t, "House", got.(*ocd.Organization).Name)
}

func TestInsertGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	org := &ocd.Organization{
		Record:         ocd.Record{TransientID: "org-1", Jurisdiction: "jid"},
		Name:           "House",
		Classification: "lower",
	}
	id, err := s.Insert(ctx, org)
	require.NoError(t, err)
	assert.Regexp(t, `^ocd-organization/`, id)
	created := org.CreatedAt

	org.FoundingDate = "1777"
	require.NoError(t, s.Update(ctx, org))

	got, err := s.Get(ctx, ocd.EntityOrganization, id)
	require.NoError(t, err)
	stored := got.(*ocd.Organization)
	assert.Equal(t, "1777", stored.FoundingDate)
	assert.Equal(t, "org-1", stored.TransientID)
	assert.Equal(t, created.UnixNano(), stored.CreatedAt.UnixNano())

	_, err = s.Get(ctx, ocd.EntityOrganization, "ocd-organization/missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestFindByKeyRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	org := &ocd.Organization{
		Record:         ocd.Record{Jurisdiction: "jid"},
		Name:           "House",
		Classification: "lower",
	}
	id, err := s.Insert(ctx, org)
	require.NoError(t, err)

	key, err := org.NaturalKey()
	require.NoError(t, err)
	matches, err := s.FindByKey(ctx, ocd.EntityOrganization, key)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].Meta().ID)
}

func TestBillRoundTripWithActions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	bill := &ocd.Bill{
		Record:             ocd.Record{Jurisdiction: "jid"},
		LegislativeSession: "1900",
		Identifier:         "HB 1",
		Title:              "An Act",
		Classification:     []string{"bill"},
		Actions: []ocd.Action{
			{Description: "introduced", Date: "1900-01-01", Chamber: "lower", Classification: []string{"introduction"}, Order: 0},
			{Description: "passage", Date: "1900-04-01", Chamber: "lower", Classification: []string{"passage"}, Order: 1},
		},
	}
	id, err := s.Insert(ctx, bill)
	require.NoError(t, err)

	got, err := s.BillByIdentifier(ctx, "jid", "1900", "HB 1")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, []string{"bill"}, got.Classification)
	require.Len(t, got.Actions, 2)
	assert.Equal(t, "introduced", got.Actions[0].Description)
	assert.Equal(t, "passage", got.Actions[1].Description)
	assert.NotEmpty(t, got.Actions[0].ID)
	assert.NotEqual(t, got.Actions[0].ID, got.Actions[1].ID)

	// Updating with the same action IDs replaces rows without minting new ones.
	got.Title = "An Act, Amended"
	require.NoError(t, s.Update(ctx, got))
	again, err := s.Get(ctx, ocd.EntityBill, id)
	require.NoError(t, err)
	assert.Equal(t, "An Act, Amended", again.(*ocd.Bill).Title)
	assert.Equal(t, got.Actions[0].ID, again.(*ocd.Bill).Actions[0].ID)

	_, err = s.BillByIdentifier(ctx, "jid", "1900", "HB 2")
	assert.True(t, errors.IsNotFound(err))
}

func TestVoteEventRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	vote := &ocd.VoteEvent{
		Record:               ocd.Record{Jurisdiction: "jid"},
		LegislativeSession:   "1900",
		Identifier:           "Roll Call No. 1",
		MotionText:           "passage",
		MotionClassification: []string{"passage:bill"},
		StartDate:            "1900-04-01",
		Result:               "pass",
		BillID:               "ocd-bill/1",
		Counts: []ocd.VoteCount{
			{Option: "yes", Value: 20},
			{Option: "no", Value: 10},
		},
		Votes: []ocd.PersonVote{
			{Option: "yes", VoterName: "Jane Smith", VoterID: "ocd-person/1"},
			{Option: "no", VoterName: "John Doe"},
		},
	}
	id, err := s.Insert(ctx, vote)
	require.NoError(t, err)

	got, err := s.Get(ctx, ocd.EntityVoteEvent, id)
	require.NoError(t, err)
	stored := got.(*ocd.VoteEvent)
	assert.Equal(t, []string{"passage:bill"}, stored.MotionClassification)
	assert.Equal(t, vote.Counts, stored.Counts)
	assert.Equal(t, vote.Votes, stored.Votes)

	votes, err := s.VoteEventsForBill(ctx, "ocd-bill/1")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, id, votes[0].ID)
}

// TestFindVoteEventsByFallbackKey exercises lookup for vote events that have
// no scraper-supplied identifier.
func TestFindVoteEventsByFallbackKey(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	vote := &ocd.VoteEvent{
		Record:               ocd.Record{Jurisdiction: "jid"},
		LegislativeSession:   "1900",
		MotionClassification: []string{"passage:bill"},
		StartDate:            "1900-04-01",
		BillID:               "ocd-bill/1",
		OrganizationID:       "ocd-organization/1",
	}
	id, err := s.Insert(ctx, vote)
	require.NoError(t, err)

	key, err := vote.NaturalKey()
	require.NoError(t, err)
	matches, err := s.FindByKey(ctx, ocd.EntityVoteEvent, key)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].Meta().ID)

	// A different start date is a different vote event.
	other := vote.Clone()
	other.Record.ID = ""
	other.StartDate = "1900-05-01"
	otherKey, err := other.NaturalKey()
	require.NoError(t, err)
	matches, err = s.FindByKey(ctx, ocd.EntityVoteEvent, otherKey)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestPeopleNarrowing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	former := &ocd.Person{Record: ocd.Record{Jurisdiction: "jid"}, Name: "Jane Smith"}
	formerID, err := s.Insert(ctx, former)
	require.NoError(t, err)
	_, err = s.Insert(ctx, &ocd.Membership{
		Record:         ocd.Record{Jurisdiction: "jid"},
		PersonID:       formerID,
		OrganizationID: "ocd-organization/house",
		EndDate:        "1899-12-31",
	})
	require.NoError(t, err)

	sitting := &ocd.Person{Record: ocd.Record{Jurisdiction: "jid"}, Name: "Jane Smith"}
	sittingID, err := s.Insert(ctx, sitting)
	require.NoError(t, err)
	_, err = s.Insert(ctx, &ocd.Membership{
		Record:         ocd.Record{Jurisdiction: "jid"},
		PersonID:       sittingID,
		OrganizationID: "ocd-organization/house",
	})
	require.NoError(t, err)

	key, err := (&ocd.Person{Record: ocd.Record{Jurisdiction: "jid"}, Name: "Jane Smith"}).NaturalKey()
	require.NoError(t, err)
	matches, err := s.FindByKey(ctx, ocd.EntityPerson, key)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, sittingID, matches[0].Meta().ID)

	memberships, err := s.MembershipsForPerson(ctx, sittingID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.True(t, memberships[0].Current())
}

// TestPeopleRequireCurrentMembership verifies the membership restriction is
// part of person identity: a person with no current membership matches
// nothing, even when the name match is unique.
func TestPeopleRequireCurrentMembership(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Insert(ctx, &ocd.Person{Record: ocd.Record{Jurisdiction: "jid"}, Name: "Jane Smith"})
	require.NoError(t, err)

	key, err := (&ocd.Person{Record: ocd.Record{Jurisdiction: "jid"}, Name: "Jane Smith"}).NaturalKey()
	require.NoError(t, err)
	matches, err := s.FindByKey(ctx, ocd.EntityPerson, key)
	require.NoError(t, err)
	assert.Empty(t, matches)

	people, err := s.PeopleByName(ctx, "jid", "Jane Smith")
	require.NoError(t, err)
	assert.Len(t, people, 1)
}

func TestOrganizationByClassification(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Insert(ctx, &ocd.Organization{
		Record:         ocd.Record{Jurisdiction: "jid"},
		Name:           "House",
		Classification: "lower",
	})
	require.NoError(t, err)

	org, err := s.OrganizationByClassification(ctx, "jid", "lower")
	require.NoError(t, err)
	assert.Equal(t, id, org.ID)

	_, err = s.OrganizationByClassification(ctx, "jid", "upper")
	assert.True(t, errors.IsNotFound(err))

	_, err = s.Insert(ctx, &ocd.Organization{
		Record:         ocd.Record{Jurisdiction: "jid"},
		Name:           "Shadow House",
		Classification: "lower",
	})
	require.NoError(t, err)
	_, err = s.OrganizationByClassification(ctx, "jid", "lower")
	assert.True(t, errors.IsAmbiguousMatch(err))
}

// TestMotionClassificationWithComma verifies a classification value that
// contains a comma survives the round trip and keeps its fallback-key lookup
// distinct from two separate values.
func TestMotionClassificationWithComma(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	vote := &ocd.VoteEvent{
		Record:               ocd.Record{Jurisdiction: "jid"},
		LegislativeSession:   "1900",
		MotionClassification: []string{"passage, final"},
		StartDate:            "1900-04-01",
		BillID:               "ocd-bill/1",
		OrganizationID:       "ocd-organization/1",
	}
	id, err := s.Insert(ctx, vote)
	require.NoError(t, err)

	got, err := s.Get(ctx, ocd.EntityVoteEvent, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"passage, final"}, got.(*ocd.VoteEvent).MotionClassification)

	key, err := vote.NaturalKey()
	require.NoError(t, err)
	matches, err := s.FindByKey(ctx, ocd.EntityVoteEvent, key)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].Meta().ID)

	split := vote.Clone()
	split.Record.ID = ""
	split.MotionClassification = []string{"passage", " final"}
	splitKey, err := split.NaturalKey()
	require.NoError(t, err)
	matches, err = s.FindByKey(ctx, ocd.EntityVoteEvent, splitKey)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
