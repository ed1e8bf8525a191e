package ocd

import (
	"encoding/json"
	"slices"

	"github.com/civimap/civimport/pkg/errors"
)

// VoteEvent records one roll-call or voice vote, usually on a bill. The
// scraper may or may not supply a stable identifier, so identity has two
// shapes; see NaturalKey.
type VoteEvent struct {
	Record `yaml:",inline"`

	LegislativeSession string `json:"legislative_session" yaml:"legislative_session"`

	// Identifier is the scraper-supplied stable identifier, e.g.
	// "Roll Call No. 1". Optional.
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`

	MotionText           string   `json:"motion_text,omitempty" yaml:"motion_text,omitempty"`
	MotionClassification []string `json:"motion_classification,omitempty" yaml:"motion_classification,omitempty"`
	StartDate            string   `json:"start_date" yaml:"start_date"`
	Result               string   `json:"result" yaml:"result"` // "pass", "fail"

	// OrganizationID is the body the vote took place in, a transient
	// reference until resolved.
	OrganizationID string `json:"organization_id,omitempty" yaml:"organization_id,omitempty"`

	// BillID is a transient reference to a bill imported in the same run.
	// Alternatively the vote may name its bill by identifier and chamber,
	// resolved against storage.
	BillID         string `json:"bill_id,omitempty" yaml:"bill_id,omitempty"`
	BillIdentifier string `json:"bill_identifier,omitempty" yaml:"bill_identifier,omitempty"`
	BillChamber    string `json:"bill_chamber,omitempty" yaml:"bill_chamber,omitempty"`

	// BillAction is the scraper's label for the bill action this vote
	// corresponds to. Used by the action matcher, not part of identity.
	BillAction string `json:"bill_action,omitempty" yaml:"bill_action,omitempty"`

	// ActionID links the vote to exactly one action on its bill. Computed
	// by the action matcher; empty means no unambiguous match was found.
	ActionID string `json:"action_id,omitempty" yaml:"action_id,omitempty"`

	Counts []VoteCount  `json:"counts,omitempty" yaml:"counts,omitempty"`
	Votes  []PersonVote `json:"votes,omitempty" yaml:"votes,omitempty"`
}

// VoteCount is a tally for one option.
type VoteCount struct {
	Option string `json:"option" yaml:"option"` // "yes", "no", "other"
	Value  int    `json:"value" yaml:"value"`
}

// PersonVote is one person's recorded vote.
type PersonVote struct {
	Option    string `json:"option" yaml:"option"`
	VoterName string `json:"voter_name" yaml:"voter_name"`

	// VoterID is filled when the voter resolves to a known person; an
	// unmatched name keeps only VoterName.
	VoterID string `json:"voter_id,omitempty" yaml:"voter_id,omitempty"`
}

// Type returns the entity type.
func (v *VoteEvent) Type() EntityType {
	return EntityVoteEvent
}

// NaturalKey derives the dedup key. When the scraper supplied a stable
// identifier the key is (jurisdiction, session, identifier). Otherwise it
// falls back to (jurisdiction, session, bill, organization, start date,
// motion classification), deliberately excluding motion free text, so a
// later spelling fix to the motion does not mint a duplicate vote event.
func (v *VoteEvent) NaturalKey() (NaturalKey, error) {
	if v.LegislativeSession == "" {
		return nil, errors.NewMissingIdentityFieldError(string(EntityVoteEvent), "legislative_session")
	}
	if v.Identifier != "" {
		return NaturalKey{
			{Name: "jurisdiction", Value: v.Jurisdiction},
			{Name: "legislative_session", Value: v.LegislativeSession},
			{Name: "identifier", Value: v.Identifier},
		}, nil
	}
	if v.BillID == "" {
		return nil, errors.NewMissingIdentityFieldError(string(EntityVoteEvent), "identifier or bill")
	}
	return NaturalKey{
		{Name: "jurisdiction", Value: v.Jurisdiction},
		{Name: "legislative_session", Value: v.LegislativeSession},
		{Name: "bill_id", Value: v.BillID},
		{Name: "organization_id", Value: v.OrganizationID},
		{Name: "start_date", Value: v.StartDate},
		{Name: "motion_classification", Value: ClassificationKey(v.MotionClassification)},
	}, nil
}

// ClassificationKey encodes a motion classification list as a single string
// for key comparison and storage. JSON rather than a joined list, so a
// classification value containing the separator cannot collide with two
// separate values.
func ClassificationKey(classifications []string) string {
	if len(classifications) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(classifications)
	return string(b)
}

// Clone returns a deep copy.
func (v *VoteEvent) Clone() *VoteEvent {
	dup := *v
	dup.MotionClassification = slices.Clone(v.MotionClassification)
	dup.Counts = slices.Clone(v.Counts)
	dup.Votes = slices.Clone(v.Votes)
	return &dup
}
