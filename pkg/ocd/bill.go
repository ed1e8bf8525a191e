package ocd

import (
	"slices"

	"github.com/civimap/civimport/pkg/errors"
)

// Bill is a piece of legislation within one legislative session. It owns its
// timeline of actions; actions are created with the bill and never by the
// vote matcher.
type Bill struct {
	Record `yaml:",inline"`

	LegislativeSession string   `json:"legislative_session" yaml:"legislative_session"`
	Identifier         string   `json:"identifier" yaml:"identifier"` // e.g. "HB 1"
	Title              string   `json:"title,omitempty" yaml:"title,omitempty"`
	Classification     []string `json:"classification,omitempty" yaml:"classification,omitempty"`

	// FromOrganization is the originating chamber, a transient reference
	// until resolved.
	FromOrganization string `json:"from_organization,omitempty" yaml:"from_organization,omitempty"`

	Actions []Action `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Action is one ordered event on a bill's timeline.
type Action struct {
	// ID is assigned by storage when the owning bill is written. Actions
	// are replaced wholesale on bill updates, so IDs are stable only
	// between writes of the bill.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	Description string `json:"description" yaml:"description"`
	Date        string `json:"date" yaml:"date"`

	// Chamber is the classification of the acting organization ("lower",
	// "upper", "legislature").
	Chamber string `json:"chamber,omitempty" yaml:"chamber,omitempty"`

	Classification []string `json:"classification,omitempty" yaml:"classification,omitempty"`
	Order          int      `json:"order" yaml:"order"`
}

// Type returns the entity type.
func (b *Bill) Type() EntityType {
	return EntityBill
}

// NaturalKey derives the dedup key: (jurisdiction, session, identifier).
func (b *Bill) NaturalKey() (NaturalKey, error) {
	if b.LegislativeSession == "" {
		return nil, errors.NewMissingIdentityFieldError(string(EntityBill), "legislative_session")
	}
	if b.Identifier == "" {
		return nil, errors.NewMissingIdentityFieldError(string(EntityBill), "identifier")
	}
	return NaturalKey{
		{Name: "jurisdiction", Value: b.Jurisdiction},
		{Name: "legislative_session", Value: b.LegislativeSession},
		{Name: "identifier", Value: b.Identifier},
	}, nil
}

// Clone returns a deep copy.
func (b *Bill) Clone() *Bill {
	dup := *b
	dup.Classification = slices.Clone(b.Classification)
	dup.Actions = make([]Action, len(b.Actions))
	for i, a := range b.Actions {
		dup.Actions[i] = a
		dup.Actions[i].Classification = slices.Clone(a.Classification)
	}
	return &dup
}
