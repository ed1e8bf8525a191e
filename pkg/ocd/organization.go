package ocd

import (
	"github.com/civimap/civimport/pkg/errors"
)

// Organization is a chamber, committee, party, or other body that people
// hold memberships in and bills move through.
type Organization struct {
	Record `yaml:",inline"`

	Name           string `json:"name" yaml:"name"`
	Classification string `json:"classification" yaml:"classification"` // "lower", "upper", "legislature", "committee", ...
	ParentID       string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	FoundingDate   string `json:"founding_date,omitempty" yaml:"founding_date,omitempty"`
	DissolutionDate string `json:"dissolution_date,omitempty" yaml:"dissolution_date,omitempty"`
}

// Type returns the entity type.
func (o *Organization) Type() EntityType {
	return EntityOrganization
}

// NaturalKey derives the dedup key: (jurisdiction, classification, name).
func (o *Organization) NaturalKey() (NaturalKey, error) {
	if o.Name == "" {
		return nil, errors.NewMissingIdentityFieldError(string(EntityOrganization), "name")
	}
	if o.Classification == "" {
		return nil, errors.NewMissingIdentityFieldError(string(EntityOrganization), "classification")
	}
	return NaturalKey{
		{Name: "jurisdiction", Value: o.Jurisdiction},
		{Name: "classification", Value: o.Classification},
		{Name: "name", Value: o.Name},
	}, nil
}

// Clone returns a deep copy.
func (o *Organization) Clone() *Organization {
	dup := *o
	return &dup
}
