package ocd

import (
	"github.com/civimap/civimport/pkg/errors"
)

// Membership ties a person to an organization, optionally under a labeled
// post. PersonID and OrganizationID arrive from the scraper as transient
// identifiers and are resolved to durable identifiers before the record is
// keyed or persisted.
type Membership struct {
	Record `yaml:",inline"`

	PersonID       string `json:"person_id" yaml:"person_id"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	Label          string `json:"label,omitempty" yaml:"label,omitempty"`
	Role           string `json:"role,omitempty" yaml:"role,omitempty"`
	StartDate      string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// Type returns the entity type.
func (m *Membership) Type() EntityType {
	return EntityMembership
}

// NaturalKey derives the dedup key: (jurisdiction, organization, person,
// label). Both references must already be durable.
func (m *Membership) NaturalKey() (NaturalKey, error) {
	if m.PersonID == "" {
		return nil, errors.NewMissingIdentityFieldError(string(EntityMembership), "person_id")
	}
	if m.OrganizationID == "" {
		return nil, errors.NewMissingIdentityFieldError(string(EntityMembership), "organization_id")
	}
	return NaturalKey{
		{Name: "jurisdiction", Value: m.Jurisdiction},
		{Name: "organization_id", Value: m.OrganizationID},
		{Name: "person_id", Value: m.PersonID},
		{Name: "label", Value: m.Label},
	}, nil
}

// Current reports whether the membership is active, i.e. has no end date.
func (m *Membership) Current() bool {
	return m.EndDate == ""
}

// Clone returns a deep copy.
func (m *Membership) Clone() *Membership {
	dup := *m
	return &dup
}
