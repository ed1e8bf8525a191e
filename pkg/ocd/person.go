package ocd

import (
	"slices"

	"github.com/civimap/civimport/pkg/errors"
)

// Person is an individual who holds memberships and casts votes.
type Person struct {
	Record `yaml:",inline"`

	Name       string   `json:"name" yaml:"name"`
	OtherNames []string `json:"other_names,omitempty" yaml:"other_names,omitempty"`
	Gender     string   `json:"gender,omitempty" yaml:"gender,omitempty"`
	BirthDate  string   `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	Image      string   `json:"image,omitempty" yaml:"image,omitempty"`
	Biography  string   `json:"biography,omitempty" yaml:"biography,omitempty"`

	// PrimaryOrg is a scrape-time hint naming the classification of the
	// person's main organization. It informs membership scraping upstream
	// and is not part of identity.
	PrimaryOrg string `json:"primary_org,omitempty" yaml:"primary_org,omitempty"`
}

// Type returns the entity type.
func (p *Person) Type() EntityType {
	return EntityPerson
}

// NaturalKey derives the dedup key: (jurisdiction, name). People carry no
// scraper-stable identifier, so name within a jurisdiction is the identity;
// storage lookups additionally restrict candidates to people holding a
// current membership in the jurisdiction, which is part of identity rather
// than a tie-break.
func (p *Person) NaturalKey() (NaturalKey, error) {
	if p.Name == "" {
		return nil, errors.NewMissingIdentityFieldError(string(EntityPerson), "name")
	}
	return NaturalKey{
		{Name: "jurisdiction", Value: p.Jurisdiction},
		{Name: "name", Value: p.Name},
	}, nil
}

// HasName reports whether the given name matches the person's primary name
// or any recorded other name.
func (p *Person) HasName(name string) bool {
	return p.Name == name || slices.Contains(p.OtherNames, name)
}

// Clone returns a deep copy.
func (p *Person) Clone() *Person {
	dup := *p
	dup.OtherNames = slices.Clone(p.OtherNames)
	return &dup
}
