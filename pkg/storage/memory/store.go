// Package memory provides an in-memory Store. It is the reference
// implementation of the storage contract and the backing for tests; the
// sqlite package provides the durable equivalent.
package memory

import (
	"context"
	"sort"

	"github.com/agentstation/utc"

	"github.com/civimap/civimport/pkg/errors"
	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/storage"
)

// store keeps every entity in per-type maps keyed by durable identifier.
// Entities are cloned on the way in and out so callers can never alias
// stored state.
type store struct {
	entities map[ocd.EntityType]map[string]ocd.Entity
}

// New creates an empty in-memory store.
func New() storage.Store {
	return &store{
		entities: map[ocd.EntityType]map[string]ocd.Entity{
			ocd.EntityOrganization: {},
			ocd.EntityPerson:       {},
			ocd.EntityMembership:   {},
			ocd.EntityBill:         {},
			ocd.EntityVoteEvent:    {},
		},
	}
}

// FindByKey returns every entity of the type matching the natural key.
func (s *store) FindByKey(ctx context.Context, t ocd.EntityType, key ocd.NaturalKey) ([]ocd.Entity, error) {
	if t == ocd.EntityPerson {
		return s.findPeopleByKey(ctx, key)
	}

	var matches []ocd.Entity
	for _, e := range s.entities[t] {
		ek, err := e.NaturalKey()
		if err != nil {
			continue
		}
		if ek.String() == key.String() {
			matches = append(matches, clone(e))
		}
	}
	sortEntities(matches)
	return matches, nil
}

// findPeopleByKey matches people by primary or other name within the
// jurisdiction, restricted to people holding a current membership there. The
// membership restriction is part of person identity, not a tie-break: a
// person whose memberships have all ended no longer matches, and a freshly
// inserted person matches nothing until their membership lands, which keeps
// two distinct same-named people in one batch from collapsing into each
// other.
func (s *store) findPeopleByKey(ctx context.Context, key ocd.NaturalKey) ([]ocd.Entity, error) {
	jurisdiction := key.Get("jurisdiction")
	name := key.Get("name")

	people, err := s.PeopleByName(ctx, jurisdiction, name)
	if err != nil {
		return nil, err
	}

	matches := make([]ocd.Entity, 0, len(people))
	for _, p := range people {
		current, err := s.hasCurrentMembership(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if current {
			matches = append(matches, p)
		}
	}
	sortEntities(matches)
	return matches, nil
}

func (s *store) hasCurrentMembership(ctx context.Context, personID string) (bool, error) {
	memberships, err := s.MembershipsForPerson(ctx, personID)
	if err != nil {
		return false, err
	}
	for _, m := range memberships {
		if m.Current() {
			return true, nil
		}
	}
	return false, nil
}

// Insert persists a new entity and returns its assigned durable identifier.
func (s *store) Insert(_ context.Context, e ocd.Entity) (string, error) {
	meta := e.Meta()
	if meta.ID == "" {
		meta.ID = ocd.NewID(e.Type())
	}
	now := utc.Now()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	assignChildIDs(e)
	s.entities[e.Type()][meta.ID] = clone(e)
	return meta.ID, nil
}

// Update overwrites the stored entity with the same durable identifier.
func (s *store) Update(_ context.Context, e ocd.Entity) error {
	meta := e.Meta()
	existing, ok := s.entities[e.Type()][meta.ID]
	if !ok {
		return errors.NewNotFoundError(string(e.Type()), meta.ID)
	}
	meta.CreatedAt = existing.Meta().CreatedAt
	meta.UpdatedAt = utc.Now()
	assignChildIDs(e)
	s.entities[e.Type()][meta.ID] = clone(e)
	return nil
}

// Get fetches one entity by durable identifier.
func (s *store) Get(_ context.Context, t ocd.EntityType, id string) (ocd.Entity, error) {
	e, ok := s.entities[t][id]
	if !ok {
		return nil, errors.NewNotFoundError(string(t), id)
	}
	return clone(e), nil
}

// BillByIdentifier resolves a bill by jurisdiction, session, and identifier.
func (s *store) BillByIdentifier(_ context.Context, jurisdiction, session, identifier string) (*ocd.Bill, error) {
	for _, e := range s.entities[ocd.EntityBill] {
		b := e.(*ocd.Bill)
		if b.Jurisdiction == jurisdiction && b.LegislativeSession == session && b.Identifier == identifier {
			return b.Clone(), nil
		}
	}
	return nil, errors.NewNotFoundError(string(ocd.EntityBill), identifier)
}

// OrganizationByClassification resolves the jurisdiction's organization with
// the given classification.
func (s *store) OrganizationByClassification(_ context.Context, jurisdiction, classification string) (*ocd.Organization, error) {
	var orgs []*ocd.Organization
	for _, e := range s.entities[ocd.EntityOrganization] {
		o := e.(*ocd.Organization)
		if o.Jurisdiction == jurisdiction && o.Classification == classification {
			orgs = append(orgs, o.Clone())
		}
	}
	switch len(orgs) {
	case 0:
		return nil, errors.NewNotFoundError(string(ocd.EntityOrganization), classification)
	case 1:
		return orgs[0], nil
	default:
		return nil, errors.NewAmbiguousMatchError(string(ocd.EntityOrganization), "classification="+classification, len(orgs))
	}
}

// PeopleByName returns people in the jurisdiction matching the name.
func (s *store) PeopleByName(_ context.Context, jurisdiction, name string) ([]*ocd.Person, error) {
	var people []*ocd.Person
	for _, e := range s.entities[ocd.EntityPerson] {
		p := e.(*ocd.Person)
		if p.Jurisdiction == jurisdiction && p.HasName(name) {
			people = append(people, p.Clone())
		}
	}
	sort.Slice(people, func(i, j int) bool { return people[i].ID < people[j].ID })
	return people, nil
}

// MembershipsForPerson returns all memberships held by a person.
func (s *store) MembershipsForPerson(_ context.Context, personID string) ([]*ocd.Membership, error) {
	var memberships []*ocd.Membership
	for _, e := range s.entities[ocd.EntityMembership] {
		m := e.(*ocd.Membership)
		if m.PersonID == personID {
			memberships = append(memberships, m.Clone())
		}
	}
	sort.Slice(memberships, func(i, j int) bool { return memberships[i].ID < memberships[j].ID })
	return memberships, nil
}

// VoteEventsForBill returns all vote events on a bill, ordered by ID.
func (s *store) VoteEventsForBill(_ context.Context, billID string) ([]*ocd.VoteEvent, error) {
	var votes []*ocd.VoteEvent
	for _, e := range s.entities[ocd.EntityVoteEvent] {
		v := e.(*ocd.VoteEvent)
		if v.BillID == billID {
			votes = append(votes, v.Clone())
		}
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].ID < votes[j].ID })
	return votes, nil
}

// Count returns the number of entities of a type.
func (s *store) Count(_ context.Context, t ocd.EntityType) (int, error) {
	return len(s.entities[t]), nil
}

// Close is a no-op for memory stores.
func (s *store) Close() error {
	return nil
}

// assignChildIDs mints identifiers for children that storage owns, today
// just bill actions.
func assignChildIDs(e ocd.Entity) {
	if b, ok := e.(*ocd.Bill); ok {
		for i := range b.Actions {
			if b.Actions[i].ID == "" {
				b.Actions[i].ID = ocd.NewID("action")
			}
		}
	}
}

// clone deep-copies an entity so stored state is never aliased.
func clone(e ocd.Entity) ocd.Entity {
	switch v := e.(type) {
	case *ocd.Organization:
		return v.Clone()
	case *ocd.Person:
		return v.Clone()
	case *ocd.Membership:
		return v.Clone()
	case *ocd.Bill:
		return v.Clone()
	case *ocd.VoteEvent:
		return v.Clone()
	default:
		return e
	}
}

// sortEntities orders entities by durable ID for deterministic results.
func sortEntities(entities []ocd.Entity) {
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Meta().ID < entities[j].Meta().ID
	})
}
