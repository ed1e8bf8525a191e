// Package storage defines the persistence interface the import engine
// reconciles against. The engine only needs a handful of operations: key
// lookups scoped to a jurisdiction, inserts and updates whose unit of
// atomicity is one record (children included), and a few targeted queries
// the importers and the vote matcher depend on. Anything beyond that
// (schema migration, deletion, cross-run concurrency) is out of the
// engine's hands.
package storage

import (
	"context"

	"github.com/civimap/civimport/pkg/ocd"
)

// Store is the persistence surface the engine reads and writes through.
// Implementations must treat each Insert and Update as atomic, including an
// entity's children (a bill's actions, a vote event's counts and votes): a
// failure mid-write leaves no partially written record visible.
//
// Stores are not required to be safe for concurrent writers; the engine is
// single-writer per jurisdiction per run by contract.
type Store interface {
	// FindByKey returns every persisted entity of the given type whose
	// natural key equals key. The engine expects zero or one result; more
	// than one is a data-integrity anomaly surfaced by the caller.
	//
	// For people, only candidates holding a current membership in the key's
	// jurisdiction match; the membership restriction is part of person
	// identity, not a tie-break.
	FindByKey(ctx context.Context, t ocd.EntityType, key ocd.NaturalKey) ([]ocd.Entity, error)

	// Insert persists a new entity, assigning and returning its durable
	// identifier.
	Insert(ctx context.Context, e ocd.Entity) (string, error)

	// Update overwrites the persisted entity identified by e's durable ID,
	// replacing children wholesale.
	Update(ctx context.Context, e ocd.Entity) error

	// Get fetches one entity by durable identifier. Returns an error
	// satisfying errors.IsNotFound when absent.
	Get(ctx context.Context, t ocd.EntityType, id string) (ocd.Entity, error)

	// BillByIdentifier resolves a bill by its human identifier within a
	// jurisdiction and session, e.g. ("jid", "1900", "HB 1").
	BillByIdentifier(ctx context.Context, jurisdiction, session, identifier string) (*ocd.Bill, error)

	// OrganizationByClassification resolves the jurisdiction's organization
	// with the given classification, e.g. its "lower" chamber. Returns an
	// error satisfying errors.IsNotFound when absent and an AmbiguousMatchError
	// when more than one organization carries the classification.
	OrganizationByClassification(ctx context.Context, jurisdiction, classification string) (*ocd.Organization, error)

	// PeopleByName returns every person in the jurisdiction whose primary
	// or other name matches, without membership narrowing. Used for voter
	// resolution, where ambiguity means "leave unresolved" rather than an
	// error.
	PeopleByName(ctx context.Context, jurisdiction, name string) ([]*ocd.Person, error)

	// MembershipsForPerson returns all memberships held by a person.
	MembershipsForPerson(ctx context.Context, personID string) ([]*ocd.Membership, error)

	// VoteEventsForBill returns all vote events attached to a bill, ordered
	// by durable identifier.
	VoteEventsForBill(ctx context.Context, billID string) ([]*ocd.VoteEvent, error)

	// Count returns the number of persisted entities of a type.
	Count(ctx context.Context, t ocd.EntityType) (int, error)

	// Close releases the store's resources.
	Close() error
}
