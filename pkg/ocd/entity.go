// Package ocd defines the civic-data entity types the import engine
// reconciles: organizations, people, memberships, bills, and vote events.
// Each type carries an explicit field set rather than a free-form map, so
// natural-key derivation is a pure function over known fields and a missing
// identity field is detectable before anything touches storage.
//
// Scraped and persisted records share the same structs. A freshly scraped
// record has only a TransientID (unique within one import run); once the
// record is persisted it also carries a durable ID of the form
// "ocd-<type>/<uuid>" assigned by storage.
package ocd

import (
	"fmt"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
)

// EntityType identifies one of the reconcilable entity types.
type EntityType string

// String returns the string representation of an EntityType.
func (t EntityType) String() string {
	return string(t)
}

// The entity types the engine knows how to reconcile.
const (
	EntityOrganization EntityType = "organization"
	EntityPerson       EntityType = "person"
	EntityMembership   EntityType = "membership"
	EntityBill         EntityType = "bill"
	EntityVoteEvent    EntityType = "vote_event"
)

// idPrefix maps entity types to the prefix used in durable identifiers.
var idPrefix = map[EntityType]string{
	EntityOrganization: "organization",
	EntityPerson:       "person",
	EntityMembership:   "membership",
	EntityBill:         "bill",
	EntityVoteEvent:    "vote",
}

// NewID mints a durable identifier for an entity of the given type.
func NewID(t EntityType) string {
	prefix, ok := idPrefix[t]
	if !ok {
		prefix = string(t)
	}
	return fmt.Sprintf("ocd-%s/%s", prefix, uuid.NewString())
}

// Record holds the identity and bookkeeping fields shared by every entity.
// It is embedded in each entity struct.
type Record struct {
	// ID is the durable identifier assigned by storage. Empty until the
	// record is persisted.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// TransientID is the scrape-run-local identifier. It is meaningful only
	// within one import run and is never persisted as identity.
	TransientID string `json:"_id,omitempty" yaml:"_id,omitempty"`

	// Jurisdiction scopes the record. Stamped by the importer, not the
	// scraper.
	Jurisdiction string `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"`

	CreatedAt utc.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt utc.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Meta returns the embedded Record, giving generic code uniform access to
// identity fields.
func (r *Record) Meta() *Record {
	return r
}

// Entity is implemented by every reconcilable entity type.
type Entity interface {
	// Type returns the entity type.
	Type() EntityType

	// Meta returns the shared identity fields.
	Meta() *Record

	// NaturalKey derives the dedup key for the record. It is deterministic
	// and side-effect-free, and fails if fields required for identity are
	// absent. Foreign references inside the record must already be resolved
	// to durable identifiers.
	NaturalKey() (NaturalKey, error)
}
