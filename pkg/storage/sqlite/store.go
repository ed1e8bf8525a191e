// Package sqlite provides a Store backed by SQLite. Each Insert and Update
// runs inside its own transaction covering the entity and its children, so
// the unit of atomicity is one record's reconciliation: a failure
// mid-record leaves nothing half-written, while the batch around it is
// deliberately not a transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/agentstation/utc"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/civimap/civimport/pkg/errors"
	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/storage"
)

// store implements storage.Store on a single SQLite database.
type store struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite-backed store at path. Use
// ":memory:" for an ephemeral database.
func Open(path string) (storage.Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}
	return &store{db: db}, nil
}

// Close releases the database handle.
func (s *store) Close() error {
	return s.db.Close()
}

// FindByKey returns every persisted entity matching the natural key.
func (s *store) FindByKey(ctx context.Context, t ocd.EntityType, key ocd.NaturalKey) ([]ocd.Entity, error) {
	switch t {
	case ocd.EntityOrganization:
		return s.findOrganizations(ctx, key)
	case ocd.EntityPerson:
		return s.findPeople(ctx, key)
	case ocd.EntityMembership:
		return s.findMemberships(ctx, key)
	case ocd.EntityBill:
		return s.findBills(ctx, key)
	case ocd.EntityVoteEvent:
		return s.findVoteEvents(ctx, key)
	default:
		return nil, errors.New("unknown entity type " + string(t))
	}
}

func (s *store) findOrganizations(ctx context.Context, key ocd.NaturalKey) ([]ocd.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM organizations
		WHERE jurisdiction = ? AND classification = ? AND name = ?
		ORDER BY id`,
		key.Get("jurisdiction"), key.Get("classification"), key.Get("name"))
	if err != nil {
		return nil, err
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}
	return s.loadAll(ctx, ocd.EntityOrganization, ids)
}

// findPeople matches primary or other names within the jurisdiction,
// restricted to people holding a current membership there. The membership
// restriction is part of person identity: a freshly inserted person matches
// nothing until their membership lands, so two distinct same-named people in
// one batch cannot collapse into each other.
func (s *store) findPeople(ctx context.Context, key ocd.NaturalKey) ([]ocd.Entity, error) {
	people, err := s.PeopleByName(ctx, key.Get("jurisdiction"), key.Get("name"))
	if err != nil {
		return nil, err
	}
	out := make([]ocd.Entity, 0, len(people))
	for _, p := range people {
		var n int
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM memberships
			WHERE person_id = ? AND end_date = ''`, p.ID).Scan(&n)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *store) findMemberships(ctx context.Context, key ocd.NaturalKey) ([]ocd.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM memberships
		WHERE jurisdiction = ? AND organization_id = ? AND person_id = ? AND label = ?
		ORDER BY id`,
		key.Get("jurisdiction"), key.Get("organization_id"), key.Get("person_id"), key.Get("label"))
	if err != nil {
		return nil, err
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}
	return s.loadAll(ctx, ocd.EntityMembership, ids)
}

func (s *store) findBills(ctx context.Context, key ocd.NaturalKey) ([]ocd.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM bills
		WHERE jurisdiction = ? AND legislative_session = ? AND identifier = ?
		ORDER BY id`,
		key.Get("jurisdiction"), key.Get("legislative_session"), key.Get("identifier"))
	if err != nil {
		return nil, err
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}
	return s.loadAll(ctx, ocd.EntityBill, ids)
}

func (s *store) findVoteEvents(ctx context.Context, key ocd.NaturalKey) ([]ocd.Entity, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if identifier := key.Get("identifier"); identifier != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id FROM vote_events
			WHERE jurisdiction = ? AND legislative_session = ? AND identifier = ?
			ORDER BY id`,
			key.Get("jurisdiction"), key.Get("legislative_session"), identifier)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id FROM vote_events
			WHERE jurisdiction = ? AND legislative_session = ? AND identifier = ''
			  AND bill_id = ? AND organization_id = ? AND start_date = ?
			  AND motion_classification = ?
			ORDER BY id`,
			key.Get("jurisdiction"), key.Get("legislative_session"),
			key.Get("bill_id"), key.Get("organization_id"), key.Get("start_date"),
			key.Get("motion_classification"))
	}
	if err != nil {
		return nil, err
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}
	return s.loadAll(ctx, ocd.EntityVoteEvent, ids)
}

// Insert persists a new entity inside one transaction.
func (s *store) Insert(ctx context.Context, e ocd.Entity) (string, error) {
	meta := e.Meta()
	if meta.ID == "" {
		meta.ID = ocd.NewID(e.Type())
	}
	now := utc.Now()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	if err := s.write(ctx, e, false); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// Update overwrites a persisted entity inside one transaction, replacing
// children wholesale.
func (s *store) Update(ctx context.Context, e ocd.Entity) error {
	meta := e.Meta()
	existing, err := s.Get(ctx, e.Type(), meta.ID)
	if err != nil {
		return err
	}
	meta.CreatedAt = existing.Meta().CreatedAt
	meta.UpdatedAt = utc.Now()
	return s.write(ctx, e, true)
}

// write performs the per-record transaction shared by Insert and Update.
func (s *store) write(ctx context.Context, e ocd.Entity, replace bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	switch v := e.(type) {
	case *ocd.Organization:
		err = writeOrganization(ctx, tx, v, replace)
	case *ocd.Person:
		err = writePerson(ctx, tx, v, replace)
	case *ocd.Membership:
		err = writeMembership(ctx, tx, v, replace)
	case *ocd.Bill:
		err = writeBill(ctx, tx, v, replace)
	case *ocd.VoteEvent:
		err = writeVoteEvent(ctx, tx, v, replace)
	default:
		err = errors.New("unknown entity type " + string(e.Type()))
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Get fetches one entity by durable identifier.
func (s *store) Get(ctx context.Context, t ocd.EntityType, id string) (ocd.Entity, error) {
	switch t {
	case ocd.EntityOrganization:
		return s.getOrganization(ctx, id)
	case ocd.EntityPerson:
		return s.getPerson(ctx, id)
	case ocd.EntityMembership:
		return s.getMembership(ctx, id)
	case ocd.EntityBill:
		return s.getBill(ctx, id)
	case ocd.EntityVoteEvent:
		return s.getVoteEvent(ctx, id)
	default:
		return nil, errors.New("unknown entity type " + string(t))
	}
}

// BillByIdentifier resolves a bill by jurisdiction, session, and identifier.
func (s *store) BillByIdentifier(ctx context.Context, jurisdiction, session, identifier string) (*ocd.Bill, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM bills
		WHERE jurisdiction = ? AND legislative_session = ? AND identifier = ?
		ORDER BY id LIMIT 1`,
		jurisdiction, session, identifier).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(string(ocd.EntityBill), identifier)
	}
	if err != nil {
		return nil, err
	}
	return s.getBill(ctx, id)
}

// OrganizationByClassification resolves the jurisdiction's organization with
// the given classification.
func (s *store) OrganizationByClassification(ctx context.Context, jurisdiction, classification string) (*ocd.Organization, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM organizations
		WHERE jurisdiction = ? AND classification = ?
		ORDER BY id`, jurisdiction, classification)
	if err != nil {
		return nil, err
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}
	switch len(ids) {
	case 0:
		return nil, errors.NewNotFoundError(string(ocd.EntityOrganization), classification)
	case 1:
		return s.getOrganization(ctx, ids[0])
	default:
		return nil, errors.NewAmbiguousMatchError(string(ocd.EntityOrganization), "classification="+classification, len(ids))
	}
}

// PeopleByName returns people in the jurisdiction matching the name as
// primary or other name. Other names are a JSON column, so the match runs
// in Go over the jurisdiction's people.
func (s *store) PeopleByName(ctx context.Context, jurisdiction, name string) ([]*ocd.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM people WHERE jurisdiction = ? ORDER BY id`, jurisdiction)
	if err != nil {
		return nil, err
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	var people []*ocd.Person
	for _, id := range ids {
		p, err := s.getPerson(ctx, id)
		if err != nil {
			return nil, err
		}
		if p.HasName(name) {
			people = append(people, p)
		}
	}
	return people, nil
}

// MembershipsForPerson returns all memberships held by a person.
func (s *store) MembershipsForPerson(ctx context.Context, personID string) ([]*ocd.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM memberships WHERE person_id = ? ORDER BY id`, personID)
	if err != nil {
		return nil, err
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	memberships := make([]*ocd.Membership, 0, len(ids))
	for _, id := range ids {
		m, err := s.getMembership(ctx, id)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, nil
}

// VoteEventsForBill returns all vote events on a bill, ordered by ID.
func (s *store) VoteEventsForBill(ctx context.Context, billID string) ([]*ocd.VoteEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM vote_events WHERE bill_id = ? ORDER BY id`, billID)
	if err != nil {
		return nil, err
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	votes := make([]*ocd.VoteEvent, 0, len(ids))
	for _, id := range ids {
		v, err := s.getVoteEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, nil
}

// Count returns the number of persisted entities of a type.
func (s *store) Count(ctx context.Context, t ocd.EntityType) (int, error) {
	table, ok := tables[t]
	if !ok {
		return 0, errors.New("unknown entity type " + string(t))
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

var tables = map[ocd.EntityType]string{
	ocd.EntityOrganization: "organizations",
	ocd.EntityPerson:       "people",
	ocd.EntityMembership:   "memberships",
	ocd.EntityBill:         "bills",
	ocd.EntityVoteEvent:    "vote_events",
}

// loadAll fetches a list of entities preserving the id order.
func (s *store) loadAll(ctx context.Context, t ocd.EntityType, ids []string) ([]ocd.Entity, error) {
	out := make([]ocd.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := s.Get(ctx, t, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func collectIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// marshalJSON serializes a slice column; empty slices are stored as "[]".
func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "[]", nil
	}
	return string(b), nil
}

func unmarshalJSON[T any](s string) ([]T, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func formatTime(t utc.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (utc.Time, error) {
	if s == "" {
		return utc.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return utc.Time{}, err
	}
	return utc.New(t), nil
}
