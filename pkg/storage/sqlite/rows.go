package sqlite

import (
	"context"
	"database/sql"

	"github.com/civimap/civimport/pkg/errors"
	"github.com/civimap/civimport/pkg/ocd"
)

func writeOrganization(ctx context.Context, tx *sql.Tx, o *ocd.Organization, replace bool) error {
	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, o.ID); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO organizations
			(id, transient_id, jurisdiction, name, classification, parent_id,
			 founding_date, dissolution_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.TransientID, o.Jurisdiction, o.Name, o.Classification,
		o.ParentID, o.FoundingDate, o.DissolutionDate,
		formatTime(o.CreatedAt), formatTime(o.UpdatedAt))
	return err
}

func (s *store) getOrganization(ctx context.Context, id string) (*ocd.Organization, error) {
	o := &ocd.Organization{}
	var created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, transient_id, jurisdiction, name, classification, parent_id,
		       founding_date, dissolution_date, created_at, updated_at
		FROM organizations WHERE id = ?`, id).Scan(
		&o.ID, &o.TransientID, &o.Jurisdiction, &o.Name, &o.Classification,
		&o.ParentID, &o.FoundingDate, &o.DissolutionDate, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(string(ocd.EntityOrganization), id)
	}
	if err != nil {
		return nil, err
	}
	return o, scanTimes(&o.Record, created, updated)
}

func writePerson(ctx context.Context, tx *sql.Tx, p *ocd.Person, replace bool) error {
	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, p.ID); err != nil {
			return err
		}
	}
	otherNames, err := marshalJSON(p.OtherNames)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO people
			(id, transient_id, jurisdiction, name, other_names, gender,
			 birth_date, image, biography, primary_org, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TransientID, p.Jurisdiction, p.Name, otherNames, p.Gender,
		p.BirthDate, p.Image, p.Biography, p.PrimaryOrg,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return err
}

func (s *store) getPerson(ctx context.Context, id string) (*ocd.Person, error) {
	p := &ocd.Person{}
	var otherNames, created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, transient_id, jurisdiction, name, other_names, gender,
		       birth_date, image, biography, primary_org, created_at, updated_at
		FROM people WHERE id = ?`, id).Scan(
		&p.ID, &p.TransientID, &p.Jurisdiction, &p.Name, &otherNames, &p.Gender,
		&p.BirthDate, &p.Image, &p.Biography, &p.PrimaryOrg, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(string(ocd.EntityPerson), id)
	}
	if err != nil {
		return nil, err
	}
	if p.OtherNames, err = unmarshalJSON[string](otherNames); err != nil {
		return nil, err
	}
	return p, scanTimes(&p.Record, created, updated)
}

func writeMembership(ctx context.Context, tx *sql.Tx, m *ocd.Membership, replace bool) error {
	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM memberships WHERE id = ?`, m.ID); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO memberships
			(id, transient_id, jurisdiction, person_id, organization_id, label,
			 role, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.TransientID, m.Jurisdiction, m.PersonID, m.OrganizationID,
		m.Label, m.Role, m.StartDate, m.EndDate,
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt))
	return err
}

func (s *store) getMembership(ctx context.Context, id string) (*ocd.Membership, error) {
	m := &ocd.Membership{}
	var created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, transient_id, jurisdiction, person_id, organization_id,
		       label, role, start_date, end_date, created_at, updated_at
		FROM memberships WHERE id = ?`, id).Scan(
		&m.ID, &m.TransientID, &m.Jurisdiction, &m.PersonID, &m.OrganizationID,
		&m.Label, &m.Role, &m.StartDate, &m.EndDate, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(string(ocd.EntityMembership), id)
	}
	if err != nil {
		return nil, err
	}
	return m, scanTimes(&m.Record, created, updated)
}

// writeBill replaces the bill row and its action rows together. Actions
// missing an identifier get one minted here, mirroring the in-memory store.
func writeBill(ctx context.Context, tx *sql.Tx, b *ocd.Bill, replace bool) error {
	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, b.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM bill_actions WHERE bill_id = ?`, b.ID); err != nil {
			return err
		}
	}
	classification, err := marshalJSON(b.Classification)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO bills
			(id, transient_id, jurisdiction, legislative_session, identifier,
			 title, classification, from_organization, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.TransientID, b.Jurisdiction, b.LegislativeSession, b.Identifier,
		b.Title, classification, b.FromOrganization,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
	if err != nil {
		return err
	}
	for i := range b.Actions {
		a := &b.Actions[i]
		if a.ID == "" {
			a.ID = ocd.NewID("action")
		}
		cls, err := marshalJSON(a.Classification)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bill_actions
				(id, bill_id, description, date, chamber, classification, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, b.ID, a.Description, a.Date, a.Chamber, cls, a.Order)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *store) getBill(ctx context.Context, id string) (*ocd.Bill, error) {
	b := &ocd.Bill{}
	var classification, created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, transient_id, jurisdiction, legislative_session, identifier,
		       title, classification, from_organization, created_at, updated_at
		FROM bills WHERE id = ?`, id).Scan(
		&b.ID, &b.TransientID, &b.Jurisdiction, &b.LegislativeSession,
		&b.Identifier, &b.Title, &classification, &b.FromOrganization,
		&created, &updated)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(string(ocd.EntityBill), id)
	}
	if err != nil {
		return nil, err
	}
	if b.Classification, err = unmarshalJSON[string](classification); err != nil {
		return nil, err
	}
	if err := scanTimes(&b.Record, created, updated); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, date, chamber, classification, seq
		FROM bill_actions WHERE bill_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			a   ocd.Action
			cls string
		)
		if err := rows.Scan(&a.ID, &a.Description, &a.Date, &a.Chamber, &cls, &a.Order); err != nil {
			return nil, err
		}
		if a.Classification, err = unmarshalJSON[string](cls); err != nil {
			return nil, err
		}
		b.Actions = append(b.Actions, a)
	}
	return b, rows.Err()
}

func writeVoteEvent(ctx context.Context, tx *sql.Tx, v *ocd.VoteEvent, replace bool) error {
	if replace {
		for _, q := range []string{
			`DELETE FROM vote_events WHERE id = ?`,
			`DELETE FROM vote_counts WHERE vote_event_id = ?`,
			`DELETE FROM person_votes WHERE vote_event_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, v.ID); err != nil {
				return err
			}
		}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO vote_events
			(id, transient_id, jurisdiction, legislative_session, identifier,
			 motion_text, motion_classification, start_date, result,
			 organization_id, bill_id, bill_identifier, bill_chamber,
			 bill_action, action_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.TransientID, v.Jurisdiction, v.LegislativeSession, v.Identifier,
		v.MotionText, ocd.ClassificationKey(v.MotionClassification), v.StartDate,
		v.Result, v.OrganizationID, v.BillID, v.BillIdentifier, v.BillChamber,
		v.BillAction, v.ActionID,
		formatTime(v.CreatedAt), formatTime(v.UpdatedAt))
	if err != nil {
		return err
	}
	for i, c := range v.Counts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vote_counts (vote_event_id, option, value, seq)
			VALUES (?, ?, ?, ?)`, v.ID, c.Option, c.Value, i)
		if err != nil {
			return err
		}
	}
	for i, pv := range v.Votes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO person_votes (vote_event_id, option, voter_name, voter_id, seq)
			VALUES (?, ?, ?, ?, ?)`, v.ID, pv.Option, pv.VoterName, pv.VoterID, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *store) getVoteEvent(ctx context.Context, id string) (*ocd.VoteEvent, error) {
	v := &ocd.VoteEvent{}
	var motionClassification, created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, transient_id, jurisdiction, legislative_session, identifier,
		       motion_text, motion_classification, start_date, result,
		       organization_id, bill_id, bill_identifier, bill_chamber,
		       bill_action, action_id, created_at, updated_at
		FROM vote_events WHERE id = ?`, id).Scan(
		&v.ID, &v.TransientID, &v.Jurisdiction, &v.LegislativeSession,
		&v.Identifier, &v.MotionText, &motionClassification, &v.StartDate,
		&v.Result, &v.OrganizationID, &v.BillID, &v.BillIdentifier,
		&v.BillChamber, &v.BillAction, &v.ActionID, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(string(ocd.EntityVoteEvent), id)
	}
	if err != nil {
		return nil, err
	}
	v.MotionClassification, err = unmarshalJSON[string](motionClassification)
	if err != nil {
		return nil, err
	}
	if err := scanTimes(&v.Record, created, updated); err != nil {
		return nil, err
	}

	counts, err := s.db.QueryContext(ctx, `
		SELECT option, value FROM vote_counts
		WHERE vote_event_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer counts.Close()
	for counts.Next() {
		var c ocd.VoteCount
		if err := counts.Scan(&c.Option, &c.Value); err != nil {
			return nil, err
		}
		v.Counts = append(v.Counts, c)
	}
	if err := counts.Err(); err != nil {
		return nil, err
	}

	votes, err := s.db.QueryContext(ctx, `
		SELECT option, voter_name, voter_id FROM person_votes
		WHERE vote_event_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer votes.Close()
	for votes.Next() {
		var pv ocd.PersonVote
		if err := votes.Scan(&pv.Option, &pv.VoterName, &pv.VoterID); err != nil {
			return nil, err
		}
		v.Votes = append(v.Votes, pv)
	}
	return v, votes.Err()
}

func scanTimes(r *ocd.Record, created, updated string) error {
	var err error
	if r.CreatedAt, err = parseTime(created); err != nil {
		return err
	}
	r.UpdatedAt, err = parseTime(updated)
	return err
}
