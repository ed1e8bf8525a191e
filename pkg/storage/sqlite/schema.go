package sqlite

// schema is applied on every Open. Statements are idempotent so an existing
// database is left untouched.
const schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id               TEXT PRIMARY KEY,
	transient_id     TEXT NOT NULL DEFAULT '',
	jurisdiction     TEXT NOT NULL,
	name             TEXT NOT NULL,
	classification   TEXT NOT NULL,
	parent_id        TEXT NOT NULL DEFAULT '',
	founding_date    TEXT NOT NULL DEFAULT '',
	dissolution_date TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_organizations_key
	ON organizations (jurisdiction, classification, name);

CREATE TABLE IF NOT EXISTS people (
	id           TEXT PRIMARY KEY,
	transient_id TEXT NOT NULL DEFAULT '',
	jurisdiction TEXT NOT NULL,
	name         TEXT NOT NULL,
	other_names  TEXT NOT NULL DEFAULT '[]',
	gender       TEXT NOT NULL DEFAULT '',
	birth_date   TEXT NOT NULL DEFAULT '',
	image        TEXT NOT NULL DEFAULT '',
	biography    TEXT NOT NULL DEFAULT '',
	primary_org  TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_people_key
	ON people (jurisdiction, name);

CREATE TABLE IF NOT EXISTS memberships (
	id              TEXT PRIMARY KEY,
	transient_id    TEXT NOT NULL DEFAULT '',
	jurisdiction    TEXT NOT NULL,
	person_id       TEXT NOT NULL,
	organization_id TEXT NOT NULL,
	label           TEXT NOT NULL DEFAULT '',
	role            TEXT NOT NULL DEFAULT '',
	start_date      TEXT NOT NULL DEFAULT '',
	end_date        TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memberships_key
	ON memberships (jurisdiction, organization_id, person_id, label);
CREATE INDEX IF NOT EXISTS idx_memberships_person
	ON memberships (person_id);

CREATE TABLE IF NOT EXISTS bills (
	id                  TEXT PRIMARY KEY,
	transient_id        TEXT NOT NULL DEFAULT '',
	jurisdiction        TEXT NOT NULL,
	legislative_session TEXT NOT NULL,
	identifier          TEXT NOT NULL,
	title               TEXT NOT NULL DEFAULT '',
	classification      TEXT NOT NULL DEFAULT '[]',
	from_organization   TEXT NOT NULL DEFAULT '',
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bills_key
	ON bills (jurisdiction, legislative_session, identifier);

CREATE TABLE IF NOT EXISTS bill_actions (
	id             TEXT PRIMARY KEY,
	bill_id        TEXT NOT NULL,
	description    TEXT NOT NULL,
	date           TEXT NOT NULL DEFAULT '',
	chamber        TEXT NOT NULL DEFAULT '',
	classification TEXT NOT NULL DEFAULT '[]',
	seq            INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bill_actions_bill
	ON bill_actions (bill_id, seq);

CREATE TABLE IF NOT EXISTS vote_events (
	id                    TEXT PRIMARY KEY,
	transient_id          TEXT NOT NULL DEFAULT '',
	jurisdiction          TEXT NOT NULL,
	legislative_session   TEXT NOT NULL,
	identifier            TEXT NOT NULL DEFAULT '',
	motion_text           TEXT NOT NULL DEFAULT '',
	motion_classification TEXT NOT NULL DEFAULT '',
	start_date            TEXT NOT NULL DEFAULT '',
	result                TEXT NOT NULL DEFAULT '',
	organization_id       TEXT NOT NULL DEFAULT '',
	bill_id               TEXT NOT NULL DEFAULT '',
	bill_identifier       TEXT NOT NULL DEFAULT '',
	bill_chamber          TEXT NOT NULL DEFAULT '',
	bill_action           TEXT NOT NULL DEFAULT '',
	action_id             TEXT NOT NULL DEFAULT '',
	created_at            TEXT NOT NULL,
	updated_at            TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vote_events_identifier
	ON vote_events (jurisdiction, legislative_session, identifier);
CREATE INDEX IF NOT EXISTS idx_vote_events_bill
	ON vote_events (bill_id);

CREATE TABLE IF NOT EXISTS vote_counts (
	vote_event_id TEXT NOT NULL,
	option        TEXT NOT NULL,
	value         INTEGER NOT NULL,
	seq           INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vote_counts_event
	ON vote_counts (vote_event_id, seq);

CREATE TABLE IF NOT EXISTS person_votes (
	vote_event_id TEXT NOT NULL,
	option        TEXT NOT NULL,
	voter_name    TEXT NOT NULL,
	voter_id      TEXT NOT NULL DEFAULT '',
	seq           INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_person_votes_event
	ON person_votes (vote_event_id, seq);
`
