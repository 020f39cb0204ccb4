package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    school_reg_id TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS draft_slots (
    session_id TEXT NOT NULL,
    slot_number INTEGER NOT NULL,
    team_name TEXT NOT NULL,
    event TEXT NOT NULL,
    team_size INTEGER NOT NULL,
    PRIMARY KEY (session_id, slot_number),
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS draft_members (
    session_id TEXT NOT NULL,
    slot_number INTEGER NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    class_grade TEXT NOT NULL,
    gender TEXT NOT NULL,
    PRIMARY KEY (session_id, slot_number, position),
    FOREIGN KEY (session_id, slot_number) REFERENCES draft_slots(session_id, slot_number) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_draft_slots_session_id ON draft_slots(session_id);
CREATE INDEX IF NOT EXISTS idx_draft_members_session_id ON draft_members(session_id, slot_number);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
