package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE ROSTER TABLES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS students (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL CHECK (length(trim(name)) > 0),
    position INTEGER NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_students_position ON students(position);

CREATE TABLE IF NOT EXISTS student_grades (
    student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    value DOUBLE PRECISION NOT NULL CHECK (value >= 0 AND value <= 100),
    PRIMARY KEY (student_id, seq)
);
`

const migration001Down = `
DROP TABLE IF EXISTS student_grades;
DROP TABLE IF EXISTS students;
`

// GetMigrations returns all embedded migrations in version order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_roster",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
	}
}
