// Package sqlite provides a SQLite-backed roster store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/record"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS students (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS grades (
	student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	value      REAL NOT NULL,
	PRIMARY KEY (student_id, seq)
);
`

// Store persists the roster in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ roster.Store = (*Store)(nil)

// Open opens a SQLite roster store and creates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, shared.Persistence("Open", "invalid sqlite store path", fmt.Errorf("storage path is required"))
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, shared.Persistence("Open", "open sqlite db", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, shared.Persistence("Open", "ping sqlite db", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, shared.Persistence("Open", "create schema", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load reads every student with its grades in stored order. An empty
// database is reported as Missing.
func (s *Store) Load(ctx context.Context) (*roster.LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.Persistence("Load", "load cancelled", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, name FROM students ORDER BY position`)
	if err != nil {
		return nil, shared.Persistence("Load", "query students", err)
	}

	var records []record.Record
	index := make(map[string]int)
	for rows.Next() {
		var rec record.Record
		if err := rows.Scan(&rec.StudentID, &rec.Name); err != nil {
			_ = rows.Close()
			return nil, shared.Persistence("Load", "scan student", err)
		}
		index[rec.StudentID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, shared.Persistence("Load", "iterate students", err)
	}
	_ = rows.Close()

	rows, err = s.sqlDB.QueryContext(ctx, `SELECT student_id, value FROM grades ORDER BY student_id, seq`)
	if err != nil {
		return nil, shared.Persistence("Load", "query grades", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    string
			value float64
		)
		if err := rows.Scan(&id, &value); err != nil {
			return nil, shared.Persistence("Load", "scan grade", err)
		}
		if i, ok := index[id]; ok {
			records[i].Grades = append(records[i].Grades, value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Persistence("Load", "iterate grades", err)
	}

	result := record.Collect(records)
	result.Missing = len(records) == 0
	return result, nil
}

// Save replaces every row in one transaction.
func (s *Store) Save(ctx context.Context, students []*student.Student) error {
	if err := ctx.Err(); err != nil {
		return shared.Persistence("Save", "save cancelled", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return shared.Persistence("Save", "begin transaction", err)
	}
	if err := replaceAll(ctx, tx, students); err != nil {
		_ = tx.Rollback()
		return shared.Persistence("Save", "write roster", err)
	}
	if err := tx.Commit(); err != nil {
		return shared.Persistence("Save", "commit roster", err)
	}
	return nil
}

func replaceAll(ctx context.Context, tx *sql.Tx, students []*student.Student) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM grades`); err != nil {
		return fmt.Errorf("clear grades: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("clear students: %w", err)
	}

	insertStudent, err := tx.PrepareContext(ctx, `INSERT INTO students (id, name, position) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare student insert: %w", err)
	}
	defer insertStudent.Close()

	insertGrade, err := tx.PrepareContext(ctx, `INSERT INTO grades (student_id, seq, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare grade insert: %w", err)
	}
	defer insertGrade.Close()

	for pos, st := range students {
		if _, err := insertStudent.ExecContext(ctx, st.ID(), st.Name(), pos); err != nil {
			return fmt.Errorf("insert student %s: %w", st.ID(), err)
		}
		for seq, g := range st.Grades() {
			if _, err := insertGrade.ExecContext(ctx, st.ID(), seq, g); err != nil {
				return fmt.Errorf("insert grade for %s: %w", st.ID(), err)
			}
		}
	}
	return nil
}
