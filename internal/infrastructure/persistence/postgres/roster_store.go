package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RosterStore implements roster.Store for PostgreSQL.
type RosterStore struct {
	conn *Connection
}

var _ roster.Store = (*RosterStore)(nil)

// NewRosterStore creates a store over an open connection. The schema must
// already be migrated.
func NewRosterStore(conn *Connection) *RosterStore {
	return &RosterStore{conn: conn}
}

// Open connects to databaseURL, applies migrations and returns the store.
func Open(ctx context.Context, databaseURL string) (*RosterStore, error) {
	conn, err := NewConnectionFromURL(ctx, databaseURL)
	if err != nil {
		return nil, shared.Persistence("Open", "connect to postgres", err)
	}
	if err := NewMigrator(conn).Migrate(ctx); err != nil {
		conn.Close()
		return nil, shared.Persistence("Open", "migrate postgres schema", err)
	}
	return NewRosterStore(conn), nil
}

// Close closes the pool.
func (s *RosterStore) Close() error {
	s.conn.Close()
	return nil
}

type studentRow struct {
	ID   string
	Name string
}

type gradeRow struct {
	StudentID string
	Value     float64
}

// Load reads both tables in one read-only transaction.
func (s *RosterStore) Load(ctx context.Context) (*roster.LoadResult, error) {
	var (
		students []studentRow
		grades   []gradeRow
	)

	err := s.conn.WithTx(ctx, ReadOnlyTxOptions(), func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id, name FROM students ORDER BY position`)
		if err != nil {
			return fmt.Errorf("failed to query students: %w", err)
		}
		students, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (studentRow, error) {
			var r studentRow
			err := row.Scan(&r.ID, &r.Name)
			return r, err
		})
		if err != nil {
			return fmt.Errorf("failed to scan students: %w", err)
		}

		rows, err = tx.Query(ctx, `SELECT student_id, value FROM student_grades ORDER BY student_id, seq`)
		if err != nil {
			return fmt.Errorf("failed to query grades: %w", err)
		}
		grades, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (gradeRow, error) {
			var g gradeRow
			err := row.Scan(&g.StudentID, &g.Value)
			return g, err
		})
		if err != nil {
			return fmt.Errorf("failed to scan grades: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, shared.Persistence("Load", "read roster", err)
	}

	result := record.Collect(assemble(students, grades))
	result.Missing = len(students) == 0
	return result, nil
}

// Save replaces both tables in one transaction.
func (s *RosterStore) Save(ctx context.Context, students []*student.Student) error {
	err := s.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM student_grades`); err != nil {
			return fmt.Errorf("failed to clear grades: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM students`); err != nil {
			return fmt.Errorf("failed to clear students: %w", err)
		}

		batch, queued := saveBatch(students)
		if queued == 0 {
			return nil
		}

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < queued; i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				if IsUniqueViolation(err) {
					return shared.ErrStudentAlreadyExists
				}
				return fmt.Errorf("failed to insert roster row: %w", err)
			}
		}
		return br.Close()
	})
	return shared.Persistence("Save", "write roster", err)
}

// saveBatch queues every insert for the roster and returns how many
// statements were queued.
func saveBatch(students []*student.Student) (*pgx.Batch, int) {
	batch := &pgx.Batch{}
	for pos, st := range students {
		batch.Queue(`INSERT INTO students (id, name, position) VALUES ($1, $2, $3)`,
			st.ID(), st.Name(), pos)
		for seq, g := range st.Grades() {
			batch.Queue(`INSERT INTO student_grades (student_id, seq, value) VALUES ($1, $2, $3)`,
				st.ID(), seq, g)
		}
	}
	return batch, batch.Len()
}

// assemble joins grade rows onto their students, keeping student order.
// Grade rows for unknown students are ignored.
func assemble(students []studentRow, grades []gradeRow) []record.Record {
	records := make([]record.Record, len(students))
	index := make(map[string]int, len(students))
	for i, s := range students {
		records[i] = record.Record{StudentID: s.ID, Name: s.Name}
		index[s.ID] = i
	}
	for _, g := range grades {
		if i, ok := index[g.StudentID]; ok {
			records[i].Grades = append(records[i].Grades, g.Value)
		}
	}
	return records
}
