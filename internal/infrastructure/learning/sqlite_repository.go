package learning

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// SQLiteRepository persists learning entries in a SQLite database.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

// NewSQLiteRepository creates (or opens) the database at path.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create learning dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open learning db: %w", err)
	}
	// Single connection; writes are serialized.
	db.SetMaxOpenConns(1)
	repo := &SQLiteRepository{db: db, path: path}
	if err := repo.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS learning_entries (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		tool TEXT NOT NULL,
		query TEXT NOT NULL,
		command TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		was_accepted INTEGER NOT NULL,
		was_successful INTEGER NOT NULL,
		confidence_score REAL NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("init learning db: %w", err)
	}
	return nil
}

// Load implements ports.LearningRepository. Rows come back in insertion order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]domain.LearningEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, tool, query, command, timestamp, was_accepted, was_successful, confidence_score
		FROM learning_entries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query learning entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LearningEntry
	for rows.Next() {
		var entry domain.LearningEntry
		var ts string
		var accepted, successful int
		if err := rows.Scan(&entry.ID, &entry.Tool, &entry.Query, &entry.Command, &ts, &accepted, &successful, &entry.ConfidenceScore); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
		}
		if entry.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("%w: entry %s timestamp: %v", ErrCorruptStore, entry.ID, err)
		}
		entry.WasAccepted = accepted == 1
		entry.WasSuccessful = successful == 1
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Save implements ports.LearningRepository by rewriting the table in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, entries []domain.LearningEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin learning save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM learning_entries"); err != nil {
		return fmt.Errorf("clear learning entries: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO learning_entries
		(seq, id, tool, query, command, timestamp, was_accepted, was_successful, confidence_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare learning insert: %w", err)
	}
	defer stmt.Close()

	for i, entry := range entries {
		if _, err := stmt.ExecContext(ctx,
			i,
			entry.ID,
			entry.Tool,
			entry.Query,
			entry.Command,
			entry.Timestamp.UTC().Format(time.RFC3339Nano),
			boolToInt(entry.WasAccepted),
			boolToInt(entry.WasSuccessful),
			entry.ConfidenceScore,
		); err != nil {
			return fmt.Errorf("insert learning entry: %w", err)
		}
	}
	return tx.Commit()
}

// Path returns the sqlite database path.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.LearningRepository = (*SQLiteRepository)(nil)
