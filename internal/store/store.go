package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/splitlease/parity/internal/config"
)

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// Store records parity runs and the artifacts they produced
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath returns <cache>/parity.db
func DefaultPath() (string, error) {
	cacheDir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "parity.db"), nil
}

// New creates a new Store with SQLite backend
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		target TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS artifacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		kind TEXT NOT NULL,
		path TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// StartRun records a new run in StatusRunning and returns it
func (s *Store) StartRun(kind RunKind, target string) (*Run, error) {
	r := &Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Target:    target,
		Status:    StatusRunning,
		StartedAt: s.now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, kind, target, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.Kind, r.Target, r.Status, r.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	return r, nil
}

// FinishRun sets the final status of a run. A non-nil runErr is stored as its message.
func (s *Store) FinishRun(id string, status Status, runErr error) error {
	var msg sql.NullString
	if runErr != nil {
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := s.db.Exec(`
		UPDATE runs SET status = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, status, msg, s.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	return nil
}

// AddArtifact attaches a file produced by a run
func (s *Store) AddArtifact(runID string, kind ArtifactKind, path string) error {
	_, err := s.db.Exec(`
		INSERT INTO artifacts (run_id, kind, path) VALUES (?, ?, ?)
	`, runID, kind, path)
	return err
}

// GetRun loads a single run
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, kind, target, status, error, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// RecentRuns returns the newest runs first
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, target, status, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// Artifacts lists the files of a run in the order they were added
func (s *Store) Artifacts(runID string) ([]Artifact, error) {
	rows, err := s.db.Query(`
		SELECT run_id, kind, path FROM artifacts
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.RunID, &a.Kind, &a.Path); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var msg sql.NullString
	var finished sql.NullTime

	if err := row.Scan(&r.ID, &r.Kind, &r.Target, &r.Status, &msg, &r.StartedAt, &finished); err != nil {
		return nil, err
	}

	r.Error = msg.String
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}
