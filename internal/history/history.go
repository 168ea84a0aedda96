// Package history keeps a local SQLite ledger of deploy, cleanup and lab
// runs.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"flakelab/internal/common"
	"flakelab/pkg/errors"
)

// Status of a run
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one recorded command invocation
type Run struct {
	ID         string
	Command    string
	Target     string
	Connection string
	Status     Status
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
}

// Duration is zero while the run is still open
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	command TEXT NOT NULL,
	target TEXT NOT NULL,
	connection TEXT NOT NULL,
	status TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at)`

// timeLayout is fixed width so started_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the SQLite ledger
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), common.DirPermissionSecure); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFilePermission, "Failed to create history directory").
			WithContext("path", path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to open history database").
			WithContext("path", path)
	}
	// SQLite serializes writers anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to initialize history database").
			WithContext("path", path)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Start records a running command and returns its ID
func (s *Store) Start(ctx context.Context, command, target, connection string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, target, connection, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, command, target, connection, string(StatusRunning), s.now().UTC().Format(timeLayout))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to record run").
			WithContext("command", command)
	}
	return id, nil
}

// Finish closes a run with its final status
func (s *Store) Finish(ctx context.Context, id string, status Status, detail string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, detail = ?, finished_at = ? WHERE id = ?`,
		string(status), detail, s.now().UTC().Format(timeLayout), id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to update run").
			WithContext("id", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFound("run", id)
	}
	return nil
}

// List returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, command, target, connection, status, detail, started_at, finished_at
FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns one run by ID
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, command, target, connection, status, detail, started_at, finished_at FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("run", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var status, started, finished string
	if err := sc.Scan(&r.ID, &r.Command, &r.Target, &r.Connection, &status, &r.Detail, &started, &finished); err != nil {
		return Run{}, err
	}
	r.Status = Status(status)

	var err error
	if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, errors.Wrap(err, errors.ErrCodeResultParsing, "Invalid run start time").WithContext("id", r.ID)
	}
	if finished != "" {
		if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return Run{}, errors.Wrap(err, errors.ErrCodeResultParsing, "Invalid run finish time").WithContext("id", r.ID)
		}
	}
	return r, nil
}

// Recorder wraps a Store so ledger failures never fail the command being
// recorded. A nil store disables recording.
type Recorder struct {
	store *Store
	log   *zap.Logger
}

// NewRecorder returns a recorder over store
func NewRecorder(store *Store, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{store: store, log: log}
}

// Start records a run and returns its ID, or "" when recording failed
func (r *Recorder) Start(ctx context.Context, command, target, connection string) string {
	if r == nil || r.store == nil {
		return ""
	}
	id, err := r.store.Start(ctx, command, target, connection)
	if err != nil {
		r.log.Warn("Could not record run in history", zap.Error(err))
		return ""
	}
	return id
}

// Finish closes the run, failed when runErr is set
func (r *Recorder) Finish(ctx context.Context, id string, runErr error, detail string) {
	if r == nil || r.store == nil || id == "" {
		return
	}
	status := StatusSucceeded
	if runErr != nil {
		status = StatusFailed
		if detail == "" {
			detail = runErr.Error()
		}
	}
	if err := r.store.Finish(ctx, id, status, detail); err != nil {
		r.log.Warn("Could not update run in history", zap.String("id", id), zap.Error(err))
	}
}
