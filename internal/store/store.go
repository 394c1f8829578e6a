// Package store persists completed minimization results in SQLite so
// they survive restarts and can be listed over the API.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/copyleftdev/RAVINE/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id             TEXT PRIMARY KEY,
	objective      TEXT NOT NULL,
	dimensions     INTEGER NOT NULL,
	status         TEXT NOT NULL,
	best_value     REAL,
	best_params    TEXT,
	iterations     INTEGER,
	evaluations    INTEGER,
	started_at     TIMESTAMP NOT NULL,
	finished_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_finished_at ON results(finished_at);
`

// Record is one persisted minimization outcome.
type Record struct {
	ID             string    `json:"id"`
	Objective      string    `json:"objective"`
	Dimensions     int       `json:"dimensions"`
	Status         string    `json:"status"`
	BestValue      float64   `json:"best_value"`
	BestParameters []float64 `json:"best_parameters"`
	Iterations     int       `json:"iterations"`
	Evaluations    int       `json:"evaluations"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Store wraps the SQLite database holding results.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if necessary) the result database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "opening result database").WithComponent("store")
	}

	// SQLite serializes writers; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating result schema").WithComponent("store")
	}

	logger.Debug("Result store opened", zap.String("path", path))

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a result record.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	params, err := json.Marshal(rec.BestParameters)
	if err != nil {
		return errors.Wrap(err, "encoding parameters").WithComponent("store").WithOperation("Save")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO results
		(id, objective, dimensions, status, best_value, best_params,
		 iterations, evaluations, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Objective, rec.Dimensions, rec.Status,
		rec.BestValue, string(params),
		rec.Iterations, rec.Evaluations,
		rec.StartedAt.UTC(), rec.FinishedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "saving result").WithComponent("store").WithOperation("Save")
	}

	s.logger.Debug("Result saved",
		zap.String("id", rec.ID),
		zap.String("objective", rec.Objective),
		zap.Float64("best_value", rec.BestValue))

	return nil
}

// Get returns the record with the given id, or sql.ErrNoRows wrapped if
// it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, objective, dimensions, status, best_value, best_params,
		       iterations, evaluations, started_at, finished_at
		FROM results WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err != nil {
		return nil, errors.Wrapf(err, "loading result %s", id).WithComponent("store").WithOperation("Get")
	}
	return rec, nil
}

// List returns up to limit records, most recently finished first.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, objective, dimensions, status, best_value, best_params,
		       iterations, evaluations, started_at, finished_at
		FROM results ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing results").WithComponent("store").WithOperation("List")
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning result row").WithComponent("store").WithOperation("List")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating result rows").WithComponent("store").WithOperation("List")
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var params string

	err := row.Scan(&rec.ID, &rec.Objective, &rec.Dimensions, &rec.Status,
		&rec.BestValue, &params,
		&rec.Iterations, &rec.Evaluations,
		&rec.StartedAt, &rec.FinishedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(params), &rec.BestParameters); err != nil {
		return nil, err
	}

	return &rec, nil
}
