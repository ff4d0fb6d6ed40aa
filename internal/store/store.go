// Package store persists mining runs and their candidate tables in
// PostgreSQL. A run is written in one transaction and replaces any earlier
// run with the same id, so re-running identical inputs is idempotent.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/candidate"
	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/postgres"
)

// Schema creates the tables used by the store.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS mining_runs (
		run_id             TEXT PRIMARY KEY,
		cluster            TEXT NOT NULL DEFAULT '',
		documents          INTEGER NOT NULL,
		tokens             INTEGER NOT NULL,
		threshold          INTEGER NOT NULL,
		candidate_limit    INTEGER NOT NULL,
		warnings           INTEGER NOT NULL DEFAULT 0,
		stage_durations_ms JSONB,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS ngram_candidates (
		run_id             TEXT NOT NULL REFERENCES mining_runs(run_id) ON DELETE CASCADE,
		position           INTEGER NOT NULL,
		ngram_order        SMALLINT NOT NULL CHECK (ngram_order BETWEEN 1 AND 4),
		phrase             TEXT NOT NULL,
		method             TEXT NOT NULL,
		score              DOUBLE PRECISION NOT NULL,
		contained_in       TEXT[] NOT NULL DEFAULT '{}',
		contained_in_count INTEGER NOT NULL,
		document_incidence INTEGER NOT NULL,
		occurrence_count   INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ngram_candidates_phrase ON ngram_candidates (phrase)`,
}

// Run describes one mining run.
type Run struct {
	ID             string
	Cluster        string
	Documents      int
	Tokens         int
	Threshold      int
	CandidateLimit int
	Warnings       int
	StageDurations map[string]time.Duration
	CreatedAt      time.Time
}

type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "run-store"),
	}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.Exec(ctx, Schema...); err != nil {
		return fmt.Errorf("migrating run store: %w", err)
	}
	return nil
}

// SaveRun writes run and its table, replacing an earlier run with the same
// id.
func (s *Store) SaveRun(ctx context.Context, run Run, table candidate.Table) error {
	durations, err := json.Marshal(millis(run.StageDurations))
	if err != nil {
		return fmt.Errorf("encoding stage durations: %w", err)
	}
	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM mining_runs WHERE run_id = $1`, run.ID); err != nil {
			return fmt.Errorf("deleting previous run: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mining_runs
			(run_id, cluster, documents, tokens, threshold, candidate_limit, warnings, stage_durations_ms)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			run.ID, run.Cluster, run.Documents, run.Tokens, run.Threshold, run.CandidateLimit, run.Warnings, string(durations),
		); err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO ngram_candidates
			(run_id, position, ngram_order, phrase, method, score, contained_in, contained_in_count, document_incidence, occurrence_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
		if err != nil {
			return fmt.Errorf("preparing candidate insert: %w", err)
		}
		defer stmt.Close()
		for i, c := range table {
			contained := c.ContainedIn
			if contained == nil {
				contained = []string{}
			}
			if _, err := stmt.ExecContext(ctx,
				run.ID, i, c.Order, c.Text, c.Method, c.Score, pq.Array(contained),
				c.ContainedInCount, c.DocumentIncidence, c.OccurrenceCount,
			); err != nil {
				return fmt.Errorf("inserting candidate %d (%q): %w", i, c.Text, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("run stored", "run_id", run.ID, "candidates", len(table))
	return nil
}

// LoadRun reads a stored run and its table in original order.
func (s *Store) LoadRun(ctx context.Context, runID string) (*Run, candidate.Table, error) {
	run := &Run{ID: runID}
	var durations []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT cluster, documents, tokens, threshold, candidate_limit, warnings, stage_durations_ms, created_at
		FROM mining_runs WHERE run_id = $1`, runID,
	).Scan(&run.Cluster, &run.Documents, &run.Tokens, &run.Threshold, &run.CandidateLimit, &run.Warnings, &durations, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, apperrors.Newf(apperrors.ErrInvalidInput, "store", "run %s not found", runID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying run %s: %w", runID, err)
	}
	if len(durations) > 0 {
		var ms map[string]int64
		if err := json.Unmarshal(durations, &ms); err != nil {
			return nil, nil, fmt.Errorf("decoding stage durations: %w", err)
		}
		run.StageDurations = make(map[string]time.Duration, len(ms))
		for k, v := range ms {
			run.StageDurations[k] = time.Duration(v) * time.Millisecond
		}
	}

	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT ngram_order, phrase, method, score, contained_in, contained_in_count, document_incidence, occurrence_count
		FROM ngram_candidates WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying candidates of %s: %w", runID, err)
	}
	defer rows.Close()
	var table candidate.Table
	for rows.Next() {
		var c candidate.Candidate
		var contained []string
		if err := rows.Scan(&c.Order, &c.Text, &c.Method, &c.Score, pq.Array(&contained),
			&c.ContainedInCount, &c.DocumentIncidence, &c.OccurrenceCount); err != nil {
			return nil, nil, fmt.Errorf("scanning candidate: %w", err)
		}
		if len(contained) > 0 {
			c.ContainedIn = contained
		}
		table = append(table, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating candidates: %w", err)
	}
	return run, table, nil
}

func millis(d map[string]time.Duration) map[string]int64 {
	out := make(map[string]int64, len(d))
	for k, v := range d {
		out[k] = v.Milliseconds()
	}
	return out
}
