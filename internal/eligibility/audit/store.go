// Package audit writes an append-only trail of submission and verdict events to Postgres.
// Rows carry identities, transaction hashes and statuses only, never attributes or scores.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "eligibility-workers/internal/common/errors"
)

// Event types.
const (
	EventApplicationSubmitted = "application_submitted"
	EventSubmissionConfirmed  = "submission_confirmed"
	EventSubmissionRejected   = "submission_rejected"
	EventVerdictChecked       = "verdict_checked"
)

const schema = `
CREATE TABLE IF NOT EXISTS eligibility_audit_log (
	id         BIGSERIAL PRIMARY KEY,
	event_type TEXT        NOT NULL,
	identity   TEXT        NOT NULL,
	tx_hash    TEXT,
	status     TEXT        NOT NULL,
	details    JSONB       NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_eligibility_audit_identity ON eligibility_audit_log (identity);`

// Entry is one audit row. Details must not contain applicant attributes.
type Entry struct {
	EventType string
	Identity  string
	TxHash    string
	Status    string
	Details   map[string]interface{}
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewAuditWriteError(fmt.Errorf("ensure schema: %w", err))
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, entry Entry) error {
	details := []byte("{}")
	if len(entry.Details) > 0 {
		var err error
		if details, err = json.Marshal(entry.Details); err != nil {
			return apperrors.NewAuditWriteError(fmt.Errorf("marshal details: %w", err))
		}
	}

	var txHash sql.NullString
	if entry.TxHash != "" {
		txHash = sql.NullString{String: entry.TxHash, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO eligibility_audit_log (event_type, identity, tx_hash, status, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.EventType,
		entry.Identity,
		txHash,
		entry.Status,
		details,
		s.now().UTC(),
	)
	if err != nil {
		return apperrors.NewAuditWriteError(err)
	}
	return nil
}

// NoopRecorder is used when Postgres is disabled.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, Entry) error { return nil }
