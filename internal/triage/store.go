package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoredAdmission is a persisted admission row.
type StoredAdmission struct {
	AdmissionRecord
	AdmittedAt time.Time `json:"admitted_at"`
}

// AdmissionStore durably mirrors the triage queue. ListWaiting must return
// rows ordered by (urgency, arrival_seq) so a replay matches the heap order.
type AdmissionStore interface {
	Append(ctx context.Context, adm StoredAdmission) error
	MarkServed(ctx context.Context, seq uint64, servedAt time.Time) error
	// Remove withdraws a waiting admission; its sequence stays reserved.
	Remove(ctx context.Context, seq uint64) error
	UpdateUrgency(ctx context.Context, seq uint64, urgency int) error
	ListWaiting(ctx context.Context) ([]StoredAdmission, error)
	NextSequence(ctx context.Context) (uint64, error)
	DeleteAll(ctx context.Context) error
}

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps admissions in the triage_admissions table.
type PostgresStore struct {
	db pgQuerier
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("triage: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

func newPostgresStoreWithDB(db pgQuerier) *PostgresStore {
	if db == nil {
		panic("triage: db required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, adm StoredAdmission) error {
	query := `
		INSERT INTO triage_admissions (arrival_seq, subject_name, urgency, admitted_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.Exec(ctx, query, int64(adm.ArrivalSequence), adm.SubjectName, adm.Urgency, adm.AdmittedAt); err != nil {
		return fmt.Errorf("triage: insert admission: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkServed(ctx context.Context, seq uint64, servedAt time.Time) error {
	query := `UPDATE triage_admissions SET served_at = $2 WHERE arrival_seq = $1 AND served_at IS NULL AND withdrawn_at IS NULL`
	ct, err := s.db.Exec(ctx, query, int64(seq), servedAt)
	if err != nil {
		return fmt.Errorf("triage: mark served: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, seq uint64) error {
	query := `UPDATE triage_admissions SET withdrawn_at = NOW() WHERE arrival_seq = $1 AND served_at IS NULL AND withdrawn_at IS NULL`
	ct, err := s.db.Exec(ctx, query, int64(seq))
	if err != nil {
		return fmt.Errorf("triage: withdraw admission: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateUrgency(ctx context.Context, seq uint64, urgency int) error {
	query := `UPDATE triage_admissions SET urgency = $2 WHERE arrival_seq = $1 AND served_at IS NULL AND withdrawn_at IS NULL`
	ct, err := s.db.Exec(ctx, query, int64(seq), urgency)
	if err != nil {
		return fmt.Errorf("triage: update urgency: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListWaiting(ctx context.Context) ([]StoredAdmission, error) {
	query := `
		SELECT arrival_seq, subject_name, urgency, admitted_at
		FROM triage_admissions
		WHERE served_at IS NULL AND withdrawn_at IS NULL
		ORDER BY urgency ASC, arrival_seq ASC
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("triage: list waiting: %w", err)
	}
	defer rows.Close()

	var out []StoredAdmission
	for rows.Next() {
		var (
			adm StoredAdmission
			seq int64
		)
		if err := rows.Scan(&seq, &adm.SubjectName, &adm.Urgency, &adm.AdmittedAt); err != nil {
			return nil, fmt.Errorf("triage: scan admission: %w", err)
		}
		adm.ArrivalSequence = uint64(seq)
		out = append(out, adm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("triage: list waiting: %w", err)
	}
	return out, nil
}

// NextSequence is one past the highest sequence ever stored, served and
// withdrawn rows included.
func (s *PostgresStore) NextSequence(ctx context.Context) (uint64, error) {
	var next int64
	if err := s.db.QueryRow(ctx, `SELECT COALESCE(MAX(arrival_seq) + 1, 0) FROM triage_admissions`).Scan(&next); err != nil {
		return 0, fmt.Errorf("triage: next sequence: %w", err)
	}
	return uint64(next), nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM triage_admissions`); err != nil {
		return fmt.Errorf("triage: delete all: %w", err)
	}
	return nil
}
