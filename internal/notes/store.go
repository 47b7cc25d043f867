package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInvalidTitle is returned when a snapshot is saved without a title.
var ErrInvalidTitle = errors.New("notes: title is required")

// Snapshot is a saved copy of the buffer.
type Snapshot struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	SavedAt time.Time `json:"saved_at"`
}

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists snapshots in the note_snapshots table.
type Store struct {
	db pgQuerier
}

// NewStore creates a snapshot store backed by pgxpool.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("notes: pgx pool required")
	}
	return &Store{db: pool}
}

func newStoreWithDB(db pgQuerier) *Store {
	return &Store{db: db}
}

// Save stores body under title and returns the new snapshot.
func (s *Store) Save(ctx context.Context, title, body string) (Snapshot, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Snapshot{}, ErrInvalidTitle
	}
	snap := Snapshot{Title: title, Body: body}
	err := s.db.QueryRow(ctx, `
		INSERT INTO note_snapshots (title, body)
		VALUES ($1, $2)
		RETURNING id, saved_at
	`, title, body).Scan(&snap.ID, &snap.SavedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("notes: save snapshot: %w", err)
	}
	return snap, nil
}

// List returns snapshot headers newest first; Body is left empty.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, title, saved_at
		FROM note_snapshots
		ORDER BY saved_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("notes: list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Title, &snap.SavedAt); err != nil {
			return nil, fmt.Errorf("notes: scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Load returns the body of snapshot id, or "" when it does not exist.
func (s *Store) Load(ctx context.Context, id int64) (string, error) {
	var body string
	err := s.db.QueryRow(ctx, `SELECT body FROM note_snapshots WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("notes: load snapshot: %w", err)
	}
	return body, nil
}
