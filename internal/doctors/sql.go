package doctors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// SQLDirectory stores doctors in the doctors table; specialties are a text[].
type SQLDirectory struct {
	db *sql.DB
}

// NewSQLDirectory creates a directory over an open database handle.
func NewSQLDirectory(db *sql.DB) *SQLDirectory {
	if db == nil {
		panic("doctors: sql db required")
	}
	return &SQLDirectory{db: db}
}

func (s *SQLDirectory) Add(ctx context.Context, d Doctor) error {
	d, err := normalize(d)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO doctors (name, specialties, room, available)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING`,
		d.Name, pq.Array(d.Specialties), d.Room, d.Available)
	if err != nil {
		return fmt.Errorf("doctors: insert failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("doctors: insert result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, d.Name)
	}
	return nil
}

func (s *SQLDirectory) Lookup(ctx context.Context, name string) (Doctor, error) {
	var d Doctor
	err := s.db.QueryRowContext(ctx, `
		SELECT name, specialties, room, available
		FROM doctors WHERE name = $1`, strings.TrimSpace(name)).
		Scan(&d.Name, pq.Array(&d.Specialties), &d.Room, &d.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return Doctor{}, ErrNotFound
	}
	if err != nil {
		return Doctor{}, fmt.Errorf("doctors: lookup failed: %w", err)
	}
	if d.Specialties == nil {
		d.Specialties = []string{}
	}
	return d, nil
}

func (s *SQLDirectory) List(ctx context.Context) ([]Doctor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, specialties, room, available
		FROM doctors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("doctors: list failed: %w", err)
	}
	defer rows.Close()

	out := []Doctor{}
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.Name, pq.Array(&d.Specialties), &d.Room, &d.Available); err != nil {
			return nil, fmt.Errorf("doctors: scan failed: %w", err)
		}
		if d.Specialties == nil {
			d.Specialties = []string{}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
