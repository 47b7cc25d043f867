package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDirectory stores patients in the patients table.
type PostgresDirectory struct {
	db pgQuerier
}

// NewPostgresDirectory initializes a directory backed by pgxpool.
func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresDirectory{db: pool}
}

func newPostgresDirectoryWithDB(db pgQuerier) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) Insert(ctx context.Context, p Patient) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	query := `
		INSERT INTO patients (id, name, age, condition)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	ct, err := d.db.Exec(ctx, query, p.ID, p.Name, p.Age, p.Condition)
	if err != nil {
		return false, fmt.Errorf("patients: insert failed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (d *PostgresDirectory) Find(ctx context.Context, id string) (Patient, bool, error) {
	var p Patient
	err := d.db.QueryRow(ctx, `SELECT id, name, age, condition FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Age, &p.Condition)
	if errors.Is(err, pgx.ErrNoRows) {
		return Patient{}, false, nil
	}
	if err != nil {
		return Patient{}, false, fmt.Errorf("patients: select failed: %w", err)
	}
	return p, true, nil
}

func (d *PostgresDirectory) Remove(ctx context.Context, id string) (bool, error) {
	ct, err := d.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("patients: delete failed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (d *PostgresDirectory) List(ctx context.Context) ([]Patient, error) {
	rows, err := d.db.Query(ctx, `SELECT id, name, age, condition FROM patients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("patients: list failed: %w", err)
	}
	defer rows.Close()

	out := []Patient{}
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Condition); err != nil {
			return nil, fmt.Errorf("patients: scan failed: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
