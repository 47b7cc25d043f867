package medications

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLLog stores entries in the medication_entries table.
type SQLLog struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLLog creates a log over an open database handle.
func NewSQLLog(db *sql.DB) *SQLLog {
	if db == nil {
		panic("medications: sql db required")
	}
	return &SQLLog{db: db, now: time.Now}
}

func (l *SQLLog) Append(ctx context.Context, e Entry) (Entry, error) {
	e, err := prepare(e, l.now)
	if err != nil {
		return Entry{}, err
	}

	query := `
		INSERT INTO medication_entries (id, patient_id, drug, dosage, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := l.db.ExecContext(ctx, query, e.ID, e.PatientID, e.Drug, e.Dosage, e.RecordedAt); err != nil {
		return Entry{}, fmt.Errorf("medications: failed to append entry: %w", err)
	}
	return e, nil
}

func (l *SQLLog) History(ctx context.Context, patientID string) ([]Entry, error) {
	query := `
		SELECT id, patient_id, drug, dosage, recorded_at
		FROM medication_entries
		WHERE patient_id = $1
		ORDER BY recorded_at ASC, id ASC
	`
	rows, err := l.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("medications: failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PatientID, &e.Drug, &e.Dosage, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("medications: failed to scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
