// Package export writes triage listings as CSV to local files or S3.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/wolfman30/clinic-triage/internal/triage"
)

var header = []string{"position", "name", "urgency", "arrival_seq"}

// Row is one line of an exported listing. Position is 1-based.
type Row struct {
	Position   int
	Name       string
	Urgency    int
	ArrivalSeq uint64
}

// RowsFrom numbers records in the order given.
func RowsFrom(records []triage.AdmissionRecord) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{
			Position:   i + 1,
			Name:       rec.SubjectName,
			Urgency:    rec.Urgency,
			ArrivalSeq: rec.ArrivalSequence,
		}
	}
	return rows
}

// WriteCSV writes the header followed by rows.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Position),
			r.Name,
			strconv.Itoa(r.Urgency),
			strconv.FormatUint(r.ArrivalSeq, 10),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: write row %d: %w", r.Position, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}
