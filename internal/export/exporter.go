package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wolfman30/clinic-triage/internal/triage"
	"github.com/wolfman30/clinic-triage/pkg/logging"
)

// ErrDisabled is returned by Export when no sink is configured.
var ErrDisabled = errors.New("export: no destination configured")

// Exporter renders a listing once and hands it to every sink.
type Exporter struct {
	sinks  []Sink
	logger *logging.Logger
	now    func() time.Time
}

// NewExporter creates an exporter. Nil sinks are skipped.
func NewExporter(logger *logging.Logger, sinks ...Sink) *Exporter {
	if logger == nil {
		logger = logging.Default()
	}
	e := &Exporter{logger: logger, now: time.Now}
	for _, s := range sinks {
		if s != nil {
			e.sinks = append(e.sinks, s)
		}
	}
	return e
}

// Enabled reports whether at least one sink is configured.
func (e *Exporter) Enabled() bool {
	return e != nil && len(e.sinks) > 0
}

// Export writes records, in the order given, as CSV to every sink and
// returns the locations written. It stops at the first failing sink.
func (e *Exporter) Export(ctx context.Context, records []triage.AdmissionRecord) ([]string, error) {
	if !e.Enabled() {
		return nil, ErrDisabled
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, RowsFrom(records)); err != nil {
		return nil, err
	}

	now := e.now().UTC()
	name := fmt.Sprintf("triage/%d/%02d/%02d/queue-%s.csv",
		now.Year(), now.Month(), now.Day(), now.Format("20060102T150405Z"))

	locations := make([]string, 0, len(e.sinks))
	for _, s := range e.sinks {
		loc, err := s.Put(ctx, name, buf.Bytes())
		if err != nil {
			e.logger.Error("export failed", "error", err, "name", name)
			return locations, err
		}
		locations = append(locations, loc)
	}
	e.logger.Info("triage queue exported", "rows", len(records), "locations", locations)
	return locations, nil
}
