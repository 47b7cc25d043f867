// Package medications keeps an append-only medication log per patient.
package medications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidEntry is returned when patient or drug is missing.
	ErrInvalidEntry = errors.New("medications: patient id and drug are required")
)

// Entry is one administered or prescribed medication.
type Entry struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	Drug       string    `json:"drug"`
	Dosage     string    `json:"dosage"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (e Entry) String() string {
	if e.Dosage == "" {
		return fmt.Sprintf("%s %s", e.RecordedAt.Format(time.RFC3339), e.Drug)
	}
	return fmt.Sprintf("%s %s %s", e.RecordedAt.Format(time.RFC3339), e.Drug, e.Dosage)
}

// Log records medications. Entries are never edited or deleted.
type Log interface {
	// Append fills in ID and RecordedAt when empty and returns the stored entry.
	Append(ctx context.Context, e Entry) (Entry, error)
	// History returns a patient's entries oldest first.
	History(ctx context.Context, patientID string) ([]Entry, error)
}

func prepare(e Entry, now func() time.Time) (Entry, error) {
	e.PatientID = strings.TrimSpace(e.PatientID)
	e.Drug = strings.TrimSpace(e.Drug)
	e.Dosage = strings.TrimSpace(e.Dosage)
	if e.PatientID == "" || e.Drug == "" {
		return Entry{}, ErrInvalidEntry
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = now().UTC()
	}
	return e, nil
}

// MemoryLog keeps entries per patient in insertion order.
type MemoryLog struct {
	mu      sync.RWMutex
	entries map[string][]Entry
	now     func() time.Time
}

// NewMemoryLog creates an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{entries: make(map[string][]Entry), now: time.Now}
}

func (l *MemoryLog) Append(_ context.Context, e Entry) (Entry, error) {
	e, err := prepare(e, l.now)
	if err != nil {
		return Entry{}, err
	}
	l.mu.Lock()
	l.entries[e.PatientID] = append(l.entries[e.PatientID], e)
	l.mu.Unlock()
	return e, nil
}

func (l *MemoryLog) History(_ context.Context, patientID string) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src := l.entries[patientID]
	out := make([]Entry, len(src))
	copy(out, src)
	return out, nil
}
