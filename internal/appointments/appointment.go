// Package appointments holds the walk-in appointment line, served strictly
// first come first served.
package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidName is returned when an appointment is requested without a name.
var ErrInvalidName = errors.New("appointments: name is required")

// Appointment is one request in the line.
type Appointment struct {
	Ticket      string    `json:"ticket"`
	Name        string    `json:"name"`
	RequestedAt time.Time `json:"requested_at"`
}

func (a Appointment) String() string {
	return fmt.Sprintf("%s (ticket %s)", a.Name, shortTicket(a.Ticket))
}

// Queue is a FIFO line of appointment requests.
type Queue interface {
	Enqueue(ctx context.Context, name string) (Appointment, error)
	// Dequeue reports false when the line is empty.
	Dequeue(ctx context.Context) (Appointment, bool, error)
	// List returns the line front to back without consuming it.
	List(ctx context.Context) ([]Appointment, error)
}

func newAppointment(name string, now time.Time) (Appointment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Appointment{}, ErrInvalidName
	}
	return Appointment{
		Ticket:      uuid.New().String(),
		Name:        name,
		RequestedAt: now.UTC(),
	}, nil
}

func shortTicket(ticket string) string {
	if len(ticket) > 8 {
		return ticket[:8]
	}
	return ticket
}
