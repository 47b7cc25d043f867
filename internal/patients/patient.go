// Package patients is the clinic's patient register keyed by patient ID.
package patients

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidID is returned when the patient ID is blank.
	ErrInvalidID = errors.New("patients: id is required")

	// ErrInvalidName is returned when the patient name is blank.
	ErrInvalidName = errors.New("patients: name is required")

	// ErrInvalidAge is returned for negative ages.
	ErrInvalidAge = errors.New("patients: age must not be negative")
)

// Patient is one registered patient.
type Patient struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Condition string `json:"condition"`
}

// Validate checks the fields a record needs before it is stored.
func (p *Patient) Validate() error {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" {
		return ErrInvalidID
	}
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Age < 0 {
		return ErrInvalidAge
	}
	return nil
}

func (p Patient) String() string {
	return fmt.Sprintf("%s - %s", p.ID, p.Name)
}

// Directory stores patients by ID.
type Directory interface {
	// Insert adds p and reports false when the ID is already registered.
	Insert(ctx context.Context, p Patient) (bool, error)
	Find(ctx context.Context, id string) (Patient, bool, error)
	// Remove reports false when the ID is unknown.
	Remove(ctx context.Context, id string) (bool, error)
	// List returns every patient ordered by ID.
	List(ctx context.Context) ([]Patient, error)
}
