// Package doctors is the directory of on-staff doctors keyed by name.
package doctors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrNotFound is returned when no doctor has the requested name.
	ErrNotFound = errors.New("doctors: not found")

	// ErrDuplicate is returned when a doctor with the same name exists.
	ErrDuplicate = errors.New("doctors: already registered")

	// ErrInvalidName is returned when the doctor name is blank.
	ErrInvalidName = errors.New("doctors: name is required")
)

// Doctor is one directory entry.
type Doctor struct {
	Name        string   `json:"name"`
	Specialties []string `json:"specialties"`
	Room        string   `json:"room"`
	Available   bool     `json:"available"`
}

func (d Doctor) String() string {
	status := "off duty"
	if d.Available {
		status = "available"
	}
	specialties := "general"
	if len(d.Specialties) > 0 {
		specialties = strings.Join(d.Specialties, ", ")
	}
	if d.Room == "" {
		return fmt.Sprintf("%s [%s] %s", d.Name, specialties, status)
	}
	return fmt.Sprintf("%s [%s] room %s, %s", d.Name, specialties, d.Room, status)
}

// Directory stores doctors by exact name.
type Directory interface {
	Add(ctx context.Context, d Doctor) error
	Lookup(ctx context.Context, name string) (Doctor, error)
	// List returns every doctor ordered by name.
	List(ctx context.Context) ([]Doctor, error)
}

func normalize(d Doctor) (Doctor, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return Doctor{}, ErrInvalidName
	}
	specialties := make([]string, 0, len(d.Specialties))
	for _, s := range d.Specialties {
		if s = strings.TrimSpace(s); s != "" {
			specialties = append(specialties, s)
		}
	}
	d.Specialties = specialties
	d.Room = strings.TrimSpace(d.Room)
	return d, nil
}

// MemoryDirectory keeps doctors in a map.
type MemoryDirectory struct {
	mu      sync.RWMutex
	doctors map[string]Doctor
}

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{doctors: make(map[string]Doctor)}
}

func (m *MemoryDirectory) Add(_ context.Context, d Doctor) error {
	d, err := normalize(d)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.doctors[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, d.Name)
	}
	m.doctors[d.Name] = d
	return nil
}

func (m *MemoryDirectory) Lookup(_ context.Context, name string) (Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.doctors[strings.TrimSpace(name)]
	if !ok {
		return Doctor{}, ErrNotFound
	}
	return d, nil
}

func (m *MemoryDirectory) List(_ context.Context) ([]Doctor, error) {
	m.mu.RLock()
	out := make([]Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		out = append(out, d)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
