package patients

import (
	"context"
	"sort"
	"sync"
)

// MemoryDirectory keeps patients in a map.
type MemoryDirectory struct {
	mu       sync.RWMutex
	patients map[string]Patient
}

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{patients: make(map[string]Patient)}
}

func (d *MemoryDirectory) Insert(_ context.Context, p Patient) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.patients[p.ID]; exists {
		return false, nil
	}
	d.patients[p.ID] = p
	return true, nil
}

func (d *MemoryDirectory) Find(_ context.Context, id string) (Patient, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.patients[id]
	return p, ok, nil
}

func (d *MemoryDirectory) Remove(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.patients[id]; !ok {
		return false, nil
	}
	delete(d.patients, id)
	return true, nil
}

func (d *MemoryDirectory) List(_ context.Context) ([]Patient, error) {
	d.mu.RLock()
	out := make([]Patient, 0, len(d.patients))
	for _, p := range d.patients {
		out = append(out, p)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
