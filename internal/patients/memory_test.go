package patients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatient_Validate(t *testing.T) {
	tests := []struct {
		name    string
		patient Patient
		wantErr error
	}{
		{"valid", Patient{ID: "P1", Name: "Ann", Age: 30}, nil},
		{"blank id", Patient{ID: "  ", Name: "Ann"}, ErrInvalidID},
		{"blank name", Patient{ID: "P1", Name: ""}, ErrInvalidName},
		{"negative age", Patient{ID: "P1", Name: "Ann", Age: -1}, ErrInvalidAge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.patient
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	ok, err := dir.Insert(ctx, Patient{ID: "P2", Name: " Ben ", Age: 40, Condition: "fracture"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.Insert(ctx, Patient{ID: "P1", Name: "Ann", Age: 30})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.Insert(ctx, Patient{ID: "P1", Name: "Someone Else"})
	require.NoError(t, err)
	assert.False(t, ok, "duplicate id must not overwrite")

	p, found, err := dir.Find(ctx, "P2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ben", p.Name)
	assert.Equal(t, "P2 - Ben", p.String())

	all, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "P1", all[0].ID)
	assert.Equal(t, "Ann", all[0].Name)

	removed, err := dir.Remove(ctx, "P1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = dir.Remove(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, removed)

	_, found, err = dir.Find(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryDirectory_RejectsInvalid(t *testing.T) {
	_, err := NewMemoryDirectory().Insert(context.Background(), Patient{ID: "P1"})
	assert.ErrorIs(t, err, ErrInvalidName)
}
