package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	professionals map[uuid.UUID]*Professional
	calls         int
}

func (c *countingRepo) GetPatientByID(_ context.Context, _ uuid.UUID) (*Patient, error) {
	return nil, ErrPatientNotFound
}

func (c *countingRepo) GetProfessionalByID(_ context.Context, id uuid.UUID) (*Professional, error) {
	c.calls++
	p, ok := c.professionals[id]
	if !ok {
		return nil, ErrProfessionalNotFound
	}
	return p, nil
}

func TestCacheMemoizesProfessionalLookups(t *testing.T) {
	id := uuid.New()
	repo := &countingRepo{professionals: map[uuid.UUID]*Professional{
		id: {ID: id, Name: "Dr. Ruiz"},
	}}
	cache := NewCache(repo)

	for i := 0; i < 3; i++ {
		p, err := cache.Professional(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Dr. Ruiz", p.Name)
	}
	assert.Equal(t, 1, repo.calls)
}

func TestCacheDoesNotCacheMisses(t *testing.T) {
	repo := &countingRepo{professionals: map[uuid.UUID]*Professional{}}
	cache := NewCache(repo)

	missing := uuid.New()
	_, err := cache.Professional(context.Background(), missing)
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
	_, err = cache.Professional(context.Background(), missing)
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
	assert.Equal(t, 2, repo.calls)
}
