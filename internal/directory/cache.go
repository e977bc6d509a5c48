package directory

import (
	"context"

	"github.com/google/uuid"
)

// Cache memoizes professional lookups for the duration of one request.
// It is created per call and passed explicitly; it is not safe for
// concurrent use and must not outlive the request.
type Cache struct {
	repo          Repository
	professionals map[uuid.UUID]*Professional
}

func NewCache(repo Repository) *Cache {
	return &Cache{
		repo:          repo,
		professionals: make(map[uuid.UUID]*Professional),
	}
}

// Professional returns the cached record, loading it on first use.
func (c *Cache) Professional(ctx context.Context, id uuid.UUID) (*Professional, error) {
	if p, ok := c.professionals[id]; ok {
		return p, nil
	}
	p, err := c.repo.GetProfessionalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.professionals[id] = p
	return p, nil
}
