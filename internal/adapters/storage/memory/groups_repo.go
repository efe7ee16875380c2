package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/query"
)

type groupRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Group
}

func NewGroupRepo() animals.GroupRepository {
	return &groupRepo{
		byID: make(map[string]animals.Group),
	}
}

func (r *groupRepo) Create(ctx context.Context, g animals.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(g.ID) == "" {
		return errors.New("group id required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return errors.New("group already exists")
	}
	g.AnimalIDs = slices.Clone(g.AnimalIDs)
	r.byID[g.ID] = g
	return nil
}

func (r *groupRepo) GetByID(ctx context.Context, orgID, id string) (animals.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok || g.OrganizationID != orgID {
		return animals.Group{}, animals.ErrNotFound
	}
	g.AnimalIDs = slices.Clone(g.AnimalIDs)
	return g, nil
}

func (r *groupRepo) List(ctx context.Context, pred query.Predicate, opts query.ListOptions) ([]animals.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]animals.Group, 0)
	for _, g := range r.byID {
		if pred.Match(g) {
			g.AnimalIDs = slices.Clone(g.AnimalIDs)
			out = append(out, g)
		}
	}
	r.mu.RUnlock()

	return window(out, opts), nil
}

func (r *groupRepo) Count(ctx context.Context, pred query.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, g := range r.byID {
		if pred.Match(g) {
			n++
		}
	}
	return n, nil
}
