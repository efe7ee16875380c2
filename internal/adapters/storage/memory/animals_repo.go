package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/query"
)

type animalRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
	now  func() time.Time
}

func NewAnimalRepo() animals.Repository {
	return &animalRepo{
		byID: make(map[string]animals.Animal),
		now:  time.Now,
	}
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("animal already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, orgID, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok || a.OrganizationID != orgID {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *animalRepo) List(ctx context.Context, pred query.Predicate, opts query.ListOptions) ([]animals.Animal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if pred.Match(a) {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()

	return window(out, opts), nil
}

func (r *animalRepo) Count(ctx context.Context, pred query.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.byID {
		if pred.Match(a) {
			n++
		}
	}
	return n, nil
}

func (r *animalRepo) Update(ctx context.Context, orgID, id string, patch animals.Patch) (animals.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok || a.OrganizationID != orgID {
		return animals.Animal{}, animals.ErrNotFound
	}
	a = patch.Apply(a, r.now())
	r.byID[id] = a
	return a, nil
}

func (r *animalRepo) BatchUpdate(ctx context.Context, orgID string, ids []string, patch animals.Patch) []animals.BatchResult {
	out := make([]animals.BatchResult, 0, len(ids))
	for _, id := range ids {
		a, err := r.Update(ctx, orgID, id, patch)
		out = append(out, animals.BatchResult{ID: id, Animal: a, Err: err})
	}
	return out
}

// window ordena y recorta igual que ORDER BY ... LIMIT ... OFFSET.
func window[R query.Record](items []R, opts query.ListOptions) []R {
	// Sin orden explícito, por id para que el resultado sea estable.
	sortBy := opts.Sort
	if len(sortBy) == 0 {
		sortBy = []query.Order{query.Asc(query.FieldID)}
	}
	query.SortRecords(items, sortBy)

	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return items[:0]
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items
}
