package animals

import (
	"context"

	"foster-tracker/internal/query"
)

// Repository es el record store de animales. Todas las operaciones van
// acotadas por tenant (organization_id), ya sea como argumento o como
// cláusula del predicado.
type Repository interface {
	Create(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, orgID, id string) (Animal, error)
	List(ctx context.Context, pred query.Predicate, opts query.ListOptions) ([]Animal, error)
	Count(ctx context.Context, pred query.Predicate) (int, error)
	Update(ctx context.Context, orgID, id string, patch Patch) (Animal, error)

	// BatchUpdate es best-effort: un fallo en un id no aborta el resto.
	BatchUpdate(ctx context.Context, orgID string, ids []string, patch Patch) []BatchResult
}

type GroupRepository interface {
	Create(ctx context.Context, g Group) error
	GetByID(ctx context.Context, orgID, id string) (Group, error)
	List(ctx context.Context, pred query.Predicate, opts query.ListOptions) ([]Group, error)
	Count(ctx context.Context, pred query.Predicate) (int, error)
}
