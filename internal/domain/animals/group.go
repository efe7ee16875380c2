package animals

import (
	"strings"
	"time"
)

// Group agrupa animales que se asignan juntos (p.ej. una camada).
// AnimalIDs es la arista "hacia adelante": ordenada y sin duplicados.
// No controla el ciclo de vida de los animales.
type Group struct {
	ID             string
	OrganizationID string

	Name        string
	Description string
	AnimalIDs   []string

	Priority        bool
	CurrentFosterID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g Group) Has(animalID string) bool {
	for _, id := range g.AnimalIDs {
		if id == animalID {
			return true
		}
	}
	return false
}

// NormalizeAnimalIDs limpia blancos y duplicados preservando el orden.
func NormalizeAnimalIDs(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
