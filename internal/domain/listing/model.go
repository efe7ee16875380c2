// Package listing resuelve los listados paginados: elige entre el camino
// servidor (query + count) y el camino cliente (fetch completo + filtro en
// memoria) y arma el listado combinado de "necesita foster".
package listing

import (
	"errors"
	"fmt"
	"time"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/domain/visibility"
	"foster-tracker/internal/query"
)

var (
	// ErrOffline: el fetch volvió vacío y no hay conectividad. Nunca se
	// reporta como "cero resultados".
	ErrOffline = errors.New("offline")
)

// Path es el camino de ejecución elegido para un listado.
type Path string

const (
	PathServer Path = "server"
	PathClient Path = "client"
)

type Page[T any] struct {
	Items      []T
	Total      int
	Page       int
	PageSize   int
	TotalPages int
	Path       Path
}

func newPage[T any](items []T, total, page, pageSize int, path Path) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: query.TotalPages(total, pageSize),
		Path:       path,
	}
}

// FetchError envuelve un fallo del record store con el tipo de entidad.
type FetchError struct {
	Kind string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("listing: fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable: conectividad o timeout. Un dato corrupto no es reintentable.
func (e *FetchError) Retryable() bool {
	return errors.Is(e.Err, ErrOffline) || animals.Retryable(e.Err)
}

// Connectivity informa si el cliente del record store está online.
type Connectivity interface {
	Online() bool
}

// Observer recibe una observación por listado resuelto.
type Observer interface {
	ObserveListing(listing string, path Path, elapsed time.Duration, err error)
}

// GroupView es un grupo con sus miembros resueltos y la visibilidad
// derivada. Expone los campos derivados al evaluador en memoria.
type GroupView struct {
	Group      animals.Group
	Members    []animals.Animal
	Visibility visibility.Result
}

func newGroupView(g animals.Group, byID map[string]animals.Animal) GroupView {
	members := make([]animals.Animal, 0, len(g.AnimalIDs))
	for _, id := range g.AnimalIDs {
		if a, ok := byID[id]; ok {
			members = append(members, a)
		}
	}
	return GroupView{
		Group:      g,
		Members:    members,
		Visibility: visibility.GroupVisibility(members, nil),
	}
}

func (v GroupView) FieldValue(f query.Field) any {
	switch f {
	case animals.FieldGroupVisibility:
		val, ok := v.Visibility.Value()
		if !ok {
			return nil
		}
		return string(val)
	case animals.FieldMemberLifeStages:
		stages := make([]string, 0, len(v.Members))
		for _, m := range v.Members {
			stages = append(stages, string(m.LifeStage))
		}
		return stages
	default:
		return v.Group.FieldValue(f)
	}
}

type Kind string

const (
	KindAnimal Kind = "animal"
	KindGroup  Kind = "group"
)

// FieldKind solo existe en NeededItem (desempate entre tipos).
const FieldKind query.Field = "kind"

// NeededItem es un candidato del listado combinado. Animal o Group según Kind.
type NeededItem struct {
	Kind       Kind
	ID         string
	Priority   bool
	CreatedAt  time.Time
	Visibility animals.FosterVisibility

	Animal *animals.Animal
	Group  *GroupView
}

func (it NeededItem) FieldValue(f query.Field) any {
	switch f {
	case query.FieldID:
		return it.ID
	case query.FieldCreatedAt:
		return it.CreatedAt
	case animals.FieldPriority:
		return it.Priority
	case FieldKind:
		return string(it.Kind)
	default:
		return nil
	}
}
