// Package filters define los filtros de cada listado (campos opcionales),
// su codificación en query string y su traducción a predicados.
package filters

import (
	"errors"
	"time"

	"foster-tracker/internal/domain/animals"
)

var (
	ErrInvalidParam = errors.New("invalid query parameter")
)

type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

func (s SortOrder) Valid() bool {
	return s == SortNewest || s == SortOldest
}

// Resolve devuelve el orden efectivo: "" usa el default del listado.
func (s SortOrder) Resolve(def SortOrder) SortOrder {
	if s == "" {
		return def
	}
	return s
}

// Defaults por listado. "Necesita foster" muestra primero los más antiguos,
// el resto de listados los más nuevos.
const (
	DefaultAnimalSort SortOrder = SortNewest
	DefaultGroupSort  SortOrder = SortNewest
	DefaultNeededSort SortOrder = SortOldest
)

// NeededType restringe el listado combinado a un tipo de entidad.
type NeededType string

const (
	TypeGroups  NeededType = "groups"
	TypeSingles NeededType = "singles"
)

func (t NeededType) Valid() bool {
	return t == TypeGroups || t == TypeSingles
}

// AnimalFilters: nil / false = sin filtrar. InGroup y Assigned son
// tri-estado: true = solo con, false = solo sin, nil = ambos.
type AnimalFilters struct {
	Status     *animals.Status
	Sex        *animals.SexSpayNeuterStatus
	LifeStage  *animals.LifeStage
	Visibility *animals.FosterVisibility
	Priority   bool
	InGroup    *bool
	Assigned   *bool
	BornAfter  *time.Time
	BornBefore *time.Time
	Sort       SortOrder
}

// GroupFilters. Visibility y LifeStage dependen de los miembros y no se
// pueden resolver con una query sobre animal_groups.
type GroupFilters struct {
	Priority   bool
	Assigned   *bool
	Visibility *animals.FosterVisibility
	LifeStage  *animals.LifeStage
	Sort       SortOrder
}

// FostersNeededFilters aplica al listado combinado (animales sueltos + grupos).
// Sex solo tiene sentido para animales sueltos: si está activo, los grupos
// quedan fuera aunque Type lo permita.
type FostersNeededFilters struct {
	Type       *NeededType
	Priority   bool
	LifeStage  *animals.LifeStage
	Sex        *animals.SexSpayNeuterStatus
	Visibility *animals.FosterVisibility
	Sort       SortOrder
}

func (f AnimalFilters) CountActive() int {
	return countActive(animalFields, f) + sortActive(f.Sort, DefaultAnimalSort)
}

func (f GroupFilters) CountActive() int {
	return countActive(groupFields, f) + sortActive(f.Sort, DefaultGroupSort)
}

func (f FostersNeededFilters) CountActive() int {
	return countActive(neededFields, f) + sortActive(f.Sort, DefaultNeededSort)
}

func sortActive(s, def SortOrder) int {
	if s != "" && s != def {
		return 1
	}
	return 0
}

// Date normaliza a medianoche UTC (los filtros de fecha son por día).
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
