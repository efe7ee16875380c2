package filters

import (
	"strings"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/query"
)

// Translation es el resultado de traducir un filtro de listado.
//
// Query solo tiene cláusulas expresables en el servidor; Memory tiene todas.
// Ambas se arman desde la misma tabla de campos, así que para cualquier
// filtro sin campos Unexpressible seleccionan exactamente los mismos registros.
type Translation struct {
	// Base es el conjunto completo de candidatos del tenant (fetch sin filtrar).
	Base   query.Predicate
	Query  query.Predicate
	Memory query.Predicate

	// Unexpressible lista los params activos que requieren datos de otros registros.
	Unexpressible []string
}

func (t Translation) Match(rec query.Record) bool {
	return t.Memory.Match(rec)
}

// NeedsFullFetch: hay algún campo activo que el servidor no puede resolver.
func (t Translation) NeedsFullFetch() bool {
	return len(t.Unexpressible) > 0
}

func translate[F any](fields []field[F], f F, base []query.Clause, search string) Translation {
	t := Translation{
		Base:   query.Where(base...),
		Query:  query.Where(base...),
		Memory: query.Where(base...),
	}

	for _, fd := range fields {
		if !fd.active(f) || fd.clause == nil {
			continue
		}
		c := fd.clause(f)
		t.Memory = t.Memory.And(c)
		if fd.server && c.Op.ServerExpressible() {
			t.Query = t.Query.And(c)
		} else {
			t.Unexpressible = append(t.Unexpressible, fd.param)
		}
	}

	if s := strings.TrimSpace(search); s != "" {
		c := query.Contains(animals.FieldName, s)
		t.Query = t.Query.And(c)
		t.Memory = t.Memory.And(c)
	}

	return t
}

func tenantClause(orgID string) query.Clause {
	return query.Eq(query.FieldOrganizationID, orgID)
}

// TranslateAnimals traduce filtros del listado de animales. Todos sus campos
// son expresables en el servidor.
func TranslateAnimals(f AnimalFilters, orgID, search string) Translation {
	return translate(animalFields, f, []query.Clause{tenantClause(orgID)}, search)
}

// TranslateGroups traduce filtros del listado de grupos. Memory se evalúa
// contra registros que exponen los campos derivados (visibilidad del grupo,
// life stages de los miembros).
func TranslateGroups(f GroupFilters, orgID, search string) Translation {
	return translate(groupFields, f, []query.Clause{tenantClause(orgID)}, search)
}

// NeededTranslation tiene una traducción por tipo de entidad.
type NeededTranslation struct {
	Singles        Translation
	Groups         Translation
	IncludeSingles bool
	IncludeGroups  bool

	// SingleOnly lista los params activos que excluyen a los grupos.
	SingleOnly []string
}

// TranslateNeeded traduce el filtro del listado combinado.
//
// Animales sueltos: sin grupo y con visibilidad distinta de not_visible.
// Grupos: visibilidad derivada sin conflicto y distinta de not_visible (un
// grupo en conflicto o vacío no tiene valor y queda afuera).
func TranslateNeeded(f FostersNeededFilters, orgID, search string) NeededTranslation {
	singleBase := []query.Clause{
		tenantClause(orgID),
		query.IsNull(animals.FieldGroupID),
		query.Neq(animals.FieldFosterVisibility, string(animals.VisibilityNotVisible)),
	}
	groupBase := []query.Clause{tenantClause(orgID)}

	out := NeededTranslation{
		Singles:        translate(neededFields, f, singleBase, search),
		IncludeSingles: true,
		IncludeGroups:  true,
	}

	groups := Translation{
		Base:          query.Where(groupBase...),
		Query:         query.Where(groupBase...),
		Memory:        query.Where(groupBase...).And(query.Neq(animals.FieldGroupVisibility, string(animals.VisibilityNotVisible))),
		Unexpressible: []string{string(animals.FieldGroupVisibility)},
	}
	for _, fd := range neededFields {
		if !fd.active(f) || fd.clause == nil {
			continue
		}
		if fd.group == nil {
			out.SingleOnly = append(out.SingleOnly, fd.param)
			continue
		}
		groups.Memory = groups.Memory.And(fd.group(f))
		groups.Unexpressible = append(groups.Unexpressible, fd.param)
	}
	if s := strings.TrimSpace(search); s != "" {
		c := query.Contains(animals.FieldName, s)
		groups.Query = groups.Query.And(c)
		groups.Memory = groups.Memory.And(c)
	}
	out.Groups = groups

	if f.Type != nil {
		switch *f.Type {
		case TypeGroups:
			out.IncludeSingles = false
		case TypeSingles:
			out.IncludeGroups = false
		}
	}
	if len(out.SingleOnly) > 0 {
		out.IncludeGroups = false
	}

	return out
}

// Orders devuelve las claves de orden de un listado simple. id desempata
// para que el orden sea total y ambos caminos (SQL y memoria) coincidan.
func Orders(s SortOrder) []query.Order {
	return []query.Order{
		{Field: query.FieldCreatedAt, Desc: s == SortNewest},
		query.Asc(query.FieldID),
	}
}
