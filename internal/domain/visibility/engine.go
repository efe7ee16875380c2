// Package visibility detecta si los miembros de un grupo comparten la misma
// foster visibility. La visibilidad de un grupo nunca se guarda: se recalcula
// siempre a partir del estado actual de los miembros.
package visibility

import "foster-tracker/internal/domain/animals"

// Overrides son cambios en staging (todavía sin guardar), por id de animal.
type Overrides map[string]animals.FosterVisibility

// Effective devuelve el valor en staging si existe, si no el guardado.
func Effective(a animals.Animal, o Overrides) animals.FosterVisibility {
	if v, ok := o[a.ID]; ok {
		return v
	}
	return a.FosterVisibility
}

// Result es la visibilidad derivada de un grupo. Un conflicto es un dato,
// no un error.
type Result struct {
	Shared      *animals.FosterVisibility
	HasConflict bool

	// Values son los valores distintos en orden de aparición.
	Values []animals.FosterVisibility
}

// Value devuelve el valor compartido; ok=false si el grupo está vacío o en conflicto.
func (r Result) Value() (animals.FosterVisibility, bool) {
	if r.Shared == nil {
		return "", false
	}
	return *r.Shared, true
}

// GroupVisibility calcula la visibilidad compartida de members.
// Sin miembros => {nil, false}.
func GroupVisibility(members []animals.Animal, o Overrides) Result {
	values := distinct(members, o, "")
	switch len(values) {
	case 0:
		return Result{Values: values}
	case 1:
		v := values[0]
		return Result{Shared: &v, Values: values}
	default:
		return Result{HasConflict: true, Values: values}
	}
}

// WouldConflict indica si cambiar a a proposed dejaría al grupo en conflicto,
// usando los valores guardados de los demás miembros.
func WouldConflict(a animals.Animal, proposed animals.FosterVisibility, members []animals.Animal) bool {
	return WouldConflictWith(a, proposed, members, nil)
}

// WouldConflictWith es WouldConflict teniendo en cuenta los overrides de
// los otros miembros.
func WouldConflictWith(a animals.Animal, proposed animals.FosterVisibility, members []animals.Animal, o Overrides) bool {
	if proposed == a.FosterVisibility {
		return false
	}

	others := distinct(members, o, a.ID)
	switch len(others) {
	case 0:
		return false
	case 1:
		return others[0] != proposed
	default:
		// Los demás ya discrepan entre sí: cualquier valor choca con alguno.
		return true
	}
}

// Others devuelve los miembros distintos de animalID.
func Others(members []animals.Animal, animalID string) []animals.Animal {
	out := make([]animals.Animal, 0, len(members))
	for _, m := range members {
		if m.ID != animalID {
			out = append(out, m)
		}
	}
	return out
}

func distinct(members []animals.Animal, o Overrides, skipID string) []animals.FosterVisibility {
	seen := make(map[animals.FosterVisibility]struct{}, 2)
	out := make([]animals.FosterVisibility, 0, 2)
	for _, m := range members {
		if skipID != "" && m.ID == skipID {
			continue
		}
		v := Effective(m, o)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
