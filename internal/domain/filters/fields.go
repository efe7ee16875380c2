package filters

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/query"
)

const dateLayout = "2006-01-02"

// field es una fila de la tabla de reglas de un listado. Desde la misma fila
// salen el encode/decode del query string, el conteo de filtros activos, la
// cláusula SQL y el predicado en memoria.
type field[F any] struct {
	param string

	// encode devuelve ok=false si el campo está sin setear (o en su default).
	encode func(F) (string, bool)
	decode func(*F, string) error

	// server=false: la cláusula depende de otros registros y solo se evalúa en memoria.
	server bool
	clause func(F) query.Clause

	// group es la cláusula para la rama de grupos del listado combinado.
	// nil = dimensión exclusiva de animales sueltos.
	group func(F) query.Clause
}

func (fd field[F]) active(f F) bool {
	_, ok := fd.encode(f)
	return ok
}

func countActive[F any](fields []field[F], f F) int {
	n := 0
	for _, fd := range fields {
		if fd.active(f) {
			n++
		}
	}
	return n
}

func enumField[F any, E ~string](param string, ptr func(*F) **E, valid func(E) bool, col query.Field) field[F] {
	return field[F]{
		param: param,
		encode: func(f F) (string, bool) {
			p := *ptr(&f)
			if p == nil {
				return "", false
			}
			return string(*p), true
		},
		decode: func(f *F, raw string) error {
			v := E(raw)
			if !valid(v) {
				return fmt.Errorf("%w: %s=%q", ErrInvalidParam, param, raw)
			}
			*ptr(f) = &v
			return nil
		},
		server: true,
		clause: func(f F) query.Clause {
			return query.Eq(col, string(**ptr(&f)))
		},
	}
}

// flagField: solo true es un filtro; false y ausente son lo mismo.
func flagField[F any](param string, ptr func(*F) *bool, col query.Field) field[F] {
	return field[F]{
		param: param,
		encode: func(f F) (string, bool) {
			if !*ptr(&f) {
				return "", false
			}
			return "true", true
		},
		decode: func(f *F, raw string) error {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalidParam, param, raw)
			}
			*ptr(f) = b
			return nil
		},
		server: true,
		clause: func(F) query.Clause {
			return query.Eq(col, true)
		},
	}
}

// nullField es un tri-estado sobre una referencia opcional:
// true = NOT NULL, false = IS NULL.
func nullField[F any](param string, ptr func(*F) **bool, col query.Field) field[F] {
	return field[F]{
		param: param,
		encode: func(f F) (string, bool) {
			p := *ptr(&f)
			if p == nil {
				return "", false
			}
			return strconv.FormatBool(*p), true
		},
		decode: func(f *F, raw string) error {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalidParam, param, raw)
			}
			*ptr(f) = &b
			return nil
		},
		server: true,
		clause: func(f F) query.Clause {
			if **ptr(&f) {
				return query.NotNull(col)
			}
			return query.IsNull(col)
		},
	}
}

func dateField[F any](param string, ptr func(*F) **time.Time, op query.Op, col query.Field) field[F] {
	return field[F]{
		param: param,
		encode: func(f F) (string, bool) {
			p := *ptr(&f)
			if p == nil {
				return "", false
			}
			return p.UTC().Format(dateLayout), true
		},
		decode: func(f *F, raw string) error {
			t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
			if err != nil {
				return fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidParam, param)
			}
			*ptr(f) = &t
			return nil
		},
		server: true,
		clause: func(f F) query.Clause {
			return query.Clause{Field: col, Op: op, Value: (*ptr(&f)).UTC()}
		},
	}
}

func (fd field[F]) memoryOnly() field[F] {
	fd.server = false
	return fd
}

func (fd field[F]) withClause(c func(F) query.Clause) field[F] {
	fd.clause = c
	return fd
}

func (fd field[F]) withGroup(c func(F) query.Clause) field[F] {
	fd.group = c
	return fd
}

var animalFields = []field[AnimalFilters]{
	enumField("status", func(f *AnimalFilters) **animals.Status { return &f.Status }, animals.Status.Valid, animals.FieldStatus),
	enumField("sex", func(f *AnimalFilters) **animals.SexSpayNeuterStatus { return &f.Sex }, animals.SexSpayNeuterStatus.Valid, animals.FieldSexSpayNeuterStatus),
	enumField("lifeStage", func(f *AnimalFilters) **animals.LifeStage { return &f.LifeStage }, animals.LifeStage.Valid, animals.FieldLifeStage),
	enumField("visibility", func(f *AnimalFilters) **animals.FosterVisibility { return &f.Visibility }, animals.FosterVisibility.Valid, animals.FieldFosterVisibility),
	flagField("priority", func(f *AnimalFilters) *bool { return &f.Priority }, animals.FieldPriority),
	nullField("inGroup", func(f *AnimalFilters) **bool { return &f.InGroup }, animals.FieldGroupID),
	nullField("assigned", func(f *AnimalFilters) **bool { return &f.Assigned }, animals.FieldCurrentFosterID),
	dateField("bornAfter", func(f *AnimalFilters) **time.Time { return &f.BornAfter }, query.OpGte, animals.FieldDateOfBirth),
	dateField("bornBefore", func(f *AnimalFilters) **time.Time { return &f.BornBefore }, query.OpLte, animals.FieldDateOfBirth),
}

var groupFields = []field[GroupFilters]{
	flagField("priority", func(f *GroupFilters) *bool { return &f.Priority }, animals.FieldPriority),
	nullField("assigned", func(f *GroupFilters) **bool { return &f.Assigned }, animals.FieldCurrentFosterID),
	enumField("visibility", func(f *GroupFilters) **animals.FosterVisibility { return &f.Visibility }, animals.FosterVisibility.Valid, animals.FieldGroupVisibility).
		memoryOnly(),
	enumField("lifeStage", func(f *GroupFilters) **animals.LifeStage { return &f.LifeStage }, animals.LifeStage.Valid, animals.FieldMemberLifeStages).
		memoryOnly().
		withClause(func(f GroupFilters) query.Clause {
			return query.AnyEq(animals.FieldMemberLifeStages, string(*f.LifeStage))
		}),
}

// En el listado combinado clause es la cláusula para animales sueltos y group
// la de grupos. life stage es exacto en un animal y existencial en un grupo.
var neededFields = []field[FostersNeededFilters]{
	enumField("type", func(f *FostersNeededFilters) **NeededType { return &f.Type }, NeededType.Valid, "").
		withClause(nil),
	flagField("priority", func(f *FostersNeededFilters) *bool { return &f.Priority }, animals.FieldPriority).
		withGroup(func(FostersNeededFilters) query.Clause {
			return query.Eq(animals.FieldPriority, true)
		}),
	enumField("lifeStage", func(f *FostersNeededFilters) **animals.LifeStage { return &f.LifeStage }, animals.LifeStage.Valid, animals.FieldLifeStage).
		withGroup(func(f FostersNeededFilters) query.Clause {
			return query.AnyEq(animals.FieldMemberLifeStages, string(*f.LifeStage))
		}),
	enumField("sex", func(f *FostersNeededFilters) **animals.SexSpayNeuterStatus { return &f.Sex }, animals.SexSpayNeuterStatus.Valid, animals.FieldSexSpayNeuterStatus),
	enumField("visibility", func(f *FostersNeededFilters) **animals.FosterVisibility { return &f.Visibility }, animals.FosterVisibility.Valid, animals.FieldFosterVisibility).
		withGroup(func(f FostersNeededFilters) query.Clause {
			return query.Eq(animals.FieldGroupVisibility, string(*f.Visibility))
		}),
}

func trimParam(s string) string {
	return strings.TrimSpace(s)
}
