// Package query es el motor genérico de predicados: el mismo Predicate se
// evalúa en memoria (Match) o se traduce a SQL (BuildSelect/BuildCount).
package query

import "errors"

var (
	ErrUnsupportedOp = errors.New("query: op not expressible in sql")
)

// Field es el nombre de columna/campo de un registro.
type Field string

const (
	FieldID             Field = "id"
	FieldOrganizationID Field = "organization_id"
	FieldCreatedAt      Field = "created_at"
)

type Op string

const (
	OpEq       Op = "eq"
	OpNeq      Op = "neq"
	OpIsNull   Op = "is_null"
	OpNotNull  Op = "not_null"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
	OpIn       Op = "in"
	OpContains Op = "contains"

	// OpAnyEq: el campo es una lista y basta con que un elemento sea igual.
	// Solo existe en memoria (requiere agregar varios registros).
	OpAnyEq Op = "any_eq"
)

// ServerExpressible indica si el op se puede mandar a la base.
func (o Op) ServerExpressible() bool {
	return o != OpAnyEq
}

// Clause es una condición atómica. Value usa tipos primitivos:
// string, bool, time.Time o []string (OpIn).
type Clause struct {
	Field Field
	Op    Op
	Value any
}

// Predicate es una conjunción de cláusulas. Sin cláusulas acepta todo.
type Predicate struct {
	Clauses []Clause
}

func Where(clauses ...Clause) Predicate {
	return Predicate{Clauses: clauses}
}

func (p Predicate) And(clauses ...Clause) Predicate {
	out := make([]Clause, 0, len(p.Clauses)+len(clauses))
	out = append(out, p.Clauses...)
	out = append(out, clauses...)
	return Predicate{Clauses: out}
}

// Tenant devuelve el valor de organization_id si el predicado lo fija.
func (p Predicate) Tenant() (string, bool) {
	for _, c := range p.Clauses {
		if c.Field == FieldOrganizationID && c.Op == OpEq {
			s, ok := c.Value.(string)
			return s, ok
		}
	}
	return "", false
}

func Eq(f Field, v any) Clause          { return Clause{Field: f, Op: OpEq, Value: v} }
func Neq(f Field, v any) Clause         { return Clause{Field: f, Op: OpNeq, Value: v} }
func IsNull(f Field) Clause             { return Clause{Field: f, Op: OpIsNull} }
func NotNull(f Field) Clause            { return Clause{Field: f, Op: OpNotNull} }
func Gte(f Field, v any) Clause         { return Clause{Field: f, Op: OpGte, Value: v} }
func Lte(f Field, v any) Clause         { return Clause{Field: f, Op: OpLte, Value: v} }
func In(f Field, v []string) Clause     { return Clause{Field: f, Op: OpIn, Value: v} }
func Contains(f Field, s string) Clause { return Clause{Field: f, Op: OpContains, Value: s} }
func AnyEq(f Field, v string) Clause    { return Clause{Field: f, Op: OpAnyEq, Value: v} }

// Record es lo que el evaluador en memoria necesita de una entidad.
// FieldValue debe devolver nil (sin tipo) para valores nulos.
type Record interface {
	FieldValue(f Field) any
}

// OptionalString convierte un *string en nil o string.
func OptionalString(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}
