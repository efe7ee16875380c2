package query

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Match evalúa el predicado contra un registro ya cargado.
// La semántica de nulos sigue a SQL: cualquier comparación contra un campo
// nulo es falsa, incluido neq.
func (p Predicate) Match(rec Record) bool {
	for _, c := range p.Clauses {
		if !c.Match(rec) {
			return false
		}
	}
	return true
}

func (c Clause) Match(rec Record) bool {
	v := rec.FieldValue(c.Field)

	switch c.Op {
	case OpIsNull:
		return v == nil
	case OpNotNull:
		return v != nil
	}

	if v == nil {
		return false
	}

	switch c.Op {
	case OpEq:
		n, ok := compareValues(v, c.Value)
		return ok && n == 0
	case OpNeq:
		n, ok := compareValues(v, c.Value)
		return ok && n != 0
	case OpGte:
		n, ok := compareValues(v, c.Value)
		return ok && n >= 0
	case OpLte:
		n, ok := compareValues(v, c.Value)
		return ok && n <= 0
	case OpIn:
		s, ok := v.(string)
		list, _ := c.Value.([]string)
		return ok && slices.Contains(list, s)
	case OpContains:
		s, ok := v.(string)
		needle, _ := c.Value.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	case OpAnyEq:
		list, ok := v.([]string)
		want, _ := c.Value.(string)
		return ok && slices.Contains(list, want)
	default:
		return false
	}
}

// compareValues compara dos valores primitivos del mismo tipo.
// ok=false si los tipos no coinciden.
func compareValues(a, b any) (int, bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		return cmp.Compare(boolRank(x), boolRank(y)), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case int:
		y, ok := b.(int)
		if !ok {
			return 0, false
		}
		return cmp.Compare(x, y), true
	default:
		return 0, false
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
