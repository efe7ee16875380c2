package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect encapsula lo que cambia entre motores SQL.
type Dialect struct {
	Name string

	Placeholder func(n int) string
	Like        string

	// Fold es una función SQL que pasa a minúsculas igual que strings.ToLower.
	// Si está, contains compara Fold(col) contra el texto ya plegado en Go.
	Fold string

	// Bind convierte un valor de cláusula al tipo que guarda el motor (opcional).
	Bind func(v any) any
}

var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Like:        "ILIKE",
}

// SQLite guarda timestamps como unix nanos y booleanos como 0/1.
// Su LIKE solo ignora mayúsculas ASCII: la búsqueda pasa por FoldFunc, que el
// adapter sqlite registra en el driver.
var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	Like:        "LIKE",
	Fold:        FoldFunc,
	Bind: func(v any) any {
		switch x := v.(type) {
		case time.Time:
			return x.UTC().UnixNano()
		case bool:
			if x {
				return int64(1)
			}
			return int64(0)
		default:
			return v
		}
	},
}

// FoldFunc es el nombre de la función escalar de plegado de mayúsculas.
const FoldFunc = "go_lower"

// Statement es SQL listo para ExecContext/QueryContext.
type Statement struct {
	SQL  string
	Args []any
}

type builder struct {
	d    Dialect
	sb   strings.Builder
	args []any
}

func (b *builder) arg(v any) string {
	if b.d.Bind != nil {
		v = b.d.Bind(v)
	}
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

func BuildSelect(d Dialect, table string, columns []string, pred Predicate, opts ListOptions) (Statement, error) {
	b := &builder{d: d}
	b.sb.WriteString("SELECT ")
	b.sb.WriteString(strings.Join(columns, ", "))
	b.sb.WriteString(" FROM ")
	b.sb.WriteString(table)

	if err := b.where(pred); err != nil {
		return Statement{}, err
	}

	if len(opts.Sort) > 0 {
		parts := make([]string, 0, len(opts.Sort))
		for _, o := range opts.Sort {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, string(o.Field)+" "+dir)
		}
		b.sb.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}

	if opts.Limit > 0 {
		b.sb.WriteString(" LIMIT " + b.arg(opts.Limit))
		if opts.Offset > 0 {
			b.sb.WriteString(" OFFSET " + b.arg(opts.Offset))
		}
	}

	return Statement{SQL: b.sb.String(), Args: b.args}, nil
}

func BuildCount(d Dialect, table string, pred Predicate) (Statement, error) {
	b := &builder{d: d}
	b.sb.WriteString("SELECT COUNT(*) FROM ")
	b.sb.WriteString(table)
	if err := b.where(pred); err != nil {
		return Statement{}, err
	}
	return Statement{SQL: b.sb.String(), Args: b.args}, nil
}

func (b *builder) where(pred Predicate) error {
	if len(pred.Clauses) == 0 {
		return nil
	}

	parts := make([]string, 0, len(pred.Clauses))
	for _, c := range pred.Clauses {
		col := string(c.Field)
		switch c.Op {
		case OpEq:
			parts = append(parts, col+" = "+b.arg(c.Value))
		case OpNeq:
			parts = append(parts, col+" <> "+b.arg(c.Value))
		case OpIsNull:
			parts = append(parts, col+" IS NULL")
		case OpNotNull:
			parts = append(parts, col+" IS NOT NULL")
		case OpGte:
			parts = append(parts, col+" >= "+b.arg(c.Value))
		case OpLte:
			parts = append(parts, col+" <= "+b.arg(c.Value))
		case OpIn:
			list, _ := c.Value.([]string)
			if len(list) == 0 {
				parts = append(parts, "1 = 0")
				continue
			}
			ph := make([]string, 0, len(list))
			for _, v := range list {
				ph = append(ph, b.arg(v))
			}
			parts = append(parts, col+" IN ("+strings.Join(ph, ",")+")")
		case OpContains:
			s, _ := c.Value.(string)
			if b.d.Fold != "" {
				col = b.d.Fold + "(" + col + ")"
				s = strings.ToLower(s)
			}
			parts = append(parts, fmt.Sprintf(`%s %s %s ESCAPE '\'`, col, b.d.Like, b.arg("%"+escapeLike(s)+"%")))
		default:
			return fmt.Errorf("%w: %s on %s", ErrUnsupportedOp, c.Op, c.Field)
		}
	}

	b.sb.WriteString(" WHERE " + strings.Join(parts, " AND "))
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
