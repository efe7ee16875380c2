package query

import "slices"

// Order es una clave de ordenamiento. Las claves se aplican en orden;
// conviene terminar con una clave única (id) para que el orden sea total.
type Order struct {
	Field Field
	Desc  bool
}

func Asc(f Field) Order  { return Order{Field: f} }
func Desc(f Field) Order { return Order{Field: f, Desc: true} }

// ListOptions acompaña a un Predicate en un fetch. Limit <= 0 = sin límite.
type ListOptions struct {
	Sort   []Order
	Limit  int
	Offset int
}

// SortRecords ordena in-place con la misma semántica que ORDER BY para
// campos no nulos (los nulos van primero).
func SortRecords[R Record](recs []R, orders []Order) {
	slices.SortStableFunc(recs, func(a, b R) int {
		return CompareRecords(a, b, orders)
	})
}

func CompareRecords(a, b Record, orders []Order) int {
	for _, o := range orders {
		av := a.FieldValue(o.Field)
		bv := b.FieldValue(o.Field)

		var n int
		switch {
		case av == nil && bv == nil:
			n = 0
		case av == nil:
			n = -1
		case bv == nil:
			n = 1
		default:
			n, _ = compareValues(av, bv)
		}

		if o.Desc {
			n = -n
		}
		if n != 0 {
			return n
		}
	}
	return 0
}
