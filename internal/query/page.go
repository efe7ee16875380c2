package query

// Offset traduce (page, pageSize) 1-based a un offset.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	if pageSize < 0 {
		pageSize = 0
	}
	return (page - 1) * pageSize
}

func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate devuelve la ventana [(page-1)*size, page*size) de items.
// Una página fuera de rango devuelve un slice vacío (nunca nil).
func Paginate[T any](items []T, page, pageSize int) []T {
	lo := Offset(page, pageSize)
	if lo >= len(items) || pageSize <= 0 {
		return []T{}
	}
	hi := min(lo+pageSize, len(items))
	out := make([]T, hi-lo)
	copy(out, items[lo:hi])
	return out
}
