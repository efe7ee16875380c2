package listing

import (
	"context"

	"foster-tracker/internal/query"

	"golang.org/x/sync/errgroup"
)

type listFunc[T any] func(ctx context.Context, pred query.Predicate, opts query.ListOptions) ([]T, error)

type countFunc func(ctx context.Context, pred query.Predicate) (int, error)

// guard convierte un fetch vacío estando offline en ErrOffline.
func (s *Service) guard(kind string, n int, err error) error {
	if err != nil {
		return &FetchError{Kind: kind, Err: err}
	}
	if n == 0 && s.conn != nil && !s.conn.Online() {
		return &FetchError{Kind: kind, Err: ErrOffline}
	}
	return nil
}

func fetchAll[T any](ctx context.Context, s *Service, kind string, list listFunc[T], pred query.Predicate) ([]T, error) {
	items, err := list(ctx, pred, query.ListOptions{})
	if err := s.guard(kind, len(items), err); err != nil {
		return nil, err
	}
	return items, nil
}

// serverPage pide la página y el total en paralelo. Las dos queries no están
// en la misma transacción: una escritura concurrente entre ambas puede dejar
// el total desfasado por unos pocos items respecto de la página.
func serverPage[T any](ctx context.Context, s *Service, kind string, list listFunc[T], count countFunc, pred query.Predicate, orders []query.Order, page, pageSize int) ([]T, int, error) {
	var (
		items []T
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = list(gctx, pred, query.ListOptions{
			Sort:   orders,
			Limit:  pageSize,
			Offset: query.Offset(page, pageSize),
		})
		if err != nil {
			return &FetchError{Kind: kind, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx, pred)
		return s.guard(kind+"_count", total, err)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// clientPage filtra, ordena y corta en memoria. total = largo filtrado.
func clientPage[T query.Record](items []T, match func(query.Record) bool, orders []query.Order, page, pageSize int) ([]T, int) {
	filtered := make([]T, 0, len(items))
	for _, it := range items {
		if match(it) {
			filtered = append(filtered, it)
		}
	}
	query.SortRecords(filtered, orders)
	return query.Paginate(filtered, page, pageSize), len(filtered)
}
