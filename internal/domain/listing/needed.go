package listing

import (
	"context"
	"strings"
	"time"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/domain/filters"
	"foster-tracker/internal/query"

	"golang.org/x/sync/errgroup"
)

// NeededOrders: prioridad primero, después created_at según sort; kind e id
// cierran el orden total.
func NeededOrders(s filters.SortOrder) []query.Order {
	return []query.Order{
		query.Desc(animals.FieldPriority),
		{Field: query.FieldCreatedAt, Desc: s == filters.SortNewest},
		query.Asc(FieldKind),
		query.Asc(query.FieldID),
	}
}

// ListNeeded arma el listado combinado de animales sueltos y grupos que
// necesitan foster. Siempre va por el camino cliente: la visibilidad de un
// grupo depende de sus miembros y la paginación es sobre la secuencia ya
// mezclada.
func (s *Service) ListNeeded(ctx context.Context, orgID string, q filters.NeededQuery) (Page[NeededItem], error) {
	orgID = strings.TrimSpace(orgID)
	nt := filters.TranslateNeeded(q.Filters, orgID, q.Search)
	orders := NeededOrders(q.Filters.Sort.Resolve(filters.DefaultNeededSort))

	start := time.Now()
	items, err := s.neededCandidates(ctx, orgID, nt)
	if err != nil {
		s.observe("needed", PathClient, start, err)
		return Page[NeededItem]{}, err
	}

	query.SortRecords(items, orders)
	page := newPage(query.Paginate(items, q.Page, q.PageSize), len(items), q.Page, q.PageSize, PathClient)
	s.observe("needed", PathClient, start, nil)
	return page, nil
}

func (s *Service) neededCandidates(ctx context.Context, orgID string, nt filters.NeededTranslation) ([]NeededItem, error) {
	var (
		singles []animals.Animal
		views   []GroupView
	)

	g, gctx := errgroup.WithContext(ctx)
	if nt.IncludeSingles {
		g.Go(func() error {
			var err error
			singles, err = fetchAll(gctx, s, "animals", s.animals.List, nt.Singles.Base)
			return err
		})
	}
	if nt.IncludeGroups {
		g.Go(func() error {
			var err error
			views, err = s.fetchGroupViews(gctx, orgID, nt.Groups.Base)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]NeededItem, 0, len(singles)+len(views))
	for i := range singles {
		a := singles[i]
		if !nt.Singles.Match(a) {
			continue
		}
		out = append(out, NeededItem{
			Kind:       KindAnimal,
			ID:         a.ID,
			Priority:   a.Priority,
			CreatedAt:  a.CreatedAt,
			Visibility: a.FosterVisibility,
			Animal:     &a,
		})
	}
	for i := range views {
		v := views[i]
		// Groups.Match ya excluye grupos vacíos, en conflicto u ocultos.
		if !nt.Groups.Match(v) {
			continue
		}
		shared, _ := v.Visibility.Value()
		out = append(out, NeededItem{
			Kind:       KindGroup,
			ID:         v.Group.ID,
			Priority:   v.Group.Priority,
			CreatedAt:  v.Group.CreatedAt,
			Visibility: shared,
			Group:      &v,
		})
	}
	return out, nil
}
