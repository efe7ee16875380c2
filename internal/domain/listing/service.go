package listing

import (
	"context"
	"strings"
	"time"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/domain/filters"
	"foster-tracker/internal/platform/logger"
	"foster-tracker/internal/query"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	animals  animals.Repository
	groups   animals.GroupRepository
	log      logger.Logger
	observer Observer
	conn     Connectivity
}

type Option func(*Service)

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

func WithConnectivity(c Connectivity) Option {
	return func(s *Service) { s.conn = c }
}

func NewService(repo animals.Repository, groups animals.GroupRepository, log logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{animals: repo, groups: groups, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) observe(listing string, path Path, start time.Time, err error) {
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveListing(listing, path, elapsed, err)
	}

	fields := map[string]any{
		"listing":    listing,
		"path":       string(path),
		"elapsed_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		fields["error"] = logger.ErrField(err)
		s.log.Warn("listing failed", fields)
		return
	}
	s.log.Debug("listing resolved", fields)
}

func (s *Service) ListAnimals(ctx context.Context, orgID string, q filters.AnimalQuery) (Page[animals.Animal], error) {
	t := filters.TranslateAnimals(q.Filters, strings.TrimSpace(orgID), q.Search)
	orders := filters.Orders(q.Filters.Sort.Resolve(filters.DefaultAnimalSort))

	path := PathServer
	if t.NeedsFullFetch() {
		path = PathClient
	}

	start := time.Now()
	var (
		page Page[animals.Animal]
		err  error
	)
	if path == PathServer {
		page, err = s.animalsServer(ctx, t, orders, q.Page, q.PageSize)
	} else {
		page, err = s.animalsClient(ctx, t, orders, q.Page, q.PageSize)
	}
	s.observe("animals", path, start, err)
	return page, err
}

func (s *Service) animalsServer(ctx context.Context, t filters.Translation, orders []query.Order, page, pageSize int) (Page[animals.Animal], error) {
	items, total, err := serverPage(ctx, s, "animals", s.animals.List, s.animals.Count, t.Query, orders, page, pageSize)
	if err != nil {
		return Page[animals.Animal]{}, err
	}
	return newPage(items, total, page, pageSize, PathServer), nil
}

func (s *Service) animalsClient(ctx context.Context, t filters.Translation, orders []query.Order, page, pageSize int) (Page[animals.Animal], error) {
	all, err := fetchAll(ctx, s, "animals", s.animals.List, t.Base)
	if err != nil {
		return Page[animals.Animal]{}, err
	}
	items, total := clientPage(all, t.Match, orders, page, pageSize)
	return newPage(items, total, page, pageSize, PathClient), nil
}

func (s *Service) ListGroups(ctx context.Context, orgID string, q filters.GroupQuery) (Page[GroupView], error) {
	orgID = strings.TrimSpace(orgID)
	t := filters.TranslateGroups(q.Filters, orgID, q.Search)
	orders := filters.Orders(q.Filters.Sort.Resolve(filters.DefaultGroupSort))

	path := PathServer
	if t.NeedsFullFetch() {
		path = PathClient
	}

	start := time.Now()
	var (
		page Page[GroupView]
		err  error
	)
	if path == PathServer {
		page, err = s.groupsServer(ctx, orgID, t, orders, q.Page, q.PageSize)
	} else {
		page, err = s.groupsClient(ctx, orgID, t, orders, q.Page, q.PageSize)
	}
	s.observe("groups", path, start, err)
	return page, err
}

func (s *Service) groupsServer(ctx context.Context, orgID string, t filters.Translation, orders []query.Order, page, pageSize int) (Page[GroupView], error) {
	groups, total, err := serverPage(ctx, s, "groups", s.groups.List, s.groups.Count, t.Query, orders, page, pageSize)
	if err != nil {
		return Page[GroupView]{}, err
	}

	// Visibilidad derivada solo para los grupos de la página: un fetch de
	// miembros por id.
	ids := make([]string, 0)
	for _, g := range groups {
		ids = append(ids, g.AnimalIDs...)
	}
	byID := map[string]animals.Animal{}
	if len(ids) > 0 {
		members, err := s.animals.List(ctx, query.Where(
			query.Eq(query.FieldOrganizationID, orgID),
			query.In(query.FieldID, animals.NormalizeAnimalIDs(ids)),
		), query.ListOptions{})
		if err != nil {
			return Page[GroupView]{}, &FetchError{Kind: "group_members", Err: err}
		}
		byID = indexAnimals(members)
	}

	views := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, newGroupView(g, byID))
	}
	return newPage(views, total, page, pageSize, PathServer), nil
}

func (s *Service) groupsClient(ctx context.Context, orgID string, t filters.Translation, orders []query.Order, page, pageSize int) (Page[GroupView], error) {
	views, err := s.fetchGroupViews(ctx, orgID, t.Base)
	if err != nil {
		return Page[GroupView]{}, err
	}
	items, total := clientPage(views, t.Match, orders, page, pageSize)
	return newPage(items, total, page, pageSize, PathClient), nil
}

// fetchGroupViews trae los grupos y los animales del tenant en paralelo y
// resuelve la membresía desde g.AnimalIDs (no desde animal.group_id).
func (s *Service) fetchGroupViews(ctx context.Context, orgID string, groupsPred query.Predicate) ([]GroupView, error) {
	var (
		groups  []animals.Group
		members []animals.Animal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = fetchAll(gctx, s, "groups", s.groups.List, groupsPred)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.animals.List(gctx, query.Where(
			query.Eq(query.FieldOrganizationID, orgID),
		), query.ListOptions{})
		if err != nil {
			return &FetchError{Kind: "group_members", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := indexAnimals(members)
	views := make([]GroupView, 0, len(groups))
	for _, gr := range groups {
		views = append(views, newGroupView(gr, byID))
	}
	return views, nil
}

func indexAnimals(items []animals.Animal) map[string]animals.Animal {
	out := make(map[string]animals.Animal, len(items))
	for _, a := range items {
		out[a.ID] = a
	}
	return out
}
