package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"foster-tracker/internal/adapters/storage/memory"
	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/domain/filters"
	"foster-tracker/internal/platform/logger"
	"foster-tracker/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var pageSizes = []int{1, 3, 5, 7, 50}

func TestPathEquivalence_Animals(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	cases := map[string]filters.AnimalQuery{
		"none":        {},
		"oldest":      {Filters: filters.AnimalFilters{Sort: filters.SortOldest}},
		"status":      {Filters: filters.AnimalFilters{Status: ptr(animals.StatusInShelter)}},
		"sex":         {Filters: filters.AnimalFilters{Sex: ptr(animals.SexMale)}},
		"life stage":  {Filters: filters.AnimalFilters{LifeStage: ptr(animals.LifeStageKitten)}},
		"visibility":  {Filters: filters.AnimalFilters{Visibility: ptr(animals.VisibilityAvailableNow)}},
		"priority":    {Filters: filters.AnimalFilters{Priority: true}},
		"in group":    {Filters: filters.AnimalFilters{InGroup: ptr(true)}},
		"not grouped": {Filters: filters.AnimalFilters{InGroup: ptr(false), Sort: filters.SortOldest}},
		"assigned":    {Filters: filters.AnimalFilters{Assigned: ptr(true)}},
		"unassigned":  {Filters: filters.AnimalFilters{Assigned: ptr(false)}},
		"born range": {Filters: filters.AnimalFilters{
			BornAfter:  ptr(filters.Date(2019, 1, 1)),
			BornBefore: ptr(filters.Date(2021, 12, 31)),
		}},
		"search":   {Search: "MILO"},
		"combined": {Filters: filters.AnimalFilters{Priority: true, InGroup: ptr(false), Sort: filters.SortOldest}, Search: "m"},
		"empty":    {Filters: filters.AnimalFilters{Status: ptr(animals.StatusAdopted), Sex: ptr(animals.SexFemale), Priority: true}},
	}

	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			tr := filters.TranslateAnimals(q.Filters, org, q.Search)
			require.False(t, tr.NeedsFullFetch())
			orders := filters.Orders(q.Filters.Sort.Resolve(filters.DefaultAnimalSort))

			for _, size := range pageSizes {
				for page := 1; page <= 26/size+2; page++ {
					srv, err := svc.animalsServer(ctx, tr, orders, page, size)
					require.NoError(t, err)
					cli, err := svc.animalsClient(ctx, tr, orders, page, size)
					require.NoError(t, err)

					assert.Equal(t, ids(cli.Items, animalID), ids(srv.Items, animalID), "page=%d size=%d", page, size)
					assert.Equal(t, cli.Total, srv.Total, "page=%d size=%d", page, size)
					assert.Equal(t, cli.TotalPages, srv.TotalPages)
				}
			}
		})
	}
}

func TestPathEquivalence_Groups(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	cases := map[string]filters.GroupQuery{
		"none":       {},
		"priority":   {Filters: filters.GroupFilters{Priority: true}},
		"assigned":   {Filters: filters.GroupFilters{Assigned: ptr(true)}},
		"unassigned": {Filters: filters.GroupFilters{Assigned: ptr(false), Sort: filters.SortOldest}},
		"search":     {Search: "milo"},
	}

	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			tr := filters.TranslateGroups(q.Filters, org, q.Search)
			require.False(t, tr.NeedsFullFetch())
			orders := filters.Orders(q.Filters.Sort.Resolve(filters.DefaultGroupSort))

			for _, size := range pageSizes {
				for page := 1; page <= 7; page++ {
					srv, err := svc.groupsServer(ctx, org, tr, orders, page, size)
					require.NoError(t, err)
					cli, err := svc.groupsClient(ctx, org, tr, orders, page, size)
					require.NoError(t, err)

					assert.Equal(t, ids(cli.Items, viewID), ids(srv.Items, viewID), "page=%d size=%d", page, size)
					assert.Equal(t, cli.Total, srv.Total)
					for i := range srv.Items {
						assert.Equal(t, cli.Items[i].Visibility, srv.Items[i].Visibility)
					}
				}
			}
		})
	}
}

func TestListAnimals_UsesServerPath(t *testing.T) {
	svc := newSeededService(t)

	page, err := svc.ListAnimals(context.Background(), org, filters.AnimalQuery{Page: 2, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, PathServer, page.Path)
	assert.Equal(t, 24, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 10)
}

func TestListAnimals_NewestFirstWithIDTieBreak(t *testing.T) {
	svc := newSeededService(t)

	page, err := svc.ListAnimals(context.Background(), org, filters.AnimalQuery{Page: 1, PageSize: 4})
	require.NoError(t, err)

	assert.Equal(t, []string{"a22", "a23", "a20", "a21"}, ids(page.Items, animalID))
}

func TestListGroups_DerivedVisibilityForcesClientPath(t *testing.T) {
	svc := newSeededService(t)

	page, err := svc.ListGroups(context.Background(), org, filters.GroupQuery{
		Filters: filters.GroupFilters{Visibility: ptr(animals.VisibilityAvailableNow)},
		Page:    1, PageSize: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, PathClient, page.Path)
	// g2 está en conflicto: no tiene visibilidad aunque a18 sea available_now.
	assert.Equal(t, []string{"g1"}, ids(page.Items, viewID))
	assert.Equal(t, 1, page.Total)
}

func TestListGroups_ExistentialLifeStage(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	cases := []struct {
		stage animals.LifeStage
		want  []string
	}{
		{animals.LifeStageKitten, []string{"g3", "g1"}},
		{animals.LifeStageAdult, []string{"g3", "g1"}},
		{animals.LifeStageSenior, []string{"g2", "g3"}},
		{animals.LifeStageUnknown, []string{"g2", "g4"}},
	}

	for _, tc := range cases {
		page, err := svc.ListGroups(ctx, org, filters.GroupQuery{
			Filters: filters.GroupFilters{LifeStage: ptr(tc.stage)},
			Page:    1, PageSize: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, PathClient, page.Path)
		assert.Equal(t, tc.want, ids(page.Items, viewID), "life stage %s", tc.stage)
	}

	// g1 = {kitten, adult}: pasa kitten y adult, no senior.
	page, err := svc.ListGroups(ctx, org, filters.GroupQuery{
		Filters: filters.GroupFilters{LifeStage: ptr(animals.LifeStageSenior), Priority: true},
		Page:    1, PageSize: 20,
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListNeeded_ExcludesHiddenConflictingAndEmptyGroups(t *testing.T) {
	svc := newSeededService(t)

	page, err := svc.ListNeeded(context.Background(), org, filters.NeededQuery{
		Filters: filters.FostersNeededFilters{Type: ptr(filters.TypeGroups)},
		Page:    1, PageSize: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"group:g1", "group:g3"}, ids(page.Items, neededID))
	for _, it := range page.Items {
		assert.NotEqual(t, animals.VisibilityNotVisible, it.Visibility)
		require.NotNil(t, it.Group)
	}
}

func TestListNeeded_SinglesAreUngroupedAndVisible(t *testing.T) {
	svc := newSeededService(t)

	page, err := svc.ListNeeded(context.Background(), org, filters.NeededQuery{
		Filters: filters.FostersNeededFilters{Type: ptr(filters.TypeSingles)},
		Page:    1, PageSize: 50,
	})
	require.NoError(t, err)

	// a00..a15 sin grupo; i%4==3 es not_visible.
	assert.Equal(t, 12, page.Total)
	for _, it := range page.Items {
		require.Equal(t, KindAnimal, it.Kind)
		assert.False(t, it.Animal.InGroup())
		assert.NotEqual(t, animals.VisibilityNotVisible, it.Visibility)
	}
}

func TestListNeeded_SexFilterExcludesGroups(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	for _, typ := range []*filters.NeededType{nil, ptr(filters.TypeGroups)} {
		page, err := svc.ListNeeded(ctx, org, filters.NeededQuery{
			Filters: filters.FostersNeededFilters{Type: typ, Sex: ptr(animals.SexFemale)},
			Page:    1, PageSize: 50,
		})
		require.NoError(t, err)
		for _, it := range page.Items {
			assert.Equal(t, KindAnimal, it.Kind)
			assert.Equal(t, animals.SexFemale, it.Animal.SexSpayNeuterStatus)
		}
	}

	// Sin sex, los mismos grupos sí califican.
	page, err := svc.ListNeeded(ctx, org, filters.NeededQuery{Page: 1, PageSize: 50})
	require.NoError(t, err)
	groups := 0
	for _, it := range page.Items {
		if it.Kind == KindGroup {
			groups++
		}
	}
	assert.Equal(t, 2, groups)
}

func TestListNeeded_LifeStageExactVsExistential(t *testing.T) {
	svc := newSeededService(t)

	page, err := svc.ListNeeded(context.Background(), org, filters.NeededQuery{
		Filters: filters.FostersNeededFilters{LifeStage: ptr(animals.LifeStageAdult)},
		Page:    1, PageSize: 50,
	})
	require.NoError(t, err)

	var got []string
	for _, it := range page.Items {
		if it.Kind == KindAnimal {
			assert.Equal(t, animals.LifeStageAdult, it.Animal.LifeStage)
			continue
		}
		got = append(got, it.ID)
	}
	assert.Equal(t, []string{"g1", "g3"}, got)
}

func TestListNeeded_RankingAndPagination(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAnimalRepo()
	groups := memory.NewGroupRepo()

	mk := func(id string, hours int, priority bool, gid *string) animals.Animal {
		return animals.Animal{
			ID: id, OrganizationID: org, Status: animals.StatusInShelter, LifeStage: animals.LifeStageAdult,
			FosterVisibility: animals.VisibilityAvailableNow, Priority: priority, GroupID: gid,
			CreatedAt: base.Add(time.Duration(hours) * time.Hour),
		}
	}
	gid := "g"
	for _, a := range []animals.Animal{
		mk("s-old", 0, false, nil),
		mk("s-new", 5, false, nil),
		mk("s-prio", 9, true, nil),
		mk("s-tie", 3, false, nil),
		mk("m1", 0, false, &gid),
	} {
		require.NoError(t, repo.Create(ctx, a))
	}
	require.NoError(t, groups.Create(ctx, animals.Group{ID: gid, OrganizationID: org, AnimalIDs: []string{"m1"}, CreatedAt: base.Add(3 * time.Hour)}))

	svc := NewService(repo, groups, nil)

	oldest, err := svc.ListNeeded(ctx, org, filters.NeededQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"animal:s-prio", "animal:s-old", "animal:s-tie", "group:g", "animal:s-new"}, ids(oldest.Items, neededID))

	newest, err := svc.ListNeeded(ctx, org, filters.NeededQuery{Filters: filters.FostersNeededFilters{Sort: filters.SortNewest}, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"animal:s-prio", "animal:s-new", "animal:s-tie", "group:g", "animal:s-old"}, ids(newest.Items, neededID))

	// La paginación corta la secuencia mezclada, no cada fuente.
	p2, err := svc.ListNeeded(ctx, org, filters.NeededQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"animal:s-tie", "group:g"}, ids(p2.Items, neededID))
	assert.Equal(t, 5, p2.Total)
	assert.Equal(t, 3, p2.TotalPages)

	p4, err := svc.ListNeeded(ctx, org, filters.NeededQuery{Page: 4, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, p4.Items)
	assert.NotNil(t, p4.Items)
}

type offline struct{}

func (offline) Online() bool { return false }

func TestListings_OfflineEmptyFetchIsRetryableError(t *testing.T) {
	svc := NewService(memory.NewAnimalRepo(), memory.NewGroupRepo(), nil, WithConnectivity(offline{}))
	ctx := context.Background()

	_, err := svc.ListAnimals(ctx, org, filters.AnimalQuery{Page: 1, PageSize: 20})
	assertRetryable(t, err)

	_, err = svc.ListGroups(ctx, org, filters.GroupQuery{Filters: filters.GroupFilters{LifeStage: ptr(animals.LifeStageKitten)}, Page: 1, PageSize: 20})
	assertRetryable(t, err)

	_, err = svc.ListNeeded(ctx, org, filters.NeededQuery{Page: 1, PageSize: 20})
	assertRetryable(t, err)
}

func TestListings_OfflineWithDataStillServes(t *testing.T) {
	svc := newSeededService(t, WithConnectivity(offline{}))

	page, err := svc.ListAnimals(context.Background(), org, filters.AnimalQuery{Page: 1, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, 24, page.Total)
}

func assertRetryable(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var fe *FetchError
	require.True(t, errors.As(err, &fe), "expected *FetchError, got %T", err)
	assert.True(t, fe.Retryable())
	assert.ErrorIs(t, err, ErrOffline)
}

// brokenRepo simula un record store caído.
type brokenRepo struct {
	animals.Repository
	err error
}

func (r brokenRepo) List(context.Context, query.Predicate, query.ListOptions) ([]animals.Animal, error) {
	return nil, r.err
}

func (r brokenRepo) Count(context.Context, query.Predicate) (int, error) {
	return 0, r.err
}

func TestListings_StoreErrors(t *testing.T) {
	ctx := context.Background()

	svc := NewService(brokenRepo{Repository: memory.NewAnimalRepo(), err: animals.ErrUnavailable}, memory.NewGroupRepo(), nil)
	_, err := svc.ListAnimals(ctx, org, filters.AnimalQuery{Page: 1, PageSize: 20})
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Retryable())

	svc = NewService(brokenRepo{Repository: memory.NewAnimalRepo(), err: errors.New("malformed row")}, memory.NewGroupRepo(), nil)
	_, err = svc.ListNeeded(ctx, org, filters.NeededQuery{Page: 1, PageSize: 20})
	require.ErrorAs(t, err, &fe)
	assert.False(t, fe.Retryable())
}

func TestListings_StoreErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Output: &buf})

	svc := NewService(brokenRepo{Repository: memory.NewAnimalRepo(), err: animals.ErrUnavailable}, memory.NewGroupRepo(), log)
	_, err := svc.ListAnimals(context.Background(), org, filters.AnimalQuery{Page: 1, PageSize: 20})
	require.Error(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "listing failed", entry["msg"])
	assert.Equal(t, "animals", entry["listing"])
	assert.Contains(t, entry["error"], animals.ErrUnavailable.Error())
}

type recordingObserver struct {
	paths map[string]Path
}

func (o *recordingObserver) ObserveListing(listing string, path Path, _ time.Duration, _ error) {
	o.paths[listing] = path
}

func TestListings_ObserverSeesPath(t *testing.T) {
	obs := &recordingObserver{paths: map[string]Path{}}
	svc := newSeededService(t, WithObserver(obs))
	ctx := context.Background()

	_, err := svc.ListAnimals(ctx, org, filters.AnimalQuery{Page: 1, PageSize: 5})
	require.NoError(t, err)
	_, err = svc.ListGroups(ctx, org, filters.GroupQuery{Filters: filters.GroupFilters{Visibility: ptr(animals.VisibilityAvailableNow)}, Page: 1, PageSize: 5})
	require.NoError(t, err)
	_, err = svc.ListNeeded(ctx, org, filters.NeededQuery{Page: 1, PageSize: 5})
	require.NoError(t, err)

	assert.Equal(t, map[string]Path{"animals": PathServer, "groups": PathClient, "needed": PathClient}, obs.paths)
}
