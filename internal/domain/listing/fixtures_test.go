package listing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"foster-tracker/internal/adapters/storage/memory"
	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/domain/filters"

	"github.com/stretchr/testify/require"
)

const org = "org-1"

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// dataset devuelve un set fijo de animales y grupos:
//
//	g1 [a16 kitten, a17 adult]  available_now, priority
//	g2 [a18, a19]               en conflicto
//	g3 [a20, a21, a22]          available_future
//	g4 [a23]                    not_visible
//	g5 []                       vacío
//
// created_at se repite de a pares para ejercitar el desempate por id.
func dataset() ([]animals.Animal, []animals.Group) {
	statuses := []animals.Status{
		animals.StatusInShelter, animals.StatusInFoster, animals.StatusMedicalHold,
		animals.StatusAdopted, animals.StatusTransferring,
	}
	sexes := []animals.SexSpayNeuterStatus{
		animals.SexFemale, animals.SexMale, animals.SexSpayedFemale, animals.SexNeuteredMale, "",
	}
	stages := []animals.LifeStage{
		animals.LifeStageKitten, animals.LifeStageAdult, animals.LifeStageSenior, animals.LifeStageUnknown,
	}
	vis := []animals.FosterVisibility{
		animals.VisibilityAvailableNow, animals.VisibilityAvailableFuture,
		animals.VisibilityFosterPending, animals.VisibilityNotVisible,
	}
	names := []string{"Milo", "Luna", "", "Nala", "milo jr"}

	items := make([]animals.Animal, 0, 25)
	for i := 0; i < 24; i++ {
		created := base.Add(time.Duration(i/2) * time.Hour)
		a := animals.Animal{
			ID:                  fmt.Sprintf("a%02d", i),
			OrganizationID:      org,
			Name:                names[i%5],
			Status:              statuses[i%5],
			SexSpayNeuterStatus: sexes[(i/2)%5],
			LifeStage:           stages[i%4],
			Priority:            i%3 == 0,
			FosterVisibility:    vis[i%4],
			CreatedAt:           created,
			UpdatedAt:           created,
		}
		if i%2 == 0 {
			dob := filters.Date(2018+i%5, time.Month(1+i%12), 1)
			a.DateOfBirth = &dob
		}
		if i%4 == 1 {
			f := "foster-1"
			a.CurrentFosterID = &f
		}
		items = append(items, a)
	}

	// Otro tenant: nunca debe aparecer.
	items = append(items, animals.Animal{
		ID: "x00", OrganizationID: "org-2", Name: "Milo",
		Status: animals.StatusInShelter, LifeStage: animals.LifeStageKitten,
		FosterVisibility: animals.VisibilityAvailableNow, Priority: true, CreatedAt: base,
	})

	foster := "foster-2"
	groups := []animals.Group{
		{ID: "g1", Name: "Milo litter", AnimalIDs: []string{"a16", "a17"}, Priority: true, CreatedAt: base.Add(30 * time.Minute)},
		{ID: "g2", Name: "Bonded pair", AnimalIDs: []string{"a18", "a19"}, CreatedAt: base.Add(5 * time.Hour)},
		{ID: "g3", Name: "Seniors", AnimalIDs: []string{"a20", "a21", "a22"}, CurrentFosterID: &foster, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "g4", Name: "Hidden", AnimalIDs: []string{"a23"}, CreatedAt: base.Add(90 * time.Minute)},
		{ID: "g5", Name: "Empty", CreatedAt: base.Add(3 * time.Hour)},
	}
	shared := map[string]animals.FosterVisibility{
		"a16": animals.VisibilityAvailableNow,
		"a17": animals.VisibilityAvailableNow,
		"a18": animals.VisibilityAvailableNow,
		"a19": animals.VisibilityFosterPending,
		"a20": animals.VisibilityAvailableFuture,
		"a21": animals.VisibilityAvailableFuture,
		"a22": animals.VisibilityAvailableFuture,
		"a23": animals.VisibilityNotVisible,
	}
	for gi := range groups {
		groups[gi].OrganizationID = org
		groups[gi].UpdatedAt = groups[gi].CreatedAt
		gid := groups[gi].ID
		for _, id := range groups[gi].AnimalIDs {
			for i := range items {
				if items[i].ID == id {
					items[i].GroupID = &gid
					items[i].FosterVisibility = shared[id]
				}
			}
		}
	}

	return items, groups
}

func seed(t *testing.T, repo animals.Repository, groups animals.GroupRepository) {
	t.Helper()
	ctx := context.Background()

	items, gs := dataset()
	for _, a := range items {
		require.NoError(t, repo.Create(ctx, a))
	}
	for _, g := range gs {
		require.NoError(t, groups.Create(ctx, g))
	}
}

func newSeededService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	repo := memory.NewAnimalRepo()
	groups := memory.NewGroupRepo()
	seed(t, repo, groups)
	return NewService(repo, groups, nil, opts...)
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func animalID(a animals.Animal) string { return a.ID }
func viewID(v GroupView) string        { return v.Group.ID }
func neededID(it NeededItem) string    { return string(it.Kind) + ":" + it.ID }

func ptr[T any](v T) *T { return &v }
