package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foster-tracker/internal/platform/logger"
	"foster-tracker/internal/query"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrUnavailable: el record store no responde (offline, conexión caída).
	// Es reintentable y nunca debe leerse como "cero resultados".
	ErrUnavailable = errors.New("record store unavailable")
)

// Retryable dice si err es de conectividad o timeout contra el record store.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

type Service struct {
	repo   Repository
	groups GroupRepository
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, groups GroupRepository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:   repo,
		groups: groups,
		log:    log,
		now:    time.Now,
	}
}

type CreateAnimalInput struct {
	Name                string
	Status              Status
	SexSpayNeuterStatus SexSpayNeuterStatus
	LifeStage           LifeStage
	Priority            bool
	FosterVisibility    FosterVisibility
	CurrentFosterID     *string
	DateOfBirth         *time.Time
}

func (s *Service) CreateAnimal(ctx context.Context, orgID string, in CreateAnimalInput) (Animal, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return Animal{}, ErrInvalidInput
	}

	// Defaults del formulario de alta.
	if in.Status == "" {
		in.Status = StatusInShelter
	}
	if in.LifeStage == "" {
		in.LifeStage = LifeStageUnknown
	}
	if in.FosterVisibility == "" {
		in.FosterVisibility = VisibilityNotVisible
	}

	if !in.Status.Valid() || !in.LifeStage.Valid() || !in.FosterVisibility.Valid() {
		return Animal{}, ErrInvalidInput
	}
	if in.SexSpayNeuterStatus != "" && !in.SexSpayNeuterStatus.Valid() {
		return Animal{}, ErrInvalidInput
	}

	var foster *string
	if in.CurrentFosterID != nil && strings.TrimSpace(*in.CurrentFosterID) != "" {
		f := strings.TrimSpace(*in.CurrentFosterID)
		foster = &f
	}

	now := s.now()
	a := Animal{
		ID:                  uuid.NewString(),
		OrganizationID:      orgID,
		Name:                strings.TrimSpace(in.Name),
		Status:              in.Status,
		SexSpayNeuterStatus: in.SexSpayNeuterStatus,
		LifeStage:           in.LifeStage,
		Priority:            in.Priority,
		FosterVisibility:    in.FosterVisibility,
		CurrentFosterID:     foster,
		DateOfBirth:         in.DateOfBirth,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) GetAnimal(ctx context.Context, orgID, id string) (Animal, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(orgID), strings.TrimSpace(id))
}

type CreateGroupInput struct {
	Name            string
	Description     string
	AnimalIDs       []string
	Priority        bool
	CurrentFosterID *string
}

// GroupCreated incluye los miembros cuyo group_id no se pudo actualizar.
// El grupo ya quedó creado aunque haya fallos (no hay transacción entre
// los dos registros).
type GroupCreated struct {
	Group        Group
	MemberErrors map[string]error
}

// CreateGroup crea el grupo y setea group_id en cada miembro (best-effort)
// para mantener las dos aristas de la membresía alineadas.
func (s *Service) CreateGroup(ctx context.Context, orgID string, in CreateGroupInput) (GroupCreated, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return GroupCreated{}, ErrInvalidInput
	}

	ids := NormalizeAnimalIDs(in.AnimalIDs)
	for _, id := range ids {
		a, err := s.repo.GetByID(ctx, orgID, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return GroupCreated{}, fmt.Errorf("%w: unknown animal %s", ErrInvalidInput, id)
			}
			return GroupCreated{}, err
		}
		if a.InGroup() {
			return GroupCreated{}, fmt.Errorf("%w: animal %s already in group %s", ErrInvalidInput, id, *a.GroupID)
		}
	}

	var foster *string
	if in.CurrentFosterID != nil && strings.TrimSpace(*in.CurrentFosterID) != "" {
		f := strings.TrimSpace(*in.CurrentFosterID)
		foster = &f
	}

	now := s.now()
	g := Group{
		ID:              uuid.NewString(),
		OrganizationID:  orgID,
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		AnimalIDs:       ids,
		Priority:        in.Priority,
		CurrentFosterID: foster,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.groups.Create(ctx, g); err != nil {
		return GroupCreated{}, err
	}

	out := GroupCreated{Group: g, MemberErrors: map[string]error{}}
	if len(ids) == 0 {
		return out, nil
	}

	gid := g.ID
	for _, r := range s.repo.BatchUpdate(ctx, orgID, ids, Patch{GroupID: &gid}) {
		if r.Err != nil {
			out.MemberErrors[r.ID] = r.Err
		}
	}
	if len(out.MemberErrors) > 0 {
		s.log.Warn("group created with membership drift", map[string]any{
			"group_id": g.ID,
			"org_id":   orgID,
			"failed":   len(out.MemberErrors),
		})
	}

	return out, nil
}

func (s *Service) GetGroup(ctx context.Context, orgID, id string) (Group, error) {
	return s.groups.GetByID(ctx, strings.TrimSpace(orgID), strings.TrimSpace(id))
}

// Members devuelve los animales de g en el orden de g.AnimalIDs.
// Ids colgados (animal borrado) se omiten.
func (s *Service) Members(ctx context.Context, g Group) ([]Animal, error) {
	return LoadMembers(ctx, s.repo, g)
}

// LoadMembers resuelve la arista g.AnimalIDs con un solo fetch.
func LoadMembers(ctx context.Context, repo Repository, g Group) ([]Animal, error) {
	if len(g.AnimalIDs) == 0 {
		return []Animal{}, nil
	}

	found, err := repo.List(ctx, query.Where(
		query.Eq(query.FieldOrganizationID, g.OrganizationID),
		query.In(query.FieldID, g.AnimalIDs),
	), query.ListOptions{})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Animal, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	out := make([]Animal, 0, len(g.AnimalIDs))
	for _, id := range g.AnimalIDs {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}
