package visibility

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/platform/logger"
)

var (
	ErrBadState     = errors.New("invalid session state")
	ErrInvalidInput = errors.New("invalid input")
)

// State del flujo de resolución de conflictos de una sesión de edición:
// Idle -> Evaluating -> {Idle | AwaitingDecision} -> (CascadeApplying | Idle).
type State string

const (
	StateIdle             State = "idle"
	StateEvaluating       State = "evaluating"
	StateAwaitingDecision State = "awaiting_decision"
	StateCascadeApplying  State = "cascade_applying"
)

// CascadeObserver recibe el resultado de cada cascada (métricas).
type CascadeObserver interface {
	ObserveCascade(updated, failed int)
}

type Service struct {
	animals  animals.Repository
	groups   animals.GroupRepository
	log      logger.Logger
	observer CascadeObserver
}

func NewService(repo animals.Repository, groups animals.GroupRepository, log logger.Logger, observer CascadeObserver) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		animals:  repo,
		groups:   groups,
		log:      log,
		observer: observer,
	}
}

// GroupState es la visibilidad derivada de un grupo junto con sus miembros.
type GroupState struct {
	Group   animals.Group
	Members []animals.Animal
	Result  Result
}

func (s *Service) GroupState(ctx context.Context, orgID, groupID string) (GroupState, error) {
	g, err := s.groups.GetByID(ctx, strings.TrimSpace(orgID), strings.TrimSpace(groupID))
	if err != nil {
		return GroupState{}, err
	}
	members, err := animals.LoadMembers(ctx, s.animals, g)
	if err != nil {
		return GroupState{}, err
	}
	return GroupState{Group: g, Members: members, Result: GroupVisibility(members, nil)}, nil
}

// Session es una sesión de edición de un animal. Vive lo que dura el
// formulario; no es segura para uso concurrente y no toma locks: si otro
// editor cambia el grupo en paralelo gana la última escritura.
type Session struct {
	svc   *Service
	orgID string

	animal  animals.Animal
	group   *animals.Group
	members []animals.Animal

	overrides Overrides
	state     State
	proposed  animals.FosterVisibility
}

// Begin carga el animal y, si tiene grupo, los miembros del grupo.
func (s *Service) Begin(ctx context.Context, orgID, animalID string) (*Session, error) {
	orgID = strings.TrimSpace(orgID)
	a, err := s.animals.GetByID(ctx, orgID, strings.TrimSpace(animalID))
	if err != nil {
		return nil, err
	}

	sess := &Session{
		svc:       s,
		orgID:     orgID,
		animal:    a,
		overrides: Overrides{},
		state:     StateIdle,
	}

	if !a.InGroup() {
		return sess, nil
	}

	g, err := s.groups.GetByID(ctx, orgID, *a.GroupID)
	if err != nil {
		if errors.Is(err, animals.ErrNotFound) {
			// group_id colgado: se edita como animal suelto.
			s.log.Warn("animal references missing group", map[string]any{
				"animal_id": a.ID,
				"group_id":  *a.GroupID,
			})
			return sess, nil
		}
		return nil, err
	}

	members, err := animals.LoadMembers(ctx, s.animals, g)
	if err != nil {
		return nil, err
	}
	sess.group = &g
	sess.members = members
	return sess, nil
}

func (s *Session) State() State              { return s.state }
func (s *Session) Animal() animals.Animal    { return s.animal }
func (s *Session) Members() []animals.Animal { return s.members }

func (s *Session) Group() (animals.Group, bool) {
	if s.group == nil {
		return animals.Group{}, false
	}
	return *s.group, true
}

// Stage deja un valor en staging para un miembro del grupo (o el propio animal).
func (s *Session) Stage(animalID string, v animals.FosterVisibility) error {
	if !v.Valid() {
		return ErrInvalidInput
	}
	if animalID != s.animal.ID && (s.group == nil || !s.group.Has(animalID)) {
		return fmt.Errorf("%w: %s is not a member of the group", ErrInvalidInput, animalID)
	}
	s.overrides[animalID] = v
	return nil
}

func (s *Session) Unstage(animalID string) {
	delete(s.overrides, animalID)
}

// Preview calcula la visibilidad del grupo con los valores en staging.
func (s *Session) Preview() Result {
	if s.group == nil {
		return GroupVisibility([]animals.Animal{s.animal}, s.overrides)
	}
	return GroupVisibility(s.members, s.overrides)
}

// Conflict describe por qué un cambio necesita decisión del coordinador.
type Conflict struct {
	GroupID  string
	Proposed animals.FosterVisibility

	// OthersShared es el valor que comparten los demás miembros (nil si ya discrepan).
	OthersShared *animals.FosterVisibility
	OthersValues []animals.FosterVisibility
}

type Outcome struct {
	Applied       bool
	NeedsDecision bool
	Animal        animals.Animal
	Conflict      *Conflict
}

// Submit evalúa el cambio propuesto. Sin conflicto se guarda directamente;
// con conflicto la sesión queda esperando Confirm o Cancel.
func (s *Session) Submit(ctx context.Context, proposed animals.FosterVisibility) (Outcome, error) {
	if s.state != StateIdle {
		return Outcome{}, ErrBadState
	}
	if !proposed.Valid() {
		return Outcome{}, ErrInvalidInput
	}

	s.state = StateEvaluating
	s.proposed = proposed
	s.overrides[s.animal.ID] = proposed

	if proposed == s.animal.FosterVisibility {
		s.reset()
		return Outcome{Animal: s.animal}, nil
	}

	if s.group != nil && WouldConflictWith(s.animal, proposed, s.members, s.overrides) {
		s.state = StateAwaitingDecision
		others := distinct(s.members, s.overrides, s.animal.ID)
		c := &Conflict{GroupID: s.group.ID, Proposed: proposed, OthersValues: others}
		if len(others) == 1 {
			v := others[0]
			c.OthersShared = &v
		}
		return Outcome{NeedsDecision: true, Animal: s.animal, Conflict: c}, nil
	}

	updated, err := s.svc.animals.Update(ctx, s.orgID, s.animal.ID, animals.Patch{FosterVisibility: &proposed})
	if err != nil {
		s.reset()
		return Outcome{}, err
	}
	s.replace(updated)
	s.reset()
	return Outcome{Applied: true, Animal: updated}, nil
}

// CascadeResult separa el resultado del animal que disparó el cambio del
// resultado del batch sobre los demás miembros.
type CascadeResult struct {
	Animal  animals.Animal
	Updated []animals.Animal
	Failed  map[string]error
}

func (r CascadeResult) FailedCount() int { return len(r.Failed) }

// Confirm aplica el valor propuesto al animal y en cascada al resto del grupo.
// Si el update del animal falla no se toca a nadie más. Los fallos del batch
// se informan en Failed y no revierten lo ya aplicado.
func (s *Session) Confirm(ctx context.Context) (CascadeResult, error) {
	if s.state != StateAwaitingDecision {
		return CascadeResult{}, ErrBadState
	}
	s.state = StateCascadeApplying
	defer s.reset()

	proposed := s.proposed
	patch := animals.Patch{FosterVisibility: &proposed}

	updated, err := s.svc.animals.Update(ctx, s.orgID, s.animal.ID, patch)
	if err != nil {
		return CascadeResult{}, fmt.Errorf("update animal %s: %w", s.animal.ID, err)
	}
	s.replace(updated)

	res := CascadeResult{Animal: updated, Updated: []animals.Animal{}, Failed: map[string]error{}}

	others := Others(s.members, s.animal.ID)
	ids := make([]string, 0, len(others))
	for _, m := range others {
		ids = append(ids, m.ID)
	}

	if len(ids) > 0 {
		for _, r := range s.svc.animals.BatchUpdate(ctx, s.orgID, ids, patch) {
			if r.Err != nil {
				res.Failed[r.ID] = r.Err
				continue
			}
			res.Updated = append(res.Updated, r.Animal)
			s.replace(r.Animal)
		}
	}

	if len(res.Failed) > 0 {
		s.svc.log.Warn("visibility cascade partially failed", map[string]any{
			"group_id":  s.group.ID,
			"animal_id": s.animal.ID,
			"updated":   len(res.Updated),
			"failed":    len(res.Failed),
		})
	}
	if s.svc.observer != nil {
		s.svc.observer.ObserveCascade(len(res.Updated), len(res.Failed))
	}

	return res, nil
}

// Cancel descarta el valor propuesto; el valor guardado no cambia.
func (s *Session) Cancel() error {
	if s.state != StateAwaitingDecision && s.state != StateIdle {
		return ErrBadState
	}
	s.reset()
	return nil
}

func (s *Session) reset() {
	delete(s.overrides, s.animal.ID)
	s.proposed = ""
	s.state = StateIdle
}

func (s *Session) replace(a animals.Animal) {
	if a.ID == s.animal.ID {
		s.animal = a
	}
	for i := range s.members {
		if s.members[i].ID == a.ID {
			s.members[i] = a
		}
	}
}
