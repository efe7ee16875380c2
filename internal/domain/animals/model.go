package animals

import (
	"strings"
	"time"
)

// Status es el estado operativo del animal.
type Status string

const (
	StatusInFoster     Status = "in_foster"
	StatusAdopted      Status = "adopted"
	StatusMedicalHold  Status = "medical_hold"
	StatusInShelter    Status = "in_shelter"
	StatusTransferring Status = "transferring"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInFoster, StatusAdopted, StatusMedicalHold, StatusInShelter, StatusTransferring:
		return true
	}
	return false
}

// SexSpayNeuterStatus combina sexo biológico y esterilización.
// Opcional: "" = desconocido.
type SexSpayNeuterStatus string

const (
	SexFemale       SexSpayNeuterStatus = "female"
	SexMale         SexSpayNeuterStatus = "male"
	SexSpayedFemale SexSpayNeuterStatus = "spayed_female"
	SexNeuteredMale SexSpayNeuterStatus = "neutered_male"
)

func (s SexSpayNeuterStatus) Valid() bool {
	switch s {
	case SexFemale, SexMale, SexSpayedFemale, SexNeuteredMale:
		return true
	}
	return false
}

type LifeStage string

const (
	LifeStageKitten  LifeStage = "kitten"
	LifeStageAdult   LifeStage = "adult"
	LifeStageSenior  LifeStage = "senior"
	LifeStageUnknown LifeStage = "unknown"
)

func (l LifeStage) Valid() bool {
	switch l {
	case LifeStageKitten, LifeStageAdult, LifeStageSenior, LifeStageUnknown:
		return true
	}
	return false
}

// FosterVisibility controla si el animal aparece en el listado público
// de "necesita foster".
type FosterVisibility string

const (
	VisibilityAvailableNow    FosterVisibility = "available_now"
	VisibilityAvailableFuture FosterVisibility = "available_future"
	VisibilityFosterPending   FosterVisibility = "foster_pending"
	VisibilityNotVisible      FosterVisibility = "not_visible"
)

func (v FosterVisibility) Valid() bool {
	switch v {
	case VisibilityAvailableNow, VisibilityAvailableFuture, VisibilityFosterPending, VisibilityNotVisible:
		return true
	}
	return false
}

// UnnamedLabel se muestra cuando el animal no tiene nombre.
const UnnamedLabel = "Unnamed"

// Animal es un registro individual del refugio.
type Animal struct {
	ID             string
	OrganizationID string

	Name                string
	Status              Status
	SexSpayNeuterStatus SexSpayNeuterStatus
	LifeStage           LifeStage
	Priority            bool
	FosterVisibility    FosterVisibility

	// Referencias débiles (nil = sin grupo / sin foster).
	GroupID         *string
	CurrentFosterID *string

	DateOfBirth *time.Time

	CreatedAt time.Time // inmutable
	UpdatedAt time.Time
}

func (a Animal) DisplayName() string {
	if n := strings.TrimSpace(a.Name); n != "" {
		return n
	}
	return UnnamedLabel
}

func (a Animal) InGroup() bool {
	return a.GroupID != nil && *a.GroupID != ""
}

// Patch es un update parcial: nil = no tocar.
// ClearGroup fuerza group_id a NULL (un *string nil no alcanza para expresarlo).
type Patch struct {
	Name             *string
	Status           *Status
	Priority         *bool
	FosterVisibility *FosterVisibility
	GroupID          *string
	ClearGroup       bool
	CurrentFosterID  *string
}

// Apply devuelve una copia del animal con el patch aplicado.
func (p Patch) Apply(a Animal, now time.Time) Animal {
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
	if p.FosterVisibility != nil {
		a.FosterVisibility = *p.FosterVisibility
	}
	if p.ClearGroup {
		a.GroupID = nil
	} else if p.GroupID != nil {
		g := *p.GroupID
		a.GroupID = &g
	}
	if p.CurrentFosterID != nil {
		f := *p.CurrentFosterID
		a.CurrentFosterID = &f
	}
	a.UpdatedAt = now
	return a
}

// BatchResult es el resultado por id de un BatchUpdate (best-effort).
type BatchResult struct {
	ID     string
	Animal Animal
	Err    error
}
