package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"foster-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registra rutas planas: GET /animals y GET /groups son del
// paquete listing y chi no permite montar dos subrouters sobre el mismo path.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/animals", createAnimalHandler(svc))
	r.Get("/animals/{animalID}", getAnimalHandler(svc))

	r.Post("/groups", createGroupHandler(svc))
	r.Get("/groups/{groupID}", getGroupHandler(svc))
}

type createAnimalRequest struct {
	Name                string  `json:"name"`
	Status              string  `json:"status"`
	SexSpayNeuterStatus string  `json:"sex_spay_neuter_status"`
	LifeStage           string  `json:"life_stage"`
	Priority            bool    `json:"priority"`
	FosterVisibility    string  `json:"foster_visibility"`
	CurrentFosterID     *string `json:"current_foster_id"`
	DateOfBirth         string  `json:"date_of_birth"` // YYYY-MM-DD opcional
}

// AnimalResponse es la representación JSON de un animal.
type AnimalResponse struct {
	ID                  string     `json:"id"`
	OrganizationID      string     `json:"organization_id"`
	Name                string     `json:"name"`
	Status              Status     `json:"status"`
	SexSpayNeuterStatus string     `json:"sex_spay_neuter_status,omitempty"`
	LifeStage           LifeStage  `json:"life_stage"`
	Priority            bool       `json:"priority"`
	FosterVisibility    string     `json:"foster_visibility"`
	GroupID             *string    `json:"group_id"`
	CurrentFosterID     *string    `json:"current_foster_id"`
	DateOfBirth         *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type createGroupRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	AnimalIDs       []string `json:"animal_ids"`
	Priority        bool     `json:"priority"`
	CurrentFosterID *string  `json:"current_foster_id"`
}

// GroupResponse es la representación JSON de un grupo.
type GroupResponse struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	AnimalIDs       []string  `json:"animal_ids"`
	Priority        bool      `json:"priority"`
	CurrentFosterID *string   `json:"current_foster_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type createGroupResponse struct {
	Group GroupResponse `json:"group"`

	// Miembros cuyo group_id no se pudo actualizar (id -> error).
	MembershipErrors map[string]string `json:"membership_errors,omitempty"`
}

// createAnimalHandler godoc
// @Summary Registrar animal
// @Description Crea un animal en la organización del usuario. Defaults: status=in_shelter, life_stage=unknown, foster_visibility=not_visible.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-Org-ID header string false "Solo en modo dev, organización"
// @Param payload body createAnimalRequest true "Datos del animal"
// @Success 201 {object} AnimalResponse
// @Failure 400 {string} string "invalid json / valores fuera de enum"
// @Failure 401 {string} string "unauthorized"
// @Router /animals [post]
func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.TenantFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var dob *time.Time
		if strings.TrimSpace(req.DateOfBirth) != "" {
			t, err := time.Parse("2006-01-02", req.DateOfBirth)
			if err != nil {
				http.Error(w, "date_of_birth must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			dob = &t
		}

		a, err := svc.CreateAnimal(r.Context(), orgID, CreateAnimalInput{
			Name:                req.Name,
			Status:              Status(strings.TrimSpace(req.Status)),
			SexSpayNeuterStatus: SexSpayNeuterStatus(strings.TrimSpace(req.SexSpayNeuterStatus)),
			LifeStage:           LifeStage(strings.TrimSpace(req.LifeStage)),
			Priority:            req.Priority,
			FosterVisibility:    FosterVisibility(strings.TrimSpace(req.FosterVisibility)),
			CurrentFosterID:     req.CurrentFosterID,
			DateOfBirth:         dob,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ToAnimalResponse(a))
	}
}

// getAnimalHandler godoc
// @Summary Ver animal
// @Tags animals
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} AnimalResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "animal not found"
// @Router /animals/{animalID} [get]
func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.TenantFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetAnimal(r.Context(), orgID, chi.URLParam(r, "animalID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "animal not found", http.StatusNotFound)
				return
			}
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ToAnimalResponse(a))
	}
}

// createGroupHandler godoc
// @Summary Crear grupo de animales
// @Description Crea el grupo y asigna group_id a cada miembro (best-effort). Los miembros que no se pudieron actualizar vuelven en membership_errors.
// @Tags groups
// @Accept json
// @Produce json
// @Param payload body createGroupRequest true "Datos del grupo"
// @Success 201 {object} createGroupResponse
// @Failure 400 {string} string "invalid json / animal desconocido o ya agrupado"
// @Failure 401 {string} string "unauthorized"
// @Router /groups [post]
func createGroupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.TenantFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.CreateGroup(r.Context(), orgID, CreateGroupInput{
			Name:            req.Name,
			Description:     req.Description,
			AnimalIDs:       req.AnimalIDs,
			Priority:        req.Priority,
			CurrentFosterID: req.CurrentFosterID,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		out := createGroupResponse{Group: ToGroupResponse(res.Group)}
		if len(res.MemberErrors) > 0 {
			out.MembershipErrors = make(map[string]string, len(res.MemberErrors))
			for id, e := range res.MemberErrors {
				out.MembershipErrors[id] = e.Error()
			}
		}

		writeJSON(w, http.StatusCreated, out)
	}
}

// getGroupHandler godoc
// @Summary Ver grupo
// @Tags groups
// @Produce json
// @Param groupID path string true "ID del grupo"
// @Success 200 {object} GroupResponse
// @Failure 404 {string} string "group not found"
// @Router /groups/{groupID} [get]
func getGroupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.TenantFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		g, err := svc.GetGroup(r.Context(), orgID, chi.URLParam(r, "groupID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "group not found", http.StatusNotFound)
				return
			}
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ToGroupResponse(g))
	}
}

func ToAnimalResponse(a Animal) AnimalResponse {
	return AnimalResponse{
		ID:                  a.ID,
		OrganizationID:      a.OrganizationID,
		Name:                a.DisplayName(),
		Status:              a.Status,
		SexSpayNeuterStatus: string(a.SexSpayNeuterStatus),
		LifeStage:           a.LifeStage,
		Priority:            a.Priority,
		FosterVisibility:    string(a.FosterVisibility),
		GroupID:             a.GroupID,
		CurrentFosterID:     a.CurrentFosterID,
		DateOfBirth:         a.DateOfBirth,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func ToGroupResponse(g Group) GroupResponse {
	ids := g.AnimalIDs
	if ids == nil {
		ids = []string{}
	}
	return GroupResponse{
		ID:              g.ID,
		OrganizationID:  g.OrganizationID,
		Name:            g.Name,
		Description:     g.Description,
		AnimalIDs:       ids,
		Priority:        g.Priority,
		CurrentFosterID: g.CurrentFosterID,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case Retryable(err):
		w.Header().Set("Retry-After", "5")
		http.Error(w, ErrUnavailable.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
