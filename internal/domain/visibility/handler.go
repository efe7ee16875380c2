package visibility

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/groups/{groupID}/visibility", getGroupVisibilityHandler(svc))
	r.Patch("/animals/{animalID}/visibility", updateVisibilityHandler(svc))
}

type groupVisibilityResponse struct {
	GroupID     string                     `json:"group_id"`
	Visibility  *animals.FosterVisibility  `json:"visibility"`
	HasConflict bool                       `json:"has_conflict"`
	Values      []animals.FosterVisibility `json:"values"`
	Members     []memberVisibility         `json:"members"`
}

type memberVisibility struct {
	ID               string                   `json:"id"`
	Name             string                   `json:"name"`
	FosterVisibility animals.FosterVisibility `json:"foster_visibility"`
}

// updateVisibilityRequest: cascade=null pide evaluar; true confirma la
// cascada; false cancela el cambio si hay conflicto.
type updateVisibilityRequest struct {
	FosterVisibility string `json:"foster_visibility"`
	Cascade          *bool  `json:"cascade"`
}

type updateVisibilityResponse struct {
	Animal   animals.AnimalResponse `json:"animal"`
	Applied  bool                   `json:"applied"`
	Cascade  *cascadeResponse       `json:"cascade,omitempty"`
	Conflict *conflictResponse      `json:"conflict,omitempty"`
}

type cascadeResponse struct {
	Updated     []string          `json:"updated"`
	Failed      map[string]string `json:"failed"`
	FailedCount int               `json:"failed_count"`
}

type conflictResponse struct {
	GroupID      string                     `json:"group_id"`
	Proposed     animals.FosterVisibility   `json:"proposed"`
	OthersShared *animals.FosterVisibility  `json:"others_shared"`
	OthersValues []animals.FosterVisibility `json:"others_values"`
}

// getGroupVisibilityHandler godoc
// @Summary Visibilidad derivada de un grupo
// @Description Calcula la foster visibility compartida por los miembros del grupo, o reporta conflicto si discrepan.
// @Tags groups
// @Produce json
// @Param groupID path string true "ID del grupo"
// @Success 200 {object} groupVisibilityResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "group not found"
// @Failure 503 {string} string "record store unavailable"
// @Router /groups/{groupID}/visibility [get]
func getGroupVisibilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.TenantFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		st, err := svc.GroupState(r.Context(), orgID, chi.URLParam(r, "groupID"))
		if err != nil {
			writeError(w, err, "group not found")
			return
		}

		out := groupVisibilityResponse{
			GroupID:     st.Group.ID,
			Visibility:  st.Result.Shared,
			HasConflict: st.Result.HasConflict,
			Values:      st.Result.Values,
			Members:     make([]memberVisibility, 0, len(st.Members)),
		}
		for _, m := range st.Members {
			out.Members = append(out.Members, memberVisibility{
				ID:               m.ID,
				Name:             m.DisplayName(),
				FosterVisibility: m.FosterVisibility,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// updateVisibilityHandler godoc
// @Summary Cambiar foster visibility de un animal
// @Description Si el animal está en un grupo y el cambio lo dejaría en conflicto, responde 409 con el detalle salvo que venga cascade. cascade=true aplica el valor a todo el grupo; cascade=false descarta el cambio.
// @Tags animals
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param payload body updateVisibilityRequest true "Nuevo valor y decisión de cascada"
// @Success 200 {object} updateVisibilityResponse
// @Failure 400 {string} string "invalid json / visibilidad inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "animal not found"
// @Failure 409 {object} updateVisibilityResponse "requiere decisión de cascada"
// @Failure 503 {string} string "record store unavailable"
// @Router /animals/{animalID}/visibility [patch]
func updateVisibilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.TenantFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateVisibilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		proposed := animals.FosterVisibility(strings.TrimSpace(req.FosterVisibility))
		if !proposed.Valid() {
			http.Error(w, "invalid foster_visibility", http.StatusBadRequest)
			return
		}

		sess, err := svc.Begin(r.Context(), orgID, chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err, "animal not found")
			return
		}

		out, err := sess.Submit(r.Context(), proposed)
		if err != nil {
			writeError(w, err, "animal not found")
			return
		}

		if !out.NeedsDecision {
			writeJSON(w, http.StatusOK, updateVisibilityResponse{
				Animal:  animals.ToAnimalResponse(out.Animal),
				Applied: out.Applied,
			})
			return
		}

		conflict := toConflictResponse(out.Conflict)

		switch {
		case req.Cascade == nil:
			writeJSON(w, http.StatusConflict, updateVisibilityResponse{
				Animal:   animals.ToAnimalResponse(out.Animal),
				Conflict: conflict,
			})
		case *req.Cascade:
			res, err := sess.Confirm(r.Context())
			if err != nil {
				writeError(w, err, "animal not found")
				return
			}
			cr := &cascadeResponse{
				Updated:     make([]string, 0, len(res.Updated)),
				Failed:      map[string]string{},
				FailedCount: res.FailedCount(),
			}
			for _, a := range res.Updated {
				cr.Updated = append(cr.Updated, a.ID)
			}
			for id, e := range res.Failed {
				cr.Failed[id] = e.Error()
			}
			writeJSON(w, http.StatusOK, updateVisibilityResponse{
				Animal:  animals.ToAnimalResponse(res.Animal),
				Applied: true,
				Cascade: cr,
			})
		default:
			_ = sess.Cancel()
			writeJSON(w, http.StatusOK, updateVisibilityResponse{
				Animal:   animals.ToAnimalResponse(sess.Animal()),
				Applied:  false,
				Conflict: conflict,
			})
		}
	}
}

func toConflictResponse(c *Conflict) *conflictResponse {
	if c == nil {
		return nil
	}
	return &conflictResponse{
		GroupID:      c.GroupID,
		Proposed:     c.Proposed,
		OthersShared: c.OthersShared,
		OthersValues: c.OthersValues,
	}
}

// writeError: conectividad y timeouts salen como 503 reintentable.
func writeError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, animals.ErrNotFound):
		http.Error(w, notFound, http.StatusNotFound)
	case animals.Retryable(err):
		w.Header().Set("Retry-After", "5")
		http.Error(w, animals.ErrUnavailable.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
