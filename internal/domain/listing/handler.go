package listing

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/domain/filters"
	"foster-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, lim filters.Limits) {
	r.Get("/animals", listAnimalsHandler(svc, lim))
	r.Get("/groups", listGroupsHandler(svc, lim))
	r.Get("/needed", listNeededHandler(svc, lim))
}

type pageResponse[T any] struct {
	Items      []T    `json:"items"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
	Path       string `json:"path"`

	// Query es el query string canónico del listado (para links/paginación).
	Query         string `json:"query"`
	ActiveFilters int    `json:"active_filters"`
}

func toPageResponse[T, R any](p Page[T], conv func(T) R, query string, active int) pageResponse[R] {
	items := make([]R, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, conv(it))
	}
	return pageResponse[R]{
		Items:         items,
		Total:         p.Total,
		Page:          p.Page,
		PageSize:      p.PageSize,
		TotalPages:    p.TotalPages,
		Path:          string(p.Path),
		Query:         query,
		ActiveFilters: active,
	}
}

type groupViewResponse struct {
	animals.GroupResponse
	Visibility  *string  `json:"visibility"`
	HasConflict bool     `json:"has_conflict"`
	LifeStages  []string `json:"member_life_stages"`
}

func toGroupViewResponse(v GroupView) groupViewResponse {
	out := groupViewResponse{
		GroupResponse: animals.ToGroupResponse(v.Group),
		HasConflict:   v.Visibility.HasConflict,
		LifeStages:    []string{},
	}
	if val, ok := v.Visibility.Value(); ok {
		s := string(val)
		out.Visibility = &s
	}
	if stages, ok := v.FieldValue(animals.FieldMemberLifeStages).([]string); ok {
		out.LifeStages = stages
	}
	return out
}

type neededItemResponse struct {
	Kind       string    `json:"kind"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Priority   bool      `json:"priority"`
	CreatedAt  time.Time `json:"created_at"`
	Visibility string    `json:"visibility"`

	Animal *animals.AnimalResponse `json:"animal,omitempty"`
	Group  *groupViewResponse      `json:"group,omitempty"`
}

func toNeededItemResponse(it NeededItem) neededItemResponse {
	out := neededItemResponse{
		Kind:       string(it.Kind),
		ID:         it.ID,
		Priority:   it.Priority,
		CreatedAt:  it.CreatedAt,
		Visibility: string(it.Visibility),
	}
	switch {
	case it.Animal != nil:
		a := animals.ToAnimalResponse(*it.Animal)
		out.Name = a.Name
		out.Animal = &a
	case it.Group != nil:
		g := toGroupViewResponse(*it.Group)
		out.Name = g.Name
		out.Group = &g
	}
	return out
}

// listAnimalsHandler godoc
// @Summary Listar animales
// @Description Filtros opcionales: status, sex, lifeStage, visibility, priority, inGroup, assigned, bornAfter, bornBefore, sort (newest|oldest), search, page, pageSize.
// @Tags listings
// @Produce json
// @Param X-Debug-Org-ID header string false "Solo en modo dev, organización"
// @Param status query string false "in_foster|adopted|medical_hold|in_shelter|transferring"
// @Param page query int false "Página (1-based)"
// @Param pageSize query int false "Tamaño de página"
// @Success 200 {object} map[string]any
// @Failure 400 {string} string "invalid query parameter"
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "record store unavailable"
// @Router /animals [get]
func listAnimalsHandler(svc *Service, lim filters.Limits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.TenantFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q, err := filters.DecodeAnimalQuery(r.URL.Query(), lim)
		if err != nil {
			writeError(w, err)
			return
		}

		page, err := svc.ListAnimals(r.Context(), orgID, q)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPageResponse(page, animals.ToAnimalResponse, q.Encode().Encode(), q.Filters.CountActive()))
	}
}

// listGroupsHandler godoc
// @Summary Listar grupos
// @Description Filtros opcionales: priority, assigned, visibility (derivada de los miembros), lifeStage (algún miembro), sort, search, page, pageSize.
// @Tags listings
// @Produce json
// @Param visibility query string false "available_now|available_future|foster_pending|not_visible"
// @Success 200 {object} map[string]any
// @Failure 400 {string} string "invalid query parameter"
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "record store unavailable"
// @Router /groups [get]
func listGroupsHandler(svc *Service, lim filters.Limits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.TenantFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q, err := filters.DecodeGroupQuery(r.URL.Query(), lim)
		if err != nil {
			writeError(w, err)
			return
		}

		page, err := svc.ListGroups(r.Context(), orgID, q)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPageResponse(page, toGroupViewResponse, q.Encode().Encode(), q.Filters.CountActive()))
	}
}

// listNeededHandler godoc
// @Summary Listado "necesita foster"
// @Description Animales sueltos y grupos visibles, ordenados por prioridad y antigüedad (default: más antiguos primero). Filtros: type (groups|singles), priority, lifeStage, sex (excluye grupos), visibility, sort, search, page, pageSize.
// @Tags listings
// @Produce json
// @Param type query string false "groups|singles"
// @Success 200 {object} map[string]any
// @Failure 400 {string} string "invalid query parameter"
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "record store unavailable"
// @Router /needed [get]
func listNeededHandler(svc *Service, lim filters.Limits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := middleware.TenantFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q, err := filters.DecodeNeededQuery(r.URL.Query(), lim)
		if err != nil {
			writeError(w, err)
			return
		}

		page, err := svc.ListNeeded(r.Context(), orgID, q)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPageResponse(page, toNeededItemResponse, q.Encode().Encode(), q.Filters.CountActive()))
	}
}

func writeError(w http.ResponseWriter, err error) {
	var fe *FetchError
	switch {
	case errors.Is(err, filters.ErrInvalidParam):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &fe) && fe.Retryable():
		w.Header().Set("Retry-After", "5")
		http.Error(w, "record store unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
