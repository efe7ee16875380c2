package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"foster-tracker/internal/adapters/storage/memory"
	"foster-tracker/internal/adapters/storage/sqlite"
	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/query"
	"foster-tracker/internal/router"
)

const orgID = "org-1"

func TestHTTP_EndToEnd_VisibilityCascade_Memory(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	runCascadeScenario(t, ts.URL)
}

func TestHTTP_EndToEnd_VisibilityCascade_SQLite(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	ts := httptest.NewServer(router.NewRouter(router.Options{DB: db, Dialect: "sqlite"}))
	defer ts.Close()

	runCascadeScenario(t, ts.URL)
}

func runCascadeScenario(t *testing.T, baseURL string) {
	t.Helper()

	// 1) Dos animales visibles y un grupo con ambos
	aID := createAnimal(t, baseURL, map[string]any{"name": "A", "foster_visibility": "available_now", "life_stage": "kitten"})
	bID := createAnimal(t, baseURL, map[string]any{"name": "B", "foster_visibility": "available_now", "life_stage": "adult"})
	single := createAnimal(t, baseURL, map[string]any{"name": "Solo", "foster_visibility": "available_now", "sex_spay_neuter_status": "female"})
	gID := createGroup(t, baseURL, map[string]any{"name": "Pair", "animal_ids": []string{aID, bID}})

	// 2) Visibilidad derivada compartida
	{
		st, body := doReq(t, baseURL, "GET", "/groups/"+gID+"/visibility", orgID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 group visibility, got %d body=%s", st, string(body))
		}
		var resp struct {
			Visibility  *string `json:"visibility"`
			HasConflict bool    `json:"has_conflict"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.HasConflict || resp.Visibility == nil || *resp.Visibility != "available_now" {
			t.Fatalf("expected shared available_now, body=%s", string(body))
		}
	}

	// 3) Cambiar B sin decisión => 409 con el conflicto
	{
		st, body := doReq(t, baseURL, "PATCH", "/animals/"+bID+"/visibility", orgID, map[string]any{
			"foster_visibility": "available_future",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 conflict, got %d body=%s", st, string(body))
		}
		var resp struct {
			Conflict struct {
				GroupID      string  `json:"group_id"`
				OthersShared *string `json:"others_shared"`
			} `json:"conflict"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Conflict.GroupID != gID || resp.Conflict.OthersShared == nil || *resp.Conflict.OthersShared != "available_now" {
			t.Fatalf("unexpected conflict body=%s", string(body))
		}
	}

	// 4) Cancelar: B no cambia
	{
		st, body := doReq(t, baseURL, "PATCH", "/animals/"+bID+"/visibility", orgID, map[string]any{
			"foster_visibility": "available_future",
			"cascade":           false,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 cancel, got %d body=%s", st, string(body))
		}
		if v := animalVisibility(t, baseURL, bID); v != "available_now" {
			t.Fatalf("cancel must keep available_now, got %s", v)
		}
	}

	// 5) Confirmar cascada: A y B quedan en available_future
	{
		st, body := doReq(t, baseURL, "PATCH", "/animals/"+bID+"/visibility", orgID, map[string]any{
			"foster_visibility": "available_future",
			"cascade":           true,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 cascade, got %d body=%s", st, string(body))
		}
		var resp struct {
			Applied bool `json:"applied"`
			Cascade struct {
				Updated     []string `json:"updated"`
				FailedCount int      `json:"failed_count"`
			} `json:"cascade"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.Applied || resp.Cascade.FailedCount != 0 || len(resp.Cascade.Updated) != 1 || resp.Cascade.Updated[0] != aID {
			t.Fatalf("unexpected cascade body=%s", string(body))
		}
		for _, id := range []string{aID, bID} {
			if v := animalVisibility(t, baseURL, id); v != "available_future" {
				t.Fatalf("%s: expected available_future, got %s", id, v)
			}
		}
	}

	// 6) Listado combinado: el grupo aparece con su visibilidad derivada
	{
		page := listPage(t, baseURL, "/needed?type=groups")
		if page.Total != 1 || page.Items[0]["kind"] != "group" || page.Items[0]["id"] != gID {
			t.Fatalf("unexpected needed groups page: %+v", page)
		}
		if page.Items[0]["visibility"] != "available_future" {
			t.Fatalf("expected available_future, got %v", page.Items[0]["visibility"])
		}
	}

	// 7) sex excluye grupos aunque califiquen
	{
		page := listPage(t, baseURL, "/needed?sex=female")
		if page.Total != 1 || page.Items[0]["id"] != single {
			t.Fatalf("expected only the single female, got %+v", page)
		}
		if page.ActiveFilters != 1 {
			t.Fatalf("expected 1 active filter, got %d", page.ActiveFilters)
		}
	}

	// 8) Grupos por visibilidad derivada => camino cliente
	{
		page := listPage(t, baseURL, "/groups?visibility=available_future&lifeStage=kitten")
		if page.Path != "client" || page.Total != 1 {
			t.Fatalf("expected client path with 1 group, got %+v", page)
		}
	}

	// 9) Animales agrupados => camino servidor, query canónico
	{
		page := listPage(t, baseURL, "/animals?inGroup=true&pageSize=1")
		if page.Path != "server" || page.Total != 2 || page.TotalPages != 2 || len(page.Items) != 1 {
			t.Fatalf("unexpected animals page: %+v", page)
		}
		if !strings.Contains(page.Query, "inGroup=true") || !strings.Contains(page.Query, "page=1") {
			t.Fatalf("unexpected canonical query %q", page.Query)
		}
	}
}

func TestHTTP_ListingErrors(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	if st, body := doReq(t, ts.URL, "GET", "/animals?status=lost", orgID, nil); st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown enum, got %d body=%s", st, string(body))
	}
	if st, body := doReq(t, ts.URL, "GET", "/needed?sort=random", orgID, nil); st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown sort, got %d body=%s", st, string(body))
	}
	if st, _ := doReq(t, ts.URL, "GET", "/animals", "", nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without tenant, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/animals/missing", orgID, nil); st != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "PATCH", "/animals/missing/visibility", orgID, map[string]any{"foster_visibility": "bogus"}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid visibility, got %d", st)
	}
}

// downAnimals/downGroups simulan un record store que no responde.
type downAnimals struct{ animals.Repository }

func (downAnimals) GetByID(context.Context, string, string) (animals.Animal, error) {
	return animals.Animal{}, fmt.Errorf("%w: connection refused", animals.ErrUnavailable)
}

func (downAnimals) List(context.Context, query.Predicate, query.ListOptions) ([]animals.Animal, error) {
	return nil, fmt.Errorf("%w: connection refused", animals.ErrUnavailable)
}

func (downAnimals) Count(context.Context, query.Predicate) (int, error) {
	return 0, fmt.Errorf("%w: connection refused", animals.ErrUnavailable)
}

type downGroups struct{ animals.GroupRepository }

func (downGroups) GetByID(context.Context, string, string) (animals.Group, error) {
	return animals.Group{}, context.DeadlineExceeded
}

func TestHTTP_StoreUnavailableIsRetryable(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Animals: downAnimals{memory.NewAnimalRepo()},
		Groups:  downGroups{memory.NewGroupRepo()},
	}))
	defer ts.Close()

	cases := []struct {
		method, path string
		body         any
	}{
		{"PATCH", "/animals/a1/visibility", map[string]any{"foster_visibility": "available_now"}},
		{"PATCH", "/animals/a1/visibility", map[string]any{"foster_visibility": "available_now", "cascade": true}},
		{"GET", "/groups/g1/visibility", nil},
		{"GET", "/animals/a1", nil},
		{"GET", "/groups/g1", nil},
		{"GET", "/animals", nil},
	}

	for _, c := range cases {
		st, hdr, body := doReqHeader(t, ts.URL, c.method, c.path, orgID, c.body)
		if st != http.StatusServiceUnavailable {
			t.Fatalf("%s %s: expected 503, got %d body=%s", c.method, c.path, st, string(body))
		}
		if hdr.Get("Retry-After") == "" {
			t.Fatalf("%s %s: missing Retry-After", c.method, c.path)
		}
	}
}

func TestHTTP_TenantIsolation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	id := createAnimal(t, ts.URL, map[string]any{"name": "Mine", "foster_visibility": "available_now"})

	if st, _ := doReq(t, ts.URL, "GET", "/animals/"+id, "org-2", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 from another tenant, got %d", st)
	}
	st, body := doReq(t, ts.URL, "GET", "/animals", "org-2", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"total":0`) {
		t.Fatalf("expected empty listing for org-2, got %d body=%s", st, string(body))
	}
}

func TestHTTP_OpsEndpoints(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	if st, _ := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK {
		t.Fatalf("health: %d", st)
	}

	_ = listPage(t, ts.URL, "/animals")
	st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `foster_tracker_listing_requests_total{listing="animals",path="server"} 1`) {
		t.Fatalf("metrics missing listing counter: %d", st)
	}

	if st, body := doReq(t, ts.URL, "GET", "/swagger/doc.json", "", nil); st != http.StatusOK || !strings.Contains(string(body), "/needed") {
		t.Fatalf("swagger doc: %d body=%s", st, string(body))
	}
}

type pageBody struct {
	Items         []map[string]any `json:"items"`
	Total         int              `json:"total"`
	TotalPages    int              `json:"total_pages"`
	Path          string           `json:"path"`
	Query         string           `json:"query"`
	ActiveFilters int              `json:"active_filters"`
}

func listPage(t *testing.T, baseURL, path string) pageBody {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", path, orgID, nil)
	if st != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d body=%s", path, st, string(body))
	}
	var page pageBody
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("GET %s: invalid json: %v", path, err)
	}
	return page
}

func createAnimal(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/animals", orgID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create animal, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create animal: missing id body=%s", string(body))
	}
	return resp.ID
}

func createGroup(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/groups", orgID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create group, got %d body=%s", st, string(body))
	}

	var resp struct {
		Group struct {
			ID string `json:"id"`
		} `json:"group"`
		MembershipErrors map[string]string `json:"membership_errors"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Group.ID == "" || len(resp.MembershipErrors) > 0 {
		t.Fatalf("create group: body=%s", string(body))
	}
	return resp.Group.ID
}

func animalVisibility(t *testing.T, baseURL, id string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/animals/"+id, orgID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get animal, got %d body=%s", st, string(body))
	}
	var resp struct {
		FosterVisibility string `json:"foster_visibility"`
	}
	_ = json.Unmarshal(body, &resp)
	return resp.FosterVisibility
}

func doReq(t *testing.T, baseURL, method, path, debugOrgID string, body any) (int, []byte) {
	t.Helper()
	st, _, b := doReqHeader(t, baseURL, method, path, debugOrgID, body)
	return st, b
}

func doReqHeader(t *testing.T, baseURL, method, path, debugOrgID string, body any) (int, http.Header, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugOrgID != "" {
		req.Header.Set("X-Debug-User-ID", "coordinator-1")
		req.Header.Set("X-Debug-Org-ID", debugOrgID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, res.Header, respBody
}
