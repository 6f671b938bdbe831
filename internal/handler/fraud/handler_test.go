package fraud

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/portfolio-desk/backend/internal/dataset"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	ds, err := dataset.Default()
	if err != nil {
		t.Fatalf("dataset err: %v", err)
	}

	r := chi.NewRouter()
	New(ds.FraudStore()).RegisterRoutes(r)
	return r
}

func listSites(t *testing.T, r http.Handler, target string) listResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	return body
}

func TestListSitesFilters(t *testing.T) {
	r := setupRouter(t)

	cases := []struct {
		target string
		want   []string
	}{
		{"/fraud/sites", []string{"1", "2", "3", "4", "5"}},
		{"/fraud/sites?category=all", []string{"1", "2", "3", "4", "5"}},
		{"/fraud/sites?category=crypto", []string{"1"}},
		{"/fraud/sites?q=.COM", []string{"1", "5"}},
		{"/fraud/sites?q=pro&category=forex", []string{"4"}},
		{"/fraud/sites?q=pro&category=nft", nil},
		{"/fraud/sites?category=lottery", nil},
	}

	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			body := listSites(t, r, tc.target)
			if body.Count != len(tc.want) {
				t.Fatalf("expected %d sites, got %+v", len(tc.want), body.Sites)
			}
			for i, id := range tc.want {
				if body.Sites[i].ID != id {
					t.Fatalf("position %d: expected site %s, got %s", i, id, body.Sites[i].ID)
				}
			}
			if len(tc.want) == 0 && body.EmptyMessage != EmptyMessage {
				t.Fatalf("expected empty-state message, got %q", body.EmptyMessage)
			}
		})
	}
}

func TestListSitesLabels(t *testing.T) {
	body := listSites(t, setupRouter(t), "/fraud/sites?category=nft")
	if len(body.Sites) != 1 {
		t.Fatalf("expected one nft site, got %d", len(body.Sites))
	}
	site := body.Sites[0]
	if site.CategoryLabel != "NFTs" || site.RiskLabel != "Medium Risk" {
		t.Fatalf("unexpected labels: %+v", site)
	}
}

func TestGetSite(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/fraud/sites/2", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/fraud/sites/99", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCategoriesAndTips(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/fraud/categories", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var categories []struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(categories) != 6 || categories[0].Value != "all" || categories[1].Label != "Cryptocurrency" {
		t.Fatalf("unexpected categories: %+v", categories)
	}

	req = httptest.NewRequest(http.MethodGet, "/fraud/tips", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var tips []string
	if err := json.NewDecoder(resp.Body).Decode(&tips); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(tips) != 5 {
		t.Fatalf("expected 5 tips, got %d", len(tips))
	}
}

func TestRiskLevels(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/fraud/risk-levels", nil)
	resp := httptest.NewRecorder()
	setupRouter(t).ServeHTTP(resp, req)

	var levels []struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&levels); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(levels) != 3 || levels[0].Value != "low" || levels[2].Label != "High Risk" {
		t.Fatalf("unexpected risk levels: %+v", levels)
	}
}
