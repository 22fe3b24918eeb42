package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/yair/festival-atlas/pkg/domain"
)

func handlerDataset() *domain.Dataset {
	return &domain.Dataset{
		Festivals: []domain.Festival{
			{
				Slug:           "hellfest-clisson-2026",
				Name:           "Hellfest",
				Genres:         []domain.Genre{domain.GenreMetal},
				Venue:          domain.Venue{Country: domain.CountryFR},
				SearchableText: "hellfest clisson iron maiden gojira metal",
			},
			{
				Slug:           "dour-dour-2026",
				Name:           "Dour Festival",
				Genres:         []domain.Genre{domain.GenreElectronic},
				Venue:          domain.Venue{Country: domain.CountryBE},
				SearchableText: "dour festival skrillex electronic",
			},
		},
		LastRefreshed: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		TotalCount:    2,
		GenreCounts:   map[domain.Genre]int{domain.GenreMetal: 1, domain.GenreElectronic: 1},
		CountryCounts: map[domain.Country]int{domain.CountryFR: 1, domain.CountryBE: 1},
	}
}

func newTestRouter(st *fakeStore, builder *fakeBuilder, secret string) *mux.Router {
	handler := NewFestivalHandler(NewFestivalService(st, builder), secret)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func doRequest(router *mux.Router, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetFestivals(t *testing.T) {
	t.Run("503 before first refresh", func(t *testing.T) {
		router := newTestRouter(&fakeStore{}, &fakeBuilder{}, "")

		rec := doRequest(router, http.MethodGet, "/api/festivals", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("serves the snapshot", func(t *testing.T) {
		router := newTestRouter(&fakeStore{dataset: handlerDataset()}, &fakeBuilder{}, "")

		rec := doRequest(router, http.MethodGet, "/api/festivals", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body struct {
			Festivals  []domain.Festival `json:"festivals"`
			TotalCount int               `json:"total_count"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.TotalCount != 2 || len(body.Festivals) != 2 {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("query filters", func(t *testing.T) {
		router := newTestRouter(&fakeStore{dataset: handlerDataset()}, &fakeBuilder{}, "")

		tests := []struct {
			target   string
			wantSlug string
		}{
			{"/api/festivals?genre=metal", "hellfest-clisson-2026"},
			{"/api/festivals?country=BE", "dour-dour-2026"},
			{"/api/festivals?q=skrillex", "dour-dour-2026"},
		}

		for _, tt := range tests {
			rec := doRequest(router, http.MethodGet, tt.target, nil)

			var body struct {
				Festivals []domain.Festival `json:"festivals"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("%s: decode: %v", tt.target, err)
			}
			if len(body.Festivals) != 1 || body.Festivals[0].Slug != tt.wantSlug {
				t.Errorf("%s -> %+v, want only %s", tt.target, body.Festivals, tt.wantSlug)
			}
		}
	})
}

func TestGetFestival(t *testing.T) {
	router := newTestRouter(&fakeStore{dataset: handlerDataset()}, &fakeBuilder{}, "")

	t.Run("found", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/festivals/hellfest-clisson-2026", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var festival domain.Festival
		if err := json.Unmarshal(rec.Body.Bytes(), &festival); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if festival.Name != "Hellfest" {
			t.Errorf("Name = %q", festival.Name)
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/festivals/nope", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Run("rebuilds and publishes", func(t *testing.T) {
		st := &fakeStore{}
		router := newTestRouter(st, &fakeBuilder{dataset: handlerDataset()}, "")

		rec := doRequest(router, http.MethodPost, "/api/refresh", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		rec = doRequest(router, http.MethodGet, "/api/festivals", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("festivals after refresh: status = %d", rec.Code)
		}
	})

	t.Run("requires the bearer secret when configured", func(t *testing.T) {
		router := newTestRouter(&fakeStore{}, &fakeBuilder{dataset: handlerDataset()}, "s3cret")

		rec := doRequest(router, http.MethodPost, "/api/refresh", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}

		rec = doRequest(router, http.MethodPost, "/api/refresh",
			map[string]string{"Authorization": "Bearer s3cret"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("500 on pipeline failure, stale data keeps serving", func(t *testing.T) {
		st := &fakeStore{dataset: handlerDataset()}
		router := newTestRouter(st, &fakeBuilder{err: errors.New("sources down")}, "")

		rec := doRequest(router, http.MethodPost, "/api/refresh", nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}

		rec = doRequest(router, http.MethodGet, "/api/festivals", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("stale snapshot unavailable: status = %d", rec.Code)
		}
	})
}

func TestGetStats(t *testing.T) {
	router := newTestRouter(&fakeStore{dataset: handlerDataset()}, &fakeBuilder{}, "")

	rec := doRequest(router, http.MethodGet, "/api/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		TotalCount    int            `json:"total_count"`
		GenreCounts   map[string]int `json:"genre_counts"`
		CountryCounts map[string]int `json:"country_counts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", body.TotalCount)
	}
	if body.GenreCounts["metal"] != 1 {
		t.Errorf("GenreCounts = %v", body.GenreCounts)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeStore{}, &fakeBuilder{}, "")

	rec := doRequest(router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
