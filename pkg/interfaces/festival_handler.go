package interfaces

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/yair/festival-atlas/pkg/domain"
)

// FestivalHandler owns the public API endpoints.
type FestivalHandler struct {
	service       *FestivalService
	refreshSecret string
	logger        *slog.Logger
}

// NewFestivalHandler creates the handler. refreshSecret guards POST
// /api/refresh; empty means the endpoint is open.
func NewFestivalHandler(service *FestivalService, refreshSecret string) *FestivalHandler {
	return &FestivalHandler{
		service:       service,
		refreshSecret: refreshSecret,
		logger:        slog.Default().With("component", "festival-handler"),
	}
}

// RegisterRoutes mounts the API on the router.
func (h *FestivalHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/festivals", h.GetFestivals).Methods(http.MethodGet)
	router.HandleFunc("/api/festivals/{slug}", h.GetFestival).Methods(http.MethodGet)
	router.HandleFunc("/api/refresh", h.Refresh).Methods(http.MethodPost)
	router.HandleFunc("/api/stats", h.GetStats).Methods(http.MethodGet)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
}

// GetFestivals serves the current snapshot. Optional query parameters
// narrow the list: genre, country, and q (matched against the precomputed
// searchable text).
func (h *FestivalHandler) GetFestivals(w http.ResponseWriter, r *http.Request) {
	dataset, err := h.service.GetDataset(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	festivals := filterFestivals(dataset.Festivals, r.URL.Query().Get("genre"),
		r.URL.Query().Get("country"), r.URL.Query().Get("q"))

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"festivals":      festivals,
		"total_count":    len(festivals),
		"last_refreshed": dataset.LastRefreshed,
	})
}

func filterFestivals(festivals []domain.Festival, genre, country, query string) []domain.Festival {
	if genre == "" && country == "" && query == "" {
		return festivals
	}

	query = strings.ToLower(query)
	filtered := make([]domain.Festival, 0, len(festivals))
	for _, f := range festivals {
		if genre != "" && !hasGenre(f, domain.Genre(genre)) {
			continue
		}
		if country != "" && f.Venue.Country != domain.Country(country) {
			continue
		}
		if query != "" && !strings.Contains(f.SearchableText, query) {
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered
}

func hasGenre(f domain.Festival, genre domain.Genre) bool {
	for _, g := range f.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

func (h *FestivalHandler) GetFestival(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	festival, err := h.service.GetFestival(r.Context(), slug)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, festival)
}

// Refresh triggers a pipeline run. The previous snapshot keeps serving if
// the run fails.
func (h *FestivalHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	started := time.Now()
	dataset, err := h.service.Refresh(r.Context())
	if err != nil {
		h.logger.Error("refresh failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total_count":    dataset.TotalCount,
		"last_refreshed": dataset.LastRefreshed,
		"duration":       time.Since(started).String(),
	})
}

func (h *FestivalHandler) authorized(r *http.Request) bool {
	if h.refreshSecret == "" {
		return true
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.refreshSecret)) == 1
}

func (h *FestivalHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	dataset, err := h.service.GetDataset(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total_count":    dataset.TotalCount,
		"genre_counts":   dataset.GenreCounts,
		"country_counts": dataset.CountryCounts,
		"last_refreshed": dataset.LastRefreshed,
	})
}

func (h *FestivalHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *FestivalHandler) respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDatasetNotFound):
		respondWithError(w, http.StatusServiceUnavailable, "dataset not built yet, trigger a refresh")
	case errors.Is(err, domain.ErrFestivalNotFound):
		respondWithError(w, http.StatusNotFound, "festival not found")
	case errors.Is(err, domain.ErrInvalidRequest):
		respondWithError(w, http.StatusBadRequest, "invalid request")
	default:
		h.logger.Error("request failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
