package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yair/festival-atlas/pkg/domain"
)

func tmTestResponse(events []tmEvent) tmEventsResponse {
	var resp tmEventsResponse
	resp.Embedded.Events = events
	resp.Page.TotalPages = 1
	return resp
}

func tmTestEvent(name string) tmEvent {
	var event tmEvent
	event.ID = "Z1234"
	event.Name = name
	event.URL = "https://www.ticketmaster.fr/event/Z1234"
	event.Dates.Start.LocalDate = "2026-07-10"
	event.Dates.End.LocalDate = "2026-07-12"
	event.Dates.Status.Code = "onsale"
	event.Classifications = []tmClassification{
		{
			Segment: tmClassificationItem{Name: "Music"},
			Genre:   tmClassificationItem{Name: "Rock"},
		},
	}
	event.Images = []tmImage{
		{URL: "https://img.example.com/tall.jpg", Ratio: "3_4", Width: 300},
		{URL: "https://img.example.com/wide.jpg", Ratio: "16_9", Width: 1024},
	}
	event.PriceRanges = []tmPriceRange{{Min: 49, Max: 199, Currency: "EUR"}}

	var venue tmVenue
	venue.Name = "Plaine de Garonne"
	venue.City.Name = "Marmande"
	venue.Country.CountryCode = "FR"
	venue.Location.Latitude = "44.4997"
	venue.Location.Longitude = "0.1653"
	event.Embedded.Venues = []tmVenue{venue}

	event.Embedded.Attractions = []tmAttraction{
		{ID: "A1", Name: "Muse"},
		{ID: "A2", Name: "Macklemore"},
	}
	return event
}

func TestTicketmasterClient(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewTicketmasterClient(TicketmasterConfig{})
		if err == nil {
			t.Fatal("expected error for missing API key")
		}
	})

	t.Run("fetches and normalizes festival events", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("apikey"); got != "test-key" {
				t.Errorf("apikey = %q, want test-key", got)
			}
			json.NewEncoder(w).Encode(tmTestResponse([]tmEvent{tmTestEvent("Garorock Festival 2026")}))
		}))
		defer server.Close()

		client, err := NewTicketmasterClient(TicketmasterConfig{
			APIKey:    "test-key",
			BaseURL:   server.URL,
			Countries: []domain.Country{domain.CountryFR},
		})
		if err != nil {
			t.Fatalf("NewTicketmasterClient: %v", err)
		}

		festivals, err := client.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(festivals) != 1 {
			t.Fatalf("got %d festivals, want 1", len(festivals))
		}

		f := festivals[0]
		if f.ID != "tm-Z1234" {
			t.Errorf("ID = %q, want tm-Z1234", f.ID)
		}
		if f.Source != domain.SourceTicketmaster {
			t.Errorf("Source = %q", f.Source)
		}
		if f.StartDate != "2026-07-10" || f.EndDate != "2026-07-12" {
			t.Errorf("dates = %s..%s", f.StartDate, f.EndDate)
		}
		if f.Venue.City != "Marmande" || f.Venue.Country != domain.CountryFR {
			t.Errorf("venue = %+v", f.Venue)
		}
		if f.Venue.Coordinates.IsZero() {
			t.Error("expected parsed coordinates")
		}
		if len(f.Genres) != 1 || f.Genres[0] != domain.GenreRock {
			t.Errorf("genres = %v, want [rock]", f.Genres)
		}
		if len(f.Lineup) != 2 {
			t.Errorf("lineup = %v, want 2 artists", f.Lineup)
		}
		if f.ImageURL != "https://img.example.com/wide.jpg" {
			t.Errorf("ImageURL = %q, want the 16_9 image", f.ImageURL)
		}
		if f.PriceRange == nil || f.PriceRange.Min != 49 {
			t.Errorf("PriceRange = %+v", f.PriceRange)
		}
		if f.OnSaleStatus != domain.SaleStatusOnSale {
			t.Errorf("OnSaleStatus = %q", f.OnSaleStatus)
		}
	})

	t.Run("drops non-festival single-day events", func(t *testing.T) {
		event := tmTestEvent("Muse in Concert")
		event.Dates.End.LocalDate = "2026-07-10"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(tmTestResponse([]tmEvent{event}))
		}))
		defer server.Close()

		client, err := NewTicketmasterClient(TicketmasterConfig{
			APIKey:    "test-key",
			BaseURL:   server.URL,
			Countries: []domain.Country{domain.CountryFR},
		})
		if err != nil {
			t.Fatalf("NewTicketmasterClient: %v", err)
		}

		festivals, err := client.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(festivals) != 0 {
			t.Fatalf("got %d festivals, want 0", len(festivals))
		}
	})

	t.Run("failing country is skipped without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client, err := NewTicketmasterClient(TicketmasterConfig{
			APIKey:    "test-key",
			BaseURL:   server.URL,
			Countries: []domain.Country{domain.CountryFR, domain.CountryBE},
		})
		if err != nil {
			t.Fatalf("NewTicketmasterClient: %v", err)
		}

		festivals, err := client.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(festivals) != 0 {
			t.Fatalf("got %d festivals, want 0", len(festivals))
		}
	})
}

func TestIsFestival(t *testing.T) {
	tests := []struct {
		name  string
		event func() tmEvent
		want  bool
	}{
		{
			name: "festival keyword in name",
			event: func() tmEvent {
				e := tmTestEvent("Garorock Festival")
				e.Dates.End.LocalDate = "2026-07-10"
				return e
			},
			want: true,
		},
		{
			name: "multi-day music event without keyword",
			event: func() tmEvent {
				return tmTestEvent("Summer Sessions")
			},
			want: true,
		},
		{
			name: "single-day concert",
			event: func() tmEvent {
				e := tmTestEvent("Muse in Concert")
				e.Dates.End.LocalDate = "2026-07-10"
				return e
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFestival(tt.event()); got != tt.want {
				t.Errorf("isFestival = %v, want %v", got, tt.want)
			}
		})
	}
}
