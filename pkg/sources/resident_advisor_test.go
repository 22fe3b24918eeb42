package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yair/festival-atlas/pkg/domain"
)

const raTestPage = `<html><head>
<script type="application/ld+json">
[
  {
    "@type": "Festival",
    "name": "Nuits Electriques",
    "startDate": "2026-07-04T12:00:00",
    "endDate": "2026-07-06T23:00:00",
    "location": {
      "@type": "Place",
      "name": "Presqu'île Rollet",
      "address": {"addressLocality": "Rouen", "addressCountry": "FR"},
      "geo": {"latitude": "49.4326", "longitude": "1.0733"}
    },
    "performer": [{"name": "Laurent Garnier"}, {"name": "Ben Klock"}],
    "image": ["https://img.example.com/ne.jpg"],
    "url": "https://ra.co/events/123",
    "offers": {"url": "https://ra.co/events/123/tickets"}
  },
  {
    "@type": "Place",
    "name": "Not an event"
  }
]
</script>
<script type="application/ld+json">not json at all</script>
<script type="application/ld+json">
{
  "@type": "MusicEvent",
  "name": "Warehouse Night",
  "startDate": "2026-07-11",
  "location": {
    "address": {"addressLocality": "Lille"},
    "geo": {"latitude": 0, "longitude": 0}
  }
}
</script>
</head><body></body></html>`

func TestResidentAdvisorScraper(t *testing.T) {
	t.Run("extracts events from JSON-LD blocks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/events/") {
				http.NotFound(w, r)
				return
			}
			if r.URL.Path == "/events/france" {
				fmt.Fprint(w, raTestPage)
				return
			}
			fmt.Fprint(w, "<html></html>")
		}))
		defer server.Close()

		scraper := NewResidentAdvisorScraper(ResidentAdvisorConfig{
			BaseURL:      server.URL,
			RequestDelay: time.Millisecond,
		})

		festivals, err := scraper.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		// Warehouse Night has the zero-coordinate sentinel and is dropped.
		if len(festivals) != 1 {
			t.Fatalf("got %d festivals, want 1", len(festivals))
		}

		f := festivals[0]
		if f.Name != "Nuits Electriques" {
			t.Errorf("Name = %q", f.Name)
		}
		if f.Source != domain.SourceResidentAdvisor {
			t.Errorf("Source = %q", f.Source)
		}
		if f.StartDate != "2026-07-04" || f.EndDate != "2026-07-06" {
			t.Errorf("dates = %s..%s", f.StartDate, f.EndDate)
		}
		if f.Venue.City != "Rouen" || f.Venue.Country != domain.CountryFR {
			t.Errorf("venue = %+v", f.Venue)
		}
		if f.Venue.Coordinates.IsZero() {
			t.Error("expected parsed coordinates")
		}
		if len(f.Lineup) != 2 || f.Lineup[0].Name != "Laurent Garnier" {
			t.Errorf("lineup = %v", f.Lineup)
		}
		if len(f.Genres) != 1 || f.Genres[0] != domain.GenreElectronic {
			t.Errorf("genres = %v, want [electronic]", f.Genres)
		}
		if f.TicketURL != "https://ra.co/events/123/tickets" {
			t.Errorf("TicketURL = %q", f.TicketURL)
		}
	})
}

func TestParsePerformers(t *testing.T) {
	t.Run("array form", func(t *testing.T) {
		raw := json.RawMessage(`[{"name": "A"}, {"name": "B"}]`)
		got := parsePerformers(raw)
		if len(got) != 2 || got[1].Name != "B" {
			t.Errorf("parsePerformers = %v", got)
		}
	})

	t.Run("single object form", func(t *testing.T) {
		raw := json.RawMessage(`{"name": "Solo"}`)
		got := parsePerformers(raw)
		if len(got) != 1 || got[0].Name != "Solo" {
			t.Errorf("parsePerformers = %v", got)
		}
	})

	t.Run("absent", func(t *testing.T) {
		if got := parsePerformers(nil); got != nil {
			t.Errorf("parsePerformers(nil) = %v", got)
		}
	})
}
