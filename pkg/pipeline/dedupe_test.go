package pipeline

import (
	"testing"

	"github.com/yair/festival-atlas/pkg/domain"
)

func TestDeduplicate(t *testing.T) {
	t.Run("higher priority source wins the merge", func(t *testing.T) {
		manual := domain.Festival{
			Name:      "Garorock",
			StartDate: "2026-07-01",
			Venue:     domain.Venue{City: "Marmande"},
			Source:    domain.SourceManual,
			Lineup:    []domain.Artist{{Name: "X"}},
			Genres:    []domain.Genre{domain.GenreRock},
		}
		ticketmaster := domain.Festival{
			Name:      "Garorock Festival 2026",
			StartDate: "2026-07-02",
			Venue:     domain.Venue{City: "Marmande"},
			Source:    domain.SourceTicketmaster,
			Lineup:    []domain.Artist{{Name: "Y"}, {Name: "Z"}},
			Genres:    []domain.Genre{domain.GenreElectronic},
		}

		// Input order deliberately puts the lower priority source first.
		out := Deduplicate([]domain.Festival{ticketmaster, manual})

		if len(out) != 1 {
			t.Fatalf("got %d records, want 1", len(out))
		}
		merged := out[0]
		if merged.Source != domain.SourceManual {
			t.Errorf("Source = %q, manual must win", merged.Source)
		}
		if len(merged.Lineup) != 1 || merged.Lineup[0].Name != "X" {
			t.Errorf("Lineup = %v, want manual's [X]", merged.Lineup)
		}
		if len(merged.Genres) != 2 {
			t.Errorf("Genres = %v, want the union of both", merged.Genres)
		}
	})

	t.Run("idempotent on unique input", func(t *testing.T) {
		records := []domain.Festival{
			{Name: "Hellfest", StartDate: "2026-06-18", Venue: domain.Venue{City: "Clisson"}, Source: domain.SourceManual},
			{Name: "Dour", StartDate: "2026-07-15", Venue: domain.Venue{City: "Dour"}, Source: domain.SourceManual},
			{Name: "Sonar", StartDate: "2026-06-18", Venue: domain.Venue{City: "Barcelona"}, Source: domain.SourceTicketmaster},
		}

		out := Deduplicate(records)
		if len(out) != len(records) {
			t.Fatalf("got %d records, want %d", len(out), len(records))
		}

		byName := make(map[string]domain.Festival)
		for _, r := range out {
			byName[r.Name] = r
		}
		for _, r := range records {
			got, ok := byName[r.Name]
			if !ok {
				t.Fatalf("record %q missing from output", r.Name)
			}
			if got.StartDate != r.StartDate || got.Source != r.Source {
				t.Errorf("record %q changed: %+v", r.Name, got)
			}
		}
	})

	t.Run("does not reorder the input slice", func(t *testing.T) {
		records := []domain.Festival{
			{Name: "A", StartDate: "2026-07-01", Venue: domain.Venue{City: "X"}, Source: domain.SourceDataCultureGouv},
			{Name: "B", StartDate: "2026-07-01", Venue: domain.Venue{City: "Y"}, Source: domain.SourceManual},
		}

		Deduplicate(records)
		if records[0].Name != "A" || records[1].Name != "B" {
			t.Error("input slice mutated")
		}
	})

	t.Run("three sources chain-merge into the top record", func(t *testing.T) {
		base := domain.Venue{City: "Marmande"}
		records := []domain.Festival{
			{Name: "Garorock", StartDate: "2026-07-01", Venue: base, Source: domain.SourceDataCultureGouv,
				WebsiteURL: "https://garorock.example", Genres: []domain.Genre{domain.GenreWorld}},
			{Name: "Garorock Festival", StartDate: "2026-07-01", Venue: base, Source: domain.SourceTicketmaster,
				Lineup: []domain.Artist{{Name: "Headliner A"}}, Genres: []domain.Genre{domain.GenreRock}},
			{Name: "Garorock Fest ", StartDate: "2026-07-03", Venue: base, Source: domain.SourceMusicFestivalWizard,
				ImageURL: "https://img.example.com/g.jpg", Genres: []domain.Genre{domain.GenreElectronic}},
		}

		out := Deduplicate(records)
		if len(out) != 1 {
			t.Fatalf("got %d records, want 1", len(out))
		}

		merged := out[0]
		if merged.Source != domain.SourceTicketmaster {
			t.Errorf("Source = %q, highest priority must hold primary", merged.Source)
		}
		if merged.WebsiteURL != "https://garorock.example" {
			t.Errorf("WebsiteURL = %q, lower priority fields must enrich", merged.WebsiteURL)
		}
		if merged.ImageURL != "https://img.example.com/g.jpg" {
			t.Errorf("ImageURL = %q, lower priority fields must enrich", merged.ImageURL)
		}
		if len(merged.Genres) != 3 {
			t.Errorf("Genres = %v, want all three unioned", merged.Genres)
		}
	})
}
