package sources

import (
	"context"
	"log/slog"
	"time"

	"github.com/yair/festival-atlas/pkg/domain"
	"github.com/yair/festival-atlas/pkg/pipeline"
)

// ManualSource serves the hand-curated flagship festivals. It is the highest
// priority source, so its records win every merge conflict against API and
// scraper data.
type ManualSource struct {
	festivals []domain.Festival
	logger    *slog.Logger
}

func NewManualSource() *ManualSource {
	return &ManualSource{
		festivals: buildCuratedFestivals(),
		logger:    slog.Default().With("component", "source-manual"),
	}
}

func (m *ManualSource) Source() domain.Source {
	return domain.SourceManual
}

func (m *ManualSource) Fetch(ctx context.Context) ([]domain.Festival, error) {
	m.logger.Info("fetched festivals", "count", len(m.festivals))

	out := make([]domain.Festival, len(m.festivals))
	copy(out, m.festivals)
	return out, nil
}

type curatedEntry struct {
	name       string
	desc       string
	startDate  string
	endDate    string
	venue      string
	city       string
	country    domain.Country
	lat        float64
	lng        float64
	genres     []domain.Genre
	lineup     []string
	websiteURL string
}

func buildCuratedFestivals() []domain.Festival {
	entries := []curatedEntry{
		{
			name:      "Hellfest",
			desc:      "The biggest extreme music festival in Europe, four days of metal in the Loire countryside.",
			startDate: "2026-06-18", endDate: "2026-06-21",
			venue: "Val de Moine", city: "Clisson", country: domain.CountryFR,
			lat: 47.0871, lng: -1.2767,
			genres:     []domain.Genre{domain.GenreMetal, domain.GenreRock, domain.GenrePunk},
			lineup:     []string{"Iron Maiden", "Gojira", "Turnstile", "Architects", "Electric Callboy"},
			websiteURL: "https://www.hellfest.fr",
		},
		{
			name:      "Tomorrowland",
			desc:      "The flagship electronic dance music festival, spread over two weekends in Boom.",
			startDate: "2026-07-17", endDate: "2026-07-26",
			venue: "De Schorre", city: "Boom", country: domain.CountryBE,
			lat: 51.0891, lng: 4.3795,
			genres:     []domain.Genre{domain.GenreElectronic},
			lineup:     []string{"Martin Garrix", "Charlotte de Witte", "Amelie Lens", "Swedish House Mafia", "Armin van Buuren"},
			websiteURL: "https://www.tomorrowland.com",
		},
		{
			name:      "Les Vieilles Charrues",
			desc:      "France's largest festival, four days of eclectic programming in central Brittany.",
			startDate: "2026-07-16", endDate: "2026-07-19",
			venue: "Site de Kerampuilh", city: "Carhaix-Plouguer", country: domain.CountryFR,
			lat: 48.2756, lng: -3.5703,
			genres:     []domain.Genre{domain.GenrePop, domain.GenreRock, domain.GenreElectronic},
			lineup:     []string{"Justice", "Angèle", "Fontaines D.C.", "PNL", "Clara Luciani"},
			websiteURL: "https://www.vieillescharrues.asso.fr",
		},
		{
			name:      "Rock en Seine",
			desc:      "Late-summer rock and indie weekender in the Domaine national de Saint-Cloud.",
			startDate: "2026-08-26", endDate: "2026-08-30",
			venue: "Domaine national de Saint-Cloud", city: "Saint-Cloud", country: domain.CountryFR,
			lat: 48.8529, lng: 2.2163,
			genres:     []domain.Genre{domain.GenreRock, domain.GenreIndie, domain.GenrePop},
			lineup:     []string{"Arctic Monkeys", "Phoenix", "Fred again..", "IDLES", "Beabadoobee"},
			websiteURL: "https://www.rockenseine.com",
		},
		{
			name:      "Paléo Festival",
			desc:      "Switzerland's largest open-air festival on the shores of Lake Geneva.",
			startDate: "2026-07-21", endDate: "2026-07-26",
			venue: "Plaine de l'Asse", city: "Nyon", country: domain.CountryCH,
			lat: 46.3936, lng: 6.2286,
			genres:     []domain.Genre{domain.GenreRock, domain.GenrePop, domain.GenreWorld},
			lineup:     []string{"Stromae", "Muse", "Aya Nakamura", "Royal Blood", "Zaho de Sagazan"},
			websiteURL: "https://www.paleo.ch",
		},
		{
			name:      "Primavera Sound",
			desc:      "Barcelona's genre-spanning city festival at the Parc del Fòrum.",
			startDate: "2026-06-03", endDate: "2026-06-07",
			venue: "Parc del Fòrum", city: "Barcelona", country: domain.CountryES,
			lat: 41.4106, lng: 2.2246,
			genres:     []domain.Genre{domain.GenreIndie, domain.GenreElectronic, domain.GenreHipHop},
			lineup:     []string{"Lana Del Rey", "Bicep", "Rosalía", "Slowdive", "Floating Points"},
			websiteURL: "https://www.primaverasound.com",
		},
		{
			name:      "Glastonbury Festival",
			desc:      "The legendary five-day festival of contemporary performing arts at Worthy Farm.",
			startDate: "2026-06-24", endDate: "2026-06-28",
			venue: "Worthy Farm", city: "Pilton", country: domain.CountryGB,
			lat: 51.1544, lng: -2.5851,
			genres:     []domain.Genre{domain.GenreRock, domain.GenrePop, domain.GenreElectronic, domain.GenreFolk},
			lineup:     []string{"Radiohead", "Dua Lipa", "Little Simz", "The Cure", "Four Tet"},
			websiteURL: "https://www.glastonburyfestivals.co.uk",
		},
		{
			name:      "Rock am Ring",
			desc:      "Germany's twin rock institution at the Nürburgring circuit.",
			startDate: "2026-06-05", endDate: "2026-06-07",
			venue: "Nürburgring", city: "Nürburg", country: domain.CountryDE,
			lat: 50.3356, lng: 6.9475,
			genres:     []domain.Genre{domain.GenreRock, domain.GenreMetal, domain.GenrePunk},
			lineup:     []string{"Rammstein", "Bring Me The Horizon", "Billy Talent", "Spiritbox", "Kraftklub"},
			websiteURL: "https://www.rock-am-ring.com",
		},
		{
			name:      "Dour Festival",
			desc:      "Five days and nights of electronic and alternative music in the Belgian Borinage.",
			startDate: "2026-07-15", endDate: "2026-07-19",
			venue: "Plaine de la Machine à Feu", city: "Dour", country: domain.CountryBE,
			lat: 50.3911, lng: 3.7786,
			genres:     []domain.Genre{domain.GenreElectronic, domain.GenreHipHop, domain.GenreIndie},
			lineup:     []string{"Skrillex", "Jamie xx", "Central Cee", "Overmono", "Shay"},
			websiteURL: "https://www.dourfestival.eu",
		},
		{
			name:      "Sónar",
			desc:      "Barcelona's pioneering festival of advanced music and multimedia art.",
			startDate: "2026-06-18", endDate: "2026-06-20",
			venue: "Fira Montjuïc", city: "Barcelona", country: domain.CountryES,
			lat: 41.3723, lng: 2.1518,
			genres:     []domain.Genre{domain.GenreElectronic},
			lineup:     []string{"Aphex Twin", "Peggy Gou", "Richie Hawtin", "Arca", "Folamour"},
			websiteURL: "https://sonar.es",
		},
	}

	festivals := make([]domain.Festival, 0, len(entries))
	for _, e := range entries {
		festivals = append(festivals, e.toFestival())
	}
	return festivals
}

func (e curatedEntry) toFestival() domain.Festival {
	lineup := make([]domain.Artist, 0, len(e.lineup))
	for _, name := range e.lineup {
		lineup = append(lineup, domain.Artist{
			ID:     pipeline.Slugify(name),
			Name:   name,
			Genres: e.genres,
		})
	}

	headliners := lineup
	if len(headliners) > 5 {
		headliners = headliners[:5]
	}

	slug := pipeline.Slugify(e.name + "-" + e.city + "-" + seasonYear)

	return domain.Festival{
		ID:          "manual-" + slug,
		Name:        e.name,
		Slug:        slug,
		Description: e.desc,
		StartDate:   e.startDate,
		EndDate:     e.endDate,
		Venue: domain.Venue{
			Name:        e.venue,
			City:        e.city,
			Country:     e.country,
			CountryName: domain.CountryNames[e.country],
			Coordinates: domain.Coordinates{Lat: e.lat, Lng: e.lng},
		},
		Genres:         e.genres,
		Lineup:         lineup,
		Headliners:     headliners,
		WebsiteURL:     e.websiteURL,
		Source:         domain.SourceManual,
		SourceID:       slug,
		LastUpdated:    time.Now(),
		SearchableText: searchableText(e.name, e.city, lineup, e.genres),
	}
}
