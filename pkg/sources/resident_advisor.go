package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/html"

	"github.com/yair/festival-atlas/pkg/domain"
	"github.com/yair/festival-atlas/pkg/pipeline"
)

type raCountry struct {
	code domain.Country
	slug string
}

func defaultRACountries() []raCountry {
	return []raCountry{
		{domain.CountryFR, "france"},
		{domain.CountryBE, "belgium"},
		{domain.CountryCH, "switzerland"},
		{domain.CountryDE, "germany"},
		{domain.CountryES, "spain"},
		{domain.CountryIT, "italy"},
		{domain.CountryGB, "uk"},
	}
}

// ResidentAdvisorScraper reads the schema.org JSON-LD blocks embedded in
// Resident Advisor event listing pages. RA only covers electronic music,
// so every record is tagged with that genre.
type ResidentAdvisorScraper struct {
	baseURL     string
	countries   []raCountry
	userAgent   string
	httpClient  *http.Client
	rateLimiter *rateLimiter
	logger      *slog.Logger
}

// ResidentAdvisorConfig for the JSON-LD scraper.
type ResidentAdvisorConfig struct {
	BaseURL      string
	UserAgent    string
	RequestDelay time.Duration
}

func NewResidentAdvisorScraper(config ResidentAdvisorConfig) *ResidentAdvisorScraper {
	if config.BaseURL == "" {
		config.BaseURL = "https://ra.co"
	}
	if config.UserAgent == "" {
		config.UserAgent = "FestivalAtlas/1.0 (festival-aggregator)"
	}
	if config.RequestDelay == 0 {
		config.RequestDelay = 2 * time.Second
	}

	return &ResidentAdvisorScraper{
		baseURL:     config.BaseURL,
		countries:   defaultRACountries(),
		userAgent:   config.UserAgent,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimiter: newRateLimiter(config.RequestDelay),
		logger:      slog.Default().With("component", "source-resident-advisor"),
	}
}

func (r *ResidentAdvisorScraper) Source() domain.Source {
	return domain.SourceResidentAdvisor
}

// Fetch walks the country listing pages sequentially. A failing country is
// logged and skipped.
func (r *ResidentAdvisorScraper) Fetch(ctx context.Context) ([]domain.Festival, error) {
	var festivals []domain.Festival

	for _, country := range r.countries {
		if err := r.rateLimiter.Wait(ctx); err != nil {
			return festivals, err
		}

		records, err := r.scrapeCountry(ctx, country)
		if err != nil {
			r.logger.Warn("country scrape failed", "country", country.slug, "error", err)
			continue
		}
		festivals = append(festivals, records...)
	}

	r.logger.Info("fetched festivals", "count", len(festivals))
	return festivals, nil
}

// schemaEvent is the subset of schema.org Event markup RA embeds.
type schemaEvent struct {
	Type        string          `json:"@type"`
	Name        string          `json:"name"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Location    schemaLocation  `json:"location"`
	Performer   json.RawMessage `json:"performer"`
	Image       json.RawMessage `json:"image"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
	Offers      struct {
		URL string `json:"url"`
	} `json:"offers"`
}

type schemaLocation struct {
	Name    string `json:"name"`
	Address struct {
		AddressLocality string `json:"addressLocality"`
		AddressCountry  string `json:"addressCountry"`
	} `json:"address"`
	Geo struct {
		Latitude  json.Number `json:"latitude"`
		Longitude json.Number `json:"longitude"`
	} `json:"geo"`
}

type schemaPerformer struct {
	Name string `json:"name"`
}

func (r *ResidentAdvisorScraper) scrapeCountry(ctx context.Context, country raCountry) ([]domain.Festival, error) {
	url := fmt.Sprintf("%s/events/%s?week=%s", r.baseURL, country.slug, seasonStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape failed: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var festivals []domain.Festival
	for _, event := range extractJSONLD(doc) {
		if festival, ok := normalizeSchemaEvent(event, country.code); ok {
			festivals = append(festivals, festival)
		}
	}

	return festivals, nil
}

// extractJSONLD collects schema.org events from ld+json script blocks. A
// block may hold a single object or an array; malformed blocks are skipped.
func extractJSONLD(doc *html.Node) []schemaEvent {
	var events []schemaEvent

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && attrValue(n, "type") == "application/ld+json" {
			raw := nodeText(n)

			var batch []schemaEvent
			if err := json.Unmarshal([]byte(raw), &batch); err != nil {
				var single schemaEvent
				if err := json.Unmarshal([]byte(raw), &single); err != nil {
					return
				}
				batch = []schemaEvent{single}
			}

			for _, event := range batch {
				switch event.Type {
				case "MusicEvent", "Festival", "Event":
					events = append(events, event)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return events
}

// parsePerformers handles both the single-object and array forms of the
// schema.org performer field.
func parsePerformers(raw json.RawMessage) []schemaPerformer {
	if len(raw) == 0 {
		return nil
	}

	var many []schemaPerformer
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}

	var one schemaPerformer
	if err := json.Unmarshal(raw, &one); err == nil {
		return []schemaPerformer{one}
	}
	return nil
}

func parseImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		if len(many) > 0 {
			return many[0]
		}
		return ""
	}

	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return one
	}
	return ""
}

func normalizeSchemaEvent(event schemaEvent, country domain.Country) (domain.Festival, bool) {
	if event.Name == "" || len(event.StartDate) < 10 {
		return domain.Festival{}, false
	}

	lat, latErr := strconv.ParseFloat(event.Location.Geo.Latitude.String(), 64)
	lng, lngErr := strconv.ParseFloat(event.Location.Geo.Longitude.String(), 64)
	if latErr != nil || lngErr != nil || (lat == 0 && lng == 0) {
		return domain.Festival{}, false
	}

	startDate := event.StartDate[:10]
	endDate := startDate
	if len(event.EndDate) >= 10 {
		endDate = event.EndDate[:10]
	}

	if startDate[:4] != seasonYear || !summerMonth(startDate) {
		return domain.Festival{}, false
	}

	city := event.Location.Address.AddressLocality
	if city == "" {
		city = "Unknown"
	}

	var lineup []domain.Artist
	for _, performer := range parsePerformers(event.Performer) {
		if performer.Name == "" {
			continue
		}
		lineup = append(lineup, domain.Artist{
			ID:     pipeline.Slugify(performer.Name),
			Name:   performer.Name,
			Genres: []domain.Genre{domain.GenreElectronic},
		})
	}

	headliners := lineup
	if len(headliners) > 5 {
		headliners = headliners[:5]
	}

	slug := pipeline.Slugify(event.Name + "-" + city + "-" + seasonYear)

	venueName := event.Location.Name
	if venueName == "" {
		venueName = city
	}

	imageURL := parseImage(event.Image)
	var images []string
	if imageURL != "" {
		images = []string{imageURL}
	}

	ticketURL := event.Offers.URL
	if ticketURL == "" {
		ticketURL = event.URL
	}

	genres := []domain.Genre{domain.GenreElectronic}

	return domain.Festival{
		ID:          "ra-" + slug,
		Name:        event.Name,
		Slug:        slug,
		Description: event.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		Venue: domain.Venue{
			Name:        venueName,
			City:        city,
			Country:     country,
			CountryName: domain.CountryNames[country],
			Coordinates: domain.Coordinates{Lat: lat, Lng: lng},
		},
		Genres:         genres,
		Lineup:         lineup,
		Headliners:     headliners,
		ImageURL:       imageURL,
		Images:         images,
		TicketURL:      ticketURL,
		WebsiteURL:     event.URL,
		Source:         domain.SourceResidentAdvisor,
		SourceID:       slug,
		LastUpdated:    time.Now(),
		SearchableText: searchableText(event.Name, city, lineup, genres),
	}, true
}
