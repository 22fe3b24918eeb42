package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yair/festival-atlas/pkg/domain"
	"github.com/yair/festival-atlas/pkg/pipeline"
)

const ticketmasterPageCap = 10 // Discovery API deep-paging limit safety

// TicketmasterClient fetches summer festivals from the Ticketmaster
// Discovery API, one country at a time.
type TicketmasterClient struct {
	baseURL     string
	apiKey      string
	countries   []domain.Country
	httpClient  *http.Client
	rateLimiter *rateLimiter
	logger      *slog.Logger
}

// TicketmasterConfig for the Discovery API client.
type TicketmasterConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string
	// Countries overrides the default target-country list.
	Countries []domain.Country
}

func NewTicketmasterClient(config TicketmasterConfig) (*TicketmasterClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ticketmaster API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://app.ticketmaster.com/discovery/v2"
	}
	if len(config.Countries) == 0 {
		config.Countries = domain.TargetCountries
	}

	return &TicketmasterClient{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		countries:  config.Countries,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		// Discovery API allows 5 req/s
		rateLimiter: newRateLimiter(250 * time.Millisecond),
		logger:      slog.Default().With("component", "source-ticketmaster"),
	}, nil
}

func (c *TicketmasterClient) Source() domain.Source {
	return domain.SourceTicketmaster
}

type tmEvent struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	URL             string                `json:"url"`
	Images          []tmImage             `json:"images"`
	Dates           tmDates               `json:"dates"`
	Classifications []tmClassification    `json:"classifications"`
	PriceRanges     []tmPriceRange        `json:"priceRanges"`
	Info            string                `json:"info"`
	PleaseNote      string                `json:"pleaseNote"`
	Embedded        struct {
		Venues      []tmVenue      `json:"venues"`
		Attractions []tmAttraction `json:"attractions"`
	} `json:"_embedded"`
}

type tmImage struct {
	URL    string `json:"url"`
	Ratio  string `json:"ratio"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type tmDates struct {
	Start  tmEventDate `json:"start"`
	End    tmEventDate `json:"end"`
	Status struct {
		Code string `json:"code"`
	} `json:"status"`
}

type tmEventDate struct {
	LocalDate string `json:"localDate"`
}

type tmClassification struct {
	Segment  tmClassificationItem `json:"segment"`
	Genre    tmClassificationItem `json:"genre"`
	SubGenre tmClassificationItem `json:"subGenre"`
}

type tmClassificationItem struct {
	Name string `json:"name"`
}

type tmPriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

type tmVenue struct {
	Name       string `json:"name"`
	PostalCode string `json:"postalCode"`
	City       struct {
		Name string `json:"name"`
	} `json:"city"`
	State struct {
		Name string `json:"name"`
	} `json:"state"`
	Country struct {
		Name        string `json:"name"`
		CountryCode string `json:"countryCode"`
	} `json:"country"`
	Address struct {
		Line1 string `json:"line1"`
	} `json:"address"`
	Location struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"location"`
}

type tmAttraction struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Images          []tmImage          `json:"images"`
	Classifications []tmClassification `json:"classifications"`
}

type tmEventsResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
	Page struct {
		TotalPages int `json:"totalPages"`
		Number     int `json:"number"`
	} `json:"page"`
}

// Fetch pulls every target country concurrently; a failing country is
// logged and skipped rather than failing the whole source.
func (c *TicketmasterClient) Fetch(ctx context.Context) ([]domain.Festival, error) {
	var (
		mu        sync.Mutex
		festivals []domain.Festival
		wg        sync.WaitGroup
	)

	for _, country := range c.countries {
		wg.Add(1)
		go func(country domain.Country) {
			defer wg.Done()

			records, err := c.fetchCountry(ctx, country)
			if err != nil {
				c.logger.Warn("country fetch failed", "country", country, "error", err)
				return
			}

			mu.Lock()
			festivals = append(festivals, records...)
			mu.Unlock()
		}(country)
	}

	wg.Wait()

	c.logger.Info("fetched festivals", "count", len(festivals))
	return festivals, nil
}

func (c *TicketmasterClient) fetchCountry(ctx context.Context, country domain.Country) ([]domain.Festival, error) {
	var festivals []domain.Festival

	page := 0
	totalPages := 1
	for page < totalPages && page < ticketmasterPageCap {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return festivals, err
		}

		resp, err := c.fetchPage(ctx, country, page)
		if err != nil {
			return festivals, err
		}

		if resp == nil { // rate limited, retry the same page
			continue
		}

		totalPages = resp.Page.TotalPages
		for _, event := range resp.Embedded.Events {
			if !isFestival(event) {
				continue
			}
			if festival, ok := c.normalizeEvent(event, country); ok {
				festivals = append(festivals, festival)
			}
		}

		page++
	}

	return festivals, nil
}

// fetchPage returns nil without error when the API asked us to back off.
func (c *TicketmasterClient) fetchPage(ctx context.Context, country domain.Country, page int) (*tmEventsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events.json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("keyword", "festival")
	q.Set("classificationName", "music")
	q.Set("countryCode", string(country))
	q.Set("startDateTime", seasonStart+"T00:00:00Z")
	q.Set("endDateTime", seasonEnd+"T23:59:59Z")
	q.Set("size", "200")
	q.Set("page", strconv.Itoa(page))
	q.Set("sort", "date,asc")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
			return nil, nil
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ticketmaster search failed: status %d", resp.StatusCode)
	}

	var eventsResp tmEventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&eventsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if eventsResp.Page.TotalPages == 0 {
		eventsResp.Page.TotalPages = 1
	}

	return &eventsResp, nil
}

// isFestival separates festival listings from single concerts: festival
// keywords in the name, or a multi-day music event.
func isFestival(event tmEvent) bool {
	name := strings.ToLower(event.Name)
	for _, kw := range []string{"festival", "fest ", "fest.", "fête", "fete"} {
		if strings.Contains(name, kw) {
			return true
		}
	}

	for _, cl := range event.Classifications {
		if cl.Segment.Name == "Music" {
			start := event.Dates.Start.LocalDate
			end := event.Dates.End.LocalDate
			return start != "" && end != "" && start != end
		}
	}

	return false
}

func (c *TicketmasterClient) normalizeEvent(event tmEvent, country domain.Country) (domain.Festival, bool) {
	if len(event.Embedded.Venues) == 0 {
		return domain.Festival{}, false
	}
	venue := event.Embedded.Venues[0]
	if venue.Location.Latitude == "" || venue.Location.Longitude == "" {
		return domain.Festival{}, false
	}
	city := venue.City.Name
	if city == "" {
		return domain.Festival{}, false
	}

	startDate := event.Dates.Start.LocalDate
	if startDate == "" {
		return domain.Festival{}, false
	}
	endDate := event.Dates.End.LocalDate
	if endDate == "" {
		endDate = startDate
	}

	lat, _ := strconv.ParseFloat(venue.Location.Latitude, 64)
	lng, _ := strconv.ParseFloat(venue.Location.Longitude, 64)

	genres := classificationGenres(event.Classifications)
	if len(genres) == 0 {
		genres = []domain.Genre{domain.GenreOther}
	}

	lineup := make([]domain.Artist, 0, len(event.Embedded.Attractions))
	for _, a := range event.Embedded.Attractions {
		lineup = append(lineup, domain.Artist{
			ID:       pipeline.Slugify(a.Name),
			Name:     a.Name,
			ImageURL: firstImageURL(a.Images),
			Genres:   classificationGenres(a.Classifications),
		})
	}
	headliners := lineup
	if len(headliners) > 5 {
		headliners = headliners[:5]
	}

	imageURL, thumbnailURL := pickBestImages(event.Images)
	images := make([]string, 0, len(event.Images))
	for _, img := range event.Images {
		images = append(images, img.URL)
	}

	var priceRange *domain.PriceRange
	if len(event.PriceRanges) > 0 {
		pr := event.PriceRanges[0]
		currency := pr.Currency
		if currency == "" {
			currency = "EUR"
		}
		priceRange = &domain.PriceRange{Min: pr.Min, Max: pr.Max, Currency: currency}
	}

	description := event.Info
	if description == "" {
		description = event.PleaseNote
	}

	return domain.Festival{
		ID:          "tm-" + event.ID,
		Name:        event.Name,
		Slug:        pipeline.Slugify(event.Name + "-" + city + "-" + seasonYear),
		Description: description,
		StartDate:   startDate,
		EndDate:     endDate,
		Venue: domain.Venue{
			Name:        venue.Name,
			Address:     venue.Address.Line1,
			City:        city,
			Region:      venue.State.Name,
			Country:     country,
			CountryName: domain.CountryNames[country],
			PostalCode:  venue.PostalCode,
			Coordinates: domain.Coordinates{Lat: lat, Lng: lng},
		},
		Genres:         genres,
		Lineup:         lineup,
		Headliners:     headliners,
		ImageURL:       imageURL,
		ThumbnailURL:   thumbnailURL,
		Images:         images,
		TicketURL:      event.URL,
		PriceRange:     priceRange,
		OnSaleStatus:   mapSaleStatus(event.Dates.Status.Code),
		WebsiteURL:     event.URL,
		Source:         domain.SourceTicketmaster,
		SourceID:       event.ID,
		LastUpdated:    time.Now(),
		SearchableText: searchableText(event.Name, city, lineup, genres),
	}, true
}

func classificationGenres(classifications []tmClassification) []domain.Genre {
	var genres []domain.Genre
	seen := make(map[domain.Genre]bool)
	for _, cl := range classifications {
		name := cl.Genre.Name
		if name == "" || name == "Undefined" {
			continue
		}
		g := pipeline.ClassifyTicketmasterGenre(name)
		if !seen[g] {
			seen[g] = true
			genres = append(genres, g)
		}
	}
	return genres
}

// pickBestImages prefers a wide 16:9 image for the hero and a small 4:3 one
// for the thumbnail, falling back to the first image for either.
func pickBestImages(images []tmImage) (imageURL, thumbnailURL string) {
	if len(images) == 0 {
		return "", ""
	}

	imageURL = images[0].URL
	thumbnailURL = images[0].URL
	for _, img := range images {
		if img.Ratio == "16_9" && img.Width >= 1024 {
			imageURL = img.URL
			break
		}
	}
	for _, img := range images {
		if img.Ratio == "4_3" && img.Width <= 400 {
			thumbnailURL = img.URL
			break
		}
	}
	return imageURL, thumbnailURL
}

func firstImageURL(images []tmImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func mapSaleStatus(code string) domain.SaleStatus {
	switch code {
	case "onsale":
		return domain.SaleStatusOnSale
	case "offsale", "cancelled", "postponed":
		return domain.SaleStatusOffSale
	default:
		return domain.SaleStatusUpcoming
	}
}
