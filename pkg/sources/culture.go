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
	"time"

	"github.com/yair/festival-atlas/pkg/domain"
	"github.com/yair/festival-atlas/pkg/pipeline"
)

const culturePageSize = 100

// CultureClient fetches the national festival census from the
// data.culture.gouv.fr open-data portal. The census has venue, date-period
// and genre data but no lineups.
type CultureClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// CultureConfig for the open-data client.
type CultureConfig struct {
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string
}

func NewCultureClient(config CultureConfig) *CultureClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://data.culture.gouv.fr/api/explore/v2.1/catalog/datasets/festivals-global-festivals-_-pl/records"
	}

	return &CultureClient{
		baseURL:    config.BaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default().With("component", "source-culture"),
	}
}

func (c *CultureClient) Source() domain.Source {
	return domain.SourceDataCultureGouv
}

type cultureRecord struct {
	Name       string `json:"nom_du_festival"`
	City       string `json:"commune_principale_de_deroulement"`
	Region     string `json:"region_principale_de_deroulement"`
	Department string `json:"departement_principal_de_deroulement"`
	Geo        *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"geocodage_xy"`
	MusicCategory    string `json:"sous_categorie_musique"`
	MusicCategoryCNM string `json:"sous_categorie_musique_cnm"`
	Website          string `json:"site_internet_du_festival"`
	Period           string `json:"periode_principale_de_deroulement_du_festival"`
}

type cultureResponse struct {
	Results []cultureRecord `json:"results"`
}

// Fetch pages through the census until a short page signals the end.
func (c *CultureClient) Fetch(ctx context.Context) ([]domain.Festival, error) {
	var festivals []domain.Festival

	for offset := 0; ; offset += culturePageSize {
		records, err := c.fetchPage(ctx, offset)
		if err != nil {
			// Keep what earlier pages produced.
			if len(festivals) > 0 {
				c.logger.Warn("pagination aborted", "offset", offset, "error", err)
				break
			}
			return nil, err
		}

		for _, record := range records {
			if festival, ok := c.normalizeRecord(record); ok {
				festivals = append(festivals, festival)
			}
		}

		if len(records) < culturePageSize {
			break
		}
	}

	c.logger.Info("fetched festivals", "count", len(festivals))
	return festivals, nil
}

func (c *CultureClient) fetchPage(ctx context.Context, offset int) ([]cultureRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(culturePageSize))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("where", "sous_categorie_musique is not null")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("data.culture.gouv.fr request failed: status %d", resp.StatusCode)
	}

	var payload cultureResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return payload.Results, nil
}

// periodDates maps French month words in the census period field onto
// approximate dates in the season year.
var periodDates = []struct {
	month string
	start string
	end   string
}{
	{"janvier", seasonYear + "-01-15", seasonYear + "-01-17"},
	{"fevrier", seasonYear + "-02-15", seasonYear + "-02-17"},
	{"mars", seasonYear + "-03-15", seasonYear + "-03-17"},
	{"avril", seasonYear + "-04-15", seasonYear + "-04-17"},
	{"mai", seasonYear + "-05-15", seasonYear + "-05-17"},
	{"juin", seasonYear + "-06-15", seasonYear + "-06-17"},
	{"juillet", seasonYear + "-07-15", seasonYear + "-07-17"},
	{"aout", seasonYear + "-08-15", seasonYear + "-08-17"},
	{"septembre", seasonYear + "-09-15", seasonYear + "-09-17"},
}

func periodToDateRange(period string) (startDate, endDate string, ok bool) {
	if period == "" {
		return "", "", false
	}

	lower := strings.ToLower(period)
	for _, p := range periodDates {
		if strings.Contains(lower, p.month) {
			return p.start, p.end, true
		}
	}

	if strings.Contains(lower, "ete") || strings.Contains(lower, "été") {
		return seasonYear + "-07-01", seasonYear + "-07-03", true
	}

	return "", "", false
}

func (c *CultureClient) normalizeRecord(record cultureRecord) (domain.Festival, bool) {
	if record.Name == "" || record.City == "" {
		return domain.Festival{}, false
	}
	if record.Geo == nil || record.Geo.Lat == 0 || record.Geo.Lon == 0 {
		return domain.Festival{}, false
	}

	startDate, endDate, ok := periodToDateRange(record.Period)
	if !ok || !summerMonth(startDate) {
		return domain.Festival{}, false
	}

	genreStr := record.MusicCategory
	if genreStr == "" {
		genreStr = record.MusicCategoryCNM
	}
	var genres []domain.Genre
	seen := make(map[domain.Genre]bool)
	for _, part := range strings.Split(genreStr, ",") {
		g := pipeline.ClassifyCultureGenre(strings.TrimSpace(part))
		if !seen[g] {
			seen[g] = true
			genres = append(genres, g)
		}
	}
	if len(genres) == 0 {
		genres = []domain.Genre{domain.GenreOther}
	}

	slug := pipeline.Slugify(record.Name + "-" + record.City + "-" + seasonYear)

	return domain.Festival{
		ID:        "dc-" + slug,
		Name:      record.Name,
		Slug:      slug,
		StartDate: startDate,
		EndDate:   endDate,
		Venue: domain.Venue{
			Name:        record.City,
			City:        record.City,
			Region:      record.Region,
			Country:     domain.CountryFR,
			CountryName: domain.CountryNames[domain.CountryFR],
			Coordinates: domain.Coordinates{Lat: record.Geo.Lat, Lng: record.Geo.Lon},
		},
		Genres:         genres,
		Lineup:         []domain.Artist{},
		Headliners:     []domain.Artist{},
		Images:         []string{},
		WebsiteURL:     record.Website,
		Source:         domain.SourceDataCultureGouv,
		SourceID:       slug,
		LastUpdated:    time.Now(),
		SearchableText: searchableText(record.Name, record.City, nil, genres),
	}, true
}
