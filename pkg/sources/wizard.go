package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/yair/festival-atlas/pkg/domain"
	"github.com/yair/festival-atlas/pkg/pipeline"
)

// WizardPage is one country guide page to scrape.
type WizardPage struct {
	URL     string
	Country domain.Country
}

func defaultWizardPages() []WizardPage {
	const base = "https://www.musicfestivalwizard.com/festival-guide/"
	return []WizardPage{
		{base + "france-festivals/", domain.CountryFR},
		{base + "belgium-festivals/", domain.CountryBE},
		{base + "switzerland-festivals/", domain.CountryCH},
		{base + "germany-festivals/", domain.CountryDE},
		{base + "spain-festivals/", domain.CountryES},
		{base + "italy-festivals/", domain.CountryIT},
		{base + "uk-festivals/", domain.CountryGB},
	}
}

// WizardScraper scrapes the Music Festival Wizard country guides. The site
// lists names, dates, locations and genre tags but no coordinates, so its
// records carry the unknown-location sentinel.
type WizardScraper struct {
	pages       []WizardPage
	userAgent   string
	httpClient  *http.Client
	rateLimiter *rateLimiter
	logger      *slog.Logger
}

// WizardConfig for the listing scraper.
type WizardConfig struct {
	UserAgent    string
	RequestDelay time.Duration
	// Pages overrides the default country guide list, for tests.
	Pages []WizardPage
}

func NewWizardScraper(config WizardConfig) *WizardScraper {
	if config.UserAgent == "" {
		config.UserAgent = "FestivalAtlas/1.0 (festival-aggregator)"
	}
	if config.RequestDelay == 0 {
		config.RequestDelay = 1500 * time.Millisecond
	}
	if len(config.Pages) == 0 {
		config.Pages = defaultWizardPages()
	}

	return &WizardScraper{
		pages:       config.Pages,
		userAgent:   config.UserAgent,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimiter: newRateLimiter(config.RequestDelay),
		logger:      slog.Default().With("component", "source-wizard"),
	}
}

func (w *WizardScraper) Source() domain.Source {
	return domain.SourceMusicFestivalWizard
}

// Fetch scrapes the guide pages sequentially with a fixed delay between
// requests. A failing page is logged and skipped.
func (w *WizardScraper) Fetch(ctx context.Context) ([]domain.Festival, error) {
	var festivals []domain.Festival

	for _, page := range w.pages {
		if err := w.rateLimiter.Wait(ctx); err != nil {
			return festivals, err
		}

		records, err := w.scrapePage(ctx, page)
		if err != nil {
			w.logger.Warn("page scrape failed", "url", page.URL, "error", err)
			continue
		}
		festivals = append(festivals, records...)
	}

	w.logger.Info("fetched festivals", "count", len(festivals))
	return festivals, nil
}

// parsedListing is the raw shape extracted from one listing card.
type parsedListing struct {
	name     string
	dateText string
	location string
	genres   []string
	url      string
	imageURL string
}

func (w *WizardScraper) scrapePage(ctx context.Context, page WizardPage) ([]domain.Festival, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := w.httpClient.Do(req)
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
	for _, listing := range parseListings(doc) {
		if festival, ok := normalizeListing(listing, page.Country); ok {
			festivals = append(festivals, festival)
		}
	}

	return festivals, nil
}

// parseListings walks the document collecting every festival listing card.
func parseListings(doc *html.Node) []parsedListing {
	var listings []parsedListing

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "article" && hasClass(n, "festivalListing") {
			if listing, ok := parseListingCard(n); ok {
				listings = append(listings, listing)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return listings
}

func parseListingCard(article *html.Node) (parsedListing, bool) {
	var listing parsedListing

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h2":
				if a := findChild(n, "a"); a != nil {
					listing.name = strings.TrimSpace(nodeText(a))
					listing.url = attrValue(a, "href")
				}
			case "span":
				text := strings.TrimSpace(nodeText(n))
				switch {
				case hasClass(n, "festivalDate"):
					listing.dateText = text
				case hasClass(n, "festivalLocation"):
					listing.location = text
				case hasClass(n, "festivalGenre"):
					listing.genres = append(listing.genres, text)
				}
			case "img":
				if listing.imageURL == "" {
					listing.imageURL = attrValue(n, "src")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(article)

	if listing.name == "" {
		return parsedListing{}, false
	}
	return listing, true
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func findChild(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findChild(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// monthNumbers is ordered; date texts spanning two months ("June 30 - July
// 2") must resolve to the earlier one deterministically.
var monthNumbers = []struct {
	name string
	num  string
}{
	{"january", "01"}, {"february", "02"}, {"march", "03"}, {"april", "04"},
	{"may", "05"}, {"june", "06"}, {"july", "07"}, {"august", "08"},
	{"september", "09"}, {"october", "10"}, {"november", "11"}, {"december", "12"},
}

var dayNumberRe = regexp.MustCompile(`\d+`)

// parseDateText handles the listing date formats: "June 12 - 15, 2026",
// "July 3-5, 2026", "August 21, 2026".
func parseDateText(dateText string) (startDate, endDate string, ok bool) {
	if !strings.Contains(dateText, seasonYear) {
		return "", "", false
	}

	lower := strings.ToLower(dateText)
	var month string
	for _, m := range monthNumbers {
		if strings.Contains(lower, m.name) {
			month = m.num
			break
		}
	}
	if month == "" {
		return "", "", false
	}

	var days []int
	for _, raw := range dayNumberRe.FindAllString(dateText, -1) {
		n, err := strconv.Atoi(raw)
		if err == nil && n < 32 {
			days = append(days, n)
		}
	}
	if len(days) == 0 {
		return "", "", false
	}

	startDate = fmt.Sprintf("%s-%s-%02d", seasonYear, month, days[0])
	endDate = startDate
	if len(days) > 1 {
		endDate = fmt.Sprintf("%s-%s-%02d", seasonYear, month, days[len(days)-1])
	}
	return startDate, endDate, true
}

func normalizeListing(listing parsedListing, country domain.Country) (domain.Festival, bool) {
	startDate, endDate, ok := parseDateText(listing.dateText)
	if !ok || !summerMonth(startDate) {
		return domain.Festival{}, false
	}

	var genres []domain.Genre
	if len(listing.genres) > 0 {
		genres = pipeline.InferGenresFromText(strings.Join(listing.genres, " "))
	} else {
		genres = pipeline.InferGenresFromText(listing.name)
	}

	city := listing.location
	if city == "" {
		city = "Unknown"
	}

	slug := pipeline.Slugify(listing.name + "-" + city + "-" + seasonYear)

	var images []string
	if listing.imageURL != "" {
		images = []string{listing.imageURL}
	}

	return domain.Festival{
		ID:        "mfw-" + slug,
		Name:      listing.name,
		Slug:      slug,
		StartDate: startDate,
		EndDate:   endDate,
		Venue: domain.Venue{
			Name:        city,
			City:        city,
			Country:     country,
			CountryName: domain.CountryNames[country],
			// No coordinates on the guide pages; geocoded downstream.
			Coordinates: domain.Coordinates{},
		},
		Genres:         genres,
		Lineup:         []domain.Artist{},
		Headliners:     []domain.Artist{},
		ImageURL:       listing.imageURL,
		Images:         images,
		WebsiteURL:     listing.url,
		Source:         domain.SourceMusicFestivalWizard,
		SourceID:       slug,
		LastUpdated:    time.Now(),
		SearchableText: searchableText(listing.name, city, nil, genres),
	}, true
}
