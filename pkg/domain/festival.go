package domain

import (
	"time"
)

// Festival is the single record shape every source normalizes into before
// the pipeline sees it. Dates are YYYY-MM-DD strings so that lexicographic
// comparison is chronological comparison.
type Festival struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	Venue Venue `json:"venue"`

	Genres      []Genre       `json:"genres"`
	Lineup      []Artist      `json:"lineup"`
	LineupByDay []FestivalDay `json:"lineup_by_day,omitempty"`
	Headliners  []Artist      `json:"headliners"`

	ImageURL     string   `json:"image_url,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Images       []string `json:"images"`

	TicketURL    string      `json:"ticket_url,omitempty"`
	PriceRange   *PriceRange `json:"price_range,omitempty"`
	OnSaleStatus SaleStatus  `json:"on_sale_status,omitempty"`

	WebsiteURL string `json:"website_url,omitempty"`

	Source         Source    `json:"source"`
	SourceID       string    `json:"source_id"`
	LastUpdated    time.Time `json:"last_updated"`
	SearchableText string    `json:"searchable_text"`
}

// Coordinates with both values zero mean "location unknown".
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the coordinates are the unknown-location sentinel.
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

type Venue struct {
	Name        string      `json:"name"`
	Address     string      `json:"address,omitempty"`
	City        string      `json:"city"`
	Region      string      `json:"region,omitempty"`
	Country     Country     `json:"country"`
	CountryName string      `json:"country_name"`
	PostalCode  string      `json:"postal_code,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

type Artist struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url,omitempty"`
	Genres   []Genre `json:"genres"`
}

// FestivalDay is one day of a multi-day lineup.
type FestivalDay struct {
	Date    string   `json:"date"`
	Artists []Artist `json:"artists"`
}

type PriceRange struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency"`
}

type SaleStatus string

const (
	SaleStatusOnSale   SaleStatus = "onsale"
	SaleStatusOffSale  SaleStatus = "offsale"
	SaleStatusUpcoming SaleStatus = "upcoming"
	SaleStatusSoldOut  SaleStatus = "soldout"
)

// Dataset is the envelope published after each pipeline run. It is replaced
// wholesale; nothing updates it incrementally.
type Dataset struct {
	Festivals     []Festival      `json:"festivals"`
	LastRefreshed time.Time       `json:"last_refreshed"`
	TotalCount    int             `json:"total_count"`
	GenreCounts   map[Genre]int   `json:"genre_counts"`
	CountryCounts map[Country]int `json:"country_counts"`
}
