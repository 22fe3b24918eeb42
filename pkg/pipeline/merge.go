package pipeline

import (
	"strings"

	"github.com/yair/festival-atlas/pkg/domain"
)

// Merge folds two records that share a fingerprint into one. primary must
// be the record from the higher-priority source; its fields win whenever
// they are present, and secondary only fills the gaps. Merge is therefore
// not commutative — callers establish the priority direction first.
//
// List semantics differ by field: lineup, headliners and the day-by-day
// breakdown are taken wholesale from whichever side is non-empty (a
// non-empty primary lineup fully shadows the secondary's, extra performers
// and all), while images and genres are unioned. The searchable text blobs
// are concatenated rather than regenerated, so text from both sources stays
// findable.
func Merge(primary, secondary domain.Festival) domain.Festival {
	merged := primary

	merged.Description = firstNonEmpty(primary.Description, secondary.Description)
	merged.ImageURL = firstNonEmpty(primary.ImageURL, secondary.ImageURL)
	merged.ThumbnailURL = firstNonEmpty(primary.ThumbnailURL, secondary.ThumbnailURL)
	merged.TicketURL = firstNonEmpty(primary.TicketURL, secondary.TicketURL)
	merged.WebsiteURL = firstNonEmpty(primary.WebsiteURL, secondary.WebsiteURL)

	if len(primary.Lineup) == 0 {
		merged.Lineup = secondary.Lineup
	}
	if len(primary.Headliners) == 0 {
		merged.Headliners = secondary.Headliners
	}
	if len(primary.LineupByDay) == 0 {
		merged.LineupByDay = secondary.LineupByDay
	}

	merged.Images = unionStrings(primary.Images, secondary.Images)
	merged.Genres = unionGenres(primary.Genres, secondary.Genres)

	merged.SearchableText = strings.ToLower(primary.SearchableText + " " + secondary.SearchableText)

	return merged
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func unionGenres(a, b []domain.Genre) []domain.Genre {
	seen := make(map[domain.Genre]bool, len(a)+len(b))
	out := make([]domain.Genre, 0, len(a)+len(b))
	for _, g := range a {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	for _, g := range b {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}
