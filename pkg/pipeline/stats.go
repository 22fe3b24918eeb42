package pipeline

import (
	"github.com/yair/festival-atlas/pkg/domain"
)

// Stats holds the aggregate counts published with the dataset.
type Stats struct {
	GenreCounts   map[domain.Genre]int
	CountryCounts map[domain.Country]int
}

// ComputeStats counts genre and country occurrences over the final
// collection. Every canonical genre and every target country is present in
// the maps even at zero, so consumers never need to guard missing keys.
// A festival increments one counter per genre tag it carries, so genre
// counts can sum to more than the record count. Countries outside the
// target set still gain a key on first occurrence.
func ComputeStats(records []domain.Festival) Stats {
	genreCounts := make(map[domain.Genre]int, len(domain.AllGenres))
	for _, g := range domain.AllGenres {
		genreCounts[g] = 0
	}

	countryCounts := make(map[domain.Country]int, len(domain.TargetCountries))
	for _, c := range domain.TargetCountries {
		countryCounts[c] = 0
	}

	for _, f := range records {
		for _, g := range f.Genres {
			genreCounts[g]++
		}
		countryCounts[f.Venue.Country]++
	}

	return Stats{
		GenreCounts:   genreCounts,
		CountryCounts: countryCounts,
	}
}
