package pipeline

import (
	"log/slog"

	"github.com/yair/festival-atlas/pkg/domain"
)

// FilterByLocation drops records whose coordinates are the unknown-location
// sentinel. Music Festival Wizard records are exempt: that source never
// carries coordinates and its records are geocoded downstream.
func FilterByLocation(records []domain.Festival) []domain.Festival {
	kept := make([]domain.Festival, 0, len(records))
	for _, f := range records {
		if !f.Venue.Coordinates.IsZero() || f.Source == domain.SourceMusicFestivalWizard {
			kept = append(kept, f)
		}
	}

	slog.Default().Info("location filter",
		"component", "pipeline",
		"kept", len(kept),
		"dropped", len(records)-len(kept),
	)

	return kept
}

// FilterByLineup keeps only records with at least one performer. Sources
// without lineup data (the open-data portal in particular) are considered
// too low-signal to surface, even when their venue and date data is sound.
func FilterByLineup(records []domain.Festival) []domain.Festival {
	kept := make([]domain.Festival, 0, len(records))
	for _, f := range records {
		if len(f.Lineup) >= 1 {
			kept = append(kept, f)
		}
	}

	slog.Default().Info("lineup filter",
		"component", "pipeline",
		"kept", len(kept),
		"dropped", len(records)-len(kept),
	)

	return kept
}
