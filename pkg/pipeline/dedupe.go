package pipeline

import (
	"log/slog"
	"sort"

	"github.com/yair/festival-atlas/pkg/domain"
)

// Deduplicate collapses records describing the same festival into one.
//
// Records are stable-sorted by source priority descending, then grouped by
// fingerprint. The first record seen for a fingerprint is the group's
// winner; every later (lower-priority) record is merged into it as the
// secondary side. The sort guarantees the winner is always the
// highest-priority record in its group, so priority direction never flips
// mid-fold. Output order is unspecified; the orchestrator re-sorts.
func Deduplicate(records []domain.Festival) []domain.Festival {
	sorted := make([]domain.Festival, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Source.Priority() > sorted[j].Source.Priority()
	})

	winners := make(map[string]domain.Festival)
	order := make([]string, 0, len(sorted))

	for _, record := range sorted {
		fp := Fingerprint(record.Name, record.Venue.City, record.StartDate)
		if existing, ok := winners[fp]; ok {
			winners[fp] = Merge(existing, record)
		} else {
			winners[fp] = record
			order = append(order, fp)
		}
	}

	out := make([]domain.Festival, 0, len(winners))
	for _, fp := range order {
		out = append(out, winners[fp])
	}

	slog.Default().Info("deduplication completed",
		"component", "pipeline",
		"input", len(records),
		"output", len(out),
		"merged", len(records)-len(out),
	)

	return out
}
