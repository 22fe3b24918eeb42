// Package sources contains the per-source fetchers. Each fetcher normalizes
// its payload into the common domain.Festival shape before anything
// downstream sees it; the pipeline never operates on source-specific shapes.
package sources

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yair/festival-atlas/pkg/domain"
)

// Season is the date window the fetchers cover.
const (
	seasonYear  = "2026"
	seasonStart = "2026-06-01"
	seasonEnd   = "2026-08-31"
)

// summerMonth reports whether a YYYY-MM-DD date falls in the wider
// May-September window kept by the listing sources.
func summerMonth(date string) bool {
	if len(date) < 7 {
		return false
	}
	month := date[5:7]
	return month >= "05" && month <= "09"
}

// rateLimiter enforces a fixed delay between requests to one host.
type rateLimiter struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
}

func newRateLimiter(delay time.Duration) *rateLimiter {
	return &rateLimiter{delay: delay}
}

func (r *rateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.last)
	if elapsed < r.delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay - elapsed):
		}
	}

	r.last = time.Now()
	return nil
}

// searchableText precomputes the lowercase blob used for client-side text
// search: name, city, performer names and genre tags.
func searchableText(name, city string, lineup []domain.Artist, genres []domain.Genre) string {
	parts := make([]string, 0, 2+len(lineup)+len(genres))
	parts = append(parts, name, city)
	for _, a := range lineup {
		parts = append(parts, a.Name)
	}
	for _, g := range genres {
		parts = append(parts, string(g))
	}
	return strings.ToLower(strings.Join(parts, " "))
}
