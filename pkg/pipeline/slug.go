package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/yair/festival-atlas/pkg/domain"
)

var slugSeparatorRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify builds a URL-safe identifier: lowercase, accents folded to their
// base letters, runs of everything else collapsed to single dashes.
func Slugify(text string) string {
	decomposed := norm.NFD.String(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // combining marks left over from decomposition
		}
		b.WriteRune(r)
	}

	slug := slugSeparatorRe.ReplaceAllString(b.String(), "-")
	return strings.Trim(slug, "-")
}

// DisambiguateSlugs rewrites colliding slugs so every record in the
// collection has a unique one. Records are processed in the given
// (chronological) order; the first occurrence of a slug keeps it, the Nth
// occurrence becomes "slug-N". The used set catches the rare case where a
// rewritten slug collides with one that arrived pre-suffixed.
func DisambiguateSlugs(records []domain.Festival) {
	counts := make(map[string]int)
	used := make(map[string]bool)
	for i := range records {
		base := records[i].Slug
		counts[base]++

		slug := base
		if counts[base] > 1 {
			slug = fmt.Sprintf("%s-%d", base, counts[base])
		}
		for used[slug] {
			counts[base]++
			slug = fmt.Sprintf("%s-%d", base, counts[base])
		}

		used[slug] = true
		records[i].Slug = slug
	}
}
