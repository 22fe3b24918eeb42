package pipeline

import (
	"regexp"
	"strings"
)

var (
	// Noise stripped from festival names before keying: the event-type words
	// every edition re-uses, plus any 4-digit year.
	nameNoiseRe     = regexp.MustCompile(`(?i)festival|fest |fest\.|fest$|fête|fete|edition|\d{4}`)
	nonAlphanumRe   = regexp.MustCompile(`[^a-z0-9]`)
	nonLetterRe     = regexp.MustCompile(`[^a-z]`)
)

// Fingerprint derives the identity key used to decide that two records from
// different sources describe the same real-world festival. It is a pure
// function of (name, city, startDate): lowercased name with noise words and
// non-alphanumerics stripped, lowercased city letters only, and the YYYY-MM
// prefix of the start date, joined with dashes.
//
// A name made entirely of noise words degrades to "-city-month" and can
// collide with similarly generic events in the same city and month. That
// false-positive merge risk is accepted; tightening the key would split true
// duplicates whose names differ only by edition noise.
func Fingerprint(name, city, startDate string) string {
	normalizedName := strings.ToLower(name)
	normalizedName = nameNoiseRe.ReplaceAllString(normalizedName, "")
	normalizedName = nonAlphanumRe.ReplaceAllString(normalizedName, "")
	normalizedName = strings.TrimSpace(normalizedName)

	normalizedCity := nonLetterRe.ReplaceAllString(strings.ToLower(city), "")

	month := startDate
	if len(month) > 7 {
		month = month[:7] // YYYY-MM
	}

	return normalizedName + "-" + normalizedCity + "-" + month
}
