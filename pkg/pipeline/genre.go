package pipeline

import (
	"regexp"
	"strings"

	"github.com/yair/festival-atlas/pkg/domain"
)

// ticketmasterGenreMap maps Ticketmaster classification names onto the
// canonical genre set.
var ticketmasterGenreMap = map[string]domain.Genre{
	"Rock":             domain.GenreRock,
	"Pop":              domain.GenrePop,
	"Hip-Hop/Rap":      domain.GenreHipHop,
	"R&B":              domain.GenreRnB,
	"Electronic":       domain.GenreElectronic,
	"Dance/Electronic": domain.GenreElectronic,
	"Dance":            domain.GenreElectronic,
	"Metal":            domain.GenreMetal,
	"Hard Rock":        domain.GenreMetal,
	"Jazz":             domain.GenreJazz,
	"Classical":        domain.GenreClassical,
	"Reggae":           domain.GenreReggae,
	"Folk":             domain.GenreFolk,
	"Country":          domain.GenreFolk,
	"World":            domain.GenreWorld,
	"Alternative":      domain.GenreIndie,
	"Indie Pop":        domain.GenreIndie,
	"Indie Rock":       domain.GenreIndie,
	"Punk":             domain.GenrePunk,
	"Blues":            domain.GenreBlues,
	"Latin":            domain.GenreLatin,
	"Soul":             domain.GenreRnB,
	"Funk":             domain.GenreRnB,
	"Chanson":          domain.GenrePop,
	"Variete":          domain.GenrePop,
}

// cultureGenreMap maps the data.culture.gouv.fr music sub-category
// vocabulary onto the canonical genre set.
var cultureGenreMap = map[string]domain.Genre{
	"Musiques actuelles":              domain.GenreRock,
	"Musiques amplifiees ou electro":  domain.GenreElectronic,
	"Musiques electroniques":          domain.GenreElectronic,
	"Electro":                         domain.GenreElectronic,
	"Musiques du monde":               domain.GenreWorld,
	"Jazz":                            domain.GenreJazz,
	"Musique classique":               domain.GenreClassical,
	"Musique contemporaine":           domain.GenreClassical,
	"Chanson":                         domain.GenrePop,
	"Chanson francaise":               domain.GenrePop,
	"Hip-hop":                         domain.GenreHipHop,
	"Rap":                             domain.GenreHipHop,
	"Reggae":                          domain.GenreReggae,
	"Rock":                            domain.GenreRock,
	"Metal":                           domain.GenreMetal,
	"Pop":                             domain.GenrePop,
	"Blues":                           domain.GenreBlues,
	"Folk":                            domain.GenreFolk,
}

// ClassifyTicketmasterGenre maps a single Ticketmaster genre name to a
// canonical genre, defaulting to the catch-all tag.
func ClassifyTicketmasterGenre(name string) domain.Genre {
	if g, ok := ticketmasterGenreMap[name]; ok {
		return g
	}
	return domain.GenreOther
}

// cultureGenreOrder fixes the substring-match order; map iteration order
// would make classification nondeterministic when several keys match.
var cultureGenreOrder = []string{
	"Musiques actuelles",
	"Musiques amplifiees ou electro",
	"Musiques electroniques",
	"Electro",
	"Musiques du monde",
	"Jazz",
	"Musique classique",
	"Musique contemporaine",
	"Chanson francaise",
	"Chanson",
	"Hip-hop",
	"Rap",
	"Reggae",
	"Rock",
	"Metal",
	"Pop",
	"Blues",
	"Folk",
}

// ClassifyCultureGenre maps a data.culture.gouv.fr sub-category to a
// canonical genre, trying an exact match first and then a case-insensitive
// substring match against the known vocabulary.
func ClassifyCultureGenre(name string) domain.Genre {
	if g, ok := cultureGenreMap[name]; ok {
		return g
	}

	lower := strings.ToLower(name)
	for _, key := range cultureGenreOrder {
		if strings.Contains(lower, strings.ToLower(key)) {
			return cultureGenreMap[key]
		}
	}

	return domain.GenreOther
}

type genrePattern struct {
	re     *regexp.Regexp
	except *regexp.Regexp
	genre  domain.Genre
}

// matches reports whether re hits the text outside any except span. This
// stands in for negative lookahead, which RE2 does not support: "popular"
// must not count as pop, but "popup" and "populaire" still do.
func (p genrePattern) matches(text string) bool {
	if p.except == nil {
		return p.re.MatchString(text)
	}
	excluded := p.except.FindAllStringIndex(text, -1)
	for _, loc := range p.re.FindAllStringIndex(text, -1) {
		inside := false
		for _, ex := range excluded {
			if loc[0] >= ex[0] && loc[1] <= ex[1] {
				inside = true
				break
			}
		}
		if !inside {
			return true
		}
	}
	return false
}

// genrePatterns is checked in order; every matching genre is collected, so
// the patterns are not mutually exclusive.
var genrePatterns = []genrePattern{
	{re: regexp.MustCompile(`(?i)electro|techno|house|edm|dj|trance|drum.?n.?bass`), genre: domain.GenreElectronic},
	{re: regexp.MustCompile(`(?i)rock|guitar`), genre: domain.GenreRock},
	{re: regexp.MustCompile(`(?i)pop`), except: regexp.MustCompile(`(?i)popular`), genre: domain.GenrePop},
	{re: regexp.MustCompile(`(?i)hip.?hop|rap|trap`), genre: domain.GenreHipHop},
	{re: regexp.MustCompile(`(?i)metal|heavy|death|doom|hardcore`), genre: domain.GenreMetal},
	{re: regexp.MustCompile(`(?i)jazz|swing|bebop`), genre: domain.GenreJazz},
	{re: regexp.MustCompile(`(?i)classiq|classical|symphon|orchestra`), genre: domain.GenreClassical},
	{re: regexp.MustCompile(`(?i)reggae|ska`), genre: domain.GenreReggae},
	{re: regexp.MustCompile(`(?i)dub`), except: regexp.MustCompile(`(?i)dubstep`), genre: domain.GenreReggae},
	{re: regexp.MustCompile(`(?i)folk|acoustic|trad`), genre: domain.GenreFolk},
	{re: regexp.MustCompile(`(?i)world|african|latin|bossa`), genre: domain.GenreWorld},
	{re: regexp.MustCompile(`(?i)indie|alternat`), genre: domain.GenreIndie},
	{re: regexp.MustCompile(`(?i)punk`), genre: domain.GenrePunk},
	{re: regexp.MustCompile(`(?i)blues`), genre: domain.GenreBlues},
	{re: regexp.MustCompile(`(?i)r&b|rnb|soul|funk`), genre: domain.GenreRnB},
}

// InferGenresFromText scans free text against the keyword patterns and
// returns every matching canonical genre in first-match order, deduplicated.
// Text matching nothing yields the single catch-all tag.
func InferGenresFromText(text string) []domain.Genre {
	lower := strings.ToLower(text)

	var genres []domain.Genre
	seen := make(map[domain.Genre]bool)
	for _, p := range genrePatterns {
		if p.matches(lower) && !seen[p.genre] {
			seen[p.genre] = true
			genres = append(genres, p.genre)
		}
	}

	if len(genres) == 0 {
		return []domain.Genre{domain.GenreOther}
	}
	return genres
}
