package domain

// Genre is one of the closed set of canonical genre tags. Every source
// vocabulary is mapped onto this set before records enter the pipeline.
type Genre string

const (
	GenreElectronic Genre = "electronic"
	GenreRock       Genre = "rock"
	GenrePop        Genre = "pop"
	GenreHipHop     Genre = "hip-hop"
	GenreMetal      Genre = "metal"
	GenreJazz       Genre = "jazz"
	GenreClassical  Genre = "classical"
	GenreReggae     Genre = "reggae"
	GenreFolk       Genre = "folk"
	GenreWorld      Genre = "world"
	GenreRnB        Genre = "rnb"
	GenreIndie      Genre = "indie"
	GenrePunk       Genre = "punk"
	GenreBlues      Genre = "blues"
	GenreLatin      Genre = "latin"
	GenreOther      Genre = "other"
)

// AllGenres lists every canonical genre. Count maps are keyed over this
// set so consumers can rely on every genre being present.
var AllGenres = []Genre{
	GenreElectronic,
	GenreRock,
	GenrePop,
	GenreHipHop,
	GenreMetal,
	GenreJazz,
	GenreClassical,
	GenreReggae,
	GenreFolk,
	GenreWorld,
	GenreRnB,
	GenreIndie,
	GenrePunk,
	GenreBlues,
	GenreLatin,
	GenreOther,
}

// Country is an ISO 3166-1 alpha-2 code.
type Country string

const (
	CountryFR Country = "FR"
	CountryBE Country = "BE"
	CountryCH Country = "CH"
	CountryDE Country = "DE"
	CountryES Country = "ES"
	CountryIT Country = "IT"
	CountryLU Country = "LU"
	CountryGB Country = "GB"
)

// TargetCountries are the countries the fetchers cover and the country
// count map guarantees keys for.
var TargetCountries = []Country{
	CountryFR,
	CountryBE,
	CountryCH,
	CountryDE,
	CountryES,
	CountryIT,
	CountryLU,
	CountryGB,
}

// CountryNames holds display names for the target countries.
var CountryNames = map[Country]string{
	CountryFR: "France",
	CountryBE: "Belgique",
	CountryCH: "Suisse",
	CountryDE: "Allemagne",
	CountryES: "Espagne",
	CountryIT: "Italie",
	CountryLU: "Luxembourg",
	CountryGB: "Royaume-Uni",
}
