package domain

// Source identifies the system a record was fetched from.
type Source string

const (
	SourceManual              Source = "manual"
	SourceTicketmaster        Source = "ticketmaster"
	SourceResidentAdvisor     Source = "resident-advisor"
	SourceMusicFestivalWizard Source = "music-festival-wizard"
	SourceDataCultureGouv     Source = "data-culture-gouv"
)

// Priority is the trust rank used when two records describe the same
// festival: the higher-ranked source's fields win. Unknown sources rank 0,
// below every known source.
func (s Source) Priority() int {
	switch s {
	case SourceManual:
		return 5
	case SourceTicketmaster:
		return 4
	case SourceResidentAdvisor:
		return 3
	case SourceMusicFestivalWizard:
		return 2
	case SourceDataCultureGouv:
		return 1
	default:
		return 0
	}
}

// Known reports whether s is one of the registered sources.
func (s Source) Known() bool {
	return s.Priority() > 0
}
