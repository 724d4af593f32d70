package processor

import "github.com/mauv0809/courtkeeper/internal/league"

// Store defines the persistence operations required by the processor.
type Store interface {
	ReportedMatches() ([]*league.Match, error)
	FetchPlayers() (map[string]*league.Player, error)
	FetchTeams() (map[string]*league.Team, error)
	PersistSnapshot(players map[string]*league.Player, teams map[string]*league.Team) error
	MarkProcessed(matchID string) error
}
