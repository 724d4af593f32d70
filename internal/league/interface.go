package league

import "time"

// PlayerSeed is the minimal record needed to register a league member.
type PlayerSeed struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// LeagueStore defines the persistence boundary of the engine: snapshots out,
// updated snapshots back in. The engines themselves never touch it.
type LeagueStore interface {
	UpsertPlayers(players []PlayerSeed) error
	FetchPlayers() (map[string]*Player, error)
	FetchTeams() (map[string]*Team, error)
	PersistSnapshot(players map[string]*Player, teams map[string]*Team) error

	SaveFixtures(runID, mode string, matches []*Match) error
	ExistingMatchIDs() ([]string, error)
	ReportResult(matchID string, scoreA, scoreB int, playedAt time.Time) error
	ReportedMatches() ([]*Match, error)
	MarkProcessed(matchID string) error
	AllMatches() ([]*Match, error)

	PlayerLeaderboard() ([]*Player, error)
	TeamLeaderboard() ([]*Team, error)
	FindPlayerByName(name string) (*Player, error)

	Clear()
	ClearMatch(matchID string)
}
