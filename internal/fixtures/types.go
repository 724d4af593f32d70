package fixtures

import (
	"errors"
	"time"

	"github.com/mauv0809/courtkeeper/internal/league"
)

// ErrNotEnoughEntrants is returned when a schedule is requested for fewer than
// two entrants. An empty schedule would hide a configuration mistake.
var ErrNotEnoughEntrants = errors.New("at least 2 entrants are required to generate fixtures")

// Entrant is a schedulable unit: a single player or a fixed doubles pairing.
type Entrant struct {
	ID      string             `json:"id"`
	Label   string             `json:"label"`
	Players []league.PlayerRef `json:"players"`
}

// Round is one block of concurrently playable matches.
type Round struct {
	Number  int             `json:"number"`
	Matches []*league.Match `json:"matches"`
}

// CourtPolicy picks the first court assigned in a round. Subsequent matches in
// the round advance circularly from there. Swappable so alternative fairness
// schemes don't touch the scheduler core.
type CourtPolicy func(round, courts int) int

// RotatingCourts shifts each round's starting court by one so entrants don't
// camp on the same physical court all evening.
func RotatingCourts(round, courts int) int {
	return ((round - 1) % courts) + 1
}

// pairing is one generated unordered matchup.
type pairing struct {
	home, away Entrant
}

// now is stubbed in tests.
var now = time.Now
