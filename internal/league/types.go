package league

import (
	"sort"
	"strings"
	"time"
)

// PlayerRef identifies a player on a match roster.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StreakType marks the direction of a current streak.
type StreakType string

const (
	StreakWin  StreakType = "W"
	StreakLoss StreakType = "L"
	StreakNone StreakType = ""
)

// Streak holds the current run of results. Count is signed: positive while
// winning, negative while losing.
type Streak struct {
	Type  StreakType `json:"type"`
	Count int        `json:"count"`
}

// Performance is the per-competition aggregate shared by players and teams.
// The rating engine owns all updates to it; everything else treats it as
// read-only.
type Performance struct {
	Wins                   int        `json:"wins"`
	Losses                 int        `json:"losses"`
	GamesPlayed            int        `json:"games_played"`
	WinPercentage          float64    `json:"win_percentage"`
	ResultLog              []string   `json:"result_log"`
	CurrentStreak          Streak     `json:"current_streak"`
	HighestWinStreak       int        `json:"highest_win_streak"`
	HighestLossStreak      int        `json:"highest_loss_streak"`
	WinStreak3             int        `json:"win_streak_3"`
	WinStreak5             int        `json:"win_streak_5"`
	WinStreak7             int        `json:"win_streak_7"`
	DemonWins              int        `json:"demon_wins"`
	TotalPoints            int        `json:"total_points"`
	TotalPointDifference   int        `json:"total_point_difference"`
	PointDifferenceLog     []int      `json:"point_difference_log"`
	AveragePointDifference float64    `json:"average_point_difference"`
	Rating                 float64    `json:"rating"`
	PrevMatchRatingDelta   float64    `json:"prev_match_rating_delta"`
	LastActive             time.Time  `json:"last_active"`
}

// Player is a league member's aggregate record.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Performance
}

// Rival names the opponent team that holds a strict majority of recorded wins
// against a team.
type Rival struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Team is a doubles pairing's aggregate record, keyed by the canonical sorted
// member-id key.
type Team struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Members []PlayerRef `json:"members"`
	Performance
	LossesTo map[string]int `json:"losses_to"`
	Rival    *Rival         `json:"rival"`
}

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusReported  MatchStatus = "REPORTED"
	StatusProcessed MatchStatus = "PROCESSED"
)

// Side is one half of a match: a roster of one or two players and, once
// reported, its score.
type Side struct {
	Players []PlayerRef `json:"players"`
	Score   int         `json:"score"`
}

// Match is a scheduled or reported fixture. Scores are assumed to have passed
// sport-specific validation before they reach the store.
type Match struct {
	ID            string      `json:"id"`
	CompetitionID string      `json:"competition_id"`
	Round         int         `json:"round"`
	Court         int         `json:"court"`
	SideA         Side        `json:"side_a"`
	SideB         Side        `json:"side_b"`
	Status        MatchStatus `json:"status"`
	FixtureRunID  string      `json:"fixture_run_id,omitempty"`
	PlayedAt      time.Time   `json:"played_at"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Result names the winning and losing side of a reported match.
type Result struct {
	Winner Side
	Loser  Side
	Margin int
}

// Result derives the winner/loser from the reported scores. It returns false
// for unreported or drawn scorelines; the engine never consumes those.
func (m *Match) Result() (Result, bool) {
	if m.Status == StatusScheduled || m.SideA.Score == m.SideB.Score {
		return Result{}, false
	}
	if m.SideA.Score > m.SideB.Score {
		return Result{Winner: m.SideA, Loser: m.SideB, Margin: m.SideA.Score - m.SideB.Score}, true
	}
	return Result{Winner: m.SideB, Loser: m.SideA, Margin: m.SideB.Score - m.SideA.Score}, true
}

// Doubles reports whether both rosters carry two players.
func (m *Match) Doubles() bool {
	return len(m.SideA.Players) == 2 && len(m.SideB.Players) == 2
}

// SortedNames returns the roster display names in lexicographic order, the
// stable form used for team labels and legacy lookups.
func SortedNames(players []PlayerRef) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	sort.Strings(names)
	return names
}

// TeamLabel is the display form of a doubles pairing, built from sorted names.
func TeamLabel(players []PlayerRef) string {
	return strings.Join(SortedNames(players), " & ")
}
