package team_test

import (
	"testing"
	"time"

	"github.com/mauv0809/courtkeeper/internal/league"
	"github.com/mauv0809/courtkeeper/internal/rating"
	"github.com/mauv0809/courtkeeper/internal/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var playedAt = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

var (
	anna  = league.PlayerRef{ID: "p1", Name: "Anna"}
	bo    = league.PlayerRef{ID: "p2", Name: "Bo"}
	carla = league.PlayerRef{ID: "p3", Name: "Carla"}
	dan   = league.PlayerRef{ID: "p4", Name: "Dan"}
	eva   = league.PlayerRef{ID: "p5", Name: "Eva"}
	finn  = league.PlayerRef{ID: "p6", Name: "Finn"}
)

func newEngine() *team.Engine {
	return team.NewEngine(rating.New(rating.DefaultConfig()), 50)
}

func TestApply_CreatesRecordsAndUpdatesBothSides(t *testing.T) {
	e := newEngine()
	teams := make(map[string]*league.Team)

	winnerKey, loserKey := e.Apply(teams, []league.PlayerRef{anna, bo}, []league.PlayerRef{carla, dan}, 21, 15, playedAt)

	require.Len(t, teams, 2)
	winner := teams[winnerKey]
	loser := teams[loserKey]
	require.NotNil(t, winner)
	require.NotNil(t, loser)

	assert.Equal(t, "p1-p2", winner.Key)
	assert.Equal(t, "Anna & Bo", winner.Label)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 70.0, winner.Rating)

	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, 35.0, loser.Rating)
	assert.Equal(t, 1, loser.LossesTo[winner.Key])
	assert.Equal(t, playedAt, winner.LastActive)
}

func TestApply_RosterOrderDoesNotSplitTeams(t *testing.T) {
	e := newEngine()
	teams := make(map[string]*league.Team)

	e.Apply(teams, []league.PlayerRef{anna, bo}, []league.PlayerRef{carla, dan}, 21, 15, playedAt)
	e.Apply(teams, []league.PlayerRef{bo, anna}, []league.PlayerRef{dan, carla}, 21, 15, playedAt)

	require.Len(t, teams, 2)
	assert.Equal(t, 2, teams["p1-p2"].Wins)
	assert.Equal(t, 2, teams["p3-p4"].Losses)
}

func TestApply_ResolvesLegacyNameKeyedRecord(t *testing.T) {
	e := newEngine()
	// A record persisted under the old sorted-name key keeps its history.
	legacy := &league.Team{
		Key:     "Anna-Bo",
		Label:   "Anna & Bo",
		Members: []league.PlayerRef{anna, bo},
		Performance: league.Performance{
			Wins:        4,
			GamesPlayed: 4,
			Rating:      120,
		},
		LossesTo: make(map[string]int),
	}
	teams := map[string]*league.Team{legacy.Key: legacy}

	winnerKey, _ := e.Apply(teams, []league.PlayerRef{anna, bo}, []league.PlayerRef{carla, dan}, 21, 15, playedAt)

	assert.Equal(t, "Anna-Bo", winnerKey)
	assert.Equal(t, 5, legacy.Wins)
	assert.Len(t, teams, 2, "no duplicate record under the id key")
}

func TestApply_RivalAfterRepeatedLosses(t *testing.T) {
	e := newEngine()
	teams := make(map[string]*league.Team)

	e.Apply(teams, []league.PlayerRef{anna, bo}, []league.PlayerRef{carla, dan}, 21, 15, playedAt)
	losers := teams["p3-p4"]
	require.Nil(t, losers.Rival, "one loss is not a rivalry")

	e.Apply(teams, []league.PlayerRef{anna, bo}, []league.PlayerRef{carla, dan}, 21, 18, playedAt)
	require.NotNil(t, losers.Rival)
	assert.Equal(t, "p1-p2", losers.Rival.Key)
	assert.Equal(t, "Anna & Bo", losers.Rival.Label)
}

func TestApply_TiedLossCountsClearRival(t *testing.T) {
	e := newEngine()
	teams := make(map[string]*league.Team)

	// Two losses to Anna & Bo make them the rival.
	e.Apply(teams, []league.PlayerRef{anna, bo}, []league.PlayerRef{carla, dan}, 21, 15, playedAt)
	e.Apply(teams, []league.PlayerRef{anna, bo}, []league.PlayerRef{carla, dan}, 21, 15, playedAt)
	losers := teams["p3-p4"]
	require.NotNil(t, losers.Rival)

	// Two losses to Eva & Finn tie the tally; nobody is the rival now.
	e.Apply(teams, []league.PlayerRef{eva, finn}, []league.PlayerRef{carla, dan}, 21, 15, playedAt)
	e.Apply(teams, []league.PlayerRef{eva, finn}, []league.PlayerRef{carla, dan}, 21, 15, playedAt)
	assert.Nil(t, losers.Rival)
}

func TestApply_WinningNeverSetsRival(t *testing.T) {
	e := newEngine()
	teams := make(map[string]*league.Team)

	for i := 0; i < 3; i++ {
		e.Apply(teams, []league.PlayerRef{anna, bo}, []league.PlayerRef{carla, dan}, 21, 15, playedAt)
	}

	assert.Nil(t, teams["p1-p2"].Rival)
	assert.NotNil(t, teams["p3-p4"].Rival)
}
