package rating_test

import (
	"testing"
	"time"

	"github.com/mauv0809/courtkeeper/internal/league"
	"github.com/mauv0809/courtkeeper/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var playedAt = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

// evenOutcome keeps the strength bonus out of the picture so assertions only
// exercise the base formula.
func evenOutcome(isWinner bool, winnerScore, loserScore int) rating.Outcome {
	return rating.Outcome{
		IsWinner:             isWinner,
		WinnerScore:          winnerScore,
		LoserScore:           loserScore,
		CombinedWinnerRating: 50,
		CombinedLoserRating:  50,
	}
}

func TestUpdate_FirstWin(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 50}

	got := e.Update(p, evenOutcome(true, 21, 15), playedAt)

	assert.Equal(t, 1, got.Wins)
	assert.Equal(t, 0, got.Losses)
	assert.Equal(t, 1, got.GamesPlayed)
	assert.Equal(t, 100.0, got.WinPercentage)
	assert.Equal(t, []string{"W"}, got.ResultLog)
	assert.Equal(t, league.Streak{Type: league.StreakWin, Count: 1}, got.CurrentStreak)
	assert.Equal(t, 70.0, got.Rating)
	assert.Equal(t, 20.0, got.PrevMatchRatingDelta)
	assert.Equal(t, 21, got.TotalPoints)
	assert.Equal(t, 6, got.TotalPointDifference)
	assert.Equal(t, []int{6}, got.PointDifferenceLog)
	assert.Equal(t, 6.0, got.AveragePointDifference)
	assert.Equal(t, playedAt, got.LastActive)
}

func TestUpdate_FirstLoss(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 50}

	got := e.Update(p, evenOutcome(false, 21, 15), playedAt)

	assert.Equal(t, 0, got.Wins)
	assert.Equal(t, 1, got.Losses)
	assert.Equal(t, 0.0, got.WinPercentage)
	assert.Equal(t, []string{"L"}, got.ResultLog)
	assert.Equal(t, league.Streak{Type: league.StreakLoss, Count: -1}, got.CurrentStreak)
	assert.Equal(t, 35.0, got.Rating)
	assert.Equal(t, -15.0, got.PrevMatchRatingDelta)
	assert.Equal(t, 15, got.TotalPoints)
	assert.Equal(t, -6, got.TotalPointDifference)
	assert.Equal(t, []int{-6}, got.PointDifferenceLog)
}

func TestUpdate_DoesNotMutateInput(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{
		Rating:             50,
		ResultLog:          []string{"W", "W"},
		PointDifferenceLog: []int{3, 4},
		Wins:               2,
		GamesPlayed:        2,
	}

	_ = e.Update(p, evenOutcome(false, 21, 10), playedAt)

	assert.Equal(t, []string{"W", "W"}, p.ResultLog)
	assert.Equal(t, []int{3, 4}, p.PointDifferenceLog)
	assert.Equal(t, 50.0, p.Rating)
}

func TestUpdate_WinStreakMultipliers(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 50}

	// Streak count -> multiplier: 1 -> 1.0, 2 -> 1.5, 3-4 -> 2.0, 5-6 -> 2.5, 7+ -> 3.0
	wantDeltas := []float64{20, 30, 40, 40, 50, 50, 60, 60}
	for i, want := range wantDeltas {
		p = e.Update(p, evenOutcome(true, 21, 18), playedAt)
		assert.Equalf(t, want, p.PrevMatchRatingDelta, "delta on win #%d", i+1)
	}
	assert.Equal(t, 8, p.HighestWinStreak)
}

func TestUpdate_LossStreakMultipliers(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 1000}

	wantDeltas := []float64{-15, -18.75, -22.5, -22.5, -26.25, -26.25, -30, -30}
	for i, want := range wantDeltas {
		p = e.Update(p, evenOutcome(false, 21, 18), playedAt)
		assert.Equalf(t, want, p.PrevMatchRatingDelta, "delta on loss #%d", i+1)
	}
	assert.Equal(t, 8, p.HighestLossStreak)
}

func TestUpdate_StreakFlipResets(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 200}

	p = e.Update(p, evenOutcome(true, 21, 18), playedAt)
	p = e.Update(p, evenOutcome(true, 21, 18), playedAt)
	require.Equal(t, league.Streak{Type: league.StreakWin, Count: 2}, p.CurrentStreak)

	p = e.Update(p, evenOutcome(false, 21, 18), playedAt)
	assert.Equal(t, league.Streak{Type: league.StreakLoss, Count: -1}, p.CurrentStreak)
	assert.Equal(t, -15.0, p.PrevMatchRatingDelta)

	p = e.Update(p, evenOutcome(true, 21, 18), playedAt)
	assert.Equal(t, league.Streak{Type: league.StreakWin, Count: 1}, p.CurrentStreak)
	assert.Equal(t, 20.0, p.PrevMatchRatingDelta)
}

func TestUpdate_MilestonesIncrementExactlyOnce(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 50}

	for i := 0; i < 8; i++ {
		p = e.Update(p, evenOutcome(true, 21, 18), playedAt)
	}

	// An 8-win run passes 3, 5 and 7 once each; staying above a threshold
	// never bumps it again.
	assert.Equal(t, 1, p.WinStreak3)
	assert.Equal(t, 1, p.WinStreak5)
	assert.Equal(t, 1, p.WinStreak7)

	// Break the streak and climb back to 3.
	p = e.Update(p, evenOutcome(false, 21, 18), playedAt)
	for i := 0; i < 3; i++ {
		p = e.Update(p, evenOutcome(true, 21, 18), playedAt)
	}
	assert.Equal(t, 2, p.WinStreak3)
	assert.Equal(t, 1, p.WinStreak5)
}

func TestUpdate_FloorClamp(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 15}

	got := e.Update(p, evenOutcome(false, 21, 18), playedAt)

	assert.Equal(t, 10.0, got.Rating)
	// The recorded delta reflects the clamp, not the raw formula.
	assert.Equal(t, -5.0, got.PrevMatchRatingDelta)
}

func TestUpdate_DemonWin(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 50}

	got := e.Update(p, evenOutcome(true, 21, 5), playedAt)

	// Base 20 doubled by the demon bonus.
	assert.Equal(t, 90.0, got.Rating)
	assert.Equal(t, 1, got.DemonWins)
}

func TestUpdate_DemonLossForgiven(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 15}

	got := e.Update(p, evenOutcome(false, 21, 5), playedAt)

	// Losing by a demon margin costs nothing; the penalty is offset in full.
	assert.Equal(t, 15.0, got.Rating)
	assert.Equal(t, 0.0, got.PrevMatchRatingDelta)
	assert.Equal(t, 0, got.DemonWins, "demon wins belong to winners only")
}

func TestUpdate_DemonMarginBoundary(t *testing.T) {
	e := rating.New(rating.DefaultConfig())

	below := e.Update(league.Performance{Rating: 50}, evenOutcome(true, 21, 12), playedAt)
	assert.Equal(t, 0, below.DemonWins)
	assert.Equal(t, 70.0, below.Rating)

	at := e.Update(league.Performance{Rating: 50}, evenOutcome(true, 21, 11), playedAt)
	assert.Equal(t, 1, at.DemonWins)
	assert.Equal(t, 90.0, at.Rating)
}

func TestUpdate_StrengthBonus(t *testing.T) {
	e := rating.New(rating.DefaultConfig())

	t.Run("below minimum ratio earns nothing", func(t *testing.T) {
		o := rating.Outcome{IsWinner: true, WinnerScore: 21, LoserScore: 18, CombinedWinnerRating: 60, CombinedLoserRating: 100}
		got := e.Update(league.Performance{Rating: 30}, o, playedAt)
		assert.Equal(t, 50.0, got.Rating)
	})

	t.Run("triple-strength opponents pay out", func(t *testing.T) {
		o := rating.Outcome{IsWinner: true, WinnerScore: 21, LoserScore: 18, CombinedWinnerRating: 40, CombinedLoserRating: 120}
		got := e.Update(league.Performance{Rating: 20}, o, playedAt)
		// Base 20 plus (3 - 2) * 10.
		assert.Equal(t, 50.0, got.Rating)
	})

	t.Run("ratio is capped", func(t *testing.T) {
		o := rating.Outcome{IsWinner: true, WinnerScore: 21, LoserScore: 18, CombinedWinnerRating: 40, CombinedLoserRating: 400}
		got := e.Update(league.Performance{Rating: 20}, o, playedAt)
		// Ratio 10 caps at 4, bonus (4 - 2) * 10.
		assert.Equal(t, 60.0, got.Rating)
	})

	t.Run("zero winner sum is neutralized", func(t *testing.T) {
		o := rating.Outcome{IsWinner: true, WinnerScore: 21, LoserScore: 18, CombinedWinnerRating: 0, CombinedLoserRating: 100}
		got := e.Update(league.Performance{Rating: 50}, o, playedAt)
		assert.Equal(t, 70.0, got.Rating)
	})

	t.Run("losers never receive the bonus", func(t *testing.T) {
		o := rating.Outcome{IsWinner: false, WinnerScore: 21, LoserScore: 18, CombinedWinnerRating: 40, CombinedLoserRating: 120}
		got := e.Update(league.Performance{Rating: 120}, o, playedAt)
		assert.Equal(t, 105.0, got.Rating)
	})
}

func TestUpdate_LogsStayBounded(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 1000}

	for i := 0; i < 12; i++ {
		won := i%2 == 0
		p = e.Update(p, evenOutcome(won, 21, 15), playedAt)
	}

	require.Len(t, p.ResultLog, 10)
	require.Len(t, p.PointDifferenceLog, 10)
	// Oldest entries fall off the front.
	assert.Equal(t, "W", p.ResultLog[0])
	assert.Equal(t, "L", p.ResultLog[9])
	assert.Equal(t, 12, p.GamesPlayed)
}

func TestUpdate_WinPercentageScale(t *testing.T) {
	e := rating.New(rating.DefaultConfig())
	p := league.Performance{Rating: 100}

	p = e.Update(p, evenOutcome(true, 21, 15), playedAt)
	p = e.Update(p, evenOutcome(false, 21, 15), playedAt)
	p = e.Update(p, evenOutcome(true, 21, 15), playedAt)

	assert.InDelta(t, 66.666, p.WinPercentage, 0.001)
}
