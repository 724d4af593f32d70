package rating

import (
	"time"

	"github.com/mauv0809/courtkeeper/internal/league"
)

// maxLogLength bounds the rolling result and point-difference logs.
const maxLogLength = 10

// Engine recomputes a Performance aggregate after a single match. Update is a
// pure function of its inputs; callers own snapshotting and persistence.
type Engine struct {
	cfg Config
}

// New creates a rating engine with the given tuning.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Update returns the aggregate advanced by one match outcome. The input value
// is never modified.
func (e *Engine) Update(p league.Performance, o Outcome, playedAt time.Time) league.Performance {
	p.ResultLog = append([]string(nil), p.ResultLog...)
	p.PointDifferenceLog = append([]int(nil), p.PointDifferenceLog...)

	p.GamesPlayed++
	if o.IsWinner {
		p.Wins++
	} else {
		p.Losses++
	}
	p.WinPercentage = float64(p.Wins) / float64(p.GamesPlayed) * 100

	mark := "L"
	if o.IsWinner {
		mark = "W"
	}
	p.ResultLog = appendBounded(p.ResultLog, mark)

	p.CurrentStreak = advanceStreak(p.CurrentStreak, o.IsWinner)
	if p.CurrentStreak.Count > p.HighestWinStreak {
		p.HighestWinStreak = p.CurrentStreak.Count
	}
	if -p.CurrentStreak.Count > p.HighestLossStreak {
		p.HighestLossStreak = -p.CurrentStreak.Count
	}
	// Milestone counters bump only on the match where the streak first
	// reaches the threshold, never while it stays above it.
	switch p.CurrentStreak.Count {
	case 3:
		p.WinStreak3++
	case 5:
		p.WinStreak5++
	case 7:
		p.WinStreak7++
	}

	margin := o.WinnerScore - o.LoserScore
	delta := e.ratingDelta(p.CurrentStreak, o, margin)
	if o.IsWinner && margin >= e.cfg.DemonMargin {
		p.DemonWins++
	}

	clamped := p.Rating + delta
	if clamped < e.cfg.Floor {
		clamped = e.cfg.Floor
	}
	p.PrevMatchRatingDelta = clamped - p.Rating
	p.Rating = clamped

	signedDiff := margin
	ownScore := o.WinnerScore
	if !o.IsWinner {
		signedDiff = -margin
		ownScore = o.LoserScore
	}
	p.TotalPoints += ownScore
	p.TotalPointDifference += signedDiff
	p.PointDifferenceLog = appendBoundedInt(p.PointDifferenceLog, signedDiff)
	p.AveragePointDifference = meanInt(p.PointDifferenceLog)

	p.LastActive = playedAt
	return p
}

// ratingDelta combines the streak-scaled base, the relative-strength bonus and
// the demon adjustment.
func (e *Engine) ratingDelta(streak league.Streak, o Outcome, margin int) float64 {
	var base float64
	if o.IsWinner {
		base = e.cfg.BaseWin * winStreakMultiplier(streak.Count)
	} else {
		base = -e.cfg.BaseLoss * lossStreakMultiplier(-streak.Count)
	}

	delta := base
	if o.IsWinner {
		delta += e.strengthBonus(o.CombinedWinnerRating, o.CombinedLoserRating)
	}
	if margin >= e.cfg.DemonMargin {
		// Blowouts pay the winner the streak-scaled base again and forgive
		// the same amount on the losing side, pulling a heavy loss's delta
		// toward zero.
		if base < 0 {
			delta += -base
		} else {
			delta += base
		}
	}
	return delta
}

// strengthBonus rewards beating a stronger side. Ratios under the minimum earn
// nothing; the ratio is capped so lopsided pairings can't mint points.
func (e *Engine) strengthBonus(combinedWinner, combinedLoser float64) float64 {
	ratio := 1.0
	if combinedWinner > 0 {
		ratio = combinedLoser / combinedWinner
	}
	if ratio < e.cfg.StrengthRatioMin {
		return 0
	}
	if ratio > e.cfg.StrengthRatioCap {
		ratio = e.cfg.StrengthRatioCap
	}
	return (ratio - e.cfg.StrengthRatioMin) * e.cfg.StrengthBonusStep
}

// advanceStreak continues or flips the running streak for one more result.
func advanceStreak(s league.Streak, won bool) league.Streak {
	if won {
		if s.Type == league.StreakWin {
			return league.Streak{Type: league.StreakWin, Count: s.Count + 1}
		}
		return league.Streak{Type: league.StreakWin, Count: 1}
	}
	if s.Type == league.StreakLoss {
		return league.Streak{Type: league.StreakLoss, Count: s.Count - 1}
	}
	return league.Streak{Type: league.StreakLoss, Count: -1}
}

// winStreakMultiplier scales the win base by streak length. Wins deliberately
// escalate faster and higher than losses.
func winStreakMultiplier(count int) float64 {
	switch {
	case count >= 7:
		return 3.0
	case count >= 5:
		return 2.5
	case count >= 3:
		return 2.0
	case count == 2:
		return 1.5
	default:
		return 1.0
	}
}

// lossStreakMultiplier scales the loss penalty by streak magnitude.
func lossStreakMultiplier(magnitude int) float64 {
	switch {
	case magnitude >= 7:
		return 2.0
	case magnitude >= 5:
		return 1.75
	case magnitude >= 3:
		return 1.5
	case magnitude == 2:
		return 1.25
	default:
		return 1.0
	}
}

func appendBounded(log []string, entry string) []string {
	log = append(log, entry)
	if len(log) > maxLogLength {
		log = log[len(log)-maxLogLength:]
	}
	return log
}

func appendBoundedInt(log []int, entry int) []int {
	log = append(log, entry)
	if len(log) > maxLogLength {
		log = log[len(log)-maxLogLength:]
	}
	return log
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
