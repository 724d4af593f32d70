package team

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtkeeper/internal/league"
	"github.com/mauv0809/courtkeeper/internal/rating"
)

// rivalThreshold is the minimum losses to one opponent before it can be
// called a rival. A single loss is just a loss.
const rivalThreshold = 2

// Engine applies match outcomes to doubles-team aggregates. It shares the
// rating math with the player engine and adds team resolution and rivalry
// bookkeeping on top.
type Engine struct {
	rating        *rating.Engine
	initialRating float64
}

// NewEngine creates a team performance engine backed by the given rating
// engine. initialRating seeds freshly created team records.
func NewEngine(r *rating.Engine, initialRating float64) *Engine {
	return &Engine{rating: r, initialRating: initialRating}
}

// Apply updates both sides' team records for one reported doubles match. The
// teams map is the caller's working snapshot; records are located (or created)
// in it and replaced with updated values. It returns the winner and loser keys.
func (e *Engine) Apply(teams map[string]*league.Team, winners, losers []league.PlayerRef, winnerScore, loserScore int, playedAt time.Time) (string, string) {
	winner := e.resolveOrCreate(teams, winners)
	loser := e.resolveOrCreate(teams, losers)

	outcome := rating.Outcome{
		WinnerScore:          winnerScore,
		LoserScore:           loserScore,
		CombinedWinnerRating: winner.Rating,
		CombinedLoserRating:  loser.Rating,
	}

	won := outcome
	won.IsWinner = true
	winner.Performance = e.rating.Update(winner.Performance, won, playedAt)

	lost := outcome
	lost.IsWinner = false
	loser.Performance = e.rating.Update(loser.Performance, lost, playedAt)

	e.recordLoss(teams, loser, winner)
	return winner.Key, loser.Key
}

// resolveOrCreate returns the snapshot's record for a roster, creating and
// registering a zeroed one when neither the id key nor the legacy name key
// matches.
func (e *Engine) resolveOrCreate(teams map[string]*league.Team, roster []league.PlayerRef) *league.Team {
	t, by := Resolve(teams, roster)
	switch by {
	case ResolvedByName:
		log.Debug("Resolved team via legacy name key", "key", t.Key, "label", t.Label)
	case ResolvedNone:
		t = NewTeam(roster, e.initialRating)
		teams[t.Key] = t
		log.Info("Created new team record", "key", t.Key, "label", t.Label)
	}
	if t.LossesTo == nil {
		t.LossesTo = make(map[string]int)
	}
	return t
}

// recordLoss bumps the loser's losses-to tally and recomputes its rival.
func (e *Engine) recordLoss(teams map[string]*league.Team, loser, winner *league.Team) {
	loser.LossesTo[winner.Key]++
	loser.Rival = rival(teams, loser.LossesTo)
}

// rival returns the opponent with a strict, non-tied majority of losses of at
// least the threshold, or nil.
func rival(teams map[string]*league.Team, lossesTo map[string]int) *league.Rival {
	maxKey, maxCount, tied := "", 0, false
	for key, count := range lossesTo {
		switch {
		case count > maxCount:
			maxKey, maxCount, tied = key, count, false
		case count == maxCount:
			tied = true
		}
	}
	if tied || maxCount < rivalThreshold {
		return nil
	}
	label := maxKey
	if t, ok := teams[maxKey]; ok {
		label = t.Label
	}
	return &league.Rival{Key: maxKey, Label: label}
}
