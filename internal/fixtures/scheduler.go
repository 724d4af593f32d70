package fixtures

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtkeeper/internal/league"
)

// Scheduler generates round-robin fixtures for a competition across a fixed
// number of courts.
type Scheduler struct {
	competitionID string
	courts        int
	policy        CourtPolicy
}

// Option tweaks scheduler construction.
type Option func(*Scheduler)

// WithCourtPolicy overrides the default rotating court assignment.
func WithCourtPolicy(p CourtPolicy) Option {
	return func(s *Scheduler) { s.policy = p }
}

// NewScheduler creates a scheduler for one competition.
func NewScheduler(competitionID string, courts int, opts ...Option) *Scheduler {
	if courts < 1 {
		courts = 1
	}
	s := &Scheduler{
		competitionID: competitionID,
		courts:        courts,
		policy:        RotatingCourts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// allPairs generates every unique unordered pairing, N·(N-1)/2 in total, in
// generation order.
func allPairs(entrants []Entrant) []pairing {
	var pairs []pairing
	for i := 0; i < len(entrants); i++ {
		for j := i + 1; j < len(entrants); j++ {
			pairs = append(pairs, pairing{home: entrants[i], away: entrants[j]})
		}
	}
	return pairs
}

// Singles packs the generated pairings into rounds of up to `courts` matches,
// in generation order. It deliberately does not stop an entrant from playing
// twice in one round; singles nights are assumed court-rich and double
// bookings are resolved at the desk.
func (s *Scheduler) Singles(entrants []Entrant, existingIDs []string) ([]Round, error) {
	if len(entrants) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughEntrants, len(entrants))
	}

	ids := newIDAllocator(s.competitionID, existingIDs)
	pairs := allPairs(entrants)

	var rounds []Round
	current := Round{Number: 1}
	for _, pair := range pairs {
		if len(current.Matches) == s.courts {
			rounds = append(rounds, current)
			current = Round{Number: current.Number + 1}
		}
		court := len(current.Matches) + 1
		current.Matches = append(current.Matches, s.newMatch(ids, current.Number, court, pair))
	}
	rounds = append(rounds, current)

	log.Info("Generated singles fixtures",
		"competition", s.competitionID, "entrants", len(entrants),
		"matches", len(pairs), "rounds", len(rounds), "courts", s.courts)
	return rounds, nil
}

// Teams draws matches from the remaining-pairings pool round by round. A
// pairing joins the current round only when neither team has played in it yet,
// so rounds can carry different match counts. Courts start from the rotation
// policy and advance circularly.
func (s *Scheduler) Teams(entrants []Entrant, existingIDs []string) ([]Round, error) {
	if len(entrants) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughEntrants, len(entrants))
	}

	ids := newIDAllocator(s.competitionID, existingIDs)
	pool := allPairs(entrants)
	total := len(pool)

	var rounds []Round
	for round := 1; len(pool) > 0; round++ {
		played := make(map[string]bool)
		court := s.policy(round, s.courts)
		current := Round{Number: round}

		remaining := pool[:0]
		for _, pair := range pool {
			if played[pair.home.ID] || played[pair.away.ID] {
				remaining = append(remaining, pair)
				continue
			}
			played[pair.home.ID] = true
			played[pair.away.ID] = true
			current.Matches = append(current.Matches, s.newMatch(ids, round, court, pair))
			court = (court % s.courts) + 1
		}
		pool = remaining
		rounds = append(rounds, current)
	}

	log.Info("Generated team fixtures",
		"competition", s.competitionID, "entrants", len(entrants),
		"matches", total, "rounds", len(rounds), "courts", s.courts)
	return rounds, nil
}

func (s *Scheduler) newMatch(ids *idAllocator, round, court int, pair pairing) *league.Match {
	return &league.Match{
		ID:            ids.next(),
		CompetitionID: s.competitionID,
		Round:         round,
		Court:         court,
		SideA:         league.Side{Players: append([]league.PlayerRef(nil), pair.home.Players...)},
		SideB:         league.Side{Players: append([]league.PlayerRef(nil), pair.away.Players...)},
		Status:        league.StatusScheduled,
		CreatedAt:     now(),
	}
}

// idAllocator hands out competition-scoped, same-day sequential match ids of
// the form <competition>-<yyyymmdd>-<seq>. The sequence starts above any
// existing id with the same prefix and day, so re-running the scheduler never
// collides with matches already in the store.
type idAllocator struct {
	prefix string
	seq    int
}

func newIDAllocator(competitionID string, existingIDs []string) *idAllocator {
	prefix := fmt.Sprintf("%s-%s", competitionID, now().Format("20060102"))
	seq := 0
	for _, id := range existingIDs {
		rest, ok := strings.CutPrefix(id, prefix+"-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > seq {
			seq = n
		}
	}
	return &idAllocator{prefix: prefix, seq: seq}
}

func (a *idAllocator) next() string {
	a.seq++
	return fmt.Sprintf("%s-%d", a.prefix, a.seq)
}
