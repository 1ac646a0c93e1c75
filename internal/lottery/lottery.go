// Package lottery implements the weighted random winner selection used
// by the hourly prize draw.
package lottery

import (
	"errors"
	"fmt"

	"github.com/pnl-league/competition-backend/internal/models"
)

// Source supplies uniform random values in [0, 1). *math/rand.Rand
// satisfies it; tests inject a seeded instance for reproducibility.
type Source interface {
	Float64() float64
}

// rankChances is the fixed rank -> win probability table, in percentage
// points. It is defined only for the three-participant draw; changing the
// participant count requires a redefined table, there is no formula.
var rankChances = map[int]float64{
	1: 55,
	2: 30,
	3: 15,
}

// DrawSize is the number of ranked participants a draw operates on.
const DrawSize = 3

// ChanceForRank returns the win probability (percentage points) for a
// rank, or an error if the rank is outside the table.
func ChanceForRank(rank int) (float64, error) {
	chance, ok := rankChances[rank]
	if !ok {
		return 0, fmt.Errorf("no win chance defined for rank %d", rank)
	}
	return chance, nil
}

// SelectWinner draws exactly one winner from the ranked participants
// using a single uniform sample. Participants must be ordered by rank and
// carry their assigned win chances. If accumulated rounding ever leaves
// the sample uncovered, the lowest-ranked participant is selected so a
// draw always produces a winner.
func SelectWinner(participants []models.DrawParticipant, src Source) (models.DrawParticipant, error) {
	if len(participants) == 0 {
		return models.DrawParticipant{}, errors.New("no participants to draw from")
	}
	if len(participants) != DrawSize {
		return models.DrawParticipant{}, fmt.Errorf("draw requires exactly %d participants, got %d", DrawSize, len(participants))
	}

	sample := src.Float64() * 100
	cumulative := 0.0
	for _, p := range participants {
		cumulative += p.WinChance
		if sample <= cumulative {
			return p, nil
		}
	}

	return participants[len(participants)-1], nil
}
