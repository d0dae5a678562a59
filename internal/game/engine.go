// Package game implements the turn-based progression rules for the three
// challenge variants. It is pure state-transition logic: no I/O, no clocks
// of its own. Callers load a challenge, apply an action and persist the
// result; last write wins at the store.
package game

import (
	"errors"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotYourTurn is returned when the caller does not hold the turn.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrCompleted is returned for any action on a completed challenge.
	ErrCompleted = errors.New("challenge already completed")
	// ErrWrongType is returned when the action does not match the type.
	ErrWrongType = errors.New("action does not match challenge type")
	// ErrInvalidPick is returned when a bracket pick names a movie outside
	// the current pairing.
	ErrInvalidPick = errors.New("pick is not part of the current pairing")
)

// NewResults builds the initial progress payload for a challenge type.
func NewResults(challengeType string, pool []int, timeLimitMin int, now time.Time) models.ChallengeResults {
	switch challengeType {
	case models.ChallengeTypeBracket:
		items := make([]int, len(pool))
		copy(items, pool)
		return models.ChallengeResults{
			Bracket: &models.BracketProgress{
				Items:   items,
				Winners: []int{},
				Index:   0,
				Round:   1,
			},
		}
	case models.ChallengeTypeQuiz:
		return models.ChallengeResults{
			Quiz: &models.QuizProgress{
				Correct:      []int{},
				Skipped:      []int{},
				StartedAt:    now,
				TimeLimitMin: timeLimitMin,
			},
		}
	case models.ChallengeTypeTierList:
		return models.ChallengeResults{
			TierList: &models.TierListProgress{},
		}
	}
	return models.ChallengeResults{}
}

// ensurePlayable checks the shared invariant: no action once completed, and
// only the turn holder may act. The turn check is advisory; the store never
// enforces it.
func ensurePlayable(c *models.Challenge, userID primitive.ObjectID) error {
	if c.Status == models.ChallengeStatusCompleted {
		return ErrCompleted
	}
	if c.TurnUserID != userID {
		return ErrNotYourTurn
	}
	return nil
}
