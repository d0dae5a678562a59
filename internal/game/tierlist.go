package game

import (
	"github.com/Aidos2201/ReelRivals/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmitRanking stores the holder's ranking and completes the challenge.
// Ranking semantics are a client concern; the engine only gates turns and
// the status transition.
func SubmitRanking(c *models.Challenge, userID primitive.ObjectID, ranking []int) error {
	if c.Type != models.ChallengeTypeTierList || c.Results.TierList == nil {
		return ErrWrongType
	}
	if err := ensurePlayable(c, userID); err != nil {
		return err
	}

	ordered := make([]int, len(ranking))
	copy(ordered, ranking)
	c.Results.TierList.Ranking = ordered
	c.Status = models.ChallengeStatusCompleted
	return nil
}
