package game

import (
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Guess applies one guess against the pool item at the current cursor.
// A correct guess records the movie and advances; an incorrect guess
// changes nothing and the player may retry. Reports whether the guess was
// correct.
func Guess(c *models.Challenge, userID primitive.ObjectID, movieID int, now time.Time) (bool, error) {
	if c.Type != models.ChallengeTypeQuiz || c.Results.Quiz == nil {
		return false, ErrWrongType
	}
	if ExpireIfDue(c, now) {
		return false, ErrCompleted
	}
	if err := ensurePlayable(c, userID); err != nil {
		return false, err
	}

	p := c.Results.Quiz
	if movieID != c.Pool[p.Index] {
		return false, nil
	}

	p.Correct = append(p.Correct, movieID)
	p.Index++
	if p.Index >= len(c.Pool) {
		c.Status = models.ChallengeStatusCompleted
	}
	return true, nil
}

// Skip gives up on the current pool item and advances.
func Skip(c *models.Challenge, userID primitive.ObjectID, now time.Time) error {
	if c.Type != models.ChallengeTypeQuiz || c.Results.Quiz == nil {
		return ErrWrongType
	}
	if ExpireIfDue(c, now) {
		return ErrCompleted
	}
	if err := ensurePlayable(c, userID); err != nil {
		return err
	}

	p := c.Results.Quiz
	p.Skipped = append(p.Skipped, c.Pool[p.Index])
	p.Index++
	if p.Index >= len(c.Pool) {
		c.Status = models.ChallengeStatusCompleted
	}
	return nil
}

// ExpireIfDue forces an active quiz past its time limit into completed,
// keeping whatever was accumulated and handing the turn to the creator so
// the challenger can resolve the result. Idempotent: a completed challenge
// is never touched again. Reports whether this call performed the
// transition.
func ExpireIfDue(c *models.Challenge, now time.Time) bool {
	if c.Type != models.ChallengeTypeQuiz || c.Results.Quiz == nil {
		return false
	}
	if c.Status != models.ChallengeStatusActive {
		return false
	}
	if now.Before(c.Results.Quiz.Deadline()) {
		return false
	}

	c.Status = models.ChallengeStatusCompleted
	c.TurnUserID = c.CreatorID
	return true
}
