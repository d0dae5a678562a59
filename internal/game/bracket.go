package game

import (
	"github.com/Aidos2201/ReelRivals/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickWinner applies one bracket choice between the current pairing
// items[index] and items[index+1]. When a round is exhausted the survivors
// become the next round's items; a round of one survivor completes the
// challenge. The turn holder does not change: the holder drives the whole
// session.
func PickWinner(c *models.Challenge, userID primitive.ObjectID, winnerID int) error {
	if c.Type != models.ChallengeTypeBracket || c.Results.Bracket == nil {
		return ErrWrongType
	}
	if err := ensurePlayable(c, userID); err != nil {
		return err
	}

	p := c.Results.Bracket

	// A trailing unpaired item survives automatically.
	if p.Index == len(p.Items)-1 {
		p.Winners = append(p.Winners, p.Items[p.Index])
		p.Index = len(p.Items)
		advanceRound(c, p)
		if c.Status == models.ChallengeStatusCompleted {
			return nil
		}
	}

	if winnerID != p.Items[p.Index] && winnerID != p.Items[p.Index+1] {
		return ErrInvalidPick
	}

	p.Winners = append(p.Winners, winnerID)
	p.Index += 2

	if p.Index >= len(p.Items) {
		advanceRound(c, p)
	}
	return nil
}

// advanceRound either promotes the survivors into a fresh round or, when a
// single survivor remains, completes the challenge.
func advanceRound(c *models.Challenge, p *models.BracketProgress) {
	if len(p.Winners) == 1 {
		p.FinalWinner = p.Winners[0]
		c.Status = models.ChallengeStatusCompleted
		return
	}
	p.Items = p.Winners
	p.Winners = []int{}
	p.Index = 0
	p.Round++
}
