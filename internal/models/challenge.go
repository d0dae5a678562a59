package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ChallengeTypeBracket  = "bracket"
	ChallengeTypeTierList = "tierlist"
	ChallengeTypeQuiz     = "guess_the_movie"
)

const (
	ChallengeStatusPending   = "pending"
	ChallengeStatusActive    = "active"
	ChallengeStatusCompleted = "completed"
)

// Challenge is a turn-based game between two users over a fixed movie pool.
// TurnUserID names the single participant currently allowed to advance the
// game; the check is advisory and performed client-side and in the service
// layer, not by the store.
type Challenge struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID   primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Type        string             `bson:"type" json:"type"`
	Size        int                `bson:"size" json:"size"`
	Status      string             `bson:"status" json:"status"`
	TurnUserID  primitive.ObjectID `bson:"turn_user_id" json:"turn_user_id"`
	// Pool is the ordered movie id pool, fixed at creation.
	Pool      []int            `bson:"pool" json:"pool"`
	Results   ChallengeResults `bson:"results" json:"results"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time        `bson:"updated_at" json:"updated_at"`
}

// ChallengeResults is a tagged union: exactly one progress field is non-nil,
// matching the challenge type.
type ChallengeResults struct {
	Bracket  *BracketProgress  `bson:"bracket,omitempty" json:"bracket,omitempty"`
	Quiz     *QuizProgress     `bson:"quiz,omitempty" json:"quiz,omitempty"`
	TierList *TierListProgress `bson:"tierlist,omitempty" json:"tierlist,omitempty"`
}

// BracketProgress tracks a single-elimination run. Items holds the current
// round's contestants, Winners the survivors accumulated so far, Index the
// cursor of the next pairing.
type BracketProgress struct {
	Items       []int `bson:"items" json:"items"`
	Winners     []int `bson:"winners" json:"winners"`
	Index       int   `bson:"index" json:"index"`
	Round       int   `bson:"round" json:"round"`
	FinalWinner int   `bson:"final_winner,omitempty" json:"final_winner,omitempty"`
}

// QuizProgress tracks a timed guessing run over the pool in order.
type QuizProgress struct {
	Index        int       `bson:"index" json:"index"`
	Correct      []int     `bson:"correct" json:"correct"`
	Skipped      []int     `bson:"skipped" json:"skipped"`
	StartedAt    time.Time `bson:"started_at" json:"started_at"`
	TimeLimitMin int       `bson:"time_limit_min" json:"time_limit_min"`
}

// Deadline returns the instant the quiz expires.
func (q *QuizProgress) Deadline() time.Time {
	return q.StartedAt.Add(time.Duration(q.TimeLimitMin) * time.Minute)
}

// TierListProgress stores the submitted ranking as an ordered movie id list.
// Ranking semantics are owned by the client; the engine only gates turns.
type TierListProgress struct {
	Ranking []int `bson:"ranking" json:"ranking"`
}

// Participant reports whether userID is one of the two players.
func (c *Challenge) Participant(userID primitive.ObjectID) bool {
	return c.CreatorID == userID || c.RecipientID == userID
}

func ValidChallengeType(t string) bool {
	switch t {
	case ChallengeTypeBracket, ChallengeTypeTierList, ChallengeTypeQuiz:
		return true
	}
	return false
}

func ValidChallengeStatus(s string) bool {
	switch s {
	case ChallengeStatusPending, ChallengeStatusActive, ChallengeStatusCompleted:
		return true
	}
	return false
}
