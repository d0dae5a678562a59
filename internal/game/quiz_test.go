package game

import (
	"testing"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newQuiz(t *testing.T, size, limitMin int, start time.Time) (*models.Challenge, primitive.ObjectID) {
	t.Helper()

	creator := primitive.NewObjectID()
	recipient := primitive.NewObjectID()

	pool := make([]int, size)
	for i := range pool {
		pool[i] = 200 + i
	}

	return &models.Challenge{
		ID:          primitive.NewObjectID(),
		CreatorID:   creator,
		RecipientID: recipient,
		Type:        models.ChallengeTypeQuiz,
		Size:        size,
		Status:      models.ChallengeStatusActive,
		TurnUserID:  recipient,
		Pool:        pool,
		Results:     NewResults(models.ChallengeTypeQuiz, pool, limitMin, start),
	}, recipient
}

func TestQuizAllCorrectCompletesInPoolSizeActions(t *testing.T) {
	start := time.Now()
	c, player := newQuiz(t, 5, 5, start)

	for i, movieID := range c.Pool {
		correct, err := Guess(c, player, movieID, start.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.True(t, correct)
	}

	assert.Equal(t, models.ChallengeStatusCompleted, c.Status)
	assert.Len(t, c.Results.Quiz.Correct, 5)
	assert.Empty(t, c.Results.Quiz.Skipped)
}

func TestQuizIncorrectGuessChangesNothing(t *testing.T) {
	start := time.Now()
	c, player := newQuiz(t, 5, 5, start)

	correct, err := Guess(c, player, -1, start)
	require.NoError(t, err)
	assert.False(t, correct)
	assert.Equal(t, 0, c.Results.Quiz.Index)
	assert.Empty(t, c.Results.Quiz.Correct)

	// The player may retry the same item.
	correct, err = Guess(c, player, c.Pool[0], start)
	require.NoError(t, err)
	assert.True(t, correct)
}

func TestQuizSkipAlwaysAdvances(t *testing.T) {
	start := time.Now()
	c, player := newQuiz(t, 3, 5, start)

	require.NoError(t, Skip(c, player, start))
	require.NoError(t, Skip(c, player, start))
	require.NoError(t, Skip(c, player, start))

	assert.Equal(t, models.ChallengeStatusCompleted, c.Status)
	assert.Equal(t, c.Pool, c.Results.Quiz.Skipped)
	assert.Empty(t, c.Results.Quiz.Correct)
}

func TestQuizTimeoutForcesCompletionOnce(t *testing.T) {
	start := time.Now()
	c, player := newQuiz(t, 5, 5, start)

	correct, err := Guess(c, player, c.Pool[0], start)
	require.NoError(t, err)
	require.True(t, correct)

	deadline := start.Add(5 * time.Minute)

	assert.True(t, ExpireIfDue(c, deadline))
	assert.Equal(t, models.ChallengeStatusCompleted, c.Status)
	assert.Len(t, c.Results.Quiz.Correct, 1)
	// The creator takes over so the challenger can resolve the result.
	assert.Equal(t, c.CreatorID, c.TurnUserID)

	// Idempotent: the second attempt is a no-op, not an error.
	assert.False(t, ExpireIfDue(c, deadline.Add(time.Hour)))
}

func TestQuizActionsAfterExpiryAreRejected(t *testing.T) {
	start := time.Now()
	c, player := newQuiz(t, 5, 5, start)
	late := start.Add(6 * time.Minute)

	_, err := Guess(c, player, c.Pool[0], late)
	assert.ErrorIs(t, err, ErrCompleted)
	assert.Equal(t, models.ChallengeStatusCompleted, c.Status)

	assert.ErrorIs(t, Skip(c, player, late), ErrCompleted)
	assert.Empty(t, c.Results.Quiz.Correct)
	assert.Empty(t, c.Results.Quiz.Skipped)
}

func TestQuizRejectsNonHolder(t *testing.T) {
	start := time.Now()
	c, _ := newQuiz(t, 5, 5, start)

	_, err := Guess(c, c.CreatorID, c.Pool[0], start)
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestExpireIgnoresOtherTypes(t *testing.T) {
	c, _ := newBracket(t, 4)
	assert.False(t, ExpireIfDue(c, time.Now().Add(24*time.Hour)))
	assert.Equal(t, models.ChallengeStatusActive, c.Status)
}

func TestTierListSubmitCompletes(t *testing.T) {
	creator := primitive.NewObjectID()
	recipient := primitive.NewObjectID()
	pool := []int{301, 302, 303}

	c := &models.Challenge{
		CreatorID:   creator,
		RecipientID: recipient,
		Type:        models.ChallengeTypeTierList,
		Size:        3,
		Status:      models.ChallengeStatusActive,
		TurnUserID:  recipient,
		Pool:        pool,
		Results:     NewResults(models.ChallengeTypeTierList, pool, 0, time.Now()),
	}

	require.NoError(t, SubmitRanking(c, recipient, []int{303, 301, 302}))
	assert.Equal(t, models.ChallengeStatusCompleted, c.Status)
	assert.Equal(t, []int{303, 301, 302}, c.Results.TierList.Ranking)

	// Once completed, nothing is accepted.
	assert.ErrorIs(t, SubmitRanking(c, recipient, []int{301}), ErrCompleted)
	assert.Equal(t, []int{303, 301, 302}, c.Results.TierList.Ranking)
}
