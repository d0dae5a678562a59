package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type challengeFixture struct {
	svc        *ChallengeService
	store      *fakeChallengeStore
	activities *fakeActivityStore
	entries    *EntryService

	creator   primitive.ObjectID
	recipient primitive.ObjectID
	clock     time.Time
}

// newChallengeFixture wires a ChallengeService over in-memory stores with a
// deterministic clock and shuffle. The provider serves 150 popular titles,
// every third one Animation-led.
func newChallengeFixture(t *testing.T) *challengeFixture {
	t.Helper()

	popular := make([]int, 150)
	animated := make(map[int]bool)
	for i := range popular {
		id := 1000 + i
		popular[i] = id
		if i%3 == 0 {
			animated[id] = true
		}
	}

	entries := NewEntryService(newFakeEntryStore(), &fakeActivityStore{})
	store := newFakeChallengeStore()
	activities := &fakeActivityStore{}

	f := &challengeFixture{
		svc:        NewChallengeService(store, entries, newFakeProvider(popular, animated), activities, 5),
		store:      store,
		activities: activities,
		entries:    entries,
		creator:    primitive.NewObjectID(),
		recipient:  primitive.NewObjectID(),
		clock:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.clock }
	f.svc.rng = rand.New(rand.NewSource(1))
	return f
}

func TestCreateBracketDrawsUniquePoolAndHandsTurnToRecipient(t *testing.T) {
	f := newChallengeFixture(t)

	c, err := f.svc.Create(context.Background(), f.creator, f.recipient, models.ChallengeTypeBracket, 8)
	require.NoError(t, err)

	assert.Equal(t, models.ChallengeStatusActive, c.Status)
	assert.Equal(t, f.recipient, c.TurnUserID)
	require.Len(t, c.Pool, 8)

	seen := make(map[int]bool)
	for _, id := range c.Pool {
		assert.False(t, seen[id], "duplicate pool id %d", id)
		seen[id] = true
	}
	assert.NotNil(t, c.Results.Bracket)
}

func TestCreateQuizPoolExcludesAnimation(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	// Watched titles feed the pool too, including an animated one that must
	// be filtered out.
	for _, movieID := range []int{1000, 1001} {
		_, err := f.entries.Upsert(ctx, &models.MovieEntry{
			UserID: f.creator, MovieID: movieID, Status: models.EntryStatusWatched,
		})
		require.NoError(t, err)
	}

	c, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeQuiz, 20)
	require.NoError(t, err)

	for _, id := range c.Pool {
		assert.NotZero(t, (id-1000)%3, "animated movie %d in quiz pool", id)
	}
	require.NotNil(t, c.Results.Quiz)
	assert.Equal(t, f.clock.Add(5*time.Minute), c.Results.Quiz.Deadline())
}

func TestCreateRejectsBadSizesAndSelfChallenge(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeBracket, 6)
	assert.Error(t, err)

	_, err = f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeQuiz, 2)
	assert.Error(t, err)

	_, err = f.svc.Create(ctx, f.creator, f.creator, models.ChallengeTypeBracket, 8)
	assert.Error(t, err)

	assert.Empty(t, f.store.challenges)
}

func TestCreateFailsWhenPoolCannotFill(t *testing.T) {
	entries := NewEntryService(newFakeEntryStore(), &fakeActivityStore{})
	svc := NewChallengeService(newFakeChallengeStore(), entries, newFakeProvider([]int{1, 2, 3}, nil), &fakeActivityStore{}, 5)

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), models.ChallengeTypeBracket, 8)
	assert.ErrorIs(t, err, ErrInsufficientPool)
}

func TestPlayingQuizToCompletionEmitsOneEvent(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeQuiz, 3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		c, err = f.svc.Skip(ctx, c.ID, f.recipient)
		require.NoError(t, err)
	}
	assert.Equal(t, models.ChallengeStatusCompleted, c.Status)
	assert.Equal(t, []string{models.ActivityChallengeCompleted}, f.activities.kinds())

	// Further actions fail and emit nothing more.
	_, err = f.svc.Skip(ctx, c.ID, f.recipient)
	assert.Error(t, err)
	assert.Len(t, f.activities.kinds(), 1)
}

func TestActionsGatedByParticipationAndTurn(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeBracket, 4)
	require.NoError(t, err)

	_, err = f.svc.PickWinner(ctx, c.ID, primitive.NewObjectID(), c.Pool[0])
	assert.ErrorIs(t, err, ErrNotParticipant)

	// The creator is a participant but does not hold the turn.
	_, err = f.svc.PickWinner(ctx, c.ID, f.creator, c.Pool[0])
	assert.Error(t, err)

	stored, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Results.Bracket.Index)
}

func TestApplyPatchCompletionEventExactlyOnce(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeTierList, 3)
	require.NoError(t, err)

	completed := models.ChallengeStatusCompleted
	patch := ChallengePatch{Status: &completed, TurnUserID: &f.creator}

	saved, err := f.svc.ApplyPatch(ctx, c.ID, f.recipient, patch)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeStatusCompleted, saved.Status)
	assert.Equal(t, f.creator, saved.TurnUserID)

	// A delayed retry of the same patch lands without a second event.
	_, err = f.svc.ApplyPatch(ctx, c.ID, f.recipient, patch)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ActivityChallengeCompleted}, f.activities.kinds())
}

func TestApplyPatchIgnoresStatusRegression(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeTierList, 3)
	require.NoError(t, err)

	completed := models.ChallengeStatusCompleted
	_, err = f.svc.ApplyPatch(ctx, c.ID, f.recipient, ChallengePatch{Status: &completed})
	require.NoError(t, err)

	active := models.ChallengeStatusActive
	saved, err := f.svc.ApplyPatch(ctx, c.ID, f.creator, ChallengePatch{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeStatusCompleted, saved.Status)
}

func TestApplyPatchIgnoresActiveToPendingRegression(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeTierList, 3)
	require.NoError(t, err)

	pending := models.ChallengeStatusPending
	saved, err := f.svc.ApplyPatch(ctx, c.ID, f.creator, ChallengePatch{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeStatusActive, saved.Status)
}

func TestApplyPatchIgnoresUnknownStatus(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeQuiz, 3)
	require.NoError(t, err)

	bogus := "abandoned"
	saved, err := f.svc.ApplyPatch(ctx, c.ID, f.creator, ChallengePatch{Status: &bogus})
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeStatusActive, saved.Status)

	// The quiz stayed active, so the expiry sweep still settles it.
	f.clock = f.clock.Add(time.Hour)
	expired, err := f.svc.ExpireDueQuizzes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
}

// flakyChallengeStore fails Replace on demand.
type flakyChallengeStore struct {
	*fakeChallengeStore
	replaceErr error
}

func (f *flakyChallengeStore) Replace(ctx context.Context, c *models.Challenge) (*models.Challenge, error) {
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	return f.fakeChallengeStore.Replace(ctx, c)
}

func TestFailedCompletionWriteSurfacesError(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	store := &flakyChallengeStore{fakeChallengeStore: f.store}
	f.svc.challenges = store

	c, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeTierList, 3)
	require.NoError(t, err)

	store.replaceErr = errors.New("write timeout")

	_, err = f.svc.SubmitRanking(ctx, c.ID, f.recipient, []int{c.Pool[2], c.Pool[0], c.Pool[1]})
	require.Error(t, err)
	// The failed write emits no completion event.
	assert.Empty(t, f.activities.kinds())

	// Once the store recovers, the action lands with its single event.
	store.replaceErr = nil
	saved, err := f.svc.SubmitRanking(ctx, c.ID, f.recipient, []int{c.Pool[2], c.Pool[0], c.Pool[1]})
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeStatusCompleted, saved.Status)
	assert.Equal(t, []string{models.ActivityChallengeCompleted}, f.activities.kinds())
}

func TestDeleteRequiresParticipant(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeBracket, 4)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, c.ID, primitive.NewObjectID()), ErrNotParticipant)
	require.NoError(t, f.svc.Delete(ctx, c.ID, f.creator))
	assert.Empty(t, f.store.challenges)
}

func TestExpireDueQuizzesSweepIsIdempotent(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.creator, f.recipient, models.ChallengeTypeQuiz, 3)
	require.NoError(t, err)

	f.clock = f.clock.Add(10 * time.Minute)

	expired, err := f.svc.ExpireDueQuizzes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	stored, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeStatusCompleted, stored.Status)
	assert.Equal(t, f.creator, stored.TurnUserID)

	expired, err = f.svc.ExpireDueQuizzes(ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Equal(t, []string{models.ActivityChallengeCompleted}, f.activities.kinds())
}
