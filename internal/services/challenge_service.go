package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/catalog"
	"github.com/Aidos2201/ReelRivals/internal/game"
	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fillerPoolSize is how much of the popular catalog is considered when the
// participants' own watched movies cannot fill a pool.
const fillerPoolSize = 100

// ChallengeStore is the persistence surface for challenges.
type ChallengeStore interface {
	Create(ctx context.Context, c *models.Challenge) (*models.Challenge, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Challenge, error)
	GetActiveByType(ctx context.Context, challengeType string) ([]models.Challenge, error)
	Replace(ctx context.Context, c *models.Challenge) (*models.Challenge, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WatchedLister supplies the union of users' watched movie ids.
type WatchedLister interface {
	WatchedIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]int, error)
}

// ChallengeService orchestrates challenge creation, turn-gated progression
// and completion bookkeeping. Turn checks here are advisory: the store
// stays last-writer-wins.
type ChallengeService struct {
	challenges ChallengeStore
	watched    WatchedLister
	provider   catalog.Provider
	activities ActivityStore

	quizTimeLimitMin int

	// Injected for tests.
	now func() time.Time
	rng *rand.Rand
}

// NewChallengeService creates a new ChallengeService.
func NewChallengeService(challenges ChallengeStore, watched WatchedLister, provider catalog.Provider, activities ActivityStore, quizTimeLimitMin int) *ChallengeService {
	return &ChallengeService{
		challenges:       challenges,
		watched:          watched,
		provider:         provider,
		activities:       activities,
		quizTimeLimitMin: quizTimeLimitMin,
		now:              time.Now,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create assembles a pool from both participants' watched movies plus
// popular-catalog filler, samples exactly size ids and opens the challenge.
// The invited recipient holds the first turn; the creator moves second.
func (s *ChallengeService) Create(ctx context.Context, creatorID, recipientID primitive.ObjectID, challengeType string, size int) (*models.Challenge, error) {
	if !models.ValidChallengeType(challengeType) {
		return nil, fmt.Errorf("invalid challenge type %q", challengeType)
	}
	if err := validateSize(challengeType, size); err != nil {
		return nil, err
	}
	if creatorID == recipientID {
		return nil, fmt.Errorf("cannot challenge yourself")
	}

	pool, err := s.assemblePool(ctx, creatorID, recipientID, challengeType, size)
	if err != nil {
		return nil, err
	}

	c := &models.Challenge{
		CreatorID:   creatorID,
		RecipientID: recipientID,
		Type:        challengeType,
		Size:        size,
		Status:      models.ChallengeStatusActive,
		TurnUserID:  recipientID,
		Pool:        pool,
		Results:     game.NewResults(challengeType, pool, s.quizTimeLimitMin, s.now()),
	}

	created, err := s.challenges.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"challengeID": created.ID.Hex(),
		"type":        challengeType,
		"size":        size,
	}).Info("Challenge created")
	return created, nil
}

// assemblePool unions both players' watched ids with popular filler. Quiz
// pools exclude Animation-led titles: silhouettes of animated movies are
// trivial to guess.
func (s *ChallengeService) assemblePool(ctx context.Context, creatorID, recipientID primitive.ObjectID, challengeType string, size int) ([]int, error) {
	watchedIDs, err := s.watched.WatchedIDs(ctx, []primitive.ObjectID{creatorID, recipientID})
	if err != nil {
		return nil, err
	}

	filler, err := s.provider.Popular(ctx, fillerPoolSize)
	if err != nil {
		return nil, err
	}

	excludeAnimation := challengeType == models.ChallengeTypeQuiz

	seen := make(map[int]bool)
	var candidates []int

	if excludeAnimation && len(watchedIDs) > 0 {
		// Genre data for the watched set has to come from the provider.
		watchedMovies, err := s.provider.Movies(ctx, watchedIDs)
		if err != nil {
			return nil, err
		}
		for i := range watchedMovies {
			m := &watchedMovies[i]
			if m.PrimaryGenre() == "Animation" || seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			candidates = append(candidates, m.ID)
		}
	} else {
		for _, id := range watchedIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			candidates = append(candidates, id)
		}
	}

	for i := range filler {
		m := &filler[i]
		if seen[m.ID] {
			continue
		}
		if excludeAnimation && m.PrimaryGenre() == "Animation" {
			continue
		}
		seen[m.ID] = true
		candidates = append(candidates, m.ID)
	}

	if len(candidates) < size {
		return nil, ErrInsufficientPool
	}

	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates[:size], nil
}

// Get returns one challenge by id.
func (s *ChallengeService) Get(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error) {
	return s.challenges.GetByID(ctx, id)
}

// ListByUser returns challenges where the user is a participant, expiring
// overdue quizzes on the way out so pollers always observe final state.
func (s *ChallengeService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Challenge, error) {
	challenges, err := s.challenges.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range challenges {
		if game.ExpireIfDue(&challenges[i], s.now()) {
			if err := s.persistCompletion(ctx, &challenges[i], challenges[i].CreatorID); err != nil {
				logrus.WithError(err).Warn("Failed to persist quiz expiry")
			}
		}
	}
	return challenges, nil
}

// PickWinner advances a bracket by one pairing choice.
func (s *ChallengeService) PickWinner(ctx context.Context, challengeID, userID primitive.ObjectID, winnerID int) (*models.Challenge, error) {
	return s.apply(ctx, challengeID, userID, func(c *models.Challenge) error {
		return game.PickWinner(c, userID, winnerID)
	})
}

// Guess submits one quiz guess. An incorrect guess is a silent reject: no
// state changes and the player may retry.
func (s *ChallengeService) Guess(ctx context.Context, challengeID, userID primitive.ObjectID, movieID int) (*models.Challenge, bool, error) {
	var correct bool
	c, err := s.apply(ctx, challengeID, userID, func(c *models.Challenge) error {
		var err error
		correct, err = game.Guess(c, userID, movieID, s.now())
		return err
	})
	return c, correct, err
}

// Skip gives up on the current quiz item.
func (s *ChallengeService) Skip(ctx context.Context, challengeID, userID primitive.ObjectID) (*models.Challenge, error) {
	return s.apply(ctx, challengeID, userID, func(c *models.Challenge) error {
		return game.Skip(c, userID, s.now())
	})
}

// SubmitRanking stores a tier list ranking and completes the challenge.
func (s *ChallengeService) SubmitRanking(ctx context.Context, challengeID, userID primitive.ObjectID, ranking []int) (*models.Challenge, error) {
	return s.apply(ctx, challengeID, userID, func(c *models.Challenge) error {
		return game.SubmitRanking(c, userID, ranking)
	})
}

// apply loads a challenge, runs one engine action and persists the result,
// emitting the completion event when this call crossed the edge.
func (s *ChallengeService) apply(ctx context.Context, challengeID, userID primitive.ObjectID, action func(*models.Challenge) error) (*models.Challenge, error) {
	c, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !c.Participant(userID) {
		return nil, ErrNotParticipant
	}

	wasCompleted := c.Status == models.ChallengeStatusCompleted

	// An expired quiz must settle even when the action itself fails; the
	// engine reports the expiry through ErrCompleted.
	expired := game.ExpireIfDue(c, s.now())
	actionErr := action(c)

	if expired {
		if err := s.persistCompletion(ctx, c, c.CreatorID); err != nil {
			return nil, err
		}
		if actionErr != nil {
			return c, actionErr
		}
		return c, nil
	}
	if actionErr != nil {
		return nil, actionErr
	}

	if !wasCompleted && c.Status == models.ChallengeStatusCompleted {
		if err := s.persistCompletion(ctx, c, userID); err != nil {
			return nil, err
		}
		return c, nil
	}

	return s.challenges.Replace(ctx, c)
}

// persistCompletion saves a freshly completed challenge and appends exactly
// one challenge_completed event. Action callers must see a failed write;
// only the background sweep and poll paths may swallow it.
func (s *ChallengeService) persistCompletion(ctx context.Context, c *models.Challenge, actorID primitive.ObjectID) error {
	if _, err := s.challenges.Replace(ctx, c); err != nil {
		return fmt.Errorf("failed to persist challenge completion: %v", err)
	}
	logActivity(ctx, s.activities, &models.Activity{
		UserID:   actorID,
		Kind:     models.ActivityChallengeCompleted,
		TargetID: c.ID,
		Message:  c.Type,
	})
	return nil
}

// ChallengePatch is a partial update applied through PUT /challenges/{id}.
type ChallengePatch struct {
	Status     *string                  `json:"status,omitempty"`
	TurnUserID *primitive.ObjectID      `json:"turn_user_id,omitempty"`
	Results    *models.ChallengeResults `json:"results,omitempty"`
}

// ApplyPatch applies a last-writer-wins partial update. Status transitions
// are monotonic in the pending < active < completed order: a write can
// never move a challenge backward, and unknown status strings are ignored.
// The transition into completed appends the challenge_completed event
// exactly once; resending the same patch emits nothing because the old
// status is already completed.
func (s *ChallengeService) ApplyPatch(ctx context.Context, id, userID primitive.ObjectID, patch ChallengePatch) (*models.Challenge, error) {
	c, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Participant(userID) {
		return nil, ErrNotParticipant
	}

	wasCompleted := c.Status == models.ChallengeStatusCompleted

	if patch.Results != nil && !wasCompleted {
		c.Results = *patch.Results
	}
	if patch.TurnUserID != nil && c.Participant(*patch.TurnUserID) {
		c.TurnUserID = *patch.TurnUserID
	}
	if patch.Status != nil {
		switch {
		case !models.ValidChallengeStatus(*patch.Status):
			logrus.WithFields(logrus.Fields{
				"challengeID": id.Hex(),
				"status":      *patch.Status,
			}).Warn("Ignoring unknown challenge status")
		case statusRank(*patch.Status) < statusRank(c.Status):
			logrus.WithField("challengeID", id.Hex()).Warn("Ignoring challenge status regression")
		default:
			c.Status = *patch.Status
		}
	}

	saved, err := s.challenges.Replace(ctx, c)
	if err != nil {
		return nil, err
	}

	if !wasCompleted && saved.Status == models.ChallengeStatusCompleted {
		logActivity(ctx, s.activities, &models.Activity{
			UserID:   userID,
			Kind:     models.ActivityChallengeCompleted,
			TargetID: saved.ID,
			Message:  saved.Type,
		})
	}
	return saved, nil
}

// Delete removes a challenge outright. Either participant may abandon an
// active or completed challenge; no turn check applies.
func (s *ChallengeService) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	c, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !c.Participant(userID) {
		return ErrNotParticipant
	}
	return s.challenges.Delete(ctx, id)
}

// ExpireDueQuizzes forces every overdue active quiz to completed. Ran
// periodically; racing a manual completion is safe because the transition
// is idempotent.
func (s *ChallengeService) ExpireDueQuizzes(ctx context.Context) (int, error) {
	active, err := s.challenges.GetActiveByType(ctx, models.ChallengeTypeQuiz)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range active {
		if game.ExpireIfDue(&active[i], s.now()) {
			if err := s.persistCompletion(ctx, &active[i], active[i].CreatorID); err != nil {
				logrus.WithError(err).Warn("Failed to persist quiz expiry")
				continue
			}
			expired++
		}
	}
	return expired, nil
}

// statusRank orders the challenge lifecycle for the monotonicity check.
func statusRank(status string) int {
	switch status {
	case models.ChallengeStatusPending:
		return 0
	case models.ChallengeStatusActive:
		return 1
	default:
		return 2
	}
}

func validateSize(challengeType string, size int) error {
	switch challengeType {
	case models.ChallengeTypeBracket:
		// Single elimination wants a full bracket.
		if size < 4 || size > 32 || size&(size-1) != 0 {
			return fmt.Errorf("bracket size must be a power of two between 4 and 32")
		}
	case models.ChallengeTypeQuiz, models.ChallengeTypeTierList:
		if size < 3 || size > 20 {
			return fmt.Errorf("size must be between 3 and 20")
		}
	}
	return nil
}
