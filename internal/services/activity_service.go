package services

import (
	"context"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityStore is the persistence surface for the activity feed.
type ActivityStore interface {
	Insert(ctx context.Context, activity *models.Activity) error
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
	RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Activity, error)
}

// ActivityService reads the derived activity feed. Writes happen as a side
// effect of entry, friendship and challenge mutations in their services.
type ActivityService struct {
	repo ActivityStore
}

// NewActivityService creates a new ActivityService.
func NewActivityService(repo ActivityStore) *ActivityService {
	return &ActivityService{repo: repo}
}

// Feed returns the newest events across all users.
func (s *ActivityService) Feed(ctx context.Context, limit int) ([]models.Activity, error) {
	return s.repo.Recent(ctx, limit)
}

// FeedByUser returns the newest events of one user.
func (s *ActivityService) FeedByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Activity, error) {
	return s.repo.RecentByUser(ctx, userID, limit)
}

// logActivity appends one feed event, logging but not propagating failures:
// the primary write already succeeded and the feed is a derived view.
func logActivity(ctx context.Context, store ActivityStore, activity *models.Activity) {
	activity.Timestamp = time.Now()
	if err := store.Insert(ctx, activity); err != nil {
		logrus.WithError(err).Warn("Failed to append activity event")
	}
}
