package repository

import (
	"context"
	"fmt"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository handles the append-only activity feed.
type ActivityRepository struct {
	collection *mongo.Collection
	cap        int
}

// NewActivityRepository creates a new instance of ActivityRepository. The
// feed is bounded: inserts beyond cap evict the oldest events.
func NewActivityRepository(db *mongo.Database, cap int) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("activity"),
		cap:        cap,
	}
}

// Insert appends a new activity event and trims the feed to its cap.
func (r *ActivityRepository) Insert(ctx context.Context, activity *models.Activity) error {
	_, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert activity")
		return fmt.Errorf("failed to insert activity: %v", err)
	}
	return r.trim(ctx)
}

// Recent returns the newest events across all users.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	return r.find(ctx, bson.M{}, limit)
}

// RecentByUser returns the newest events of a single user.
func (r *ActivityRepository) RecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Activity, error) {
	return r.find(ctx, bson.M{"user_id": userID}, limit)
}

func (r *ActivityRepository) find(ctx context.Context, filter bson.M, limit int) ([]models.Activity, error) {
	sort := bson.D{{Key: "timestamp", Value: -1}}
	opts := options.Find().SetSort(sort).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %v", err)
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %v", err)
	}
	return activities, nil
}

// trim deletes events older than the newest cap entries.
func (r *ActivityRepository) trim(ctx context.Context) error {
	if r.cap <= 0 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count activities: %v", err)
	}
	if count <= int64(r.cap) {
		return nil
	}

	// Collect the overflow document ids explicitly. Deleting by a timestamp
	// cutoff would spare events sharing the cutoff instant, so the bound
	// would not be exact; _id breaks the tie.
	sort := bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}
	opts := options.Find().SetSort(sort).SetSkip(int64(r.cap)).SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to find trim overflow: %v", err)
	}
	defer cursor.Close(ctx)

	var overflow []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &overflow); err != nil {
		return fmt.Errorf("failed to decode trim overflow: %v", err)
	}
	if len(overflow) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(overflow))
	for _, doc := range overflow {
		ids = append(ids, doc.ID)
	}

	_, err = r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("failed to trim activity feed: %v", err)
	}
	return nil
}
