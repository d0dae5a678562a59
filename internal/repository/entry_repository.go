package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EntryRepository handles database operations on the watch ledger.
type EntryRepository struct {
	collection *mongo.Collection
}

// NewEntryRepository creates a new instance of EntryRepository.
func NewEntryRepository(db *mongo.Database) *EntryRepository {
	return &EntryRepository{
		collection: db.Collection("entries"),
	}
}

// Upsert inserts or replaces the entry keyed by (user_id, movie_id). There
// is never more than one entry per key; the last write wins.
func (r *EntryRepository) Upsert(ctx context.Context, entry *models.MovieEntry) (*models.MovieEntry, error) {
	entry.UpdatedAt = time.Now()

	filter := bson.M{"user_id": entry.UserID, "movie_id": entry.MovieID}
	doc := bson.M{
		"user_id":    entry.UserID,
		"movie_id":   entry.MovieID,
		"status":     entry.Status,
		"updated_at": entry.UpdatedAt,
	}
	if entry.Rating > 0 {
		doc["rating"] = entry.Rating
	}
	if entry.DroppedReason != "" {
		doc["dropped_reason"] = entry.DroppedReason
	}
	if entry.Note != "" {
		doc["note"] = entry.Note
	}

	opts := options.Replace().SetUpsert(true)
	result, err := r.collection.ReplaceOne(ctx, filter, doc, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to upsert entry")
		return nil, fmt.Errorf("failed to upsert entry: %v", err)
	}

	if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return entry, nil
}

// Get fetches the entry for a (user, movie) pair.
func (r *EntryRepository) Get(ctx context.Context, userID primitive.ObjectID, movieID int) (*models.MovieEntry, error) {
	var entry models.MovieEntry
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "movie_id": movieID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry: %v", err)
	}
	return &entry, nil
}

// GetByUser returns all ledger entries belonging to one user.
func (r *EntryRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.MovieEntry, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// GetAll returns the whole ledger. Clients derive "friend entries" from it
// by excluding their own.
func (r *EntryRepository) GetAll(ctx context.Context) ([]models.MovieEntry, error) {
	return r.find(ctx, bson.M{})
}

// GetByUsers returns entries for a set of users in one query.
func (r *EntryRepository) GetByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]models.MovieEntry, error) {
	if len(userIDs) == 0 {
		return []models.MovieEntry{}, nil
	}
	return r.find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
}

// Delete removes the entry keyed by (user_id, movie_id).
func (r *EntryRepository) Delete(ctx context.Context, userID primitive.ObjectID, movieID int) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "movie_id": movieID})
	if err != nil {
		return fmt.Errorf("failed to delete entry: %v", err)
	}
	return nil
}

func (r *EntryRepository) find(ctx context.Context, filter bson.M) ([]models.MovieEntry, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %v", err)
	}
	defer cursor.Close(ctx)

	var entries []models.MovieEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %v", err)
	}
	return entries, nil
}
