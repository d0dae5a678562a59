package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FriendRepository handles database operations on friendship records.
type FriendRepository struct {
	collection *mongo.Collection
}

// NewFriendRepository creates a new instance of FriendRepository.
func NewFriendRepository(db *mongo.Database) *FriendRepository {
	return &FriendRepository{
		collection: db.Collection("friendships"),
	}
}

// Create inserts a new pending friendship record.
func (r *FriendRepository) Create(ctx context.Context, f *models.Friendship) (*models.Friendship, error) {
	f.CreatedAt = time.Now()
	f.Status = models.FriendshipStatusPending

	result, err := r.collection.InsertOne(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to insert friendship: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	f.ID = insertedID
	return f, nil
}

// GetByPair returns the record for the unordered pair (a, b), in either
// direction, regardless of status.
func (r *FriendRepository) GetByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Friendship, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"requester_id": a, "recipient_id": b},
			{"requester_id": b, "recipient_id": a},
		},
	}

	var f models.Friendship
	err := r.collection.FindOne(ctx, filter).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find friendship: %v", err)
	}
	return &f, nil
}

// AcceptPending flips a pending requester->recipient record to accepted.
// Returns ErrNotFound when no such pending record exists.
func (r *FriendRepository) AcceptPending(ctx context.Context, requesterID, recipientID primitive.ObjectID) error {
	filter := bson.M{
		"requester_id": requesterID,
		"recipient_id": recipientID,
		"status":       models.FriendshipStatusPending,
	}

	result, err := r.collection.UpdateOne(ctx, filter,
		bson.M{"$set": bson.M{"status": models.FriendshipStatusAccepted}})
	if err != nil {
		return fmt.Errorf("failed to accept friendship: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePending removes a pending requester->recipient record. Returns
// ErrNotFound when no such record exists.
func (r *FriendRepository) DeletePending(ctx context.Context, requesterID, recipientID primitive.ObjectID) error {
	filter := bson.M{
		"requester_id": requesterID,
		"recipient_id": recipientID,
		"status":       models.FriendshipStatusPending,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a friendship record for the unordered pair in any status.
func (r *FriendRepository) Delete(ctx context.Context, a, b primitive.ObjectID) error {
	filter := bson.M{
		"$or": []bson.M{
			{"requester_id": a, "recipient_id": b},
			{"requester_id": b, "recipient_id": a},
		},
	}
	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete friendship: %v", err)
	}
	return nil
}

// ListAccepted returns accepted friendships where the user is either side.
func (r *FriendRepository) ListAccepted(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	filter := bson.M{
		"status": models.FriendshipStatusAccepted,
		"$or": []bson.M{
			{"requester_id": userID},
			{"recipient_id": userID},
		},
	}
	return r.find(ctx, filter)
}

// ListIncoming returns pending requests addressed to the user.
func (r *FriendRepository) ListIncoming(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	return r.find(ctx, bson.M{"recipient_id": userID, "status": models.FriendshipStatusPending})
}

// ListOutgoing returns pending requests sent by the user.
func (r *FriendRepository) ListOutgoing(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	return r.find(ctx, bson.M{"requester_id": userID, "status": models.FriendshipStatusPending})
}

func (r *FriendRepository) find(ctx context.Context, filter bson.M) ([]models.Friendship, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friendships: %v", err)
	}
	defer cursor.Close(ctx)

	var friendships []models.Friendship
	if err := cursor.All(ctx, &friendships); err != nil {
		return nil, fmt.Errorf("failed to decode friendships: %v", err)
	}
	return friendships, nil
}
