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
)

// ChallengeRepository handles database operations on challenges.
type ChallengeRepository struct {
	collection *mongo.Collection
}

// NewChallengeRepository creates a new instance of ChallengeRepository.
func NewChallengeRepository(db *mongo.Database) *ChallengeRepository {
	return &ChallengeRepository{
		collection: db.Collection("challenges"),
	}
}

// Create inserts a new challenge.
func (r *ChallengeRepository) Create(ctx context.Context, c *models.Challenge) (*models.Challenge, error) {
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert challenge")
		return nil, fmt.Errorf("failed to insert challenge: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	c.ID = insertedID
	return c, nil
}

// GetByID fetches a single challenge.
func (r *ChallengeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error) {
	var c models.Challenge
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find challenge: %v", err)
	}
	return &c, nil
}

// GetByUser returns challenges where the user is either participant.
func (r *ChallengeRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Challenge, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"creator_id": userID},
			{"recipient_id": userID},
		},
	}
	return r.find(ctx, filter)
}

// GetActiveByType returns active challenges of one type, for the expiry
// sweep.
func (r *ChallengeRepository) GetActiveByType(ctx context.Context, challengeType string) ([]models.Challenge, error) {
	return r.find(ctx, bson.M{"type": challengeType, "status": models.ChallengeStatusActive})
}

// Replace overwrites the full challenge document. Last write wins; there is
// no version check at this layer.
func (r *ChallengeRepository) Replace(ctx context.Context, c *models.Challenge) (*models.Challenge, error) {
	c.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return nil, fmt.Errorf("failed to update challenge: %v", err)
	}
	return c, nil
}

// Delete removes a challenge outright.
func (r *ChallengeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %v", err)
	}
	return nil
}

func (r *ChallengeRepository) find(ctx context.Context, filter bson.M) ([]models.Challenge, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenges: %v", err)
	}
	defer cursor.Close(ctx)

	var challenges []models.Challenge
	if err := cursor.All(ctx, &challenges); err != nil {
		return nil, fmt.Errorf("failed to decode challenges: %v", err)
	}
	return challenges, nil
}
