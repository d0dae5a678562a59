package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CodeRepository stores pending one-time sign-in codes, one per email.
type CodeRepository struct {
	collection *mongo.Collection
}

// NewCodeRepository creates a new instance of CodeRepository.
func NewCodeRepository(db *mongo.Database) *CodeRepository {
	return &CodeRepository{
		collection: db.Collection("login_codes"),
	}
}

// Put stores the code for an email, replacing any earlier pending code.
func (r *CodeRepository) Put(ctx context.Context, code *models.LoginCode) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"email": code.Email}, code, opts)
	if err != nil {
		return fmt.Errorf("failed to store login code: %v", err)
	}
	return nil
}

// Get fetches the pending code for an email.
func (r *CodeRepository) Get(ctx context.Context, email string) (*models.LoginCode, error) {
	var code models.LoginCode
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find login code: %v", err)
	}
	return &code, nil
}

// Delete consumes the pending code for an email.
func (r *CodeRepository) Delete(ctx context.Context, email string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return fmt.Errorf("failed to delete login code: %v", err)
	}
	return nil
}
