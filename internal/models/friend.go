package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FriendshipStatusPending  = "pending"
	FriendshipStatusAccepted = "accepted"
)

// Friendship is a directed request record between two users. At most one
// record exists per unordered pair; the pair is friends once the recipient
// accepts.
type Friendship struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequesterID primitive.ObjectID `bson:"requester_id" json:"requester_id"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Counterpart returns the other side of the pair from userID's view.
func (f *Friendship) Counterpart(userID primitive.ObjectID) primitive.ObjectID {
	if f.RequesterID == userID {
		return f.RecipientID
	}
	return f.RequesterID
}

// FriendshipWithUser pairs a friendship row with the resolved counterpart
// user so callers do not need a second round trip.
type FriendshipWithUser struct {
	Friendship Friendship `json:"friendship"`
	User       PublicUser `json:"user"`
}
