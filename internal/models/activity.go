package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActivityWatched            = "watched"
	ActivityWatchLater         = "watch_later"
	ActivityDropped            = "dropped"
	ActivityRated              = "rated"
	ActivityFriendAdded        = "friend_added"
	ActivityChallengeCompleted = "challenge_completed"
)

// Activity is an append-only feed event derived from user actions. Events
// are never mutated; the feed is capped and the oldest entries evicted.
type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Kind      string             `bson:"kind" json:"kind"`
	MovieID   int                `bson:"movie_id,omitempty" json:"movie_id,omitempty"`
	Rating    int                `bson:"rating,omitempty" json:"rating,omitempty"`
	Reason    string             `bson:"reason,omitempty" json:"reason,omitempty"`
	TargetID  primitive.ObjectID `bson:"target_id,omitempty" json:"target_id,omitempty"`
	Message   string             `bson:"message,omitempty" json:"message,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
