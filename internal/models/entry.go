package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EntryStatusWatched    = "watched"
	EntryStatusWatchLater = "watch_later"
	EntryStatusDropped    = "dropped"
)

// MovieEntry is one row of a user's watch ledger. A user has at most one
// entry per movie; writes replace the existing entry (upsert).
type MovieEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	MovieID       int                `bson:"movie_id" json:"movie_id"`
	Status        string             `bson:"status" json:"status"`
	Rating        int                `bson:"rating,omitempty" json:"rating,omitempty"`
	DroppedReason string             `bson:"dropped_reason,omitempty" json:"dropped_reason,omitempty"`
	Note          string             `bson:"note,omitempty" json:"note,omitempty"`
	// UpdatedAt is the entry's logical clock. Clients compare it to detect
	// changes; it never resolves conflicts between concurrent writers.
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func ValidEntryStatus(s string) bool {
	switch s {
	case EntryStatusWatched, EntryStatusWatchLater, EntryStatusDropped:
		return true
	}
	return false
}
