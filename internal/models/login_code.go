package models

import "time"

// LoginCode is a pending one-time sign-in code. Only the bcrypt hash of the
// code is stored; the code itself is delivered by email and discarded.
type LoginCode struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	CodeHash  string    `bson:"code_hash" json:"-"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
