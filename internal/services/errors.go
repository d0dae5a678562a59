package services

import "errors"

// Caller-visible failure conditions. Transient transport errors during
// background polling are never converted into these; they are logged and
// retried on the next poll.
var (
	// ErrInvalidCredential means a bad or expired one-time code.
	ErrInvalidCredential = errors.New("invalid or expired code")
	// ErrUsernameTaken means the requested handle is already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInsufficientPool means too few qualifying movies exist for the
	// requested challenge size.
	ErrInsufficientPool = errors.New("not enough movies for the requested size")
	// ErrNotParticipant means the caller is not a player of the challenge.
	ErrNotParticipant = errors.New("not a participant of this challenge")
)
