package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/Aidos2201/ReelRivals/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendStore is the persistence surface for friendship records.
type FriendStore interface {
	Create(ctx context.Context, f *models.Friendship) (*models.Friendship, error)
	GetByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Friendship, error)
	AcceptPending(ctx context.Context, requesterID, recipientID primitive.ObjectID) error
	DeletePending(ctx context.Context, requesterID, recipientID primitive.ObjectID) error
	ListAccepted(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error)
	ListIncoming(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error)
	ListOutgoing(ctx context.Context, userID primitive.ObjectID) ([]models.Friendship, error)
}

// FriendService implements the request/accept/reject protocol. Accepting or
// rejecting a request that no longer exists is a silent no-op: the desired
// end state was reached by a concurrent writer.
type FriendService struct {
	friends    FriendStore
	users      UserStore
	activities ActivityStore
}

// NewFriendService creates a new FriendService.
func NewFriendService(friends FriendStore, users UserStore, activities ActivityStore) *FriendService {
	return &FriendService{
		friends:    friends,
		users:      users,
		activities: activities,
	}
}

// Request creates a pending request from requester to recipient. Idempotent
// per unordered pair: if any record already exists, in either direction and
// any status, nothing happens.
func (s *FriendService) Request(ctx context.Context, requesterID, recipientID primitive.ObjectID) error {
	if requesterID == recipientID {
		return fmt.Errorf("cannot send a friend request to yourself")
	}

	_, err := s.friends.GetByPair(ctx, requesterID, recipientID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	_, err = s.friends.Create(ctx, &models.Friendship{
		RequesterID: requesterID,
		RecipientID: recipientID,
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"requester": requesterID.Hex(),
		"recipient": recipientID.Hex(),
	}).Info("Friend request sent")
	return nil
}

// Accept transitions the pending request from requester to the caller into
// accepted and records one friend_added event. A vanished request is a
// silent no-op, so the event is emitted at most once per pair.
func (s *FriendService) Accept(ctx context.Context, recipientID, requesterID primitive.ObjectID) error {
	err := s.friends.AcceptPending(ctx, requesterID, recipientID)
	if errors.Is(err, repository.ErrNotFound) {
		logrus.WithFields(logrus.Fields{
			"requester": requesterID.Hex(),
			"recipient": recipientID.Hex(),
		}).Info("Stale friend accept ignored")
		return nil
	}
	if err != nil {
		return err
	}

	logActivity(ctx, s.activities, &models.Activity{
		UserID:   recipientID,
		Kind:     models.ActivityFriendAdded,
		TargetID: requesterID,
	})
	return nil
}

// Reject deletes the pending request from requester to the caller. A
// vanished request is a silent no-op.
func (s *FriendService) Reject(ctx context.Context, recipientID, requesterID primitive.ObjectID) error {
	err := s.friends.DeletePending(ctx, requesterID, recipientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// Friends returns the caller's accepted friends as resolved user records.
func (s *FriendService) Friends(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error) {
	friendships, err := s.friends.ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(friendships))
	for i := range friendships {
		ids = append(ids, friendships[i].Counterpart(userID))
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, nil
}

// FriendIDs returns just the ids of the caller's accepted friends.
func (s *FriendService) FriendIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	friendships, err := s.friends.ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(friendships))
	for i := range friendships {
		ids = append(ids, friendships[i].Counterpart(userID))
	}
	return ids, nil
}

// Incoming returns pending requests addressed to the caller, with the
// requesting user resolved.
func (s *FriendService) Incoming(ctx context.Context, userID primitive.ObjectID) ([]models.FriendshipWithUser, error) {
	friendships, err := s.friends.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, userID, friendships)
}

// Outgoing returns pending requests the caller has sent, with the recipient
// user resolved.
func (s *FriendService) Outgoing(ctx context.Context, userID primitive.ObjectID) ([]models.FriendshipWithUser, error) {
	friendships, err := s.friends.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, userID, friendships)
}

// resolve joins friendship rows with their counterpart users in one users
// fetch, so callers never need a second round trip per row.
func (s *FriendService) resolve(ctx context.Context, userID primitive.ObjectID, friendships []models.Friendship) ([]models.FriendshipWithUser, error) {
	ids := make([]primitive.ObjectID, 0, len(friendships))
	for i := range friendships {
		ids = append(ids, friendships[i].Counterpart(userID))
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.User, len(users))
	for i := range users {
		byID[users[i].ID] = users[i]
	}

	resolved := make([]models.FriendshipWithUser, 0, len(friendships))
	for i := range friendships {
		counterpart := byID[friendships[i].Counterpart(userID)]
		resolved = append(resolved, models.FriendshipWithUser{
			Friendship: friendships[i],
			User:       counterpart.Public(),
		})
	}
	return resolved, nil
}
