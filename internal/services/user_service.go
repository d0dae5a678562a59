package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Aidos2201/ReelRivals/internal/config"
	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/Aidos2201/ReelRivals/internal/repository"
	"github.com/Aidos2201/ReelRivals/pkg/email"
	jwtutil "github.com/Aidos2201/ReelRivals/pkg/jwt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserStore is the persistence surface for user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error)
}

// CodeStore is the persistence surface for pending one-time codes.
type CodeStore interface {
	Put(ctx context.Context, code *models.LoginCode) error
	Get(ctx context.Context, email string) (*models.LoginCode, error)
	Delete(ctx context.Context, email string) error
}

// UserService implements the email one-time-code sign-in exchange and
// profile management.
type UserService struct {
	users  UserStore
	codes  CodeStore
	mailer email.Sender
	cfg    *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, codes CodeStore, mailer email.Sender, cfg *config.Config) *UserService {
	return &UserService{
		users:  users,
		codes:  codes,
		mailer: mailer,
		cfg:    cfg,
	}
}

// RequestCode generates a 6-digit sign-in code, stores its bcrypt hash with
// an expiry and emails the code. Any earlier pending code for the email is
// replaced.
func (s *UserService) RequestCode(ctx context.Context, userEmail string) error {
	if !emailRegex.MatchString(userEmail) {
		return fmt.Errorf("invalid email format")
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Code hashing failed")
		return fmt.Errorf("failed to hash code: %v", err)
	}

	err = s.codes.Put(ctx, &models.LoginCode{
		ID:        uuid.NewString(),
		Email:     userEmail,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(s.cfg.CodeExpiry),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Your ReelRivals sign-in code is %s.\n\nIt expires in %d minutes.",
		code, int(s.cfg.CodeExpiry.Minutes()))
	if err := s.mailer.Send(userEmail, "Your sign-in code", body); err != nil {
		logrus.WithError(err).Error("Failed to send sign-in code email")
		return fmt.Errorf("failed to send sign-in code")
	}

	logrus.WithField("email", userEmail).Info("Sign-in code sent")
	return nil
}

// VerifyCode exchanges a valid one-time code for a bearer token. First-time
// users must supply a handle; a duplicate handle fails with
// ErrUsernameTaken and the code remains usable for a retry.
func (s *UserService) VerifyCode(ctx context.Context, userEmail, code, username string) (string, *models.User, error) {
	pending, err := s.codes.Get(ctx, userEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredential
		}
		return "", nil, err
	}

	if time.Now().After(pending.ExpiresAt) {
		_ = s.codes.Delete(ctx, userEmail)
		return "", nil, ErrInvalidCredential
	}

	if bcrypt.CompareHashAndPassword([]byte(pending.CodeHash), []byte(code)) != nil {
		logrus.WithField("email", userEmail).Warn("Sign-in code mismatch")
		return "", nil, ErrInvalidCredential
	}

	user, err := s.users.GetUserByEmail(ctx, userEmail)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.register(ctx, userEmail, username)
	}
	if err != nil {
		return "", nil, err
	}

	_ = s.codes.Delete(ctx, userEmail)

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, s.cfg.JWTSecret, s.cfg.TokenExpiry)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate token")
		return "", nil, fmt.Errorf("failed to generate token: %v", err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User signed in")
	return token, user, nil
}

func (s *UserService) register(ctx context.Context, userEmail, username string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("a username is required for first sign-in")
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, &models.User{
		Username:    username,
		DisplayName: username,
		Email:       userEmail,
		IsVerified:  true,
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userID":   user.ID.Hex(),
		"username": username,
	}).Info("User registered")
	return user, nil
}

// GetUser fetches one user by id.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// UpdateProfile applies a partial update to mutable profile fields only.
// Identity fields (id, email, username) cannot change.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch map[string]interface{}) (*models.User, error) {
	fields := make(map[string]interface{})
	for _, key := range []string{"display_name", "avatar_url", "favorite_genres"} {
		if v, ok := patch[key]; ok {
			fields[key] = v
		}
	}
	if len(fields) == 0 {
		return s.users.GetUserByID(ctx, id)
	}
	return s.users.UpdateUser(ctx, id, fields)
}

// Search finds users by handle prefix, for friend discovery.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]models.PublicUser, error) {
	users, err := s.users.SearchUsers(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
