package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/config"
	jwtutil "github.com/Aidos2201/ReelRivals/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`\d{6}`)

func newUserService() (*UserService, *fakeUserStore, *fakeCodeStore, *fakeMailer) {
	users := newFakeUserStore()
	codes := newFakeCodeStore()
	mailer := &fakeMailer{}
	cfg := &config.Config{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		CodeExpiry:  10 * time.Minute,
	}
	return NewUserService(users, codes, mailer, cfg), users, codes, mailer
}

// sentCode digs the one-time code out of the last email body.
func sentCode(t *testing.T, mailer *fakeMailer) string {
	t.Helper()
	require.NotEmpty(t, mailer.sent)
	code := codePattern.FindString(mailer.sent[len(mailer.sent)-1])
	require.Len(t, code, 6)
	return code
}

func TestSignInFlowRegistersAndIssuesToken(t *testing.T) {
	svc, _, codes, mailer := newUserService()
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "alice@example.com"))
	code := sentCode(t, mailer)

	token, user, err := svc.VerifyCode(ctx, "alice@example.com", code, "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsVerified)

	claims, err := jwtutil.ParseToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	// The code is single-use.
	_, _, err = svc.VerifyCode(ctx, "alice@example.com", code, "")
	assert.ErrorIs(t, err, ErrInvalidCredential)
	_, notFound := codes.codes["alice@example.com"]
	assert.False(t, notFound)
}

func TestReturningUserNeedsNoUsername(t *testing.T) {
	svc, _, _, mailer := newUserService()
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "alice@example.com"))
	_, first, err := svc.VerifyCode(ctx, "alice@example.com", sentCode(t, mailer), "alice")
	require.NoError(t, err)

	require.NoError(t, svc.RequestCode(ctx, "alice@example.com"))
	_, again, err := svc.VerifyCode(ctx, "alice@example.com", sentCode(t, mailer), "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestVerifyRejectsWrongAndExpiredCodes(t *testing.T) {
	svc, _, codes, mailer := newUserService()
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "alice@example.com"))
	_, _, err := svc.VerifyCode(ctx, "alice@example.com", "000000", "alice")
	if err == nil {
		t.Skip("generated code happened to be 000000")
	}
	assert.ErrorIs(t, err, ErrInvalidCredential)

	// A wrong guess does not burn the code.
	code := sentCode(t, mailer)
	_, _, err = svc.VerifyCode(ctx, "alice@example.com", code, "alice")
	require.NoError(t, err)

	// Expired codes are rejected and removed.
	require.NoError(t, svc.RequestCode(ctx, "bob@example.com"))
	pending := codes.codes["bob@example.com"]
	pending.ExpiresAt = time.Now().Add(-time.Minute)
	codes.codes["bob@example.com"] = pending

	_, _, err = svc.VerifyCode(ctx, "bob@example.com", sentCode(t, mailer), "bob")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestRegisterRejectsTakenUsernameButKeepsCode(t *testing.T) {
	svc, _, _, mailer := newUserService()
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "alice@example.com"))
	_, _, err := svc.VerifyCode(ctx, "alice@example.com", sentCode(t, mailer), "alice")
	require.NoError(t, err)

	require.NoError(t, svc.RequestCode(ctx, "impostor@example.com"))
	code := sentCode(t, mailer)

	_, _, err = svc.VerifyCode(ctx, "impostor@example.com", code, "alice")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// The same code works once a free handle is picked.
	_, user, err := svc.VerifyCode(ctx, "impostor@example.com", code, "alice2")
	require.NoError(t, err)
	assert.Equal(t, "alice2", user.Username)
}

func TestRequestCodeRejectsMalformedEmail(t *testing.T) {
	svc, _, _, mailer := newUserService()

	assert.Error(t, svc.RequestCode(context.Background(), "not-an-email"))
	assert.Empty(t, mailer.sent)
}

func TestUpdateProfileWhitelistsFields(t *testing.T) {
	svc, users, _, mailer := newUserService()
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "alice@example.com"))
	_, user, err := svc.VerifyCode(ctx, "alice@example.com", sentCode(t, mailer), "alice")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, map[string]interface{}{
		"display_name": "Alice A.",
		"email":        "evil@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.DisplayName)

	stored := users.users[user.ID]
	assert.Equal(t, "alice@example.com", stored.Email)
}
