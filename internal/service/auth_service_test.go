package service

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-auth/internal/model"
	"cloud-auth/internal/repository"
	"cloud-auth/internal/security"
	"cloud-auth/pkg/apierror"
)

func newTestService(t *testing.T) (*AuthService, *repository.MemoryUserRepository, *security.Codec) {
	t.Helper()

	store := repository.NewMemoryUserRepository()
	codec := security.NewCodec("test-secret")
	svc := NewAuthService(store, security.NewHasher(4), codec, 30*time.Minute, 192*time.Hour)
	return svc, store, codec
}

func registerAlice(t *testing.T, svc *AuthService) model.User {
	t.Helper()

	user, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Valid123",
	})
	require.NoError(t, err)
	return user
}

func errorCode(t *testing.T, err error) string {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Code
}

func TestRegisterCreatesActiveUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	user := registerAlice(t, svc)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "Valid123", user.PasswordHash)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestRegisterRejectsWeakPasswords(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "Sh0rt"},
		{"no uppercase", "alllowercase1"},
		{"no digit", "NoDigitsHere"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), model.RegisterRequest{
				Email:    "a@b.com",
				Username: "someone",
				Password: tc.password,
			})
			require.Error(t, err)
			assert.Equal(t, "WEAK_PASSWORD", errorCode(t, err))
		})
	}
}

func TestRegisterAcceptsLongPasswords(t *testing.T) {
	svc, _, _ := newTestService(t)

	password := strings.Repeat("Aa1", 30) // 90 bytes, past bcrypt's 72 byte input limit
	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "longpw@example.com",
		Username: "longpw",
		Password: password,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "longpw", password, nil, false)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "longpw", "Wrong1"+password, nil, false)
	require.Error(t, err)
}

func TestRegisterRejectsInvalidEmailAndUsername(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "not-an-email",
		Username: "someone",
		Password: "Valid123",
	})
	assert.Equal(t, "INVALID_EMAIL", errorCode(t, err))

	_, err = svc.Register(context.Background(), model.RegisterRequest{
		Email:    "a@b.com",
		Username: "ab",
		Password: "Valid123",
	})
	assert.Equal(t, "INVALID_USERNAME", errorCode(t, err))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "Valid123",
	})
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(t, err))

	_, err = svc.Register(context.Background(), model.RegisterRequest{
		Email:    "alice2@example.com",
		Username: "alice",
		Password: "Valid123",
	})
	assert.Equal(t, "DUPLICATE_USERNAME", errorCode(t, err))
}

func TestLoginIssuesTokenForUser(t *testing.T) {
	svc, _, codec := newTestService(t)
	user := registerAlice(t, svc)

	token, err := svc.Login(context.Background(), "alice", "Valid123", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)

	payload, err := codec.Decode(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(user.ID, 10), payload.Subject)
	assert.Empty(t, payload.Scopes)
}

func TestLoginByEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerAlice(t, svc)

	_, err := svc.Login(context.Background(), "alice@example.com", "Valid123", nil, false)
	require.NoError(t, err)
}

func TestLoginCarriesScopesAndSessionTTL(t *testing.T) {
	svc, _, codec := newTestService(t)
	registerAlice(t, svc)

	token, err := svc.Login(context.Background(), "alice", "Valid123", []string{"read", "write"}, true)
	require.NoError(t, err)

	payload, err := codec.Decode(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"read", "write"}, payload.Scopes)

	// remember=true selects the 8 day session lifetime.
	expiry := time.Unix(payload.ExpiresAt, 0)
	assert.True(t, expiry.After(time.Now().Add(7*24*time.Hour)))
}

func TestLoginDoesNotDistinguishUnknownUserFromWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerAlice(t, svc)

	_, wrongPassErr := svc.Login(context.Background(), "alice", "wrong-pw", nil, false)
	require.Error(t, wrongPassErr)

	_, unknownUserErr := svc.Login(context.Background(), "nonexistent", "anything", nil, false)
	require.Error(t, unknownUserErr)

	assert.Equal(t, wrongPassErr, unknownUserErr)
	assert.Equal(t, wrongPassErr.Error(), unknownUserErr.Error())
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := registerAlice(t, svc)

	_, err := store.SetActive(context.Background(), user.ID, false)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice", "Valid123", nil, false)
	require.Error(t, err)

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.HTTPStatus)
	assert.Equal(t, "inactive user", apiErr.Message)
}

func TestResolveReturnsTokenSubject(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := registerAlice(t, svc)

	token, err := svc.Login(context.Background(), "alice", "Valid123", nil, false)
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, "alice", resolved.Username)
}

func TestResolveRejectsDeactivatedAccountWithLiveToken(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := registerAlice(t, svc)

	token, err := svc.Login(context.Background(), "alice", "Valid123", nil, false)
	require.NoError(t, err)

	_, err = store.SetActive(context.Background(), user.ID, false)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), token.AccessToken)
	require.Error(t, err)

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.HTTPStatus)
	assert.Equal(t, "inactive user", apiErr.Message)
}

func TestResolveRejectsUnknownSubject(t *testing.T) {
	svc, _, codec := newTestService(t)

	token, err := codec.Encode("999", nil, time.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestResolveRejectsNonNumericSubject(t *testing.T) {
	svc, _, codec := newTestService(t)

	token, err := codec.Encode("not-a-number", nil, time.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestResolveRejectsExpiredAndForeignTokens(t *testing.T) {
	svc, _, codec := newTestService(t)
	user := registerAlice(t, svc)

	subject := strconv.FormatInt(user.ID, 10)

	expired, err := codec.Encode(subject, nil, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), expired)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))

	foreign, err := security.NewCodec("other-secret").Encode(subject, nil, time.Now().Add(time.Minute))
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), foreign)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestRefreshIssuesFreshToken(t *testing.T) {
	svc, _, codec := newTestService(t)
	user := registerAlice(t, svc)

	token, err := svc.Refresh(user)
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)

	payload, err := codec.Decode(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(user.ID, 10), payload.Subject)
	assert.Empty(t, payload.Scopes)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := registerAlice(t, svc)

	email := "alice+new@example.com"
	fullName := "Alice Liddell"
	updated, err := svc.UpdateProfile(context.Background(), user, model.UpdateProfileRequest{
		Email:    &email,
		FullName: &fullName,
	})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)
	require.NotNil(t, updated.FullName)
	assert.Equal(t, fullName, *updated.FullName)

	// New password works for login, old one does not.
	password := "N3wPassword"
	_, err = svc.UpdateProfile(context.Background(), updated, model.UpdateProfileRequest{Password: &password})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice", "N3wPassword", nil, false)
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), "alice", "Valid123", nil, false)
	require.Error(t, err)
}

func TestUpdateProfileRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerAlice(t, svc)

	bob, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "bob@example.com",
		Username: "bob",
		Password: "Valid123",
	})
	require.NoError(t, err)

	email := "alice@example.com"
	_, err = svc.UpdateProfile(context.Background(), bob, model.UpdateProfileRequest{Email: &email})
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(t, err))
}

func TestSetUserActive(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := registerAlice(t, svc)

	deactivated, err := svc.SetUserActive(context.Background(), user.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = svc.SetUserActive(context.Background(), 999, false)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}
