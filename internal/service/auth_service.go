package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud-auth/internal/model"
	"cloud-auth/internal/security"
	"cloud-auth/pkg/apierror"
)

// UserStore is the durable user record store the service orchestrates over.
// Implemented by repository.UserRepository and repository.MemoryUserRepository.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, u model.User) (model.User, error)
	SetActive(ctx context.Context, id int64, active bool) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// errInvalidCredentials is shared by the no-such-user and wrong-password
// paths so the two are indistinguishable to a caller probing for usernames.
var errInvalidCredentials = apierror.New("UNAUTHORIZED", "incorrect username or password", "", http.StatusUnauthorized)

type AuthService struct {
	store      UserStore
	hasher     *security.Hasher
	codec      *security.Codec
	accessTTL  time.Duration
	sessionTTL time.Duration
}

func NewAuthService(store UserStore, hasher *security.Hasher, codec *security.Codec, accessTTL time.Duration, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		store:      store,
		hasher:     hasher,
		codec:      codec,
		accessTTL:  accessTTL,
		sessionTTL: sessionTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)

	if err := validateEmail(email); err != nil {
		return model.User{}, err
	}
	if err := validateUsername(username); err != nil {
		return model.User{}, err
	}
	if err := validatePassword(req.Password); err != nil {
		return model.User{}, err
	}

	emailTaken, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return model.User{}, fmt.Errorf("check email: %w", err)
	}
	if emailTaken {
		return model.User{}, apierror.New("DUPLICATE_EMAIL", "email already registered", "", http.StatusBadRequest)
	}

	usernameTaken, err := s.store.ExistsByUsername(ctx, username)
	if err != nil {
		return model.User{}, fmt.Errorf("check username: %w", err)
	}
	if usernameTaken {
		return model.User{}, apierror.New("DUPLICATE_USERNAME", "username already taken", "", http.StatusBadRequest)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.store.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		FullName:     req.FullName,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The pre-checks above race with concurrent registrations; the
		// store's unique constraint is the authoritative guard.
		return model.User{}, mapDuplicate(err)
	}

	return user, nil
}

// Login resolves the identifier as a username first and falls back to email.
// Unknown identifier and wrong password return the identical error.
func (s *AuthService) Login(ctx context.Context, identifier string, password string, scopes []string, remember bool) (model.TokenResponse, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.store.FindByUsername(ctx, identifier)
	if errors.Is(err, model.ErrUserNotFound) {
		user, err = s.store.FindByEmail(ctx, identifier)
	}
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenResponse{}, errInvalidCredentials
	}
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return model.TokenResponse{}, errInvalidCredentials
	}

	if !user.IsActive {
		return model.TokenResponse{}, apierror.New("UNAUTHORIZED", "inactive user", "", http.StatusUnauthorized)
	}

	ttl := s.accessTTL
	if remember {
		ttl = s.sessionTTL
	}

	return s.issueToken(user, scopes, ttl)
}

// Refresh issues a fresh short-lived token for an already-resolved identity.
func (s *AuthService) Refresh(user model.User) (model.TokenResponse, error) {
	return s.issueToken(user, nil, s.accessTTL)
}

// Resolve decodes a bearer token and loads the account it asserts. Every
// failure surfaces as a 401; the decode failure kinds stay internal.
func (s *AuthService) Resolve(ctx context.Context, tokenString string) (model.User, error) {
	payload, err := s.codec.Decode(tokenString)
	if err != nil {
		return model.User{}, apierror.New("UNAUTHORIZED", "could not validate credentials", "", http.StatusUnauthorized)
	}

	id, err := strconv.ParseInt(payload.Subject, 10, 64)
	if err != nil {
		return model.User{}, apierror.New("UNAUTHORIZED", "could not validate credentials", "", http.StatusUnauthorized)
	}

	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, apierror.New("UNAUTHORIZED", "user not found", "", http.StatusUnauthorized)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("resolve token subject: %w", err)
	}

	if !user.IsActive {
		return model.User{}, apierror.New("UNAUTHORIZED", "inactive user", "", http.StatusUnauthorized)
	}

	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, user model.User, req model.UpdateProfileRequest) (model.User, error) {
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if err := validateEmail(email); err != nil {
			return model.User{}, err
		}
		user.Email = email
	}

	if req.FullName != nil {
		user.FullName = req.FullName
	}

	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return model.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	updated, err := s.store.UpdateProfile(ctx, user)
	if err != nil {
		return model.User{}, mapDuplicate(err)
	}

	return updated, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.store.List(ctx)
}

func (s *AuthService) SetUserActive(ctx context.Context, id int64, active bool) (model.User, error) {
	user, err := s.store.SetActive(ctx, id, active)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, apierror.New("NOT_FOUND", "user not found", strconv.FormatInt(id, 10), http.StatusNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("set user active: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueToken(user model.User, scopes []string, ttl time.Duration) (model.TokenResponse, error) {
	token, err := s.codec.Encode(strconv.FormatInt(user.ID, 10), scopes, time.Now().UTC().Add(ttl))
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("sign token: %w", err)
	}

	return model.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func mapDuplicate(err error) error {
	switch {
	case errors.Is(err, model.ErrEmailTaken):
		return apierror.New("DUPLICATE_EMAIL", "email already registered", "", http.StatusBadRequest)
	case errors.Is(err, model.ErrUsernameTaken):
		return apierror.New("DUPLICATE_USERNAME", "username already taken", "", http.StatusBadRequest)
	}
	return err
}
