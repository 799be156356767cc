//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cloud-auth/internal/config"
	"cloud-auth/internal/handler"
	"cloud-auth/internal/middleware"
	"cloud-auth/internal/model"
	"cloud-auth/internal/repository"
	"cloud-auth/internal/router"
	"cloud-auth/internal/security"
	"cloud-auth/internal/service"
)

func newTestServer(t *testing.T) (*httptest.Server, *repository.MemoryUserRepository) {
	t.Helper()

	cfg := &config.Config{
		ServerPort:       "8000",
		JWTSecret:        "test-secret",
		JWTAlgorithm:     "HS256",
		AccessTokenTTL:   30 * time.Minute,
		SessionTokenTTL:  192 * time.Hour,
		BcryptCost:       4,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		RequestTimeout:   15 * time.Second,
	}

	store := repository.NewMemoryUserRepository()
	hasher := security.NewHasher(cfg.BcryptCost)
	codec := security.NewCodec(cfg.JWTSecret)
	authService := service.NewAuthService(store, hasher, codec, cfg.AccessTokenTTL, cfg.SessionTokenTTL)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)

	server := httptest.NewServer(router.New(cfg, authMiddleware, authHandler, userHandler))
	t.Cleanup(server.Close)

	return server, store
}

func seedSuperuser(t *testing.T, store *repository.MemoryUserRepository, password string) model.User {
	t.Helper()

	hash, err := security.NewHasher(4).Hash(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user, err := store.Create(t.Context(), model.User{
		Username:     "root",
		Email:        "root@example.com",
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return user
}

func registerUser(t *testing.T, server *httptest.Server, email string, username string, password string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func login(t *testing.T, server *httptest.Server, identifier string, password string) *http.Response {
	t.Helper()

	form := url.Values{}
	form.Set("username", identifier)
	form.Set("password", password)

	resp, err := http.Post(server.URL+"/api/v1/auth/login",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func mustLogin(t *testing.T, server *httptest.Server, identifier string, password string) string {
	t.Helper()

	resp := login(t, server, identifier, password)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Success)
	require.Equal(t, "bearer", parsed.Data.TokenType)
	require.NotEmpty(t, parsed.Data.AccessToken)

	return parsed.Data.AccessToken
}

func doAuthRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeErrorCode(t *testing.T, resp *http.Response) string {
	t.Helper()

	var parsed struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.False(t, parsed.Success)
	require.NotNil(t, parsed.Error)
	return parsed.Error.Code
}
