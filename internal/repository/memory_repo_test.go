package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-auth/internal/model"
)

func newUser(username string, email string) model.User {
	now := time.Now().UTC()
	return model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$fakefakefakefakefakefake",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryRepoCreateAssignsIDs(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	alice, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)
	bob, err := repo.Create(ctx, newUser("bob", "bob@example.com"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), alice.ID)
	assert.Equal(t, int64(2), bob.ID)
}

func TestMemoryRepoEnforcesUniqueness(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newUser("alice2", "ALICE@example.com"))
	assert.ErrorIs(t, err, model.ErrEmailTaken)

	_, err = repo.Create(ctx, newUser("Alice", "other@example.com"))
	assert.ErrorIs(t, err, model.ErrUsernameTaken)
}

func TestMemoryRepoLookups(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	byUsername, err := repo.FindByUsername(ctx, "  ALICE  ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)

	byEmail, err := repo.FindByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestMemoryRepoSetActive(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	updated, err := repo.SetActive(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))

	_, err = repo.SetActive(ctx, 999, false)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestMemoryRepoListSortsByUsername(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("charlie", "charlie@example.com"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("bob", "bob@example.com"))
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "charlie", users[2].Username)
}

func TestMemoryRepoUpdateProfileRejectsTakenEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)
	bob, err := repo.Create(ctx, newUser("bob", "bob@example.com"))
	require.NoError(t, err)

	bob.Email = "alice@example.com"
	_, err = repo.UpdateProfile(ctx, bob)
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}
