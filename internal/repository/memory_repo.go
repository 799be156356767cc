package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cloud-auth/internal/model"
)

// MemoryUserRepository implements the same contract as UserRepository with an
// in-process map. Used by tests and by deployments that run without Postgres.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		nextID: 1,
		users:  map[int64]model.User{},
	}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(username))
	for _, u := range r.users {
		if strings.ToLower(u.Username) == key {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if strings.ToLower(u.Email) == key {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *MemoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *MemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.User{}, model.ErrEmailTaken
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return model.User{}, model.ErrUsernameTaken
		}
	}

	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, u model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[u.ID]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}

	for id, existing := range r.users {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return model.User{}, model.ErrEmailTaken
		}
	}

	current.Email = u.Email
	current.FullName = u.FullName
	current.PasswordHash = u.PasswordHash
	current.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = current
	return current, nil
}

func (r *MemoryUserRepository) SetActive(_ context.Context, id int64, active bool) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}

	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return u, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}
