package memory

import (
	"context"
	"strings"
	"sync"

	"pet-adoption/internal/domain/users"
)

type userRepo struct {
	mu      sync.RWMutex
	byEmail map[string]users.User
}

func NewUserRepo() users.Repository {
	return &userRepo{
		byEmail: make(map[string]users.User),
	}
}

func (r *userRepo) Create(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := strings.ToLower(u.Email)
	if _, exists := r.byEmail[k]; exists {
		return users.ErrAlreadyExists
	}
	r.byEmail[k] = u
	return nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}
