package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

type MemoryUsersRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User // lower(email) -> user
}

func NewMemoryUsersRepository() *MemoryUsersRepository {
	return &MemoryUsersRepository{byEmail: map[string]domain.User{}}
}

var _ UsersRepository = (*MemoryUsersRepository)(nil)

func (r *MemoryUsersRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUsersRepository) Upsert(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(u.Email)
	if prev, ok := r.byEmail[key]; ok {
		u.UID = prev.UID
	}
	if u.UID == "" {
		u.UID = uuid.NewString()
	}
	r.byEmail[key] = u
	return u, nil
}

func (r *MemoryUsersRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.byEmail))
	for _, u := range r.byEmail {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
