package repository

import (
	"context"
	"sync"
	"time"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// MemoryNewsRepository keeps items newest first.
type MemoryNewsRepository struct {
	mu    sync.RWMutex
	items []domain.NewsItem
	now   func() time.Time
}

func NewMemoryNewsRepository() *MemoryNewsRepository {
	return &MemoryNewsRepository{now: time.Now}
}

var _ NewsRepository = (*MemoryNewsRepository)(nil)

func (r *MemoryNewsRepository) List(_ context.Context, limit int) ([]domain.NewsItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.items) {
		limit = len(r.items)
	}
	out := make([]domain.NewsItem, limit)
	copy(out, r.items[:limit])
	return out, nil
}

func (r *MemoryNewsRepository) Create(_ context.Context, item domain.NewsItem) (domain.NewsItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.CreatedAt = r.now().UTC()
	if len(r.items) > 0 && item.CreatedAt.Before(r.items[0].CreatedAt) {
		item.CreatedAt = r.items[0].CreatedAt
	}
	r.items = append([]domain.NewsItem{item}, r.items...)
	return item, nil
}

func (r *MemoryNewsRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.items {
		if n.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return nil
}
