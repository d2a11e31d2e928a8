package repository

import (
	"context"
	"sync"
	"time"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// MemoryStatusRepository used when the database is disabled or unreachable.
// Data lives for the life of the process.
type MemoryStatusRepository struct {
	mu   sync.RWMutex
	rows map[string]map[string]domain.RoomStatus // block -> room -> row
	now  func() time.Time
}

func NewMemoryStatusRepository() *MemoryStatusRepository {
	return &MemoryStatusRepository{
		rows: map[string]map[string]domain.RoomStatus{},
		now:  time.Now,
	}
}

var _ StatusRepository = (*MemoryStatusRepository)(nil)

func (r *MemoryStatusRepository) ListBlock(_ context.Context, block string) ([]domain.RoomStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomStatus, 0, len(r.rows[block]))
	for _, s := range r.rows[block] {
		out = append(out, s)
	}
	return out, nil
}

// Upsert stamps updated_at, never earlier than the room's previous stamp.
func (r *MemoryStatusRepository) Upsert(_ context.Context, s domain.RoomStatus) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rows[s.Block] == nil {
		r.rows[s.Block] = map[string]domain.RoomStatus{}
	}
	stamp := r.now().UTC()
	if prev, ok := r.rows[s.Block][s.Room]; ok && stamp.Before(prev.UpdatedAt) {
		stamp = prev.UpdatedAt
	}
	s.UpdatedAt = stamp
	r.rows[s.Block][s.Room] = s
	return stamp, nil
}
