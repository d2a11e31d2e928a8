package repository

import (
	"context"
	"errors"
	"time"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

var ErrNotFound = errors.New("not found")

// StatusRepository safety_status table
type StatusRepository interface {
	// ListBlock all rows of one block, any order.
	ListBlock(ctx context.Context, block string) ([]domain.RoomStatus, error)
	// Upsert replaces the row of (block, room) wholesale and returns the stored updated_at.
	Upsert(ctx context.Context, s domain.RoomStatus) (time.Time, error)
}

// NewsRepository news table
type NewsRepository interface {
	// List newest first.
	List(ctx context.Context, limit int) ([]domain.NewsItem, error)
	// Create stores item (ID set by caller) and returns it with CreatedAt stamped.
	Create(ctx context.Context, item domain.NewsItem) (domain.NewsItem, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
}

// UsersRepository users table
type UsersRepository interface {
	// GetByEmail case-insensitive; ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Upsert keyed by email; a missing UID is generated.
	Upsert(ctx context.Context, u domain.User) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
