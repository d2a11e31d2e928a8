package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// PostgresStatusRepository safety_status on Postgres
type PostgresStatusRepository struct {
	db *sql.DB
}

func NewPostgresStatusRepository(db *sql.DB) *PostgresStatusRepository {
	return &PostgresStatusRepository{db: db}
}

var _ StatusRepository = (*PostgresStatusRepository)(nil)

func (r *PostgresStatusRepository) ListBlock(ctx context.Context, block string) ([]domain.RoomStatus, error) {
	query := `
		SELECT
			block,
			room,
			COALESCE(status, ''),
			COALESCE(remark, ''),
			COALESCE(source, ''),
			COALESCE(source_url, ''),
			updated_at,
			COALESCE(updated_by, ''),
			COALESCE(updated_by_email, '')
		FROM safety_status
		WHERE block = $1
		ORDER BY room
	`
	rows, err := r.db.QueryContext(ctx, query, block)
	if err != nil {
		return nil, fmt.Errorf("list block %s: %w", block, err)
	}
	defer rows.Close()

	out := []domain.RoomStatus{}
	for rows.Next() {
		var s domain.RoomStatus
		if err := rows.Scan(
			&s.Block,
			&s.Room,
			&s.Status,
			&s.Remark,
			&s.Source,
			&s.SourceURL,
			&s.UpdatedAt,
			&s.UpdatedBy,
			&s.UpdatedByEmail,
		); err != nil {
			return nil, fmt.Errorf("scan safety_status: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Upsert last write wins; updated_at is taken from the database clock.
func (r *PostgresStatusRepository) Upsert(ctx context.Context, s domain.RoomStatus) (time.Time, error) {
	query := `
		INSERT INTO safety_status (
			block, room, status, remark, source, source_url,
			updated_by, updated_by_email, updated_at
		) VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, $8, NOW())
		ON CONFLICT (block, room) DO UPDATE SET
			status = EXCLUDED.status,
			remark = EXCLUDED.remark,
			source = EXCLUDED.source,
			source_url = EXCLUDED.source_url,
			updated_by = EXCLUDED.updated_by,
			updated_by_email = EXCLUDED.updated_by_email,
			updated_at = NOW()
		RETURNING updated_at
	`
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query,
		s.Block,
		s.Room,
		s.Status,
		s.Remark,
		s.Source,
		s.SourceURL,
		s.UpdatedBy,
		s.UpdatedByEmail,
	).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("upsert %s/%s: %w", s.Block, s.Room, err)
	}
	return updatedAt, nil
}
