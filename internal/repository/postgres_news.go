package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// PostgresNewsRepository news on Postgres
type PostgresNewsRepository struct {
	db *sql.DB
}

func NewPostgresNewsRepository(db *sql.DB) *PostgresNewsRepository {
	return &PostgresNewsRepository{db: db}
}

var _ NewsRepository = (*PostgresNewsRepository)(nil)

func (r *PostgresNewsRepository) List(ctx context.Context, limit int) ([]domain.NewsItem, error) {
	query := `
		SELECT
			id,
			content,
			COALESCE(link, ''),
			COALESCE(link_text, ''),
			created_at,
			COALESCE(created_by, ''),
			COALESCE(created_by_email, '')
		FROM news
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	out := []domain.NewsItem{}
	for rows.Next() {
		var n domain.NewsItem
		if err := rows.Scan(
			&n.ID,
			&n.Content,
			&n.Link,
			&n.LinkText,
			&n.CreatedAt,
			&n.CreatedBy,
			&n.CreatedByEmail,
		); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresNewsRepository) Create(ctx context.Context, item domain.NewsItem) (domain.NewsItem, error) {
	query := `
		INSERT INTO news (id, content, link, link_text, created_by, created_by_email, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, NOW())
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query,
		item.ID,
		item.Content,
		item.Link,
		item.LinkText,
		item.CreatedBy,
		item.CreatedByEmail,
	).Scan(&item.CreatedAt); err != nil {
		return domain.NewsItem{}, fmt.Errorf("create news: %w", err)
	}
	return item, nil
}

func (r *PostgresNewsRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete news %s: %w", id, err)
	}
	return nil
}
