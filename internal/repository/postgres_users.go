package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// PostgresUsersRepository users on Postgres
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

func (r *PostgresUsersRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT uid::text, email, username, password_hash, is_admin
		FROM users
		WHERE lower(email) = lower($1)
	`
	var u domain.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.UID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.IsAdmin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUsersRepository) Upsert(ctx context.Context, u domain.User) (domain.User, error) {
	if u.UID == "" {
		u.UID = uuid.NewString()
	}
	query := `
		INSERT INTO users (uid, email, username, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			is_admin = EXCLUDED.is_admin
		RETURNING uid::text
	`
	if err := r.db.QueryRowContext(ctx, query,
		u.UID,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.IsAdmin,
	).Scan(&u.UID); err != nil {
		return domain.User{}, fmt.Errorf("upsert user %s: %w", u.Email, err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT uid::text, email, username, password_hash, is_admin
		FROM users
		ORDER BY email
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.IsAdmin); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
