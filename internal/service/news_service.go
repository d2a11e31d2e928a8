package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
	"github.com/HyperCol/taipo-fire-php-re/internal/repository"
)

// MaxNewsLimit upper bound of a news page
const MaxNewsLimit = 50

// NewsInput fields of a news item supplied by an admin
type NewsInput struct {
	Content  string `json:"content"`
	Link     string `json:"link"`
	LinkText string `json:"linkText"`
}

// NewsService admin-curated announcement feed. Items are immutable; an edit
// is Replace, which removes the old item and adds a new one.
type NewsService struct {
	repo         repository.NewsRepository
	defaultLimit int
	logger       *zap.Logger
}

func NewNewsService(repo repository.NewsRepository, defaultLimit int, logger *zap.Logger) *NewsService {
	return &NewsService{repo: repo, defaultLimit: clampLimit(defaultLimit, 20), logger: logger}
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if limit > MaxNewsLimit {
		limit = MaxNewsLimit
	}
	return limit
}

// List newest first. limit <= 0 takes the default; anything above MaxNewsLimit is capped.
func (s *NewsService) List(ctx context.Context, limit int) ([]domain.NewsItem, error) {
	items, err := s.repo.List(ctx, clampLimit(limit, s.defaultLimit))
	if err != nil {
		return nil, storeError("list news", err)
	}
	return items, nil
}

func (s *NewsService) Add(ctx context.Context, actor *domain.SessionUser, in NewsInput) (domain.NewsItem, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.NewsItem{}, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return domain.NewsItem{}, invalidf("content is required")
	}
	item, err := s.repo.Create(ctx, domain.NewsItem{
		ID:             uuid.NewString(),
		Content:        content,
		Link:           strings.TrimSpace(in.Link),
		LinkText:       strings.TrimSpace(in.LinkText),
		CreatedBy:      actor.Username,
		CreatedByEmail: actor.Email,
	})
	if err != nil {
		return domain.NewsItem{}, storeError("create news", err)
	}
	s.logger.Info("News added", zap.String("id", item.ID), zap.String("uid", actor.UID))
	return item, nil
}

// Remove succeeds for ids that do not exist.
func (s *NewsService) Remove(ctx context.Context, actor *domain.SessionUser, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return invalidf("id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("delete news", err)
	}
	s.logger.Info("News removed", zap.String("id", id), zap.String("uid", actor.UID))
	return nil
}

// Replace edits an item: the result has a new id and creation time and
// sorts first. The input is validated before anything is removed.
func (s *NewsService) Replace(ctx context.Context, actor *domain.SessionUser, id string, in NewsInput) (domain.NewsItem, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.NewsItem{}, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return domain.NewsItem{}, invalidf("content is required")
	}
	if err := s.Remove(ctx, actor, id); err != nil {
		return domain.NewsItem{}, err
	}
	return s.Add(ctx, actor, in)
}

func requireAdmin(actor *domain.SessionUser) error {
	if actor == nil {
		return ErrUnauthorized
	}
	if !actor.IsAdmin {
		return ErrForbidden
	}
	return nil
}
