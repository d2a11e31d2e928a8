package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
	"github.com/HyperCol/taipo-fire-php-re/internal/repository"
	"github.com/HyperCol/taipo-fire-php-re/internal/store"
)

// StatusService reads and writes room statuses. Block reads go through a
// short-lived KV cache keyed by the block's write version: a write bumps the
// version, so a snapshot read before the write can only land under the old key.
type StatusService struct {
	repo     repository.StatusRepository
	cache    store.KV // nil disables caching
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewStatusService(repo repository.StatusRepository, cache store.KV, cacheTTL time.Duration, logger *zap.Logger) *StatusService {
	if cacheTTL <= 0 {
		cache = nil
	}
	return &StatusService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// UpsertRequest body of POST /api/status
type UpsertRequest struct {
	Block     string `json:"block"`
	Floor     int    `json:"floor"`
	Unit      int    `json:"unit"`
	Status    string `json:"status"`
	Remark    string `json:"remark"`
	Source    string `json:"source"`
	SourceURL string `json:"sourceUrl"`
}

// FetchBlock all records of block keyed by room key.
func (s *StatusService) FetchBlock(ctx context.Context, block string) (domain.BlockUnits, error) {
	block = strings.TrimSpace(block)
	if !domain.IsValidBlock(block) {
		return nil, invalidf("unknown block %q", block)
	}

	// version must be read before the repository
	version, cached := s.blockVersion(ctx, block)
	if cached {
		if units, ok := s.readCache(ctx, block, version); ok {
			return units, nil
		}
	}

	rows, err := s.repo.ListBlock(ctx, block)
	if err != nil {
		return nil, storeError("list block", err)
	}
	units := domain.NewBlockUnits(block, rows)
	if cached {
		s.writeCache(ctx, block, version, units)
	}
	return units, nil
}

// Upsert replaces the record of one room. Any logged-in user may write.
func (s *StatusService) Upsert(ctx context.Context, actor *domain.SessionUser, req UpsertRequest) (domain.UnitRecord, error) {
	if actor == nil {
		return domain.UnitRecord{}, ErrUnauthorized
	}
	row, err := normalizeUpsert(req)
	if err != nil {
		return domain.UnitRecord{}, err
	}
	row.UpdatedBy = actor.Username
	row.UpdatedByEmail = actor.Email

	updatedAt, err := s.repo.Upsert(ctx, row)
	if err != nil {
		return domain.UnitRecord{}, storeError("upsert status", err)
	}
	row.UpdatedAt = updatedAt
	s.bumpVersion(ctx, row.Block)

	s.logger.Info("Room status updated",
		zap.String("block", row.Block),
		zap.String("room", row.Room),
		zap.String("status", row.Status),
		zap.String("uid", actor.UID),
	)
	return row.ToUnitRecord(), nil
}

func normalizeUpsert(req UpsertRequest) (domain.RoomStatus, error) {
	block := strings.TrimSpace(req.Block)
	if !domain.IsValidBlock(block) {
		return domain.RoomStatus{}, invalidf("unknown block %q", req.Block)
	}
	if !domain.IsValidRoom(req.Floor, req.Unit) {
		return domain.RoomStatus{}, invalidf("room %d_%d is outside the block", req.Floor, req.Unit)
	}

	status := strings.TrimSpace(req.Status)
	if status != "" {
		if _, ok := domain.ParseStatus(status); !ok {
			return domain.RoomStatus{}, invalidf("unknown status %q", req.Status)
		}
	}

	source := domain.DefaultSource
	if raw := strings.TrimSpace(req.Source); raw != "" {
		parsed, ok := domain.ParseSource(raw)
		if !ok {
			return domain.RoomStatus{}, invalidf("unknown source %q", req.Source)
		}
		source = parsed
	}

	return domain.RoomStatus{
		Block:     block,
		Room:      domain.RoomKey(req.Floor, req.Unit),
		Status:    status,
		Remark:    strings.TrimSpace(req.Remark),
		Source:    string(source),
		SourceURL: strings.TrimSpace(req.SourceURL),
	}, nil
}

// blockVersion returns false when caching is off or the version is unreadable.
func (s *StatusService) blockVersion(ctx context.Context, block string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	raw, err := s.cache.Get(ctx, store.BlockVersionKey(block))
	if errors.Is(err, store.ErrMiss) {
		return 0, true
	}
	if err != nil {
		s.logger.Warn("Block version read failed", zap.String("block", block), zap.Error(err))
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("Block version unreadable", zap.String("block", block), zap.String("value", raw))
		return 0, false
	}
	return v, true
}

func (s *StatusService) readCache(ctx context.Context, block string, version int64) (domain.BlockUnits, bool) {
	raw, err := s.cache.Get(ctx, store.BlockUnitsKey(block, version))
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Block cache read failed", zap.String("block", block), zap.Error(err))
		}
		return nil, false
	}
	var units domain.BlockUnits
	if err := json.Unmarshal([]byte(raw), &units); err != nil {
		s.logger.Warn("Block cache entry unreadable", zap.String("block", block), zap.Error(err))
		return nil, false
	}
	if units == nil {
		units = domain.BlockUnits{}
	}
	return units, true
}

func (s *StatusService) writeCache(ctx context.Context, block string, version int64, units domain.BlockUnits) {
	b, err := json.Marshal(units)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, store.BlockUnitsKey(block, version), string(b), s.cacheTTL); err != nil {
		s.logger.Warn("Block cache write failed", zap.String("block", block), zap.Error(err))
	}
}

// bumpVersion orphans every cached snapshot of block; the previous entry is
// also dropped so it does not linger until its TTL.
func (s *StatusService) bumpVersion(ctx context.Context, block string) {
	if s.cache == nil {
		return
	}
	v, err := s.cache.Incr(ctx, store.BlockVersionKey(block))
	if err != nil {
		s.logger.Warn("Block cache version bump failed", zap.String("block", block), zap.Error(err))
		return
	}
	_ = s.cache.Del(ctx, store.BlockUnitsKey(block, v-1))
}
