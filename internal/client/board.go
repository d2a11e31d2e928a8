package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/HyperCol/taipo-fire-php-re/internal/boardview"
	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

var (
	// ErrStaleResponse the fetch finished after another block was selected; its result was dropped.
	ErrStaleResponse = errors.New("stale block response discarded")
	ErrNoBlock       = errors.New("no block selected")
)

// BoardAPI calls Board needs from the server
type BoardAPI interface {
	FetchBlock(ctx context.Context, block string) (domain.BlockUnits, error)
	UpdateStatus(ctx context.Context, upd StatusUpdate) (domain.UnitRecord, error)
}

// Board local state of one viewer: the selected block, its snapshot and the filter.
// Every fetch is stamped with a generation; only the latest one may land.
type Board struct {
	api BoardAPI
	now func() time.Time

	mu     sync.Mutex
	gen    uint64
	block  string
	units  domain.BlockUnits
	filter boardview.FilterState
}

func NewBoard(api BoardAPI) *Board {
	return &Board{
		api:    api,
		now:    time.Now,
		filter: boardview.DefaultFilterState(),
	}
}

// SelectBlock switches to block and loads its snapshot. If another selection
// or refresh starts before this one returns, the result is discarded with ErrStaleResponse.
func (b *Board) SelectBlock(ctx context.Context, block string) error {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	if b.block != block {
		b.units = nil
	}
	b.block = block
	b.mu.Unlock()

	return b.load(ctx, gen, block)
}

// Refresh reloads the selected block.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	if b.block == "" {
		b.mu.Unlock()
		return ErrNoBlock
	}
	b.gen++
	gen, block := b.gen, b.block
	b.mu.Unlock()

	return b.load(ctx, gen, block)
}

func (b *Board) load(ctx context.Context, gen uint64, block string) error {
	units, err := b.api.FetchBlock(ctx, block)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen || block != b.block {
		return ErrStaleResponse
	}
	if err != nil {
		return err
	}
	b.units = units
	return nil
}

func (b *Board) SetFilter(f boardview.FilterState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = f
}

func (b *Board) Filter() boardview.FilterState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// Block currently selected block id, "" before the first selection.
func (b *Board) Block() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.block
}

// Units copy of the current snapshot.
func (b *Board) Units() domain.BlockUnits {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyUnits(b.units)
}

// UpdateStatus writes through the API, then patches the local snapshot
// without refetching. The patch is skipped if the block changed meanwhile.
// Fetches still in flight when the patch lands are discarded as stale.
func (b *Board) UpdateStatus(ctx context.Context, upd StatusUpdate) error {
	stored, err := b.api.UpdateStatus(ctx, upd)
	if err != nil {
		return err
	}

	rec := domain.UnitRecord{
		Status:    upd.Status,
		Remark:    upd.Remark,
		Source:    upd.Source,
		SourceURL: upd.SourceURL,
		UpdatedAt: stored.UpdatedAt,
		UpdatedBy: stored.UpdatedBy,
	}
	if rec.Source == "" {
		rec.Source = string(domain.DefaultSource)
	}
	if rec.UpdatedAt == "" {
		rec.UpdatedAt = domain.FormatTimestamp(b.now())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.block != upd.Block || b.units == nil {
		return nil
	}
	// a fetch issued before this write may carry the old record
	b.gen++
	next := copyUnits(b.units)
	next[domain.RoomKey(upd.Floor, upd.Unit)] = rec
	b.units = next
	return nil
}

// View projections of the current snapshot under the current filter.
func (b *Board) View(now time.Time) (boardview.Board, error) {
	b.mu.Lock()
	block, units, filter := b.block, b.units, b.filter
	b.mu.Unlock()

	if block == "" {
		return boardview.Board{}, ErrNoBlock
	}
	info, ok := domain.LookupBlock(block)
	if !ok {
		info = domain.Block{ID: block, Name: block}
	}
	return boardview.BuildBoard(info, units, filter, now), nil
}

func copyUnits(units domain.BlockUnits) domain.BlockUnits {
	if units == nil {
		return nil
	}
	out := make(domain.BlockUnits, len(units))
	for k, v := range units {
		out[k] = v
	}
	return out
}
