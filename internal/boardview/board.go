// Package boardview derives the board projections (counts, danger alert,
// grid and list views) from a snapshot of one block's room records.
// Functions here never mutate their input and never fail on malformed data.
package boardview

import (
	"time"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// Board every projection of one block under one filter state.
type Board struct {
	Block         domain.Block  `json:"block"`
	Filter        FilterState   `json:"filter"`
	Stats         Stats         `json:"stats"`
	Danger        []DangerEntry `json:"danger"`
	Grid          GridModel     `json:"grid"`
	List          []ListRow     `json:"list"`
	FilteredCount int           `json:"filteredCount"`
	TotalRooms    int           `json:"totalRooms"`
}

// BuildBoard computes all projections. now is used for the danger list's relative times.
func BuildBoard(block domain.Block, units domain.BlockUnits, f FilterState, now time.Time) Board {
	danger := ComputeDangerList(units)
	for i := range danger {
		danger[i].UpdatedAgo = FormatRelativeTime(danger[i].UpdatedAt, now)
	}
	grid := BuildGridModel(units, f)
	return Board{
		Block:         block,
		Filter:        f,
		Stats:         ComputeStats(units),
		Danger:        danger,
		Grid:          grid,
		List:          BuildListModel(units, f),
		FilteredCount: grid.VisibleCount,
		TotalRooms:    domain.RoomsPerBlock,
	}
}
