package boardview

import (
	"sort"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

type room struct {
	floor  int
	unit   int
	key    string
	record domain.UnitRecord
}

// orderedRooms returns the records in natural key order (floor, then unit).
// Keys outside the address space are dropped.
func orderedRooms(units domain.BlockUnits) []room {
	out := make([]room, 0, len(units))
	for key, rec := range units {
		floor, unit, ok := domain.ParseRoomKey(key)
		if !ok {
			continue
		}
		out = append(out, room{floor: floor, unit: unit, key: key, record: rec})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].floor != out[j].floor {
			return out[i].floor < out[j].floor
		}
		return out[i].unit < out[j].unit
	})
	return out
}
