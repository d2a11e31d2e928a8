package boardview

import "github.com/HyperCol/taipo-fire-php-re/internal/domain"

// Stats per-status room counts of one block.
type Stats struct {
	Safe     int `json:"safe"`
	Danger   int `json:"danger"`
	Deceased int `json:"deceased"`
	Mixed    int `json:"mixed"`
	Missing  int `json:"missing"`
}

func (s Stats) Count(status domain.Status) int {
	switch status {
	case domain.StatusSafe:
		return s.Safe
	case domain.StatusDanger:
		return s.Danger
	case domain.StatusDeceased:
		return s.Deceased
	case domain.StatusMixed:
		return s.Mixed
	case domain.StatusMissing:
		return s.Missing
	default:
		return 0
	}
}

// Total rooms with a recognized status.
func (s Stats) Total() int {
	return s.Safe + s.Danger + s.Deceased + s.Mixed + s.Missing
}

func (s *Stats) add(status domain.Status) {
	switch status {
	case domain.StatusSafe:
		s.Safe++
	case domain.StatusDanger:
		s.Danger++
	case domain.StatusDeceased:
		s.Deceased++
	case domain.StatusMixed:
		s.Mixed++
	case domain.StatusMissing:
		s.Missing++
	}
}

// ComputeStats counts records per status. Unreported rooms, unknown status
// values and keys outside the address space are not counted. A nil map is empty.
func ComputeStats(units domain.BlockUnits) Stats {
	var s Stats
	for key, rec := range units {
		if _, _, ok := domain.ParseRoomKey(key); !ok {
			continue
		}
		if status, ok := domain.ParseStatus(rec.Status); ok {
			s.add(status)
		}
	}
	return s
}
