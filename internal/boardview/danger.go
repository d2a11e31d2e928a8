package boardview

import "github.com/HyperCol/taipo-fire-php-re/internal/domain"

// DangerEntry one room currently flagged danger.
type DangerEntry struct {
	Floor     int    `json:"floor"`
	Unit      int    `json:"unit"`
	Remark    string `json:"remark,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	// UpdatedAgo is only filled by BuildBoard.
	UpdatedAgo string `json:"updatedAgo,omitempty"`
}

// ComputeDangerList returns the danger rooms in natural key order.
func ComputeDangerList(units domain.BlockUnits) []DangerEntry {
	out := []DangerEntry{}
	for _, r := range orderedRooms(units) {
		if status, ok := domain.ParseStatus(r.record.Status); !ok || status != domain.StatusDanger {
			continue
		}
		out = append(out, DangerEntry{
			Floor:     r.floor,
			Unit:      r.unit,
			Remark:    r.record.Remark,
			UpdatedAt: r.record.UpdatedAt,
		})
	}
	return out
}
