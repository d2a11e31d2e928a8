package boardview

import (
	"sort"
	"time"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// ListRow one visible record in list view.
type ListRow struct {
	Floor     int    `json:"floor"`
	Unit      int    `json:"unit"`
	RoomKey   string `json:"roomKey"`
	Status    string `json:"status,omitempty"`
	Remark    string `json:"remark,omitempty"`
	Source    string `json:"source,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	UpdatedBy string `json:"updatedBy,omitempty"`
}

// BuildListModel projects the records visible under f, sorted per f.SortBy and
// f.SortOrder. Unreported rooms without a record are never listed. Equal keys
// keep natural key order; missing or unparseable timestamps sort as earliest.
func BuildListModel(units domain.BlockUnits, f FilterState) []ListRow {
	rooms := orderedRooms(units)
	rows := make([]ListRow, 0, len(rooms))
	stamps := make([]time.Time, 0, len(rooms))
	for _, r := range rooms {
		rec := r.record
		if !IsVisible(&rec, f) {
			continue
		}
		rows = append(rows, ListRow{
			Floor:     r.floor,
			Unit:      r.unit,
			RoomKey:   r.key,
			Status:    rec.Status,
			Remark:    rec.Remark,
			Source:    rec.Source,
			SourceURL: rec.SourceURL,
			UpdatedAt: rec.UpdatedAt,
			UpdatedBy: rec.UpdatedBy,
		})
		ts, _ := domain.ParseTimestamp(rec.UpdatedAt)
		stamps = append(stamps, ts)
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	desc := f.SortOrder == SortDesc
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := idx[i], idx[j]
		switch f.SortBy {
		case SortByUpdatedAt:
			if desc {
				return stamps[a].After(stamps[b])
			}
			return stamps[a].Before(stamps[b])
		default:
			if desc {
				return rows[a].Floor > rows[b].Floor
			}
			return rows[a].Floor < rows[b].Floor
		}
	})

	sorted := make([]ListRow, len(rows))
	for i, k := range idx {
		sorted[i] = rows[k]
	}
	return sorted
}
