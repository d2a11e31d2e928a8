package domain

import "time"

// RoomStatus latest report for one room (one row of safety_status).
// Status holds the raw stored value; the store has no check constraint, so
// readers must go through ParseStatus.
type RoomStatus struct {
	Block          string
	Room           string // "{floor}_{unit}"
	Status         string
	Remark         string
	Source         string
	SourceURL      string
	UpdatedAt      time.Time
	UpdatedBy      string
	UpdatedByEmail string
}

// UnitRecord wire shape of a room inside {units: {roomKey: record}}.
type UnitRecord struct {
	Status    string `json:"status,omitempty"`
	Remark    string `json:"remark,omitempty"`
	Source    string `json:"source,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	UpdatedBy string `json:"updatedBy,omitempty"`
}

// BlockUnits all records of one block keyed by room key. Missing keys are unreported rooms.
type BlockUnits map[string]UnitRecord

func (r RoomStatus) ToUnitRecord() UnitRecord {
	return UnitRecord{
		Status:    r.Status,
		Remark:    r.Remark,
		Source:    r.Source,
		SourceURL: r.SourceURL,
		UpdatedAt: FormatTimestamp(r.UpdatedAt),
		UpdatedBy: r.UpdatedBy,
	}
}

// NewBlockUnits indexes rows by room key. Rows of other blocks are skipped.
func NewBlockUnits(block string, rows []RoomStatus) BlockUnits {
	units := make(BlockUnits, len(rows))
	for _, row := range rows {
		if row.Block != block {
			continue
		}
		units[row.Room] = row.ToUnitRecord()
	}
	return units
}
