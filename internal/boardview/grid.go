package boardview

import "github.com/HyperCol/taipo-fire-php-re/internal/domain"

// CellClass display class of a grid cell.
type CellClass string

const (
	CellUnreported CellClass = "unreported"
	CellSafe       CellClass = "safe"
	CellDanger     CellClass = "danger"
	CellDeceased   CellClass = "deceased"
	CellMixed      CellClass = "mixed"
	CellMissing    CellClass = "missing"
)

// ClassOf maps a record to its cell class; nil and unknown statuses are unreported.
func ClassOf(record *domain.UnitRecord) CellClass {
	if record == nil {
		return CellUnreported
	}
	status, ok := domain.ParseStatus(record.Status)
	if !ok {
		return CellUnreported
	}
	switch status {
	case domain.StatusSafe:
		return CellSafe
	case domain.StatusDanger:
		return CellDanger
	case domain.StatusDeceased:
		return CellDeceased
	case domain.StatusMixed:
		return CellMixed
	case domain.StatusMissing:
		return CellMissing
	default:
		return CellUnreported
	}
}

// Icon name of the board icon set for the class.
func (c CellClass) Icon() string {
	switch c {
	case CellSafe:
		return "check-circle"
	case CellDanger:
		return "alert-circle"
	case CellDeceased:
		return "x-circle"
	case CellMixed:
		return "layers"
	case CellMissing:
		return "search"
	default:
		return ""
	}
}

type GridCell struct {
	Floor   int                `json:"floor"`
	Unit    int                `json:"unit"`
	RoomKey string             `json:"roomKey"`
	Record  *domain.UnitRecord `json:"record,omitempty"`
	Class   CellClass          `json:"class"`
	Icon    string             `json:"icon,omitempty"`
	// Visible false means the cell is dimmed, never removed.
	Visible bool `json:"visible"`
}

type GridRow struct {
	Floor int        `json:"floor"`
	Cells []GridCell `json:"cells"`
}

type GridModel struct {
	Rows         []GridRow `json:"rows"`
	VisibleCount int       `json:"visibleCount"`
	TotalCount   int       `json:"totalCount"`
}

// BuildGridModel lays out every (floor, unit) of the block, floors ascending.
func BuildGridModel(units domain.BlockUnits, f FilterState) GridModel {
	grid := GridModel{
		Rows:       make([]GridRow, 0, domain.FloorCount),
		TotalCount: domain.RoomsPerBlock,
	}
	for _, floor := range domain.Floors() {
		row := GridRow{Floor: floor, Cells: make([]GridCell, 0, domain.UnitCount)}
		for _, unit := range domain.Units() {
			key := domain.RoomKey(floor, unit)
			var record *domain.UnitRecord
			if rec, ok := units[key]; ok {
				rec := rec
				record = &rec
			}
			class := ClassOf(record)
			cell := GridCell{
				Floor:   floor,
				Unit:    unit,
				RoomKey: key,
				Record:  record,
				Class:   class,
				Icon:    class.Icon(),
				Visible: IsVisible(record, f),
			}
			if cell.Visible {
				grid.VisibleCount++
			}
			row.Cells = append(row.Cells, cell)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// FilteredCount number of the block's cells visible under f.
func FilteredCount(units domain.BlockUnits, f FilterState) int {
	count := 0
	for _, floor := range domain.Floors() {
		for _, unit := range domain.Units() {
			var record *domain.UnitRecord
			if rec, ok := units[domain.RoomKey(floor, unit)]; ok {
				record = &rec
			}
			if IsVisible(record, f) {
				count++
			}
		}
	}
	return count
}
