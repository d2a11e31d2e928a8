package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/HyperCol/taipo-fire-php-re/internal/boardview"
	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// BlockExportHeader columns of the rooms sheet
var BlockExportHeader = []string{
	"Floor",
	"Unit",
	"Room",
	"Status",
	"Status Label",
	"Remark",
	"Source",
	"Source URL",
	"Updated At",
	"Updated By",
}

var blockExportWidths = []float64{8, 8, 10, 12, 14, 48, 12, 40, 16, 16}

var statusFill = map[domain.Status]string{
	domain.StatusSafe:     "#C6EFCE",
	domain.StatusDanger:   "#FFC7CE",
	domain.StatusDeceased: "#D9D9D9",
	domain.StatusMixed:    "#FFEB9C",
	domain.StatusMissing:  "#BDD7EE",
}

const (
	roomsSheet   = "Rooms"
	summarySheet = "Summary"
)

// GenerateBlockExport renders one block as an xlsx workbook: every recorded
// room (floor descending) and a per-status summary taken at now.
func GenerateBlockExport(block domain.Block, units domain.BlockUnits, now time.Time) ([]byte, error) {
	f := excelize.NewFile()

	for _, name := range []string{roomsSheet, summarySheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
	}
	f.DeleteSheet("Sheet1")
	// indexes shift once Sheet1 is gone
	if index, err := f.GetSheetIndex(roomsSheet); err == nil {
		f.SetActiveSheet(index)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	fills := map[domain.Status]int{}
	for status, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create status style: %w", err)
		}
		fills[status] = id
	}

	if err := writeRow(f, roomsSheet, 1, toAny(BlockExportHeader)); err != nil {
		f.Close()
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(BlockExportHeader), 1)
	if err := f.SetCellStyle(roomsSheet, "A1", lastHeader, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, width := range blockExportWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(roomsSheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	rows := boardview.BuildListModel(units, boardview.DefaultFilterState())
	for i, r := range rows {
		rowNum := i + 2
		label := ""
		status, known := domain.ParseStatus(r.Status)
		if known {
			label = status.Label()
		}
		sourceLabel := r.Source
		if src, ok := domain.ParseSource(r.Source); ok {
			sourceLabel = src.Label()
		}
		updated := ""
		if r.UpdatedAt != "" {
			updated = boardview.FormatFullTime(r.UpdatedAt)
		}
		if err := writeRow(f, roomsSheet, rowNum, []any{
			r.Floor, r.Unit, r.RoomKey, r.Status, label, r.Remark, sourceLabel, r.SourceURL, updated, r.UpdatedBy,
		}); err != nil {
			f.Close()
			return nil, err
		}
		if known {
			cell, _ := excelize.CoordinatesToCellName(4, rowNum)
			if err := f.SetCellStyle(roomsSheet, cell, cell, fills[status]); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set status style: %w", err)
			}
		}
	}

	if err := f.SetPanes(roomsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	if err := writeSummary(f, block, units, now, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, block domain.Block, units domain.BlockUnits, now time.Time, headerStyle int) error {
	stats := boardview.ComputeStats(units)
	lines := [][]any{
		{"Block", block.Name},
		{"Generated At", now.In(boardview.DisplayZone).Format("2006-01-02 15:04")},
		{"Status", "Rooms"},
	}
	for _, s := range domain.Statuses {
		lines = append(lines, []any{s.Label(), stats.Count(s)})
	}
	lines = append(lines,
		[]any{"Reported", stats.Total()},
		[]any{"Total Rooms", domain.RoomsPerBlock},
	)

	for i, line := range lines {
		if err := writeRow(f, summarySheet, i+1, line); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A3", "B3", headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	return f.SetColWidth(summarySheet, "A", "B", 18)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if v == nil || v == "" {
			continue
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
