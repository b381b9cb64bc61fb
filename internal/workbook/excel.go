package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/stonelake/ticketmap/internal/traverse"
)

var splitHeader = []string{
	"Depth 0", "Depth 1", "Project", "Type", "Status", "Priority",
	"Summary", "Assignee", "Updated", "Fix Version", "Link Via", "From",
}

var singleHeader = []string{
	"Depth", "Key", "Project", "Type", "Status", "Priority",
	"Summary", "Assignee", "Updated", "Fix Version",
}

const (
	headerFillColor = "4472C4"
	minColWidth     = 10
	maxColWidth     = 60
)

// Write renders a plan to an .xlsx file at path, one sheet per plan entry,
// preserving sheet and row order.
func Write(plan *Plan, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range plan.Sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("workbook: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("workbook: create sheet %s: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet); err != nil {
			return fmt.Errorf("workbook: sheet %s: %w", sheet.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("workbook: save %s: %w", path, err)
	}
	return nil
}

// WriteSingle renders one sheet as its own single-sheet workbook. Used by
// --keep-intermediates to persist the per-ticket files that are normally
// only assembled into the final workbook.
func WriteSingle(sheet Sheet, path string) error {
	return Write(&Plan{Sheets: []Sheet{sheet}}, path)
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	header := singleHeader
	if sheet.Layout == LayoutSplitDepth {
		header = splitHeader
	}

	widths := make([]int, len(header))
	for i, h := range header {
		if err := setCell(f, sheet.Name, i+1, 1, h); err != nil {
			return err
		}
		widths[i] = len(h)
	}

	for row, rec := range sheet.Records {
		cells := rowCells(sheet.Layout, rec)
		for col, val := range cells {
			if err := setCell(f, sheet.Name, col+1, row+2, val); err != nil {
				return err
			}
			if len(val) > widths[col] {
				widths[col] = len(val)
			}
		}
	}

	// Placeholder sheets carry the failure reason as their only data row so
	// the sheet explains itself.
	if sheet.Placeholder {
		if err := setCell(f, sheet.Name, 1, 2, "(no data: "+sheet.Failure+")"); err != nil {
			return err
		}
	}

	if err := styleHeader(f, sheet.Name, len(header)); err != nil {
		return err
	}
	return fitColumns(f, sheet.Name, widths)
}

// rowCells flattens a record into cell strings matching the sheet layout.
func rowCells(layout Layout, rec traverse.Record) []string {
	t := rec.Ticket
	updated := ""
	if !t.Updated.IsZero() {
		updated = t.Updated.Format("2006-01-02 15:04")
	}
	fixVersions := strings.Join(t.FixVersions, ", ")

	if layout == LayoutSplitDepth {
		depth0, depth1 := "", ""
		if rec.Depth == 0 {
			depth0 = t.Key
		} else {
			depth1 = t.Key
		}
		return []string{
			depth0, depth1, t.Project, t.Type, t.Status, t.Priority,
			t.Summary, t.Assignee, updated, fixVersions, rec.Relation, rec.Predecessor,
		}
	}

	indent := strings.Repeat("  ", rec.Depth)
	return []string{
		fmt.Sprintf("%d", rec.Depth), t.Key, t.Project, t.Type, t.Status,
		t.Priority, indent + t.Summary, t.Assignee, updated, fixVersions,
	}
}

func setCell(f *excelize.File, sheet string, col, row int, val string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, val)
}

// styleHeader bolds the header row, fills it, and freezes it in place.
func styleHeader(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", end, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// fitColumns sizes each column to its widest content, clamped to a sane range.
func fitColumns(f *excelize.File, sheet string, widths []int) error {
	for i, w := range widths {
		if w < minColWidth {
			w = minColWidth
		}
		if w > maxColWidth {
			w = maxColWidth
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(w)+2); err != nil {
			return err
		}
	}
	return nil
}
