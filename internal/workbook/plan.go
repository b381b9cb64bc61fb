// Package workbook assembles traversal results into a multi-sheet workbook
// plan and writes it to an .xlsx file. The plan is pure data: sheet order,
// row order, and depth layout are all fixed at assembly time, and the writer
// renders exactly what the plan says.
package workbook

import (
	"fmt"

	"github.com/stonelake/ticketmap/internal/traverse"
)

// OverviewSheetName is the name of the first sheet, which always holds the
// merged overview.
const OverviewSheetName = "Tickets"

// maxSheetNameLen is the spreadsheet format's sheet name limit.
const maxSheetNameLen = 31

// Layout selects how a sheet renders depth.
type Layout int

const (
	// LayoutSplitDepth renders two key columns, Depth 0 and Depth 1, so a
	// reader can tell roots from first-level tickets at a glance. Used for
	// the overview when it was built with depth 1 (the common case).
	LayoutSplitDepth Layout = iota
	// LayoutSingleDepth renders one integer Depth column plus an indented
	// summary. Used for per-ticket descendant sheets and for overviews
	// built with a depth bound other than 1.
	LayoutSingleDepth
)

// Sheet is one named, ordered sheet of traversal records.
type Sheet struct {
	Name    string
	Layout  Layout
	Records []traverse.Record
	// Placeholder marks a sheet emitted for a first-level ticket whose
	// child collection failed. The sheet is empty but present, so a missing
	// sheet is never mistaken for "no children".
	Placeholder bool
	// Failure is the recorded reason when Placeholder is set.
	Failure string
}

// Plan is an ordered list of sheets plus the warnings gathered while
// assembling them. It is created once per invocation and handed to Write.
type Plan struct {
	Sheets   []Sheet
	Warnings []string
}

// Assemble combines a merged overview and the per-first-level-ticket child
// collections into a workbook plan. Sheet 1 is always the overview; sheets
// 2..N appear in the order their keys appear in the overview at depth 1. A
// first-level key with no entry in children (or a nil entry) still gets a
// placeholder sheet with the failure recorded in failures, if any.
//
// overviewDepth is the depth bound the overview was built with; it picks the
// overview layout (split depth columns when 1, a single depth column
// otherwise).
func Assemble(overview *traverse.Result, overviewDepth int, children map[string]*traverse.Result, failures map[string]string) *Plan {
	plan := &Plan{}

	overviewLayout := LayoutSplitDepth
	if overviewDepth != 1 {
		overviewLayout = LayoutSingleDepth
	}
	plan.Sheets = append(plan.Sheets, Sheet{
		Name:    OverviewSheetName,
		Layout:  overviewLayout,
		Records: overview.Records,
	})

	for _, key := range overview.FirstLevelKeys() {
		sheet := Sheet{
			Name:   sheetName(key),
			Layout: LayoutSingleDepth,
		}
		if res := children[key]; res != nil {
			sheet.Records = res.Records
			plan.Warnings = append(plan.Warnings, res.Warnings...)
		} else {
			sheet.Placeholder = true
			sheet.Failure = failures[key]
			if sheet.Failure == "" {
				sheet.Failure = "no child data collected"
			}
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("sheet %s is a placeholder: %s", key, sheet.Failure))
		}
		plan.Sheets = append(plan.Sheets, sheet)
	}

	return plan
}

// sheetName truncates a key to the spreadsheet sheet name limit.
func sheetName(key string) string {
	if len(key) > maxSheetNameLen {
		return key[:maxSheetNameLen]
	}
	return key
}
