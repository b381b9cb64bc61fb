package workbook

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/stonelake/ticketmap/internal/jira"
	"github.com/stonelake/ticketmap/internal/traverse"
)

func rec(key string, depth int, relation, pred string) traverse.Record {
	return traverse.Record{
		Ticket:      jira.Ticket{Key: key, Project: "STL", Summary: "summary of " + key},
		Depth:       depth,
		Relation:    relation,
		Predecessor: pred,
		OriginRoot:  "STL-R1",
	}
}

func overviewResult() *traverse.Result {
	return &traverse.Result{
		Records: []traverse.Record{
			rec("STL-R1", 0, "", ""),
			rec("STL-C1", 1, traverse.RelationChild, "STL-R1"),
			rec("STL-C2", 1, traverse.RelationChild, "STL-R1"),
		},
	}
}

func TestAssemble_SheetCorrespondence(t *testing.T) {
	t.Parallel()

	overview := &traverse.Result{
		Records: []traverse.Record{
			rec("STL-R1", 0, "", ""),
			rec("STL-X", 1, traverse.RelationChild, "STL-R1"),
			rec("STL-Y", 1, "blocks", "STL-R1"),
			rec("STL-Z", 1, "relates to", "STL-R1"),
		},
	}
	children := map[string]*traverse.Result{
		"STL-X": {Records: []traverse.Record{rec("STL-X", 0, "", "")}},
		"STL-Y": {Records: []traverse.Record{rec("STL-Y", 0, "", "")}},
		// STL-Z intentionally missing: collection failed.
	}

	plan := Assemble(overview, 1, children, map[string]string{"STL-Z": "store unreachable"})

	wantNames := []string{"Tickets", "STL-X", "STL-Y", "STL-Z"}
	if len(plan.Sheets) != len(wantNames) {
		t.Fatalf("got %d sheets, want %d", len(plan.Sheets), len(wantNames))
	}
	for i, want := range wantNames {
		if plan.Sheets[i].Name != want {
			t.Errorf("sheet[%d] = %q, want %q", i, plan.Sheets[i].Name, want)
		}
	}

	z := plan.Sheets[3]
	if !z.Placeholder {
		t.Error("STL-Z sheet should be a placeholder")
	}
	if z.Failure != "store unreachable" {
		t.Errorf("STL-Z failure = %q", z.Failure)
	}
	if len(plan.Warnings) == 0 {
		t.Error("expected a warning for the placeholder sheet")
	}
}

func TestAssemble_RowOrderPreserved(t *testing.T) {
	t.Parallel()

	c1 := &traverse.Result{Records: []traverse.Record{
		rec("STL-C1", 0, "", ""),
		rec("STL-GC1", 1, traverse.RelationChild, "STL-C1"),
	}}
	plan := Assemble(overviewResult(), 1, map[string]*traverse.Result{"STL-C1": c1}, nil)

	// Overview rows keep traversal order.
	overviewKeys := []string{"STL-R1", "STL-C1", "STL-C2"}
	for i, want := range overviewKeys {
		if got := plan.Sheets[0].Records[i].Key(); got != want {
			t.Errorf("overview row %d = %q, want %q", i, got, want)
		}
	}
	// C1's sheet holds its own tree in order; C2's is a placeholder.
	if got := len(plan.Sheets[1].Records); got != 2 {
		t.Errorf("STL-C1 sheet has %d rows, want 2", got)
	}
	if !plan.Sheets[2].Placeholder {
		t.Error("STL-C2 sheet should be a placeholder")
	}
}

func TestAssemble_OverviewLayoutFollowsDepth(t *testing.T) {
	t.Parallel()

	plan := Assemble(overviewResult(), 1, nil, nil)
	if plan.Sheets[0].Layout != LayoutSplitDepth {
		t.Error("depth-1 overview should use the split depth layout")
	}

	plan = Assemble(overviewResult(), 3, nil, nil)
	if plan.Sheets[0].Layout != LayoutSingleDepth {
		t.Error("deeper overview should use the single depth layout")
	}
}

func TestAssemble_LongKeyTruncatedToSheetLimit(t *testing.T) {
	t.Parallel()

	longKey := "STL-" + strings.Repeat("9", 40)
	overview := &traverse.Result{Records: []traverse.Record{
		rec("STL-R1", 0, "", ""),
		rec(longKey, 1, traverse.RelationChild, "STL-R1"),
	}}
	plan := Assemble(overview, 1, nil, nil)
	if got := plan.Sheets[1].Name; len(got) != 31 {
		t.Errorf("sheet name %q has length %d, want 31", got, len(got))
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	t.Parallel()

	c1 := &traverse.Result{Records: []traverse.Record{
		rec("STL-C1", 0, "", ""),
		rec("STL-GC1", 1, traverse.RelationChild, "STL-C1"),
	}}
	plan := Assemble(overviewResult(), 1, map[string]*traverse.Result{"STL-C1": c1}, nil)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := Write(plan, path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Tickets", "STL-C1", "STL-C2"}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet[%d] = %q, want %q", i, sheets[i], want[i])
		}
	}

	rows, err := f.GetRows("Tickets")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 { // header + 3 records
		t.Fatalf("Tickets has %d rows, want 4", len(rows))
	}
	if rows[0][0] != "Depth 0" || rows[0][1] != "Depth 1" {
		t.Errorf("header = %v, want explicit Depth 0 / Depth 1 columns", rows[0][:2])
	}
	// The root key lands in the Depth 0 column, first-level keys in Depth 1.
	if rows[1][0] != "STL-R1" || rows[1][1] != "" {
		t.Errorf("root row = %v", rows[1][:2])
	}
	if rows[2][0] != "" || rows[2][1] != "STL-C1" {
		t.Errorf("first-level row = %v", rows[2][:2])
	}

	// Placeholder sheet exists and explains itself.
	zRows, err := f.GetRows("STL-C2")
	if err != nil {
		t.Fatalf("GetRows placeholder: %v", err)
	}
	if len(zRows) != 2 {
		t.Fatalf("placeholder sheet has %d rows, want header + note", len(zRows))
	}
	if !strings.Contains(zRows[1][0], "no data") {
		t.Errorf("placeholder note = %q", zRows[1][0])
	}
}

func TestWriteSingle(t *testing.T) {
	t.Parallel()

	sheet := Sheet{
		Name:   "STL-C1",
		Layout: LayoutSingleDepth,
		Records: []traverse.Record{
			rec("STL-C1", 0, "", ""),
			rec("STL-GC1", 1, traverse.RelationChild, "STL-C1"),
		},
	}
	path := filepath.Join(t.TempDir(), "single.xlsx")
	if err := WriteSingle(sheet, path); err != nil {
		t.Fatalf("WriteSingle: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("STL-C1")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "Depth" {
		t.Errorf("header = %v, want single Depth column", rows[0][0])
	}
	if rows[2][0] != "1" || rows[2][1] != "STL-GC1" {
		t.Errorf("child row = %v", rows[2][:2])
	}
	// Summary is indented by depth.
	if !strings.HasPrefix(rows[2][6], "  ") {
		t.Errorf("child summary %q should be indented", rows[2][6])
	}
}
