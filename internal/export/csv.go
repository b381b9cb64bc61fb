// Package export reads and writes traversal records as CSV, the interchange
// format between the traversal commands and the diagram command.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/stonelake/ticketmap/internal/jira"
	"github.com/stonelake/ticketmap/internal/traverse"
)

// Header is the CSV column set, in order.
var Header = []string{
	"key", "project", "issue_type", "status", "priority", "summary",
	"assignee", "updated", "fix_version", "depth", "link_via", "from_key",
	"origin_root",
}

const timeLayout = "2006-01-02 15:04:05"

// WriteCSV writes records in insertion order. An empty record list still
// produces the header row.
func WriteCSV(w io.Writer, records []traverse.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for _, r := range records {
		t := r.Ticket
		updated := ""
		if !t.Updated.IsZero() {
			updated = t.Updated.Format(timeLayout)
		}
		row := []string{
			t.Key, t.Project, t.Type, t.Status, t.Priority, t.Summary,
			t.Assignee, updated, strings.Join(t.FixVersions, ", "),
			strconv.Itoa(r.Depth), r.Relation, r.Predecessor, r.OriginRoot,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row for %s: %w", t.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses records previously written by WriteCSV. It is tolerant of
// reduced column sets: only key and depth are required, so hand-edited or
// legacy files (without link_via/from_key) still load — such files simply
// exercise the diagram fallback path.
func ReadCSV(r io.Reader) ([]traverse.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("export: parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("export: empty CSV")
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := idx["key"]; !ok {
		return nil, fmt.Errorf("export: CSV is missing the key column")
	}
	if _, ok := idx["depth"]; !ok {
		return nil, fmt.Errorf("export: CSV is missing the depth column")
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []traverse.Record
	for n, row := range rows[1:] {
		key := field(row, "key")
		if key == "" {
			continue
		}
		depth, err := strconv.Atoi(field(row, "depth"))
		if err != nil {
			return nil, fmt.Errorf("export: row %d: bad depth %q", n+2, field(row, "depth"))
		}

		ticket := jira.Ticket{
			Key:      key,
			Project:  field(row, "project"),
			Type:     field(row, "issue_type"),
			Status:   field(row, "status"),
			Priority: field(row, "priority"),
			Summary:  field(row, "summary"),
			Assignee: field(row, "assignee"),
		}
		if v := field(row, "updated"); v != "" {
			if t, err := time.Parse(timeLayout, v); err == nil {
				ticket.Updated = t
			}
		}
		if v := field(row, "fix_version"); v != "" {
			for _, part := range strings.Split(v, ",") {
				ticket.FixVersions = append(ticket.FixVersions, strings.TrimSpace(part))
			}
		}

		records = append(records, traverse.Record{
			Ticket:      ticket,
			Depth:       depth,
			Relation:    field(row, "link_via"),
			Predecessor: field(row, "from_key"),
			OriginRoot:  field(row, "origin_root"),
		})
	}
	return records, nil
}
