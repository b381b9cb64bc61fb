package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stonelake/ticketmap/internal/jira"
	"github.com/stonelake/ticketmap/internal/traverse"
)

func sampleRecords() []traverse.Record {
	return []traverse.Record{
		{
			Ticket: jira.Ticket{
				Key: "STL-1", Project: "STL", Type: "Epic", Status: "In Progress",
				Priority: "High", Summary: "Root epic", Assignee: "Dana Veras",
				Updated:     time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
				FixVersions: []string{"11.2.0", "11.3.0"},
			},
			Depth: 0, OriginRoot: "STL-1",
		},
		{
			Ticket: jira.Ticket{Key: "STL-2", Project: "STL", Type: "Bug", Summary: "A bug, with commas"},
			Depth:  1, Relation: "is blocked by", Predecessor: "STL-1", OriginRoot: "STL-1",
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := sampleRecords()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Key() != want[i].Key() || got[i].Depth != want[i].Depth {
			t.Errorf("record[%d] = %s@%d, want %s@%d", i, got[i].Key(), got[i].Depth, want[i].Key(), want[i].Depth)
		}
		if got[i].Relation != want[i].Relation || got[i].Predecessor != want[i].Predecessor {
			t.Errorf("record[%d] relation/predecessor = %q/%q, want %q/%q",
				i, got[i].Relation, got[i].Predecessor, want[i].Relation, want[i].Predecessor)
		}
	}
	if got[0].Ticket.Updated.IsZero() {
		t.Error("updated timestamp lost in round trip")
	}
	if len(got[0].Ticket.FixVersions) != 2 {
		t.Errorf("fix versions = %v", got[0].Ticket.FixVersions)
	}
	if got[1].Ticket.Summary != "A bug, with commas" {
		t.Errorf("summary = %q", got[1].Ticket.Summary)
	}
}

func TestWriteCSV_EmptyStillHasHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "key,") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestReadCSV_LegacyColumnsTolerated(t *testing.T) {
	t.Parallel()

	// Legacy exports carry only key/depth/link_via: no from_key.
	in := "key,depth,link_via\nSTL-1,0,\nSTL-2,1,child\n"
	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[1].Relation != "child" || got[1].Predecessor != "" {
		t.Errorf("record = %+v", got[1])
	}
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"empty input", ""},
		{"missing key column", "depth\n0\n"},
		{"missing depth column", "key\nSTL-1\n"},
		{"bad depth value", "key,depth\nSTL-1,zero\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ReadCSV(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
