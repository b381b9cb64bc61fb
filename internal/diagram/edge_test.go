package diagram

import (
	"testing"

	"github.com/stonelake/ticketmap/internal/jira"
	"github.com/stonelake/ticketmap/internal/traverse"
)

func rec(key string, depth int, relation, pred string) traverse.Record {
	return traverse.Record{
		Ticket:      jira.Ticket{Key: key, Summary: "summary of " + key},
		Depth:       depth,
		Relation:    relation,
		Predecessor: pred,
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		relation string
		depth    int
		want     Class
	}{
		{"", 0, ClassRoot},
		{"blocks", 0, ClassRoot}, // depth 0 always wins
		{"blocks", 1, ClassBlocked},
		{"is blocked by", 1, ClassBlocked},
		{"relates to", 1, ClassRelates},
		{"is related to", 2, ClassRelates},
		{"child", 1, ClassChild},
		{"is child of", 1, ClassChild},
		{"Blocks", 1, ClassBlocked}, // case-insensitive
		{"duplicates", 1, ClassOther},
		{"", 1, ClassOther},
	}

	for _, tt := range tests {
		if got := Classify(tt.relation, tt.depth); got != tt.want {
			t.Errorf("Classify(%q, %d) = %q, want %q", tt.relation, tt.depth, got, tt.want)
		}
	}
}

func TestResolveEdges_ExplicitMetadata(t *testing.T) {
	t.Parallel()

	records := []traverse.Record{
		rec("A", 0, "", ""),
		rec("B", 1, "child", "A"),
		rec("C", 1, "is blocked by", "A"),
	}
	res := ResolveEdges(records)

	if res.UsedFallback {
		t.Error("explicit metadata present; fallback must not be used")
	}
	want := []Edge{
		{Source: "A", Target: "B", Label: "child", Class: ClassChild},
		{Source: "A", Target: "C", Label: "is blocked by", Class: ClassBlocked},
	}
	if len(res.Edges) != len(want) {
		t.Fatalf("got %d edges, want %d: %v", len(res.Edges), len(want), res.Edges)
	}
	for i := range want {
		if res.Edges[i] != want[i] {
			t.Errorf("edge[%d] = %+v, want %+v", i, res.Edges[i], want[i])
		}
	}
}

func TestResolveEdges_NotInferredFromDepthWhenPredecessorPresent(t *testing.T) {
	t.Parallel()

	// D's predecessor is B, not the first depth-1 node. Depth inference
	// would wrongly connect D to B's sibling hub.
	records := []traverse.Record{
		rec("A", 0, "", ""),
		rec("B", 1, "child", "A"),
		rec("C", 1, "child", "A"),
		rec("D", 2, "blocks", "B"),
	}
	res := ResolveEdges(records)

	for _, e := range res.Edges {
		if e.Target == "D" && e.Source != "B" {
			t.Errorf("D connected to %s; explicit predecessor B must win", e.Source)
		}
	}
}

func TestResolveEdges_FallbackWhenPredecessorAbsent(t *testing.T) {
	t.Parallel()

	// Legacy input: predecessors stripped.
	records := []traverse.Record{
		rec("A", 0, "", ""),
		rec("B", 1, "child", ""),
		rec("C", 1, "relates to", ""),
		rec("D", 2, "blocks", ""),
	}
	res := ResolveEdges(records)

	if !res.UsedFallback {
		t.Error("expected the fallback flag to be set")
	}
	if len(res.Edges) != 3 {
		t.Fatalf("got %d edges, want one per non-root record: %v", len(res.Edges), res.Edges)
	}
	// Each fallback edge connects to some node one level up.
	depthOf := map[string]int{"A": 0, "B": 1, "C": 1, "D": 2}
	for _, e := range res.Edges {
		if depthOf[e.Source] != depthOf[e.Target]-1 {
			t.Errorf("edge %+v does not connect adjacent depths", e)
		}
	}
	if len(res.Warnings) == 0 {
		t.Error("expected warnings for inferred edges")
	}
}

func TestResolveEdges_MixedInputFallsBackPerRecord(t *testing.T) {
	t.Parallel()

	records := []traverse.Record{
		rec("A", 0, "", ""),
		rec("B", 1, "child", "A"),
		rec("C", 1, "relates to", ""), // malformed: predecessor missing
	}
	res := ResolveEdges(records)

	if !res.UsedFallback {
		t.Error("expected fallback for the record missing its predecessor")
	}
	if len(res.Edges) != 2 {
		t.Fatalf("got %d edges, want 2: %v", len(res.Edges), res.Edges)
	}
	// B keeps its explicit edge.
	if res.Edges[0] != (Edge{Source: "A", Target: "B", Label: "child", Class: ClassChild}) {
		t.Errorf("explicit edge = %+v", res.Edges[0])
	}
}

func TestResolveEdges_NoDuplicates(t *testing.T) {
	t.Parallel()

	records := []traverse.Record{
		rec("A", 0, "", ""),
		rec("B", 1, "child", "A"),
		rec("B", 1, "child", "A"), // duplicate record
	}
	res := ResolveEdges(records)
	if len(res.Edges) != 1 {
		t.Errorf("got %d edges, want 1", len(res.Edges))
	}
}

func TestResolveEdges_SelfEdgeDropped(t *testing.T) {
	t.Parallel()

	records := []traverse.Record{
		rec("A", 0, "", ""),
		rec("B", 1, "child", "B"),
	}
	res := ResolveEdges(records)
	if len(res.Edges) != 0 {
		t.Errorf("got %d edges, want 0", len(res.Edges))
	}
}
