// Package diagram turns traversal records into a dependency map: a set of
// labeled edges plus positioned nodes, rendered as draw.io XML.
//
// Edges come from the explicit predecessor metadata on each record. The old
// depth-based inference ("connect every depth-N node to the first depth-N-1
// node") produced hub-shaped graphs that misrepresented the actual
// relationships; it survives only as a per-record fallback for records that
// arrive without a predecessor, and any use of it is flagged on the result.
package diagram

import (
	"fmt"
	"strings"

	"github.com/stonelake/ticketmap/internal/traverse"
)

// Class buckets a relation into one of the visual style classes. Fill and
// stroke colors encode the class; they are never reused to encode status.
type Class string

const (
	ClassRoot    Class = "root"
	ClassBlocked Class = "blocked"
	ClassRelates Class = "relates"
	ClassChild   Class = "child"
	ClassOther   Class = "other"
)

// Edge is one directed, labeled connection between two tickets.
type Edge struct {
	Source string
	Target string
	Label  string
	Class  Class
}

// Resolution is the outcome of edge resolution. UsedFallback reports whether
// any edge had to be inferred from depth rather than explicit metadata.
type Resolution struct {
	Edges        []Edge
	UsedFallback bool
	Warnings     []string
}

// Classify maps a relation name and depth to a style class. Depth 0 is
// always root regardless of relation.
func Classify(relation string, depth int) Class {
	if depth == 0 {
		return ClassRoot
	}
	switch strings.ToLower(strings.TrimSpace(relation)) {
	case "blocks", "is blocked by":
		return ClassBlocked
	case "relates to", "is related to":
		return ClassRelates
	case traverse.RelationChild, "is child of", "is parent of":
		return ClassChild
	default:
		return ClassOther
	}
}

// ResolveEdges derives the edge set from an ordered record sequence. For
// every non-root record with a predecessor, the edge is
// predecessor → record, labeled with the relation. Records missing a
// predecessor fall back to an arbitrary node one level up (the first one in
// insertion order) with a warning. Duplicate (source, target, label) edges
// collapse to one.
func ResolveEdges(records []traverse.Record) *Resolution {
	res := &Resolution{}

	// First node seen at each depth, for the fallback path.
	firstAtDepth := make(map[int]string)
	for _, r := range records {
		if _, ok := firstAtDepth[r.Depth]; !ok {
			firstAtDepth[r.Depth] = r.Key()
		}
	}

	seen := make(map[Edge]bool)
	add := func(e Edge) {
		if e.Source == "" || e.Target == "" || e.Source == e.Target {
			return
		}
		if seen[e] {
			return
		}
		seen[e] = true
		res.Edges = append(res.Edges, e)
	}

	for _, r := range records {
		if r.Depth == 0 {
			continue
		}
		if r.Predecessor != "" {
			add(Edge{
				Source: r.Predecessor,
				Target: r.Key(),
				Label:  r.Relation,
				Class:  Classify(r.Relation, r.Depth),
			})
			continue
		}

		// Fallback: no predecessor recorded. Connect to some node one level
		// up; this loses the true topology and is reported as such.
		parent, ok := firstAtDepth[r.Depth-1]
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("no node at depth %d to connect %s to", r.Depth-1, r.Key()))
			continue
		}
		res.UsedFallback = true
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s has no predecessor; edge inferred from depth", r.Key()))
		add(Edge{
			Source: parent,
			Target: r.Key(),
			Label:  r.Relation,
			Class:  Classify(r.Relation, r.Depth),
		})
	}

	return res
}
