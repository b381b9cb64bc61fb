// Package traverse walks ticket relationship graphs. It provides a bounded
// multi-root breadth-first walk over links and children (BuildRelated) and
// an unbounded children-only walk (CollectChildren). Both produce ordered,
// deduplicated record sequences: each ticket key appears at most once per
// run, first discovery wins, and the insertion order is the order rows are
// later displayed in.
package traverse

import (
	"errors"
	"fmt"

	"github.com/stonelake/ticketmap/internal/jira"
)

// ErrEmptyResult is returned when a traversal produced no records at all:
// no root could be resolved. This is the only traversal failure that callers
// should treat as fatal; everything else surfaces as warnings on the Result.
var ErrEmptyResult = errors.New("no tickets could be resolved")

// RelationChild is the relation recorded for parent→child discoveries, as
// opposed to the link type names the ticket store reports.
const RelationChild = "child"

// Record is one visited node in a traversal.
type Record struct {
	Ticket jira.Ticket
	// Depth is the number of hops from the origin root; 0 marks a root.
	Depth int
	// Relation names how this ticket was discovered ("child" or a link
	// relation). Empty for roots.
	Relation string
	// Predecessor is the key of the node that discovered this one. Empty
	// for roots. Re-discovery via another path never overwrites it.
	Predecessor string
	// OriginRoot is the root whose expansion discovered this record.
	OriginRoot string
}

// Key returns the record's ticket key.
func (r Record) Key() string { return r.Ticket.Key }

// Result is the outcome of one traversal run. Partial success is the normal
// case: skipped roots and abandoned branches are recorded here rather than
// aborting the run.
type Result struct {
	Records      []Record
	Warnings     []string
	SkippedRoots []string
}

// FirstLevelKeys returns the keys of all depth-1 records in insertion order.
func (r *Result) FirstLevelKeys() []string {
	var keys []string
	for _, rec := range r.Records {
		if rec.Depth == 1 {
			keys = append(keys, rec.Key())
		}
	}
	return keys
}

// MaxDepth returns the largest depth present in the result, or 0.
func (r *Result) MaxDepth() int {
	max := 0
	for _, rec := range r.Records {
		if rec.Depth > max {
			max = rec.Depth
		}
	}
	return max
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
