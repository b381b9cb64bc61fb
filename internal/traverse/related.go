package traverse

import (
	"context"
	"errors"
	"fmt"

	"github.com/stonelake/ticketmap/internal/jira"
	"github.com/stonelake/ticketmap/internal/telemetry"
)

// BuildRelated walks the relationship graph of one or more root tickets,
// breadth-first, up to maxDepth hops from each root (depth 0 is the root
// itself). Each node's expansion considers its issue links first, then its
// children, in the order the store reports them.
//
// Deduplication is global across all roots in one call: a ticket discovered
// under an earlier root keeps its first depth/relation/predecessor even when
// a later root reaches it again. Roots that do not resolve are skipped with
// a warning, never aborting the batch. ErrEmptyResult is returned only when
// no root resolved at all; the partial Result is returned alongside it.
func (w *Walker) BuildRelated(ctx context.Context, roots []string, maxDepth int) (*Result, error) {
	if maxDepth < 1 {
		return nil, fmt.Errorf("traverse: max depth must be >= 1, got %d", maxDepth)
	}
	if len(roots) == 0 {
		return nil, errors.New("traverse: at least one root key is required")
	}

	res := &Result{}
	visited := make(map[string]bool)

	for _, raw := range roots {
		root := normalizeKey(raw)
		if root == "" {
			continue
		}
		if visited[root] {
			// Already discovered under an earlier root; its first record
			// stands (first-discovery-wins applies to roots too).
			res.warnf("root %s already visited via an earlier root; keeping its first record", root)
			continue
		}

		w.emit(telemetry.Event{Kind: telemetry.KindRunStart, Root: root})

		ticket, err := w.fetchTicket(ctx, root, root)
		if err != nil {
			res.SkippedRoots = append(res.SkippedRoots, root)
			if errors.Is(err, jira.ErrNotFound) {
				res.warnf("root %s not found; skipped", root)
			} else {
				res.warnf("root %s could not be fetched (%v); skipped", root, err)
			}
			w.emit(telemetry.Event{Kind: telemetry.KindRootSkipped, Root: root, Data: err.Error()})
			continue
		}

		visited[root] = true
		res.Records = append(res.Records, Record{Ticket: ticket, Depth: 0, OriginRoot: root})
		w.emit(telemetry.Event{Kind: telemetry.KindTicketFetched, Root: root, Key: root, Data: map[string]int{"depth": 0}})

		frontier := []string{root}
		for depth := 1; depth <= maxDepth && len(frontier) > 0 && !w.limitReached(res); depth++ {
			frontier = w.expand(ctx, res, visited, root, frontier, depth)
		}

		w.emit(telemetry.Event{Kind: telemetry.KindRunDone, Root: root, Data: map[string]int{"records": len(res.Records)}})

		if w.limitReached(res) {
			res.warnf("record limit %d reached; traversal stopped early", w.Limit)
			break
		}
	}

	if len(res.Records) == 0 {
		return res, ErrEmptyResult
	}
	return res, nil
}

// expand visits the neighbors (links, then children) of every frontier node
// and returns the next frontier. Neighbors already visited in this call are
// skipped without being re-queried or re-emitted.
func (w *Walker) expand(ctx context.Context, res *Result, visited map[string]bool, root string, frontier []string, depth int) []string {
	var next []string

	for _, cur := range frontier {
		if w.limitReached(res) {
			return next
		}

		neighbors, err := w.neighbors(ctx, root, cur)
		if err != nil {
			res.warnf("branch at %s abandoned: %v", cur, err)
			w.emit(telemetry.Event{Kind: telemetry.KindBranchAbandoned, Root: root, Key: cur, Data: err.Error()})
			continue
		}

		for _, nb := range neighbors {
			if w.limitReached(res) {
				return next
			}
			key := normalizeKey(nb.Key)
			if key == "" || key == cur {
				continue
			}
			if visited[key] {
				w.emit(telemetry.Event{Kind: telemetry.KindDedupSkip, Root: root, Key: key})
				continue
			}

			ticket, err := w.fetchTicket(ctx, root, key)
			if err != nil {
				if errors.Is(err, jira.ErrNotFound) {
					res.warnf("%s links to %s which does not exist; skipped", cur, key)
				} else {
					res.warnf("branch at %s abandoned: %v", key, err)
					w.emit(telemetry.Event{Kind: telemetry.KindBranchAbandoned, Root: root, Key: key, Data: err.Error()})
				}
				continue
			}

			visited[key] = true
			res.Records = append(res.Records, Record{
				Ticket:      ticket,
				Depth:       depth,
				Relation:    nb.Relation,
				Predecessor: cur,
				OriginRoot:  root,
			})
			w.emit(telemetry.Event{Kind: telemetry.KindTicketFetched, Root: root, Key: key, Data: map[string]int{"depth": depth}})
			next = append(next, key)
		}
	}
	return next
}

// neighbors returns a node's links followed by its children, the children
// tagged with the "child" relation. A transient failure on either fetch
// (after one retry) abandons the whole node.
func (w *Walker) neighbors(ctx context.Context, root, key string) ([]jira.Link, error) {
	links, err := w.fetchLinks(ctx, root, key)
	if err != nil {
		return nil, err
	}
	children, err := w.fetchChildren(ctx, root, key)
	if err != nil {
		return nil, err
	}

	out := make([]jira.Link, 0, len(links)+len(children))
	out = append(out, links...)
	for _, child := range children {
		out = append(out, jira.Link{Key: child, Relation: RelationChild})
	}
	return out, nil
}
