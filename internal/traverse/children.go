package traverse

import (
	"context"
	"fmt"

	"github.com/stonelake/ticketmap/internal/telemetry"
)

// CollectChildren walks a single ticket's descendants breadth-first with no
// depth bound, following only the children relation. The visited set makes
// the walk terminate even when the store reports a parent/child cycle: a
// ticket already visited is never re-queried or re-emitted.
//
// Unlike BuildRelated, a root that cannot be fetched is a hard error here;
// the caller decides how to record the failure (the workbook assembler turns
// it into a placeholder sheet).
func (w *Walker) CollectChildren(ctx context.Context, rootKey string) (*Result, error) {
	root := normalizeKey(rootKey)
	if root == "" {
		return nil, fmt.Errorf("traverse: empty root key")
	}

	ticket, err := w.fetchTicket(ctx, root, root)
	if err != nil {
		return nil, fmt.Errorf("traverse: fetch %s: %w", root, err)
	}

	res := &Result{
		Records: []Record{{Ticket: ticket, Depth: 0, OriginRoot: root}},
	}
	visited := map[string]bool{root: true}

	frontier := []string{root}
	for depth := 1; len(frontier) > 0 && !w.limitReached(res); depth++ {
		var next []string
		for _, cur := range frontier {
			if w.limitReached(res) {
				break
			}

			children, err := w.fetchChildren(ctx, root, cur)
			if err != nil {
				res.warnf("children of %s abandoned: %v", cur, err)
				w.emit(telemetry.Event{Kind: telemetry.KindBranchAbandoned, Root: root, Key: cur, Data: err.Error()})
				continue
			}

			for _, raw := range children {
				if w.limitReached(res) {
					break
				}
				key := normalizeKey(raw)
				if key == "" || visited[key] {
					if visited[key] {
						w.emit(telemetry.Event{Kind: telemetry.KindDedupSkip, Root: root, Key: key})
					}
					continue
				}

				child, err := w.fetchTicket(ctx, root, key)
				if err != nil {
					res.warnf("child %s of %s could not be fetched: %v", key, cur, err)
					continue
				}

				visited[key] = true
				res.Records = append(res.Records, Record{
					Ticket:      child,
					Depth:       depth,
					Relation:    RelationChild,
					Predecessor: cur,
					OriginRoot:  root,
				})
				w.emit(telemetry.Event{Kind: telemetry.KindTicketFetched, Root: root, Key: key, Data: map[string]int{"depth": depth}})
				next = append(next, key)
			}
		}
		frontier = next
	}

	return res, nil
}
