package traverse

import (
	"context"
	"errors"
	"strings"

	"github.com/stonelake/ticketmap/internal/jira"
	"github.com/stonelake/ticketmap/internal/telemetry"
)

// Walker runs traversals against a ticket store. The zero value is unusable;
// Store must be set. Telemetry may be nil to disable event emission.
//
// A Walker owns the visited set and output sequence for the lifetime of each
// call; neither is shared across calls. Fetches are sequential, which keeps
// the insertion order deterministic without any coordination.
type Walker struct {
	Store     jira.Store
	Telemetry *telemetry.Emitter
	// Limit caps the number of records one traversal call may produce.
	// Zero means unlimited.
	Limit int
}

// normalizeKey upper-cases and trims a ticket key, matching how keys are
// entered on the command line versus stored.
func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// fetchTicket fetches a ticket, retrying once on a transient failure.
func (w *Walker) fetchTicket(ctx context.Context, root, key string) (jira.Ticket, error) {
	t, err := w.Store.Ticket(ctx, key)
	if errors.Is(err, jira.ErrTransient) {
		w.emit(telemetry.Event{Kind: telemetry.KindFetchRetry, Root: root, Key: key})
		t, err = w.Store.Ticket(ctx, key)
	}
	return t, err
}

// fetchLinks fetches a ticket's links, retrying once on a transient failure.
func (w *Walker) fetchLinks(ctx context.Context, root, key string) ([]jira.Link, error) {
	links, err := w.Store.Links(ctx, key)
	if errors.Is(err, jira.ErrTransient) {
		w.emit(telemetry.Event{Kind: telemetry.KindFetchRetry, Root: root, Key: key})
		links, err = w.Store.Links(ctx, key)
	}
	return links, err
}

// fetchChildren fetches a ticket's children, retrying once on a transient
// failure.
func (w *Walker) fetchChildren(ctx context.Context, root, key string) ([]string, error) {
	children, err := w.Store.Children(ctx, key)
	if errors.Is(err, jira.ErrTransient) {
		w.emit(telemetry.Event{Kind: telemetry.KindFetchRetry, Root: root, Key: key})
		children, err = w.Store.Children(ctx, key)
	}
	return children, err
}

func (w *Walker) emit(evt telemetry.Event) {
	_ = w.Telemetry.Emit(evt)
}

func (w *Walker) limitReached(res *Result) bool {
	return w.Limit > 0 && len(res.Records) >= w.Limit
}
