package jira

import (
	"context"
	"time"
)

// Store defines the ticket store boundary consumed by the traversal code.
// *Client satisfies this interface.
type Store interface {
	Ticket(ctx context.Context, key string) (Ticket, error)
	Links(ctx context.Context, key string) ([]Link, error)
	Children(ctx context.Context, key string) ([]string, error)
}

// Ticket is an immutable snapshot of a single ticket as fetched from the
// store. Nothing downstream mutates it.
type Ticket struct {
	Key         string
	Project     string
	Type        string
	Status      string
	Priority    string
	Summary     string
	Assignee    string
	Updated     time.Time
	FixVersions []string
}

// Link relates a ticket to another ticket via a named relation, e.g.
// "blocks", "is blocked by", "relates to". The relation is always phrased
// from the perspective of the ticket the link was fetched for.
type Link struct {
	Key      string
	Relation string
}
