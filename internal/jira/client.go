// Package jira provides a minimal REST client for the ticket store. It
// covers exactly the three reads the traversal code needs: a ticket
// snapshot, its issue links, and its children (tickets whose parent is the
// given key).
package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

// ErrNotFound is returned when a requested ticket key does not exist.
var ErrNotFound = errors.New("ticket not found")

// ErrTransient is returned for failures that are worth retrying: network
// errors, 5xx responses, and rate limiting.
var ErrTransient = errors.New("transient fetch failure")

const issueFields = "project,issuetype,status,priority,summary,assignee,updated,fixVersions"

// Client talks to a Jira-compatible REST API (v2).
type Client struct {
	BaseURL string
	Email   string
	Token   string
	HTTP    *http.Client
	Verbose bool
}

// NewClient creates a Client for the given base URL. Basic auth is applied
// when both email and token are set; a bare token is sent as a bearer token.
func NewClient(baseURL, email, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		Email:   email,
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	if c.Verbose {
		fmt.Fprintf(os.Stderr, "[jira] GET %s\n", u)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("jira: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	switch {
	case c.Email != "" && c.Token != "":
		req.SetBasicAuth(c.Email, c.Token)
	case c.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: GET %s", ErrNotFound, path)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: GET %s: status %d", ErrTransient, path, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("jira: GET %s: status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("jira: decode %s: %w", path, err)
	}
	return nil
}

// issueJSON mirrors the subset of the REST issue representation we read.
type issueJSON struct {
	Key    string     `json:"key"`
	Fields fieldsJSON `json:"fields"`
}

type fieldsJSON struct {
	Project     *namedJSON  `json:"project"`
	IssueType   *namedJSON  `json:"issuetype"`
	Status      *namedJSON  `json:"status"`
	Priority    *namedJSON  `json:"priority"`
	Summary     string      `json:"summary"`
	Assignee    *personJSON `json:"assignee"`
	Updated     string      `json:"updated"`
	FixVersions []namedJSON `json:"fixVersions"`
	IssueLinks  []linkJSON  `json:"issuelinks"`
}

type namedJSON struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type personJSON struct {
	DisplayName string `json:"displayName"`
}

type linkJSON struct {
	Type struct {
		Inward  string `json:"inward"`
		Outward string `json:"outward"`
	} `json:"type"`
	InwardIssue  *issueJSON `json:"inwardIssue"`
	OutwardIssue *issueJSON `json:"outwardIssue"`
}

type searchJSON struct {
	Issues []issueJSON `json:"issues"`
}

// Ticket fetches a single ticket snapshot.
func (c *Client) Ticket(ctx context.Context, key string) (Ticket, error) {
	var raw issueJSON
	q := url.Values{"fields": {issueFields}}
	if err := c.get(ctx, "/rest/api/2/issue/"+url.PathEscape(key), q, &raw); err != nil {
		return Ticket{}, err
	}
	return raw.ticket(), nil
}

// Links fetches the issue links of a ticket. Both link directions are
// returned, each labeled with the direction-appropriate relation name.
func (c *Client) Links(ctx context.Context, key string) ([]Link, error) {
	var raw issueJSON
	q := url.Values{"fields": {"issuelinks"}}
	if err := c.get(ctx, "/rest/api/2/issue/"+url.PathEscape(key), q, &raw); err != nil {
		return nil, err
	}

	var links []Link
	for _, l := range raw.Fields.IssueLinks {
		// An outward issue means this ticket is the link's source, so the
		// outward phrasing applies; an inward issue is the reverse.
		if l.OutwardIssue != nil && l.OutwardIssue.Key != "" {
			links = append(links, Link{Key: l.OutwardIssue.Key, Relation: l.Type.Outward})
		}
		if l.InwardIssue != nil && l.InwardIssue.Key != "" {
			links = append(links, Link{Key: l.InwardIssue.Key, Relation: l.Type.Inward})
		}
	}
	return links, nil
}

// Children returns the keys of tickets whose parent is the given key, in
// key order. The query is equivalent to `parent = KEY ORDER BY key ASC`.
func (c *Client) Children(ctx context.Context, key string) ([]string, error) {
	q := url.Values{
		"jql":        {fmt.Sprintf("parent = %s ORDER BY key ASC", key)},
		"fields":     {"key"},
		"maxResults": {strconv.Itoa(500)},
	}
	var raw searchJSON
	if err := c.get(ctx, "/rest/api/2/search", q, &raw); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(raw.Issues))
	for _, issue := range raw.Issues {
		keys = append(keys, issue.Key)
	}
	return keys, nil
}

// Validate checks that the client has enough configuration to make calls.
func (c *Client) Validate() error {
	if c.BaseURL == "" {
		return errors.New("jira: base URL is not configured (set jira_base_url or TICKETMAP_JIRA_BASE_URL)")
	}
	return nil
}

func (raw issueJSON) ticket() Ticket {
	f := raw.Fields
	t := Ticket{
		Key:     raw.Key,
		Summary: f.Summary,
	}
	if f.Project != nil {
		t.Project = f.Project.Key
	}
	if f.IssueType != nil {
		t.Type = f.IssueType.Name
	}
	if f.Status != nil {
		t.Status = f.Status.Name
	}
	if f.Priority != nil {
		t.Priority = f.Priority.Name
	}
	if f.Assignee != nil {
		t.Assignee = f.Assignee.DisplayName
	}
	if f.Updated != "" {
		t.Updated = parseTimestamp(f.Updated)
	}
	for _, v := range f.FixVersions {
		t.FixVersions = append(t.FixVersions, v.Name)
	}
	return t
}

// parseTimestamp handles the timestamp formats the REST API emits. An
// unparseable value yields the zero time rather than an error; the
// timestamp is display-only.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02T15:04:05.000-0700",
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
