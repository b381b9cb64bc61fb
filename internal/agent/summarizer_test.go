package agent

import (
	"strings"
	"testing"

	"github.com/stonelake/ticketmap/internal/config"
	"github.com/stonelake/ticketmap/internal/jira"
	"github.com/stonelake/ticketmap/internal/traverse"
)

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New(config.LLMConfig{}); err == nil {
		t.Error("expected error without api key or base url")
	}
	if _, err := New(config.LLMConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}); err != nil {
		t.Errorf("New with api key: %v", err)
	}
	if _, err := New(config.LLMConfig{BaseURL: "http://llm.internal/v1", Model: "local"}); err != nil {
		t.Errorf("New with base url only: %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	res := &traverse.Result{
		Records: []traverse.Record{
			{Ticket: jira.Ticket{Key: "STL-1", Type: "Epic", Status: "In Progress", Priority: "P1", Summary: "Root epic"}, Depth: 0},
			{Ticket: jira.Ticket{Key: "STL-2", Type: "Bug", Status: "Blocked", Priority: "P2", Assignee: "maya", Summary: "Broken link"}, Depth: 1, Relation: "blocks", Predecessor: "STL-1"},
		},
		Warnings: []string{"STL-9 abandoned after retry"},
	}

	prompt := BuildPrompt(res)

	for _, want := range []string{
		"0 | STL-1 | Epic | In Progress | P1 | unassigned | Root epic",
		"1 | STL-2 | Bug | Blocked | P2 | maya | Broken link (blocks STL-1)",
		"Traversal warnings (1): STL-9 abandoned after retry",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	// Roots appear before their discoveries.
	if strings.Index(prompt, "STL-1") > strings.Index(prompt, "STL-2") {
		t.Error("prompt lines out of traversal order")
	}
}
