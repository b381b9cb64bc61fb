// Package agent holds the LLM-backed summarizer that turns a traversal
// result into a short release-readiness report. It talks to any
// OpenAI-compatible completion endpoint; everything else in the tool works
// without it.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/stonelake/ticketmap/internal/config"
	"github.com/stonelake/ticketmap/internal/traverse"
)

const systemPrompt = `You are a program-management assistant at a networking hardware company.
Given a list of tickets discovered by walking a root ticket's relationships,
write a concise release-readiness summary: overall status, blocking issues,
and anything unassigned or stale. Be specific, cite ticket keys, and keep it
under 300 words.`

// Summarizer produces ticket summaries via a chat completion endpoint.
type Summarizer struct {
	client *openai.Client
	model  string
}

// New builds a Summarizer from LLM configuration. An empty API key is only
// an error when the default public endpoint would be used; internal
// gateways often authenticate by network instead.
func New(cfg config.LLMConfig) (*Summarizer, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("agent: llm.api_key is required (or point llm.base_url at an internal gateway)")
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &Summarizer{
		client: openai.NewClientWithConfig(cc),
		model:  cfg.Model,
	}, nil
}

// Summarize sends the traversal result to the completion endpoint and
// returns the model's summary text.
func (s *Summarizer) Summarize(ctx context.Context, res *traverse.Result) (string, error) {
	if len(res.Records) == 0 {
		return "", errors.New("agent: nothing to summarize")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(res)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("agent: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("agent: completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildPrompt flattens a traversal result into the compact ticket listing
// sent as the user message. One line per ticket, traversal order preserved
// so the model sees roots before their discoveries.
func BuildPrompt(res *traverse.Result) string {
	var b strings.Builder
	b.WriteString("Tickets (depth, key, type, status, priority, assignee, summary):\n")
	for _, r := range res.Records {
		t := r.Ticket
		assignee := t.Assignee
		if assignee == "" {
			assignee = "unassigned"
		}
		fmt.Fprintf(&b, "%d | %s | %s | %s | %s | %s | %s", r.Depth, t.Key, t.Type, t.Status, t.Priority, assignee, t.Summary)
		if r.Relation != "" {
			fmt.Fprintf(&b, " (%s %s)", r.Relation, r.Predecessor)
		}
		b.WriteString("\n")
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintf(&b, "\nTraversal warnings (%d): %s\n", len(res.Warnings), strings.Join(res.Warnings, "; "))
	}
	return b.String()
}
