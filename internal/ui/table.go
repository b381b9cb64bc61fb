package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stonelake/ticketmap/internal/traverse"
)

// Semantic styles for the ticket table.
var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00BFFF"))
	styleRoot   = lipgloss.NewStyle().Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

const summaryWidth = 60

type column struct {
	title string
	width int
	value func(traverse.Record) string
}

// TicketTable renders traversal records as an aligned text table, rows in
// insertion order, summaries indented by depth. It is the default stdout
// output of the related and children commands when no file output is asked
// for.
func TicketTable(records []traverse.Record) string {
	cols := []column{
		{"Key", 12, func(r traverse.Record) string { return r.Key() }},
		{"Depth", 5, func(r traverse.Record) string { return fmt.Sprintf("%d", r.Depth) }},
		{"Type", 10, func(r traverse.Record) string { return r.Ticket.Type }},
		{"Status", 14, func(r traverse.Record) string { return r.Ticket.Status }},
		{"Priority", 8, func(r traverse.Record) string { return r.Ticket.Priority }},
		{"Assignee", 16, func(r traverse.Record) string { return r.Ticket.Assignee }},
		{"Link Via", 14, func(r traverse.Record) string { return r.Relation }},
		{"Summary", summaryWidth, func(r traverse.Record) string {
			return strings.Repeat("  ", r.Depth) + r.Ticket.Summary
		}},
	}

	// Widen columns to fit content.
	for _, r := range records {
		for i := range cols {
			if i == len(cols)-1 {
				continue // summary is clipped, not widened
			}
			if n := len(cols[i].value(r)); n > cols[i].width {
				cols[i].width = n
			}
		}
	}

	var b strings.Builder

	var headers []string
	for _, c := range cols {
		headers = append(headers, pad(c.title, c.width))
	}
	b.WriteString(styleHeader.Render(strings.Join(headers, "  ")))
	b.WriteString("\n")
	b.WriteString(styleMuted.Render(strings.Repeat("─", tableWidth(cols))))
	b.WriteString("\n")

	for _, r := range records {
		var cells []string
		for _, c := range cols {
			cells = append(cells, pad(clip(c.value(r), c.width), c.width))
		}
		line := strings.Join(cells, "  ")
		if r.Depth == 0 {
			line = styleRoot.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(styleMuted.Render(fmt.Sprintf("%d ticket(s)", len(records))))
	b.WriteString("\n")
	return b.String()
}

func tableWidth(cols []column) int {
	w := (len(cols) - 1) * 2
	for _, c := range cols {
		w += c.width
	}
	return w
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func clip(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 1 {
		return s[:width]
	}
	return s[:width-1] + "…"
}
