// Package ui provides stderr progress output and stdout ticket tables for
// the ticketmap commands.
package ui

import (
	"fmt"
	"os"
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	yellow = "\033[33m"
	green  = "\033[32m"
	red    = "\033[31m"
	cyan   = "\033[36m"
)

type Printer struct{}

func New() *Printer {
	return &Printer{}
}

func (p *Printer) Banner(title string) {
	fmt.Fprintln(os.Stderr, bold+cyan+"── "+title+" ──"+reset)
}

// Step announces one numbered phase of a multi-step command.
func (p *Printer) Step(n, total int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, bold+"Step %d/%d: "+reset+format+"\n", append([]any{n, total}, args...)...)
}

// Progress reports a sub-item of the current step.
func (p *Printer) Progress(format string, args ...any) {
	fmt.Fprintf(os.Stderr, dim+"  "+format+reset+"\n", args...)
}

func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, yellow+bold+"⚠ "+reset+format+"\n", args...)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(os.Stderr, red+bold+"error: "+reset+"%s\n", msg)
}

func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(os.Stderr, green+bold+"✓ "+reset+format+"\n", args...)
}

// Warnings prints every collected traversal warning, if any.
func (p *Printer) Warnings(warnings []string) {
	for _, w := range warnings {
		p.Warn("%s", w)
	}
}
