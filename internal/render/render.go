// Package render pretty-prints a proof DAG to a terminal: one line per
// statement-node in topological order, colored by public/private
// visibility and followed by its OpTag label, with one indented line per
// cited premise. Borrows the teacher's lipgloss color-and-style idiom from
// cmd/nerd/ui/styles.go (a plain statement-list printer, not a full
// Bubble Tea TUI — the proof DAG has no interactive surface to drive).
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"podsolve/internal/engine"
	"podsolve/internal/podlang"
	"podsolve/internal/proof"
)

var (
	statementStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#101F38")).Bold(true)
	publicStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	privateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2a3850"))
	opStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")).Italic(true)
	premiseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d6dae0"))
)

// DAG renders a full proof DAG: each node's statement, its justifying
// operation, and (for public nodes) a marker, in the dependency order
// proof.TopoOrder yields.
func DAG(answer *engine.Answer) string {
	d := proof.Build(answer)
	public := proof.PublicStatements(d, answer)

	var b strings.Builder
	for _, n := range proof.TopoOrder(d) {
		style := privateStyle
		marker := "  "
		if public[n.Statement.Key()] {
			style = publicStyle
			marker = "* "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", marker, style.Render(statementStyle.Render(n.Statement.String())), opStyle.Render(describeTag(n.Tag)))
		for _, pk := range n.Premises {
			fmt.Fprintf(&b, "    %s %s\n", premiseStyle.Render("<-"), premiseStyle.Render(pk))
		}
	}
	return b.String()
}

// describeTag gives a one-line human label for an OpTag, in the
// teacher's terse diagnostic-string style rather than a verbose dump.
func describeTag(tag podlang.OpTag) string {
	switch tag.Kind {
	case podlang.OpFromLiterals:
		return "[from_literals]"
	case podlang.OpDerived:
		return "[derived: " + tag.Op.String() + "]"
	case podlang.OpCopyStatement:
		return "[copy: " + tag.Source.String() + "]"
	case podlang.OpGeneratedContains:
		return "[generated_contains: " + tag.Root.String() + "]"
	case podlang.OpCustomDeduction:
		return "[custom: " + tag.Predicate.String() + "]"
	default:
		return "[?]"
	}
}
