package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"drafter/internal/constraint"
)

var (
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// renderViolations prints the complete violation list, one line per field,
// so each can be corrected individually.
func renderViolations(w io.Writer, violations []constraint.Violation) {
	fmt.Fprintln(w, headStyle.Render(fmt.Sprintf("blueprint rejected: %d violation(s)", len(violations))))
	for _, v := range violations {
		fmt.Fprintf(w, "  %s  %s\n", pathStyle.Render(v.Path), v.Message)
	}
}
