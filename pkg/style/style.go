// Package style renders user-facing messages for the CLI: warnings during
// the walk and the aggregated end-of-run error report.
package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	errorTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnText   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	boldText   = lipgloss.NewStyle().Bold(true)
)

func colorless() bool {
	return termenv.EnvNoColor()
}

// Bold emphasizes a fragment.
func Bold(s string) string {
	if colorless() {
		return s
	}
	return boldText.Render(s)
}

// Warn styles an inline warning.
func Warn(s string) string {
	if colorless() {
		return s
	}
	return warnText.Render(s)
}

// FileError is one (relative path, message) pair from the per-run error
// list.
type FileError struct {
	Path    string
	Message string
}

// ErrorReport formats the aggregated end-of-run report for files whose
// content rendering failed.
func ErrorReport(files []FileError) string {
	var b strings.Builder

	title := "Substitution skipped, found invalid syntax in"
	if colorless() {
		b.WriteString(title)
	} else {
		b.WriteString(errorTitle.Render(title))
	}
	b.WriteString("\n")
	for _, f := range files {
		b.WriteString("\t")
		b.WriteString(f.Path)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(Bold("Consider adding these files to the exclude list of the template manifest to skip substitution on them."))
	b.WriteString("\n")
	return b.String()
}
