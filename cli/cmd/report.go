package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/l20n/lang"
)

var (
	reportMessageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	reportSnippetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Report writes the source snippet of a parse error in err to w. It reports
// whether err holds a parse error with a known source.
func Report(w io.Writer, err error) bool {
	var perr *lang.ParseError
	if !errors.As(err, &perr) || perr.Source == "" {
		return false
	}

	snippet := perr.Snippet()
	if snippet == "" {
		return false
	}

	fmt.Fprintln(w, reportMessageStyle.Render(perr.Message()))
	fmt.Fprint(w, reportSnippetStyle.Render(snippet))

	return true
}
