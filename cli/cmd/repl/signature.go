package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/l20n/lang"
)

// Signature hint styles.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// macroCall represents a detected macro call in the input.
type macroCall struct {
	name     string // macro id
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside the argument list
}

// detectMacroCall analyzes the input to determine if the cursor is inside the
// argument list of a call. It returns the callee id, the current argument
// index, and whether we're inside a call.
func detectMacroCall(input string, cursor int) macroCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Scan backward from cursor to find the unmatched opening paren.
	depth := 0
	open := -1

scan:
	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i

				break scan
			}

			depth--
		}
	}

	if open == -1 {
		return macroCall{}
	}

	name := identBefore(input[:open])
	if name == "" {
		return macroCall{}
	}

	// Count arguments by counting commas at depth 0 in the argument list.
	argIndex := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return macroCall{name: name, argIndex: argIndex, inCall: true}
}

// signature returns the signature of the macro id and its parameter names.
// Returns an empty signature if id is not a macro.
func (s *session) signature(id string) (signature string, params []string) {
	m, ok := s.macro(id)
	if !ok {
		return "", nil
	}

	params = paramNames(m.Params)

	return id + "(" + strings.Join(params, ", ") + ")", params
}

func paramNames(params []*lang.VarExpr) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = "$" + p.Name
	}

	return names
}

// renderSignatureHint renders the macro signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return signatureStyle.Render(signature)
	}

	name := signature[:openParen]

	if len(params) == 0 {
		return signatureNameStyle.Render(name) +
			signatureStyle.Render("()")
	}

	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		if currentArgIdx == i {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
