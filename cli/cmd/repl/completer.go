package repl

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/l20n/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "edit", "data", "clear", "quit"}

// globals are the names reachable with '@'.
var globals = []string{"locale"}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. Hyphens are excluded because identifiers may contain them
// (e.g., brand-name).
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':',
		'$', '@', '~', '"', '\'':
		return true
	}

	return false
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary (after a space,
// after a dot, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// scope describes what the word at the cursor refers to.
type scope struct {
	sigil  string // "", "$", "@", "::" or "."
	parent string // entry id before "::" or "."
}

// scopeOf inspects the text before wordStart. For "brand::lo" with the word
// "lo" the scope is {"::", "brand"}; for "$us" it is {"$", ""}.
func scopeOf(input string, wordStart int) scope {
	prefix := input[:wordStart]

	switch {
	case strings.HasSuffix(prefix, "$"):
		return scope{sigil: "$"}
	case strings.HasSuffix(prefix, "@"):
		return scope{sigil: "@"}
	case strings.HasSuffix(prefix, "::"):
		return scope{sigil: "::", parent: identBefore(prefix[:len(prefix)-2])}
	case strings.HasSuffix(prefix, "."):
		return scope{sigil: ".", parent: identBefore(prefix[:len(prefix)-1])}
	}

	return scope{}
}

// identBefore returns the identifier ending at the end of s, or "".
func identBefore(s string) string {
	pos := len(s)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:pos])
		if !isIdentRune(r) {
			break
		}

		pos -= size
	}

	if pos > 0 {
		// Variables and globals are not entries.
		if r, _ := utf8.DecodeLastRuneInString(s[:pos]); r == '$' || r == '@' {
			return ""
		}
	}

	return s[pos:]
}

// candidates returns the names that are valid completions in scope sc.
func (s *session) candidates(sc scope) []string {
	switch sc.sigil {
	case "$":
		return s.in.Keys()

	case "@":
		return globals

	case "::":
		ent, ok := s.entity(sc.parent)
		if !ok {
			return nil
		}

		names := make([]string, len(ent.Attrs))
		for i, a := range ent.Attrs {
			names[i] = a.ID
		}

		return names

	case ".":
		ent, ok := s.entity(sc.parent)
		if !ok {
			return nil
		}

		if h, ok := ent.Value.(*lang.Hash); ok {
			return h.Keys()
		}

		return nil
	}

	return s.ids()
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. When the current word is empty at the top level, it returns nil
// matches. When the word is empty after a sigil, it returns all candidates of
// that scope.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		sc := scopeOf(input, wordStart)
		candidates = m.session.candidates(sc)

		if word == "" {
			if sc.sigil == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	matches = fuzzy.Find(word, candidates)

	return matches, candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isMacro func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected, isMacro(match.Str))
		candidateWidth := lipgloss.Width(rendered)

		entryWidth := candidateWidth
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Macros are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected, macro bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		ch := string(r)
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(ch))
		} else {
			b.WriteString(baseStyle.Render(ch))
		}
	}

	if macro {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

const previewWidth = 40

// formatPreview generates a one-line preview of an entry for the list command.
func formatPreview(ctx context.Context, e lang.Entry) string {
	var buf strings.Builder

	if err := (&lang.Resource{Entries: []lang.Entry{e}}).Format(ctx, &buf, 0); err != nil {
		return fmt.Sprintf("<%T>", e)
	}

	src := strings.Join(strings.Fields(buf.String()), " ")
	if utf8.RuneCountInString(src) > previewWidth {
		return string([]rune(src)[:previewWidth-3]) + "..."
	}

	return src
}
