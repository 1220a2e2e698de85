package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/l20n/data"
	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/locale"
	"github.com/ardnew/l20n/log"
)

// editResourceMsg is sent when editing completes successfully.
type editResourceMsg struct{ res *lang.Resource }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help         Print this cruft
  list         List entries with a preview of each
  edit         Edit all entries in external $EDITOR
  data [file]  Print the input data, or load it from a JSON/YAML file
  clear        Clear screen
  quit         Exit REPL

Usage:
  Type an entry id to resolve it, e.g. brand-name
  Type an expression to evaluate it, e.g. plural($n) or brand::short
  Type {{ expression }} to evaluate a placeable
  Type <id "value"> or <id($a) { expr }> to define entries
  Use $name for input data and @locale for the locale name
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to switch to command mode and navigate command history
    (restores original mode when reaching end of history)
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and input
// styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// formatResult renders a resolved value. Strings are shown verbatim.
func formatResult(d data.Data) string {
	if s, ok := d.(data.Str); ok {
		return string(s)
	}

	return fmt.Sprint(d)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc          func() context.Context
	input            textinput.Model
	session          *session
	logger           log.Logger
	history          *History
	historyIdx       int
	matches          fuzzy.Matches // current fuzzy match results
	candidates       []string      // backing candidate list
	wordStart        int           // byte offset of current word start
	wordEnd          int           // byte offset of current word end
	suggIdx          int           // selected candidate index
	tabActive        bool          // whether user is tab-cycling
	preTabText       string        // input text before tab-cycling began
	preTabCursor     int           // cursor position before tab-cycling began
	altNavActive     bool          // whether user is in Alt+Up/Down navigation
	altNavOrigMode   inputMode     // original mode before Alt navigation
	altNavOrigText   string        // original text before Alt navigation
	altNavOrigCursor int           // original cursor position before Alt navigation
	width            int           // terminal width for ellipsization
	quitting         bool
	mode             inputMode
	evalText         string
	evalCursor       int
	ctrlText         string
	ctrlCursor       int
}

// Run starts the REPL over the entries of res, resolved in loc against in.
// History is kept in cacheDir, or in memory when cacheDir is empty.
func Run(
	ctx context.Context,
	loc *locale.Locale,
	res *lang.Resource,
	in data.Map,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.String("locale", loc.Name()),
	)

	s := newSession(ctx, loc, res, in, logger)

	logger.TraceContext(
		ctx,
		"repl resource loaded",
		slog.Int("entry_count", len(s.res.Entries)),
	)

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, s, history, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	s *session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    s,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editResourceMsg:
		m.session.replace(m.ctxFunc(), msg.res)
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("entry_count", len(msg.res.Entries)),
		)

		return m, tea.Println(resultStyle.Render("✔ entries updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(
			errorStyle.Render("🗴 error: " + msg.err.Error()),
		)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	viewingHistory := m.historyIdx < m.history.Len()
	call := detectMacroCall(input, m.input.Position())

	switch {
	case viewingHistory:
		pos := m.historyIdx + 1 // 1-based for display
		total := m.history.Len()
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(pos)),
			total)
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		var hint string
		if m.mode == modeEval {
			hint = "Type an entry id, expression or <definition>, or press Esc for commands"
		} else {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case call.inCall && m.mode == modeEval && len(m.matches) == 0:
		if signature, params := m.session.signature(call.name); signature != "" {
			b.WriteString(renderSignatureHint(signature, params, call.argIndex))
		}

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(
			m.matches, m.suggIdx, m.tabActive, m.width, m.isMacro,
		))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) isMacro(id string) bool {
	if m.mode != modeEval {
		return false
	}

	_, ok := m.session.macro(id)

	return ok
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNavActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNavActive = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(+1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		return m.historyPrev(func(HistoryEntry) bool { return true }), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(+1), nil
		}

		return m.historyNext(func(HistoryEntry) bool { return true }), nil

	case tea.KeyShiftUp:
		return m.historyPrev(m.sameMode), nil

	case tea.KeyShiftDown:
		return m.historyNext(m.sameMode), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNavActive = false

		return m.toggleMode()

	case tea.KeyRunes:
		// Space accepts the candidate while tab-cycling.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNavActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by dir (+1 forward, -1 backward) and writes
// the selected candidate into the input.
func (m model) cycle(dir int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	// Single candidate: complete and confirm immediately.
	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + dir + n) % n
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if dir < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	word := m.input.Value()[m.wordStart:m.wordEnd]

	if word == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText = ""
	m.evalCursor = 0
	m.ctrlText = ""
	m.ctrlCursor = 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl command",
			slog.String("input", input),
		)

		return m.executeCommand(input)
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval",
		slog.String("input", input),
	)

	echoCmd := tea.Println(formatCommand(input))

	if classify(input) == inputDefine {
		ids, err := m.session.define(m.ctxFunc(), input)
		if err != nil {
			return m, tea.Sequence(echoCmd, printError(err))
		}

		return m, tea.Sequence(
			echoCmd,
			tea.Println(hintStyle.Render("defined "+strings.Join(ids, ", "))),
		)
	}

	result, err := m.session.eval(m.ctxFunc(), input)
	if err != nil {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl eval result",
			slog.String("result_type", "error"),
			slog.String("error", err.Error()),
		)

		return m, tea.Sequence(echoCmd, printError(err))
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval result",
		slog.String("result_type", data.TypeName(result)),
	)

	return m, tea.Sequence(
		echoCmd,
		tea.Println(resultStyle.Render(formatResult(result))),
	)
}

// printError prints err, with the offending line of a parse error.
func printError(err error) tea.Cmd {
	var perr *lang.ParseError
	if errors.As(err, &perr) {
		return tea.Println(errorStyle.Render("error: " + perr.Message() + "\n" + perr.Snippet()))
	}

	return tea.Println(errorStyle.Render("error: " + err.Error()))
}

func (m model) executeCommand(
	input string,
) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(formatCtrlCommand(input))

	cmd := parts[0]
	args := parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echoCmd, tea.Println(m.listEntries()))

	case "d", "data":
		if len(args) == 0 {
			return m, tea.Sequence(echoCmd,
				tea.Println(resultStyle.Render(m.session.in.String())))
		}

		if err := m.loadData(args[0]); err != nil {
			return m, tea.Sequence(echoCmd, printError(err))
		}

		return m, tea.Sequence(echoCmd,
			tea.Println(hintStyle.Render("data loaded from "+args[0])))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.handleEdit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

// loadData replaces the session data with the content of a JSON or YAML
// file.
func (m model) loadData(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return ErrLoadData.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	in, err := data.Load(m.ctxFunc(), f, data.FormatOf(path))
	if err != nil {
		return ErrLoadData.Wrap(err).With(slog.String("path", path))
	}

	m.session.setData(in)

	return nil
}

func (m model) handleEdit() tea.Cmd {
	cmd := &editCommand{
		res:     m.session.res,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.newRes == nil {
			return editCancelledMsg{}
		}

		return editResourceMsg{res: cmd.newRes}
	})
}

func (m model) sameMode(e HistoryEntry) bool { return e.Mode == m.mode }

// recall moves through history by dir (-1 older, +1 newer) to the nearest
// entry accepted by keep, switching to that entry's mode. It reports whether
// such an entry exists.
func (m *model) recall(dir int, keep func(HistoryEntry) bool) bool {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err != nil || !keep(entry) {
			continue
		}

		if m.mode != entry.Mode {
			*m, _ = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(m, false)

		return true
	}

	return false
}

func (m model) historyPrev(keep func(HistoryEntry) bool) model {
	m.recall(-1, keep)

	return m
}

// historyNext clears the input once it moves past the newest entry.
func (m model) historyNext(keep func(HistoryEntry) bool) model {
	if !m.recall(+1, keep) && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// historyCtrl navigates command history only. The mode and input in effect
// before navigation began are restored when either end is reached.
func (m model) historyCtrl(dir int) model {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavOrigMode = m.mode
		m.altNavOrigText = m.input.Value()
		m.altNavOrigCursor = m.input.Position()

		if m.mode != modeCtrl {
			m, _ = m.switchToMode(modeCtrl)
		}
	}

	if m.recall(dir, func(e HistoryEntry) bool { return e.Mode == modeCtrl }) {
		return m
	}

	m.altNavActive = false
	if m.altNavOrigMode != m.mode {
		m, _ = m.switchToMode(m.altNavOrigMode)
	}

	m.input.SetValue(m.altNavOrigText)
	m.input.SetCursor(m.altNavOrigCursor)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

func (m model) listEntries() string {
	var b strings.Builder

	for _, e := range m.session.res.Entries {
		id, ok := lang.EntryID(e)
		if !ok {
			continue
		}

		fmt.Fprintf(&b, "  %s %s\n", id,
			hintStyle.Render(formatPreview(m.ctxFunc(), e)))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no entries)")
	}

	return b.String()
}

// toggleMode switches between eval and control modes, preserving input state.
func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m, nil
}
