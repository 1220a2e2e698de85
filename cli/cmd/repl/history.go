package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

const (
	baseHistory = "history.utf8"

	// maxHistory bounds the number of entries kept in the history file.
	maxHistory = 1000
)

// History line prefixes.
const (
	evalPrefix = "E:"
	ctrlPrefix = "C:"
)

// HistoryEntry represents a single history entry with its mode.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

func (e HistoryEntry) String() string {
	if e.Mode == modeCtrl {
		return ctrlPrefix + e.Line
	}

	return evalPrefix + e.Line
}

func parseHistoryEntry(line string) HistoryEntry {
	if s, ok := strings.CutPrefix(line, ctrlPrefix); ok {
		return HistoryEntry{Line: s, Mode: modeCtrl}
	}

	s, _ := strings.CutPrefix(line, evalPrefix)

	return HistoryEntry{Line: s, Mode: modeEval}
}

// History manages input history with file persistence. An empty path keeps
// history in memory only.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory creates a new History instance with the given file path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads history entries from the history file. A missing file is an
// empty history.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.entries = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		h.entries = append(h.entries, parseHistoryEntry(line))
	}

	return scanner.Err()
}

// Add appends line to the history in the given mode. An earlier identical
// entry is moved to the end rather than repeated.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.ContainsRune(line, '\n') {
		return nil
	}

	entry := HistoryEntry{Line: line, Mode: mode}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	i := slices.Index(h.entries, entry)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, entry)

	if len(h.entries) > maxHistory {
		h.entries = slices.Delete(h.entries, 0, len(h.entries)-maxHistory)
		i = 0
	}

	if h.path == "" {
		return nil
	}

	if i >= 0 {
		return h.rewrite()
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry.String() + "\n")

	return err
}

// Entry retrieves a historic entry by index. Index 0 is the oldest entry.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns all history entries.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// rewrite replaces the history file with the current entries.
// Must be called with h.mu held.
func (h *History) rewrite() error {
	var b strings.Builder

	for _, entry := range h.entries {
		b.WriteString(entry.String())
		b.WriteByte('\n')
	}

	return os.WriteFile(h.path, []byte(b.String()), 0o600)
}
