package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-parse-retry loop. It
// formats the session resource to a temp file, opens the user's editor, and
// re-parses the result. On parse error the user is prompted to re-edit;
// declining exits the program.
type editCommand struct {
	res     *lang.Resource
	ctxFunc func() context.Context
	newRes  *lang.Resource
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. If the user declines to re-edit, it
// returns [ErrEditDeclined]. An emptied file leaves newRes nil.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	var buf bytes.Buffer
	if err := c.res.Format(ctx, &buf, 2); err != nil {
		return fmt.Errorf("format resource: %w", err)
	}

	content := buf.String()

	f, err := os.CreateTemp(os.TempDir(), "l20n-repl-*.l20n")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		src, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if strings.TrimSpace(src) == "" {
			return nil
		}

		res, parseErr := lang.Parse(ctx, src, lang.WithLogger(c.logger))
		c.logger.TraceContext(
			ctx,
			"editor parse attempt",
			slog.Int("content_length", len(src)),
			slog.Bool("success", parseErr == nil),
		)

		if parseErr == nil {
			c.newRes = res

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", errorStyle.Render(parseErr.Error()))
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = src
	}
}

// runEditor launches the user's editor on the given file path and returns the
// edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) (string, error) {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	args := append(strings.Fields(editor), path)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
