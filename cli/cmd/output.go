package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/l20n/data"
)

// Output formats of resolved entries.
const (
	outputJSON = "json"
	outputYAML = "yaml"
	outputText = "text"
)

// writeData writes the resolved entries m to w in the given output format.
func writeData(
	ctx context.Context,
	w io.Writer,
	m data.Map,
	format string,
	indent int,
) error {
	var (
		b   []byte
		err error
	)

	switch format {
	case outputText:
		return writeText(w, m)

	case outputYAML:
		opts := []yaml.EncodeOption{yaml.Flow(indent <= 0)}
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent))
		}

		b, err = yaml.MarshalContext(ctx, data.Native(m), opts...)

	default:
		if indent > 0 {
			b, err = json.MarshalIndent(data.Native(m), "", strings.Repeat(" ", indent))
		} else {
			b, err = json.Marshal(data.Native(m))
		}

		if err == nil {
			b = append(b, '\n')
		}
	}

	if err != nil {
		return err
	}

	_, err = w.Write(b)

	return err
}

// writeText writes one "id: value" line per entry in id order. Strings are
// written verbatim.
func writeText(w io.Writer, m data.Map) error {
	for _, id := range m.Keys() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", id, m[id]); err != nil {
			return err
		}
	}

	return nil
}
