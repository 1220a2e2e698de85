package data

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
)

// Format identifies the serialization of a data file.
type Format int

const (
	FormatJSON Format = iota // json
	FormatYAML               // yaml
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	default:
		return "json"
	}
}

// FormatOf infers the format of a data file from its extension. Anything that
// is not ".yaml" or ".yml" is treated as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads a JSON or YAML document from r and encodes it as a [Map].
// An empty document yields an empty Map.
func Load(ctx context.Context, r io.Reader, format Format) (Map, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	raw, err := io.ReadAll(ra)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return Map{}, nil
	}

	var doc any

	switch format {
	case FormatYAML:
		err = yaml.UnmarshalContext(ctx, raw, &doc)
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		err = dec.Decode(&doc)
	}

	if err != nil {
		return nil, err
	}

	d, err := Encode(numbers(doc))
	if err != nil {
		return nil, err
	}

	m, ok := d.(Map)
	if !ok {
		return nil, &DecodeError{Kind: WrongType, Want: "map", Got: TypeName(d)}
	}

	return m, nil
}

// numbers replaces json.Number values with int64, truncating fractions.
func numbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}

		if f, err := strconv.ParseFloat(string(v), 64); err == nil {
			return f
		}

		return string(v)
	case []any:
		for i := range v {
			v[i] = numbers(v[i])
		}

		return v
	case map[string]any:
		for k := range v {
			v[k] = numbers(v[k])
		}

		return v
	default:
		return v
	}
}
