package repl

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/l20n/data"
	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/locale"
	"github.com/ardnew/l20n/log"
)

// session is the state shared by every line entered in the REPL: the entries
// defined so far, in source order, and the data they are resolved against.
type session struct {
	loc    *locale.Locale
	res    *lang.Resource
	in     data.Map
	logger log.Logger
}

func newSession(
	ctx context.Context,
	loc *locale.Locale,
	res *lang.Resource,
	in data.Map,
	logger log.Logger,
) *session {
	if res == nil {
		res = new(lang.Resource)
	}

	if in == nil {
		in = data.Map{}
	}

	s := &session{loc: loc, res: new(lang.Resource), in: in, logger: logger}
	s.replace(ctx, res)

	return s
}

// inputKind classifies a line entered in eval mode.
type inputKind int

const (
	inputExpr   inputKind = iota // bare expression or entry id
	inputPlace                   // {{ expression }}
	inputDefine                  // <entry ...>
)

func classify(input string) inputKind {
	switch {
	case strings.HasPrefix(input, "<"):
		return inputDefine
	case strings.HasPrefix(input, "{{") && strings.HasSuffix(input, "}}"):
		return inputPlace
	default:
		return inputExpr
	}
}

// define parses src and adds its entries to the session. It returns the ids
// of the new entries.
func (s *session) define(ctx context.Context, src string) ([]string, error) {
	res, err := lang.Parse(ctx, src, lang.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	var ids []string

	for _, e := range res.Entries {
		if id, ok := lang.EntryID(e); ok {
			ids = append(ids, id)
		}
	}

	s.res.Entries = append(s.res.Entries, res.Entries...)
	s.loc.AddEnv(ctx, lang.Compile(res))

	s.logger.TraceContext(ctx, "repl define", slog.Any("ids", ids))

	return ids, nil
}

// eval resolves one line of input. A line naming an entry resolves the
// entry; anything else is parsed as an expression.
func (s *session) eval(ctx context.Context, input string) (data.Data, error) {
	if classify(input) == inputPlace {
		input = strings.TrimSpace(input[2 : len(input)-2])
	}

	if _, ok := s.loc.Env()[input]; ok {
		return s.loc.Entry(ctx, input, s.in)
	}

	e, err := lang.ParseExpr(ctx, input, lang.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	return s.loc.Eval(ctx, e, s.in)
}

// replace discards every entry of the session and loads res instead.
func (s *session) replace(ctx context.Context, res *lang.Resource) {
	s.loc.Reset()
	s.res = &lang.Resource{Entries: slices.Clone(res.Entries)}
	s.loc.AddEnv(ctx, lang.Compile(res))
}

// setData replaces the data entries are resolved against.
func (s *session) setData(in data.Map) {
	if in == nil {
		in = data.Map{}
	}

	s.in = in
}

func (s *session) ids() []string { return s.loc.IDs() }

func (s *session) lookup(id string) (lang.Entry, bool) {
	e, ok := s.loc.Env()[id]

	return e, ok
}

func (s *session) entity(id string) (*lang.Entity, bool) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, false
	}

	ent, ok := e.(*lang.Entity)

	return ent, ok
}

func (s *session) macro(id string) (*lang.Macro, bool) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, false
	}

	m, ok := e.(*lang.Macro)

	return m, ok
}
