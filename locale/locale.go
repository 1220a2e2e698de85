package locale

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/text/language"

	"github.com/ardnew/l20n/data"
	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/log"
)

// DefaultName is the name of the locale tagged [language.Und].
const DefaultName = "i-default"

// Locale holds the compiled resources of one language.
// A Locale is safe for concurrent use.
type Locale struct {
	tag language.Tag

	mu  sync.RWMutex
	env lang.Env

	logger   log.Logger
	maxDepth int
}

// Option configures a [Locale].
type Option func(*Locale)

// WithLogger sets the logger used for debug and trace records.
func WithLogger(logger log.Logger) Option {
	return func(l *Locale) {
		l.logger = logger
	}
}

// WithMaxDepth sets the resolution budget of every entry. Values below 1 use
// [lang.DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(l *Locale) {
		l.maxDepth = depth
	}
}

// New returns an empty Locale for tag.
func New(tag language.Tag, opts ...Option) *Locale {
	l := &Locale{tag: tag, env: lang.Env{}}

	for _, opt := range opts {
		opt(l)
	}

	l.logger = l.logger.With(slog.String("locale", l.Name()))

	return l
}

// Tag returns the language tag of l.
func (l *Locale) Tag() language.Tag { return l.tag }

// Name returns the BCP 47 form of the tag of l, or [DefaultName] for
// [language.Und].
func (l *Locale) Name() string {
	if l.tag == language.Und {
		return DefaultName
	}

	return l.tag.String()
}

// Env returns a snapshot of the compiled entries of l.
func (l *Locale) Env() lang.Env {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.env
}

// IDs returns the sorted entry ids of l.
func (l *Locale) IDs() []string {
	return l.Env().IDs()
}

// AddResource parses and compiles src into l. Entries of src replace entries
// of l with the same id.
func (l *Locale) AddResource(ctx context.Context, src string) error {
	res, err := lang.Parse(ctx, src, l.langOptions()...)
	if err != nil {
		return err
	}

	l.merge(ctx, lang.Compile(res), "string")

	return nil
}

// AddFile parses and compiles the resource at path into l.
func (l *Locale) AddFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return lang.ErrReadInput.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	res, err := lang.ParseReader(ctx, f, l.langOptions()...)
	if err != nil {
		return err
	}

	l.merge(ctx, lang.Compile(res), path)

	return nil
}

// AddEnv merges a compiled environment into l.
func (l *Locale) AddEnv(ctx context.Context, env lang.Env) {
	l.merge(ctx, env, "env")
}

// Reset discards every entry of l.
func (l *Locale) Reset() {
	l.mu.Lock()
	l.env = lang.Env{}
	l.mu.Unlock()
}

func (l *Locale) merge(ctx context.Context, env lang.Env, source string) {
	l.mu.Lock()
	l.env = l.env.Merge(env)
	n := len(l.env)
	l.mu.Unlock()

	l.logger.DebugContext(ctx, "resource added",
		slog.String("source", source),
		slog.Int("entries", len(env)),
		slog.Int("total", n))
}

// Localize resolves every entry of l without input data and decodes the
// result into out.
func (l *Locale) Localize(ctx context.Context, out any) error {
	return l.LocalizeData(ctx, nil, out)
}

// LocalizeData encodes in with [data.Encode], resolves every entry of l
// against it and decodes the result into out with [data.Decode]. Macros
// resolve to null. The input must encode to a map or null.
func (l *Locale) LocalizeData(ctx context.Context, in, out any) error {
	m, err := l.input(in)
	if err != nil {
		return err
	}

	resolved, err := l.Env().ResolveAll(ctx, m, l.resolveOptions()...)
	if err != nil {
		return &LocalizeError{Op: OpResolve, Tag: l.Name(), Err: err}
	}

	if err := data.Decode(resolved, out); err != nil {
		return &LocalizeError{Op: OpDecode, Tag: l.Name(), Err: err}
	}

	l.logger.TraceContext(ctx, "localize complete",
		slog.Int("entries", len(resolved)))

	return nil
}

// Resolve resolves every entry of l against in and returns the data map.
func (l *Locale) Resolve(ctx context.Context, in any) (data.Map, error) {
	m, err := l.input(in)
	if err != nil {
		return nil, err
	}

	resolved, err := l.Env().ResolveAll(ctx, m, l.resolveOptions()...)
	if err != nil {
		return nil, &LocalizeError{Op: OpResolve, Tag: l.Name(), Err: err}
	}

	return resolved, nil
}

// Entry resolves the single entry id against in.
func (l *Locale) Entry(ctx context.Context, id string, in any) (data.Data, error) {
	m, err := l.input(in)
	if err != nil {
		return nil, err
	}

	d, err := l.Env().Resolve(ctx, id, m, l.resolveOptions()...)
	if err != nil {
		return nil, &LocalizeError{Op: OpResolve, Tag: l.Name(), Err: err}
	}

	return d, nil
}

// Eval resolves a standalone expression against the entries of l and in.
func (l *Locale) Eval(ctx context.Context, e lang.Expr, in any) (data.Data, error) {
	m, err := l.input(in)
	if err != nil {
		return nil, err
	}

	d, err := l.Env().Eval(ctx, e, m, l.resolveOptions()...)
	if err != nil {
		return nil, &LocalizeError{Op: OpResolve, Tag: l.Name(), Err: err}
	}

	return d, nil
}

// input encodes the caller data of a localization.
func (l *Locale) input(in any) (data.Map, error) {
	d, err := data.Encode(in)
	if err != nil {
		return nil, &LocalizeError{Op: OpEncode, Tag: l.Name(), Err: err}
	}

	switch d := d.(type) {
	case data.Map:
		return d, nil
	case data.Null:
		return data.Map{}, nil
	default:
		return nil, &LocalizeError{
			Op:  OpEncode,
			Tag: l.Name(),
			Err: lang.ErrInvalidData.Wrap(
				fmt.Errorf("got %s, want map", data.TypeName(d))),
		}
	}
}

func (l *Locale) langOptions() []lang.Option {
	return []lang.Option{lang.WithLogger(l.logger)}
}

func (l *Locale) resolveOptions() []lang.Option {
	return append(l.langOptions(),
		lang.WithMaxDepth(l.maxDepth),
		lang.WithGlobals(data.Map{"locale": data.Str(l.Name())}))
}
