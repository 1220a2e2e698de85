package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parse results keyed by the xxh3 hash of the source.
var globalCache sync.Map

// state holds the single parse of one source.
type state struct {
	once sync.Once
	res  *Resource
	err  error
}

// ParseReader reads all of r and parses it. Results are cached by source
// content; a cached [Resource] is shared between callers and must not be
// modified.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Resource, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	src, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	makeOptions(opts...).logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(src)),
		slog.Bool("read_ahead", true),
	)

	return ParseBytes(ctx, src, opts...)
}

// ParseBytes parses src, consulting the parse cache unless disabled with
// [WithCache].
func ParseBytes(ctx context.Context, src []byte, opts ...Option) (*Resource, error) {
	o := makeOptions(opts...)

	if !o.cache {
		o.logger.TraceContext(ctx, "cache bypass")

		return Parse(ctx, string(src), opts...)
	}

	key := strconv.FormatUint(xxh3.Hash(src), 36)

	value, cacheHit := globalCache.LoadOrStore(key, new(state))

	st, ok := value.(*state)
	if !ok {
		return Parse(ctx, string(src), opts...)
	}

	st.once.Do(func() {
		st.res, st.err = Parse(ctx, string(src), opts...)
	})

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("hit", cacheHit))

	return st.res, st.err
}

// ClearCache discards all cached parse results.
func ClearCache() {
	globalCache.Clear()
}
