package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/l20n/lang"
	"github.com/ardnew/l20n/log"
)

// Predefined errors (sentinel values).
var (
	ErrWatchPath = lang.NewError("failed to watch path")
	ErrStarted   = lang.NewError("watcher already started")
	ErrClosed    = lang.NewError("watcher closed")
)

// DefaultInterval is the quiet period after the last change before a reload
// is triggered.
const DefaultInterval = 100 * time.Millisecond

// DefaultExtensions are the file extensions watched inside directories.
var DefaultExtensions = []string{".l20n"}

// ReloadFunc is called with the sorted paths that changed during one quiet
// period. An error is logged and does not stop the watcher.
type ReloadFunc func(ctx context.Context, changed []string) error

// Watcher reports changes to resource files. Files are watched through their
// parent directory, so files replaced by editors remain watched.
type Watcher struct {
	fs *fsnotify.Watcher

	files    map[string]bool // explicitly named files
	dirs     map[string]bool // directories watched for any matching file
	exts     []string
	interval time.Duration
	hidden   bool
	logger   log.Logger

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Option configures a [Watcher].
type Option func(*Watcher)

// WithExtensions sets the extensions of files reported inside watched
// directories. Named files are always reported.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.exts = make([]string, 0, len(exts))
		for _, ext := range exts {
			if ext != "" && !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}

			w.exts = append(w.exts, strings.ToLower(ext))
		}
	}
}

// WithInterval sets the debounce interval. Values below 1 restore
// [DefaultInterval].
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithHidden controls whether hidden files and directories are reported.
func WithHidden(enable bool) Option {
	return func(w *Watcher) {
		w.hidden = enable
	}
}

// WithLogger sets the logger for watcher events.
func WithLogger(logger log.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New returns a Watcher over paths. Each path is a file or a directory;
// directories are watched recursively.
func New(paths []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		exts:     DefaultExtensions,
		interval: DefaultInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.interval <= 0 {
		w.interval = DefaultInterval
	}

	var err error
	if w.fs, err = fsnotify.NewWatcher(); err != nil {
		return nil, ErrWatchPath.Wrap(err)
	}

	for _, path := range paths {
		if err := w.add(path); err != nil {
			_ = w.fs.Close()

			return nil, err
		}
	}

	return w, nil
}

// Paths returns the sorted directories being watched.
func (w *Watcher) Paths() []string {
	return slices.Sorted(slices.Values(w.fs.WatchList()))
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ErrWatchPath.Wrap(err).With(slog.String("path", path))
	}

	info, err := os.Stat(abs)
	if err != nil {
		return ErrWatchPath.Wrap(err).With(slog.String("path", path))
	}

	if !info.IsDir() {
		w.files[abs] = true

		return w.watchDir(filepath.Dir(abs))
	}

	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return ErrWatchPath.Wrap(err).With(slog.String("path", p))
		}

		if !d.IsDir() {
			return nil
		}

		if p != abs && !w.hidden && isHidden(p) {
			return filepath.SkipDir
		}

		w.dirs[p] = true

		return w.watchDir(p)
	})
}

func (w *Watcher) watchDir(dir string) error {
	if slices.Contains(w.fs.WatchList(), dir) {
		return nil
	}

	if err := w.fs.Add(dir); err != nil {
		return ErrWatchPath.Wrap(err).With(slog.String("path", dir))
	}

	w.logger.Debug("watching directory", slog.String("path", dir))

	return nil
}

// Watch reports changes to onReload until ctx is cancelled or [Watcher.Stop]
// is called. Changes are debounced: onReload runs once after no change has
// been seen for the watcher interval. A Watcher may be started once.
func (w *Watcher) Watch(ctx context.Context, onReload ReloadFunc) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()

		return ErrStarted
	}

	w.started = true
	w.mu.Unlock()

	defer close(w.done)

	w.logger.InfoContext(ctx, "watch started",
		slog.Any("paths", w.fs.WatchList()),
		slog.Duration("interval", w.interval))

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[string]bool)
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.DebugContext(ctx, "watch stopped", slog.String("reason", "context"))

			return nil

		case <-w.stop:
			w.logger.DebugContext(ctx, "watch stopped", slog.String("reason", "stop"))

			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return ErrClosed
			}

			if !w.accept(event) {
				continue
			}

			w.logger.TraceContext(ctx, "change",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()))

			pending[event.Name] = true

			if timer == nil {
				timer = time.NewTimer(w.interval)
			} else {
				timer.Reset(w.interval)
			}

			fire = timer.C

		case <-fire:
			fire = nil
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)

			w.logger.DebugContext(ctx, "reload", slog.Any("changed", changed))

			if err := onReload(ctx, changed); err != nil {
				w.logger.ErrorContext(ctx, "reload failed", slog.Any("error", err))
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return ErrClosed
			}

			w.logger.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

// Stop ends a running [Watcher.Watch] and releases the watcher. Stop is safe
// to call more than once and before Watch.
func (w *Watcher) Stop() error {
	w.once.Do(func() { close(w.stop) })

	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	if started {
		<-w.done
	}

	if err := w.fs.Close(); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		return err
	}

	return nil
}

// accept reports whether event names a watched file that was written,
// created, removed or renamed.
func (w *Watcher) accept(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	if w.files[event.Name] {
		return true
	}

	if !w.dirs[filepath.Dir(event.Name)] {
		return false
	}

	if !w.hidden && isHidden(event.Name) {
		return false
	}

	return slices.Contains(w.exts, strings.ToLower(filepath.Ext(event.Name)))
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
