// Package watch signals changes to a single file, combining filesystem
// notifications with a polling fallback.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is used when Options.PollInterval is unset.
const DefaultPollInterval = time.Second

// Options configures a FileWatcher.
type Options struct {
	// PollInterval is the periodic wake-up rate. The ticker always runs:
	// it catches growth that produces no notification (NFS mounts, writes
	// through another hard link) and carries the no-fsnotify case alone.
	PollInterval time.Duration

	// Logger for watcher diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// FileWatcher wakes a consumer whenever one file may have changed.
// The parent directory is watched rather than the file itself, so
// rotation (remove then recreate) is still observed.
type FileWatcher struct {
	path   string
	dir    string
	base   string
	fsw    *fsnotify.Watcher
	opts   Options
	wake   chan struct{}
	wakeUp atomic.Uint64
}

// New creates a watcher for path. It never fails: when fsnotify is
// unavailable the watcher degrades to polling only.
func New(path string, opts Options) *FileWatcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	w := &FileWatcher{
		path: abs,
		dir:  filepath.Dir(abs),
		base: filepath.Base(abs),
		opts: opts,
		wake: make(chan struct{}, 1),
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		opts.Logger.Warn("fsnotify unavailable, relying on polling", "error", err)
		return w
	}
	if err := fsw.Add(w.dir); err != nil {
		opts.Logger.Warn("watch failed, relying on polling", "dir", w.dir, "error", err)
		_ = fsw.Close()
		return w
	}
	w.fsw = fsw
	return w
}

// Wake returns the coalescing wake-up channel. At most one signal is
// pending at a time; consumers re-check the file on every receive.
func (w *FileWatcher) Wake() <-chan struct{} {
	return w.wake
}

// Type reports the active mechanism, "fsnotify" or "polling".
func (w *FileWatcher) Type() string {
	if w.fsw != nil {
		return "fsnotify"
	}
	return "polling"
}

// Wakeups returns the number of signals delivered so far.
func (w *FileWatcher) Wakeups() uint64 {
	return w.wakeUp.Load()
}

// Run feeds the wake channel until ctx is cancelled, then returns
// ctx's error. Notification errors are logged, never fatal; the poll
// ticker keeps the consumer live through them.
func (w *FileWatcher) Run(ctx context.Context) error {
	if w.fsw != nil {
		defer w.fsw.Close()
	}

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if w.fsw != nil {
		events = w.fsw.Events
		errs = w.fsw.Errors
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poke()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if w.relevant(ev) {
				w.poke()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.opts.Logger.Warn("watch error", "path", w.path, "error", err)
		}
	}
}

// relevant filters directory events down to mutations of the target
// file. Chmod is noise; Remove and Rename matter because a recreated
// file must trigger a re-stat.
func (w *FileWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Base(ev.Name) != w.base {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) ||
		ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
}

func (w *FileWatcher) poke() {
	select {
	case w.wake <- struct{}{}:
		w.wakeUp.Add(1)
	default:
	}
}
