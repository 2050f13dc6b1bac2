package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce coalesces bursts of file events into one reload.
const DefaultReloadDebounce = 200 * time.Millisecond

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	debounce time.Duration
	onReload func(error)
}

// WithReloadDebounce sets how long Watch waits for events to settle.
func WithReloadDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) { c.debounce = d }
}

// WithOnReload registers a callback invoked after every reload with the
// reload error, if any.
func WithOnReload(fn func(error)) WatchOption {
	return func(c *watchConfig) { c.onReload = fn }
}

// Watch reloads the catalog whenever a document under its directory
// changes, until ctx is done. Setup errors are returned; reload errors are
// logged.
func (c *Catalog) Watch(ctx context.Context, opts ...WatchOption) error {
	if c.dir == "" {
		return fmt.Errorf("catalog has no directory to watch")
	}
	cfg := watchConfig{debounce: DefaultReloadDebounce}
	for _, opt := range opts {
		opt(&cfg)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	err = filepath.WalkDir(c.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return w.Add(p)
	})
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("watching %s: %w", c.dir, err)
	}

	slog.Info("watching field catalog", slog.String("dir", c.dir))
	go c.runWatch(ctx, w, cfg)
	return nil
}

func (c *Catalog) runWatch(ctx context.Context, w *fsnotify.Watcher, cfg watchConfig) {
	defer func() {
		_ = w.Close()
	}()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(cfg.debounce, func() {
			if ctx.Err() != nil {
				return
			}
			err := c.Load()
			if err != nil {
				slog.Warn("field catalog reload had errors", slog.String("error", err.Error()))
			}
			if cfg.onReload != nil {
				cfg.onReload(err)
			}
		})
	}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping field catalog watch")
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.Add(ev.Name)
					schedule()
					continue
				}
			}
			if isDocument(ev.Name) && ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Debug("fsnotify error", slog.String("error", err.Error()))
		}
	}
}
