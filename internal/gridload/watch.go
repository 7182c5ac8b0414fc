package gridload

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/pspoerri/lsgconv/internal/grid"
)

// DefaultDebounce is how long a grid file must be quiet before it is reloaded.
const DefaultDebounce = 500 * time.Millisecond

type watchConfig struct {
	debounce time.Duration
	onReload func(*grid.Grid, error)
}

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) { c.debounce = d }
}

// WithReloadHook is called after every reload attempt. On failure the grid is nil.
func WithReloadHook(fn func(*grid.Grid, error)) WatchOption {
	return func(c *watchConfig) { c.onReload = fn }
}

// Watch reloads the grid at path into holder whenever the file is written or
// replaced, until ctx is cancelled. A reload that fails leaves the previous
// grid in place. The parent directory is watched so that editors and tools
// that replace the file by rename are picked up.
func Watch(ctx context.Context, path string, width int, holder *Holder, logger *zap.Logger, opts ...WatchOption) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := watchConfig{debounce: DefaultDebounce}
	for _, o := range opts {
		o(&cfg)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("gridload: resolving %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("gridload: creating watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("gridload: watching %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watching correction grid", zap.String("path", abs))

	interval := cfg.debounce / 5
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("grid file changed", zap.String("op", ev.Op.String()))
			pending = time.Now()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("grid watcher error", zap.Error(err))

		case <-tick.C:
			if pending.IsZero() || time.Since(pending) < cfg.debounce {
				continue
			}
			pending = time.Time{}

			g, err := Load(ctx, abs, width, logger)
			if err != nil {
				logger.Error("reloading correction grid failed; keeping previous grid",
					zap.String("path", abs), zap.Error(err))
			} else {
				holder.Store(g)
				logger.Info("correction grid reloaded",
					zap.String("path", abs), zap.Int64("generation", holder.Generation()))
			}
			if cfg.onReload != nil {
				cfg.onReload(g, err)
			}
		}
	}
}
