package prefix

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize prefix watcher")

// DefaultDebounce coalesces bursts of filesystem events into one reload.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a Registry when its file changes on disk.
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	debounce time.Duration
	reloads  chan struct{}

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Watch starts watching the registry file until ctx is done or Stop is
// called. The parent directory is watched because saves replace the file
// by rename.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	if err := fw.Add(filepath.Dir(r.filePath)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		registry: r,
		watcher:  fw,
		debounce: debounce,
		reloads:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run(ctx)

	r.logger.Info(ctx, "watching prefix table", zap.String("file", r.filePath))
	return w, nil
}

// Reloaded receives a value after each reload attempt. Intended for tests
// and diagnostics; missed signals are dropped.
func (w *Watcher) Reloaded() <-chan struct{} {
	return w.reloads
}

// Stop ends the watch and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	<-w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	defer w.watcher.Close()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	target := filepath.Clean(w.registry.filePath)
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if err := w.registry.Reload(ctx); err != nil {
				w.registry.logger.Warn(ctx, "prefix table reload failed, keeping current table", zap.Error(err))
			}
			select {
			case w.reloads <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.registry.logger.Warn(ctx, "prefix watcher error", zap.Error(err))
		}
	}
}
