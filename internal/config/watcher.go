package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the config file when it changes on disk and hands the new
// configuration to a callback. The serve command uses it so threshold tuning
// does not require a restart.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*Config)
	logger   *zap.Logger
	lastLoad time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a watcher for the given config file. The parent
// directory is watched because editors replace files on save.
func NewWatcher(path string, logger *zap.Logger, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		path:     filepath.Clean(path),
		onReload: onReload,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.logger.Info("watching config file", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing config watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	// Debounce rapid saves
	w.mu.Lock()
	if time.Since(w.lastLoad) < 500*time.Millisecond {
		w.mu.Unlock()
		return
	}
	w.lastLoad = time.Now()
	w.mu.Unlock()

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous", zap.Error(err))
		return
	}
	w.logger.Info("config reloaded", zap.String("path", w.path))
	w.onReload(cfg)
}
