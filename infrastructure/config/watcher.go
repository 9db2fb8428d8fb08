package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const debounceDelay = 500 * time.Millisecond

// Limits are the settings that can change while the server runs
type Limits struct {
	HistoryLimit int `yaml:"history_limit" json:"history_limit"`
	MaxElements  int `yaml:"max_elements" json:"max_elements"`
}

// Validate rejects negative limits
func (l Limits) Validate() error {
	if l.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative")
	}
	if l.MaxElements < 0 {
		return fmt.Errorf("max_elements must not be negative")
	}
	return nil
}

// LoadLimits reads a JSON or YAML limits file. Keys missing from the file
// keep the value from base.
func LoadLimits(path string, base Limits) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read limits file %s: %w", path, err)
	}
	out := base
	// YAML is a superset of JSON so one decoder serves both
	if err := yaml.Unmarshal(data, &out); err != nil {
		return base, fmt.Errorf("failed to parse limits file %s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}

// LimitsWatcher reloads the dynamic limits file when it changes and hands the
// new values to the registered callbacks.
type LimitsWatcher struct {
	path      string
	current   Limits
	callbacks []func(Limits)
	mu        sync.RWMutex
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewLimitsWatcher starts watching path. The file is read once up front so
// that values present at startup take effect immediately.
func NewLimitsWatcher(path string, initial Limits, logger *zap.Logger) (*LimitsWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("limits file path is required")
	}

	w := &LimitsWatcher{
		path:    filepath.Clean(path),
		current: initial,
		logger:  logger,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}

	if loaded, err := LoadLimits(w.path, initial); err == nil {
		w.current = loaded
	} else {
		logger.Warn("Initial limits file not loaded", zap.String("file", w.path), zap.Error(err))
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// watch the directory; editors often replace the file instead of writing it
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()

	logger.Info("Limits hot reloading enabled", zap.String("file", w.path))
	return w, nil
}

// Current returns the limits last loaded
func (w *LimitsWatcher) Current() Limits {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback run after every successful reload
func (w *LimitsWatcher) OnChange(callback func(Limits)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Stop ends the watch loop and waits for it to exit
func (w *LimitsWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.done
}

func (w *LimitsWatcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug("Limits file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Limits watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

func (w *LimitsWatcher) reload() {
	w.mu.RLock()
	base := w.current
	w.mu.RUnlock()

	loaded, err := LoadLimits(w.path, base)
	if err != nil {
		w.logger.Error("Failed to reload limits", zap.String("file", w.path), zap.Error(err))
		return
	}
	if loaded == base {
		return
	}

	w.mu.Lock()
	w.current = loaded
	callbacks := slices.Clone(w.callbacks)
	w.mu.Unlock()

	w.logger.Info("Limits reloaded",
		zap.Int("history_limit", loaded.HistoryLimit),
		zap.Int("max_elements", loaded.MaxElements),
	)

	for _, callback := range callbacks {
		callback(loaded)
	}
}
