package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pipdock/pkg/logger"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	fs       *fsnotify.Watcher
	path     string
	log      *logger.Logger
	onChange func(*Config)

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
}

// Watch starts watching path. onChange receives every configuration that
// loads and validates; broken edits are logged and ignored.
func Watch(path string, log *logger.Logger, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Editors replace files on save, so watch the directory rather than the file.
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w := &Watcher{
		fs:       fsw,
		path:     path,
		log:      log,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()

	log.Info("Watching config for changes", "path", path)
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("Config watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := loadConfigFromPath(w.path, w.log)
	if err != nil {
		w.log.Error("Ignoring config change", err, "path", w.path)
		return
	}
	w.log.Info("Config reloaded", "path", w.path)
	w.onChange(cfg)
}

// Close stops watching. Pending reloads are cancelled.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	err := w.fs.Close()
	<-w.done
	return err
}
