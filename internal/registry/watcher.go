package registry

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harrison/assessment/internal/models"
	"github.com/harrison/assessment/internal/parser"
)

// DefaultDebounceDelay coalesces bursts of editor writes into one reload
const DefaultDebounceDelay = 250 * time.Millisecond

// Watcher reloads a Loader whenever a definition document under its roots
// is created, written, removed or renamed.
type Watcher struct {
	loader  *Loader
	watcher *fsnotify.Watcher

	mu            sync.Mutex
	debounceDelay time.Duration
	timer         *time.Timer
	closed        bool

	// OnReload, if set, is called after every reload triggered by the watcher
	OnReload func(models.LoadReport, error)
}

// NewWatcher watches every existing root of the loader (recursively)
func NewWatcher(loader *Loader) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		loader:        loader,
		watcher:       fsw,
		debounceDelay: DefaultDebounceDelay,
	}
	for _, root := range loader.Roots {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// SetDebounceDelay sets the delay between the last event and the reload.
// Call it before Run.
func (w *Watcher) SetDebounceDelay(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDelay = delay
}

// addRecursive adds the directory and all its non-hidden subdirectories
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil && !os.IsPermission(err) {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Run processes file events until ctx is cancelled, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.loader.Logger.LogWarn(fmt.Sprintf("File watcher error: %v", err))
		}
	}
}

// handleEvent schedules a reload for relevant events
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.loader.Logger.LogWarn(err.Error())
			}
			w.schedule()
			return
		}
	}

	if event.Op == fsnotify.Chmod {
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}
	if parser.DetectFormat(event.Name) == parser.FormatUnknown {
		return
	}
	w.loader.Logger.LogDebug(fmt.Sprintf("Definition change: %s %s", event.Op, event.Name))
	w.schedule()
}

// schedule (re)arms the single debounce timer
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()

	report, err := w.loader.Reload()
	if w.OnReload != nil {
		w.OnReload(report, err)
	}
}

// Close stops the watcher and cancels any pending reload
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	return w.watcher.Close()
}
