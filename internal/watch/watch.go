// Package watch dispatches a fresh preprocessing job per debounced
// filesystem change event under a directory.
package watch

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceWindow suppresses repeat events for the same (path, op) pair
// within this duration, since the underlying notifier commonly emits
// more than one event per logical change.
const DebounceWindow = 100 * time.Millisecond

// Event is a debounced filesystem change ready for processing.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher wraps an fsnotify.Watcher with a debounce map keyed by
// (path, op).
type Watcher struct {
	fsw  *fsnotify.Watcher
	last map[string]time.Time
}

// New starts watching root (recursively add subdirectories yourself via
// Add if needed; BLCS jobs are typically shallow enough that watching
// the root and filtering by extension in the handler is sufficient).
func New(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{fsw: fsw, last: map[string]time.Time{}}, nil
}

// Add watches an additional directory, e.g. a subdirectory discovered
// after startup.
func (w *Watcher) Add(dir string) error {
	return w.fsw.Add(dir)
}

// Close stops the underlying notifier.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers debounced events to handle until ctx is cancelled or the
// notifier closes. A notifier error stops the loop and is returned.
func (w *Watcher) Run(ctx context.Context, handle func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.debounced(ev) {
				continue
			}
			handle(Event{Path: ev.Name, Op: ev.Op})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (w *Watcher) debounced(ev fsnotify.Event) bool {
	key := ev.Name + ":" + ev.Op.String()
	now := time.Now()
	if last, seen := w.last[key]; seen && now.Sub(last) < DebounceWindow {
		return true
	}
	w.last[key] = now
	return false
}
