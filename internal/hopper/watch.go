package hopper

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports new or changed hopper items via fsnotify (spec.md §4.5).
// CzarLoop does not consume it: the loop finds new project-tier items on
// its regular tick scan.
type Watcher struct {
	fs *fsnotify.Watcher
}

// NewWatcher watches dirs for create/write events. A directory that does
// not exist yet (a phase's todo/ before the first item lands) is skipped
// rather than treated as fatal; WatchDir can be called again later once it
// exists.
func NewWatcher(dirs ...string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("hopper: create watcher: %w", err)
	}
	w := &Watcher{fs: fs}
	for _, d := range dirs {
		_ = w.WatchDir(d)
	}
	return w, nil
}

// WatchDir adds dir to the watch set. Safe to call on an already-watched
// or nonexistent directory.
func (w *Watcher) WatchDir(dir string) error {
	return w.fs.Add(dir)
}

// Changed returns a channel of changed file paths. The channel is closed
// once the underlying watcher is closed. Sends are non-blocking: a
// consumer that falls behind simply misses a coalesced notification and
// picks up the change on its next scheduled scan instead.
func (w *Watcher) Changed() <-chan string {
	out := make(chan string, 16)
	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-w.fs.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				select {
				case out <- ev.Name:
				default:
				}
			case _, ok := <-w.fs.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out
}

// Close stops the watcher.
func (w *Watcher) Close() error { return w.fs.Close() }
