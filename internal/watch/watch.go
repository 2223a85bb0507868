// Package watch reports changes to a single chart file.
//
// The parent directory is watched rather than the file itself: editors
// commonly save by writing a temporary file and renaming it over the
// original, which would silently end a watch placed on the old inode.
package watch

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when NewWatcher is given a zero interval.
const DefaultDebounce = 150 * time.Millisecond

// ErrStopped is returned by Start after Stop.
var ErrStopped = errors.New("watch: watcher stopped")

// Change is one settled change to the watched file.
type Change struct {
	Path string
	// Removed is true when the file no longer exists.
	Removed bool
}

// Watcher monitors one file and emits a Change once events for it have
// been quiet for the debounce interval.
type Watcher struct {
	Path    string
	Changes <-chan Change
	Errors  <-chan error

	changes  chan Change
	errs     chan error
	done     chan struct{}
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu       sync.Mutex
	started  bool
	stopped  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher for path. Call Start to begin watching.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ch := make(chan Change, 4)
	errs := make(chan error, 4)
	return &Watcher{
		Path:     abs,
		Changes:  ch,
		Errors:   errs,
		changes:  ch,
		errs:     errs,
		done:     make(chan struct{}),
		debounce: debounce,
		watcher:  fw,
	}, nil
}

// Start begins watching the file's directory. Calling it again while
// running does nothing.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.stopped:
		return ErrStopped
	case w.started:
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and both channels. Pending changes are flushed
// first. It is safe to call more than once, and without a prior Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		started := w.started
		w.stopped = true
		w.mu.Unlock()

		w.watcher.Close()
		if started {
			<-w.done
		}
		close(w.changes)
		close(w.errs)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var (
		pending bool
		last    time.Time
	)
	tick := w.debounce / 2
	if tick <= 0 {
		tick = w.debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.emit()
				}
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = true
				last = time.Now()
			}

		case <-ticker.C:
			if pending && time.Since(last) >= w.debounce {
				pending = false
				w.emit()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

// emit reports the file's current state. A full channel drops the change;
// the consumer is still behind on an earlier one and will re-read the file.
func (w *Watcher) emit() {
	c := Change{Path: w.Path}
	if _, err := os.Stat(w.Path); err != nil {
		c.Removed = true
	}
	select {
	case w.changes <- c:
	default:
	}
}
