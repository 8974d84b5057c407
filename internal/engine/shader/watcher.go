package shader

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/etcalpha/internal/logger"
)

// ErrWatcherClosed is returned when adding files to a closed Watcher.
var ErrWatcherClosed = errors.New("shader watcher already closed")

// Watcher flags shader files as changed when they are written, created or
// replaced. The render loop polls Changed once per frame and recompiles
// on the GL thread.
//
// Directories are watched rather than files so editors that save through
// a rename are still seen.
type Watcher struct {
	fs    *fsnotify.Watcher
	log   *zap.Logger
	done  chan struct{}
	dirty atomic.Bool

	mu       sync.Mutex
	files    map[string]bool
	dirs     map[string]bool
	isClosed bool
	wg       sync.WaitGroup
}

// NewWatcher starts watching paths.
func NewWatcher(paths ...string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:    fsWatch,
		log:   logger.Named("shader-watch"),
		done:  make(chan struct{}),
		files: make(map[string]bool),
		dirs:  make(map[string]bool),
	}

	w.wg.Add(1)
	go w.run()

	for _, p := range paths {
		if err := w.Add(p); err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}

// Add starts watching one more file.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isClosed {
		return ErrWatcherClosed
	}

	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

// Changed reports whether a watched file changed since the last call.
func (w *Watcher) Changed() bool {
	return w.dirty.Swap(false)
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.isClosed {
		w.mu.Unlock()
		return nil
	}
	w.isClosed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	return w.fs.Close()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(e)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Rename) {
		return
	}

	name, err := filepath.Abs(e.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	watched := w.files[name]
	w.mu.Unlock()

	if watched {
		w.log.Debug("shader changed", zap.String("file", name), zap.Stringer("op", e.Op))
		w.dirty.Store(true)
	}
}
