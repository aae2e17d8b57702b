package catalog

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/zhycn/batool/internal/debuglog"
)

// Watcher reports changes to a local corpus file. The parent directory is
// watched so that editors which replace the file on save are still seen.
// Bursts of events collapse into a single pending notification.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	target    string
	changes   chan struct{}
	errors    chan error
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewWatcher starts watching path. Remote sources cannot be watched.
func NewWatcher(path string) (*Watcher, error) {
	if IsRemote(path) {
		return nil, fmt.Errorf("cannot watch remote corpus %q", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve corpus path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		target:    abs,
		changes:   make(chan struct{}, 1),
		errors:    make(chan error, 1),
		done:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Changes delivers a value whenever the corpus file was written, created or
// replaced.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Errors delivers watcher failures. Only the most recent unread error is kept.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Done is closed once Close has been called.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			debuglog.Debugf("corpus watcher: %s", event)
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			debuglog.Warnf("corpus watcher: %v", err)
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}
