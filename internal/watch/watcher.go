package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// FileWatcher reports changes to one file. It watches the parent directory
// so that atomic rename-over writes and late file creation are seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange chan struct{}
	errs     chan error
	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	once     sync.Once
}

func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}

	return &FileWatcher{
		watcher:  fsw,
		path:     absPath,
		debounce: debounce,
		onChange: make(chan struct{}, 1),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

func (w *FileWatcher) Path() string {
	return w.path
}

// Start begins delivering debounced change signals. Bursts of writes
// collapse into one signal.
func (w *FileWatcher) Start() <-chan struct{} {
	go w.run()
	return w.onChange
}

// Errors carries watcher errors. Only the most recent unread one is kept.
func (w *FileWatcher) Errors() <-chan error {
	return w.errs
}

func (w *FileWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				w.trigger()
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

func (w *FileWatcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.onChange <- struct{}{}:
		default:
		}
	})
}

func (w *FileWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
