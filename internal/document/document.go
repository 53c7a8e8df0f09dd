// Package document provides the authoritative text of an open .env file.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/xmazu/envtable/internal/logger"
	"github.com/xmazu/envtable/internal/storage"
	"github.com/xmazu/envtable/internal/watch"
)

// Document is the capability the synchronization core depends on.
type Document interface {
	Text() string
	// ReplaceAll swaps the whole text. Change listeners run when the text
	// actually differs.
	ReplaceAll(text string) error
	OnExternalChange(fn func()) (cancel func())
	OnBeforePersist(fn func()) (cancel func())
}

// FileDocument is an in-memory buffer backed by a file. Listeners run on the
// goroutine that caused the change.
type FileDocument struct {
	path string

	mu       sync.Mutex
	text     string
	diskText string

	listeners listeners
}

var _ Document = (*FileDocument)(nil)

// Open reads path into a new buffer. A missing file opens as empty.
func Open(path string) (*FileDocument, error) {
	d := &FileDocument{path: path}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	d.text = string(data)
	d.diskText = d.text
	return d, nil
}

func (d *FileDocument) Path() string {
	return d.path
}

func (d *FileDocument) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Dirty reports whether the buffer differs from the last text read from or
// written to disk.
func (d *FileDocument) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text != d.diskText
}

func (d *FileDocument) ReplaceAll(text string) error {
	d.mu.Lock()
	if text == d.text {
		d.mu.Unlock()
		return nil
	}
	d.text = text
	d.mu.Unlock()

	d.listeners.fire(changeEvent)
	return nil
}

func (d *FileDocument) OnExternalChange(fn func()) func() {
	return d.listeners.add(changeEvent, fn)
}

func (d *FileDocument) OnBeforePersist(fn func()) func() {
	return d.listeners.add(persistEvent, fn)
}

// Persist runs the before-persist hooks and writes the buffer to disk.
func (d *FileDocument) Persist() error {
	d.listeners.fire(persistEvent)

	d.mu.Lock()
	text := d.text
	d.mu.Unlock()

	if err := storage.WriteFileAtomic(d.path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	d.mu.Lock()
	d.diskText = text
	d.mu.Unlock()
	return nil
}

// Reload picks up changes made to the file by other programs. The buffer is
// overwritten; the last writer wins. Echoes of our own writes are ignored.
func (d *FileDocument) Reload() (bool, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	disk := string(data)

	d.mu.Lock()
	if disk == d.diskText {
		d.mu.Unlock()
		return false, nil
	}
	d.diskText = disk
	changed := disk != d.text
	d.text = disk
	d.mu.Unlock()

	if changed {
		d.listeners.fire(changeEvent)
	}
	return changed, nil
}

// Watch signals when the file changes on disk. The owner should call Reload
// on each signal from its own goroutine. Watching stops with ctx; watcher
// errors go to the context logger.
func (d *FileDocument) Watch(ctx context.Context, debounce time.Duration) (<-chan struct{}, error) {
	w, err := watch.NewFileWatcher(d.path, debounce)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", d.path, err)
	}
	changes := w.Start()
	go func() {
		logWatchErrors(ctx, w.Errors(), logger.FromContext(ctx).WithValues(logger.FileKey, d.path))
		w.Close()
	}()
	return changes, nil
}

// logWatchErrors logs errs until ctx is done.
func logWatchErrors(ctx context.Context, errs <-chan error, log logr.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			log.Error(err, "file watch error")
		}
	}
}

type eventKind int

const (
	changeEvent eventKind = iota
	persistEvent
)

type listener struct {
	id   int
	kind eventKind
	fn   func()
}

type listeners struct {
	mu     sync.Mutex
	nextID int
	list   []listener
}

func (l *listeners) add(kind eventKind, fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.list = append(l.list, listener{id: id, kind: kind, fn: fn})
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, ln := range l.list {
			if ln.id == id {
				l.list = append(l.list[:i:i], l.list[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners) fire(kind eventKind) {
	l.mu.Lock()
	var fns []func()
	for _, ln := range l.list {
		if ln.kind == kind {
			fns = append(fns, ln.fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
