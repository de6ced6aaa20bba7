package documents

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultQuietPeriod is how long a path must stay quiet before it is
// processed. Editors and sync tools emit several write events per logical
// save; the quiet period collapses each burst into one ingestion.
const DefaultQuietPeriod = 5 * time.Second

// FileProcessor ingests a single file.
type FileProcessor interface {
	Process(ctx context.Context, path string) (Outcome, error)
}

// Watcher observes a folder for created and modified files and triggers
// ingestion after a per-path debounce. Each path has at most one pending
// timer: a new event for a pending path cancels and restarts its timer.
type Watcher struct {
	processor FileProcessor
	fsw       *fsnotify.Watcher
	quiet     time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool

	wg sync.WaitGroup
}

// NewWatcher creates a watcher that hands quiet paths to the processor.
// A non-positive quiet period falls back to DefaultQuietPeriod.
func NewWatcher(processor FileProcessor, quiet time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Watcher{
		processor: processor,
		fsw:       fsw,
		quiet:     quiet,
		pending:   make(map[string]*time.Timer),
	}, nil
}

// Watch begins observing folder, non-recursively, and starts the event loop.
func (w *Watcher) Watch(folder string) error {
	if err := w.fsw.Add(folder); err != nil {
		return fmt.Errorf("failed to watch %s: %w", folder, err)
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop cancels all pending timers, stops the event loop and waits for any
// in-flight ingestion to finish. No ingestion starts after Stop returns.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if err := w.fsw.Close(); err != nil {
		log.Printf("watcher: failed to close: %v", err)
	}
	w.wg.Wait()
}

// loop dispatches filesystem events until the watcher is closed.
func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.schedule(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// schedule starts or restarts the debounce timer for path.
func (w *Watcher) schedule(path string) {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.quiet, func() {
		w.fire(path)
	})
}

// fire runs ingestion for a path whose quiet period elapsed. Processing
// failures are logged and never take the watcher down.
func (w *Watcher) fire(path string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	outcome, err := w.processor.Process(context.Background(), path)
	if err != nil {
		log.Printf("watcher: %v", err)
		return
	}
	log.Printf("watcher: %s: %s", path, outcome)
}
