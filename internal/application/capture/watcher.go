package capture

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-trace-monitor/internal/data/parser"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

// Watcher tails a JSONL capture file and feeds appended events into a
// session. Truncating the file resets the session.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	tail    *parser.Tail
	session *Session
}

// NewWatcher watches the directory holding path, so that the capture file
// may be created or replaced after the watcher starts.
func NewWatcher(path string, session *Session) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	tail, err := parser.NewTail(abs, parser.NewParser(1))
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		watcher: watcher,
		path:    abs,
		tail:    tail,
		session: session,
	}, nil
}

// Run ingests what the file already holds, then follows it until ctx is
// done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Drain(); err != nil {
		util.LogWarnf("Initial read of %s failed: %v", w.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			// Log error but continue running
			util.LogError("File monitoring error: " + err.Error())
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	util.LogDebugf("Capture changed: %s (%s)", event.Name, event.Op)

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.tail.Reset()
		w.session.Reset()
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		if err := w.Drain(); err != nil {
			util.LogWarnf("Failed to read %s: %v", w.path, err)
		}
	}
}

// Drain ingests every complete line appended since the last call.
func (w *Watcher) Drain() error {
	res, truncated, err := w.tail.Next()
	if err != nil {
		return err
	}
	if truncated {
		util.LogInfof("Capture %s was truncated, starting over", w.path)
		w.session.Reset()
	}
	for i := range res.Events {
		// Rejections reach the session's OnRejected callback.
		_ = w.session.RecordReceived(&res.Events[i])
	}
	if res.Skipped > 0 {
		util.LogDebugf("Skipped %d undecodable lines in %s", res.Skipped, w.path)
	}
	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
