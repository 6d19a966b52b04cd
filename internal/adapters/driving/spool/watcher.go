// Package spool watches a drop directory for record files and syncs
// them as they appear. Processed files are renamed in place with a
// ".synced" or ".failed" suffix so a spool directory doubles as its
// own audit trail.
package spool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/daviidwuu/invoiceAI/internal/core/ports/driving"
	"github.com/daviidwuu/invoiceAI/internal/ingest"
	"github.com/daviidwuu/invoiceAI/internal/logger"
)

const (
	syncedSuffix = ".synced"
	failedSuffix = ".failed"
)

// Watcher processes record files dropped into a directory.
type Watcher struct {
	dir    string
	parser *ingest.Parser
	syncer driving.Syncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewWatcher creates a watcher for dir. The directory is created if
// missing.
func NewWatcher(dir string, parser *ingest.Parser, syncer driving.Syncer) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating spool directory %s: %w", dir, err)
	}
	return &Watcher{dir: dir, parser: parser, syncer: syncer}, nil
}

// Start drains files already in the directory, then blocks processing
// new arrivals until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	if err := w.drain(ctx); err != nil {
		return err
	}
	logger.Info("Watching spool directory %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleFsEvent(ctx, event)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Spool watcher: %v", err)
		}
	}
}

// Stop terminates the watch loop.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
}

// drain processes record files already sitting in the directory.
func (w *Watcher) drain(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading spool directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.process(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// handleFsEvent reacts to one filesystem event. Only file creation and
// writes matter; everything else is ignored.
func (w *Watcher) handleFsEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		// Already renamed by an earlier event, or a directory.
		return
	}
	w.process(ctx, event.Name)
}

// process parses and syncs one spool file, then renames it with the
// outcome suffix. Skipped files are left untouched.
func (w *Watcher) process(ctx context.Context, path string) {
	if !wanted(path) {
		return
	}

	records, err := w.parser.ParseFile(path)
	if err != nil {
		logger.Error("Spool %s: %v", filepath.Base(path), err)
		w.finish(path, failedSuffix)
		return
	}

	_, err = w.syncer.SyncBatch(ctx, records)
	if err != nil {
		logger.Error("Spool %s: %v", filepath.Base(path), err)
		w.finish(path, failedSuffix)
		return
	}

	logger.Info("Spool %s: synced %d records", filepath.Base(path), len(records))
	w.finish(path, syncedSuffix)
}

func (w *Watcher) finish(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		logger.Warn("Renaming %s: %v", path, err)
	}
}

// wanted reports whether the file should be processed: visible, and a
// record format the parser understands.
func wanted(path string) bool {
	name := filepath.Base(path)
	if isHidden(name) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsv", ".jsonl", ".xlsx":
		return true
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
