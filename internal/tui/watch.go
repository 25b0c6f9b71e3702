package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce coalesces the burst of events a single SQLite commit produces.
const watchDebounce = 250 * time.Millisecond

// dbChangedMsg tells the model to reload from the database.
type dbChangedMsg struct{}

// WatchDB calls notify whenever the database file (or its journal) changes.
// The parent directory is watched because SQLite replaces journal files.
// The returned function stops the watcher.
func WatchDB(ctx context.Context, dbPath string, logger *zap.Logger, notify func()) (func() error, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(dbPath)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(dbPath), err)
	}

	base := filepath.Base(dbPath)
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, notify)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				name := filepath.Base(ev.Name)
				if !strings.HasPrefix(name, base) || strings.HasSuffix(name, ".lock") {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					logger.Debug("database changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
					trigger()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", zap.Error(err))
			}
		}
	}()

	return func() error {
		err := w.Close()
		<-done
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		return err
	}, nil
}
