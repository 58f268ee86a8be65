package main

import (
	"fmt"
	"os"
	"time"

	"github.com/bananasjim/rdc-cli/internal/session"
	"github.com/fsnotify/fsnotify"
)

// watchSession re-runs render on every change to the session's descriptor
// file (e.g. a `goto` from another terminal bumping current_eid) and on a
// slow fallback tick, since the daemon itself has no push channel to the
// CLI (spec.md's wire protocol is request/response only). Ctrl-C stops it.
func watchSession(sessionName string, render func() error) error {
	path, err := session.Path(sessionName)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	if err := render(); err != nil {
		return err
	}
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := render(); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		case <-ticker.C:
			if err := render(); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
		}
	}
}
