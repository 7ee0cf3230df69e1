package internal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	tt "github.com/dexopt/apiremap/internal/types"
)

// Watcher re-runs the remapping pipeline whenever a watched program
// dump or the API catalog changes on disk. The rerun callback does the
// actual reload and returns the refreshed report.
type Watcher struct {
	watcher    *fsnotify.Watcher
	watchDirs  []string
	watchFiles map[string]bool
	isWatching atomic.Bool // read by the watch loop, written by Start/Stop
	rerun      func(changed string) (tt.Report, error)
}

// NewWatcher prepares a watcher over the given paths. Directories are
// walked and watched recursively for program dump changes; plain files
// (the API catalog, the config) are watched directly.
func NewWatcher(paths []string, rerun func(changed string) (tt.Report, error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}

	w := &Watcher{
		watcher:    fsw,
		watchFiles: make(map[string]bool),
		rerun:      rerun,
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("error inspecting watch path: %w", err)
		}
		if info.IsDir() {
			w.watchDirs = append(w.watchDirs, path)
		} else {
			w.watchFiles[path] = true
		}
	}
	return w, nil
}

func (w *Watcher) StartWatching() error {
	if w.isWatching.Load() {
		return fmt.Errorf("already watching")
	}

	for _, dir := range w.watchDirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	for file := range w.watchFiles {
		if err := w.watcher.Add(file); err != nil {
			return fmt.Errorf("error adding file to watcher: %w", err)
		}
	}

	w.isWatching.Store(true)
	go w.watchLoop()
	return nil
}

func (w *Watcher) StopWatching() error {
	if !w.isWatching.Load() {
		log.Println("not watching")
	}

	w.isWatching.Store(false)
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for w.isWatching.Load() {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("error: %v", err)
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	if !w.shouldReload(event.Name) {
		return
	}

	// wait for a while after file change to consider multiple changes as one
	time.Sleep(100 * time.Millisecond)
	report, err := w.rerun(event.Name)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	w.reportSummary(event.Name, report)
}

// shouldReload filters events down to program dumps and the directly
// watched files.
func (w *Watcher) shouldReload(name string) bool {
	if w.watchFiles[name] {
		return true
	}
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func (w *Watcher) reportSummary(filename string, report tt.Report) {
	if report.Retained == 0 {
		log.Printf("no retargetable classes after change to %s", filename)
		return
	}

	log.Printf("%s: %d of %d seeded pairs retained after %d rounds",
		filename, report.Retained, report.Seeded, report.Rounds)
}
