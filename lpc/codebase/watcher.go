package codebase

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileWatcher polls the project for source files that were added, changed
// or removed on disk. Files open in an editor are left alone.
type FileWatcher struct {
	codebase *Codebase
	onChange func(path string)
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	modTimes map[string]time.Time
}

// NewFileWatcher creates a watcher. onChange, if not nil, is called with
// every path the watcher reloaded or removed.
func NewFileWatcher(c *Codebase, onChange func(path string)) *FileWatcher {
	return &FileWatcher{
		codebase: c,
		onChange: onChange,
		interval: 1 * time.Second,
		stopCh:   make(chan struct{}),
		modTimes: make(map[string]time.Time),
	}
}

func (w *FileWatcher) Start() {
	go w.run()
}

func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

func (w *FileWatcher) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *FileWatcher) scan() {
	current := make(map[string]bool)
	root := w.codebase.RootDir()
	p := w.codebase.Project()

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !p.IsSource(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		current[path] = true
		lastMod, known := w.modTimes[path]
		if known && !info.ModTime().After(lastMod) {
			return nil
		}
		w.modTimes[path] = info.ModTime()
		if w.codebase.IsOpen(path) {
			return nil
		}
		if err := w.codebase.ScanFile(path); err != nil {
			log.Warningf("%s", err)
			return nil
		}
		w.changed(path)
		return nil
	})

	for path := range w.modTimes {
		if current[path] {
			continue
		}
		delete(w.modTimes, path)
		if w.codebase.IsOpen(path) {
			continue
		}
		w.codebase.RemoveFile(path)
		w.changed(path)
	}
}

func (w *FileWatcher) changed(path string) {
	if w.onChange != nil {
		w.onChange(path)
	}
}
