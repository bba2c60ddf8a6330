package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

// Watcher regenerates the site when the content root changes. Bursts of
// filesystem events (editors write several files per save) are debounced
// into a single regeneration.
type Watcher struct {
	gen      *Generator
	root     string
	debounce time.Duration
	log      logger.Logger
	fsw      *fsnotify.Watcher
}

func NewWatcher(gen *Generator, root string, log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("cannot create file watcher: %w", err)
	}

	return &Watcher{
		gen:      gen,
		root:     root,
		debounce: 300 * time.Millisecond,
		log:      log,
		fsw:      fsw,
	}, nil
}

// Run watches the content root until ctx is cancelled. Failed
// regenerations are logged and the watch continues.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return fmt.Errorf("cannot watch content root %s: %w", w.root, err)
	}
	defer w.fsw.Close()

	w.log.Info("Watching content for changes", "root", w.root)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-w.fsw.Events:
			if ev.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			// New directories need a watch of their own.
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(ev.Name)
				}
			}
			resetTimer()

		case <-timerC:
			timerC = nil
			w.log.Info("Content changed, regenerating")
			if _, err := w.gen.Generate(ctx); err != nil {
				w.log.Error("Regeneration failed", "error", err)
			}

		case err := <-w.fsw.Errors:
			w.log.Warn("Watch error", "error", err)
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if filepath.Base(path) == ".git" {
				return filepath.SkipDir
			}
			return w.fsw.Add(path)
		}
		return nil
	})
}
