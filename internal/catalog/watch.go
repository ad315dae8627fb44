package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// FileWatcher notifies an Invalidator whenever the data file changes on disk.
// It watches the parent directory so that atomic renames over the file are
// seen as well as in-place writes.
type FileWatcher struct {
	path   string
	target Invalidator
	log    *zap.Logger
	w      *fsnotify.Watcher
}

func NewFileWatcher(path string, target Invalidator, log *zap.Logger) (*FileWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &FileWatcher{path: abs, target: target, log: log, w: w}, nil
}

// Run delivers notifications until ctx is done. The watcher is closed on return.
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer fw.w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			if !fw.relevant(ev) {
				continue
			}
			fw.log.Info("data file changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			fw.target.OnExternalChange()
		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			fw.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (fw *FileWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&changeOps == 0 {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return name == fw.path
}
