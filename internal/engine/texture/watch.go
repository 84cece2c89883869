package texture

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/logger"
)

// Watcher reports layers whose source file was rewritten on disk.
type Watcher struct {
	fs      *fsnotify.Watcher
	files   map[string]Layer
	changed chan Layer
	log     *zap.Logger
}

// NewWatcher watches the directories holding the given layer files.
// Layers with an empty path are skipped.
func NewWatcher(files map[Layer]string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		fs:      fw,
		files:   make(map[string]Layer, len(files)),
		changed: make(chan Layer, int(NumLayers)),
		log:     logger.Named("texture"),
	}

	dirs := make(map[string]bool)
	for layer, path := range files {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = layer
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// Changed delivers a layer each time its file is written or recreated.
func (w *Watcher) Changed() <-chan Layer { return w.changed }

// Run forwards file events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			layer, ok := w.files[abs]
			if !ok {
				continue
			}
			w.log.Info("texture changed on disk", zap.Stringer("layer", layer), zap.String("path", ev.Name))
			select {
			case w.changed <- layer:
			default:
				// A reload for this burst is already queued.
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
