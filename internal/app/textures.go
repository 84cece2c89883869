package app

import (
	"context"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/logger"
)

// Uploader turns a decoded image into a backend texture.
type Uploader interface {
	UploadTexture(img *image.RGBA) (texture.Handle, error)
	DeleteTexture(h texture.Handle)
}

// Sink is told when a layer becomes usable or fails. *viewer.Viewer
// implements it.
type Sink interface {
	TextureReady(l texture.Layer, h texture.Handle, width, height int)
	TextureFailed(l texture.Layer, err error)
}

// Textures loads the layer files in the background and hands finished
// images to an Uploader on the render thread.
type Textures struct {
	loader  *texture.Loader
	watcher *texture.Watcher
	sources map[texture.Layer]string
	handles map[texture.Layer]texture.Handle
	pending []texture.Result
	slots   *texture.Slots
	log     *zap.Logger
}

// StartTextures starts decoding every configured layer and generates the
// checkerboard. With cfg.Textures.Watch set, edited files are reloaded.
// Loads stop when ctx is cancelled.
func StartTextures(ctx context.Context, cfg *config.Config, slots *texture.Slots) *Textures {
	t := &Textures{
		loader:  texture.NewLoader(cfg.Textures.Workers),
		sources: TextureSources(cfg),
		handles: make(map[texture.Layer]texture.Handle),
		slots:   slots,
		log:     logger.Named("textures"),
	}

	checker := texture.Checkerboard(cfg.Textures.CheckerSize, cfg.Textures.CheckerSquares)
	slots.MarkPending(texture.Checker, "generated")
	t.pending = append(t.pending, texture.Result{Layer: texture.Checker, Source: "generated", Image: checker})

	for l, path := range t.sources {
		t.Load(ctx, l, path)
	}

	if cfg.Textures.Watch && len(t.sources) > 0 {
		w, err := texture.NewWatcher(t.sources)
		if err != nil {
			t.log.Warn("texture hot reload disabled", zap.Error(err))
		} else {
			t.watcher = w
			go w.Run(ctx)
		}
	}
	return t
}

// Load (re)loads a layer from path, replacing its source. A layer that is
// already ready keeps drawing its old texture until the new one arrives.
func (t *Textures) Load(ctx context.Context, l texture.Layer, path string) {
	t.sources[l] = path
	if !t.slots.Ready(l) {
		t.slots.MarkPending(l, path)
	}
	t.loader.Load(ctx, l, path)
}

// Pump uploads finished images and reports them to sink. It also
// schedules reloads for files changed on disk. Call it once per frame from
// the thread that owns the Uploader.
func (t *Textures) Pump(ctx context.Context, up Uploader, sink Sink) int {
	if t.watcher != nil {
	drain:
		for {
			select {
			case l := <-t.watcher.Changed():
				t.loader.Load(ctx, l, t.sources[l])
			default:
				break drain
			}
		}
	}

	results := append(t.pending, t.loader.Poll()...)
	t.pending = nil
	for _, r := range results {
		if r.Err != nil {
			sink.TextureFailed(r.Layer, r.Err)
			continue
		}
		h, err := up.UploadTexture(r.Image)
		if err != nil {
			sink.TextureFailed(r.Layer, err)
			continue
		}
		if old, ok := t.handles[r.Layer]; ok {
			up.DeleteTexture(old)
		}
		t.handles[r.Layer] = h
		b := r.Image.Bounds()
		sink.TextureReady(r.Layer, h, b.Dx(), b.Dy())
	}
	return len(results)
}

// Close stops the watcher and waits for outstanding decodes. Cancel the
// context given to StartTextures first.
func (t *Textures) Close() {
	if t.watcher != nil {
		t.watcher.Close()
	}
	t.loader.Wait()
}
