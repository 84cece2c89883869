// Package kiosk runs the globe full-window with keyboard controls and no
// panels.
package kiosk

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/app"
	"github.com/Faultbox/midgard-globe/internal/engine/input"
	"github.com/Faultbox/midgard-globe/internal/engine/renderer"
	"github.com/Faultbox/midgard-globe/internal/engine/window"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/internal/viewer"
)

// Bindings maps keys to viewer commands.
var Bindings = map[sdl.Scancode]viewer.Command{
	sdl.SCANCODE_L:      viewer.CmdFlipLight,
	sdl.SCANCODE_A:      viewer.CmdFlipAnimate,
	sdl.SCANCODE_C:      viewer.CmdFlipClouds,
	sdl.SCANCODE_K:      viewer.CmdFlipCheckerboard,
	sdl.SCANCODE_B:      viewer.CmdFlipBorders,
	sdl.SCANCODE_R:      viewer.CmdReset,
	sdl.SCANCODE_N:      viewer.CmdAddObject,
	sdl.SCANCODE_EQUALS: viewer.CmdZoomIn,
	sdl.SCANCODE_MINUS:  viewer.CmdZoomOut,
}

// Kiosk is the window, renderer and viewer of one full-window display.
type Kiosk struct {
	globe    *app.Globe
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	viewer   *viewer.Viewer
	textures *app.Textures
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool

	log *zap.Logger
}

// New opens the window and uploads the packed buffers.
func New(globe *app.Globe) (*Kiosk, error) {
	cfg := globe.Config
	k := &Kiosk{
		globe: globe,
		input: input.New(),
		log:   logger.Named("kiosk"),
	}

	var err error
	k.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer after the window: it needs the GL context.
	w, h := k.window.DrawableSize()
	k.renderer, err = renderer.New(renderer.Config{
		Width:    w,
		Height:   h,
		Capacity: globe.Writer.Capacity(),
	})
	if err != nil {
		k.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	k.renderer.Upload(globe.Writer)
	k.renderer.Resize(w, h)

	k.viewer, err = globe.NewViewer()
	if err != nil {
		k.Close()
		return nil, err
	}
	k.viewer.Resize(w, h)

	k.ctx, k.cancel = context.WithCancel(context.Background())
	k.textures = app.StartTextures(k.ctx, cfg, k.viewer.Slots())
	return k, nil
}

// Run drives the frame loop until the window closes or Escape is pressed.
func (k *Kiosk) Run() error {
	k.running = true
	last := time.Now()

	k.log.Info("starting frame loop")
	for k.running {
		now := time.Now()
		dt := now.Sub(last)
		last = now

		if k.input.Update() {
			break
		}
		for _, ev := range k.input.Events() {
			k.handle(ev)
		}

		k.textures.Pump(k.ctx, k.renderer, k.viewer)

		fc := k.viewer.Tick(dt)
		k.renderer.Draw(&fc)
		if k.input.IsKeyPressed(sdl.SCANCODE_F12) {
			k.screenshot()
		}
		k.window.SwapBuffers()

		if fc.Frame%120 == 0 {
			k.window.SetTitle(fmt.Sprintf("%s - %.0f fps", k.globe.Config.Window.Title, k.viewer.FPS()))
		}
	}
	return nil
}

func (k *Kiosk) handle(ev input.Event) {
	switch ev.Type {
	case input.EventWindowResize:
		w, h := k.window.DrawableSize()
		k.renderer.Resize(w, h)
		k.viewer.Resize(w, h)
	case input.EventDrag:
		k.viewer.HandleDrag(ev.DX, ev.DY)
	case input.EventWheel:
		k.viewer.HandleZoom(-ev.Wheel)
	case input.EventKeyDown:
		switch ev.Key {
		case sdl.SCANCODE_ESCAPE:
			k.running = false
		case sdl.SCANCODE_F11:
			k.window.ToggleFullscreen()
		default:
			cmd, ok := Bindings[ev.Key]
			if !ok {
				return
			}
			if err := k.viewer.Execute(cmd); err != nil {
				k.log.Warn("command failed", zap.String("command", string(cmd)), zap.Error(err))
			}
		}
	}
}

// screenshot reads back the frame just drawn, before the swap.
func (k *Kiosk) screenshot() {
	pixels, w, h := k.renderer.ReadPixels()
	if _, err := k.globe.Shots.SavePixels(pixels, w, h); err != nil {
		k.log.Error("screenshot failed", zap.Error(err))
	}
}

// Close releases the textures, renderer and window.
func (k *Kiosk) Close() {
	k.log.Info("closing kiosk")
	if k.cancel != nil {
		k.cancel()
	}
	if k.textures != nil {
		k.textures.Close()
	}
	if k.renderer != nil {
		k.renderer.Close()
	}
	if k.window != nil {
		k.window.Close()
	}
}
