package main

import (
	"context"
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/app"
	"github.com/Faultbox/midgard-globe/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-globe/internal/engine/renderer"
	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/engine/ui"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/internal/viewer"
)

const controlsWidth = 300

// pickedTexture is a file chosen in the open dialog for a layer.
type pickedTexture struct {
	layer texture.Layer
	path  string
}

// App is the desktop viewer state.
type App struct {
	ctx      context.Context
	globe    *app.Globe
	backend  *ui.Backend
	renderer *renderer.Renderer
	fb       *framebuffer.Framebuffer
	viewer   *viewer.Viewer
	textures *app.Textures

	viewport ui.Viewport
	controls ui.ControlsPanel

	// File dialogs run off the main thread; picks are applied in render.
	picked chan pickedTexture

	screenshotRequested bool
	lastFrame           time.Time

	log *zap.Logger
}

// NewApp opens the window and prepares the GPU state.
func NewApp(ctx context.Context, globe *app.Globe) (*App, error) {
	cfg := globe.Config
	a := &App{
		ctx:    ctx,
		globe:  globe,
		picked: make(chan pickedTexture, 1),
		log:    logger.Named("globe"),
	}

	var err error
	a.backend, err = ui.NewBackend(cfg.Window.Title, int32(cfg.Window.Width), int32(cfg.Window.Height), "")
	if err != nil {
		return nil, err
	}

	w, h := int32(cfg.Window.Width-controlsWidth), int32(cfg.Window.Height)
	a.renderer, err = renderer.New(renderer.Config{
		Width:      int(w),
		Height:     int(h),
		Capacity:   globe.Writer.Capacity(),
		ClearColor: [4]float32{0, 0, 0, 1},
	})
	if err != nil {
		return nil, err
	}
	a.renderer.Upload(globe.Writer)

	a.fb, err = framebuffer.New(w, h)
	if err != nil {
		return nil, err
	}

	a.viewer, err = globe.NewViewer()
	if err != nil {
		return nil, err
	}
	a.viewer.Resize(int(w), int(h))
	a.textures = app.StartTextures(ctx, cfg, a.viewer.Slots())
	return a, nil
}

// Run blocks in the UI loop until the window closes.
func (a *App) Run() {
	a.lastFrame = time.Now()
	a.backend.Run(a.render)
}

func (a *App) render() {
	now := time.Now()
	dt := now.Sub(a.lastFrame)
	a.lastFrame = now

	a.applyPicked()
	a.textures.Pump(a.ctx, a.renderer, a.viewer)

	if ui.IsKeyPressed(imgui.KeyF12) {
		a.screenshotRequested = true
	}

	a.renderMenuBar()
	x, y, width, height := a.backend.GetViewport()

	imgui.SetNextWindowPos(imgui.NewVec2(x, y))
	imgui.SetNextWindowSize(imgui.NewVec2(width-controlsWidth, height))
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse |
		imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoScrollbar
	if imgui.BeginV("Globe", nil, flags) {
		pw, ph := a.viewport.Size()
		if a.fb.Resize(pw, ph) {
			a.viewer.Resize(int(pw), int(ph))
		}

		fc := a.viewer.Tick(dt)
		restore := a.fb.Bind()
		a.renderer.Draw(&fc)
		restore()

		if a.screenshotRequested {
			a.screenshotRequested = false
			a.screenshot()
		}
		fw, fh := a.fb.Size()
		a.viewport.Draw(a.viewer, a.fb.ColorTexture(), fw, fh)
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(x+width-controlsWidth, y))
	imgui.SetNextWindowSize(imgui.NewVec2(controlsWidth, height))
	if imgui.BeginV("Controls", nil, imgui.WindowFlagsNoMove|imgui.WindowFlagsNoResize|imgui.WindowFlagsNoCollapse) {
		act := a.controls.Draw(a.viewer)
		if act.Screenshot {
			a.screenshotRequested = true
		}
		if act.OpenTexture {
			a.openTextureDialog(act.Layer)
		}
	}
	imgui.End()
}

func (a *App) renderMenuBar() {
	if !imgui.BeginMainMenuBar() {
		return
	}
	if imgui.BeginMenu("File") {
		for l := texture.Earth; l <= texture.Water; l++ {
			if imgui.MenuItemBool(fmt.Sprintf("Open %s texture...", l)) {
				a.openTextureDialog(l)
			}
		}
		imgui.Separator()
		if imgui.MenuItemBool("Screenshot (F12)") {
			a.screenshotRequested = true
		}
		imgui.EndMenu()
	}
	if imgui.BeginMenu("View") {
		if imgui.MenuItemBool("Reset") {
			a.viewer.Reset()
		}
		if imgui.MenuItemBool("Add Object") {
			if err := a.viewer.Execute(viewer.CmdAddObject); err != nil {
				a.controls.Notify(err.Error())
			}
		}
		imgui.EndMenu()
	}
	imgui.EndMainMenuBar()
}

// openTextureDialog asks for an image file for layer. SDL and Cocoa
// window calls must stay on the main thread, so the choice is queued.
func (a *App) openTextureDialog(layer texture.Layer) {
	go func() {
		path, err := dialog.File().
			Filter("Images", "png", "jpg", "jpeg", "bmp", "tga", "tif", "tiff", "webp").
			Filter("All Files", "*").
			Title(fmt.Sprintf("Open %s texture", layer)).
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				a.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case a.picked <- pickedTexture{layer: layer, path: path}:
		default:
		}
	}()
}

func (a *App) applyPicked() {
	select {
	case p := <-a.picked:
		a.textures.Load(a.ctx, p.layer, p.path)
		a.controls.Notify(fmt.Sprintf("loading %s from %s", p.layer, p.path))
	default:
	}
}

func (a *App) screenshot() {
	path, err := a.globe.Shots.Save(a.fb.Snapshot())
	if err != nil {
		a.controls.Notify("screenshot failed: " + err.Error())
		return
	}
	a.controls.Notify("saved " + path)
}

// Close releases GPU resources and waits for texture loads.
func (a *App) Close() {
	if a.textures != nil {
		a.textures.Close()
	}
	if a.fb != nil {
		a.fb.Destroy()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
}
