// Package ui provides the ImGui front end: the SDL backend wrapper, the
// globe viewport panel and the controls panel.
package ui

import (
	"fmt"
	"os"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/logger"
)

// Backend wraps the ImGui SDL backend.
type Backend struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	width   int32
	height  int32
	font    string
}

// NewBackend creates the window and GL context. font, if non-empty, is a
// TTF file loaded in place of the built-in font.
func NewBackend(title string, width, height int32, font string) (*Backend, error) {
	b := &Backend{
		width:  width,
		height: height,
		font:   font,
	}

	var err error
	b.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	b.backend.SetAfterCreateContextHook(b.loadFont)
	b.backend.SetBgColor(imgui.NewVec4(0.05, 0.05, 0.08, 1.0))
	b.backend.CreateWindow(title, int(width), int(height))

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	return b, nil
}

func (b *Backend) loadFont() {
	if b.font == "" {
		return
	}
	if _, err := os.Stat(b.font); err != nil {
		logger.Warn("ui font not found, using default", zap.String("path", b.font))
		return
	}
	fontCfg := imgui.NewFontConfig()
	defer fontCfg.Destroy()
	imgui.CurrentIO().Fonts().AddFontFromFileTTFV(b.font, 16.0, fontCfg, nil)
}

// Run starts the main render loop.
func (b *Backend) Run(renderFunc func()) {
	b.backend.Run(renderFunc)
}

// SetWindowTitle updates the window title.
func (b *Backend) SetWindowTitle(title string) {
	b.backend.SetWindowTitle(title)
}

// GetViewport returns the main viewport work area.
func (b *Backend) GetViewport() (posX, posY, width, height float32) {
	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()
	return workPos.X, workPos.Y, workSize.X, workSize.Y
}

// IsKeyPressed checks if a key was pressed this frame.
func IsKeyPressed(key imgui.Key) bool {
	return imgui.IsKeyChordPressed(imgui.KeyChord(key))
}
