package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/midgard-globe/internal/viewer"
)

// Viewport shows an offscreen texture and forwards mouse input over it to
// the viewer.
type Viewport struct {
	lastMouse imgui.Vec2
}

// Size returns the pixel size the panel's content region offers.
func (vp *Viewport) Size() (int32, int32) {
	avail := imgui.ContentRegionAvail()
	return int32(max(avail.X, 1)), int32(max(avail.Y, 1))
}

// Draw displays texID at width×height and applies drag and wheel input.
func (vp *Viewport) Draw(v *viewer.Viewer, texID uint32, width, height int32) {
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(texID))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(float32(width), float32(height)),
		imgui.NewVec2(0, 1), // GL origin is bottom-left
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0, 0, 0, 1),
		imgui.NewVec4(1, 1, 1, 1),
	)

	if !imgui.IsItemHovered() {
		vp.lastMouse = imgui.MousePos()
		return
	}
	mouse := imgui.MousePos()
	if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
		v.HandleDrag(mouse.X-vp.lastMouse.X, mouse.Y-vp.lastMouse.Y)
	} else {
		origin := imgui.ItemRectMin()
		if hit, ok := v.Pick(mouse.X-origin.X, mouse.Y-origin.Y, float32(width), float32(height)); ok {
			imgui.SetTooltip(fmt.Sprintf("%s  %.2f°, %.2f°", hit.Object, hit.Lat, hit.Lon))
		}
	}
	vp.lastMouse = mouse

	// Wheel up moves closer.
	if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
		v.HandleZoom(-wheel)
	}
}
