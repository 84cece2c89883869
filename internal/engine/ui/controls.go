package ui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/viewer"
)

// Slider ranges.
const (
	rotateRange = 180
	camRange    = 70000
	lookatRange = 10000
)

// Actions are requests from the controls panel that need the caller.
type Actions struct {
	Screenshot  bool
	OpenTexture bool
	Layer       texture.Layer
}

// ControlsPanel draws the viewer toggles, sliders and buttons.
type ControlsPanel struct {
	status   string
	statusAt time.Time
	layer    int32
}

// Notify shows msg under the buttons for a few seconds.
func (p *ControlsPanel) Notify(msg string) {
	p.status = msg
	p.statusAt = time.Now()
}

// Draw renders the panel contents into the current window.
func (p *ControlsPanel) Draw(v *viewer.Viewer) Actions {
	var act Actions
	c := v.Controls()

	imgui.Text(fmt.Sprintf("%.0f fps  frame %d", v.FPS(), v.Frame()))
	imgui.TextDisabled(fmt.Sprintf("%s camera, %d objects", c.Camera, c.Objects))
	imgui.Separator()

	if imgui.CollapsingHeaderTreeNodeFlagsV("Rendering", imgui.TreeNodeFlagsDefaultOpen) {
		p.toggle(v, "Light", viewer.ToggleLight, c.Toggles.Light)
		p.toggle(v, "Animate", viewer.ToggleAnimate, c.Toggles.Animate)
		p.toggle(v, "Checkerboard", viewer.ToggleCheckerboard, c.Toggles.Checkerboard)
		imgui.BeginDisabledV(c.Toggles.Checkerboard)
		p.toggle(v, "Clouds", viewer.ToggleClouds, c.Toggles.Clouds)
		p.toggle(v, "Borders", viewer.ToggleBorders, c.Toggles.Borders)
		imgui.EndDisabled()
	}

	if imgui.CollapsingHeaderTreeNodeFlagsV("Object", imgui.TreeNodeFlagsDefaultOpen) {
		p.slider(v, "Rotate X", viewer.RotateX, c.Sliders.Rotate[0], rotateRange)
		p.slider(v, "Rotate Y", viewer.RotateY, c.Sliders.Rotate[1], 360)
		p.slider(v, "Rotate Z", viewer.RotateZ, c.Sliders.Rotate[2], rotateRange)
	}

	if c.Camera == viewer.Free && imgui.CollapsingHeaderTreeNodeFlagsV("Camera", imgui.TreeNodeFlagsDefaultOpen) {
		p.slider(v, "Cam X", viewer.CamX, c.Sliders.Cam[0], camRange)
		p.slider(v, "Cam Y", viewer.CamY, c.Sliders.Cam[1], camRange)
		p.slider(v, "Cam Z", viewer.CamZ, c.Sliders.Cam[2], camRange)
		p.slider(v, "Look X", viewer.LookatX, c.Sliders.Lookat[0], lookatRange)
		p.slider(v, "Look Y", viewer.LookatY, c.Sliders.Lookat[1], lookatRange)
		p.slider(v, "Look Z", viewer.LookatZ, c.Sliders.Lookat[2], lookatRange)
	}

	if imgui.CollapsingHeaderTreeNodeFlagsV("Textures", imgui.TreeNodeFlagsNone) {
		for _, s := range v.Slots().All() {
			imgui.Text(fmt.Sprintf("%-8s %-7s %dx%d", s.Layer, s.State, s.Width, s.Height))
			if s.Err != nil && imgui.IsItemHovered() {
				imgui.SetTooltip(s.Err.Error())
			}
		}
		imgui.SliderIntV("Layer", &p.layer, 0, int32(texture.Water), texture.Layer(p.layer).String(), imgui.SliderFlagsNone)
		if imgui.ButtonV("Open Texture...", imgui.NewVec2(-1, 0)) {
			act.OpenTexture = true
			act.Layer = texture.Layer(p.layer)
		}
	}

	imgui.Separator()
	if imgui.ButtonV("Reset", imgui.NewVec2(-1, 0)) {
		v.Reset()
	}
	if imgui.ButtonV("Add Object", imgui.NewVec2(-1, 0)) {
		if o, err := v.AddObject(); err != nil {
			p.Notify(err.Error())
		} else {
			p.Notify("added " + o.Name)
		}
	}
	if imgui.ButtonV("Screenshot (F12)", imgui.NewVec2(-1, 0)) {
		act.Screenshot = true
	}

	if p.status != "" && time.Since(p.statusAt) < 4*time.Second {
		imgui.Spacing()
		imgui.TextWrapped(p.status)
	}
	return act
}

func (p *ControlsPanel) toggle(v *viewer.Viewer, label, name string, on bool) {
	if imgui.Checkbox(label, &on) {
		if err := v.SetToggle(name, on); err != nil {
			p.Notify(err.Error())
		}
	}
}

func (p *ControlsPanel) slider(v *viewer.Viewer, label, name string, value, limit float32) {
	if imgui.SliderFloatV(label, &value, -limit, limit, "%.0f", imgui.SliderFlagsNone) {
		if err := v.SetSlider(name, value); err != nil {
			p.Notify(err.Error())
		}
	}
}
