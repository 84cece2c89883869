package viewer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/scene"
)

var (
	// ErrUnknownControl is returned for a slider or toggle name that does not exist.
	ErrUnknownControl = errors.New("viewer: unknown control")

	// ErrWrongCamera is returned for a control the active camera does not have.
	ErrWrongCamera = errors.New("viewer: control not available for this camera")
)

// Slider names.
const (
	RotateX = "rotate-x"
	RotateY = "rotate-y"
	RotateZ = "rotate-z"
	CamX    = "cam-x"
	CamY    = "cam-y"
	CamZ    = "cam-z"
	LookatX = "lookat-x"
	LookatY = "lookat-y"
	LookatZ = "lookat-z"
)

// Toggle names.
const (
	ToggleLight        = "light"
	ToggleAnimate      = "animate"
	ToggleCheckerboard = "checkerboard"
	ToggleClouds       = "clouds"
	ToggleBorders      = "borders"
)

// Sliders is a snapshot of every numeric control.
type Sliders struct {
	Rotate [3]float32 `json:"rotate"`
	Cam    [3]float32 `json:"cam"`
	Lookat [3]float32 `json:"lookat"`
}

// Controls is the full UI state, for panels that render it.
type Controls struct {
	Camera  CameraMode `json:"camera"`
	Toggles Toggles    `json:"toggles"`
	Sliders Sliders    `json:"sliders"`
	Objects int        `json:"objects"`
}

// Controls returns the current UI state.
func (v *Viewer) Controls() Controls {
	c := Controls{
		Camera:  v.CameraMode(),
		Toggles: v.toggles,
		Objects: len(v.scene.Objects()),
	}
	if o := v.scene.Current(); o != nil {
		c.Sliders.Rotate = o.Transform.Rotate
	}
	if v.free != nil {
		c.Sliders.Cam = v.free.Eye()
		c.Sliders.Lookat = v.free.At()
	} else {
		c.Sliders.Cam = v.cam.Eye()
	}
	return c
}

// SetToggle sets a boolean control by name.
func (v *Viewer) SetToggle(name string, on bool) error {
	switch name {
	case ToggleLight:
		v.toggles.Light = on
	case ToggleAnimate:
		v.toggles.Animate = on
	case ToggleCheckerboard:
		v.toggles.Checkerboard = on
	case ToggleClouds:
		v.toggles.Clouds = on
	case ToggleBorders:
		v.toggles.Borders = on
	default:
		return fmt.Errorf("%w: toggle %q", ErrUnknownControl, name)
	}
	v.log.Debug("toggle", zap.String("name", name), zap.Bool("on", on))
	return nil
}

// SetSlider sets a numeric control by name. Rotation sliders edit the
// current object in degrees; camera sliders need the free camera.
func (v *Viewer) SetSlider(name string, value float32) error {
	switch name {
	case RotateX, RotateY, RotateZ:
		o := v.scene.Current()
		if o == nil {
			return fmt.Errorf("viewer: no object selected")
		}
		o.Transform.Rotate[axis(name)] = value
		return nil
	case CamX, CamY, CamZ, LookatX, LookatY, LookatZ:
		if v.free == nil {
			return fmt.Errorf("%w: %q needs the free camera", ErrWrongCamera, name)
		}
		if name[0] == 'c' {
			v.free.SetEye(axis(name), value)
		} else {
			v.free.SetAt(axis(name), value)
		}
		return nil
	}
	return fmt.Errorf("%w: slider %q", ErrUnknownControl, name)
}

func axis(name string) int {
	return int(name[len(name)-1] - 'x')
}

// HandleDrag forwards a mouse drag to the orbit camera. The free camera
// ignores it.
func (v *Viewer) HandleDrag(dx, dy float32) {
	if v.orbit != nil {
		v.orbit.HandleDrag(dx, dy)
	}
}

// HandleZoom forwards a wheel movement to the orbit camera.
func (v *Viewer) HandleZoom(delta float32) {
	if v.orbit != nil {
		v.orbit.HandleZoom(delta)
	}
}

// Reset restores the camera and the default objects.
func (v *Viewer) Reset() {
	v.cam.Reset()
	v.scene.Reset()
	v.log.Info("scene reset")
}

// AddObject adds an object using the configured mesh.
func (v *Viewer) AddObject() (*scene.Object, error) {
	return v.scene.AddObject(v.cfg.Mesh)
}
