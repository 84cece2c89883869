package viewer

import (
	"fmt"
	"strings"
)

// Command is a named one-shot action, for key bindings and menus.
type Command string

const (
	CmdReset     Command = "reset"
	CmdAddObject Command = "add-object"
	CmdZoomIn    Command = "zoom-in"
	CmdZoomOut   Command = "zoom-out"

	// Flip commands invert a toggle: "flip-" + toggle name.
	CmdFlipLight        Command = "flip-" + ToggleLight
	CmdFlipAnimate      Command = "flip-" + ToggleAnimate
	CmdFlipCheckerboard Command = "flip-" + ToggleCheckerboard
	CmdFlipClouds       Command = "flip-" + ToggleClouds
	CmdFlipBorders      Command = "flip-" + ToggleBorders
)

// Toggle returns the value of a toggle by name.
func (v *Viewer) Toggle(name string) (bool, error) {
	switch name {
	case ToggleLight:
		return v.toggles.Light, nil
	case ToggleAnimate:
		return v.toggles.Animate, nil
	case ToggleCheckerboard:
		return v.toggles.Checkerboard, nil
	case ToggleClouds:
		return v.toggles.Clouds, nil
	case ToggleBorders:
		return v.toggles.Borders, nil
	}
	return false, fmt.Errorf("%w: toggle %q", ErrUnknownControl, name)
}

// Execute runs cmd.
func (v *Viewer) Execute(cmd Command) error {
	switch cmd {
	case CmdReset:
		v.Reset()
		return nil
	case CmdAddObject:
		_, err := v.AddObject()
		return err
	case CmdZoomIn:
		v.HandleZoom(-1)
		return nil
	case CmdZoomOut:
		v.HandleZoom(1)
		return nil
	}
	if name, ok := strings.CutPrefix(string(cmd), "flip-"); ok {
		on, err := v.Toggle(name)
		if err != nil {
			return err
		}
		return v.SetToggle(name, !on)
	}
	return fmt.Errorf("%w: command %q", ErrUnknownControl, cmd)
}
