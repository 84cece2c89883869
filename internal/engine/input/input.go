// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventDrag
	EventWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int

	// Drag deltas in pixels while the left button is held.
	DX, DY float32

	// Wheel is positive when scrolled away from the user.
	Wheel float32
}

// Input turns SDL events into viewer-level events.
type Input struct {
	events   []Event
	dragging bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events. It returns true when the window should close.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
			}

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				i.dragging = e.Type == sdl.MOUSEBUTTONDOWN
			}

		case *sdl.MouseMotionEvent:
			if i.dragging && (e.XRel != 0 || e.YRel != 0) {
				i.events = append(i.events, Event{
					Type: EventDrag,
					DX:   float32(e.XRel),
					DY:   float32(e.YRel),
				})
			}

		case *sdl.MouseWheelEvent:
			y := e.Y
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				y = -y
			}
			if y != 0 {
				i.events = append(i.events, Event{Type: EventWheel, Wheel: float32(y)})
			}
		}
	}
	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
