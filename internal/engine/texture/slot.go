package texture

import (
	"errors"
	"fmt"
	"sync"
)

// Layer identifies one of the globe's texture layers.
type Layer int

const (
	Earth Layer = iota
	Clouds
	Borders
	Water
	Checker

	NumLayers
)

var layerNames = [NumLayers]string{"earth", "clouds", "borders", "water", "checker"}

func (l Layer) String() string {
	if l < 0 || l >= NumLayers {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// ParseLayer maps a layer name to a Layer.
func ParseLayer(s string) (Layer, error) {
	for i, n := range layerNames {
		if n == s {
			return Layer(i), nil
		}
	}
	return 0, fmt.Errorf("texture: unknown layer %q", s)
}

// State is the load state of a slot.
type State int

const (
	Pending State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "pending"
}

// Handle is an opaque backend texture reference (a GL texture name, or a
// browser-side texture index).
type Handle uint32

// ErrNotReady is returned by Slots.Handle for a slot that is not Ready.
var ErrNotReady = errors.New("texture: not ready")

// Slot is the state of one layer.
type Slot struct {
	Layer  Layer
	Source string
	State  State
	Handle Handle
	Width  int
	Height int
	Err    error
}

// Slots tracks every layer. Transitions: Pending -> Ready or Failed, and
// any state -> Pending on reload. Slots is safe for concurrent use.
type Slots struct {
	mu    sync.RWMutex
	slots [NumLayers]Slot
}

// NewSlots returns all layers in the Pending state.
func NewSlots() *Slots {
	s := &Slots{}
	for i := range s.slots {
		s.slots[i] = Slot{Layer: Layer(i)}
	}
	return s
}

// Get returns a copy of a layer's slot.
func (s *Slots) Get(l Layer) Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[l]
}

// Ready reports whether a layer can be sampled.
func (s *Slots) Ready(l Layer) bool {
	return s.Get(l).State == Ready
}

// Handle returns the backend handle of a ready layer.
func (s *Slots) Handle(l Layer) (Handle, error) {
	slot := s.Get(l)
	if slot.State != Ready {
		return 0, fmt.Errorf("%w: %s is %s", ErrNotReady, l, slot.State)
	}
	return slot.Handle, nil
}

// MarkPending resets a layer to Pending, e.g. before a reload.
func (s *Slots) MarkPending(l Layer, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[l] = Slot{Layer: l, Source: source, State: Pending}
}

// MarkReady records a successful upload.
func (s *Slots) MarkReady(l Layer, h Handle, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := &s.slots[l]
	slot.State = Ready
	slot.Handle = h
	slot.Width, slot.Height = width, height
	slot.Err = nil
}

// MarkFailed records a load error.
func (s *Slots) MarkFailed(l Layer, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := &s.slots[l]
	slot.State = Failed
	slot.Handle = 0
	slot.Err = err
}

// All returns a snapshot of every slot.
func (s *Slots) All() [NumLayers]Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots
}
