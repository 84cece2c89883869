package server

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/meshbuf"
	"github.com/Faultbox/midgard-globe/internal/viewer"
)

// Message types.
const (
	TypeInit     = "init"
	TypeFrame    = "frame"
	TypeTextures = "textures"
	TypeError    = "error"
	TypeDrag     = "drag"
	TypeZoom     = "zoom"
	TypeToggle   = "toggle"
	TypeSlider   = "slider"
	TypeReset    = "reset"
	TypeAdd      = "add"
	TypeResize   = "resize"
	TypeTexture  = "texture"
	TypePick     = "pick"
)

// buffersMagic starts the binary buffers message.
const buffersMagic = "GLBF"

const buffersVersion = 1

// InitMessage is the first message of a session. The binary buffers
// message follows it.
type InitMessage struct {
	Type     string            `json:"type"`
	Meshes   []*meshbuf.Mesh   `json:"meshes"`
	Capacity meshbuf.Capacity  `json:"capacity"`
	Textures map[string]string `json:"textures"` // layer name -> URL
	Controls viewer.Controls   `json:"controls"`
	TickRate int               `json:"tickRate"`
}

// FrameMessage carries one tick's draw commands and the control state.
type FrameMessage struct {
	Type     string                `json:"type"`
	Frame    *viewer.FrameCommands `json:"frame"`
	Controls viewer.Controls       `json:"controls"`
	FPS      float64               `json:"fps"`
}

// TexturesMessage announces a changed set of published textures.
type TexturesMessage struct {
	Type     string            `json:"type"`
	Textures map[string]string `json:"textures"`
}

// PickMessage answers a pick event. Hit is false when the position is
// off the globe.
type PickMessage struct {
	Type   string             `json:"type"`
	Hit    bool               `json:"hit"`
	Result *viewer.PickResult `json:"result,omitempty"`
}

// ErrorMessage reports a rejected client event.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ClientMessage is any event sent by the browser. Fields not used by a
// type are left zero.
type ClientMessage struct {
	Type   string  `json:"type"`
	DX     float32 `json:"dx,omitempty"`
	DY     float32 `json:"dy,omitempty"`
	Delta  float32 `json:"delta,omitempty"`
	Name   string  `json:"name,omitempty"`
	On     bool    `json:"on,omitempty"`
	Value  float32 `json:"value,omitempty"`
	X      float32 `json:"x,omitempty"`
	Y      float32 `json:"y,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Layer  string  `json:"layer,omitempty"`
	OK     bool    `json:"ok,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Apply performs the event on v. Pick events are answered by the session
// and are not handled here.
func (m *ClientMessage) Apply(v *viewer.Viewer) error {
	switch m.Type {
	case TypeDrag:
		v.HandleDrag(m.DX, m.DY)
	case TypeZoom:
		v.HandleZoom(m.Delta)
	case TypeToggle:
		return v.SetToggle(m.Name, m.On)
	case TypeSlider:
		return v.SetSlider(m.Name, m.Value)
	case TypeReset:
		v.Reset()
	case TypeAdd:
		_, err := v.AddObject()
		return err
	case TypeResize:
		v.Resize(m.Width, m.Height)
	case TypeTexture:
		l, err := texture.ParseLayer(m.Layer)
		if err != nil {
			return err
		}
		if !m.OK {
			v.TextureFailed(l, fmt.Errorf("browser: %s", m.Error))
			return nil
		}
		v.TextureReady(l, browserHandle(l), m.Width, m.Height)
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// browserHandle is the handle a layer's texture has in the page. Zero is
// never a valid handle.
func browserHandle(l texture.Layer) texture.Handle {
	return texture.Handle(l + 1)
}

// EncodeBuffers serializes the written part of w's buffers:
//
//	"GLBF" | version u32 | positions u32 | normals u32 | texcoords u32 | indices u32
//	positions f32... | normals f32... | texcoords f32... | indices u32...
//
// Counts are in scalars; everything is little-endian.
func EncodeBuffers(w *meshbuf.Writer) ([]byte, error) {
	pos, nor, tex, idx := w.Positions(), w.Normals(), w.TexCoords(), w.Indices()

	var buf bytes.Buffer
	buf.Grow(len(buffersMagic) + 5*4 + 4*(len(pos)+len(nor)+len(tex)+len(idx)))
	buf.WriteString(buffersMagic)

	header := []uint32{buffersVersion, uint32(len(pos)), uint32(len(nor)), uint32(len(tex)), uint32(len(idx))}
	for _, v := range []any{header, pos, nor, tex, idx} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeBuffers is the inverse of EncodeBuffers.
func DecodeBuffers(data []byte) (pos, nor, tex []float32, idx []uint32, err error) {
	r := bytes.NewReader(data)
	magic := make([]byte, len(buffersMagic))
	if _, err = r.Read(magic); err != nil || string(magic) != buffersMagic {
		return nil, nil, nil, nil, fmt.Errorf("buffers: bad magic")
	}
	var header [5]uint32
	if err = binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("buffers: %w", err)
	}
	if header[0] != buffersVersion {
		return nil, nil, nil, nil, fmt.Errorf("buffers: unsupported version %d", header[0])
	}
	if want := 4 * int64(header[1]+header[2]+header[3]+header[4]); int64(r.Len()) != want {
		return nil, nil, nil, nil, fmt.Errorf("buffers: expected %d payload bytes, have %d", want, r.Len())
	}
	pos = make([]float32, header[1])
	nor = make([]float32, header[2])
	tex = make([]float32, header[3])
	idx = make([]uint32, header[4])
	for _, v := range []any{pos, nor, tex, idx} {
		if err = binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("buffers: %w", err)
		}
	}
	return pos, nor, tex, idx, nil
}
