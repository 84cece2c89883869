package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/meshbuf"
	"github.com/Faultbox/midgard-globe/internal/scene"
)

// NumSamplers is the number of texture units the shader blends.
const NumSamplers = 4

// TextureState says which sampler slots are enabled and what they sample.
type TextureState struct {
	Enable  [NumSamplers]bool           `json:"enable"`
	Layers  [NumSamplers]texture.Layer  `json:"layers"`
	Handles [NumSamplers]texture.Handle `json:"handles"`
}

// Textured reports whether any sampler is enabled.
func (t TextureState) Textured() bool {
	for _, e := range t.Enable {
		if e {
			return true
		}
	}
	return false
}

// DrawCall is one indexed draw with its uniforms.
type DrawCall struct {
	Object         string            `json:"object"`
	ModelView      mgl32.Mat4        `json:"modelView"`
	NormalMatrix   mgl32.Mat3        `json:"normalMatrix"`
	Products       []scene.Products  `json:"products"`
	LightPositions []mgl32.Vec4      `json:"lightPositions"`
	Shininess      float32           `json:"shininess"`
	Range          meshbuf.DrawRange `json:"range"`
}

// FrameCommands is everything a backend needs to draw one frame.
type FrameCommands struct {
	Frame        uint64       `json:"frame"`
	Projection   mgl32.Mat4   `json:"projection"`
	View         mgl32.Mat4   `json:"view"`
	Eye          mgl32.Vec3   `json:"eye"`
	LightEnabled bool         `json:"lightEnabled"`
	Textures     TextureState `json:"textures"`
	Draws        []DrawCall   `json:"draws"`
}
