// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// GlobeVertexShader transforms sphere vertices into eye space.
//
//go:embed globe.vert
var GlobeVertexShader string

// GlobeFragmentShader blends the texture layers and applies Phong lighting.
//
//go:embed globe.frag
var GlobeFragmentShader string
