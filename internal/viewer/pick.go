package viewer

import (
	"github.com/Faultbox/midgard-globe/internal/engine/picking"
)

// PickResult is the globe point under a screen position.
type PickResult struct {
	Object   string  `json:"object"`
	Lat      float32 `json:"lat"`
	Lon      float32 `json:"lon"`
	Distance float32 `json:"distance"`
}

// Pick casts a ray through pixel (x, y) of a width×height view, origin
// top-left, and returns the nearest object hit. The view should have the
// aspect last passed to Resize.
func (v *Viewer) Pick(x, y, width, height float32) (PickResult, bool) {
	if width <= 0 || height <= 0 {
		return PickResult{}, false
	}
	inv := v.proj.Matrix().Mul4(v.cam.View()).Inv()
	ray := picking.ScreenToRay(x, y, width, height, inv)

	var best PickResult
	found := false
	for _, o := range v.scene.Objects() {
		if o.Mesh == nil {
			continue
		}
		h, ok := picking.PickSphere(ray, o.Transform.World())
		if !ok || (found && h.Distance >= best.Distance) {
			continue
		}
		best = PickResult{Object: o.Name, Lat: h.Lat, Lon: h.Lon, Distance: h.Distance}
		found = true
	}
	return best, found
}
