package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/internal/meshbuf"
)

// EarthRadius is the globe radius in world units (kilometres).
const EarthRadius = 6378

// Polar flattening applied to the default globe's Y scale.
const earthFlattening = 18

// ErrUnknownMesh is returned when an object names a mesh that was never packed.
var ErrUnknownMesh = errors.New("scene: unknown mesh")

// Config configures the default scene.
type Config struct {
	// Mesh is the name of the mesh the default globe uses.
	Mesh string
	// LightSpace is the frame of the default light.
	LightSpace Space
	// LightOrbit, when non-zero, spins the light about +Y in degrees per second.
	LightOrbit float32
	// MaxObjects caps AddObject. Zero means unlimited.
	MaxObjects int
	// Sun, when set, places the default world-space light over this
	// latitude and longitude in degrees.
	Sun *[2]float32
}

// Scene is the set of objects and lights being viewed.
type Scene struct {
	cfg     Config
	meshes  map[string]*meshbuf.Mesh
	objects []*Object
	lights  []*Light
	current int
	added   int
	log     *zap.Logger
}

// New builds a scene over the packed meshes and populates the defaults.
func New(cfg Config, meshes map[string]*meshbuf.Mesh) (*Scene, error) {
	if _, ok := meshes[cfg.Mesh]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMesh, cfg.Mesh)
	}
	s := &Scene{
		cfg:    cfg,
		meshes: meshes,
		log:    logger.Named("scene"),
	}
	s.lights = []*Light{s.defaultLight()}
	s.Reset()
	return s, nil
}

func (s *Scene) defaultLight() *Light {
	l := DefaultLight()
	l.Space = s.cfg.LightSpace
	if sun := s.cfg.Sun; sun != nil && l.Space == World {
		l.Position = SunPosition(sun[0], sun[1], sunDistance)
	}
	if s.cfg.LightOrbit != 0 {
		l.Orbit = &Orbit{Axis: mgl32.Vec3{0, 1, 0}, DegPerSec: s.cfg.LightOrbit}
	}
	if l.Space == Eye {
		// Camera-relative light sits to the right of the viewer.
		l.Position = mgl32.Vec3{1000, 0, 0}
	}
	return l
}

// Earth returns the default globe object for mesh.
func Earth(mesh *meshbuf.Mesh) *Object {
	o := NewObject("earth", mesh)
	o.Transform.Scale = mgl32.Vec3{EarthRadius, EarthRadius - earthFlattening, EarthRadius}
	o.Transform.Rotate = mgl32.Vec3{0, 0, 15}
	o.Material.Diffuse = mgl32.Vec4{1, 1, 1, 1}
	o.Material.Specular = mgl32.Vec4{0.2, 0.2, 0.2, 1}
	o.Material.Shininess = 20
	return o
}

// Reset restores the default object set. Lights keep their state.
func (s *Scene) Reset() {
	s.objects = []*Object{Earth(s.meshes[s.cfg.Mesh])}
	s.current = 0
	s.added = 0
	s.log.Debug("scene reset", zap.Int("objects", len(s.objects)))
}

// AddObject appends a new object using the named mesh and makes it current.
func (s *Scene) AddObject(meshName string) (*Object, error) {
	m, ok := s.meshes[meshName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMesh, meshName)
	}
	if s.cfg.MaxObjects > 0 && len(s.objects) >= s.cfg.MaxObjects {
		return nil, fmt.Errorf("scene: object limit %d reached", s.cfg.MaxObjects)
	}
	s.added++
	o := NewObject(fmt.Sprintf("%s-%d", meshName, s.added), m)
	s.objects = append(s.objects, o)
	s.current = len(s.objects) - 1
	s.log.Debug("object added", zap.String("name", o.Name), zap.Stringer("mesh", m))
	return o, nil
}

// Objects returns the objects in draw order. The slice must not be modified.
func (s *Scene) Objects() []*Object { return s.objects }

// Lights returns the lights. The slice must not be modified.
func (s *Scene) Lights() []*Light { return s.lights }

// Current returns the object UI edits apply to, or nil for an empty scene.
func (s *Scene) Current() *Object {
	if s.current < 0 || s.current >= len(s.objects) {
		return nil
	}
	return s.objects[s.current]
}

// Select makes object i current.
func (s *Scene) Select(i int) error {
	if i < 0 || i >= len(s.objects) {
		return fmt.Errorf("scene: object %d out of range [0,%d)", i, len(s.objects))
	}
	s.current = i
	return nil
}

// Mesh returns a packed mesh by name.
func (s *Scene) Mesh(name string) (*meshbuf.Mesh, bool) {
	m, ok := s.meshes[name]
	return m, ok
}

// Step advances light orbits.
func (s *Scene) Step(dt time.Duration) {
	for _, l := range s.lights {
		l.Step(dt)
	}
}
