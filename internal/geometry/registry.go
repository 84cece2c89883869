package geometry

import (
	"fmt"
	"sort"
)

// Options carries the parameters of every registered algorithm. Fields a
// given algorithm does not use are ignored.
type Options struct {
	Resolution   int
	Subdivisions int
	Pole         PoleMode
}

// DefaultOptions returns the stock parameters.
func DefaultOptions() Options {
	return Options{
		Resolution:   DefaultResolution,
		Subdivisions: DefaultSubdivisions,
		Pole:         PoleMidpoint,
	}
}

var algorithms = map[string]func(Options) Generator{
	"latlon": func(o Options) Generator {
		return LatLon{Resolution: o.Resolution, Pole: o.Pole}
	},
	"icosphere": func(o Options) Generator {
		return Icosphere{Subdivisions: o.Subdivisions}
	},
}

// New returns the generator registered under name.
func New(name string, opts Options) (Generator, error) {
	ctor, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownAlgorithm, name, Algorithms())
	}
	return ctor(opts), nil
}

// Algorithms lists the registered algorithm names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
