// meshtool is a CLI utility for inspecting and exporting globe meshes.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/geometry"
	"github.com/Faultbox/midgard-globe/internal/meshbuf"
	"github.com/Faultbox/midgard-globe/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "stats":
		err = cmdStats(args)
	case "pack":
		err = cmdPack(args)
	case "obj":
		err = cmdOBJ(args)
	case "checker":
		err = cmdChecker(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - globe mesh utility

Usage:
  meshtool <command> [options]

Commands:
  stats [-algo a] [-resolution n] [-subdivisions n]   Show mesh counts and bounds
  pack [-vertices n] [-indices n] [-o file] spec...   Pack meshes into shared buffers
  obj [-algo a] [-resolution n] [-subdivisions n] out.obj
                                                      Export a mesh as Wavefront OBJ
  checker [-size n] [-squares n] out.png              Write the checkerboard texture

A pack spec is name=algo:param, e.g. earth=latlon:48 or moon=icosphere:3.

Examples:
  meshtool stats -algo icosphere -subdivisions 4
  meshtool pack -o globe.bin earth=latlon:48 moon=icosphere:2
  meshtool obj -resolution 16 sphere.obj`)
}

// meshFlags registers the generator selection flags on fs.
func meshFlags(fs *flag.FlagSet) func() (geometry.Generator, error) {
	algo := fs.String("algo", "latlon", "Tessellation: "+strings.Join(geometry.Algorithms(), ", "))
	res := fs.Int("resolution", geometry.DefaultResolution, "Lat/lon band count")
	sub := fs.Int("subdivisions", geometry.DefaultSubdivisions, "Icosphere subdivision depth")
	pole := fs.String("pole", "midpoint", "Pole texcoord mode: midpoint or center")
	return func() (geometry.Generator, error) {
		pm, err := geometry.ParsePoleMode(*pole)
		if err != nil {
			return nil, err
		}
		return geometry.New(*algo, geometry.Options{Resolution: *res, Subdivisions: *sub, Pole: pm})
	}
}

func cmdStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	gen := meshFlags(fs)
	fs.Parse(args)

	g, err := gen()
	if err != nil {
		return err
	}
	geo, err := g.Generate()
	if err != nil {
		return err
	}
	lo, hi := geo.Bounds()

	fmt.Printf("Algorithm: %s\n", g.Name())
	fmt.Printf("Vertices:  %d\n", geo.VertexCount())
	fmt.Printf("Triangles: %d\n", geo.TriangleCount())
	fmt.Printf("Indices:   %d\n", len(geo.Indices))
	fmt.Printf("Bounds:    [%.3f %.3f %.3f] - [%.3f %.3f %.3f]\n", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	fmt.Printf("Size:      %.2f KB\n", float64(meshBytes(geo))/1024)
	return nil
}

// meshBytes is the GPU footprint of geo: 8 floats per vertex plus indices.
func meshBytes(geo *geometry.Geometry) int {
	return geo.VertexCount()*8*4 + len(geo.Indices)*meshbuf.IndexSize
}

// parseSpec parses name=algo:param.
func parseSpec(spec string) (string, geometry.Generator, error) {
	name, rest, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("bad spec %q: want name=algo:param", spec)
	}
	algo, param, _ := strings.Cut(rest, ":")
	opts := geometry.DefaultOptions()
	if param != "" {
		var n int
		if _, err := fmt.Sscanf(param, "%d", &n); err != nil {
			return "", nil, fmt.Errorf("bad spec %q: %w", spec, err)
		}
		opts.Resolution, opts.Subdivisions = n, n
	}
	g, err := geometry.New(algo, opts)
	return name, g, err
}

func cmdPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	vertices := fs.Int("vertices", meshbuf.DefaultMaxVertices, "Vertex capacity")
	indices := fs.Int("indices", meshbuf.DefaultMaxIndices, "Index capacity")
	out := fs.String("o", "", "Write the packed buffers to this file")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return errors.New("usage: meshtool pack [-vertices n] [-indices n] [-o file] name=algo:param...")
	}

	w, err := meshbuf.NewWriter(meshbuf.Capacity{Vertices: *vertices, Indices: *indices})
	if err != nil {
		return err
	}
	for _, spec := range fs.Args() {
		name, g, err := parseSpec(spec)
		if err != nil {
			return err
		}
		geo, err := g.Generate()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, err := meshbuf.Pack(w, name, geo); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	fmt.Printf("%-12s %10s %10s %10s %10s\n", "MESH", "V.OFFSET", "VERTICES", "I.OFFSET", "INDICES")
	for _, m := range w.Meshes() {
		fmt.Printf("%-12s %10d %10d %10d %10d\n", m.Name, m.VertexOffset, m.VertexCount, m.IndexOffset, m.IndexCount)
	}
	u, c := w.Usage(), w.Capacity()
	fmt.Printf("\nUsed %d/%d vertices, %d/%d indices\n", u.Vertices, c.Vertices, u.Indices, c.Indices)

	if *out == "" {
		return nil
	}
	data, err := server.EncodeBuffers(w)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%.2f KB)\n", *out, float64(len(data))/1024)
	return nil
}

func cmdOBJ(args []string) error {
	fs := flag.NewFlagSet("obj", flag.ExitOnError)
	gen := meshFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: meshtool obj [options] out.obj")
	}
	g, err := gen()
	if err != nil {
		return err
	}
	geo, err := g.Generate()
	if err != nil {
		return err
	}

	f, err := os.Create(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := writeOBJ(bufio.NewWriter(f), g.Name(), geo); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %d vertices, %d triangles\n", fs.Arg(0), geo.VertexCount(), geo.TriangleCount())
	return f.Close()
}

// writeOBJ writes geo with positions, texcoords and normals sharing one
// index per vertex.
func writeOBJ(w *bufio.Writer, name string, geo *geometry.Geometry) error {
	fmt.Fprintf(w, "o %s\n", name)
	for _, p := range geo.Positions {
		fmt.Fprintf(w, "v %g %g %g\n", p[0], p[1], p[2])
	}
	for _, t := range geo.TexCoords {
		fmt.Fprintf(w, "vt %g %g\n", t[0], t[1])
	}
	for _, n := range geo.Normals {
		fmt.Fprintf(w, "vn %g %g %g\n", n[0], n[1], n[2])
	}
	for i := 0; i+2 < len(geo.Indices); i += 3 {
		a, b, c := geo.Indices[i]+1, geo.Indices[i+1]+1, geo.Indices[i+2]+1
		fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}
	return w.Flush()
}

func cmdChecker(args []string) error {
	fs := flag.NewFlagSet("checker", flag.ExitOnError)
	size := fs.Int("size", 512, "Image size in pixels")
	squares := fs.Int("squares", 32, "Squares per side")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: meshtool checker [-size n] [-squares n] out.png")
	}
	f, err := os.Create(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, texture.Checkerboard(*size, *squares)); err != nil {
		return err
	}
	return f.Close()
}
