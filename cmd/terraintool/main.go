// terraintool is a CLI utility for inspecting splay layouts and heightmaps.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/splay-terrain/internal/engine/material"
	"github.com/Faultbox/splay-terrain/internal/engine/texture"
	"github.com/Faultbox/splay-terrain/internal/lod"
	"github.com/Faultbox/splay-terrain/internal/logger"
	"github.com/Faultbox/splay-terrain/pkg/heightmap"
	"github.com/Faultbox/splay-terrain/pkg/splay"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "layout":
		cmdLayout(args)
	case "elevation", "elev":
		cmdElevation(args)
	case "gen":
		cmdGen(args)
	case "load":
		cmdLoad(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terraintool - splay terrain utility

Usage:
  terraintool <command> [options]

Commands:
  layout [-levels N] [-viewport V] [-format table|yaml]   Print the tile layout
  elevation [-world W] [-max E] <heightmap> <x> <y>       Query terrain height
  gen [-size N] [-seed S] [-octaves O] <out.png>          Write a synthetic heightmap
  load [-levels N] <heightmap>                            Build the LOD without a GPU

Examples:
  terraintool layout -levels 3
  terraintool layout -format yaml > splay.yaml
  terraintool elevation -world 32768 -max 200 island.png 16384 16384
  terraintool gen -size 1024 -seed 7 island.png`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// layoutEntry is the YAML form of one tile.
type layoutEntry struct {
	Index int            `yaml:"index"`
	Ring  int            `yaml:"ring"`
	Name  string         `yaml:"name"`
	X     float64        `yaml:"x"`
	Y     float64        `yaml:"y"`
	Scale float64        `yaml:"scale"`
	Edge  string         `yaml:"edge"`
	Mask  splay.EdgeMask `yaml:"mask"`
}

func cmdLayout(args []string) {
	fs := flag.NewFlagSet("layout", flag.ExitOnError)
	levels := fs.Int("levels", lod.DefaultLevels, "Number of rings around the centre block")
	viewport := fs.Float64("viewport", material.DefaultConstants().ViewportSize, "Viewport size")
	format := fs.String("format", "table", "Output format: table or yaml")
	fs.Parse(args)

	descs := splay.Build(*viewport, *levels)

	switch *format {
	case "yaml":
		entries := make([]layoutEntry, len(descs))
		for i, d := range descs {
			entries[i] = layoutEntry{
				Index: d.Index,
				Ring:  d.Ring,
				Name:  lod.TileName(d.Position),
				X:     d.Position.X(),
				Y:     d.Position.Y(),
				Scale: d.Scale,
				Edge:  d.Edge.String(),
				Mask:  d.Edge,
			}
		}
		out, err := yaml.Marshal(entries)
		if err != nil {
			fail(err)
		}
		os.Stdout.Write(out)

	case "table":
		lo, hi := splay.Bounds(descs)
		fmt.Printf("Viewport: %g\n", *viewport)
		fmt.Printf("Tiles:    %d (%d rings)\n", len(descs), len(splay.Rings(descs))-1)
		fmt.Printf("Coverage: (%g, %g) to (%g, %g)\n", lo.X(), lo.Y(), hi.X(), hi.Y())
		fmt.Println()
		fmt.Printf("%5s %4s %10s %10s %8s  %s\n", "INDEX", "RING", "X", "Y", "SCALE", "EDGE")
		for _, d := range descs {
			fmt.Printf("%5d %4d %10g %10g %8g  %s\n",
				d.Index, d.Ring, d.Position.X(), d.Position.Y(), d.Scale, d.Edge)
		}

	default:
		fail(fmt.Errorf("unknown format %q", *format))
	}
}

func cmdElevation(args []string) {
	fs := flag.NewFlagSet("elevation", flag.ExitOnError)
	world := fs.Float64("world", material.DefaultConstants().WorldSizeX, "World size on both axes")
	maxElev := fs.Float64("max", material.DefaultConstants().MaxElevation, "Maximum elevation")
	descale := fs.Int("descale", 1, "Heightmap downscale factor")
	fs.Parse(args)

	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool elevation [options] <heightmap> <x> <y>")
		os.Exit(1)
	}

	raster, err := heightmap.Load(fs.Arg(0), *descale)
	if err != nil {
		fail(err)
	}
	x, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		fail(fmt.Errorf("x: %w", err))
	}
	y, err := strconv.ParseFloat(fs.Arg(2), 64)
	if err != nil {
		fail(fmt.Errorf("y: %w", err))
	}

	w := heightmap.World{SizeX: *world, SizeY: *world, MaxElevation: *maxElev}
	fmt.Printf("Raster:       %dx%d\n", raster.Width, raster.Height)
	fmt.Printf("Elevation:    %.3f\n", raster.Elevation(x, y, w))
	fmt.Printf("Interpolated: %.3f\n", raster.InterpolatedElevation(x, y, w))
}

func cmdGen(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	size := fs.Int("size", 512, "Image width and height")
	seed := fs.Int64("seed", 1, "Noise seed")
	octaves := fs.Int("octaves", 6, "Noise octaves")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool gen [options] <out.png>")
		os.Exit(1)
	}

	raster, err := heightmap.Synthesize(*size, *size, *seed, *octaves)
	if err != nil {
		fail(err)
	}

	f, err := os.Create(fs.Arg(0))
	if err != nil {
		fail(err)
	}
	defer f.Close()

	if err := png.Encode(f, raster.Image()); err != nil {
		fail(fmt.Errorf("encoding PNG: %w", err))
	}
	fmt.Printf("Wrote %s (%dx%d, seed %d)\n", fs.Arg(0), *size, *size, *seed)
}

func cmdLoad(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	levels := fs.Int("levels", lod.DefaultLevels, "Number of rings around the centre block")
	debug := fs.Bool("debug", false, "Log every phase")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool load [options] <heightmap>")
		os.Exit(1)
	}

	level := "warn"
	if *debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fail(err)
	}
	defer logger.Sync()

	img, err := texture.Load(fs.Arg(0))
	if err != nil {
		fail(err)
	}

	renderer := lod.NewHeadlessRenderer()
	mgr, err := lod.New(renderer, lod.Options{
		Load:      lod.LoadManual,
		Levels:    *levels,
		LevelsSet: true,
		Heightmap: img,
		OnProgress: func(phase string, done, total int) {
			logger.Debug("progress", zap.String("phase", phase), zap.Int("done", done), zap.Int("total", total))
		},
	})
	if err != nil {
		fail(err)
	}
	if err := mgr.Load(); err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := mgr.Run(ctx); err != nil {
		fail(err)
	}

	tiles := mgr.Tiles()
	fmt.Printf("State:     %s\n", mgr.State())
	fmt.Printf("Tiles:     %d attached\n", len(renderer.Attached()))
	fmt.Printf("Resources: %d live\n", renderer.LiveResources())
	if len(tiles) > 0 {
		last := tiles[len(tiles)-1]
		fmt.Printf("Outermost: %s scale %g\n", last.Name, last.Scale)
	}
	mgr.Dispose(false)
}
