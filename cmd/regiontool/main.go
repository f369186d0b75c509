// regiontool is a CLI utility for inspecting and querying world region files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/worldedit/internal/editor"
	"github.com/Faultbox/worldedit/internal/engine/scene"
	"github.com/Faultbox/worldedit/internal/logger"
	"github.com/Faultbox/worldedit/internal/region"
	"github.com/Faultbox/worldedit/internal/worldfile"
	"github.com/Faultbox/worldedit/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "tree":
		cmdTree(args)
	case "query", "q":
		cmdQuery(args)
	case "check":
		cmdCheck(args)
	case "normalize", "fmt":
		cmdNormalize(args)
	case "watch":
		cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`regiontool - world region utility

Usage:
  regiontool <command> [options]

Commands:
  info <world>                 Show world defaults and regions
  tree <world>                 Print the outline tree
  query [-y h] <world> <x> <z> Resolve the environment at a camera position
  check <world>                Report regions that can never be active
  normalize <in> <out>         Re-encode a world file canonically
  watch [-v] <world> <x> <z>   Re-resolve whenever the file changes

Examples:
  regiontool info maps/fens.world
  regiontool query maps/fens.world 50 50
  regiontool watch -v maps/fens.world 12.5 -40`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func loadWorld(path string) *region.World {
	w, err := worldfile.Load(path)
	if err != nil {
		fail(err)
	}
	return w
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: regiontool info <world>")
		os.Exit(1)
	}
	w := loadWorld(args[0])

	fmt.Printf("World:   %s\n", w.Name)
	fmt.Printf("File:    %s\n", args[0])
	fmt.Printf("Regions: %d\n", w.Count())
	fmt.Println()
	fmt.Println("Defaults:")
	if w.Fog != nil {
		fmt.Printf("  Fog          %v near=%g far=%g\n", w.Fog.Color, w.Fog.Near, w.Fog.Far)
	} else {
		fmt.Println("  Fog          (none)")
	}
	if w.Ambient != nil {
		fmt.Printf("  AmbientLight %v\n", w.Ambient.Color)
	} else {
		fmt.Printf("  AmbientLight %v (engine)\n", region.DefaultAmbient)
	}
	if w.Directional != nil {
		fmt.Printf("  Directional  dir=%+v diffuse=%v\n", w.Directional.Direction, w.Directional.Diffuse)
	} else {
		fmt.Println("  Directional  (none)")
	}
	fmt.Println()

	fmt.Printf("  %-24s %8s %6s  %s\n", "REGION", "PRIORITY", "POINTS", "ATTACHMENTS")
	w.Walk(func(r *region.Region) bool {
		var kinds []string
		for _, c := range r.Children() {
			if c.Kind() != region.KindPoints && c.Kind() != region.KindRegion {
				kinds = append(kinds, c.Kind().String())
			}
		}
		fmt.Printf("  %-24s %8d %6d  %s\n", r.Name(), r.Priority(), r.Polygon().Len(), strings.Join(kinds, ", "))
		return true
	})
}

func cmdTree(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: regiontool tree <world>")
		os.Exit(1)
	}
	w := loadWorld(args[0])

	outline := editor.NewOutline()
	for _, r := range w.Regions() {
		r.AttachTree(outline.Root())
	}
	fmt.Println(w.Name)
	fmt.Print(indent(outline.String()))
}

func indent(s string) string {
	if s == "" {
		return s
	}
	lines := strings.SplitAfter(s, "\n")
	var sb strings.Builder
	for _, l := range lines {
		if l != "" {
			sb.WriteString("  ")
			sb.WriteString(l)
		}
	}
	return sb.String()
}

func parseCamera(fs *flag.FlagSet, y float64) (math.Vec3, error) {
	x, err := strconv.ParseFloat(fs.Arg(1), 32)
	if err != nil {
		return math.Vec3{}, fmt.Errorf("x: %w", err)
	}
	z, err := strconv.ParseFloat(fs.Arg(2), 32)
	if err != nil {
		return math.Vec3{}, fmt.Errorf("z: %w", err)
	}
	return math.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}, nil
}

func newEditor(path string, log *zap.Logger) (*editor.Editor, *scene.Environment) {
	env := scene.NewEnvironment()
	e, err := editor.New(editor.Config{
		Boundaries: scene.NewBoundaries(),
		Applier:    env,
		Log:        log,
	})
	if err != nil {
		fail(err)
	}
	if err := e.Open(path); err != nil {
		fail(err)
	}
	return e, env
}

func cmdQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	height := fs.Float64("y", 0, "Camera height")
	fs.Parse(args)

	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "Usage: regiontool query [-y height] <world> <x> <z>")
		os.Exit(1)
	}
	camera, err := parseCamera(fs, *height)
	if err != nil {
		fail(err)
	}

	e, env := newEditor(fs.Arg(0), nil)
	defer e.Close()
	printFrame(e.Tick(camera), env)
}

func printFrame(f region.Frame, env *scene.Environment) {
	fmt.Printf("Camera: %g %g %g\n", f.Camera.X, f.Camera.Y, f.Camera.Z)
	if len(f.Active) == 0 {
		fmt.Println("Active: (none)")
	} else {
		fmt.Println("Active:")
		for _, r := range f.Active {
			fmt.Printf("  %-24s priority=%d\n", r.Name(), r.Priority())
		}
	}
	fmt.Printf("Fog from:         %s\n", source(f.FogRegion))
	fmt.Printf("Ambient from:     %s\n", source(f.AmbientRegion))
	fmt.Printf("Directional from: %s\n", source(f.DirectionalRegion))
	if r := region.HighestPriorityWith(f.Active, region.KindSound); r != nil {
		snd := r.FirstChild(region.KindSound).(*region.Sound)
		fmt.Printf("Sound from:       %s (%s)\n", r.Name(), snd.File)
	} else {
		fmt.Println("Sound from:       (none)")
	}
	fmt.Printf("Environment:      %s\n", env)
}

func source(r *region.Region) string {
	if r == nil {
		return "(default)"
	}
	return r.Name()
}

func cmdCheck(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: regiontool check <world>")
		os.Exit(1)
	}
	w := loadWorld(args[0])

	problems := 0
	names := make(map[string]int)
	w.Walk(func(r *region.Region) bool {
		names[r.Name()]++
		if n := r.Polygon().Len(); n < region.MinPolygonPoints {
			fmt.Printf("%s: %d points, never active\n", r.Name(), n)
			problems++
		}
		return true
	})
	for name, n := range names {
		if n > 1 {
			fmt.Printf("%s: name used by %d regions\n", name, n)
			problems++
		}
	}

	if problems > 0 {
		os.Exit(1)
	}
	fmt.Printf("%s: %d regions OK\n", args[0], w.Count())
}

func cmdNormalize(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: regiontool normalize <in> <out>")
		os.Exit(1)
	}
	w := loadWorld(args[0])
	if err := worldfile.Save(args[1], w); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %d regions to %s\n", w.Count(), args[1])
}

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Debug logging")
	height := fs.Float64("y", 0, "Camera height")
	fs.Parse(args)

	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "Usage: regiontool watch [-v] [-y height] <world> <x> <z>")
		os.Exit(1)
	}
	camera, err := parseCamera(fs, *height)
	if err != nil {
		fail(err)
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fail(err)
	}
	defer logger.Sync()

	path := fs.Arg(0)
	e, env := newEditor(path, logger.Named("editor"))
	defer e.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	changed := make(chan struct{}, 1)
	go func() {
		if err := worldfile.Watch(ctx, path, changed, logger.Named("watch")); err != nil {
			logger.Error("watch stopped", zap.Error(err))
			stop()
		}
	}()

	printFrame(e.Tick(camera), env)
	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			// Let the writer finish before reading.
			time.Sleep(100 * time.Millisecond)
			e.RequestReload()
			fmt.Println()
			printFrame(e.Tick(camera), env)
		}
	}
}
