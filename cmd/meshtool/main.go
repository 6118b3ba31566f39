// meshtool is a CLI utility for inspecting glTF assets and the
// normalization frame the viewer derives from them.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/model"
	"github.com/Faultbox/showroom/internal/viewer"
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
	case "frame":
		cmdFrame(args)
	case "clips", "anim":
		cmdClips(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - glTF asset inspection utility

Usage:
  meshtool <command> [options]

Commands:
  info <file>                              Show asset summary
  frame [-rotation x,y,z] <base> [part..]  Show the normalization frame the
                                           base defines and how each part
                                           lands under it
  clips <file>                             List animation clips

Examples:
  meshtool info models/base.glb
  meshtool frame models/base.glb models/hair.glb
  meshtool frame -rotation 0,1.5708,0 models/base.glb
  meshtool clips models/base.glb`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file>")
		os.Exit(1)
	}

	asset, err := model.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Asset:     %s\n", asset.Name)
	fmt.Printf("Nodes:     %d\n", len(asset.Nodes))
	fmt.Printf("Meshes:    %d\n", len(asset.Meshes))
	fmt.Printf("Materials: %d\n", len(asset.Materials))
	fmt.Printf("Textures:  %d\n", len(asset.Images))
	fmt.Printf("Triangles: %d\n", asset.TriangleCount())

	if box, ok := asset.Bounds(mgl32.Ident4()); ok {
		size := box.Size()
		fmt.Printf("Bounds:    %s .. %s\n", fmtVec(box.Min), fmtVec(box.Max))
		fmt.Printf("Size:      %.3f x %.3f x %.3f (max side %.3f)\n",
			size.X(), size.Y(), size.Z(), box.MaxDim())
	}

	if len(asset.Clips) > 0 {
		fmt.Println()
		fmt.Println("Animations:")
		for _, c := range asset.Clips {
			fmt.Printf("  %-24s %6.2fs  %d channels\n", c.Name, c.Duration, len(c.Channels))
		}
	}
}

func cmdFrame(args []string) {
	fs := flag.NewFlagSet("frame", flag.ExitOnError)
	rot := fs.String("rotation", "", "Model rotation in radians as x,y,z")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool frame [-rotation x,y,z] <base> [part ...]")
		os.Exit(1)
	}

	rotation := mgl32.Ident4()
	if *rot != "" {
		r, err := parseRotation(*rot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		rotation = viewer.EulerRotation(r)
	}

	base, err := model.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	frame, err := viewer.ComputeFrame(base, rotation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Base:   %s\n", fs.Arg(0))
	fmt.Printf("Scale:  %.6f\n", frame.Scale)
	fmt.Printf("Offset: %s\n", fmtVec(frame.Offset))
	fmt.Println()

	// Show where each asset lands once the shared frame is applied. The
	// base always fits a 2-unit cube centered on the origin; the parts
	// land wherever the frame puts them.
	root := frame.RootTransform(rotation)
	for i, path := range fs.Args() {
		asset := base
		if i > 0 {
			asset, err = model.Open(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
		}

		box, ok := asset.Bounds(root)
		if !ok {
			fmt.Printf("  %-30s (no geometry)\n", path)
			continue
		}
		fmt.Printf("  %-30s %s .. %s\n", path, fmtVec(box.Min), fmtVec(box.Max))
	}
}

func cmdClips(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool clips <file>")
		os.Exit(1)
	}

	asset, err := model.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(asset.Clips) == 0 {
		fmt.Println("No animations")
		return
	}

	for _, c := range asset.Clips {
		fmt.Printf("%s (%.2fs)\n", c.Name, c.Duration)

		var tr, ro, sc, keys int
		for _, ch := range c.Channels {
			switch ch.Path {
			case model.PathTranslation:
				tr++
			case model.PathRotation:
				ro++
			case model.PathScale:
				sc++
			}
			if len(ch.Times) > keys {
				keys = len(ch.Times)
			}
		}
		fmt.Printf("  channels: %d translation, %d rotation, %d scale\n", tr, ro, sc)
		fmt.Printf("  keyframes: %d\n", keys)
	}
}

func parseRotation(s string) (mgl32.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("rotation must be three comma-separated radians, got %q", s)
	}

	var r mgl32.Vec3
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("bad rotation component %q", p)
		}
		r[i] = float32(v)
	}
	return r, nil
}

func fmtVec(v mgl32.Vec3) string {
	return fmt.Sprintf("[%.3f %.3f %.3f]", v.X(), v.Y(), v.Z())
}
