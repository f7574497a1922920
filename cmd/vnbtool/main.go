// vnbtool is a CLI utility for inspecting and converting mesh containers.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/vnbformat/vnb-go/pkg/gltfexport"
	"github.com/vnbformat/vnb-go/pkg/vnb"
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
	case "dump":
		cmdDump(args)
	case "gltf":
		cmdGLTF(args)
	case "upgrade":
		cmdUpgrade(args)
	case "textures", "tex":
		cmdTextures(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vnbtool - mesh container utility

Usage:
  vnbtool <command> [options]

Commands:
  info <file.vnb>                 Show container summary
  dump <file.vnb>                 Dump the full decoded structure
  gltf <file.vnb> [out.gltf]      Convert to glTF 2.0
  upgrade <file> [out.vnb]        Re-encode (upgrades legacy containers)
  textures <file.vnb> [outdir]    List texture refs, extract embedded payloads

Examples:
  vnbtool info crate.vnb
  vnbtool gltf crate.vnb crate.gltf
  vnbtool upgrade old_mesh.bin mesh.vnb
  vnbtool textures crate.vnb ./textures`)
}

// load decodes a container file, optionally resolving external texture
// references against the given search directories.
func load(path string, searchDirs []string) *vnb.MeshContainer {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("Error: %v", err)
	}

	var opts []vnb.DecodeOption
	if len(searchDirs) > 0 {
		opts = append(opts, vnb.WithResolver(dirResolver(searchDirs)))
	}

	c, err := vnb.Decode(data, opts...)
	if err != nil {
		fatalf("Error decoding %s: %v", path, err)
	}
	return c
}

// dirResolver tries each directory in order for a relative URI.
func dirResolver(dirs []string) vnb.Resolver {
	return func(uri string) ([]byte, bool) {
		for _, dir := range dirs {
			data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(uri)))
			if err == nil {
				return data, true
			}
		}
		return nil, false
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fatalf("Usage: vnbtool info <file.vnb>")
	}
	c := load(args[0], nil)

	fmt.Printf("Container: %s\n", args[0])
	if c.Name != "" {
		fmt.Printf("Name:      %s\n", c.Name)
	}
	fmt.Printf("Vertices:  %d\n", c.VertexCount())
	fmt.Printf("Indices:   %d (%s)\n", c.IndexCount(), indexWidth(c))
	fmt.Printf("Submeshes: %d\n", len(c.SubMeshes))
	fmt.Printf("Materials: %d\n", len(c.Materials))
	fmt.Printf("Streams:   %s\n", streamList(c))
	if c.Flags.Has(vnb.HasBounds) {
		fmt.Printf("Bounds:    min %v  max %v\n", c.BoundsMin, c.BoundsMax)
	}

	for i, sm := range c.SubMeshes {
		mat := "-"
		if sm.Material != vnb.NoMaterial && sm.Material < len(c.Materials) {
			mat = c.Materials[sm.Material].Name
			if mat == "" {
				mat = fmt.Sprintf("#%d", sm.Material)
			}
		}
		fmt.Printf("  submesh %d: %s, %d indices at %d, material %s\n",
			i, sm.Topology, sm.IndexCount, sm.StartIndex, mat)
	}
}

func indexWidth(c *vnb.MeshContainer) string {
	if c.Flags.Has(vnb.Index16) {
		return "16-bit"
	}
	return "32-bit"
}

func streamList(c *vnb.MeshContainer) string {
	var streams []string
	for _, s := range []struct {
		flag vnb.FeatureFlags
		name string
	}{
		{vnb.HasPositions, "positions"},
		{vnb.HasNormals, "normals"},
		{vnb.HasTangents, "tangents"},
		{vnb.HasColors, "colors"},
		{vnb.HasUV0, "uv0"},
		{vnb.HasUV1, "uv1"},
	} {
		if c.Flags.Has(s.flag) {
			streams = append(streams, s.name)
		}
	}
	return strings.Join(streams, ", ")
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	depth := fs.Int("depth", 0, "Maximum dump depth (0 = unlimited)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatalf("Usage: vnbtool dump <file.vnb>")
	}
	c := load(fs.Arg(0), nil)

	cfg := spew.ConfigState{Indent: "  ", MaxDepth: *depth, DisableMethods: true}
	cfg.Dump(c)
}

func cmdGLTF(args []string) {
	fs := flag.NewFlagSet("gltf", flag.ExitOnError)
	texDir := fs.String("texdir", "", "Directory searched for external textures (embeds them)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatalf("Usage: vnbtool gltf <file.vnb> [out.gltf]")
	}
	in := fs.Arg(0)
	out := strings.TrimSuffix(in, filepath.Ext(in)) + ".gltf"
	if fs.NArg() > 1 {
		out = fs.Arg(1)
	}

	var searchDirs []string
	if *texDir != "" {
		searchDirs = []string{*texDir}
	}
	c := load(in, searchDirs)

	if err := gltfexport.Save(c, out); err != nil {
		fatalf("Error exporting %s: %v", out, err)
	}
	fmt.Printf("Wrote %s\n", out)
}

func cmdUpgrade(args []string) {
	fs := flag.NewFlagSet("upgrade", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatalf("Usage: vnbtool upgrade <file> [out.vnb]")
	}
	in := fs.Arg(0)
	out := strings.TrimSuffix(in, filepath.Ext(in)) + ".vnb"
	if fs.NArg() > 1 {
		out = fs.Arg(1)
	}
	if out == in {
		fatalf("Refusing to overwrite input %s; pass an output path", in)
	}

	c := load(in, nil)
	data, err := vnb.Encode(c)
	if err != nil {
		fatalf("Error encoding: %v", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		fatalf("Error writing %s: %v", out, err)
	}
	fmt.Printf("Wrote %s (%d bytes, %d vertices)\n", out, len(data), c.VertexCount())
}

func cmdTextures(args []string) {
	fs := flag.NewFlagSet("textures", flag.ExitOnError)
	extract := fs.Bool("extract", true, "Write embedded payloads to the output directory")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatalf("Usage: vnbtool textures <file.vnb> [outdir]")
	}
	outDir := "."
	if fs.NArg() > 1 {
		outDir = fs.Arg(1)
	}
	c := load(fs.Arg(0), nil)

	written := 0
	for mi := range c.Materials {
		mat := &c.Materials[mi]
		for ti := range mat.Textures {
			ref := &mat.Textures[ti]
			switch ref.Kind {
			case vnb.RefExternal:
				fmt.Printf("material %q slot %s: external %s\n", mat.Name, ref.Slot, ref.URI)
			case vnb.RefEmbedded:
				fmt.Printf("material %q slot %s: embedded %s (%d bytes)\n",
					mat.Name, ref.Slot, ref.Mime.ContentType(), len(ref.Data))
				if !*extract {
					continue
				}
				name := fmt.Sprintf("%s_%s%s", safeName(mat.Name, mi), ref.Slot, mimeExt(ref.Mime))
				path := filepath.Join(outDir, name)
				if err := os.MkdirAll(outDir, 0755); err != nil {
					fatalf("Error creating %s: %v", outDir, err)
				}
				if err := os.WriteFile(path, ref.Data, 0644); err != nil {
					fatalf("Error writing %s: %v", path, err)
				}
				fmt.Printf("  extracted to %s\n", path)
				written++
			}
		}
	}
	if written > 0 {
		fmt.Fprintf(os.Stderr, "\nExtracted %d payloads\n", written)
	}
}

func safeName(name string, idx int) string {
	if name == "" {
		return fmt.Sprintf("material%d", idx)
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, name)
}

func mimeExt(m vnb.MimeType) string {
	switch m {
	case vnb.MimeJPEG:
		return ".jpg"
	case vnb.MimeTGA:
		return ".tga"
	default:
		return ".png"
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
