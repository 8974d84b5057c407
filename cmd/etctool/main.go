// etctool is a CLI utility for inspecting and previewing ETC1 textures
// shipped with a separate uncompressed alpha image.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/etcalpha/internal/engine/texture"
	"github.com/Faultbox/etcalpha/pkg/formats"
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
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "compose":
		err = cmdCompose(args)
	case "mips":
		err = cmdMips(os.Stdout, args)
	case "gen":
		err = cmdGen(args)
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
	fmt.Println(`etctool - ETC1 + uncompressed alpha texture utility

Usage:
  etctool <command> [options]

Commands:
  info <file.pkm|file.pgm>            Show header information
  compose [-o out.png] [-ext .pkm]    Decode level 0 RGB and merge the alpha
          [-alpha _alpha.pgm] <prefix>
  mips <alpha.pgm> <outdir>           Write the generated alpha mip chain
  gen <out.pgm> <width> <height>      Write a gradient test alpha image

Examples:
  etctool info resources/good_uncompressed_mip_0.pkm
  etctool compose -o preview.png resources/good_uncompressed_mip_
  etctool mips resources/good_uncompressed_mip_0_alpha.pgm ./mips
  etctool gen test_alpha.pgm 256 256`)
}

func cmdInfo(w io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: etctool info <file.pkm|file.pgm>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	switch {
	case bytes.HasPrefix(data, []byte("PKM ")):
		pkm, err := formats.ParsePKM(data)
		if err != nil {
			return err
		}
		h := pkm.Header
		fmt.Fprintf(w, "File:     %s\n", args[0])
		fmt.Fprintf(w, "Format:   PKM %s (ETC1 RGB)\n", h.Version)
		fmt.Fprintf(w, "Size:     %dx%d\n", h.Width, h.Height)
		fmt.Fprintf(w, "Extended: %dx%d\n", h.ExtendedWidth, h.ExtendedHeight)
		fmt.Fprintf(w, "Payload:  %d bytes (%d blocks)\n", len(pkm.Data), len(pkm.Data)/8)

	case bytes.HasPrefix(data, []byte(formats.PGMMagic)):
		img, err := formats.ParsePGM(data)
		if err != nil {
			return err
		}
		minV, maxV, sum := 255, 0, 0
		for _, v := range img.Pix {
			minV = min(minV, int(v))
			maxV = max(maxV, int(v))
			sum += int(v)
		}
		fmt.Fprintf(w, "File:     %s\n", args[0])
		fmt.Fprintf(w, "Format:   PGM %s, max value %d\n", formats.PGMMagic, formats.PGMMaxValue)
		fmt.Fprintf(w, "Size:     %dx%d\n", img.Width, img.Height)
		fmt.Fprintf(w, "Mipmaps:  %d generated levels\n", texture.MipLevelCount(img.Width, img.Height))
		fmt.Fprintf(w, "Alpha:    min %d, max %d, mean %.1f\n", minV, maxV, float64(sum)/float64(len(img.Pix)))

	default:
		return fmt.Errorf("%s: not a PKM or binary PGM file", args[0])
	}
	return nil
}

func cmdCompose(args []string) error {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)
	out := fs.String("o", "preview.png", "Output PNG file")
	ext := fs.String("ext", ".pkm", "RGB level file extension")
	alphaExt := fs.String("alpha", "_alpha.pgm", "Alpha file suffix")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: etctool compose [-o out.png] <prefix>")
	}
	prefix := fs.Arg(0)

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := compose(f, prefix, *ext, *alphaExt); err != nil {
		f.Close()
		os.Remove(*out)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", *out)
	return nil
}

// compose decodes level 0 of the chain at prefix, merges its alpha image
// and writes the result as PNG.
func compose(w io.Writer, prefix, ext, alphaExt string) error {
	pkm, err := formats.ParsePKMFile(texture.MipPath(prefix, 0, ext))
	if err != nil {
		return err
	}
	rgb, err := formats.DecodeETC1(pkm.Data, int(pkm.Header.Width), int(pkm.Header.Height))
	if err != nil {
		return err
	}

	alpha, err := readPGM(texture.MipPath(prefix, 0, alphaExt))
	if err != nil {
		return err
	}

	img, err := texture.CombineAlpha(rgb, alpha)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func cmdMips(w io.Writer, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: etctool mips <alpha.pgm> <outdir>")
	}

	alpha, err := readPGM(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(args[1], 0755); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	for level, img := range texture.AlphaMipChain(alpha) {
		path := filepath.Join(args[1], fmt.Sprintf("%s_level%d.pgm", base, level))
		if err := writePGM(path, img); err != nil {
			return err
		}
		fmt.Fprintf(w, "  %-40s %dx%d\n", path, img.Width, img.Height)
	}
	return nil
}

func cmdGen(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: etctool gen <out.pgm> <width> <height>")
	}

	width, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid width %q", args[1])
	}
	height, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid height %q", args[2])
	}

	return writePGM(args[0], gradient(width, height))
}

// gradient fades alpha from opaque at the center to transparent at the
// corners.
func gradient(width, height int) *formats.PGM {
	img := &formats.PGM{Width: width, Height: height, Pix: make([]byte, max(width*height, 0))}
	cx, cy := float64(width-1)/2, float64(height-1)/2
	maxD := cx*cx + cy*cy
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			v := 1.0
			if maxD > 0 {
				v = 1 - (dx*dx+dy*dy)/maxD
			}
			img.Pix[y*width+x] = uint8(v*255 + 0.5)
		}
	}
	return img
}

func readPGM(path string) (*formats.PGM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := formats.DecodePGM(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func writePGM(path string, img *formats.PGM) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := formats.EncodePGM(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
