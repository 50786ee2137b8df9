package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tmpim/sixheat"
	"github.com/tmpim/sixheat/input"
	"github.com/tmpim/sixheat/preview"
	"golang.org/x/sync/errgroup"
)

var (
	cellSize     = flag.Int("cell", 16, "set the size of a cell in pixels")
	marginSize   = flag.Int("margin", 4, "set the margin between cells in pixels")
	maxCols      = flag.Int("cols", 32, "set the maximum number of cells per row")
	compress     = flag.Bool("compress", false, "compress runs of identical sixels")
	minRun       = flag.Int("min-run", sixheat.DefaultMinRun, "set the shortest run replaced when compressing")
	fold         = flag.Bool("fold", false, "drop lone blank columns before color changes when compressing")
	paletteFlag  = flag.String("palette", "", "set the palette as comma separated hex colors (default blue to red)")
	colors       = flag.Int("colors", 0, "stretch the palette to this many colors")
	previewPath  = flag.String("p", "", "also write a preview image (PNG, or BMP by extension)")
	previewScale = flag.Float64("preview-scale", 1, "scale the preview image by this factor")
	verify       = flag.Bool("verify", false, "check that the compressed stream expands to the uncompressed one")
	debug        = flag.Bool("debug", false, "log debug information to stderr")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: sixheat [options] [input_file]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "sixheat reads whitespace separated integers and draws them as a heatmap")
	fmt.Fprintln(out, "in the sixel graphics format on stdout. Tokens that are not integers are")
	fmt.Fprintln(out, "ignored. Input is read from stdin if no file is given, and may be gzip,")
	fmt.Fprintln(out, "bzip2, zstd or xz compressed.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
}

func options() (sixheat.Options, error) {
	opts := sixheat.DefaultOptions()
	opts.CellSize = *cellSize
	opts.MarginSize = *marginSize
	opts.MaxCols = *maxCols
	opts.Compress = *compress
	opts.MinRun = *minRun
	opts.Fold = *fold

	if *minRun < 1 {
		return opts, fmt.Errorf("min-run must be at least 1, got %d", *minRun)
	}

	if *paletteFlag != "" {
		palette, err := sixheat.ParsePalette(*paletteFlag)
		if err != nil {
			return opts, err
		}
		opts.Palette = palette
	}

	if *colors != 0 {
		palette, err := sixheat.GradientPalette(*colors, opts.Palette)
		if err != nil {
			return opts, err
		}
		opts.Palette = palette
	}

	return opts, opts.Validate()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	log.SetOutput(os.Stderr)
	if *debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	opts, err := options()
	if err != nil {
		log.Fatal("Invalid options: ", err)
	}

	if *verify && (!opts.Compress || opts.Fold) {
		log.Fatal("-verify needs -compress and no -fold")
	}

	start := time.Now()

	tokens, err := input.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal("Failed to read input: ", err)
	}

	log.WithField("tokens", len(tokens)).Debug("Input read, rendering...")

	result, err := sixheat.RenderTokens(tokens, opts)
	if err != nil {
		log.Fatal("Failed to render heatmap: ", err)
	}

	if result.Empty() {
		log.WithField("dropped", result.Dropped).Debug("No samples, nothing to draw")
		return
	}

	log.WithFields(log.Fields{
		"rows":    result.Grid.Rows,
		"cols":    result.Grid.Cols,
		"width":   result.Geometry.Width,
		"height":  result.Geometry.PaddedHeight,
		"min":     result.Min,
		"max":     result.Max,
		"dropped": result.Dropped,
		"bytes":   len(result.Sixel),
	}).Debug("Heatmap rendered")

	if *verify {
		if err := verifyStream(result); err != nil {
			log.Fatal("Verification failed: ", err)
		}
		log.Debug("Compressed stream verified")
	}

	var g errgroup.Group

	g.Go(func() error {
		_, err := result.WriteTo(os.Stdout)
		return err
	})

	if *previewPath != "" {
		g.Go(func() error {
			return preview.WriteFile(*previewPath, result.Pixels, opts.Palette, *previewScale)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatal("Failed to write output: ", err)
	}

	log.Debug("Done! That took " + time.Since(start).String() + ".")
}

func verifyStream(result *sixheat.Result) error {
	expanded, err := sixheat.ExpandLimit(result.Sixel, 0)
	if err != nil {
		return err
	}

	raw, err := sixheat.Encode(result.Pixels, result.Palette)
	if err != nil {
		return err
	}

	if !bytes.Equal(expanded, raw) {
		return fmt.Errorf("expanded stream differs from encoded stream (%d != %d bytes)",
			len(expanded), len(raw))
	}

	return nil
}
