package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/anthonynsimon/bild/transform"

	"shibori/internal/core"
	"shibori/internal/layers"
	"shibori/internal/palette"
	"shibori/internal/pattern"
	"shibori/internal/render"
	"shibori/internal/studio"
)

func main() {
	opts := render.DefaultSheetOptions()
	out := flag.String("out", "shibori-sheet.png", "output PNG path")
	kinds := flag.String("patterns", joinKinds(opts.Kinds), "comma separated patterns, one row block each")
	syms := flag.String("symmetry", "4,8,12", "comma separated symmetry values, one row each")
	irrs := flag.String("irregularity", "0,0.3,0.6", "comma separated irregularity values, one column each")
	pal := flag.String("palette", studio.DefaultPalette, "color stops as color@breakpoint; ...")
	width := flag.Int("width", 0, "resize the finished sheet to this width (0 keeps it)")
	verbose := flag.Bool("v", false, "log debug output to stderr")
	flag.IntVar(&opts.Tile, "tile", opts.Tile, "tile edge in pixels")
	flag.IntVar(&opts.Gap, "gap", opts.Gap, "gap between tiles in pixels")
	flag.Float64Var(&opts.Size, "size", opts.Size, "tie point size (0-100)")
	flag.Float64Var(&opts.Intensity, "intensity", opts.Intensity, "tie point intensity (0-1)")
	flag.IntVar(&opts.Bleed, "bleed", opts.Bleed, "capillary bleed passes")
	flag.Int64Var(&opts.Seed, "seed", opts.Seed, "base seed; each tile derives its own")
	flag.IntVar(&opts.Workers, "workers", opts.Workers, "number of worker goroutines")
	flag.Parse()

	if *verbose {
		core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var err error
	if opts.Kinds, err = parseKinds(*kinds); err != nil {
		log.Fatal(err)
	}
	if opts.Symmetries, err = parseInts(*syms); err != nil {
		log.Fatalf("symmetry: %v", err)
	}
	if opts.Irregularities, err = parseFloats(*irrs); err != nil {
		log.Fatalf("irregularity: %v", err)
	}
	stops, err := palette.ParseStops(*pal)
	if err != nil {
		log.Fatalf("palette: %v", err)
	}
	mapper, err := palette.NewMapper(stops)
	if err != nil {
		log.Fatalf("palette: %v", err)
	}

	fmt.Printf("Rendering %d tiles (%d workers, %dpx)\n", opts.Rows()*len(opts.Irregularities), opts.Workers, opts.Tile)
	start := time.Now()
	sheet, cells, err := render.RenderSheet(mapper, opts)
	if err != nil {
		log.Fatal(err)
	}

	var img = sheet
	if *width > 0 && *width != sheet.Rect.Dx() {
		h := sheet.Rect.Dy() * *width / sheet.Rect.Dx()
		img = transform.Resize(sheet, *width, max(h, 1), transform.Linear)
	}
	var buf bytes.Buffer
	if err := layers.Encode(&buf, img, layers.PNG, 0); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		log.Fatal(err)
	}

	sort.SliceStable(cells, func(i, j int) bool { return cells[i].Mass > cells[j].Mass })
	fmt.Printf("\nDensest tiles (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i := 0; i < len(cells) && i < 5; i++ {
		c := cells[i]
		fmt.Printf("%2d) %-8s sym=%-2d irr=%.2f mass=%.1f peak=%.2f\n",
			i+1, c.Tie.Pattern, c.Tie.Symmetry, c.Tie.Irregularity, c.Mass, c.Peak)
	}
	fmt.Printf("\nWrote %s (%dx%d)\n", *out, img.Rect.Dx(), img.Rect.Dy())
}

func joinKinds(kinds []pattern.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ",")
}

func parseKinds(s string) ([]pattern.Kind, error) {
	var out []pattern.Kind
	for _, part := range strings.Split(s, ",") {
		k := pattern.Kind(strings.ToLower(strings.TrimSpace(part)))
		if k == "" {
			continue
		}
		if !pattern.Known(k) {
			return nil, fmt.Errorf("%w: %q", pattern.ErrUnknownPattern, k)
		}
		out = append(out, k)
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
