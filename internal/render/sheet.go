package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"runtime"
	"sync"

	"shibori/internal/core"
	"shibori/internal/palette"
	"shibori/internal/pattern"
	"shibori/internal/surface"
)

// ErrEmptySheet is returned when a sheet has no rows or columns.
var ErrEmptySheet = errors.New("render: empty contact sheet")

// SheetOptions describes a contact sheet: one row per pattern and symmetry
// pair, one column per irregularity.
type SheetOptions struct {
	Tile           int
	Gap            int
	Kinds          []pattern.Kind
	Symmetries     []int
	Irregularities []float64
	Size           float64
	Intensity      float64
	Bleed          int
	Seed           int64
	Workers        int
	Render         Options
	Background     color.NRGBA
}

// DefaultSheetOptions sweeps every registered pattern.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{
		Tile:           96,
		Gap:            4,
		Kinds:          pattern.Kinds(),
		Symmetries:     []int{4, 8, 12},
		Irregularities: []float64{0, 0.3, 0.6},
		Size:           70,
		Intensity:      0.8,
		Bleed:          1,
		Seed:           1337,
		Workers:        runtime.NumCPU(),
		Render:         DefaultOptions(),
		Background:     color.NRGBA{R: 32, G: 36, B: 48, A: 255},
	}
}

// SheetCell reports one rendered tile.
type SheetCell struct {
	Row, Col int
	Tie      pattern.TiePoint
	Mass     float64
	Peak     float64
}

type sheetJob struct {
	row, col int
	tp       pattern.TiePoint
	seed     int64
}

type sheetResult struct {
	cell SheetCell
	img  *image.RGBA
	err  error
}

// Rows returns the number of sheet rows.
func (o SheetOptions) Rows() int { return len(o.Kinds) * len(o.Symmetries) }

// Bounds returns the pixel size of the finished sheet.
func (o SheetOptions) Bounds() image.Rectangle {
	cols, rows := len(o.Irregularities), o.Rows()
	return image.Rect(0, 0, o.Gap+cols*(o.Tile+o.Gap), o.Gap+rows*(o.Tile+o.Gap))
}

func (o SheetOptions) jobs() []sheetJob {
	var out []sheetJob
	row := 0
	for _, kind := range o.Kinds {
		for _, sym := range o.Symmetries {
			for col, irr := range o.Irregularities {
				tp := pattern.TiePoint{
					X: 50, Y: 50,
					Pattern:      kind,
					Size:         o.Size,
					Intensity:    o.Intensity,
					Symmetry:     sym,
					Irregularity: irr,
				}
				out = append(out, sheetJob{
					row:  row,
					col:  col,
					tp:   tp.Normalize(pattern.DefaultBounds()),
					seed: o.Seed + int64(row*len(o.Irregularities)+col)*7919,
				})
			}
			row++
		}
	}
	return out
}

// RenderSheet renders every tile on a pool of workers and lays them out on
// one image. Cells come back in row-major order.
func RenderSheet(m *palette.Mapper, opts SheetOptions) (*image.RGBA, []SheetCell, error) {
	if opts.Tile <= 0 {
		opts.Tile = 96
	}
	opts.Gap = max(opts.Gap, 0)
	jobs := opts.jobs()
	if len(jobs) == 0 {
		return nil, nil, ErrEmptySheet
	}
	workers := min(max(opts.Workers, 1), len(jobs))

	sheet := image.NewRGBA(opts.Bounds())
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	jobCh := make(chan sheetJob)
	results := make(chan sheetResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fr := NewFrameRenderer(m, DefaultLUTSize)
			for job := range jobCh {
				results <- renderTile(fr, job, opts)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, job := range jobs {
			jobCh <- job
		}
		close(jobCh)
	}()

	cells := make([]SheetCell, len(jobs))
	var firstErr error
	cols := len(opts.Irregularities)
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		c := res.cell
		cells[c.Row*cols+c.Col] = c
		at := image.Pt(opts.Gap+c.Col*(opts.Tile+opts.Gap), opts.Gap+c.Row*(opts.Tile+opts.Gap))
		draw.Draw(sheet, image.Rectangle{Min: at, Max: at.Add(res.img.Rect.Size())}, res.img, image.Point{}, draw.Src)
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	core.Logger().Debug("contact sheet rendered", "tiles", len(jobs), "workers", workers)
	return sheet, cells, nil
}

func renderTile(fr *FrameRenderer, job sheetJob, opts SheetOptions) sheetResult {
	g := core.NewGrid(opts.Tile, opts.Tile)
	if err := pattern.Apply(g, job.tp, core.NewRNG(job.seed)); err != nil {
		return sheetResult{err: fmt.Errorf("render: tile %s: %w", job.tp.Pattern, err)}
	}
	pattern.Bleed(g, opts.Bleed)
	cv := surface.NewCanvas(opts.Tile, opts.Tile)
	defer cv.Dispose()
	if err := fr.Render(g, cv, opts.Render); err != nil {
		return sheetResult{err: err}
	}
	img := image.NewRGBA(cv.Image().Rect)
	copy(img.Pix, cv.Image().Pix)
	return sheetResult{
		cell: SheetCell{Row: job.row, Col: job.col, Tie: job.tp, Mass: g.Mass(), Peak: g.Max()},
		img:  img,
	}
}
