//go:build ebiten

package ui

import (
	"image/color"
	"math"
	"time"

	"shibori/internal/core"
	"shibori/internal/interact"
	"shibori/internal/pattern"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type gridProvider interface {
	Grid() *core.Grid
}

type tiePointProvider interface {
	TiePoints() []pattern.TiePoint
	PendingTiePoint() pattern.TiePoint
}

type eventProvider interface {
	Events() []interact.DiffusionEvent
}

// Overlay draws optional debugging visuals on top of the cloth.
type Overlay struct {
	target    Tunable
	scale     int
	showHeat  bool
	showTies  bool
	showDrops bool

	heatImg *ebiten.Image
	heatBuf []byte
	pixel   *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(target Tunable, scale int) *Overlay {
	o := &Overlay{target: target, scale: max(scale, 1)}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles layers: 1 concentration heat, 2 tie points, 3 dye drops.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showHeat = !o.showHeat
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showTies = !o.showTies
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showDrops = !o.showDrops
	}
}

// Draw renders the enabled layers onto screen.
func (o *Overlay) Draw(screen *ebiten.Image, now time.Time) {
	size := o.target.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	if o.showHeat {
		if p, ok := o.target.(gridProvider); ok {
			o.drawHeat(screen, p.Grid())
		}
	}
	if o.showTies {
		if p, ok := o.target.(tiePointProvider); ok {
			o.drawTiePoints(screen, p, size)
		}
	}
	if o.showDrops {
		if p, ok := o.target.(eventProvider); ok {
			o.drawDrops(screen, p.Events(), now)
		}
	}
}

func (o *Overlay) drawHeat(screen *ebiten.Image, g *core.Grid) {
	if g == nil {
		return
	}
	total := g.Size().Area()
	if total == 0 {
		return
	}
	if o.heatImg == nil || o.heatImg.Bounds().Dx() != g.W || o.heatImg.Bounds().Dy() != g.H {
		if o.heatImg != nil {
			o.heatImg.Deallocate()
		}
		o.heatImg = ebiten.NewImage(g.W, g.H)
		o.heatBuf = make([]byte, 4*total)
	}
	const maxAlpha = 150.0
	for i, v := range g.Cells() {
		base := i * 4
		v = clamp01(v)
		if v == 0 {
			clear(o.heatBuf[base : base+4])
			continue
		}
		col := heatColor(v)
		a := math.Round(maxAlpha * math.Sqrt(v))
		// premultiplied for WritePixels
		o.heatBuf[base+0] = uint8(float64(col.R) * a / 255)
		o.heatBuf[base+1] = uint8(float64(col.G) * a / 255)
		o.heatBuf[base+2] = uint8(float64(col.B) * a / 255)
		o.heatBuf[base+3] = uint8(a)
	}
	o.heatImg.WritePixels(o.heatBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.heatImg, op)
}

func (o *Overlay) drawTiePoints(screen *ebiten.Image, p tiePointProvider, size core.Size) {
	s := float64(o.scale)
	mark := func(tp pattern.TiePoint, col color.RGBA) {
		geo := pattern.Resolve(tp, size.W, size.H)
		cx, cy := geo.CX*s, geo.CY*s
		arm := 4 * s
		o.drawLine(screen, cx-arm, cy, cx+arm, cy, 1, col)
		o.drawLine(screen, cx, cy-arm, cx, cy+arm, 1, col)
		o.drawRing(screen, cx, cy, geo.Radius*s, col)
	}
	for _, tp := range p.TiePoints() {
		mark(tp, color.RGBA{R: 255, G: 210, B: 90, A: 220})
	}
	if x, y := ebiten.CursorPosition(); x >= 0 && y >= 0 {
		tp := p.PendingTiePoint()
		tp.X = float64(x) / s / float64(size.W) * 100
		tp.Y = float64(y) / s / float64(size.H) * 100
		if tp.X <= 100 && tp.Y <= 100 {
			mark(tp, color.RGBA{R: 140, G: 200, B: 255, A: 160})
		}
	}
}

func (o *Overlay) drawDrops(screen *ebiten.Image, events []interact.DiffusionEvent, now time.Time) {
	s := float64(o.scale)
	for _, ev := range events {
		col := color.RGBA{R: 120, G: 230, B: 160, A: 200}
		if ev.State(now) == interact.Settled {
			col = color.RGBA{R: 150, G: 150, B: 170, A: 140}
		}
		cx, cy := ev.Center.X*s, ev.Center.Y*s
		o.drawPoint(screen, cx, cy, 2*s, col)
		o.drawRing(screen, cx, cy, ev.Radius(now)*s, col)
	}
}

func (o *Overlay) drawRing(screen *ebiten.Image, cx, cy, r float64, col color.RGBA) {
	if r < 1 {
		return
	}
	segments := int(math.Min(96, math.Max(12, r/2)))
	step := 2 * math.Pi / float64(segments)
	for i := 0; i < segments; i++ {
		a0, a1 := float64(i)*step, float64(i+1)*step
		o.drawLine(screen, cx+r*math.Cos(a0), cy+r*math.Sin(a0), cx+r*math.Cos(a1), cy+r*math.Sin(a1), 1, col)
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if o.pixel == nil || size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func heatColor(t float64) color.RGBA {
	t = clamp01(t)
	stops := []struct {
		t   float64
		col color.RGBA
	}{
		{0.0, color.RGBA{R: 40, G: 60, B: 160, A: 255}},
		{0.4, color.RGBA{R: 60, G: 170, B: 190, A: 255}},
		{0.7, color.RGBA{R: 230, G: 200, B: 70, A: 255}},
		{1.0, color.RGBA{R: 240, G: 80, B: 50, A: 255}},
	}
	for i := 1; i < len(stops); i++ {
		curr := stops[i]
		if t <= curr.t {
			prev := stops[i-1]
			local := (t - prev.t) / (curr.t - prev.t)
			return lerpRGBA(prev.col, curr.col, local)
		}
	}
	return stops[len(stops)-1].col
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
