// Package layers holds the ordered layer stack and its compositor.
//
// Every layer keeps a unique order in [0, n). The stack is the only writer
// of order, opacity and visibility; callers receive Info copies and request
// changes through UpdateLayer and MoveLayer.
package layers

import (
	"fmt"
	"image/color"
	"maps"
	"slices"

	"github.com/oklog/ulid/v2"

	"shibori/internal/core"
	"shibori/internal/surface"
)

// Direction selects the neighbor MoveLayer swaps with.
type Direction int

const (
	Down Direction = -1
	Up   Direction = 1
)

// Params carries opaque provenance metadata for a layer.
type Params map[string]any

// Info is a read-only snapshot of a layer.
type Info struct {
	ID                  string
	Name                string
	Visible             bool
	Opacity             float64
	Order               int
	SourceOperationType string
	Params              Params
}

// Patch lists the fields UpdateLayer should change. Nil fields are kept.
type Patch struct {
	Name    *string
	Visible *bool
	Opacity *float64
	Order   *int
}

type layer struct {
	id      string
	name    string
	surf    surface.Surface
	visible bool
	opacity float64
	opType  string
	params  Params
}

// Stack is an ordered set of equally sized layers plus an uncommitted
// scratch surface.
type Stack struct {
	size     core.Size
	layers   []*layer // index is the layer's order
	backdrop surface.Surface
	scratch  surface.Surface
	work     *surface.Canvas
	buf      []byte
	named    int
}

// NewStack creates an empty stack for w×h layers.
func NewStack(w, h int) *Stack {
	work := surface.NewCanvas(w, h)
	return &Stack{size: work.Size(), work: work}
}

func (s *Stack) Size() core.Size { return s.size }

func (s *Stack) Len() int { return len(s.layers) }

// AddLayer places surf on top of the stack.
func (s *Stack) AddLayer(surf surface.Surface, opType string, params Params) Info {
	return s.InsertLayer(surf, opType, len(s.layers), params)
}

// InsertLayer places surf at order, shifting the layers at and above it up.
// Orders outside [0, n] are clamped.
func (s *Stack) InsertLayer(surf surface.Surface, opType string, order int, params Params) Info {
	s.named++
	l := &layer{
		id:      ulid.Make().String(),
		name:    fmt.Sprintf("Layer %d", s.named),
		surf:    surf,
		visible: true,
		opacity: 1,
		opType:  opType,
		params:  maps.Clone(params),
	}
	order = clampOrder(order, len(s.layers))
	s.layers = slices.Insert(s.layers, order, l)
	core.Logger().Debug("layer added", "id", l.id, "order", order, "type", opType)
	return s.info(order)
}

// Layers returns snapshots in ascending order.
func (s *Stack) Layers() []Info {
	out := make([]Info, len(s.layers))
	for i := range s.layers {
		out[i] = s.info(i)
	}
	return out
}

// Layer returns the snapshot for id.
func (s *Stack) Layer(id string) (Info, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Info{}, false
	}
	return s.info(i), true
}

// Surface returns the raster backing id.
func (s *Stack) Surface(id string) (surface.Surface, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return s.layers[i].surf, true
}

// UpdateLayer applies p to the layer with id. Unknown ids are ignored and
// report false. Opacity is clamped to [0, 1]; a new order renumbers the
// other layers so orders stay contiguous.
func (s *Stack) UpdateLayer(id string, p Patch) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	l := s.layers[i]
	if p.Name != nil {
		l.name = *p.Name
	}
	if p.Visible != nil {
		l.visible = *p.Visible
	}
	if p.Opacity != nil {
		l.opacity = core.Clamp01(*p.Opacity)
	}
	if p.Order != nil {
		to := clampOrder(*p.Order, len(s.layers)-1)
		if to != i {
			s.layers = slices.Delete(s.layers, i, i+1)
			s.layers = slices.Insert(s.layers, to, l)
		}
	}
	core.Logger().Debug("layer updated", "id", id)
	return true
}

// RemoveLayer drops the layer with id and disposes its surface when it
// supports disposal. Unknown ids report false.
func (s *Stack) RemoveLayer(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	l := s.layers[i]
	s.layers = slices.Delete(s.layers, i, i+1)
	if d, ok := l.surf.(interface{ Dispose() }); ok {
		d.Dispose()
	}
	core.Logger().Debug("layer removed", "id", id)
	return true
}

// MoveLayer swaps the layer with its neighbor in dir. It reports false for
// unknown ids and at the top or bottom boundary.
func (s *Stack) MoveLayer(id string, dir Direction) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	j := i + int(dir)
	if dir != Up && dir != Down || j < 0 || j >= len(s.layers) {
		return false
	}
	s.layers[i], s.layers[j] = s.layers[j], s.layers[i]
	return true
}

// SetBackdrop installs the opaque ground drawn beneath every layer in
// composites and exports. A nil surface leaves the ground transparent.
func (s *Stack) SetBackdrop(surf surface.Surface) { s.backdrop = surf }

// SetScratch installs the surface previewed above all layers with multiply
// blending. A nil surface removes the preview.
func (s *Stack) SetScratch(surf surface.Surface) { s.scratch = surf }

// Scratch returns the current preview surface, if any.
func (s *Stack) Scratch() surface.Surface { return s.scratch }

// Composite draws the backdrop, then visible layers in ascending order with
// normal blending scaled by opacity, then the scratch surface with multiply. The result is
// written to target in one WritePixels call; on error target is unchanged.
func (s *Stack) Composite(target surface.Surface) error {
	if !surface.Available(target) {
		return surface.ErrSurfaceUnavailable
	}
	if target.Size() != s.size {
		return fmt.Errorf("layers: composite target %v: %w", target.Size(), surface.ErrSizeMismatch)
	}
	s.flatten(color.NRGBA{}, true)
	if n := surface.BufferLen(s.size); len(s.buf) != n {
		s.buf = make([]byte, n)
	}
	if err := s.work.ReadPixels(s.buf); err != nil {
		return err
	}
	return target.WritePixels(s.buf)
}

// flatten rebuilds the work canvas from the stack.
func (s *Stack) flatten(bg color.NRGBA, withScratch bool) {
	s.work.SetBlendMode(surface.Normal)
	s.work.Clear(bg)
	if s.backdrop != nil {
		if err := s.work.Blit(s.backdrop); err != nil {
			core.Logger().Warn("backdrop skipped", "err", err)
		}
	}
	for _, l := range s.layers {
		if !l.visible || l.opacity <= 0 {
			continue
		}
		if err := s.work.Draw(l.surf, l.opacity); err != nil {
			core.Logger().Warn("layer skipped", "id", l.id, "err", err)
		}
	}
	if withScratch && s.scratch != nil {
		s.work.SetBlendMode(surface.Multiply)
		if err := s.work.Draw(s.scratch, 1); err != nil {
			core.Logger().Warn("scratch skipped", "err", err)
		}
		s.work.SetBlendMode(surface.Normal)
	}
}

// FinalizeScratch freezes the scratch contents into a new top layer and
// clears the scratch surface to transparent.
func (s *Stack) FinalizeScratch(name, opType string, params Params) (Info, error) {
	if !surface.Available(s.scratch) {
		return Info{}, surface.ErrSurfaceUnavailable
	}
	frozen := surface.NewCanvas(s.size.W, s.size.H)
	if err := frozen.Blit(s.scratch); err != nil {
		return Info{}, fmt.Errorf("layers: finalize scratch: %w", err)
	}
	info := s.AddLayer(frozen, opType, params)
	if name != "" {
		s.UpdateLayer(info.ID, Patch{Name: &name})
		info.Name = name
	}
	s.scratch.Clear(color.NRGBA{})
	return info, nil
}

func (s *Stack) indexOf(id string) int {
	return slices.IndexFunc(s.layers, func(l *layer) bool { return l.id == id })
}

func (s *Stack) info(i int) Info {
	l := s.layers[i]
	return Info{
		ID:                  l.id,
		Name:                l.name,
		Visible:             l.visible,
		Opacity:             l.opacity,
		Order:               i,
		SourceOperationType: l.opType,
		Params:              maps.Clone(l.params),
	}
}

func clampOrder(order, hi int) int {
	if order < 0 {
		return 0
	}
	if order > hi {
		return hi
	}
	return order
}
