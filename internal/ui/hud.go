//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strconv"
	"strings"

	"shibori/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// Tunable is anything the HUD can describe. Controls and setters are picked
// up through the optional core interfaces.
type Tunable interface {
	Name() string
	Size() core.Size
	Parameters() core.ParameterSnapshot
}

// HUD renders the parameter panel to the right of the canvas.
type HUD struct {
	target     Tunable
	width      int
	panel      *ebiten.Image
	lastHeight int
	snapshot   core.ParameterSnapshot
	status     string

	controls     []hudControlState
	intSetter    core.IntParameterSetter
	floatSetter  core.FloatParameterSetter
	choiceSetter core.ChoiceParameterSetter
	panelOffsetX int
	title        string

	pixel *ebiten.Image
}

// NewHUD constructs a HUD for target with the given panel width.
func NewHUD(target Tunable, width int) *HUD {
	width = max(width, 0)
	h := &HUD{target: target, width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.title = buildTitle(target)
	if provider, ok := target.(core.ParameterControlsProvider); ok {
		controls := provider.ParameterControls()
		h.controls = make([]hudControlState, len(controls))
		for i, ctrl := range controls {
			h.controls[i] = hudControlState{control: ctrl, value: "--"}
		}
		h.layoutControls()
	}
	h.intSetter, _ = target.(core.IntParameterSetter)
	h.floatSetter, _ = target.(core.FloatParameterSetter)
	h.choiceSetter, _ = target.(core.ChoiceParameterSetter)
	return h
}

// SetStatus shows a one-line message at the bottom of the panel.
func (h *HUD) SetStatus(msg string) {
	if h != nil {
		h.status = msg
	}
}

// Update refreshes the cached snapshot and handles clicks on the panel. It
// reports whether the click landed on a control.
func (h *HUD) Update(panelOffsetX int) bool {
	if h == nil || h.target == nil {
		return false
	}
	h.panelOffsetX = panelOffsetX
	h.snapshot = h.target.Parameters()
	h.refreshControlValues()
	return h.handleInput()
}

// Draw paints the panel anchored at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	scale = max(scale, 1)
	height := h.target.Size().H * scale
	if height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dx() != h.width || h.lastHeight != height {
		if h.panel != nil {
			h.panel.Deallocate()
		}
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 18, G: 22, B: 34, A: 255})
	h.drawControls()
	if h.status != "" {
		text.Draw(h.panel, h.status, basicfont.Face7x13, panelPadding, height-panelPadding, color.RGBA{R: 150, G: 170, B: 210, A: 255})
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func buildTitle(target Tunable) string {
	if target == nil || target.Name() == "" {
		return "Controls"
	}
	name := target.Name()
	return fmt.Sprintf("%s%s Controls", strings.ToUpper(name[:1]), name[1:])
}

func (h *HUD) refreshControlValues() {
	if len(h.controls) == 0 {
		return
	}
	paramMap := map[string]core.Parameter{}
	for _, group := range h.snapshot.Groups {
		for _, param := range group.Params {
			paramMap[param.Key] = param
		}
	}
	for i := range h.controls {
		state := &h.controls[i]
		state.hasValue = false
		state.value = "--"
		param, ok := paramMap[state.control.Key]
		if !ok {
			continue
		}
		switch state.control.Type {
		case core.ParamTypeInt:
			parsed, err := strconv.Atoi(param.Value)
			if err != nil {
				continue
			}
			state.intValue = parsed
			state.floatValue = float64(parsed)
			state.value = strconv.Itoa(parsed)
			state.hasValue = true
		case core.ParamTypeFloat:
			parsed, err := strconv.ParseFloat(param.Value, 64)
			if err != nil {
				continue
			}
			state.floatValue = parsed
			state.value = formatFloat(state.control, parsed)
			state.hasValue = true
		case core.ParamTypeChoice:
			state.choice = slices.Index(state.control.Choices, param.Value)
			if state.choice < 0 {
				continue
			}
			state.value = param.Value
			state.hasValue = true
		}
	}
}

func (h *HUD) handleInput() bool {
	if len(h.controls) == 0 || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return false
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return false
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		state := &h.controls[i]
		if !state.hasValue {
			continue
		}
		if pointInRect(px, my, state.minusRect) {
			h.applyAdjustment(state, -1)
			return true
		}
		if pointInRect(px, my, state.plusRect) {
			h.applyAdjustment(state, 1)
			return true
		}
	}
	return true
}

// step returns the value one step in direction and whether it differs from
// the current one.
func (s *hudControlState) step(direction int) (int, float64, bool) {
	ctrl := s.control
	switch ctrl.Type {
	case core.ParamTypeInt:
		step := max(int(math.Round(ctrl.Step)), 1)
		target := s.intValue + direction*step
		if ctrl.HasMin {
			target = max(target, int(math.Round(ctrl.Min)))
		}
		if ctrl.HasMax {
			target = min(target, int(math.Round(ctrl.Max)))
		}
		return target, float64(target), target != s.intValue
	case core.ParamTypeFloat:
		step := ctrl.Step
		if step <= 0 {
			step = 0.05
		}
		target := s.floatValue + float64(direction)*step
		if ctrl.HasMin && target < ctrl.Min {
			target = ctrl.Min
		}
		if ctrl.HasMax && target > ctrl.Max {
			target = ctrl.Max
		}
		return 0, target, math.Abs(target-s.floatValue) >= 1e-9
	case core.ParamTypeChoice:
		n := len(ctrl.Choices)
		if n < 2 {
			return s.choice, 0, false
		}
		return ((s.choice+direction)%n + n) % n, 0, true
	}
	return 0, 0, false
}

func (h *HUD) applyAdjustment(state *hudControlState, direction int) {
	i, f, ok := state.step(direction)
	if !ok {
		return
	}
	key := state.control.Key
	switch state.control.Type {
	case core.ParamTypeInt:
		if h.intSetter != nil && h.intSetter.SetIntParameter(key, i) {
			state.intValue = i
			state.floatValue = f
			state.value = strconv.Itoa(i)
		}
	case core.ParamTypeFloat:
		if h.floatSetter != nil && h.floatSetter.SetFloatParameter(key, f) {
			state.floatValue = f
			state.value = formatFloat(state.control, f)
		}
	case core.ParamTypeChoice:
		name := state.control.Choices[i]
		if h.choiceSetter != nil && h.choiceSetter.SetChoiceParameter(key, name) {
			state.choice = i
			state.value = name
		}
	}
}

func (h *HUD) canAdjust(state *hudControlState, direction int) bool {
	switch state.control.Type {
	case core.ParamTypeInt:
		if h.intSetter == nil {
			return false
		}
	case core.ParamTypeFloat:
		if h.floatSetter == nil {
			return false
		}
	case core.ParamTypeChoice:
		if h.choiceSetter == nil {
			return false
		}
	default:
		return false
	}
	_, _, ok := state.step(direction)
	return ok
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	headerY := panelPadding + headerBaseline
	text.Draw(h.panel, h.title, face, panelPadding, headerY, color.RGBA{R: 200, G: 205, B: 225, A: 255})
	if len(h.controls) == 0 {
		text.Draw(h.panel, "No adjustable parameters", face, panelPadding, headerY+infoSpacing, color.RGBA{R: 160, G: 160, B: 170, A: 255})
		return
	}
	for i := range h.controls {
		state := &h.controls[i]
		labelY := state.top + labelBaseline
		text.Draw(h.panel, state.control.Label, face, panelPadding, labelY, color.RGBA{R: 220, G: 220, B: 230, A: 255})
		valueColor := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if !state.hasValue {
			valueColor = color.RGBA{R: 160, G: 160, B: 170, A: 255}
		}
		valueWidth := text.BoundString(face, state.value).Dx()
		valueX := state.minusRect.Min.X - buttonGap - valueWidth
		text.Draw(h.panel, state.value, face, valueX, labelY, valueColor)

		h.drawButton(state.minusRect, "-", state.hasValue && h.canAdjust(state, -1))
		h.drawButton(state.plusRect, "+", state.hasValue && h.canAdjust(state, 1))
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 48, G: 58, B: 86, A: 255}
	fg := color.RGBA{R: 230, G: 232, B: 245, A: 255}
	if !enabled {
		bg = color.RGBA{R: 30, G: 34, B: 46, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if len(h.controls) == 0 || h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minusRect
		h.controls[i].plusRect = plusRect
	}
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	precision := 1
	switch step := ctrl.Step; {
	case step <= 0:
		precision = 2
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}

type hudControlState struct {
	control core.ParameterControl
	value   string

	intValue   int
	floatValue float64
	choice     int
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

const (
	panelPadding   = 12
	lineHeight     = 26
	buttonSize     = 20
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 17
	infoSpacing    = 36
	controlsTop    = panelPadding + headerBaseline + 10
)
