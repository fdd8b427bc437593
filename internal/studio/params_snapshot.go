package studio

import (
	"math"
	"strconv"

	"shibori/internal/core"
	"shibori/internal/palette"
	"shibori/internal/pattern"
)

// Parameters reports the current tunables grouped for the HUD.
func (s *Session) Parameters() core.ParameterSnapshot {
	p := s.cfg.Params
	groups := []core.ParameterGroup{
		{
			Name: "Canvas",
			Params: []core.Parameter{
				intParam("w", "Width", s.cfg.Width),
				intParam("h", "Height", s.cfg.Height),
				int64Param("seed", "Seed", s.cfg.Seed),
				choiceParam("mode", "Mode", s.mode.String()),
			},
		},
		{
			Name: "Dye",
			Params: []core.Parameter{
				floatParam("radius", "Drop radius", p.BaseRadius),
				floatParam("radius_jitter", "Radius jitter", p.RadiusJitter),
				floatParam("opacity", "Drop opacity", p.BaseOpacity),
				floatParam("opacity_jitter", "Opacity jitter", p.OpacityJitter),
				floatParam("hue_jitter", "Hue jitter", p.HueJitter),
				intParam("duration_ms", "Spread time (ms)", p.DurationMS),
				floatParam("fade", "Fade", p.Fade),
				{Key: "dye_color", Label: "Dye color", Type: core.ParamTypeChoice, Value: p.DyeColor},
			},
		},
		{
			Name: "Pattern",
			Params: []core.Parameter{
				choiceParam("pattern", "Pattern", string(p.Pattern)),
				floatParam("size", "Size", p.Size),
				floatParam("intensity", "Intensity", p.Intensity),
				intParam("symmetry", "Symmetry", p.Symmetry),
				floatParam("irregularity", "Irregularity", p.Irregularity),
				intParam("bleed_iterations", "Bleed passes", p.BleedIterations),
			},
		},
		{
			Name: "Cloth",
			Params: []core.Parameter{
				floatParam("weave", "Weave", p.WeaveAmplitude),
				floatParam("grain", "Grain", p.GrainAmplitude),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the values the HUD can step.
func (s *Session) ParameterControls() []core.ParameterControl {
	kinds := pattern.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	p := s.cfg.Params
	return []core.ParameterControl{
		{Key: "mode", Label: "Mode", Type: core.ParamTypeChoice, Choices: []string{DyeMode.String(), PatternMode.String()}},
		{Key: "pattern", Label: "Pattern", Type: core.ParamTypeChoice, Choices: names},
		{Key: "size", Label: "Size", Type: core.ParamTypeFloat, Step: 5, Min: 0, Max: 100, HasMin: true, HasMax: true},
		{Key: "intensity", Label: "Intensity", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "symmetry", Label: "Symmetry", Type: core.ParamTypeInt, Step: 1, Min: float64(p.SymmetryMin), Max: float64(p.SymmetryMax), HasMin: true, HasMax: true},
		{Key: "irregularity", Label: "Irregularity", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: p.IrregularityMax, HasMin: true, HasMax: true},
		{Key: "bleed_iterations", Label: "Bleed passes", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: 8, HasMin: true, HasMax: true},
		{Key: "radius", Label: "Drop radius", Type: core.ParamTypeFloat, Step: 5, Min: 1, Max: 200, HasMin: true, HasMax: true},
		{Key: "opacity", Label: "Drop opacity", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "duration_ms", Label: "Spread time", Type: core.ParamTypeInt, Step: 100, Min: 0, Max: 5000, HasMin: true, HasMax: true},
		{Key: "fade", Label: "Fade", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "weave", Label: "Weave", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 0.3, HasMin: true, HasMax: true},
		{Key: "grain", Label: "Grain", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 0.3, HasMin: true, HasMax: true},
	}
}

// SetIntParameter updates an integer tunable. Out-of-range values are
// clamped; unknown keys report false.
func (s *Session) SetIntParameter(key string, value int) bool {
	p := &s.cfg.Params
	switch key {
	case "symmetry":
		p.Symmetry = min(max(value, p.SymmetryMin), p.SymmetryMax)
	case "bleed_iterations":
		p.BleedIterations = max(value, 0)
	case "duration_ms":
		p.DurationMS = max(value, 0)
		s.dye.Configure(s.loopConfig())
	default:
		return false
	}
	return true
}

// SetFloatParameter updates a floating point tunable. Out-of-range values
// are clamped; unknown keys and NaN report false.
func (s *Session) SetFloatParameter(key string, value float64) bool {
	if math.IsNaN(value) {
		return false
	}
	p := &s.cfg.Params
	switch key {
	case "size":
		p.Size = core.ClampRange(value, 0, 100)
	case "intensity":
		p.Intensity = core.Clamp01(value)
	case "irregularity":
		p.Irregularity = core.ClampRange(value, 0, p.IrregularityMax)
	case "radius":
		p.BaseRadius = max(value, 0)
		s.dye.Configure(s.loopConfig())
	case "radius_jitter":
		p.RadiusJitter = max(value, 0)
		s.dye.Configure(s.loopConfig())
	case "opacity":
		p.BaseOpacity = core.Clamp01(value)
		s.dye.Configure(s.loopConfig())
	case "opacity_jitter":
		p.OpacityJitter = core.Clamp01(value)
		s.dye.Configure(s.loopConfig())
	case "hue_jitter":
		p.HueJitter = max(value, 0)
		s.dye.Configure(s.loopConfig())
	case "fade":
		p.Fade = core.Clamp01(value)
		s.dye.Configure(s.loopConfig())
	case "weave":
		p.WeaveAmplitude = max(value, 0)
		s.patternDirty = true
	case "grain":
		p.GrainAmplitude = max(value, 0)
		s.patternDirty = true
	default:
		return false
	}
	return true
}

// SetChoiceParameter picks a named option for mode, pattern or dye_color.
func (s *Session) SetChoiceParameter(key, value string) bool {
	switch key {
	case "mode":
		m, ok := ParseMode(value)
		if !ok {
			return false
		}
		s.mode = m
	case "pattern":
		kind := pattern.Kind(value)
		if !pattern.Known(kind) {
			return false
		}
		s.cfg.Params.Pattern = kind
	case "dye_color":
		if _, err := palette.ParseHSL(value); err != nil {
			return false
		}
		s.cfg.Params.DyeColor = value
		s.dye.Configure(s.loopConfig())
	default:
		return false
	}
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func choiceParam(key, label, value string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeChoice,
		Value: value,
	}
}
