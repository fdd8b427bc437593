//go:build !ebiten

package ui

import "shibori/internal/core"

// Tunable is anything the HUD can describe.
type Tunable interface {
	Name() string
	Size() core.Size
	Parameters() core.ParameterSnapshot
}

// HUD is a no-op placeholder for headless builds.
type HUD struct{}

// NewHUD returns nil in the headless build.
func NewHUD(Tunable, int) *HUD { return nil }

// SetStatus is a no-op in the headless build.
func (h *HUD) SetStatus(string) {}

// Update is a no-op in the headless build.
func (h *HUD) Update(int) bool { return false }

// Draw is a no-op in the headless build.
func (h *HUD) Draw(any, int, int) {}
