//go:build ebiten

package app

import (
	"fmt"
	"time"

	"shibori/internal/core"
	"shibori/internal/render"
	"shibori/internal/studio"
	"shibori/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a studio session to the ebiten.Game interface.
type Game struct {
	session *studio.Session
	painter *render.SurfacePainter
	hud     *ui.HUD
	overlay *ui.Overlay

	scale    int
	hudWidth int
	outDir   string
	exports  int
}

// New constructs a Game for the provided session.
func New(s *studio.Session, cfg *Config) *Game {
	size := s.Size()
	g := &Game{
		session:  s,
		painter:  render.NewSurfacePainter(size.W, size.H),
		overlay:  ui.NewOverlay(s, cfg.Scale),
		scale:    max(cfg.Scale, 1),
		hudWidth: max(cfg.HUD, 0),
		outDir:   cfg.OutDir,
	}
	g.hud = ui.NewHUD(s, g.hudWidth)
	g.hud.SetStatus(g.modeStatus())
	return g
}

func (g *Game) modeStatus() string {
	return fmt.Sprintf("mode: %s  layers: %d", g.session.Mode(), len(g.session.Layers()))
}

// Update handles input and drains the session's frame scheduler.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	s := g.session
	canvasW := s.Size().W * g.scale

	g.overlay.Update()
	consumed := g.hud.Update(canvasW)
	if !consumed && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if x < canvasW {
			s.Click((float64(x)+0.5)/float64(g.scale), (float64(y)+0.5)/float64(g.scale))
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab) || inpututil.IsKeyJustPressed(ebiten.KeyM):
		if s.Mode() == studio.DyeMode {
			s.SetMode(studio.PatternMode)
		} else {
			s.SetMode(studio.DyeMode)
		}
		g.hud.SetStatus(g.modeStatus())
	case inpututil.IsKeyJustPressed(ebiten.KeyZ) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		s.Undo()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		s.Clear()
	case inpututil.IsKeyJustPressed(ebiten.KeyF) || inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		if _, err := s.FinishLayer(""); err != nil {
			g.hud.SetStatus("finish failed: " + err.Error())
		} else {
			g.hud.SetStatus(g.modeStatus())
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		g.export()
	}

	s.Tick(time.Now())
	return nil
}

func (g *Game) export() {
	g.exports++
	stem := fmt.Sprintf("shibori-%03d", g.exports)
	paths, err := SaveSnapshot(g.session, g.outDir, stem)
	if err != nil {
		core.Logger().Warn("export failed", "err", err)
		g.hud.SetStatus("export failed")
		return
	}
	core.Logger().Info("exported", "files", paths)
	g.hud.SetStatus("saved " + stem)
}

// Draw renders the session display, overlay and HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	if err := g.painter.Blit(screen, g.session.Display(), g.scale); err != nil {
		core.Logger().Warn("blit failed", "err", err)
		return
	}
	g.overlay.Draw(screen, time.Now())
	g.hud.Draw(screen, g.session.Size().W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.session.Size()
	return s.W*g.scale + g.hudWidth, s.H * g.scale
}
