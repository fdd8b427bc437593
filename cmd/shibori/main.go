//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"shibori/internal/app"
	"shibori/internal/studio"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()
	cfg.InstallLogger()

	session, err := studio.NewSession(cfg.Studio(), nil)
	if err != nil {
		log.Fatalf("start session: %v", err)
	}
	defer session.Close()
	if cfg.Load != "" {
		if err := app.LoadLayers(session, cfg.Load); err != nil {
			log.Fatalf("load %s: %v", cfg.Load, err)
		}
	}

	game := app.New(session, cfg)
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("shibori: click to dye, tab for tie points")
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
