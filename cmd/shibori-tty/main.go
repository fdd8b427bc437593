package main

import (
	"flag"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"shibori/internal/app"
	"shibori/internal/studio"
)

func main() {
	cfg := app.NewConfig()
	cfg.Width, cfg.Height = 160, 96
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

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("open terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("init terminal: %v", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	tps := max(cfg.TPS, 1)
	newView(screen, session, cfg.OutDir).run(time.Second / time.Duration(tps))
}
