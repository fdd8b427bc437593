package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"

	"shibori/internal/app"
	"shibori/internal/core"
	"shibori/internal/pattern"
	"shibori/internal/studio"
)

// view draws the session display with upper half blocks: every terminal
// cell shows two canvas rows, top as foreground and bottom as background.
type view struct {
	screen  tcell.Screen
	session *studio.Session
	outDir  string
	status  string
	down    bool
	exports int
}

func newView(screen tcell.Screen, s *studio.Session, outDir string) *view {
	v := &view{screen: screen, session: s, outDir: outDir}
	v.status = v.summary()
	return v
}

func (v *view) summary() string {
	p := v.session.Config().Params
	return fmt.Sprintf("%s | %s sym %d size %.0f | layers %d | click dye, m mode, p pattern, u undo, c clear, f finish, e export, q quit",
		v.session.Mode(), p.Pattern, p.Symmetry, p.Size, len(v.session.Layers()))
}

func (v *view) area() (cols, rows int) {
	w, h := v.screen.Size()
	return w, max(h-1, 0)
}

// canvasPoint maps a terminal cell to the canvas position under its center.
func (v *view) canvasPoint(col, row int) (float64, float64, bool) {
	cols, rows := v.area()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return 0, 0, false
	}
	size := v.session.Size()
	x := (float64(col) + 0.5) * float64(size.W) / float64(cols)
	y := (float64(row) + 0.5) * float64(size.H) / float64(rows)
	return x, y, true
}

func (v *view) sample(x, y float64) tcell.Color {
	c := v.session.Display().RGBAAt(int(x), int(y))
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (v *view) draw() {
	cols, rows := v.area()
	size := v.session.Size()
	sx := float64(size.W) / float64(max(cols, 1))
	sy := float64(size.H) / float64(max(2*rows, 1))
	for row := 0; row < rows; row++ {
		top := (float64(2*row) + 0.5) * sy
		bottom := (float64(2*row) + 1.5) * sy
		for col := 0; col < cols; col++ {
			x := (float64(col) + 0.5) * sx
			style := tcell.StyleDefault.Foreground(v.sample(x, top)).Background(v.sample(x, bottom))
			v.screen.SetContent(col, row, '▀', nil, style)
		}
	}
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(18, 22, 34))
	line := []rune(v.status)
	for col := 0; col < cols; col++ {
		r := ' '
		if col < len(line) {
			r = line[col]
		}
		v.screen.SetContent(col, rows, r, nil, statusStyle)
	}
	v.screen.Show()
}

// handle applies one terminal event. It returns false when the host should quit.
func (v *view) handle(ev tcell.Event) bool {
	s := v.session
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyTab:
			v.toggleMode()
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			s.Undo()
		case tcell.KeyEnter:
			v.finish()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'm':
				v.toggleMode()
			case 'u', 'z':
				s.Undo()
			case 'c':
				s.Clear()
			case 'f':
				v.finish()
			case 'p':
				v.cyclePattern()
			case '+', '=':
				s.SetFloatParameter("size", s.Config().Params.Size+5)
			case '-':
				s.SetFloatParameter("size", s.Config().Params.Size-5)
			case ']':
				s.SetIntParameter("symmetry", s.Config().Params.Symmetry+1)
			case '[':
				s.SetIntParameter("symmetry", s.Config().Params.Symmetry-1)
			case 'e':
				v.export()
				return true
			}
		}
		v.status = v.summary()
	case *tcell.EventMouse:
		pressed := ev.Buttons()&tcell.Button1 != 0
		if pressed && !v.down {
			col, row := ev.Position()
			if x, y, ok := v.canvasPoint(col, row); ok {
				s.Click(x, y)
			}
		}
		v.down = pressed
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *view) toggleMode() {
	if v.session.Mode() == studio.DyeMode {
		v.session.SetMode(studio.PatternMode)
		return
	}
	v.session.SetMode(studio.DyeMode)
}

func (v *view) cyclePattern() {
	kinds := pattern.Kinds()
	i := slices.Index(kinds, v.session.Config().Params.Pattern)
	v.session.SetChoiceParameter("pattern", string(kinds[(i+1)%len(kinds)]))
}

func (v *view) finish() {
	if _, err := v.session.FinishLayer(""); err != nil {
		core.Logger().Warn("finish layer failed", "err", err)
	}
}

func (v *view) export() {
	v.exports++
	stem := fmt.Sprintf("shibori-%03d", v.exports)
	paths, err := app.SaveSnapshot(v.session, v.outDir, stem)
	if err != nil {
		v.status = "export failed: " + err.Error()
		return
	}
	v.status = fmt.Sprintf("saved %v", paths)
}

// run pumps terminal events and frame ticks until the user quits.
func (v *view) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	v.draw()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !v.handle(ev) {
				return
			}
			v.session.Tick(time.Now())
			v.draw()
		case now := <-ticker.C:
			if v.session.Tick(now) {
				v.draw()
			}
		}
	}
}
