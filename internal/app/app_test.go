package app

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shibori/internal/core"
	"shibori/internal/pattern"
	"shibori/internal/studio"
)

func TestBindParsesParams(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(fs)
	err := fs.Parse([]string{"-w", "80", "-seed", "7", "-param", "pattern=arashi", "-param", "h = 50", "-param", "w=96"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sc := cfg.Studio()
	if sc.Width != 96 || sc.Height != 50 || sc.Seed != 7 {
		t.Fatalf("canvas = %dx%d seed %d", sc.Width, sc.Height, sc.Seed)
	}
	if sc.Params.Pattern != pattern.Arashi {
		t.Fatalf("pattern = %q", sc.Params.Pattern)
	}
	if got := cfg.Params.String(); got != "h=50,pattern=arashi,w=96" {
		t.Fatalf("Params.String() = %q", got)
	}
}

func TestParamsRejectsMissingValue(t *testing.T) {
	p := Params{}
	for _, in := range []string{"radius", "=3", ""} {
		if err := p.Set(in); err == nil {
			t.Fatalf("Set(%q) accepted", in)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cfg := studio.DefaultConfig()
	cfg.Width, cfg.Height = 40, 30
	clock := core.NewManualClock(time.Unix(0, 0))
	s, err := studio.NewSession(cfg, clock)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Close()

	dir := t.TempDir()
	paths, err := SaveSnapshot(s, dir, "empty")
	if err != nil || len(paths) != 1 {
		t.Fatalf("empty snapshot = %v, %v", paths, err)
	}

	s.SetMode(studio.PatternMode)
	s.Click(20, 15)
	first, err := s.FinishLayer("Ring")
	if err != nil {
		t.Fatalf("FinishLayer: %v", err)
	}
	paths, err = SaveSnapshot(s, filepath.Join(dir, "nested"), "one")
	if err != nil || len(paths) != 2 {
		t.Fatalf("snapshot = %v, %v", paths, err)
	}
	for _, p := range paths {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}

	want := s.Display().Pixels()
	s.RemoveLayer(first.ID)
	if err := LoadLayers(s, paths[1]); err != nil {
		t.Fatalf("LoadLayers: %v", err)
	}
	s.Tick(clock.Now())
	got := s.Layers()
	if len(got) != 1 || got[0].ID != first.ID || got[0].Name != "Ring" {
		t.Fatalf("loaded layers = %+v", got)
	}
	if string(s.Display().Pixels()) != string(want) {
		t.Fatalf("reloaded display differs")
	}
	if err := LoadLayers(s, filepath.Join(dir, "absent.json")); err == nil {
		t.Fatalf("missing file loaded")
	}
}
