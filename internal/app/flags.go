package app

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"shibori/internal/core"
	"shibori/internal/studio"
)

// Params collects repeatable -param key=value flags.
type Params map[string]string

func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + p[k]
	}
	return strings.Join(parts, ",")
}

// Set parses one key=value pair.
func (p Params) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	p[key] = strings.TrimSpace(value)
	return nil
}

// Config represents the command-line parameters shared by the hosts.
type Config struct {
	Width   int
	Height  int
	Seed    int64
	Scale   int
	TPS     int
	HUD     int
	OutDir  string
	Load    string
	Verbose bool
	Params  Params
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	def := studio.DefaultConfig()
	return &Config{
		Width:  def.Width,
		Height: def.Height,
		Seed:   def.Seed,
		Scale:  2,
		TPS:    60,
		HUD:    260,
		OutDir: ".",
		Params: Params{},
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "w", c.Width, "cloth width in pixels")
	fs.IntVar(&c.Height, "h", c.Height, "cloth height in pixels")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for tie points and dye jitter")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.IntVar(&c.HUD, "hud", c.HUD, "HUD panel width (0 hides it)")
	fs.StringVar(&c.OutDir, "out", c.OutDir, "directory for exported images and layer data")
	fs.StringVar(&c.Load, "load", c.Load, "layer data JSON to open on start")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "log debug output to stderr")
	fs.Var(c.Params, "param", "session tunable as key=value (repeatable)")
}

// Studio merges the flags into a session config. Explicit -param values win
// over the dedicated flags.
func (c *Config) Studio() studio.Config {
	m := map[string]string{
		"w":    fmt.Sprint(c.Width),
		"h":    fmt.Sprint(c.Height),
		"seed": fmt.Sprint(c.Seed),
	}
	for k, v := range c.Params {
		m[k] = v
	}
	return studio.FromMap(m)
}

// InstallLogger routes library logging to stderr when -v is set.
func (c *Config) InstallLogger() {
	if !c.Verbose {
		return
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
}
