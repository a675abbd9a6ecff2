// Package config loads the player configuration from TOML and the display
// catalog from CUE.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ingyamilmolinar/seqplayer/core/bridge"
	"github.com/ingyamilmolinar/seqplayer/core/loader"
	"github.com/ingyamilmolinar/seqplayer/core/motion"
	"github.com/ingyamilmolinar/seqplayer/core/ring"
)

var ErrInvalid = errors.New("invalid config")

// Duration reads TOML strings such as "1500ms" or "30s".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) D() time.Duration { return time.Duration(d) }

// Config represents seqplayer.toml.
type Config struct {
	Debug    bool           `toml:"debug"`
	LogLevel string         `toml:"log_level"`
	Assets   AssetsConfig   `toml:"assets"`
	Variants VariantsConfig `toml:"variants"`
	Motion   MotionConfig   `toml:"motion"`
	Loader   LoaderConfig   `toml:"loader"`
	Host     HostConfig     `toml:"host"`
	Display  DisplayConfig  `toml:"display"`
}

type AssetsConfig struct {
	// Base is a URL (http/https) or a local directory.
	Base   string `toml:"base"`
	Ext    string `toml:"ext"`
	Frames int    `toml:"frames"`
	// Parallel bounds concurrent fetches.
	Parallel     int      `toml:"parallel"`
	FetchTimeout Duration `toml:"fetch_timeout"`
}

type VariantsConfig struct {
	// Strategy is "counting" or "fixed".
	Strategy string `toml:"strategy"`
	Fixed    int    `toml:"fixed"`
	Max      int    `toml:"max"`
	// Store is the JSON file holding per-pair counts; empty keeps them in memory.
	Store string `toml:"store"`
}

type MotionConfig struct {
	AutoSpeed   float64  `toml:"auto_speed"`
	Friction    float64  `toml:"friction"`
	MaxVelocity float64  `toml:"max_velocity"`
	Sensitivity float64  `toml:"sensitivity"`
	DragSign    float64  `toml:"drag_sign"`
	EaseFactor  float64  `toml:"ease_factor"`
	SnapEpsilon float64  `toml:"snap_epsilon"`
	Pause       Duration `toml:"pause"`
}

type LoaderConfig struct {
	MinVisible Duration `toml:"min_visible"`
	Watchdog   Duration `toml:"watchdog"`
}

type HostConfig struct {
	// Kind is "stdio", "websocket", "window" or "none".
	Kind         string `toml:"kind"`
	URL          string `toml:"url"`
	ContentCmd   string `toml:"content_cmd"`
	CloseCmd     string `toml:"close_cmd"`
	DefaultStyle string `toml:"default_style"`
	DefaultWord  string `toml:"default_word"`
}

type DisplayConfig struct {
	// Kind is "window", "terminal" or "headless".
	Kind   string `toml:"kind"`
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Chime  bool   `toml:"chime"`
}

const (
	HostStdio     = "stdio"
	HostWebSocket = "websocket"
	HostWindow    = "window"
	HostNone      = "none"

	DisplayWindow   = "window"
	DisplayTerminal = "terminal"
	DisplayHeadless = "headless"

	StrategyCounting = "counting"
	StrategyFixed    = "fixed"
)

func Default() Config {
	mp := motion.DefaultParams()
	lp := loader.DefaultParams()
	cmds := bridge.DefaultCommands()
	return Config{
		LogLevel: "info",
		Assets: AssetsConfig{
			Base:         "assets/sequences",
			Ext:          "jpg",
			Frames:       ring.Frames,
			Parallel:     6,
			FetchTimeout: Duration(15 * time.Second),
		},
		Variants: VariantsConfig{
			Strategy: StrategyCounting,
			Fixed:    1,
			Max:      3,
		},
		Motion: MotionConfig{
			AutoSpeed:   mp.AutoSpeed,
			Friction:    mp.Friction,
			MaxVelocity: mp.MaxVelocity,
			Sensitivity: mp.Sensitivity,
			DragSign:    mp.DragSign,
			EaseFactor:  mp.EaseFactor,
			SnapEpsilon: mp.SnapEpsilon,
			Pause:       Duration(mp.PauseDuration),
		},
		Loader: LoaderConfig{
			MinVisible: Duration(lp.MinVisible),
			Watchdog:   Duration(lp.Watchdog),
		},
		Host: HostConfig{
			Kind:         HostStdio,
			ContentCmd:   cmds.Content,
			CloseCmd:     cmds.Close,
			DefaultStyle: "Style1",
			DefaultWord:  "Word1",
		},
		Display: DisplayConfig{
			Kind:   DisplayWindow,
			Title:  "seqplayer",
			Width:  540,
			Height: 720,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults; a
// missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode unmarshals TOML into cfg, keeping fields the document omits, and
// validates the result.
func Decode(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("%w: line %d column %d: %v", ErrInvalid, row, col, derr)
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg.Validate()
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	if c.Assets.Frames < 1 {
		bad("assets.frames must be positive, got %d", c.Assets.Frames)
	}
	if c.Assets.Parallel < 1 {
		bad("assets.parallel must be positive, got %d", c.Assets.Parallel)
	}
	switch c.Variants.Strategy {
	case StrategyCounting:
		if c.Variants.Max < 1 {
			bad("variants.max must be positive, got %d", c.Variants.Max)
		}
	case StrategyFixed:
		if c.Variants.Fixed < 1 {
			bad("variants.fixed must be positive, got %d", c.Variants.Fixed)
		}
	default:
		bad("variants.strategy %q is not %q or %q", c.Variants.Strategy, StrategyCounting, StrategyFixed)
	}
	m := c.Motion
	if m.AutoSpeed <= 0 {
		bad("motion.auto_speed must be positive")
	}
	if m.Friction <= 0 || m.Friction >= 1 {
		bad("motion.friction must be in (0, 1), got %v", m.Friction)
	}
	if m.MaxVelocity < m.AutoSpeed {
		bad("motion.max_velocity %v below auto_speed %v", m.MaxVelocity, m.AutoSpeed)
	}
	if m.Sensitivity <= 0 {
		bad("motion.sensitivity must be positive")
	}
	if m.DragSign != 1 && m.DragSign != -1 {
		bad("motion.drag_sign must be 1 or -1, got %v", m.DragSign)
	}
	if m.EaseFactor <= 0 || m.EaseFactor > 1 {
		bad("motion.ease_factor must be in (0, 1], got %v", m.EaseFactor)
	}
	if m.SnapEpsilon <= 0 {
		bad("motion.snap_epsilon must be positive")
	}
	if m.Pause < 0 {
		bad("motion.pause must not be negative")
	}
	if c.Loader.Watchdog <= 0 {
		bad("loader.watchdog must be positive")
	}
	if c.Loader.MinVisible < 0 {
		bad("loader.min_visible must not be negative")
	}
	switch c.Host.Kind {
	case HostStdio, HostWindow, HostNone:
	case HostWebSocket:
		if c.Host.URL == "" {
			bad("host.url is required for the websocket host")
		}
	default:
		bad("host.kind %q unknown", c.Host.Kind)
	}
	if c.Host.ContentCmd == "" || c.Host.CloseCmd == "" {
		bad("host.content_cmd and host.close_cmd must be set")
	} else if c.Host.ContentCmd == c.Host.CloseCmd {
		bad("host.content_cmd and host.close_cmd must differ")
	}
	switch c.Display.Kind {
	case DisplayWindow, DisplayTerminal, DisplayHeadless:
	default:
		bad("display.kind %q unknown", c.Display.Kind)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func (c Config) MotionParams() motion.Params {
	return motion.Params{
		Frames:        c.Assets.Frames,
		AutoSpeed:     c.Motion.AutoSpeed,
		Friction:      c.Motion.Friction,
		MaxVelocity:   c.Motion.MaxVelocity,
		Sensitivity:   c.Motion.Sensitivity,
		DragSign:      c.Motion.DragSign,
		EaseFactor:    c.Motion.EaseFactor,
		SnapEpsilon:   c.Motion.SnapEpsilon,
		PauseDuration: c.Motion.Pause.D(),
	}
}

func (c Config) LoaderParams() loader.Params {
	return loader.Params{
		Frames:     c.Assets.Frames,
		MinVisible: c.Loader.MinVisible.D(),
		Watchdog:   c.Loader.Watchdog.D(),
	}
}

func (c Config) Commands() bridge.Commands {
	return bridge.Commands{Content: c.Host.ContentCmd, Close: c.Host.CloseCmd}
}

func (c Config) Paths() loader.PathTemplate {
	return loader.PathTemplate{Base: c.Assets.Base, Ext: c.Assets.Ext}
}

// VariantStrategy builds the configured strategy; counting strategies keep
// their counts in store.
func (c Config) VariantStrategy(store loader.Counter) loader.VariantStrategy {
	if c.Variants.Strategy == StrategyFixed {
		return loader.FixedVariant(c.Variants.Fixed)
	}
	return loader.CountingVariant{Store: store, Max: c.Variants.Max}
}
