// Package config loads mazeview settings. Values come from embedded
// defaults, then an optional YAML file, then MAZE_* environment variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/mazeview/internal/gfx"
	"github.com/samdwyer/mazeview/internal/surface"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Backends the mazeview command can render with.
const (
	BackendTerm  = "term"
	BackendPNG   = "png"
	BackendASCII = "ascii"
)

// Environment variables read by Load.
const (
	EnvFile            = "MAZE_CONFIG"
	EnvRows            = "MAZE_ROWS"
	EnvCols            = "MAZE_COLS"
	EnvSeed            = "MAZE_SEED"
	EnvBackend         = "MAZE_BACKEND"
	EnvAPI             = "MAZE_API"
	EnvWidth           = "MAZE_WIDTH"
	EnvHeight          = "MAZE_HEIGHT"
	EnvOutput          = "MAZE_OUTPUT"
	EnvShowPath        = "MAZE_SHOW_PATH"
	EnvWallColor       = "MAZE_WALL_COLOR"
	EnvFloorColor      = "MAZE_FLOOR_COLOR"
	EnvBackgroundColor = "MAZE_BACKGROUND_COLOR"
)

// Config holds every setting the hosts need.
type Config struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
	// Seed for maze generation. A seed of 0 means a random seed.
	Seed    int64  `yaml:"seed"`
	Backend string `yaml:"backend"`
	API     string `yaml:"api"`
	// Width and Height size the png backend's drawable and the initial window.
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Output   string `yaml:"output"`
	ShowPath bool   `yaml:"show_path"`
	Format   string `yaml:"format"`
	Colors   Colors `yaml:"colors"`
	Layout   Layout `yaml:"layout"`
}

// Colors are hex strings parsed by gfx.ParseColor.
type Colors struct {
	Background string `yaml:"background"`
	Floor      string `yaml:"floor"`
	Wall       string `yaml:"wall"`
	Path       string `yaml:"path"`
}

// Layout mirrors surface.Layout.
type Layout struct {
	Margin    float32 `yaml:"margin"`
	WallRatio float32 `yaml:"wall_ratio"`
	Square    bool    `yaml:"square"`
}

// Default returns the embedded defaults.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// FromEnv loads the file named by MAZE_CONFIG, if any, and the environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv(EnvFile))
}

// Load reads defaults, overlays the YAML file at path when path is not
// empty, overlays environment variables and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for _, v := range []struct {
		key string
		dst *int
	}{
		{EnvRows, &c.Rows},
		{EnvCols, &c.Cols},
		{EnvWidth, &c.Width},
		{EnvHeight, &c.Height},
	} {
		if s, ok := os.LookupEnv(v.key); ok {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%w: %s must be an integer: %v", ErrInvalid, v.key, err)
			}
			*v.dst = n
		}
	}
	if s, ok := os.LookupEnv(EnvSeed); ok {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %v", ErrInvalid, EnvSeed, err)
		}
		c.Seed = n
	}
	if s, ok := os.LookupEnv(EnvShowPath); ok {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%w: %s must be a boolean: %v", ErrInvalid, EnvShowPath, err)
		}
		c.ShowPath = b
	}
	for _, v := range []struct {
		key string
		dst *string
	}{
		{EnvBackend, &c.Backend},
		{EnvAPI, &c.API},
		{EnvOutput, &c.Output},
		{EnvWallColor, &c.Colors.Wall},
		{EnvFloorColor, &c.Colors.Floor},
		{EnvBackgroundColor, &c.Colors.Background},
	} {
		if s, ok := os.LookupEnv(v.key); ok {
			*v.dst = s
		}
	}
	return nil
}

// Validate checks dimensions, names and colors.
func (c Config) Validate() error {
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("%w: maze must be at least 1x1, got %dx%d", ErrInvalid, c.Rows, c.Cols)
	}
	switch c.Backend {
	case BackendTerm, BackendPNG, BackendASCII:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	if c.Backend == BackendPNG {
		if c.Width < 1 || c.Height < 1 {
			return fmt.Errorf("%w: png size must be positive, got %dx%d", ErrInvalid, c.Width, c.Height)
		}
		if c.Output == "" {
			return fmt.Errorf("%w: png backend needs an output path", ErrInvalid)
		}
	}
	if _, ok := gfx.ParseAPIVersion(c.API); !ok {
		return fmt.Errorf("%w: unknown api %q", ErrInvalid, c.API)
	}
	if _, err := c.pixelFormat(); err != nil {
		return err
	}
	if _, err := c.palette(); err != nil {
		return err
	}
	if c.Layout.Margin < 0 || c.Layout.WallRatio <= 0 || c.Layout.WallRatio >= 0.5 {
		return fmt.Errorf("%w: layout margin %v wall_ratio %v", ErrInvalid, c.Layout.Margin, c.Layout.WallRatio)
	}
	return nil
}

// Surface converts the settings into a renderer configuration.
func (c Config) Surface() (surface.Config, error) {
	api, ok := gfx.ParseAPIVersion(c.API)
	if !ok {
		return surface.Config{}, fmt.Errorf("%w: unknown api %q", ErrInvalid, c.API)
	}
	format, err := c.pixelFormat()
	if err != nil {
		return surface.Config{}, err
	}
	palette, err := c.palette()
	if err != nil {
		return surface.Config{}, err
	}
	return surface.Config{
		Layer:    gfx.LayerConfig{Opaque: true, Format: format},
		API:      api,
		Palette:  palette,
		Layout:   surface.Layout(c.Layout),
		ShowPath: c.ShowPath,
	}, nil
}

func (c Config) pixelFormat() (gfx.PixelFormat, error) {
	switch c.Format {
	case "rgba8", "":
		return gfx.FormatRGBA8, nil
	case "rgb565":
		return gfx.FormatRGB565, nil
	}
	return 0, fmt.Errorf("%w: unknown pixel format %q", ErrInvalid, c.Format)
}

func (c Config) palette() (surface.Palette, error) {
	var p surface.Palette
	for _, v := range []struct {
		name string
		src  string
		dst  *gfx.Color
	}{
		{"background", c.Colors.Background, &p.Background},
		{"floor", c.Colors.Floor, &p.Floor},
		{"wall", c.Colors.Wall, &p.Wall},
		{"path", c.Colors.Path, &p.Path},
	} {
		col, err := gfx.ParseColor(v.src)
		if err != nil {
			return p, fmt.Errorf("%w: %s color: %v", ErrInvalid, v.name, err)
		}
		*v.dst = col
	}
	return p, nil
}
