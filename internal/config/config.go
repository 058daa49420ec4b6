package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vectorize/internal/anneal"
	"github.com/san-kum/vectorize/internal/control"
	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
	"github.com/san-kum/vectorize/internal/mutate"
	"github.com/san-kum/vectorize/internal/render"
)

const (
	DefaultMaxSize  = 128
	DefaultDataDir  = ".vectorize"
	DefaultStore    = StoreFile
	DefaultExport   = 4
	DefaultLogLevel = "info"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Image    ImageConfig   `yaml:"image"`
	Mutation mutate.Params `yaml:"mutation"`
	Anneal   AnnealConfig  `yaml:"anneal"`
	Render   RenderConfig  `yaml:"render"`
	Run      RunConfig     `yaml:"run"`
}

type ImageConfig struct {
	MaxSize  int `yaml:"max_size"`
	Channels int `yaml:"channels"`
}

type AnnealConfig struct {
	Seed     anneal.Options `yaml:",inline"`
	Schedule driver.Config  `yaml:",inline"`
	// Adaptive replaces linear cooling with acceptance-rate feedback.
	Adaptive control.AdaptiveConfig `yaml:"adaptive"`
}

type RenderConfig struct {
	Mode        string     `yaml:"mode"`
	Background  [3]float64 `yaml:"background,flow"`
	ExportScale int        `yaml:"export_scale"`
}

type RunConfig struct {
	Seed      int64  `yaml:"seed"`
	Runs      int    `yaml:"runs"`
	Validate  bool   `yaml:"validate"`
	DataDir   string `yaml:"data_dir"`
	Store     string `yaml:"store"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func DefaultConfig() *Config {
	return &Config{
		Image:    ImageConfig{MaxSize: DefaultMaxSize},
		Mutation: mutate.DefaultParams(),
		Anneal: AnnealConfig{
			Seed:     anneal.DefaultOptions(),
			Schedule: driver.DefaultConfig(),
			Adaptive: control.DefaultAdaptiveConfig(),
		},
		Render: RenderConfig{
			Mode:        string(render.ModePolygon),
			ExportScale: DefaultExport,
		},
		Run: RunConfig{
			Runs:      1,
			DataDir:   DefaultDataDir,
			Store:     DefaultStore,
			LogLevel:  DefaultLogLevel,
			LogFormat: "text",
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file over base, which is modified and returned.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) Validate() error {
	if c.Image.MaxSize < 0 {
		return fmt.Errorf("%w: image.max_size must be non-negative, got %d", ErrInvalid, c.Image.MaxSize)
	}
	switch c.Image.Channels {
	case 0, 1, 3, 4:
	default:
		return fmt.Errorf("%w: image.channels must be 0, 1, 3 or 4, got %d", ErrInvalid, c.Image.Channels)
	}
	if err := c.Mutation.Validate(); err != nil {
		return err
	}
	if c.Anneal.Seed.InitialPolygons < 1 || c.Anneal.Seed.InitialVertices < 1 {
		return fmt.Errorf("%w: anneal.initial_polygons and initial_vertices must be positive", ErrInvalid)
	}
	if c.Anneal.Seed.InitialPolygons > c.Mutation.MaxPolygons {
		return fmt.Errorf("%w: anneal.initial_polygons %d exceeds mutation.max_polygons %d",
			ErrInvalid, c.Anneal.Seed.InitialPolygons, c.Mutation.MaxPolygons)
	}
	if err := c.Anneal.Schedule.Validate(); err != nil {
		return err
	}
	if err := c.Anneal.Adaptive.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := render.ParseMode(c.Render.Mode); err != nil {
		return err
	}
	for _, v := range c.Render.Background {
		if !geom.Unit.Contains(v) {
			return fmt.Errorf("%w: render.background channels must be in [0,1]", ErrInvalid)
		}
	}
	if c.Render.ExportScale < 1 {
		return fmt.Errorf("%w: render.export_scale must be at least 1, got %d", ErrInvalid, c.Render.ExportScale)
	}
	if c.Run.Runs < 1 {
		return fmt.Errorf("%w: run.runs must be at least 1, got %d", ErrInvalid, c.Run.Runs)
	}
	switch c.Run.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("%w: run.store must be %q or %q, got %q", ErrInvalid, StoreFile, StoreSQLite, c.Run.Store)
	}
	if _, err := ParseLevel(c.Run.LogLevel); err != nil {
		return err
	}
	switch c.Run.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: run.log_format must be text or json, got %q", ErrInvalid, c.Run.LogFormat)
	}
	return nil
}

func (c *Config) ImageOptions() imaging.Options {
	return imaging.Options{MaxSize: c.Image.MaxSize, Channels: c.Image.Channels}
}

func (c *Config) MutationParams() mutate.Params { return c.Mutation }

func (c *Config) SeedOptions() anneal.Options { return c.Anneal.Seed }

func (c *Config) Schedule() driver.Config { return c.Anneal.Schedule }

// TemperatureSchedule returns the feedback schedule, or nil when the run
// cools linearly.
func (c *Config) TemperatureSchedule() driver.Schedule {
	if !c.Anneal.Adaptive.Enabled {
		return nil
	}
	return control.NewAdaptive(c.Anneal.Adaptive)
}

// RenderOptions assumes c has been validated.
func (c *Config) RenderOptions() render.Options {
	mode, _ := render.ParseMode(c.Render.Mode)
	bg := c.Render.Background
	return render.Options{
		Mode:       mode,
		Background: geom.Color{R: bg[0], G: bg[1], B: bg[2], A: 1},
	}
}
