package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/vectorize/internal/control"
	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/mutate"
	"github.com/san-kum/vectorize/internal/render"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Anneal.Schedule.StartTemperature != 1.0 {
		t.Errorf("expected start temperature 1, got %f", cfg.Anneal.Schedule.StartTemperature)
	}
	if cfg.Anneal.Schedule.Cooling != 0.001 {
		t.Errorf("expected cooling 0.001, got %f", cfg.Anneal.Schedule.Cooling)
	}
	if cfg.Anneal.Seed.InitialPolygons != 3 || cfg.Anneal.Seed.InitialVertices != 8 {
		t.Errorf("unexpected seed options %+v", cfg.Anneal.Seed)
	}
	if cfg.Mutation.MaxPolygons != 255 {
		t.Errorf("expected 255 max polygons, got %d", cfg.Mutation.MaxPolygons)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectorize.yaml")
	cfg := DefaultConfig()
	cfg.Render.Mode = string(render.ModeStrip)
	cfg.Anneal.Schedule.Duration = 90 * time.Second
	cfg.Mutation.AddPolygonRate = 0.01
	cfg.Run.Seed = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "anneal:\n  cooling: 0.0005\n  duration: 2m\nmutation:\n  max_polygons: 50\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Anneal.Schedule.Cooling != 0.0005 {
		t.Errorf("expected cooling 0.0005, got %f", cfg.Anneal.Schedule.Cooling)
	}
	if cfg.Anneal.Schedule.Duration != 2*time.Minute {
		t.Errorf("expected 2m duration, got %s", cfg.Anneal.Schedule.Duration)
	}
	if cfg.Mutation.MaxPolygons != 50 {
		t.Errorf("expected 50 max polygons, got %d", cfg.Mutation.MaxPolygons)
	}
	if cfg.Anneal.Schedule.StartTemperature != 1.0 {
		t.Error("unset start temperature should keep its default")
	}
	if cfg.Mutation.Alpha != mutate.DefaultParams().Alpha {
		t.Error("unset alpha channel should keep its default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
		want error
	}{
		{"negative max size", func(c *Config) { c.Image.MaxSize = -1 }, ErrInvalid},
		{"two channels", func(c *Config) { c.Image.Channels = 2 }, ErrInvalid},
		{"bad mutation", func(c *Config) { c.Mutation.MaxPolygons = 0 }, mutate.ErrInvalidParams},
		{"no seed polygons", func(c *Config) { c.Anneal.Seed.InitialPolygons = 0 }, ErrInvalid},
		{"seed above cap", func(c *Config) { c.Anneal.Seed.InitialPolygons = 300 }, ErrInvalid},
		{"bad schedule", func(c *Config) { c.Anneal.Schedule.Cooling = -1 }, driver.ErrInvalidConfig},
		{"bad adaptive target", func(c *Config) {
			c.Anneal.Adaptive.Enabled = true
			c.Anneal.Adaptive.TargetAcceptance = 1.5
		}, control.ErrInvalidAdaptive},
		{"bad mode", func(c *Config) { c.Render.Mode = "fan" }, render.ErrUnknownMode},
		{"bright background", func(c *Config) { c.Render.Background = [3]float64{2, 0, 0} }, ErrInvalid},
		{"zero scale", func(c *Config) { c.Render.ExportScale = 0 }, ErrInvalid},
		{"zero runs", func(c *Config) { c.Run.Runs = 0 }, ErrInvalid},
		{"bad store", func(c *Config) { c.Run.Store = "redis" }, ErrInvalid},
		{"bad level", func(c *Config) { c.Run.LogLevel = "loud" }, ErrInvalid},
		{"bad format", func(c *Config) { c.Run.LogFormat = "xml" }, ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("reference")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Anneal.Schedule.FPS != 60 {
		t.Errorf("expected 60 fps, got %f", cfg.Anneal.Schedule.FPS)
	}
	if cfg.RenderOptions().Mode != render.ModeStrip {
		t.Errorf("expected strip mode, got %s", cfg.RenderOptions().Mode)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if DefaultConfig().Anneal.Schedule.FPS != 0 {
		t.Error("applying a preset changed the defaults")
	}
}

func TestTemperatureSchedule(t *testing.T) {
	if DefaultConfig().TemperatureSchedule() != nil {
		t.Error("default config should cool linearly")
	}
	cfg := GetPreset("adaptive")
	sched, ok := cfg.TemperatureSchedule().(*control.Adaptive)
	if !ok {
		t.Fatalf("expected adaptive schedule, got %T", cfg.TemperatureSchedule())
	}
	sched.Reset(cfg.Schedule())
	if got := sched.Rate(); got != cfg.Anneal.Adaptive.TargetAcceptance {
		t.Errorf("expected initial rate %v, got %v", cfg.Anneal.Adaptive.TargetAcceptance, got)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("VECTORIZE_DATA_DIR", "/tmp/runs")
	t.Setenv("VECTORIZE_STORE", "sqlite")
	t.Setenv("VECTORIZE_SEED", "7")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env failed: %v", err)
	}
	cfg := DefaultConfig()
	env.Apply(cfg)

	if cfg.Run.DataDir != "/tmp/runs" || cfg.Run.Store != StoreSQLite || cfg.Run.Seed != 7 {
		t.Errorf("env not applied: %+v", cfg.Run)
	}
	if cfg.Run.LogLevel != DefaultLogLevel {
		t.Errorf("unset level overwritten: %q", cfg.Run.LogLevel)
	}
	if cfg.Image.MaxSize != DefaultMaxSize {
		t.Errorf("unset max size overwritten: %d", cfg.Image.MaxSize)
	}
}

func TestEnv_BadSeed(t *testing.T) {
	t.Setenv("VECTORIZE_SEED", "seven")
	if _, err := LoadEnv(); err == nil {
		t.Error("expected error for non-numeric seed")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("new logger failed: %v", err)
	}
	log.Info("hidden")
	log.Warn("shown", "run", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record passed a warn logger")
	}
	if !strings.Contains(out, `"run":"abc"`) {
		t.Errorf("expected json attribute, got %q", out)
	}

	if _, err := NewLogger(&buf, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
