package config

import (
	"sort"
	"time"

	"github.com/san-kum/vectorize/internal/render"
)

// Presets are named adjustments applied to the defaults.
var Presets = map[string]func(*Config){
	// reference paces like the interactive desktop version: 60 frames a
	// second, triangle strips, cooling to zero over a thousand frames.
	"reference": func(c *Config) {
		c.Anneal.Schedule.FPS = 60
		c.Anneal.Schedule.MaxGenerations = 0
		c.Render.Mode = string(render.ModeStrip)
	},
	"quick": func(c *Config) {
		c.Image.MaxSize = 64
		c.Anneal.Schedule.MaxGenerations = 5000
	},
	"detailed": func(c *Config) {
		c.Image.MaxSize = 256
		c.Anneal.Schedule.MaxGenerations = 200000
		c.Anneal.Schedule.Cooling = 0.00001
		c.Anneal.Schedule.HistoryInterval = 100
	},
	"greedy": func(c *Config) {
		c.Anneal.Schedule.StartTemperature = 0
		c.Anneal.Schedule.Cooling = 0
	},
	"timed": func(c *Config) {
		c.Anneal.Schedule.MaxGenerations = 0
		c.Anneal.Schedule.Duration = 5 * time.Minute
	},
	// adaptive holds the acceptance rate near its target instead of
	// cooling on a fixed line.
	"adaptive": func(c *Config) {
		c.Anneal.Adaptive.Enabled = true
		c.Anneal.Schedule.StartTemperature = 0.1
		c.Anneal.Schedule.MinTemperature = 0.0001
	},
	"gray": func(c *Config) {
		c.Image.Channels = 1
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
