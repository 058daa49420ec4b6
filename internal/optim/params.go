package optim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/vectorize/internal/config"
)

// Tunables are the config knobs a search may vary.
var Tunables = map[string]func(*config.Config, float64){
	"start_temperature":   func(c *config.Config, v float64) { c.Anneal.Schedule.StartTemperature = v },
	"cooling":             func(c *config.Config, v float64) { c.Anneal.Schedule.Cooling = v },
	"min_temperature":     func(c *config.Config, v float64) { c.Anneal.Schedule.MinTemperature = v },
	"initial_polygons":    func(c *config.Config, v float64) { c.Anneal.Seed.InitialPolygons = int(v) },
	"initial_vertices":    func(c *config.Config, v float64) { c.Anneal.Seed.InitialVertices = int(v) },
	"max_polygons":        func(c *config.Config, v float64) { c.Mutation.MaxPolygons = int(v) },
	"add_polygon_rate":    func(c *config.Config, v float64) { c.Mutation.AddPolygonRate = v },
	"remove_polygon_rate": func(c *config.Config, v float64) { c.Mutation.RemovePolygonRate = v },
	"swap_polygon_rate":   func(c *config.Config, v float64) { c.Mutation.SwapPolygonRate = v },
	"add_vertex_rate":     func(c *config.Config, v float64) { c.Mutation.AddVertexRate = v },
	"remove_vertex_rate":  func(c *config.Config, v float64) { c.Mutation.RemoveVertexRate = v },
	"color_sigma": func(c *config.Config, v float64) {
		c.Mutation.Red.Sigma, c.Mutation.Green.Sigma, c.Mutation.Blue.Sigma = v, v, v
	},
	"alpha_sigma":  func(c *config.Config, v float64) { c.Mutation.Alpha.Sigma = v },
	"vertex_sigma": func(c *config.Config, v float64) { c.Mutation.Vertex.Sigma = v },
	// target_acceptance switches the run to the adaptive schedule.
	"target_acceptance": func(c *config.Config, v float64) {
		c.Anneal.Adaptive.Enabled = true
		c.Anneal.Adaptive.TargetAcceptance = v
	},
}

func TunableNames() []string {
	names := make([]string, 0, len(Tunables))
	for name := range Tunables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply returns a copy of base with params set and validated.
func Apply(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := base.Clone()
	for name, v := range params {
		set, ok := Tunables[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter: %s", name)
		}
		set(cfg, v)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseAxis parses "name=v1,v2,..." into a search axis.
func ParseAxis(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("parameter %q: expected name=v1,v2,...", s)
	}
	if _, ok := Tunables[name]; !ok {
		return "", nil, fmt.Errorf("unknown parameter: %s", name)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
