// Package automation runs scripted batches of optimisations from YAML
// scenario files, and single-parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vectorize/internal/config"
	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/experiment"
	"github.com/san-kum/vectorize/internal/imaging"
	"github.com/san-kum/vectorize/internal/optim"
	"github.com/san-kum/vectorize/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep is a single run in a scenario. Zero fields keep the base
// config's value.
type ScenarioStep struct {
	Image       string             `yaml:"image"`
	Preset      string             `yaml:"preset"`
	Seed        int64              `yaml:"seed"`
	Generations int                `yaml:"generations"`
	Duration    time.Duration      `yaml:"duration"`
	Params      map[string]float64 `yaml:"params"`
}

// StepResult is the outcome of one scenario step. RunID is empty when no
// store was given.
type StepResult struct {
	Image  string
	RunID  string
	Result *driver.Result
}

// LoadScenario loads a scenario from a YAML file. Relative image paths are
// resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	scenario.dir = filepath.Dir(path)

	return &scenario, nil
}

// StepConfig returns base with the step's preset, limits and params applied.
func (s *Scenario) StepConfig(base *config.Config, step ScenarioStep) (*config.Config, error) {
	cfg := base.Clone()
	if step.Preset != "" {
		apply, ok := config.Presets[step.Preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s", step.Preset)
		}
		apply(cfg)
	}
	if step.Generations > 0 {
		cfg.Anneal.Schedule.MaxGenerations = step.Generations
	}
	if step.Duration > 0 {
		cfg.Anneal.Schedule.Duration = step.Duration
	}
	if step.Seed != 0 {
		cfg.Run.Seed = step.Seed
	}
	return optim.Apply(cfg, step.Params)
}

func (s *Scenario) imagePath(p string) string {
	if filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}

// RunScenario executes all steps in order, saving each to st when it is
// not nil. It stops at the first failing step.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, st storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		slog.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "image", step.Image)

		cfg, err := scenario.StepConfig(base, step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		target, err := imaging.Load(scenario.imagePath(step.Image), cfg.ImageOptions())
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, target, experiment.Options{Seed: cfg.Run.Seed})
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Image: step.Image, Result: result}
		if st != nil {
			sr.RunID, err = st.Save(ctx, exp.Record(step.Image, result))
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep varies one tunable evenly between Min and Max.
type ParameterSweep struct {
	Param    string
	Min      float64
	Max      float64
	NumSteps int
	Seed     int64
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue     float64
	FinalFitness   float64
	AcceptanceRate float64
	Polygons       int
}

// Values returns the swept parameter values.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps < 2 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	values := make([]float64, s.NumSteps)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	return values
}

// RunSweep executes a parameter sweep against target. Every point uses the
// same seed, so only the parameter differs between runs.
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config, target imaging.Buffer) ([]SweepResult, error) {
	values := sweep.Values()
	results := make([]SweepResult, 0, len(values))

	seed := sweep.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	for i, v := range values {
		cfg, err := optim.Apply(base, map[string]float64{sweep.Param: v})
		if err != nil {
			return results, err
		}

		exp, err := experiment.New(cfg, target, experiment.Options{Seed: seed})
		if err != nil {
			return results, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			ParamValue:     v,
			FinalFitness:   result.FinalFitness,
			AcceptanceRate: result.AcceptanceRate(),
			Polygons:       len(exp.Driver().State().Candidate.Gene),
		})

		slog.Info("sweep point", "step", i+1, "of", len(values), "param", sweep.Param, "value", v, "fitness", result.FinalFitness)
	}

	return results, nil
}
