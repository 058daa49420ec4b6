package driver

import (
	"time"

	"github.com/san-kum/vectorize/internal/anneal"
	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
)

// Config is the temperature schedule, frame pacing and stop conditions of a
// run. A zero stop condition is disabled; with none set the run ends only
// when its context is cancelled.
type Config struct {
	StartTemperature float64       `yaml:"start_temperature" json:"start_temperature"`
	Cooling          float64       `yaml:"cooling" json:"cooling"`
	MinTemperature   float64       `yaml:"min_temperature" json:"min_temperature"`
	FPS              float64       `yaml:"fps" json:"fps"`
	MaxGenerations   int           `yaml:"max_generations" json:"max_generations"`
	Duration         time.Duration `yaml:"duration" json:"duration"`
	TargetFitness    float64       `yaml:"target_fitness" json:"target_fitness"`
	HistoryInterval  int           `yaml:"history_interval" json:"history_interval"`
}

// DefaultConfig cools from 1 by 0.001 per generation, unthrottled, for
// 20000 generations.
func DefaultConfig() Config {
	return Config{
		StartTemperature: 1.0,
		Cooling:          0.001,
		MinTemperature:   0,
		MaxGenerations:   20000,
		HistoryInterval:  10,
	}
}

// Temperature returns the schedule value at generation gen.
func (c Config) Temperature(gen int) float64 {
	t := c.StartTemperature - float64(gen)*c.Cooling
	if t < c.MinTemperature {
		return c.MinTemperature
	}
	return t
}

// Schedule is a temperature source other than the linear one. Reset is
// called at the start of every run; Next once per generation with the
// previous step's outcome (the zero StepResult at generation 0). The driver
// never lets the temperature rise: a value above the previous step's is
// lowered to it.
type Schedule interface {
	Reset(cfg Config)
	Next(gen int, prev anneal.StepResult) float64
}

// Tick is what observers see after every step.
type Tick struct {
	Generation  int
	Temperature float64
	Elapsed     time.Duration
	Step        anneal.StepResult
	Polygons    int
	Vertices    int
}

type Observer interface {
	OnTick(t Tick)
}

// Metric accumulates a single statistic over a run.
type Metric interface {
	Name() string
	Observe(t Tick)
	Value() float64
	Reset()
}

// Sample is one point of the fitness history.
type Sample struct {
	Generation  int     `json:"generation"`
	Fitness     float64 `json:"fitness"`
	Temperature float64 `json:"temperature"`
	Polygons    int     `json:"polygons"`
}

type StopReason string

const (
	StopGenerations StopReason = "generations"
	StopDuration    StopReason = "duration"
	StopTarget      StopReason = "target"
	StopCanceled    StopReason = "canceled"
	StopCallback    StopReason = "callback"
	StopError       StopReason = "error"
)

// Result summarises a run. BestFitness is the lowest fitness any step
// reached; FinalFitness belongs to the candidate the run ended with, which is
// what Snapshot and State return. FinalTemperature is the temperature of the
// last completed step.
type Result struct {
	Generations      int
	Accepted         int
	Improved         int
	BestFitness      float64
	FinalFitness     float64
	FinalTemperature float64
	Elapsed          time.Duration
	History          []Sample
	Metrics          map[string]float64
	Reason           StopReason
}

// AcceptanceRate is the fraction of generations that were accepted.
func (r *Result) AcceptanceRate() float64 {
	if r.Generations == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(r.Generations)
}

// Frame is an immutable copy of the live candidate, safe to hand to another
// goroutine.
type Frame struct {
	Tick    Tick
	Gene    geom.Gene
	Pixels  imaging.Buffer
	Fitness float64
}
