package control

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/vectorize/internal/anneal"
	"github.com/san-kum/vectorize/internal/driver"
)

var ErrInvalidAdaptive = errors.New("control: invalid adaptive schedule")

// AdaptiveConfig tunes the acceptance-rate controller.
type AdaptiveConfig struct {
	Enabled          bool    `yaml:"enabled" json:"enabled"`
	TargetAcceptance float64 `yaml:"target_acceptance" json:"target_acceptance"`
	Kp               float64 `yaml:"kp" json:"kp"`
	Ki               float64 `yaml:"ki" json:"ki"`
	Kd               float64 `yaml:"kd" json:"kd"`
	// Smoothing is the weight of the newest step in the acceptance average.
	Smoothing      float64 `yaml:"smoothing" json:"smoothing"`
	MaxTemperature float64 `yaml:"max_temperature" json:"max_temperature"`
}

// DefaultAdaptiveConfig holds acceptance near 5%.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{
		TargetAcceptance: 0.05,
		Kp:               2.0,
		Ki:               0.01,
		Kd:               0,
		Smoothing:        0.01,
		MaxTemperature:   1.0,
	}
}

func (c AdaptiveConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.TargetAcceptance <= 0 || c.TargetAcceptance >= 1 {
		return fmt.Errorf("%w: target_acceptance must be in (0,1), got %v", ErrInvalidAdaptive, c.TargetAcceptance)
	}
	if c.Smoothing <= 0 || c.Smoothing > 1 {
		return fmt.Errorf("%w: smoothing must be in (0,1], got %v", ErrInvalidAdaptive, c.Smoothing)
	}
	if c.MaxTemperature <= 0 {
		return fmt.Errorf("%w: max_temperature must be positive, got %v", ErrInvalidAdaptive, c.MaxTemperature)
	}
	if c.Kp < 0 || c.Ki < 0 || c.Kd < 0 {
		return fmt.Errorf("%w: gains must be non-negative", ErrInvalidAdaptive)
	}
	return nil
}

// Adaptive is a driver.Schedule that cools only as fast as the acceptance
// rate allows. The controller output scales the start temperature
// exponentially, so equal errors move the temperature by equal factors. The
// temperature never rises: while too few candidates are accepted it holds.
type Adaptive struct {
	cfg  AdaptiveConfig
	pid  *PID
	base float64
	min  float64
	rate float64
	temp float64
}

var _ driver.Schedule = (*Adaptive)(nil)

func NewAdaptive(cfg AdaptiveConfig) *Adaptive {
	pid := NewPID(cfg.Kp, cfg.Ki, cfg.Kd, cfg.TargetAcceptance)
	pid.IntegralLimit = 100
	return &Adaptive{cfg: cfg, pid: pid}
}

func (a *Adaptive) Reset(cfg driver.Config) {
	a.pid.Reset()
	a.base = cfg.StartTemperature
	if a.base <= 0 {
		a.base = a.cfg.MaxTemperature / 10
	}
	a.min = cfg.MinTemperature
	a.rate = a.cfg.TargetAcceptance
	a.temp = a.clamp(a.base)
}

// Next folds prev into the acceptance average and returns the temperature
// for generation gen.
func (a *Adaptive) Next(gen int, prev anneal.StepResult) float64 {
	if gen == 0 {
		return a.temp
	}
	accepted := 0.0
	if prev.Accepted {
		accepted = 1
	}
	a.rate += a.cfg.Smoothing * (accepted - a.rate)

	u := a.pid.Compute(a.rate, float64(gen))
	a.temp = math.Min(a.temp, a.clamp(a.base*math.Exp(u)))
	return a.temp
}

// Rate is the smoothed acceptance rate.
func (a *Adaptive) Rate() float64 { return a.rate }

func (a *Adaptive) clamp(t float64) float64 {
	return math.Max(a.min, math.Min(a.cfg.MaxTemperature, t))
}
