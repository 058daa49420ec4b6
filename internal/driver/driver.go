package driver

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/vectorize/internal/anneal"
	"github.com/san-kum/vectorize/internal/geom"
)

// Driver owns the live state and calls the controller once per tick.
type Driver struct {
	ctrl      *anneal.Controller
	st        *anneal.State
	metrics   []Metric
	observers []Observer
	limits    *geom.Limits
	schedule  Schedule

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(ctrl *anneal.Controller, st *anneal.State) *Driver {
	return &Driver{
		ctrl:      ctrl,
		st:        st,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// ValidateWith checks the gene against l after every step and fails the run
// on the first violation.
func (d *Driver) ValidateWith(l geom.Limits) { d.limits = &l }

// SetSchedule replaces the linear temperature of Config with s. A nil
// schedule restores the linear one.
func (d *Driver) SetSchedule(s Schedule) { d.schedule = s }

func (d *Driver) State() *anneal.State { return d.st }

// Snapshot copies the live candidate into a Frame.
func (d *Driver) Snapshot(t Tick) Frame {
	c := d.st.Candidate
	return Frame{
		Tick:    t,
		Gene:    c.Gene.Clone(),
		Pixels:  c.Pixels.Clone(),
		Fitness: c.Fitness,
	}
}

// Run steps until a stop condition holds. On cancellation the partial
// result is returned together with ctx.Err().
func (d *Driver) Run(ctx context.Context, cfg Config) (*Result, error) {
	return d.run(ctx, cfg, nil)
}

// RunWithCallback is Run with a hook after every tick. Returning false from
// callback ends the run with StopCallback. The callback runs on the driver's
// goroutine and may block, which pauses the run.
func (d *Driver) RunWithCallback(ctx context.Context, cfg Config, callback func(Tick) bool) (*Result, error) {
	return d.run(ctx, cfg, callback)
}

func (d *Driver) run(ctx context.Context, cfg Config, callback func(Tick) bool) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		BestFitness: d.st.Candidate.Fitness,
		History:     make([]Sample, 0, historyCap(cfg)),
		Metrics:     make(map[string]float64),
	}
	for _, m := range d.metrics {
		m.Reset()
	}

	start := d.now()
	var frame time.Duration
	if cfg.FPS > 0 {
		frame = time.Duration(float64(time.Second) / cfg.FPS)
	}
	next := start
	lastRecorded := -1

	var (
		prev    anneal.StepResult
		temp    float64
		applied = cfg.Temperature(0) // temperature of the last completed step
	)
	if d.schedule != nil {
		d.schedule.Reset(cfg)
	}
	temperature := func(gen int) float64 {
		if d.schedule == nil {
			return cfg.Temperature(gen)
		}
		t := d.schedule.Next(gen, prev)
		if gen > 0 && t > applied {
			return applied
		}
		return t
	}

	finish := func(reason StopReason) {
		result.Reason = reason
		result.Elapsed = d.now().Sub(start)
		result.FinalTemperature = applied
		result.FinalFitness = d.st.Candidate.Fitness
		if result.Generations > 0 && lastRecorded != result.Generations-1 {
			result.History = append(result.History, d.sample(result.Generations-1, applied))
		}
		for _, m := range d.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}

	for gen := 0; ; gen++ {
		select {
		case <-ctx.Done():
			finish(StopCanceled)
			return result, ctx.Err()
		default:
		}

		if reason, stop := d.shouldStop(cfg, gen, d.now().Sub(start)); stop {
			finish(reason)
			return result, nil
		}

		temp = temperature(gen)
		res, err := d.ctrl.Step(d.st, temp)
		if err != nil {
			finish(StopError)
			return result, &StepError{Generation: gen, Temperature: temp, Wrapped: err}
		}
		if d.limits != nil {
			if err := d.st.Candidate.Gene.Validate(*d.limits); err != nil {
				finish(StopError)
				return result, &StepError{Generation: gen, Temperature: temp, Wrapped: fmt.Errorf("%w: %w", ErrInvalidGene, err)}
			}
		}

		result.Generations++
		if res.Accepted {
			result.Accepted++
		}
		if res.Improved {
			result.Improved++
		}
		result.BestFitness = math.Min(result.BestFitness, d.st.Candidate.Fitness)
		prev, applied = res, temp

		tick := Tick{
			Generation:  gen,
			Temperature: temp,
			Elapsed:     d.now().Sub(start),
			Step:        res,
			Polygons:    len(d.st.Candidate.Gene),
			Vertices:    d.st.Candidate.Gene.VertexCount(),
		}
		for _, m := range d.metrics {
			m.Observe(tick)
		}
		for _, obs := range d.observers {
			obs.OnTick(tick)
		}
		if cfg.HistoryInterval > 0 && gen%cfg.HistoryInterval == 0 {
			result.History = append(result.History, d.sample(gen, temp))
			lastRecorded = gen
		}

		if callback != nil && !callback(tick) {
			finish(StopCallback)
			return result, nil
		}

		if frame > 0 {
			next = next.Add(frame)
			if wait := next.Sub(d.now()); wait > 0 {
				if err := d.sleep(ctx, wait); err != nil {
					finish(StopCanceled)
					return result, err
				}
			} else {
				next = d.now()
			}
		}
	}
}

func (d *Driver) shouldStop(cfg Config, gen int, elapsed time.Duration) (StopReason, bool) {
	switch {
	case cfg.MaxGenerations > 0 && gen >= cfg.MaxGenerations:
		return StopGenerations, true
	case cfg.Duration > 0 && elapsed >= cfg.Duration:
		return StopDuration, true
	case cfg.TargetFitness > 0 && d.st.Candidate.Fitness <= cfg.TargetFitness:
		return StopTarget, true
	}
	return "", false
}

func (d *Driver) sample(gen int, temp float64) Sample {
	c := d.st.Candidate
	return Sample{
		Generation:  gen,
		Fitness:     c.Fitness,
		Temperature: temp,
		Polygons:    len(c.Gene),
	}
}

// Validate reports the first out-of-range field of cfg.
func (cfg Config) Validate() error {
	if cfg.StartTemperature < 0 {
		return fmt.Errorf("%w: start temperature must be non-negative, got %f", ErrInvalidConfig, cfg.StartTemperature)
	}
	if cfg.Cooling < 0 {
		return fmt.Errorf("%w: cooling must be non-negative, got %f", ErrInvalidConfig, cfg.Cooling)
	}
	if cfg.MinTemperature < 0 || cfg.MinTemperature > cfg.StartTemperature {
		return fmt.Errorf("%w: min temperature must be in [0, %f], got %f", ErrInvalidConfig, cfg.StartTemperature, cfg.MinTemperature)
	}
	if cfg.FPS < 0 {
		return fmt.Errorf("%w: fps must be non-negative, got %f", ErrInvalidConfig, cfg.FPS)
	}
	if cfg.MaxGenerations < 0 || cfg.Duration < 0 || cfg.TargetFitness < 0 {
		return fmt.Errorf("%w: stop conditions must be non-negative", ErrInvalidConfig)
	}
	if cfg.HistoryInterval < 0 {
		return fmt.Errorf("%w: history interval must be non-negative, got %d", ErrInvalidConfig, cfg.HistoryInterval)
	}
	return nil
}

func historyCap(cfg Config) int {
	if cfg.HistoryInterval <= 0 || cfg.MaxGenerations <= 0 {
		return 0
	}
	return cfg.MaxGenerations/cfg.HistoryInterval + 2
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
