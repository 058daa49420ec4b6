// Package experiment assembles one optimisation from a validated config:
// mutation engine, rasteriser, annealing controller, driver and metrics.
package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/vectorize/internal/analysis"
	"github.com/san-kum/vectorize/internal/anneal"
	"github.com/san-kum/vectorize/internal/config"
	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
	"github.com/san-kum/vectorize/internal/metrics"
	"github.com/san-kum/vectorize/internal/mutate"
	"github.com/san-kum/vectorize/internal/render"
	"github.com/san-kum/vectorize/internal/storage"
)

// Options select the lineage of an experiment.
type Options struct {
	// Seed of the random source. Zero picks a time-based seed.
	Seed int64
	// Resume starts from this gene instead of random polygons.
	Resume geom.Gene
}

type Experiment struct {
	cfg    *config.Config
	target imaging.Buffer
	seed   int64
	driver *driver.Driver
}

// New wires a driver for target. cfg must already be validated.
func New(cfg *config.Config, target imaging.Buffer, opts Options) (*Experiment, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	engine, err := mutate.NewEngine(cfg.MutationParams(), rnd, target)
	if err != nil {
		return nil, err
	}
	ctrl := anneal.New(engine, render.New(cfg.RenderOptions()), rnd)

	var st *anneal.State
	if len(opts.Resume) > 0 {
		st, err = anneal.NewStateFromGene(target, opts.Resume.Clone())
		if err == nil {
			err = ctrl.Evaluate(st)
		}
	} else {
		st, err = anneal.NewState(target, engine, cfg.SeedOptions())
	}
	if err != nil {
		return nil, fmt.Errorf("experiment: initial state: %w", err)
	}

	d := driver.New(ctrl, st)
	for _, m := range metrics.Standard() {
		d.AddMetric(m)
	}
	if cfg.Run.Validate {
		d.ValidateWith(engine.Params().Limits())
	}
	if sched := cfg.TemperatureSchedule(); sched != nil {
		d.SetSchedule(sched)
	}

	return &Experiment{cfg: cfg, target: target, seed: seed, driver: d}, nil
}

// Factory adapts New to driver.NewEnsemble.
func Factory(cfg *config.Config, target imaging.Buffer) driver.Factory {
	return func(seed int64) (*driver.Driver, error) {
		e, err := New(cfg, target, Options{Seed: seed})
		if err != nil {
			return nil, err
		}
		return e.Driver(), nil
	}
}

func (e *Experiment) Driver() *driver.Driver { return e.driver }

func (e *Experiment) Seed() int64 { return e.seed }

// Run drives the experiment with the configured schedule.
func (e *Experiment) Run(ctx context.Context) (*driver.Result, error) {
	return e.driver.Run(ctx, e.cfg.Schedule())
}

// Record packages a finished run for storage.
func (e *Experiment) Record(image string, res *driver.Result) *storage.Run {
	return Record(e.cfg, image, e.seed, e.driver, res)
}

// MetricResidualDetail is the share of the final residual power in the upper
// half of the spatial frequency bands.
const MetricResidualDetail = "residual_detail"

const spectrumBins = 8

// Record packages the final candidate of d and its result for storage.
func Record(cfg *config.Config, image string, seed int64, d *driver.Driver, res *driver.Result) *storage.Run {
	st := d.State()
	c := st.Candidate

	values := make(map[string]float64, len(res.Metrics)+1)
	for k, v := range res.Metrics {
		values[k] = v
	}
	if s, err := analysis.ResidualSpectrum(st.Target, c.Pixels, spectrumBins); err == nil {
		values[MetricResidualDetail] = s.HighShare()
	}
	return &storage.Run{
		Meta: storage.RunMetadata{
			Image:       image,
			Seed:        seed,
			Width:       st.Target.Width,
			Height:      st.Target.Height,
			Channels:    st.Target.Channels,
			Generations: res.Generations,
			Accepted:    res.Accepted,
			BestFitness: c.Fitness,
			Polygons:    len(c.Gene),
			Vertices:    c.Gene.VertexCount(),
			Elapsed:     res.Elapsed,
			Reason:      string(res.Reason),
			Schedule:    cfg.Schedule(),
			Render:      cfg.RenderOptions(),
			Metrics:     values,
		},
		History: res.History,
		Gene:    c.Gene.Clone(),
		Best:    c.Pixels.ToImage(),
	}
}
