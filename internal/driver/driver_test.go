package driver

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vectorize/internal/anneal"
	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
	"github.com/san-kum/vectorize/internal/mutate"
)

// shrinking scales the first polygon's red channel by factor every call, so
// each step improves on a black target while factor < 1.
type shrinking struct{ factor float64 }

func (s shrinking) Mutate(g *geom.Gene, _ float64) mutate.Kind {
	(*g)[0].Color.R *= s.factor
	return mutate.PerturbGene
}

func (s shrinking) Seed(polygons, vertices int) geom.Gene {
	g := make(geom.Gene, polygons)
	for i := range g {
		g[i] = geom.Polygon{Color: geom.Color{R: 1, A: 0.2}, Vertices: make([]geom.Vertex, vertices)}
	}
	return g
}

type flood struct {
	failAfter int
	calls     *int
}

func (f flood) Render(g geom.Gene, dst *imaging.Buffer) error {
	if f.calls != nil {
		*f.calls++
		if *f.calls > f.failAfter {
			return errors.New("renderer lost")
		}
	}
	for i := range dst.Data {
		dst.Data[i] = g[0].Color.R
	}
	return nil
}

type half struct{}

func (half) Float64() float64 { return 0.5 }

type recorder struct{ ticks []Tick }

func (r *recorder) OnTick(t Tick) { r.ticks = append(r.ticks, t) }

type counter struct{ n int }

func (c *counter) Name() string   { return "count" }
func (c *counter) Observe(Tick)   { c.n++ }
func (c *counter) Value() float64 { return float64(c.n) }
func (c *counter) Reset()         { c.n = 0 }

// scripted sets the first polygon's red channel to the next value of reds,
// repeating the last one.
type scripted struct {
	reds  []float64
	calls int
}

func (s *scripted) Mutate(g *geom.Gene, _ float64) mutate.Kind {
	(*g)[0].Color.R = s.reds[min(s.calls, len(s.reds)-1)]
	s.calls++
	return mutate.PerturbGene
}

func (s *scripted) Seed(polygons, vertices int) geom.Gene {
	return shrinking{}.Seed(polygons, vertices)
}

type rising struct{}

func (rising) Reset(Config) {}

func (rising) Next(gen int, _ anneal.StepResult) float64 { return 0.1 * float64(gen+1) }

type fixedSchedule struct {
	temp   float64
	resets int
	gens   []int
	prev   []anneal.StepResult
}

func (f *fixedSchedule) Reset(Config) { f.resets++ }

func (f *fixedSchedule) Next(gen int, prev anneal.StepResult) float64 {
	f.gens = append(f.gens, gen)
	f.prev = append(f.prev, prev)
	return f.temp
}

func newDriver(m anneal.Mutator, r anneal.Renderer) *Driver {
	target, _ := imaging.NewBuffer(2, 2, 3)
	st, err := anneal.NewState(target, m, anneal.DefaultOptions())
	Expect(err).NotTo(HaveOccurred())
	return New(anneal.New(m, r, half{}), st)
}

var _ = Describe("Config", func() {
	It("cools linearly and floors at the minimum", func() {
		cfg := DefaultConfig()
		Expect(cfg.Temperature(0)).To(Equal(1.0))
		Expect(cfg.Temperature(500)).To(BeNumerically("~", 0.5, 1e-12))
		Expect(cfg.Temperature(5000)).To(Equal(0.0))

		cfg.MinTemperature = 0.1
		Expect(cfg.Temperature(5000)).To(Equal(0.1))
	})

	DescribeTable("rejects invalid values",
		func(mod func(*Config)) {
			cfg := DefaultConfig()
			mod(&cfg)
			d := newDriver(shrinking{0.9}, flood{})
			_, err := d.Run(context.Background(), cfg)
			Expect(err).To(MatchError(ErrInvalidConfig))
		},
		Entry("negative start", func(c *Config) { c.StartTemperature = -1 }),
		Entry("negative cooling", func(c *Config) { c.Cooling = -0.1 }),
		Entry("min above start", func(c *Config) { c.MinTemperature = 2 }),
		Entry("negative fps", func(c *Config) { c.FPS = -60 }),
		Entry("negative generations", func(c *Config) { c.MaxGenerations = -1 }),
		Entry("negative duration", func(c *Config) { c.Duration = -time.Second }),
		Entry("negative history interval", func(c *Config) { c.HistoryInterval = -5 }),
	)
})

var _ = Describe("Driver", func() {
	var cfg Config

	BeforeEach(func() {
		cfg = DefaultConfig()
		cfg.MaxGenerations = 50
		cfg.HistoryInterval = 10
	})

	It("stops after the generation limit", func() {
		d := newDriver(shrinking{0.9}, flood{})
		res, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Reason).To(Equal(StopGenerations))
		Expect(res.Generations).To(Equal(50))
		Expect(res.Accepted).To(Equal(50))
		Expect(res.Improved).To(Equal(50))
		Expect(res.AcceptanceRate()).To(Equal(1.0))
		Expect(res.BestFitness).To(Equal(d.State().Candidate.Fitness))
		Expect(res.FinalFitness).To(Equal(d.State().Candidate.Fitness))
		Expect(res.FinalTemperature).To(BeNumerically("~", 0.951, 1e-12))
	})

	It("records history at the interval and at the last generation", func() {
		d := newDriver(shrinking{0.9}, flood{})
		res, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		gens := make([]int, len(res.History))
		for i, s := range res.History {
			gens[i] = s.Generation
		}
		Expect(gens).To(Equal([]int{0, 10, 20, 30, 40, 49}))
		for i := 1; i < len(res.History); i++ {
			Expect(res.History[i].Fitness).To(BeNumerically("<=", res.History[i-1].Fitness))
		}
	})

	It("notifies observers and metrics with a cooling temperature", func() {
		d := newDriver(shrinking{0.9}, flood{})
		rec, cnt := &recorder{}, &counter{}
		d.AddObserver(rec)
		d.AddMetric(cnt)

		res, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.ticks).To(HaveLen(50))
		Expect(res.Metrics).To(HaveKeyWithValue("count", 50.0))
		for i := 1; i < len(rec.ticks); i++ {
			Expect(rec.ticks[i].Temperature).To(BeNumerically("<", rec.ticks[i-1].Temperature))
			Expect(rec.ticks[i].Generation).To(Equal(i))
		}
		Expect(rec.ticks[0].Polygons).To(Equal(3))
		Expect(rec.ticks[0].Vertices).To(Equal(24))
	})

	It("stops once the target fitness is reached", func() {
		cfg.MaxGenerations = 0
		cfg.TargetFitness = 0.5
		d := newDriver(shrinking{0.5}, flood{})

		res, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reason).To(Equal(StopTarget))
		// 0.25 after one halving of the red channel
		Expect(res.Generations).To(Equal(1))
	})

	It("stops when the wall-clock budget is spent", func() {
		cfg.MaxGenerations = 0
		cfg.Duration = 10 * time.Second
		d := newDriver(shrinking{0.99}, flood{})
		clock := time.Unix(0, 0)
		d.now = func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}

		res, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reason).To(Equal(StopDuration))
		Expect(res.Generations).To(BeNumerically(">", 0))
	})

	It("returns the partial result on cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cfg.MaxGenerations = 0
		d := newDriver(shrinking{0.99}, flood{})

		res, err := d.RunWithCallback(ctx, cfg, func(t Tick) bool {
			if t.Generation == 4 {
				cancel()
			}
			return true
		})
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Reason).To(Equal(StopCanceled))
		Expect(res.Generations).To(Equal(5))
	})

	It("stops when the callback declines", func() {
		d := newDriver(shrinking{0.9}, flood{})
		res, err := d.RunWithCallback(context.Background(), cfg, func(t Tick) bool {
			return t.Generation < 2
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reason).To(Equal(StopCallback))
		Expect(res.Generations).To(Equal(3))
	})

	It("wraps step failures with their generation", func() {
		calls := 0
		d := newDriver(shrinking{0.9}, flood{failAfter: 7, calls: &calls})

		res, err := d.Run(context.Background(), cfg)
		var stepErr *StepError
		Expect(errors.As(err, &stepErr)).To(BeTrue())
		Expect(stepErr.Generation).To(Equal(7))
		Expect(res.Reason).To(Equal(StopError))
		Expect(res.Generations).To(Equal(7))
	})

	It("fails when validation finds a broken gene", func() {
		d := newDriver(shrinking{0.9}, flood{})
		l := mutate.DefaultParams().Limits()
		l.MaxPolygons = 2
		d.ValidateWith(l)

		_, err := d.Run(context.Background(), cfg)
		Expect(err).To(MatchError(ErrInvalidGene))
		Expect(err).To(MatchError(geom.ErrTooManyPolygons))
	})

	It("paces frames at the configured rate", func() {
		cfg.MaxGenerations = 5
		cfg.FPS = 10
		d := newDriver(shrinking{0.9}, flood{})
		clock := time.Unix(0, 0)
		d.now = func() time.Time { return clock }
		var waits []time.Duration
		d.sleep = func(_ context.Context, w time.Duration) error {
			waits = append(waits, w)
			clock = clock.Add(w)
			return nil
		}

		_, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(waits).To(HaveLen(5))
		Expect(waits).To(HaveEach(100 * time.Millisecond))
	})

	It("snapshots a deep copy of the candidate", func() {
		d := newDriver(shrinking{0.9}, flood{})
		_, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		f := d.Snapshot(Tick{Generation: 49})
		f.Gene[0].Color.R = 42
		f.Pixels.Data[0] = 42
		Expect(d.State().Candidate.Gene[0].Color.R).NotTo(Equal(42.0))
		Expect(d.State().Candidate.Pixels.Data[0]).NotTo(Equal(42.0))
	})

	It("takes temperatures from a custom schedule", func() {
		sched := &fixedSchedule{temp: 0.25}
		d := newDriver(shrinking{0.9}, flood{})
		d.SetSchedule(sched)
		rec := &recorder{}
		d.AddObserver(rec)

		res, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(sched.resets).To(Equal(1))
		Expect(sched.gens).To(HaveLen(50))
		Expect(sched.prev[0]).To(Equal(anneal.StepResult{}))
		Expect(sched.prev[1].Accepted).To(BeTrue())
		for _, t := range rec.ticks {
			Expect(t.Temperature).To(Equal(0.25))
		}
		for _, s := range res.History {
			Expect(s.Temperature).To(Equal(0.25))
		}
		Expect(res.FinalTemperature).To(Equal(0.25))

		d.SetSchedule(nil)
		res, err = d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.FinalTemperature).To(Equal(cfg.Temperature(49)))
	})

	It("never lets a schedule raise the temperature", func() {
		d := newDriver(shrinking{0.9}, flood{})
		d.SetSchedule(rising{})
		rec := &recorder{}
		d.AddObserver(rec)

		res, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		for _, t := range rec.ticks {
			Expect(t.Temperature).To(Equal(0.1))
		}
		Expect(res.FinalTemperature).To(Equal(0.1))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs one lineage per seed and picks the best", func() {
		factors := map[int64]float64{1: 0.9, 2: 0.5, 3: 0.8}
		e := NewEnsemble(func(seed int64) (*Driver, error) {
			return newDriver(shrinking{factors[seed]}, flood{}), nil
		}, 3, 1)

		cfg := DefaultConfig()
		cfg.MaxGenerations = 10
		drivers, results, err := e.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(drivers).To(HaveLen(3))
		Expect(Best(results)).To(Equal(1))
	})

	It("ranks lineages by the candidate they end with", func() {
		// Lineage 1 dips to 0.1 red then settles at 0.5; lineage 2 holds 0.2.
		reds := map[int64][]float64{1: {0.1, 0.5}, 2: {0.2}}
		e := NewEnsemble(func(seed int64) (*Driver, error) {
			return newDriver(&scripted{reds: reds[seed]}, flood{}), nil
		}, 2, 1)

		cfg := DefaultConfig()
		cfg.MaxGenerations = 10
		drivers, results, err := e.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(results[0].BestFitness).To(BeNumerically("~", 0.01, 1e-12))
		Expect(results[0].FinalFitness).To(BeNumerically("~", 0.25, 1e-12))
		Expect(results[1].FinalFitness).To(BeNumerically("~", 0.04, 1e-12))
		Expect(Best(results)).To(Equal(1))
		Expect(drivers[1].State().Candidate.Fitness).To(Equal(results[1].FinalFitness))
	})

	It("reports an empty set as -1", func() {
		Expect(Best(nil)).To(Equal(-1))
	})
})
