package anneal_test

import (
	"errors"
	"math"
	"math/rand"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vectorize/internal/anneal"
	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
	"github.com/san-kum/vectorize/internal/mutate"
	"github.com/san-kum/vectorize/internal/render"
)

// scripted sets the first polygon's red channel to the next queued value and
// nudges its first vertex, so rollbacks are visible in both colour and shape.
type scripted struct {
	reds []float64
}

func (s *scripted) Mutate(g *geom.Gene, _ float64) mutate.Kind {
	p := &(*g)[0]
	p.Color.R, s.reds = s.reds[0], s.reds[1:]
	p.Vertices[0].X += 0.01
	return mutate.PerturbGene
}

func (s *scripted) Seed(polygons, vertices int) geom.Gene {
	g := make(geom.Gene, polygons)
	for i := range g {
		g[i] = geom.Polygon{Color: geom.Color{A: 0.5}, Vertices: make([]geom.Vertex, vertices)}
	}
	return g
}

// flood paints every sample with the first polygon's red channel.
type flood struct{ err error }

func (f flood) Render(g geom.Gene, dst *imaging.Buffer) error {
	if f.err != nil {
		return f.err
	}
	for i := range dst.Data {
		dst.Data[i] = g[0].Color.R
	}
	return nil
}

// vertexCounting records whether a mutation changed the vertex count, which
// the gene-level kind does not report.
type vertexCounting struct {
	*mutate.Engine
	changed bool
}

func (v *vertexCounting) Mutate(g *geom.Gene, fitness float64) mutate.Kind {
	before := g.VertexCount()
	k := v.Engine.Mutate(g, fitness)
	v.changed = k == mutate.PerturbGene && g.VertexCount() != before
	return k
}

type fixed float64

func (f fixed) Float64() float64 { return float64(f) }

func blackTarget() imaging.Buffer {
	b, _ := imaging.NewBuffer(4, 4, 3)
	return b
}

var _ = Describe("State", func() {
	It("seeds the configured number of polygons with unknown fitness", func() {
		st, err := anneal.NewState(blackTarget(), &scripted{}, anneal.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		c := st.Candidate
		Expect(c.Gene).To(HaveLen(3))
		Expect(c.Gene[0].Vertices).To(HaveLen(8))
		Expect(math.IsInf(c.Fitness, 1)).To(BeTrue())
		Expect(c.Stale()).To(BeTrue())
		Expect(c.Pixels.SameShape(st.Target)).To(BeTrue())
	})

	It("rejects an empty target", func() {
		_, err := anneal.NewState(imaging.Buffer{}, &scripted{}, anneal.DefaultOptions())
		Expect(err).To(MatchError(anneal.ErrEmptyTarget))
	})

	It("rejects non-positive seed sizes", func() {
		_, err := anneal.NewState(blackTarget(), &scripted{}, anneal.Options{InitialPolygons: 0, InitialVertices: 8})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Controller", func() {
	var (
		st  *anneal.State
		mut *scripted
	)

	step := func(ctrl *anneal.Controller, temp float64) anneal.StepResult {
		res, err := ctrl.Step(st, temp)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	BeforeEach(func() {
		mut = &scripted{}
		var err error
		st, err = anneal.NewState(blackTarget(), mut, anneal.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
	})

	It("always accepts the first scored candidate", func() {
		mut.reds = []float64{0.9}
		res := step(anneal.New(mut, flood{}, fixed(0.99)), 0)

		Expect(res.Accepted).To(BeTrue())
		Expect(res.Improved).To(BeTrue())
		Expect(st.Candidate.Fitness).To(BeNumerically("~", 0.81, 1e-12))
		Expect(st.Candidate.Stale()).To(BeFalse())
	})

	It("accepts improvements and commits the rendered pixels", func() {
		mut.reds = []float64{0.5, 0.3}
		ctrl := anneal.New(mut, flood{}, fixed(0.99))
		step(ctrl, 0)
		res := step(ctrl, 0)

		Expect(res.Accepted).To(BeTrue())
		Expect(res.Previous).To(BeNumerically("~", 0.25, 1e-12))
		Expect(res.Fitness).To(BeNumerically("~", 0.09, 1e-12))
		Expect(st.Candidate.Pixels.Data).To(HaveEach(0.3))
	})

	Context("at zero temperature", func() {
		It("rejects a worse candidate and restores the gene exactly", func() {
			mut.reds = []float64{0.5, 0.6}
			ctrl := anneal.New(mut, flood{}, fixed(0))
			step(ctrl, 0)
			before := st.Candidate.Gene.Clone()
			pixels := st.Candidate.Pixels.Clone()

			res := step(ctrl, 0)

			Expect(res.Accepted).To(BeFalse())
			Expect(res.Probability).To(BeZero())
			Expect(res.Trial).To(BeNumerically("~", 0.36, 1e-12))
			Expect(cmp.Diff(before, st.Candidate.Gene)).To(BeEmpty())
			Expect(st.Candidate.Fitness).To(BeNumerically("~", 0.25, 1e-12))
			Expect(st.Candidate.Pixels.Data).To(Equal(pixels.Data))
		})

		It("rejects an equal candidate", func() {
			mut.reds = []float64{0.5, 0.5}
			ctrl := anneal.New(mut, flood{}, fixed(0))
			step(ctrl, 0)
			Expect(step(ctrl, 0).Accepted).To(BeFalse())
		})
	})

	Context("at positive temperature", func() {
		It("accepts a worse candidate when the draw falls below the probability", func() {
			mut.reds = []float64{0.5, 0.6}
			ctrl := anneal.New(mut, flood{}, fixed(0.5))
			step(ctrl, 0)

			res := step(ctrl, 1)
			Expect(res.Probability).To(BeNumerically("~", math.Exp(-0.11), 1e-12))
			Expect(res.Accepted).To(BeTrue())
			Expect(res.Improved).To(BeFalse())
			Expect(st.Candidate.Gene[0].Color.R).To(Equal(0.6))
		})

		It("rejects a worse candidate when the draw is above the probability", func() {
			mut.reds = []float64{0.5, 0.6}
			ctrl := anneal.New(mut, flood{}, fixed(0.95))
			step(ctrl, 0)

			Expect(step(ctrl, 1).Accepted).To(BeFalse())
			Expect(st.Candidate.Gene[0].Color.R).To(Equal(0.5))
		})
	})

	It("rolls back and reports renderer failures", func() {
		boom := errors.New("boom")
		mut.reds = []float64{0.5}
		before := st.Candidate.Gene.Clone()

		_, err := anneal.New(mut, flood{err: boom}, fixed(0)).Step(st, 1)
		Expect(err).To(MatchError(boom))
		Expect(st.Candidate.Gene.Equal(before)).To(BeTrue())
		Expect(st.Candidate.Stale()).To(BeTrue())
	})

	It("refuses mismatched target and candidate shapes", func() {
		st.Target, _ = imaging.NewBuffer(2, 2, 3)
		_, err := anneal.New(mut, flood{}, fixed(0)).Step(st, 1)
		Expect(err).To(MatchError(anneal.ErrShapeMismatch))
	})

	It("evaluates a resumed gene without mutating it", func() {
		g := mut.Seed(1, 3)
		g[0].Color.R = 0.2
		resumed, err := anneal.NewStateFromGene(blackTarget(), g)
		Expect(err).NotTo(HaveOccurred())

		Expect(anneal.New(mut, flood{}, fixed(0)).Evaluate(resumed)).To(Succeed())
		Expect(resumed.Candidate.Fitness).To(BeNumerically("~", 0.04, 1e-12))
		Expect(resumed.Candidate.Gene[0].Color.R).To(Equal(0.2))
	})
})

var _ = Describe("Annealing with the real engine", func() {
	It("never worsens fitness at zero temperature", func() {
		target, _ := imaging.NewBuffer(8, 8, 3)
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				i := target.PixelIndex(x, y)
				target.Data[i] = float64(x) / 7
				target.Data[i+1] = float64(y) / 7
				target.Data[i+2] = 0.5
			}
		}

		rnd := rand.New(rand.NewSource(7))
		engine, err := mutate.NewEngine(mutate.DefaultParams(), rnd, target)
		Expect(err).NotTo(HaveOccurred())
		st, err := anneal.NewState(target, engine, anneal.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		ctrl := anneal.New(engine, render.New(render.DefaultOptions()), rnd)
		best := math.Inf(1)
		for i := 0; i < 300; i++ {
			res, err := ctrl.Step(st, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Fitness).To(BeNumerically("<=", best))
			best = res.Fitness
			Expect(st.Candidate.Gene.Validate(engine.Params().Limits())).To(Succeed())
		}
		Expect(st.Candidate.Stale()).To(BeFalse())
	})

	It("restores the exact gene after rejecting structural mutations", func() {
		target, _ := imaging.NewBuffer(8, 8, 3)
		for i := range target.Data {
			target.Data[i] = float64(i%7) / 6
		}

		params := mutate.DefaultParams()
		params.AddPolygonRate = 0.2
		params.RemovePolygonRate = 0.2
		params.SwapPolygonRate = 0.2
		params.AddVertexRate = 0.2
		params.RemoveVertexRate = 0.2
		params.SwapVertexRate = 0.2

		rnd := rand.New(rand.NewSource(11))
		engine, err := mutate.NewEngine(params, rnd, target)
		Expect(err).NotTo(HaveOccurred())
		mut := &vertexCounting{Engine: engine}
		st, err := anneal.NewState(target, mut, anneal.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		ctrl := anneal.New(mut, render.New(render.DefaultOptions()), rnd)

		rejected := map[mutate.Kind]int{}
		vertexRejected := 0
		for i := 0; i < 3000; i++ {
			gene := st.Candidate.Gene.Clone()
			pixels := st.Candidate.Pixels.Clone()
			fit := st.Candidate.Fitness

			res, err := ctrl.Step(st, 0)
			Expect(err).NotTo(HaveOccurred())
			if res.Accepted {
				continue
			}
			Expect(cmp.Diff(gene, st.Candidate.Gene)).To(BeEmpty(), "after rejected %s", res.Kind)
			Expect(st.Candidate.Pixels.Data).To(Equal(pixels.Data))
			Expect(st.Candidate.Fitness).To(Equal(fit))
			if res.Kind.Structural() {
				rejected[res.Kind]++
			}
			if mut.changed {
				vertexRejected++
			}
		}

		for _, k := range []mutate.Kind{mutate.AddPolygon, mutate.RemovePolygon, mutate.SwapPolygon} {
			Expect(rejected[k]).To(BeNumerically(">", 0), "no rejected %s", k)
		}
		Expect(vertexRejected).To(BeNumerically(">", 0))
	})
})

var _ = DescribeTable("BoltzmannProbability",
	func(cur, next, t, want float64) {
		Expect(anneal.BoltzmannProbability(cur, next, t)).To(BeNumerically("~", want, 1e-12))
	},
	Entry("improvement", 0.5, 0.4, 1.0, 1.0),
	Entry("equal at positive temperature", 0.5, 0.5, 1.0, 1.0),
	Entry("worse at unit temperature", 0.2, 0.3, 1.0, math.Exp(-0.1)),
	Entry("worse at low temperature", 0.2, 0.3, 0.01, math.Exp(-10)),
	Entry("zero temperature", 0.2, 0.3, 0.0, 0.0),
	Entry("negative temperature", 0.2, 0.3, -1.0, 0.0),
	Entry("from unknown fitness", math.Inf(1), 0.3, 0.0, 1.0),
)
