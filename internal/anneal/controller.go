package anneal

import (
	"fmt"
	"math"

	"github.com/san-kum/vectorize/internal/fitness"
	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
	"github.com/san-kum/vectorize/internal/mutate"
)

// Mutator edits a gene in place. *mutate.Engine satisfies it.
type Mutator interface {
	Mutate(g *geom.Gene, fitness float64) mutate.Kind
	Seed(polygons, vertices int) geom.Gene
}

// Renderer paints a gene into dst, which already has the target's shape.
type Renderer interface {
	Render(g geom.Gene, dst *imaging.Buffer) error
}

// Uniform supplies the acceptance draws. *rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// StepResult describes one step.
type StepResult struct {
	Kind        mutate.Kind
	Accepted    bool
	Improved    bool
	Fitness     float64 // candidate fitness after the step
	Previous    float64 // candidate fitness before the step
	Trial       float64 // score of the mutated gene
	Probability float64 // acceptance probability that was applied
}

type Controller struct {
	mutator  Mutator
	renderer Renderer
	rnd      Uniform
}

func New(m Mutator, r Renderer, rnd Uniform) *Controller {
	return &Controller{mutator: m, renderer: r, rnd: rnd}
}

// Step runs one mutate, render, score, accept cycle at the given temperature.
//
// On acceptance the rendered buffer replaces Candidate.Pixels and the score
// is committed. On rejection the gene is restored from its snapshot and
// Pixels keeps the rendering of that gene. A render or scoring error is
// treated as a rejection and returned.
func (c *Controller) Step(st *State, temperature float64) (StepResult, error) {
	if err := st.check(); err != nil {
		return StepResult{}, err
	}
	cand := st.Candidate
	snapshot := cand.Gene.Clone()

	res := StepResult{
		Previous: cand.Fitness,
		Fitness:  cand.Fitness,
		Trial:    math.Inf(1),
	}
	res.Kind = c.mutator.Mutate(&cand.Gene, cand.Fitness)

	if err := c.renderer.Render(cand.Gene, &cand.scratch); err != nil {
		cand.Gene = snapshot
		return res, fmt.Errorf("anneal: render: %w", err)
	}
	score, err := fitness.Evaluate(st.Target, cand.scratch)
	if err != nil {
		cand.Gene = snapshot
		return res, fmt.Errorf("anneal: %w", err)
	}
	res.Trial = score
	res.Probability = BoltzmannProbability(cand.Fitness, score, temperature)

	switch {
	case score < cand.Fitness:
		res.Accepted, res.Improved = true, true
	case res.Probability > 0:
		res.Accepted = c.rnd.Float64() < res.Probability
	}

	if !res.Accepted {
		cand.Gene = snapshot
		return res, nil
	}
	cand.Pixels, cand.scratch = cand.scratch, cand.Pixels
	cand.Fitness = score
	cand.rendered = true
	res.Fitness = score
	return res, nil
}

// Evaluate renders the current gene and commits its score unconditionally.
// It is used when a state is built from a stored gene.
func (c *Controller) Evaluate(st *State) error {
	if err := st.check(); err != nil {
		return err
	}
	cand := st.Candidate
	if err := c.renderer.Render(cand.Gene, &cand.scratch); err != nil {
		return fmt.Errorf("anneal: render: %w", err)
	}
	score, err := fitness.Evaluate(st.Target, cand.scratch)
	if err != nil {
		return fmt.Errorf("anneal: %w", err)
	}
	cand.Pixels, cand.scratch = cand.scratch, cand.Pixels
	cand.Fitness = score
	cand.rendered = true
	return nil
}

// BoltzmannProbability returns the probability of accepting a move from
// current to next at temperature t: 1 for an improvement, exp(-(next-current)/t)
// otherwise, and 0 when t is not positive.
func BoltzmannProbability(current, next, t float64) float64 {
	if next < current {
		return 1
	}
	if t <= 0 || math.IsNaN(next) || math.IsInf(next, 1) {
		return 0
	}
	return math.Exp(-(next - current) / t)
}
