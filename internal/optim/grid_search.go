// Package optim searches the tuning space of the optimiser itself: every
// combination of a few config knobs is run briefly and the lowest final
// fitness wins.
package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/vectorize/internal/experiment"
)

// MetricFitness selects the final fitness rather than a named metric.
const MetricFitness = "fitness"

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point and returns the params with the lowest value
// of metricName. Failed points are reported in trials and skipped; an error
// is returned only when no point succeeded or ctx was cancelled.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, []Trial, error) {

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &trials)

	var errs []error
	for _, t := range trials {
		if t.Err != nil {
			errs = append(errs, t.Err)
			continue
		}
		if t.Value < best {
			best = t.Value
			bestParams = t.Params
		}
	}
	if err := ctx.Err(); err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		if len(errs) == 0 {
			errs = append(errs, errors.New("empty search grid"))
		}
		return nil, best, trials, errors.Join(errs...)
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	trials *[]Trial,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		if depth == 0 {
			return
		}
		trial := Trial{Params: current}
		trial.Value, trial.Err = evaluate(ctx, current, buildExperiment, metricName)
		*trials = append(*trials, trial)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, trials)
	}
}

func evaluate(
	ctx context.Context,
	params map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (float64, error) {
	exp, err := buildExperiment(params)
	if err != nil {
		return math.Inf(1), err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return math.Inf(1), err
	}
	if metricName == MetricFitness || metricName == "" {
		return result.FinalFitness, nil
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return math.Inf(1), errors.New("unknown metric: " + metricName)
	}
	return val, nil
}
