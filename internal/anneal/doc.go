// Package anneal implements the accept/reject loop of the optimiser.
//
// One [Controller.Step] snapshots the live gene, mutates it, renders and
// scores the result, then either commits the new candidate or restores the
// snapshot:
//
//   - [State]: the target image paired with the single live [Candidate]
//   - [Controller]: runs steps against a [Mutator] and a [Renderer]
//   - [BoltzmannProbability]: acceptance probability for a worse candidate
//
// # Example
//
//	st, _ := anneal.NewState(target, engine, anneal.DefaultOptions())
//	ctrl := anneal.New(engine, render.New(render.DefaultOptions()), rnd)
//	res, err := ctrl.Step(st, 1.0)
//
// # Thread Safety
//
// Controllers and States are NOT thread-safe. The temperature is owned by
// the caller; a step never changes it.
package anneal
