package metrics

import (
	"math"

	"github.com/san-kum/vectorize/internal/driver"
)

// Acceptance is the fraction of generations whose mutation was kept.
type Acceptance struct {
	name     string
	accepted int
	samples  int
}

func NewAcceptance() *Acceptance {
	return &Acceptance{name: "acceptance_rate"}
}

func (a *Acceptance) Name() string { return a.name }

func (a *Acceptance) Observe(t driver.Tick) {
	a.samples++
	if t.Step.Accepted {
		a.accepted++
	}
}

func (a *Acceptance) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.samples)
}

func (a *Acceptance) Reset() {
	a.accepted = 0
	a.samples = 0
}

// Uphill counts accepted moves that made the candidate worse.
type Uphill struct {
	name  string
	count int
}

func NewUphill() *Uphill {
	return &Uphill{name: "uphill_moves"}
}

func (u *Uphill) Name() string { return u.name }

func (u *Uphill) Observe(t driver.Tick) {
	if t.Step.Accepted && !t.Step.Improved {
		u.count++
	}
}

func (u *Uphill) Value() float64 { return float64(u.count) }

func (u *Uphill) Reset() { u.count = 0 }

// Improvement is the total fitness decrease over improving steps, ignoring
// the first step out of the unscored state.
type Improvement struct {
	name  string
	total float64
}

func NewImprovement() *Improvement {
	return &Improvement{name: "improvement"}
}

func (i *Improvement) Name() string { return i.name }

func (i *Improvement) Observe(t driver.Tick) {
	s := t.Step
	if !s.Improved || math.IsInf(s.Previous, 1) {
		return
	}
	i.total += s.Previous - s.Fitness
}

func (i *Improvement) Value() float64 { return i.total }

func (i *Improvement) Reset() { i.total = 0 }
