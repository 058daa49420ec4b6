package metrics

import (
	"time"

	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/mutate"
)

// MeanPolygons averages the gene size over the run.
type MeanPolygons struct {
	name    string
	total   int
	samples int
}

func NewMeanPolygons() *MeanPolygons {
	return &MeanPolygons{name: "mean_polygons"}
}

func (m *MeanPolygons) Name() string { return m.name }

func (m *MeanPolygons) Observe(t driver.Tick) {
	m.total += t.Polygons
	m.samples++
}

func (m *MeanPolygons) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.total) / float64(m.samples)
}

func (m *MeanPolygons) Reset() {
	m.total = 0
	m.samples = 0
}

// KindShare is the fraction of generations whose mutation was kind.
type KindShare struct {
	kind    mutate.Kind
	hits    int
	samples int
}

func NewKindShare(kind mutate.Kind) *KindShare {
	return &KindShare{kind: kind}
}

func (k *KindShare) Name() string { return "share_" + k.kind.String() }

func (k *KindShare) Observe(t driver.Tick) {
	k.samples++
	if t.Step.Kind == k.kind {
		k.hits++
	}
}

func (k *KindShare) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return float64(k.hits) / float64(k.samples)
}

func (k *KindShare) Reset() {
	k.hits = 0
	k.samples = 0
}

// Throughput is generations per second of wall time.
type Throughput struct {
	name    string
	samples int
	elapsed time.Duration
}

func NewThroughput() *Throughput {
	return &Throughput{name: "generations_per_sec"}
}

func (g *Throughput) Name() string { return g.name }

func (g *Throughput) Observe(t driver.Tick) {
	g.samples++
	g.elapsed = t.Elapsed
}

func (g *Throughput) Value() float64 {
	if g.elapsed <= 0 {
		return 0
	}
	return float64(g.samples) / g.elapsed.Seconds()
}

func (g *Throughput) Reset() {
	g.samples = 0
	g.elapsed = 0
}

// Standard returns the metrics recorded for every stored run.
func Standard() []driver.Metric {
	ms := []driver.Metric{
		NewAcceptance(),
		NewUphill(),
		NewImprovement(),
		NewMeanPolygons(),
		NewThroughput(),
	}
	for _, k := range mutate.GeneKinds {
		ms = append(ms, NewKindShare(k))
	}
	return ms
}
