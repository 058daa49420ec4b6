// Package storage persists finished runs: their metadata, fitness history
// and best gene. Two backends share the [Store] interface, a directory per
// run on disk and a single SQLite database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/render"
)

var (
	ErrNotFound       = errors.New("storage: run not found")
	ErrNotInitialized = errors.New("storage: store is not initialized")
	ErrEmptyRun       = errors.New("storage: run has no scored generations")
)

type RunMetadata struct {
	ID          string             `json:"id"`
	Image       string             `json:"image"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Channels    int                `json:"channels"`
	Generations int                `json:"generations"`
	Accepted    int                `json:"accepted"`
	BestFitness float64            `json:"best_fitness"`
	Polygons    int                `json:"polygons"`
	Vertices    int                `json:"vertices"`
	Elapsed     time.Duration      `json:"elapsed_ns"`
	Reason      string             `json:"reason"`
	Schedule    driver.Config      `json:"schedule"`
	Render      render.Options     `json:"render"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Run is everything saved for one optimisation.
type Run struct {
	Meta    RunMetadata
	History []driver.Sample
	Gene    geom.Gene
	// Best is the final rendering at target resolution. Backends that cannot
	// hold images drop it.
	Best image.Image
}

type Store interface {
	Init(ctx context.Context) error
	// Save assigns an ID when Meta.ID is empty and returns it.
	Save(ctx context.Context, run *Run) (string, error)
	// List returns all runs, newest first.
	List(ctx context.Context) ([]RunMetadata, error)
	Load(ctx context.Context, id string) (*RunMetadata, error)
	LoadHistory(ctx context.Context, id string) ([]driver.Sample, error)
	LoadGene(ctx context.Context, id string) (geom.Gene, error)
	Close() error
}

const (
	KindFile   = "file"
	KindSQLite = "sqlite"

	sqliteFile = "runs.db"
)

// NewStore opens the backend kind rooted at dir.
func NewStore(kind, dir string) (Store, error) {
	switch kind {
	case "", KindFile:
		return NewFileStore(dir), nil
	case KindSQLite:
		return NewSQLiteStore(filepath.Join(dir, sqliteFile)), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// NewRunID returns a short random identifier.
func NewRunID() string {
	return fmt.Sprintf("run_%s", uuid.New().String()[:8])
}

// LoadRun reads every stored part of a run.
func LoadRun(ctx context.Context, s Store, id string) (*Run, error) {
	meta, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.LoadHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	gene, err := s.LoadGene(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Run{Meta: *meta, History: history, Gene: gene}, nil
}

func prepare(run *Run) error {
	if len(run.Gene) == 0 || math.IsInf(run.Meta.BestFitness, 0) || math.IsNaN(run.Meta.BestFitness) {
		return ErrEmptyRun
	}
	if run.Meta.ID == "" {
		run.Meta.ID = NewRunID()
	}
	if run.Meta.Timestamp.IsZero() {
		run.Meta.Timestamp = time.Now().UTC()
	}
	return nil
}

func sortNewest(runs []RunMetadata) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
}
