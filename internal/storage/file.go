package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
	geneFile     = "gene.json"
	BestFile     = "best.png"
)

// FileStore keeps one directory per run under baseDir.
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (s *FileStore) Init(context.Context) error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *FileStore) Close() error { return nil }

// RunDir returns the directory holding run id.
func (s *FileStore) RunDir(id string) string {
	return filepath.Join(s.baseDir, id)
}

func (s *FileStore) Save(_ context.Context, run *Run) (string, error) {
	if err := prepare(run); err != nil {
		return "", err
	}
	runDir := s.RunDir(run.Meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), run.Meta); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), run.History); err != nil {
		return "", err
	}

	payload, err := EncodeGene(run.Gene)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, geneFile), payload, 0644); err != nil {
		return "", err
	}

	if run.Best != nil {
		if err := imaging.SavePNG(filepath.Join(runDir, BestFile), run.Best); err != nil {
			return "", err
		}
	}

	return run.Meta.ID, nil
}

func (s *FileStore) List(context.Context) ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	sortNewest(runs)
	return runs, nil
}

func (s *FileStore) Load(_ context.Context, id string) (*RunMetadata, error) {
	data, err := s.read(id, metadataFile)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", id, err)
	}

	return &meta, nil
}

func (s *FileStore) LoadGene(_ context.Context, id string) (geom.Gene, error) {
	data, err := s.read(id, geneFile)
	if err != nil {
		return nil, err
	}
	g, err := DecodeGene(data)
	if err != nil {
		return nil, fmt.Errorf("decode gene %s: %w", id, err)
	}
	return g, nil
}

func (s *FileStore) LoadHistory(_ context.Context, id string) ([]driver.Sample, error) {
	file, err := os.Open(filepath.Join(s.RunDir(id), historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []driver.Sample{}, nil
	}

	history := make([]driver.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}

		gen, err1 := strconv.Atoi(record[0])
		fit, err2 := strconv.ParseFloat(record[1], 64)
		temp, err3 := strconv.ParseFloat(record[2], 64)
		polys, err4 := strconv.Atoi(record[3])
		if err := errors.Join(err1, err2, err3, err4); err != nil {
			continue
		}
		history = append(history, driver.Sample{
			Generation:  gen,
			Fitness:     fit,
			Temperature: temp,
			Polygons:    polys,
		})
	}

	return history, nil
}

func (s *FileStore) read(id, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(id), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return data, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeHistory(path string, history []driver.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"generation", "fitness", "temperature", "polygons"}); err != nil {
		return err
	}
	for _, s := range history {
		row := []string{
			strconv.Itoa(s.Generation),
			strconv.FormatFloat(s.Fitness, 'g', -1, 64),
			strconv.FormatFloat(s.Temperature, 'g', -1, 64),
			strconv.Itoa(s.Polygons),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
