package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/geom"
)

type ExportData struct {
	Run      RunMetadata     `json:"run"`
	Steps    int             `json:"steps"`
	History  []driver.Sample `json:"history"`
	Polygons geom.Gene       `json:"polygons"`
}

// ExportJSON writes a self-contained JSON document describing run.
func ExportJSON(w io.Writer, run *Run) error {
	data := ExportData{
		Run:      run.Meta,
		Steps:    len(run.History),
		History:  run.History,
		Polygons: run.Gene,
	}
	if data.History == nil {
		data.History = []driver.Sample{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
