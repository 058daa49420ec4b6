package storage

import (
	"encoding/json"
	"errors"

	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/geom"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("storage: record version mismatch")

type versionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type geneRecord struct {
	versionedRecord
	Polygons geom.Gene `json:"polygons"`
}

func EncodeGene(g geom.Gene) ([]byte, error) {
	return json.Marshal(geneRecord{
		versionedRecord: versionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		Polygons:        g,
	})
}

func DecodeGene(data []byte) (geom.Gene, error) {
	var rec geneRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if err := checkVersion(rec.versionedRecord); err != nil {
		return nil, err
	}
	return rec.Polygons, nil
}

func EncodeHistory(history []driver.Sample) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeHistory(data []byte) ([]driver.Sample, error) {
	var history []driver.Sample
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v versionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
