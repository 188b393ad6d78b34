// Package io persists site outputs and validation reports as JSON files.
package io

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/williampepple1/catalog-crawler/internal/config"
)

// RecordReader reads persisted site outputs
type RecordReader struct {
	Config *config.IOConfig
}

// NewRecordReader creates a new record reader
func NewRecordReader(config *config.IOConfig) *RecordReader {
	return &RecordReader{
		Config: config,
	}
}

// ReadRecords decodes the output file of a site. Numbers are kept as
// json.Number so ids survive unchanged.
func (r *RecordReader) ReadRecords(site string) ([]any, error) {
	return ReadFromFile(SiteFile(r.Config, site))
}

// ReadFromFile decodes a JSON array of records.
func ReadFromFile(filename string) ([]any, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "io: read %s", filename)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, eris.Wrapf(err, "io: decode %s", filename)
	}
	records, ok := v.([]any)
	if !ok {
		return nil, eris.Errorf("io: %s holds %T, not a list of records", filename, v)
	}
	return records, nil
}
