package io

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/williampepple1/catalog-crawler/internal/config"
	"github.com/williampepple1/catalog-crawler/pkg/models"
)

// ResultWriter writes crawl outputs and validation reports
type ResultWriter struct {
	Config *config.IOConfig
}

// NewResultWriter creates a new result writer
func NewResultWriter(config *config.IOConfig) *ResultWriter {
	return &ResultWriter{
		Config: config,
	}
}

// SiteFile returns the output path of a site.
func SiteFile(cfg *config.IOConfig, site string) string {
	return filepath.Join(cfg.OutputDir, site+".json")
}

// SaveProducts writes the products of one site as a JSON array and returns
// the path written.
func (w *ResultWriter) SaveProducts(site string, products []models.Product) (string, error) {
	if products == nil {
		products = []models.Product{}
	}
	path := SiteFile(w.Config, site)
	return path, WriteJSON(path, products)
}

// SaveReport writes the validation report.
func (w *ResultWriter) SaveReport(report any) (string, error) {
	return w.Config.ValidationFile, WriteJSON(w.Config.ValidationFile, report)
}

// WriteJSON writes v indented to path. The file is written next to its final
// location and renamed into place, so readers never see a partial file.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return eris.Wrapf(err, "io: encode %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "io: create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return eris.Wrapf(err, "io: create temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return eris.Wrapf(err, "io: write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "io: close %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return eris.Wrapf(err, "io: chmod %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "io: rename into %s", path)
	}
	return nil
}
