// Package normalize maps site-specific records onto the canonical product
// schema.
package normalize

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/williampepple1/catalog-crawler/pkg/models"
)

// FieldMap renames raw keys to canonical keys.
type FieldMap map[string]string

// MissingFieldError reports a mapped key absent from a record. Index is the
// position within a columnar batch, or -1 for a single record.
type MissingFieldError struct {
	Key   string
	Index int
}

func (e *MissingFieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("missing field %q", e.Key)
	}
	return fmt.Sprintf("missing field %q at index %d", e.Key, e.Index)
}

// Normalize renames the mapped keys of one raw record. Every mapped key must
// be present. Unmapped keys pass through unchanged; a mapped key wins over an
// unmapped key of the same canonical name.
func Normalize(raw models.RawRecord, fm FieldMap) (models.Product, error) {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if _, mapped := fm[k]; mapped {
			continue
		}
		out[k] = v
	}
	for _, from := range sortedKeys(fm) {
		v, ok := raw[from]
		if !ok {
			return models.Product{}, &MissingFieldError{Key: from, Index: -1}
		}
		out[fm[from]] = v
	}
	return product(out, -1)
}

// Columns splits a columnar record into products. Every mapped column must be
// a list as long as the longest one; the first gap aborts the batch since the
// remaining columns would no longer line up.
func Columns(raw models.RawRecord, fm FieldMap) ([]models.Product, error) {
	keys := sortedKeys(fm)
	columns := make(map[string][]any, len(keys))
	length := 0
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			return nil, &MissingFieldError{Key: k, Index: 0}
		}
		col, ok := v.([]any)
		if !ok {
			return nil, eris.Errorf("normalize: column %q is %T, not a list", k, v)
		}
		columns[k] = col
		if len(col) > length {
			length = len(col)
		}
	}

	products := make([]models.Product, 0, length)
	for i := 0; i < length; i++ {
		m := make(map[string]any, len(keys))
		for _, k := range keys {
			col := columns[k]
			if i >= len(col) {
				return nil, &MissingFieldError{Key: k, Index: i}
			}
			m[fm[k]] = col[i]
		}
		p, err := product(m, i)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func sortedKeys(fm FieldMap) []string {
	keys := make([]string, 0, len(fm))
	for k := range fm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func product(m map[string]any, index int) (models.Product, error) {
	p, err := models.ProductFromMap(m)
	if err != nil {
		return models.Product{}, eris.Wrap(err, "normalize")
	}
	if p.ID == "" {
		return models.Product{}, &MissingFieldError{Key: "id", Index: index}
	}
	return p, nil
}

// UniqueByID keeps the first product of every id and returns the ids it
// dropped.
func UniqueByID(products []models.Product) ([]models.Product, []string) {
	seen := make(map[string]bool, len(products))
	out := products[:0:0]
	var dropped []string
	for _, p := range products {
		if seen[p.ID] {
			dropped = append(dropped, p.ID)
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, dropped
}
