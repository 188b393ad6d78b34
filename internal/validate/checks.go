// Package validate checks persisted site outputs and builds the consolidated
// validation report.
package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/williampepple1/catalog-crawler/pkg/models"
)

// MalformedRecordError reports input that is not a list of product objects
// carrying an id.
type MalformedRecordError struct {
	Index  int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %d: %s", e.Index, e.Reason)
}

// RateDifference is the spread between the lowest and highest price of a
// product.
type RateDifference struct {
	Price      float64
	Difference float64
}

// MarshalJSON writes the pair as [{"price": min}, {"rate_difference": diff}].
func (r RateDifference) MarshalJSON() ([]byte, error) {
	return json.Marshal([]map[string]float64{
		{"price": r.Price},
		{"rate_difference": r.Difference},
	})
}

// VariantCheck describes one variant of a product.
type VariantCheck struct {
	ImagesExist bool `json:"images_exist"`
	PriceExists bool `json:"price_exists"`
}

// ValidateMandatoryKeys returns, in input order, every record that lacks at
// least one of keys.
func ValidateMandatoryKeys(records []any, keys []string) ([]any, error) {
	invalid := []any{}
	for i, r := range records {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, &MalformedRecordError{Index: i, Reason: fmt.Sprintf("expected object, got %T", r)}
		}
		for _, k := range keys {
			if _, ok := m[k]; !ok {
				invalid = append(invalid, r)
				break
			}
		}
	}
	return invalid, nil
}

// CalculateRateDifference maps every product id to price_max - price_min.
// Absent or null bounds count as 0, so a product without a price range is
// reported as a flat price.
func CalculateRateDifference(records []any) (map[string]RateDifference, error) {
	out := make(map[string]RateDifference, len(records))
	for i, r := range records {
		m, id, err := identify(i, r)
		if err != nil {
			return nil, err
		}
		lo, err := bound(i, m, "price_min")
		if err != nil {
			return nil, err
		}
		hi, err := bound(i, m, "price_max")
		if err != nil {
			return nil, err
		}
		out[id] = RateDifference{Price: lo, Difference: hi - lo}
	}
	return out, nil
}

// CheckVariantsImagesPrices maps every product id to one check per variant.
// ImagesExist describes the product, so it is the same for all its variants.
func CheckVariantsImagesPrices(records []any) (map[string][]VariantCheck, error) {
	out := make(map[string][]VariantCheck, len(records))
	for i, r := range records {
		m, id, err := identify(i, r)
		if err != nil {
			return nil, err
		}

		var variants []any
		if raw, ok := m["variants"]; ok && raw != nil {
			if variants, ok = raw.([]any); !ok {
				return nil, &MalformedRecordError{Index: i, Reason: fmt.Sprintf("variants is %T, not a list", raw)}
			}
		}

		imagesExist := truthy(m["images"])
		checks := make([]VariantCheck, 0, len(variants))
		for j, v := range variants {
			vm, ok := v.(map[string]any)
			if !ok {
				return nil, &MalformedRecordError{Index: i, Reason: fmt.Sprintf("variant %d is %T, not an object", j, v)}
			}
			price, ok := vm["price"]
			checks = append(checks, VariantCheck{ImagesExist: imagesExist, PriceExists: ok && price != nil})
		}
		out[id] = checks
	}
	return out, nil
}

func identify(i int, r any) (map[string]any, string, error) {
	m, ok := r.(map[string]any)
	if !ok {
		return nil, "", &MalformedRecordError{Index: i, Reason: fmt.Sprintf("expected object, got %T", r)}
	}
	raw, ok := m["id"]
	if !ok || raw == nil {
		return nil, "", &MalformedRecordError{Index: i, Reason: "missing id"}
	}
	return m, models.String(raw), nil
}

func bound(i int, m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, nil
	}
	f, ok := number(v)
	if !ok {
		return 0, &MalformedRecordError{Index: i, Reason: fmt.Sprintf("%s %v is not numeric", key, v)}
	}
	return f, nil
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
