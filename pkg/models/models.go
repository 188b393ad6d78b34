package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// RawRecord is a site-specific record as extracted by an adapter. Values are
// strings, string lists, nested lists (image sets) or decoded JSON.
type RawRecord map[string]any

// Product is the canonical product schema shared by every site.
//
// Keys that have no canonical field are kept in Extra and written back at the
// top level when the product is serialized, so site-specific fields such as
// vendor or price_min survive normalization.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Price       any       `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Weight      string    `json:"weight,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`

	Extra map[string]any `json:"-"`
}

// Variant is one purchasable option of a product.
type Variant struct {
	ID    any    `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Price any    `json:"price"`

	Extra map[string]any `json:"-"`
}

var productKeys = map[string]bool{
	"id": true, "title": true, "url": true, "price": true, "category": true,
	"description": true, "weight": true, "unit": true, "images": true, "variants": true,
}

var variantKeys = map[string]bool{"id": true, "title": true, "price": true}

// ProductFromMap builds a Product from a record already keyed by canonical
// names. Unknown keys end up in Extra.
func ProductFromMap(m map[string]any) (Product, error) {
	p := Product{
		ID:          String(m["id"]),
		Title:       String(m["title"]),
		URL:         String(m["url"]),
		Price:       m["price"],
		Category:    String(m["category"]),
		Description: String(m["description"]),
		Weight:      String(m["weight"]),
		Unit:        String(m["unit"]),
		Images:      Strings(m["images"]),
	}

	if raw, ok := m["variants"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return Product{}, fmt.Errorf("variants must be a list, got %T", raw)
		}
		for i, item := range list {
			vm, ok := item.(map[string]any)
			if !ok {
				return Product{}, fmt.Errorf("variant %d must be an object, got %T", i, item)
			}
			p.Variants = append(p.Variants, variantFromMap(vm))
		}
	}

	for k, v := range m {
		if productKeys[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	return p, nil
}

func variantFromMap(m map[string]any) Variant {
	v := Variant{
		ID:    m["id"],
		Title: String(m["title"]),
		Price: m["price"],
	}
	for k, val := range m {
		if variantKeys[k] {
			continue
		}
		if v.Extra == nil {
			v.Extra = make(map[string]any)
		}
		v.Extra[k] = val
	}
	return v
}

// MarshalJSON flattens Extra into the top-level object.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return flatten(plain(p), p.Extra)
}

// MarshalJSON flattens Extra into the top-level object.
func (v Variant) MarshalJSON() ([]byte, error) {
	type plain Variant
	return flatten(plain(v), v.Extra)
}

func flatten(known any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]any
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// String renders a decoded JSON scalar as a string. Integral floats lose their
// fractional part so numeric ids stay readable.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

// Strings converts a string or list value into a string slice.
func Strings(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := String(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{String(t)}
	}
}
