package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/catalog-crawler/pkg/models"
)

var tjMap = FieldMap{
	"product_ids":    "id",
	"product_names":  "title",
	"product_prices": "price",
	"product_images": "images",
}

func TestNormalizeRenamesAndPassesThrough(t *testing.T) {
	p, err := Normalize(models.RawRecord{
		"id":        float64(7),
		"title":     "Tee",
		"type":      "Shirts",
		"vendor":    "FF",
		"price_min": float64(100),
		"variants":  []any{map[string]any{"id": float64(1), "price": float64(100)}},
	}, FieldMap{"type": "category"})
	require.NoError(t, err)

	assert.Equal(t, "7", p.ID)
	assert.Equal(t, "Shirts", p.Category)
	assert.Equal(t, "FF", p.Extra["vendor"])
	assert.Equal(t, float64(100), p.Extra["price_min"])
	assert.NotContains(t, p.Extra, "type")
	require.Len(t, p.Variants, 1)
	assert.Equal(t, float64(100), p.Variants[0].Price)
}

func TestNormalizeRequiresID(t *testing.T) {
	_, err := Normalize(models.RawRecord{"title": "x"}, nil)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "id", missing.Key)
	assert.Equal(t, -1, missing.Index)
}

func TestNormalizeRequiresMappedKeys(t *testing.T) {
	_, err := Normalize(models.RawRecord{"id": "7", "title": "Tee"}, FieldMap{"type": "category"})
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "type", missing.Key)
	assert.Equal(t, -1, missing.Index)
}

func TestNormalizeKeepsNullMappedValue(t *testing.T) {
	p, err := Normalize(models.RawRecord{"id": "7", "type": nil}, FieldMap{"type": "category"})
	require.NoError(t, err)
	assert.Empty(t, p.Category)
}

func TestNormalizeRejectsMalformedVariants(t *testing.T) {
	_, err := Normalize(models.RawRecord{"id": "1", "variants": "none"}, nil)
	require.Error(t, err)
}

func TestColumns(t *testing.T) {
	products, err := Columns(models.RawRecord{
		"product_ids":    []any{"a", "b"},
		"product_names":  []any{"Butter", "Bread"},
		"product_prices": []any{"$3.99", "$2.49"},
		"product_images": []any{[]string{"u1", "u2"}, []string{}},
		"ignored":        "x",
	}, tjMap)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, "Butter", products[0].Title)
	assert.Equal(t, "$3.99", products[0].Price)
	assert.Equal(t, []string{"u1", "u2"}, products[0].Images)
	assert.Equal(t, "Bread", products[1].Title)
	assert.Empty(t, products[1].Images)
}

func TestColumnsShortColumn(t *testing.T) {
	_, err := Columns(models.RawRecord{
		"product_ids":    []any{"a", "b"},
		"product_names":  []any{"Butter", "Bread"},
		"product_prices": []any{"$3.99"},
		"product_images": []any{[]string{}, []string{}},
	}, tjMap)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "product_prices", missing.Key)
	assert.Equal(t, 1, missing.Index)
}

func TestColumnsAbsentColumn(t *testing.T) {
	_, err := Columns(models.RawRecord{"product_ids": []any{"a"}}, tjMap)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "product_images", missing.Key)
}

func TestUniqueByID(t *testing.T) {
	in := []models.Product{{ID: "1", Title: "first"}, {ID: "2"}, {ID: "1", Title: "second"}}
	out, dropped := UniqueByID(in)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Title)
	assert.Equal(t, []string{"1"}, dropped)
}
