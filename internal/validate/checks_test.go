package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) []any {
	t.Helper()
	var records []any
	require.NoError(t, json.Unmarshal([]byte(s), &records))
	return records
}

func TestValidateMandatoryKeysMissingPrice(t *testing.T) {
	records := decode(t, `[{"id":1,"title":"x"}]`)
	invalid, err := ValidateMandatoryKeys(records, []string{"id", "title", "price"})
	require.NoError(t, err)
	assert.Equal(t, records, invalid)
}

func TestValidateMandatoryKeysKeepsOrder(t *testing.T) {
	records := decode(t, `[
		{"id":1,"title":"a","price":1},
		{"id":2,"price":2},
		{"id":3,"title":"c","price":null},
		{"title":"d","price":4}
	]`)
	keys := []string{"id", "title", "price"}

	invalid, err := ValidateMandatoryKeys(records, keys)
	require.NoError(t, err)
	require.Len(t, invalid, 2)
	assert.Equal(t, float64(2), invalid[0].(map[string]any)["id"])
	assert.Equal(t, "d", invalid[1].(map[string]any)["title"])

	again, err := ValidateMandatoryKeys(invalid, keys)
	require.NoError(t, err)
	assert.Equal(t, invalid, again)
}

func TestValidateMandatoryKeysEmptyInput(t *testing.T) {
	invalid, err := ValidateMandatoryKeys(nil, []string{"id"})
	require.NoError(t, err)
	assert.NotNil(t, invalid)
	assert.Empty(t, invalid)
}

func TestValidateMandatoryKeysMalformed(t *testing.T) {
	_, err := ValidateMandatoryKeys([]any{"not an object"}, []string{"id"})
	var malformed *MalformedRecordError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 0, malformed.Index)
}

func TestCalculateRateDifference(t *testing.T) {
	got, err := CalculateRateDifference(decode(t, `[{"id":1,"price_min":5,"price_max":9}]`))
	require.NoError(t, err)
	assert.Equal(t, map[string]RateDifference{"1": {Price: 5, Difference: 4}}, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":[{"price":5},{"rate_difference":4}]}`, string(data))
}

func TestCalculateRateDifferenceDefaultsToZero(t *testing.T) {
	got, err := CalculateRateDifference(decode(t, `[
		{"id":"a"},
		{"id":"b","price_max":"12.5"},
		{"id":"c","price_min":null,"price_max":3}
	]`))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, RateDifference{}, got["a"])
	assert.Equal(t, RateDifference{Price: 0, Difference: 12.5}, got["b"])
	assert.Equal(t, RateDifference{Price: 0, Difference: 3}, got["c"])
}

func TestCalculateRateDifferenceMalformed(t *testing.T) {
	_, err := CalculateRateDifference(decode(t, `[{"title":"no id"}]`))
	var malformed *MalformedRecordError
	require.ErrorAs(t, err, &malformed)

	_, err = CalculateRateDifference(decode(t, `[{"id":1,"price_min":"cheap"}]`))
	require.ErrorAs(t, err, &malformed)
}

func TestCheckVariantsImagesPrices(t *testing.T) {
	got, err := CheckVariantsImagesPrices(decode(t, `[
		{"id":1,"images":["a.jpg"],"variants":[{"price":10},{"price":null},{"id":3}]},
		{"id":2,"images":[],"variants":[{"price":1}]},
		{"id":3}
	]`))
	require.NoError(t, err)

	assert.Equal(t, []VariantCheck{
		{ImagesExist: true, PriceExists: true},
		{ImagesExist: true, PriceExists: false},
		{ImagesExist: true, PriceExists: false},
	}, got["1"])
	assert.Equal(t, []VariantCheck{{ImagesExist: false, PriceExists: true}}, got["2"])
	assert.Empty(t, got["3"])

	data, err := json.Marshal(got["2"])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"images_exist":false,"price_exists":true}]`, string(data))
}

func TestCheckVariantsMalformed(t *testing.T) {
	_, err := CheckVariantsImagesPrices(decode(t, `[{"id":1,"variants":"none"}]`))
	var malformed *MalformedRecordError
	require.ErrorAs(t, err, &malformed)

	_, err = CheckVariantsImagesPrices(decode(t, `[{"id":1,"variants":[5]}]`))
	require.ErrorAs(t, err, &malformed)
}
