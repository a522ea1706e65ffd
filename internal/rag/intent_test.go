package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectIntent(t *testing.T) {
	tables := DefaultTables()

	tests := []struct {
		query string
		want  Intent
	}{
		{"Koľko stoja náušnice?", IntentSearchProduct},
		{"cena", IntentGetPrice},
		{"Zľava na darček", IntentFindDiscount},
		{"Porovnaj tieto dva", IntentCompare},
		{"Ako sa starať o šperky", IntentSearchProduct},
		{"ako cistit", IntentNone},
		{"čistenie", IntentCareInfo},
		{"xyzxyz", IntentNone},
		{"", IntentNone},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, tables.DetectIntent(tt.query))
		})
	}
}

func TestDetectCategory(t *testing.T) {
	tables := DefaultTables()

	// "kolko" belongs to pricing, which is declared before shipping.
	assert.Equal(t, "pricing", tables.DetectCategory("Koľko stojí doprava?"))
	assert.Equal(t, "shipping", tables.DetectCategory("doprava"))
	assert.Equal(t, "returns", tables.DetectCategory("reklamácia"))
	assert.Equal(t, "", tables.DetectCategory("xyzxyz"))
}

func TestIsProductQuery(t *testing.T) {
	tables := DefaultTables()

	assert.True(t, tables.IsProductQuery("Máte náušnice skladom?"))
	assert.True(t, tables.IsProductQuery("kolko stoji tento par"))
	assert.False(t, tables.IsProductQuery("ahoj"))
	assert.False(t, tables.IsProductQuery(""))
}

func TestExtractPriceRange(t *testing.T) {
	tables := DefaultTables()

	tests := []struct {
		name    string
		query   string
		wantNil bool
		min     *float64
		max     *float64
	}{
		{name: "under", query: "náušnice do 20 eur", max: ptr(20)},
		{name: "pod", query: "pod 15€", max: ptr(15)},
		{name: "between", query: "od 10 do 30", min: ptr(10), max: ptr(30)},
		{name: "over", query: "nad 15 eur", min: ptr(15)},
		{name: "english under", query: "earrings under 40", max: ptr(40)},
		{name: "plain range", query: "10-25", min: ptr(10), max: ptr(25)},
		{name: "none", query: "bez ceny", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tables.ExtractPriceRange(tt.query)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.min, got.Min)
			assert.Equal(t, tt.max, got.Max)
		})
	}
}

func TestExtractSize(t *testing.T) {
	tables := DefaultTables()

	assert.Equal(t, "M", tables.ExtractSize("veľkosť M"))
	assert.Equal(t, "XL", tables.ExtractSize("mate XL"))
	assert.Equal(t, "35", tables.ExtractSize("priemer 35 mm"))
	assert.Equal(t, "", tables.ExtractSize("nausnice"), "size letters inside words do not count")
}

func TestExtractColor(t *testing.T) {
	tables := DefaultTables()

	assert.Equal(t, "cierna", tables.ExtractColor("čierne náušnice"))
	assert.Equal(t, "modra", tables.ExtractColor("Modré"))
	assert.Equal(t, "", tables.ExtractColor("nausnice"))
}

func ptr(v float64) *float64 {
	return &v
}
