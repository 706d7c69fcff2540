package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/listing-docs/constants"
	"github.com/joseph-ayodele/listing-docs/internal/llm"
)

func TestApply(t *testing.T) {
	d := NewDraft()
	populated := d.Apply(llm.FieldMap{
		"propertyAddress": "123 Main St",
		"city":            "Toronto",
		"state":           "ON",
		"listPrice":       "$1,250,000",
		"squareFeet":      "1,850 sq ft",
		"propertyType":    "Detached House",
		"mlsNumber":       "W1234567",
	})

	assert.Equal(t, []string{"city", "listPrice", "propertyAddress", "propertyType", "squareFeet", "state"}, populated)
	assert.Equal(t, "123 Main St", d.Address)
	assert.Equal(t, "1250000", d.ListPrice)
	assert.Equal(t, "1850", d.SquareFeet)
	assert.Equal(t, constants.Residential, d.PropertyType)
	assert.Equal(t, constants.DefaultCommission, d.Commission)
	assert.Equal(t, constants.DefaultCountry, d.Country)
	assert.Empty(t, d.Title)
}

func TestApply_EmptyMapLeavesDefaults(t *testing.T) {
	d := NewDraft()
	assert.Empty(t, d.Apply(nil))
	assert.Equal(t, *NewDraft(), *d)
}

func TestMapPropertyType(t *testing.T) {
	tests := map[string]constants.PropertyType{
		"Condominium":        constants.Residential,
		"Multi-family home":  constants.Residential,
		"Retail Plaza":       constants.Commercial,
		"Vacant lot":         constants.Land,
		"Industrial park":    constants.Industrial,
		"Mixed use":          constants.MixedUse,
		"Pre-Construction":   constants.PreConstruction,
		"Under construction": constants.PreConstruction,
		"Farm":               constants.Residential,
		"":                   constants.Residential,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapPropertyType(in), in)
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "850000", DigitsOnly("$850,000"))
	assert.Equal(t, "", DigitsOnly("n/a"))
}

func TestCompletion(t *testing.T) {
	d := NewDraft()
	c := d.Completion(false)
	assert.False(t, c.Property)
	assert.False(t, c.Pricing)
	assert.Equal(t, 0, c.Percent())

	d.ListPrice = "500000"
	assert.Equal(t, 50, d.Completion(true).Percent())

	d.Title, d.Address, d.City, d.State = "Loft", "1 King St", "Toronto", "ON"
	c = d.Completion(true)
	assert.True(t, c.Documents)
	assert.Equal(t, 100, c.Percent())
}

func TestValidate(t *testing.T) {
	d := NewDraft()
	err := d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "listPrice")

	d.Apply(llm.FieldMap{"title": "Loft", "propertyAddress": "1 King St", "city": "Toronto", "state": "ON", "listPrice": "500000"})
	assert.NoError(t, d.Validate())
}

func TestEstimates(t *testing.T) {
	d := NewDraft()
	_, ok := d.EstimatedCommission()
	assert.False(t, ok)

	d.ListPrice, d.SquareFeet = "1000000", "2000"
	amount, ok := d.EstimatedCommission()
	require.True(t, ok)
	assert.InDelta(t, 25000, amount, 0.001)

	pps, ok := d.PricePerSquareFoot()
	require.True(t, ok)
	assert.InDelta(t, 500, pps, 0.001)

	d.SquareFeet = "0"
	_, ok = d.PricePerSquareFoot()
	assert.False(t, ok)
}
