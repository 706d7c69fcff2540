package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldMap_ObjectInProse(t *testing.T) {
	content := `Here is the data: {"propertyAddress": "123 Main St", "city": "Scarborough", "listPrice": null} Hope this helps!`

	got := ParseFieldMap(content)
	assert.Equal(t, FieldMap{"propertyAddress": "123 Main St", "city": "Scarborough"}, got)
}

func TestParseFieldMap_DropsEmptyAndCoerces(t *testing.T) {
	content := "```json\n" + `{
  "listPrice": 899000,
  "bathrooms": 2.5,
  "bedrooms": "3",
  "title": "",
  "sellerName": null,
  "features": ["Balcony", "Parking"],
  "furnished": false,
  "": "orphan",
  "parking": {"spaces": 2}
}` + "\n```"

	got := ParseFieldMap(content)
	assert.Equal(t, FieldMap{
		"listPrice": "899000",
		"bathrooms": "2.5",
		"bedrooms":  "3",
		"features":  "Balcony,Parking",
		"furnished": "false",
		"parking":   `{"spaces":2}`,
	}, got)
}

func TestParseFieldMap_Malformed(t *testing.T) {
	tests := map[string]string{
		"truncated":      `{"propertyAddress": "123 Main St", "city": "Scar`,
		"no braces":      "I could not find any property information in this document.",
		"empty":          "",
		"array":          `["a", "b"]`,
		"number":         "42",
		"two objects":    `{"a": "1"} and also {"b": "2"}`,
		"closing only":   `nothing here }`,
		"invalid inside": `{propertyAddress: '123 Main'}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			var got FieldMap
			assert.NotPanics(t, func() { got = ParseFieldMap(content) })
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestParseFieldMapStrict_ReportsReason(t *testing.T) {
	fields, err := ParseFieldMapStrict("no json here")
	require.Error(t, err)
	assert.Empty(t, fields)

	fields, err = ParseFieldMapStrict(`{}`)
	require.NoError(t, err)
	assert.Empty(t, fields)

	_, err = ParseFieldMapStrict(`"just a string"`)
	assert.ErrorIs(t, err, errNotObject)
}

func TestParseFieldMap_ObjectWithoutProse(t *testing.T) {
	got := ParseFieldMap(`  {"city":"Toronto","zipCode":"M5V 2T6"}  `)
	assert.Equal(t, FieldMap{"city": "Toronto", "zipCode": "M5V 2T6"}, got)
}
