package llm

// BuildFieldSchema returns a JSON-Schema (draft 2020-12 subset) describing the
// expected format of well-known fields. Unknown keys are allowed as long as
// they are strings. The checks are advisory: a mismatch never drops a field.
func BuildFieldSchema() map[string]any {
	props := map[string]any{
		FieldZipCode:    patternProp(`^([A-Za-z]\d[A-Za-z][ -]?\d[A-Za-z]\d|\d{5}(-\d{4})?)$`),
		FieldState:      patternProp(`^[A-Za-z]{2}$`),
		FieldListPrice:  numberProp(),
		FieldCommission: numberProp(),
		FieldBedrooms:   patternProp(`^\d+(\.\d+)?(\s*\+\s*\d+)?$`), // "3+1" is common on MLS sheets
		FieldBathrooms:  patternProp(`^\d+(\.\d+)?$`),
		FieldSquareFeet: patternProp(`^\d+(\s*-\s*\d+)?$`), // ranges like "1200-1399"
		FieldYearBuilt:  patternProp(`^(1[6-9]|20)\d{2}$`),
	}

	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": map[string]any{"type": "string", "minLength": 1},
	}
}

func patternProp(pattern string) map[string]any {
	return map[string]any{"type": "string", "pattern": pattern}
}

func numberProp() map[string]any {
	return patternProp(`^\d+(\.\d+)?$`)
}
