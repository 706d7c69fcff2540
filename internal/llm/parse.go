package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// reJSONObject spans from the first '{' to the last '}' in the text.
var reJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

var errNotObject = errors.New("model output is not a JSON object")

// ParseFieldMap converts raw model text into a FieldMap. It never fails:
// malformed or missing JSON yields an empty map.
func ParseFieldMap(content string) FieldMap {
	fields, _ := ParseFieldMapStrict(content)
	return fields
}

// ParseFieldMapStrict behaves like ParseFieldMap but also reports why parsing
// produced nothing. The returned map is always non-nil.
func ParseFieldMapStrict(content string) (FieldMap, error) {
	candidate := reJSONObject.FindString(content)
	if candidate == "" {
		candidate = strings.TrimSpace(content)
	}

	var parsed any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return FieldMap{}, fmt.Errorf("decode model output: %w", err)
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return FieldMap{}, errNotObject
	}

	out := make(FieldMap, len(obj))
	for k, v := range obj {
		if k == "" || v == nil {
			continue
		}
		s := stringify(v)
		if s == "" {
			continue
		}
		out[k] = s
	}
	return out, nil
}

// stringify renders a decoded JSON value as text: numbers in shortest
// decimal form, arrays comma-joined, objects as compact JSON.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = stringify(e)
		}
		return strings.Join(parts, ",")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
