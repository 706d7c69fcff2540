package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FieldIssue describes a field whose value does not look like its expected format.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var compiledFieldSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(BuildFieldSchema())
})

// CheckFieldFormats reports fields whose values fail the advisory format
// schema. Issues are sorted by field name.
func CheckFieldFormats(fields FieldMap) ([]FieldIssue, error) {
	schema, err := compiledFieldSchema()
	if err != nil {
		return nil, err
	}

	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validate fields: %w", err)
	}

	var issues []FieldIssue
	collectIssues(ve, &issues)
	sort.Slice(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return issues, nil
}

func collectIssues(ve *jsonschema.ValidationError, out *[]FieldIssue) {
	if len(ve.Causes) == 0 {
		field := strings.TrimPrefix(ve.InstanceLocation, "/")
		if field != "" {
			*out = append(*out, FieldIssue{Field: field, Message: ve.Message})
		}
		return
	}
	for _, c := range ve.Causes {
		collectIssues(c, out)
	}
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
