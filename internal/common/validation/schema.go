package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema describing a validator's constructor
// payload. It checks presence and shape only; user-facing rules belong to
// the validator itself.
type Schema struct {
	name     string
	compiled *gojsonschema.Schema
}

// CompileSchema parses src once. Call at startup.
func CompileSchema(name, src string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// Check validates payload against the schema and returns a descriptive error
// listing every mismatch.
func (s *Schema) Check(payload []byte) error {
	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("schema %s: %w", s.name, err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return fmt.Errorf("schema %s: %s", s.name, strings.Join(errs, "; "))
	}
	return nil
}
