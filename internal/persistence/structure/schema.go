package structure

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed structure.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("structure.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// Validate checks s against the structure JSON schema and the
// start < end invariant the schema cannot express.
func Validate(s Structure) error {
	raw, err := Encode(s)
	if err != nil {
		return err
	}
	if err := ValidateJSON(raw); err != nil {
		return err
	}
	for i, b := range s.Blocks {
		for a := 0; a < 3; a++ {
			if b.End[a] <= b.Start[a] {
				return fmt.Errorf("block %d: end[%d]=%d not after start[%d]=%d", i, a, b.End[a], a, b.Start[a])
			}
		}
	}
	return nil
}

// ValidateJSON checks raw structure JSON against the schema.
func ValidateJSON(raw []byte) error {
	sch, err := compiled()
	if err != nil {
		return fmt.Errorf("compile structure schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("structure json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("structure schema: %w", err)
	}
	return nil
}
