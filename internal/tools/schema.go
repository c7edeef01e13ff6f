package tools

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// validateConfig validates interpolated tool config against a tool's
// declared JSON Schema, when one is set. A nil schema skips validation, so
// tools without a declared schema behave as before.
func validateConfig(toolName string, schemaDoc map[string]any, config map[string]any) error {
	if schemaDoc == nil {
		return nil
	}
	compiler := jsonschema.NewCompiler()
	resourceName := toolName + "-schema.json"
	if err := compiler.AddResource(resourceName, schemaDoc); err != nil {
		return &InputInvalidError{Tool: toolName, Detail: fmt.Sprintf("invalid schema: %s", err)}
	}
	schema, err := compiler.Compile(resourceName)
	if err != nil {
		return &InputInvalidError{Tool: toolName, Detail: fmt.Sprintf("invalid schema: %s", err)}
	}
	if err := schema.Validate(toAnyMap(config)); err != nil {
		return &InputInvalidError{Tool: toolName, Detail: err.Error()}
	}
	return nil
}

// toAnyMap converts a map[string]any into the any value jsonschema expects
// for instance validation (it round-trips maps/slices/scalars as produced
// by encoding/json unmarshaling into `any`).
func toAnyMap(m map[string]any) any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
