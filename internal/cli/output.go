package cli

import (
	"encoding/json"
	"fmt"
)

// printJSON marshals v indented to stdout, the "--format json" path.
func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cli: encoding result: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

// emit renders v as JSON when --format=json, otherwise calls renderText
// to print the human-facing rendering.
func emit(v any, renderText func()) error {
	if format == "json" {
		return printJSON(v)
	}
	renderText()
	return nil
}
