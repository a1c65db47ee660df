package streamable

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
)

// ToolDef is the wire descriptor sent to the provider describing a tool's
// capabilities.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Tool configures one renderable tool or function: its parameter schema
// and the renderer invoked with the model's parsed arguments.
type Tool struct {
	Description string
	Parameters  *jsonschema.Schema
	Render      ArgsRenderer
}

// ToolDefs converts configured tools into wire descriptors, marshaling
// each parameter schema. Output is sorted by name so requests are
// deterministic.
func ToolDefs(tools map[string]Tool) ([]ToolDef, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]ToolDef, 0, len(names))
	for _, name := range names {
		t := tools[name]
		var params json.RawMessage
		if t.Parameters != nil {
			raw, err := json.Marshal(t.Parameters)
			if err != nil {
				return nil, fmt.Errorf("tool %q: marshal parameters: %w", name, err)
			}
			params = raw
		}
		defs = append(defs, ToolDef{
			Name:        name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return defs, nil
}
