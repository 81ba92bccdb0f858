package toolsurface

import (
	"context"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// Handler executes one tool call's already-validated arguments and
// returns the MCP tool_call result payload.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool pairs a name and schema with the handler bound to it. Registered
// tools are returned verbatim by tools/list; Description documents the
// contract a client-facing schema would need.
type Tool struct {
	Name        string
	Description string
	Schema      Schema
	Handler     Handler
}

// Dispatcher is the declarative tool surface: a closed
// set of named tools, each validated against its own schema before the
// bound handler runs. It never speaks JSON-RPC or stdio framing
// itself; that belongs to a transport layer outside this package.
type Dispatcher struct {
	tools map[string]Tool
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{tools: map[string]Tool{}}
}

// Register adds t to the dispatcher, panicking on a duplicate name
// since that can only happen from a programming error at wiring time.
func (d *Dispatcher) Register(t Tool) {
	if _, exists := d.tools[t.Name]; exists {
		panic("toolsurface: duplicate tool " + t.Name)
	}
	d.tools[t.Name] = t
}

// List returns every registered tool sorted by name, the shape a
// tools/list response projects into its own wire format.
func (d *Dispatcher) List() []Tool {
	out := make([]Tool, 0, len(d.tools))
	for _, t := range d.tools {
		out = append(out, t)
	}
	sortTools(out)
	return out
}

func sortTools(tools []Tool) {
	for i := 1; i < len(tools); i++ {
		for j := i; j > 0 && tools[j].Name < tools[j-1].Name; j-- {
			tools[j], tools[j-1] = tools[j-1], tools[j]
		}
	}
}

// Call validates args against the named tool's schema and, on success,
// invokes its handler. An unknown tool name is a ToolNotFound error.
// That includes create_status/update_status/delete_status: the status
// set is fixed and has no mutating tool.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	t, ok := d.tools[name]
	if !ok {
		return nil, types.ToolNotFoundf("unknown tool %q", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := t.Schema.Validate(args); err != nil {
		return nil, err
	}
	return t.Handler(ctx, args)
}
