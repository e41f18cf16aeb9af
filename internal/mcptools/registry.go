package mcptools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool couples an MCP tool definition with its handler and whether the tool
// sits behind the preview/confirm gate.
type Tool struct {
	Def     mcp.Tool
	Handler server.ToolHandlerFunc
	Gated   bool
}

// Registry holds the tool set, indexed by name and kept in registration
// order so the advertised tool list is stable.
type Registry struct {
	byName map[string]Tool
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

// Register adds a tool. Duplicate names are a wiring bug and are rejected
// so a misassembled server fails at startup rather than shadowing a tool.
func (r *Registry) Register(t Tool) error {
	name := t.Def.Name
	if name == "" {
		return fmt.Errorf("tool has no name")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q has no handler", name)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("tool %q registered twice", name)
	}
	r.byName[name] = t
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Gated reports whether the named tool requires the preview/confirm flow.
func (r *Registry) Gated(name string) bool {
	return r.byName[name].Gated
}

// Install adds every registered tool to the MCP server. When wrap is
// non-nil each handler is passed through it, which is how the server layer
// attaches per-call logging and tracing.
func (r *Registry) Install(s *server.MCPServer, wrap func(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc) {
	for _, name := range r.order {
		t := r.byName[name]
		handler := t.Handler
		if wrap != nil {
			handler = wrap(name, handler)
		}
		s.AddTool(t.Def, handler)
	}
}
