package mcptools

import (
	"context"
	"reflect"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func noopHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("ok"), nil
}

func TestRegistry_Register_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Tool{Def: mcp.NewTool("a"), Handler: noopHandler}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(Tool{Def: mcp.NewTool("a"), Handler: noopHandler}); err == nil {
		t.Fatal("duplicate Register accepted, want error")
	}
}

func TestRegistry_Register_RejectsMissingNameOrHandler(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Tool{Handler: noopHandler}); err == nil {
		t.Error("nameless tool accepted")
	}
	if err := r.Register(Tool{Def: mcp.NewTool("b")}); err == nil {
		t.Error("handlerless tool accepted")
	}
}

func TestRegistry_Names_KeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		if err := r.Register(Tool{Def: mcp.NewTool(name), Handler: noopHandler}); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	if got, want := r.Names(), []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRegistry_Gated(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Tool{Def: mcp.NewTool("safe"), Handler: noopHandler}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(Tool{Def: mcp.NewTool("risky"), Handler: noopHandler, Gated: true}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if r.Gated("safe") {
		t.Error("safe reported gated")
	}
	if !r.Gated("risky") {
		t.Error("risky not reported gated")
	}
	if r.Gated("absent") {
		t.Error("unknown tool reported gated")
	}
}

func TestServer_RegistersExpectedToolSet(t *testing.T) {
	s := newTestServer(t, newFakeMailer(), nil)
	r := s.Registry()

	gated := map[string]bool{
		"send_email":     true,
		"reply_to_email": true,
		"forward_email":  true,
		"mark_as_spam":   true,
	}
	names := r.Names()
	if len(names) != 18 {
		t.Fatalf("got %d tools, want 18: %v", len(names), names)
	}
	for _, name := range names {
		if r.Gated(name) != gated[name] {
			t.Errorf("tool %s gated = %v, want %v", name, r.Gated(name), gated[name])
		}
	}
}

func TestRegistry_Install_WrapsHandlers(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Tool{Def: mcp.NewTool("a"), Handler: noopHandler}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var wrapped []string
	srv := server.NewMCPServer("test", "0.0.0")
	r.Install(srv, func(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
		wrapped = append(wrapped, name)
		return h
	})

	if !reflect.DeepEqual(wrapped, []string{"a"}) {
		t.Errorf("wrapped = %v", wrapped)
	}
}
