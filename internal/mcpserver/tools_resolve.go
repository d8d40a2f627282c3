package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mark3labs/specforge/internal/resolver"
	"github.com/mark3labs/specforge/internal/spec"
)

type resolveInput struct {
	Pointer string `json:"pointer"           jsonschema:"Local JSON pointer starting with #, e.g. #/components/schemas/Pet"`
	Deref   bool   `json:"deref,omitempty"   jsonschema:"Inline nested $ref nodes in the result"`
	Shallow bool   `json:"shallow,omitempty" jsonschema:"With deref, only expand references of the top-level node"`
}

type resolveOutput struct {
	Pointer string `json:"pointer"`
	Found   bool   `json:"found"`
	Node    any    `json:"node,omitempty"`
}

func (h *handlers) handleResolve(_ context.Context, _ *mcp.CallToolRequest, input resolveInput) (*mcp.CallToolResult, resolveOutput, error) {
	pointer := strings.TrimSpace(input.Pointer)
	if !strings.HasPrefix(pointer, "#") {
		return errResult(fmt.Errorf("pointer must start with #")), resolveOutput{}, nil
	}
	tree, err := spec.ToTree(h.session.Document())
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}
	out := resolveOutput{Pointer: pointer}
	node, ok := resolver.ResolveRef(pointer, tree)
	if !ok {
		return nil, out, nil
	}
	if input.Deref {
		node = resolver.DerefTree(node, tree, input.Shallow)
	}
	data, err := json.Marshal(node)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}
	if len(data) > cfg.MaxResultBytes {
		return errResult(fmt.Errorf("resolved node is %d bytes, over the %d byte limit; resolve a narrower pointer", len(data), cfg.MaxResultBytes)), resolveOutput{}, nil
	}
	out.Found = true
	out.Node = node
	return nil, out, nil
}
