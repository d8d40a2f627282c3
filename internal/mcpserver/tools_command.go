package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mark3labs/specforge/internal/command"
)

type commandInput struct {
	Type    string         `json:"type"              jsonschema:"Command type, e.g. ADD_PATH"`
	Payload map[string]any `json:"payload,omitempty" jsonschema:"Command payload; fields depend on the type"`
}

type dispatchInput struct {
	Commands []commandInput `json:"commands,omitempty"  jsonschema:"Commands applied in order"`
	ListOnly bool           `json:"list_only,omitempty" jsonschema:"Only list the supported command types"`
}

type dispatchOutput struct {
	Applied  int             `json:"applied"`
	Document documentSummary `json:"document"`
	Types    []string        `json:"types,omitempty"`
}

func (h *handlers) handleDispatch(ctx context.Context, _ *mcp.CallToolRequest, input dispatchInput) (*mcp.CallToolResult, dispatchOutput, error) {
	if input.ListOnly {
		kinds := command.Kinds()
		types := make([]string, 0, len(kinds))
		for _, k := range kinds {
			types = append(types, string(k))
		}
		return nil, dispatchOutput{Document: summarize(h.session.Document()), Types: types}, nil
	}
	if len(input.Commands) == 0 {
		return errResult(fmt.Errorf("commands is required")), dispatchOutput{}, nil
	}

	// Decode everything first so a bad entry applies nothing.
	cmds := make([]command.Command, 0, len(input.Commands))
	for i, c := range input.Commands {
		env := command.Envelope{Type: command.Kind(c.Type)}
		if c.Payload != nil {
			payload, err := json.Marshal(c.Payload)
			if err != nil {
				return errResult(fmt.Errorf("command %d: %w", i, err)), dispatchOutput{}, nil
			}
			env.Payload = payload
		}
		cmd, err := command.DecodeEnvelope(env)
		if err != nil {
			return errResult(fmt.Errorf("command %d: %w", i, err)), dispatchOutput{}, nil
		}
		cmds = append(cmds, cmd)
	}

	doc, err := h.session.DispatchAll(ctx, cmds...)
	if err != nil {
		return errResult(err), dispatchOutput{}, nil
	}
	return nil, dispatchOutput{Applied: len(cmds), Document: summarize(doc)}, nil
}
