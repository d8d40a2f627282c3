package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mark3labs/specforge/internal/spec"
)

type validateInput struct{}

type validateIssue struct {
	Pointer  string `json:"pointer,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type validateOutput struct {
	Valid      bool            `json:"valid"`
	IssueCount int             `json:"issue_count"`
	Issues     []validateIssue `json:"issues,omitempty"`
}

func (h *handlers) handleValidate(ctx context.Context, _ *mcp.CallToolRequest, _ validateInput) (*mcp.CallToolResult, validateOutput, error) {
	issues, err := spec.Lint(ctx, h.session.Document())
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	output := validateOutput{Valid: len(issues) == 0, IssueCount: len(issues)}
	output.Issues = makeSlice[validateIssue](len(issues))
	for _, is := range issues {
		output.Issues = append(output.Issues, validateIssue{
			Pointer:  is.JSONPointer,
			Severity: is.Severity,
			Message:  is.Message,
		})
	}
	return nil, output, nil
}
