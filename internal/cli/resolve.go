package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/specforge/internal/resolver"
	"github.com/mark3labs/specforge/internal/spec"
)

// ResolveConfig captures the options for the resolve command.
type ResolveConfig struct {
	Input   string
	Pointer string
	Deref   bool
	Shallow bool

	Stdout io.Writer
	Logger *slog.Logger
}

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the node a local JSON pointer refers to",
		Example: strings.TrimSpace(`  specforge resolve --input openapi.yaml --pointer '#/components/schemas/Pet' --deref
  specforge resolve --input openapi.yaml --pointer '#/paths/~1pets/get'`),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			pointer, _ := cmd.Flags().GetString("pointer")
			deref, _ := cmd.Flags().GetBool("deref")
			shallow, _ := cmd.Flags().GetBool("shallow")
			pointer = strings.TrimSpace(pointer)
			if !strings.HasPrefix(pointer, "#") {
				return newUsageError("resolve: --pointer must start with #")
			}
			return runResolve(cmd.Context(), &ResolveConfig{
				Input:   strings.TrimSpace(input),
				Pointer: pointer,
				Deref:   deref || shallow,
				Shallow: shallow,
				Stdout:  cmd.OutOrStdout(),
				Logger:  commandLogger(cmd),
			})
		},
	}
	cmd.Flags().String("input", "", "Path or URL to the Swagger/OpenAPI document")
	cmd.Flags().String("pointer", "", "Local JSON pointer, e.g. #/components/schemas/Pet")
	cmd.Flags().Bool("deref", false, "Inline nested $ref nodes (cycles stay as $ref)")
	cmd.Flags().Bool("shallow", false, "Only expand the top-level node's own references (implies --deref)")
	return cmd
}

func runResolve(ctx context.Context, cfg *ResolveConfig) error {
	doc, err := loadDocument(ctx, cfg.Input, cfg.Logger)
	if err != nil {
		return err
	}
	tree, err := spec.ToTree(doc)
	if err != nil {
		return err
	}
	node, ok := resolver.ResolveRef(cfg.Pointer, tree)
	if !ok {
		return fmt.Errorf("resolve: %s does not point at anything", cfg.Pointer)
	}
	if cfg.Deref {
		node = resolver.DerefTree(node, tree, cfg.Shallow)
	}
	return printJSON(stdout(cfg.Stdout), node)
}
