package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mark3labs/specforge/internal/spec"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// Execute runs the specforge CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "specforge",
		Short:         "Edit OpenAPI documents and scaffold MCP servers from them",
		Long:          "specforge imports OpenAPI 3.x and Swagger 2.0 documents, applies editing commands, resolves references, and scaffolds TypeScript MCP tool servers.",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	flagErr := func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	}
	cmd.SetFlagErrorFunc(flagErr)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")

	for _, sub := range []*cobra.Command{
		newGenerateCmd(),
		newConvertCmd(),
		newApplyCmd(),
		newResolveCmd(),
		newValidateCmd(),
		newServeCmd(),
		newInitCmd(),
	} {
		sub.SetFlagErrorFunc(flagErr)
		cmd.AddCommand(sub)
	}

	return cmd
}

func commandLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return newLogger(cmd.ErrOrStderr(), verbose)
}

// loadDocument reads input and brings it into canonical form.
func loadDocument(ctx context.Context, input string, logger *slog.Logger) (*spec.Document, error) {
	if input == "" {
		return nil, newUsageError("--input is required")
	}
	doc, err := spec.Load(ctx, input, spec.WithLogger(logger))
	if err != nil {
		return nil, specUsageError(err)
	}
	return spec.PreProcess(doc), nil
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
