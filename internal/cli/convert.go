package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/specforge/internal/spec"
)

// ConvertConfig captures the options for the convert command.
type ConvertConfig struct {
	Input  string
	Format spec.Format
	Out    string

	Stdout io.Writer
	Logger *slog.Logger
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Normalize a document and export it as OpenAPI 3 JSON or YAML",
		Long: "Import an OpenAPI 3.x or Swagger 2.0 document, bring it into canonical form, " +
			"and export the minimal OpenAPI 3 rendition.",
		Example: strings.TrimSpace(`  specforge convert --input swagger.json --format yaml --out openapi.yaml`),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			rawFormat, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			format, err := spec.ParseFormat(rawFormat)
			if err != nil {
				return newUsageError(fmt.Sprintf("convert: %v", err))
			}
			return runConvert(cmd.Context(), &ConvertConfig{
				Input:  strings.TrimSpace(input),
				Format: format,
				Out:    strings.TrimSpace(out),
				Stdout: cmd.OutOrStdout(),
				Logger: commandLogger(cmd),
			})
		},
	}
	cmd.Flags().String("input", "", "Path or URL to the Swagger/OpenAPI document")
	cmd.Flags().String("format", "yaml", "Output format (json|yaml)")
	cmd.Flags().String("out", "", "Output file (stdout when omitted)")
	return cmd
}

func runConvert(ctx context.Context, cfg *ConvertConfig) error {
	doc, err := loadDocument(ctx, cfg.Input, cfg.Logger)
	if err != nil {
		return err
	}
	data, err := spec.Export(doc, cfg.Format)
	if err != nil {
		return err
	}
	return writeOutput(stdout(cfg.Stdout), cfg.Out, data)
}
