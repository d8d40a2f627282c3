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

// ValidateConfig captures the options for the validate command.
type ValidateConfig struct {
	Input string
	JSON  bool

	Stdout io.Writer
	Logger *slog.Logger
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report structural problems in a document",
		Long:  "Validate a document after import and normalization. Exits non-zero when problems are found.",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			asJSON, _ := cmd.Flags().GetBool("json")
			return runValidate(cmd.Context(), &ValidateConfig{
				Input:  strings.TrimSpace(input),
				JSON:   asJSON,
				Stdout: cmd.OutOrStdout(),
				Logger: commandLogger(cmd),
			})
		},
	}
	cmd.Flags().String("input", "", "Path or URL to the Swagger/OpenAPI document")
	cmd.Flags().Bool("json", false, "Print findings as JSON")
	return cmd
}

func runValidate(ctx context.Context, cfg *ValidateConfig) error {
	doc, err := loadDocument(ctx, cfg.Input, cfg.Logger)
	if err != nil {
		return err
	}
	issues, err := spec.Lint(ctx, doc)
	if err != nil {
		return err
	}
	w := stdout(cfg.Stdout)
	if cfg.JSON {
		if err := printJSON(w, issues); err != nil {
			return err
		}
	} else if len(issues) == 0 {
		fmt.Fprintf(w, "%s: valid\n", cfg.Input)
	} else {
		fmt.Fprintf(w, "%s: %d issue(s)\n", cfg.Input, len(issues))
		for _, is := range issues {
			loc := is.JSONPointer
			if loc == "" {
				loc = "#"
			}
			fmt.Fprintf(w, "- [%s] %s: %s\n", is.Severity, loc, is.Message)
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("validate: %d issue(s) found", len(issues))
	}
	return nil
}
