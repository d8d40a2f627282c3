package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/specforge/internal/command"
	"github.com/mark3labs/specforge/internal/editor"
	"github.com/mark3labs/specforge/internal/spec"
	"github.com/mark3labs/specforge/internal/store"
)

// ApplyConfig captures the options for the apply command.
type ApplyConfig struct {
	Input    string
	Commands string
	Format   spec.Format
	Out      string
	StateDir string

	Stdin  io.Reader
	Stdout io.Writer
	Logger *slog.Logger
}

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a batch of editing commands to a document",
		Long: "Apply a JSON or YAML list of {type, payload} editing commands in order and export the result. " +
			"SAVE persists a snapshot under --state-dir so a later UNDO, even from another run, can restore it. " +
			"Without --input the built-in starting document is edited.",
		Example: strings.TrimSpace(`  specforge apply --input openapi.yaml --commands edits.yaml --out openapi.yaml
  cat edits.json | specforge apply --commands - --format json`),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			commands, _ := cmd.Flags().GetString("commands")
			rawFormat, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			stateDir, _ := cmd.Flags().GetString("state-dir")
			format, err := spec.ParseFormat(rawFormat)
			if err != nil {
				return newUsageError(fmt.Sprintf("apply: %v", err))
			}
			if strings.TrimSpace(commands) == "" {
				return newUsageError("apply: --commands is required")
			}
			return runApply(cmd.Context(), &ApplyConfig{
				Input:    strings.TrimSpace(input),
				Commands: strings.TrimSpace(commands),
				Format:   format,
				Out:      strings.TrimSpace(out),
				StateDir: strings.TrimSpace(stateDir),
				Stdin:    cmd.InOrStdin(),
				Stdout:   cmd.OutOrStdout(),
				Logger:   commandLogger(cmd),
			})
		},
	}
	cmd.Flags().String("input", "", "Path or URL to the starting document (default document when omitted)")
	cmd.Flags().String("commands", "", "File with the command list, or - for stdin")
	cmd.Flags().String("format", "yaml", "Output format (json|yaml)")
	cmd.Flags().String("out", "", "Output file (stdout when omitted)")
	cmd.Flags().String("state-dir", "", "Snapshot directory (default $SPECFORGE_STATE_DIR or the user config dir)")
	return cmd
}

func runApply(ctx context.Context, cfg *ApplyConfig) error {
	raw, err := readCommands(cfg.Commands, cfg.Stdin)
	if err != nil {
		return err
	}
	cmds, err := command.DecodeBatch(raw)
	if err != nil {
		return newUsageError(fmt.Sprintf("apply: %v", err))
	}

	dir := cfg.StateDir
	if dir == "" {
		if dir, err = store.DefaultDir(); err != nil {
			return err
		}
	}
	sess := editor.New(store.NewFileStore(dir), editor.WithLogger(cfg.Logger))
	if cfg.Input != "" {
		if _, err := sess.Load(ctx, cfg.Input); err != nil {
			return specUsageError(err)
		}
	}
	if _, err := sess.DispatchAll(ctx, cmds...); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	data, err := sess.Export(cfg.Format)
	if err != nil {
		return err
	}
	return writeOutput(stdout(cfg.Stdout), cfg.Out, data)
}

func readCommands(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read commands from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read commands file %q: %v", path, err))
	}
	return data, nil
}
