package mcpserver

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/mark3labs/specforge/internal/scaffold"
	"github.com/mark3labs/specforge/internal/spec"
)

// serverConfig holds the MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Persist saved snapshots to disk instead of process memory.
	Persist bool

	// Export tool default format.
	ExportFormat spec.Format

	// Generate tool defaults.
	ToolDescriptionMax int

	// Resolve tool output bound.
	MaxResultBytes int
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from SPECFORGE_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		Persist:            envBool("SPECFORGE_PERSIST", true),
		ExportFormat:       envFormat("SPECFORGE_EXPORT_FORMAT", spec.FormatYAML),
		ToolDescriptionMax: envInt("SPECFORGE_TOOL_DESCRIPTION_MAX", scaffold.MaxDescriptionLength),
		MaxResultBytes:     envInt("SPECFORGE_MAX_RESULT_BYTES", 1<<20),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envFormat(key string, fallback spec.Format) spec.Format {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := spec.ParseFormat(v)
	if err != nil {
		slog.Warn("invalid format env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return f
}
