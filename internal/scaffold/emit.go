package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options controls how Emit writes a FileSet.
type Options struct {
	OutDir string // required; target directory to write the project
	Force  bool   // overwrite a non-empty directory
	DryRun bool   // don't write, only plan
}

// PlannedFile describes a file Emit intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result lists the planned files in deterministic order.
type Result struct {
	OutDir  string
	Planned []PlannedFile
}

// Emit writes files under opts.OutDir. A non-empty directory is refused
// unless Force is set; every file is written to a temp name and renamed.
func Emit(ctx context.Context, files FileSet, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("scaffold: OutDir is required")
	}
	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolve out dir: %w", err)
	}

	rels := files.Paths()
	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: fileMode(rel)})
	}
	res := &Result{OutDir: abs, Planned: planned}
	if opts.DryRun {
		return res, nil
	}
	if err := writeFiles(ctx, abs, files, opts.Force); err != nil {
		return nil, err
	}
	return res, nil
}

func fileMode(rel string) os.FileMode {
	if rel == FileIndex {
		return 0o755
	}
	return 0o644
}

func writeFiles(ctx context.Context, abs string, files FileSet, force bool) error {
	// Pre-flight: if directory exists and not empty and not force, error.
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("scaffold: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for _, rel := range files.Paths() {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(abs, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, files[rel], fileMode(rel)); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}
