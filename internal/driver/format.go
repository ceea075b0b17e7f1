package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"glfuzz/internal/format"
)

// FormatOptions configures shader formatting.
type FormatOptions struct {
	Check          bool
	Verify         bool
	MaxDiagnostics int
	Options        format.Options
	Stdout         bool
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path      string
	Changed   bool
	Err       error
	Formatted []byte
}

// FormatPaths formats provided shaders or directories (recursively collecting
// .frag, .vert and .comp files). When opts.Check is true, files are not
// modified; Changed indicates whether formatting would update the file.
// When opts.Stdout is true, formatted content is returned in the results
// without touching files on disk. opts.Verify additionally fails files whose
// printing does not survive a reparse (see RunFmtCheck).
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := collectShaderFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("format: no shader files found")
	}

	results := make([]FormatResult, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := FormatResult{Path: path}
		formatted, changed, err := formatSingleFile(path, opts)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		if opts.Check || opts.Stdout {
			result.Changed = changed
			if opts.Stdout {
				result.Formatted = formatted
			}
			results = append(results, result)
			continue
		}
		if changed {
			mode := os.FileMode(0o644)
			if info, statErr := os.Stat(path); statErr == nil {
				mode = info.Mode()
			}
			if err := os.WriteFile(path, formatted, mode.Perm()); err != nil {
				result.Err = err
			} else {
				result.Changed = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func formatSingleFile(path string, opts FormatOptions) (formatted []byte, changed bool, err error) {
	kind, err := KindFromPath(path)
	if err != nil {
		return nil, false, err
	}
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 256
	}
	res, err := Parse(path, kind, maxDiag)
	if err != nil {
		return nil, false, err
	}
	if err := res.Err(); err != nil {
		return nil, false, fmt.Errorf("format: %w", err)
	}
	if opts.Verify {
		if ok, msg := RunFmtCheck(res.Prog); !ok {
			return nil, false, errors.New(msg)
		}
	}
	formatted = format.Program(res.Prog, opts.Options)
	return formatted, !bytes.Equal(res.File.Content, formatted), nil
}

func collectShaderFiles(ctx context.Context, paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, err := KindFromPath(path); err != nil {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !d.IsDir() {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}
