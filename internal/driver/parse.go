package driver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"

	"glfuzz/internal/ast"
	"glfuzz/internal/diag"
	"glfuzz/internal/parser"
	"glfuzz/internal/source"
)

// ErrUnknownExtension is returned by KindFromPath for files that are not
// .frag, .vert or .comp.
var ErrUnknownExtension = errors.New("cannot tell shader kind from file extension")

var kindByExt = map[string]ast.ShaderKind{
	".frag": ast.ShaderFragment,
	".vert": ast.ShaderVertex,
	".comp": ast.ShaderCompute,
}

// KindFromPath picks the shader kind from the file extension.
func KindFromPath(path string) (ast.ShaderKind, error) {
	if k, ok := kindByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return k, nil
	}
	return ast.ShaderFragment, fmt.Errorf("%s: %w", path, ErrUnknownExtension)
}

// Ext returns the file extension used for shaders of kind.
func Ext(kind ast.ShaderKind) string {
	for ext, k := range kindByExt {
		if k == kind {
			return ext
		}
	}
	return ".frag"
}

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Prog    *ast.Program
	Bag     *diag.Bag
}

// Err folds the error diagnostics of the parse into one error.
func (r *ParseResult) Err() error {
	if r == nil || !r.Bag.HasErrors() {
		return nil
	}
	r.Bag.Sort()
	msgs := make([]string, 0, r.Bag.Len())
	for _, d := range r.Bag.Items() {
		if d.Severity >= diag.SevError {
			msgs = append(msgs, diag.Format(r.FileSet, d))
		}
	}
	return errors.New(strings.Join(msgs, "\n"))
}

// Parse loads and parses one shader of the given kind.
func Parse(filePath string, kind ast.ShaderKind, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(maxDiagnostics)
	prog, err := parseLoaded(fs, fileID, kind, bag, maxDiagnostics)
	if err != nil {
		return nil, err
	}
	return &ParseResult{
		FileSet: fs,
		File:    fs.Get(fileID),
		Prog:    prog,
		Bag:     bag,
	}, nil
}

func parseLoaded(fs *source.FileSet, id source.FileID, kind ast.ShaderKind, bag *diag.Bag, maxDiagnostics int) (*ast.Program, error) {
	maxErrors, err := safecast.Conv[uint](maxDiagnostics)
	if err != nil {
		return nil, err
	}
	opts := parser.Options{
		Kind:      kind,
		Reporter:  diag.NewDedupReporter(&diag.BagReporter{Bag: bag}),
		MaxErrors: maxErrors,
	}
	return parser.ParseFile(fs, id, opts), nil
}
