package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"glfuzz/internal/ast"
	"glfuzz/internal/diag"
	"glfuzz/internal/donate"
	"glfuzz/internal/source"
)

// DonorFile is one parsed shader of a donor directory.
type DonorFile struct {
	Path string // путь относительно каталога доноров
	Hash Digest
	Prog *ast.Program
	Bag  *diag.Bag
}

// Broken reports whether the donor failed to load or parse.
func (d *DonorFile) Broken() bool { return d.Prog == nil || d.Bag.HasErrors() }

// listShaders returns the sorted shaders of kind under dir.
func listShaders(dir string, kind ast.ShaderKind) ([]string, error) {
	var files []string
	ext := Ext(kind)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// LoadDonors parses every shader of kind under dir in parallel. Files that
// fail to load or parse are returned with their diagnostics; Sources
// leaves them out.
func LoadDonors(ctx context.Context, dir string, kind ast.ShaderKind, maxDiagnostics, jobs int) ([]DonorFile, error) {
	files, err := listShaders(dir, kind)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	// FileSet не потокобезопасен: загружаем заранее
	fileSet := source.NewFileSet()
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = id
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]DonorFile, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				rel = path
			}
			bag := diag.NewBag(maxDiagnostics)
			if loadErr, bad := loadErrors[path]; bad {
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  "failed to load file: " + loadErr.Error(),
				})
				results[i] = DonorFile{Path: filepath.ToSlash(rel), Bag: bag}
				return nil
			}
			id := fileIDs[path]
			prog, err := parseLoaded(fileSet, id, kind, bag, maxDiagnostics)
			if err != nil {
				return err
			}
			// индекс i уникален, мьютекс не нужен
			results[i] = DonorFile{
				Path: filepath.ToSlash(rel),
				Hash: fileSet.Get(id).Hash,
				Prog: prog,
				Bag:  bag,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Sources returns the donation sources of the donors that parsed cleanly.
func Sources(files []DonorFile) []donate.Source {
	out := make([]donate.Source, 0, len(files))
	for i := range files {
		if files[i].Broken() {
			continue
		}
		out = append(out, donate.Source{Name: files[i].Path, Prog: files[i].Prog})
	}
	return out
}

// DonorsDigest combines the hashes of the usable donors, in order.
func DonorsDigest(files []DonorFile) Digest {
	var hashes []Digest
	for i := range files {
		if !files[i].Broken() {
			hashes = append(hashes, files[i].Hash)
		}
	}
	return combineDigest(Digest{}, hashes...)
}
