// Package loader finds @layout declarations in Go packages and type-checks
// them for the target architecture.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/parser"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes |
	packages.NeedImports

// Config controls how packages are loaded.
type Config struct {
	Dir    string   // Working directory for pattern resolution
	Tags   []string // Build tags; the declaration tag must be among them
	GOARCH string   // Target architecture, empty for the host's
}

// File is a source file holding at least one @layout declaration.
type File struct {
	Path     string
	Layouts  []*parser.TypeLayout
	Registry *analyzer.TypeRegistry

	// Err is set when the file's declarations could not be extracted.
	// Layouts is empty in that case.
	Err error
}

// Package is a loaded package with its declaration files.
type Package struct {
	PkgPath string
	Name    string
	Files   []*File

	// TypeErrors are tolerated: code elsewhere in the package usually calls
	// generated methods that do not exist while declarations are loaded.
	TypeErrors []error
}

// Load loads the packages matching patterns and extracts their declarations.
func Load(ctx context.Context, cfg Config, patterns ...string) ([]*Package, error) {
	pcfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     cfg.Dir,
	}
	if len(cfg.Tags) > 0 {
		pcfg.BuildFlags = []string{"-tags=" + strings.Join(cfg.Tags, ",")}
	}
	if cfg.GOARCH != "" {
		pcfg.Env = append(os.Environ(), "GOARCH="+cfg.GOARCH)
	}

	pkgs, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// List and parse errors are fatal, type errors are not
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if e.Kind != packages.TypeError {
				errs = append(errs, e)
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	var out []*Package
	for _, pkg := range pkgs {
		p := processPackage(pkg)
		if len(p.Files) > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func processPackage(pkg *packages.Package) *Package {
	p := &Package{
		PkgPath: pkg.PkgPath,
		Name:    pkg.Name,
	}
	for _, e := range pkg.Errors {
		p.TypeErrors = append(p.TypeErrors, e)
	}

	registry := analyzer.NewPackageRegistry(pkg.Fset, pkg.Types, pkg.TypesInfo, pkg.TypesSizes)

	for _, syntax := range pkg.Syntax {
		path := pkg.Fset.File(syntax.Pos()).Name()

		layouts, err := parser.ExtractTypes(pkg.Fset, syntax)
		if err == nil && len(layouts) == 0 {
			continue
		}

		p.Files = append(p.Files, &File{
			Path:     path,
			Layouts:  layouts,
			Registry: registry,
			Err:      err,
		})
	}

	return p
}

// OutputPath returns the path of the file generated for a declaration file:
// regs.go becomes regs<suffix>.go next to it.
func OutputPath(path, suffix string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, strings.TrimSuffix(base, ".go")+suffix+".go")
}
