// Package generate drives a generator run: load packages, validate every
// declaration, emit and format the output, and write it next to the
// declaration file.
//
// Output is all-or-nothing per declaration file. If any layout in a file
// fails validation, nothing is written for that file and a previously
// generated file is left as it was.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/codegen"
	"github.com/alexhholmes/structlayout/internal/config"
	"github.com/alexhholmes/structlayout/internal/diag"
	"github.com/alexhholmes/structlayout/internal/loader"
	"github.com/alexhholmes/structlayout/internal/parser"
)

const filePerm = 0o644

// Options configures a run.
type Options struct {
	Config   *config.Config
	Dir      string   // Working directory for patterns
	Patterns []string // Package patterns, default "."
	// Check validates declarations without writing any file.
	Check bool
}

// FileResult is the outcome for one declaration file.
type FileResult struct {
	Source  string
	Output  string
	Layouts []*analyzer.ValidatedLayout
	Content []byte
	Written bool
	Err     error
}

// Result is the outcome of a run.
type Result struct {
	Files       []*FileResult
	Diagnostics diag.Diagnostics
}

// Failed returns the number of files that produced no output.
func (r *Result) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Run generates code for every declaration file in the matched packages.
// The returned error covers load failures only; per-file failures are in
// Result.Diagnostics.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	log := Logger()
	log.Debug("loading packages",
		zap.Strings("patterns", patterns),
		zap.Strings("tags", cfg.BuildTags()),
		zap.String("goarch", cfg.GOARCH))

	pkgs, err := loader.Load(ctx, loader.Config{
		Dir:    opts.Dir,
		Tags:   cfg.BuildTags(),
		GOARCH: cfg.GOARCH,
	}, patterns...)
	if err != nil {
		return nil, err
	}

	results := make([][]*FileResult, len(pkgs))

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}
	for i, pkg := range pkgs {
		i, pkg := i, pkg
		g.Go(func() error {
			for _, e := range pkg.TypeErrors {
				log.Debug("ignoring type error", zap.String("package", pkg.PkgPath), zap.Error(e))
			}

			for _, file := range pkg.Files {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = append(results[i], generateFile(pkg, file, cfg))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	for _, files := range results {
		for _, f := range files {
			res.Files = append(res.Files, f)
			if f.Err != nil {
				res.Diagnostics.Add(f.Err)
				continue
			}
			if opts.Check {
				continue
			}
			if err := writeFile(f); err != nil {
				f.Err = err
				res.Diagnostics.Add(err)
			}
		}
	}

	return res, nil
}

func generateFile(pkg *loader.Package, file *loader.File, cfg *config.Config) *FileResult {
	log := Logger().With(zap.String("file", file.Path))

	res := &FileResult{
		Source: file.Path,
		Output: loader.OutputPath(file.Path, cfg.Suffix),
	}
	if file.Err != nil {
		res.Err = file.Err
		return res
	}

	if err := file.Registry.SetArch(cfg.GOARCH); err != nil {
		res.Err = err
		return res
	}

	gen := codegen.NewGenerator(pkg.Name, filepath.Base(file.Path), cfg.BuildTag)

	for _, layout := range file.Layouts {
		v, err := analyzer.Analyze(layout, file.Registry)
		if err != nil {
			res.Err = err
			return res
		}

		derives, err := codegen.ParseDerive(layout.Anno.Derive)
		if err != nil {
			res.Err = locate(err, layout)
			return res
		}
		if err := gen.Add(v, derives); err != nil {
			res.Err = locate(err, layout)
			return res
		}

		for _, o := range v.Overlaps() {
			log.Debug("overlapping fields", zap.String("layout", v.Name()), zap.Stringer("overlap", o))
		}
		log.Debug("validated layout",
			zap.String("layout", v.Name()),
			zap.Int64("size", v.Size()),
			zap.Int64("align", v.Align()),
			zap.Int("fields", len(v.Fields())))
		res.Layouts = append(res.Layouts, v)
	}

	out, err := gen.Generate(res.Output)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", file.Path, err)
		return res
	}
	res.Content = out.Content
	return res
}

// locate attaches the declaration to errors raised after validation.
func locate(err error, layout *parser.TypeLayout) error {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		c := d.At(layout.Pos)
		c.Type = layout.Name
		return c
	}
	return fmt.Errorf("%s: %s: %w", layout.Pos, layout.Name, err)
}

func writeFile(f *FileResult) error {
	log := Logger().With(zap.String("output", f.Output))

	if existing, err := os.ReadFile(f.Output); err == nil && bytes.Equal(existing, f.Content) {
		log.Debug("unchanged")
		return nil
	}

	if err := os.WriteFile(f.Output, f.Content, filePerm); err != nil {
		return fmt.Errorf("writing file %s: %w", f.Output, err)
	}
	f.Written = true
	log.Info("generated", zap.Int("layouts", len(f.Layouts)))
	return nil
}
