package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/generate"
)

// layoutView is the dumpable form of a validated layout. TypeInfo carries a
// types.Type, whose object graph is too large to print.
type layoutView struct {
	Name     string
	Size     int64
	Align    int64
	Check    string
	Carrier  string
	Fields   []fieldView
	Overlaps []string
}

type fieldView struct {
	Name     string
	Type     string
	Offset   int64
	Size     int64
	Align    int64
	Methods  string
	Pointers bool
	Locks    bool
}

func viewOf(v *analyzer.ValidatedLayout) layoutView {
	lv := layoutView{
		Name:    v.Name(),
		Size:    v.Size(),
		Align:   v.Align(),
		Check:   v.Check(),
		Carrier: v.Carrier(),
	}
	for _, f := range v.Fields() {
		lv.Fields = append(lv.Fields, fieldView{
			Name:     f.Name,
			Type:     f.Type.Name,
			Offset:   f.Offset,
			Size:     f.Type.Size,
			Align:    f.Type.Align,
			Methods:  f.Methods.Effective().String(),
			Pointers: f.Type.Pointers,
			Locks:    f.Type.Locks,
		})
	}
	for _, o := range v.Overlaps() {
		lv.Overlaps = append(lv.Overlaps, o.String())
	}
	return lv
}

func runDump(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	var opts options
	opts.register(fs)
	useSpew := fs.Bool("spew", false, "Dump the full layout structures")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := opts.load()
	if err != nil {
		return err
	}

	res, err := generate.Run(ctx, generate.Options{
		Config:   cfg,
		Patterns: fs.Args(),
		Check:    true,
	})
	if err != nil {
		return err
	}

	for _, f := range res.Files {
		if len(f.Layouts) == 0 {
			continue
		}
		fmt.Printf("%s\n", relPath(f.Source))
		for _, v := range f.Layouts {
			if *useSpew {
				spew.Fdump(os.Stdout, viewOf(v))
				continue
			}
			printLayout(os.Stdout, viewOf(v))
		}
	}

	r := newRenderer(os.Stderr)
	for _, d := range res.Diagnostics.Errors {
		r.diagnostic(d)
	}
	if res.Diagnostics.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func printLayout(w io.Writer, v layoutView) {
	fmt.Fprintf(w, "\n%s (size=%d, align=%d", v.Name, v.Size, v.Align)
	if v.Check != "" {
		fmt.Fprintf(w, ", check=%s", v.Check)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w, "Fields:")
	for _, f := range v.Fields {
		fmt.Fprintf(w, "  %-15s %-20s @%-5d %-3d %s\n", f.Name, f.Type, f.Offset, f.Size, f.Methods)
	}
	for _, o := range v.Overlaps {
		fmt.Fprintf(w, "  overlap: %s\n", o)
	}
}

func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil {
		return rel
	}
	return path
}
