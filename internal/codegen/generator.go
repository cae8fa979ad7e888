package codegen

import (
	"bytes"
	"fmt"
	"sort"

	"golang.org/x/tools/imports"

	"github.com/alexhholmes/structlayout/internal/analyzer"
)

// ExplicitPath is the import path of the runtime support package.
const ExplicitPath = "github.com/alexhholmes/structlayout/explicit"

// DefaultBuildTag excludes declaration files from normal builds and
// generated files from generator runs.
const DefaultBuildTag = "layoutgen"

// GeneratedFile is one output file.
type GeneratedFile struct {
	Filename string
	Content  []byte
}

// Generator assembles the layouts declared in one source file into a
// single Go file.
type Generator struct {
	pkg      string
	source   string // Base name of the declaration file
	buildTag string
	emitters []*Emitter
}

// NewGenerator creates a generator for a file of package pkg. source is the
// declaration file name recorded in the header.
func NewGenerator(pkg, source, buildTag string) *Generator {
	if buildTag == "" {
		buildTag = DefaultBuildTag
	}
	return &Generator{
		pkg:      pkg,
		source:   source,
		buildTag: buildTag,
	}
}

// Add queues a validated layout.
func (g *Generator) Add(v *analyzer.ValidatedLayout, derives []Derive) error {
	e, err := NewEmitter(v, derives)
	if err != nil {
		return err
	}
	g.emitters = append(g.emitters, e)
	return nil
}

// Len returns the number of queued layouts.
func (g *Generator) Len() int { return len(g.emitters) }

// Generate returns the formatted file. If formatting fails the unformatted
// source is returned together with the error.
func (g *Generator) Generate(filename string) (*GeneratedFile, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("// Code generated by structlayout from %s. DO NOT EDIT.\n\n", g.source))
	buf.WriteString(fmt.Sprintf("//go:build !%s\n\n", g.buildTag))
	buf.WriteString(fmt.Sprintf("package %s\n\n", g.pkg))

	buf.WriteString("import (\n")
	for _, path := range g.imports() {
		buf.WriteString(fmt.Sprintf("\t%q\n", path))
	}
	buf.WriteString(")\n")

	for _, e := range g.emitters {
		buf.WriteString("\n")
		buf.WriteString(e.Emit())
	}

	// imports.Process drops unused imports and adds the packages of field
	// types declared elsewhere.
	formatted, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return &GeneratedFile{Filename: filename, Content: buf.Bytes()},
			fmt.Errorf("formatting code: %w", err)
	}

	return &GeneratedFile{Filename: filename, Content: formatted}, nil
}

func (g *Generator) imports() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, e := range g.emitters {
		for _, path := range e.Imports() {
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}
	sort.Strings(paths)
	return paths
}
