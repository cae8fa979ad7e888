package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/diag"
)

const declSource = `//go:build layoutgen

package regs

// Regs is a register block.
//
// @layout size=8 align=4
type Regs struct {
	Status Status ` + "`layout:\"@0\"`" + `
	Window [3]byte ` + "`layout:\"@5,get,set\"`" + `
}
`

const typesSource = `package regs

type Status uint32
`

// useSource calls generated methods that do not exist under the layoutgen
// tag.
const useSource = `package regs

func ready(r *Regs) bool { return r.GetStatus() != 0 }
`

const badSource = `//go:build layoutgen

package regs

// @layout size=8 align=4 bogus=1
type Bad struct {
	X uint32 ` + "`layout:\"@0\"`" + `
}
`

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["go.mod"] = "module example.com/regs\n\ngo 1.21\n"
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"regs.go":  declSource,
		"types.go": typesSource,
		"use.go":   useSource,
	})

	pkgs, err := Load(context.Background(), Config{Dir: dir, Tags: []string{"layoutgen"}}, ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	pkg := pkgs[0]
	assert.Equal(t, "regs", pkg.Name)
	assert.Equal(t, "example.com/regs", pkg.PkgPath)
	assert.NotEmpty(t, pkg.TypeErrors, "calls to generated methods are expected type errors")

	require.Len(t, pkg.Files, 1)
	file := pkg.Files[0]
	assert.Equal(t, "regs.go", filepath.Base(file.Path))
	require.NoError(t, file.Err)
	require.Len(t, file.Layouts, 1)

	v, err := analyzer.Analyze(file.Layouts[0], file.Registry)
	require.NoError(t, err)
	fields := v.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "Status", fields[0].Type.Name)
	assert.Equal(t, int64(4), fields[0].Type.Size)
	assert.Equal(t, int64(3), fields[1].Type.Size)
}

func TestLoad_WithoutTagFindsNothing(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"regs.go":  declSource,
		"types.go": typesSource,
	})

	pkgs, err := Load(context.Background(), Config{Dir: dir}, ".")
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestLoad_GOARCH(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"regs.go":  declSource,
		"types.go": typesSource,
	})

	pkgs, err := Load(context.Background(), Config{Dir: dir, Tags: []string{"layoutgen"}, GOARCH: "386"}, ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, int64(4), pkgs[0].Files[0].Registry.MaxAlign())
}

func TestLoad_BadDeclaration(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"regs.go":  declSource,
		"types.go": typesSource,
		"bad.go":   badSource,
	})

	pkgs, err := Load(context.Background(), Config{Dir: dir, Tags: []string{"layoutgen"}}, ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	var bad *File
	for _, f := range pkgs[0].Files {
		if filepath.Base(f.Path) == "bad.go" {
			bad = f
		}
	}
	require.NotNil(t, bad)
	assert.ErrorIs(t, bad.Err, diag.ErrUnsupportedAttribute)
	assert.Empty(t, bad.Layouts)
}

func TestLoad_ParseError(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"broken.go": "package regs\n\nfunc {",
	})

	_, err := Load(context.Background(), Config{Dir: dir}, ".")
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("pkg", "regs_layout.go"), OutputPath(filepath.Join("pkg", "regs.go"), "_layout"))
	assert.Equal(t, "regs.gen.go", OutputPath("regs.go", ".gen"))
}
