package analyzer

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"

	"github.com/alexhholmes/structlayout/internal/diag"
	layoutparser "github.com/alexhholmes/structlayout/internal/parser"
)

// DefaultArch is the target architecture when none is configured.
const DefaultArch = "amd64"

// TypeInfo is the physical description of a field type.
type TypeInfo struct {
	Name     string // Type as written relative to the layout's package
	Size     int64  // Byte size
	Align    int64  // Byte alignment
	Pointers bool   // Holds references the garbage collector must see
	Locks    bool   // Contains a value with Lock/Unlock methods
	Dynamic  bool   // Size is not known at generation time (type parameters)

	// Type is the go/types type, nil for hand-built infos. Custom
	// capabilities need it to answer interface satisfaction.
	Type types.Type
}

// TypeRegistry resolves field type expressions to TypeInfo for one package
// and target architecture.
type TypeRegistry struct {
	fset  *token.FileSet
	pkg   *types.Package
	info  *types.Info
	sizes types.Sizes
}

// NewTypeRegistry returns a registry that only knows predeclared types and
// whatever is added with Register.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		fset:  token.NewFileSet(),
		pkg:   types.NewPackage("layout", "layout"),
		sizes: types.SizesFor("gc", DefaultArch),
	}
}

// NewPackageRegistry returns a registry over a type-checked package. info may
// be nil, in which case field types are resolved from their source text.
func NewPackageRegistry(fset *token.FileSet, pkg *types.Package, info *types.Info, sizes types.Sizes) *TypeRegistry {
	if sizes == nil {
		sizes = types.SizesFor("gc", DefaultArch)
	}
	return &TypeRegistry{fset: fset, pkg: pkg, info: info, sizes: sizes}
}

// NewSourceRegistry type-checks a single Go source file and returns a
// registry over it together with the parsed file.
func NewSourceRegistry(filename string, src any) (*TypeRegistry, *token.FileSet, *ast.File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse error: %w", err)
	}

	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	sizes := types.SizesFor("gc", DefaultArch)
	conf := types.Config{
		Importer: importer.ForCompiler(fset, "source", nil),
		Sizes:    sizes,
	}
	pkg, err := conf.Check(file.Name.Name, fset, []*ast.File{file}, info)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("type check %s: %w", filename, err)
	}

	return NewPackageRegistry(fset, pkg, info, sizes), fset, file, nil
}

// SetArch switches the target architecture used for sizes and alignments.
func (r *TypeRegistry) SetArch(goarch string) error {
	sizes := types.SizesFor("gc", goarch)
	if sizes == nil {
		return fmt.Errorf("unknown GOARCH %q", goarch)
	}
	r.sizes = sizes
	return nil
}

// Package returns the package types are resolved in.
func (r *TypeRegistry) Package() *types.Package {
	return r.pkg
}

// Register declares a named type with the given underlying type.
func (r *TypeRegistry) Register(name string, underlying types.Type) *types.Named {
	obj := types.NewTypeName(token.NoPos, r.pkg, name, nil)
	named := types.NewNamed(obj, underlying.Underlying(), nil)
	r.pkg.Scope().Insert(obj)
	return named
}

// RegisterAlias adds a type alias mapping (e.g., type PageID = uint64)
func (r *TypeRegistry) RegisterAlias(alias, underlying string) error {
	tv, err := types.Eval(r.fset, r.pkg, token.NoPos, underlying)
	if err != nil || !tv.IsType() {
		return fmt.Errorf("alias %s: unknown type %s", alias, underlying)
	}
	obj := types.NewTypeName(token.NoPos, r.pkg, alias, tv.Type)
	r.pkg.Scope().Insert(obj)
	return nil
}

// MaxAlign is the largest alignment a Go value can have on the target.
func (r *TypeRegistry) MaxAlign() int64 {
	return r.sizes.Alignof(types.Typ[types.Uint64])
}

// Resolve returns the TypeInfo of a parsed field's declared type.
func (r *TypeRegistry) Resolve(f layoutparser.Field) (TypeInfo, error) {
	if r.info != nil && f.Expr != nil {
		if t := r.info.TypeOf(f.Expr); t != nil {
			if t == types.Typ[types.Invalid] {
				return TypeInfo{}, fmt.Errorf("type %s does not type-check", f.GoType)
			}
			return r.InfoOf(t), nil
		}
	}
	return r.SizeOf(f.GoType)
}

// SizeOf resolves a type expression written in Go syntax.
func (r *TypeRegistry) SizeOf(goType string) (TypeInfo, error) {
	t, err := r.lookup(goType)
	if err != nil {
		return TypeInfo{}, err
	}
	return r.InfoOf(t), nil
}

func (r *TypeRegistry) lookup(expr string) (types.Type, error) {
	tv, err := types.Eval(r.fset, r.pkg, token.NoPos, expr)
	if err != nil {
		return nil, fmt.Errorf("unknown type %s: %w", expr, err)
	}
	if !tv.IsType() {
		return nil, fmt.Errorf("%s is not a type", expr)
	}
	return tv.Type, nil
}

// InfoOf describes t for the registry's target architecture.
func (r *TypeRegistry) InfoOf(t types.Type) TypeInfo {
	info := TypeInfo{
		Name:     types.TypeString(t, types.RelativeTo(r.pkg)),
		Pointers: hasPointers(t),
		Locks:    hasLocks(t),
		Dynamic:  hasTypeParams(t),
		Type:     t,
	}
	if !info.Dynamic {
		info.Size = r.sizes.Sizeof(t)
		info.Align = r.sizes.Alignof(t)
	}
	return info
}

// Capability resolves a check= name to an interface capability.
func (r *TypeRegistry) Capability(name string) (Capability, error) {
	t, err := r.lookup(name)
	if err != nil {
		return nil, diag.New(diag.UnsupportedAttribute, "", "", "check(%s): %v", name, err)
	}
	iface, ok := t.Underlying().(*types.Interface)
	if !ok {
		return nil, diag.New(diag.UnsupportedAttribute, "", "",
			"check(%s): %s is not an interface", name, t)
	}
	return NewInterfaceCapability(name, iface), nil
}

func hasPointers(t types.Type) bool {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch u.Kind() {
		case types.String, types.UnsafePointer, types.UntypedNil, types.UntypedString:
			return true
		}
		return false
	case *types.Array:
		return u.Len() > 0 && hasPointers(u.Elem())
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if hasPointers(u.Field(i).Type()) {
				return true
			}
		}
		return false
	case *types.TypeParam:
		return false
	default:
		// Pointers, slices, maps, channels, funcs and interfaces.
		return true
	}
}

// hasLocks mirrors the copylocks vet check: a value is a lock if its
// pointer method set has both Lock and Unlock.
func hasLocks(t types.Type) bool {
	if _, ok := t.Underlying().(*types.Interface); ok {
		return false
	}
	if _, ok := t.(*types.TypeParam); ok {
		return false
	}

	mset := types.NewMethodSet(types.NewPointer(t))
	if mset.Lookup(nil, "Lock") != nil && mset.Lookup(nil, "Unlock") != nil {
		return true
	}
	// Exported method lookups need the package for unexported names only;
	// Lock and Unlock are exported so the nil package is fine.

	switch u := t.Underlying().(type) {
	case *types.Array:
		return hasLocks(u.Elem())
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if hasLocks(u.Field(i).Type()) {
				return true
			}
		}
	}
	return false
}

func hasTypeParams(t types.Type) bool {
	switch u := t.(type) {
	case *types.TypeParam:
		return true
	case *types.Named:
		if args := u.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				if hasTypeParams(args.At(i)) {
					return true
				}
			}
		}
		return false
	case *types.Array:
		return hasTypeParams(u.Elem())
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if hasTypeParams(u.Field(i).Type()) {
				return true
			}
		}
	}
	return false
}
