package codegen

import (
	"fmt"
	"strings"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/diag"
	"github.com/alexhholmes/structlayout/internal/parser"
)

// Derive is a capability the emitted type can be given on request.
type Derive string

const (
	DeriveCopy    Derive = "copy"    // Plain value copies allowed
	DeriveClone   Derive = "clone"   // Clone() *T
	DeriveDebug   Derive = "debug"   // String() string
	DeriveDefault Derive = "default" // NewT() *T
)

// Derives lists the supported derives in emission order.
var Derives = []Derive{DeriveCopy, DeriveClone, DeriveDebug, DeriveDefault}

// ParseDerive checks requested derive names against the supported set.
func ParseDerive(names []string) ([]Derive, error) {
	var out []Derive
	seen := make(map[Derive]bool)

	for _, name := range names {
		d := Derive(strings.ToLower(name))
		if !isDerive(d) {
			return nil, diag.New(diag.UnsupportedCapability, "", "",
				"derive(%s) is not supported, expecting one of %s", name, deriveList())
		}
		if seen[d] {
			return nil, diag.New(diag.UnsupportedAttribute, "", "", "duplicate derive(%s)", name)
		}
		seen[d] = true
		out = append(out, d)
	}

	return out, nil
}

func isDerive(d Derive) bool {
	for _, known := range Derives {
		if d == known {
			return true
		}
	}
	return false
}

func deriveList() string {
	names := make([]string, len(Derives))
	for i, d := range Derives {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

func hasDerive(derives []Derive, d Derive) bool {
	for _, x := range derives {
		if x == d {
			return true
		}
	}
	return false
}

// Emitter renders one validated layout as Go source.
type Emitter struct {
	layout  *analyzer.ValidatedLayout
	derives []Derive
}

// NewEmitter prepares v for emission with the given derives.
func NewEmitter(v *analyzer.ValidatedLayout, derives []Derive) (*Emitter, error) {
	for _, d := range derives {
		if !isDerive(d) {
			return nil, diag.New(diag.UnsupportedCapability, v.Name(), "",
				"derive(%s) is not supported, expecting one of %s", d, deriveList())
		}
	}
	return &Emitter{layout: v, derives: derives}, nil
}

// Emit renders the byte-buffer type of v, its accessors and requested derives
// (without package header/imports).
func Emit(v *analyzer.ValidatedLayout, derives []Derive) (string, error) {
	e, err := NewEmitter(v, derives)
	if err != nil {
		return "", err
	}
	return e.Emit(), nil
}

// Emit renders the layout.
func (e *Emitter) Emit() string {
	var out strings.Builder

	out.WriteString(e.generateConsts())
	out.WriteString("\n")
	out.WriteString(e.generateType())
	out.WriteString("\n")
	out.WriteString(e.generateAssertions())
	out.WriteString("\n")
	out.WriteString(e.generateUnsafeZeroed())

	for _, acc := range GenerateAccessors(e.layout) {
		out.WriteString("\n")
		out.WriteString(acc.Code)
	}

	out.WriteString("\n")
	out.WriteString(e.generateMarshal())
	out.WriteString("\n")
	out.WriteString(e.generateUnmarshal())
	out.WriteString("\n")
	out.WriteString(e.generateLoadFromHelper())

	if hasDerive(e.derives, DeriveClone) {
		out.WriteString("\n")
		out.WriteString(e.generateClone())
	}
	if hasDerive(e.derives, DeriveDebug) {
		out.WriteString("\n")
		out.WriteString(e.generateString())
	}
	if hasDerive(e.derives, DeriveDefault) {
		out.WriteString("\n")
		out.WriteString(e.generateNewFunction())
	}

	return out.String()
}

// Imports returns the packages the emitted code refers to, besides the
// packages of field types.
func (e *Emitter) Imports() []string {
	imports := []string{"fmt", "io", "unsafe", ExplicitPath}
	if hasDerive(e.derives, DeriveDebug) {
		imports = append(imports, "strings")
	}
	return imports
}

func (e *Emitter) name() string { return e.layout.Name() }

func (e *Emitter) generateConsts() string {
	var code strings.Builder
	name := e.name()

	code.WriteString("const (\n")
	code.WriteString(fmt.Sprintf("\t// Size%s is the size of %s in bytes.\n", name, name))
	code.WriteString(fmt.Sprintf("\tSize%s = %d\n", name, e.layout.Size()))
	code.WriteString(fmt.Sprintf("\t// Align%s is the alignment of %s in bytes.\n", name, name))
	code.WriteString(fmt.Sprintf("\tAlign%s = %d\n", name, e.layout.Align()))
	code.WriteString(")\n")

	return code.String()
}

func (e *Emitter) generateType() string {
	var code strings.Builder
	name := e.name()

	if doc := trimEmpty(e.layout.Doc()); len(doc) > 0 {
		writeDoc(&code, doc, false)
		code.WriteString("//\n")
	}
	code.WriteString(fmt.Sprintf("// %s is a %d-byte buffer aligned to %d bytes with fields at fixed offsets:\n",
		name, e.layout.Size(), e.layout.Align()))
	code.WriteString("//\n")
	for _, f := range e.layout.Fields() {
		code.WriteString(fmt.Sprintf("//\t[%d, %d) %s %s %s\n", f.Offset, f.End(), f.Name, f.Type.Name, f.Methods.Effective()))
	}
	if !hasDerive(e.derives, DeriveCopy) {
		code.WriteString("//\n")
		code.WriteString(fmt.Sprintf("// A %s must not be copied after first use.\n", name))
	}

	code.WriteString(fmt.Sprintf("type %s struct {\n", name))
	if !hasDerive(e.derives, DeriveCopy) {
		code.WriteString("\t_ explicit.NoCopy\n")
	}
	if carrier := e.layout.Carrier(); carrier != "" {
		code.WriteString(fmt.Sprintf("\t_ [0]%s\n", carrier))
	}
	code.WriteString(fmt.Sprintf("\tbuf [Size%s]byte\n", name))
	code.WriteString("}\n")

	return code.String()
}

func (e *Emitter) generateAssertions() string {
	var code strings.Builder
	name := e.name()

	code.WriteString(fmt.Sprintf("var _ explicit.Layout = (*%s)(nil)\n\n", name))
	code.WriteString(fmt.Sprintf("// An \"invalid array index\" compiler error signifies that the size or\n"+
		"// alignment of %s no longer matches its declaration.\n", name))
	code.WriteString("func _() {\n")
	code.WriteString("\tvar x [1]struct{}\n")
	code.WriteString(fmt.Sprintf("\t_ = x[unsafe.Sizeof(%s{})-Size%s]\n", name, name))
	code.WriteString(fmt.Sprintf("\t_ = x[unsafe.Alignof(%s{})-Align%s]\n", name, name))
	code.WriteString("}\n")

	return code.String()
}

func (e *Emitter) generateUnsafeZeroed() string {
	var code strings.Builder
	name := e.name()

	code.WriteString(fmt.Sprintf("// UnsafeZeroed%s returns a %s with every byte zero.\n", name, name))
	code.WriteString("//\n")
	code.WriteString("// The caller guarantees that all-zero bytes are a valid value for every field.\n")
	code.WriteString(fmt.Sprintf("func UnsafeZeroed%s() *%s {\n", name, name))
	code.WriteString(fmt.Sprintf("\treturn new(%s)\n", name))
	code.WriteString("}\n")

	return code.String()
}

// guard returns the borrow-check arguments for whole-buffer operations.
func (e *Emitter) guard() string {
	return fmt.Sprintf("unsafe.Pointer(p), %q, \"\"", e.name())
}

func (e *Emitter) generateMarshal() string {
	var code strings.Builder
	name := e.name()

	code.WriteString("// MarshalLayout returns a copy of the raw bytes of p.\n")
	code.WriteString(fmt.Sprintf("func (p *%s) MarshalLayout() ([]byte, error) {\n", name))
	code.WriteString(fmt.Sprintf("\texplicit.CheckRead(%s)\n", e.guard()))
	code.WriteString(fmt.Sprintf("\tbuf := make([]byte, Size%s)\n", name))
	code.WriteString("\tcopy(buf, p.buf[:])\n")
	code.WriteString("\treturn buf, nil\n")
	code.WriteString("}\n")

	return code.String()
}

func (e *Emitter) generateUnmarshal() string {
	var code strings.Builder
	name := e.name()

	code.WriteString("// UnmarshalLayout replaces the raw bytes of p with buf.\n")
	code.WriteString(fmt.Sprintf("func (p *%s) UnmarshalLayout(buf []byte) error {\n", name))
	code.WriteString(fmt.Sprintf("\tif len(buf) != Size%s {\n", name))
	code.WriteString(fmt.Sprintf("\t\treturn fmt.Errorf(\"%%w: %s expected %d bytes, got %%d\", explicit.ErrSize, len(buf))\n",
		name, e.layout.Size()))
	code.WriteString("\t}\n")
	code.WriteString(fmt.Sprintf("\texplicit.CheckWrite(%s)\n", e.guard()))
	code.WriteString("\tcopy(p.buf[:], buf)\n")
	code.WriteString("\treturn nil\n")
	code.WriteString("}\n")

	return code.String()
}

// generateLoadFromHelper generates the LoadFrom and WriteTo stream helpers
func (e *Emitter) generateLoadFromHelper() string {
	var code strings.Builder
	name := e.name()

	// LoadFrom reads into a scratch buffer so a short read leaves p untouched
	code.WriteString(fmt.Sprintf("// LoadFrom reads exactly Size%s bytes from r into p.\n", name))
	code.WriteString(fmt.Sprintf("func (p *%s) LoadFrom(r io.Reader) error {\n", name))
	code.WriteString(fmt.Sprintf("\tvar buf [Size%s]byte\n", name))
	code.WriteString("\tif _, err := io.ReadFull(r, buf[:]); err != nil {\n")
	code.WriteString("\t\treturn err\n")
	code.WriteString("\t}\n")
	code.WriteString("\treturn p.UnmarshalLayout(buf[:])\n")
	code.WriteString("}\n\n")

	code.WriteString("// WriteTo implements io.WriterTo.WriteTo.\n")
	code.WriteString(fmt.Sprintf("func (p *%s) WriteTo(w io.Writer) (int64, error) {\n", name))
	code.WriteString("\tbuf, err := p.MarshalLayout()\n")
	code.WriteString("\tif err != nil {\n")
	code.WriteString("\t\treturn 0, err\n")
	code.WriteString("\t}\n")
	code.WriteString("\tn, err := w.Write(buf)\n")
	code.WriteString("\treturn int64(n), err\n")
	code.WriteString("}\n")

	return code.String()
}

func (e *Emitter) generateClone() string {
	var code strings.Builder
	name := e.name()

	code.WriteString(fmt.Sprintf("// Clone returns a new %s holding the same bytes as p.\n", name))
	code.WriteString(fmt.Sprintf("func (p *%s) Clone() *%s {\n", name, name))
	code.WriteString(fmt.Sprintf("\texplicit.CheckRead(%s)\n", e.guard()))
	code.WriteString(fmt.Sprintf("\tc := new(%s)\n", name))
	code.WriteString("\tc.buf = p.buf\n")
	code.WriteString("\treturn c\n")
	code.WriteString("}\n")

	return code.String()
}

// generateString renders every field that can be read, preferring get over
// ref. Fields with neither are left out.
func (e *Emitter) generateString() string {
	var code strings.Builder
	name := e.name()

	code.WriteString("// String formats the readable fields of p.\n")
	code.WriteString(fmt.Sprintf("func (p *%s) String() string {\n", name))
	code.WriteString("\tvar b strings.Builder\n")
	code.WriteString(fmt.Sprintf("\tb.WriteString(%q)\n", name+"{"))

	sep := ""
	for _, f := range e.layout.Fields() {
		methods := f.Methods.Effective()
		format := fmt.Sprintf("%q", sep+f.Name+": %v")

		switch {
		case methods.Has(parser.Get):
			code.WriteString(fmt.Sprintf("\tfmt.Fprintf(&b, %s, p.%s())\n", format, AccessorName(parser.Get, f.Name)))
		case methods.Has(parser.Ref):
			code.WriteString("\t{\n")
			code.WriteString(fmt.Sprintf("\t\tv, release := p.%s()\n", AccessorName(parser.Ref, f.Name)))
			code.WriteString(fmt.Sprintf("\t\tfmt.Fprintf(&b, %s, *v)\n", format))
			code.WriteString("\t\trelease()\n")
			code.WriteString("\t}\n")
		default:
			continue
		}
		sep = ", "
	}

	code.WriteString("\tb.WriteString(\"}\")\n")
	code.WriteString("\treturn b.String()\n")
	code.WriteString("}\n")

	return code.String()
}

// generateNewFunction generates the zero-value constructor of the default
// derive.
func (e *Emitter) generateNewFunction() string {
	var code strings.Builder
	name := e.name()

	code.WriteString(fmt.Sprintf("// New%s returns a %s with every settable field set to its zero value.\n", name, name))
	code.WriteString(fmt.Sprintf("func New%s() *%s {\n", name, name))
	code.WriteString(fmt.Sprintf("\tp := new(%s)\n", name))
	for _, f := range e.layout.Fields() {
		if !f.Methods.Effective().Has(parser.Set) {
			continue
		}
		code.WriteString(fmt.Sprintf("\tp.%s(*new(%s))\n", AccessorName(parser.Set, f.Name), f.Type.Name))
	}
	code.WriteString("\treturn p\n")
	code.WriteString("}\n")

	return code.String()
}
