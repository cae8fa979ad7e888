package codegen

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/parser"
)

// AccessorDef is one generated accessor method.
type AccessorDef struct {
	Field  string
	Method parser.Method
	Name   string // Method name, e.g. GetControl
	Code   string // Doc comment and function declaration
}

var methodPrefix = [...]string{
	parser.Get: "Get",
	parser.Set: "Set",
	parser.Ref: "Ref",
	parser.Mut: "Mut",
}

// AccessorName returns the method name generated for m on field. Accessors
// of an unexported field are unexported: count gives getCount.
func AccessorName(m parser.Method, field string) string {
	if token.IsExported(field) {
		return methodPrefix[m] + field
	}
	r, n := utf8.DecodeRuneInString(field)
	return strings.ToLower(methodPrefix[m]) + string(unicode.ToUpper(r)) + field[n:]
}

// GenerateAccessors returns the accessors of every field of v, in field
// declaration order and get, set, ref, mut order within a field.
func GenerateAccessors(v *analyzer.ValidatedLayout) []AccessorDef {
	var defs []AccessorDef

	for _, f := range v.Fields() {
		for _, m := range f.Methods.Effective().Methods() {
			defs = append(defs, AccessorDef{
				Field:  f.Name,
				Method: m,
				Name:   AccessorName(m, f.Name),
				Code:   generateAccessor(v, f, m),
			})
		}
	}

	return defs
}

func generateAccessor(v *analyzer.ValidatedLayout, f analyzer.FieldSpec, m parser.Method) string {
	var code strings.Builder

	typeName := v.Name()
	name := AccessorName(m, f.Name)
	goType := f.Type.Name
	start, end := f.Offset, f.End()

	switch m {
	case parser.Get:
		code.WriteString(fmt.Sprintf("// %s returns %s, the %s at offset %d.\n", name, f.Name, goType, start))
	case parser.Set:
		code.WriteString(fmt.Sprintf("// %s stores %s, the %s at offset %d.\n", name, f.Name, goType, start))
	case parser.Ref:
		code.WriteString(fmt.Sprintf("// %s borrows %s, the %s at offset %d, for reading.\n", name, f.Name, goType, start))
		code.WriteString("// The pointer is valid until release is called.\n")
	case parser.Mut:
		code.WriteString(fmt.Sprintf("// %s borrows %s, the %s at offset %d, exclusively.\n", name, f.Name, goType, start))
		code.WriteString("// The pointer is valid until release is called.\n")
	}
	writeDoc(&code, f.Doc, true)

	guard := fmt.Sprintf("unsafe.Pointer(p), %q, %q", typeName, f.Name)

	switch m {
	case parser.Get:
		code.WriteString(fmt.Sprintf("func (p *%s) %s() %s {\n", typeName, name, goType))
		code.WriteString(fmt.Sprintf("\texplicit.CheckRead(%s)\n", guard))
		switch goType {
		case "uint8", "byte":
			code.WriteString(fmt.Sprintf("\treturn p.buf[%d]\n", start))
		case "int8":
			code.WriteString(fmt.Sprintf("\treturn int8(p.buf[%d])\n", start))
		default:
			code.WriteString(fmt.Sprintf("\treturn explicit.Load[%s](p.buf[%d:%d])\n", goType, start, end))
		}

	case parser.Set:
		code.WriteString(fmt.Sprintf("func (p *%s) %s(v %s) {\n", typeName, name, goType))
		code.WriteString(fmt.Sprintf("\texplicit.CheckWrite(%s)\n", guard))
		switch goType {
		case "uint8", "byte":
			code.WriteString(fmt.Sprintf("\tp.buf[%d] = v\n", start))
		case "int8":
			code.WriteString(fmt.Sprintf("\tp.buf[%d] = byte(v)\n", start))
		default:
			code.WriteString(fmt.Sprintf("\texplicit.Store(p.buf[%d:%d], v)\n", start, end))
		}

	case parser.Ref, parser.Mut:
		borrow := "Shared"
		if m == parser.Mut {
			borrow = "Exclusive"
		}
		code.WriteString(fmt.Sprintf("func (p *%s) %s() (v *%s, release func()) {\n", typeName, name, goType))
		code.WriteString(fmt.Sprintf("\trelease = explicit.%s(%s)\n", borrow, guard))
		code.WriteString(fmt.Sprintf("\treturn (*%s)(%s), release\n", goType, fieldPointer(v, f)))
	}

	code.WriteString("}\n")
	return code.String()
}

// fieldPointer returns the expression for the address of f in the buffer.
// A zero-sized field may sit at the very end, where indexing would be out of
// range; any aligned address is valid for it.
func fieldPointer(v *analyzer.ValidatedLayout, f analyzer.FieldSpec) string {
	if f.Offset >= v.Size() {
		return "unsafe.Pointer(&p.buf)"
	}
	return fmt.Sprintf("unsafe.Pointer(&p.buf[%d])", f.Offset)
}

// writeDoc appends doc lines as a comment, optionally after an empty comment
// line separating them from generated text above.
func writeDoc(code *strings.Builder, doc []string, separate bool) {
	doc = trimEmpty(doc)
	if len(doc) == 0 {
		return
	}
	if separate {
		code.WriteString("//\n")
	}
	for _, line := range doc {
		if line == "" {
			code.WriteString("//\n")
			continue
		}
		code.WriteString("// " + line + "\n")
	}
}

func trimEmpty(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
