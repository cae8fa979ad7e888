package parser

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"reflect"
	"strings"

	"github.com/alexhholmes/structlayout/internal/diag"
)

// TagKey is the struct tag key carrying field placement.
const TagKey = "layout"

// TypeLayout represents a parsed struct with layout annotation
type TypeLayout struct {
	Name   string
	Anno   *TypeAnnotation
	Fields []Field
	Doc    []string // Doc comment lines other than the annotation itself
	Pos    token.Position
}

// Field represents a struct field with layout tag
type Field struct {
	Name   string
	GoType string
	Expr   ast.Expr // Type expression, resolved against go/types by the analyzer
	Layout *FieldLayout
	Doc    []string
	Pos    token.Position
}

// ParseFile parses a Go source file and extracts types with @layout annotations
func ParseFile(filename string) ([]*TypeLayout, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return ExtractTypes(fset, file)
}

// ExtractTypes returns every @layout annotated struct declared in file.
// The first malformed declaration aborts extraction.
func ExtractTypes(fset *token.FileSet, file *ast.File) ([]*TypeLayout, error) {
	var layouts []*TypeLayout

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec := spec.(*ast.TypeSpec)

			doc := typeSpec.Doc
			if doc == nil && len(genDecl.Specs) == 1 {
				doc = genDecl.Doc
			}

			anno, lines, err := extractAnnotation(doc)
			if err != nil {
				return nil, locate(err, typeSpec.Name.Name, "", fset.Position(typeSpec.Pos()))
			}
			if anno == nil {
				continue // No @layout, skip this type
			}

			layout, err := extractLayout(fset, typeSpec, anno)
			if err != nil {
				return nil, err
			}
			layout.Doc = lines
			layouts = append(layouts, layout)
		}
	}

	return layouts, nil
}

func extractLayout(fset *token.FileSet, typeSpec *ast.TypeSpec, anno *TypeAnnotation) (*TypeLayout, error) {
	name := typeSpec.Name.Name
	pos := fset.Position(typeSpec.Pos())

	if typeSpec.TypeParams != nil && len(typeSpec.TypeParams.List) > 0 {
		return nil, locate(diag.New(diag.UnsupportedAttribute, "", "",
			"generic parameters not supported"), name, "", pos)
	}

	structType, ok := typeSpec.Type.(*ast.StructType)
	if !ok || typeSpec.Assign.IsValid() {
		return nil, locate(diag.New(diag.UnsupportedAttribute, "", "",
			"@layout is only allowed on struct definitions"), name, "", pos)
	}

	fields, err := extractFields(fset, name, structType)
	if err != nil {
		return nil, err
	}

	return &TypeLayout{
		Name:   name,
		Anno:   anno,
		Fields: fields,
		Pos:    pos,
	}, nil
}

// extractAnnotation returns the annotation and the remaining doc lines.
func extractAnnotation(doc *ast.CommentGroup) (*TypeAnnotation, []string, error) {
	if doc == nil {
		return nil, nil, nil
	}

	// Extract comment text lines
	var lines []string
	for _, comment := range doc.List {
		cleaned := CleanComment(comment.Text)
		lines = append(lines, cleaned)
	}

	anno, found, err := FindAnnotation(lines)
	if err != nil || !found {
		return nil, nil, err
	}

	var rest []string
	for _, line := range lines {
		if strings.HasPrefix(line, "@layout") {
			continue
		}
		rest = append(rest, line)
	}

	return anno, rest, nil
}

func extractFields(fset *token.FileSet, typeName string, structType *ast.StructType) ([]Field, error) {
	var fields []Field

	for _, field := range structType.Fields.List {
		pos := fset.Position(field.Pos())

		if len(field.Names) == 0 {
			return nil, locate(diag.New(diag.UnsupportedAttribute, "", "",
				"embedded field %s not supported", types.ExprString(field.Type)), typeName, "", pos)
		}

		var layoutTag string
		if field.Tag != nil {
			tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
			layoutTag = tag.Get(TagKey)
		}
		if layoutTag == "" {
			return nil, locate(diag.New(diag.UnsupportedAttribute, "", "",
				"every field must have a `%s:\"@offset\"` tag", TagKey), typeName, field.Names[0].Name, pos)
		}

		layout, err := ParseTag(layoutTag)
		if err != nil {
			return nil, locate(err, typeName, field.Names[0].Name, pos)
		}

		var doc []string
		if field.Doc != nil {
			doc = strings.Split(strings.TrimSpace(field.Doc.Text()), "\n")
		}

		for _, ident := range field.Names {
			if ident.Name == "_" {
				return nil, locate(diag.New(diag.UnsupportedAttribute, "", "",
					"blank field has no accessors; leave the bytes undeclared"), typeName, "_", fset.Position(ident.Pos()))
			}
			fields = append(fields, Field{
				Name:   ident.Name,
				GoType: types.ExprString(field.Type),
				Expr:   field.Type,
				Layout: layout,
				Doc:    doc,
				Pos:    fset.Position(ident.Pos()),
			})
		}
	}

	return fields, nil
}

// locate attaches type, field and position to a parser diagnostic.
func locate(err error, typeName, field string, pos token.Position) error {
	var d *diag.Diagnostic
	if !errors.As(err, &d) {
		return fmt.Errorf("%s: %s: %w", pos, typeName, err)
	}
	c := d.At(pos)
	c.Type = typeName
	if field != "" {
		c.Field = field
	}
	return c
}
