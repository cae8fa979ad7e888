package analyzer

import (
	"errors"
	"fmt"
	"go/token"
	"math/bits"

	"github.com/alexhholmes/structlayout/internal/diag"
	"github.com/alexhholmes/structlayout/internal/parser"
)

// LayoutSpec is the declared contract of an explicit layout: the buffer
// size and alignment, an optional capability bound and the pinned fields.
type LayoutSpec struct {
	Name  string
	Size  int64
	Align int64
	Check Capability // nil: plain old data only

	// MaxAlign is the largest alignment the target can represent. Zero
	// means no limit.
	MaxAlign int64

	Fields []FieldSpec
	Doc    []string
	Pos    token.Position
}

// FieldSpec pins one field to a byte offset. Fields are kept in declaration
// order and may overlap.
type FieldSpec struct {
	Name    string
	Offset  int64
	Type    TypeInfo
	Methods parser.MethodSet
	Doc     []string
	Pos     token.Position
}

// End returns the first byte past the field.
func (f FieldSpec) End() int64 { return f.Offset + f.Type.Size }

// ValidatedLayout is a LayoutSpec that passed Validate. It can only be
// obtained from Validate, so holding one means every layout constraint holds.
type ValidatedLayout struct {
	name    string
	size    int64
	align   int64
	check   string
	fields  []FieldSpec
	doc     []string
	carrier string
}

func (v *ValidatedLayout) Name() string  { return v.name }
func (v *ValidatedLayout) Size() int64   { return v.size }
func (v *ValidatedLayout) Align() int64  { return v.align }
func (v *ValidatedLayout) Check() string { return v.check }

// Fields returns the fields in declaration order.
func (v *ValidatedLayout) Fields() []FieldSpec {
	out := make([]FieldSpec, len(v.fields))
	copy(out, v.fields)
	return out
}

// Doc returns the doc comment lines of the declaration.
func (v *ValidatedLayout) Doc() []string { return v.doc }

// Carrier returns the zero-length array element type that gives the buffer
// its alignment, or "" when the alignment is 1.
func (v *ValidatedLayout) Carrier() string { return v.carrier }

// Overlap describes two fields sharing bytes.
type Overlap struct {
	A, B       string
	Start, End int64
}

func (o Overlap) String() string {
	return fmt.Sprintf("%s and %s share [%d, %d)", o.A, o.B, o.Start, o.End)
}

// Overlaps lists every pair of fields whose byte ranges intersect. Overlap
// is legal; this is informational.
func (v *ValidatedLayout) Overlaps() []Overlap {
	var out []Overlap
	for i := 0; i < len(v.fields); i++ {
		for j := i + 1; j < len(v.fields); j++ {
			a, b := v.fields[i], v.fields[j]
			start, end := max(a.Offset, b.Offset), min(a.End(), b.End())
			if start < end {
				out = append(out, Overlap{A: a.Name, B: b.Name, Start: start, End: end})
			}
		}
	}
	return out
}

// carriers maps an alignment to the integer type whose alignment it is.
var carriers = map[int64]string{
	2: "uint16",
	4: "uint32",
	8: "uint64",
}

// Validate checks spec and returns the first violated constraint.
//
// Struct constraints are checked first: align is a power of two, size is
// positive and a multiple of align, and align is representable on the
// target. Then, for each field in declaration order: the field fits in the
// buffer; if the field can be borrowed (ref or mut), its offset and the
// struct alignment are multiples of the field alignment; and the field
// type has the required capability.
func Validate(spec *LayoutSpec) (*ValidatedLayout, error) {
	if spec == nil {
		return nil, errors.New("layout is nil")
	}

	if err := validateStruct(spec); err != nil {
		return nil, locate(err, spec.Name, "", spec.Pos)
	}

	for _, f := range spec.Fields {
		if err := validateField(spec, f); err != nil {
			return nil, locate(err, spec.Name, f.Name, f.Pos)
		}
	}

	v := &ValidatedLayout{
		name:    spec.Name,
		size:    spec.Size,
		align:   spec.Align,
		fields:  make([]FieldSpec, len(spec.Fields)),
		doc:     spec.Doc,
		carrier: carriers[spec.Align],
	}
	copy(v.fields, spec.Fields)
	if spec.Check != nil {
		v.check = spec.Check.Name()
	}
	return v, nil
}

func validateStruct(spec *LayoutSpec) error {
	if spec.Align <= 0 || bits.OnesCount64(uint64(spec.Align)) != 1 {
		return diag.New(diag.StructConstraint, "", "", "align %d is not a power of two", spec.Align)
	}
	if spec.Size <= 0 {
		return diag.New(diag.StructConstraint, "", "", "size must be positive, got %d", spec.Size)
	}
	if spec.Size%spec.Align != 0 {
		return diag.New(diag.StructConstraint, "", "",
			"size %d is not a multiple of align %d", spec.Size, spec.Align)
	}
	if spec.MaxAlign > 0 && spec.Align > spec.MaxAlign {
		return diag.New(diag.StructConstraint, "", "",
			"align %d exceeds the largest alignment of the target (%d)", spec.Align, spec.MaxAlign)
	}
	return nil
}

func validateField(spec *LayoutSpec, f FieldSpec) error {
	// Offset+Size may overflow, so compare against the room left instead.
	if f.Offset < 0 || f.Offset > spec.Size || f.Type.Size > spec.Size-f.Offset {
		return diag.New(diag.FieldBounds, "", "",
			"%s of %d bytes at offset %d exceeds size %d", f.Type.Name, f.Type.Size, f.Offset, spec.Size)
	}

	if f.Methods.Borrows() {
		fieldAlign := max(f.Type.Align, 1)
		if f.Offset%fieldAlign != 0 {
			return diag.New(diag.FieldAlignment, "", "",
				"offset %d is not a multiple of %s alignment %d; use get,set only for unaligned fields",
				f.Offset, f.Type.Name, fieldAlign)
		}
		if spec.Align%fieldAlign != 0 {
			return diag.New(diag.FieldAlignment, "", "",
				"struct align %d is not a multiple of %s alignment %d",
				spec.Align, f.Type.Name, fieldAlign)
		}
	}

	return CheckCapability(f.Type, spec.Check)
}

// FromParsed resolves a parsed declaration into a LayoutSpec.
func FromParsed(layout *parser.TypeLayout, registry *TypeRegistry) (*LayoutSpec, error) {
	if layout == nil {
		return nil, errors.New("layout is nil")
	}

	spec := &LayoutSpec{
		Name:     layout.Name,
		Size:     int64(layout.Anno.Size),
		Align:    int64(layout.Anno.Align),
		MaxAlign: registry.MaxAlign(),
		Doc:      layout.Doc,
		Pos:      layout.Pos,
	}

	// Struct constraints come first, ahead of any resolution failure.
	if err := validateStruct(spec); err != nil {
		return nil, locate(err, layout.Name, "", layout.Pos)
	}

	if layout.Anno.Check != "" {
		c, err := registry.Capability(layout.Anno.Check)
		if err != nil {
			return nil, locate(err, layout.Name, "", layout.Pos)
		}
		spec.Check = c
	}

	for _, field := range layout.Fields {
		info, err := registry.Resolve(field)
		if err != nil {
			return nil, locate(diag.New(diag.Capability, "", "", "cannot determine size: %v", err),
				layout.Name, field.Name, field.Pos)
		}

		spec.Fields = append(spec.Fields, FieldSpec{
			Name:    field.Name,
			Offset:  int64(field.Layout.Offset),
			Type:    info,
			Methods: field.Layout.Methods.Effective(),
			Doc:     field.Doc,
			Pos:     field.Pos,
		})
	}

	return spec, nil
}

// Analyze resolves and validates a parsed declaration.
func Analyze(layout *parser.TypeLayout, registry *TypeRegistry) (*ValidatedLayout, error) {
	spec, err := FromParsed(layout, registry)
	if err != nil {
		return nil, err
	}
	return Validate(spec)
}

func locate(err error, typeName, field string, pos token.Position) error {
	var d *diag.Diagnostic
	if !errors.As(err, &d) {
		return fmt.Errorf("%s: %w", typeName, err)
	}
	c := d.At(pos)
	if c.Type == "" {
		c.Type = typeName
	}
	if c.Field == "" {
		c.Field = field
	}
	if !pos.IsValid() {
		c.Pos = d.Pos
	}
	return c
}
