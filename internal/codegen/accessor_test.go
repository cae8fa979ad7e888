package codegen

import (
	"go/token"
	"strings"
	"testing"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/parser"
)

var (
	u8  = analyzer.TypeInfo{Name: "uint8", Size: 1, Align: 1}
	i8  = analyzer.TypeInfo{Name: "int8", Size: 1, Align: 1}
	u32 = analyzer.TypeInfo{Name: "uint32", Size: 4, Align: 4}
	u64 = analyzer.TypeInfo{Name: "uint64", Size: 8, Align: 8}
)

// regs builds the layout used across codegen tests:
//
//	// @layout size=32 align=4
//	type Regs struct {
//	    Status  uint32   `layout:"@0"`
//	    Packed  uint32   `layout:"@21,get,set"`
//	    Window  [8]byte  `layout:"@8,ref,mut"`
//	    Flags   uint8    `layout:"@16,get"`
//	    Delta   int8     `layout:"@17,set"`
//	    Hidden  uint32   `layout:"@24,mut"`
//	}
func regs(t *testing.T) *analyzer.ValidatedLayout {
	t.Helper()

	spec := &analyzer.LayoutSpec{
		Name:  "Regs",
		Size:  32,
		Align: 4,
		Doc:   []string{"Regs is a register block."},
		Fields: []analyzer.FieldSpec{
			{Name: "Status", Offset: 0, Type: u32, Methods: parser.AllMethods, Doc: []string{"Status bits."}},
			{Name: "Packed", Offset: 21, Type: u32, Methods: parser.NewMethodSet(parser.Get, parser.Set)},
			{Name: "Window", Offset: 8, Type: analyzer.TypeInfo{Name: "[8]byte", Size: 8, Align: 1},
				Methods: parser.NewMethodSet(parser.Ref, parser.Mut)},
			{Name: "Flags", Offset: 16, Type: u8, Methods: parser.NewMethodSet(parser.Get)},
			{Name: "Delta", Offset: 17, Type: i8, Methods: parser.NewMethodSet(parser.Set)},
			{Name: "Hidden", Offset: 24, Type: u32, Methods: parser.NewMethodSet(parser.Mut)},
		},
	}

	v, err := analyzer.Validate(spec)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	return v
}

func TestGenerateAccessors_Names(t *testing.T) {
	defs := GenerateAccessors(regs(t))

	want := []string{
		"GetStatus", "SetStatus", "RefStatus", "MutStatus",
		"GetPacked", "SetPacked",
		"RefWindow", "MutWindow",
		"GetFlags",
		"SetDelta",
		"MutHidden",
	}

	if len(defs) != len(want) {
		t.Fatalf("got %d accessors, want %d", len(defs), len(want))
	}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Errorf("accessor %d = %s, want %s", i, def.Name, want[i])
		}
		if !strings.HasPrefix(def.Name, methodPrefix[def.Method]) {
			t.Errorf("%s does not match method %s", def.Name, def.Method)
		}
	}
}

func TestAccessorName(t *testing.T) {
	tests := []struct {
		method parser.Method
		field  string
		want   string
	}{
		{parser.Get, "Status", "GetStatus"},
		{parser.Mut, "Window", "MutWindow"},
		{parser.Get, "count", "getCount"},
		{parser.Set, "count", "setCount"},
		{parser.Ref, "count", "refCount"},
		{parser.Mut, "count", "mutCount"},
		{parser.Get, "lsn", "getLsn"},
		{parser.Set, "_pad", "set_pad"},
	}

	for _, tt := range tests {
		if got := AccessorName(tt.method, tt.field); got != tt.want {
			t.Errorf("AccessorName(%s, %q) = %s, want %s", tt.method, tt.field, got, tt.want)
		}
	}
}

func TestGenerateAccessors_UnexportedField(t *testing.T) {
	spec := &analyzer.LayoutSpec{Name: "Counter", Size: 8, Align: 4, Fields: []analyzer.FieldSpec{
		{Name: "count", Offset: 0, Type: u32},
		{Name: "Total", Offset: 4, Type: u32, Methods: parser.NewMethodSet(parser.Get)},
	}}
	v, err := analyzer.Validate(spec)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	var names []string
	for _, def := range GenerateAccessors(v) {
		names = append(names, def.Name)
		if def.Field == "count" && token.IsExported(def.Name) {
			t.Errorf("accessor %s of unexported field count is exported", def.Name)
		}
	}

	want := []string{"getCount", "setCount", "refCount", "mutCount", "GetTotal"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("accessors = %v, want %v", names, want)
	}
}

func TestGenerateAccessors_EmptySetMeansAll(t *testing.T) {
	spec := &analyzer.LayoutSpec{Name: "W", Size: 8, Align: 8, Fields: []analyzer.FieldSpec{
		{Name: "Word", Offset: 0, Type: u64},
	}}
	v, err := analyzer.Validate(spec)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	defs := GenerateAccessors(v)
	if len(defs) != 4 {
		t.Fatalf("got %d accessors, want 4", len(defs))
	}
}

func TestGenerateAccessors_Code(t *testing.T) {
	code := make(map[string]string)
	for _, def := range GenerateAccessors(regs(t)) {
		code[def.Name] = def.Code
	}

	tests := []struct {
		accessor string
		contains []string
	}{
		{"GetStatus", []string{
			"// GetStatus returns Status, the uint32 at offset 0.",
			"// Status bits.",
			"func (p *Regs) GetStatus() uint32 {",
			`explicit.CheckRead(unsafe.Pointer(p), "Regs", "Status")`,
			"return explicit.Load[uint32](p.buf[0:4])",
		}},
		{"SetPacked", []string{
			"func (p *Regs) SetPacked(v uint32) {",
			`explicit.CheckWrite(unsafe.Pointer(p), "Regs", "Packed")`,
			"explicit.Store(p.buf[21:25], v)",
		}},
		{"RefWindow", []string{
			"func (p *Regs) RefWindow() (v *[8]byte, release func()) {",
			`release = explicit.Shared(unsafe.Pointer(p), "Regs", "Window")`,
			"return (*[8]byte)(unsafe.Pointer(&p.buf[8])), release",
		}},
		{"MutHidden", []string{
			`release = explicit.Exclusive(unsafe.Pointer(p), "Regs", "Hidden")`,
			"return (*uint32)(unsafe.Pointer(&p.buf[24])), release",
		}},
		{"GetFlags", []string{"return p.buf[16]"}},
		{"SetDelta", []string{"p.buf[17] = byte(v)"}},
	}

	for _, tt := range tests {
		t.Run(tt.accessor, func(t *testing.T) {
			got, ok := code[tt.accessor]
			if !ok {
				t.Fatalf("%s not generated", tt.accessor)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("%s missing %q\ngot:\n%s", tt.accessor, want, got)
				}
			}
		})
	}
}

func TestGenerateAccessors_ZeroSizedAtEnd(t *testing.T) {
	spec := &analyzer.LayoutSpec{Name: "Z", Size: 8, Align: 8, Fields: []analyzer.FieldSpec{
		{Name: "End", Offset: 8, Type: analyzer.TypeInfo{Name: "[0]uint64", Size: 0, Align: 8},
			Methods: parser.NewMethodSet(parser.Ref)},
	}}
	v, err := analyzer.Validate(spec)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	defs := GenerateAccessors(v)
	if len(defs) != 1 {
		t.Fatalf("got %d accessors, want 1", len(defs))
	}
	if !strings.Contains(defs[0].Code, "unsafe.Pointer(&p.buf)") {
		t.Errorf("zero-sized field at the end must not index the buffer:\n%s", defs[0].Code)
	}
}
