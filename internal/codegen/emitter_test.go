package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/diag"
	"github.com/alexhholmes/structlayout/internal/parser"
)

func TestParseDerive(t *testing.T) {
	derives, err := ParseDerive([]string{"copy", "Clone", "debug", "default"})
	require.NoError(t, err)
	assert.Equal(t, []Derive{DeriveCopy, DeriveClone, DeriveDebug, DeriveDefault}, derives)

	derives, err = ParseDerive(nil)
	require.NoError(t, err)
	assert.Empty(t, derives)

	_, err = ParseDerive([]string{"clone", "hash"})
	require.Error(t, err)
	assert.ErrorIs(t, err, diag.ErrUnsupportedCapability)
	assert.Contains(t, err.Error(), "derive(hash)")

	_, err = ParseDerive([]string{"debug", "debug"})
	assert.ErrorIs(t, err, diag.ErrUnsupportedAttribute)
}

func TestEmit_UnknownDerive(t *testing.T) {
	_, err := Emit(regs(t), []Derive{"serialize"})
	assert.ErrorIs(t, err, diag.ErrUnsupportedCapability)
}

func TestEmit_Type(t *testing.T) {
	code, err := Emit(regs(t), nil)
	require.NoError(t, err)

	assert.Contains(t, code, "SizeRegs = 32")
	assert.Contains(t, code, "AlignRegs = 4")
	assert.Contains(t, code, "// Regs is a register block.")
	assert.Contains(t, code, "//\t[21, 25) Packed uint32 {get,set}")
	assert.Contains(t, code, "type Regs struct {\n\t_ explicit.NoCopy\n\t_ [0]uint32\n\tbuf [SizeRegs]byte\n}")
	assert.Contains(t, code, "var _ explicit.Layout = (*Regs)(nil)")
	assert.Contains(t, code, "_ = x[unsafe.Sizeof(Regs{})-SizeRegs]")
	assert.Contains(t, code, "_ = x[unsafe.Alignof(Regs{})-AlignRegs]")
	assert.Contains(t, code, "func UnsafeZeroedRegs() *Regs {")
	assert.Contains(t, code, "func (p *Regs) MarshalLayout() ([]byte, error) {")
	assert.Contains(t, code, "func (p *Regs) UnmarshalLayout(buf []byte) error {")
	assert.Contains(t, code, "func (p *Regs) LoadFrom(r io.Reader) error {")
	assert.Contains(t, code, "func (p *Regs) WriteTo(w io.Writer) (int64, error) {")

	// No derives requested.
	assert.NotContains(t, code, "Clone()")
	assert.NotContains(t, code, "String()")
	assert.NotContains(t, code, "func NewRegs()")
}

func TestEmit_Copy(t *testing.T) {
	code, err := Emit(regs(t), []Derive{DeriveCopy})
	require.NoError(t, err)
	assert.NotContains(t, code, "explicit.NoCopy")
	assert.NotContains(t, code, "must not be copied")
}

func TestEmit_AlignOne(t *testing.T) {
	spec := &analyzer.LayoutSpec{Name: "Packet", Size: 3, Align: 1, Fields: []analyzer.FieldSpec{
		{Name: "Kind", Offset: 0, Type: u8},
	}}
	v, err := analyzer.Validate(spec)
	require.NoError(t, err)

	code, err := Emit(v, nil)
	require.NoError(t, err)
	assert.Contains(t, code, "type Packet struct {\n\t_ explicit.NoCopy\n\tbuf [SizePacket]byte\n}")
}

func TestEmit_Derives(t *testing.T) {
	code, err := Emit(regs(t), []Derive{DeriveClone, DeriveDebug, DeriveDefault})
	require.NoError(t, err)

	t.Run("clone", func(t *testing.T) {
		assert.Contains(t, code, "func (p *Regs) Clone() *Regs {")
		assert.Contains(t, code, "c.buf = p.buf")
	})

	t.Run("debug", func(t *testing.T) {
		assert.Contains(t, code, "func (p *Regs) String() string {")
		assert.Contains(t, code, `fmt.Fprintf(&b, "Status: %v", p.GetStatus())`)
		assert.Contains(t, code, `fmt.Fprintf(&b, ", Packed: %v", p.GetPacked())`)
		// Window has only ref and mut: read through a shared borrow.
		assert.Contains(t, code, "v, release := p.RefWindow()")
		assert.Contains(t, code, `fmt.Fprintf(&b, ", Window: %v", *v)`)
		assert.Contains(t, code, `fmt.Fprintf(&b, ", Flags: %v", p.GetFlags())`)
		// Delta (set only) and Hidden (mut only) cannot be read.
		assert.NotContains(t, code, "Delta: %v")
		assert.NotContains(t, code, "Hidden: %v")
	})

	t.Run("default", func(t *testing.T) {
		assert.Contains(t, code, "func NewRegs() *Regs {")
		assert.Contains(t, code, "p.SetStatus(*new(uint32))")
		assert.Contains(t, code, "p.SetPacked(*new(uint32))")
		assert.Contains(t, code, "p.SetDelta(*new(int8))")
		assert.NotContains(t, code, "p.SetWindow(")
		assert.NotContains(t, code, "p.SetFlags(")
	})
}

func TestEmit_UnexportedFieldDerives(t *testing.T) {
	v, err := analyzer.Validate(&analyzer.LayoutSpec{Name: "Counter", Size: 8, Align: 4, Fields: []analyzer.FieldSpec{
		{Name: "count", Offset: 0, Type: u32},
		{Name: "seen", Offset: 4, Type: u32, Methods: parser.NewMethodSet(parser.Ref)},
	}})
	require.NoError(t, err)

	code, err := Emit(v, []Derive{DeriveDebug, DeriveDefault})
	require.NoError(t, err)

	assert.Contains(t, code, "func (p *Counter) getCount() uint32 {")
	assert.Contains(t, code, `fmt.Fprintf(&b, "count: %v", p.getCount())`)
	assert.Contains(t, code, "v, release := p.refSeen()")
	assert.Contains(t, code, "p.setCount(*new(uint32))")
	assert.NotContains(t, code, "Getcount")
	assert.NotContains(t, code, "Setcount")
}

func TestEmitter_Imports(t *testing.T) {
	e, err := NewEmitter(regs(t), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fmt", "io", "unsafe", ExplicitPath}, e.Imports())

	e, err = NewEmitter(regs(t), []Derive{DeriveDebug})
	require.NoError(t, err)
	assert.Contains(t, e.Imports(), "strings")
}
