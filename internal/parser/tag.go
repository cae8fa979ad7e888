package parser

import (
	"strconv"
	"strings"

	"github.com/alexhholmes/structlayout/internal/diag"
)

// Method is one accessor operation that can be generated for a field.
type Method int

const (
	Get Method = iota // owned copy out of the buffer
	Set               // copy into the buffer
	Ref               // shared borrow into the buffer
	Mut               // exclusive borrow into the buffer
)

var methodNames = [...]string{"get", "set", "ref", "mut"}

func (m Method) String() string {
	if m < Get || m > Mut {
		return "unknown"
	}
	return methodNames[m]
}

// ParseMethod maps a tag word to a Method.
func ParseMethod(s string) (Method, bool) {
	for i, name := range methodNames {
		if s == name {
			return Method(i), true
		}
	}
	return 0, false
}

// MethodSet is a set of accessor methods. The empty set means all four.
type MethodSet uint8

// AllMethods is the effective set of a field that declares none.
const AllMethods MethodSet = 1<<Get | 1<<Set | 1<<Ref | 1<<Mut

// NewMethodSet builds a set from the given methods.
func NewMethodSet(methods ...Method) MethodSet {
	var s MethodSet
	for _, m := range methods {
		s = s.With(m)
	}
	return s
}

// With returns s with m added.
func (s MethodSet) With(m Method) MethodSet { return s | 1<<m }

// Has reports whether m is in s. It does not expand the empty set.
func (s MethodSet) Has(m Method) bool { return s&(1<<m) != 0 }

// Effective returns s, or AllMethods if s is empty.
func (s MethodSet) Effective() MethodSet {
	if s == 0 {
		return AllMethods
	}
	return s
}

// Borrows reports whether the effective set contains ref or mut.
func (s MethodSet) Borrows() bool {
	e := s.Effective()
	return e.Has(Ref) || e.Has(Mut)
}

// Methods lists the members of s in get, set, ref, mut order.
func (s MethodSet) Methods() []Method {
	var out []Method
	for m := Get; m <= Mut; m++ {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s MethodSet) String() string {
	var names []string
	for _, m := range s.Methods() {
		names = append(names, m.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// FieldLayout is the parsed form of a layout struct tag.
type FieldLayout struct {
	Offset  int       // Byte position of the field within the buffer
	Methods MethodSet // Canonicalized: never empty
}

// ParseTag parses layout struct tags
//
// Semantics:
//   - "@N"              : field at byte offset N with get, set, ref and mut
//   - "@N,m1,m2,..."    : field at byte offset N with only the listed methods
//
// Methods are get, set, ref and mut. Listing only get and/or set allows
// unaligned fields, since those never form a typed pointer into the buffer.
//
// Examples:
//
//	"@0"           → all four accessors at offset 0
//	"@3,get,set"   → copy accessors at offset 3
//	"@8,ref"       → shared borrow only
func ParseTag(tag string) (*FieldLayout, error) {
	if tag == "" {
		return nil, diag.New(diag.UnsupportedAttribute, "", "", "empty layout tag")
	}

	parts := strings.Split(tag, ",")

	if !strings.HasPrefix(parts[0], "@") {
		return nil, diag.New(diag.UnsupportedAttribute, "", "",
			"layout tag must start with @offset, got %q", parts[0])
	}

	// Extract offset: "@8" → 8
	offsetStr := strings.TrimPrefix(parts[0], "@")
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		return nil, diag.New(diag.UnsupportedAttribute, "", "", "invalid offset: %s", parts[0])
	}

	f := &FieldLayout{Offset: offset}
	for _, part := range parts[1:] {
		m, ok := ParseMethod(part)
		if !ok {
			return nil, diag.New(diag.UnsupportedAttribute, "", "",
				"unknown method %q, expecting get, set, ref or mut", part)
		}
		if f.Methods.Has(m) {
			return nil, diag.New(diag.UnsupportedAttribute, "", "", "duplicate method %q", part)
		}
		f.Methods = f.Methods.With(m)
	}

	// If no methods are specified, enable all of them
	f.Methods = f.Methods.Effective()

	return f, nil
}
