// Package diag defines the generation-time diagnostics reported for layout
// declarations.
//
// Every failure carries the layout name, the offending field (if any) and the
// violated constraint. Diagnostics unwrap to a sentinel per Kind so callers can
// classify them with errors.Is:
//
//	if errors.Is(err, diag.ErrFieldAlignment) { ... }
package diag

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// Kind categorizes a diagnostic.
type Kind int

const (
	KindUnknown Kind = iota
	StructConstraint
	FieldBounds
	FieldAlignment
	Capability
	UnsupportedCapability
	UnsupportedAttribute
)

var (
	ErrStructConstraint      = errors.New("struct constraint violated")
	ErrFieldBounds           = errors.New("field out of bounds")
	ErrFieldAlignment        = errors.New("field misaligned")
	ErrCapability            = errors.New("capability not satisfied")
	ErrUnsupportedCapability = errors.New("unsupported capability")
	ErrUnsupportedAttribute  = errors.New("unsupported attribute")
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case StructConstraint:
		return "StructConstraintError"
	case FieldBounds:
		return "FieldBoundsError"
	case FieldAlignment:
		return "FieldAlignmentError"
	case Capability:
		return "CapabilityError"
	case UnsupportedCapability:
		return "UnsupportedCapabilityError"
	case UnsupportedAttribute:
		return "UnsupportedAttributeError"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case StructConstraint:
		return ErrStructConstraint
	case FieldBounds:
		return ErrFieldBounds
	case FieldAlignment:
		return ErrFieldAlignment
	case Capability:
		return ErrCapability
	case UnsupportedCapability:
		return ErrUnsupportedCapability
	case UnsupportedAttribute:
		return ErrUnsupportedAttribute
	default:
		return nil
	}
}

// Diagnostic is a single generation-time failure.
type Diagnostic struct {
	Kind Kind
	// Type is the layout (struct) name.
	Type string
	// Field is the offending field name, empty for struct-level failures.
	Field string
	// Pos is the source position of the declaration, if known.
	Pos token.Position
	// Message describes the violated constraint.
	Message string
}

// New builds a diagnostic with a formatted message.
func New(kind Kind, typeName, field, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Type:    typeName,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// At returns a copy of d positioned at pos.
func (d *Diagnostic) At(pos token.Position) *Diagnostic {
	c := *d
	c.Pos = pos
	return &c
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Pos.IsValid() {
		b.WriteString(d.Pos.String())
		b.WriteString(": ")
	}
	b.WriteString(d.Kind.String())
	if d.Type != "" {
		b.WriteString(" in ")
		b.WriteString(d.Type)
		if d.Field != "" {
			b.WriteByte('.')
			b.WriteString(d.Field)
		}
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

func (d *Diagnostic) Unwrap() error { return d.Kind.sentinel() }

// KindOf reports the kind of err if it is, or wraps, a Diagnostic.
func KindOf(err error) Kind {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Kind
	}
	return KindUnknown
}

// Diagnostics collects the outcome of checking several layouts.
type Diagnostics struct {
	Errors []*Diagnostic
}

// Add records err. Errors that are not diagnostics are kept with KindUnknown.
func (ds *Diagnostics) Add(err error) {
	if err == nil {
		return
	}
	var d *Diagnostic
	if !errors.As(err, &d) {
		d = &Diagnostic{Message: err.Error()}
	}
	ds.Errors = append(ds.Errors, d)
}

// Merge appends the errors of other.
func (ds *Diagnostics) Merge(other Diagnostics) {
	ds.Errors = append(ds.Errors, other.Errors...)
}

// HasErrors returns true if any diagnostic was recorded.
func (ds *Diagnostics) HasErrors() bool {
	return len(ds.Errors) > 0
}

// Err returns a combined error, or nil if nothing was recorded.
func (ds *Diagnostics) Err() error {
	if !ds.HasErrors() {
		return nil
	}
	errs := make([]error, len(ds.Errors))
	for i, d := range ds.Errors {
		errs[i] = d
	}
	return errors.Join(errs...)
}
