package analyzer

import (
	"fmt"
	"go/types"

	"github.com/alexhholmes/structlayout/internal/diag"
)

// Capability is a property a field type must have beyond being plain old
// data. It is selected per layout with check=Name.
type Capability interface {
	Name() string
	// Check returns nil if t has the capability, or an error saying why not.
	Check(t TypeInfo) error
}

// InterfaceCapability is satisfied by types that implement an interface.
type InterfaceCapability struct {
	name  string
	iface *types.Interface
}

// NewInterfaceCapability returns a capability backed by iface.
func NewInterfaceCapability(name string, iface *types.Interface) *InterfaceCapability {
	return &InterfaceCapability{name: name, iface: iface}
}

func (c *InterfaceCapability) Name() string { return c.name }

func (c *InterfaceCapability) Check(t TypeInfo) error {
	if t.Type == nil {
		return fmt.Errorf("no type information for %s", t.Name)
	}
	if !types.Satisfies(t.Type, c.iface) {
		return fmt.Errorf("%s does not satisfy %s", t.Name, c.name)
	}
	return nil
}

// CapabilityFunc adapts a predicate to a Capability.
type CapabilityFunc struct {
	name string
	fn   func(TypeInfo) bool
}

// NewCapabilityFunc names a predicate.
func NewCapabilityFunc(name string, fn func(TypeInfo) bool) *CapabilityFunc {
	return &CapabilityFunc{name: name, fn: fn}
}

func (c *CapabilityFunc) Name() string { return c.name }

func (c *CapabilityFunc) Check(t TypeInfo) error {
	if !c.fn(t) {
		return fmt.Errorf("%s does not satisfy %s", t.Name, c.name)
	}
	return nil
}

// CheckCapability verifies that t is plain old data and, if c is non-nil,
// that it has capability c. The plain-old-data baseline cannot be relaxed:
// accessors copy field values bytewise in and out of the buffer.
func CheckCapability(t TypeInfo, c Capability) error {
	switch {
	case t.Dynamic:
		return diag.New(diag.Capability, "", "", "size of %s is not known at generation time", t.Name)
	case t.Pointers:
		return diag.New(diag.Capability, "", "", "%s contains pointers", t.Name)
	case t.Locks:
		return diag.New(diag.Capability, "", "", "%s contains a lock and must not be copied", t.Name)
	}

	if c == nil {
		return nil
	}
	if err := c.Check(t); err != nil {
		return diag.New(diag.Capability, "", "", "check(%s): %v", c.Name(), err)
	}
	return nil
}
