// Package explicit is the runtime support imported by code that structlayout
// generates.
//
// A generated layout type is a fixed-size byte buffer with a fixed alignment:
//
//	type Regs struct {
//		_   explicit.NoCopy
//		_   [0]uint32
//		buf [32]byte
//	}
//
// Every field of the declaration becomes up to four accessors. Get and Set
// copy the value out of or into the buffer and work at any offset. Ref and
// Mut return a typed pointer into the buffer together with a release func;
// they are only generated for offsets aligned for the field type.
//
// Go cannot check borrows statically, so this package keeps a borrow table
// keyed by instance address. While a Mut borrow is live no other access to
// the same instance is allowed; while Ref borrows are live, reads and more
// Ref borrows are allowed but writes are not. A violation panics with an
// error wrapping ErrBorrowConflict.
//
//	v, release := regs.MutControl()
//	*v |= 1
//	release()
//
// Releasing twice is a no-op. A borrow that is never released keeps the
// instance locked for the rest of the process.
package explicit
