package explicit

import (
	"errors"
	"io"
	"unsafe"
)

// ErrSize is wrapped by UnmarshalLayout when the input length does not
// match the layout size.
var ErrSize = errors.New("explicit: buffer size mismatch")

// Layout is implemented by every generated type.
type Layout interface {
	MarshalLayout() ([]byte, error)
	UnmarshalLayout(buf []byte) error
	LoadFrom(r io.Reader) error
	io.WriterTo
}

// NoCopy marks a generated type that must not be copied by value. go vet's
// copylocks check reports copies of any struct holding one.
type NoCopy struct{}

// Lock is a no-op used by go vet's copylocks check.
func (*NoCopy) Lock() {}

// Unlock is a no-op used by go vet's copylocks check.
func (*NoCopy) Unlock() {}

// Load copies a value of type T out of buf, which must hold at least
// unsafe.Sizeof(T) bytes. buf may be unaligned for T.
func Load[T any](buf []byte) T {
	var v T
	copy(bytesOf(&v), buf)
	return v
}

// Store copies v into buf, which must hold at least unsafe.Sizeof(T) bytes.
// buf may be unaligned for T.
func Store[T any](buf []byte, v T) {
	copy(buf, bytesOf(&v))
}

func bytesOf[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}
