package testdata

// Regs is a device register block.
// @layout size=32 align=4
type Regs struct {
	// Status reports device state.
	Status  uint32   `layout:"@0"`
	Control uint32   `layout:"@4,get,set"`
	Packed  uint32   `layout:"@21,get,set"`
	Buffer  [8]byte  `layout:"@8,ref,mut"`
	Lo, Hi  uint16   `layout:"@16"`
}

// @layout size=16 align=8 check=Pod derive=copy,debug
type Header struct {
	Magic uint64 `layout:"@0"`
	Len   Length `layout:"@8"`
}

type Length uint32

// No annotation - should be skipped
type IgnoredType struct {
	Field uint32 `layout:"@0"`
}
