package example

import "strings"

//go:generate go run github.com/alexhholmes/structlayout/cmd/structlayout gen

// PageFlags describes the state of a page.
type PageFlags uint16

const (
	FlagDirty PageFlags = 1 << iota
	FlagOverflow
)

func (f PageFlags) String() string {
	if f == 0 {
		return "clean"
	}
	var names []string
	if f&FlagDirty != 0 {
		names = append(names, "dirty")
	}
	if f&FlagOverflow != 0 {
		names = append(names, "overflow")
	}
	return strings.Join(names, "|")
}

// Fixed is satisfied by header field types that compare by value.
type Fixed interface {
	comparable
}

// TrailerMagic identifies a well-formed page.
var TrailerMagic = [4]byte{'L', 'E', 'A', 'F'}
