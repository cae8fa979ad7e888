//go:build layoutgen

package example

// LeafHeader opens every leaf page of the tree.
//
// @layout size=16 align=4 check=Fixed derive=clone,debug,default
type LeafHeader struct {
	NumKeys  uint16    `layout:"@0"`
	Flags    PageFlags `layout:"@2,get,set"`
	NextPage uint32    `layout:"@4"`
	PrevPage uint32    `layout:"@8,get,set"`
	// Checksum covers the element array.
	Checksum uint32 `layout:"@12,get"`
}

// Trailer closes every page. Version sits at an odd offset, so it only has
// copy accessors.
//
// @layout size=16 align=8 derive=copy,debug
type Trailer struct {
	Magic   [4]byte `layout:"@0,ref"`
	Version uint16  `layout:"@5,get,set"`
	// LSN is the log sequence number of the last write to the page.
	LSN uint64 `layout:"@8"`
	Raw uint64 `layout:"@0,get"`
}
