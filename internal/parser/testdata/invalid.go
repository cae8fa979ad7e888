package testdata

// @layout size=8 align=4
type Missing struct {
	Tagged   uint32 `layout:"@0"`
	Untagged uint32
}
