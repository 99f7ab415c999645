package sfnt

import (
	"encoding/binary"
	"testing"
)

// buildPostV2 assembles a version-2.0 post table for 2 glyphs: glyph 0 uses
// a standard Macintosh name ("space", index 3), glyph 1 a custom Pascal
// string name.
func buildPostV2(customName string) []byte {
	const headerLen = 32
	numGlyphs := 2
	indexLen := numGlyphs * 2
	nameLen := 1 + len(customName)
	data := make([]byte, headerLen+2+indexLen+nameLen)
	binary.BigEndian.PutUint32(data[0:], 0x00020000) // version 2.0
	binary.BigEndian.PutUint32(data[4:], uint32(fixedFromFloat32(-12.5)))
	underlinePosition, underlineThickness := int16(-150), int16(75)
	binary.BigEndian.PutUint16(data[8:], uint16(underlinePosition))   // underlinePosition
	binary.BigEndian.PutUint16(data[10:], uint16(underlineThickness)) // underlineThickness
	binary.BigEndian.PutUint32(data[12:], 0)                          // isFixedPitch (false)
	// bytes [16:32) are the unused min/max mem type fields, left zeroed.

	off := headerLen
	binary.BigEndian.PutUint16(data[off:], uint16(numGlyphs))
	off += 2
	binary.BigEndian.PutUint16(data[off:], 3)     // glyph 0 -> "space"
	binary.BigEndian.PutUint16(data[off+2:], 258) // glyph 1 -> custom name 0
	off += indexLen
	data[off] = byte(len(customName))
	copy(data[off+1:], customName)
	return data
}

func TestParsePostVersion2(t *testing.T) {
	data := buildPostV2("myGlyph")
	post, err := ParsePost(data)
	if err != nil {
		t.Fatalf("ParsePost: %v", err)
	}
	if post.ItalicAngleDegrees() < -12.51 || post.ItalicAngleDegrees() > -12.49 {
		t.Errorf("unexpected italic angle: %v", post.ItalicAngleDegrees())
	}
	if post.UnderlinePosition != -150 || post.UnderlineThickness != 75 {
		t.Errorf("unexpected underline metrics: %+v", post)
	}
	if got := post.GlyphName(0); got != "space" {
		t.Errorf("glyph 0: want %q, got %q", "space", got)
	}
	if got := post.GlyphName(1); got != "myGlyph" {
		t.Errorf("glyph 1: want %q, got %q", "myGlyph", got)
	}
	if got := post.GlyphName(5); got != "" {
		t.Errorf("out-of-range glyph should return empty name, got %q", got)
	}
}

func buildPostV1() []byte {
	data := make([]byte, 32)
	binary.BigEndian.PutUint32(data[0:], 0x00010000) // version 1.0
	binary.BigEndian.PutUint32(data[12:], 1)         // isFixedPitch (true)
	return data
}

func TestParsePostVersion1HasNoNames(t *testing.T) {
	post, err := ParsePost(buildPostV1())
	if err != nil {
		t.Fatalf("ParsePost: %v", err)
	}
	if post.IsFixedPitch == 0 {
		t.Error("expected IsFixedPitch to be set")
	}
	if got := post.GlyphName(0); got != "" {
		t.Errorf("version 1.0 table has no per-glyph names, got %q", got)
	}
}

func TestParsePostTruncated(t *testing.T) {
	if _, err := ParsePost(make([]byte, 10)); err == nil {
		t.Fatal("expected error for truncated post table")
	}
}

func TestParsePostNilSafeGlyphName(t *testing.T) {
	var post *Post
	if got := post.GlyphName(0); got != "" {
		t.Errorf("nil Post GlyphName should return empty, got %q", got)
	}
}
