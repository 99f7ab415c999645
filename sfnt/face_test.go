package sfnt

import (
	"encoding/binary"
	"testing"
)

// sfntBuilder assembles a minimal well-formed sfnt binary: an offset table,
// a table directory, and the table bodies it names, with no checksum or
// padding requirements since this package's Font parser checks neither.
type sfntBuilder struct {
	tables []sfntBuilderEntry
}

type sfntBuilderEntry struct {
	tag  Tag
	data []byte
}

func (b *sfntBuilder) add(tag Tag, data []byte) {
	b.tables = append(b.tables, sfntBuilderEntry{tag, data})
}

func (b *sfntBuilder) build() []byte {
	numTables := len(b.tables)
	offsetTableLen := 12
	dirLen := numTables * 16
	dataStart := offsetTableLen + dirLen

	var body []byte
	offsets := make([]int, numTables)
	for i, t := range b.tables {
		offsets[i] = dataStart + len(body)
		body = append(body, t.data...)
	}

	out := make([]byte, dataStart+len(body))
	binary.BigEndian.PutUint32(out[0:], 0x00010000) // sfnt version (TrueType)
	binary.BigEndian.PutUint16(out[4:], uint16(numTables))

	dir := out[offsetTableLen:]
	for i, t := range b.tables {
		off := i * 16
		binary.BigEndian.PutUint32(dir[off:], uint32(t.tag))
		binary.BigEndian.PutUint32(dir[off+4:], 0) // checksum, unchecked by this package
		binary.BigEndian.PutUint32(dir[off+8:], uint32(offsets[i]))
		binary.BigEndian.PutUint32(dir[off+12:], uint32(len(t.data)))
	}
	copy(out[dataStart:], body)
	return out
}

func buildMaxp(numGlyphs uint16) []byte {
	data := make([]byte, 6)
	binary.BigEndian.PutUint32(data[0:], 0x00005000) // version 0.5
	binary.BigEndian.PutUint16(data[4:], numGlyphs)
	return data
}

func buildHhea(numberOfHMetrics uint16) []byte {
	data := make([]byte, 36)
	binary.BigEndian.PutUint32(data[0:], 0x00010000) // version
	ascender := int16(900)
	descender := int16(-200)
	binary.BigEndian.PutUint16(data[4:], uint16(ascender))  // ascender
	binary.BigEndian.PutUint16(data[6:], uint16(descender)) // descender
	binary.BigEndian.PutUint16(data[8:], 100)               // lineGap
	binary.BigEndian.PutUint16(data[34:], numberOfHMetrics)
	return data
}

func buildHmtx(advance uint16, lsb int16) []byte {
	data := make([]byte, 4)
	binary.BigEndian.PutUint16(data[0:], advance)
	binary.BigEndian.PutUint16(data[2:], uint16(lsb))
	return data
}

// buildTrueTypeFont assembles a single-glyph TrueType font: a triangle
// outline reachable through head/maxp/hhea/hmtx/loca/glyf.
func buildTrueTypeFont() []byte {
	triangle := buildTriangleGlyph()
	locaData, glyfData := buildLocaAndGlyf([][]byte{triangle})

	var b sfntBuilder
	b.add(TagHead, buildHead(1000, 0, 0, 700, 700))
	b.add(TagMaxp, buildMaxp(1))
	b.add(TagHhea, buildHhea(1))
	b.add(TagHmtx, buildHmtx(500, 0))
	b.add(TagLoca, locaData)
	b.add(TagGlyf, glyfData)
	return b.build()
}

// buildCFFFont assembles a single-glyph CFF-flavored OpenType font.
func buildCFFFont() []byte {
	cffData := buildMinimalCFF(buildTriangleCharstring())
	var b sfntBuilder
	b.add(TagHead, buildHead(1000, 0, 0, 700, 700))
	b.add(TagMaxp, buildMaxp(1))
	b.add(TagCFF, cffData)
	return b.build()
}

func TestLoadFaceTrueType(t *testing.T) {
	face, err := LoadFaceFromData(buildTrueTypeFont(), 0)
	if err != nil {
		t.Fatalf("LoadFaceFromData: %v", err)
	}
	if face.IsCFF() {
		t.Error("expected a TrueType face, got IsCFF() == true")
	}
	if got := face.Upem(); got != 1000 {
		t.Errorf("Upem: want 1000, got %d", got)
	}
	if got := face.BBox(); got != (Rect{0, 0, 700, 700}) {
		t.Errorf("BBox: unexpected %+v", got)
	}
	if got := face.HorizontalAdvance(0); got != 500 {
		t.Errorf("HorizontalAdvance: want 500, got %v", got)
	}
	if face.HasVariations() {
		t.Error("expected a static face to report no variations")
	}

	rb := &recordingBuilder{}
	rect, ok := face.OutlineGlyph(0, rb)
	if !ok {
		t.Fatal("expected OutlineGlyph to succeed")
	}
	want := []string{"M 0 0", "L 0 700", "L 700 0", "L 0 0", "Z"}
	if !equalOps(rb.ops, want) {
		t.Errorf("unexpected outline ops: got %v, want %v", rb.ops, want)
	}
	if rect != (Rect{0, 0, 700, 700}) {
		t.Errorf("unexpected outline bbox: %+v", rect)
	}
}

func TestLoadFaceCFF(t *testing.T) {
	face, err := LoadFaceFromData(buildCFFFont(), 0)
	if err != nil {
		t.Fatalf("LoadFaceFromData: %v", err)
	}
	if !face.IsCFF() {
		t.Fatal("expected a CFF face, got IsCFF() == false")
	}
	if got := face.Upem(); got != 1000 {
		t.Errorf("Upem: want 1000, got %d", got)
	}
	// No hmtx table was supplied; HorizontalAdvance falls back to upem.
	if got := face.HorizontalAdvance(0); got != 1000 {
		t.Errorf("HorizontalAdvance fallback: want 1000, got %v", got)
	}

	rb := &recordingBuilder{}
	rect, ok := face.OutlineGlyph(0, rb)
	if !ok {
		t.Fatal("expected OutlineGlyph to succeed")
	}
	want := []string{"M 100 50", "L 130 50", "L 100 0", "Z"}
	if !equalOps(rb.ops, want) {
		t.Errorf("unexpected outline ops: got %v, want %v", rb.ops, want)
	}
	if rect.XMin != 100 || rect.YMin != 0 || rect.XMax != 130 || rect.YMax != 50 {
		t.Errorf("unexpected outline bbox: %+v", rect)
	}
}

func TestFaceRejectsMissingHead(t *testing.T) {
	var b sfntBuilder
	b.add(TagMaxp, buildMaxp(1))
	if _, err := LoadFaceFromData(b.build(), 0); err == nil {
		t.Fatal("expected an error for a font with no head table")
	}
}

func TestFaceNilAncillaryTablesAreSafe(t *testing.T) {
	face, err := LoadFaceFromData(buildTrueTypeFont(), 0)
	if err != nil {
		t.Fatalf("LoadFaceFromData: %v", err)
	}
	if got := face.Kerning(0, 1); got != 0 {
		t.Errorf("Kerning with no kern table: want 0, got %d", got)
	}
	if got := face.FamilyName(); got != "" {
		t.Errorf("FamilyName with no name table: want empty, got %q", got)
	}
	if got := face.GlyphName(0); got != "" {
		t.Errorf("GlyphName with no post/CFF names: want empty, got %q", got)
	}
	if got := face.WeightClass(); got != 400 {
		t.Errorf("WeightClass fallback: want 400, got %d", got)
	}
	if _, ok := face.GlyphImage(0, 16); ok {
		t.Error("expected no glyph image without sbix/CBDT tables")
	}
}
