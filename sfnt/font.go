package sfnt

import "encoding/binary"

// GlyphID identifies a glyph within a face. GlyphID(0) is .notdef.
type GlyphID uint16

// Codepoint is a Unicode scalar value used as cmap input.
type Codepoint = uint32

// Font is the parsed sfnt table directory: an immutable index of named
// sub-slices into the original byte slice. It performs no per-table
// decoding itself; that is the job of the per-table parsers (Head, Cmap,
// Glyf, CFF, ...) that consume the slices it hands out.
type Font struct {
	data   []byte
	tables map[Tag]tableRecord
}

type tableRecord struct {
	offset uint32
	length uint32
}

const (
	sfntVersionTrueType = 0x00010000
	sfntVersionOTTO     = 0x4F54544F // "OTTO"
	sfntVersionTrue     = 0x74727565 // "true"
	sfntVersionTTC      = 0x74746366 // "ttcf"
)

// ParseFont parses an sfnt wrapper (TrueType, OpenType/CFF, or a
// TrueType/OpenType Collection) and returns the table directory for the
// face at the given index (for a non-collection the index must be 0;
// any other value is rejected).
func ParseFont(data []byte, index int) (*Font, error) {
	if len(data) < 4 {
		return nil, newFaceError(MalformedFont, "file too short to contain a signature")
	}

	magic := binary.BigEndian.Uint32(data)
	switch magic {
	case sfntVersionTrueType, sfntVersionOTTO, sfntVersionTrue:
		if index != 0 {
			return nil, newFaceError(FaceIndexOutOfBounds, "single font, index must be 0")
		}
		return parseOffsetTable(data, 0)
	case sfntVersionTTC:
		return parseTTC(data, index)
	default:
		return nil, newFaceError(UnknownMagic, "")
	}
}

func parseTTC(data []byte, index int) (*Font, error) {
	if index < 0 {
		return nil, newFaceError(FaceIndexOutOfBounds, "negative index")
	}
	p := NewParser(data)
	if err := p.Skip(4); err != nil { // 'ttcf'
		return nil, newFaceError(MalformedFont, "truncated TTC header")
	}
	if _, err := p.U32(); err != nil { // version
		return nil, newFaceError(MalformedFont, "truncated TTC header")
	}
	numFonts, err := p.U32()
	if err != nil {
		return nil, newFaceError(MalformedFont, "truncated TTC header")
	}
	if index >= int(numFonts) {
		return nil, newFaceError(FaceIndexOutOfBounds, "")
	}
	if err := p.Skip(index * 4); err != nil {
		return nil, newFaceError(MalformedFont, "TTC offset table truncated")
	}
	offset, err := p.U32()
	if err != nil {
		return nil, newFaceError(MalformedFont, "TTC offset table truncated")
	}
	return parseOffsetTable(data, int(offset))
}

func parseOffsetTable(data []byte, offset int) (*Font, error) {
	if offset < 0 || offset+12 > len(data) {
		return nil, newFaceError(MalformedFont, "offset table out of bounds")
	}

	p := NewParser(data)
	if err := p.SetOffset(offset); err != nil {
		return nil, newFaceError(MalformedFont, "offset table out of bounds")
	}

	version, _ := p.U32()
	switch version {
	case sfntVersionTrueType, sfntVersionOTTO, sfntVersionTrue:
	default:
		return nil, newFaceError(UnknownMagic, "")
	}

	numTables, _ := p.U16()
	if err := p.Skip(6); err != nil { // searchRange, entrySelector, rangeShift
		return nil, newFaceError(MalformedFont, "truncated offset table")
	}

	font := &Font{
		data:   data,
		tables: make(map[Tag]tableRecord, numTables),
	}

	for i := 0; i < int(numTables); i++ {
		tag, err1 := p.Tag()
		_, err2 := p.U32() // checksum
		tableOffset, err3 := p.U32()
		tableLength, err4 := p.U32()
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, newFaceError(MalformedFont, "truncated table directory")
		}
		font.tables[tag] = tableRecord{offset: tableOffset, length: tableLength}
	}

	if !font.HasTable(TagHead) || !font.HasTable(TagMaxp) {
		return nil, newFaceError(MalformedFont, "required table missing (head/maxp)")
	}
	if _, err := font.TableData(TagHead); err != nil {
		return nil, newFaceError(MalformedFont, "head table out of bounds")
	}
	if _, err := font.TableData(TagMaxp); err != nil {
		return nil, newFaceError(MalformedFont, "maxp table out of bounds")
	}

	return font, nil
}

// HasTable returns true if the font declares (not necessarily validly) the
// given table.
func (f *Font) HasTable(tag Tag) bool {
	_, ok := f.tables[tag]
	return ok
}

// TableData returns the raw bytes for a table, or ErrTableNotFound /
// ErrInvalidTable if it is absent or its directory entry is out of bounds.
func (f *Font) TableData(tag Tag) ([]byte, error) {
	rec, ok := f.tables[tag]
	if !ok {
		return nil, ErrTableNotFound
	}
	end := uint64(rec.offset) + uint64(rec.length)
	if end > uint64(len(f.data)) {
		return nil, ErrInvalidTable
	}
	return f.data[rec.offset:end], nil
}

// TableParser returns a bounded Parser over a table's bytes.
func (f *Font) TableParser(tag Tag) (*Parser, error) {
	data, err := f.TableData(tag)
	if err != nil {
		return nil, err
	}
	return NewParser(data), nil
}

// NumGlyphs returns maxp.numGlyphs, or 0 if maxp is missing or truncated.
func (f *Font) NumGlyphs() int {
	data, err := f.TableData(TagMaxp)
	if err != nil || len(data) < 6 {
		return 0
	}
	return int(binary.BigEndian.Uint16(data[4:]))
}
