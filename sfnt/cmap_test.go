package sfnt

import (
	"encoding/binary"
	"testing"
)

// buildCmapTable assembles a cmap header wrapping subtables, each declared
// under the given platform/encoding pair.
func buildCmapTable(records []cmapRecordSpec) []byte {
	numTables := len(records)
	headerSize := 4 + numTables*8
	data := make([]byte, headerSize)
	binary.BigEndian.PutUint16(data[0:], 0)
	binary.BigEndian.PutUint16(data[2:], uint16(numTables))

	offset := headerSize
	for i, rec := range records {
		off := 4 + i*8
		binary.BigEndian.PutUint16(data[off:], rec.platform)
		binary.BigEndian.PutUint16(data[off+2:], rec.encoding)
		binary.BigEndian.PutUint32(data[off+4:], uint32(offset))
		data = append(data, rec.subtable...)
		offset += len(rec.subtable)
	}
	return data
}

type cmapRecordSpec struct {
	platform, encoding uint16
	subtable           []byte
}

func windowsBMP(subtable []byte) []byte {
	return buildCmapTable([]cmapRecordSpec{{3, 1, subtable}})
}

func buildFormat0(mapping [256]byte) []byte {
	data := make([]byte, 262)
	binary.BigEndian.PutUint16(data[0:], 0)
	binary.BigEndian.PutUint16(data[2:], 262)
	binary.BigEndian.PutUint16(data[4:], 0)
	copy(data[6:], mapping[:])
	return data
}

func buildFormat4(mappings map[uint16]uint16) []byte {
	cps := make([]uint16, 0, len(mappings))
	for cp := range mappings {
		cps = append(cps, cp)
	}
	for i := range cps {
		for j := i + 1; j < len(cps); j++ {
			if cps[i] > cps[j] {
				cps[i], cps[j] = cps[j], cps[i]
			}
		}
	}

	type segment struct {
		startCode, endCode uint16
		delta              int16
	}
	var segments []segment
	if len(cps) > 0 {
		start, end := cps[0], cps[0]
		delta := int16(mappings[start]) - int16(start)
		for i := 1; i < len(cps); i++ {
			cp := cps[i]
			expected := int16(end) + 1 + delta
			if cp == end+1 && int16(mappings[cp]) == expected {
				end = cp
			} else {
				segments = append(segments, segment{start, end, delta})
				start, end = cp, cp
				delta = int16(mappings[cp]) - int16(cp)
			}
		}
		segments = append(segments, segment{start, end, delta})
	}
	segments = append(segments, segment{0xFFFF, 0xFFFF, 1})

	segCountX2 := len(segments) * 2
	totalSize := 14 + segCountX2*4 + 2
	data := make([]byte, totalSize)
	binary.BigEndian.PutUint16(data[0:], 4)
	binary.BigEndian.PutUint16(data[2:], uint16(totalSize))
	binary.BigEndian.PutUint16(data[6:], uint16(segCountX2))

	endCodeOff := 14
	startCodeOff := endCodeOff + segCountX2 + 2
	idDeltaOff := startCodeOff + segCountX2
	idRangeOffOff := idDeltaOff + segCountX2
	for i, seg := range segments {
		binary.BigEndian.PutUint16(data[endCodeOff+i*2:], seg.endCode)
		binary.BigEndian.PutUint16(data[startCodeOff+i*2:], seg.startCode)
		binary.BigEndian.PutUint16(data[idDeltaOff+i*2:], uint16(seg.delta))
		binary.BigEndian.PutUint16(data[idRangeOffOff+i*2:], 0)
	}
	return data
}

func buildFormat6(firstCode uint16, glyphs []uint16) []byte {
	data := make([]byte, 10+len(glyphs)*2)
	binary.BigEndian.PutUint16(data[0:], 6)
	binary.BigEndian.PutUint16(data[2:], uint16(len(data)))
	binary.BigEndian.PutUint16(data[6:], firstCode)
	binary.BigEndian.PutUint16(data[8:], uint16(len(glyphs)))
	for i, g := range glyphs {
		binary.BigEndian.PutUint16(data[10+i*2:], g)
	}
	return data
}

func buildFormat10(startCode uint32, glyphs []uint16) []byte {
	data := make([]byte, 20+len(glyphs)*2)
	binary.BigEndian.PutUint16(data[0:], 10)
	binary.BigEndian.PutUint32(data[4:], uint32(len(data)))
	binary.BigEndian.PutUint32(data[12:], startCode)
	binary.BigEndian.PutUint32(data[16:], uint32(len(glyphs)))
	for i, g := range glyphs {
		binary.BigEndian.PutUint16(data[20+i*2:], g)
	}
	return data
}

func buildFormat12Groups(mappings map[uint32]uint16, sameGlyph bool, format uint16) []byte {
	cps := make([]uint32, 0, len(mappings))
	for cp := range mappings {
		cps = append(cps, cp)
	}
	for i := range cps {
		for j := i + 1; j < len(cps); j++ {
			if cps[i] > cps[j] {
				cps[i], cps[j] = cps[j], cps[i]
			}
		}
	}
	type group struct{ start, end, gid uint32 }
	var groups []group
	if len(cps) > 0 {
		start, end := cps[0], cps[0]
		gid := uint32(mappings[start])
		for i := 1; i < len(cps); i++ {
			cp := cps[i]
			contiguous := cp == end+1
			sameMapping := sameGlyph && uint32(mappings[cp]) == gid
			nextMapping := !sameGlyph && uint32(mappings[cp]) == gid+(end-start)+1
			if contiguous && (sameMapping || nextMapping) {
				end = cp
			} else {
				groups = append(groups, group{start, end, gid})
				start, end, gid = cp, cp, uint32(mappings[cp])
			}
		}
		groups = append(groups, group{start, end, gid})
	}

	data := make([]byte, 16+len(groups)*12)
	binary.BigEndian.PutUint16(data[0:], format)
	binary.BigEndian.PutUint32(data[4:], uint32(len(data)))
	binary.BigEndian.PutUint32(data[12:], uint32(len(groups)))
	off := 16
	for _, g := range groups {
		binary.BigEndian.PutUint32(data[off:], g.start)
		binary.BigEndian.PutUint32(data[off+4:], g.end)
		binary.BigEndian.PutUint32(data[off+8:], g.gid)
		off += 12
	}
	return data
}

func TestCmapFormat0(t *testing.T) {
	var mapping [256]byte
	mapping['A'] = 5
	mapping['B'] = 6

	cmap, err := ParseCmap(buildCmapTable([]cmapRecordSpec{{1, 0, buildFormat0(mapping)}}))
	if err != nil {
		t.Fatalf("ParseCmap: %v", err)
	}
	if gid, ok := cmap.GlyphIndex('A'); !ok || gid != 5 {
		t.Errorf("GlyphIndex('A') = (%d, %v), want (5, true)", gid, ok)
	}
	if _, ok := cmap.GlyphIndex('Z'); ok {
		t.Errorf("GlyphIndex('Z') found, want not found")
	}
	if _, ok := cmap.GlyphIndex(300); ok {
		t.Errorf("GlyphIndex(300) found for a format-0 (8-bit) subtable")
	}
}

func TestCmapFormat2HighByteAndSingleByte(t *testing.T) {
	// SubHeader 0 covers the single-byte range (high byte with key 0 folds
	// back to a single-byte lookup); SubHeader 1 covers high byte 0x81.
	const numSubHeaders = 2
	keys := make([]byte, 512)
	binary.BigEndian.PutUint16(keys[0x81*2:], 8) // high byte 0x81 -> subHeader 1

	subHeaders := make([]byte, numSubHeaders*8)
	// SubHeader 0: firstCode 'A', entryCount 2, delta 0, glyphArrayOff -> glyph[0]
	binary.BigEndian.PutUint16(subHeaders[0:], 'A')
	binary.BigEndian.PutUint16(subHeaders[2:], 2)
	binary.BigEndian.PutUint16(subHeaders[4:], 0)
	binary.BigEndian.PutUint16(subHeaders[6:], 10) // idRangeOffset from its own field to glyph[0]
	// SubHeader 1: firstCode 0x40, entryCount 2, delta 0
	binary.BigEndian.PutUint16(subHeaders[8:], 0x40)
	binary.BigEndian.PutUint16(subHeaders[10:], 2)
	binary.BigEndian.PutUint16(subHeaders[12:], 0)
	binary.BigEndian.PutUint16(subHeaders[14:], 6)

	glyphs := make([]byte, 8)
	binary.BigEndian.PutUint16(glyphs[0:], 10) // 'A' -> 10
	binary.BigEndian.PutUint16(glyphs[2:], 11) // 'B' -> 11
	binary.BigEndian.PutUint16(glyphs[4:], 20) // (0x81,0x40) -> 20
	binary.BigEndian.PutUint16(glyphs[6:], 21) // (0x81,0x41) -> 21

	body := append(append(keys, subHeaders...), glyphs...)
	header := make([]byte, 6)
	binary.BigEndian.PutUint16(header[0:], 2)
	binary.BigEndian.PutUint16(header[2:], uint16(6+len(body)))
	data := append(header, body...)

	cmap, err := ParseCmap(buildCmapTable([]cmapRecordSpec{{1, 0, data}}))
	if err != nil {
		t.Fatalf("ParseCmap: %v", err)
	}
	if gid, ok := cmap.GlyphIndex('A'); !ok || gid != 10 {
		t.Errorf("GlyphIndex('A') = (%d,%v), want (10,true)", gid, ok)
	}
	if gid, ok := cmap.GlyphIndex(0x8140); !ok || gid != 20 {
		t.Errorf("GlyphIndex(0x8140) = (%d,%v), want (20,true)", gid, ok)
	}
	if gid, ok := cmap.GlyphIndex(0x8142); ok {
		t.Errorf("GlyphIndex(0x8142) = (%d,true), want not found (past entryCount)", gid)
	}
}

func TestCmapFormat4(t *testing.T) {
	mappings := map[uint16]uint16{'A': 1, 'B': 2, 'C': 3}
	cmap, err := ParseCmap(windowsBMP(buildFormat4(mappings)))
	if err != nil {
		t.Fatalf("ParseCmap: %v", err)
	}
	for cp, want := range mappings {
		if gid, ok := cmap.GlyphIndex(Codepoint(cp)); !ok || gid != GlyphID(want) {
			t.Errorf("GlyphIndex(%q) = (%d,%v), want (%d,true)", rune(cp), gid, ok, want)
		}
	}
	if _, ok := cmap.GlyphIndex('D'); ok {
		t.Errorf("GlyphIndex('D') found, want not found")
	}
}

func TestCmapFormat6(t *testing.T) {
	cmap, err := ParseCmap(windowsBMP(buildFormat6(0x41, []uint16{1, 2, 0, 4})))
	if err != nil {
		t.Fatalf("ParseCmap: %v", err)
	}
	tests := []struct {
		cp   Codepoint
		gid  GlyphID
		want bool
	}{
		{0x41, 1, true}, {0x42, 2, true}, {0x43, 0, false}, {0x44, 4, true}, {0x45, 0, false},
	}
	for _, tt := range tests {
		gid, ok := cmap.GlyphIndex(tt.cp)
		if ok != tt.want || (ok && gid != tt.gid) {
			t.Errorf("GlyphIndex(0x%X) = (%d,%v), want (%d,%v)", tt.cp, gid, ok, tt.gid, tt.want)
		}
	}
}

func TestCmapFormat10(t *testing.T) {
	cmap, err := ParseCmap(windowsBMP(buildFormat10(0x10000, []uint16{500, 501, 502})))
	if err != nil {
		t.Fatalf("ParseCmap: %v", err)
	}
	if gid, ok := cmap.GlyphIndex(0x10001); !ok || gid != 501 {
		t.Errorf("GlyphIndex(0x10001) = (%d,%v), want (501,true)", gid, ok)
	}
	if _, ok := cmap.GlyphIndex(0x10003); ok {
		t.Errorf("GlyphIndex(0x10003) found, want out of range")
	}
	if _, ok := cmap.GlyphIndex(0xFFFF); ok {
		t.Errorf("GlyphIndex(0xFFFF) found, want below startCharCode")
	}
}

func TestCmapFormat12(t *testing.T) {
	mappings := map[uint32]uint16{'A': 1, 'B': 2, 0x1F600: 100}
	data := buildFormat12Groups(mappings, false, 12)
	cmap, err := ParseCmap(buildCmapTable([]cmapRecordSpec{{3, 10, data}}))
	if err != nil {
		t.Fatalf("ParseCmap: %v", err)
	}
	for cp, want := range mappings {
		if gid, ok := cmap.GlyphIndex(Codepoint(cp)); !ok || gid != GlyphID(want) {
			t.Errorf("GlyphIndex(0x%X) = (%d,%v), want (%d,true)", cp, gid, ok, want)
		}
	}
	if _, ok := cmap.GlyphIndex('C'); ok {
		t.Errorf("GlyphIndex('C') found, want not found")
	}
}

func TestCmapFormat13SameGlyph(t *testing.T) {
	mappings := map[uint32]uint16{0x3000: 9, 0x3001: 9, 0x3002: 9}
	data := buildFormat12Groups(mappings, true, 13)
	cmap, err := ParseCmap(buildCmapTable([]cmapRecordSpec{{3, 10, data}}))
	if err != nil {
		t.Fatalf("ParseCmap: %v", err)
	}
	for cp := range mappings {
		if gid, ok := cmap.GlyphIndex(Codepoint(cp)); !ok || gid != 9 {
			t.Errorf("GlyphIndex(0x%X) = (%d,%v), want (9,true)", cp, gid, ok)
		}
	}
}

func TestCmapPrefersHigherPriorityEncoding(t *testing.T) {
	mac := buildFormat0([256]byte{'A': 1})
	windows := buildFormat4(map[uint16]uint16{'A': 2})
	data := buildCmapTable([]cmapRecordSpec{{1, 0, mac}, {3, 1, windows}})

	cmap, err := ParseCmap(data)
	if err != nil {
		t.Fatalf("ParseCmap: %v", err)
	}
	if gid, ok := cmap.GlyphIndex('A'); !ok || gid != 2 {
		t.Errorf("GlyphIndex('A') = (%d,%v), want the Windows BMP mapping (2,true)", gid, ok)
	}
	platform, encoding, format := cmap.Encoding()
	if platform != 3 || encoding != 1 || format != 4 {
		t.Errorf("Encoding() = (%d,%d,%d), want (3,1,4)", platform, encoding, format)
	}
}

func TestCmapCodepointsIterator(t *testing.T) {
	mappings := map[uint16]uint16{'A': 1, 'B': 2, 'D': 4}
	cmap, err := ParseCmap(windowsBMP(buildFormat4(mappings)))
	if err != nil {
		t.Fatalf("ParseCmap: %v", err)
	}
	got := map[Codepoint]GlyphID{}
	it := cmap.Codepoints()
	for it.Next() {
		cp, gid := it.Codepoint()
		got[cp] = gid
	}
	if len(got) != len(mappings) {
		t.Fatalf("Codepoints() yielded %d entries, want %d", len(got), len(mappings))
	}
	for cp, want := range mappings {
		if got[Codepoint(cp)] != GlyphID(want) {
			t.Errorf("iterator missing/wrong mapping for %q: got %d, want %d", rune(cp), got[Codepoint(cp)], want)
		}
	}
}

func TestCmapUnsupportedFormatRejected(t *testing.T) {
	bogus := make([]byte, 8)
	binary.BigEndian.PutUint16(bogus[0:], 8) // format 8, mixed 16/32-bit: unsupported
	if _, err := ParseCmap(windowsBMP(bogus)); err == nil {
		t.Errorf("ParseCmap accepted an unsupported subtable format")
	}
}

func TestCmapTruncatedTableRejected(t *testing.T) {
	if _, err := ParseCmap([]byte{0, 0, 0, 1}); err == nil {
		t.Errorf("ParseCmap accepted a table with a table count but no records")
	}
}

func TestSubtablePriorityOrdering(t *testing.T) {
	if p := priorityOf(3, 0); p != 100 {
		t.Errorf("Symbol priority = %d, want 100", p)
	}
	ucs4 := priorityOf(3, 10)
	bmp := priorityOf(3, 1)
	if ucs4 <= bmp {
		t.Errorf("UCS-4 priority (%d) should exceed BMP priority (%d)", ucs4, bmp)
	}
	if priorityOf(9, 9) != 0 {
		t.Errorf("unknown platform/encoding should score 0")
	}
}
