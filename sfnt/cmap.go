package sfnt

import (
	"encoding/binary"
	"sort"
)

// Cmap resolves Unicode codepoints (and, where the font provides one, an
// Adobe/ISO variation-selector pair) to glyph IDs. A font can carry several
// cmap subtables side by side (one per platform/encoding); Cmap keeps the
// single best one selected at parse time plus, if present, the standalone
// format-14 variation subtable.
type Cmap struct {
	data      []byte
	subtable  cmapSubtable
	encoding  cmapEncoding
	variation *cmapFormat14
}

// cmapEncoding records which platform/encoding pair the selected subtable
// came from, so callers building `names`-aware UIs can report it.
type cmapEncoding struct {
	Platform uint16
	Encoding uint16
	Format   uint16
}

// cmapSubtable is satisfied by each of the seven supported subtable formats.
type cmapSubtable interface {
	// lookup returns the glyph for a codepoint, or ok=false if unmapped.
	lookup(cp Codepoint) (GlyphID, bool)
}

// subtablePriority ranks a platform/encoding pair the way a shaper
// choosing among several cmap subtables would: prefer full-Unicode,
// 32-bit-capable tables over legacy 8/16-bit ones, and prefer the
// Microsoft platform's tables over the legacy Macintosh ones.
var subtablePriority = []struct {
	platform, encoding uint16
	score              int
}{
	{3, 0, 100}, // Windows Symbol
	{3, 10, 90}, // Windows UCS-4
	{0, 6, 89},  // Unicode full
	{0, 4, 88},  // Unicode 2.0+ full
	{3, 1, 80},  // Windows BMP
	{0, 3, 79},  // Unicode 2.0 BMP
	{0, 2, 78},  // Unicode ISO 10646
	{0, 1, 77},  // Unicode 1.1
	{0, 0, 76},  // Unicode 1.0
	{1, 0, 10},  // Macintosh Roman
}

func priorityOf(platform, encoding uint16) int {
	for _, p := range subtablePriority {
		if p.platform == platform && p.encoding == encoding {
			return p.score
		}
	}
	return 0
}

// ParseCmap scans every subtable record and keeps the highest-priority one
// that parses cleanly, plus a format-14 variation subtable if the font
// carries one under platform 0 / encoding 5.
func ParseCmap(data []byte) (*Cmap, error) {
	if len(data) < 4 {
		return nil, ErrInvalidTable
	}
	p := NewParser(data)
	if version, _ := p.U16(); version != 0 {
		return nil, ErrInvalidFormat
	}
	numTables, _ := p.U16()

	cmap := &Cmap{data: data}
	bestScore := -1

	for i := 0; i < int(numTables); i++ {
		platform, err1 := p.U16()
		encoding, err2 := p.U16()
		offset, err3 := p.U32()
		if err1 != nil || err2 != nil || err3 != nil {
			break
		}

		if platform == 0 && encoding == 5 {
			if f14, err := parseCmapFormat14(data, int(offset)); err == nil {
				cmap.variation = f14
			}
			continue
		}

		score := priorityOf(platform, encoding)
		if score <= bestScore {
			continue
		}
		st, format, err := parseCmapSubtable(data, int(offset))
		if err != nil || st == nil {
			continue
		}
		cmap.subtable = st
		cmap.encoding = cmapEncoding{Platform: platform, Encoding: encoding, Format: format}
		bestScore = score
	}

	if cmap.subtable == nil {
		return nil, ErrInvalidTable
	}
	return cmap, nil
}

func parseCmapSubtable(data []byte, offset int) (cmapSubtable, uint16, error) {
	if offset+2 > len(data) {
		return nil, 0, ErrInvalidOffset
	}
	format := binary.BigEndian.Uint16(data[offset:])
	var st cmapSubtable
	var err error
	switch format {
	case 0:
		st, err = parseCmapFormat0(data, offset)
	case 2:
		st, err = parseCmapFormat2(data, offset)
	case 4:
		st, err = parseCmapFormat4(data, offset)
	case 6:
		st, err = parseCmapFormat6(data, offset)
	case 10:
		st, err = parseCmapFormat10(data, offset)
	case 12:
		st, err = parseCmapFormat12(data, offset)
	case 13:
		st, err = parseCmapFormat13(data, offset)
	default:
		return nil, format, ErrInvalidFormat
	}
	return st, format, err
}

// Encoding reports the platform/encoding/format of the subtable in use.
func (c *Cmap) Encoding() (platform, encoding, format uint16) {
	return c.encoding.Platform, c.encoding.Encoding, c.encoding.Format
}

// GlyphIndex resolves a codepoint to a glyph, or ok=false if the selected
// subtable has no entry for it.
func (c *Cmap) GlyphIndex(cp Codepoint) (GlyphID, bool) {
	return c.subtable.lookup(cp)
}

// GlyphVariationIndex resolves a (base, variation-selector) pair through the
// format-14 subtable when present, falling back to the base lookup when the
// variation sequence isn't registered or the font carries no format-14 data
// at all.
func (c *Cmap) GlyphVariationIndex(cp, vs Codepoint) (GlyphID, bool) {
	if c.variation != nil {
		if gid, found := c.variation.lookupNonDefault(cp, vs); found {
			return gid, true
		}
		if c.variation.isDefault(cp, vs) {
			return c.subtable.lookup(cp)
		}
	}
	return c.subtable.lookup(cp)
}

// --- Format 0: byte encoding table ---

type cmapFormat0 struct {
	glyphIDs [256]byte
}

func parseCmapFormat0(data []byte, offset int) (*cmapFormat0, error) {
	if offset+262 > len(data) {
		return nil, ErrInvalidOffset
	}
	f := &cmapFormat0{}
	copy(f.glyphIDs[:], data[offset+6:offset+262])
	return f, nil
}

func (f *cmapFormat0) lookup(cp Codepoint) (GlyphID, bool) {
	if cp >= 256 {
		return 0, false
	}
	if gid := f.glyphIDs[cp]; gid != 0 {
		return GlyphID(gid), true
	}
	return 0, false
}

// --- Format 2: high-byte mapping through table ---
//
// Format 2 targets legacy CJK encodings where the high byte of a two-byte
// codepoint selects one of 256 SubHeaders, and the low byte (offset by the
// SubHeader's firstCode) indexes into that SubHeader's glyph array. A high
// byte whose SubHeader index is 0 is treated as a single-byte codepoint.
type cmapFormat2 struct {
	subHeaderKeys [256]uint16 // divided by 8, index into subHeaders
	subHeaders    []cmapSubHeader2
	glyphs        []uint16
}

type cmapSubHeader2 struct {
	firstCode     uint16
	entryCount    uint16
	idDelta       int16
	glyphArrayOff int // index into the shared glyph array
}

func parseCmapFormat2(data []byte, offset int) (*cmapFormat2, error) {
	if offset+6+512 > len(data) {
		return nil, ErrInvalidOffset
	}
	length := int(binary.BigEndian.Uint16(data[offset+2:]))
	if offset+length > len(data) || length < 6+512 {
		return nil, ErrInvalidOffset
	}

	f := &cmapFormat2{}
	keyBase := offset + 6
	maxSubHeader := 0
	for i := 0; i < 256; i++ {
		key := binary.BigEndian.Uint16(data[keyBase+i*2:])
		f.subHeaderKeys[i] = key
		if idx := int(key) / 8; idx > maxSubHeader {
			maxSubHeader = idx
		}
	}

	subHeaderBase := keyBase + 512
	numSubHeaders := maxSubHeader + 1
	if subHeaderBase+numSubHeaders*8 > len(data) {
		return nil, ErrInvalidOffset
	}
	f.subHeaders = make([]cmapSubHeader2, numSubHeaders)
	glyphArrayBase := subHeaderBase + numSubHeaders*8
	for i := 0; i < numSubHeaders; i++ {
		off := subHeaderBase + i*8
		firstCode := binary.BigEndian.Uint16(data[off:])
		entryCount := binary.BigEndian.Uint16(data[off+2:])
		idDelta := int16(binary.BigEndian.Uint16(data[off+4:]))
		idRangeOffset := int(binary.BigEndian.Uint16(data[off+6:]))
		// idRangeOffset is relative to its own field's position.
		glyphOff := off + 6 + idRangeOffset
		idx := (glyphOff - glyphArrayBase) / 2
		f.subHeaders[i] = cmapSubHeader2{
			firstCode: firstCode, entryCount: entryCount, idDelta: idDelta, glyphArrayOff: idx,
		}
	}

	if offset+length < glyphArrayBase {
		return nil, ErrInvalidOffset
	}
	numGlyphs := (offset + length - glyphArrayBase) / 2
	f.glyphs = make([]uint16, numGlyphs)
	for i := 0; i < numGlyphs; i++ {
		f.glyphs[i] = binary.BigEndian.Uint16(data[glyphArrayBase+i*2:])
	}
	return f, nil
}

func (f *cmapFormat2) lookup(cp Codepoint) (GlyphID, bool) {
	if cp > 0xFFFF {
		return 0, false
	}
	hi, lo := byte(cp>>8), byte(cp)
	key := f.subHeaderKeys[hi] / 8
	if key == 0 && hi != 0 {
		// SubHeader 0 with a non-zero high byte: this codepoint isn't
		// two-byte after all, fall through to the single-byte lookup.
		lo = hi
		hi = 0
		key = f.subHeaderKeys[0] / 8
	}
	if int(key) >= len(f.subHeaders) {
		return 0, false
	}
	sh := f.subHeaders[key]
	if uint16(lo) < sh.firstCode || uint16(lo) >= sh.firstCode+sh.entryCount {
		return 0, false
	}
	idx := sh.glyphArrayOff + int(uint16(lo)-sh.firstCode)
	if idx < 0 || idx >= len(f.glyphs) {
		return 0, false
	}
	gid := f.glyphs[idx]
	if gid == 0 {
		return 0, false
	}
	return GlyphID((int(gid) + int(sh.idDelta)) & 0xFFFF), true
}

// --- Format 4: segment mapping to delta values (BMP) ---

type cmapFormat4 struct {
	data            []byte
	segCount        int
	endCodeOff      int
	startCodeOff    int
	idDeltaOff      int
	idRangeOffOff   int
	glyphIdArrayOff int
	glyphIdArrayLen int
}

func parseCmapFormat4(data []byte, offset int) (*cmapFormat4, error) {
	if offset+14 > len(data) {
		return nil, ErrInvalidOffset
	}
	length := int(binary.BigEndian.Uint16(data[offset+2:]))
	if offset+length > len(data) {
		return nil, ErrInvalidOffset
	}
	segCountX2 := int(binary.BigEndian.Uint16(data[offset+6:]))
	f := &cmapFormat4{data: data[offset : offset+length], segCount: segCountX2 / 2}
	f.endCodeOff = 14
	f.startCodeOff = f.endCodeOff + segCountX2 + 2
	f.idDeltaOff = f.startCodeOff + segCountX2
	f.idRangeOffOff = f.idDeltaOff + segCountX2
	f.glyphIdArrayOff = f.idRangeOffOff + segCountX2
	f.glyphIdArrayLen = (length - f.glyphIdArrayOff) / 2
	return f, nil
}

func (f *cmapFormat4) lookup(cp Codepoint) (GlyphID, bool) {
	if cp > 0xFFFF {
		return 0, false
	}
	seg := f.searchSegment(uint16(cp))
	if seg < 0 {
		return 0, false
	}
	startCode := f.startCodeAt(seg)
	if uint16(cp) < startCode {
		return 0, false
	}
	idRangeOffset := f.idRangeOffsetAt(seg)
	idDelta := f.idDeltaAt(seg)

	var gid uint16
	if idRangeOffset == 0 {
		gid = uint16(int(cp) + int(idDelta))
	} else {
		index := int(idRangeOffset)/2 + int(uint16(cp)-startCode) + seg - f.segCount
		if index < 0 || index >= f.glyphIdArrayLen {
			return 0, false
		}
		gid = binary.BigEndian.Uint16(f.data[f.glyphIdArrayOff+index*2:])
		if gid == 0 {
			return 0, false
		}
		gid = uint16(int(gid) + int(idDelta))
	}
	if gid == 0 {
		return 0, false
	}
	return GlyphID(gid), true
}

func (f *cmapFormat4) searchSegment(cp uint16) int {
	lo, hi := 0, f.segCount
	for lo < hi {
		mid := (lo + hi) / 2
		if cp > f.endCodeAt(mid) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= f.segCount {
		return -1
	}
	return lo
}

func (f *cmapFormat4) endCodeAt(i int) uint16      { return binary.BigEndian.Uint16(f.data[f.endCodeOff+i*2:]) }
func (f *cmapFormat4) startCodeAt(i int) uint16    { return binary.BigEndian.Uint16(f.data[f.startCodeOff+i*2:]) }
func (f *cmapFormat4) idDeltaAt(i int) int16       { return int16(binary.BigEndian.Uint16(f.data[f.idDeltaOff+i*2:])) }
func (f *cmapFormat4) idRangeOffsetAt(i int) uint16 { return binary.BigEndian.Uint16(f.data[f.idRangeOffOff+i*2:]) }

// --- Format 6: trimmed table mapping (BMP, contiguous range) ---

type cmapFormat6 struct {
	firstCode uint16
	glyphIDs  []uint16
}

func parseCmapFormat6(data []byte, offset int) (*cmapFormat6, error) {
	if offset+10 > len(data) {
		return nil, ErrInvalidOffset
	}
	length := int(binary.BigEndian.Uint16(data[offset+2:]))
	if offset+length > len(data) {
		return nil, ErrInvalidOffset
	}
	firstCode := binary.BigEndian.Uint16(data[offset+6:])
	entryCount := int(binary.BigEndian.Uint16(data[offset+8:]))
	if offset+10+entryCount*2 > len(data) {
		return nil, ErrInvalidOffset
	}
	f := &cmapFormat6{firstCode: firstCode, glyphIDs: make([]uint16, entryCount)}
	for i := range f.glyphIDs {
		f.glyphIDs[i] = binary.BigEndian.Uint16(data[offset+10+i*2:])
	}
	return f, nil
}

func (f *cmapFormat6) lookup(cp Codepoint) (GlyphID, bool) {
	idx := int(cp) - int(f.firstCode)
	if idx < 0 || idx >= len(f.glyphIDs) {
		return 0, false
	}
	if gid := f.glyphIDs[idx]; gid != 0 {
		return GlyphID(gid), true
	}
	return 0, false
}

// --- Format 10: trimmed array, 32-bit ---
//
// Structurally format 6's big sibling: one contiguous run of codepoints
// starting at startCharCode, each holding a direct glyph ID.
type cmapFormat10 struct {
	startCharCode uint32
	glyphIDs      []uint16
}

func parseCmapFormat10(data []byte, offset int) (*cmapFormat10, error) {
	if offset+20 > len(data) {
		return nil, ErrInvalidOffset
	}
	length := binary.BigEndian.Uint32(data[offset+4:])
	if uint32(offset)+length > uint32(len(data)) {
		return nil, ErrInvalidOffset
	}
	startCharCode := binary.BigEndian.Uint32(data[offset+12:])
	numChars := int(binary.BigEndian.Uint32(data[offset+16:]))
	if offset+20+numChars*2 > len(data) {
		return nil, ErrInvalidOffset
	}
	f := &cmapFormat10{startCharCode: startCharCode, glyphIDs: make([]uint16, numChars)}
	for i := range f.glyphIDs {
		f.glyphIDs[i] = binary.BigEndian.Uint16(data[offset+20+i*2:])
	}
	return f, nil
}

func (f *cmapFormat10) lookup(cp Codepoint) (GlyphID, bool) {
	if cp < uint32(f.startCharCode) {
		return 0, false
	}
	idx := int(cp - f.startCharCode)
	if idx < 0 || idx >= len(f.glyphIDs) {
		return 0, false
	}
	if gid := f.glyphIDs[idx]; gid != 0 {
		return GlyphID(gid), true
	}
	return 0, false
}

// --- Formats 12/13: segmented coverage over the full Unicode range ---
//
// Format 12 maps each group's codepoint run onto a run of consecutive glyph
// IDs; format 13 maps the whole run onto one repeated glyph ID (used for
// things like "map every codepoint in this Unicode block to the same
// notdef-style placeholder glyph").
type cmapGroup struct {
	startCharCode uint32
	endCharCode   uint32
	startGlyphID  uint32
}

func parseCmapGroups(data []byte, offset int) ([]cmapGroup, error) {
	if offset+16 > len(data) {
		return nil, ErrInvalidOffset
	}
	length := binary.BigEndian.Uint32(data[offset+4:])
	if uint32(offset)+length > uint32(len(data)) {
		return nil, ErrInvalidOffset
	}
	numGroups := int(binary.BigEndian.Uint32(data[offset+12:]))
	if offset+16+numGroups*12 > len(data) {
		return nil, ErrInvalidOffset
	}
	groups := make([]cmapGroup, numGroups)
	off := offset + 16
	for i := range groups {
		groups[i] = cmapGroup{
			startCharCode: binary.BigEndian.Uint32(data[off:]),
			endCharCode:   binary.BigEndian.Uint32(data[off+4:]),
			startGlyphID:  binary.BigEndian.Uint32(data[off+8:]),
		}
		off += 12
	}
	return groups, nil
}

func searchGroup(groups []cmapGroup, cp Codepoint) (*cmapGroup, bool) {
	idx := sort.Search(len(groups), func(i int) bool { return groups[i].endCharCode >= cp })
	if idx >= len(groups) {
		return nil, false
	}
	g := &groups[idx]
	if cp < g.startCharCode || cp > g.endCharCode {
		return nil, false
	}
	return g, true
}

type cmapFormat12 struct{ groups []cmapGroup }

func parseCmapFormat12(data []byte, offset int) (*cmapFormat12, error) {
	groups, err := parseCmapGroups(data, offset)
	if err != nil {
		return nil, err
	}
	return &cmapFormat12{groups: groups}, nil
}

func (f *cmapFormat12) lookup(cp Codepoint) (GlyphID, bool) {
	g, ok := searchGroup(f.groups, cp)
	if !ok {
		return 0, false
	}
	gid := g.startGlyphID + (cp - g.startCharCode)
	if gid == 0 || gid > 0xFFFF {
		return 0, false
	}
	return GlyphID(gid), true
}

type cmapFormat13 struct{ groups []cmapGroup }

func parseCmapFormat13(data []byte, offset int) (*cmapFormat13, error) {
	groups, err := parseCmapGroups(data, offset)
	if err != nil {
		return nil, err
	}
	return &cmapFormat13{groups: groups}, nil
}

func (f *cmapFormat13) lookup(cp Codepoint) (GlyphID, bool) {
	g, ok := searchGroup(f.groups, cp)
	if !ok {
		return 0, false
	}
	if g.startGlyphID == 0 || g.startGlyphID > 0xFFFF {
		return 0, false
	}
	return GlyphID(g.startGlyphID), true
}

// --- Format 14: Unicode variation sequences ---

type cmapFormat14 struct {
	records []variationRecord
	data    []byte
}

type variationRecord struct {
	varSelector      uint32
	defaultUVSOff    uint32
	nonDefaultUVSOff uint32
}

func parseCmapFormat14(data []byte, offset int) (*cmapFormat14, error) {
	if offset+10 > len(data) {
		return nil, ErrInvalidOffset
	}
	if format := binary.BigEndian.Uint16(data[offset:]); format != 14 {
		return nil, ErrInvalidFormat
	}
	length := binary.BigEndian.Uint32(data[offset+2:])
	if uint32(offset)+length > uint32(len(data)) {
		return nil, ErrInvalidOffset
	}
	numRecords := int(binary.BigEndian.Uint32(data[offset+6:]))
	if offset+10+numRecords*11 > len(data) {
		return nil, ErrInvalidOffset
	}
	f := &cmapFormat14{records: make([]variationRecord, numRecords), data: data[offset:]}
	off := 10
	for i := range f.records {
		vs := uint32(data[offset+off])<<16 | uint32(data[offset+off+1])<<8 | uint32(data[offset+off+2])
		f.records[i] = variationRecord{
			varSelector:      vs,
			defaultUVSOff:    binary.BigEndian.Uint32(data[offset+off+3:]),
			nonDefaultUVSOff: binary.BigEndian.Uint32(data[offset+off+7:]),
		}
		off += 11
	}
	return f, nil
}

func (f *cmapFormat14) findRecord(vs Codepoint) (*variationRecord, bool) {
	idx := sort.Search(len(f.records), func(i int) bool { return f.records[i].varSelector >= vs })
	if idx >= len(f.records) || f.records[idx].varSelector != vs {
		return nil, false
	}
	return &f.records[idx], true
}

func (f *cmapFormat14) isDefault(cp, vs Codepoint) bool {
	rec, ok := f.findRecord(vs)
	if !ok || rec.defaultUVSOff == 0 {
		return false
	}
	offset := int(rec.defaultUVSOff)
	if offset+4 > len(f.data) {
		return false
	}
	numRanges := int(binary.BigEndian.Uint32(f.data[offset:]))
	offset += 4
	if offset+numRanges*4 > len(f.data) {
		return false
	}
	idx := sort.Search(numRanges, func(i int) bool {
		ro := offset + i*4
		start := uint32(f.data[ro])<<16 | uint32(f.data[ro+1])<<8 | uint32(f.data[ro+2])
		return start+uint32(f.data[ro+3]) >= cp
	})
	if idx >= numRanges {
		return false
	}
	ro := offset + idx*4
	start := uint32(f.data[ro])<<16 | uint32(f.data[ro+1])<<8 | uint32(f.data[ro+2])
	return cp >= start && cp <= start+uint32(f.data[ro+3])
}

func (f *cmapFormat14) lookupNonDefault(cp, vs Codepoint) (GlyphID, bool) {
	rec, ok := f.findRecord(vs)
	if !ok || rec.nonDefaultUVSOff == 0 {
		return 0, false
	}
	offset := int(rec.nonDefaultUVSOff)
	if offset+4 > len(f.data) {
		return 0, false
	}
	numMappings := int(binary.BigEndian.Uint32(f.data[offset:]))
	offset += 4
	if offset+numMappings*5 > len(f.data) {
		return 0, false
	}
	idx := sort.Search(numMappings, func(i int) bool {
		mo := offset + i*5
		uv := uint32(f.data[mo])<<16 | uint32(f.data[mo+1])<<8 | uint32(f.data[mo+2])
		return uv >= cp
	})
	if idx >= numMappings {
		return 0, false
	}
	mo := offset + idx*5
	uv := uint32(f.data[mo])<<16 | uint32(f.data[mo+1])<<8 | uint32(f.data[mo+2])
	if uv != cp {
		return 0, false
	}
	return GlyphID(binary.BigEndian.Uint16(f.data[mo+3:])), true
}

// --- Codepoint enumeration ---

// CodepointIter walks every mapped (codepoint, glyph) pair of the selected
// subtable in ascending codepoint order.
type CodepointIter interface {
	Next() bool
	Codepoint() (Codepoint, GlyphID)
}

// Codepoints returns an iterator over every codepoint the selected
// subtable maps to a nonzero glyph. A format-2 subtable yields no
// codepoints.
func (c *Cmap) Codepoints() CodepointIter {
	switch st := c.subtable.(type) {
	case *cmapFormat0:
		return &byteTableIter{glyphs: st.glyphIDs[:], base: 0, pos: -1}
	case *cmapFormat6:
		return &wordTableIter{glyphs: st.glyphIDs, base: uint32(st.firstCode), pos: -1}
	case *cmapFormat10:
		return &wordTableIter{glyphs: st.glyphIDs, base: st.startCharCode, pos: -1}
	case *cmapFormat4:
		return &segmentIter{f: st, seg: 0, cp: -1}
	case *cmapFormat12:
		return &groupIter{groups: st.groups, idx: 0, cp: -1, sameGlyph: false}
	case *cmapFormat13:
		return &groupIter{groups: st.groups, idx: 0, cp: -1, sameGlyph: true}
	}
	return &emptyCodepointIter{}
}

type emptyCodepointIter struct{}

func (emptyCodepointIter) Next() bool                     { return false }
func (emptyCodepointIter) Codepoint() (Codepoint, GlyphID) { return 0, 0 }

type byteTableIter struct {
	glyphs []byte
	base   uint32
	pos    int
	cur    GlyphID
}

func (it *byteTableIter) Next() bool {
	for it.pos++; it.pos < len(it.glyphs); it.pos++ {
		if it.glyphs[it.pos] != 0 {
			it.cur = GlyphID(it.glyphs[it.pos])
			return true
		}
	}
	return false
}
func (it *byteTableIter) Codepoint() (Codepoint, GlyphID) { return it.base + uint32(it.pos), it.cur }

type wordTableIter struct {
	glyphs []uint16
	base   uint32
	pos    int
	cur    GlyphID
}

func (it *wordTableIter) Next() bool {
	for it.pos++; it.pos < len(it.glyphs); it.pos++ {
		if it.glyphs[it.pos] != 0 {
			it.cur = GlyphID(it.glyphs[it.pos])
			return true
		}
	}
	return false
}
func (it *wordTableIter) Codepoint() (Codepoint, GlyphID) { return it.base + uint32(it.pos), it.cur }

type segmentIter struct {
	f   *cmapFormat4
	seg int
	cp  int32
	cur GlyphID
}

func (it *segmentIter) Next() bool {
	for it.seg < it.f.segCount {
		start := int32(it.f.startCodeAt(it.seg))
		end := int32(it.f.endCodeAt(it.seg))
		if start == 0xFFFF {
			it.seg++
			continue
		}
		if it.cp < start {
			it.cp = start
		}
		for it.cp <= end {
			if gid, ok := it.f.lookup(Codepoint(it.cp)); ok {
				it.cur = gid
				it.cp++
				return true
			}
			it.cp++
		}
		it.seg++
		it.cp = -1
	}
	return false
}
func (it *segmentIter) Codepoint() (Codepoint, GlyphID) { return Codepoint(it.cp - 1), it.cur }

type groupIter struct {
	groups    []cmapGroup
	idx       int
	cp        int64
	cur       GlyphID
	sameGlyph bool
}

func (it *groupIter) Next() bool {
	for it.idx < len(it.groups) {
		g := &it.groups[it.idx]
		if it.cp < int64(g.startCharCode) {
			it.cp = int64(g.startCharCode)
		}
		if it.cp <= int64(g.endCharCode) {
			if it.sameGlyph {
				it.cur = GlyphID(g.startGlyphID)
			} else {
				it.cur = GlyphID(g.startGlyphID + uint32(it.cp-int64(g.startCharCode)))
			}
			it.cp++
			return true
		}
		it.idx++
		it.cp = -1
	}
	return false
}
func (it *groupIter) Codepoint() (Codepoint, GlyphID) { return Codepoint(it.cp - 1), it.cur }
