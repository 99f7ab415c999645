package sfnt

// Table tags for the three bitmap/vector color-glyph formats this
// package understands: Apple's sbix (embedded whole-image strikes),
// Google/Adobe's CBDT/CBLC pair (per-glyph bitmap strikes, the color
// variant of the older EBDT/EBLC), and the OpenType SVG table.
var (
	TagSbix = MakeTag('s', 'b', 'i', 'x')
	TagCBDT = MakeTag('C', 'B', 'D', 'T')
	TagCBLC = MakeTag('C', 'B', 'L', 'C')
	TagSVG  = MakeTag('S', 'V', 'G', ' ')
)

// ImageFormat identifies the encoding of a GlyphImage's raw bytes.
type ImageFormat int

const (
	ImagePNG ImageFormat = iota
	ImageJPEG
	ImageTIFF
	ImageSVG
)

// GlyphImage is a single pre-rendered glyph image extracted from sbix or
// CBDT/CBLC. X/Y come from the sbix glyph offsets or the CBDT bearings;
// Width/Height are only known for CBDT bitmaps that record them (sbix
// images carry their own dimensions internally). SVG documents are not
// returned as a GlyphImage; Face.GlyphSVG returns them as raw bytes.
type GlyphImage struct {
	X, Y          int16
	Width, Height uint16
	PixelsPerEm   uint16
	Format        ImageFormat
	Data          []byte
}

// Sbix is a parsed sbix table: a set of per-resolution "strikes", each
// holding one raw image per glyph.
type Sbix struct {
	data        []byte
	numGlyphs   int
	strikeOffs  []uint32
}

// ParseSbix parses an sbix table.
func ParseSbix(data []byte, numGlyphs int) (*Sbix, error) {
	p := NewParser(data)
	version, err := p.U16()
	if err != nil || version != 1 {
		return nil, ErrInvalidFormat
	}
	if err := p.Skip(2); err != nil { // flags
		return nil, ErrInvalidTable
	}
	count, err := p.U32()
	if err != nil {
		return nil, ErrInvalidTable
	}
	offs := make([]uint32, count)
	for i := range offs {
		if offs[i], err = p.U32(); err != nil {
			return nil, ErrInvalidTable
		}
	}
	return &Sbix{data: data, numGlyphs: numGlyphs, strikeOffs: offs}, nil
}

// GlyphImage returns the image for glyph at the strike whose ppem best
// matches pixelsPerEm (the same "closest, preferring larger" selection
// policy sbix implementations use for scaling up rather than down), or
// ok=false if the font carries no sbix data for that glyph.
func (s *Sbix) GlyphImage(glyph GlyphID, pixelsPerEm uint16) (GlyphImage, bool) {
	if s == nil || len(s.strikeOffs) == 0 {
		return GlyphImage{}, false
	}
	strikeOff, ppem, ok := s.selectStrike(pixelsPerEm)
	if !ok {
		return GlyphImage{}, false
	}
	return s.glyphImageAt(strikeOff, ppem, glyph, 0)
}

func (s *Sbix) selectStrike(pixelsPerEm uint16) (uint32, uint16, bool) {
	var bestOff uint32
	var bestPpem uint16
	found := false
	for _, off := range s.strikeOffs {
		p := NewParser(s.data)
		if err := p.SetOffset(int(off)); err != nil {
			continue
		}
		ppem, err := p.U16()
		if err != nil {
			continue
		}
		if (pixelsPerEm <= ppem && ppem < bestPpem) || (pixelsPerEm > bestPpem && ppem > bestPpem) || !found {
			bestOff, bestPpem, found = off, ppem, true
		}
	}
	return bestOff, bestPpem, found
}

func (s *Sbix) glyphImageAt(strikeOff uint32, ppem uint16, glyph GlyphID, depth int) (GlyphImage, bool) {
	if depth == 10 {
		return GlyphImage{}, false
	}
	p := NewParser(s.data)
	if err := p.SetOffset(int(strikeOff) + 4); err != nil { // skip ppem, ppi
		return GlyphImage{}, false
	}
	total := s.numGlyphs + 1
	offsets := make([]uint32, total)
	for i := range offsets {
		v, err := p.U32()
		if err != nil {
			return GlyphImage{}, false
		}
		offsets[i] = v
	}
	if int(glyph)+1 >= len(offsets) {
		return GlyphImage{}, false
	}
	start, end := offsets[glyph], offsets[glyph+1]
	if start == end {
		return GlyphImage{}, false
	}
	rec := NewParser(s.data)
	if err := rec.SetOffset(int(strikeOff) + int(start)); err != nil {
		return GlyphImage{}, false
	}
	x, err1 := rec.I16()
	y, err2 := rec.I16()
	tag, err3 := rec.Tag()
	if err1 != nil || err2 != nil || err3 != nil {
		return GlyphImage{}, false
	}
	body, err := rec.Bytes(int(end-start) - 8)
	if err != nil {
		return GlyphImage{}, false
	}
	switch tag {
	case MakeTag('p', 'n', 'g', ' '):
		return GlyphImage{X: x, Y: y, PixelsPerEm: ppem, Format: ImagePNG, Data: body}, true
	case MakeTag('j', 'p', 'g', ' '):
		return GlyphImage{X: x, Y: y, PixelsPerEm: ppem, Format: ImageJPEG, Data: body}, true
	case MakeTag('t', 'i', 'f', 'f'):
		return GlyphImage{X: x, Y: y, PixelsPerEm: ppem, Format: ImageTIFF, Data: body}, true
	case MakeTag('d', 'u', 'p', 'e'):
		if len(body) < 2 {
			return GlyphImage{}, false
		}
		dupeGlyph := GlyphID(uint16(body[0])<<8 | uint16(body[1]))
		return s.glyphImageAt(strikeOff, ppem, dupeGlyph, depth+1)
	default:
		return GlyphImage{}, false
	}
}

// cbdtBitmapFormat is the CBDT glyph-data record layout (17, 18, or 19).
type cbdtBitmapFormat int

const (
	cbdtFormat17 cbdtBitmapFormat = 17
	cbdtFormat18 cbdtBitmapFormat = 18
	cbdtFormat19 cbdtBitmapFormat = 19
)

// ColorBitmaps is a parsed CBLC/CBDT pair: per-strike glyph bitmaps,
// selected by requested pixel size the same way sbix strikes are.
type ColorBitmaps struct {
	cblc []byte
	cbdt []byte
}

// ParseColorBitmaps parses a CBLC/CBDT table pair.
func ParseColorBitmaps(cblc, cbdt []byte) (*ColorBitmaps, error) {
	if len(cblc) < 8 {
		return nil, ErrInvalidTable
	}
	return &ColorBitmaps{cblc: cblc, cbdt: cbdt}, nil
}

// GlyphImage returns glyph's bitmap at the strike closest to pixelsPerEm.
func (c *ColorBitmaps) GlyphImage(glyph GlyphID, pixelsPerEm uint16) (GlyphImage, bool) {
	if c == nil {
		return GlyphImage{}, false
	}
	sizeTableOff, ppem, ok := c.selectSizeTable(glyph, pixelsPerEm)
	if !ok {
		return GlyphImage{}, false
	}
	format, imageOff, ok := c.resolveIndexSubtable(sizeTableOff, glyph)
	if !ok {
		return GlyphImage{}, false
	}
	return c.decodeBitmap(format, imageOff, ppem)
}

// selectSizeTable finds the BitmapSize record (48 bytes each, per the
// EBLC/CBLC spec) covering glyph, preferring the strike closest to
// pixelsPerEm.
func (c *ColorBitmaps) selectSizeTable(glyph GlyphID, pixelsPerEm uint16) (int, uint16, bool) {
	p := NewParser(c.cblc)
	if err := p.SetOffset(4); err != nil {
		return 0, 0, false
	}
	count, err := p.U32()
	if err != nil {
		return 0, 0, false
	}
	const sizeTableLen = 48
	tablesStart := p.Offset()

	best, bestPpem := -1, uint16(0)
	found := false
	for i := 0; i < int(count); i++ {
		off := tablesStart + i*sizeTableLen
		rp := NewParser(c.cblc)
		if err := rp.SetOffset(off + 40); err != nil { // jump to startGlyphIndex
			continue
		}
		startG, err1 := rp.GlyphID()
		endG, err2 := rp.GlyphID()
		ppem8, err3 := rp.U8()
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if glyph < startG || glyph > endG {
			continue
		}
		ppem := uint16(ppem8)
		if !found || (pixelsPerEm <= ppem && ppem < bestPpem) || (pixelsPerEm > bestPpem && ppem > bestPpem) {
			best, bestPpem, found = off, ppem, true
		}
	}
	if !found {
		return 0, 0, false
	}
	return best, bestPpem, true
}

// resolveIndexSubtable walks the size table's IndexSubtableArray and its
// referenced IndexSubtable (formats 1, 2, 3) to find glyph's absolute
// CBDT data offset. Formats 4/5 (sparse glyph lists) are not implemented;
// they appear only in a handful of fonts with non-contiguous strikes.
func (c *ColorBitmaps) resolveIndexSubtable(sizeTableOff int, glyph GlyphID) (cbdtBitmapFormat, int, bool) {
	p := NewParser(c.cblc)
	if err := p.SetOffset(sizeTableOff); err != nil {
		return 0, 0, false
	}
	subArrayOff, err1 := p.U32()
	if err1 != nil {
		return 0, 0, false
	}
	if err := p.Skip(4); err != nil { // indexTablesSize
		return 0, 0, false
	}
	numSubtables, err := p.U32()
	if err != nil {
		return 0, 0, false
	}

	ap := NewParser(c.cblc)
	if err := ap.SetOffset(int(subArrayOff)); err != nil {
		return 0, 0, false
	}
	var startGlyph GlyphID
	var subOff uint32
	found := false
	for i := 0; i < int(numSubtables); i++ {
		sg, err1 := ap.GlyphID()
		eg, err2 := ap.GlyphID()
		off, err3 := ap.U32()
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, 0, false
		}
		if glyph >= sg && glyph <= eg {
			startGlyph, subOff, found = sg, off, true
			break
		}
	}
	if !found {
		return 0, 0, false
	}

	sp := NewParser(c.cblc)
	if err := sp.SetOffset(int(subArrayOff) + int(subOff)); err != nil {
		return 0, 0, false
	}
	indexFormat, err1 := sp.U16()
	imageFormatCode, err2 := sp.U16()
	imageOffset, err3 := sp.U32()
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, false
	}
	format := cbdtBitmapFormat(imageFormatCode)
	if format != cbdtFormat17 && format != cbdtFormat18 && format != cbdtFormat19 {
		return 0, 0, false
	}

	diff := int(glyph) - int(startGlyph)
	switch indexFormat {
	case 1:
		if err := sp.Skip(diff * 4); err != nil {
			return 0, 0, false
		}
		off, err := sp.U32()
		if err != nil {
			return 0, 0, false
		}
		return format, int(imageOffset) + int(off), true
	case 2:
		imageSize, err := sp.U32()
		if err != nil {
			return 0, 0, false
		}
		return format, int(imageOffset) + diff*int(imageSize), true
	case 3:
		if err := sp.Skip(diff * 2); err != nil {
			return 0, 0, false
		}
		off, err := sp.U16()
		if err != nil {
			return 0, 0, false
		}
		return format, int(imageOffset) + int(off), true
	default:
		return 0, 0, false
	}
}

func (c *ColorBitmaps) decodeBitmap(format cbdtBitmapFormat, offset int, ppem uint16) (GlyphImage, bool) {
	p := NewParser(c.cbdt)
	if err := p.SetOffset(offset); err != nil {
		return GlyphImage{}, false
	}
	switch format {
	case cbdtFormat17:
		height, err1 := p.U8()
		width, err2 := p.U8()
		bearingX, err3 := p.U8()
		bearingY, err4 := p.U8()
		if err := p.Skip(1); err != nil { // advance
			return GlyphImage{}, false
		}
		dataLen, err5 := p.U32()
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return GlyphImage{}, false
		}
		body, err := p.Bytes(int(dataLen))
		if err != nil {
			return GlyphImage{}, false
		}
		return GlyphImage{
			X: int16(int8(bearingX)), Y: int16(int8(bearingY)) - int16(height),
			Width: uint16(width), Height: uint16(height), PixelsPerEm: ppem,
			Format: ImagePNG, Data: body,
		}, true
	case cbdtFormat18:
		height, err1 := p.U8()
		width, err2 := p.U8()
		bearingX, err3 := p.U8()
		bearingY, err4 := p.U8()
		if err := p.Skip(4); err != nil { // horAdvance, verBearingX/Y, verAdvance
			return GlyphImage{}, false
		}
		dataLen, err5 := p.U32()
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return GlyphImage{}, false
		}
		body, err := p.Bytes(int(dataLen))
		if err != nil {
			return GlyphImage{}, false
		}
		return GlyphImage{
			X: int16(int8(bearingX)), Y: int16(int8(bearingY)) - int16(height),
			Width: uint16(width), Height: uint16(height), PixelsPerEm: ppem,
			Format: ImagePNG, Data: body,
		}, true
	case cbdtFormat19:
		dataLen, err := p.U32()
		if err != nil {
			return GlyphImage{}, false
		}
		body, err := p.Bytes(int(dataLen))
		if err != nil {
			return GlyphImage{}, false
		}
		return GlyphImage{PixelsPerEm: ppem, Format: ImagePNG, Data: body}, true
	default:
		return GlyphImage{}, false
	}
}

// SvgTable is a parsed OpenType SVG table: a set of glyph-ID ranges each
// pointing at a (possibly gzip-compressed, left undecompressed here) SVG
// document.
type SvgTable struct {
	data        []byte
	docListOff  int
}

// ParseSVG parses an SVG table.
func ParseSVG(data []byte) (*SvgTable, error) {
	p := NewParser(data)
	if err := p.Skip(2); err != nil { // version
		return nil, ErrInvalidTable
	}
	off, err := p.U32()
	if err != nil {
		return nil, ErrInvalidTable
	}
	return &SvgTable{data: data, docListOff: int(off)}, nil
}

// GlyphDocument returns the raw SVG document bytes covering glyph, or
// ok=false if no record covers it. The returned bytes may be gzip
// compressed per the SVG table spec; decompression is left to the caller.
func (s *SvgTable) GlyphDocument(glyph GlyphID) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	p := NewParser(s.data)
	if err := p.SetOffset(s.docListOff); err != nil {
		return nil, false
	}
	count, err := p.U16()
	if err != nil {
		return nil, false
	}
	for i := 0; i < int(count); i++ {
		startG, err1 := p.GlyphID()
		endG, err2 := p.GlyphID()
		docOff, err3 := p.U32()
		docLen, err4 := p.U32()
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, false
		}
		if glyph < startG || glyph > endG {
			continue
		}
		dp := NewParser(s.data)
		if err := dp.SetOffset(s.docListOff + int(docOff)); err != nil {
			return nil, false
		}
		body, err := dp.Bytes(int(docLen))
		if err != nil {
			return nil, false
		}
		return body, true
	}
	return nil, false
}
