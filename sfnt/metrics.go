package sfnt

import "time"

// FontExtents contains font-wide extent values.
// This matches HarfBuzz's hb_font_extents_t.
type FontExtents struct {
	Ascender  int16 // Typographic ascender
	Descender int16 // Typographic descender (usually negative)
	LineGap   int16 // Line spacing gap
}

// GlyphExtents contains glyph extent values.
type GlyphExtents struct {
	XBearing int16 // Left side of glyph from origin
	YBearing int16 // Top side of glyph from origin
	Width    int16 // Width of glyph
	Height   int16 // Height of glyph (usually negative)
}

// Head represents the font header table.
type Head struct {
	FontRevision       Fixed
	CheckSumAdjustment uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            time.Time
	Modified           time.Time
	XMin               int16
	YMin               int16
	XMax               int16
	YMax               int16
	MacStyle           uint16
	LowestRecPPEM      uint16
	FontDirectionHint  int16
	IndexToLocFormat   int16
	GlyphDataFormat    int16
}

// ParseHead parses the head table.
func ParseHead(data []byte) (*Head, error) {
	p := NewParser(data)
	if _, err := p.U32(); err != nil { // version, always 1.0
		return nil, ErrInvalidTable
	}
	revision, err := p.Fixed()
	if err != nil {
		return nil, ErrInvalidTable
	}
	checksum, err := p.U32()
	if err != nil {
		return nil, ErrInvalidTable
	}
	magic, err := p.U32()
	if err != nil || magic != 0x5F0F3CF5 {
		return nil, ErrInvalidTable
	}
	flags, err1 := p.U16()
	upem, err2 := p.U16()
	created, err3 := p.LongDateTime()
	modified, err4 := p.LongDateTime()
	xMin, err5 := p.I16()
	yMin, err6 := p.I16()
	xMax, err7 := p.I16()
	yMax, err8 := p.I16()
	macStyle, err9 := p.U16()
	lowestPPEM, err10 := p.U16()
	dirHint, err11 := p.I16()
	locFormat, err12 := p.I16()
	glyphFormat, err13 := p.I16()
	for _, e := range []error{err1, err2, err3, err4, err5, err6, err7, err8, err9, err10, err11, err12, err13} {
		if e != nil {
			return nil, ErrInvalidTable
		}
	}

	return &Head{
		FontRevision:       revision,
		CheckSumAdjustment: checksum,
		Flags:              flags,
		UnitsPerEm:         upem,
		Created:            sfntEpoch.Add(time.Duration(created) * time.Second),
		Modified:           sfntEpoch.Add(time.Duration(modified) * time.Second),
		XMin:               xMin,
		YMin:               yMin,
		XMax:               xMax,
		YMax:               yMax,
		MacStyle:           macStyle,
		LowestRecPPEM:      lowestPPEM,
		FontDirectionHint:  dirHint,
		IndexToLocFormat:   locFormat,
		GlyphDataFormat:    glyphFormat,
	}, nil
}

// OS2 represents the OS/2 table.
type OS2 struct {
	Version             uint16
	XAvgCharWidth       int16
	UsWeightClass       uint16
	UsWidthClass        uint16
	FsType              uint16
	YSubscriptXSize     int16
	YSubscriptYSize     int16
	YSubscriptXOffset   int16
	YSubscriptYOffset   int16
	YSuperscriptXSize   int16
	YSuperscriptYSize   int16
	YSuperscriptXOffset int16
	YSuperscriptYOffset int16
	YStrikeoutSize      int16
	YStrikeoutPosition  int16
	SFamilyClass        int16
	Panose              [10]byte
	UlUnicodeRange1     uint32
	UlUnicodeRange2     uint32
	UlUnicodeRange3     uint32
	UlUnicodeRange4     uint32
	AchVendID           [4]byte
	FsSelection         uint16
	UsFirstCharIndex    uint16
	UsLastCharIndex     uint16
	STypoAscender       int16
	STypoDescender      int16
	STypoLineGap        int16
	UsWinAscent         uint16
	UsWinDescent        uint16
	// Version 1+
	UlCodePageRange1 uint32
	UlCodePageRange2 uint32
	// Version 2+
	SxHeight      int16
	SCapHeight    int16
	UsDefaultChar uint16
	UsBreakChar   uint16
	UsMaxContext  uint16
}

// ParseOS2 parses the OS/2 table, reading the version-1 and version-2+
// tails only when the table is long enough to carry them.
func ParseOS2(data []byte) (*OS2, error) {
	if len(data) < 78 {
		return nil, ErrInvalidTable
	}
	p := NewParser(data)
	o := &OS2{}

	var err error
	read16 := func(dst *uint16) { if err == nil { *dst, err = p.U16() } }
	readI16 := func(dst *int16) { if err == nil { v, e := p.I16(); *dst, err = v, e } }

	read16(&o.Version)
	readI16(&o.XAvgCharWidth)
	read16(&o.UsWeightClass)
	read16(&o.UsWidthClass)
	read16(&o.FsType)
	readI16(&o.YSubscriptXSize)
	readI16(&o.YSubscriptYSize)
	readI16(&o.YSubscriptXOffset)
	readI16(&o.YSubscriptYOffset)
	readI16(&o.YSuperscriptXSize)
	readI16(&o.YSuperscriptYSize)
	readI16(&o.YSuperscriptXOffset)
	readI16(&o.YSuperscriptYOffset)
	readI16(&o.YStrikeoutSize)
	readI16(&o.YStrikeoutPosition)
	readI16(&o.SFamilyClass)
	if err != nil {
		return nil, ErrInvalidTable
	}
	panose, err := p.Bytes(10)
	if err != nil {
		return nil, ErrInvalidTable
	}
	copy(o.Panose[:], panose)
	o.UlUnicodeRange1, _ = p.U32()
	o.UlUnicodeRange2, _ = p.U32()
	o.UlUnicodeRange3, _ = p.U32()
	o.UlUnicodeRange4, _ = p.U32()
	vendID, err := p.Bytes(4)
	if err != nil {
		return nil, ErrInvalidTable
	}
	copy(o.AchVendID[:], vendID)

	read16(&o.FsSelection)
	read16(&o.UsFirstCharIndex)
	read16(&o.UsLastCharIndex)
	readI16(&o.STypoAscender)
	readI16(&o.STypoDescender)
	readI16(&o.STypoLineGap)
	read16(&o.UsWinAscent)
	read16(&o.UsWinDescent)
	if err != nil {
		return nil, ErrInvalidTable
	}

	if o.Version >= 1 && p.Remaining() >= 8 {
		o.UlCodePageRange1, _ = p.U32()
		o.UlCodePageRange2, _ = p.U32()
	}
	if o.Version >= 2 && p.Remaining() >= 10 {
		readI16(&o.SxHeight)
		readI16(&o.SCapHeight)
		read16(&o.UsDefaultChar)
		read16(&o.UsBreakChar)
		read16(&o.UsMaxContext)
	}

	return o, nil
}

