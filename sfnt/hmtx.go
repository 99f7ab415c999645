package sfnt

// longMetricsTable is the shared layout behind both hmtx and vmtx: N
// (advance, side-bearing) pairs for the first N glyphs, then a trailing
// side-bearing-only array for glyphs that all share the last advance.
type longMetricsTable struct {
	advances      []uint16
	bearings      []int16
	extraBearings []int16
}

func parseLongMetricsTable(data []byte, numMetrics, numGlyphs int) (longMetricsTable, error) {
	if numMetrics <= 0 || numMetrics > numGlyphs {
		return longMetricsTable{}, ErrInvalidTable
	}
	need := numMetrics*4 + (numGlyphs-numMetrics)*2
	if len(data) < need {
		return longMetricsTable{}, ErrInvalidTable
	}

	p := NewParser(data)
	t := longMetricsTable{
		advances: make([]uint16, numMetrics),
		bearings: make([]int16, numMetrics),
	}
	for i := range t.advances {
		adv, err1 := p.U16()
		lsb, err2 := p.I16()
		if err1 != nil || err2 != nil {
			return longMetricsTable{}, ErrInvalidTable
		}
		t.advances[i] = adv
		t.bearings[i] = lsb
	}
	t.extraBearings = make([]int16, numGlyphs-numMetrics)
	for i := range t.extraBearings {
		v, err := p.I16()
		if err != nil {
			return longMetricsTable{}, ErrInvalidTable
		}
		t.extraBearings[i] = v
	}
	return t, nil
}

func (t *longMetricsTable) advance(glyph GlyphID) uint16 {
	if int(glyph) < len(t.advances) {
		return t.advances[glyph]
	}
	if len(t.advances) == 0 {
		return 0
	}
	return t.advances[len(t.advances)-1]
}

func (t *longMetricsTable) bearing(glyph GlyphID) int16 {
	if int(glyph) < len(t.bearings) {
		return t.bearings[glyph]
	}
	idx := int(glyph) - len(t.bearings)
	if idx >= 0 && idx < len(t.extraBearings) {
		return t.extraBearings[idx]
	}
	return 0
}

// Hmtx is a parsed hmtx table: per-glyph advance width and left side
// bearing.
type Hmtx struct {
	table longMetricsTable
}

// ParseHmtx parses hmtx given numberOfHMetrics (from hhea) and numGlyphs
// (from maxp).
func ParseHmtx(data []byte, numberOfHMetrics, numGlyphs int) (*Hmtx, error) {
	t, err := parseLongMetricsTable(data, numberOfHMetrics, numGlyphs)
	if err != nil {
		return nil, err
	}
	return &Hmtx{table: t}, nil
}

func (h *Hmtx) GetAdvanceWidth(glyph GlyphID) uint16 { return h.table.advance(glyph) }
func (h *Hmtx) GetLsb(glyph GlyphID) int16           { return h.table.bearing(glyph) }

func (h *Hmtx) GetMetrics(glyph GlyphID) (advanceWidth uint16, lsb int16) {
	return h.GetAdvanceWidth(glyph), h.GetLsb(glyph)
}

// Hhea represents the horizontal header table.
type Hhea struct {
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	MetricDataFormat    int16
	NumberOfHMetrics    uint16
}

// ParseHhea parses the hhea (horizontal header) table.
func ParseHhea(data []byte) (*Hhea, error) {
	if len(data) < 36 {
		return nil, ErrInvalidTable
	}
	p := NewParser(data)
	if _, err := p.U32(); err != nil { // version
		return nil, ErrInvalidTable
	}
	var h Hhea
	var err error
	rd := func(dst *int16) {
		if err == nil {
			*dst, err = p.I16()
		}
	}
	rd(&h.Ascender)
	rd(&h.Descender)
	rd(&h.LineGap)
	if err == nil {
		h.AdvanceWidthMax, err = p.U16()
	}
	rd(&h.MinLeftSideBearing)
	rd(&h.MinRightSideBearing)
	rd(&h.XMaxExtent)
	rd(&h.CaretSlopeRise)
	rd(&h.CaretSlopeRun)
	rd(&h.CaretOffset)
	if err == nil {
		err = p.Skip(8) // reserved
	}
	rd(&h.MetricDataFormat)
	if err == nil {
		h.NumberOfHMetrics, err = p.U16()
	}
	if err != nil {
		return nil, ErrInvalidTable
	}
	return &h, nil
}

// ParseHmtxFromFont parses hmtx from a font, reading hhea and maxp for the
// numberOfHMetrics/numGlyphs it needs.
func ParseHmtxFromFont(font *Font) (*Hmtx, error) {
	hheaData, err := font.TableData(TagHhea)
	if err != nil {
		return nil, err
	}
	hhea, err := ParseHhea(hheaData)
	if err != nil {
		return nil, err
	}
	numGlyphs := font.NumGlyphs()
	if numGlyphs == 0 {
		return nil, ErrInvalidTable
	}
	hmtxData, err := font.TableData(TagHmtx)
	if err != nil {
		return nil, err
	}
	return ParseHmtx(hmtxData, int(hhea.NumberOfHMetrics), numGlyphs)
}
