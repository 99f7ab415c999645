package sfnt

// TagVhea and TagVmtx are the vertical-metrics counterparts of hhea/hmtx.
var (
	TagVhea = MakeTag('v', 'h', 'e', 'a')
	TagVmtx = MakeTag('v', 'm', 't', 'x')
	TagVorg = MakeTag('V', 'O', 'R', 'G')
)

// Vhea is the vertical header table: the same shape as Hhea, rotated 90
// degrees, for fonts that set advance heights independently of line
// height (vertical Japanese/Chinese/Korean text, mostly).
type Vhea struct {
	Ascent              int16
	Descent              int16
	LineGap              int16
	AdvanceHeightMax     uint16
	MinTopSideBearing    int16
	MinBottomSideBearing int16
	YMaxExtent           int16
	CaretSlopeRise       int16
	CaretSlopeRun        int16
	CaretOffset          int16
	MetricDataFormat     int16
	NumberOfVMetrics     uint16
}

// ParseVhea parses a vhea table.
func ParseVhea(data []byte) (*Vhea, error) {
	if len(data) < 36 {
		return nil, ErrInvalidTable
	}
	p := NewParser(data)
	if _, err := p.U32(); err != nil {
		return nil, ErrInvalidTable
	}
	var v Vhea
	var err error
	rd := func(dst *int16) {
		if err == nil {
			*dst, err = p.I16()
		}
	}
	rd(&v.Ascent)
	rd(&v.Descent)
	rd(&v.LineGap)
	if err == nil {
		v.AdvanceHeightMax, err = p.U16()
	}
	rd(&v.MinTopSideBearing)
	rd(&v.MinBottomSideBearing)
	rd(&v.YMaxExtent)
	rd(&v.CaretSlopeRise)
	rd(&v.CaretSlopeRun)
	rd(&v.CaretOffset)
	if err == nil {
		err = p.Skip(8)
	}
	rd(&v.MetricDataFormat)
	if err == nil {
		v.NumberOfVMetrics, err = p.U16()
	}
	if err != nil {
		return nil, ErrInvalidTable
	}
	return &v, nil
}

// Vmtx is a parsed vmtx table: per-glyph advance height and top side
// bearing, laid out exactly like hmtx with height standing in for width.
type Vmtx struct {
	table longMetricsTable
}

// ParseVmtx parses vmtx given numberOfVMetrics (from vhea) and numGlyphs
// (from maxp).
func ParseVmtx(data []byte, numberOfVMetrics, numGlyphs int) (*Vmtx, error) {
	t, err := parseLongMetricsTable(data, numberOfVMetrics, numGlyphs)
	if err != nil {
		return nil, err
	}
	return &Vmtx{table: t}, nil
}

func (v *Vmtx) GetAdvanceHeight(glyph GlyphID) uint16 { return v.table.advance(glyph) }
func (v *Vmtx) GetTsb(glyph GlyphID) int16            { return v.table.bearing(glyph) }

// VorgTable is a parsed VORG table: the default vertical origin for
// glyphs, plus exceptions for individual glyphs that differ from it —
// needed to position glyphs in vertical text when vmtx and glyf/CFF
// bounding boxes alone don't pin down the baseline.
type VorgTable struct {
	defaultVertOriginY int16
	exceptions         map[GlyphID]int16
}

// ParseVorg parses a VORG table.
func ParseVorg(data []byte) (*VorgTable, error) {
	p := NewParser(data)
	major, err1 := p.U16()
	minor, err2 := p.U16()
	if err1 != nil || err2 != nil || major != 1 {
		return nil, ErrInvalidFormat
	}
	_ = minor
	defaultY, err := p.I16()
	if err != nil {
		return nil, ErrInvalidTable
	}
	count, err := p.U16()
	if err != nil {
		return nil, ErrInvalidTable
	}
	t := &VorgTable{defaultVertOriginY: defaultY, exceptions: make(map[GlyphID]int16, count)}
	for i := 0; i < int(count); i++ {
		gid, err1 := p.GlyphID()
		y, err2 := p.I16()
		if err1 != nil || err2 != nil {
			return nil, ErrInvalidTable
		}
		t.exceptions[gid] = y
	}
	return t, nil
}

// VertOriginY returns the Y coordinate of glyph's vertical origin.
func (t *VorgTable) VertOriginY(glyph GlyphID) int16 {
	if t == nil {
		return 0
	}
	if y, ok := t.exceptions[glyph]; ok {
		return y
	}
	return t.defaultVertOriginY
}
