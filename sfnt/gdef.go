package sfnt

// Glyph class values used by GDEF's GlyphClassDef and by shaping engines
// that consume it to decide which glyphs may take marks, ligate, etc.
const (
	GlyphClassUnclassified = 0
	GlyphClassBase         = 1
	GlyphClassLigature     = 2
	GlyphClassMark         = 3
	GlyphClassComponent    = 4
)

// GDEF is a parsed Glyph Definition table: glyph classification plus the
// attachment/ligature-caret/mark-set auxiliary tables that GSUB/GPOS
// lookups and text shapers consult but that carry no rules of their own.
type GDEF struct {
	versionMajor, versionMinor uint16

	glyphClassDef      *ClassDef
	attachList         *AttachList
	ligCaretList       *LigCaretList
	markAttachClassDef *ClassDef
	markGlyphSetsDef   *MarkGlyphSetsDef
	itemVarStore       *ItemVariationStore // version 1.3+, drives format-3 CaretValues
}

// AttachList records, per covered glyph, the contour point indices a
// shaping engine should treat as attachment points.
type AttachList struct {
	coverage     *Coverage
	attachPoints [][]uint16
}

// LigCaretList records, per covered ligature glyph, the caret positions
// separating its component characters.
type LigCaretList struct {
	coverage  *Coverage
	ligGlyphs []LigGlyph
}

// LigGlyph is one ligature's ordered caret positions.
type LigGlyph struct {
	caretValues []CaretValue
}

// CaretValue is a single ligature caret position, in one of three
// formats: a fixed design-unit coordinate, a contour point index, or (in
// a variable font) a coordinate with a per-instance delta resolved
// through the GDEF item variation store.
type CaretValue struct {
	format     uint16
	coordinate int16
	pointIndex uint16
	varIdx     uint32 // format 3 only
}

// MarkGlyphSetsDef is the version-1.2 table of named mark glyph sets used
// by GPOS's MarkFilteringSet lookup flag.
type MarkGlyphSetsDef struct {
	coverages []*Coverage
}

// ParseGDEF parses a GDEF table (versions 1.0 through 1.3).
func ParseGDEF(data []byte) (*GDEF, error) {
	p := NewParser(data)
	major, err1 := p.U16()
	minor, err2 := p.U16()
	if err1 != nil || err2 != nil || major != 1 || (minor != 0 && minor != 2 && minor != 3) {
		return nil, ErrInvalidFormat
	}
	glyphClassDefOff, err1 := p.U16()
	attachListOff, err2 := p.U16()
	ligCaretListOff, err3 := p.U16()
	markAttachClassDefOff, err4 := p.U16()
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, ErrInvalidTable
	}

	gdef := &GDEF{versionMajor: major, versionMinor: minor}

	var markGlyphSetsDefOff uint16
	var itemVarStoreOff uint32
	if minor >= 2 {
		if v, err := p.U16(); err == nil {
			markGlyphSetsDefOff = v
		}
	}
	if minor >= 3 {
		if v, err := p.U32(); err == nil {
			itemVarStoreOff = v
		}
	}

	if glyphClassDefOff != 0 {
		cd, err := ParseClassDef(data, int(glyphClassDefOff))
		if err != nil {
			return nil, err
		}
		gdef.glyphClassDef = cd
	}
	if attachListOff != 0 {
		al, err := parseAttachList(data, int(attachListOff))
		if err != nil {
			return nil, err
		}
		gdef.attachList = al
	}
	if ligCaretListOff != 0 {
		lcl, err := parseLigCaretList(data, int(ligCaretListOff))
		if err != nil {
			return nil, err
		}
		gdef.ligCaretList = lcl
	}
	if markAttachClassDefOff != 0 {
		cd, err := ParseClassDef(data, int(markAttachClassDefOff))
		if err != nil {
			return nil, err
		}
		gdef.markAttachClassDef = cd
	}
	if markGlyphSetsDefOff != 0 {
		mgsd, err := parseMarkGlyphSetsDef(data, int(markGlyphSetsDefOff))
		if err != nil {
			return nil, err
		}
		gdef.markGlyphSetsDef = mgsd
	}
	if itemVarStoreOff != 0 && int(itemVarStoreOff) < len(data) {
		ivs, err := parseItemVariationStore(data[itemVarStoreOff:])
		if err == nil {
			gdef.itemVarStore = ivs
		}
	}

	return gdef, nil
}

func parseAttachList(data []byte, offset int) (*AttachList, error) {
	p := NewParser(data)
	if err := p.SetOffset(offset); err != nil {
		return nil, ErrInvalidOffset
	}
	coverageOff, err1 := p.U16()
	glyphCount, err2 := p.U16()
	if err1 != nil || err2 != nil {
		return nil, ErrInvalidOffset
	}
	cov, err := ParseCoverage(data, offset+int(coverageOff))
	if err != nil {
		return nil, err
	}

	al := &AttachList{coverage: cov, attachPoints: make([][]uint16, glyphCount)}
	for i := range al.attachPoints {
		off, err := p.U16()
		if err != nil {
			return nil, ErrInvalidOffset
		}
		if off == 0 {
			continue
		}
		ap := NewParser(data)
		if err := ap.SetOffset(offset + int(off)); err != nil {
			return nil, ErrInvalidOffset
		}
		pointCount, err := ap.U16()
		if err != nil {
			return nil, ErrInvalidOffset
		}
		points := make([]uint16, pointCount)
		for j := range points {
			if points[j], err = ap.U16(); err != nil {
				return nil, ErrInvalidOffset
			}
		}
		al.attachPoints[i] = points
	}
	return al, nil
}

func parseLigCaretList(data []byte, offset int) (*LigCaretList, error) {
	p := NewParser(data)
	if err := p.SetOffset(offset); err != nil {
		return nil, ErrInvalidOffset
	}
	coverageOff, err1 := p.U16()
	ligGlyphCount, err2 := p.U16()
	if err1 != nil || err2 != nil {
		return nil, ErrInvalidOffset
	}
	cov, err := ParseCoverage(data, offset+int(coverageOff))
	if err != nil {
		return nil, err
	}

	lcl := &LigCaretList{coverage: cov, ligGlyphs: make([]LigGlyph, ligGlyphCount)}
	for i := range lcl.ligGlyphs {
		off, err := p.U16()
		if err != nil {
			return nil, ErrInvalidOffset
		}
		if off == 0 {
			continue
		}
		lgOff := offset + int(off)
		lg := NewParser(data)
		if err := lg.SetOffset(lgOff); err != nil {
			return nil, ErrInvalidOffset
		}
		caretCount, err := lg.U16()
		if err != nil {
			return nil, ErrInvalidOffset
		}
		carets := make([]CaretValue, caretCount)
		for j := range carets {
			caretOff, err := lg.U16()
			if err != nil {
				return nil, ErrInvalidOffset
			}
			cv, err := parseCaretValue(data, lgOff+int(caretOff))
			if err != nil {
				return nil, err
			}
			carets[j] = cv
		}
		lcl.ligGlyphs[i].caretValues = carets
	}
	return lcl, nil
}

func parseCaretValue(data []byte, offset int) (CaretValue, error) {
	p := NewParser(data)
	if err := p.SetOffset(offset); err != nil {
		return CaretValue{}, ErrInvalidOffset
	}
	format, err := p.U16()
	if err != nil {
		return CaretValue{}, ErrInvalidOffset
	}
	cv := CaretValue{format: format}
	switch format {
	case 1:
		v, err := p.I16()
		if err != nil {
			return CaretValue{}, ErrInvalidOffset
		}
		cv.coordinate = v
	case 2:
		v, err := p.U16()
		if err != nil {
			return CaretValue{}, ErrInvalidOffset
		}
		cv.pointIndex = v
	case 3:
		coord, err1 := p.I16()
		deviceOff, err2 := p.U16()
		if err1 != nil || err2 != nil {
			return CaretValue{}, ErrInvalidOffset
		}
		cv.coordinate = coord
		if deviceOff != 0 {
			cv.varIdx = parseVariationIndexTable(data, offset+int(deviceOff))
		}
	default:
		return CaretValue{}, ErrInvalidFormat
	}
	return cv, nil
}

// parseVariationIndexTable reads a DeltaFormat==0x8000 device table (the
// only device-table format GDEF actually uses in a variable font) into a
// packed outer<<16|inner variation index, resolved later against the
// GDEF item variation store.
func parseVariationIndexTable(data []byte, offset int) uint32 {
	p := NewParser(data)
	if err := p.SetOffset(offset); err != nil {
		return 0
	}
	outer, err1 := p.U16()
	inner, err2 := p.U16()
	format, err3 := p.U16()
	if err1 != nil || err2 != nil || err3 != nil || format != 0x8000 {
		return 0
	}
	return uint32(outer)<<16 | uint32(inner)
}

func parseMarkGlyphSetsDef(data []byte, offset int) (*MarkGlyphSetsDef, error) {
	p := NewParser(data)
	if err := p.SetOffset(offset); err != nil {
		return nil, ErrInvalidOffset
	}
	format, err := p.U16()
	if err != nil || format != 1 {
		return nil, ErrInvalidFormat
	}
	markSetCount, err := p.U16()
	if err != nil {
		return nil, ErrInvalidOffset
	}
	mgsd := &MarkGlyphSetsDef{coverages: make([]*Coverage, markSetCount)}
	for i := range mgsd.coverages {
		covOff, err := p.U32()
		if err != nil {
			return nil, ErrInvalidOffset
		}
		if covOff == 0 {
			continue
		}
		cov, err := ParseCoverage(data, offset+int(covOff))
		if err != nil {
			return nil, err
		}
		mgsd.coverages[i] = cov
	}
	return mgsd, nil
}

// Version returns the GDEF table version as (major, minor).
func (g *GDEF) Version() (uint16, uint16) { return g.versionMajor, g.versionMinor }

func (g *GDEF) HasGlyphClasses() bool { return g.glyphClassDef != nil }

// GetGlyphClass returns glyph's class, or GlyphClassUnclassified if the
// table has no GlyphClassDef or does not cover it.
func (g *GDEF) GetGlyphClass(glyph GlyphID) int {
	if g.glyphClassDef == nil {
		return GlyphClassUnclassified
	}
	return g.glyphClassDef.GetClass(glyph)
}

func (g *GDEF) IsBaseGlyph(glyph GlyphID) bool      { return g.GetGlyphClass(glyph) == GlyphClassBase }
func (g *GDEF) IsLigatureGlyph(glyph GlyphID) bool  { return g.GetGlyphClass(glyph) == GlyphClassLigature }
func (g *GDEF) IsMarkGlyph(glyph GlyphID) bool      { return g.GetGlyphClass(glyph) == GlyphClassMark }
func (g *GDEF) IsComponentGlyph(glyph GlyphID) bool { return g.GetGlyphClass(glyph) == GlyphClassComponent }

func (g *GDEF) HasMarkAttachClasses() bool { return g.markAttachClassDef != nil }

// GetMarkAttachClass returns glyph's mark attachment class, or 0 if
// undefined.
func (g *GDEF) GetMarkAttachClass(glyph GlyphID) int {
	if g.markAttachClassDef == nil {
		return 0
	}
	return g.markAttachClassDef.GetClass(glyph)
}

func (g *GDEF) HasAttachList() bool { return g.attachList != nil }

// GetAttachPoints returns glyph's attachment point indices, or nil.
func (g *GDEF) GetAttachPoints(glyph GlyphID) []uint16 {
	if g.attachList == nil {
		return nil
	}
	idx := g.attachList.coverage.GetCoverage(glyph)
	if idx == NotCovered || int(idx) >= len(g.attachList.attachPoints) {
		return nil
	}
	return g.attachList.attachPoints[idx]
}

func (g *GDEF) HasLigCaretList() bool { return g.ligCaretList != nil }

// GetLigCaretCount returns the number of carets defined for glyph, or 0.
func (g *GDEF) GetLigCaretCount(glyph GlyphID) int {
	return len(g.getLigCarets(glyph))
}

// GetLigCarets returns glyph's caret positions, or nil.
func (g *GDEF) GetLigCarets(glyph GlyphID) []CaretValue {
	return g.getLigCarets(glyph)
}

func (g *GDEF) getLigCarets(glyph GlyphID) []CaretValue {
	if g.ligCaretList == nil {
		return nil
	}
	idx := g.ligCaretList.coverage.GetCoverage(glyph)
	if idx == NotCovered || int(idx) >= len(g.ligCaretList.ligGlyphs) {
		return nil
	}
	return g.ligCaretList.ligGlyphs[idx].caretValues
}

func (g *GDEF) HasMarkGlyphSets() bool { return g.markGlyphSetsDef != nil }

func (g *GDEF) MarkGlyphSetCount() int {
	if g.markGlyphSetsDef == nil {
		return 0
	}
	return len(g.markGlyphSetsDef.coverages)
}

// IsInMarkGlyphSet reports whether glyph belongs to the mark glyph set at
// setIndex.
func (g *GDEF) IsInMarkGlyphSet(glyph GlyphID, setIndex int) bool {
	if g.markGlyphSetsDef == nil || setIndex < 0 || setIndex >= len(g.markGlyphSetsDef.coverages) {
		return false
	}
	cov := g.markGlyphSetsDef.coverages[setIndex]
	return cov != nil && cov.GetCoverage(glyph) != NotCovered
}

// Coordinate returns cv's design-unit coordinate (formats 1 and 3),
// adjusted by the GDEF item variation store's delta at coords if cv
// carries a format-3 variation index and the table declares one.
func (cv *CaretValue) Coordinate(gdef *GDEF, coords []NormalizedCoordinate) int16 {
	c := cv.coordinate
	if cv.format == 3 && gdef != nil && gdef.itemVarStore != nil && len(coords) > 0 {
		c += int16(gdef.itemVarStore.GetDelta(cv.varIdx, coords))
	}
	return c
}

func (cv *CaretValue) PointIndex() uint16 { return cv.pointIndex }
func (cv *CaretValue) Format() uint16     { return cv.format }
