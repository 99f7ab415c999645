package sfnt

import "io"

// Face is a fully parsed font: the sfnt table directory plus every table
// this package understands, decoded once and cached. Queries that depend
// on the current point in the variation design space (advances, outlines,
// several OS/2-derived metrics) are resolved through the coordinates set
// by SetVariations.
type Face struct {
	Font *Font

	head *Head
	hhea *Hhea
	hmtx *Hmtx
	vhea *Vhea
	vmtx *Vmtx
	vorg *VorgTable
	os2  *OS2
	post *Post
	name *Name
	cmap *Cmap
	gdef *GDEF
	kern *Kern

	sbix   *Sbix
	bitmap *ColorBitmaps
	svg    *SvgTable

	fvar *Fvar
	avar *Avar
	gvar *Gvar
	hvar *Hvar
	vvar *Vvar
	mvar *Mvar

	loca *Loca
	glyf *Glyf
	cff  *CFF

	upem   uint16
	isCFF  bool
	coords []NormalizedCoordinate
}

// NewFace builds a Face from an already-parsed Font, decoding every table
// it recognizes. Optional tables that are absent or fail to parse are
// left nil rather than causing NewFace to fail; only a missing/malformed
// head is fatal, since every other query in this package depends on
// UnitsPerEm.
func NewFace(font *Font) (*Face, error) {
	f := &Face{Font: font}

	headData, err := font.TableData(TagHead)
	if err != nil {
		return nil, newFaceError(MalformedFont, "missing head table")
	}
	f.head, err = ParseHead(headData)
	if err != nil {
		return nil, newFaceError(MalformedFont, "invalid head table")
	}
	f.upem = f.head.UnitsPerEm
	if f.upem == 0 {
		f.upem = 1000
	}

	if data, err := font.TableData(TagHhea); err == nil {
		f.hhea, _ = ParseHhea(data)
	}
	if f.hhea != nil {
		if data, err := font.TableData(TagHmtx); err == nil {
			f.hmtx, _ = ParseHmtx(data, int(f.hhea.NumberOfHMetrics), font.NumGlyphs())
		}
	}
	if data, err := font.TableData(TagVhea); err == nil {
		f.vhea, _ = ParseVhea(data)
	}
	if f.vhea != nil {
		if data, err := font.TableData(TagVmtx); err == nil {
			f.vmtx, _ = ParseVmtx(data, int(f.vhea.NumberOfVMetrics), font.NumGlyphs())
		}
	}
	if data, err := font.TableData(TagVorg); err == nil {
		f.vorg, _ = ParseVorg(data)
	}
	if data, err := font.TableData(TagOS2); err == nil {
		f.os2, _ = ParseOS2(data)
	}
	if data, err := font.TableData(TagPost); err == nil {
		f.post, _ = ParsePost(data)
	}
	if data, err := font.TableData(TagName); err == nil {
		f.name, _ = ParseName(data)
	}
	if data, err := font.TableData(TagCmap); err == nil {
		f.cmap, _ = ParseCmap(data)
	}
	if data, err := font.TableData(TagGDEF); err == nil {
		f.gdef, _ = ParseGDEF(data)
	}
	if data, err := font.TableData(TagKern); err == nil {
		f.kern, _ = ParseKern(data)
	}
	if data, err := font.TableData(TagSbix); err == nil {
		f.sbix, _ = ParseSbix(data, font.NumGlyphs())
	}
	if cblcData, err := font.TableData(TagCBLC); err == nil {
		cbdtData, _ := font.TableData(TagCBDT)
		f.bitmap, _ = ParseColorBitmaps(cblcData, cbdtData)
	}
	if data, err := font.TableData(TagSVG); err == nil {
		f.svg, _ = ParseSVG(data)
	}

	f.isCFF = font.HasTable(TagCFF) || font.HasTable(TagCFF2)
	if font.HasTable(TagCFF2) {
		if data, err := font.TableData(TagCFF2); err == nil {
			f.cff, _ = ParseCFF2(data)
		}
	} else if f.isCFF {
		if data, err := font.TableData(TagCFF); err == nil {
			f.cff, _ = ParseCFF(data)
		}
	} else if f.head.IndexToLocFormat >= 0 {
		if locaData, err := font.TableData(TagLoca); err == nil {
			f.loca, _ = ParseLoca(locaData, font.NumGlyphs(), f.head.IndexToLocFormat)
		}
		if f.loca != nil {
			if glyfData, err := font.TableData(TagGlyf); err == nil {
				f.glyf, _ = ParseGlyf(glyfData, f.loca)
			}
		}
	}

	if data, err := font.TableData(TagFvar); err == nil {
		f.fvar, _ = ParseFvar(data)
	}
	if data, err := font.TableData(TagAvar); err == nil {
		f.avar, _ = ParseAvar(data)
	}
	if data, err := font.TableData(TagGvar); err == nil {
		f.gvar, _ = ParseGvar(data)
	}
	if data, err := font.TableData(TagHvar); err == nil {
		f.hvar, _ = ParseHvar(data)
	}
	if data, err := font.TableData(TagVvar); err == nil {
		f.vvar, _ = ParseVvar(data)
	}
	if data, err := font.TableData(TagMvar); err == nil {
		f.mvar, _ = ParseMvar(data)
	}

	return f, nil
}

// LoadFace reads a font from r and builds a Face for the face at index
// (0 for anything but a collection).
func LoadFace(r io.Reader, index int) (*Face, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return LoadFaceFromData(data, index)
}

// LoadFaceFromData builds a Face directly from font file bytes.
func LoadFaceFromData(data []byte, index int) (*Face, error) {
	font, err := ParseFont(data, index)
	if err != nil {
		return nil, err
	}
	return NewFace(font)
}

func (f *Face) Upem() uint16  { return f.upem }
func (f *Face) IsCFF() bool   { return f.isCFF }
func (f *Face) Cmap() *Cmap   { return f.cmap }
func (f *Face) GDEF() *GDEF   { return f.gdef }

// Kerning returns the legacy kern table's horizontal adjustment for an
// ordered glyph pair, in font design units, or 0 if the font carries no
// kern table or has no entry for the pair.
func (f *Face) Kerning(left, right GlyphID) int16 { return f.kern.Kerning(left, right) }

// GlyphImage returns glyph's pre-rendered color image at the strike
// closest to pixelsPerEm, checking sbix first, then CBDT/CBLC, in that
// order (the order most renderers probe when a font could carry either).
// SVG documents are returned separately, via GlyphSVG, since they carry
// no bitmap dimensions to report.
func (f *Face) GlyphImage(glyph GlyphID, pixelsPerEm uint16) (GlyphImage, bool) {
	if f.sbix != nil {
		if img, ok := f.sbix.GlyphImage(glyph, pixelsPerEm); ok {
			return img, ok
		}
	}
	if f.bitmap != nil {
		if img, ok := f.bitmap.GlyphImage(glyph, pixelsPerEm); ok {
			return img, ok
		}
	}
	return GlyphImage{}, false
}

// GlyphSVG returns glyph's raw SVG document, if the font carries an SVG
// table covering it. The bytes may be gzip compressed per the OpenType
// SVG table spec; decompression is left to the caller.
func (f *Face) GlyphSVG(glyph GlyphID) ([]byte, bool) {
	if f.svg == nil {
		return nil, false
	}
	return f.svg.GlyphDocument(glyph)
}

func (f *Face) Fvar() *Fvar   { return f.fvar }
func (f *Face) HasVariations() bool { return f.fvar.HasData() }

// SetVariations normalizes user-space axis settings, applies the avar
// remapping (if the font carries one), and caches the resulting
// coordinates for subsequent advance/outline/metric queries. Passing no
// variations resets the face to its default instance.
func (f *Face) SetVariations(variations []Variation) {
	if !f.fvar.HasData() {
		f.coords = nil
		return
	}
	coords := f.fvar.NormalizeVariations(variations)
	if f.avar.HasData() {
		coords = f.avar.MapCoords(coords)
	}
	f.coords = coords
}

// VariationCoords returns the normalized coordinates currently in effect,
// one per axis in font order, or nil if the face has no fvar table or no
// variations have been set.
func (f *Face) VariationCoords() []NormalizedCoordinate { return f.coords }

// VariationAxes returns the font's declared variation axes, or nil for a
// static font.
func (f *Face) VariationAxes() []AxisInfo {
	if f.fvar == nil {
		return nil
	}
	return f.fvar.AxisInfos()
}

// FindVariationAxis looks up a variation axis by tag.
func (f *Face) FindVariationAxis(tag Tag) (AxisInfo, bool) {
	if f.fvar == nil {
		return AxisInfo{}, false
	}
	return f.fvar.FindAxis(tag)
}

// NamedInstances returns the font's declared named instances, or nil for
// a static font.
func (f *Face) NamedInstances() []NamedInstance {
	if f.fvar == nil {
		return nil
	}
	return f.fvar.NamedInstances()
}

// GetHExtents returns the font-wide horizontal typographic extents.
func (f *Face) GetHExtents() FontExtents {
	var ext FontExtents
	if f.hhea != nil {
		ext.Ascender = f.hhea.Ascender
		ext.Descender = f.hhea.Descender
		ext.LineGap = f.hhea.LineGap
	}
	return ext
}

// HorizontalAdvance returns glyph's advance width in font units at the
// face's current variation instance.
func (f *Face) HorizontalAdvance(glyph GlyphID) float32 {
	var advance float32
	if f.hmtx != nil {
		advance = float32(f.hmtx.GetAdvanceWidth(glyph))
	} else {
		advance = float32(f.upem)
	}
	if f.hvar != nil && len(f.coords) > 0 {
		advance += f.hvar.GetAdvanceDelta(glyph, f.coords)
	}
	return advance
}

// VerticalAdvance returns glyph's advance height in font units at the
// face's current variation instance.
func (f *Face) VerticalAdvance(glyph GlyphID) float32 {
	var advance float32
	if f.vmtx != nil {
		advance = float32(f.vmtx.GetAdvanceHeight(glyph))
	} else {
		advance = float32(f.upem)
	}
	if f.vvar != nil && len(f.coords) > 0 {
		advance += f.vvar.GetAdvanceDelta(glyph, f.coords)
	}
	return advance
}

// VertOrigin returns the Y coordinate of glyph's vertical origin.
func (f *Face) VertOrigin(glyph GlyphID) int16 {
	return f.vorg.VertOriginY(glyph)
}

// mvarDelta returns the MVAR delta for tag at the current instance, or 0
// if there is no MVAR table or no variations are set.
func (f *Face) mvarDelta(tag Tag) float32 {
	if f.mvar == nil || len(f.coords) == 0 {
		return 0
	}
	return f.mvar.GetDelta(tag, f.coords)
}

// Ascender returns the typographic ascender in font units, including any
// MVAR delta at the current instance.
func (f *Face) Ascender() int16 {
	base := int16(800)
	if f.hhea != nil {
		base = f.hhea.Ascender
	}
	return base + int16(f.mvarDelta(MvarTagHorizontalAscender))
}

// Descender returns the typographic descender in font units (usually
// negative), including any MVAR delta at the current instance.
func (f *Face) Descender() int16 {
	base := int16(-200)
	if f.hhea != nil {
		base = f.hhea.Descender
	}
	return base + int16(f.mvarDelta(MvarTagHorizontalDescender))
}

// LineGap returns the recommended line gap in font units, including any
// MVAR delta at the current instance.
func (f *Face) LineGap() int16 {
	var base int16
	if f.hhea != nil {
		base = f.hhea.LineGap
	}
	return base + int16(f.mvarDelta(MvarTagHorizontalLineGap))
}

// CapHeight returns the cap height in font units.
func (f *Face) CapHeight() int16 {
	if f.os2 != nil && f.os2.SCapHeight != 0 {
		return f.os2.SCapHeight
	}
	return f.Ascender()
}

// XHeight returns the x-height in font units.
func (f *Face) XHeight() int16 {
	if f.os2 != nil && f.os2.SxHeight != 0 {
		return f.os2.SxHeight
	}
	return f.Ascender() / 2
}

// BBox returns the font-wide bounding box declared in head.
func (f *Face) BBox() Rect {
	if f.head == nil {
		return Rect{0, -200, 1000, 800}
	}
	return Rect{
		XMin: float32(f.head.XMin), YMin: float32(f.head.YMin),
		XMax: float32(f.head.XMax), YMax: float32(f.head.YMax),
	}
}

// UnderlinePosition returns the recommended underline position in font
// units, including any MVAR delta.
func (f *Face) UnderlinePosition() int16 {
	var base int16
	if f.post != nil {
		base = f.post.UnderlinePosition
	}
	return base + int16(f.mvarDelta(MvarTagUnderlineOffset))
}

// UnderlineThickness returns the recommended underline thickness in font
// units, including any MVAR delta.
func (f *Face) UnderlineThickness() int16 {
	var base int16
	if f.post != nil {
		base = f.post.UnderlineThickness
	}
	return base + int16(f.mvarDelta(MvarTagUnderlineSize))
}

// IsFixedPitch reports whether post declares the font monospaced.
func (f *Face) IsFixedPitch() bool {
	return f.post != nil && f.post.IsFixedPitch != 0
}

// IsItalic reports whether head.macStyle's italic bit is set.
func (f *Face) IsItalic() bool {
	return f.head != nil && f.head.MacStyle&2 != 0
}

// ItalicAngle returns the italic angle in degrees.
func (f *Face) ItalicAngle() float64 {
	if f.post == nil {
		return 0
	}
	return f.post.ItalicAngleDegrees()
}

// WeightClass returns the OS/2 usWeightClass (100-900).
func (f *Face) WeightClass() uint16 {
	if f.os2 != nil {
		return f.os2.UsWeightClass
	}
	return 400
}

// PostscriptName returns the font's PostScript name.
func (f *Face) PostscriptName() string {
	if f.name != nil {
		if n := f.name.PostScriptName(); n != "" {
			return n
		}
	}
	if f.cff != nil {
		return f.cff.GetString(0)
	}
	return ""
}

// FamilyName returns the font's family name.
func (f *Face) FamilyName() string {
	if f.name != nil {
		return f.name.FamilyName()
	}
	return ""
}

// GlyphName returns glyph's PostScript name, from the CFF charset for a
// CFF font or from a version-2.0 post table for a TrueType font.
func (f *Face) GlyphName(glyph GlyphID) string {
	if f.cff != nil {
		return f.cff.GlyphName(glyph)
	}
	if f.post != nil {
		return f.post.GlyphName(glyph)
	}
	return ""
}

// OutlineGlyph draws glyph's outline into b, at the face's current
// variation instance, dispatching to the TrueType (glyf/gvar) or CFF
// decoder depending on which outline format the font carries.
func (f *Face) OutlineGlyph(glyph GlyphID, b OutlineBuilder) (Rect, bool) {
	if f.cff != nil {
		return f.cff.OutlineGlyphVar(glyph, f.coords, b)
	}
	if f.glyf != nil {
		advance := func(g GlyphID) int16 {
			if f.hmtx != nil {
				return int16(f.hmtx.GetAdvanceWidth(g))
			}
			return 0
		}
		lsb := func(g GlyphID) int16 {
			if f.hmtx != nil {
				return f.hmtx.GetLsb(g)
			}
			return 0
		}
		return f.glyf.OutlineGlyph(glyph, f.gvar, f.coords, advance, lsb, b)
	}
	return Rect{}, false
}
