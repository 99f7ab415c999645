package sfnt

import (
	"encoding/binary"
)

// Loca is the parsed loca table: num_glyphs+1 offsets into glyf.
type Loca struct {
	offsets   []uint32
	numGlyphs int
	isShort   bool
}

// ParseLoca parses the loca table. indexToLocFormat: 0 = short (16-bit,
// doubled), 1 = long (32-bit).
func ParseLoca(data []byte, numGlyphs int, indexToLocFormat int16) (*Loca, error) {
	l := &Loca{numGlyphs: numGlyphs, isShort: indexToLocFormat == 0}
	numEntries := numGlyphs + 1

	if l.isShort {
		if len(data) < numEntries*2 {
			return nil, ErrInvalidOffset
		}
		l.offsets = make([]uint32, numEntries)
		for i := 0; i < numEntries; i++ {
			l.offsets[i] = uint32(binary.BigEndian.Uint16(data[i*2:])) * 2
		}
	} else {
		if len(data) < numEntries*4 {
			return nil, ErrInvalidOffset
		}
		l.offsets = make([]uint32, numEntries)
		for i := 0; i < numEntries; i++ {
			l.offsets[i] = binary.BigEndian.Uint32(data[i*4:])
		}
	}
	return l, nil
}

// GetOffset returns the (offset, length) span of a glyph record in glyf.
func (l *Loca) GetOffset(gid GlyphID) (uint32, uint32, bool) {
	idx := int(gid)
	if idx < 0 || idx >= l.numGlyphs {
		return 0, 0, false
	}
	start, end := l.offsets[idx], l.offsets[idx+1]
	if end < start {
		return 0, 0, false
	}
	return start, end - start, true
}

func (l *Loca) NumGlyphs() int { return l.numGlyphs }
func (l *Loca) IsShort() bool  { return l.isShort }

// Glyf is the parsed glyf table paired with its loca index.
type Glyf struct {
	data []byte
	loca *Loca
}

// GlyphData is the raw record for a single glyph.
type GlyphData struct {
	Data             []byte
	NumberOfContours int16 // -1 for composite, >= 0 for simple (0 = empty)
	XMin, YMin       int16
	XMax, YMax       int16
}

func ParseGlyf(data []byte, loca *Loca) (*Glyf, error) {
	return &Glyf{data: data, loca: loca}, nil
}

// GetGlyph returns the decoded header for a glyph, or nil if the GID is out
// of range or the record is out of bounds.
func (g *Glyf) GetGlyph(gid GlyphID) *GlyphData {
	offset, length, ok := g.loca.GetOffset(gid)
	if !ok {
		return nil
	}
	if length == 0 {
		return &GlyphData{NumberOfContours: 0}
	}
	if uint64(offset)+uint64(length) > uint64(len(g.data)) {
		return nil
	}
	data := g.data[offset : offset+length]
	if len(data) < 10 {
		return nil
	}
	return &GlyphData{
		Data:             data,
		NumberOfContours: int16(binary.BigEndian.Uint16(data)),
		XMin:             int16(binary.BigEndian.Uint16(data[2:])),
		YMin:             int16(binary.BigEndian.Uint16(data[4:])),
		XMax:             int16(binary.BigEndian.Uint16(data[6:])),
		YMax:             int16(binary.BigEndian.Uint16(data[8:])),
	}
}

func (g *Glyf) GetGlyphBytes(gid GlyphID) []byte {
	offset, length, ok := g.loca.GetOffset(gid)
	if !ok || length == 0 {
		return nil
	}
	if uint64(offset)+uint64(length) > uint64(len(g.data)) {
		return nil
	}
	return g.data[offset : offset+length]
}

func (gd *GlyphData) IsComposite() bool { return gd.NumberOfContours < 0 }

func (gd *GlyphData) embeddedBBox() (Rect, bool) {
	if gd.XMin > gd.XMax || gd.YMin > gd.YMax {
		return Rect{}, false
	}
	return Rect{XMin: float32(gd.XMin), YMin: float32(gd.YMin), XMax: float32(gd.XMax), YMax: float32(gd.YMax)}, true
}

// Composite glyph component flags, per the OpenType glyf spec.
const (
	compArgAreWords     uint16 = 0x0001
	compArgsAreXYValues uint16 = 0x0002
	compRoundXYToGrid   uint16 = 0x0004
	compWeHaveAScale    uint16 = 0x0008
	compMoreComponents  uint16 = 0x0020
	compWeHaveXYScale   uint16 = 0x0040
	compWeHave2x2       uint16 = 0x0080
	compWeHaveInstr     uint16 = 0x0100
	compUseMyMetrics    uint16 = 0x0200
	compOverlapCompound uint16 = 0x0400
	compScaledComponent uint16 = 0x0800
)

// CompositeComponent is a single component record of a composite glyph.
type CompositeComponent struct {
	GlyphID                GlyphID
	Flags                  uint16
	Arg1, Arg2             int16
	Xscale, Scale01        float32
	Scale10, Yscale        float32
	HasTransform, HaveXY   bool
}

func decompose2x2(flags uint16, p *Parser) (xx, xy, yx, yy float32, ok bool) {
	xx, yy = 1, 1
	switch {
	case flags&compWeHave2x2 != 0:
		a, e1 := p.I16()
		b, e2 := p.I16()
		c, e3 := p.I16()
		d, e4 := p.I16()
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
			return 0, 0, 0, 0, false
		}
		xx, xy, yx, yy = F2Dot14(a).Float32(), F2Dot14(b).Float32(), F2Dot14(c).Float32(), F2Dot14(d).Float32()
	case flags&compWeHaveXYScale != 0:
		a, e1 := p.I16()
		d, e2 := p.I16()
		if e1 != nil || e2 != nil {
			return 0, 0, 0, 0, false
		}
		xx, yy = F2Dot14(a).Float32(), F2Dot14(d).Float32()
	case flags&compWeHaveAScale != 0:
		a, e1 := p.I16()
		if e1 != nil {
			return 0, 0, 0, 0, false
		}
		xx = F2Dot14(a).Float32()
		yy = xx
	}
	return xx, xy, yx, yy, true
}

// parseComponents walks the raw component chain of a composite glyph,
// invoking fn for each successfully decoded record. It stops (without
// error) at the first malformed component, matching the "skip the
// component, continue" policy for other fields but simply truncating the
// remainder of the chain when the stream itself is corrupt.
func parseComponents(data []byte, fn func(CompositeComponent)) {
	if len(data) < 10 {
		return
	}
	p := NewParser(data)
	p.SetOffset(10)

	for {
		flags, err1 := p.U16()
		gid, err2 := p.U16()
		if err1 != nil || err2 != nil {
			return
		}
		comp := CompositeComponent{GlyphID: GlyphID(gid), Flags: flags}

		if flags&compArgAreWords != 0 {
			a1, e1 := p.I16()
			a2, e2 := p.I16()
			if e1 != nil || e2 != nil {
				return
			}
			comp.Arg1, comp.Arg2 = a1, a2
		} else {
			a1, e1 := p.U8()
			a2, e2 := p.U8()
			if e1 != nil || e2 != nil {
				return
			}
			comp.Arg1, comp.Arg2 = int16(int8(a1)), int16(int8(a2))
		}
		comp.HaveXY = flags&compArgsAreXYValues != 0

		xx, xy, yx, yy, ok := decompose2x2(flags, p)
		if !ok {
			// Malformed transform: skip this component, but the stream
			// position is now unrecoverable, so stop the chain.
			return
		}
		comp.Xscale, comp.Scale01, comp.Scale10, comp.Yscale = xx, xy, yx, yy
		comp.HasTransform = flags&(compWeHaveAScale|compWeHaveXYScale|compWeHave2x2) != 0

		fn(comp)

		if flags&compMoreComponents == 0 {
			return
		}
	}
}

// GetComponents returns the referenced glyph IDs of a composite glyph, or
// nil for a simple glyph. Used for glyph-closure style traversal.
func (g *Glyf) GetComponents(gid GlyphID) []GlyphID {
	glyph := g.GetGlyph(gid)
	if glyph == nil || !glyph.IsComposite() {
		return nil
	}
	var result []GlyphID
	parseComponents(glyph.Data, func(c CompositeComponent) {
		result = append(result, c.GlyphID)
	})
	return result
}

const maxCompositeDepth = 32

// decodeSimplePoints reads a simple glyph's flag-RLE point stream and
// appends four phantom points (left/right side-bearing origin points used
// by gvar/HVAR, in x then y advance-width convention) at the end.
func decodeSimplePoints(data []byte, numContours int, advanceWidth, lsb int16) (contourEnds []int, pts []glyphPoint, ok bool) {
	p := NewParser(data)
	p.SetOffset(10)

	contourEnds = make([]int, numContours)
	for i := 0; i < numContours; i++ {
		v, err := p.U16()
		if err != nil {
			return nil, nil, false
		}
		contourEnds[i] = int(v)
	}
	if numContours > 0 {
		numPoints := contourEnds[numContours-1] + 1
		instrLen, err := p.U16()
		if err != nil {
			return nil, nil, false
		}
		if err := p.Skip(int(instrLen)); err != nil {
			return nil, nil, false
		}

		flags := make([]byte, 0, numPoints)
		for len(flags) < numPoints {
			f, err := p.U8()
			if err != nil {
				return nil, nil, false
			}
			flags = append(flags, f)
			if f&0x08 != 0 { // REPEAT_FLAG
				n, err := p.U8()
				if err != nil {
					return nil, nil, false
				}
				for i := byte(0); i < n && len(flags) < numPoints; i++ {
					flags = append(flags, f)
				}
			}
		}

		xs := make([]int16, numPoints)
		x := int16(0)
		for i := 0; i < numPoints; i++ {
			f := flags[i]
			switch {
			case f&0x02 != 0: // X_SHORT_VECTOR
				dx, err := p.U8()
				if err != nil {
					return nil, nil, false
				}
				if f&0x10 == 0 { // negative
					x -= int16(dx)
				} else {
					x += int16(dx)
				}
			case f&0x10 == 0: // long vector, not same-as-previous
				dx, err := p.I16()
				if err != nil {
					return nil, nil, false
				}
				x += dx
			}
			xs[i] = x
		}

		ys := make([]int16, numPoints)
		y := int16(0)
		for i := 0; i < numPoints; i++ {
			f := flags[i]
			switch {
			case f&0x04 != 0: // Y_SHORT_VECTOR
				dy, err := p.U8()
				if err != nil {
					return nil, nil, false
				}
				if f&0x20 == 0 {
					y -= int16(dy)
				} else {
					y += int16(dy)
				}
			case f&0x20 == 0:
				dy, err := p.I16()
				if err != nil {
					return nil, nil, false
				}
				y += dy
			}
			ys[i] = y
		}

		pts = make([]glyphPoint, numPoints)
		for i := 0; i < numPoints; i++ {
			pts[i] = glyphPoint{x: float32(xs[i]), y: float32(ys[i]), onCurve: flags[i]&0x01 != 0}
		}
	}

	// Phantom points: left side bearing origin, advance-width origin,
	// top side bearing origin, advance-height origin. Only the first two
	// are meaningful without vmtx/VORG context.
	xMin := int16(0)
	if numContours > 0 && len(pts) > 0 {
		xMin = int16(pts[0].x)
		for _, pt := range pts {
			if int16(pt.x) < xMin {
				xMin = int16(pt.x)
			}
		}
	}
	phantomLeft := float32(xMin) - float32(lsb)
	pts = append(pts,
		glyphPoint{x: phantomLeft, y: 0, onCurve: true},
		glyphPoint{x: phantomLeft + float32(advanceWidth), y: 0, onCurve: true},
		glyphPoint{x: 0, y: 0, onCurve: true},
		glyphPoint{x: 0, y: 0, onCurve: true},
	)
	return contourEnds, pts, true
}

// outlineContext threads recursion state and the variation inputs needed
// to apply gvar deltas while decoding a glyf outline tree.
type outlineContext struct {
	glyf         *Glyf
	gvar         *Gvar
	coords       []NormalizedCoordinate
	advanceWidth func(GlyphID) int16
	lsb          func(GlyphID) int16
}

// OutlineGlyph decodes gid's outline (applying gvar deltas if coords is
// non-empty and the face has a gvar table) and invokes b's callbacks. It
// returns the glyph's bounding box, preferring the embedded bbox and
// falling back to a bbox recomputed from the emitted points.
func (g *Glyf) OutlineGlyph(gid GlyphID, gvar *Gvar, coords []NormalizedCoordinate, advanceWidth func(GlyphID) int16, lsb func(GlyphID) int16, b OutlineBuilder) (Rect, bool) {
	ctx := &outlineContext{glyf: g, gvar: gvar, coords: coords, advanceWidth: advanceWidth, lsb: lsb}
	bb := newBoundsBuilder(b)
	glyph := g.GetGlyph(gid)
	if glyph == nil {
		return Rect{}, false
	}
	if glyph.NumberOfContours == 0 {
		return Rect{}, true
	}
	if !ctx.decode(gid, glyph, bb, 0, [6]float32{1, 0, 0, 1, 0, 0}) {
		return Rect{}, false
	}
	if r, ok := glyph.embeddedBBox(); ok {
		return r, true
	}
	return bb.rect()
}

// decode recursively decodes a glyph (simple or composite) under the given
// 2x3 affine transform, applying it to every emitted point.
func (ctx *outlineContext) decode(gid GlyphID, glyph *GlyphData, b OutlineBuilder, depth int, m [6]float32) bool {
	if depth > maxCompositeDepth {
		return false
	}
	if glyph.IsComposite() {
		ok := true
		parseComponents(glyph.Data, func(c CompositeComponent) {
			if !ok || !c.HaveXY {
				return
			}
			child := ctx.glyf.GetGlyph(c.GlyphID)
			if child == nil {
				return
			}
			cm := composeTransform(m, c)
			if !ctx.decode(c.GlyphID, child, b, depth+1, cm) {
				ok = false
			}
		})
		return ok
	}

	numContours := int(glyph.NumberOfContours)
	var aw, lsbv int16
	if ctx.advanceWidth != nil {
		aw = ctx.advanceWidth(gid)
	}
	if ctx.lsb != nil {
		lsbv = ctx.lsb(gid)
	}
	ends, pts, ok := decodeSimplePoints(glyph.Data, numContours, aw, lsbv)
	if !ok {
		return false
	}

	if ctx.gvar != nil && ctx.gvar.HasData() && len(ctx.coords) > 0 {
		orig := make([]GlyphPoint, len(pts))
		for i, p := range pts {
			orig[i] = GlyphPoint{X: int16(p.x), Y: int16(p.y)}
		}
		deltas := ctx.gvar.GetGlyphDeltasWithCoords(gid, ctx.coords, len(pts), orig, ends)
		if deltas != nil {
			for i := range pts {
				pts[i].x += float32(deltas.XDeltas[i])
				pts[i].y += float32(deltas.YDeltas[i])
			}
		}
	}

	// Drop the four phantom points before emitting; they exist only to
	// carry variation deltas for the side-bearing metrics.
	outline := pts
	if len(outline) >= 4 {
		outline = outline[:len(outline)-4]
	}

	start := 0
	for _, end := range ends {
		if end < start || end >= len(outline) {
			break
		}
		contour := transformPoints(outline[start:end+1], m)
		emitContour(b, contour)
		start = end + 1
	}
	return true
}

func transformPoints(pts []glyphPoint, m [6]float32) []glyphPoint {
	out := make([]glyphPoint, len(pts))
	for i, p := range pts {
		out[i] = glyphPoint{
			x:       m[0]*p.x + m[2]*p.y + m[4],
			y:       m[1]*p.x + m[3]*p.y + m[5],
			onCurve: p.onCurve,
		}
	}
	return out
}

// composeTransform builds the child's full transform: parent transform
// composed with the component's own 2x2 matrix and translation.
func composeTransform(parent [6]float32, c CompositeComponent) [6]float32 {
	dx, dy := float32(c.Arg1), float32(c.Arg2)
	if c.Flags&compRoundXYToGrid != 0 {
		dx = float32(int32(dx + 0.5))
		dy = float32(int32(dy + 0.5))
	}
	// Local matrix: [xx xy; yx yy] then translate by (dx, dy).
	local := [6]float32{c.Xscale, c.Scale01, c.Scale10, c.Yscale, dx, dy}
	return [6]float32{
		parent[0]*local[0] + parent[2]*local[1],
		parent[1]*local[0] + parent[3]*local[1],
		parent[0]*local[2] + parent[2]*local[3],
		parent[1]*local[2] + parent[3]*local[3],
		parent[0]*local[4] + parent[2]*local[5] + parent[4],
		parent[1]*local[4] + parent[3]*local[5] + parent[5],
	}
}

// ParseGlyfFromFont loads loca+glyf together from a Font's table directory.
func ParseGlyfFromFont(font *Font) (*Glyf, error) {
	maxpData, err := font.TableData(TagMaxp)
	if err != nil || len(maxpData) < 6 {
		return nil, ErrInvalidTable
	}
	numGlyphs := int(binary.BigEndian.Uint16(maxpData[4:]))

	headData, err := font.TableData(TagHead)
	if err != nil || len(headData) < 54 {
		return nil, ErrInvalidTable
	}
	indexToLocFormat := int16(binary.BigEndian.Uint16(headData[50:]))

	locaData, err := font.TableData(TagLoca)
	if err != nil {
		return nil, err
	}
	loca, err := ParseLoca(locaData, numGlyphs, indexToLocFormat)
	if err != nil {
		return nil, err
	}

	glyfData, err := font.TableData(TagGlyf)
	if err != nil {
		return nil, err
	}
	return ParseGlyf(glyfData, loca)
}
