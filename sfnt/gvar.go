package sfnt

import "encoding/binary"

// Gvar is a parsed gvar (Glyph Variations) table: per-glyph point-delta
// data for TrueType outlines, keyed by tuple variation regions in exactly
// the same shape HVAR/VVAR use for advances, just serialized per glyph
// instead of behind an ItemVariationStore.
type Gvar struct {
	data             []byte
	axisCount        int
	sharedTupleCount int
	glyphCount       int
	longOffsets      bool
	sharedTuplesOff  uint32
	glyphDataBase    uint32
	glyphDataOffsets []uint32
}

// ParseGvar parses a gvar table (version 1.0; there is no version 2).
func ParseGvar(data []byte) (*Gvar, error) {
	if len(data) < 20 {
		return nil, ErrInvalidTable
	}
	if binary.BigEndian.Uint16(data[0:]) != 1 {
		return nil, ErrInvalidFormat
	}

	flags := binary.BigEndian.Uint16(data[14:])
	g := &Gvar{
		data:             data,
		axisCount:        int(binary.BigEndian.Uint16(data[4:])),
		sharedTupleCount: int(binary.BigEndian.Uint16(data[6:])),
		sharedTuplesOff:  binary.BigEndian.Uint32(data[8:]),
		glyphCount:       int(binary.BigEndian.Uint16(data[12:])),
		longOffsets:      flags&1 != 0,
		glyphDataBase:    binary.BigEndian.Uint32(data[16:]),
	}

	const offsetsStart = 20
	n := g.glyphCount + 1
	g.glyphDataOffsets = make([]uint32, n)
	if g.longOffsets {
		if len(data) < offsetsStart+n*4 {
			return nil, ErrInvalidOffset
		}
		for i := range g.glyphDataOffsets {
			g.glyphDataOffsets[i] = binary.BigEndian.Uint32(data[offsetsStart+i*4:])
		}
	} else {
		if len(data) < offsetsStart+n*2 {
			return nil, ErrInvalidOffset
		}
		for i := range g.glyphDataOffsets {
			g.glyphDataOffsets[i] = 2 * uint32(binary.BigEndian.Uint16(data[offsetsStart+i*2:]))
		}
	}
	return g, nil
}

func (g *Gvar) HasData() bool { return g != nil && g.glyphCount > 0 }

func (g *Gvar) AxisCount() int   { return g.axisCount }
func (g *Gvar) GlyphCount() int  { return g.glyphCount }

// sharedTuple returns the F2Dot14 peak coordinates of one of the font-wide
// shared tuples, referenced by index from a per-glyph tuple header that
// declines to embed its own peak.
func (g *Gvar) sharedTuple(index int) []F2Dot14 {
	if index < 0 || index >= g.sharedTupleCount {
		return nil
	}
	size := g.axisCount * 2
	off := int(g.sharedTuplesOff) + index*size
	if off+size > len(g.data) {
		return nil
	}
	coords := make([]F2Dot14, g.axisCount)
	for i := range coords {
		coords[i] = F2Dot14(binary.BigEndian.Uint16(g.data[off+i*2:]))
	}
	return coords
}

// GlyphDeltas holds one point-delta pair per outline point (including the
// four trailing phantom points) for a single glyph at a single set of
// variation coordinates.
type GlyphDeltas struct {
	XDeltas []int16
	YDeltas []int16
}

// GlyphPoint is an (x, y) outline point in font design units, used as the
// reference geometry for IUP interpolation.
type GlyphPoint struct {
	X, Y int16
}

// GetGlyphDeltas computes deltas without contour-aware IUP; points not
// directly targeted by any tuple interpolate as if the glyph were one
// contour. Prefer GetGlyphDeltasWithCoords, which knows the real contour
// boundaries.
func (g *Gvar) GetGlyphDeltas(glyphID GlyphID, coords []NormalizedCoordinate, numPoints int) *GlyphDeltas {
	return g.GetGlyphDeltasWithCoords(glyphID, coords, numPoints, nil, nil)
}

// GetGlyphDeltasWithCoords computes the accumulated point deltas for gid at
// the given normalized variation coordinates. origPoints supplies the
// glyph's undeltered point positions and contourEnds the last point index
// of each contour (both required for correct IUP; either may be omitted at
// the cost of falling back to single-contour interpolation).
func (g *Gvar) GetGlyphDeltasWithCoords(glyphID GlyphID, coords []NormalizedCoordinate, numPoints int, origPoints []GlyphPoint, contourEnds []int) *GlyphDeltas {
	if g == nil || int(glyphID) >= g.glyphCount {
		return nil
	}
	start := g.glyphDataBase + g.glyphDataOffsets[glyphID]
	end := g.glyphDataBase + g.glyphDataOffsets[glyphID+1]
	if start == end || int(end) > len(g.data) {
		return nil
	}
	glyphData := g.data[start:end]
	if len(glyphData) < 4 {
		return nil
	}

	header := binary.BigEndian.Uint16(glyphData[0:])
	tupleCount := int(header & 0x0FFF)
	sharedPointsPresent := header&0x8000 != 0
	dataOffset := int(binary.BigEndian.Uint16(glyphData[2:]))
	if tupleCount == 0 {
		return nil
	}
	// At most 32 tuples are evaluated; any further tuples are ignored.
	if tupleCount > 32 {
		tupleCount = 32
	}

	deltas := &GlyphDeltas{
		XDeltas: make([]int16, numPoints),
		YDeltas: make([]int16, numPoints),
	}

	var sharedPoints []int
	serializedOffset := dataOffset
	if sharedPointsPresent {
		var n int
		sharedPoints, n = decodePackedPointNumbers(glyphData[serializedOffset:])
		serializedOffset += n
	}

	headerOffset := 4
	for t := 0; t < tupleCount; t++ {
		hdr, n, ok := parseTupleVariationHeader(glyphData, headerOffset, g.axisCount)
		if !ok {
			break
		}
		headerOffset = n

		peak := hdr.peak
		if peak == nil {
			peak = g.sharedTuple(hdr.sharedTupleIndex)
		}
		scalar := tupleScalar(peak, hdr.start, hdr.end, coords)
		if scalar == 0 {
			serializedOffset += hdr.variationDataSize
			continue
		}

		var points []int
		deltaStart := serializedOffset
		if hdr.privatePoints {
			var consumed int
			points, consumed = decodePackedPointNumbers(glyphData[serializedOffset:])
			deltaStart += consumed
		} else {
			points = sharedPoints
		}

		xd, yd, _ := decodePackedDeltas(glyphData[deltaStart:], len(points), numPoints)
		if len(points) == 0 {
			for i := 0; i < numPoints && i < len(xd); i++ {
				deltas.XDeltas[i] += int16(float32(xd[i]) * scalar)
				deltas.YDeltas[i] += int16(float32(yd[i]) * scalar)
			}
		} else {
			applyIUPDeltas(deltas, points, xd, yd, scalar, numPoints, origPoints, contourEnds)
		}

		serializedOffset += hdr.variationDataSize
	}

	return deltas
}

// tupleVariationHeader is one decoded TupleVariationHeader entry: its peak
// (embedded or shared), optional intermediate region, and point-number
// scoping, plus how many bytes of serialized delta data it owns.
type tupleVariationHeader struct {
	variationDataSize int
	sharedTupleIndex  int
	privatePoints     bool
	peak              []F2Dot14
	start, end        []F2Dot14
}

func parseTupleVariationHeader(data []byte, offset, axisCount int) (tupleVariationHeader, int, bool) {
	if offset+4 > len(data) {
		return tupleVariationHeader{}, offset, false
	}
	size := int(binary.BigEndian.Uint16(data[offset:]))
	flags := binary.BigEndian.Uint16(data[offset+2:])
	offset += 4

	h := tupleVariationHeader{
		variationDataSize: size,
		sharedTupleIndex:  int(flags & 0x0FFF),
		privatePoints:     flags&0x2000 != 0,
	}

	readTuple := func() ([]F2Dot14, bool) {
		t := make([]F2Dot14, axisCount)
		for i := range t {
			if offset+2 > len(data) {
				return nil, false
			}
			t[i] = F2Dot14(binary.BigEndian.Uint16(data[offset:]))
			offset += 2
		}
		return t, true
	}

	if flags&0x8000 != 0 {
		peak, ok := readTuple()
		if !ok {
			return h, offset, false
		}
		h.peak = peak
	}
	if flags&0x4000 != 0 {
		start, ok := readTuple()
		if !ok {
			return h, offset, false
		}
		end, ok := readTuple()
		if !ok {
			return h, offset, false
		}
		h.start, h.end = start, end
	}
	return h, offset, true
}

// tupleScalar computes a tuple variation's overall scalar by multiplying
// the per-axis tent-function scalars, defaulting the intermediate region
// to [0, peak] or [peak, 0] when the header carries no explicit one.
func tupleScalar(peak, start, end []F2Dot14, coords []NormalizedCoordinate) float32 {
	if len(peak) == 0 {
		return 0
	}
	scalar := float32(1.0)
	for i, p := range peak {
		var coord NormalizedCoordinate
		if i < len(coords) {
			coord = coords[i]
		}
		s, e := start, end
		var sv, ev NormalizedCoordinate
		if s != nil && e != nil {
			sv, ev = NormalizedCoordinate(s[i]), NormalizedCoordinate(e[i])
		} else if p >= 0 {
			sv, ev = 0, NormalizedCoordinate(p)
		} else {
			sv, ev = NormalizedCoordinate(p), 0
		}
		factor := tentScalar(sv, NormalizedCoordinate(p), coord, ev)
		if factor == 0 {
			return 0
		}
		scalar *= factor
	}
	return scalar
}

// decodePackedPointNumbers decodes a gvar/CFF2-style packed point-number
// list: a leading count (1 or 2 bytes), then variable-length runs of
// unsigned point-index deltas, each added to the previous point number
// (each run either all-byte or all-word).
func decodePackedPointNumbers(data []byte) ([]int, int) {
	if len(data) == 0 {
		return nil, 0
	}
	count := int(data[0])
	offset := 1
	if count == 0 {
		return nil, 1 // sentinel for "all points"
	}
	if count&0x80 != 0 {
		if len(data) < 2 {
			return nil, 1
		}
		count = (count&0x7F)<<8 | int(data[1])
		offset = 2
	}

	points := make([]int, 0, count)
	last := 0
	for len(points) < count && offset < len(data) {
		run := data[offset]
		offset++
		asWords := run&0x80 != 0
		runLen := int(run&0x7F) + 1
		for i := 0; i < runLen && len(points) < count; i++ {
			var delta int
			if asWords {
				if offset+2 > len(data) {
					return points, offset
				}
				delta = int(binary.BigEndian.Uint16(data[offset:]))
				offset += 2
			} else {
				if offset >= len(data) {
					return points, offset
				}
				delta = int(data[offset])
				offset++
			}
			last += delta
			points = append(points, last)
		}
	}
	return points, offset
}

// decodePackedDeltas decodes gvar's run-length delta encoding, X deltas
// followed by Y deltas, each run flagged zero / word / byte.
func decodePackedDeltas(data []byte, numDeltas, numPoints int) (x, y []int16, consumed int) {
	if numDeltas == 0 {
		numDeltas = numPoints
	}
	offset := 0
	decodeOne := func(n int) []int16 {
		out := make([]int16, n)
		read := 0
		for read < n && offset < len(data) {
			run := data[offset]
			offset++
			zero := run&0x80 != 0
			words := run&0x40 != 0
			runLen := int(run&0x3F) + 1
			for i := 0; i < runLen && read < n; i++ {
				var d int16
				switch {
				case zero:
					d = 0
				case words:
					if offset+2 > len(data) {
						return out
					}
					d = int16(binary.BigEndian.Uint16(data[offset:]))
					offset += 2
				default:
					if offset >= len(data) {
						return out
					}
					d = int16(int8(data[offset]))
					offset++
				}
				out[read] = d
				read++
			}
		}
		return out
	}
	x = decodeOne(numDeltas)
	y = decodeOne(numDeltas)
	return x, y, offset
}

// applyIUPDeltas assigns the decoded deltas to their target points and
// then fills in every other point via Interpolate Untouched Points: each
// contour is walked independently when contourEnds is available, matching
// the OpenType IUP algorithm; without it, all points are treated as a
// single ring, which is only correct for genuinely single-contour glyphs.
func applyIUPDeltas(deltas *GlyphDeltas, pointIndices []int, xDelta, yDelta []int16, scalar float32, numPoints int, origPoints []GlyphPoint, contourEnds []int) {
	touched := make([]bool, numPoints)
	for i, idx := range pointIndices {
		if idx >= numPoints || i >= len(xDelta) {
			continue
		}
		deltas.XDeltas[idx] += int16(float32(xDelta[i]) * scalar)
		deltas.YDeltas[idx] += int16(float32(yDelta[i]) * scalar)
		touched[idx] = true
	}

	contours := contourEnds
	if len(contours) == 0 {
		contours = []int{numPoints - 1}
	}

	start := 0
	for _, end := range contours {
		if end < start || end >= numPoints {
			start = end + 1
			continue
		}
		iupContour(deltas, touched, start, end, origPoints)
		start = end + 1
	}
}

func iupContour(deltas *GlyphDeltas, touched []bool, start, end int, origPoints []GlyphPoint) {
	n := end - start + 1
	if n <= 0 {
		return
	}
	anyTouched := false
	for i := start; i <= end; i++ {
		if touched[i] {
			anyTouched = true
			break
		}
	}
	if !anyTouched {
		return
	}

	for i := start; i <= end; i++ {
		if touched[i] {
			continue
		}
		prev, next := -1, -1
		for j := 1; j <= n; j++ {
			idx := start + (i-start-j+n*2)%n
			if touched[idx] {
				prev = idx
				break
			}
		}
		for j := 1; j <= n; j++ {
			idx := start + (i-start+j)%n
			if touched[idx] {
				next = idx
				break
			}
		}
		if prev == -1 || next == -1 {
			continue
		}
		if prev == next {
			deltas.XDeltas[i] = deltas.XDeltas[prev]
			deltas.YDeltas[i] = deltas.YDeltas[prev]
			continue
		}
		if origPoints != nil && i < len(origPoints) && prev < len(origPoints) && next < len(origPoints) {
			deltas.XDeltas[i] += iupInterpolate(origPoints[i].X, origPoints[prev].X, origPoints[next].X, deltas.XDeltas[prev], deltas.XDeltas[next])
			deltas.YDeltas[i] += iupInterpolate(origPoints[i].Y, origPoints[prev].Y, origPoints[next].Y, deltas.YDeltas[prev], deltas.YDeltas[next])
		} else {
			deltas.XDeltas[i] = (deltas.XDeltas[prev] + deltas.XDeltas[next]) / 2
			deltas.YDeltas[i] = (deltas.YDeltas[prev] + deltas.YDeltas[next]) / 2
		}
	}
}

// iupInterpolate is the single-axis IUP rule: linear interpolation between
// two touched neighbors' deltas when the untouched coordinate lies between
// them, and a clamp to the nearer neighbor's delta otherwise.
func iupInterpolate(coord, coord1, coord2 int16, delta1, delta2 int16) int16 {
	if coord1 > coord2 {
		coord1, coord2 = coord2, coord1
		delta1, delta2 = delta2, delta1
	}
	switch {
	case coord1 == coord2:
		return (delta1 + delta2) / 2
	case coord <= coord1:
		return delta1
	case coord >= coord2:
		return delta2
	default:
		t := float32(coord-coord1) / float32(coord2-coord1)
		return int16(float32(delta1) + t*float32(delta2-delta1))
	}
}
