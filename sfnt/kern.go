package sfnt

// TagKern is the table tag for the (legacy, pre-GPOS) kerning table.
var TagKern = MakeTag('k', 'e', 'r', 'n')

const kernCoverageHorizontal = 1 << 0
const kernCoverageCrossStream = 1 << 2

// KernSubtable is one subtable of a kern table: a lookup from an ordered
// glyph pair to a kerning adjustment, in one of two on-disk formats (0
// and 2; subtables of other formats are skipped when the table is parsed).
// The two formats share nothing structurally, so KernSubtable stores
// only the sliced subtable body and dispatches by format at lookup time,
// the way the teacher's cmap subtables dispatch by format.
type KernSubtable struct {
	format         uint8
	isHorizontal   bool
	hasCrossStream bool
	data           []byte
}

// Kern is a parsed kern table: an ordered list of subtables. This
// package recognizes the Microsoft/OpenType header (version 0, a 16-bit
// subtable count) with formats 0 and 2; the older Apple AAT header
// (version 0x00010000, a 32-bit subtable count, state-machine format 1)
// is out of scope, matching the OpenType-first orientation of the rest
// of this package.
type Kern struct {
	subtables []KernSubtable
}

// ParseKern parses a kern table.
func ParseKern(data []byte) (*Kern, error) {
	p := NewParser(data)
	version, err := p.U16()
	if err != nil {
		return nil, ErrInvalidTable
	}
	if version != 0 {
		return nil, ErrInvalidFormat
	}
	numTables, err := p.U16()
	if err != nil {
		return nil, ErrInvalidTable
	}

	k := &Kern{}
	for i := 0; i < int(numTables); i++ {
		subVersion, err1 := p.U16()
		length, err2 := p.U16()
		format, err3 := p.U8()
		coverage, err4 := p.U8()
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return k, nil
		}
		_ = subVersion
		const headerSize = 6
		dataLen := int(length) - headerSize
		if i == int(numTables)-1 {
			dataLen = p.Remaining()
		}
		if dataLen < 0 {
			return k, nil
		}
		body, err := p.Bytes(dataLen)
		if err != nil {
			return k, nil
		}
		if format != 0 && format != 2 {
			continue // format 1 (state machine) and format 3 variants unsupported here
		}
		k.subtables = append(k.subtables, KernSubtable{
			format:         format,
			isHorizontal:   coverage&kernCoverageHorizontal != 0,
			hasCrossStream: coverage&kernCoverageCrossStream != 0,
			data:           body,
		})
	}
	return k, nil
}

// Subtables returns the table's subtables in file order.
func (k *Kern) Subtables() []KernSubtable {
	if k == nil {
		return nil
	}
	return k.subtables
}

func (s *KernSubtable) IsHorizontal() bool   { return s.isHorizontal }
func (s *KernSubtable) HasCrossStream() bool { return s.hasCrossStream }

// Kerning looks up the adjustment for an ordered glyph pair within this
// subtable, in font design units. The second return is false if the pair
// has no entry.
func (s *KernSubtable) Kerning(left, right GlyphID) (int16, bool) {
	switch s.format {
	case 0:
		return kernFormat0(s.data, left, right)
	case 2:
		return kernFormat2(s.data, left, right)
	default:
		return 0, false
	}
}

// kernFormat0 is the "ordered list of kerning pairs" format: a sorted
// array of (left, right, value) triples, binary-searched by the combined
// glyph-pair key.
func kernFormat0(data []byte, left, right GlyphID) (int16, bool) {
	p := NewParser(data)
	numPairs, err := p.U16()
	if err != nil {
		return 0, false
	}
	if err := p.Skip(6); err != nil { // searchRange, entrySelector, rangeShift
		return 0, false
	}
	needle := uint32(left)<<16 | uint32(right)
	lo, hi := 0, int(numPairs)
	const pairSize = 6
	base := p.Offset()
	for lo < hi {
		mid := (lo + hi) / 2
		rec := NewParser(data)
		if err := rec.SetOffset(base + mid*pairSize); err != nil {
			return 0, false
		}
		l, err1 := rec.U16()
		r, err2 := rec.U16()
		v, err3 := rec.I16()
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, false
		}
		key := uint32(l)<<16 | uint32(r)
		switch {
		case key < needle:
			lo = mid + 1
		case key > needle:
			hi = mid
		default:
			return v, true
		}
	}
	return 0, false
}

// kernFormat2 is the "simple N x M array" format: two class tables map
// left/right glyph IDs to already-premultiplied row/column offsets that
// sum to an index directly into the kerning value array.
func kernFormat2(data []byte, left, right GlyphID) (int16, bool) {
	p := NewParser(data)
	if err := p.Skip(2); err != nil { // rowWidth
		return 0, false
	}
	leftOff, err1 := p.U16()
	rightOff, err2 := p.U16()
	arrayOff, err3 := p.U16()
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}

	leftClass, ok1 := kernFormat2Class(data, int(leftOff), left)
	rightClass, ok2 := kernFormat2Class(data, int(rightOff), right)
	if !ok1 {
		leftClass = 0
	}
	if !ok2 {
		rightClass = 0
	}
	if int(leftClass) < int(arrayOff) {
		return 0, false
	}
	index := int(leftClass) + int(rightClass)
	vp := NewParser(data)
	if err := vp.SetOffset(index); err != nil {
		return 0, false
	}
	v, err := vp.I16()
	if err != nil {
		return 0, false
	}
	return v, true
}

func kernFormat2Class(data []byte, offset int, glyph GlyphID) (uint16, bool) {
	p := NewParser(data)
	if err := p.SetOffset(offset); err != nil {
		return 0, false
	}
	firstGlyph, err := p.U16()
	if err != nil || uint16(glyph) < firstGlyph {
		return 0, false
	}
	idx := uint16(glyph) - firstGlyph
	numClasses, err := p.U16()
	if err != nil || idx >= numClasses {
		return 0, false
	}
	if err := p.Skip(int(idx) * 2); err != nil {
		return 0, false
	}
	v, err := p.U16()
	if err != nil {
		return 0, false
	}
	return v, true
}

// Kerning sums the horizontal, non-cross-stream subtables' adjustment for
// an ordered glyph pair — the common "additive kerning" policy most
// renderers apply when a font ships more than one horizontal subtable.
func (k *Kern) Kerning(left, right GlyphID) int16 {
	if k == nil {
		return 0
	}
	var total int16
	for i := range k.subtables {
		s := &k.subtables[i]
		if !s.isHorizontal || s.hasCrossStream {
			continue
		}
		if v, ok := s.Kerning(left, right); ok {
			total += v
		}
	}
	return total
}
