package sfnt

// TagAvar is the table tag for the axis variations table.
var TagAvar = MakeTag('a', 'v', 'a', 'r')

// Avar remaps normalized variation coordinates through a per-axis
// piecewise-linear segment map, letting a font's designer make the visual
// midpoint of an axis (e.g. Regular on a Weight axis) land somewhere other
// than the arithmetic midpoint of its normalized range.
type Avar struct {
	axisMaps []axisSegmentMap
}

// axisSegmentMap is one axis's ordered list of (from, to) correspondence
// points; MapValue interpolates linearly between the two points that
// bracket the queried coordinate.
type axisSegmentMap struct {
	points []avarPoint
}

type avarPoint struct {
	from, to NormalizedCoordinate
}

// ParseAvar parses an avar table (version 1.0 only; later minor versions
// only add data this package does not consume).
func ParseAvar(data []byte) (*Avar, error) {
	p := NewParser(data)
	major, err1 := p.U16()
	minor, err2 := p.U16()
	if err1 != nil || err2 != nil || major != 1 {
		return nil, ErrInvalidFormat
	}
	_ = minor
	if err := p.Skip(2); err != nil { // reserved
		return nil, ErrInvalidTable
	}
	axisCount, err := p.U16()
	if err != nil {
		return nil, ErrInvalidTable
	}

	a := &Avar{axisMaps: make([]axisSegmentMap, axisCount)}
	for i := range a.axisMaps {
		count, err := p.U16()
		if err != nil {
			return nil, ErrInvalidTable
		}
		points := make([]avarPoint, count)
		for j := range points {
			from, err1 := p.I16()
			to, err2 := p.I16()
			if err1 != nil || err2 != nil {
				return nil, ErrInvalidTable
			}
			points[j] = avarPoint{from: NormalizedCoordinate(from), to: NormalizedCoordinate(to)}
		}
		a.axisMaps[i].points = points
	}
	return a, nil
}

// HasData reports whether a is a non-nil table declaring at least one axis.
func (a *Avar) HasData() bool {
	return a != nil && len(a.axisMaps) > 0
}

// MapValue remaps a single axis's normalized coordinate. Coordinates
// outside the map's first/last correspondence points clamp to that
// endpoint's target, matching how designers anchor the extremes of a range
// (-1, 0, and 1 are always implicit correspondence points per the OpenType
// spec, so a well-formed avar table's points already cover the axis).
func (a *Avar) MapValue(axisIndex int, value NormalizedCoordinate) NormalizedCoordinate {
	if a == nil || axisIndex < 0 || axisIndex >= len(a.axisMaps) {
		return value
	}
	pts := a.axisMaps[axisIndex].points
	if len(pts) == 0 {
		return value
	}
	if value <= pts[0].from {
		return pts[0].to
	}
	if last := pts[len(pts)-1]; value >= last.from {
		return last.to
	}
	for i := 1; i < len(pts); i++ {
		if value < pts[i].from {
			prev := pts[i-1]
			cur := pts[i]
			if cur.from == prev.from {
				return prev.to
			}
			num := int32(value-prev.from) * int32(cur.to-prev.to)
			den := int32(cur.from - prev.from)
			return prev.to + NormalizedCoordinate(num/den)
		}
	}
	return value
}

// MapCoords remaps a full user-normalized-coordinate vector, one call to
// MapValue per axis the caller supplied; axes beyond the table's declared
// count (a malformed pairing with fvar) pass through unmapped.
func (a *Avar) MapCoords(coords []NormalizedCoordinate) []NormalizedCoordinate {
	if a == nil || len(coords) == 0 {
		return coords
	}
	out := make([]NormalizedCoordinate, len(coords))
	for i, v := range coords {
		if i < len(a.axisMaps) {
			out[i] = a.MapValue(i, v)
		} else {
			out[i] = v
		}
	}
	return out
}
