package sfnt

// OutlineBuilder receives path segments while a glyph outline is decoded.
// Coordinates are font units after any composite transform or variation
// delta has been applied.
type OutlineBuilder interface {
	MoveTo(x, y float32)
	LineTo(x, y float32)
	QuadTo(cx, cy, x, y float32)
	CurveTo(c1x, c1y, c2x, c2y, x, y float32)
	ClosePath()
}

// glyphPoint is a single on/off-curve outline point in font units.
type glyphPoint struct {
	x, y    float32
	onCurve bool
}

// emitContour walks a single closed contour's points and issues the
// move_to/line_to/quad_to sequence a TrueType outline requires, inserting
// implicit on-curve midpoints between consecutive off-curve points.
func emitContour(b OutlineBuilder, pts []glyphPoint) {
	n := len(pts)
	if n == 0 {
		return
	}

	var start glyphPoint
	var rest []glyphPoint
	switch {
	case pts[0].onCurve:
		start, rest = pts[0], pts[1:]
	case pts[n-1].onCurve:
		start, rest = pts[n-1], pts[:n-1]
	default:
		start, rest = midpoint(pts[n-1], pts[0]), pts
	}

	b.MoveTo(start.x, start.y)
	cur := start
	var pendingOff *glyphPoint
	for i := range rest {
		p := rest[i]
		if p.onCurve {
			if pendingOff != nil {
				b.QuadTo(pendingOff.x, pendingOff.y, p.x, p.y)
				pendingOff = nil
			} else {
				b.LineTo(p.x, p.y)
			}
			cur = p
		} else {
			if pendingOff != nil {
				mid := midpoint(*pendingOff, p)
				b.QuadTo(pendingOff.x, pendingOff.y, mid.x, mid.y)
				cur = mid
			}
			off := p
			pendingOff = &off
		}
	}
	if pendingOff != nil {
		b.QuadTo(pendingOff.x, pendingOff.y, start.x, start.y)
	} else if cur.x != start.x || cur.y != start.y {
		b.LineTo(start.x, start.y)
	}
	b.ClosePath()
}

func midpoint(a, b glyphPoint) glyphPoint {
	return glyphPoint{x: (a.x + b.x) / 2, y: (a.y + b.y) / 2, onCurve: true}
}

// boundsBuilder wraps another OutlineBuilder and tracks the emitted bbox,
// used as the fallback when a glyph's embedded bbox is malformed.
type boundsBuilder struct {
	inner          OutlineBuilder
	minX, minY     float32
	maxX, maxY     float32
	have           bool
	curX, curY     float32
	startX, startY float32
}

func newBoundsBuilder(inner OutlineBuilder) *boundsBuilder {
	return &boundsBuilder{inner: inner}
}

func (bb *boundsBuilder) track(x, y float32) {
	if !bb.have {
		bb.minX, bb.maxX = x, x
		bb.minY, bb.maxY = y, y
		bb.have = true
		return
	}
	if x < bb.minX {
		bb.minX = x
	}
	if x > bb.maxX {
		bb.maxX = x
	}
	if y < bb.minY {
		bb.minY = y
	}
	if y > bb.maxY {
		bb.maxY = y
	}
}

func (bb *boundsBuilder) MoveTo(x, y float32) {
	bb.startX, bb.startY = x, y
	bb.curX, bb.curY = x, y
	bb.track(x, y)
	if bb.inner != nil {
		bb.inner.MoveTo(x, y)
	}
}

func (bb *boundsBuilder) LineTo(x, y float32) {
	bb.curX, bb.curY = x, y
	bb.track(x, y)
	if bb.inner != nil {
		bb.inner.LineTo(x, y)
	}
}

func (bb *boundsBuilder) QuadTo(cx, cy, x, y float32) {
	bb.track(cx, cy)
	bb.curX, bb.curY = x, y
	bb.track(x, y)
	if bb.inner != nil {
		bb.inner.QuadTo(cx, cy, x, y)
	}
}

func (bb *boundsBuilder) CurveTo(c1x, c1y, c2x, c2y, x, y float32) {
	bb.track(c1x, c1y)
	bb.track(c2x, c2y)
	bb.curX, bb.curY = x, y
	bb.track(x, y)
	if bb.inner != nil {
		bb.inner.CurveTo(c1x, c1y, c2x, c2y, x, y)
	}
}

func (bb *boundsBuilder) ClosePath() {
	bb.curX, bb.curY = bb.startX, bb.startY
	if bb.inner != nil {
		bb.inner.ClosePath()
	}
}

func (bb *boundsBuilder) rect() (Rect, bool) {
	if !bb.have {
		return Rect{}, false
	}
	return Rect{XMin: bb.minX, YMin: bb.minY, XMax: bb.maxX, YMax: bb.maxY}, true
}

// nopBuilder discards every callback; useful when only the bbox is wanted.
type nopBuilder struct{}

func (nopBuilder) MoveTo(x, y float32)                          {}
func (nopBuilder) LineTo(x, y float32)                          {}
func (nopBuilder) QuadTo(cx, cy, x, y float32)                  {}
func (nopBuilder) CurveTo(c1x, c1y, c2x, c2y, x, y float32)     {}
func (nopBuilder) ClosePath()                                   {}
