package sfnt

// Fixed is a 16.16 signed fixed-point number as used by `head.fontRevision`,
// `post.italicAngle`, and the `fvar` axis and instance coordinates.
type Fixed int32

// Float64 converts a Fixed to a float64.
func (f Fixed) Float64() float64 {
	return float64(f) / 65536.0
}

// Float32 converts a Fixed to a float32.
func (f Fixed) Float32() float32 {
	return float32(f) / 65536.0
}

// fixedFromFloat32 converts a float32 to a 16.16 Fixed, rounding to the
// nearest representable value.
func fixedFromFloat32(v float32) Fixed {
	return Fixed(int32(v*65536.0 + sign32(v)*0.5))
}

func sign32(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}

// F2Dot14 is a 2.14 signed fixed-point number, the wire format for
// variation-axis coordinates and composite-glyph transform scales.
type F2Dot14 int16

// Float32 converts an F2Dot14 to a float32 in roughly [-2, 2).
func (f F2Dot14) Float32() float32 {
	return float32(f) / 16384.0
}

func f2dot14FromFloat(v float32) F2Dot14 {
	if v > 2 {
		v = 2
	}
	if v < -2 {
		v = -2
	}
	return F2Dot14(v * 16384.0)
}

// FWord is a signed 16-bit distance in font design units.
type FWord = int16

// UFWord is an unsigned 16-bit distance in font design units.
type UFWord = uint16

// NormalizedCoordinate is an F2Dot14 in [-1, 1] describing the current
// position of a variation axis after `avar` remapping has been applied.
type NormalizedCoordinate = F2Dot14

// Rect is an axis-aligned bounding box in font units.
type Rect struct {
	XMin, YMin, XMax, YMax float32
}

// IsEmpty reports whether the rect has no area (e.g. an unset bbox).
func (r Rect) IsEmpty() bool {
	return r.XMin >= r.XMax || r.YMin >= r.YMax
}

func clampF2Dot14(v, lo, hi F2Dot14) F2Dot14 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
