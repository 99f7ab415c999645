package sfnt

import "encoding/binary"

// TagHvar is the table tag for the horizontal metrics variations table.
var TagHvar = MakeTag('H', 'V', 'A', 'R')

// TagVvar is the table tag for the vertical metrics variations table.
var TagVvar = MakeTag('V', 'V', 'A', 'R')

// TagGvar is the table tag for the glyph variations table.
var TagGvar = MakeTag('g', 'v', 'a', 'r')

// TagSTAT is the table tag for the style attributes table.
var TagSTAT = MakeTag('S', 'T', 'A', 'T')

// TagMvar is the table tag for the metrics variations table.
var TagMvar = MakeTag('M', 'V', 'A', 'R')

// TagCvar is the table tag for the CVT variations table.
var TagCvar = MakeTag('c', 'v', 'a', 'r')

// Hvar is a parsed HVAR table: an ItemVariationStore of advance-width
// deltas, plus an optional glyph-to-inner-index map for fonts where glyph
// ID doesn't directly double as the item index (and, per the OpenType
// spec, optional LSB/RSB delta maps this package does not consume, since
// nothing in this face implementation adjusts side bearings independently
// of the outline itself).
type Hvar struct {
	store  *ItemVariationStore
	advMap *DeltaSetIndexMap
}

// ParseHvar parses an HVAR table (version 1.0; there is no other version).
func ParseHvar(data []byte) (*Hvar, error) {
	store, advMap, err := parseVariationsHeader(data)
	if err != nil {
		return nil, err
	}
	return &Hvar{store: store, advMap: advMap}, nil
}

func (h *Hvar) HasData() bool { return h != nil && h.store != nil }

// GetAdvanceDelta returns the horizontal advance delta for glyph at the
// given normalized variation coordinates, in font design units.
func (h *Hvar) GetAdvanceDelta(glyph GlyphID, coords []NormalizedCoordinate) float32 {
	if h == nil || h.store == nil {
		return 0
	}
	return h.store.GetDelta(h.advMap.Map(uint32(glyph)), coords)
}

// Vvar is a parsed VVAR table: HVAR's vertical-metrics counterpart, giving
// advance-height and (optionally) top/bottom side-bearing deltas.
type Vvar struct {
	store   *ItemVariationStore
	advMap  *DeltaSetIndexMap
	tsbMap  *DeltaSetIndexMap
	bsbMap  *DeltaSetIndexMap
	vOrgMap *DeltaSetIndexMap
}

// ParseVvar parses a VVAR table, including its three optional side-bearing
// and vertical-origin delta-set maps beyond the advance map HVAR also has.
func ParseVvar(data []byte) (*Vvar, error) {
	if len(data) < 24 {
		return nil, ErrInvalidTable
	}
	store, advMap, err := parseVariationsHeader(data)
	if err != nil {
		return nil, err
	}
	v := &Vvar{store: store, advMap: advMap}
	if off := binary.BigEndian.Uint32(data[12:]); off != 0 && int(off) < len(data) {
		if m, err := parseDeltaSetIndexMap(data[off:]); err == nil {
			v.tsbMap = m
		}
	}
	if off := binary.BigEndian.Uint32(data[16:]); off != 0 && int(off) < len(data) {
		if m, err := parseDeltaSetIndexMap(data[off:]); err == nil {
			v.bsbMap = m
		}
	}
	if off := binary.BigEndian.Uint32(data[20:]); off != 0 && int(off) < len(data) {
		if m, err := parseDeltaSetIndexMap(data[off:]); err == nil {
			v.vOrgMap = m
		}
	}
	return v, nil
}

func (v *Vvar) HasData() bool { return v != nil && v.store != nil }

func (v *Vvar) GetAdvanceDelta(glyph GlyphID, coords []NormalizedCoordinate) float32 {
	if v == nil || v.store == nil {
		return 0
	}
	return v.store.GetDelta(v.advMap.Map(uint32(glyph)), coords)
}

func (v *Vvar) GetTopSideBearingDelta(glyph GlyphID, coords []NormalizedCoordinate) float32 {
	if v == nil || v.store == nil || v.tsbMap == nil {
		return 0
	}
	return v.store.GetDelta(v.tsbMap.Map(uint32(glyph)), coords)
}

func (v *Vvar) GetBottomSideBearingDelta(glyph GlyphID, coords []NormalizedCoordinate) float32 {
	if v == nil || v.store == nil || v.bsbMap == nil {
		return 0
	}
	return v.store.GetDelta(v.bsbMap.Map(uint32(glyph)), coords)
}

// parseVariationsHeader parses the shared HVAR/VVAR prefix: a 1.0 version,
// an ItemVariationStore offset, and a primary (advance) delta-set map
// offset, both relative to the table start.
func parseVariationsHeader(data []byte) (*ItemVariationStore, *DeltaSetIndexMap, error) {
	if len(data) < 12 {
		return nil, nil, ErrInvalidTable
	}
	if binary.BigEndian.Uint16(data[0:]) != 1 || binary.BigEndian.Uint16(data[2:]) != 0 {
		return nil, nil, ErrInvalidFormat
	}
	storeOff := binary.BigEndian.Uint32(data[4:])
	mapOff := binary.BigEndian.Uint32(data[8:])

	var store *ItemVariationStore
	if storeOff != 0 && int(storeOff) < len(data) {
		s, err := parseItemVariationStore(data[storeOff:])
		if err != nil {
			return nil, nil, err
		}
		store = s
	}
	var advMap *DeltaSetIndexMap
	if mapOff != 0 && int(mapOff) < len(data) {
		m, err := parseDeltaSetIndexMap(data[mapOff:])
		if err != nil {
			return nil, nil, err
		}
		advMap = m
	}
	return store, advMap, nil
}
