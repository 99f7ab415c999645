package sfnt

import "encoding/binary"

// ItemVariationStore is the shared variation-delta data structure behind
// HVAR, VVAR, MVAR, and (through a DeltaSetIndexMap-free path) CFF2's
// per-glyph blend operands: a list of regions defined over the font's
// variation axes, plus one or more VarData subtables holding, per item, one
// delta per region the item participates in.
type ItemVariationStore struct {
	regions  *VarRegionList
	dataSets []varData
}

type varData struct {
	itemCount       int
	shortDeltaCount int
	longWords       bool
	regionIndices   []uint16
	rowSize         int
	rows            []byte
}

func parseItemVariationStore(data []byte) (*ItemVariationStore, error) {
	p := NewParser(data)
	format, err := p.U16()
	if err != nil || format != 1 {
		return nil, ErrInvalidFormat
	}
	regionListOffset, err1 := p.U32()
	dataSetCount, err2 := p.U16()
	if err1 != nil || err2 != nil {
		return nil, ErrInvalidTable
	}

	store := &ItemVariationStore{}
	if regionListOffset != 0 && int(regionListOffset) < len(data) {
		rl, err := parseVarRegionList(data[regionListOffset:])
		if err != nil {
			return nil, err
		}
		store.regions = rl
	}

	store.dataSets = make([]varData, dataSetCount)
	for i := range store.dataSets {
		off, err := p.U32()
		if err != nil {
			return nil, ErrInvalidTable
		}
		if off == 0 || int(off) >= len(data) {
			continue
		}
		vd, err := parseVarData(data[off:])
		if err != nil {
			continue // one malformed VarData subtable does not sink the whole store
		}
		store.dataSets[i] = vd
	}
	return store, nil
}

func parseVarData(data []byte) (varData, error) {
	p := NewParser(data)
	itemCount, err1 := p.U16()
	wordSizeCount, err2 := p.U16()
	regionIndexCount, err3 := p.U16()
	if err1 != nil || err2 != nil || err3 != nil {
		return varData{}, ErrInvalidTable
	}
	longWords := wordSizeCount&0x8000 != 0
	shortCount := int(wordSizeCount & 0x7FFF)

	indices := make([]uint16, regionIndexCount)
	for i := range indices {
		v, err := p.U16()
		if err != nil {
			return varData{}, ErrInvalidTable
		}
		indices[i] = v
	}

	var rowSize int
	if longWords {
		rowSize = shortCount*4 + (int(regionIndexCount)-shortCount)*2
	} else {
		rowSize = shortCount*2 + (int(regionIndexCount) - shortCount)
	}
	rowsStart := p.Offset()
	need := rowsStart + int(itemCount)*rowSize
	if need > len(data) {
		return varData{}, ErrInvalidOffset
	}

	vd := varData{
		itemCount:       int(itemCount),
		shortDeltaCount: shortCount,
		longWords:       longWords,
		regionIndices:   indices,
		rowSize:         rowSize,
		rows:            data[rowsStart:need],
	}
	return vd, nil
}

// GetDelta resolves a packed (outer<<16|inner) variation index to a
// blended float delta at the given normalized coordinates.
func (vs *ItemVariationStore) GetDelta(varIdx uint32, coords []NormalizedCoordinate) float32 {
	if vs == nil || vs.regions == nil {
		return 0
	}
	outer := int(varIdx >> 16)
	inner := int(varIdx & 0xFFFF)
	if outer < 0 || outer >= len(vs.dataSets) {
		return 0
	}
	return vs.dataSets[outer].delta(inner, vs.regions, coords)
}

// RegionScalars returns the per-region blend scalars for the VarData
// subtable at dataSetIndex (CFF2's vsindex) at the given normalized
// coordinates, one per region that subtable's rows carry deltas for. This
// is CFF2's 'blend' operator's building block: unlike GetDelta, it has no
// particular item in mind yet, since the operand tuples on the charstring
// stack take the place of a stored delta row.
func (vs *ItemVariationStore) RegionScalars(dataSetIndex int, coords []NormalizedCoordinate) []float32 {
	if vs == nil || vs.regions == nil || dataSetIndex < 0 || dataSetIndex >= len(vs.dataSets) {
		return nil
	}
	vd := &vs.dataSets[dataSetIndex]
	scalars := make([]float32, len(vd.regionIndices))
	for i, regionIdx := range vd.regionIndices {
		scalars[i] = vs.regions.Evaluate(int(regionIdx), coords)
	}
	return scalars
}

func (vd *varData) delta(item int, regions *VarRegionList, coords []NormalizedCoordinate) float32 {
	if item < 0 || item >= vd.itemCount || vd.rows == nil {
		return 0
	}
	row := vd.rows[item*vd.rowSize : (item+1)*vd.rowSize]
	var total float32
	for i, regionIdx := range vd.regionIndices {
		scalar := regions.Evaluate(int(regionIdx), coords)
		if scalar == 0 {
			continue
		}
		total += scalar * float32(vd.readDelta(row, i))
	}
	return total
}

func (vd *varData) readDelta(row []byte, i int) int32 {
	if vd.longWords {
		if i < vd.shortDeltaCount {
			return int32(binary.BigEndian.Uint32(row[i*4:]))
		}
		off := vd.shortDeltaCount*4 + (i-vd.shortDeltaCount)*2
		return int32(int16(binary.BigEndian.Uint16(row[off:])))
	}
	if i < vd.shortDeltaCount {
		return int32(int16(binary.BigEndian.Uint16(row[i*2:])))
	}
	off := vd.shortDeltaCount*2 + (i - vd.shortDeltaCount)
	return int32(int8(row[off]))
}

// VarRegionList is the shared table of variation regions that both HVAR/VVAR
// item stores and gvar's shared-tuple mechanism ultimately reduce to: an
// N-dimensional box (start, peak, end) per axis, whose per-axis triangular
// tent functions multiply together into one region scalar.
type VarRegionList struct {
	data        []byte
	axisCount   int
	regionCount int
}

func parseVarRegionList(data []byte) (*VarRegionList, error) {
	if len(data) < 4 {
		return nil, ErrInvalidTable
	}
	axisCount := int(binary.BigEndian.Uint16(data[0:]))
	regionCount := int(binary.BigEndian.Uint16(data[2:]))
	if len(data) < 4+regionCount*axisCount*6 {
		return nil, ErrInvalidOffset
	}
	return &VarRegionList{data: data, axisCount: axisCount, regionCount: regionCount}, nil
}

// Evaluate computes a region's scalar contribution at coords, the product
// of each axis's triangular tent function evaluated at that axis's
// normalized coordinate (or 0 if the caller didn't supply one).
func (rl *VarRegionList) Evaluate(regionIndex int, coords []NormalizedCoordinate) float32 {
	if rl == nil || regionIndex < 0 || regionIndex >= rl.regionCount {
		return 0
	}
	regionOffset := 4 + regionIndex*rl.axisCount*6
	scalar := float32(1.0)
	for i := 0; i < rl.axisCount; i++ {
		off := regionOffset + i*6
		start := NormalizedCoordinate(binary.BigEndian.Uint16(rl.data[off:]))
		peak := NormalizedCoordinate(binary.BigEndian.Uint16(rl.data[off+2:]))
		end := NormalizedCoordinate(binary.BigEndian.Uint16(rl.data[off+4:]))
		var coord NormalizedCoordinate
		if i < len(coords) {
			coord = coords[i]
		}
		factor := tentScalar(start, peak, coord, end)
		if factor == 0 {
			return 0
		}
		scalar *= factor
	}
	return scalar
}

// tentScalar is the OpenType variation region-axis scalar function: 1 at
// the peak, linearly falling to 0 at start/end, and 0 outside [start, end].
func tentScalar(start, peak, coord, end NormalizedCoordinate) float32 {
	switch {
	case peak == 0 || coord == peak:
		return 1.0
	case coord <= start || coord >= end:
		return 0.0
	case coord < peak:
		if peak == start {
			return 1.0
		}
		return float32(coord-start) / float32(peak-start)
	default:
		if peak == end {
			return 1.0
		}
		return float32(end-coord) / float32(end-peak)
	}
}

// DeltaSetIndexMap maps a glyph ID (or other outer identifier) onto a
// packed (outer<<16|inner) variation index into an ItemVariationStore.
type DeltaSetIndexMap struct {
	data          []byte
	format        uint8
	innerBitCount int
	width         int
	mapCount      uint32
	headerSize    int
}

func parseDeltaSetIndexMap(data []byte) (*DeltaSetIndexMap, error) {
	if len(data) < 1 {
		return nil, ErrInvalidTable
	}
	format := data[0]
	var entryFormat uint8
	var mapCount uint32
	var headerSize int
	switch format {
	case 0:
		if len(data) < 4 {
			return nil, ErrInvalidTable
		}
		entryFormat = data[1]
		mapCount = uint32(binary.BigEndian.Uint16(data[2:]))
		headerSize = 4
	case 1:
		if len(data) < 6 {
			return nil, ErrInvalidTable
		}
		entryFormat = data[1]
		mapCount = binary.BigEndian.Uint32(data[2:])
		headerSize = 6
	default:
		return nil, ErrInvalidFormat
	}
	innerBitCount := int((entryFormat & 0x0F) + 1)
	width := int(((entryFormat>>4)&0x03) + 1)
	if len(data) < headerSize+int(mapCount)*width {
		return nil, ErrInvalidOffset
	}
	return &DeltaSetIndexMap{
		data: data, format: format, innerBitCount: innerBitCount,
		width: width, mapCount: mapCount, headerSize: headerSize,
	}, nil
}

// Map resolves an outer identifier (typically a glyph ID) to a packed
// variation index, clamping to the map's last entry as required by the
// OpenType spec, and passing the identifier through unchanged if there is
// no map at all (the HVAR/VVAR default of "glyph ID doubles as inner
// index").
func (dm *DeltaSetIndexMap) Map(id uint32) uint32 {
	if dm == nil || dm.mapCount == 0 {
		return id
	}
	idx := id
	if idx >= dm.mapCount {
		idx = dm.mapCount - 1
	}
	off := dm.headerSize + int(idx)*dm.width
	var u uint32
	switch dm.width {
	case 1:
		u = uint32(dm.data[off])
	case 2:
		u = uint32(binary.BigEndian.Uint16(dm.data[off:]))
	case 3:
		u = uint32(dm.data[off])<<16 | uint32(dm.data[off+1])<<8 | uint32(dm.data[off+2])
	case 4:
		u = binary.BigEndian.Uint32(dm.data[off:])
	default:
		return id
	}
	outer := u >> dm.innerBitCount
	inner := u & (1<<dm.innerBitCount - 1)
	return outer<<16 | inner
}
