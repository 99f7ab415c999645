package sfnt

import (
	"encoding/binary"
	"testing"
)

// buildSingleAxisVariationStore assembles an ItemVariationStore with one
// axis, one region (a tent from 0 to 1.0 peaking at 1.0), and a single
// VarData holding one item whose delta for that region is delta.
func buildSingleAxisVariationStore(delta int16) []byte {
	const headerLen = 12
	const regionListLen = 10
	regionListOff := headerLen
	dataSetOff := headerLen + regionListLen

	data := make([]byte, dataSetOff+8+2)
	binary.BigEndian.PutUint16(data[0:], 1) // format
	binary.BigEndian.PutUint32(data[2:], uint32(regionListOff))
	binary.BigEndian.PutUint16(data[6:], 1) // dataSetCount
	binary.BigEndian.PutUint32(data[8:], uint32(dataSetOff))

	// Region list: 1 axis, 1 region, start=0, peak=1.0, end=1.0.
	binary.BigEndian.PutUint16(data[regionListOff:], 1)   // axisCount
	binary.BigEndian.PutUint16(data[regionListOff+2:], 1) // regionCount
	binary.BigEndian.PutUint16(data[regionListOff+4:], 0)     // start
	binary.BigEndian.PutUint16(data[regionListOff+6:], 16384) // peak (1.0 in F2Dot14)
	binary.BigEndian.PutUint16(data[regionListOff+8:], 16384) // end

	// VarData: 1 item, 1 region index (all-short deltas), delta value.
	binary.BigEndian.PutUint16(data[dataSetOff:], 1)   // itemCount
	binary.BigEndian.PutUint16(data[dataSetOff+2:], 1) // wordSizeCount (shortCount=1)
	binary.BigEndian.PutUint16(data[dataSetOff+4:], 1) // regionIndexCount
	binary.BigEndian.PutUint16(data[dataSetOff+6:], 0) // regionIndices[0]
	binary.BigEndian.PutUint16(data[dataSetOff+8:], uint16(delta))
	return data
}

func TestItemVariationStoreDelta(t *testing.T) {
	data := buildSingleAxisVariationStore(100)
	store, err := parseItemVariationStore(data)
	if err != nil {
		t.Fatalf("parseItemVariationStore: %v", err)
	}

	cases := []struct {
		coord NormalizedCoordinate
		want  float32
	}{
		{0, 0},
		{8192, 50},  // halfway to peak -> half the delta
		{16384, 100}, // at peak -> full delta
	}
	for _, c := range cases {
		got := store.GetDelta(0, []NormalizedCoordinate{c.coord})
		if got != c.want {
			t.Errorf("GetDelta at coord %d: want %v, got %v", c.coord, c.want, got)
		}
	}
}

func TestItemVariationStoreOutOfRangeIndex(t *testing.T) {
	data := buildSingleAxisVariationStore(100)
	store, err := parseItemVariationStore(data)
	if err != nil {
		t.Fatalf("parseItemVariationStore: %v", err)
	}
	// outer index 5 does not exist; GetDelta must degrade to 0, not panic.
	if got := store.GetDelta(5<<16, []NormalizedCoordinate{16384}); got != 0 {
		t.Errorf("expected 0 for out-of-range outer index, got %v", got)
	}
}

func TestDeltaSetIndexMapFormat0(t *testing.T) {
	// entryFormat 0x17: width = ((0x17>>4)&3)+1 = 2, innerBitCount = (0x17&0xF)+1 = 8.
	data := make([]byte, 4+2*2)
	data[0] = 0    // format 0
	data[1] = 0x17 // entryFormat
	binary.BigEndian.PutUint16(data[2:], 2) // mapCount
	binary.BigEndian.PutUint16(data[4:], 5)      // entry 0: outer=0, inner=5
	binary.BigEndian.PutUint16(data[6:], 0x0102) // entry 1: outer=1, inner=2

	dm, err := parseDeltaSetIndexMap(data)
	if err != nil {
		t.Fatalf("parseDeltaSetIndexMap: %v", err)
	}
	if got := dm.Map(0); got != 5 {
		t.Errorf("Map(0): want 5, got %d", got)
	}
	if got := dm.Map(1); got != (1<<16 | 2) {
		t.Errorf("Map(1): want %d, got %d", 1<<16|2, got)
	}
	// Out-of-range identifiers clamp to the last entry.
	if got := dm.Map(9); got != (1<<16 | 2) {
		t.Errorf("Map(9) clamped: want %d, got %d", 1<<16|2, got)
	}
}

func TestItemVariationStoreRegionScalars(t *testing.T) {
	data := buildSingleAxisVariationStore(100)
	store, err := parseItemVariationStore(data)
	if err != nil {
		t.Fatalf("parseItemVariationStore: %v", err)
	}
	scalars := store.RegionScalars(0, []NormalizedCoordinate{16384})
	if len(scalars) != 1 || scalars[0] != 1.0 {
		t.Errorf("expected [1.0] at peak, got %v", scalars)
	}
	scalars = store.RegionScalars(0, []NormalizedCoordinate{8192})
	if len(scalars) != 1 || scalars[0] != 0.5 {
		t.Errorf("expected [0.5] halfway to peak, got %v", scalars)
	}
	if got := store.RegionScalars(5, nil); got != nil {
		t.Errorf("expected nil for out-of-range dataSetIndex, got %v", got)
	}
	var nilStore *ItemVariationStore
	if got := nilStore.RegionScalars(0, nil); got != nil {
		t.Errorf("expected nil RegionScalars on nil store, got %v", got)
	}
}

func TestDeltaSetIndexMapNilPassesThrough(t *testing.T) {
	var dm *DeltaSetIndexMap
	if got := dm.Map(42); got != 42 {
		t.Errorf("nil map should pass identifiers through unchanged, got %d", got)
	}
}
