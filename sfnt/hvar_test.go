package sfnt

import (
	"encoding/binary"
	"testing"
)

// buildHvar assembles an HVAR table with no delta-set index map (glyph ID
// doubles directly as the item index) backed by a single-axis variation
// store.
func buildHvar(storeDelta int16) []byte {
	const headerLen = 12
	store := buildSingleAxisVariationStore(storeDelta)
	data := make([]byte, headerLen+len(store))
	binary.BigEndian.PutUint16(data[0:], 1) // major
	binary.BigEndian.PutUint16(data[2:], 0) // minor
	binary.BigEndian.PutUint32(data[4:], uint32(headerLen))
	binary.BigEndian.PutUint32(data[8:], 0) // no advance map
	copy(data[headerLen:], store)
	return data
}

func TestHvarGetAdvanceDelta(t *testing.T) {
	data := buildHvar(30)
	hvar, err := ParseHvar(data)
	if err != nil {
		t.Fatalf("ParseHvar: %v", err)
	}
	if !hvar.HasData() {
		t.Fatal("expected HasData true")
	}
	if got := hvar.GetAdvanceDelta(0, []NormalizedCoordinate{16384}); got != 30 {
		t.Errorf("GetAdvanceDelta at peak: want 30, got %v", got)
	}
	if got := hvar.GetAdvanceDelta(0, []NormalizedCoordinate{0}); got != 0 {
		t.Errorf("GetAdvanceDelta at default: want 0, got %v", got)
	}
}

func TestHvarNilSafe(t *testing.T) {
	var hvar *Hvar
	if hvar.HasData() {
		t.Fatal("nil Hvar should report HasData false")
	}
	if got := hvar.GetAdvanceDelta(3, nil); got != 0 {
		t.Errorf("nil Hvar GetAdvanceDelta: want 0, got %v", got)
	}
}

func TestHvarRejectsBadVersion(t *testing.T) {
	data := make([]byte, 12)
	binary.BigEndian.PutUint16(data[0:], 1)
	binary.BigEndian.PutUint16(data[2:], 1) // minor must be 0
	if _, err := ParseHvar(data); err == nil {
		t.Fatal("expected error for unsupported HVAR minor version")
	}
}
