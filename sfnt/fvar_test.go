package sfnt

import (
	"encoding/binary"
	"math"
	"testing"
)

func fixed32(v float64) uint32 { return uint32(int32(math.Round(v * 65536.0))) }

// buildFvar assembles an fvar table with a single "wght" axis
// (min 100, default 400, max 900) and one named instance ("Bold" at 700,
// with a PostScript name ID).
func buildFvar() []byte {
	const headerLen = 16
	const axisLen = 20
	const instanceSize = 4 + 6 // 1 axis coord + subfamilyNameID/flags + postScriptNameID
	axisOff := headerLen
	instancesOff := axisOff + axisLen

	data := make([]byte, instancesOff+instanceSize)
	binary.BigEndian.PutUint16(data[0:], 1)  // major
	binary.BigEndian.PutUint16(data[2:], 0)  // minor
	binary.BigEndian.PutUint16(data[4:], uint16(axisOff))
	binary.BigEndian.PutUint16(data[6:], 0) // reserved
	binary.BigEndian.PutUint16(data[8:], 1) // axisCount
	binary.BigEndian.PutUint16(data[10:], axisLen)
	binary.BigEndian.PutUint16(data[12:], 1) // instanceCount
	binary.BigEndian.PutUint16(data[14:], instanceSize)

	axis := data[axisOff:]
	binary.BigEndian.PutUint32(axis[0:], uint32(TagAxisWeight))
	binary.BigEndian.PutUint32(axis[4:], fixed32(100))
	binary.BigEndian.PutUint32(axis[8:], fixed32(400))
	binary.BigEndian.PutUint32(axis[12:], fixed32(900))
	binary.BigEndian.PutUint16(axis[16:], 0)   // flags
	binary.BigEndian.PutUint16(axis[18:], 256) // nameID

	inst := data[instancesOff:]
	binary.BigEndian.PutUint16(inst[0:], 258) // subfamilyNameID
	binary.BigEndian.PutUint16(inst[2:], 0)   // flags
	binary.BigEndian.PutUint32(inst[4:], fixed32(700))
	binary.BigEndian.PutUint16(inst[8:], 257) // postScriptNameID
	return data
}

func TestFvarAxisInfo(t *testing.T) {
	fvar, err := ParseFvar(buildFvar())
	if err != nil {
		t.Fatalf("ParseFvar: %v", err)
	}
	if !fvar.HasData() {
		t.Fatal("expected HasData true")
	}
	if fvar.AxisCount() != 1 {
		t.Fatalf("expected 1 axis, got %d", fvar.AxisCount())
	}
	info, ok := fvar.FindAxis(TagAxisWeight)
	if !ok {
		t.Fatal("expected to find wght axis")
	}
	if info.MinValue != 100 || info.DefaultValue != 400 || info.MaxValue != 900 {
		t.Errorf("unexpected axis range: %+v", info)
	}
	if _, ok := fvar.FindAxis(TagAxisWidth); ok {
		t.Error("expected no wdth axis")
	}
}

func TestFvarNamedInstances(t *testing.T) {
	fvar, err := ParseFvar(buildFvar())
	if err != nil {
		t.Fatalf("ParseFvar: %v", err)
	}
	if fvar.InstanceCount() != 1 {
		t.Fatalf("expected 1 named instance, got %d", fvar.InstanceCount())
	}
	inst, ok := fvar.NamedInstanceAt(0)
	if !ok {
		t.Fatal("expected named instance 0 to exist")
	}
	if inst.SubfamilyNameID != 258 || inst.PostScriptNameID != 257 {
		t.Errorf("unexpected instance name IDs: %+v", inst)
	}
	if len(inst.Coords) != 1 || math.Abs(float64(inst.Coords[0])-700) > 0.01 {
		t.Errorf("unexpected instance coords: %v", inst.Coords)
	}
}

func TestFvarNormalizeAxisValue(t *testing.T) {
	fvar, err := ParseFvar(buildFvar())
	if err != nil {
		t.Fatalf("ParseFvar: %v", err)
	}
	cases := []struct {
		value float32
		want  float32
	}{
		{400, 0},    // default maps to the origin
		{700, 0.6},  // (700-400)/(900-400)
		{100, -1},   // (100-400)/(400-100)
		{1000, 1},   // clamped to max, then normalized to 1
	}
	for _, c := range cases {
		got := fvar.NormalizeAxisValue(0, c.value).Float32()
		if math.Abs(float64(got-c.want)) > 0.01 {
			t.Errorf("NormalizeAxisValue(%v): want %v, got %v", c.value, c.want, got)
		}
	}
}

func TestFvarNormalizeVariations(t *testing.T) {
	fvar, err := ParseFvar(buildFvar())
	if err != nil {
		t.Fatalf("ParseFvar: %v", err)
	}
	coords := fvar.NormalizeVariations([]Variation{{Tag: TagAxisWeight, Value: 700}})
	if len(coords) != 1 {
		t.Fatalf("expected 1 coordinate, got %d", len(coords))
	}
	if math.Abs(float64(coords[0].Float32()-0.6)) > 0.01 {
		t.Errorf("unexpected normalized coordinate: %v", coords[0].Float32())
	}
	// An axis with no matching Variation defaults to 0.
	coords = fvar.NormalizeVariations(nil)
	if coords[0] != 0 {
		t.Errorf("expected default coordinate 0, got %v", coords[0])
	}
}

func TestFvarRejectsBadVersion(t *testing.T) {
	data := make([]byte, 16)
	binary.BigEndian.PutUint16(data[0:], 1)
	binary.BigEndian.PutUint16(data[2:], 1) // minor must be 0
	if _, err := ParseFvar(data); err == nil {
		t.Fatal("expected error for unsupported fvar minor version")
	}
}
