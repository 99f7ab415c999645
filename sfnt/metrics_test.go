package sfnt

import (
	"encoding/binary"
	"testing"
	"time"
)

func buildHead(upem uint16, xMin, yMin, xMax, yMax int16) []byte {
	data := make([]byte, 54)
	binary.BigEndian.PutUint32(data[0:], 0x00010000) // version
	binary.BigEndian.PutUint32(data[4:], 0x00010000) // fontRevision 1.0
	binary.BigEndian.PutUint32(data[8:], 0)          // checksumAdjustment
	binary.BigEndian.PutUint32(data[12:], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(data[16:], 0) // flags
	binary.BigEndian.PutUint16(data[18:], upem)
	binary.BigEndian.PutUint64(data[20:], 3600000000) // created, seconds since 1904
	binary.BigEndian.PutUint64(data[28:], 3600000100) // modified
	binary.BigEndian.PutUint16(data[36:], uint16(xMin))
	binary.BigEndian.PutUint16(data[38:], uint16(yMin))
	binary.BigEndian.PutUint16(data[40:], uint16(xMax))
	binary.BigEndian.PutUint16(data[42:], uint16(yMax))
	binary.BigEndian.PutUint16(data[44:], 0) // macStyle
	binary.BigEndian.PutUint16(data[46:], 9) // lowestRecPPEM
	binary.BigEndian.PutUint16(data[48:], 2) // fontDirectionHint
	binary.BigEndian.PutUint16(data[50:], 1) // indexToLocFormat (long)
	binary.BigEndian.PutUint16(data[52:], 0) // glyphDataFormat
	return data
}

func TestParseHead(t *testing.T) {
	data := buildHead(2048, -100, -200, 1900, 1800)
	head, err := ParseHead(data)
	if err != nil {
		t.Fatalf("ParseHead: %v", err)
	}
	if head.UnitsPerEm != 2048 {
		t.Errorf("expected upem 2048, got %d", head.UnitsPerEm)
	}
	if head.XMin != -100 || head.YMin != -200 || head.XMax != 1900 || head.YMax != 1800 {
		t.Errorf("unexpected bbox: %+v", head)
	}
	if head.IndexToLocFormat != 1 {
		t.Errorf("expected long loca format, got %d", head.IndexToLocFormat)
	}
	wantCreated := sfntEpoch.Add(3600000000 * time.Second)
	if !head.Created.Equal(wantCreated) {
		t.Errorf("unexpected Created: got %v, want %v", head.Created, wantCreated)
	}
}

func TestParseHeadRejectsBadMagic(t *testing.T) {
	data := buildHead(1000, 0, 0, 0, 0)
	binary.BigEndian.PutUint32(data[12:], 0)
	if _, err := ParseHead(data); err == nil {
		t.Fatal("expected error for bad magic number")
	}
}

func TestParseHeadRejectsTruncated(t *testing.T) {
	data := buildHead(1000, 0, 0, 0, 0)[:40]
	if _, err := ParseHead(data); err == nil {
		t.Fatal("expected error for truncated head table")
	}
}

func buildOS2(version uint16, weight, width uint16, ascender, descender int16) []byte {
	length := 78
	switch {
	case version >= 2:
		length = 96
	case version >= 1:
		length = 86
	}
	data := make([]byte, length)
	binary.BigEndian.PutUint16(data[0:], version)
	binary.BigEndian.PutUint16(data[2:], uint16(int16(600))) // xAvgCharWidth
	binary.BigEndian.PutUint16(data[4:], weight)
	binary.BigEndian.PutUint16(data[6:], width)
	// Panose at [32:42], vendID at [58:62] are left zeroed.
	binary.BigEndian.PutUint16(data[68:], uint16(ascender))
	binary.BigEndian.PutUint16(data[70:], uint16(descender))
	if version >= 2 {
		binary.BigEndian.PutUint16(data[86:], 500) // sxHeight
		binary.BigEndian.PutUint16(data[88:], 700) // sCapHeight
	}
	return data
}

func TestParseOS2Version0(t *testing.T) {
	data := buildOS2(0, 400, 5, 1900, -500)
	os2, err := ParseOS2(data)
	if err != nil {
		t.Fatalf("ParseOS2: %v", err)
	}
	if os2.UsWeightClass != 400 {
		t.Errorf("expected weight 400, got %d", os2.UsWeightClass)
	}
	if os2.STypoAscender != 1900 || os2.STypoDescender != -500 {
		t.Errorf("unexpected typo metrics: %+v", os2)
	}
	if os2.SCapHeight != 0 {
		t.Errorf("version 0 table should not populate SCapHeight, got %d", os2.SCapHeight)
	}
}

func TestParseOS2Version2(t *testing.T) {
	data := buildOS2(2, 700, 5, 1900, -500)
	os2, err := ParseOS2(data)
	if err != nil {
		t.Fatalf("ParseOS2: %v", err)
	}
	if os2.SxHeight != 500 || os2.SCapHeight != 700 {
		t.Errorf("unexpected version-2 metrics: %+v", os2)
	}
}

func TestParseOS2Truncated(t *testing.T) {
	if _, err := ParseOS2(make([]byte, 40)); err == nil {
		t.Fatal("expected error for truncated OS/2 table")
	}
}
