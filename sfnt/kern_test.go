package sfnt

import (
	"encoding/binary"
	"testing"
)

// buildKernFormat0 assembles a Microsoft/OpenType kern table with a single
// format-0 horizontal subtable holding the given sorted (left, right, value)
// triples.
func buildKernFormat0(pairs [][3]int16) []byte {
	const numPairs = 0 // filled below
	body := make([]byte, 8+len(pairs)*6)
	binary.BigEndian.PutUint16(body[0:], uint16(len(pairs)))
	// searchRange/entrySelector/rangeShift left zero; unused by the reader.
	for i, p := range pairs {
		off := 8 + i*6
		binary.BigEndian.PutUint16(body[off:], uint16(p[0]))
		binary.BigEndian.PutUint16(body[off+2:], uint16(p[1]))
		binary.BigEndian.PutUint16(body[off+4:], uint16(p[2]))
	}

	sub := make([]byte, 6+len(body))
	binary.BigEndian.PutUint16(sub[0:], 0)                   // subVersion
	binary.BigEndian.PutUint16(sub[2:], uint16(6+len(body))) // length
	sub[4] = 0                                               // format 0
	sub[5] = kernCoverageHorizontal
	copy(sub[6:], body)

	table := make([]byte, 4+len(sub))
	binary.BigEndian.PutUint16(table[0:], 0) // version
	binary.BigEndian.PutUint16(table[2:], 1) // numTables
	copy(table[4:], sub)
	return table
}

func TestKernFormat0Lookup(t *testing.T) {
	data := buildKernFormat0([][3]int16{
		{3, 5, -50},
		{3, 9, 20},
		{7, 2, 15},
	})
	kern, err := ParseKern(data)
	if err != nil {
		t.Fatalf("ParseKern: %v", err)
	}
	if len(kern.Subtables()) != 1 {
		t.Fatalf("expected 1 subtable, got %d", len(kern.Subtables()))
	}
	if v := kern.Kerning(3, 5); v != -50 {
		t.Errorf("Kerning(3,5): want -50, got %d", v)
	}
	if v := kern.Kerning(3, 9); v != 20 {
		t.Errorf("Kerning(3,9): want 20, got %d", v)
	}
	if v := kern.Kerning(1, 1); v != 0 {
		t.Errorf("Kerning(1,1): want 0 (no entry), got %d", v)
	}
}

func TestKernRejectsAATHeader(t *testing.T) {
	data := make([]byte, 8)
	binary.BigEndian.PutUint16(data[0:], 1) // version 0x0001 (high word of AAT's 0x00010000)
	if _, err := ParseKern(data); err == nil {
		t.Fatal("expected error for non-zero (AAT-style) version")
	}
}

func TestKernFormat2Lookup(t *testing.T) {
	// Two classes on each side, one kerning value per (leftClass, rightClass)
	// pair. Layout: header(8) + leftClassTable + rightClassTable + kernArray.
	const rowWidth = 4 // 2 columns * 2 bytes
	leftOff := 8
	rightOff := leftOff + (4 + 2*2)
	arrayOff := rightOff + (4 + 2*2)

	// Class-table entries already encode the byte offset (from the start of
	// the subtable) of their row/column within the kerning array: the left
	// table's values start at arrayOff (row 0) and step by rowWidth per
	// class, the right table's values are the plain column byte offset.
	leftClassTable := make([]byte, 4+2*2)
	binary.BigEndian.PutUint16(leftClassTable[0:], 10)                        // firstGlyph
	binary.BigEndian.PutUint16(leftClassTable[2:], 2)                         // numClasses
	binary.BigEndian.PutUint16(leftClassTable[4:], uint16(arrayOff))          // glyph 10 -> row 0
	binary.BigEndian.PutUint16(leftClassTable[6:], uint16(arrayOff+rowWidth)) // glyph 11 -> row 1

	rightClassTable := make([]byte, 4+2*2)
	binary.BigEndian.PutUint16(rightClassTable[0:], 20) // firstGlyph
	binary.BigEndian.PutUint16(rightClassTable[2:], 2)  // numClasses
	binary.BigEndian.PutUint16(rightClassTable[4:], 0)  // glyph 20 -> col 0
	binary.BigEndian.PutUint16(rightClassTable[6:], 2)  // glyph 21 -> col 1

	kernArray := make([]byte, 4*2) // 2x2 grid of int16
	kern00, kern01, kern10, kern11 := int16(-30), int16(10), int16(40), int16(-5)
	binary.BigEndian.PutUint16(kernArray[0:], uint16(kern00)) // row0,col0
	binary.BigEndian.PutUint16(kernArray[2:], uint16(kern01)) // row0,col1
	binary.BigEndian.PutUint16(kernArray[4:], uint16(kern10)) // row1,col0
	binary.BigEndian.PutUint16(kernArray[6:], uint16(kern11)) // row1,col1

	body := make([]byte, 8)
	binary.BigEndian.PutUint16(body[0:], rowWidth)
	binary.BigEndian.PutUint16(body[2:], uint16(leftOff))
	binary.BigEndian.PutUint16(body[4:], uint16(rightOff))
	binary.BigEndian.PutUint16(body[6:], uint16(arrayOff))
	body = append(body, leftClassTable...)
	body = append(body, rightClassTable...)
	body = append(body, kernArray...)

	sub := make([]byte, 6+len(body))
	binary.BigEndian.PutUint16(sub[0:], 0)
	binary.BigEndian.PutUint16(sub[2:], uint16(6+len(body)))
	sub[4] = 2 // format 2
	sub[5] = kernCoverageHorizontal
	copy(sub[6:], body)

	table := make([]byte, 4+len(sub))
	binary.BigEndian.PutUint16(table[0:], 0)
	binary.BigEndian.PutUint16(table[2:], 1)
	copy(table[4:], sub)

	kern, err := ParseKern(table)
	if err != nil {
		t.Fatalf("ParseKern: %v", err)
	}
	if v := kern.Kerning(10, 20); v != -30 {
		t.Errorf("Kerning(10,20): want -30, got %d", v)
	}
	if v := kern.Kerning(11, 21); v != -5 {
		t.Errorf("Kerning(11,21): want -5, got %d", v)
	}
}

func TestKernSkipsFormat1(t *testing.T) {
	sub := make([]byte, 6)
	binary.BigEndian.PutUint16(sub[0:], 0)
	binary.BigEndian.PutUint16(sub[2:], 6)
	sub[4] = 1 // format 1, AAT state machine, unsupported
	sub[5] = kernCoverageHorizontal

	table := make([]byte, 4+len(sub))
	binary.BigEndian.PutUint16(table[0:], 0)
	binary.BigEndian.PutUint16(table[2:], 1)
	copy(table[4:], sub)

	kern, err := ParseKern(table)
	if err != nil {
		t.Fatalf("ParseKern: %v", err)
	}
	if len(kern.Subtables()) != 0 {
		t.Errorf("expected format-1 subtable to be skipped, got %d subtables", len(kern.Subtables()))
	}
}
