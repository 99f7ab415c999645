package sfnt

import (
	"encoding/binary"
	"testing"
)

// buildNameTable assembles a format-0 name table with a Windows Unicode
// family-name record and a Macintosh Roman PostScript-name record.
func buildNameTable() []byte {
	familyUTF16 := []byte{0x00, 'A', 0x00, 'b'} // "Ab" as UTF-16BE
	psName := []byte("Ab-Regular")

	const headerLen = 6
	const recordLen = 12
	const count = 2
	storageOffset := headerLen + count*recordLen

	data := make([]byte, storageOffset+len(familyUTF16)+len(psName))
	binary.BigEndian.PutUint16(data[0:], 0) // format 0
	binary.BigEndian.PutUint16(data[2:], count)
	binary.BigEndian.PutUint16(data[4:], uint16(storageOffset))

	rec0 := data[headerLen:]
	binary.BigEndian.PutUint16(rec0[0:], namePlatformWindows)
	binary.BigEndian.PutUint16(rec0[2:], 1)      // encodingID: Unicode BMP
	binary.BigEndian.PutUint16(rec0[4:], 0x0409) // languageID: US English
	binary.BigEndian.PutUint16(rec0[6:], NameIDFamily)
	binary.BigEndian.PutUint16(rec0[8:], uint16(len(familyUTF16)))
	binary.BigEndian.PutUint16(rec0[10:], 0) // offset within storage

	rec1 := data[headerLen+recordLen:]
	binary.BigEndian.PutUint16(rec1[0:], namePlatformMacintosh)
	binary.BigEndian.PutUint16(rec1[2:], 0) // encodingID: Roman
	binary.BigEndian.PutUint16(rec1[4:], 0) // languageID: English
	binary.BigEndian.PutUint16(rec1[6:], NameIDPostScriptName)
	binary.BigEndian.PutUint16(rec1[8:], uint16(len(psName)))
	binary.BigEndian.PutUint16(rec1[10:], uint16(len(familyUTF16)))

	copy(data[storageOffset:], familyUTF16)
	copy(data[storageOffset+len(familyUTF16):], psName)
	return data
}

func TestParseNameTable(t *testing.T) {
	name, err := ParseName(buildNameTable())
	if err != nil {
		t.Fatalf("ParseName: %v", err)
	}
	if got := name.FamilyName(); got != "Ab" {
		t.Errorf("FamilyName: want %q, got %q", "Ab", got)
	}
	if got := name.PostScriptName(); got != "Ab-Regular" {
		t.Errorf("PostScriptName: want %q, got %q", "Ab-Regular", got)
	}
	if got := name.Get(NameIDFullName); got != "" {
		t.Errorf("expected no full name recorded, got %q", got)
	}
}

func TestNameNilSafe(t *testing.T) {
	var name *Name
	if got := name.Get(NameIDFamily); got != "" {
		t.Errorf("nil Name Get should return empty, got %q", got)
	}
	if got := name.FamilyName(); got != "" {
		t.Errorf("nil Name FamilyName should return empty, got %q", got)
	}
}

func TestParseNameRejectsTruncatedHeader(t *testing.T) {
	if _, err := ParseName(make([]byte, 2)); err == nil {
		t.Fatal("expected error for truncated name table header")
	}
}

func TestParseNameFutureFormatStillParses(t *testing.T) {
	data := make([]byte, 6)
	binary.BigEndian.PutUint16(data[0:], 2) // unrecognized future format
	name, err := ParseName(data)
	if err != nil {
		t.Fatalf("ParseName: %v", err)
	}
	if got := name.Get(NameIDFamily); got != "" {
		t.Errorf("expected no records for a bare future-format header, got %q", got)
	}
}
