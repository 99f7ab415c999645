package sfnt

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Name platform IDs, per the OpenType 'name' table spec.
const (
	namePlatformUnicode   = 0
	namePlatformMacintosh = 1
	namePlatformWindows   = 3
)

// Well-known name IDs.
const (
	NameIDCopyright        = 0
	NameIDFamily           = 1
	NameIDSubfamily        = 2
	NameIDUniqueID         = 3
	NameIDFullName         = 4
	NameIDVersion          = 5
	NameIDPostScriptName   = 6
	NameIDTrademark        = 7
	NameIDManufacturer     = 8
	NameIDDesigner         = 9
	NameIDDescription      = 10
	NameIDPreferredFamily  = 16
	NameIDPreferredSubfam  = 17
	NameIDVariationsPSName = 25
)

// nameRecordKey identifies one language/platform variant of a name string;
// callers usually just want NameID's best pick (Get), but LocalizedNames
// exposes the full set for callers that care about language.
type nameRecordKey struct {
	platformID, encodingID, languageID, nameID uint16
}

// Name is a parsed 'name' table: a set of human-readable strings (family,
// subfamily, PostScript name, and so on), each recorded once per
// platform/encoding/language a font author chose to localize into.
type Name struct {
	records map[nameRecordKey]string
	// langTags holds format-1's IETF BCP 47 language tags, indexed by
	// languageID-0x8000, for records whose languageID falls in the
	// user-defined range.
	langTags []string
}

// ParseName parses a name table, decoding Windows/Unicode platform strings
// as UTF-16BE and Macintosh Roman-encoded strings via their respective
// text encodings rather than assuming ASCII.
func ParseName(data []byte) (*Name, error) {
	p := NewParser(data)
	format, err := p.U16()
	if err != nil {
		return nil, ErrInvalidTable
	}
	count, err := p.U16()
	if err != nil {
		return nil, ErrInvalidTable
	}
	storageOffset, err := p.U16()
	if err != nil {
		return nil, ErrInvalidTable
	}

	n := &Name{records: make(map[nameRecordKey]string, count)}
	if format > 1 {
		return n, nil // unknown format: no records are read, the table is returned empty
	}

	type rawRecord struct {
		key            nameRecordKey
		offset, length uint16
	}
	raw := make([]rawRecord, 0, count)
	for i := 0; i < int(count); i++ {
		platformID, e1 := p.U16()
		encodingID, e2 := p.U16()
		languageID, e3 := p.U16()
		nameID, e4 := p.U16()
		length, e5 := p.U16()
		offset, e6 := p.U16()
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil || e6 != nil {
			break
		}
		raw = append(raw, rawRecord{
			key:    nameRecordKey{platformID, encodingID, languageID, nameID},
			offset: offset, length: length,
		})
	}

	if format == 1 {
		if langCount, err := p.U16(); err == nil {
			n.langTags = make([]string, langCount)
			for i := range n.langTags {
				length, e1 := p.U16()
				offset, e2 := p.U16()
				if e1 != nil || e2 != nil {
					break
				}
				start := int(storageOffset) + int(offset)
				if start+int(length) <= len(data) {
					n.langTags[i] = decodeNameBytes(namePlatformWindows, 1, data[start:start+int(length)])
				}
			}
		}
	}

	for _, r := range raw {
		start := int(storageOffset) + int(r.offset)
		if start < 0 || start+int(r.length) > len(data) {
			continue
		}
		str := decodeNameBytes(r.key.platformID, r.key.encodingID, data[start:start+int(r.length)])
		if str != "" {
			n.records[r.key] = str
		}
	}
	return n, nil
}

// decodeNameBytes decodes one name record's raw bytes per its platform and
// encoding: UTF-16BE for Unicode and Windows platforms (nearly every
// Windows encodingID means UTF-16BE in practice), and Mac Roman for the
// Macintosh platform's default encoding, matching how real name tables
// encode Latin-script strings when they don't just use Unicode outright.
func decodeNameBytes(platformID, encodingID uint16, raw []byte) string {
	switch platformID {
	case namePlatformUnicode, namePlatformWindows:
		out, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		return string(out)
	case namePlatformMacintosh:
		if encodingID == 0 {
			out, err := charmap.Macintosh.NewDecoder().Bytes(raw)
			if err != nil {
				return string(raw)
			}
			return string(out)
		}
		// Non-Roman Mac encodings (Japanese, Korean, ...) are rare in
		// practice for the name strings this package's callers care
		// about; fall through to a best-effort raw pass so the record
		// still surfaces rather than vanishing entirely.
		return string(raw)
	default:
		return string(raw)
	}
}

// Get returns a string recorded for nameID, preferring the Windows
// Unicode BMP (platform 3, encoding 1, US English) record, then any
// Windows or Unicode platform record, then any Macintosh record. When
// several records of the same rank exist, which one is returned is not
// defined.
func (n *Name) Get(nameID uint16) string {
	if n == nil {
		return ""
	}
	if s, ok := n.records[nameRecordKey{namePlatformWindows, 1, 0x0409, nameID}]; ok {
		return s
	}
	var macFallback string
	for k, v := range n.records {
		if k.nameID != nameID {
			continue
		}
		if k.platformID == namePlatformWindows || k.platformID == namePlatformUnicode {
			return v
		}
		if k.platformID == namePlatformMacintosh && macFallback == "" {
			macFallback = v
		}
	}
	return macFallback
}

func (n *Name) PostScriptName() string { return n.Get(NameIDPostScriptName) }
func (n *Name) FamilyName() string     { return n.Get(NameIDFamily) }
func (n *Name) FullName() string       { return n.Get(NameIDFullName) }
func (n *Name) SubfamilyName() string  { return n.Get(NameIDSubfamily) }
