package sfnt

// Post is a parsed post table: italic angle, underline metrics, the
// fixed-pitch flag, and (for version 2.0) a full glyph-name table.
type Post struct {
	Version            Fixed
	ItalicAngle        Fixed
	UnderlinePosition  FWord
	UnderlineThickness FWord
	IsFixedPitch       uint32
	names              []string // version 2.0 only, one per glyph
}

// ParsePost parses a post table. Versions 1.0, 2.0, 2.5 (deprecated), and
// 3.0 (no glyph names) are recognized; version 2.0's glyph name array is
// decoded in full.
func ParsePost(data []byte) (*Post, error) {
	if len(data) < 32 {
		return nil, ErrInvalidTable
	}
	p := NewParser(data)
	version, err := p.Fixed()
	if err != nil {
		return nil, ErrInvalidTable
	}
	italic, err1 := p.Fixed()
	underlinePos, err2 := p.FWord()
	underlineThick, err3 := p.FWord()
	fixedPitch, err4 := p.U32()
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, ErrInvalidTable
	}
	// minMemType42/maxMemType42/minMemType1/maxMemType1: 4 uint32, unused.
	if err := p.Skip(16); err != nil {
		return nil, ErrInvalidTable
	}

	post := &Post{
		Version:            version,
		ItalicAngle:        italic,
		UnderlinePosition:  underlinePos,
		UnderlineThickness: underlineThick,
		IsFixedPitch:       fixedPitch,
	}

	if version.Float32() != 2.0 {
		return post, nil
	}

	numGlyphs, err := p.U16()
	if err != nil {
		return post, nil
	}
	indices := make([]uint16, numGlyphs)
	for i := range indices {
		v, err := p.U16()
		if err != nil {
			return post, nil
		}
		indices[i] = v
	}

	var pascalNames []string
	for p.Remaining() > 0 {
		n, err := p.U8()
		if err != nil {
			break
		}
		b, err := p.Bytes(int(n))
		if err != nil {
			break
		}
		pascalNames = append(pascalNames, string(b))
	}

	post.names = make([]string, numGlyphs)
	for i, idx := range indices {
		if idx < 258 {
			post.names[i] = macGlyphNames[idx]
		} else if int(idx-258) < len(pascalNames) {
			post.names[i] = pascalNames[idx-258]
		}
	}
	return post, nil
}

// ItalicAngleDegrees returns the italic angle in degrees.
func (p *Post) ItalicAngleDegrees() float64 {
	return float64(p.ItalicAngle.Float32())
}

// GlyphName returns glyph's PostScript name, if the table carries version
// 2.0 names.
func (p *Post) GlyphName(glyph GlyphID) string {
	if p == nil || int(glyph) >= len(p.names) {
		return ""
	}
	return p.names[glyph]
}

// macGlyphNames is the standard Macintosh ordering of the 258 predefined
// PostScript glyph names a post version-2.0 table indexes into before
// falling back to its own Pascal-string names array.
var macGlyphNames = [258]string{
	".notdef", ".null", "nonmarkingreturn", "space", "exclam", "quotedbl",
	"numbersign", "dollar", "percent", "ampersand", "quotesingle",
	"parenleft", "parenright", "asterisk", "plus", "comma", "hyphen",
	"period", "slash", "zero", "one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "colon", "semicolon", "less",
	"equal", "greater", "question", "at", "A", "B", "C", "D", "E", "F",
	"G", "H", "I", "J", "K", "L", "M", "N", "O", "P", "Q", "R", "S", "T",
	"U", "V", "W", "X", "Y", "Z", "bracketleft", "backslash",
	"bracketright", "asciicircum", "underscore", "grave", "a", "b", "c",
	"d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q",
	"r", "s", "t", "u", "v", "w", "x", "y", "z", "braceleft", "bar",
	"braceright", "asciitilde", "Adieresis", "Aring", "Ccedilla",
	"Eacute", "Ntilde", "Odieresis", "Udieresis", "aacute", "agrave",
	"acircumflex", "adieresis", "atilde", "aring", "ccedilla", "eacute",
	"egrave", "ecircumflex", "edieresis", "iacute", "igrave",
	"icircumflex", "idieresis", "ntilde", "oacute", "ograve",
	"ocircumflex", "odieresis", "otilde", "uacute", "ugrave",
	"ucircumflex", "udieresis", "dagger", "degree", "cent", "sterling",
	"section", "bullet", "paragraph", "germandbls", "registered",
	"copyright", "trademark", "acute", "dieresis", "notequal", "AE",
	"Oslash", "infinity", "plusminus", "lessequal", "greaterequal",
	"yen", "mu", "partialdiff", "summation", "product", "pi", "integral",
	"ordfeminine", "ordmasculine", "Omega", "ae", "oslash",
	"questiondown", "exclamdown", "logicalnot", "radical", "florin",
	"approxequal", "Delta", "guillemotleft", "guillemotright",
	"ellipsis", "nonbreakingspace", "Agrave", "Atilde", "Otilde", "OE",
	"oe", "endash", "emdash", "quotedblleft", "quotedblright",
	"quoteleft", "quoteright", "divide", "lozenge", "ydieresis",
	"Ydieresis", "fraction", "currency", "guilsinglleft",
	"guilsinglright", "fi", "fl", "daggerdbl", "periodcentered",
	"quotesinglbase", "quotedblbase", "perthousand", "Acircumflex",
	"Ecircumflex", "Aacute", "Edieresis", "Egrave", "Iacute",
	"Icircumflex", "Idieresis", "Igrave", "Oacute", "Ocircumflex",
	"apple", "Ograve", "Uacute", "Ucircumflex", "Ugrave", "dotlessi",
	"circumflex", "tilde", "macron", "breve", "dotaccent", "ring",
	"cedilla", "hungarumlaut", "ogonek", "caron", "Lslash", "lslash",
	"Scaron", "scaron", "Zcaron", "zcaron", "brokenbar", "Eth", "eth",
	"Yacute", "yacute", "Thorn", "thorn", "minus", "multiply",
	"onesuperior", "twosuperior", "threesuperior", "onehalf",
	"onequarter", "threequarters", "franc", "Gbreve", "gbreve",
	"Idotaccent", "Scedilla", "scedilla", "Cacute", "cacute", "Ccaron",
	"ccaron", "dcroat",
}
