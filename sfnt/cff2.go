package sfnt

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ParseCFF2 parses a CFF2 table. CFF2 keeps CFF's DICT/charstring/subroutine
// machinery but drops per-glyph widths, Encoding, and Charset, and adds an
// ItemVariationStore that the charstring 'blend'/'vsindex' operators pull
// deltas from at the font's current normalized coordinates. The Top DICT is
// stored as a raw byte span rather than an INDEX entry, and every INDEX in
// the table uses a 4-byte item count instead of CFF's 2-byte one.
func ParseCFF2(data []byte) (*CFF, error) {
	if len(data) < 5 {
		return nil, errors.New("CFF2: data too short")
	}
	major, minor, hdrSize := data[0], data[1], data[2]
	if major != 2 {
		return nil, fmt.Errorf("CFF2: unsupported version %d.%d", major, minor)
	}
	topDictLength := int(binary.BigEndian.Uint16(data[3:5]))
	if int(hdrSize) > len(data) || int(hdrSize)+topDictLength > len(data) {
		return nil, errors.New("CFF2: Top DICT extends beyond buffer")
	}

	cff := &CFF{
		data:   data,
		header: cffHeader{major: major, minor: minor, hdrSize: hdrSize},
		IsCFF2: true,
	}

	topDict, err := parseTopDict(data[int(hdrSize) : int(hdrSize)+topDictLength])
	if err != nil {
		return nil, fmt.Errorf("CFF2: parsing Top DICT: %w", err)
	}
	cff.TopDict = topDict

	offset := int(hdrSize) + topDictLength
	cff.GlobalSubrs, offset, err = parseINDEX2Advancing(data, offset, "Global Subrs")
	if err != nil {
		return nil, err
	}

	if cff.TopDict.CharStrings > 0 && cff.TopDict.CharStrings < len(data) {
		cff.CharStrings, _, err = parseINDEX2(data[cff.TopDict.CharStrings:])
		if err != nil {
			return nil, fmt.Errorf("CFF2: parsing CharStrings INDEX: %w", err)
		}
	}

	cff.IsCID = cff.TopDict.FDArray > 0 && cff.TopDict.FDSelect > 0
	if cff.TopDict.FDArray > 0 && cff.TopDict.FDArray < len(data) {
		fdDicts, _, ferr := parseINDEX2(data[cff.TopDict.FDArray:])
		if ferr == nil {
			cff.FDArray = make([]FontDict, len(fdDicts))
			for i, fdData := range fdDicts {
				fd, err := parseFontDict(fdData)
				if err != nil {
					continue
				}
				fd.LocalSubrs = cff2PrivateLocalSubrs(data, fd.Private)
				cff.FDArray[i] = fd
			}
		}
	}
	if cff.TopDict.FDSelect > 0 && cff.TopDict.FDSelect < len(data) && len(cff.CharStrings) > 0 {
		cff.FDSelect, _ = parseFDSelect(data, cff.TopDict.FDSelect, len(cff.CharStrings))
	}

	// A non-CID CFF2 font carries a single Private DICT straight off the
	// Top DICT, the same as CFF1.
	if !cff.IsCID && cff.TopDict.Private[0] > 0 && cff.TopDict.Private[1] > 0 {
		privOffset, privSize := cff.TopDict.Private[1], cff.TopDict.Private[0]
		if privOffset+privSize <= len(data) {
			cff.PrivateDict, _ = parsePrivateDict(data[privOffset : privOffset+privSize])
			cff.LocalSubrs = cff2PrivateLocalSubrs(data, cff.TopDict.Private)
		}
	}

	if cff.TopDict.VStore > 0 && cff.TopDict.VStore < len(data) {
		cff.VStore = parseCFF2VariationStore(data, cff.TopDict.VStore)
	}

	return cff, nil
}

// parseINDEX2Advancing parses a CFF2 INDEX at data[offset:] and returns the
// items along with the offset just past it, for callers threading a single
// cursor through a sequence of INDEXes.
func parseINDEX2Advancing(data []byte, offset int, name string) ([][]byte, int, error) {
	items, consumed, err := parseINDEX2(data[offset:])
	if err != nil {
		return nil, offset, fmt.Errorf("CFF2: parsing %s INDEX: %w", name, err)
	}
	return items, offset + consumed, nil
}

// parseINDEX2 parses a CFF2 INDEX structure: identical to CFF's INDEX except
// the item count is a 4-byte field instead of 2.
func parseINDEX2(data []byte) ([][]byte, int, error) {
	if len(data) < 4 {
		return nil, 0, errors.New("INDEX2: data too short")
	}
	count := int(binary.BigEndian.Uint32(data[0:4]))
	if count == 0 {
		return nil, 4, nil
	}
	if len(data) < 5 {
		return nil, 0, errors.New("INDEX2: data too short for offSize")
	}
	offSize := int(data[4])
	if offSize < 1 || offSize > 4 {
		return nil, 0, fmt.Errorf("INDEX2: invalid offSize %d", offSize)
	}

	headerSize := 5 + (count+1)*offSize
	if len(data) < headerSize {
		return nil, 0, errors.New("INDEX2: data too short for offsets")
	}

	offsets := make([]int, count+1)
	for i := 0; i <= count; i++ {
		off := 5 + i*offSize
		offsets[i] = readOffset(data[off:], offSize)
	}

	dataStart := headerSize
	dataEnd := dataStart + offsets[count] - 1
	if dataEnd > len(data) {
		return nil, 0, errors.New("INDEX2: data extends beyond buffer")
	}

	items := make([][]byte, count)
	for i := 0; i < count; i++ {
		start := dataStart + offsets[i] - 1
		end := dataStart + offsets[i+1] - 1
		if start < 0 || end > len(data) || start > end {
			return nil, 0, fmt.Errorf("INDEX2: invalid item bounds [%d:%d]", start, end)
		}
		items[i] = data[start:end]
	}

	return items, dataEnd, nil
}

// cff2PrivateLocalSubrs resolves a Private DICT's Local Subrs INDEX (offset
// relative to the Private DICT itself), tolerating fonts with no local subrs.
func cff2PrivateLocalSubrs(data []byte, private [2]int) [][]byte {
	size, off := private[0], private[1]
	if size <= 0 || off <= 0 || off+size > len(data) {
		return nil
	}
	priv, err := parsePrivateDict(data[off : off+size])
	if err != nil || priv.Subrs <= 0 {
		return nil
	}
	subrOff := off + priv.Subrs
	if subrOff >= len(data) {
		return nil
	}
	subrs, _, err := parseINDEX2(data[subrOff:])
	if err != nil {
		return nil
	}
	return subrs
}

// parseCFF2VariationStore reads the VariationStore table at offset: a
// 2-byte length prefix (per the CFF2 spec's "VariationStore Data" layout)
// followed by an ordinary ItemVariationStore.
func parseCFF2VariationStore(data []byte, offset int) *ItemVariationStore {
	if offset+2 > len(data) {
		return nil
	}
	length := int(binary.BigEndian.Uint16(data[offset:]))
	start := offset + 2
	end := start + length
	if end > len(data) {
		return nil
	}
	vs, err := parseItemVariationStore(data[start:end])
	if err != nil {
		return nil
	}
	return vs
}
