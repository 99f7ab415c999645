package sfnt

// Registered variable-font axis tags.
var (
	TagAxisWeight      = MakeTag('w', 'g', 'h', 't')
	TagAxisWidth       = MakeTag('w', 'd', 't', 'h')
	TagAxisSlant       = MakeTag('s', 'l', 'n', 't')
	TagAxisItalic      = MakeTag('i', 't', 'a', 'l')
	TagAxisOpticalSize = MakeTag('o', 'p', 's', 'z')
)

// TagFvar is the table tag for the font variations table.
var TagFvar = MakeTag('f', 'v', 'a', 'r')

// AxisFlags for variation axes.
type AxisFlags uint16

const AxisFlagHidden AxisFlags = 0x0001

// Variation is a single axis value setting in user (un-normalized) space,
// as a caller would supply it: "wght" = 725.
type Variation struct {
	Tag   Tag
	Value float32
}

// AxisInfo describes one variation axis's user-space range.
type AxisInfo struct {
	Index        int
	Tag          Tag
	NameID       uint16
	Flags        AxisFlags
	MinValue     float32
	DefaultValue float32
	MaxValue     float32
}

// NamedInstance is a font-declared preset point on the design space, e.g.
// "Bold" or "Condensed Light".
type NamedInstance struct {
	Index            int
	SubfamilyNameID  uint16
	PostScriptNameID uint16 // 0 if not present
	Coords           []float32
}

// Fvar is a parsed fvar (Font Variations) table: the axis declarations
// and named instances that define a variable font's design space.
type Fvar struct {
	data         []byte
	axisCount    int
	axisOffset   int
	instanceSize int
	instanceCnt  int
}

// ParseFvar parses an fvar table (version 1.0).
func ParseFvar(data []byte) (*Fvar, error) {
	p := NewParser(data)
	major, err1 := p.U16()
	minor, err2 := p.U16()
	if err1 != nil || err2 != nil || major != 1 || minor != 0 {
		return nil, ErrInvalidFormat
	}
	axisOffset, err1 := p.U16()
	if err := p.Skip(2); err != nil { // reserved
		return nil, ErrInvalidTable
	}
	axisCount, err2 := p.U16()
	axisSize, err3 := p.U16()
	instanceCount, err4 := p.U16()
	instanceSize, err5 := p.U16()
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return nil, ErrInvalidTable
	}
	if axisSize != 20 {
		return nil, ErrInvalidFormat
	}
	if int(instanceSize) < int(axisCount)*4+4 {
		return nil, ErrInvalidFormat
	}
	axesEnd := int(axisOffset) + int(axisCount)*20
	instancesEnd := axesEnd + int(instanceCount)*int(instanceSize)
	if instancesEnd > len(data) {
		return nil, ErrInvalidOffset
	}

	return &Fvar{
		data:         data,
		axisCount:    int(axisCount),
		axisOffset:   int(axisOffset),
		instanceSize: int(instanceSize),
		instanceCnt:  int(instanceCount),
	}, nil
}

func (f *Fvar) HasData() bool { return f != nil && f.axisCount > 0 }

func (f *Fvar) AxisCount() int {
	if f == nil {
		return 0
	}
	return f.axisCount
}

// AxisInfos returns information about all variation axes, in font order.
func (f *Fvar) AxisInfos() []AxisInfo {
	if f == nil || f.axisCount == 0 {
		return nil
	}
	axes := make([]AxisInfo, f.axisCount)
	for i := range axes {
		axes[i] = f.axisInfoAt(i)
	}
	return axes
}

// FindAxis finds an axis by its tag.
func (f *Fvar) FindAxis(tag Tag) (AxisInfo, bool) {
	if f == nil {
		return AxisInfo{}, false
	}
	for i := 0; i < f.axisCount; i++ {
		if info := f.axisInfoAt(i); info.Tag == tag {
			return info, true
		}
	}
	return AxisInfo{}, false
}

func (f *Fvar) axisInfoAt(index int) AxisInfo {
	off := f.axisOffset + index*20
	p := NewParser(f.data)
	if err := p.SetOffset(off); err != nil {
		return AxisInfo{Index: index}
	}
	tag, _ := p.Tag()
	minFx, _ := p.Fixed()
	defFx, _ := p.Fixed()
	maxFx, _ := p.Fixed()
	flags, _ := p.U16()
	nameID, _ := p.U16()
	return AxisInfo{
		Index:        index,
		Tag:          tag,
		MinValue:     minFx.Float32(),
		DefaultValue: defFx.Float32(),
		MaxValue:     maxFx.Float32(),
		Flags:        AxisFlags(flags),
		NameID:       nameID,
	}
}

func (f *Fvar) InstanceCount() int {
	if f == nil {
		return 0
	}
	return f.instanceCnt
}

// NamedInstances returns all named instances, in font order.
func (f *Fvar) NamedInstances() []NamedInstance {
	if f == nil || f.instanceCnt == 0 {
		return nil
	}
	instances := make([]NamedInstance, f.instanceCnt)
	for i := range instances {
		instances[i], _ = f.NamedInstanceAt(i)
	}
	return instances
}

// NamedInstanceAt returns the named instance at index.
func (f *Fvar) NamedInstanceAt(index int) (NamedInstance, bool) {
	if f == nil || index < 0 || index >= f.instanceCnt {
		return NamedInstance{}, false
	}
	instancesStart := f.axisOffset + f.axisCount*20
	off := instancesStart + index*f.instanceSize
	p := NewParser(f.data)
	if err := p.SetOffset(off); err != nil {
		return NamedInstance{}, false
	}
	subfamilyNameID, _ := p.U16()
	p.Skip(2) // flags, reserved
	inst := NamedInstance{
		Index:           index,
		SubfamilyNameID: subfamilyNameID,
		Coords:          make([]float32, f.axisCount),
	}
	for i := range inst.Coords {
		v, err := p.Fixed()
		if err != nil {
			return NamedInstance{}, false
		}
		inst.Coords[i] = v.Float32()
	}
	if f.instanceSize >= f.axisCount*4+6 {
		if psid, err := p.U16(); err == nil {
			inst.PostScriptNameID = psid
		}
	}
	return inst, true
}

// NormalizeAxisValue maps a user-space axis value onto its normalized
// [-1, 1] coordinate: piecewise linear about the axis default, per the
// OpenType variations model (a value at the default maps to 0 regardless
// of how lopsided the axis's min/max range is around it).
func (f *Fvar) NormalizeAxisValue(axisIndex int, value float32) NormalizedCoordinate {
	if f == nil || axisIndex < 0 || axisIndex >= f.axisCount {
		return 0
	}
	info := f.axisInfoAt(axisIndex)
	value = clampFloat32(value, info.MinValue, info.MaxValue)

	var normalized float32
	switch {
	case value == info.DefaultValue:
		normalized = 0
	case value < info.DefaultValue:
		if info.DefaultValue == info.MinValue {
			normalized = 0
		} else {
			normalized = (value - info.DefaultValue) / (info.DefaultValue - info.MinValue)
		}
	default:
		if info.MaxValue == info.DefaultValue {
			normalized = 0
		} else {
			normalized = (value - info.DefaultValue) / (info.MaxValue - info.DefaultValue)
		}
	}
	return f2dot14FromFloat(normalized)
}

// NormalizeVariations converts a set of user-space axis settings into a
// full normalized coordinate vector, one entry per font axis, defaulting
// unset axes to 0 (their design default).
func (f *Fvar) NormalizeVariations(variations []Variation) []NormalizedCoordinate {
	if f == nil || f.axisCount == 0 {
		return nil
	}
	coords := make([]NormalizedCoordinate, f.axisCount)
	for _, v := range variations {
		for i := 0; i < f.axisCount; i++ {
			if f.axisInfoAt(i).Tag == v.Tag {
				coords[i] = f.NormalizeAxisValue(i, v.Value)
				break
			}
		}
	}
	return coords
}

func clampFloat32(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
