package dlt

import (
	"github.com/go-dlt/dltcore/endian"
	"github.com/go-dlt/dltcore/errs"
)

// TypeInfoKind is the category bit of a verbose argument's TypeInfo.
type TypeInfoKind uint8

const (
	KindBool TypeInfoKind = iota
	KindSigned
	KindSignedFixedPoint
	KindUnsigned
	KindUnsignedFixedPoint
	KindFloat
	KindString
	KindRaw
)

// TypeLength is the 1..5 length code used by Signed/Unsigned kinds,
// mapping to 8/16/32/64/128-bit widths.
type TypeLength uint8

const (
	Length8 TypeLength = iota + 1
	Length16
	Length32
	Length64
	Length128
)

// Bits returns the bit width the length code represents.
func (l TypeLength) Bits() int {
	switch l {
	case Length8:
		return 8
	case Length16:
		return 16
	case Length32:
		return 32
	case Length64:
		return 64
	case Length128:
		return 128
	default:
		return 0
	}
}

// Bytes returns the byte width the length code represents.
func (l TypeLength) Bytes() int { return l.Bits() / 8 }

// FloatWidth is the length code legal for Float and *FixedPoint kinds:
// only 32 and 64 bits are defined on the wire.
type FloatWidth uint8

const (
	Width32 FloatWidth = 32
	Width64 FloatWidth = 64
)

// Bytes returns the byte width of the float value.
func (w FloatWidth) Bytes() int {
	if w == Width64 {
		return 8
	}

	return 4
}

func floatWidthLengthCode(w FloatWidth) uint32 {
	if w == Width64 {
		return 0b100
	}

	return 0b011
}

func lengthCode(l TypeLength) uint32 {
	switch l {
	case Length8:
		return 0b001
	case Length16:
		return 0b010
	case Length32:
		return 0b011
	case Length64:
		return 0b100
	case Length128:
		return 0b101
	default:
		return 0
	}
}

// StringCoding is the SCOD field describing a string/raw argument's text encoding.
type StringCoding struct {
	Kind     StringCodingKind
	Reserved uint8
}

type StringCodingKind uint8

const (
	CodingASCII StringCodingKind = iota
	CodingUTF8
	CodingReserved
)

// ASCII and UTF8 are the two recognized string codings.
var (
	ASCII = StringCoding{Kind: CodingASCII}
	UTF8  = StringCoding{Kind: CodingUTF8}
)

// NewReservedCoding builds a StringCoding for a reserved (2..7) SCOD value.
func NewReservedCoding(v uint8) StringCoding {
	return StringCoding{Kind: CodingReserved, Reserved: v & 0b111}
}

// TypeInfo is the 4-byte bitfield preceding every verbose argument,
// describing its kind, width, optional variable/fixed-point/trace-info
// metadata, and string coding. See spec.md §4.2 for the bit layout.
type TypeInfo struct {
	Kind TypeInfoKind
	// Length holds the width for Signed/Unsigned kinds.
	Length TypeLength
	// FloatLen holds the width for Float/SignedFixedPoint/UnsignedFixedPoint kinds.
	FloatLen        FloatWidth
	Coding          StringCoding
	HasVariableInfo bool
	HasTraceInfo    bool
}

const (
	typeInfoBoolFlag         uint32 = 1 << 4
	typeInfoSignedFlag       uint32 = 1 << 5
	typeInfoUnsignedFlag     uint32 = 1 << 6
	typeInfoFloatFlag        uint32 = 1 << 7
	typeInfoStringFlag       uint32 = 1 << 9
	typeInfoRawFlag          uint32 = 1 << 10
	typeInfoVariableInfoFlag uint32 = 1 << 11
	typeInfoFixedPointFlag   uint32 = 1 << 12
	typeInfoTraceInfoFlag    uint32 = 1 << 13
)

// IsFixedPoint reports whether Kind is one of the two fixed-point kinds.
func (t TypeInfo) IsFixedPoint() bool {
	return t.Kind == KindSignedFixedPoint || t.Kind == KindUnsignedFixedPoint
}

// ValueWidthBits returns the bit width of the argument's value, for kinds
// that carry a width (Signed/Unsigned/Float and their fixed-point variants).
// Bool, StringType and Raw return 0; their width is implicit or
// length-prefixed.
func (t TypeInfo) ValueWidthBits() int {
	switch t.Kind {
	case KindSigned, KindUnsigned:
		return t.Length.Bits()
	case KindFloat, KindSignedFixedPoint, KindUnsignedFixedPoint:
		return int(t.FloatLen)
	default:
		return 0
	}
}

// Encode serializes the TypeInfo to its 4-byte wire form under engine's byte order.
func (t TypeInfo) Encode(engine endian.EndianEngine) []byte {
	var info uint32

	switch t.Kind {
	case KindFloat:
		info |= floatWidthLengthCode(t.FloatLen)
	case KindSigned:
		info |= lengthCode(t.Length)
	case KindSignedFixedPoint:
		info |= floatWidthLengthCode(t.FloatLen)
	case KindUnsigned:
		info |= lengthCode(t.Length)
	case KindUnsignedFixedPoint:
		info |= floatWidthLengthCode(t.FloatLen)
	}

	switch t.Kind {
	case KindBool:
		info |= typeInfoBoolFlag
	case KindSigned, KindSignedFixedPoint:
		info |= typeInfoSignedFlag
	case KindUnsigned, KindUnsignedFixedPoint:
		info |= typeInfoUnsignedFlag
	case KindFloat:
		info |= typeInfoFloatFlag
	case KindString:
		info |= typeInfoStringFlag
	case KindRaw:
		info |= typeInfoRawFlag
	}

	if t.HasVariableInfo {
		info |= typeInfoVariableInfoFlag
	}
	if t.IsFixedPoint() {
		info |= typeInfoFixedPointFlag
	}
	if t.HasTraceInfo {
		info |= typeInfoTraceInfoFlag
	}

	switch t.Coding.Kind {
	case CodingASCII:
		// 0b000 << 15
	case CodingUTF8:
		info |= 0b001 << 15
	default:
		info |= uint32(t.Coding.Reserved&0b111) << 15
	}

	buf := make([]byte, 4)
	engine.PutUint32(buf, info)

	return buf
}

// DecodeTypeInfo parses the 4-byte TypeInfo bitfield from data[0:4].
//
// Returns errs.ErrUnknownTypeInfo if the kind bits select no single
// recognized category, or the length code is invalid for that category.
func DecodeTypeInfo(data []byte, engine endian.EndianEngine) (TypeInfo, error) {
	if len(data) < 4 {
		return TypeInfo{}, errs.NewIncomplete(4 - len(data))
	}

	info := engine.Uint32(data[:4])
	isFixedPoint := (info & typeInfoFixedPointFlag) != 0

	parseLen := func() (TypeLength, error) {
		switch info & 0b1111 {
		case 0x01:
			return Length8, nil
		case 0x02:
			return Length16, nil
		case 0x03:
			return Length32, nil
		case 0x04:
			return Length64, nil
		case 0x05:
			return Length128, nil
		default:
			return 0, errs.ErrUnknownTypeInfo
		}
	}
	parseFloatLen := func() (FloatWidth, error) {
		switch info & 0b1111 {
		case 0x03:
			return Width32, nil
		case 0x04:
			return Width64, nil
		default:
			return 0, errs.ErrUnknownTypeInfo
		}
	}

	t := TypeInfo{
		HasVariableInfo: (info & typeInfoVariableInfoFlag) != 0,
		HasTraceInfo:    (info & typeInfoTraceInfoFlag) != 0,
	}

	switch (info >> 4) & 0b111_1111 {
	case 0b0000001:
		t.Kind = KindBool
	case 0b0000010:
		if isFixedPoint {
			fw, err := parseFloatLen()
			if err != nil {
				return TypeInfo{}, err
			}
			t.Kind = KindSignedFixedPoint
			t.FloatLen = fw
		} else {
			l, err := parseLen()
			if err != nil {
				return TypeInfo{}, err
			}
			t.Kind = KindSigned
			t.Length = l
		}
	case 0b0000100:
		if isFixedPoint {
			fw, err := parseFloatLen()
			if err != nil {
				return TypeInfo{}, err
			}
			t.Kind = KindUnsignedFixedPoint
			t.FloatLen = fw
		} else {
			l, err := parseLen()
			if err != nil {
				return TypeInfo{}, err
			}
			t.Kind = KindUnsigned
			t.Length = l
		}
	case 0b0001000:
		fw, err := parseFloatLen()
		if err != nil {
			return TypeInfo{}, err
		}
		t.Kind = KindFloat
		t.FloatLen = fw
	case 0b0100000:
		t.Kind = KindString
	case 0b1000000:
		t.Kind = KindRaw
	default:
		return TypeInfo{}, errs.ErrUnknownTypeInfo
	}

	switch (info >> 15) & 0b111 {
	case 0x00:
		t.Coding = ASCII
	case 0x01:
		t.Coding = UTF8
	default:
		t.Coding = NewReservedCoding(uint8((info >> 15) & 0b111)) //nolint:gosec
	}

	return t, nil
}
