package dlt

import (
	"math"

	"github.com/go-dlt/dltcore/endian"
	"github.com/go-dlt/dltcore/errs"
)

// FixedPoint carries the quantization/offset pair that precedes a
// SignedFixedPoint/UnsignedFixedPoint argument's value. The logical value
// is physical*Quantization + Offset (see spec.md §4.3); the core only needs
// to round-trip the pair, not evaluate the conversion.
type FixedPoint struct {
	Quantization float32
	// Offset is read from an i32 when the argument's FloatLen is Width32,
	// or an i64 when Width64; the width itself lives on the owning
	// Argument's TypeInfo so it doesn't need to be duplicated here.
	Offset int64
}

// Argument is a single verbose-mode value: its TypeInfo descriptor, the
// optional name/unit carried when HasVariableInfo is set, the optional
// FixedPoint metadata for fixed-point kinds, and the typed Value itself.
type Argument struct {
	TypeInfo   TypeInfo
	Name       *string
	Unit       *string
	FixedPoint *FixedPoint
	Value      Value
}

// DecodeArgument parses one verbose argument from data, returning the
// argument and the number of bytes consumed. The decode order follows
// spec.md §4.3 exactly: TypeInfo, then name/unit (if any), then fixed-point
// metadata (if any), then the value itself in a kind-specific shape.
func DecodeArgument(data []byte, engine endian.EndianEngine) (Argument, int, error) {
	if len(data) < 4 {
		return Argument{}, 0, errs.NewIncomplete(4 - len(data))
	}

	ti, err := DecodeTypeInfo(data[:4], engine)
	if err != nil {
		return Argument{}, 0, err
	}

	off := 4
	arg := Argument{TypeInfo: ti}

	switch ti.Kind {
	case KindBool:
		if ti.HasVariableInfo {
			name, n, err := decodeVariableInfoName(data[off:], engine)
			if err != nil {
				return Argument{}, 0, err
			}
			arg.Name = &name
			off += n
		}
		if len(data[off:]) < 1 {
			return Argument{}, 0, errs.NewIncomplete(1 - len(data[off:]))
		}
		arg.Value = NewBoolValue(data[off] != 0)
		off++

	case KindString:
		if len(data[off:]) < 2 {
			return Argument{}, 0, errs.NewIncomplete(2 - len(data[off:]))
		}
		length := int(engine.Uint16(data[off : off+2]))
		off += 2
		if ti.HasVariableInfo {
			name, n, err := decodeVariableInfoName(data[off:], engine)
			if err != nil {
				return Argument{}, 0, err
			}
			arg.Name = &name
			off += n
		}
		s, err := zeroTerminatedString(data[off:], length)
		if err != nil {
			return Argument{}, 0, err
		}
		arg.Value = NewStringValue(s)
		off += length

	case KindRaw:
		if len(data[off:]) < 2 {
			return Argument{}, 0, errs.NewIncomplete(2 - len(data[off:]))
		}
		length := int(engine.Uint16(data[off : off+2]))
		off += 2
		if ti.HasVariableInfo {
			name, n, err := decodeVariableInfoName(data[off:], engine)
			if err != nil {
				return Argument{}, 0, err
			}
			arg.Name = &name
			off += n
		}
		if len(data[off:]) < length {
			return Argument{}, 0, errs.NewIncomplete(length - len(data[off:]))
		}
		raw := make([]byte, length)
		copy(raw, data[off:off+length])
		arg.Value = NewRawValue(raw)
		off += length

	default: // Signed, SignedFixedPoint, Unsigned, UnsignedFixedPoint, Float
		if ti.HasVariableInfo {
			name, unit, n, err := decodeVariableInfoNameUnit(data[off:], engine)
			if err != nil {
				return Argument{}, 0, err
			}
			arg.Name = &name
			arg.Unit = &unit
			off += n
		}
		if ti.IsFixedPoint() {
			fp, n, err := decodeFixedPoint(data[off:], ti.FloatLen, engine)
			if err != nil {
				return Argument{}, 0, err
			}
			arg.FixedPoint = &fp
			off += n
		}
		val, n, err := decodeNumericValue(data[off:], ti, engine)
		if err != nil {
			return Argument{}, 0, err
		}
		arg.Value = val
		off += n
	}

	return arg, off, nil
}

// decodeVariableInfoName reads the (name_len, name) pair used by Bool arguments.
func decodeVariableInfoName(data []byte, engine endian.EndianEngine) (string, int, error) {
	if len(data) < 2 {
		return "", 0, errs.NewIncomplete(2 - len(data))
	}
	nameLen := int(engine.Uint16(data[:2]))
	if len(data[2:]) < nameLen {
		return "", 0, errs.NewIncomplete(nameLen - len(data[2:]))
	}
	name, err := zeroTerminatedString(data[2:2+nameLen], nameLen)
	if err != nil {
		return "", 0, err
	}

	return name, 2 + nameLen, nil
}

// decodeVariableInfoNameUnit reads the (name_len, unit_len) header followed
// by the NUL-padded name and unit fields used by numeric arguments.
func decodeVariableInfoNameUnit(data []byte, engine endian.EndianEngine) (string, string, int, error) {
	if len(data) < 4 {
		return "", "", 0, errs.NewIncomplete(4 - len(data))
	}
	nameLen := int(engine.Uint16(data[:2]))
	unitLen := int(engine.Uint16(data[2:4]))
	off := 4

	if len(data[off:]) < nameLen {
		return "", "", 0, errs.NewIncomplete(nameLen - len(data[off:]))
	}
	name, err := zeroTerminatedString(data[off:off+nameLen], nameLen)
	if err != nil {
		return "", "", 0, err
	}
	off += nameLen

	if len(data[off:]) < unitLen {
		return "", "", 0, errs.NewIncomplete(unitLen - len(data[off:]))
	}
	unit, err := zeroTerminatedString(data[off:off+unitLen], unitLen)
	if err != nil {
		return "", "", 0, err
	}
	off += unitLen

	return name, unit, off, nil
}

func decodeFixedPoint(data []byte, width FloatWidth, engine endian.EndianEngine) (FixedPoint, int, error) {
	offsetWidth := 4
	if width == Width64 {
		offsetWidth = 8
	}
	need := 4 + offsetWidth
	if len(data) < need {
		return FixedPoint{}, 0, errs.NewIncomplete(need - len(data))
	}

	quant := math.Float32frombits(engine.Uint32(data[:4]))

	var offset int64
	if width == Width64 {
		offset = int64(engine.Uint64(data[4:12])) //nolint:gosec
	} else {
		offset = int64(int32(engine.Uint32(data[4:8]))) //nolint:gosec
	}

	return FixedPoint{Quantization: quant, Offset: offset}, need, nil
}

func decodeNumericValue(data []byte, ti TypeInfo, engine endian.EndianEngine) (Value, int, error) {
	switch ti.Kind {
	case KindFloat:
		if ti.FloatLen == Width32 {
			if len(data) < 4 {
				return Value{}, 0, errs.NewIncomplete(4 - len(data))
			}

			return NewF32Value(math.Float32frombits(engine.Uint32(data[:4]))), 4, nil
		}
		if len(data) < 8 {
			return Value{}, 0, errs.NewIncomplete(8 - len(data))
		}

		return NewF64Value(math.Float64frombits(engine.Uint64(data[:8]))), 8, nil

	case KindSigned, KindSignedFixedPoint:
		width := ti.Length
		if ti.Kind == KindSignedFixedPoint {
			if ti.FloatLen == Width32 {
				width = Length32
			} else {
				width = Length64
			}
		}

		return decodeSigned(data, width, engine)

	case KindUnsigned, KindUnsignedFixedPoint:
		width := ti.Length
		if ti.Kind == KindUnsignedFixedPoint {
			if ti.FloatLen == Width32 {
				width = Length32
			} else {
				width = Length64
			}
		}

		return decodeUnsigned(data, width, engine)

	default:
		return Value{}, 0, errs.ErrUnknownTypeInfo
	}
}

func decodeSigned(data []byte, width TypeLength, engine endian.EndianEngine) (Value, int, error) {
	n := width.Bytes()
	if len(data) < n {
		return Value{}, 0, errs.NewIncomplete(n - len(data))
	}
	switch width {
	case Length8:
		return NewI8Value(int8(data[0])), 1, nil
	case Length16:
		return NewI16Value(int16(engine.Uint16(data[:2]))), 2, nil
	case Length32:
		return NewI32Value(int32(engine.Uint32(data[:4]))), 4, nil
	case Length64:
		return NewI64Value(int64(engine.Uint64(data[:8]))), 8, nil
	case Length128:
		var raw [16]byte
		copy(raw[:], data[:16])

		return NewI128Value(raw), 16, nil
	default:
		return Value{}, 0, errs.ErrUnknownTypeInfo
	}
}

func decodeUnsigned(data []byte, width TypeLength, engine endian.EndianEngine) (Value, int, error) {
	n := width.Bytes()
	if len(data) < n {
		return Value{}, 0, errs.NewIncomplete(n - len(data))
	}
	switch width {
	case Length8:
		return NewU8Value(data[0]), 1, nil
	case Length16:
		return NewU16Value(engine.Uint16(data[:2])), 2, nil
	case Length32:
		return NewU32Value(engine.Uint32(data[:4])), 4, nil
	case Length64:
		return NewU64Value(engine.Uint64(data[:8])), 8, nil
	case Length128:
		var raw [16]byte
		copy(raw[:], data[:16])

		return NewU128Value(raw), 16, nil
	default:
		return Value{}, 0, errs.ErrUnknownTypeInfo
	}
}

// Encode serializes the argument to its wire form under engine's byte
// order. The caller is responsible for ensuring a.Value.MatchesKind(a.TypeInfo)
// beforehand; Encode does not re-validate it.
func (a Argument) Encode(engine endian.EndianEngine) []byte {
	buf := a.TypeInfo.Encode(engine)

	switch a.TypeInfo.Kind {
	case KindBool:
		if a.TypeInfo.HasVariableInfo {
			buf = appendVariableInfoName(buf, derefOr(a.Name, ""), engine)
		}
		b := byte(0)
		if a.Value.Bool() {
			b = 1
		}
		buf = append(buf, b)

	case KindString:
		s := a.Value.String()
		lenBuf := make([]byte, 2)
		engine.PutUint16(lenBuf, uint16(len(s))) //nolint:gosec
		buf = append(buf, lenBuf...)
		if a.TypeInfo.HasVariableInfo {
			buf = appendVariableInfoName(buf, derefOr(a.Name, ""), engine)
		}
		strBuf := make([]byte, len(s))
		putZeroTerminatedString(strBuf, s, len(s))
		buf = append(buf, strBuf...)

	case KindRaw:
		raw := a.Value.Raw()
		lenBuf := make([]byte, 2)
		engine.PutUint16(lenBuf, uint16(len(raw))) //nolint:gosec
		buf = append(buf, lenBuf...)
		if a.TypeInfo.HasVariableInfo {
			buf = appendVariableInfoName(buf, derefOr(a.Name, ""), engine)
		}
		buf = append(buf, raw...)

	default:
		if a.TypeInfo.HasVariableInfo {
			buf = appendVariableInfoNameUnit(buf, derefOr(a.Name, ""), derefOr(a.Unit, ""), engine)
		}
		if a.TypeInfo.IsFixedPoint() && a.FixedPoint != nil {
			buf = appendFixedPoint(buf, *a.FixedPoint, a.TypeInfo.FloatLen, engine)
		}
		buf = appendNumericValue(buf, a.Value, engine)
	}

	return buf
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}

	return *s
}

func appendVariableInfoName(buf []byte, name string, engine endian.EndianEngine) []byte {
	lenBuf := make([]byte, 2)
	engine.PutUint16(lenBuf, uint16(len(name))) //nolint:gosec
	buf = append(buf, lenBuf...)
	nameBuf := make([]byte, len(name))
	putZeroTerminatedString(nameBuf, name, len(name))

	return append(buf, nameBuf...)
}

func appendVariableInfoNameUnit(buf []byte, name, unit string, engine endian.EndianEngine) []byte {
	lenBuf := make([]byte, 4)
	engine.PutUint16(lenBuf[0:2], uint16(len(name))) //nolint:gosec
	engine.PutUint16(lenBuf[2:4], uint16(len(unit))) //nolint:gosec
	buf = append(buf, lenBuf...)

	nameBuf := make([]byte, len(name))
	putZeroTerminatedString(nameBuf, name, len(name))
	buf = append(buf, nameBuf...)

	unitBuf := make([]byte, len(unit))
	putZeroTerminatedString(unitBuf, unit, len(unit))

	return append(buf, unitBuf...)
}

func appendFixedPoint(buf []byte, fp FixedPoint, width FloatWidth, engine endian.EndianEngine) []byte {
	quantBuf := make([]byte, 4)
	engine.PutUint32(quantBuf, math.Float32bits(fp.Quantization))
	buf = append(buf, quantBuf...)

	if width == Width64 {
		offBuf := make([]byte, 8)
		engine.PutUint64(offBuf, uint64(fp.Offset)) //nolint:gosec
		buf = append(buf, offBuf...)
	} else {
		offBuf := make([]byte, 4)
		engine.PutUint32(offBuf, uint32(int32(fp.Offset))) //nolint:gosec
		buf = append(buf, offBuf...)
	}

	return buf
}

func appendNumericValue(buf []byte, v Value, engine endian.EndianEngine) []byte {
	switch v.Kind {
	case ValueF32:
		b := make([]byte, 4)
		engine.PutUint32(b, math.Float32bits(v.Float32()))

		return append(buf, b...)
	case ValueF64:
		b := make([]byte, 8)
		engine.PutUint64(b, math.Float64bits(v.Float64()))

		return append(buf, b...)
	case ValueI8:
		return append(buf, byte(v.Int()))
	case ValueI16:
		b := make([]byte, 2)
		engine.PutUint16(b, uint16(v.Int())) //nolint:gosec

		return append(buf, b...)
	case ValueI32:
		b := make([]byte, 4)
		engine.PutUint32(b, uint32(v.Int())) //nolint:gosec

		return append(buf, b...)
	case ValueI64:
		b := make([]byte, 8)
		engine.PutUint64(b, uint64(v.Int())) //nolint:gosec

		return append(buf, b...)
	case ValueI128:
		raw := v.Int128()

		return append(buf, raw[:]...)
	case ValueU8:
		return append(buf, byte(v.Uint()))
	case ValueU16:
		b := make([]byte, 2)
		engine.PutUint16(b, uint16(v.Uint()))

		return append(buf, b...)
	case ValueU32:
		b := make([]byte, 4)
		engine.PutUint32(b, uint32(v.Uint()))

		return append(buf, b...)
	case ValueU64:
		b := make([]byte, 8)
		engine.PutUint64(b, v.Uint())

		return append(buf, b...)
	case ValueU128:
		raw := v.Uint128()

		return append(buf, raw[:]...)
	default:
		return buf
	}
}
