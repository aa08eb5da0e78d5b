package dlt

import (
	"testing"

	"github.com/go-dlt/dltcore/endian"
	"github.com/stretchr/testify/require"
)

func allEngines() []endian.EndianEngine {
	return []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()}
}

func TestTypeInfo_RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		ti   TypeInfo
	}{
		{"bool", TypeInfo{Kind: KindBool}},
		{"bool with variable info", TypeInfo{Kind: KindBool, HasVariableInfo: true}},
		{"signed 8", TypeInfo{Kind: KindSigned, Length: Length8}},
		{"signed 16", TypeInfo{Kind: KindSigned, Length: Length16}},
		{"signed 32", TypeInfo{Kind: KindSigned, Length: Length32}},
		{"signed 64", TypeInfo{Kind: KindSigned, Length: Length64}},
		{"signed 128", TypeInfo{Kind: KindSigned, Length: Length128}},
		{"unsigned 8", TypeInfo{Kind: KindUnsigned, Length: Length8}},
		{"unsigned 64", TypeInfo{Kind: KindUnsigned, Length: Length64}},
		{"unsigned 128", TypeInfo{Kind: KindUnsigned, Length: Length128}},
		{"float 32", TypeInfo{Kind: KindFloat, FloatLen: Width32}},
		{"float 64", TypeInfo{Kind: KindFloat, FloatLen: Width64}},
		{"signed fixed point 32", TypeInfo{Kind: KindSignedFixedPoint, FloatLen: Width32}},
		{"signed fixed point 64", TypeInfo{Kind: KindSignedFixedPoint, FloatLen: Width64}},
		{"unsigned fixed point 32", TypeInfo{Kind: KindUnsignedFixedPoint, FloatLen: Width32}},
		{"unsigned fixed point 64", TypeInfo{Kind: KindUnsignedFixedPoint, FloatLen: Width64}},
		{"string ascii", TypeInfo{Kind: KindString, Coding: ASCII}},
		{"string utf8", TypeInfo{Kind: KindString, Coding: UTF8}},
		{"string with trace info", TypeInfo{Kind: KindString, HasTraceInfo: true}},
		{"raw", TypeInfo{Kind: KindRaw}},
		{"signed with trace info and variable info", TypeInfo{
			Kind: KindSigned, Length: Length32, HasVariableInfo: true, HasTraceInfo: true,
		}},
	}

	for _, tc := range cases {
		for _, engine := range allEngines() {
			t.Run(tc.name, func(t *testing.T) {
				buf := tc.ti.Encode(engine)
				require.Len(t, buf, 4)

				got, err := DecodeTypeInfo(buf, engine)
				require.NoError(t, err)
				require.Equal(t, tc.ti, got)
			})
		}
	}
}

func TestDecodeTypeInfo_Short(t *testing.T) {
	_, err := DecodeTypeInfo([]byte{0x01, 0x00}, endian.GetLittleEndianEngine())
	require.Error(t, err)
}

func TestDecodeTypeInfo_UnknownKind(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf := make([]byte, 4)
	// no Bool/Signed/Unsigned/Float/String/Raw bit set.
	engine.PutUint32(buf, 0)

	_, err := DecodeTypeInfo(buf, engine)
	require.Error(t, err)
}

func TestDecodeTypeInfo_InvalidLengthCode(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf := make([]byte, 4)
	// signed bit set, length code 0 (reserved).
	engine.PutUint32(buf, typeInfoSignedFlag)

	_, err := DecodeTypeInfo(buf, engine)
	require.Error(t, err)
}

func TestTypeLength_Bits(t *testing.T) {
	require.Equal(t, 8, Length8.Bits())
	require.Equal(t, 16, Length16.Bits())
	require.Equal(t, 32, Length32.Bits())
	require.Equal(t, 64, Length64.Bits())
	require.Equal(t, 128, Length128.Bits())
	require.Equal(t, 1, Length8.Bytes())
	require.Equal(t, 16, Length128.Bytes())
}

func TestFloatWidth_Bytes(t *testing.T) {
	require.Equal(t, 4, Width32.Bytes())
	require.Equal(t, 8, Width64.Bytes())
}

func TestTypeInfo_ValueWidthBits(t *testing.T) {
	require.Equal(t, 32, TypeInfo{Kind: KindSigned, Length: Length32}.ValueWidthBits())
	require.Equal(t, 64, TypeInfo{Kind: KindFloat, FloatLen: Width64}.ValueWidthBits())
	require.Equal(t, 0, TypeInfo{Kind: KindBool}.ValueWidthBits())
	require.Equal(t, 0, TypeInfo{Kind: KindString}.ValueWidthBits())
}

func TestTypeInfo_IsFixedPoint(t *testing.T) {
	require.True(t, TypeInfo{Kind: KindSignedFixedPoint}.IsFixedPoint())
	require.True(t, TypeInfo{Kind: KindUnsignedFixedPoint}.IsFixedPoint())
	require.False(t, TypeInfo{Kind: KindSigned}.IsFixedPoint())
}
