package dlt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValue_Accessors(t *testing.T) {
	require.Equal(t, uint64(42), NewU8Value(42).Uint())
	require.Equal(t, uint64(4242), NewU16Value(4242).Uint())
	require.Equal(t, int64(-5), NewI8Value(-5).Int())
	require.Equal(t, int64(-500), NewI16Value(-500).Int())
	require.Equal(t, float32(1.5), NewF32Value(1.5).Float32())
	require.Equal(t, float64(2.5), NewF64Value(2.5).Float64())
	require.Equal(t, "abc", NewStringValue("abc").String())
	require.Equal(t, []byte{1, 2}, NewRawValue([]byte{1, 2}).Raw())
	require.True(t, NewBoolValue(true).Bool())
}

func TestValue_128Bit(t *testing.T) {
	var raw [16]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	require.Equal(t, raw, NewU128Value(raw).Uint128())
	require.Equal(t, raw, NewI128Value(raw).Int128())
}

func TestLogLevel_MoreVerboseThan(t *testing.T) {
	require.True(t, Verbose.MoreVerboseThan(Debug))
	require.True(t, Debug.MoreVerboseThan(Info))
	require.False(t, Fatal.MoreVerboseThan(Error))
	require.False(t, NewInvalidLogLevel(9).MoreVerboseThan(Verbose))
	require.True(t, Verbose.MoreVerboseThan(NewInvalidLogLevel(9)))
	require.True(t, NewInvalidLogLevel(12).MoreVerboseThan(NewInvalidLogLevel(9)))
}

func TestLogLevel_RoundTripByte(t *testing.T) {
	for _, lvl := range []LogLevel{Fatal, Error, Warn, Info, Debug, Verbose} {
		mt := LogMessageType(lvl)
		b := mt.toByte()
		got := messageTypeFromByte(b)
		require.Equal(t, lvl, got.Log)
	}
}

func TestMessageType_RoundTripByte_AllCategories(t *testing.T) {
	cases := []MessageType{
		LogMessageType(Warn),
		{Category: CategoryApplicationTrace, AppTrace: ApplicationTraceType{Kind: TraceFunctionIn}},
		{Category: CategoryNetworkTrace, NetworkTr: NetworkTraceType{Kind: NetworkTraceCan}},
		ControlMessageType(ControlType{Kind: ControlResponse}),
	}
	for _, mt := range cases {
		got := messageTypeFromByte(mt.toByte())
		require.Equal(t, mt, got)
	}
}

func TestControlTypeFromValue(t *testing.T) {
	require.Equal(t, ControlType{Kind: ControlRequest}, ControlTypeFromValue(0x1))
	require.Equal(t, ControlType{Kind: ControlResponse}, ControlTypeFromValue(0x2))
	require.Equal(t, uint8(0x1), ControlType{Kind: ControlRequest}.Value())
	unknown := ControlTypeFromValue(0x7)
	require.Equal(t, ControlUnknownKind, unknown.Kind)
	require.Equal(t, uint8(0x7), unknown.Value())
}
