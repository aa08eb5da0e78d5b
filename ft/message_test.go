package ft

import (
	"testing"

	"github.com/go-dlt/dltcore/dlt"
	"github.com/stretchr/testify/require"
)

func strArg(s string) dlt.Argument {
	return dlt.Argument{TypeInfo: dlt.TypeInfo{Kind: dlt.KindString}, Value: dlt.NewStringValue(s)}
}

func u32Arg(v uint32) dlt.Argument {
	return dlt.Argument{TypeInfo: dlt.TypeInfo{Kind: dlt.KindUnsigned, Length: dlt.Length32}, Value: dlt.NewU32Value(v)}
}

func rawArg(b []byte) dlt.Argument {
	return dlt.Argument{TypeInfo: dlt.TypeInfo{Kind: dlt.KindRaw}, Value: dlt.NewRawValue(b)}
}

func logInfoMessage(args []dlt.Argument) dlt.Message {
	return dlt.Message{
		StandardHeader: dlt.StandardHeader{HasExtendedHeader: true},
		ExtendedHeader: &dlt.ExtendedHeader{
			Verbose:     true,
			MessageType: dlt.LogMessageType(dlt.Info),
		},
		Payload: dlt.NewVerbosePayload(args),
	}
}

func TestParse_Start(t *testing.T) {
	msg := logInfoMessage([]dlt.Argument{
		strArg(tagStart),
		u32Arg(7),
		strArg("report.bin"),
		u32Arg(2048),
		strArg("2026-07-30 12:00:00"),
		u32Arg(2),
		u32Arg(1024),
		strArg(tagStart),
	})

	got, ok := Parse(msg)
	require.True(t, ok)
	require.Equal(t, KindStart, got.Kind)
	require.Equal(t, uint32(7), got.FileID)
	require.Equal(t, "report.bin", got.Name)
	require.Equal(t, uint32(2048), got.Size)
	require.Equal(t, uint32(2), got.Packets)
}

func TestParse_Data(t *testing.T) {
	msg := logInfoMessage([]dlt.Argument{
		strArg(tagData),
		u32Arg(7),
		u32Arg(1),
		rawArg([]byte{1, 2, 3}),
		strArg(tagData),
	})

	got, ok := Parse(msg)
	require.True(t, ok)
	require.Equal(t, KindData, got.Kind)
	require.Equal(t, uint32(7), got.FileID)
	require.Equal(t, uint32(1), got.Packet)
	require.Equal(t, []byte{1, 2, 3}, got.Bytes)
}

func TestParse_End(t *testing.T) {
	msg := logInfoMessage([]dlt.Argument{
		strArg(tagEnd),
		u32Arg(7),
		strArg(tagEnd),
	})

	got, ok := Parse(msg)
	require.True(t, ok)
	require.Equal(t, KindEnd, got.Kind)
	require.Equal(t, uint32(7), got.FileID)
}

func TestParse_RejectsNonFTMessages(t *testing.T) {
	_, ok := Parse(logInfoMessage([]dlt.Argument{strArg("hello"), strArg("world")}))
	require.False(t, ok)

	noExt := dlt.Message{Payload: dlt.NewVerbosePayload(nil)}
	_, ok = Parse(noExt)
	require.False(t, ok)

	debugMsg := logInfoMessage([]dlt.Argument{strArg(tagStart), strArg(tagStart)})
	debugMsg.ExtendedHeader.MessageType = dlt.LogMessageType(dlt.Debug)
	_, ok = Parse(debugMsg)
	require.False(t, ok)
}

func TestSaveName_UsesTimestampWhenPresent(t *testing.T) {
	ts := uint32(123)
	m := Message{Timestamp: &ts, FileID: 9, Name: "a/b c.bin"}
	require.Equal(t, "123_a$b_c.bin", SaveName(m))
}

func TestSaveName_FallsBackToFileID(t *testing.T) {
	m := Message{FileID: 42, Name: "plain.bin"}
	require.Equal(t, "42_plain.bin", SaveName(m))
}
