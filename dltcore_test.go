package dltcore

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-dlt/dltcore/cache"
	"github.com/go-dlt/dltcore/compress"
	"github.com/go-dlt/dltcore/dlt"
	"github.com/go-dlt/dltcore/ft"
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

func logInfoMessage(appID string, args []dlt.Argument) dlt.Message {
	return dlt.Message{
		StandardHeader: dlt.StandardHeader{HasExtendedHeader: true},
		ExtendedHeader: &dlt.ExtendedHeader{
			Verbose:       true,
			MessageType:   dlt.LogMessageType(dlt.Info),
			ApplicationID: appID,
			ContextID:     "CTX1",
		},
		Payload: dlt.NewVerbosePayload(args),
	}
}

func storedLogInfoMessage(appID string, args []dlt.Argument) dlt.Message {
	msg := logInfoMessage(appID, args)
	msg.StorageHeader = &dlt.StorageHeader{EcuID: "ECU1"}

	return msg
}

func TestOpenTrace_CollectStats(t *testing.T) {
	raw := logInfoMessage("APP1", []dlt.Argument{u32Arg(42)}).Encode()

	s := OpenTrace(bytes.NewReader(raw))
	defer s.Close()

	res, err := CollectStats(context.Background(), s, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.FrameCount)
	require.Equal(t, 1, res.ByApp["APP1"].Info)
}

func TestOpenTrace_WithFilter(t *testing.T) {
	raw := bytes.Join([][]byte{
		logInfoMessage("APP1", []dlt.Argument{u32Arg(1)}).Encode(),
		logInfoMessage("APP2", []dlt.Argument{u32Arg(2)}).Encode(),
	}, nil)

	f := NewFilter().WithAppIDs("APP1")
	s := OpenTrace(bytes.NewReader(raw), WithFilter(f))
	defer s.Close()

	msg, _, err := s.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "APP1", msg.ExtendedHeader.ApplicationID)
}

func TestExtractFiles_WritesMemorySink(t *testing.T) {
	raw := bytes.Join([][]byte{
		storedLogInfoMessage("APP1", []dlt.Argument{
			strArg("FLST"), u32Arg(1), strArg("report.bin"), u32Arg(3),
			strArg("2026-07-30"), u32Arg(1), u32Arg(1024), strArg("FLST"),
		}).Encode(),
		storedLogInfoMessage("APP1", []dlt.Argument{
			strArg("FLDA"), u32Arg(1), u32Arg(1), rawArg([]byte{1, 2, 3}), strArg("FLDA"),
		}).Encode(),
		storedLogInfoMessage("APP1", []dlt.Argument{
			strArg("FLFI"), u32Arg(1), strArg("FLFI"),
		}).Encode(),
	}, nil)

	var written []byte
	newSink := func(name string) ft.Sink {
		return &memSink{out: &written}
	}

	files, total, err := ExtractFiles(context.Background(), bytes.NewReader(raw), newSink)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "report.bin", files[0].Name)
	require.Equal(t, int64(3), total)
	require.Equal(t, []byte{1, 2, 3}, written)
}

type memSink struct{ out *[]byte }

func (s *memSink) Create(name string) error { return nil }
func (s *memSink) Append(data []byte) (int, error) {
	*s.out = append(*s.out, data...)
	return len(data), nil
}
func (s *memSink) Close() error { return nil }

func TestSaveLoadCache_RoundTrip(t *testing.T) {
	e := cache.Entry{Fingerprint: CacheFingerprint("/trace/a.dlt", 1024, 1000)}
	codec := compress.NewNoOpCompressor()

	blob, err := SaveCache(e, codec)
	require.NoError(t, err)

	got, err := LoadCache(blob, codec)
	require.NoError(t, err)
	require.Equal(t, e.Fingerprint, got.Fingerprint)
}
