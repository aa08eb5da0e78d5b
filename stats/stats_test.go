package stats

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-dlt/dltcore/dlt"
	"github.com/go-dlt/dltcore/frame"
	"github.com/stretchr/testify/require"
)

func logMsg(appID string, level dlt.LogLevel) dlt.Message {
	return dlt.Message{
		StandardHeader: dlt.StandardHeader{HasExtendedHeader: true},
		ExtendedHeader: &dlt.ExtendedHeader{
			Verbose:       true,
			MessageType:   dlt.LogMessageType(level),
			ApplicationID: appID,
			ContextID:     "CTX1",
		},
		Payload: dlt.NewVerbosePayload(nil),
	}
}

func nonVerboseMsg() dlt.Message {
	return dlt.Message{
		StandardHeader: dlt.StandardHeader{},
		Payload:        dlt.NewNonVerbosePayload(0x01, []byte{1, 2}),
	}
}

func encode(msgs ...dlt.Message) []byte {
	var buf bytes.Buffer
	for _, m := range msgs {
		buf.Write(m.Encode())
	}

	return buf.Bytes()
}

func TestCollect_BuildsPerAppHistograms(t *testing.T) {
	raw := encode(
		logMsg("APP1", dlt.Error),
		logMsg("APP1", dlt.Info),
		logMsg("APP2", dlt.Warn),
		nonVerboseMsg(),
	)

	s := frame.NewStream(bytes.NewReader(raw), frame.Config{})
	defer s.Close()

	res, err := Collect(context.Background(), s, nil)
	require.NoError(t, err)
	require.Equal(t, int64(4), res.FrameCount)
	require.True(t, res.ContainedNonVerbose)

	require.Equal(t, 1, res.ByApp["APP1"].Error)
	require.Equal(t, 1, res.ByApp["APP1"].Info)
	require.Equal(t, 1, res.ByApp["APP2"].Warn)
	require.Equal(t, 1, res.ByApp[noneKey].NonLog)
}

func TestCollect_ReportsProgress(t *testing.T) {
	raw := encode(logMsg("APP1", dlt.Info))

	s := frame.NewStream(bytes.NewReader(raw), frame.Config{})
	defer s.Close()

	var last int64
	_, err := Collect(context.Background(), s, func(n int64) { last = n })
	require.NoError(t, err)
	require.Equal(t, int64(1), last)
}

func TestCollect_Cancellation(t *testing.T) {
	raw := encode(logMsg("APP1", dlt.Info))

	s := frame.NewStream(bytes.NewReader(raw), frame.Config{})
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Collect(ctx, s, nil)
	require.NoError(t, err)
	require.True(t, res.Cancelled)
}

func TestLevelDistribution_Observe_InvalidLevel(t *testing.T) {
	d := &LevelDistribution{}
	d.observe(dlt.LogMessageType(dlt.NewInvalidLogLevel(9)))
	require.Equal(t, 1, d.Invalid)
}

func TestIdMap_Bucket_FallsBackToNoneKey(t *testing.T) {
	m := make(IdMap)
	b := m.bucket("")
	require.Same(t, b, m[noneKey])
}
