package ft

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-dlt/dltcore/dlt"
	"github.com/go-dlt/dltcore/frame"
	"github.com/stretchr/testify/require"
)

func encodeAll(msgs ...dlt.Message) []byte {
	var buf bytes.Buffer
	for _, m := range msgs {
		buf.Write(m.Encode())
	}

	return buf.Bytes()
}

func startMsg(id uint32, name string, size uint32) dlt.Message {
	return logInfoMessage([]dlt.Argument{
		strArg(tagStart), u32Arg(id), strArg(name), u32Arg(size),
		strArg("2026-07-30"), u32Arg(1), u32Arg(1024), strArg(tagStart),
	})
}

func dataMsg(id, packet uint32, data []byte) dlt.Message {
	return logInfoMessage([]dlt.Argument{strArg(tagData), u32Arg(id), u32Arg(packet), rawArg(data), strArg(tagData)})
}

func endMsg(id uint32) dlt.Message {
	return logInfoMessage([]dlt.Argument{strArg(tagEnd), u32Arg(id), strArg(tagEnd)})
}

func TestIndexer_Run_GroupsByFileID(t *testing.T) {
	raw := encodeAll(
		startMsg(1, "b.bin", 3),
		dataMsg(1, 1, []byte{1, 2, 3}),
		endMsg(1),
		startMsg(2, "a.bin", 3),
		dataMsg(2, 1, []byte{9, 9, 9}),
		endMsg(2),
	)

	s := frame.NewStream(bytes.NewReader(raw), frame.Config{})
	defer s.Close()

	idx := NewIndexer()
	files, err := idx.Run(context.Background(), s, 0)
	require.NoError(t, err)
	require.Len(t, files, 2)

	// sorted by name ascending: a.bin, b.bin
	require.Equal(t, "a.bin", files[0].Name)
	require.Equal(t, "b.bin", files[1].Name)
	require.Equal(t, []int{4, 5, 6}, files[0].Messages)
	require.Equal(t, []int{1, 2, 3}, files[1].Messages)
}

func TestIndexer_Observe_IgnoresDataForUnknownFile(t *testing.T) {
	idx := NewIndexer()
	idx.Observe(dataMsg(99, 1, []byte{1}), 1)
	require.Empty(t, idx.Files())
}

func TestIndexer_Run_CancelledReturnsNil(t *testing.T) {
	raw := encodeAll(startMsg(1, "x.bin", 1))
	s := frame.NewStream(bytes.NewReader(raw), frame.Config{})
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	idx := NewIndexer()
	files, err := idx.Run(ctx, s, 0)
	require.NoError(t, err)
	require.Nil(t, files)
}
