package cache

import (
	"testing"

	"github.com/go-dlt/dltcore/compress"
	"github.com/go-dlt/dltcore/stats"
	"github.com/stretchr/testify/require"
)

func sampleEntry() Entry {
	return Entry{
		Fingerprint: 0xDEADBEEF,
		Files: []FileEntry{
			{Name: "a.bin", Size: 10, Created: "2026-07-30", Messages: []int64{1, 2, 3}},
			{Name: "b.bin", Size: 20, Created: "2026-07-30", Messages: []int64{4, 5}},
		},
		FrameCount:          100,
		ContainedNonVerbose: true,
		Timespan: stats.Timespan{
			HasStorageRange: true,
			MinSeconds:      1, MaxSeconds: 99,
			HasTimestampRange: true,
			MinTimestamp:      10, MaxTimestamp: 9000,
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	e := sampleEntry()
	codec := compress.NewNoOpCompressor()

	blob, err := Encode(e, codec)
	require.NoError(t, err)

	got, err := Decode(blob, codec)
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestEncodeDecode_EmptyFiles(t *testing.T) {
	e := Entry{Fingerprint: 1}
	codec := compress.NewNoOpCompressor()

	blob, err := Encode(e, codec)
	require.NoError(t, err)

	got, err := Decode(blob, codec)
	require.NoError(t, err)
	require.Equal(t, e.Fingerprint, got.Fingerprint)
	require.Empty(t, got.Files)
}

func TestDecode_BadMagic(t *testing.T) {
	_, err := Decode([]byte("XXXXXXXXXXXXXX"), compress.NewNoOpCompressor())
	require.Error(t, err)
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	e := sampleEntry()
	codec := compress.NewNoOpCompressor()
	blob, err := Encode(e, codec)
	require.NoError(t, err)

	blob[4] = 0xFF

	_, err = Decode(blob, codec)
	require.Error(t, err)
}

func TestDecode_Truncated(t *testing.T) {
	e := sampleEntry()
	codec := compress.NewNoOpCompressor()
	blob, err := Encode(e, codec)
	require.NoError(t, err)

	_, err = Decode(blob[:len(blob)-5], codec)
	require.Error(t, err)
}

func TestFingerprint_DiffersByInput(t *testing.T) {
	a := Fingerprint("/trace/a.dlt", 1024, 1000)
	b := Fingerprint("/trace/b.dlt", 1024, 1000)
	c := Fingerprint("/trace/a.dlt", 2048, 1000)
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
}

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint("/trace/a.dlt", 1024, 1000)
	b := Fingerprint("/trace/a.dlt", 1024, 1000)
	require.Equal(t, a, b)
}
