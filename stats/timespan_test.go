package stats

import (
	"testing"

	"github.com/go-dlt/dltcore/dlt"
	"github.com/stretchr/testify/require"
)

func withTimestamp(sec uint32, ts uint32) dlt.Message {
	t := ts

	return dlt.Message{
		StorageHeader:  &dlt.StorageHeader{TimestampSeconds: sec},
		StandardHeader: dlt.StandardHeader{Timestamp: &t},
	}
}

func TestTimespanEstimator_TracksMinMax(t *testing.T) {
	e := NewTimespanEstimator(1)
	e.Observe(withTimestamp(100, 10))
	e.Observe(withTimestamp(50, 5))
	e.Observe(withTimestamp(200, 30))
	e.Finish()

	res := e.Result()
	require.True(t, res.HasStorageRange)
	require.Equal(t, uint32(50), res.MinSeconds)
	require.Equal(t, uint32(200), res.MaxSeconds)
	require.True(t, res.HasTimestampRange)
	require.Equal(t, uint32(5), res.MinTimestamp)
	require.Equal(t, uint32(30), res.MaxTimestamp)
}

func TestTimespanEstimator_SparseSamplingStillCoversLastFrame(t *testing.T) {
	e := NewTimespanEstimator(1000)
	e.Observe(withTimestamp(10, 10))
	for i := 0; i < 50; i++ {
		e.Observe(withTimestamp(20, 20))
	}
	// an out-of-order low value arrives as the very last frame; sampling
	// would normally skip it, but Finish must still fold it in.
	e.Observe(withTimestamp(1, 1))
	e.Finish()

	res := e.Result()
	require.Equal(t, uint32(1), res.MinSeconds)
	require.Equal(t, uint32(1), res.MinTimestamp)
}

func TestTimespanEstimator_NoDataYieldsEmptyResult(t *testing.T) {
	e := NewTimespanEstimator(1)
	e.Finish()
	res := e.Result()
	require.False(t, res.HasStorageRange)
	require.False(t, res.HasTimestampRange)
}

func TestNewTimespanEstimator_ClampsSampleEvery(t *testing.T) {
	e := NewTimespanEstimator(0)
	require.Equal(t, 1, e.SampleEvery)
}
