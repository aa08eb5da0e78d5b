package stats

import "github.com/go-dlt/dltcore/dlt"

// TimespanEstimator discovers the time range covered by a trace without
// requiring every frame to be inspected. DLT timestamps are monotonic for
// a well-behaved logger, so the true min/max nearly always sits at the
// first and last observed frame; Observe always checks the first plus a
// sparse sample of everything after it, and Finish folds in the last
// observed frame. The sampling catches the occasional
// out-of-order frame a logger or a merged multi-source trace can produce
// without paying the cost of tracking every single one.
type TimespanEstimator struct {
	// SampleEvery controls the sampling density: every SampleEvery-th
	// frame (by 0-based observation order) is checked in addition to the
	// first and last. A value <= 1 checks every frame.
	SampleEvery int

	count int

	haveStorage bool
	minSec      uint32
	minUsec     uint32
	maxSec      uint32
	maxUsec     uint32

	haveTimestamp bool
	minTimestamp  uint32
	maxTimestamp  uint32

	lastSec, lastUsec uint32
	lastTimestamp     uint32
	lastHadStorage    bool
	lastHadTimestamp  bool
}

// NewTimespanEstimator builds an estimator sampling every sampleEvery frames.
func NewTimespanEstimator(sampleEvery int) *TimespanEstimator {
	if sampleEvery < 1 {
		sampleEvery = 1
	}

	return &TimespanEstimator{SampleEvery: sampleEvery}
}

// Observe folds one message's timestamps into the running estimate.
func (e *TimespanEstimator) Observe(msg dlt.Message) {
	isFirst := e.count == 0
	isSampled := e.SampleEvery <= 1 || e.count%e.SampleEvery == 0
	e.count++

	if msg.StorageHeader != nil {
		sec, usec := msg.StorageHeader.TimestampSeconds, msg.StorageHeader.TimestampMicroseconds
		e.lastSec, e.lastUsec = sec, usec
		e.lastHadStorage = true

		if isFirst || isSampled {
			e.foldStorage(sec, usec)
		}
	}

	if msg.StandardHeader.Timestamp != nil {
		ts := *msg.StandardHeader.Timestamp
		e.lastTimestamp = ts
		e.lastHadTimestamp = true

		if isFirst || isSampled {
			e.foldTimestamp(ts)
		}
	}
}

// Finish must be called once after the last Observe to guarantee the final
// frame's timestamps, which sampling may have skipped, are folded in.
func (e *TimespanEstimator) Finish() {
	if e.lastHadStorage {
		e.foldStorage(e.lastSec, e.lastUsec)
	}
	if e.lastHadTimestamp {
		e.foldTimestamp(e.lastTimestamp)
	}
}

func (e *TimespanEstimator) foldStorage(sec, usec uint32) {
	key := uint64(sec)*1_000_000 + uint64(usec)
	if !e.haveStorage {
		e.minSec, e.minUsec = sec, usec
		e.maxSec, e.maxUsec = sec, usec
		e.haveStorage = true

		return
	}
	if key < uint64(e.minSec)*1_000_000+uint64(e.minUsec) {
		e.minSec, e.minUsec = sec, usec
	}
	if key > uint64(e.maxSec)*1_000_000+uint64(e.maxUsec) {
		e.maxSec, e.maxUsec = sec, usec
	}
}

func (e *TimespanEstimator) foldTimestamp(ts uint32) {
	if !e.haveTimestamp {
		e.minTimestamp, e.maxTimestamp = ts, ts
		e.haveTimestamp = true

		return
	}
	if ts < e.minTimestamp {
		e.minTimestamp = ts
	}
	if ts > e.maxTimestamp {
		e.maxTimestamp = ts
	}
}

// Timespan is the result of a TimespanEstimator run.
type Timespan struct {
	HasStorageRange bool
	MinSeconds      uint32
	MinMicroseconds uint32
	MaxSeconds      uint32
	MaxMicroseconds uint32

	HasTimestampRange bool
	MinTimestamp      uint32
	MaxTimestamp      uint32
}

// Result returns the estimator's current span.
func (e *TimespanEstimator) Result() Timespan {
	return Timespan{
		HasStorageRange: e.haveStorage,
		MinSeconds:      e.minSec,
		MinMicroseconds: e.minUsec,
		MaxSeconds:      e.maxSec,
		MaxMicroseconds: e.maxUsec,

		HasTimestampRange: e.haveTimestamp,
		MinTimestamp:      e.minTimestamp,
		MaxTimestamp:      e.maxTimestamp,
	}
}
