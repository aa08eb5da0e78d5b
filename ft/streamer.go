package ft

import (
	"context"
	"errors"
	"io"
	"math"

	"github.com/go-dlt/dltcore/errs"
	"github.com/go-dlt/dltcore/frame"
	"github.com/go-dlt/dltcore/logx"
	"go.uber.org/zap"
)

// streamState tracks one in-flight file transfer.
type streamState struct {
	sink            Sink
	declaredSize    uint32
	nextExpected    uint32
	packetsReceived uint32
	bytesReceived   uint32
}

// Streamer runs the second FT pass: it writes accepted FLDA payloads to a
// per-file Sink, enforcing strict +1 packet ordering and a final size
// check, optionally restricted to a subset of previously-indexed files.
type Streamer struct {
	newSink SinkFactory

	active map[uint32]*streamState
	errors int
}

// NewStreamer builds a Streamer that opens sinks via newSink.
func NewStreamer(newSink SinkFactory) *Streamer {
	return &Streamer{
		newSink: newSink,
		active:  make(map[uint32]*streamState),
	}
}

// Errors returns the number of StartFailed/PacketMismatch/AppendFailed/
// SizeMismatch events observed since the last Run.
func (st *Streamer) Errors() int { return st.errors }

// Complete reports whether the most recent Run finished with no streams
// still open and no errors recorded.
func (st *Streamer) Complete() bool {
	return len(st.active) == 0 && st.errors == 0
}

// reset clears all internal state, matching the "re-running resets"
// invariant: every Run starts from a clean slate.
func (st *Streamer) reset() {
	st.active = make(map[uint32]*streamState)
	st.errors = 0
}

// Run drives s to completion, optionally restricted to the stream-index
// span covering `files` (when non-nil). It returns the total number of
// bytes belonging to files that completed successfully (reached KindEnd
// with bytesReceived matching declaredSize); a file dropped mid-flight by
// a packet mismatch, append failure or size mismatch contributes nothing
// to the total even though its sink may hold partial data. Returns 0 if
// ctx is cancelled mid-run.
func (st *Streamer) Run(ctx context.Context, s *frame.Stream, files []File) (int64, error) {
	st.reset()

	minIdx, maxIdx, restricted := indexBounds(files)

	var total int64
	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return 0, nil
		}

		if restricted && index+1 > maxIdx {
			break
		}

		msg, _, err := s.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return 0, nil
			}

			return 0, err
		}
		index++

		if restricted && index < minIdx {
			continue
		}

		ftMsg, ok := Parse(msg)
		if !ok {
			continue
		}

		n, err := st.observe(ftMsg)
		if err != nil {
			st.errors++

			continue
		}
		total += int64(n)
	}

	for _, stream := range st.active {
		_ = stream.sink.Close()
	}

	return total, nil
}

func (st *Streamer) observe(m Message) (int, error) {
	switch m.Kind {
	case KindStart:
		name := SaveName(m)
		sink := st.newSink(name)
		if err := sink.Create(name); err != nil {
			logx.L().Warn("ft: failed to start file stream",
				zap.Uint32("fileID", m.FileID), zap.String("name", name), zap.Error(err))

			return 0, &errs.StartFailedError{Err: err}
		}
		st.active[m.FileID] = &streamState{
			sink:         sink,
			declaredSize: m.Size,
			nextExpected: 1,
		}

		return 0, nil

	case KindData:
		stream, ok := st.active[m.FileID]
		if !ok {
			return 0, nil
		}
		if m.Packet != stream.nextExpected {
			delete(st.active, m.FileID)

			logx.L().Warn("ft: dropping file stream after packet mismatch",
				zap.Uint32("fileID", m.FileID), zap.Uint32("expected", stream.nextExpected), zap.Uint32("got", m.Packet))

			return 0, &errs.PacketMismatchError{Expected: stream.nextExpected, Got: m.Packet}
		}
		n, err := stream.sink.Append(m.Bytes)
		if err != nil {
			delete(st.active, m.FileID)

			logx.L().Warn("ft: dropping file stream after append failure",
				zap.Uint32("fileID", m.FileID), zap.Error(err))

			return 0, &errs.AppendFailedError{Err: err}
		}
		stream.packetsReceived++
		stream.bytesReceived += uint32(n) //nolint:gosec
		stream.nextExpected++

		// Bytes are only counted toward the run total once the file
		// completes successfully at KindEnd; a stream dropped mid-flight
		// (missing packet, missing FLFI) contributes nothing.
		return 0, nil

	case KindEnd:
		stream, ok := st.active[m.FileID]
		if !ok {
			return 0, nil
		}
		_ = stream.sink.Close()
		delete(st.active, m.FileID)

		if stream.bytesReceived != stream.declaredSize {
			logx.L().Warn("ft: file stream size mismatch at completion",
				zap.Uint32("fileID", m.FileID), zap.Uint32("expected", stream.declaredSize), zap.Uint32("got", stream.bytesReceived))

			return 0, &errs.SizeMismatchError{Expected: stream.declaredSize, Got: stream.bytesReceived}
		}

		return int(stream.bytesReceived), nil

	default:
		return 0, nil
	}
}

// indexBounds computes the [min, max] 1-based stream-index span covering
// every message belonging to files. restricted is false when files is nil,
// meaning every frame should be considered.
func indexBounds(files []File) (minIdx, maxIdx int, restricted bool) {
	if files == nil {
		return 0, 0, false
	}

	minIdx, maxIdx = math.MaxInt, 0
	for _, f := range files {
		for _, idx := range f.Messages {
			if idx < minIdx {
				minIdx = idx
			}
			if idx > maxIdx {
				maxIdx = idx
			}
		}
	}
	if maxIdx == 0 {
		return 0, 0, true
	}

	return minIdx, maxIdx, true
}
