package frame

import (
	"context"
	"errors"
	"io"

	"github.com/go-dlt/dltcore/dlt"
	"github.com/go-dlt/dltcore/internal/pool"
	"github.com/go-dlt/dltcore/logx"
	"go.uber.org/zap"
)

const (
	// minWindowBytes is the floor the stream consumer always tries to keep
	// buffered ahead of the current parse position.
	minWindowBytes = 10 * 1024
	// maxWindowBytes is the nominal ceiling the window grows to; a single
	// frame larger than this is still accepted, it just forces one extra
	// grow+refill cycle.
	maxWindowBytes = 10 * 1024 * 1024
)

var streamPool = pool.NewByteBufferPool(minWindowBytes, maxWindowBytes*2)

// Stream drives Assemble over a seekable, read-only byte source, applying
// the minimum-buffered refill policy and surfacing a lazy sequence of
// decoded messages. A Stream is single-use: once Next returns io.EOF it
// must not be called again.
type Stream struct {
	src io.Reader
	cfg Config
	buf *pool.ByteBuffer
	pos int
	eof bool

	// Offset is the cumulative number of source bytes consumed so far,
	// including skipped resync garbage.
	Offset int64
}

// NewStream builds a Stream reading from src under cfg.
func NewStream(src io.Reader, cfg Config) *Stream {
	return &Stream{
		src: src,
		cfg: cfg,
		buf: streamPool.Get(),
	}
}

// Close returns the Stream's internal buffer to the shared pool. Callers
// should call it once they are done driving the Stream.
func (s *Stream) Close() {
	if s.buf != nil {
		streamPool.Put(s.buf)
		s.buf = nil
	}
}

// Next parses and returns the next message in the stream, skipping
// filtered-out, invalid and resynchronized spans transparently. It returns
// io.EOF once the source is exhausted with no further whole frame
// available. ctx is checked between frames and before each refill; a
// cancelled context yields ctx.Err() instead of io.EOF.
func (s *Stream) Next(ctx context.Context) (dlt.Message, int64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return dlt.Message{}, 0, err
		}

		window := s.buf.B[s.pos:]
		if len(window) > 0 {
			res := Assemble(window, s.cfg)
			if res.Skipped > 0 {
				logx.L().Debug("frame: resynchronized after skipping garbage bytes",
					zap.Int64("offset", s.Offset), zap.Int("skipped", res.Skipped))
			}
			switch res.Kind {
			case ResultItem:
				s.advance(res.Consumed)

				return res.Message, int64(res.Consumed), nil
			case ResultFilteredOut:
				s.advance(res.Consumed)

				continue
			case ResultInvalid:
				logx.L().Debug("frame: skipping invalid frame",
					zap.Int64("offset", s.Offset), zap.Error(res.Reason))
				adv := res.Consumed
				if adv <= 0 {
					adv = 4
				}
				s.advance(adv)

				continue
			case ResultIncomplete:
				if s.eof {
					return dlt.Message{}, 0, io.EOF
				}
				if err := s.refill(res.Needed); err != nil {
					if errors.Is(err, io.EOF) {
						s.eof = true

						continue
					}

					return dlt.Message{}, 0, err
				}

				continue
			}
		}

		if s.eof {
			return dlt.Message{}, 0, io.EOF
		}
		if err := s.refill(minWindowBytes); err != nil {
			if errors.Is(err, io.EOF) {
				s.eof = true

				continue
			}

			return dlt.Message{}, 0, err
		}
	}
}

// advance drops n bytes from the front of the current window, compacting
// the buffer once consumed bytes accumulate past half its capacity.
func (s *Stream) advance(n int) {
	s.pos += n
	s.Offset += int64(n)

	if s.pos > 0 && s.pos >= cap(s.buf.B)/2 {
		s.compact()
	}
}

func (s *Stream) compact() {
	remaining := s.buf.B[s.pos:]
	copy(s.buf.B, remaining)
	s.buf.SetLength(len(remaining))
	s.pos = 0
}

// refill grows the buffer's free capacity to at least `need` bytes (or
// minWindowBytes, whichever is larger) and reads from src once into it; a
// single read may return fewer bytes than `need`. It returns io.EOF only when src is drained and no bytes
// were read; bytes read just before hitting EOF are still appended.
func (s *Stream) refill(need int) error {
	s.compact()

	want := need
	if want < minWindowBytes {
		want = minWindowBytes
	}
	s.buf.Grow(want)

	start := len(s.buf.B)
	window := s.buf.B[start:cap(s.buf.B)]

	n, err := s.src.Read(window)
	if n > 0 {
		s.buf.SetLength(start + n)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			if n == 0 {
				return io.EOF
			}

			return nil
		}

		return err
	}

	return nil
}
