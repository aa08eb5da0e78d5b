// Package dltcore provides a binary codec and toolkit for AUTOSAR DLT
// (Diagnostic Log and Trace) streams.
//
// The core concern is wire-format fidelity: parsing and encoding storage,
// standard and extended headers, verbose and non-verbose payloads, and the
// DLT-FT file-transfer sub-protocol carried inside verbose Log(Info)
// messages. Supporting packages build on top of the codec to filter,
// summarize and cache DLT traces.
//
// # Core Features
//
//   - Zero-copy message codec with resynchronization on malformed frames
//   - App/context/ecu id and log-level filtering
//   - DLT-FT file extraction (two-pass indexer + streamer)
//   - Streaming statistics (per-identifier log-level histograms, timespans)
//   - A compressed on-disk cache for previously computed trace summaries
//
// # Basic Usage
//
// Streaming messages out of a DLT trace file:
//
//	f, _ := os.Open("trace.dlt")
//	defer f.Close()
//
//	s := frame.NewStream(f, frame.Config{WithStorageHeader: true})
//	defer s.Close()
//
//	for {
//	    msg, _, err := s.Next(context.Background())
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(msg.ExtendedHeader.ApplicationID)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the frame,
// filter, ft, stats and cache packages, covering the most common ways to
// open and summarize a trace file. For fine-grained control, use those
// packages directly.
package dltcore

import (
	"context"
	"io"

	"github.com/go-dlt/dltcore/cache"
	"github.com/go-dlt/dltcore/compress"
	"github.com/go-dlt/dltcore/filter"
	"github.com/go-dlt/dltcore/frame"
	"github.com/go-dlt/dltcore/ft"
	"github.com/go-dlt/dltcore/stats"
)

// OpenOption configures OpenTrace.
type OpenOption func(*frame.Config)

// WithStorageHeaders tells the stream to expect DLT storage headers
// ("DLT\x01" prefixed records), the layout produced by dlt-viewer and
// most on-disk trace captures.
func WithStorageHeaders() OpenOption {
	return func(cfg *frame.Config) { cfg.WithStorageHeader = true }
}

// WithFilter installs f so frames failing it are reported as filtered out
// rather than decoded.
func WithFilter(f *filter.Filter) OpenOption {
	return func(cfg *frame.Config) { cfg.Filter = f }
}

// OpenTrace wraps src in a frame.Stream configured by opts.
//
// The caller owns src's lifetime; Stream.Close only releases the stream's
// internal buffer, it does not close src.
func OpenTrace(src io.Reader, opts ...OpenOption) *frame.Stream {
	var cfg frame.Config
	for _, opt := range opts {
		opt(&cfg)
	}

	return frame.NewStream(src, cfg)
}

// CollectStats drains s, building per-identifier log-level histograms and
// an overall timespan. onProgress, if non-nil, is called periodically with
// the number of frames processed so far.
func CollectStats(ctx context.Context, s *frame.Stream, onProgress stats.ProgressFunc) (*stats.Result, error) {
	return stats.Collect(ctx, s, onProgress)
}

// ExtractFiles runs the DLT-FT two-pass extraction over src: an indexing
// pass that discovers the files carried by FLST/FLDA/FLFI messages,
// followed by a streaming pass that writes each file's payload through
// newSink. The streaming pass needs to rewind src: when src is not an
// io.Seeker, only the indexing pass runs and the returned total is 0.
//
// The returned int64 is the total number of payload bytes of the files the
// streaming pass completed with a matching size.
func ExtractFiles(ctx context.Context, src io.Reader, newSink ft.SinkFactory) ([]ft.File, int64, error) {
	idxStream := frame.NewStream(src, frame.Config{WithStorageHeader: true})
	defer idxStream.Close()

	indexer := ft.NewIndexer()
	files, err := indexer.Run(ctx, idxStream, 0)
	if err != nil {
		return nil, 0, err
	}

	seeker, ok := src.(io.Seeker)
	if !ok {
		return files, 0, nil
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return files, 0, err
	}

	dataStream := frame.NewStream(src, frame.Config{WithStorageHeader: true})
	defer dataStream.Close()

	streamer := ft.NewStreamer(newSink)
	total, err := streamer.Run(ctx, dataStream, files)

	return files, total, err
}

// LoadCache decodes a previously saved Entry using codec. Pass the same
// Codec (or a Decompressor compatible with it) used to produce blob.
func LoadCache(blob []byte, codec compress.Decompressor) (cache.Entry, error) {
	return cache.Decode(blob, codec)
}

// SaveCache encodes e into a compressed cache blob using codec.
func SaveCache(e cache.Entry, codec compress.Compressor) ([]byte, error) {
	return cache.Encode(e, codec)
}

// CacheFingerprint derives the identity cache.Entry.Fingerprint should
// carry for a trace file with the given path, size and modification time
// (as UnixNano).
func CacheFingerprint(path string, size int64, modUnixNano int64) uint64 {
	return cache.Fingerprint(path, size, modUnixNano)
}

// NewFilter creates an empty Filter that allows everything until narrowed
// by its With* methods.
func NewFilter() *filter.Filter {
	return filter.New()
}
