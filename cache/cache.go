// Package cache persists a trace's derived index (its file-transfer
// descriptors and statistics summary) to a small side-car blob, keyed by a
// fingerprint of the source file's identity, so a second pass over an
// unchanged trace can skip re-scanning it entirely.
package cache

import (
	"github.com/go-dlt/dltcore/compress"
	"github.com/go-dlt/dltcore/endian"
	"github.com/go-dlt/dltcore/errs"
	"github.com/go-dlt/dltcore/format"
	"github.com/go-dlt/dltcore/internal/hash"
	"github.com/go-dlt/dltcore/internal/pool"
	"github.com/go-dlt/dltcore/stats"
)

// magic identifies a cache blob; version allows the layout to evolve.
var magic = [4]byte{'D', 'C', 'A', 'C'}

const version uint8 = 1

// FileEntry is the cached form of an ft.File: name/size/created plus the
// message-index list, without re-importing the ft package (which would
// create an import cycle back through dlt).
type FileEntry struct {
	Name     string
	Size     uint32
	Created  string
	Messages []int64
}

// Entry is everything worth caching about one fully-scanned trace.
type Entry struct {
	// Fingerprint identifies the source trace this entry was computed
	// from (typically hash.ID over its path, size and modification time).
	Fingerprint uint64

	Files []FileEntry

	FrameCount          int64
	ContainedNonVerbose bool
	Timespan            stats.Timespan
}

// Fingerprint combines a path with a size and modification-time stamp into
// the xxHash64 identity used to recognize an unchanged trace file.
func Fingerprint(path string, size int64, modUnixNano int64) uint64 {
	return hash.ID(path) ^ hash.ID(i64ToStr(size)) ^ hash.ID(i64ToStr(modUnixNano))
}

func i64ToStr(v int64) string {
	buf := make([]byte, 8)
	endian.GetLittleEndianEngine().PutUint64(buf, uint64(v)) //nolint:gosec

	return string(buf)
}

// Encode serializes e to its on-disk form, compressing the payload with codec.
func Encode(e Entry, codec compress.Compressor) ([]byte, error) {
	bb := pool.GetCacheBuffer()
	defer pool.PutCacheBuffer(bb)

	engine := endian.GetLittleEndianEngine()

	appendEntry(bb, e, engine)

	compressed, err := codec.Compress(bb.Bytes())
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 4+1+1+8+4+len(compressed))
	out = append(out, magic[:]...)
	out = append(out, version)
	out = append(out, byte(compressionTag))
	lenBuf := make([]byte, 4)
	engine.PutUint32(lenBuf, uint32(len(compressed))) //nolint:gosec
	out = append(out, lenBuf...)

	return append(out, compressed...), nil
}

// compressionTag is embedded for documentation; callers are responsible
// for decompressing with a Decompressor compatible with the Compressor
// given to Encode (the blob doesn't self-describe which algorithm was
// used, mirroring how this cache is always opened by the same process
// that wrote it).
const compressionTag format.CompressionType = format.CompressionNone

// Decode parses a blob produced by Encode, decompressing its payload with codec.
func Decode(data []byte, codec compress.Decompressor) (Entry, error) {
	if len(data) < 10 {
		return Entry{}, errs.NewIncomplete(10 - len(data))
	}
	if data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return Entry{}, errs.ErrCacheBadMagic
	}
	if data[4] != version {
		return Entry{}, errs.ErrCacheUnsupportedVersion
	}

	engine := endian.GetLittleEndianEngine()
	payloadLen := int(engine.Uint32(data[6:10]))
	if len(data) < 10+payloadLen {
		return Entry{}, errs.NewIncomplete(10 + payloadLen - len(data))
	}

	raw, err := codec.Decompress(data[10 : 10+payloadLen])
	if err != nil {
		return Entry{}, err
	}

	return parseEntry(raw, engine)
}
