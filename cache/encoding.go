package cache

import (
	"github.com/go-dlt/dltcore/endian"
	"github.com/go-dlt/dltcore/errs"
	"github.com/go-dlt/dltcore/internal/pool"
	"github.com/go-dlt/dltcore/stats"
)

func appendEntry(bb *pool.ByteBuffer, e Entry, engine endian.EndianEngine) {
	appendU64(bb, e.Fingerprint, engine)
	appendI64(bb, e.FrameCount, engine)
	appendBool(bb, e.ContainedNonVerbose)
	appendTimespan(bb, e.Timespan, engine)

	appendU32(bb, uint32(len(e.Files)), engine) //nolint:gosec
	for _, f := range e.Files {
		appendString(bb, f.Name, engine)
		appendU32(bb, f.Size, engine)
		appendString(bb, f.Created, engine)
		appendU32(bb, uint32(len(f.Messages)), engine) //nolint:gosec
		for _, idx := range f.Messages {
			appendI64(bb, idx, engine)
		}
	}
}

func parseEntry(data []byte, engine endian.EndianEngine) (Entry, error) {
	r := &reader{data: data}

	var e Entry
	var err error

	if e.Fingerprint, err = r.u64(engine); err != nil {
		return Entry{}, err
	}
	if e.FrameCount, err = r.i64(engine); err != nil {
		return Entry{}, err
	}
	if e.ContainedNonVerbose, err = r.boolean(); err != nil {
		return Entry{}, err
	}
	if e.Timespan, err = r.timespan(engine); err != nil {
		return Entry{}, err
	}

	fileCount, err := r.u32(engine)
	if err != nil {
		return Entry{}, err
	}

	e.Files = make([]FileEntry, 0, fileCount)
	for i := uint32(0); i < fileCount; i++ {
		var f FileEntry
		if f.Name, err = r.str(engine); err != nil {
			return Entry{}, err
		}
		if f.Size, err = r.u32(engine); err != nil {
			return Entry{}, err
		}
		if f.Created, err = r.str(engine); err != nil {
			return Entry{}, err
		}
		msgCount, err := r.u32(engine)
		if err != nil {
			return Entry{}, err
		}
		f.Messages = make([]int64, 0, msgCount)
		for j := uint32(0); j < msgCount; j++ {
			idx, err := r.i64(engine)
			if err != nil {
				return Entry{}, err
			}
			f.Messages = append(f.Messages, idx)
		}
		e.Files = append(e.Files, f)
	}

	return e, nil
}

func appendU32(bb *pool.ByteBuffer, v uint32, engine endian.EndianEngine) {
	buf := make([]byte, 4)
	engine.PutUint32(buf, v)
	bb.MustWrite(buf)
}

func appendU64(bb *pool.ByteBuffer, v uint64, engine endian.EndianEngine) {
	buf := make([]byte, 8)
	engine.PutUint64(buf, v)
	bb.MustWrite(buf)
}

func appendI64(bb *pool.ByteBuffer, v int64, engine endian.EndianEngine) {
	appendU64(bb, uint64(v), engine) //nolint:gosec
}

func appendBool(bb *pool.ByteBuffer, v bool) {
	if v {
		bb.MustWrite([]byte{1})
	} else {
		bb.MustWrite([]byte{0})
	}
}

func appendString(bb *pool.ByteBuffer, s string, engine endian.EndianEngine) {
	appendU32(bb, uint32(len(s)), engine) //nolint:gosec
	bb.MustWrite([]byte(s))
}

func appendTimespan(bb *pool.ByteBuffer, t stats.Timespan, engine endian.EndianEngine) {
	appendBool(bb, t.HasStorageRange)
	appendU32(bb, t.MinSeconds, engine)
	appendU32(bb, t.MinMicroseconds, engine)
	appendU32(bb, t.MaxSeconds, engine)
	appendU32(bb, t.MaxMicroseconds, engine)
	appendBool(bb, t.HasTimestampRange)
	appendU32(bb, t.MinTimestamp, engine)
	appendU32(bb, t.MaxTimestamp, engine)
}

// reader walks a decoded cache payload sequentially.
type reader struct {
	data []byte
	off  int
}

func (r *reader) need(n int) error {
	if len(r.data)-r.off < n {
		return errs.NewIncomplete(n - (len(r.data) - r.off))
	}

	return nil
}

func (r *reader) u32(engine endian.EndianEngine) (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := engine.Uint32(r.data[r.off : r.off+4])
	r.off += 4

	return v, nil
}

func (r *reader) u64(engine endian.EndianEngine) (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := engine.Uint64(r.data[r.off : r.off+8])
	r.off += 8

	return v, nil
}

func (r *reader) i64(engine endian.EndianEngine) (int64, error) {
	v, err := r.u64(engine)

	return int64(v), err //nolint:gosec
}

func (r *reader) boolean() (bool, error) {
	if err := r.need(1); err != nil {
		return false, err
	}
	v := r.data[r.off] != 0
	r.off++

	return v, nil
}

func (r *reader) str(engine endian.EndianEngine) (string, error) {
	n, err := r.u32(engine)
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.data[r.off : r.off+int(n)])
	r.off += int(n)

	return s, nil
}

func (r *reader) timespan(engine endian.EndianEngine) (stats.Timespan, error) {
	var t stats.Timespan
	var err error

	if t.HasStorageRange, err = r.boolean(); err != nil {
		return t, err
	}
	if t.MinSeconds, err = r.u32(engine); err != nil {
		return t, err
	}
	if t.MinMicroseconds, err = r.u32(engine); err != nil {
		return t, err
	}
	if t.MaxSeconds, err = r.u32(engine); err != nil {
		return t, err
	}
	if t.MaxMicroseconds, err = r.u32(engine); err != nil {
		return t, err
	}
	if t.HasTimestampRange, err = r.boolean(); err != nil {
		return t, err
	}
	if t.MinTimestamp, err = r.u32(engine); err != nil {
		return t, err
	}
	if t.MaxTimestamp, err = r.u32(engine); err != nil {
		return t, err
	}

	return t, nil
}
