package ft

import (
	"os"
	"path/filepath"

	"github.com/go-dlt/dltcore/errs"
)

// Sink is one file-transfer destination: create-or-fail once per FLST,
// then append sequentially once per accepted FLDA. No seek or truncate is
// ever used.
type Sink interface {
	Create(name string) error
	Append(data []byte) (int, error)
	Close() error
}

// FileSink is the default os-file-backed Sink, writing under a fixed
// output directory.
type FileSink struct {
	dir string
	f   *os.File
}

// NewFileSink builds a FileSink rooted at dir. dir is created by Create if it
// doesn't exist.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Create opens name under the sink's directory, failing if a destination
// is already open or the file cannot be created exclusively.
func (s *FileSink) Create(name string) error {
	if s.f != nil {
		return errs.ErrSinkAlreadyOpen
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	s.f = f

	return nil
}

// Append writes data to the currently open destination.
func (s *FileSink) Append(data []byte) (int, error) {
	return s.f.Write(data)
}

// Close closes the currently open destination, if any.
func (s *FileSink) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil

	return err
}

// SinkFactory creates a fresh Sink per file, rooted wherever the factory
// chooses (e.g. one output directory shared by every file, or a
// per-stream temp directory).
type SinkFactory func(name string) Sink

// DirSinkFactory returns a SinkFactory producing FileSinks rooted at dir.
func DirSinkFactory(dir string) SinkFactory {
	return func(string) Sink {
		return NewFileSink(dir)
	}
}
