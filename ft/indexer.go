package ft

import (
	"context"
	"errors"
	"io"
	"sort"

	"github.com/go-dlt/dltcore/dlt"
	"github.com/go-dlt/dltcore/frame"
	"github.com/go-dlt/dltcore/logx"
	"go.uber.org/zap"
)

// File is one indexed file-transfer entry: its descriptor plus the
// 1-based, insertion-ordered stream indices of every message that belongs
// to it (the FLST that opened it and every subsequent FLDA/FLFI).
type File struct {
	Name      string
	Size      uint32
	Created   string
	Timestamp *uint32
	Messages  []int
}

// Indexer runs the first FT pass over a frame.Stream: it groups FLST/FLDA/
// FLFI messages by file id and records the originating stream index of
// each. FLDA/FLFI referencing an unknown file id are ignored, since the
// opening FLST may have been filtered out or truncated.
type Indexer struct {
	files map[uint32]*File
	order []uint32
}

// NewIndexer builds an empty Indexer.
func NewIndexer() *Indexer {
	return &Indexer{files: make(map[uint32]*File)}
}

// Run drives s to completion, indexing every FT message it yields. The first
// message Run sees gets stream index startIndex+1; callers processing more
// than one Stream in sequence pass the running total.
// Returns nil if ctx is cancelled before the stream is exhausted.
func (idx *Indexer) Run(ctx context.Context, s *frame.Stream, startIndex int) ([]File, error) {
	index := startIndex
	for {
		msg, _, err := s.Next(ctx)
		if err != nil {
			if isExhausted(err) {
				break
			}
			if ctx.Err() != nil {
				return nil, nil //nolint:nilnil
			}

			return nil, err
		}

		index++
		idx.observe(msg, index)
	}

	return idx.Files(), nil
}

// Observe indexes a single message at the given 1-based stream index,
// for callers driving their own read loop instead of Run.
func (idx *Indexer) Observe(msg dlt.Message, index int) {
	idx.observe(msg, index)
}

func (idx *Indexer) observe(msg dlt.Message, index int) {
	ftMsg, ok := Parse(msg)
	if !ok {
		return
	}

	switch ftMsg.Kind {
	case KindStart:
		f := &File{
			Name:      ftMsg.Name,
			Size:      ftMsg.Size,
			Created:   ftMsg.Created,
			Timestamp: ftMsg.Timestamp,
			Messages:  []int{index},
		}
		if _, exists := idx.files[ftMsg.FileID]; !exists {
			idx.order = append(idx.order, ftMsg.FileID)
		}
		idx.files[ftMsg.FileID] = f

	case KindData, KindEnd:
		f, ok := idx.files[ftMsg.FileID]
		if !ok {
			logx.L().Warn("ft: ignoring message for unindexed file",
				zap.Uint32("fileID", ftMsg.FileID), zap.Int("streamIndex", index))

			return
		}
		f.Messages = append(f.Messages, index)
	}
}

// Files returns the indexed files sorted by name ascending.
func (idx *Indexer) Files() []File {
	out := make([]File, 0, len(idx.files))
	for _, id := range idx.order {
		out = append(out, *idx.files[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

func isExhausted(err error) bool {
	return errors.Is(err, io.EOF)
}
