// Package frame assembles whole DLT messages out of a byte slice,
// handling storage-header resynchronization, length validation and
// pre-decode filtering, on top of the dlt package's fixed-shape codec.
package frame

import (
	"errors"

	"github.com/go-dlt/dltcore/dlt"
	"github.com/go-dlt/dltcore/endian"
	"github.com/go-dlt/dltcore/errs"
	"github.com/go-dlt/dltcore/filter"
)

// ResultKind discriminates the outcome of one Assemble call.
type ResultKind uint8

const (
	// ResultItem carries a fully decoded Message.
	ResultItem ResultKind = iota
	// ResultFilteredOut means the frame was valid but screened out by the
	// configured Filter; Consumed still advances past it.
	ResultFilteredOut
	// ResultInvalid means the frame's header was malformed in a way that
	// is recoverable: the bytes up to Consumed are skipped and the caller
	// should retry from there.
	ResultInvalid
	// ResultIncomplete means data didn't hold a whole frame; the caller
	// should refill its buffer and retry from the same offset.
	ResultIncomplete
)

// Result is the outcome of assembling one frame from a buffer.
type Result struct {
	Kind ResultKind

	// Message is populated when Kind == ResultItem.
	Message dlt.Message

	// Consumed is the number of bytes of the input buffer this frame
	// occupied, including any storage-header resync skip. Meaningful for
	// ResultItem, ResultFilteredOut and ResultInvalid.
	Consumed int

	// Skipped is the number of garbage bytes skipped before the storage
	// header pattern was found, when WithStorageHeader is set.
	Skipped int

	// Needed is a best-effort estimate of additional bytes required,
	// populated for ResultIncomplete.
	Needed int

	// Reason carries the recoverable failure's detail for ResultInvalid.
	Reason error
}

// Config controls one Assemble call.
type Config struct {
	WithStorageHeader bool
	Filter            *filter.Filter
}

// Assemble parses exactly one frame out of data under cfg. It never
// returns a Go error: all outcomes, including truncation and malformed
// headers, are reported through Result so a stream consumer can decide how
// to proceed (see the frame package's companion stream consumer).
func Assemble(data []byte, cfg Config) Result {
	off := 0
	skipped := 0

	if cfg.WithStorageHeader {
		idx := dlt.FindStoragePattern(data)
		if idx < 0 {
			return Result{Kind: ResultIncomplete, Needed: 4}
		}
		skipped = idx
		off = idx
	}

	withStorage := cfg.WithStorageHeader
	var storageHdr *dlt.StorageHeader
	stdStart := off
	if withStorage {
		sh, err := dlt.DecodeStorageHeader(data[off:])
		if err != nil {
			if inc, ok := asIncomplete(err); ok {
				return Result{Kind: ResultIncomplete, Needed: inc, Skipped: skipped}
			}

			return Result{Kind: ResultInvalid, Consumed: off + 4, Skipped: skipped, Reason: err}
		}
		storageHdr = &sh
		off += dlt.StorageHeaderSize
		stdStart = off
	}

	std, n, err := dlt.DecodeStandardHeader(data[off:])
	if err != nil {
		if inc, ok := asIncomplete(err); ok {
			return Result{Kind: ResultIncomplete, Needed: inc, Skipped: skipped}
		}

		return Result{Kind: ResultInvalid, Consumed: off + 4, Skipped: skipped, Reason: err}
	}

	overall := std.OverallLength()
	if overall < n {
		return Result{Kind: ResultInvalid, Consumed: off + n, Skipped: skipped, Reason: errs.ErrOverallLengthTooSmall}
	}
	frameEnd := stdStart + overall
	if len(data) < frameEnd {
		return Result{Kind: ResultIncomplete, Needed: frameEnd - len(data), Skipped: skipped}
	}

	off += n

	var ext *dlt.ExtendedHeader
	if std.HasExtendedHeader {
		eh, err := dlt.DecodeExtendedHeader(data[off:])
		if err != nil {
			return Result{Kind: ResultInvalid, Consumed: frameEnd, Skipped: skipped, Reason: err}
		}
		ext = &eh
		off += dlt.ExtendedHeaderSize
	}

	ecuID := ""
	if std.EcuID != nil {
		ecuID = *std.EcuID
	} else if storageHdr != nil {
		ecuID = storageHdr.EcuID
	}

	if cfg.Filter != nil && !cfg.Filter.Allow(ext, ecuID) {
		return Result{Kind: ResultFilteredOut, Consumed: frameEnd, Skipped: skipped}
	}

	payloadBytes := data[off:frameEnd]
	payload, err := decodePayload(payloadBytes, ext, dlt.EngineFor(std.Endianness))
	if err != nil {
		return Result{Kind: ResultInvalid, Consumed: frameEnd, Skipped: skipped, Reason: err}
	}

	msg := dlt.Message{
		StorageHeader:  storageHdr,
		StandardHeader: std,
		ExtendedHeader: ext,
		Payload:        payload,
	}

	return Result{Kind: ResultItem, Message: msg, Consumed: frameEnd, Skipped: skipped}
}

func decodePayload(data []byte, ext *dlt.ExtendedHeader, engine endian.EndianEngine) (dlt.Payload, error) {
	if ext != nil && ext.Verbose {
		p, _, err := dlt.DecodeVerbosePayload(data, int(ext.ArgumentCount), engine)

		return p, err
	}
	if ext != nil && ext.MessageType.Category == dlt.CategoryControl {
		return dlt.DecodeControlPayload(data)
	}

	return dlt.DecodeNonVerbosePayload(data, engine)
}

func asIncomplete(err error) (int, bool) {
	var inc *errs.IncompleteError
	if errors.As(err, &inc) {
		return inc.Needed, true
	}

	return 0, false
}
