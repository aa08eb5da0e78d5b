package dlt

import (
	"github.com/go-dlt/dltcore/endian"
	"github.com/go-dlt/dltcore/errs"
)

// Message is a single parsed DLT frame: an optional file-framing
// StorageHeader, the mandatory StandardHeader, an optional ExtendedHeader,
// and the Payload whose shape follows from the extended header's verbose
// flag and message type.
type Message struct {
	StorageHeader  *StorageHeader
	StandardHeader StandardHeader
	ExtendedHeader *ExtendedHeader
	Payload        Payload
}

// Decode parses one complete Message from data. withStorageHeader selects
// whether a StorageHeader prefix is expected. data must hold at least one
// full frame; Decode does not resynchronize past garbage - that is C6's job.
func Decode(data []byte, withStorageHeader bool) (Message, int, error) {
	off := 0
	var msg Message

	if withStorageHeader {
		sh, err := DecodeStorageHeader(data)
		if err != nil {
			return Message{}, 0, err
		}
		msg.StorageHeader = &sh
		off += StorageHeaderSize
	}

	stdStart := off
	std, n, err := DecodeStandardHeader(data[off:])
	if err != nil {
		return Message{}, 0, err
	}
	msg.StandardHeader = std
	off += n

	overall := std.OverallLength()
	if overall < n {
		return Message{}, 0, errs.ErrOverallLengthTooSmall
	}
	frameEnd := stdStart + overall
	if len(data) < frameEnd {
		return Message{}, 0, errs.NewIncomplete(frameEnd - len(data))
	}

	engine := EngineFor(std.Endianness)

	if std.HasExtendedHeader {
		eh, err := DecodeExtendedHeader(data[off:])
		if err != nil {
			return Message{}, 0, err
		}
		msg.ExtendedHeader = &eh
		off += ExtendedHeaderSize
	}

	payloadEnd := off + int(std.PayloadLength)
	if len(data) < payloadEnd {
		return Message{}, 0, errs.NewIncomplete(payloadEnd - len(data))
	}
	payloadBytes := data[off:payloadEnd]

	payload, err := decodePayload(payloadBytes, msg.ExtendedHeader, engine)
	if err != nil {
		return Message{}, 0, err
	}
	msg.Payload = payload
	off = payloadEnd

	return msg, off, nil
}

func decodePayload(data []byte, ext *ExtendedHeader, engine endian.EndianEngine) (Payload, error) {
	if ext != nil && ext.Verbose {
		p, _, err := DecodeVerbosePayload(data, int(ext.ArgumentCount), engine)

		return p, err
	}
	if ext != nil {
		switch ext.MessageType.Category {
		case CategoryControl:
			return DecodeControlPayload(data)
		default:
			return DecodeNonVerbosePayload(data, engine)
		}
	}

	return DecodeNonVerbosePayload(data, engine)
}

// Encode serializes the Message to its wire form. PayloadLength and
// ArgumentCount are recomputed from the payload so callers never need to
// keep them consistent by hand.
func (m Message) Encode() []byte {
	engine := EngineFor(m.StandardHeader.Endianness)
	payloadBytes := m.Payload.Encode(engine)

	std := m.StandardHeader
	std.PayloadLength = uint16(len(payloadBytes)) //nolint:gosec

	var buf []byte
	if m.StorageHeader != nil {
		buf = append(buf, m.StorageHeader.Encode()...)
	}
	buf = append(buf, std.Encode()...)

	if m.ExtendedHeader != nil {
		eh := *m.ExtendedHeader
		if m.Payload.Kind == PayloadVerbose {
			eh.ArgumentCount = uint8(len(m.Payload.Arguments)) //nolint:gosec
		}
		buf = append(buf, eh.Encode()...)
	}

	buf = append(buf, payloadBytes...)

	return buf
}
