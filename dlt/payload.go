package dlt

import (
	"github.com/go-dlt/dltcore/endian"
	"github.com/go-dlt/dltcore/errs"
)

// PayloadKind discriminates the Payload tagged union.
type PayloadKind uint8

const (
	PayloadVerbose PayloadKind = iota
	PayloadNonVerbose
	PayloadControl
)

// Payload is the message body, in one of three shapes depending on the
// extended header's verbose flag and message type category.
type Payload struct {
	Kind PayloadKind

	Arguments []Argument

	MessageID uint32
	NVBytes   []byte

	ControlType ControlType
	CtrlBytes   []byte
}

// NewVerbosePayload builds a Verbose payload from a decoded argument list.
func NewVerbosePayload(args []Argument) Payload {
	return Payload{Kind: PayloadVerbose, Arguments: args}
}

// NewNonVerbosePayload builds a NonVerbose payload.
func NewNonVerbosePayload(id uint32, rest []byte) Payload {
	return Payload{Kind: PayloadNonVerbose, MessageID: id, NVBytes: rest}
}

// NewControlPayload builds a Control payload.
func NewControlPayload(ct ControlType, rest []byte) Payload {
	return Payload{Kind: PayloadControl, ControlType: ct, CtrlBytes: rest}
}

// DecodeVerbosePayload reads exactly argCount arguments from data. Failure
// of any argument fails the whole payload (spec.md §4.4): a partial
// argument list is never returned.
func DecodeVerbosePayload(data []byte, argCount int, engine endian.EndianEngine) (Payload, int, error) {
	off := 0
	args := make([]Argument, 0, argCount)

	for i := 0; i < argCount; i++ {
		arg, n, err := DecodeArgument(data[off:], engine)
		if err != nil {
			return Payload{}, 0, err
		}
		args = append(args, arg)
		off += n
	}

	return NewVerbosePayload(args), off, nil
}

// DecodeNonVerbosePayload reads the u32 message id followed by the opaque
// remainder. data must hold the whole payload (payloadLength bytes).
func DecodeNonVerbosePayload(data []byte, engine endian.EndianEngine) (Payload, error) {
	if len(data) < 4 {
		return Payload{}, errs.ErrPayloadTooShort
	}
	id := engine.Uint32(data[:4])
	rest := make([]byte, len(data)-4)
	copy(rest, data[4:])

	return NewNonVerbosePayload(id, rest), nil
}

// DecodeControlPayload reads the single control-type byte followed by the
// opaque remainder. data must hold the whole payload.
func DecodeControlPayload(data []byte) (Payload, error) {
	if len(data) < 1 {
		return Payload{}, errs.ErrPayloadTooShort
	}
	ct := ControlTypeFromValue(data[0])
	rest := make([]byte, len(data)-1)
	copy(rest, data[1:])

	return NewControlPayload(ct, rest), nil
}

// Encode serializes the payload under engine's byte order.
func (p Payload) Encode(engine endian.EndianEngine) []byte {
	switch p.Kind {
	case PayloadVerbose:
		var buf []byte
		for _, a := range p.Arguments {
			buf = append(buf, a.Encode(engine)...)
		}

		return buf

	case PayloadNonVerbose:
		buf := make([]byte, 4)
		engine.PutUint32(buf, p.MessageID)

		return append(buf, p.NVBytes...)

	case PayloadControl:
		buf := make([]byte, 1, 1+len(p.CtrlBytes))
		buf[0] = p.ControlType.Value()

		return append(buf, p.CtrlBytes...)

	default:
		return nil
	}
}
