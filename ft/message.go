// Package ft implements the DLT-FT file-transfer sub-protocol: recognizing
// FLST/FLDA/FLFI verbose Log(Info) messages, indexing them per file id, and
// streaming accepted packets to per-file sinks in strict order.
package ft

import (
	"strconv"
	"strings"

	"github.com/go-dlt/dltcore/dlt"
)

const (
	tagStart = "FLST"
	tagData  = "FLDA"
	tagEnd   = "FLFI"
)

// Kind discriminates the parsed FT message variants.
type Kind uint8

const (
	KindStart Kind = iota
	KindData
	KindEnd
)

// Message is one parsed DLT-FT control or data message.
type Message struct {
	Kind      Kind
	Timestamp *uint32
	FileID    uint32

	// Start fields.
	Name    string
	Size    uint32
	Created string
	Packets uint32

	// Data fields.
	Packet uint32
	Bytes  []byte
}

// Parse recognizes msg as a DLT-FT message, if any. It returns ok=false for
// any message that isn't a verbose Log(Info) message bracketed by one of
// the three recognized tags.
func Parse(msg dlt.Message) (Message, bool) {
	if msg.ExtendedHeader == nil {
		return Message{}, false
	}
	eh := msg.ExtendedHeader
	if eh.MessageType.Category != dlt.CategoryLog || eh.MessageType.Log.Level != dlt.LogLevelInfo {
		return Message{}, false
	}
	if msg.Payload.Kind != dlt.PayloadVerbose {
		return Message{}, false
	}
	args := msg.Payload.Arguments
	if len(args) < 2 {
		return Message{}, false
	}

	first, ok1 := stringArg(args[0])
	last, ok2 := stringArg(args[len(args)-1])
	if !ok1 || !ok2 {
		return Message{}, false
	}

	var ts *uint32
	if msg.StandardHeader.Timestamp != nil {
		t := *msg.StandardHeader.Timestamp
		ts = &t
	}

	switch {
	case first == tagStart && last == tagStart:
		return parseStart(ts, args)
	case first == tagData && last == tagData:
		return parseData(ts, args)
	case first == tagEnd && last == tagEnd:
		return parseEnd(ts, args)
	default:
		return Message{}, false
	}
}

func parseStart(ts *uint32, args []dlt.Argument) (Message, bool) {
	if len(args) < 8 {
		return Message{}, false
	}
	id, ok := uintArg(args[1])
	if !ok {
		return Message{}, false
	}
	name, ok := stringArg(args[2])
	if !ok {
		return Message{}, false
	}
	size, ok := uintArg(args[3])
	if !ok {
		return Message{}, false
	}
	created, ok := stringArg(args[4])
	if !ok {
		return Message{}, false
	}
	packets, ok := uintArg(args[5])
	if !ok {
		return Message{}, false
	}

	return Message{
		Kind:      KindStart,
		Timestamp: ts,
		FileID:    uint32(id),
		Name:      name,
		Size:      uint32(size),
		Created:   created,
		Packets:   uint32(packets),
	}, true
}

func parseData(ts *uint32, args []dlt.Argument) (Message, bool) {
	if len(args) < 4 {
		return Message{}, false
	}
	id, ok := uintArg(args[1])
	if !ok {
		return Message{}, false
	}
	packet, ok := uintArg(args[2])
	if !ok {
		return Message{}, false
	}
	if args[3].Value.Kind != dlt.ValueRaw {
		return Message{}, false
	}

	return Message{
		Kind:      KindData,
		Timestamp: ts,
		FileID:    uint32(id),
		Packet:    uint32(packet),
		Bytes:     args[3].Value.Raw(),
	}, true
}

func parseEnd(ts *uint32, args []dlt.Argument) (Message, bool) {
	if len(args) < 2 {
		return Message{}, false
	}
	id, ok := uintArg(args[1])
	if !ok {
		return Message{}, false
	}

	return Message{Kind: KindEnd, Timestamp: ts, FileID: uint32(id)}, true
}

func stringArg(a dlt.Argument) (string, bool) {
	if a.Value.Kind != dlt.ValueString {
		return "", false
	}

	return a.Value.String(), true
}

func uintArg(a dlt.Argument) (uint64, bool) {
	switch a.Value.Kind {
	case dlt.ValueU8, dlt.ValueU16, dlt.ValueU32, dlt.ValueU64:
		return a.Value.Uint(), true
	default:
		return 0, false
	}
}

// SaveName produces a filesystem-safe name for a Start message: the DLT
// timestamp if present, else the file id, prefixed onto the name with
// backslash/slash replaced by '$' and spaces replaced by '_'.
func SaveName(m Message) string {
	prefix := uint64(m.FileID)
	if m.Timestamp != nil {
		prefix = uint64(*m.Timestamp)
	}

	name := strings.NewReplacer("\\", "$", "/", "$", " ", "_").Replace(m.Name)

	return strconv.FormatUint(prefix, 10) + "_" + name
}
