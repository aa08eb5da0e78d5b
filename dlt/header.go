package dlt

import (
	"github.com/go-dlt/dltcore/endian"
	"github.com/go-dlt/dltcore/errs"
)

// storagePattern is the 4-byte magic prefixing every StorageHeader.
var storagePattern = [4]byte{'D', 'L', 'T', 0x01}

// StorageHeaderSize is the fixed on-wire size of a StorageHeader.
const StorageHeaderSize = 16

// StorageHeader is the optional file-framing prefix written ahead of every
// message in a `.dlt` trace file. Its own fields are always little-endian,
// independent of the message's declared Endianness.
type StorageHeader struct {
	// TimestampSeconds is the trace-capture time, seconds part.
	TimestampSeconds uint32
	// TimestampMicroseconds is the trace-capture time, microseconds part.
	TimestampMicroseconds uint32
	// EcuID is the 4-byte NUL-padded ECU identifier recorded by the logger
	// that wrote the trace file (distinct from the standard header's optional EcuID).
	EcuID string
}

// DecodeStorageHeader parses a 16-byte StorageHeader from data[0:16].
// data must already be positioned at the "DLT\x01" pattern.
func DecodeStorageHeader(data []byte) (StorageHeader, error) {
	if len(data) < StorageHeaderSize {
		return StorageHeader{}, errs.NewIncomplete(StorageHeaderSize - len(data))
	}
	if data[0] != storagePattern[0] || data[1] != storagePattern[1] ||
		data[2] != storagePattern[2] || data[3] != storagePattern[3] {
		return StorageHeader{}, errs.ErrNoStorageHeader
	}

	le := endian.GetLittleEndianEngine()
	ecuID, err := zeroTerminatedString(data[12:16], 4)
	if err != nil {
		return StorageHeader{}, err
	}

	return StorageHeader{
		TimestampSeconds:      le.Uint32(data[4:8]),
		TimestampMicroseconds: le.Uint32(data[8:12]),
		EcuID:                 ecuID,
	}, nil
}

// Encode serializes the StorageHeader to its 16-byte wire form.
func (h StorageHeader) Encode() []byte {
	buf := make([]byte, StorageHeaderSize)
	copy(buf[0:4], storagePattern[:])

	le := endian.GetLittleEndianEngine()
	le.PutUint32(buf[4:8], h.TimestampSeconds)
	le.PutUint32(buf[8:12], h.TimestampMicroseconds)
	putZeroTerminatedString(buf[12:16], h.EcuID, 4)

	return buf
}

// FindStoragePattern scans data for the "DLT\x01" magic, returning the byte
// offset of its first occurrence. Returns -1 if not found.
func FindStoragePattern(data []byte) int {
	if len(data) < 4 {
		return -1
	}
	for i := 0; i+4 <= len(data); i++ {
		if data[i] == storagePattern[0] && data[i+1] == storagePattern[1] &&
			data[i+2] == storagePattern[2] && data[i+3] == storagePattern[3] {
			return i
		}
	}

	return -1
}

const (
	htypUEHFlag  uint8 = 1 << 0
	htypMSBFFlag uint8 = 1 << 1
	htypWEIDFlag uint8 = 1 << 2
	htypWSIDFlag uint8 = 1 << 3
	htypWTMSFlag uint8 = 1 << 4
)

// standardHeaderBaseSize is the fixed portion of the StandardHeader: htyp,
// mcnt, len.
const standardHeaderBaseSize = 4

// ExtendedHeaderSize is the fixed on-wire size of an ExtendedHeader.
const ExtendedHeaderSize = 10

// StandardHeader is the mandatory big-endian header present on every DLT
// message, independent of any StorageHeader framing.
type StandardHeader struct {
	// Version is the 3-bit DLT protocol version, 0..7.
	Version uint8
	// Endianness declares the byte order of everything past this header:
	// the ExtendedHeader's fields with multi-byte width, and the payload.
	Endianness Endianness
	// HasExtendedHeader reports whether an ExtendedHeader follows.
	HasExtendedHeader bool
	// MessageCounter increments per message emitted by a given ECU/session.
	MessageCounter uint8
	// EcuID is present iff WEID is set.
	EcuID *string
	// SessionID is present iff WSID is set.
	SessionID *uint32
	// Timestamp is present iff WTMS is set; ECU-local 0.1ms ticks, not
	// interpreted by the codec.
	Timestamp *uint32
	// PayloadLength is the payload's byte size, derived on encode.
	PayloadLength uint16
}

// headerLen returns the byte size this header occupies on the wire,
// excluding any ExtendedHeader.
func (h StandardHeader) headerLen() int {
	n := standardHeaderBaseSize
	if h.EcuID != nil {
		n += 4
	}
	if h.SessionID != nil {
		n += 4
	}
	if h.Timestamp != nil {
		n += 4
	}

	return n
}

// OverallLength returns header + extended-header (if any) + payload bytes,
// the value the wire's `len` field carries.
func (h StandardHeader) OverallLength() int {
	n := h.headerLen() + int(h.PayloadLength)
	if h.HasExtendedHeader {
		n += ExtendedHeaderSize
	}

	return n
}

// DecodeStandardHeader parses the mandatory header from data. Returns the
// header and the number of bytes consumed.
func DecodeStandardHeader(data []byte) (StandardHeader, int, error) {
	if len(data) < standardHeaderBaseSize {
		return StandardHeader{}, 0, errs.NewIncomplete(standardHeaderBaseSize - len(data))
	}

	htyp := data[0]
	be := endian.GetBigEndianEngine()

	h := StandardHeader{
		Version:           (htyp >> 5) & 0b111,
		HasExtendedHeader: htyp&htypUEHFlag != 0,
		MessageCounter:    data[1],
	}
	if htyp&htypMSBFFlag != 0 {
		h.Endianness = Big
	} else {
		h.Endianness = Little
	}

	fixedLen := h.headerLenForFlags(htyp)
	if len(data) < fixedLen {
		return StandardHeader{}, 0, errs.NewIncomplete(fixedLen - len(data))
	}

	overall := int(be.Uint16(data[2:4]))
	hdrLen := fixedLen
	if h.HasExtendedHeader {
		hdrLen += ExtendedHeaderSize
	}
	if overall < hdrLen {
		return StandardHeader{}, 0, errs.ErrOverallLengthTooSmall
	}
	h.PayloadLength = uint16(overall - hdrLen) //nolint:gosec

	off := standardHeaderBaseSize
	if htyp&htypWEIDFlag != 0 {
		id, err := zeroTerminatedString(data[off:off+4], 4)
		if err != nil {
			return StandardHeader{}, 0, err
		}
		h.EcuID = &id
		off += 4
	}
	if htyp&htypWSIDFlag != 0 {
		sid := be.Uint32(data[off : off+4])
		h.SessionID = &sid
		off += 4
	}
	if htyp&htypWTMSFlag != 0 {
		tms := be.Uint32(data[off : off+4])
		h.Timestamp = &tms
		off += 4
	}

	return h, off, nil
}

// headerLenForFlags returns the fixed header size implied by htyp's
// WEID/WSID/WTMS bits, used to validate availability before reading the
// optional fields.
func (h StandardHeader) headerLenForFlags(htyp uint8) int {
	n := standardHeaderBaseSize
	if htyp&htypWEIDFlag != 0 {
		n += 4
	}
	if htyp&htypWSIDFlag != 0 {
		n += 4
	}
	if htyp&htypWTMSFlag != 0 {
		n += 4
	}

	return n
}

// Encode serializes the StandardHeader to its wire form, writing
// OverallLength into the `len` field. PayloadLength must already reflect
// the encoded payload's size.
func (h StandardHeader) Encode() []byte {
	buf := make([]byte, h.headerLen())
	be := endian.GetBigEndianEngine()

	var htyp uint8
	if h.HasExtendedHeader {
		htyp |= htypUEHFlag
	}
	if h.Endianness == Big {
		htyp |= htypMSBFFlag
	}
	if h.EcuID != nil {
		htyp |= htypWEIDFlag
	}
	if h.SessionID != nil {
		htyp |= htypWSIDFlag
	}
	if h.Timestamp != nil {
		htyp |= htypWTMSFlag
	}
	htyp |= (h.Version & 0b111) << 5

	buf[0] = htyp
	buf[1] = h.MessageCounter
	be.PutUint16(buf[2:4], uint16(h.OverallLength())) //nolint:gosec

	off := standardHeaderBaseSize
	if h.EcuID != nil {
		putZeroTerminatedString(buf[off:off+4], *h.EcuID, 4)
		off += 4
	}
	if h.SessionID != nil {
		be.PutUint32(buf[off:off+4], *h.SessionID)
		off += 4
	}
	if h.Timestamp != nil {
		be.PutUint32(buf[off:off+4], *h.Timestamp)
		off += 4
	}

	return buf
}

// ExtendedHeader carries the verbose/message-type/id fields present when
// the standard header's UEH bit is set.
type ExtendedHeader struct {
	Verbose       bool
	ArgumentCount uint8
	MessageType   MessageType
	ApplicationID string
	ContextID     string
}

// DecodeExtendedHeader parses the fixed 10-byte ExtendedHeader from data[0:10].
func DecodeExtendedHeader(data []byte) (ExtendedHeader, error) {
	if len(data) < ExtendedHeaderSize {
		return ExtendedHeader{}, errs.NewIncomplete(ExtendedHeaderSize - len(data))
	}

	msin := data[0]
	appID, err := zeroTerminatedString(data[2:6], 4)
	if err != nil {
		return ExtendedHeader{}, err
	}
	ctxID, err := zeroTerminatedString(data[6:10], 4)
	if err != nil {
		return ExtendedHeader{}, err
	}

	return ExtendedHeader{
		Verbose:       msin&0x01 != 0,
		ArgumentCount: data[1],
		MessageType:   messageTypeFromByte(msin),
		ApplicationID: appID,
		ContextID:     ctxID,
	}, nil
}

// Encode serializes the ExtendedHeader to its fixed 10-byte wire form.
func (h ExtendedHeader) Encode() []byte {
	buf := make([]byte, ExtendedHeaderSize)

	msin := h.MessageType.toByte()
	if h.Verbose {
		msin |= 0x01
	}
	buf[0] = msin
	buf[1] = h.ArgumentCount
	putZeroTerminatedString(buf[2:6], h.ApplicationID, 4)
	putZeroTerminatedString(buf[6:10], h.ContextID, 4)

	return buf
}
