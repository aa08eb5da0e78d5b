package dlt

import "fmt"

// Endianness selects the byte order used to decode the payload and
// TypeInfo of a message. The storage header is always little-endian and
// the standard header's own fields are always big-endian, independent of
// this value.
type Endianness uint8

const (
	Little Endianness = iota
	Big
)

func (e Endianness) String() string {
	if e == Big {
		return "Big"
	}

	return "Little"
}

// LogLevel is the DLT_LOG_* severity carried in a Log message type. Values
// above Verbose that the wire format still permits are preserved as
// Invalid(n) rather than rejected, since live ECUs are observed to emit
// reserved MTIN values.
type LogLevel struct {
	// Level is Fatal..Verbose for a recognized severity.
	Level LogLevelKind
	// Invalid holds the raw 4-bit MTIN value when Level == LogLevelInvalid.
	Invalid uint8
}

// LogLevelKind enumerates the recognized DLT log severities, ordered from
// least to most verbose so LogLevelKind comparisons implement the
// "more verbose than" relation used by filtering.
type LogLevelKind uint8

const (
	LogLevelFatal LogLevelKind = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelVerbose
	LogLevelInvalid
)

// Fatal is the canonical Fatal-severity LogLevel value.
var (
	Fatal   = LogLevel{Level: LogLevelFatal}
	Error   = LogLevel{Level: LogLevelError}
	Warn    = LogLevel{Level: LogLevelWarn}
	Info    = LogLevel{Level: LogLevelInfo}
	Debug   = LogLevel{Level: LogLevelDebug}
	Verbose = LogLevel{Level: LogLevelVerbose}
)

// NewInvalidLogLevel builds a LogLevel carrying a raw, unrecognized 4-bit
// MTIN value (7..15).
func NewInvalidLogLevel(raw uint8) LogLevel {
	return LogLevel{Level: LogLevelInvalid, Invalid: raw & 0xF}
}

func (l LogLevel) String() string {
	switch l.Level {
	case LogLevelFatal:
		return "Fatal"
	case LogLevelError:
		return "Error"
	case LogLevelWarn:
		return "Warn"
	case LogLevelInfo:
		return "Info"
	case LogLevelDebug:
		return "Debug"
	case LogLevelVerbose:
		return "Verbose"
	default:
		return fmt.Sprintf("Invalid(%d)", l.Invalid)
	}
}

// MoreVerboseThan reports whether l is strictly more verbose than other,
// i.e. further along Fatal < Error < Warn < Info < Debug < Verbose. Two
// Invalid levels compare by their raw value; an Invalid level is never more
// verbose than a recognized level, while every recognized level counts as
// more verbose than an Invalid one. A level threshold therefore drops an
// Invalid level only when the threshold is itself a lower Invalid level.
func (l LogLevel) MoreVerboseThan(other LogLevel) bool {
	if l.Level == LogLevelInvalid && other.Level == LogLevelInvalid {
		return l.Invalid > other.Invalid
	}
	if l.Level == LogLevelInvalid {
		return false
	}
	if other.Level == LogLevelInvalid {
		return true
	}

	return l.Level > other.Level
}

func logLevelFromByte(messageInfo uint8) LogLevel {
	raw := messageInfo >> 4
	switch raw {
	case 1:
		return Fatal
	case 2:
		return Error
	case 3:
		return Warn
	case 4:
		return Info
	case 5:
		return Debug
	case 6:
		return Verbose
	default:
		return NewInvalidLogLevel(raw)
	}
}

func (l LogLevel) toByte() uint8 {
	switch l.Level {
	case LogLevelFatal:
		return 1 << 4
	case LogLevelError:
		return 2 << 4
	case LogLevelWarn:
		return 3 << 4
	case LogLevelInfo:
		return 4 << 4
	case LogLevelDebug:
		return 5 << 4
	case LogLevelVerbose:
		return 6 << 4
	default:
		return (l.Invalid & 0xF) << 4
	}
}

// ApplicationTraceType is the DLT_TRACE_* sub-type of an ApplicationTrace message.
type ApplicationTraceType struct {
	Kind    ApplicationTraceKind
	Invalid uint8
}

type ApplicationTraceKind uint8

const (
	TraceVariable ApplicationTraceKind = iota
	TraceFunctionIn
	TraceFunctionOut
	TraceState
	TraceVfb
	TraceInvalidKind
)

func applicationTraceTypeFromByte(messageInfo uint8) ApplicationTraceType {
	switch messageInfo >> 4 {
	case 1:
		return ApplicationTraceType{Kind: TraceVariable}
	case 2:
		return ApplicationTraceType{Kind: TraceFunctionIn}
	case 3:
		return ApplicationTraceType{Kind: TraceFunctionOut}
	case 4:
		return ApplicationTraceType{Kind: TraceState}
	case 5:
		return ApplicationTraceType{Kind: TraceVfb}
	default:
		return ApplicationTraceType{Kind: TraceInvalidKind, Invalid: messageInfo >> 4}
	}
}

func (t ApplicationTraceType) toByte() uint8 {
	switch t.Kind {
	case TraceVariable:
		return 1 << 4
	case TraceFunctionIn:
		return 2 << 4
	case TraceFunctionOut:
		return 3 << 4
	case TraceState:
		return 4 << 4
	case TraceVfb:
		return 5 << 4
	default:
		return (t.Invalid & 0xF) << 4
	}
}

// NetworkTraceType is the DLT_NW_TRACE_* sub-type of a NetworkTrace message.
type NetworkTraceType struct {
	Kind        NetworkTraceKind
	UserDefined uint8
}

type NetworkTraceKind uint8

const (
	NetworkTraceInvalid NetworkTraceKind = iota
	NetworkTraceIpc
	NetworkTraceCan
	NetworkTraceFlexray
	NetworkTraceMost
	NetworkTraceEthernet
	NetworkTraceSomeip
	NetworkTraceUserDefinedKind
)

func networkTraceTypeFromByte(messageInfo uint8) NetworkTraceType {
	switch messageInfo >> 4 {
	case 0:
		return NetworkTraceType{Kind: NetworkTraceInvalid}
	case 1:
		return NetworkTraceType{Kind: NetworkTraceIpc}
	case 2:
		return NetworkTraceType{Kind: NetworkTraceCan}
	case 3:
		return NetworkTraceType{Kind: NetworkTraceFlexray}
	case 4:
		return NetworkTraceType{Kind: NetworkTraceMost}
	case 5:
		return NetworkTraceType{Kind: NetworkTraceEthernet}
	case 6:
		return NetworkTraceType{Kind: NetworkTraceSomeip}
	default:
		return NetworkTraceType{Kind: NetworkTraceUserDefinedKind, UserDefined: messageInfo >> 4}
	}
}

func (t NetworkTraceType) toByte() uint8 {
	switch t.Kind {
	case NetworkTraceInvalid:
		return 0
	case NetworkTraceIpc:
		return 1 << 4
	case NetworkTraceCan:
		return 2 << 4
	case NetworkTraceFlexray:
		return 3 << 4
	case NetworkTraceMost:
		return 4 << 4
	case NetworkTraceEthernet:
		return 5 << 4
	case NetworkTraceSomeip:
		return 6 << 4
	default:
		return (t.UserDefined & 0xF) << 4
	}
}

// ControlType distinguishes a control message's Request/Response/Unknown id.
type ControlType struct {
	Kind    ControlKind
	Unknown uint8
}

type ControlKind uint8

const (
	ControlRequest ControlKind = iota
	ControlResponse
	ControlUnknownKind
)

const (
	controlTypeRequest  = 0x1
	controlTypeResponse = 0x2
)

// ControlTypeFromValue decodes the single-byte control-message id carried
// as the first byte of a control payload (distinct from the 4-bit mtin
// encoding used inside the extended header's MessageType).
func ControlTypeFromValue(v uint8) ControlType {
	switch v {
	case controlTypeRequest:
		return ControlType{Kind: ControlRequest}
	case controlTypeResponse:
		return ControlType{Kind: ControlResponse}
	default:
		return ControlType{Kind: ControlUnknownKind, Unknown: v}
	}
}

// Value returns the single-byte wire value for the control payload id.
func (t ControlType) Value() uint8 {
	switch t.Kind {
	case ControlRequest:
		return controlTypeRequest
	case ControlResponse:
		return controlTypeResponse
	default:
		return t.Unknown
	}
}

func controlTypeFromByte(messageInfo uint8) ControlType {
	switch messageInfo >> 4 {
	case 1:
		return ControlType{Kind: ControlRequest}
	case 2:
		return ControlType{Kind: ControlResponse}
	default:
		return ControlType{Kind: ControlUnknownKind, Unknown: messageInfo >> 4}
	}
}

func (t ControlType) toByte() uint8 {
	switch t.Kind {
	case ControlRequest:
		return 1 << 4
	case ControlResponse:
		return 2 << 4
	default:
		return (t.Unknown & 0xF) << 4
	}
}

// MessageTypeCategory is the 3-bit MSTP field of the extended header's MSIN byte.
type MessageTypeCategory uint8

const (
	CategoryLog MessageTypeCategory = iota
	CategoryApplicationTrace
	CategoryNetworkTrace
	CategoryControl
	CategoryUnknown
)

// MessageType is the tagged (MSTP, MTIN) pair carried in the extended
// header. Exactly one of the typed fields is meaningful, selected by
// Category.
type MessageType struct {
	Category    MessageTypeCategory
	Log         LogLevel
	AppTrace    ApplicationTraceType
	NetworkTr   NetworkTraceType
	Control     ControlType
	UnknownMstp uint8
	UnknownMtin uint8
}

// LogMessageType builds a MessageType for the Log category.
func LogMessageType(level LogLevel) MessageType {
	return MessageType{Category: CategoryLog, Log: level}
}

// ControlMessageType builds a MessageType for the Control category.
func ControlMessageType(ct ControlType) MessageType {
	return MessageType{Category: CategoryControl, Control: ct}
}

func messageTypeFromByte(messageInfo uint8) MessageType {
	switch (messageInfo >> 1) & 0b111 {
	case 0b000:
		return MessageType{Category: CategoryLog, Log: logLevelFromByte(messageInfo)}
	case 0b001:
		return MessageType{Category: CategoryApplicationTrace, AppTrace: applicationTraceTypeFromByte(messageInfo)}
	case 0b010:
		return MessageType{Category: CategoryNetworkTrace, NetworkTr: networkTraceTypeFromByte(messageInfo)}
	case 0b011:
		return MessageType{Category: CategoryControl, Control: controlTypeFromByte(messageInfo)}
	default:
		return MessageType{
			Category:    CategoryUnknown,
			UnknownMstp: (messageInfo >> 1) & 0b111,
			UnknownMtin: (messageInfo >> 4) & 0b1111,
		}
	}
}

func (t MessageType) toByte() uint8 {
	switch t.Category {
	case CategoryLog:
		return t.Log.toByte()
	case CategoryApplicationTrace:
		return 0b001<<1 | t.AppTrace.toByte()
	case CategoryNetworkTrace:
		return 0b010<<1 | t.NetworkTr.toByte()
	case CategoryControl:
		return 0b011<<1 | t.Control.toByte()
	default:
		return (t.UnknownMstp&0b111)<<1 | (t.UnknownMtin&0b1111)<<4
	}
}
