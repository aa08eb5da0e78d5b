// Package dlt implements the AUTOSAR DLT binary codec: the storage,
// standard and extended headers, the TypeInfo bitfield, verbose arguments,
// and the three payload shapes (verbose, non-verbose, control). Every type
// here is a plain, comparable Go value so a decoded Message can be
// re-encoded byte-for-byte with Encode.
package dlt

import (
	"unicode/utf8"

	"github.com/go-dlt/dltcore/endian"
	"github.com/go-dlt/dltcore/errs"
)

// zeroTerminatedString reads exactly n bytes from data and returns the
// longest valid UTF-8 prefix that ends before the first NUL byte. Invalid
// UTF-8 tails are truncated rather than rejected, matching the lenient
// handling DLT readers apply to ECU/application/context id fields that
// come from third-party instrumentation.
func zeroTerminatedString(data []byte, n int) (string, error) {
	if len(data) < n {
		return "", errs.NewIncomplete(n - len(data))
	}

	field := data[:n]
	end := n
	for i, b := range field {
		if b == 0 {
			end = i
			break
		}
	}

	s := string(field[:end])
	s = longestValidUTF8Prefix(s)

	return s, nil
}

// longestValidUTF8Prefix trims an invalid UTF-8 tail so callers never
// observe replacement characters for garbled id fields.
func longestValidUTF8Prefix(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	for i := len(s); i > 0; i-- {
		if utf8.ValidString(s[:i]) {
			return s[:i]
		}
	}

	return ""
}

// putZeroTerminatedString writes s into exactly n bytes, truncating if s is
// longer than n and NUL-padding the remainder otherwise.
func putZeroTerminatedString(buf []byte, s string, n int) {
	b := []byte(s)
	if len(b) > n {
		b = b[:n]
	}

	copy(buf[:len(b)], b)
	for i := len(b); i < n; i++ {
		buf[i] = 0
	}
}

// EngineFor resolves the byte order for the payload/TypeInfo section of a
// message from the standard header's declared endianness.
func EngineFor(e Endianness) endian.EndianEngine {
	return endian.EngineFor(e == Big)
}
