// Package filter implements the log-level/app/context/ecu id screening
// rules applied by the frame assembler before a message's payload is
// decoded.
package filter

import "github.com/go-dlt/dltcore/dlt"

// Filter screens frames by log level and by application/context/ecu id.
// All fields are optional; a nil/empty set means "no restriction".
type Filter struct {
	MinLogLevel *dlt.LogLevel
	AppIDs      map[string]struct{}
	ContextIDs  map[string]struct{}
	EcuIDs      map[string]struct{}

	// AppIDCount and ContextIDCount record whether the filter was
	// configured with an app/context restriction at all, independent of
	// whether that restriction is currently non-empty. A message lacking
	// an extended header cannot be matched against AppIDs/ContextIDs, so
	// these counts let Allow drop it anyway when such a restriction was
	// declared.
	AppIDCount     int64
	ContextIDCount int64
}

// New builds an empty Filter with no restrictions.
func New() *Filter {
	return &Filter{}
}

// WithMinLogLevel restricts to messages at level or more severe (less verbose).
func (f *Filter) WithMinLogLevel(level dlt.LogLevel) *Filter {
	f.MinLogLevel = &level

	return f
}

// WithAppIDs restricts to the given application ids.
func (f *Filter) WithAppIDs(ids ...string) *Filter {
	f.AppIDs = toSet(ids)
	f.AppIDCount = int64(len(ids))

	return f
}

// WithContextIDs restricts to the given context ids.
func (f *Filter) WithContextIDs(ids ...string) *Filter {
	f.ContextIDs = toSet(ids)
	f.ContextIDCount = int64(len(ids))

	return f
}

// WithEcuIDs restricts to the given ecu ids.
func (f *Filter) WithEcuIDs(ids ...string) *Filter {
	f.EcuIDs = toSet(ids)

	return f
}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}

// Allow reports whether a message described by ext (nil if the message has
// no extended header) and ecuID should be kept. A message without an
// extended header is kept only when no application- or context-id
// restriction is set. Otherwise MinLogLevel applies to Log messages only,
// and each non-empty application, context and ecu id set must contain the
// message's id.
func (f *Filter) Allow(ext *dlt.ExtendedHeader, ecuID string) bool {
	if ext == nil {
		return f.AppIDCount == 0 && f.ContextIDCount == 0
	}

	if f.MinLogLevel != nil && ext.MessageType.Category == dlt.CategoryLog {
		if ext.MessageType.Log.MoreVerboseThan(*f.MinLogLevel) {
			return false
		}
	}

	if !idAllowed(f.AppIDs, ext.ApplicationID) {
		return false
	}
	if !idAllowed(f.ContextIDs, ext.ContextID) {
		return false
	}
	if !idAllowed(f.EcuIDs, ecuID) {
		return false
	}

	return true
}

func idAllowed(set map[string]struct{}, id string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[id]

	return ok
}
