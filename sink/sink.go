// Package sink defines the core interfaces and types for traceprov event
// sinks. Each sink implementation (etw, memory, jsonl, bus) lives in its own
// sub-package and registers itself with the sink registry.
package sink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Level is the ordinal severity filter for an event. Lower is more severe;
// LevelAlways bypasses level filtering.
type Level uint8

const (
	LevelAlways   Level = 0
	LevelCritical Level = 1
	LevelError    Level = 2
	LevelWarning  Level = 3
	LevelInfo     Level = 4
	LevelVerbose  Level = 5
)

var levelNames = map[string]Level{
	"always":   LevelAlways,
	"critical": LevelCritical,
	"error":    LevelError,
	"warning":  LevelWarning,
	"info":     LevelInfo,
	"verbose":  LevelVerbose,
}

func (l Level) String() string {
	for name, lvl := range levelNames {
		if lvl == l {
			return name
		}
	}
	return strconv.Itoa(int(l))
}

// ParseLevel accepts a level name or its numeric value.
func ParseLevel(s string) (Level, error) {
	if lvl, ok := levelNames[strings.ToLower(s)]; ok {
		return lvl, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("sink: unknown level %q", s)
	}
	return Level(n), nil
}

// Keyword is the bitmask categorical filter for an event. A zero keyword
// matches every session.
type Keyword uint64

// Opcode marks an event's role within a logical operation.
type Opcode uint8

const (
	OpcodeInfo  Opcode = 0
	OpcodeStart Opcode = 1
	OpcodeStop  Opcode = 2
)

// Handle is the opaque token a sink returns on successful registration. It
// is owned exclusively by the provider instance that registered and is
// released exactly once, at provider teardown.
type Handle uint64

// Record is one fully-encoded event handed to a sink. Metadata is the
// event's shared read-only metadata blob; Payload is the per-call buffer,
// owned by the calling stack until Write returns.
type Record struct {
	Provider string
	Event    string
	Metadata []byte
	Payload  []byte

	Level   Level
	Keyword Keyword
	Opcode  Opcode

	// Optional correlation pair. Nil means no activity chain.
	ActivityID        *uuid.UUID
	RelatedActivityID *uuid.UUID
}

// Sink is the tracing facility consumed by the provider runtime. Write is
// fire-and-forget: delivery is best-effort and a dropped record is
// indistinguishable from a delivered one from the caller's point of view.
// Implementations must tolerate concurrent Write and IsEnabled calls.
type Sink interface {
	// Register announces a provider to the sink and returns the handle
	// subsequent calls must present. Identity uniqueness across providers
	// on a host is a caller obligation the sink cannot enforce.
	Register(name string, id uuid.UUID, providerMetadata []byte) (Handle, error)

	// IsEnabled reports whether any session currently records events at
	// the given level and keyword for this handle. Session configuration
	// is controlled entirely out-of-band; sinks only observe it.
	IsEnabled(h Handle, level Level, keyword Keyword) bool

	// Write forwards a pre-encoded record. It never reports failure.
	Write(h Handle, rec Record)

	// Unregister releases the handle. Calls with an already-released or
	// unknown handle are no-ops.
	Unregister(h Handle)
}

// EnabledForSession applies the standard session matching rule shared by
// sink implementations: a zero session level or a record at LevelAlways
// passes the level gate, and a zero keyword on either side passes the
// keyword gate.
func EnabledForSession(sessionLevel Level, sessionKeywords Keyword, level Level, keyword Keyword) bool {
	if sessionLevel != LevelAlways && level > sessionLevel {
		return false
	}
	if keyword != 0 && sessionKeywords != 0 && keyword&sessionKeywords == 0 {
		return false
	}
	return true
}

// RegistrationError is the typed failure a sink reports when it refuses a
// provider registration. No partial instance exists after one.
type RegistrationError struct {
	Provider string
	Err      error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("sink: registering provider %q: %v", e.Provider, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }
