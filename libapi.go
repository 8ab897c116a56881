package traceprov

import (
	runtimepkg "github.com/drblury/traceprov/internal/runtime"
	configpkg "github.com/drblury/traceprov/internal/runtime/config"
	decodepkg "github.com/drblury/traceprov/internal/runtime/decode"
	errspkg "github.com/drblury/traceprov/internal/runtime/errors"
	"github.com/drblury/traceprov/internal/runtime/fieldtype"
	idspkg "github.com/drblury/traceprov/internal/runtime/ids"
	jsoncodec "github.com/drblury/traceprov/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/traceprov/internal/runtime/logging"
	schemapkg "github.com/drblury/traceprov/internal/runtime/schema"
	sinkpkg "github.com/drblury/traceprov/sink"

	// Built-in sinks register themselves with the default registry.
	_ "github.com/drblury/traceprov/sink/bus"
	_ "github.com/drblury/traceprov/sink/etw"
	_ "github.com/drblury/traceprov/sink/jsonl"
	_ "github.com/drblury/traceprov/sink/memory"
)

type (
	Config       = configpkg.Config
	Provider     = runtimepkg.Provider
	Event        = runtimepkg.Event
	Dependencies = runtimepkg.Dependencies

	ProviderDef = schemapkg.ProviderDef
	EventDef    = schemapkg.EventDef
	Field       = schemapkg.Field
	FieldType   = fieldtype.Type
	FieldKind   = fieldtype.Kind
	FieldOut    = fieldtype.Out

	EventOptions = runtimepkg.EventOptions
	EventOption  = runtimepkg.EventOption

	WriteContext = runtimepkg.WriteContext
	WriteHooks   = runtimepkg.WriteHooks
	EmitMetrics  = runtimepkg.EmitMetrics

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	// Sink plumbing
	Sink              = sinkpkg.Sink
	SinkBuilder       = sinkpkg.Builder
	SinkRegistry      = sinkpkg.Registry
	SinkCapabilities  = sinkpkg.Capabilities
	Record            = sinkpkg.Record
	Handle            = sinkpkg.Handle
	Level             = sinkpkg.Level
	Keyword           = sinkpkg.Keyword
	Opcode            = sinkpkg.Opcode
	RegistrationError = sinkpkg.RegistrationError

	// Decoded record views
	DecodedEvent     = decodepkg.Event
	DecodedField     = decodepkg.FieldValue
	DecodedFieldDesc = decodepkg.FieldDesc

	ConfigValidationError = errspkg.ConfigValidationError
)

var (
	New            = runtimepkg.New
	InitGlobal     = runtimepkg.InitGlobal
	Global         = runtimepkg.Global
	CloseGlobal    = runtimepkg.CloseGlobal
	ValidateConfig = configpkg.ValidateConfig
	DefaultConfig  = configpkg.Default

	// Schema loading
	LoadSchemaTOML = schemapkg.LoadTOML
	LoadSchemaJSON = schemapkg.LoadJSON
	LoadSchemaFile = schemapkg.LoadFile

	// Field type constructors
	Int8       = fieldtype.Int8
	Uint8      = fieldtype.Uint8
	Int16      = fieldtype.Int16
	Uint16     = fieldtype.Uint16
	Int32      = fieldtype.Int32
	Uint32     = fieldtype.Uint32
	Int64      = fieldtype.Int64
	Uint64     = fieldtype.Uint64
	Float32    = fieldtype.Float32
	Float64    = fieldtype.Float64
	IntPtr     = fieldtype.IntPtr
	UintPtr    = fieldtype.UintPtr
	Bool       = fieldtype.Bool
	String     = fieldtype.String
	Binary     = fieldtype.Binary
	FileTime   = fieldtype.FileTime
	GUID       = fieldtype.GUID
	SockAddr4  = fieldtype.SockAddr4
	SockAddr6  = fieldtype.SockAddr6
	Hex        = fieldtype.Hex
	SequenceOf = fieldtype.SequenceOf
	ParseType  = fieldtype.Parse

	// Per-call options
	Options             = runtimepkg.Options
	WithLevel           = runtimepkg.WithLevel
	WithKeyword         = runtimepkg.WithKeyword
	WithOpcode          = runtimepkg.WithOpcode
	WithActivity        = runtimepkg.WithActivity
	WithRelatedActivity = runtimepkg.WithRelatedActivity

	// Activity correlation
	ActivityIDFromContext   = runtimepkg.ActivityIDFromContext
	WithActivityFromContext = runtimepkg.WithActivityFromContext
	NewActivityID           = idspkg.NewActivityID

	// Hooks
	LoggingHooks  = runtimepkg.LoggingHooks
	CountingHooks = runtimepkg.CountingHooks

	// Metrics
	NewEmitMetrics = runtimepkg.NewEmitMetrics

	// Typed writer binding (see also Writer1..Writer4 below)
	Writer0 = runtimepkg.Writer0

	// Sink registry
	DefaultSinkRegistry          = sinkpkg.DefaultRegistry
	RegisterSink                 = sinkpkg.Register
	RegisterSinkWithCapabilities = sinkpkg.RegisterWithCapabilities
	BuildSink                    = sinkpkg.Build
	GetSinkCapabilities          = sinkpkg.GetCapabilities
	ParseLevel                   = sinkpkg.ParseLevel

	// Record decoding
	DecodeProvider      = decodepkg.Provider
	DecodeEventMetadata = decodepkg.EventMetadata
	DecodeRecord        = decodepkg.Record

	Marshal   = jsoncodec.Marshal
	Unmarshal = jsoncodec.Unmarshal
	Encode    = jsoncodec.Encode
	Decode    = jsoncodec.Decode

	ErrProviderNameRequired = errspkg.ErrProviderNameRequired
	ErrProviderIDRequired   = errspkg.ErrProviderIDRequired
	ErrMalformedProviderID  = errspkg.ErrMalformedProviderID
	ErrEventNameRequired    = errspkg.ErrEventNameRequired
	ErrDuplicateEventName   = errspkg.ErrDuplicateEventName
	ErrFieldNameRequired    = errspkg.ErrFieldNameRequired
	ErrDuplicateFieldName   = errspkg.ErrDuplicateFieldName
	ErrUnsupportedFieldType = errspkg.ErrUnsupportedFieldType
	ErrUnknownEvent         = errspkg.ErrUnknownEvent
	ErrSinkRequired         = errspkg.ErrSinkRequired
	ErrLoggerRequired       = errspkg.ErrLoggerRequired
	ErrProviderClosed       = errspkg.ErrProviderClosed
	ErrValueMismatch        = errspkg.ErrValueMismatch
	ErrSequenceTooLong      = errspkg.ErrSequenceTooLong

	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	NopLogger            = loggingpkg.Nop
)

// Severity levels, most to least severe. LevelAlways bypasses filtering.
const (
	LevelAlways   = sinkpkg.LevelAlways
	LevelCritical = sinkpkg.LevelCritical
	LevelError    = sinkpkg.LevelError
	LevelWarning  = sinkpkg.LevelWarning
	LevelInfo     = sinkpkg.LevelInfo
	LevelVerbose  = sinkpkg.LevelVerbose
)

const (
	OpcodeInfo  = sinkpkg.OpcodeInfo
	OpcodeStart = sinkpkg.OpcodeStart
	OpcodeStop  = sinkpkg.OpcodeStop
)

func Writer1[A any](e *Event) (func(opts *EventOptions, a A), error) {
	return runtimepkg.Writer1[A](e)
}

func Writer2[A, B any](e *Event) (func(opts *EventOptions, a A, b B), error) {
	return runtimepkg.Writer2[A, B](e)
}

func Writer3[A, B, C any](e *Event) (func(opts *EventOptions, a A, b B, c C), error) {
	return runtimepkg.Writer3[A, B, C](e)
}

func Writer4[A, B, C, D any](e *Event) (func(opts *EventOptions, a A, b B, c C, d D), error) {
	return runtimepkg.Writer4[A, B, C, D](e)
}
