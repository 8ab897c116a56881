// Package traceprov declares typed event schemas once and emits compact,
// self-describing binary records at runtime. A Provider is built from a
// ProviderDef (constructed in code or loaded from TOML/JSON), which fixes
// the provider and per-event metadata blobs up front; each Write call then
// only encodes the payload bytes for its field values and hands the record
// to a sink. Emission is fire and forget: Write never returns an error, and
// a disabled provider short-circuits before any encoding work happens.
//
// Records carry two blobs next to the payload. The provider blob names the
// provider, the event blob names the event and describes every field (name,
// wire type, formatting hint), so a consumer can decode payloads it has
// never seen a schema for. The decode helpers exported here do exactly that.
//
// # Sinks
//
// Delivery is pluggable through the sink registry. Four sinks ship out of
// the box:
//   - etw: the platform tracing facility on Windows, a no-op elsewhere
//   - memory: in-process capture for tests
//   - jsonl: decoded records appended to a JSON Lines file or stdout
//   - bus: records published to a Watermill message bus
//
// Sinks register themselves on import; Config.SinkSystem selects one by
// name, or Dependencies.Sink injects an instance directly.
//
// # Levels, keywords, and activities
//
// Every event carries a severity level and a keyword bitmask, set per
// definition and overridable per call via EventOptions. Sinks report which
// (level, keyword) combinations anyone is listening to, and Event.Enabled
// exposes that check so callers can skip expensive argument computation.
// Activity IDs correlate related events; WithActivityFromContext derives
// one from an OpenTelemetry span when present.
//
// # Typed writers
//
// Writer1 through Writer4 bind an event to a fixed argument signature at
// startup, verifying arity and types once so a mismatched call site fails
// at bind time instead of silently dropping records.
package traceprov
