// Package etw provides the sink backed by the platform tracing facility on
// Windows (EventRegister / EventWriteTransfer / EventUnregister, with
// session enablement delivered through the provider enable callback). On
// every other platform the same name builds a stub whose registration
// always succeeds with a null handle and whose enabled check always answers
// false, so application code keeps a single portable call surface and the
// write path is simply unreachable.
package etw

import (
	"github.com/drblury/traceprov/sink"
)

// SinkName is the name used to register this sink.
const SinkName = "etw"

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.ETWCapabilities)
}

// Build creates the platform sink, or the stub where the platform tracing
// facility does not exist. Platform absence is not an error.
func Build(cfg sink.Config) (sink.Sink, error) {
	return build(cfg)
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.ETWCapabilities
}
