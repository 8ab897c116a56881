package sink

// Capabilities describes what a sink backend supports. Use this to
// introspect what filtering and correlation features are available at
// runtime.
type Capabilities struct {
	// SupportsSessions indicates enablement is driven by out-of-band
	// controller sessions. When false, IsEnabled reflects a static or
	// locally-configured policy.
	SupportsSessions bool

	// SupportsKeywords indicates the sink honours keyword bitmask
	// filtering. When false, keywords are carried but not filtered on.
	SupportsKeywords bool

	// SupportsActivityIDs indicates the sink records the correlation pair.
	SupportsActivityIDs bool

	// Persistent indicates written records outlive the process (file,
	// kernel buffer, broker) rather than living in process memory.
	Persistent bool

	// MaxEventSize is the largest metadata+payload size in bytes the sink
	// accepts (0 = unlimited/unknown).
	MaxEventSize int64

	// Name is the human-readable name of the sink backend.
	Name string
}

// Pre-declared capability sets for the built-in sinks.
var (
	ETWCapabilities = Capabilities{
		SupportsSessions:    true,
		SupportsKeywords:    true,
		SupportsActivityIDs: true,
		Persistent:          true,
		MaxEventSize:        64 * 1024,
		Name:                "etw",
	}

	MemoryCapabilities = Capabilities{
		SupportsKeywords:    true,
		SupportsActivityIDs: true,
		Name:                "memory",
	}

	JSONLCapabilities = Capabilities{
		SupportsActivityIDs: true,
		Persistent:          true,
		Name:                "jsonl",
	}

	BusCapabilities = Capabilities{
		SupportsActivityIDs: true,
		Name:                "bus",
	}
)
