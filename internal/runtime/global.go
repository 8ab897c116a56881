package runtime

import "sync"

// Most applications hold a single process-wide provider. The holder below
// gives that pattern an explicit, race-free home instead of relying on
// package init ordering: the first InitGlobal wins, and CloseGlobal tears
// the instance down at process exit.
var globalHolder struct {
	mu sync.Mutex
	p  *Provider
}

// InitGlobal installs the process-wide provider, constructing it with init
// on first call. Subsequent calls return the existing instance without
// invoking init again. A failed init leaves the holder empty so a later
// call may retry.
func InitGlobal(init func() (*Provider, error)) (*Provider, error) {
	globalHolder.mu.Lock()
	defer globalHolder.mu.Unlock()
	if globalHolder.p != nil {
		return globalHolder.p, nil
	}
	p, err := init()
	if err != nil {
		return nil, err
	}
	globalHolder.p = p
	return p, nil
}

// Global returns the process-wide provider, or nil before InitGlobal.
func Global() *Provider {
	globalHolder.mu.Lock()
	defer globalHolder.mu.Unlock()
	return globalHolder.p
}

// CloseGlobal closes and clears the process-wide provider.
func CloseGlobal() {
	globalHolder.mu.Lock()
	p := globalHolder.p
	globalHolder.p = nil
	globalHolder.mu.Unlock()
	if p != nil {
		_ = p.Close()
	}
}
