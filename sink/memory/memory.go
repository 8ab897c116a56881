// Package memory provides an in-process capture sink for traceprov. Records
// are retained in memory and enablement is settable per level/keyword, which
// makes it the sink of choice for tests and local development.
package memory

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/drblury/traceprov/sink"
)

// SinkName is the name used to register this sink.
const SinkName = "memory"

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.MemoryCapabilities)
}

// Build creates a new capture sink, enabled at verbose for all keywords.
func Build(cfg sink.Config) (sink.Sink, error) {
	return New(), nil
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.MemoryCapabilities
}

type registration struct {
	name string
	id   uuid.UUID
	blob []byte
}

// Sink captures every record written to it. The zero value is not usable;
// call New.
type Sink struct {
	mu         sync.Mutex
	nextHandle sink.Handle
	regs       map[sink.Handle]*registration
	byIdentity map[uuid.UUID]sink.Handle
	records    []sink.Record

	enabled  bool
	level    sink.Level
	keywords sink.Keyword
}

// New returns a capture sink enabled at verbose level for all keywords.
func New() *Sink {
	return &Sink{
		regs:       make(map[sink.Handle]*registration),
		byIdentity: make(map[uuid.UUID]sink.Handle),
		enabled:    true,
		level:      sink.LevelVerbose,
	}
}

// Enable simulates a controller session at the given level and keyword
// mask. A zero keyword mask matches every keyword.
func (s *Sink) Enable(level sink.Level, keywords sink.Keyword) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	s.level = level
	s.keywords = keywords
}

// Disable simulates the session going away.
func (s *Sink) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
}

// Register rejects a duplicate provider identity outright: two providers
// sharing an identity would collide in a real sink's metadata cache, and
// silently merging them hides the caller bug.
func (s *Sink) Register(name string, id uuid.UUID, providerMetadata []byte) (sink.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byIdentity[id]; dup {
		return 0, &sink.RegistrationError{
			Provider: name,
			Err:      fmt.Errorf("identity %s is already registered", id),
		}
	}
	s.nextHandle++
	h := s.nextHandle
	blob := make([]byte, len(providerMetadata))
	copy(blob, providerMetadata)
	s.regs[h] = &registration{name: name, id: id, blob: blob}
	s.byIdentity[id] = h
	return h, nil
}

func (s *Sink) IsEnabled(h sink.Handle, level sink.Level, keyword sink.Keyword) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[h]; !ok {
		return false
	}
	return s.enabled && sink.EnabledForSession(s.level, s.keywords, level, keyword)
}

func (s *Sink) Write(h sink.Handle, rec sink.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[h]; !ok {
		return
	}
	// The payload buffer belongs to the calling stack only until Write
	// returns; retain a copy.
	payload := make([]byte, len(rec.Payload))
	copy(payload, rec.Payload)
	rec.Payload = payload
	s.records = append(s.records, rec)
}

func (s *Sink) Unregister(h sink.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.regs[h]
	if !ok {
		return
	}
	delete(s.regs, h)
	delete(s.byIdentity, reg.id)
}

// Records returns a snapshot of everything captured so far.
func (s *Sink) Records() []sink.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sink.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Reset discards captured records but keeps registrations and enablement.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// Registered reports whether a provider with the given identity currently
// holds a registration.
func (s *Sink) Registered(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byIdentity[id]
	return ok
}

// ProviderMetadata returns the metadata blob presented at registration for
// the given identity.
func (s *Sink) ProviderMetadata(id uuid.UUID) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.byIdentity[id]
	if !ok {
		return nil, false
	}
	return s.regs[h].blob, true
}
