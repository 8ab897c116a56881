// Package jsonl provides a debug sink that decodes every record against its
// metadata blob and appends one JSON object per line to a file or writer.
// It trades the zero-format-cost property of the binary pipeline for
// greppable output, so it belongs in development setups, not hot paths.
package jsonl

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drblury/traceprov/internal/runtime/decode"
	"github.com/drblury/traceprov/internal/runtime/jsoncodec"
	"github.com/drblury/traceprov/sink"
)

// SinkName is the name used to register this sink.
const SinkName = "jsonl"

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.JSONLCapabilities)
}

// Build creates a jsonl sink appending to the configured output file, or
// standard output when none is set.
func Build(cfg sink.Config) (sink.Sink, error) {
	path := cfg.GetOutputFile()
	if path == "" {
		return New(os.Stdout), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("jsonl: opening output file: %w", err)
	}
	s := New(f)
	s.closer = f
	return s, nil
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.JSONLCapabilities
}

// line is the JSON shape of one emitted event.
type line struct {
	Time              time.Time           `json:"time"`
	Provider          string              `json:"provider"`
	Event             string              `json:"event"`
	Level             string              `json:"level"`
	Keyword           uint64              `json:"keyword,omitempty"`
	Opcode            uint8               `json:"opcode,omitempty"`
	ActivityID        string              `json:"activity_id,omitempty"`
	RelatedActivityID string              `json:"related_activity_id,omitempty"`
	Fields            []decode.FieldValue `json:"fields"`
}

// Sink writes decoded events as JSON lines.
type Sink struct {
	mu     sync.Mutex
	enc    *jsoncodec.LineEncoder
	closer io.Closer

	nextHandle sink.Handle
	registered map[sink.Handle]string

	// now is swappable for tests.
	now func() time.Time
}

// New returns a jsonl sink writing to w.
func New(w io.Writer) *Sink {
	return &Sink{
		enc:        jsoncodec.NewLineEncoder(w),
		registered: make(map[sink.Handle]string),
		now:        time.Now,
	}
}

func (s *Sink) Register(name string, id uuid.UUID, providerMetadata []byte) (sink.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	s.registered[s.nextHandle] = name
	return s.nextHandle, nil
}

// IsEnabled always records: the point of this sink is capturing everything
// for inspection.
func (s *Sink) IsEnabled(sink.Handle, sink.Level, sink.Keyword) bool { return true }

func (s *Sink) Write(h sink.Handle, rec sink.Record) {
	ev, err := decode.Record(rec.Metadata, rec.Payload)
	if err != nil {
		// Best-effort like every sink; a record this sink cannot decode
		// is dropped, not surfaced.
		return
	}
	l := line{
		Time:     s.now().UTC(),
		Provider: rec.Provider,
		Event:    ev.Name,
		Level:    rec.Level.String(),
		Keyword:  uint64(rec.Keyword),
		Opcode:   uint8(rec.Opcode),
		Fields:   ev.Fields,
	}
	if ev.Fields == nil {
		l.Fields = []decode.FieldValue{}
	}
	if rec.ActivityID != nil {
		l.ActivityID = rec.ActivityID.String()
	}
	if rec.RelatedActivityID != nil {
		l.RelatedActivityID = rec.RelatedActivityID.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registered[h]; !ok {
		return
	}
	_ = s.enc.Encode(&l)
}

func (s *Sink) Unregister(h sink.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registered, h)
	if len(s.registered) == 0 && s.closer != nil {
		_ = s.closer.Close()
		s.closer = nil
	}
}
