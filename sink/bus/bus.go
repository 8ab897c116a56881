// Package bus provides a sink that forwards self-describing records over a
// watermill publisher, so events emitted in one process can reach a
// collector across a message bus. The record's metadata blob travels with
// every message; a remote consumer decodes the payload from it alone.
package bus

import (
	"encoding/base64"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/drblury/traceprov/internal/runtime/ids"
	"github.com/drblury/traceprov/sink"
)

// SinkName is the name used to register this sink.
const SinkName = "bus"

// Message metadata keys carried on every forwarded record.
const (
	MetadataKeyProvider        = "traceprov_provider"
	MetadataKeyEvent           = "traceprov_event"
	MetadataKeyLevel           = "traceprov_level"
	MetadataKeyKeyword         = "traceprov_keyword"
	MetadataKeyOpcode          = "traceprov_opcode"
	MetadataKeyActivity        = "traceprov_activity_id"
	MetadataKeyRelatedActivity = "traceprov_related_activity_id"
	MetadataKeyEventMetadata   = "traceprov_event_metadata"
)

// Factory allows overriding publisher creation for testing.
var Factory = func(logger watermill.LoggerAdapter) message.Publisher {
	return gochannel.NewGoChannel(gochannel.Config{}, logger)
}

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.BusCapabilities)
}

// Build creates a bus sink publishing to the configured topic.
func Build(cfg sink.Config) (sink.Sink, error) {
	return New(Factory(watermill.NopLogger{}), cfg.GetBusTopic()), nil
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.BusCapabilities
}

// Sink publishes one watermill message per record.
type Sink struct {
	pub   message.Publisher
	topic string
}

// New returns a bus sink publishing records to topic via pub.
func New(pub message.Publisher, topic string) *Sink {
	return &Sink{pub: pub, topic: topic}
}

func (s *Sink) Register(name string, id uuid.UUID, providerMetadata []byte) (sink.Handle, error) {
	return 1, nil
}

// IsEnabled always forwards; filtering is the consumer's concern on a bus.
func (s *Sink) IsEnabled(sink.Handle, sink.Level, sink.Keyword) bool { return true }

func (s *Sink) Write(h sink.Handle, rec sink.Record) {
	// The payload buffer is only ours until Write returns; the message
	// outlives the call.
	payload := make([]byte, len(rec.Payload))
	copy(payload, rec.Payload)

	msg := message.NewMessage(ids.CreateULID(), payload)
	msg.Metadata.Set(MetadataKeyProvider, rec.Provider)
	msg.Metadata.Set(MetadataKeyEvent, rec.Event)
	msg.Metadata.Set(MetadataKeyLevel, strconv.Itoa(int(rec.Level)))
	msg.Metadata.Set(MetadataKeyKeyword, strconv.FormatUint(uint64(rec.Keyword), 10))
	msg.Metadata.Set(MetadataKeyOpcode, strconv.Itoa(int(rec.Opcode)))
	msg.Metadata.Set(MetadataKeyEventMetadata, base64.StdEncoding.EncodeToString(rec.Metadata))
	if rec.ActivityID != nil {
		msg.Metadata.Set(MetadataKeyActivity, rec.ActivityID.String())
	}
	if rec.RelatedActivityID != nil {
		msg.Metadata.Set(MetadataKeyRelatedActivity, rec.RelatedActivityID.String())
	}

	// Fire and forget: a full bus drops the record, matching the
	// delivery guarantees of every other sink.
	_ = s.pub.Publish(s.topic, msg)
}

func (s *Sink) Unregister(sink.Handle) {}

// Close releases the underlying publisher.
func (s *Sink) Close() error {
	return s.pub.Close()
}
