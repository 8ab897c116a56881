//go:build windows

package etw

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sys/windows"

	"github.com/drblury/traceprov/sink"
)

var (
	advapi32                = windows.NewLazySystemDLL("advapi32.dll")
	procEventRegister       = advapi32.NewProc("EventRegister")
	procEventUnregister     = advapi32.NewProc("EventUnregister")
	procEventWriteTransfer  = advapi32.NewProc("EventWriteTransfer")
	procEventSetInformation = advapi32.NewProc("EventSetInformation")
)

// eventProviderSetTraits tells the runtime the provider metadata blob is
// supplied by us, enabling the self-describing decoding path.
const eventProviderSetTraits = 2

// traceLoggingChannel is the channel self-describing events are written on.
const traceLoggingChannel = 11

// winGUID is the registry-layout GUID the win32 surface expects. A
// uuid.UUID is RFC 4122 big-endian; the first three groups flip.
type winGUID struct {
	data1 uint32
	data2 uint16
	data3 uint16
	data4 [8]byte
}

func toWinGUID(id uuid.UUID) winGUID {
	return winGUID{
		data1: uint32(id[0])<<24 | uint32(id[1])<<16 | uint32(id[2])<<8 | uint32(id[3]),
		data2: uint16(id[4])<<8 | uint16(id[5]),
		data3: uint16(id[6])<<8 | uint16(id[7]),
		data4: [8]byte{id[8], id[9], id[10], id[11], id[12], id[13], id[14], id[15]},
	}
}

// eventDescriptor mirrors EVENT_DESCRIPTOR.
type eventDescriptor struct {
	id      uint16
	version uint8
	channel uint8
	level   uint8
	opcode  uint8
	task    uint16
	keyword uint64
}

// dataDescriptor mirrors EVENT_DATA_DESCRIPTOR; the reserved field selects
// the blob role (0 user data, 1 event metadata, 2 provider metadata).
type dataDescriptor struct {
	ptr      uint64
	size     uint32
	dataType uint32
}

func newDataDescriptor(dataType uint32, buf []byte) dataDescriptor {
	if len(buf) == 0 {
		return dataDescriptor{dataType: dataType}
	}
	return dataDescriptor{
		ptr:      uint64(uintptr(unsafe.Pointer(&buf[0]))),
		size:     uint32(len(buf)),
		dataType: dataType,
	}
}

// provState holds the session enablement the enable callback last reported.
type provState struct {
	mu         sync.Mutex
	enabled    bool
	level      sink.Level
	anyKeyword sink.Keyword
}

// winSink drives the platform tracing registration and write calls.
type winSink struct {
	mu      sync.Mutex
	nextCtx uintptr
	byCtx   map[uintptr]*provState
	byH     map[sink.Handle]*provState
}

var enableCallback = windows.NewCallback(func(
	sourceID *winGUID,
	isEnabled uint32,
	level uint8,
	matchAnyKeyword uint64,
	matchAllKeyword uint64,
	filterData uintptr,
	callbackContext uintptr,
) uintptr {
	// The callback fires on an arbitrary system thread, including during
	// EventRegister itself for already-active sessions.
	theSink.mu.Lock()
	st := theSink.byCtx[callbackContext]
	theSink.mu.Unlock()
	if st == nil {
		return 0
	}
	st.mu.Lock()
	st.enabled = isEnabled != 0
	st.level = sink.Level(level)
	st.anyKeyword = sink.Keyword(matchAnyKeyword)
	st.mu.Unlock()
	return 0
})

// theSink is shared by every provider in the process; callback contexts
// must outlive individual Build calls.
var theSink = &winSink{
	byCtx: make(map[uintptr]*provState),
	byH:   make(map[sink.Handle]*provState),
}

func build(cfg sink.Config) (sink.Sink, error) {
	return theSink, nil
}

func (s *winSink) Register(name string, id uuid.UUID, providerMetadata []byte) (sink.Handle, error) {
	st := &provState{}

	s.mu.Lock()
	s.nextCtx++
	ctx := s.nextCtx
	s.byCtx[ctx] = st
	s.mu.Unlock()

	g := toWinGUID(id)
	var h uint64
	r0, _, _ := procEventRegister.Call(
		uintptr(unsafe.Pointer(&g)),
		enableCallback,
		ctx,
		uintptr(unsafe.Pointer(&h)),
	)
	if r0 != 0 {
		s.mu.Lock()
		delete(s.byCtx, ctx)
		s.mu.Unlock()
		return 0, &sink.RegistrationError{Provider: name, Err: windows.Errno(r0)}
	}

	handle := sink.Handle(h)
	s.mu.Lock()
	s.byH[handle] = st
	s.mu.Unlock()

	// Hand the provider traits over; failure here only degrades decoding
	// of the provider name, not event delivery.
	if len(providerMetadata) > 0 {
		_, _, _ = procEventSetInformation.Call(
			uintptr(h),
			eventProviderSetTraits,
			uintptr(unsafe.Pointer(&providerMetadata[0])),
			uintptr(len(providerMetadata)),
		)
		runtime.KeepAlive(providerMetadata)
	}

	return handle, nil
}

func (s *winSink) IsEnabled(h sink.Handle, level sink.Level, keyword sink.Keyword) bool {
	s.mu.Lock()
	st := s.byH[h]
	s.mu.Unlock()
	if st == nil {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.enabled && sink.EnabledForSession(st.level, st.anyKeyword, level, keyword)
}

func (s *winSink) Write(h sink.Handle, rec sink.Record) {
	s.mu.Lock()
	st := s.byH[h]
	s.mu.Unlock()
	if st == nil {
		return
	}

	desc := eventDescriptor{
		channel: traceLoggingChannel,
		level:   uint8(rec.Level),
		opcode:  uint8(rec.Opcode),
		keyword: uint64(rec.Keyword),
	}

	// Provider metadata is implied by the traits set at registration; the
	// per-call descriptors carry the event metadata and the payload.
	dds := []dataDescriptor{
		newDataDescriptor(1, rec.Metadata),
		newDataDescriptor(0, rec.Payload),
	}

	var activity, related *winGUID
	if rec.ActivityID != nil {
		g := toWinGUID(*rec.ActivityID)
		activity = &g
	}
	if rec.RelatedActivityID != nil {
		g := toWinGUID(*rec.RelatedActivityID)
		related = &g
	}

	// Fire and forget: a full session buffer drops the event.
	_, _, _ = procEventWriteTransfer.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&desc)),
		uintptr(unsafe.Pointer(activity)),
		uintptr(unsafe.Pointer(related)),
		uintptr(len(dds)),
		uintptr(unsafe.Pointer(&dds[0])),
	)
	runtime.KeepAlive(rec.Metadata)
	runtime.KeepAlive(rec.Payload)
	runtime.KeepAlive(dds)
}

func (s *winSink) Unregister(h sink.Handle) {
	s.mu.Lock()
	st := s.byH[h]
	delete(s.byH, h)
	if st != nil {
		for ctx, cs := range s.byCtx {
			if cs == st {
				delete(s.byCtx, ctx)
				break
			}
		}
	}
	s.mu.Unlock()
	if st == nil {
		return
	}
	_, _, _ = procEventUnregister.Call(uintptr(h))
}
