package runtime

import (
	"testing"

	"github.com/google/uuid"

	"github.com/drblury/traceprov/sink"
)

func TestOptionsDefaults(t *testing.T) {
	eo := Options()
	if eo.hasLevel || eo.hasKeyword || eo.hasOpcode {
		t.Error("empty Options must not override anything")
	}
	if eo.activityID != nil || eo.relatedActivityID != nil {
		t.Error("empty Options must carry no correlation ids")
	}
}

func TestOptionsOverrides(t *testing.T) {
	act := uuid.New()
	rel := uuid.New()
	eo := Options(
		WithLevel(sink.LevelAlways),
		WithKeyword(0x40),
		WithOpcode(sink.OpcodeStart),
		WithActivity(act),
		WithRelatedActivity(rel),
	)

	// LevelAlways is zero-valued; the presence flag is what records it.
	if !eo.hasLevel || eo.level != sink.LevelAlways {
		t.Errorf("level = (%v, set=%v)", eo.level, eo.hasLevel)
	}
	if !eo.hasKeyword || eo.keyword != 0x40 {
		t.Errorf("keyword = (%d, set=%v)", eo.keyword, eo.hasKeyword)
	}
	if !eo.hasOpcode || eo.opcode != sink.OpcodeStart {
		t.Errorf("opcode = (%v, set=%v)", eo.opcode, eo.hasOpcode)
	}
	if eo.activityID == nil || *eo.activityID != act {
		t.Errorf("activity = %v", eo.activityID)
	}
	if eo.relatedActivityID == nil || *eo.relatedActivityID != rel {
		t.Errorf("related = %v", eo.relatedActivityID)
	}
}

func TestWithActivityCopiesValue(t *testing.T) {
	id := uuid.New()
	eo := Options(WithActivity(id))
	id[0] ^= 0xFF
	if (*eo.activityID)[0] == id[0] {
		t.Error("option must capture the id by value")
	}
}
