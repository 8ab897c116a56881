package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/drblury/traceprov/internal/runtime/fieldtype"
	"github.com/drblury/traceprov/internal/runtime/jsoncodec"
	"github.com/drblury/traceprov/sink"
)

// fileProvider is the wire shape shared by the TOML and JSON declaration
// formats.
type fileProvider struct {
	Name   string      `toml:"name" json:"name"`
	ID     string      `toml:"id" json:"id"`
	Events []fileEvent `toml:"events" json:"events"`
}

type fileEvent struct {
	Name    string      `toml:"name" json:"name"`
	Level   string      `toml:"level" json:"level"`
	Keyword uint64      `toml:"keyword" json:"keyword"`
	Opcode  string      `toml:"opcode" json:"opcode"`
	Fields  []fileField `toml:"fields" json:"fields"`
}

type fileField struct {
	Name string `toml:"name" json:"name"`
	Type string `toml:"type" json:"type"`
}

// LoadTOML parses a provider declaration in TOML form and validates it.
func LoadTOML(data []byte) (ProviderDef, error) {
	var fp fileProvider
	if err := toml.Unmarshal(data, &fp); err != nil {
		return ProviderDef{}, fmt.Errorf("schema: parsing declaration: %w", err)
	}
	return fp.toDef()
}

// LoadJSON parses a provider declaration in JSON form and validates it.
func LoadJSON(data []byte) (ProviderDef, error) {
	var fp fileProvider
	if err := jsoncodec.Unmarshal(data, &fp); err != nil {
		return ProviderDef{}, fmt.Errorf("schema: parsing declaration: %w", err)
	}
	return fp.toDef()
}

// LoadFile reads a declaration file, choosing the format by extension
// (.toml or .json).
func LoadFile(path string) (ProviderDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProviderDef{}, fmt.Errorf("schema: reading declaration: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return LoadTOML(data)
	case ".json":
		return LoadJSON(data)
	}
	return ProviderDef{}, fmt.Errorf("schema: unsupported declaration format %q", filepath.Ext(path))
}

func (fp fileProvider) toDef() (ProviderDef, error) {
	def := ProviderDef{Name: fp.Name, ID: fp.ID}
	for _, fe := range fp.Events {
		ev := EventDef{Name: fe.Name, Keyword: sink.Keyword(fe.Keyword)}
		if fe.Level != "" {
			lvl, err := sink.ParseLevel(fe.Level)
			if err != nil {
				return ProviderDef{}, fmt.Errorf("schema: event %q: %w", fe.Name, err)
			}
			ev.Level = lvl
		} else {
			ev.Level = sink.LevelVerbose
		}
		switch strings.ToLower(fe.Opcode) {
		case "", "info":
			ev.Opcode = sink.OpcodeInfo
		case "start":
			ev.Opcode = sink.OpcodeStart
		case "stop":
			ev.Opcode = sink.OpcodeStop
		default:
			return ProviderDef{}, fmt.Errorf("schema: event %q: unknown opcode %q", fe.Name, fe.Opcode)
		}
		for _, ff := range fe.Fields {
			ft, err := fieldtype.Parse(ff.Type)
			if err != nil {
				return ProviderDef{}, fmt.Errorf("schema: event %q field %q: %w", fe.Name, ff.Name, err)
			}
			ev.Fields = append(ev.Fields, Field{Name: ff.Name, Type: ft})
		}
		def.Events = append(def.Events, ev)
	}
	if err := def.Validate(); err != nil {
		return ProviderDef{}, err
	}
	return def, nil
}
