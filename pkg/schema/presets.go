package schema

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

// presetDef is one row of the embedded catalog: a schema-facing name, the
// Go type/value that name lowers to, and the byte size/alignment a flat
// using it needs at layout time.
type presetDef struct {
	Name   string `yaml:"name"`
	GoName string `yaml:"go_name"`
	Size   int    `yaml:"size"`
	Align  int    `yaml:"align"`
}

type presetCatalog struct {
	Builtins []presetDef `yaml:"builtins"`
	Presets  []presetDef `yaml:"presets"`
}

// builtinKind maps a builtin preset's schema name to its dedicated Kind —
// every one of these has a constant in the Kind enum because the layout
// engine and emitters special-case them (e.g. int24's 4-byte/4-align
// quirk), unlike the open-ended application-domain presets below.
var builtinKind = map[string]Kind{
	"char":    Char8,
	"int8":    Int8,
	"int16":   Int16,
	"int24":   Int24,
	"int32":   Int32,
	"int64":   Int64,
	"uint8":   Uint8,
	"uint16":  Uint16,
	"uint24":  Uint24,
	"uint32":  Uint32,
	"uint64":  Uint64,
	"float32": Float32,
	"float64": Float64,
	"string":  StringKind,
}

func loadPresetCatalog() (presetCatalog, error) {
	var cat presetCatalog
	if err := yaml.Unmarshal(presetsYAML, &cat); err != nil {
		return presetCatalog{}, fmt.Errorf("schema: malformed preset catalog: %w", err)
	}
	return cat, nil
}

// registerPresets loads the embedded catalog into t, giving every builtin
// its dedicated Kind and every application-domain preset a Kind of
// PresetBase+k, k counted in catalog order. New presets extend the list
// without any parser change, per the predefined-types contract.
func registerPresets(t *Table) error {
	cat, err := loadPresetCatalog()
	if err != nil {
		return err
	}
	for _, b := range cat.Builtins {
		kind, ok := builtinKind[b.Name]
		if !ok {
			return fmt.Errorf("schema: preset catalog names unknown builtin %q", b.Name)
		}
		t.defineBuiltin(b.Name, Type{Kind: kind, Name: b.GoName, Size: b.Size, Align: b.Align})
	}
	for i, p := range cat.Presets {
		kind := PresetBase + Kind(i)
		t.defineBuiltin(p.Name, Type{Kind: kind, Name: p.GoName, Size: p.Size, Align: p.Align})
	}
	return nil
}
