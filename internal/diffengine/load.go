package diffengine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/valyala/fastjson"

	"github.com/aosp-tools/vndk-compat/internal/elfmodel"
)

// SystemSymbols is the name -> defined-symbol-name-set lookup built from
// a system ApiModel, per spec §4.2 "Lookup preparation". Duplicate
// library basenames keep their first occurrence.
type SystemSymbols map[string]map[string]bool

// LoadSystemSymbols reads a system-model JSON file and builds its
// SystemSymbols lookup without materializing the full typed ApiModel
// tree — system models for large partitions can carry tens of thousands
// of symbol rows, and the lookup only ever needs name sets. fastjson's
// parser reuses its internal arena across the scan, which keeps this
// path allocation-light relative to a full unmarshal into nested structs.
func LoadSystemSymbols(path string) (SystemSymbols, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading system model %s: %w", path, err)
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing system model %s: %w", path, err)
	}

	libs := v.GetArray("libraries")
	out := make(SystemSymbols, len(libs))
	for _, lib := range libs {
		name := string(lib.GetStringBytes("name"))
		if name == "" {
			continue
		}
		if _, exists := out[name]; exists {
			// First occurrence wins (spec §4.2).
			continue
		}
		syms := lib.GetArray("symbols")
		set := make(map[string]bool, len(syms))
		for _, s := range syms {
			sname := string(s.GetStringBytes("name"))
			if sname != "" {
				set[sname] = true
			}
		}
		out[name] = set
	}
	return out, nil
}

// LoadVendorFootprint decodes a vendor footprint document with the
// standard typed decoder — these documents are orders of magnitude
// smaller than a full system model (one partition's worth of undefined
// references, not the whole platform's exports).
func LoadVendorFootprint(path string) (elfmodel.VendorFootprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return elfmodel.VendorFootprint{}, fmt.Errorf("reading vendor footprint %s: %w", path, err)
	}
	var vf elfmodel.VendorFootprint
	if err := json.Unmarshal(data, &vf); err != nil {
		return elfmodel.VendorFootprint{}, fmt.Errorf("parsing vendor footprint %s: %w", path, err)
	}
	return vf, nil
}
