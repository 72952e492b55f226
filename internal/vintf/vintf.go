// Package vintf reads a vendor VINTF manifest XML document and reduces
// it to an opaque list of HAL dependencies. Per spec §6 this is an
// external collaborator input: the list is carried through to the plan
// as metadata only and never drives resolution decisions.
package vintf

import (
	"encoding/xml"
	"fmt"
	"os"
)

// HAL is one `<hal>` entry of a VINTF manifest.
type HAL struct {
	Name     string   `json:"name" xml:"name"`
	Versions []string `json:"versions" xml:"version"`
}

type manifest struct {
	XMLName xml.Name `xml:"manifest"`
	HALs    []HAL    `xml:"hal"`
}

// Load parses the manifest at path into an ordered HAL list. A missing
// path is not an error — it returns an empty, non-nil slice, matching
// analyze_dependencies.py's behavior when no manifest is supplied.
func Load(path string) ([]HAL, error) {
	if path == "" {
		return []HAL{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []HAL{}, nil
		}
		return nil, fmt.Errorf("reading vintf manifest %s: %w", path, err)
	}

	var m manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing vintf manifest %s: %w", path, err)
	}
	if m.HALs == nil {
		m.HALs = []HAL{}
	}
	return m.HALs, nil
}
