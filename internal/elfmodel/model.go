// Package elfmodel reduces a directory of ELF shared objects to the
// symbol-level model the rest of the pipeline diffs and scores.
package elfmodel

import "sort"

// Visibility classifies how a symbol is bound in its defining object.
type Visibility string

const (
	VisibilityPublic Visibility = "public"
	VisibilityWeak   Visibility = "weak"
)

// Stability classifies whether a library's ABI surface is frozen.
type Stability string

const (
	StabilityStable   Stability = "stable"
	StabilityUnstable Stability = "unstable"
)

// DefaultOwner is the owner assigned when no APEX prefix match is found.
const DefaultOwner = "platform"

// Symbol is a named export (or, for a VendorFootprint, a named
// requirement) of a shared object.
type Symbol struct {
	Name       string     `json:"name"`
	Visibility Visibility `json:"visibility"`
}

// Library is a shared object identified by basename.
type Library struct {
	Name      string    `json:"name"`
	Stability Stability `json:"stability"`
	Owner     string    `json:"owner"`
	Symbols   []Symbol  `json:"symbols"`
}

// SymbolNames returns the sorted set of symbol names in the library.
func (l Library) SymbolNames() []string {
	names := make([]string, 0, len(l.Symbols))
	for _, s := range l.Symbols {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// ApiModel is a versioned aggregate of libraries scanned from one
// directory tree; its symbol sets hold defined exports.
type ApiModel struct {
	APILevel  int       `json:"api_level"`
	Libraries []Library `json:"libraries"`
}

// VendorFootprint is structurally identical to ApiModel; its symbol sets
// hold undefined references rather than defined exports.
type VendorFootprint struct {
	APILevel  int       `json:"api_level"`
	Libraries []Library `json:"libraries"`
}

// SortLibraries sorts libraries by name and each library's symbols by
// name, establishing the canonical iteration order the rest of the
// pipeline relies on for determinism.
func SortLibraries(libs []Library) {
	sort.Slice(libs, func(i, j int) bool { return libs[i].Name < libs[j].Name })
	for i := range libs {
		sort.Slice(libs[i].Symbols, func(a, b int) bool {
			return libs[i].Symbols[a].Name < libs[i].Symbols[b].Name
		})
	}
}
