// Package diffengine computes a compatibility Plan from a system model, a
// vendor footprint, and a policy.
package diffengine

import (
	"github.com/aosp-tools/vndk-compat/internal/policy"
	"github.com/aosp-tools/vndk-compat/internal/vintf"
)

// SeverityCritical is the only severity value a MISSING_LIBRARY action
// currently carries.
const SeverityCritical = "CRITICAL"

// ActionType discriminates the PlanAction tagged union.
type ActionType string

const (
	ActionMissingLibrary ActionType = "MISSING_LIBRARY"
	ActionABIBreak       ActionType = "ABI_BREAK"
)

// Action is a PlanAction. Only the fields relevant to Type are populated:
// MISSING_LIBRARY sets Target and Severity; ABI_BREAK sets Target,
// Symbol, and Resolution.
type Action struct {
	Type       ActionType          `json:"type"`
	Target     string              `json:"target"`
	Severity   string              `json:"severity,omitempty"`
	Symbol     string              `json:"symbol,omitempty"`
	Resolution *policy.Resolution  `json:"resolution,omitempty"`
}

// Metrics is the plan's aggregate counters.
type Metrics struct {
	Matches               int `json:"matches"`
	Missing               int `json:"missing"`
	ABIBreaks             int `json:"abi_breaks"`
	VisibilityViolations  int `json:"visibility_violations"`
}

// Plan is the diff engine's output.
type Plan struct {
	Version         string      `json:"version"`
	VendorAPILevel  int         `json:"vendor_api_level"`
	SystemAPILevel  int         `json:"system_api_level"`
	Actions         []Action    `json:"actions"`
	Metrics         Metrics     `json:"metrics"`
	HALDependencies []vintf.HAL `json:"hal_dependencies,omitempty"`
}

// PlanVersion is the `version` field stamped on every plan this engine
// produces.
const PlanVersion = "1.0"

// NewPlan returns an empty, well-formed plan for the given API levels.
func NewPlan(vendorAPI, systemAPI int) Plan {
	return Plan{
		Version:        PlanVersion,
		VendorAPILevel: vendorAPI,
		SystemAPILevel: systemAPI,
		Actions:        []Action{},
	}
}
