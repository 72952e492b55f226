package diffengine

import (
	"testing"

	"github.com/aosp-tools/vndk-compat/internal/elfmodel"
	"github.com/aosp-tools/vndk-compat/internal/policy"
)

func sym(name string) elfmodel.Symbol { return elfmodel.Symbol{Name: name} }

func TestComputeDiffAllGood(t *testing.T) {
	sys := SystemSymbols{"libA.so": {"f": true, "g": true}}
	vendor := elfmodel.VendorFootprint{
		Libraries: []elfmodel.Library{
			{Name: "libA.so", Symbols: []elfmodel.Symbol{sym("f"), sym("g")}},
		},
	}

	plan := ComputeDiff(30, 35, sys, vendor, policy.Empty())

	if len(plan.Actions) != 0 {
		t.Fatalf("expected no actions, got %+v", plan.Actions)
	}
	if plan.Metrics.Matches != 1 || plan.Metrics.Missing != 0 || plan.Metrics.ABIBreaks != 0 {
		t.Fatalf("unexpected metrics: %+v", plan.Metrics)
	}
}

func TestComputeDiffMissingLibrary(t *testing.T) {
	sys := SystemSymbols{}
	vendor := elfmodel.VendorFootprint{
		Libraries: []elfmodel.Library{{Name: "libZ.so", Symbols: []elfmodel.Symbol{sym("f")}}},
	}

	plan := ComputeDiff(30, 35, sys, vendor, policy.Empty())

	if len(plan.Actions) != 1 {
		t.Fatalf("expected 1 action, got %+v", plan.Actions)
	}
	a := plan.Actions[0]
	if a.Type != ActionMissingLibrary || a.Target != "libZ.so" || a.Severity != SeverityCritical {
		t.Fatalf("unexpected action: %+v", a)
	}
	if plan.Metrics.Missing != 1 {
		t.Fatalf("unexpected metrics: %+v", plan.Metrics)
	}
}

func TestComputeDiffShimResolution(t *testing.T) {
	sys := SystemSymbols{"libA.so": {}}
	vendor := elfmodel.VendorFootprint{
		Libraries: []elfmodel.Library{{Name: "libA.so", Symbols: []elfmodel.Symbol{sym("h_old")}}},
	}
	pol := policy.Policy{Rules: []policy.Rule{
		{Target: "libA.so", Symbols: []string{"h_old"}, Action: policy.ActionShim},
	}}

	plan := ComputeDiff(30, 35, sys, vendor, pol)

	if len(plan.Actions) != 1 {
		t.Fatalf("expected 1 action, got %+v", plan.Actions)
	}
	a := plan.Actions[0]
	if a.Type != ActionABIBreak || a.Resolution.Action != policy.ActionShim || a.Resolution.Remap != "" {
		t.Fatalf("unexpected resolution: %+v", a.Resolution)
	}
}

func TestComputeDiffShimWithRemap(t *testing.T) {
	sys := SystemSymbols{"libA.so": {}}
	vendor := elfmodel.VendorFootprint{
		Libraries: []elfmodel.Library{{Name: "libA.so", Symbols: []elfmodel.Symbol{sym("h_old")}}},
	}
	pol := policy.Policy{Rules: []policy.Rule{
		{Target: "libA.so", Symbols: []string{"h_old"}, Action: policy.ActionShim, Remap: map[string]string{"h_old": "h_new"}},
	}}

	plan := ComputeDiff(30, 35, sys, vendor, pol)

	a := plan.Actions[0]
	if a.Resolution.Remap != "h_new" {
		t.Fatalf("expected remap h_new, got %+v", a.Resolution)
	}
}

func TestComputeDiffNoPolicyFallsBackToSnapshot(t *testing.T) {
	sys := SystemSymbols{"libA.so": {}}
	vendor := elfmodel.VendorFootprint{
		Libraries: []elfmodel.Library{{Name: "libA.so", Symbols: []elfmodel.Symbol{sym("f")}}},
	}

	plan := ComputeDiff(30, 35, sys, vendor, policy.Empty())

	a := plan.Actions[0]
	if a.Resolution.Action != "NONE" || a.Resolution.Fallback != "snapshot" {
		t.Fatalf("expected NONE/snapshot fallback, got %+v", a.Resolution)
	}
}

func TestComputeDiffDeterministicOrder(t *testing.T) {
	sys := SystemSymbols{"libA.so": {}, "libB.so": {}}
	vendor := elfmodel.VendorFootprint{
		Libraries: []elfmodel.Library{
			{Name: "libB.so", Symbols: []elfmodel.Symbol{sym("z"), sym("a")}},
			{Name: "libA.so", Symbols: []elfmodel.Symbol{sym("y")}},
		},
	}

	plan := ComputeDiff(30, 35, sys, vendor, policy.Empty())

	if len(plan.Actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(plan.Actions))
	}
	if plan.Actions[0].Target != "libA.so" {
		t.Fatalf("expected libA.so first (sorted by library name), got %s", plan.Actions[0].Target)
	}
	if plan.Actions[1].Target != "libB.so" || plan.Actions[1].Symbol != "a" {
		t.Fatalf("expected libB.so symbol 'a' second (sorted within library), got %+v", plan.Actions[1])
	}
	if plan.Actions[2].Symbol != "z" {
		t.Fatalf("expected libB.so symbol 'z' third, got %+v", plan.Actions[2])
	}
}

func TestComputeDiffMetricsMatchActionCounts(t *testing.T) {
	sys := SystemSymbols{}
	vendor := elfmodel.VendorFootprint{
		Libraries: []elfmodel.Library{
			{Name: "libZ1.so", Symbols: []elfmodel.Symbol{sym("f")}},
			{Name: "libZ2.so", Symbols: []elfmodel.Symbol{sym("f")}},
		},
	}

	plan := ComputeDiff(30, 35, sys, vendor, policy.Empty())

	missingCount := 0
	abiBreakCount := 0
	for _, a := range plan.Actions {
		switch a.Type {
		case ActionMissingLibrary:
			missingCount++
		case ActionABIBreak:
			abiBreakCount++
		}
	}
	if plan.Metrics.Missing != missingCount {
		t.Fatalf("metrics.missing %d != actual %d", plan.Metrics.Missing, missingCount)
	}
	if plan.Metrics.ABIBreaks != abiBreakCount {
		t.Fatalf("metrics.abi_breaks %d != actual %d", plan.Metrics.ABIBreaks, abiBreakCount)
	}
}

func TestComputeDiffEmptyVendorProducesEmptyPlan(t *testing.T) {
	plan := ComputeDiff(30, 35, SystemSymbols{}, elfmodel.VendorFootprint{}, policy.Empty())
	if len(plan.Actions) != 0 {
		t.Fatalf("expected no actions for empty vendor footprint, got %+v", plan.Actions)
	}
	if plan.Metrics != (Metrics{}) {
		t.Fatalf("expected all-zero metrics, got %+v", plan.Metrics)
	}
}
