package diffengine

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/aosp-tools/vndk-compat/internal/diagnostics"
	"github.com/aosp-tools/vndk-compat/internal/elfmodel"
	"github.com/aosp-tools/vndk-compat/internal/policy"
)

// maxTypoDistance bounds how close a policy-rule target name must be to
// a vendor library name before the diagnostic channel suggests it as a
// likely typo (spec §4.2 "Typo diagnostics", SPEC_FULL addition).
const maxTypoDistance = 2

// ComputeDiff implements spec §4.2: per-library diff against sys,
// resolved via pol, against every vendor library in vendor.
func ComputeDiff(vendorAPI, systemAPI int, sys SystemSymbols, vendor elfmodel.VendorFootprint, pol policy.Policy) Plan {
	log := diagnostics.For(diagnostics.StageDiff)
	plan := NewPlan(vendorAPI, systemAPI)

	libs := append([]elfmodel.Library(nil), vendor.Libraries...)
	elfmodel.SortLibraries(libs)

	policyTargets := uniqueTargets(pol.Rules)

	for _, v := range libs {
		symSet, ok := sys[v.Name]
		if !ok {
			plan.Metrics.Missing++
			plan.Actions = append(plan.Actions, Action{
				Type:     ActionMissingLibrary,
				Target:   v.Name,
				Severity: SeverityCritical,
			})
			continue
		}

		missing := missingSymbols(v, symSet)
		if len(missing) == 0 {
			plan.Metrics.Matches++
			continue
		}

		plan.Metrics.ABIBreaks += len(missing)
		for _, symName := range missing {
			res := pol.Resolve(v.Name, symName)
			if res.Action == "NONE" {
				if hint, found := nearestTypoTarget(v.Name, policyTargets); found {
					log.With(map[string]any{"target": v.Name, "symbol": symName}).
						Warnf("unresolved symbol %q: did you mean policy rule for library %q?", symName, hint)
				}
			}
			resCopy := res
			plan.Actions = append(plan.Actions, Action{
				Type:       ActionABIBreak,
				Target:     v.Name,
				Symbol:     symName,
				Resolution: &resCopy,
			})
		}
	}

	return plan
}

// missingSymbols returns the sorted set difference lib.symbols - present,
// mirroring the teacher's generic diffRows[T] set-difference idiom
// (internal/facts/delta.go) specialized to plain symbol names.
func missingSymbols(lib elfmodel.Library, present map[string]bool) []string {
	names := lib.SymbolNames()
	var out []string
	for _, name := range names {
		if !present[name] {
			out = append(out, name)
		}
	}
	return out
}

func uniqueTargets(rules []policy.Rule) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rules {
		if !seen[r.Target] {
			seen[r.Target] = true
			out = append(out, r.Target)
		}
	}
	sort.Strings(out)
	return out
}

// nearestTypoTarget returns the closest policy rule target to name by
// Levenshtein distance, if any target is within maxTypoDistance and is
// not name itself.
func nearestTypoTarget(name string, targets []string) (string, bool) {
	best := ""
	bestDist := maxTypoDistance + 1
	for _, t := range targets {
		if t == name {
			continue
		}
		d := levenshtein.ComputeDistance(name, t)
		if d < bestDist {
			bestDist = d
			best = t
		}
	}
	if bestDist > maxTypoDistance {
		return "", false
	}
	return best, true
}
