// Package scorer reduces a Plan to a numeric compatibility score and a
// discrete compatibility state.
package scorer

import (
	"fmt"
	"io"

	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/policy"
)

// State is the discrete compatibility posture derived from a score.
type State string

const (
	StateFull        State = "FULL"
	StateDegraded    State = "DEGRADED"
	StateUnsupported State = "UNSUPPORTED"
)

// Penalty weights, per spec §4.3. CriticalHALMissing and
// LinkerIsolationBreach are reserved for action-type strings no emitter
// in this codebase currently produces; they are applied if encountered
// so a future rule emitter does not silently go unscored.
const (
	weightMissingLibrary        = 15
	weightForwardingShim        = 1
	weightSymbolRemap           = 2
	weightStubGenerated         = 5
	weightSnapshotDependency    = 5
	weightCriticalHALMissing    = 25
	weightLinkerIsolationBreach = 10
)

const (
	actionTypeCriticalHALMissing    = "CRITICAL_HAL_MISSING"
	actionTypeLinkerIsolationBreach = "LINKER_ISOLATION_BREACH"
)

const startingScore = 100

// Score computes the (score, state) tuple for a plan.
func Score(plan diffengine.Plan) (int, State) {
	score := startingScore
	for _, a := range plan.Actions {
		score -= weightFor(a)
	}
	if score < 0 {
		score = 0
	}
	return score, stateFor(score)
}

func weightFor(a diffengine.Action) int {
	switch a.Type {
	case diffengine.ActionMissingLibrary:
		return weightMissingLibrary
	case diffengine.ActionABIBreak:
		return weightForABIBreak(a)
	case actionTypeCriticalHALMissing:
		return weightCriticalHALMissing
	case actionTypeLinkerIsolationBreach:
		return weightLinkerIsolationBreach
	default:
		return 0
	}
}

func weightForABIBreak(a diffengine.Action) int {
	if a.Resolution == nil {
		return weightSnapshotDependency
	}
	switch a.Resolution.Action {
	case policy.ActionShim:
		if a.Resolution.Remap != "" {
			return weightSymbolRemap
		}
		return weightForwardingShim
	case policy.ActionStub:
		return weightStubGenerated
	default:
		// Any other action value, including NONE, is a snapshot fallback.
		return weightSnapshotDependency
	}
}

func stateFor(score int) State {
	switch {
	case score >= 100:
		return StateFull
	case score >= 70:
		return StateDegraded
	default:
		return StateUnsupported
	}
}

// WriteProps writes the two-line property file format:
// ro.vndk.compat_score=<score>\nro.vndk.compat_state=<state>\n
func WriteProps(w io.Writer, score int, state State) error {
	_, err := fmt.Fprintf(w, "ro.vndk.compat_score=%d\nro.vndk.compat_state=%s\n", score, state)
	return err
}
