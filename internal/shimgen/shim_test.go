package shimgen

import (
	"strings"
	"testing"

	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/policy"
)

func planWithBreaks(breaks ...diffengine.Action) diffengine.Plan {
	p := diffengine.NewPlan(30, 35)
	p.Actions = breaks
	return p
}

func TestGenerateForwardingShim(t *testing.T) {
	res := policy.Resolution{Action: policy.ActionShim}
	src, err := Generate(planWithBreaks(diffengine.Action{
		Type: diffengine.ActionABIBreak, Target: "libA.so", Symbol: "h_old", Resolution: &res,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, `dlsym(handle, "h_old")`) {
		t.Fatalf("expected dlsym forward for h_old, got:\n%s", src)
	}
	if !strings.Contains(src, `get_real_lib_handle("libA.so")`) {
		t.Fatalf("expected target lib libA.so, got:\n%s", src)
	}
}

func TestGenerateRemapShim(t *testing.T) {
	res := policy.Resolution{Action: policy.ActionShim, Remap: "h_new"}
	src, err := Generate(planWithBreaks(diffengine.Action{
		Type: diffengine.ActionABIBreak, Target: "libA.so", Symbol: "h_old", Resolution: &res,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "void* h_old(...) {\n    return h_new();") {
		t.Fatalf("expected tail-call alias h_old -> h_new, got:\n%s", src)
	}
}

func TestGenerateStub(t *testing.T) {
	res := policy.Resolution{Action: policy.ActionStub}
	src, err := Generate(planWithBreaks(diffengine.Action{
		Type: diffengine.ActionABIBreak, Target: "libA.so", Symbol: "h_old", Resolution: &res,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "ALOGW(\"vndk_compat: stub called for %s\", \"h_old\")") {
		t.Fatalf("expected warning stub, got:\n%s", src)
	}
}

func TestGenerateSkipsSnapshotActions(t *testing.T) {
	res := policy.Resolution{Action: "NONE", Fallback: "snapshot"}
	src, err := Generate(planWithBreaks(diffengine.Action{
		Type: diffengine.ActionABIBreak, Target: "libA.so", Symbol: "h_old", Resolution: &res,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(src, "h_old") {
		t.Fatalf("did not expect snapshot-fallback symbol to appear in generated source:\n%s", src)
	}
}

func TestGenerateIdempotent(t *testing.T) {
	res1 := policy.Resolution{Action: policy.ActionShim}
	res2 := policy.Resolution{Action: policy.ActionStub}
	plan := planWithBreaks(
		diffengine.Action{Type: diffengine.ActionABIBreak, Target: "libA.so", Symbol: "f", Resolution: &res1},
		diffengine.Action{Type: diffengine.ActionABIBreak, Target: "libA.so", Symbol: "g", Resolution: &res2},
	)

	a, err := Generate(plan)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(plan)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("expected byte-identical output across repeated generation")
	}
}

func TestGenerateOrderMatchesPlanActionOrder(t *testing.T) {
	res := policy.Resolution{Action: policy.ActionStub}
	resF := policy.Resolution{Action: policy.ActionStub}
	plan := planWithBreaks(
		diffengine.Action{Type: diffengine.ActionABIBreak, Target: "libA.so", Symbol: "zeta", Resolution: &res},
		diffengine.Action{Type: diffengine.ActionABIBreak, Target: "libA.so", Symbol: "alpha", Resolution: &resF},
	)
	src, err := Generate(plan)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(src, "zeta") > strings.Index(src, "alpha") {
		t.Fatal("expected output order to follow plan action order, not alphabetical")
	}
}
