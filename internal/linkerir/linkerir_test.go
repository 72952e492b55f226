package linkerir

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aosp-tools/vndk-compat/internal/diagnostics"
	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/policy"
)

func TestSynthesizeFromPlanCreatesBidirectionalLinks(t *testing.T) {
	c := New()
	name := SynthesizeFromPlan(c, diffengine.NewPlan(30, 35))

	if name != "vndk_compat_v30" {
		t.Fatalf("expected namespace vndk_compat_v30, got %s", name)
	}
	compat := c.GetOrCreate(name)
	if len(compat.Links) != 1 || compat.Links[0].Target != "default" {
		t.Fatalf("expected single link to default, got %+v", compat.Links)
	}
	def := c.GetOrCreate("default")
	if len(def.Links) != 1 || def.Links[0].Target != name {
		t.Fatalf("expected default linked back to %s, got %+v", name, def.Links)
	}
	wantPaths := []string{"/system/lib64/vndk-v30", "/system/lib/vndk-v30"}
	for _, p := range wantPaths {
		found := false
		for _, got := range compat.PermittedPaths {
			if got == p {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected permitted path %s, got %+v", p, compat.PermittedPaths)
		}
	}
}

func TestSynthesizeFromPlanIdempotent(t *testing.T) {
	c := New()
	plan := diffengine.NewPlan(30, 35)
	SynthesizeFromPlan(c, plan)
	SynthesizeFromPlan(c, plan)

	compat := c.GetOrCreate("vndk_compat_v30")
	if len(compat.Links) != 1 {
		t.Fatalf("expected link list to stay deduplicated, got %+v", compat.Links)
	}
	if len(compat.PermittedPaths) != 2 {
		t.Fatalf("expected permitted paths to stay deduplicated, got %+v", compat.PermittedPaths)
	}
}

func TestLoadMissingPathReturnsEmptyConfig(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Has("default") {
		t.Fatal("expected empty config")
	}

	c2, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if c2.Has("default") {
		t.Fatal("expected empty config for nonexistent file")
	}
}

func TestLoadMergesExistingNamespaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "linker.config.json")
	base := `{"namespaces":[{"name":"default","isolated":false,"visible":true,"links":[],"permitted_paths":["/vendor/lib64"],"search_paths":[]}]}`
	if err := os.WriteFile(path, []byte(base), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	def := c.GetOrCreate("default")
	if def.Isolated {
		t.Fatal("expected isolated=false preserved from base config")
	}
	if len(def.PermittedPaths) != 1 || def.PermittedPaths[0] != "/vendor/lib64" {
		t.Fatalf("expected base permitted path preserved, got %+v", def.PermittedPaths)
	}
}

func TestApplyPolicyPatchAddSkipsExisting(t *testing.T) {
	c := New()
	c.GetOrCreate("sphal")

	isolated := false
	ApplyPolicyPatch(c, policy.LinkerPatch{Namespaces: []policy.NamespacePatch{
		{Name: "sphal", Add: &policy.NamespaceAdd{Isolated: &isolated}},
	}}, diagnostics.For(diagnostics.StageLinker))

	if !c.GetOrCreate("sphal").Isolated {
		t.Fatal("expected add to skip an already-existing namespace")
	}
}

func TestApplyPolicyPatchOnMissingNamespaceAutoCreates(t *testing.T) {
	c := New()
	ApplyPolicyPatch(c, policy.LinkerPatch{Namespaces: []policy.NamespacePatch{
		{Name: "vndk_compat_v30", Patch: &policy.NamespacePatchBody{
			Links: []policy.LinkOp{{Add: &policy.LinkPatch{Target: "sphal", AllowAllSharedLibs: true}}},
		}},
	}}, diagnostics.For(diagnostics.StageLinker))

	ns := c.GetOrCreate("vndk_compat_v30")
	if len(ns.Links) != 1 || ns.Links[0].Target != "sphal" {
		t.Fatalf("expected auto-created namespace to carry the patched link, got %+v", ns.Links)
	}
}

func TestExportIsSortedAndDeterministic(t *testing.T) {
	c := New()
	c.GetOrCreate("zzz")
	a := c.GetOrCreate("aaa")
	a.AddLink("zzz", true)
	a.AddLink("mmm", false)
	a.AddPermittedPath("/b")
	a.AddPermittedPath("/a")

	out1, err := Export(c)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := Export(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(out1) != string(out2) {
		t.Fatal("expected byte-identical export across repeated calls")
	}

	var decoded wireConfig
	if err := json.Unmarshal(out1, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Namespaces[0].Name != "aaa" || decoded.Namespaces[1].Name != "zzz" {
		t.Fatalf("expected namespaces sorted by name, got %+v", decoded.Namespaces)
	}
	if decoded.Namespaces[0].Links[0].Target != "mmm" {
		t.Fatalf("expected links sorted by target, got %+v", decoded.Namespaces[0].Links)
	}
	if decoded.Namespaces[0].PermittedPaths[0] != "/a" {
		t.Fatalf("expected permitted paths sorted, got %+v", decoded.Namespaces[0].PermittedPaths)
	}
}
