// Command vndk-debug pretty-prints one of the pipeline's JSON artifacts
// along with a short human-readable summary, for inspecting intermediate
// state by hand while chasing down a misclassified symbol.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/elfmodel"
	"github.com/aosp-tools/vndk-compat/internal/linkerir"
	"github.com/aosp-tools/vndk-compat/internal/policy"
)

func main() {
	kind := flag.String("kind", "", "artifact kind: api-model, vendor-footprint, policy, plan, linker-config")
	path := flag.String("file", "", "path to the artifact JSON")
	flag.Parse()

	if *kind == "" || *path == "" {
		fmt.Fprintln(os.Stderr, "usage: vndk-debug --kind KIND --file PATH")
		os.Exit(2)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-debug: %v\n", err)
		os.Exit(1)
	}

	switch *kind {
	case "api-model":
		debugAPIModel(data)
	case "vendor-footprint":
		debugVendorFootprint(data)
	case "policy":
		debugPolicy(data)
	case "plan":
		debugPlan(data)
	case "linker-config":
		debugLinkerConfig(data)
	default:
		fmt.Fprintf(os.Stderr, "vndk-debug: unknown kind %q\n", *kind)
		os.Exit(2)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-debug: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(pretty.String())
}

func debugAPIModel(data []byte) {
	var m elfmodel.ApiModel
	mustUnmarshal(data, &m)
	fmt.Printf("api_level=%d libraries=%d\n", m.APILevel, len(m.Libraries))
	for _, lib := range m.Libraries {
		fmt.Printf("  %-40s stability=%-9s owner=%-12s symbols=%d\n", lib.Name, lib.Stability, lib.Owner, len(lib.Symbols))
	}
}

func debugVendorFootprint(data []byte) {
	var f elfmodel.VendorFootprint
	mustUnmarshal(data, &f)
	fmt.Printf("api_level=%d libraries=%d\n", f.APILevel, len(f.Libraries))
	for _, lib := range f.Libraries {
		fmt.Printf("  %-40s stability=%-9s owner=%-12s undefined_symbols=%d\n", lib.Name, lib.Stability, lib.Owner, len(lib.Symbols))
	}
}

func debugPolicy(data []byte) {
	var p policy.Policy
	mustUnmarshal(data, &p)
	fmt.Printf("api_level=%d rules=%d linker_namespaces=%d ignore_paths=%d\n",
		p.APILevel, len(p.Rules), len(p.LinkerConfig.Namespaces), len(p.IgnorePaths))
	for _, r := range p.Rules {
		fmt.Printf("  target=%-30s action=%-8s symbols=%v\n", r.Target, r.Action, r.Symbols)
	}
}

func debugPlan(data []byte) {
	var p diffengine.Plan
	mustUnmarshal(data, &p)
	fmt.Printf("version=%s vendor_api=%d system_api=%d actions=%d matches=%d missing=%d abi_breaks=%d\n",
		p.Version, p.VendorAPILevel, p.SystemAPILevel, len(p.Actions),
		p.Metrics.Matches, p.Metrics.Missing, p.Metrics.ABIBreaks)
	for _, a := range p.Actions {
		if a.Type == diffengine.ActionMissingLibrary {
			fmt.Printf("  MISSING_LIBRARY target=%s severity=%s\n", a.Target, a.Severity)
			continue
		}
		resAction := "?"
		if a.Resolution != nil {
			resAction = string(a.Resolution.Action)
		}
		fmt.Printf("  ABI_BREAK target=%-30s symbol=%-25s resolution=%s\n", a.Target, a.Symbol, resAction)
	}
}

func debugLinkerConfig(data []byte) {
	var decoded struct {
		Namespaces []linkerir.Namespace `json:"namespaces"`
	}
	mustUnmarshal(data, &decoded)
	fmt.Printf("namespaces=%d\n", len(decoded.Namespaces))
	for _, ns := range decoded.Namespaces {
		fmt.Printf("  %-24s isolated=%-5t visible=%-5t links=%d permitted_paths=%d\n",
			ns.Name, ns.Isolated, ns.Visible, len(ns.Links), len(ns.PermittedPaths))
	}
}

func mustUnmarshal(data []byte, v any) {
	if err := json.Unmarshal(data, v); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-debug: %v\n", err)
		os.Exit(1)
	}
}
