// Command vndk-linker merges an optional base linker.config.json with the
// plan-driven vndk_compat namespace and any policy-declared namespace
// patches, and writes the result back out as linker.config.json.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aosp-tools/vndk-compat/internal/diagnostics"
	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/linkerir"
	"github.com/aosp-tools/vndk-compat/internal/policy"
	"github.com/aosp-tools/vndk-compat/internal/validate"
)

func main() {
	var (
		inputConfig = flag.String("input-config", "", "optional base linker.config.json to merge onto")
		planPath    = flag.String("plan", "", "path to the plan JSON (required)")
		policyPath  = flag.String("policy", "", "optional policy JSON, for its linker_config patches")
		output      = flag.String("output", "", "output path for the merged linker.config.json (required)")
	)
	flag.Parse()

	if *planPath == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: vndk-linker --plan FILE --output FILE [--input-config FILE] [--policy FILE]")
		os.Exit(2)
	}

	cfg, err := linkerir.Load(*inputConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-linker: %v\n", err)
		os.Exit(1)
	}

	planData, err := os.ReadFile(*planPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-linker: reading plan: %v\n", err)
		os.Exit(1)
	}
	var plan diffengine.Plan
	if err := json.Unmarshal(planData, &plan); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-linker: parsing plan: %v\n", err)
		os.Exit(1)
	}
	linkerir.SynthesizeFromPlan(cfg, plan)

	if *policyPath != "" {
		pol, found, err := policy.Load(*policyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vndk-linker: %v\n", err)
			os.Exit(1)
		}
		if found {
			linkerir.ApplyPolicyPatch(cfg, pol.LinkerConfig, diagnostics.For(diagnostics.StageLinker))
		}
	}

	out, err := linkerir.Export(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-linker: %v\n", err)
		os.Exit(1)
	}

	v, err := validate.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-linker: %v\n", err)
		os.Exit(1)
	}
	if err := v.ValidateJSON(validate.KindLinkerConfig, out); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-linker: emitted config failed schema validation: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-linker: writing %s: %v\n", *output, err)
		os.Exit(1)
	}
}
