// Command vndk-diff computes a compatibility Plan from a system model, a
// vendor footprint, and an optional policy document.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aosp-tools/vndk-compat/internal/diagnostics"
	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/policy"
	"github.com/aosp-tools/vndk-compat/internal/validate"
	"github.com/aosp-tools/vndk-compat/internal/vintf"
)

func main() {
	var (
		systemModel     = flag.String("system-model", "", "path to the system ApiModel JSON (required)")
		vendorFootprint = flag.String("vendor-footprint", "", "path to the vendor VendorFootprint JSON (required)")
		policyPath      = flag.String("policy", "", "path to the policy JSON (optional; absent degrades to empty policy)")
		manifestPath    = flag.String("manifest", "", "path to a VINTF manifest XML to attach as plan metadata (optional)")
		systemAPILevel  = flag.Int("system-api-level", 0, "API level of the system model (required)")
		output          = flag.String("output", "", "output path for the plan JSON (required)")
	)
	flag.Parse()

	if *systemModel == "" || *vendorFootprint == "" || *output == "" || *systemAPILevel == 0 {
		fmt.Fprintln(os.Stderr, "usage: vndk-diff --system-model FILE --vendor-footprint FILE --system-api-level N --output FILE [--policy FILE] [--manifest FILE]")
		os.Exit(2)
	}

	log := diagnostics.For(diagnostics.StageDiff)

	sys, err := diffengine.LoadSystemSymbols(*systemModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-diff: %v\n", err)
		os.Exit(1)
	}

	vendor, err := diffengine.LoadVendorFootprint(*vendorFootprint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-diff: %v\n", err)
		os.Exit(1)
	}

	pol, found, err := policy.Load(*policyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-diff: %v\n", err)
		os.Exit(1)
	}
	if *policyPath != "" && !found {
		log.Warnf("policy file %s not found, resolving every ABI gap to snapshot", *policyPath)
	}

	plan := diffengine.ComputeDiff(vendor.APILevel, *systemAPILevel, sys, vendor, pol)
	if *manifestPath != "" {
		hals, err := vintf.Load(*manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vndk-diff: %v\n", err)
			os.Exit(1)
		}
		plan.HALDependencies = hals
	}

	v, err := validate.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-diff: %v\n", err)
		os.Exit(1)
	}
	if err := v.Validate(validate.KindPlan, plan); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-diff: emitted plan failed schema validation: %v\n", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-diff: marshaling plan: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-diff: writing %s: %v\n", *output, err)
		os.Exit(1)
	}
}
