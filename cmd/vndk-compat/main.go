// Command vndk-compat runs the full pipeline end to end: it scans a
// system partition and a vendor partition for their symbol models,
// computes a compatibility plan, scores it, and emits a shim source file
// and a merged linker.config.json — everything a vendor compatibility
// build needs from one invocation.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aosp-tools/vndk-compat/internal/diagnostics"
	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/elfmodel"
	"github.com/aosp-tools/vndk-compat/internal/linkerir"
	"github.com/aosp-tools/vndk-compat/internal/policy"
	"github.com/aosp-tools/vndk-compat/internal/scorer"
	"github.com/aosp-tools/vndk-compat/internal/shimgen"
	"github.com/aosp-tools/vndk-compat/internal/validate"
	"github.com/aosp-tools/vndk-compat/internal/vintf"
)

func main() {
	var (
		vendorAPI    = flag.Int("vendor-api", 0, "vendor partition API level (required)")
		systemAPI    = flag.Int("system-api", 0, "system partition API level (required)")
		vendorDir    = flag.String("vendor-dir", "", "root of the vendor partition to scan (required)")
		systemDir    = flag.String("system-dir", "", "root of the system partition to scan (required)")
		policyPath   = flag.String("policy", "", "path to the policy JSON (optional)")
		manifestPath = flag.String("manifest", "", "path to a VINTF manifest XML (optional)")
		outputDir    = flag.String("output-dir", "", "directory to write all pipeline artifacts into (required)")
		cacheDir     = flag.String("cache-dir", "", "content-addressed extraction cache directory (optional)")
	)
	flag.Parse()

	if *vendorDir == "" || *systemDir == "" || *outputDir == "" || *vendorAPI == 0 || *systemAPI == 0 {
		fmt.Fprintln(os.Stderr, "usage: vndk-compat --vendor-dir DIR --system-dir DIR --vendor-api N --system-api N --output-dir DIR [--policy FILE] [--manifest FILE]")
		os.Exit(2)
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}

	log := diagnostics.For(diagnostics.StageExtract)
	v, err := validate.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}

	var cache *elfmodel.Cache
	if *cacheDir != "" {
		cache = elfmodel.OpenCache(*cacheDir)
	}

	pol, found, err := policy.Load(*policyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}
	if *policyPath != "" && !found {
		diagnostics.For(diagnostics.StageDiff).Warnf("policy file %s not found, resolving every ABI gap to snapshot", *policyPath)
	}

	systemModel, err := elfmodel.ExtractDefined(*systemDir, *systemAPI, elfmodel.Options{Cache: cache, IgnorePaths: pol.IgnorePaths})
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: scanning system partition: %v\n", err)
		os.Exit(1)
	}
	if err := v.Validate(validate.KindApiModel, systemModel); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: system model failed validation: %v\n", err)
		os.Exit(1)
	}
	systemModelPath := filepath.Join(*outputDir, "system-model.json")
	if err := writeJSON(systemModelPath, systemModel); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}

	vendorFootprint, err := elfmodel.ExtractUndefined(*vendorDir, *vendorAPI, elfmodel.Options{Cache: cache, IgnorePaths: pol.IgnorePaths})
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: scanning vendor partition: %v\n", err)
		os.Exit(1)
	}
	if err := v.Validate(validate.KindVendorFootprint, vendorFootprint); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: vendor footprint failed validation: %v\n", err)
		os.Exit(1)
	}
	if err := writeJSON(filepath.Join(*outputDir, "vendor-footprint.json"), vendorFootprint); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}

	if cache != nil {
		if err := cache.Save(); err != nil {
			log.Warnf("saving extraction cache: %v", err)
		}
	}

	sys, err := diffengine.LoadSystemSymbols(systemModelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}

	plan := diffengine.ComputeDiff(*vendorAPI, *systemAPI, sys, vendorFootprint, pol)

	if *manifestPath != "" {
		hals, err := vintf.Load(*manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
			os.Exit(1)
		}
		plan.HALDependencies = hals
	}

	if err := v.Validate(validate.KindPlan, plan); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: plan failed validation: %v\n", err)
		os.Exit(1)
	}
	if err := writeJSON(filepath.Join(*outputDir, "plan.json"), plan); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}

	score, state := scorer.Score(plan)
	propsFile, err := os.Create(filepath.Join(*outputDir, "vndk-compat.props"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}
	err = scorer.WriteProps(propsFile, score, state)
	propsFile.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: writing properties: %v\n", err)
		os.Exit(1)
	}

	src, err := shimgen.Generate(plan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outputDir, "vndk_compat_shim.c"), []byte(src), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}

	cfg := linkerir.New()
	linkerir.SynthesizeFromPlan(cfg, plan)
	linkerir.ApplyPolicyPatch(cfg, pol.LinkerConfig, diagnostics.For(diagnostics.StageLinker))
	linkerOut, err := linkerir.Export(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}
	if err := v.ValidateJSON(validate.KindLinkerConfig, linkerOut); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: linker config failed validation: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outputDir, "linker.config.json"), linkerOut, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-compat: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("score=%d state=%s actions=%d\n", score, state, len(plan.Actions))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
