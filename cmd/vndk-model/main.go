// Command vndk-model scans a directory of shared objects and emits a
// symbol model: defined exports (an ApiModel, typically for a system
// partition) or undefined references (a VendorFootprint).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aosp-tools/vndk-compat/internal/diagnostics"
	"github.com/aosp-tools/vndk-compat/internal/elfmodel"
	"github.com/aosp-tools/vndk-compat/internal/validate"
)

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var (
		scanDir   = flag.String("scan-dir", "", "root directory of shared objects to scan (required)")
		apiLevel  = flag.Int("api-level", 0, "API level to stamp on the emitted model (required)")
		mode      = flag.String("mode", "defined", "symbol mode: defined (ApiModel) or undefined (VendorFootprint)")
		output    = flag.String("output", "", "output path (required)")
		cacheDir  = flag.String("cache-dir", "", "content-addressed extraction cache directory (optional)")
		ownerFile = flag.String("owner-map", "", "optional JSON file mapping APEX path prefixes to owner names")
	)
	var ignorePaths stringList
	flag.Var(&ignorePaths, "ignore-path", "glob pattern (relative to scan-dir) to skip; may be repeated")
	flag.Parse()

	if *scanDir == "" || *apiLevel == 0 || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: vndk-model --scan-dir DIR --api-level N --output FILE [--mode defined|undefined]")
		os.Exit(2)
	}

	log := diagnostics.For(diagnostics.StageExtract)

	owners, err := loadOwnerMap(*ownerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-model: %v\n", err)
		os.Exit(1)
	}

	opts := elfmodel.Options{APIOwners: owners, IgnorePaths: ignorePaths}
	var cache *elfmodel.Cache
	if *cacheDir != "" {
		cache = elfmodel.OpenCache(*cacheDir)
		opts.Cache = cache
	}

	var doc any
	var kind validate.Kind
	switch *mode {
	case "undefined":
		fp, err := elfmodel.ExtractUndefined(*scanDir, *apiLevel, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vndk-model: %v\n", err)
			os.Exit(1)
		}
		doc, kind = fp, validate.KindVendorFootprint
	default:
		am, err := elfmodel.ExtractDefined(*scanDir, *apiLevel, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vndk-model: %v\n", err)
			os.Exit(1)
		}
		doc, kind = am, validate.KindApiModel
	}

	if cache != nil {
		if err := cache.Save(); err != nil {
			log.Warnf("saving extraction cache: %v", err)
		}
	}

	v, err := validate.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-model: %v\n", err)
		os.Exit(1)
	}
	if err := v.Validate(kind, doc); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-model: emitted %s failed schema validation: %v\n", kind, err)
		os.Exit(1)
	}

	if err := writeJSON(*output, doc); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-model: %v\n", err)
		os.Exit(1)
	}
}

func loadOwnerMap(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading owner map %s: %w", path, err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing owner map %s: %w", path, err)
	}
	return m, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
