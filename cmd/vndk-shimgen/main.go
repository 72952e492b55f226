// Command vndk-shimgen renders a Plan's ABI_BREAK actions into a single
// C shim source file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/shimgen"
)

func main() {
	var (
		planPath = flag.String("plan", "", "path to the plan JSON (required)")
		output   = flag.String("output", "", "output path for the generated C source (required)")
	)
	flag.Parse()

	if *planPath == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: vndk-shimgen --plan FILE --output FILE")
		os.Exit(2)
	}

	data, err := os.ReadFile(*planPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-shimgen: reading plan: %v\n", err)
		os.Exit(1)
	}
	var plan diffengine.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-shimgen: parsing plan: %v\n", err)
		os.Exit(1)
	}

	src, err := shimgen.Generate(plan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-shimgen: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, []byte(src), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-shimgen: writing %s: %v\n", *output, err)
		os.Exit(1)
	}
}
