// Command vndk-scorer reduces a Plan to a numeric score and a discrete
// compatibility state, written as an Android-style build property file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/scorer"
)

func main() {
	var (
		planPath    = flag.String("plan", "", "path to the plan JSON (required)")
		outputProps = flag.String("output-props", "", "path to write the ro.vndk.compat_* property file (required)")
	)
	flag.Parse()

	if *planPath == "" || *outputProps == "" {
		fmt.Fprintln(os.Stderr, "usage: vndk-scorer --plan FILE --output-props FILE")
		os.Exit(2)
	}

	data, err := os.ReadFile(*planPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-scorer: reading plan: %v\n", err)
		os.Exit(1)
	}
	var plan diffengine.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-scorer: parsing plan: %v\n", err)
		os.Exit(1)
	}

	score, state := scorer.Score(plan)

	f, err := os.Create(*outputProps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vndk-scorer: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := scorer.WriteProps(f, score, state); err != nil {
		fmt.Fprintf(os.Stderr, "vndk-scorer: writing properties: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("score=%d state=%s\n", score, state)
}
