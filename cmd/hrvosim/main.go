// Command hrvosim runs one of the named HRVO example scenarios and
// streams a CSV frame trace to stdout (or a file), using the defaults
// from the original HRVO library's own tests and examples.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/elektrokombinacija/hrvosim/internal/bridge"
	"github.com/elektrokombinacija/hrvosim/internal/scenario"
)

func main() {
	name := flag.String("scenario", "circle", "scenario to run: circle, vertical-line, div-b")
	numAgents := flag.Int("agents", 0, "agent count override for circle/vertical-line scenarios (0 = scenario default)")
	workers := flag.Int("workers", 0, "phase-2 worker count (0 = GOMAXPROCS, 1 = deterministic single-threaded mode)")
	duration := flag.Float64("duration", 10, "simulated seconds to run before stopping")
	out := flag.String("out", "", "CSV output path (default: stdout)")
	flag.Parse()

	params, err := scenario.DefaultParams(*name)
	must(err)
	if *numAgents > 0 {
		params.NumAgents = *numAgents
	}

	s, err := scenario.Build(params)
	must(err)
	if *workers > 0 {
		s.SetWorkers(*workers)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		must(err)
		defer f.Close()
		w = f
	}

	rec, err := bridge.NewRecorder(s, w)
	must(err)
	for s.GlobalTime() < float32(*duration) {
		must(rec.RecordFrame())
	}
	must(rec.Flush())
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
