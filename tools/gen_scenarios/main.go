// Command gen_scenarios writes scenario.Params JSON files for the named
// HRVO example scenarios, for consumption by tools/run_benchmarks.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elektrokombinacija/hrvosim/internal/scenario"
)

var allScenarios = []string{"circle", "vertical-line", "div-b"}

func main() {
	outputDir := flag.String("output", "testdata/scenarios", "directory to write scenario JSON files into")
	agentCounts := flag.String("agent-counts", "", "comma-separated agent-count overrides for circle/vertical-line, e.g. 8,25,100 (blank = scenario default only)")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "gen_scenarios: %v\n", err)
		os.Exit(1)
	}

	counts, err := parseCounts(*agentCounts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gen_scenarios: %v\n", err)
		os.Exit(1)
	}

	written := 0
	for _, name := range allScenarios {
		base, err := scenario.DefaultParams(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gen_scenarios: %v\n", err)
			os.Exit(1)
		}

		variants := []scenario.Params{base}
		if base.NumAgents > 0 {
			for _, n := range counts {
				v := base
				v.NumAgents = n
				variants = append(variants, v)
			}
		}

		for _, p := range variants {
			if err := writeScenario(*outputDir, p); err != nil {
				fmt.Fprintf(os.Stderr, "gen_scenarios: %v\n", err)
				os.Exit(1)
			}
			written++
		}
	}

	fmt.Printf("wrote %d scenario file(s) to %s\n", written, *outputDir)
}

func writeScenario(dir string, p scenario.Params) error {
	name := p.Name
	if p.NumAgents > 0 {
		name = fmt.Sprintf("%s_%d", p.Name, p.NumAgents)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(dir, name+".json")
	return os.WriteFile(path, data, 0644)
}

func parseCounts(spec string) ([]int, error) {
	if spec == "" {
		return nil, nil
	}
	var counts []int
	start := 0
	for i := 0; i <= len(spec); i++ {
		if i == len(spec) || spec[i] == ',' {
			var n int
			if _, err := fmt.Sscanf(spec[start:i], "%d", &n); err != nil {
				return nil, fmt.Errorf("invalid agent count %q: %w", spec[start:i], err)
			}
			counts = append(counts, n)
			start = i + 1
		}
	}
	return counts, nil
}
