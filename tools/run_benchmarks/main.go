// Command run_benchmarks measures DoStep throughput for the named HRVO
// scenarios and records one CSV row per (scenario, worker count) run.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/hrvosim/internal/scenario"
)

// BenchmarkResult stores results from a single scenario run.
type BenchmarkResult struct {
	RunID        string  `json:"run_id"`
	GoVersion    string  `json:"go_version"`
	OS           string  `json:"os"`
	Arch         string  `json:"arch"`
	Scenario     string  `json:"scenario"`
	NumAgents    int     `json:"num_agents"`
	Workers      int     `json:"workers"`
	Steps        int     `json:"steps"`
	RuntimeMs    float64 `json:"runtime_ms"`
	StepsPerSec  float64 `json:"steps_per_sec"`
	AgentStepsPS float64 `json:"agent_steps_per_sec"`
}

// ScenarioMetrics holds per-scenario aggregated metrics.
type ScenarioMetrics struct {
	Name          string
	TotalRuns     int
	TotalRuntime  float64
	TotalSteps    int
	TotalAgentSec float64
}

func loadScenario(path string) (scenario.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenario.Params{}, err
	}
	var p scenario.Params
	if err := json.Unmarshal(data, &p); err != nil {
		return scenario.Params{}, err
	}
	return p, nil
}

func runScenario(runID string, p scenario.Params, steps int, workers int) (*BenchmarkResult, error) {
	s, err := scenario.Build(p)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", p.Name, err)
	}
	if workers > 0 {
		s.SetWorkers(workers)
	}

	start := time.Now()
	for i := 0; i < steps; i++ {
		if err := s.DoStep(); err != nil {
			return nil, fmt.Errorf("step %s: %w", p.Name, err)
		}
	}
	elapsed := time.Since(start)

	elapsedMs := float64(elapsed.Microseconds()) / 1000.0
	stepsPerSec := 0.0
	agentStepsPerSec := 0.0
	if elapsed > 0 {
		stepsPerSec = float64(steps) / elapsed.Seconds()
		agentStepsPerSec = stepsPerSec * float64(s.NumAgents())
	}

	return &BenchmarkResult{
		RunID:        runID,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		Scenario:     p.Name,
		NumAgents:    s.NumAgents(),
		Workers:      workers,
		Steps:        steps,
		RuntimeMs:    elapsedMs,
		StepsPerSec:  stepsPerSec,
		AgentStepsPS: agentStepsPerSec,
	}, nil
}

func writeCSV(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"run_id", "go_version", "os", "arch", "scenario", "num_agents",
		"workers", "steps", "runtime_ms", "steps_per_sec", "agent_steps_per_sec",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.RunID, r.GoVersion, r.OS, r.Arch, r.Scenario,
			fmt.Sprintf("%d", r.NumAgents), fmt.Sprintf("%d", r.Workers),
			fmt.Sprintf("%d", r.Steps), fmt.Sprintf("%.3f", r.RuntimeMs),
			fmt.Sprintf("%.2f", r.StepsPerSec), fmt.Sprintf("%.2f", r.AgentStepsPS),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(results []*BenchmarkResult) {
	metrics := make(map[string]*ScenarioMetrics)
	for _, r := range results {
		key := fmt.Sprintf("%s/w%d", r.Scenario, r.Workers)
		m, ok := metrics[key]
		if !ok {
			m = &ScenarioMetrics{Name: key}
			metrics[key] = m
		}
		m.TotalRuns++
		m.TotalRuntime += r.RuntimeMs
		m.TotalSteps += r.Steps
		m.TotalAgentSec += r.AgentStepsPS
	}

	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-24s %6s %14s %14s\n", "Scenario/Workers", "Runs", "AvgTime(ms)", "AvgAgentSteps/s")
	fmt.Println(strings.Repeat("-", 62))

	var names []string
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := metrics[name]
		avgTime := m.TotalRuntime / float64(m.TotalRuns)
		avgAgentSec := m.TotalAgentSec / float64(m.TotalRuns)
		fmt.Printf("%-24s %6d %14.2f %14.2f\n", m.Name, m.TotalRuns, avgTime, avgAgentSec)
	}
}

func main() {
	inputDir := flag.String("input", "testdata/scenarios", "directory containing scenario.Params JSON files")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "output CSV file")
	steps := flag.Int("steps", 300, "number of DoStep calls per run")
	workerSweep := flag.String("workers", "1", "comma-separated worker counts to benchmark, e.g. 1,2,4,8")
	verbose := flag.Bool("verbose", false, "verbose output")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "run_benchmarks: %v\n", err)
		os.Exit(1)
	}

	pattern := filepath.Join(*inputDir, "*.json")
	files, err := filepath.Glob(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run_benchmarks: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "no scenario files found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "run gen_scenarios first: go run ./tools/gen_scenarios -output %s\n", *inputDir)
		os.Exit(1)
	}

	var workers []int
	for _, tok := range strings.Split(*workerSweep, ",") {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(tok), "%d", &n); err != nil {
			fmt.Fprintf(os.Stderr, "run_benchmarks: invalid worker count %q\n", tok)
			os.Exit(1)
		}
		workers = append(workers, n)
	}

	runID := uuid.NewString()

	var results []*BenchmarkResult
	for _, f := range files {
		p, err := loadScenario(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", f, err)
			continue
		}
		for _, w := range workers {
			if *verbose {
				fmt.Printf("running %s (workers=%d)...\n", p.Name, w)
			}
			r, err := runScenario(runID, p, *steps, w)
			if err != nil {
				fmt.Fprintf(os.Stderr, "run %s: %v\n", f, err)
				continue
			}
			results = append(results, r)
		}
	}

	if err := writeCSV(results, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "run_benchmarks: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}
