// ABOUTME: Entry point for the chordgrid application
// ABOUTME: Handles command-line parsing, profiling, and routing to TUI or trace modes

// Package main provides the entry point for chordgrid, a terminal viewer
// that follows music playback across a beat-synchronized chord grid.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"chordgrid/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	trace := flag.Bool("trace", false, "replay analysis headlessly and print every highlight transition")
	watch := flag.Bool("watch", false, "reload the analysis document when it changes on disk")
	debug := flag.Bool("debug", false, "enable debug logging to chordgrid-debug.log")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Println("Usage: chordgrid [flags] <analysis.json> [more.json ...]")
		fmt.Println("Example: chordgrid ~/analysis/wonderwall.json")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		return 1
	}

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}

	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}

	if *trace {
		if err := RunTrace(RunOptions{
			AnalysisPaths: args,
			DebugLog:      *debug,
		}); err != nil {
			log.Printf("Trace error: %v", err)

			return 1
		}

		return 0
	}

	if len(args) != 1 {
		fmt.Println("Interactive mode takes exactly one analysis document")

		return 1
	}

	if *debug {
		if err := SetupDebugLog("chordgrid-debug.log"); err != nil {
			log.Printf("Failed to setup debug log: %v", err)

			return 1
		}
	}

	sharedCfg, configPath := loadSharedConfig()

	opts := tui.Options{
		AnalysisPath: args[0],
		Watch:        *watch,
		DebugLog:     *debug,
	}

	if err := tui.Run(opts, sharedCfg, debugf, configPath); err != nil {
		log.Printf("TUI error: %v", err)

		return 1
	}

	return 0
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
