// ABOUTME: Headless trace mode implementation for non-interactive analysis replay
// ABOUTME: Replays documents through the engine with a simulated clock and prints transitions

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"chordgrid/config"
	"chordgrid/engine"
	"chordgrid/pool"
	"chordgrid/timeline"
)

// traceEvent is one highlight transition observed during replay
type traceEvent struct {
	Time     float64
	Cell     int
	Label    string
	Downbeat int
	Phase    engine.Phase
	Strategy engine.Strategy
}

// traceResult holds the full replay outcome for one analysis document
type traceResult struct {
	Path        string
	Title       string
	Duration    float64
	Ticks       int
	Events      []traceEvent
	SpeedAdjust float64
	Calibrated  bool
	Err         error
}

// RunTrace replays each analysis document through the engine at the
// configured simulated tick step and prints every highlight transition.
// Documents are replayed in parallel; output stays in argument order.
func RunTrace(opts RunOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog("chordgrid-debug.log"); err != nil {
			return err
		}
	}

	sharedCfg, _ := loadSharedConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stop
		cancel()
	}()

	results := make([]traceResult, len(opts.AnalysisPaths))

	workers := pool.NewWorkerPool(len(opts.AnalysisPaths))
	for i, path := range opts.AnalysisPaths {
		workers.Submit(func() {
			results[i] = traceOne(ctx, path, sharedCfg)
		})
	}

	workers.Wait()
	workers.Close()

	var firstErr error

	for i := range results {
		if i > 0 {
			fmt.Println()
		}

		printTrace(os.Stdout, &results[i])

		if results[i].Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", results[i].Path, results[i].Err)
		}
	}

	return firstErr
}

// traceOne replays a single analysis document with a simulated clock
func traceOne(ctx context.Context, path string, sharedCfg *config.SharedConfig) traceResult {
	result := traceResult{Path: path}

	tl, err := timeline.Load(path)
	if err != nil {
		result.Err = err

		return result
	}

	result.Title = tl.Title
	result.Duration = tl.Duration

	cfg := sharedCfg.Get()

	step := cfg.TraceStepSeconds
	if step <= 0 {
		step = config.DefaultConfig().TraceStepSeconds
	}

	session := engine.NewSession(sharedCfg, tl, debugf)

	// The wall clock advances in lockstep with playback time so dwell and
	// override windows behave exactly as they would live.
	now := time.Now()
	stepDur := time.Duration(step * float64(time.Second))

	lastCell := -1
	lastDownbeat := -1

	for t := 0.0; t <= tl.Duration; t += step {
		select {
		case <-ctx.Done():
			result.Err = ctx.Err()

			return result
		default:
		}

		snap := session.Tick(t, now)
		now = now.Add(stepDur)
		result.Ticks++

		if snap.Index == lastCell && snap.Downbeat == lastDownbeat {
			continue
		}

		label := ""
		if snap.Index >= 0 && snap.Index < len(tl.Cells) {
			label = tl.Cells[snap.Index].Label
		}

		result.Events = append(result.Events, traceEvent{
			Time:     t,
			Cell:     snap.Index,
			Label:    label,
			Downbeat: snap.Downbeat,
			Phase:    snap.Phase,
			Strategy: snap.Strategy,
		})

		lastCell = snap.Index
		lastDownbeat = snap.Downbeat
	}

	if adj, ok := session.SpeedAdjustment(); ok {
		result.SpeedAdjust = adj
		result.Calibrated = true
	}

	return result
}

// printTrace writes one replay result as a transition table
func printTrace(out io.Writer, result *traceResult) {
	name := result.Title
	if name == "" {
		name = result.Path
	}

	fmt.Fprintf(out, "Trace: %s (%.1fs, %d ticks)\n", name, result.Duration, result.Ticks)

	if result.Err != nil {
		fmt.Fprintf(out, "Error: %v\n", result.Err)

		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "Time\tCell\tChord\tMeasure\tPhase\tStrategy"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	if _, err := fmt.Fprintln(w, "----\t----\t-----\t-------\t-----\t--------"); err != nil {
		log.Printf("Warning: failed to write separator: %v", err)
	}

	for _, ev := range result.Events {
		cell := "-"
		if ev.Cell >= 0 {
			cell = fmt.Sprintf("%d", ev.Cell)
		}

		label := ev.Label
		if label == "" {
			label = "-"
		}

		measure := "-"
		if ev.Downbeat >= 0 {
			measure = fmt.Sprintf("%d", ev.Downbeat+1)
		}

		if _, err := fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\t%s\t%s\n",
			ev.Time, cell, label, measure, ev.Phase, ev.Strategy); err != nil {
			log.Printf("Warning: failed to write transition: %v", err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}

	if result.Calibrated {
		fmt.Fprintf(out, "Drift calibration: %sx\n", FormatMinimalPrecision(1.0, result.SpeedAdjust))
	} else {
		fmt.Fprintln(out, "Drift calibration: not performed")
	}
}
