// ABOUTME: TUI mode configuration and command-line options
// ABOUTME: Defines input parameters for running the grid viewer

package tui

// Options contains configuration for running the grid viewer
type Options struct {
	AnalysisPath string // Path to the analysis document
	Watch        bool   // Reload the analysis document when it changes on disk
	DebugLog     bool   // Enable debug logging to file
}
