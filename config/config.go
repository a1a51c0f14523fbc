// ABOUTME: Configuration management for beat-sync engine tuning parameters
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// EngineConfig holds all tunable beat-sync timing parameters.
// None of these are load-bearing invariants; they can be tuned live from the
// TUI params panel and are persisted on quit.
type EngineConfig struct {
	// Jitter stabilizer
	StabilityThreshold  int     `toml:"stability_threshold"`  // consecutive ticks before a new index is accepted
	HysteresisTolerance float64 `toml:"hysteresis_tolerance"` // seconds past a cell-boundary midpoint before switching
	OffDwellSeconds     float64 `toml:"off_dwell_seconds"`    // minimum highlight dwell before committing -1

	// Click override
	SnapWindowSeconds     float64 `toml:"snap_window_seconds"`     // unconditional pin after a click
	OverrideWindowSeconds float64 `toml:"override_window_seconds"` // extended window while the player catches up
	SeekToleranceSeconds  float64 `toml:"seek_tolerance_seconds"`  // raw time vs. seek target convergence tolerance
	MappingLatencySeconds float64 `toml:"mapping_latency_seconds"` // mapping-table lookup offset while overriding

	// Phase resolution
	SwitchBufferSeconds float64 `toml:"switch_buffer_seconds"` // dead zone around the first detected beat
	DefaultBPM          float64 `toml:"default_bpm"`           // substitute for missing/invalid tempo
	MaxReasonableBPM    float64 `toml:"max_reasonable_bpm"`    // tempos above this are treated as invalid

	// Scheduler, transport and scroll follower
	TickRateHz             int     `toml:"tick_rate_hz"`           // playback polling rate
	ScrollThrottleSeconds  float64 `toml:"scroll_throttle_seconds"` // minimum gap between follow scrolls
	ComfortMarginRows      int     `toml:"comfort_margin_rows"`    // rows from viewport center considered "in view"
	RewindEpsilonSeconds   float64 `toml:"rewind_epsilon_seconds"` // float slack before a time decrease counts as rewind
	WatchDebounceMillis    int     `toml:"watch_debounce_millis"`  // settle time after an analysis file write
	TraceStepSeconds       float64 `toml:"trace_step_seconds"`     // simulated tick step in trace mode
	SeekReportLatencyMilli int     `toml:"seek_report_latency_ms"` // transport's simulated stale-time window after seek
}

// DefaultConfig returns the default engine configuration. The timing values
// match what worked well against real analysis output; all of them are
// adjustable at runtime.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		StabilityThreshold:  2,
		HysteresisTolerance: 0.05,
		OffDwellSeconds:     0.08,

		SnapWindowSeconds:     0.2,
		OverrideWindowSeconds: 0.8,
		SeekToleranceSeconds:  0.25,
		MappingLatencySeconds: 0.02,

		SwitchBufferSeconds: 0.03,
		DefaultBPM:          120,
		MaxReasonableBPM:    400,

		TickRateHz:             18,
		ScrollThrottleSeconds:  0.2,
		ComfortMarginRows:      3,
		RewindEpsilonSeconds:   0.005,
		WatchDebounceMillis:    100,
		TraceStepSeconds:       0.05,
		SeekReportLatencyMilli: 150,
	}
}

// LoadConfig loads configuration from a TOML file
// If the file doesn't exist or fails to load, returns default config
func LoadConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	var config EngineConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, config EngineConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/chordgrid/config.toml
func GetConfigPath() string {
	if _, err := os.Stat("./chordgrid.toml"); err == nil {
		return "./chordgrid.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./chordgrid.toml"
	}

	return filepath.Join(home, ".config", "chordgrid", "config.toml")
}

// SharedConfig wraps EngineConfig with a mutex for thread-safe access between
// the scheduler goroutine and the TUI
type SharedConfig struct {
	mu     sync.RWMutex
	config EngineConfig
}

// Get returns a copy of the current config (thread-safe read)
func (sc *SharedConfig) Get() EngineConfig {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// Update updates the config (thread-safe write)
func (sc *SharedConfig) Update(config EngineConfig) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = config
}
