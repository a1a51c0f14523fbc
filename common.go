// ABOUTME: Shared initialization code for all modes (TUI, trace)
// ABOUTME: Provides debug logging setup and common option types

package main

import (
	"fmt"
	"log"
	"os"

	"chordgrid/config"
)

var debugLog *log.Logger

// RunOptions contains command-line options for all modes
type RunOptions struct {
	AnalysisPaths []string
	Watch         bool
	DebugLog      bool
}

// loadSharedConfig loads the on-disk configuration into a SharedConfig
func loadSharedConfig() (*config.SharedConfig, string) {
	configPath := config.GetConfigPath()
	cfg, _ := config.LoadConfig(configPath)

	sharedCfg := &config.SharedConfig{}
	sharedCfg.Update(cfg)

	return sharedCfg, configPath
}

// SetupDebugLog initializes debug logging
func SetupDebugLog(filename string) error {
	if err := InitDebugLog(filename); err != nil {
		return fmt.Errorf("failed to initialize debug log: %w", err)
	}

	fileInfo, _ := os.Stdout.Stat()
	if (fileInfo.Mode() & os.ModeCharDevice) != 0 {
		fmt.Printf("Debug logging enabled: %s\n", filename)
	}

	return nil
}

// InitDebugLog initializes debug logging
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages if enabled
func debugf(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}
