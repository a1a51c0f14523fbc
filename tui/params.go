// ABOUTME: Tunable engine parameter definitions with boundary checking
// ABOUTME: Handles live parameter adjustments and reset to defaults

package tui

import "chordgrid/config"

// Parameter represents a tunable engine parameter with constraints
type Parameter struct {
	Name     string
	Value    *float64 // Pointer to actual config field
	IntValue *int     // For integer parameters
	Min      float64
	Max      float64
	Step     float64
	IsInt    bool
}

// buildParams builds the parameter list with pointers into cfg. The struct
// must be heap-allocated by the caller so the pointers stay valid.
func buildParams(cfg *config.EngineConfig) []Parameter {
	return []Parameter{
		{"Stability Threshold", nil, &cfg.StabilityThreshold, 1, 10, 1, true},
		{"Hysteresis Tolerance", &cfg.HysteresisTolerance, nil, 0, 0.5, 0.01, false},
		{"Off Dwell (s)", &cfg.OffDwellSeconds, nil, 0, 0.5, 0.01, false},
		{"Snap Window (s)", &cfg.SnapWindowSeconds, nil, 0, 1, 0.05, false},
		{"Override Window (s)", &cfg.OverrideWindowSeconds, nil, 0, 2, 0.05, false},
		{"Seek Tolerance (s)", &cfg.SeekToleranceSeconds, nil, 0, 1, 0.05, false},
		{"Switch Buffer (s)", &cfg.SwitchBufferSeconds, nil, 0, 0.2, 0.005, false},
		{"Tick Rate (Hz)", nil, &cfg.TickRateHz, 5, 60, 1, true},
		{"Scroll Throttle (s)", &cfg.ScrollThrottleSeconds, nil, 0, 1, 0.05, false},
		{"Comfort Margin (rows)", nil, &cfg.ComfortMarginRows, 0, 10, 1, true},
		{"Default BPM", &cfg.DefaultBPM, nil, 30, 300, 5, false},
	}
}

// increaseParam increases a parameter value with bounds checking
// Returns true if the value was changed
func increaseParam(param *Parameter) bool {
	if param.IsInt {
		newVal := *param.IntValue + int(param.Step)
		if float64(newVal) <= param.Max {
			*param.IntValue = newVal

			return true
		}
	} else {
		newVal := *param.Value + param.Step
		if newVal <= param.Max {
			*param.Value = newVal

			return true
		}
	}

	return false
}

// decreaseParam decreases a parameter value with bounds checking
// Returns true if the value was changed
func decreaseParam(param *Parameter) bool {
	if param.IsInt {
		newVal := *param.IntValue - int(param.Step)
		if float64(newVal) >= param.Min {
			*param.IntValue = newVal

			return true
		}
	} else {
		newVal := *param.Value - param.Step
		// Clamp to min if we're very close (handles floating point precision)
		if newVal < param.Min && newVal >= param.Min-0.0001 {
			newVal = param.Min
		}

		if newVal >= param.Min {
			*param.Value = newVal

			return true
		}
	}

	return false
}

// resetParamsToDefaults resets all parameters to their default values
// Uses name-based lookup to avoid fragile array indexing
func resetParamsToDefaults(params []Parameter, defaults config.EngineConfig) {
	for i := range params {
		p := &params[i]
		switch p.Name {
		case "Stability Threshold":
			*p.IntValue = defaults.StabilityThreshold
		case "Hysteresis Tolerance":
			*p.Value = defaults.HysteresisTolerance
		case "Off Dwell (s)":
			*p.Value = defaults.OffDwellSeconds
		case "Snap Window (s)":
			*p.Value = defaults.SnapWindowSeconds
		case "Override Window (s)":
			*p.Value = defaults.OverrideWindowSeconds
		case "Seek Tolerance (s)":
			*p.Value = defaults.SeekToleranceSeconds
		case "Switch Buffer (s)":
			*p.Value = defaults.SwitchBufferSeconds
		case "Tick Rate (Hz)":
			*p.IntValue = defaults.TickRateHz
		case "Scroll Throttle (s)":
			*p.Value = defaults.ScrollThrottleSeconds
		case "Comfort Margin (rows)":
			*p.IntValue = defaults.ComfortMarginRows
		case "Default BPM":
			*p.Value = defaults.DefaultBPM
		}
	}
}
