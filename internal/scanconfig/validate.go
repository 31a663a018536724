package scanconfig

import (
	"fmt"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
)

// ValidationError is a fatal configuration error. A config that fails
// validation aborts the process before any fetch is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ConfigID == "" {
		return ValidationError{"meta.config_id", "required"}
	}

	// === Sectors ===
	if len(cfg.Sectors) == 0 {
		return ValidationError{"sectors", "at least one sector is required"}
	}

	seen := make(map[string]bool, len(cfg.Sectors))
	for i, s := range cfg.Sectors {
		field := fmt.Sprintf("sectors[%d]", i)
		if s.Ticker == "" {
			return ValidationError{field + ".ticker", "required"}
		}
		if s.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if seen[s.Ticker] {
			return ValidationError{field + ".ticker", fmt.Sprintf("duplicate ticker %s", s.Ticker)}
		}
		seen[s.Ticker] = true

		switch s.Group {
		case "", contracts.GroupCyclical, contracts.GroupDefensive:
		default:
			return ValidationError{field + ".group", "must be cyclical, defensive or empty"}
		}
	}

	// === Windows ===
	if len(cfg.Windows) == 0 {
		return ValidationError{"windows", "at least one lookback window is required"}
	}

	windowNames := make(map[string]bool, len(cfg.Windows))
	for i, w := range cfg.Windows {
		field := fmt.Sprintf("windows[%d]", i)
		if w.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if windowNames[w.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate window %s", w.Name)}
		}
		windowNames[w.Name] = true

		if w.Length < 1 {
			return ValidationError{field + ".length", "must be >= 1"}
		}
		if w.Weight < 0 {
			return ValidationError{field + ".weight", "must be >= 0"}
		}
	}

	if cfg.TotalWeight() <= 0 {
		return ValidationError{"windows", "window weights must sum to a positive total"}
	}

	// === Sentiment ===
	if cfg.Sentiment.Threshold <= 0 {
		return ValidationError{"sentiment.threshold", "must be > 0"}
	}

	// === Trend ===
	if cfg.Trend.WeakThreshold <= 0 {
		return ValidationError{"trend.weak_threshold", "must be > 0"}
	}
	if cfg.Trend.StrongThreshold <= cfg.Trend.WeakThreshold {
		return ValidationError{"trend.strong_threshold", "must be > weak_threshold"}
	}
	if cfg.Trend.VolumeShort < 1 || cfg.Trend.VolumeLong <= cfg.Trend.VolumeShort {
		return ValidationError{"trend", "volume lookbacks must satisfy 1 <= volume_short < volume_long"}
	}

	// === Fetch ===
	if cfg.Fetch.Workers < 1 {
		return ValidationError{"fetch.workers", "must be >= 1"}
	}

	return nil
}
