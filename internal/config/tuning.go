package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ringside-data/stock.report/internal/match"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig overrides the engine's detection thresholds. The schema is a
// flat JSON object; fields left out of the file keep their built-in defaults,
// so partial configs are safe. Values flow into match.Config via EngineConfig.
type TuningConfig struct {
	// Smoothing and start detection
	SmoothingWindow *int     `json:"smoothing_window,omitempty"`
	StartRunLength  *int     `json:"start_run_length,omitempty"`
	StartPercentMax *float64 `json:"start_percent_max,omitempty"`

	// Stock-loss validation
	MinDeathPercent   *float64 `json:"min_death_percent,omitempty"`
	EarlyDeathPercent *float64 `json:"early_death_percent,omitempty"`
	MaxDeathPercent   *float64 `json:"max_death_percent,omitempty"`
	RawPeakLookback   *int     `json:"raw_peak_lookback,omitempty"`

	// Damage events
	SpikeTakenMin  *float64 `json:"spike_taken_min,omitempty"`
	SpikeDealtMin  *float64 `json:"spike_dealt_min,omitempty"`
	ComboMinHits   *int     `json:"combo_min_hits,omitempty"`
	ComboMinDamage *float64 `json:"combo_min_damage,omitempty"`

	// Edgeguard scoring
	EdgeguardScoreMin *int `json:"edgeguard_score_min,omitempty"`

	// Event windows
	DedupWindow        *float64 `json:"dedup_window,omitempty"`
	NeutralMinDuration *float64 `json:"neutral_min_duration,omitempty"`
	PhaseDiff          *float64 `json:"phase_diff,omitempty"`

	// Vision refinement
	VisionTimeout *string `json:"vision_timeout,omitempty"` // duration string like "5s"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from a file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.SmoothingWindow != nil {
		if *c.SmoothingWindow < 1 || *c.SmoothingWindow%2 == 0 {
			return fmt.Errorf("smoothing_window must be a positive odd number, got %d", *c.SmoothingWindow)
		}
	}

	if c.StartRunLength != nil && *c.StartRunLength < 1 {
		return fmt.Errorf("start_run_length must be positive, got %d", *c.StartRunLength)
	}

	percentFields := []struct {
		name string
		val  *float64
	}{
		{"start_percent_max", c.StartPercentMax},
		{"min_death_percent", c.MinDeathPercent},
		{"early_death_percent", c.EarlyDeathPercent},
		{"max_death_percent", c.MaxDeathPercent},
		{"spike_taken_min", c.SpikeTakenMin},
		{"spike_dealt_min", c.SpikeDealtMin},
		{"combo_min_damage", c.ComboMinDamage},
	}
	for _, f := range percentFields {
		if f.val != nil && (*f.val < 0 || *f.val > match.MaxPlausiblePercent) {
			return fmt.Errorf("%s must be between 0 and %v, got %f", f.name, match.MaxPlausiblePercent, *f.val)
		}
	}

	if c.RawPeakLookback != nil && *c.RawPeakLookback < 1 {
		return fmt.Errorf("raw_peak_lookback must be positive, got %d", *c.RawPeakLookback)
	}

	if c.ComboMinHits != nil && *c.ComboMinHits < 1 {
		return fmt.Errorf("combo_min_hits must be positive, got %d", *c.ComboMinHits)
	}

	if c.EdgeguardScoreMin != nil {
		if *c.EdgeguardScoreMin < 1 || *c.EdgeguardScoreMin > 4 {
			return fmt.Errorf("edgeguard_score_min must be between 1 and 4, got %d", *c.EdgeguardScoreMin)
		}
	}

	windowFields := []struct {
		name string
		val  *float64
	}{
		{"dedup_window", c.DedupWindow},
		{"neutral_min_duration", c.NeutralMinDuration},
		{"phase_diff", c.PhaseDiff},
	}
	for _, f := range windowFields {
		if f.val != nil && *f.val < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", f.name, *f.val)
		}
	}

	if c.VisionTimeout != nil && *c.VisionTimeout != "" {
		if _, err := time.ParseDuration(*c.VisionTimeout); err != nil {
			return fmt.Errorf("invalid vision_timeout '%s': %w", *c.VisionTimeout, err)
		}
	}

	return nil
}

// GetVisionTimeout parses and returns the VisionTimeout as a time.Duration.
func (c *TuningConfig) GetVisionTimeout() time.Duration {
	if c.VisionTimeout == nil || *c.VisionTimeout == "" {
		return 5 * time.Second // default
	}
	d, err := time.ParseDuration(*c.VisionTimeout)
	if err != nil {
		return 5 * time.Second // default on parse error
	}
	return d
}

// EngineConfig returns the engine thresholds with any overrides applied on
// top of match.DefaultConfig.
func (c *TuningConfig) EngineConfig() match.Config {
	cfg := match.DefaultConfig()

	if c.SmoothingWindow != nil {
		cfg.SmoothingWindow = *c.SmoothingWindow
	}
	if c.StartRunLength != nil {
		cfg.StartRunLength = *c.StartRunLength
	}
	if c.StartPercentMax != nil {
		cfg.StartPercentMax = *c.StartPercentMax
	}
	if c.MinDeathPercent != nil {
		cfg.MinDeathPercent = *c.MinDeathPercent
	}
	if c.EarlyDeathPercent != nil {
		cfg.EarlyDeathPercent = *c.EarlyDeathPercent
	}
	if c.MaxDeathPercent != nil {
		cfg.MaxDeathPercent = *c.MaxDeathPercent
	}
	if c.RawPeakLookback != nil {
		cfg.RawPeakLookback = *c.RawPeakLookback
	}
	if c.SpikeTakenMin != nil {
		cfg.SpikeTakenMin = *c.SpikeTakenMin
	}
	if c.SpikeDealtMin != nil {
		cfg.SpikeDealtMin = *c.SpikeDealtMin
	}
	if c.ComboMinHits != nil {
		cfg.ComboMinHits = *c.ComboMinHits
	}
	if c.ComboMinDamage != nil {
		cfg.ComboMinDamage = *c.ComboMinDamage
	}
	if c.EdgeguardScoreMin != nil {
		cfg.EdgeguardScoreMin = *c.EdgeguardScoreMin
	}
	if c.DedupWindow != nil {
		cfg.DedupWindow = *c.DedupWindow
	}
	if c.NeutralMinDuration != nil {
		cfg.NeutralMinDuration = *c.NeutralMinDuration
	}
	if c.PhaseDiff != nil {
		cfg.PhaseDiff = *c.PhaseDiff
	}

	return cfg
}
