// Package testutil provides shared helpers for the test suite: tree fixtures,
// property-test wiring and intensity-based test configuration.
package testutil

import (
	"os"
	"strings"
	"time"
)

// Intensity represents the thoroughness level of test execution.
type Intensity int

const (
	// IntensityQuick runs tests with small trees for fast feedback during development.
	IntensityQuick Intensity = iota
	// IntensityThorough runs tests with larger trees for CI validation.
	IntensityThorough
)

// String returns the string representation of the intensity.
func (i Intensity) String() string {
	if i == IntensityThorough {
		return "thorough"
	}
	return "quick"
}

// Config holds tuning parameters for test execution, derived from intensity.
type Config struct {
	Intensity  Intensity
	Iterations int           // Property test iterations
	MaxEntries int           // Upper bound on generated tree entries
	MaxDepth   int           // Upper bound on generated tree depth
	Timeout    time.Duration // Per-test deadline guideline
}

// GetConfig returns the active test configuration. TEST_INTENSITY=thorough
// selects the CI profile; anything else (including unset) selects quick.
func GetConfig() Config {
	if strings.EqualFold(os.Getenv("TEST_INTENSITY"), "thorough") {
		return Config{
			Intensity:  IntensityThorough,
			Iterations: 100,
			MaxEntries: 400,
			MaxDepth:   6,
			Timeout:    5 * time.Minute,
		}
	}
	return Config{
		Intensity:  IntensityQuick,
		Iterations: 20,
		MaxEntries: 60,
		MaxDepth:   4,
		Timeout:    30 * time.Second,
	}
}
