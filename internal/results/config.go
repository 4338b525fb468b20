// ABOUTME: Scoring parameters for drill results
// ABOUTME: Defaults reproduce the trainer's tuned constants

package results

// Config contains the scoring weights and window sizes.
type Config struct {
	// ScoreFactor is the share of the shallow score taken by correctness;
	// the rest comes from how much of the window has been visited.
	ScoreFactor float64 `json:"score_factor" yaml:"score_factor" validate:"gte=0,lte=1"`

	// LayerFactor is the share of the remaining mass consumed by each layer
	// of the completeness walk.
	LayerFactor float64 `json:"layer_factor" yaml:"layer_factor" validate:"gt=0,lt=1"`

	// HistoryLength is the capacity of every position's recency window.
	HistoryLength int `json:"history_length" yaml:"history_length" validate:"gte=1,lte=100"`

	// CompleteThreshold is the completeness at which a branch stops being tested.
	CompleteThreshold float64 `json:"complete_threshold" yaml:"complete_threshold" validate:"gt=0,lte=1"`

	TestDepth       int     `json:"test_depth" yaml:"test_depth" validate:"gte=0,lte=32"`
	TestSupport     float64 `json:"test_support" yaml:"test_support" validate:"gt=0"`
	CoverageSupport float64 `json:"coverage_support" yaml:"coverage_support" validate:"gte=0"`
}

// DefaultConfig returns the default scoring configuration.
func DefaultConfig() Config {
	return Config{
		ScoreFactor:       0.3,
		LayerFactor:       0.7,
		HistoryLength:     5,
		CompleteThreshold: 0.99,
		TestDepth:         4,
		TestSupport:       20,
		CoverageSupport:   10,
	}
}
