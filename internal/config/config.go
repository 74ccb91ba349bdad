// Package config defines process configuration and loading hooks.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the Prometheus listen address, e.g. ":9090".
	// Empty disables the metrics listener.
	MetricsAddr string `koanf:"metrics_addr"`

	// Composite score component weights.
	SkillWeight       float64 `koanf:"skill_weight"`
	RatingWeight      float64 `koanf:"rating_weight"`
	ReliabilityWeight float64 `koanf:"reliability_weight"`

	// BurnoutPenalty is deducted from the composite while a freelancer is
	// burned out.
	BurnoutPenalty float64 `koanf:"burnout_penalty"`
}

// New creates a Config with the default matching parameters.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		MetricsAddr:       "",
		SkillWeight:       0.55,
		RatingWeight:      0.25,
		ReliabilityWeight: 0.20,
		BurnoutPenalty:    0.45,
	}
}
