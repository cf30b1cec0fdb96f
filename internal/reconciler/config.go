package reconciler

import "time"

// Config controls the reconciliation cadence and candidate window.
type Config struct {
	// Interval between cycles after a normal pass.
	Interval time.Duration
	// ErrorBackoff is used instead of Interval after a systemic failure
	// (candidate listing itself failed).
	ErrorBackoff time.Duration
	// Lookback bounds the candidate window; payments older than this are no
	// longer polled even when non-terminal.
	Lookback time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:     5 * time.Second,
		ErrorBackoff: time.Minute,
		Lookback:     20 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = defaults.Interval
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = defaults.ErrorBackoff
	}
	if c.Lookback <= 0 {
		c.Lookback = defaults.Lookback
	}
	return c
}
