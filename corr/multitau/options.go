package multitau

import "time"

// TimingHook receives the number of frames processed and the
// cumulative time spent inside Process. It is invoked once per Result
// call, never from the hot path itself.
type TimingHook func(frames int, elapsed time.Duration)

// Config holds multi-tau correlator parameters.
type Config struct {
	// Levels is the number of hierarchy levels; level k samples lags
	// at 2^k frame spacing.
	Levels int
	// Bufs is the number of cyclic buffer slots per level. Must be
	// even: every level emits one averaged value per pair of arrivals.
	Bufs int
	// Hook, if set, receives processing-time observations.
	Hook TimingHook
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the conventional multi-tau operating point:
// 8 levels of 16 buffers, covering lags up to 1920 frames.
func DefaultConfig() Config {
	return Config{
		Levels: 8,
		Bufs:   16,
	}
}

// WithLevels sets the number of hierarchy levels. Values are
// validated by New, not here, so that a bad configuration surfaces as
// an error instead of silently keeping the default.
func WithLevels(levels int) Option {
	return func(cfg *Config) {
		cfg.Levels = levels
	}
}

// WithBufs sets the number of cyclic buffer slots per level.
// Validated by New.
func WithBufs(bufs int) Option {
	return func(cfg *Config) {
		cfg.Bufs = bufs
	}
}

// WithTimingHook installs an observer for cumulative processing time.
func WithTimingHook(hook TimingHook) Option {
	return func(cfg *Config) {
		cfg.Hook = hook
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
