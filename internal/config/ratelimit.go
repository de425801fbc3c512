package config

import "time"

// RateLimitConfig configures the Redis token bucket.  Burst and RefillEvery
// are shorthands: a positive Burst replaces Capacity and a positive
// RefillEvery means one token per that interval.
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Capacity       int           `mapstructure:"capacity"`
	RefillTokens   int           `mapstructure:"refill_tokens"`
	RefillInterval time.Duration `mapstructure:"refill_interval"`
	TTL            time.Duration `mapstructure:"ttl"`
	KeyStrategy    string        `mapstructure:"key_strategy"`
	Prefix         string        `mapstructure:"prefix"`
	Debug          bool          `mapstructure:"debug"`
	Burst          int           `mapstructure:"burst"`
	RefillEvery    time.Duration `mapstructure:"refill_every"`
}

func (c *RateLimitConfig) normalize() {
	if c.Burst > 0 {
		c.Capacity = c.Burst
	}
	if c.RefillEvery > 0 {
		c.RefillTokens = 1
		c.RefillInterval = c.RefillEvery
	}
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	// the bucket must outlive a few refill periods or it resets to full
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	if c.Prefix == "" {
		c.Prefix = "rl"
	}
}
